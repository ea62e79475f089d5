package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCmd(t *testing.T, dbPath, format string, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format, DB: dbPath}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateOK(t *testing.T) {
	dbPath := compileTestCatalog(t)

	out, err := runValidateCmd(t, dbPath, "text", "taxon:triticum", "part:seed")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ OK")
}

func TestValidateInheritedPart(t *testing.T) {
	dbPath := compileTestCatalog(t)

	// part:seed is declared on the genus; the species inherits it
	out, err := runValidateCmd(t, dbPath, "text", "taxon:triticum-aestivum", "part:seed")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ OK")
}

func TestValidateTaxonMissing(t *testing.T) {
	dbPath := compileTestCatalog(t)

	out, err := runValidateCmd(t, dbPath, "text", "taxon:ghost", "part:seed")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "TAXON_MISSING")
}

func TestValidatePartMissing(t *testing.T) {
	dbPath := compileTestCatalog(t)

	out, err := runValidateCmd(t, dbPath, "text", "taxon:triticum", "part:ghost")
	require.Error(t, err)
	assert.Contains(t, out, "PART_MISSING")
}

func TestValidatePartNotApplicable(t *testing.T) {
	dbPath := compileTestCatalog(t)

	// part:seed exists but plantae itself never declares it
	out, err := runValidateCmd(t, dbPath, "text", "taxon:plantae", "part:seed")
	require.Error(t, err)
	assert.Contains(t, out, "PART_NOT_APPLICABLE")
}

func TestValidateChain(t *testing.T) {
	dbPath := compileTestCatalog(t)

	_, err := runValidateCmd(t, dbPath, "text",
		"taxon:triticum", "part:seed", "tx:mill{grade=fine}", "tx:ferment")
	require.NoError(t, err)
}

func TestValidateChainRejectsUndeclared(t *testing.T) {
	dbPath := compileTestCatalog(t)

	out, err := runValidateCmd(t, dbPath, "text",
		"taxon:triticum", "part:seed", "tx:distill")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "tx:distill")
}

func TestValidateJSONOutput(t *testing.T) {
	dbPath := compileTestCatalog(t)

	out, err := runValidateCmd(t, dbPath, "json", "taxon:ghost", "part:seed")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status, "domain failures still produce a structured payload")

	payload, marshalErr := json.Marshal(resp.Data)
	require.NoError(t, marshalErr)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, "TAXON_MISSING", string(result.Status))
}

func TestValidateMissingDatabase(t *testing.T) {
	out, err := runValidateCmd(t, filepath.Join(t.TempDir(), "missing.db"), "text",
		"taxon:triticum", "part:seed")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "run compile first")
}

func TestValidateBadSegmentArgument(t *testing.T) {
	dbPath := compileTestCatalog(t)

	out, err := runValidateCmd(t, dbPath, "text",
		"taxon:triticum", "part:seed", "tx:mill{grade}")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E009")
}
