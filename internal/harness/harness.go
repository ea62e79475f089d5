package harness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/driedl/food-graph-sub002/internal/compiler"
	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/fsuri"
	"github.com/driedl/food-graph-sub002/internal/identity"
	"github.com/driedl/food-graph-sub002/internal/resolve"
	"github.com/driedl/food-graph-sub002/internal/store"
	"github.com/driedl/food-graph-sub002/internal/validate"
)

// TraceEvent records one executed step: the operation, its input as
// written in the scenario, and the output map the expect clause sees.
type TraceEvent struct {
	Seq    int            `json:"seq"`
	Op     string         `json:"op"`
	Input  map[string]any `json:"input"`
	Output map[string]any `json:"output"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause matched.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expect-clause mismatches. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a scenario and returns its result.
//
// Each scenario runs against a fresh in-memory catalog, assembled from
// the fixture through the same path the CLI compiler uses. Step outputs
// are checked against expect clauses as a subset match; infrastructure
// failures (a fixture that does not assemble, a store error) abort the
// run with an error instead.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := buildCatalog(ctx, scenario)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	result := NewResult()
	for i, step := range scenario.Steps {
		output, err := executeStep(ctx, st, step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
		}
		result.Trace = append(result.Trace, TraceEvent{
			Seq:    i,
			Op:     step.Op,
			Input:  stepInput(step),
			Output: output,
		})
		checkExpect(result, i, step, output)
	}

	return result, nil
}

// buildCatalog assembles the fixture into a fresh in-memory store.
func buildCatalog(ctx context.Context, scenario *Scenario) (*store.Store, error) {
	var taxa []compiler.TaxonDef
	for _, entry := range scenario.Catalog.Taxa {
		def := compiler.TaxonDef{
			ID:     fs.TaxonID(entry.ID),
			Slug:   entry.Slug,
			Name:   entry.Name,
			Parent: fs.TaxonID(entry.Parent),
		}
		for partID, txIDs := range entry.Parts {
			decl := compiler.PartDecl{PartID: fs.PartID(partID)}
			for _, id := range txIDs {
				decl.Transforms = append(decl.Transforms, fs.TransformID(id))
			}
			def.Parts = append(def.Parts, decl)
		}
		taxa = append(taxa, def)
	}

	var parts []compiler.PartDef
	for _, entry := range scenario.Catalog.Parts {
		parts = append(parts, compiler.PartDef{ID: fs.PartID(entry.ID), Name: entry.Name})
	}
	var transforms []compiler.TransformDef
	for _, entry := range scenario.Catalog.Transforms {
		transforms = append(transforms, compiler.TransformDef{ID: fs.TransformID(entry.ID), Name: entry.Name})
	}

	var tpts []compiler.TPTDef
	for i, entity := range scenario.Catalog.Entities {
		chain, err := parseChain(entity.Chain)
		if err != nil {
			return nil, fmt.Errorf("catalog.entities[%d]: %w", i, err)
		}
		tpts = append(tpts, compiler.TPTDef{
			Key:     fmt.Sprintf("entity-%d", i),
			TaxonID: fs.TaxonID(entity.Taxon),
			PartID:  fs.PartID(entity.Part),
			Family:  entity.Family,
			Name:    entity.Name,
			Chain:   chain,
		})
	}

	snap, errs := compiler.Assemble(taxa, parts, transforms, tpts)
	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog fixture does not assemble: %w", errors.Join(errs...))
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	rev := store.Revision{ID: "harness", Source: "scenario:" + scenario.Name}
	if err := st.ReplaceSnapshot(ctx, rev, snap); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to write fixture snapshot: %w", err)
	}
	return st, nil
}

// parseChain decodes FS segment strings into a chain, strictly.
func parseChain(segments []string) (fs.TransformChain, error) {
	var chain fs.TransformChain
	for _, seg := range segments {
		step, err := fsuri.ParseSegment(seg, fsuri.Strict)
		if err != nil {
			return nil, err
		}
		chain = append(chain, step)
	}
	return chain, nil
}

// executeStep dispatches one step and builds its output map. Outputs hold
// only canonical-JSON-safe values: strings, ints, bools, and lists.
func executeStep(ctx context.Context, st *store.Store, step Step) (map[string]any, error) {
	switch step.Op {
	case OpParse:
		return executeParse(step)
	case OpValidate:
		return executeValidate(ctx, st, step)
	case OpIdentify:
		return executeIdentify(ctx, st, step)
	case OpResolve:
		return executeResolve(ctx, st, step)
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func executeParse(step Step) (map[string]any, error) {
	mode := fsuri.Lenient
	if step.Strict {
		mode = fsuri.Strict
	}

	parsed, err := fsuri.ParseMode(step.FS, mode)
	if err != nil {
		return map[string]any{"error": err.Error()}, nil
	}

	_, anchored := fsuri.ResolveTaxonPath(parsed.TaxonPath)
	output := map[string]any{
		"path":      strings.Join(parsed.TaxonPath, "/"),
		"anchored":  anchored,
		"part":      string(parsed.PartID),
		"chain":     renderChain(parsed.Chain),
		"canonical": fsuri.Serialize(parsed.TaxonPath, parsed.PartID, parsed.Chain),
	}
	return output, nil
}

func executeValidate(ctx context.Context, st *store.Store, step Step) (map[string]any, error) {
	chain, err := parseChain(step.Chain)
	if err != nil {
		return nil, err
	}

	status, err := validate.Pair(ctx, st, fs.TaxonID(step.Taxon), fs.PartID(step.Part))
	if err != nil {
		return nil, err
	}
	output := map[string]any{"status": string(status)}

	if status.OK() && len(chain) > 0 {
		chainErr := validate.Chain(ctx, st, fs.TaxonID(step.Taxon), fs.PartID(step.Part), chain)
		var ce *validate.ChainError
		switch {
		case errors.As(chainErr, &ce):
			output["chain_ok"] = false
			output["step"] = string(ce.StepID)
			output["index"] = ce.Index
		case chainErr != nil:
			return nil, chainErr
		default:
			output["chain_ok"] = true
		}
	}
	return output, nil
}

func executeIdentify(ctx context.Context, st *store.Store, step Step) (map[string]any, error) {
	chain, err := parseChain(step.Chain)
	if err != nil {
		return nil, err
	}

	svc := &identity.Service{Oracle: st, Catalog: st}
	state := fs.FoodState{TaxonID: fs.TaxonID(step.Taxon), PartID: fs.PartID(step.Part), Chain: chain}

	result, err := svc.Identify(ctx, state)
	var ce *validate.ChainError
	if errors.As(err, &ce) {
		return map[string]any{
			"status": string(validate.StatusOK),
			"error":  ce.Error(),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	output := map[string]any{"status": string(result.Status)}
	if result.Status.OK() {
		// Content hashes stay out of golden traces; the path is the
		// human-auditable identity component.
		output["curated"] = result.AlreadyExists
		output["name"] = result.Name
		output["path"] = result.TransformPath.Path()
	}
	return output, nil
}

func executeResolve(ctx context.Context, st *store.Store, step Step) (map[string]any, error) {
	chain, err := parseChain(step.Chain)
	if err != nil {
		return nil, err
	}

	match, err := resolve.Nearest(ctx, st, fs.TaxonID(step.Taxon), fs.PartID(step.Part), chain, step.Family)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return map[string]any{"match": false}, nil
	}

	return map[string]any{
		"match":   true,
		"name":    match.Name,
		"family":  match.Family,
		"score":   strconv.FormatFloat(match.Score, 'f', 4, 64),
		"matched": renderIDs(match.Matched),
		"missing": renderIDs(match.Missing),
		"extra":   renderIDs(match.Extra),
	}, nil
}

// stepInput echoes the step's fields into the trace, as written.
func stepInput(step Step) map[string]any {
	input := map[string]any{}
	if step.FS != "" {
		input["fs"] = step.FS
	}
	if step.Strict {
		input["strict"] = true
	}
	if step.Taxon != "" {
		input["taxon"] = step.Taxon
	}
	if step.Part != "" {
		input["part"] = step.Part
	}
	if len(step.Chain) > 0 {
		input["chain"] = toAnyList(step.Chain)
	}
	if step.Family != "" {
		input["family"] = step.Family
	}
	return input
}

// checkExpect performs the subset match of a step's expect clause.
func checkExpect(result *Result, index int, step Step, output map[string]any) {
	for _, key := range sortedExpectKeys(step.Expect) {
		want := step.Expect[key]
		got, ok := output[key]
		if !ok {
			result.AddError(fmt.Sprintf("steps[%d] (%s): output has no field %q", index, step.Op, key))
			continue
		}
		if !equalValue(want, got) {
			result.AddError(fmt.Sprintf("steps[%d] (%s): %s = %v, want %v", index, step.Op, key, got, want))
		}
	}
}

// sortedExpectKeys keeps mismatch messages in a stable order.
func sortedExpectKeys(expect map[string]any) []string {
	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// equalValue compares an expected YAML value against an output value.
// Slices compare elementwise; scalars compare by rendered text, so a YAML
// int matches a Go int64 and a YAML string matches a rendered score.
func equalValue(want, got any) bool {
	wl, wok := toAnySlice(want)
	gl, gok := toAnySlice(got)
	if wok || gok {
		if !wok || !gok || len(wl) != len(gl) {
			return false
		}
		for i := range wl {
			if !equalValue(wl[i], gl[i]) {
				return false
			}
		}
		return true
	}
	return fmt.Sprint(want) == fmt.Sprint(got)
}

func toAnySlice(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		return toAnyList(val), true
	default:
		return nil, false
	}
}

func toAnyList(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

func renderChain(chain fs.TransformChain) []any {
	out := make([]any, len(chain))
	for i, step := range chain {
		out[i] = step.Render()
	}
	return out
}

func renderIDs(ids []fs.TransformID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
