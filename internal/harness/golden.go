package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/driedl/food-graph-sub002/internal/canon"
)

// TraceSnapshot is the golden-file form of an executed scenario.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
}

// AssertGolden serializes the trace canonically and compares it against
// the golden file named after the scenario. Canonical serialization keeps
// the fixtures byte-stable: key order and string escaping never drift
// between runs.
func AssertGolden(t *testing.T, snapshot TraceSnapshot) {
	t.Helper()

	data, err := canon.Marshal(snapshotToMap(snapshot))
	if err != nil {
		t.Fatalf("failed to serialize trace: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, snapshot.ScenarioName, data)
}

// RunWithGolden executes a scenario, fails the test on any expect-clause
// mismatch, and compares the trace against its golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %q: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %q: %s", scenario.Name, msg)
	}

	AssertGolden(t, TraceSnapshot{ScenarioName: scenario.Name, Trace: result.Trace})
	return result
}

func snapshotToMap(snapshot TraceSnapshot) map[string]any {
	trace := make([]any, len(snapshot.Trace))
	for i, ev := range snapshot.Trace {
		trace[i] = map[string]any{
			"seq":    ev.Seq,
			"op":     ev.Op,
			"input":  ev.Input,
			"output": ev.Output,
		}
	}
	return map[string]any{
		"scenario": snapshot.ScenarioName,
		"trace":    trace,
	}
}
