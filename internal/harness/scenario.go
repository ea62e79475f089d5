package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one YAML-defined end-to-end case: a catalog fixture plus a
// sequence of steps run against it.
type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Catalog     CatalogDef `yaml:"catalog"`
	Steps       []Step     `yaml:"steps"`
}

// CatalogDef is the inline catalog fixture a scenario runs against. It is
// assembled through the same pipeline the compiler uses, so a fixture
// that violates catalog rules fails the run before any step executes.
type CatalogDef struct {
	Taxa       []TaxonEntry    `yaml:"taxa"`
	Parts      []RegistryEntry `yaml:"parts"`
	Transforms []RegistryEntry `yaml:"transforms"`
	Entities   []EntityEntry   `yaml:"entities,omitempty"`
}

// TaxonEntry declares one taxon. Parts maps part id to the transform ids
// applicable on this taxon (inherited by descendants).
type TaxonEntry struct {
	ID     string              `yaml:"id"`
	Slug   string              `yaml:"slug"`
	Name   string              `yaml:"name"`
	Parent string              `yaml:"parent,omitempty"`
	Parts  map[string][]string `yaml:"parts,omitempty"`
}

// RegistryEntry declares a part or transform.
type RegistryEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// EntityEntry declares one curated entity. Chain elements use FS segment
// syntax, e.g. "tx:mill{grade=fine}".
type EntityEntry struct {
	Taxon  string   `yaml:"taxon"`
	Part   string   `yaml:"part"`
	Family string   `yaml:"family"`
	Name   string   `yaml:"name"`
	Chain  []string `yaml:"chain"`
}

// Step ops.
const (
	OpParse    = "parse"
	OpValidate = "validate"
	OpIdentify = "identify"
	OpResolve  = "resolve"
)

// Step is one operation to execute. Which fields apply depends on the op:
// parse takes fs (and strict); validate, identify, and resolve take taxon,
// part, and chain; resolve additionally accepts family. Expect is an
// optional subset match against the step's output.
type Step struct {
	Op     string         `yaml:"op"`
	FS     string         `yaml:"fs,omitempty"`
	Strict bool           `yaml:"strict,omitempty"`
	Taxon  string         `yaml:"taxon,omitempty"`
	Part   string         `yaml:"part,omitempty"`
	Chain  []string       `yaml:"chain,omitempty"`
	Family string         `yaml:"family,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown YAML fields
// are rejected so a typo in a fixture fails loudly.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var scenario Scenario
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario must have a name")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario must have at least one step")
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	switch step.Op {
	case OpParse:
		if step.FS == "" {
			return fmt.Errorf("parse step requires fs")
		}
	case OpValidate, OpIdentify, OpResolve:
		if step.Taxon == "" || step.Part == "" {
			return fmt.Errorf("%s step requires taxon and part", step.Op)
		}
	case "":
		return fmt.Errorf("step must have an op")
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}
