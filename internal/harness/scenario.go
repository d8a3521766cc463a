package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/blockc/internal/loader"
)

// Scenario defines a compile scenario: one program and the assertions its
// build must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the path of the IR document to build.
	// Relative paths are resolved against the scenario file's directory.
	Program string `yaml:"program"`

	// Assertions validate the built factories.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one script of the build.
type Assertion struct {
	// Type selects the check; see the AssertXxx constants.
	Type string `yaml:"type"`

	// Script names the script (ir.EntryName or a procedure variant).
	Script string `yaml:"script"`

	// Text is the expected fragment (source_contains, source_not_contains).
	Text string `yaml:"text,omitempty"`

	// Texts are fragments expected in order (source_order).
	Texts []string `yaml:"texts,omitempty"`

	// Count is the expected number (yield_points, setup_bindings).
	Count *int `yaml:"count,omitempty"`

	// Code is the expected error code (compile_error).
	Code string `yaml:"code,omitempty"`

	// Expect holds expected factory flags (factory). Subset match.
	// Keys: warp, yields, procedure, arity, function_name.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertSourceContains    = "source_contains"
	AssertSourceNotContains = "source_not_contains"
	AssertSourceOrder       = "source_order"
	AssertYieldPoints       = "yield_points"
	AssertSetupBindings     = "setup_bindings"
	AssertFactory           = "factory"
	AssertCompileError      = "compile_error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// The program path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the program path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Program != "" && !filepath.IsAbs(scenario.Program) && basePath != "" {
		scenario.Program = filepath.Join(basePath, scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Program == "" {
		return fmt.Errorf("program is required")
	}
	if _, ok := loader.FormatForPath(s.Program); !ok {
		if info, err := os.Stat(s.Program); err != nil || !info.IsDir() {
			return fmt.Errorf("program %s: unsupported format", s.Program)
		}
	}
	if _, err := os.Stat(s.Program); os.IsNotExist(err) {
		return fmt.Errorf("program file not found: %s", s.Program)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Script == "" {
		return fmt.Errorf("assertions[%d]: script is required", index)
	}

	switch a.Type {
	case AssertSourceContains, AssertSourceNotContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertSourceOrder:
		if len(a.Texts) == 0 {
			return fmt.Errorf("assertions[%d]: texts list is required for source_order", index)
		}
	case AssertYieldPoints, AssertSetupBindings:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertFactory:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for factory", index)
		}
		for key := range a.Expect {
			if !factoryKeys[key] {
				return fmt.Errorf("assertions[%d]: unknown factory field %q", index, key)
			}
		}
	case AssertCompileError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for compile_error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

var factoryKeys = map[string]bool{
	"warp":          true,
	"yields":        true,
	"procedure":     true,
	"arity":         true,
	"function_name": true,
}
