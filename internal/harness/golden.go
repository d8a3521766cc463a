package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders every script of a result as plain text: a header per
// script followed by its source, or by its error for failed scripts.
//
//	== entry ==
//	(function factory0(thread) { ...
//	== broken (E202) ==
//	E202: unknown stacked block: bogus.block
func Snapshot(r *Result) []byte {
	var buf bytes.Buffer
	for _, s := range r.Scripts {
		if s.Failed() {
			fmt.Fprintf(&buf, "== %s (%s) ==\n%s\n", s.Name, s.Code, s.Message)
			continue
		}
		fmt.Fprintf(&buf, "== %s ==\n%s\n", s.Name, s.Source)
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario, fails t on any assertion error, and
// compares the snapshot against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) error {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		t.Error(e)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's snapshot against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(result))
	return nil
}

// GoldenPath returns the golden file kept next to a scenario file:
// {dir}/golden/{base name}.golden.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes the result's snapshot as the golden file.
func UpdateGolden(goldenPath string, result *Result) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, Snapshot(result), 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the result's snapshot matches the golden
// file byte for byte.
func CompareGolden(goldenPath string, result *Result) (bool, error) {
	golden, err := os.ReadFile(goldenPath)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(golden, Snapshot(result)), nil
}
