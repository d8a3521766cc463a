package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the script's source to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Script   string
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Source   string // Emitted source, if the script compiled
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s (script %s)\n", e.Type, e.Script)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Source != "" {
		fmt.Fprintf(&buf, "\nSource:\n")
		for i, line := range strings.Split(strings.TrimSuffix(e.Source, "\n"), "\n") {
			fmt.Fprintf(&buf, "  %3d  %s\n", i+1, line)
		}
	}
	return buf.String()
}

// evaluate checks one assertion against the build result.
func evaluate(r *Result, a Assertion) error {
	s, ok := r.Script(a.Script)
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Script:   a.Script,
			Expected: "script in program",
			Actual:   "no such script",
		}
	}

	if a.Type == AssertCompileError {
		return assertCompileError(s, a)
	}
	if s.Failed() {
		return &AssertionError{
			Type:     a.Type,
			Script:   a.Script,
			Expected: "script compiles",
			Actual:   fmt.Sprintf("%s: %s", s.Code, s.Message),
		}
	}

	switch a.Type {
	case AssertSourceContains:
		return assertSourceContains(s, a)
	case AssertSourceNotContains:
		return assertSourceNotContains(s, a)
	case AssertSourceOrder:
		return assertSourceOrder(s, a)
	case AssertYieldPoints:
		return assertCount(s, a, s.YieldPoints)
	case AssertSetupBindings:
		return assertCount(s, a, s.SetupBindings)
	case AssertFactory:
		return assertFactory(s, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertCompileError(s ScriptSnapshot, a Assertion) error {
	if s.Code == a.Code {
		return nil
	}
	actual := "compiled successfully"
	if s.Failed() {
		actual = fmt.Sprintf("%s: %s", s.Code, s.Message)
	}
	return &AssertionError{
		Type:     a.Type,
		Script:   a.Script,
		Expected: "error " + a.Code,
		Actual:   actual,
		Source:   s.Source,
	}
}

func assertSourceContains(s ScriptSnapshot, a Assertion) error {
	if strings.Contains(s.Source, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Script:   a.Script,
		Expected: fmt.Sprintf("source containing %q", a.Text),
		Actual:   "not found",
		Source:   s.Source,
	}
}

func assertSourceNotContains(s ScriptSnapshot, a Assertion) error {
	if !strings.Contains(s.Source, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Script:   a.Script,
		Expected: fmt.Sprintf("source without %q", a.Text),
		Actual:   "found",
		Source:   s.Source,
	}
}

// assertSourceOrder checks that texts appear in order. Fragments don't
// need to be adjacent; each search starts where the previous match ended.
func assertSourceOrder(s ScriptSnapshot, a Assertion) error {
	rest := s.Source
	for i, text := range a.Texts {
		idx := strings.Index(rest, text)
		if idx < 0 {
			return &AssertionError{
				Type:     a.Type,
				Script:   a.Script,
				Expected: fmt.Sprintf("texts in order %q", a.Texts),
				Actual:   fmt.Sprintf("texts[%d] %q not found after texts[%d]", i, text, i-1),
				Source:   s.Source,
			}
		}
		rest = rest[idx+len(text):]
	}
	return nil
}

func assertCount(s ScriptSnapshot, a Assertion, actual int) error {
	if actual == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Script:   a.Script,
		Expected: fmt.Sprintf("%d", *a.Count),
		Actual:   fmt.Sprintf("%d", actual),
		Source:   s.Source,
	}
}

// assertFactory compares the listed flags only.
func assertFactory(s ScriptSnapshot, a Assertion) error {
	actual := map[string]any{
		"warp":          s.Warp,
		"yields":        s.Yields,
		"procedure":     s.Procedure,
		"arity":         s.Arity,
		"function_name": s.FunctionName,
	}
	for _, key := range slices.Sorted(maps.Keys(a.Expect)) {
		if !valuesEqual(a.Expect[key], actual[key]) {
			return &AssertionError{
				Type:     a.Type,
				Script:   a.Script,
				Expected: fmt.Sprintf("%s = %v", key, a.Expect[key]),
				Actual:   fmt.Sprintf("%s = %v", key, actual[key]),
			}
		}
	}
	return nil
}

// valuesEqual compares a YAML-decoded value with a Go value by their
// printed form, so 2 and int(2) or "true" and true agree.
func valuesEqual(expected, actual any) bool {
	return fmt.Sprint(expected) == fmt.Sprint(actual)
}
