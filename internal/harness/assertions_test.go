package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	r := NewResult()
	r.Scripts = []ScriptSnapshot{
		{
			Name:          "entry",
			FunctionName:  "gen0",
			Source:        "a;\nb;\nc;\n",
			Yields:        true,
			SetupBindings: 2,
			YieldPoints:   3,
		},
		{Name: "broken", Code: "E203", Message: "E203: missing input"},
	}
	return r
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		a    Assertion
		ok   bool
	}{
		{"contains", Assertion{Type: AssertSourceContains, Script: "entry", Text: "b;"}, true},
		{"contains missing", Assertion{Type: AssertSourceContains, Script: "entry", Text: "d;"}, false},
		{"not contains", Assertion{Type: AssertSourceNotContains, Script: "entry", Text: "d;"}, true},
		{"not contains present", Assertion{Type: AssertSourceNotContains, Script: "entry", Text: "a;"}, false},
		{"order", Assertion{Type: AssertSourceOrder, Script: "entry", Texts: []string{"a;", "c;"}}, true},
		{"order reversed", Assertion{Type: AssertSourceOrder, Script: "entry", Texts: []string{"c;", "a;"}}, false},
		{"order repeated needs two", Assertion{Type: AssertSourceOrder, Script: "entry", Texts: []string{"b;", "b;"}}, false},
		{"yield points", Assertion{Type: AssertYieldPoints, Script: "entry", Count: intPtr(3)}, true},
		{"yield points wrong", Assertion{Type: AssertYieldPoints, Script: "entry", Count: intPtr(0)}, false},
		{"setup bindings", Assertion{Type: AssertSetupBindings, Script: "entry", Count: intPtr(2)}, true},
		{"factory subset", Assertion{Type: AssertFactory, Script: "entry", Expect: map[string]any{"yields": true, "function_name": "gen0"}}, true},
		{"factory mismatch", Assertion{Type: AssertFactory, Script: "entry", Expect: map[string]any{"warp": true}}, false},
		{"factory arity", Assertion{Type: AssertFactory, Script: "entry", Expect: map[string]any{"arity": 0}}, true},
		{"compile error", Assertion{Type: AssertCompileError, Script: "broken", Code: "E203"}, true},
		{"compile error wrong code", Assertion{Type: AssertCompileError, Script: "broken", Code: "E201"}, false},
		{"source of failed script", Assertion{Type: AssertSourceContains, Script: "broken", Text: "x"}, false},
		{"unknown script", Assertion{Type: AssertSourceContains, Script: "nope", Text: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := evaluate(sampleResult(), tt.a)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	err := evaluate(sampleResult(), Assertion{Type: AssertSourceContains, Script: "entry", Text: "d;"})
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "entry", ae.Script)

	want := "Assertion failed: source_contains (script entry)\n" +
		"  Expected: source containing \"d;\"\n" +
		"  Actual: not found\n" +
		"\nSource:\n" +
		"    1  a;\n" +
		"    2  b;\n" +
		"    3  c;\n"
	assert.Equal(t, want, err.Error())
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
