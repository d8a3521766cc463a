package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/compiler"
	"github.com/roach88/blockc/internal/ir"
)

func loopScenario(t *testing.T) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "loop.yaml"))
	require.NoError(t, err)
	return s
}

func intPtr(n int) *int { return &n }

func TestRun_LoopScenarioPasses(t *testing.T) {
	result, err := Run(loopScenario(t))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Scripts, 3)
	assert.Equal(t, "entry", result.Scripts[0].Name)
	assert.Equal(t, "broken", result.Scripts[1].Name)
	assert.Equal(t, "move %s steps", result.Scripts[2].Name)

	broken := result.Scripts[1]
	assert.True(t, broken.Failed())
	assert.Empty(t, broken.Source)
	assert.Equal(t, "E202: unknown stacked block: bogus.block", broken.Message)
}

func TestRun_Deterministic(t *testing.T) {
	s := loopScenario(t)
	a, err := Run(s)
	require.NoError(t, err)
	b, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, Snapshot(a), Snapshot(b))
}

func TestRun_FailedAssertions(t *testing.T) {
	s := loopScenario(t)
	s.Assertions = []Assertion{
		{Type: AssertSourceContains, Script: "entry", Text: "while ("},
		{Type: AssertYieldPoints, Script: "entry", Count: intPtr(5)},
		{Type: AssertCompileError, Script: "entry", Code: "E202"},
		{Type: AssertSourceContains, Script: "broken", Text: "x"},
		{Type: AssertFactory, Script: "move %s steps", Expect: map[string]any{"yields": true}},
		{Type: AssertSourceContains, Script: "missing", Text: "x"},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)

	assert.Contains(t, result.Errors[0], `source containing "while ("`)
	assert.Contains(t, result.Errors[1], "Expected: 5")
	assert.Contains(t, result.Errors[1], "Actual: 1")
	assert.Contains(t, result.Errors[2], "compiled successfully")
	assert.Contains(t, result.Errors[3], "script compiles")
	assert.Contains(t, result.Errors[4], "yields = false")
	assert.Contains(t, result.Errors[5], "no such script")

	for i, e := range result.Errors {
		assert.Contains(t, e, "assertions[", "error %d", i)
	}
}

func TestRun_MissingProgram(t *testing.T) {
	s := loopScenario(t)
	s.Program = filepath.Join(t.TempDir(), "gone.json")

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load program")
}

func TestRun_WithRegistry(t *testing.T) {
	reg := compiler.NewRegistry()
	reg.Register("bogus", "block", compiler.Hooks{
		Stack: func(node *ir.StackNode, g *compiler.Generator, imp compiler.Imports) {
			g.Emit("runtime.bogus();\n")
		},
	})

	s := loopScenario(t)
	s.Assertions = []Assertion{
		{Type: AssertSourceContains, Script: "broken", Text: "runtime.bogus();\n"},
	}

	result, err := Run(s, WithRegistry(reg))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
