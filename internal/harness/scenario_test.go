package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario and an empty-but-valid program next to
// it, returning the scenario path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	program := `{"target": {"name": "Sprite1"}, "entry": {"top_block_id": "top", "stack": [{"kind": "looks.show"}]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "program.json"), []byte(program), 0644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := filepath.Join("testdata", "scenarios", "loop.yaml")
	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "loop", s.Name)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "programs", "loop.yaml"), s.Program)
	require.Len(t, s.Assertions, 6)

	assert.Equal(t, AssertSourceOrder, s.Assertions[0].Type)
	assert.Len(t, s.Assertions[0].Texts, 4)

	require.NotNil(t, s.Assertions[1].Count)
	assert.Equal(t, 1, *s.Assertions[1].Count)

	assert.Equal(t, "move %s steps", s.Assertions[3].Script)
	assert.Equal(t, true, s.Assertions[3].Expect["procedure"])
	assert.Equal(t, 1, s.Assertions[3].Expect["arity"])

	assert.Equal(t, "E202", s.Assertions[5].Code)
}

func TestLoadScenario_ZeroCountIsValid(t *testing.T) {
	path := writeScenario(t, `
name: zero
description: "count zero is explicit"
program: program.json
assertions:
  - type: yield_points
    script: entry
    count: 0
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	require.NotNil(t, s.Assertions[0].Count)
	assert.Equal(t, 0, *s.Assertions[0].Count)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: d\nprogram: program.json\nassertion: []\n",
			want:    "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: d\nprogram: program.json\nassertions: [{type: yield_points, script: entry, count: 1}]\n",
			want:    "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nprogram: program.json\nassertions: [{type: yield_points, script: entry, count: 1}]\n",
			want:    "description is required",
		},
		{
			name:    "missing program",
			content: "name: x\ndescription: d\nassertions: [{type: yield_points, script: entry, count: 1}]\n",
			want:    "program is required",
		},
		{
			name:    "program not found",
			content: "name: x\ndescription: d\nprogram: nope.json\nassertions: [{type: yield_points, script: entry, count: 1}]\n",
			want:    "program file not found",
		},
		{
			name:    "unsupported program format",
			content: "name: x\ndescription: d\nprogram: program.txt\nassertions: [{type: yield_points, script: entry, count: 1}]\n",
			want:    "unsupported format",
		},
		{
			name:    "no assertions",
			content: "name: x\ndescription: d\nprogram: program.json\nassertions: []\n",
			want:    "assertions list is required",
		},
		{
			name:    "missing script",
			content: "name: x\ndescription: d\nprogram: program.json\nassertions: [{type: yield_points, count: 1}]\n",
			want:    "script is required",
		},
		{
			name:    "missing count",
			content: "name: x\ndescription: d\nprogram: program.json\nassertions: [{type: yield_points, script: entry}]\n",
			want:    "count is required",
		},
		{
			name:    "negative count",
			content: "name: x\ndescription: d\nprogram: program.json\nassertions: [{type: setup_bindings, script: entry, count: -1}]\n",
			want:    "count must be non-negative",
		},
		{
			name:    "missing text",
			content: "name: x\ndescription: d\nprogram: program.json\nassertions: [{type: source_contains, script: entry}]\n",
			want:    "text is required",
		},
		{
			name:    "missing texts",
			content: "name: x\ndescription: d\nprogram: program.json\nassertions: [{type: source_order, script: entry}]\n",
			want:    "texts list is required",
		},
		{
			name:    "unknown factory field",
			content: "name: x\ndescription: d\nprogram: program.json\nassertions: [{type: factory, script: entry, expect: {colour: red}}]\n",
			want:    `unknown factory field "colour"`,
		},
		{
			name:    "missing code",
			content: "name: x\ndescription: d\nprogram: program.json\nassertions: [{type: compile_error, script: entry}]\n",
			want:    "code is required",
		},
		{
			name:    "unknown type",
			content: "name: x\ndescription: d\nprogram: program.json\nassertions: [{type: trace_order, script: entry}]\n",
			want:    `unknown assertion type "trace_order"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	path := writeScenario(t, `
name: based
description: "program resolved against another directory"
program: programs/loop.yaml
assertions:
  - type: compile_error
    script: broken
    code: E202
`)
	s, err := LoadScenarioWithBasePath(path, filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "programs", "loop.yaml"), s.Program)
}
