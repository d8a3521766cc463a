package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Loop(t *testing.T) {
	require.NoError(t, RunWithGolden(t, loopScenario(t)))
}

func TestSnapshot_Format(t *testing.T) {
	r := NewResult()
	r.Scripts = []ScriptSnapshot{
		{Name: "entry", Source: "(function factory0(thread) {})"},
		{Name: "jump", Code: "E203", Message: "E203: broken"},
	}
	want := "== entry ==\n(function factory0(thread) {})\n== jump (E203) ==\nE203: broken\n"
	assert.Equal(t, want, string(Snapshot(r)))
}

func TestGoldenPath(t *testing.T) {
	got := GoldenPath(filepath.Join("scenarios", "loops", "repeat.yaml"))
	assert.Equal(t, filepath.Join("scenarios", "loops", "golden", "repeat.golden"), got)
}

func TestUpdateAndCompareGolden(t *testing.T) {
	result, err := Run(loopScenario(t))
	require.NoError(t, err)

	path := GoldenPath(filepath.Join(t.TempDir(), "loop.yaml"))
	_, err = CompareGolden(path, result)
	assert.Error(t, err, "missing golden file")

	require.NoError(t, UpdateGolden(path, result))
	match, err := CompareGolden(path, result)
	require.NoError(t, err)
	assert.True(t, match)

	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))
	match, err = CompareGolden(path, result)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestGoldenFileMatchesCommittedSnapshot(t *testing.T) {
	result, err := Run(loopScenario(t))
	require.NoError(t, err)

	match, err := CompareGolden(filepath.Join("testdata", "golden", "loop.golden"), result)
	require.NoError(t, err)
	assert.True(t, match)
}
