package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePrintsFactories(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "text", programFile)
	require.NoError(t, err)

	assert.Contains(t, out, "// entry\n")
	assert.Contains(t, out, "// move %s steps\n")
	assert.Contains(t, out, "for (var a0 = 3; a0 >= 0.5; a0--) {")
	assert.Contains(t, out, "target.setXY(target.x + (+p0 || 0), target.y);")
	assert.Contains(t, out, "Compiled 2 script(s), 0 cached, 0 failed")
}

func TestCompileJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "json", programFile)
	require.NoError(t, err)

	resp, data := decodeResponse[CompileOutput](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.NotEmpty(t, resp.BuildID)
	assert.Equal(t, resp.BuildID, data.BuildID)
	assert.Equal(t, "Sprite1", data.Target)
	assert.Equal(t, 2, data.Compiled)

	require.Len(t, data.Scripts, 2)
	entry := data.Scripts[0]
	assert.Equal(t, "entry", entry.Name)
	assert.Equal(t, "top", entry.TopBlockID)
	assert.True(t, entry.Yields)
	assert.Len(t, entry.Key, 64)
	assert.Contains(t, entry.Source, "yield;")

	move := data.Scripts[1]
	assert.Equal(t, "move %s steps", move.Name)
	assert.False(t, move.Yields)
	assert.Contains(t, move.FunctionName, "_move__steps")
}

func TestCompileOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, NewCompileCommand, "text", programFile, "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ entry → "+filepath.Join(dir, "00_entry.js"))
	assert.NotContains(t, out, "// entry")

	entry, err := os.ReadFile(filepath.Join(dir, "00_entry.js"))
	require.NoError(t, err)
	assert.Contains(t, string(entry), "return function* gen")

	move, err := os.ReadFile(filepath.Join(dir, "01_move_s_steps.js"))
	require.NoError(t, err)
	assert.Contains(t, string(move), "_move__steps (p0)")

	_, err = os.Stat(filepath.Join(dir, LockFileName))
	assert.NoError(t, err, "lock file is left in place")
}

func TestCompileOutputDirectoryJSONOmitsSource(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, NewCompileCommand, "json", programFile, "--output", dir)
	require.NoError(t, err)

	_, data := decodeResponse[CompileOutput](t, out)
	require.Len(t, data.Scripts, 2)
	for _, s := range data.Scripts {
		assert.Empty(t, s.Source)
		assert.NotEmpty(t, s.File)
	}
}

func TestCompileUsesCache(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cache.db")

	out, err := execute(t, NewCompileCommand, "text", programFile, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Compiled 2 script(s), 0 cached, 0 failed")

	out, err = execute(t, NewCompileCommand, "json", programFile, "--db", db)
	require.NoError(t, err)
	_, data := decodeResponse[CompileOutput](t, out)
	assert.Equal(t, 0, data.Compiled)
	assert.Equal(t, 2, data.Cached)
	for _, s := range data.Scripts {
		assert.True(t, s.Cached, s.Name)
		assert.NotEmpty(t, s.Source, s.Name)
	}

	out, err = execute(t, NewCompileCommand, "text", programFile, "--db", db, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Compiled 2 script(s), 0 cached, 0 failed")
}

func TestCompileProcedure(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "text", programFile, "--procedure", "move %s steps")
	require.NoError(t, err)

	assert.Contains(t, out, "// move %s steps\n")
	assert.NotContains(t, out, "// entry")
	assert.Contains(t, out, "Compiled 1 script(s)")
}

func TestCompileUnknownProcedure(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "text", programFile, "--procedure", "entry")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
	assert.Contains(t, out, `no procedure "entry"`)
}

func TestCompileScriptFailureIsIsolated(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "text", brokenFile)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 script(s) failed to compile")

	assert.Contains(t, out, "// entry\n")
	assert.Contains(t, out, "✗ broken (top block b1)")
	assert.Contains(t, out, "E202: unknown stacked block: bogus.block")
	assert.Contains(t, out, "Compiled 1 script(s), 0 cached, 1 failed")
}

func TestCompileScriptFailureJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "json", brokenFile)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, data := decodeResponse[CompileOutput](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E202", resp.Error.Code)
	assert.Equal(t, 1, data.Failed)
	assert.Equal(t, 1, data.Compiled)
}

func TestCompileMissingProgram(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "text", "/nonexistent/program.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ Loading failed")
	assert.Contains(t, out, "E005")
	assert.Contains(t, out, "program not found")
}

func TestCompileSchemaErrorHasPosition(t *testing.T) {
	path := filepath.Join("testdata", "unknown_field.json")
	out, err := execute(t, NewCompileCommand, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E009")
	assert.Contains(t, out, path+":5:")
}

func TestCompileSchemaErrorJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "json", filepath.Join("testdata", "unknown_field.json"))
	require.Error(t, err)

	resp, errs := decodeResponse[[]CLIError](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotEmpty(t, errs)
	assert.Equal(t, "E009", errs[0].Code)
	assert.NotNil(t, errs[0].Details)
}

func TestCompileMissingArgs(t *testing.T) {
	_, err := execute(t, NewCompileCommand, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestScriptFileName(t *testing.T) {
	tests := []struct {
		index int
		name  string
		want  string
	}{
		{0, "entry", "00_entry.js"},
		{1, "move %s steps", "01_move_s_steps.js"},
		{12, "say \"hi\" & wait", "12_say_hi_wait.js"},
		{3, "%%%", "03__.js"},
		{4, "", "04_script.js"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scriptFileName(tt.index, tt.name), tt.name)
	}
}
