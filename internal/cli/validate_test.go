package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidProgram(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", programFile)
	require.NoError(t, err)
	assert.Equal(t, "✓ "+programFile+": 2 script(s) compile\n", out)
}

func TestValidateValidProgramJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "json", programFile)
	require.NoError(t, err)

	resp, result := decodeResponse[ValidationResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.Scripts)
	assert.Empty(t, result.Errors)
}

func TestValidateReportsFailingScripts(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", brokenFile)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "broken (top block b1)")
	assert.Contains(t, out, "  E202: unknown stacked block: bogus.block")
	assert.Contains(t, out, "1 of 2 script(s) failed")
}

func TestValidateReportsFailingScriptsJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "json", brokenFile)
	require.Error(t, err)

	resp, result := decodeResponse[ValidationResult](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E202", resp.Error.Code)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ValidationError{
		Script:     "broken",
		TopBlockID: "b1",
		Code:       "E202",
		Message:    "E202: unknown stacked block: bogus.block",
	}, result.Errors[0])
}

func TestValidateLoadError(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", filepath.Join("testdata", "unknown_field.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E009")
}

func TestValidateUnsupportedFormat(t *testing.T) {
	_, err := execute(t, NewValidateCommand, "text", filepath.Join("testdata", "..", "compile.go"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
