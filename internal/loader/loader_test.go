package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/ir"
)

// checkSample verifies the program shared by the valid.* fixtures.
func checkSample(t *testing.T, p *ir.Program) {
	t.Helper()
	assert.Equal(t, "Sprite1", p.Target.Name)
	assert.Equal(t, []string{"costume1"}, p.Target.AssetNames)

	require.NotNil(t, p.Entry)
	assert.Equal(t, "top", p.Entry.TopBlockID)
	assert.True(t, p.Entry.Yields)
	require.Len(t, p.Entry.Stack, 2)

	set := p.Entry.Stack[0]
	assert.Equal(t, "var.set", set.Kind)
	assert.Equal(t, "score", set.Variable.Name)
	assert.Equal(t, ir.LiteralNumber, set.Input("value").Value.Kind)

	call := p.Entry.Stack[1]
	assert.Equal(t, "jump %s", call.Field("variant"))
	require.Len(t, call.Args, 1)
	assert.Equal(t, ir.LiteralString, call.Args[0].Value.Kind)

	proc, ok := p.Procedure("jump %s")
	require.True(t, ok)
	assert.True(t, proc.IsProcedure)
	assert.Equal(t, 1, proc.Arity())
	assert.Equal(t, "args.stringNumber", proc.Stack[0].Input("dy").Kind)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		file   string
		format Format
		number string
	}{
		{"valid.json", FormatJSON, "1.50"},
		{"valid.yaml", FormatYAML, "1.5"},
		{"valid.cue", FormatCUE, "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			res, err := Load(filepath.Join("testdata", tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.format, res.Format)
			assert.Equal(t, 1, res.FileCount)
			checkSample(t, res.Program)
			assert.Equal(t, tt.number, res.Program.Entry.Stack[0].Input("value").Value.Text)
		})
	}
}

func TestLoad_FormatsAgreeOnScriptKeys(t *testing.T) {
	var keys []string
	for _, file := range []string{"valid.yaml", "valid.cue"} {
		res, err := Load(filepath.Join("testdata", file))
		require.NoError(t, err)
		keys = append(keys, ir.MustScriptKey(res.Program, res.Program.Entry))
	}
	assert.Equal(t, keys[0], keys[1])
}

func TestLoad_Package(t *testing.T) {
	res, err := Load(filepath.Join("testdata", "pkg"))
	require.NoError(t, err)

	assert.Equal(t, FormatCUE, res.Format)
	assert.Equal(t, 2, res.FileCount)
	assert.Equal(t, "Stage", res.Program.Target.Name)
	assert.True(t, res.Program.Target.IsStage)
	require.NotNil(t, res.Program.Entry)
	assert.Equal(t, "looks.show", res.Program.Entry.Stack[0].Kind)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ErrCodeNoFiles, ErrorCode(err))
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotFound, ErrorCode(err))
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.txt")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnsupported, ErrorCode(err))
}

func TestLoad_SyntaxError(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "syntax.json"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeLoadFailed, ErrorCode(err))
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		file    string
		message string
	}{
		{"unknown_field.json", "colour"},
		{"missing_fields.yaml", "kind"},
		{"bad_procedure.json", "is_procedure"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join("testdata", tt.file)
			_, err := Load(path)
			require.Error(t, err)

			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, ErrCodeSchema, ErrorCode(err))
			assert.Contains(t, err.Error(), tt.message)

			errs := LoadErrors(err)
			require.NotEmpty(t, errs)
			for _, le := range errs {
				assert.Equal(t, ErrCodeSchema, le.Code)
			}
		})
	}
}

func TestLoad_SchemaErrorPosition(t *testing.T) {
	path := filepath.Join("testdata", "unknown_field.json")
	_, err := Load(path)
	require.Error(t, err)

	var found bool
	for _, le := range LoadErrors(err) {
		if le.Pos.IsValid() && le.Pos.Filename() == path {
			found = true
			assert.Equal(t, 5, le.Pos.Line())
			assert.True(t, strings.HasPrefix(le.Error(), path+":5:"))
		}
	}
	assert.True(t, found, "expected a position inside %s: %v", path, err)
}

func TestLoadBytes_EntryMustNotBeProcedure(t *testing.T) {
	doc := `{"target": {"name": "S"}, "entry": {"top_block_id": "t", "is_procedure": true}}`
	_, err := LoadBytes("inline.json", []byte(doc))
	require.Error(t, err)
	assert.Equal(t, ErrCodeSchema, ErrorCode(err))
}

func TestLoadBytes_NullStack(t *testing.T) {
	doc := `{"target": {"name": "S"}, "entry": {"top_block_id": "t", "stack": null}}`
	res, err := LoadBytes("inline.json", []byte(doc))
	require.NoError(t, err)
	assert.True(t, res.Program.Entry.IsEmpty())
}

func TestLoadBytes_ConstantMustBeScalar(t *testing.T) {
	doc := `{"target": {"name": "S"}, "entry": {"top_block_id": "t", "stack": [
		{"kind": "var.set", "inputs": {"value": {"kind": "constant", "value": [1]}}}
	]}}`
	_, err := LoadBytes("inline.json", []byte(doc))
	require.Error(t, err)
	assert.Equal(t, ErrCodeSchema, ErrorCode(err))
}

func TestLoadErrors(t *testing.T) {
	assert.Nil(t, LoadErrors(nil))

	le := &LoadError{Code: ErrCodeNotFound, Message: "gone"}
	assert.Equal(t, []*LoadError{le}, LoadErrors(le))
	assert.Equal(t, "E005: gone", le.Error())

	other := LoadErrors(os.ErrPermission)
	require.Len(t, other, 1)
	assert.Equal(t, ErrCodeGeneric, other[0].Code)
}

func TestSchemaCompiles(t *testing.T) {
	_, err := LoadBytes("empty.cue", []byte(`target: name: "S"`))
	require.NoError(t, err)
}
