// Package loader reads IR program documents and checks them against the
// embedded CUE schema before decoding.
//
// Supported inputs:
//   - .json files (the front end's native output)
//   - .yaml / .yml files (hand-written fixtures)
//   - .cue files, or a directory holding one CUE package
//
// Every document is unified with #Program and validated with concrete
// values required, so schema errors carry the file position of the
// offending field.
package loader

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/roach88/blockc/internal/ir"
)

//go:embed schema.cue
var schemaSource string

const schemaFilename = "schema.cue"

// Format identifies the syntax of a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// LoadResult is a loaded and validated program.
type LoadResult struct {
	Program *ir.Program
	Format  Format
	// FileCount is the number of source files read (more than one only for
	// CUE packages).
	FileCount int
}

// FormatForPath picks the document format from a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	}
	return "", false
}

// Load reads a program from a file or a CUE package directory.
func Load(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing program: %v", err)}
	}
	if info.IsDir() {
		return loadPackage(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return LoadBytes(path, data)
}

// LoadBytes loads a document held in memory. name supplies the format (by
// extension) and the file name used in error positions.
func LoadBytes(name string, data []byte) (*LoadResult, error) {
	format, ok := FormatForPath(name)
	if !ok {
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported program format %q (want .json, .yaml, .yml or .cue)", filepath.Ext(name)),
		}
	}

	ctx := cuecontext.New()
	var doc cue.Value
	switch format {
	case FormatJSON:
		expr, err := cuejson.Extract(name, data)
		if err != nil {
			return nil, syntaxError(err)
		}
		doc = ctx.BuildExpr(expr)
	case FormatYAML:
		file, err := cueyaml.Extract(name, data)
		if err != nil {
			return nil, syntaxError(err)
		}
		doc = ctx.BuildFile(file)
	case FormatCUE:
		doc = ctx.CompileBytes(data, cue.Filename(name))
	}
	if err := doc.Err(); err != nil {
		return nil, syntaxError(err)
	}

	if err := validate(ctx, doc); err != nil {
		return nil, err
	}

	// Decode from the original bytes where possible so number literals keep
	// their spelling.
	var program *ir.Program
	var err error
	switch format {
	case FormatJSON:
		program, err = ir.DecodeJSON(data)
	case FormatYAML:
		program, err = ir.DecodeYAML(data)
	case FormatCUE:
		program, err = decodeValue(doc)
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
	}
	return &LoadResult{Program: program, Format: format, FileCount: 1}, nil
}

// loadPackage loads the CUE package in dir.
func loadPackage(dir string) (*LoadResult, error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, syntaxError(inst.Err)
	}

	ctx := cuecontext.New()
	doc := ctx.BuildInstance(inst)
	if err := doc.Err(); err != nil {
		return nil, syntaxError(err)
	}
	if err := validate(ctx, doc); err != nil {
		return nil, err
	}

	program, err := decodeValue(doc)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
	}
	return &LoadResult{Program: program, Format: FormatCUE, FileCount: len(files)}, nil
}

// FindCUEFiles returns the .cue files directly inside dir, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*.cue"))
}

// Schema returns the #Program definition built in ctx.
func Schema(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(schemaSource, cue.Filename(schemaFilename))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile schema: %w", err)
	}
	return schema.LookupPath(cue.ParsePath("#Program")), nil
}

// validate unifies doc with #Program and requires every field to be
// concrete.
func validate(ctx *cue.Context, doc cue.Value) error {
	def, err := Schema(ctx)
	if err != nil {
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return schemaErrors(err)
	}
	return nil
}

func decodeValue(v cue.Value) (*ir.Program, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("export program: %w", err)
	}
	return ir.DecodeJSON(data)
}
