package loader

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes, shared with the CLI's JSON output.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNoFiles      = "E003" // No CUE files found
	ErrCodeLoadFailed   = "E004" // Read or parse failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeUnsupported  = "E008" // Unknown file extension
	ErrCodeSchema       = "E009" // Document does not satisfy #Program
	ErrCodeDecodeFailed = "E010" // Valid document the IR decoder rejected
)

// LoadError represents an error that occurred while loading a program.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// SchemaError lists every schema violation found in one document.
type SchemaError struct {
	Errors []*LoadError
}

func (e *SchemaError) Error() string {
	lines := make([]string, len(e.Errors))
	for i, le := range e.Errors {
		lines[i] = le.Error()
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the individual violations to errors.As.
func (e *SchemaError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, le := range e.Errors {
		errs[i] = le
	}
	return errs
}

// ErrorCode returns the code of a loader error, or "" if err is not one.
func ErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// LoadErrors flattens err into its LoadErrors.
func LoadErrors(err error) []*LoadError {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Errors
	}
	var le *LoadError
	if errors.As(err, &le) {
		return []*LoadError{le}
	}
	if err == nil {
		return nil
	}
	return []*LoadError{{Code: ErrCodeGeneric, Message: err.Error()}}
}

// syntaxError converts a CUE parse or build error, keeping the first
// position it carries.
func syntaxError(err error) *LoadError {
	le := &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return le
	}
	first := errs[0]
	le.Message = first.Error()
	le.Pos = documentPosition(first)
	return le
}

// schemaErrors converts a validation error into one LoadError per
// violation.
func schemaErrors(err error) *SchemaError {
	se := &SchemaError{}
	for _, e := range cueerrors.Errors(err) {
		le := &LoadError{Code: ErrCodeSchema, Message: e.Error(), Pos: documentPosition(e)}
		se.Errors = append(se.Errors, le)
	}
	if len(se.Errors) == 0 {
		se.Errors = append(se.Errors, &LoadError{Code: ErrCodeSchema, Message: err.Error()})
	}
	return se
}

// documentPosition returns the first position of e inside the loaded
// document. Positions inside the embedded schema are skipped.
func documentPosition(e cueerrors.Error) token.Pos {
	var fallback token.Pos
	for _, pos := range cueerrors.Positions(e) {
		if !pos.IsValid() {
			continue
		}
		if pos.Filename() != schemaFilename {
			return pos
		}
		if !fallback.IsValid() {
			fallback = pos
		}
	}
	return fallback
}
