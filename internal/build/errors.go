package build

import (
	"errors"
	"fmt"

	"github.com/roach88/blockc/internal/compiler"
)

// ErrCodeCanceled marks scripts that never compiled because the build's
// context ended first.
const ErrCodeCanceled = "CANCELED"

// ScriptError records why one script of a build did not compile.
//
// A ScriptError never aborts the build: the other scripts still compile
// and the failure is written to the store's failure log.
type ScriptError struct {
	// Name is the script's name in the build (ir.EntryName or a variant).
	Name       string
	TopBlockID string
	// Code is the compiler's E2xx code, or ErrCodeCanceled.
	Code string
	Err  error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s (top block %s): %v", e.Name, e.TopBlockID, e.Err)
}

// Unwrap returns the underlying compile error.
func (e *ScriptError) Unwrap() error { return e.Err }

// newScriptError wraps a compile error with the script it came from.
func newScriptError(ns scriptName, err error) *ScriptError {
	code := compiler.ErrorCode(err)
	if code == "" && isCanceled(err) {
		code = ErrCodeCanceled
	}
	return &ScriptError{
		Name:       ns.name,
		TopBlockID: ns.topBlockID,
		Code:       code,
		Err:        err,
	}
}

// scriptName is the identity of a script for error reporting.
type scriptName struct {
	name       string
	topBlockID string
}

// IsScriptError returns true if err is or wraps a ScriptError.
// Uses errors.As to handle wrapped errors.
func IsScriptError(err error) bool {
	var se *ScriptError
	return errors.As(err, &se)
}

// ScriptErrorCode returns the code of a ScriptError, or "" if err is not one.
func ScriptErrorCode(err error) string {
	var se *ScriptError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
