package compiler

import (
	"errors"
	"fmt"
)

// Error codes for compile failures. They appear in CLI output and in the
// build store's failure log.
const (
	ErrCodeUnknownInput = "E201"
	ErrCodeUnknownStack = "E202"
	ErrCodeInvariant    = "E203"
	ErrCodeInputHook    = "E204"
	ErrCodeStackHook    = "E205"
)

// UnknownKindError reports a node kind with neither a built-in rule nor an
// extension hook. The front end and the compiler disagree about the IR.
type UnknownKindError struct {
	Kind string
	// Statement is true for statement nodes, false for input nodes.
	Statement bool
}

func (e *UnknownKindError) Error() string {
	if e.Statement {
		return fmt.Sprintf("%s: unknown stacked block: %s", e.Code(), e.Kind)
	}
	return fmt.Sprintf("%s: unknown input: %s", e.Code(), e.Kind)
}

// Code returns E201 for inputs and E202 for statements.
func (e *UnknownKindError) Code() string {
	if e.Statement {
		return ErrCodeUnknownStack
	}
	return ErrCodeUnknownInput
}

// InvariantError reports a broken contract between the IR and the compiler,
// such as a yield in a script that was not declared yielding.
type InvariantError struct {
	Kind    string // node kind being compiled, if any
	Message string
}

func (e *InvariantError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s: %s (in %s)", ErrCodeInvariant, e.Message, e.Kind)
	}
	return fmt.Sprintf("%s: %s", ErrCodeInvariant, e.Message)
}

// Code returns E203.
func (e *InvariantError) Code() string { return ErrCodeInvariant }

// HookError describes an extension hook that panicked or returned nothing.
// It is logged, never returned from Compile.
type HookError struct {
	Extension string
	Block     string
	Statement bool
	Cause     error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s: %s_%s failed to compile: %v", e.Code(), e.Extension, e.Block, e.Cause)
}

func (e *HookError) Unwrap() error { return e.Cause }

// Code returns E204 for input hooks and E205 for statement hooks.
func (e *HookError) Code() string {
	if e.Statement {
		return ErrCodeStackHook
	}
	return ErrCodeInputHook
}

// IsUnknownKind reports whether err is an UnknownKindError.
// Uses errors.As to handle wrapped errors.
func IsUnknownKind(err error) bool {
	var uk *UnknownKindError
	return errors.As(err, &uk)
}

// IsInvariant reports whether err is an InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// ErrorCode extracts the E2xx code from a compile error, or "" if err did
// not come from the compiler.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// bailout carries a fatal compile error up through recursive descent.
// Generator.Compile recovers it; any other panic propagates.
type bailout struct {
	err error
}

func (g *Generator) fail(err error) {
	panic(bailout{err: err})
}

func (g *Generator) invariantf(kind, format string, args ...any) {
	g.fail(&InvariantError{Kind: kind, Message: fmt.Sprintf(format, args...)})
}
