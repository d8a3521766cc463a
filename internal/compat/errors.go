package compat

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes bridge errors.
type ErrorCode string

const (
	// ErrCodeUnknownProcedure indicates a procedure code with no compiled body.
	ErrCodeUnknownProcedure ErrorCode = "UNKNOWN_PROCEDURE"

	// ErrCodeIllegalTransition indicates a thread state change the scheduler
	// must never make.
	ErrCodeIllegalTransition ErrorCode = "ILLEGAL_TRANSITION"

	// ErrCodeBadBranch indicates a block selected a branch it does not have.
	ErrCodeBadBranch ErrorCode = "BAD_BRANCH"

	// ErrCodeNotInitialized indicates a Utility used before Init.
	ErrCodeNotInitialized ErrorCode = "NOT_INITIALIZED"
)

// BridgeError is returned by every operation in this package.
type BridgeError struct {
	Code    ErrorCode
	Message string
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, format string, args ...any) *BridgeError {
	return &BridgeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsUnknownProcedure reports whether err is an unknown-procedure error.
// Uses errors.As to handle wrapped errors.
func IsUnknownProcedure(err error) bool {
	return hasCode(err, ErrCodeUnknownProcedure)
}

// IsIllegalTransition reports whether err is an illegal thread transition.
func IsIllegalTransition(err error) bool {
	return hasCode(err, ErrCodeIllegalTransition)
}

func hasCode(err error, code ErrorCode) bool {
	var be *BridgeError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
