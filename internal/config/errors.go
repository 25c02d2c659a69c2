package config

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes configuration errors.
type ErrorCode string

const (
	// ErrCodeMissingParameter indicates a required fitted constant is absent.
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"

	// ErrCodeInvalidParameter indicates a constant is present but unusable
	// (non-finite, non-positive SD, unknown field, malformed document).
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// ErrCodeUnknownMode indicates an unrecognized variant mode name.
	ErrCodeUnknownMode ErrorCode = "UNKNOWN_MODE"

	// ErrCodeDosageTable indicates a malformed dosage table or a lookup key
	// beyond the table's last threshold.
	ErrCodeDosageTable ErrorCode = "DOSAGE_TABLE"
)

// Error is a configuration error detected at setup.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Param names the offending parameter, mode or table, if any.
	Param string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a configuration error.
func NewError(code ErrorCode, param, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Param:   param,
	}
}

// HasCode reports whether err wraps a configuration error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsUnknownMode returns true if err is an unknown variant mode error.
func IsUnknownMode(err error) bool {
	return HasCode(err, ErrCodeUnknownMode)
}

// IsDosageTable returns true if err is a dosage table error.
func IsDosageTable(err error) bool {
	return HasCode(err, ErrCodeDosageTable)
}

// IsParameterError returns true for missing or invalid fitted constants.
func IsParameterError(err error) bool {
	return HasCode(err, ErrCodeMissingParameter) || HasCode(err, ErrCodeInvalidParameter)
}
