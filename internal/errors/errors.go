// Package errors provides custom error types and exit codes for sdmc.
package errors

import (
	"errors"
	"fmt"
)

// StorageError is a custom error type that provides context about card operations.
type StorageError struct {
	Op   string // Operation being performed (e.g., "mount", "read file")
	Path string // Card path involved
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// HardwareError reports a bring-up failure with the raw driver error code
// so the condition can be debugged offline.
type HardwareError struct {
	Code int   // Raw driver error code
	Err  error // Underlying error, if any
}

// Error implements the error interface.
func (e *HardwareError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hardware fault (driver code 0x%x): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("hardware fault (driver code 0x%x)", e.Code)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *HardwareError) Unwrap() error {
	return e.Err
}

// Predefined errors for common scenarios.
var (
	ErrInvalidConfig  = fmt.Errorf("invalid bus configuration")
	ErrNotMounted     = fmt.Errorf("card not mounted")
	ErrAlreadyMounted = fmt.Errorf("card already mounted")
	ErrUnformatted    = fmt.Errorf("filesystem needs format, not auto-formatting")
	ErrMountTimeout   = fmt.Errorf("card did not respond before timeout")
)

// Exit codes - use these constants in CLI commands instead of hardcoding values.
const (
	ExitSuccess        = 0 // Success
	ExitGeneralError   = 1 // General error (I/O, permissions)
	ExitConfigError    = 2 // Configuration error (invalid lines, width, config file)
	ExitMountError     = 3 // Bring-up error (unformatted, timeout, hardware fault)
	ExitOperationError = 4 // File operation error on a mounted card
)

// IsError checks if the given error matches the target error using errors.Is.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
