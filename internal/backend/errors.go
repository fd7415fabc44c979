package backend

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error represents a failure in the backend layer: configuration,
// compilation targeting, submission or result retrieval.
//
// Error includes structured fields for diagnostics; Code identifies the
// category for programmatic handling.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Device identifies the target device, when known.
	Device string

	// RunID identifies the affected job, when one exists.
	RunID uuid.UUID
}

// ErrorCode categorizes backend errors.
type ErrorCode string

const (
	// ErrCodeAuthenticationMissing indicates no access credential could
	// be resolved from any source.
	ErrCodeAuthenticationMissing ErrorCode = "AUTHENTICATION_MISSING"

	// ErrCodeUnsupportedDevice indicates the device's native operation
	// set is outside what this backend can target.
	ErrCodeUnsupportedDevice ErrorCode = "UNSUPPORTED_DEVICE"

	// ErrCodeInvalidTopology indicates the device reported a
	// connectivity graph inconsistent with its qubit list.
	ErrCodeInvalidTopology ErrorCode = "INVALID_TOPOLOGY"

	// ErrCodeJobFailed indicates the server reported the job failed or
	// was aborted.
	ErrCodeJobFailed ErrorCode = "JOB_FAILED"

	// ErrCodeTimeout indicates results did not arrive within the wait
	// window.
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeNotRun indicates a result was requested for a handle this
	// backend never submitted.
	ErrCodeNotRun ErrorCode = "NOT_RUN"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.RunID != uuid.Nil:
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
	case e.Device != "":
		return fmt.Sprintf("%s: %s (device=%s)", e.Code, e.Message, e.Device)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsAuthenticationMissing returns true if the error is a missing
// credential error. Uses errors.As to handle wrapped errors.
func IsAuthenticationMissing(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == ErrCodeAuthenticationMissing
}

// IsJobFailed returns true if the error reports a failed or aborted job.
func IsJobFailed(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == ErrCodeJobFailed
}

// IsTimeout returns true if the error reports a result wait timeout.
func IsTimeout(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == ErrCodeTimeout
}

// IsNotRun returns true if the error reports an unknown handle.
func IsNotRun(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == ErrCodeNotRun
}

// NewAuthenticationMissingError creates an Error for unresolvable
// credentials.
func NewAuthenticationMissingError() *Error {
	return &Error{
		Code:    ErrCodeAuthenticationMissing,
		Message: "no IQM access credentials provided or found in config file",
	}
}
