// Package errors provides error types and utilities for urldiff.
// It extends the standard errors package with context wrapping and the
// sentinels shared by the config, stream and CLI layers.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes a dedup run can hit.
var (
	// ErrInvalidInput indicates a value the engine cannot use
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates the configuration failed validation
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInputSource indicates the line source itself failed (open/read)
	ErrInputSource = errors.New("input source failed")

	// ErrOutput indicates accepted URLs could not be written
	ErrOutput = errors.New("output failed")

	// ErrCancelled indicates the run stopped consuming input before EOF
	ErrCancelled = errors.New("run cancelled")
)

// wrappedError wraps an error with additional context
type wrappedError struct {
	msg   string
	cause error
}

func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
//
// Example:
//
//	if err := scanner.Err(); err != nil {
//	    return errors.Wrap(err, "reading input")
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg:   msg,
		cause: err,
	}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// markedError classifies cause under a sentinel without changing its message.
type markedError struct {
	sentinel error
	cause    error
}

func (e *markedError) Error() string { return e.cause.Error() }

func (e *markedError) Unwrap() error { return e.cause }

func (e *markedError) Is(target error) bool { return target == e.sentinel }

// Mark attaches a sentinel to err so callers can classify it with Is while
// the message and the original cause stay unchanged.
// If err is nil, Mark returns nil.
func Mark(err, sentinel error) error {
	if err == nil {
		return nil
	}
	return &markedError{sentinel: sentinel, cause: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf formats according to a format specifier and returns the string as a value that satisfies error.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Join returns an error that wraps the given errors.
// Any nil error values are discarded.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// IsInvalidInput reports whether the error is an invalid input error
func IsInvalidInput(err error) bool {
	return Is(err, ErrInvalidInput)
}

// IsInvalidConfig reports whether the error is a configuration error
func IsInvalidConfig(err error) bool {
	return Is(err, ErrInvalidConfig)
}

// IsInputSource reports whether the error came from the line source
func IsInputSource(err error) bool {
	return Is(err, ErrInputSource)
}

// IsOutput reports whether the error came from writing accepted URLs
func IsOutput(err error) bool {
	return Is(err, ErrOutput)
}

// IsCancelled reports whether the run was cancelled
func IsCancelled(err error) bool {
	return Is(err, ErrCancelled)
}
