// Package apperrors defines application-level error types.
//
// Every failure returned by the settings and Waybar services carries one of
// the Kind values below. Callers classify errors with errors.Is:
//
//	if errors.Is(err, apperrors.KindNotFound) { ... }
//
// Context cancellation is the one exception: an operation whose context is
// done returns ctx.Err() unwrapped, so KindOf reports "" and callers match it
// with errors.Is(err, context.Canceled).
//
// Message text shown to users is produced by the command layer, not here.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindCorrupted means a document exists and is valid JSON but has the wrong shape.
	KindCorrupted Kind = "corrupted"
	// KindFileRead means reading a file failed.
	KindFileRead Kind = "file_read"
	// KindFileWrite means writing or renaming a file failed.
	KindFileWrite Kind = "file_write"
	// KindJSONParse means a document could not be decoded.
	KindJSONParse Kind = "json_parse"
	// KindValidation means a document failed field-level constraints.
	KindValidation Kind = "validation"
	// KindNotFound means a referenced profile does not exist.
	KindNotFound Kind = "not_found"
	// KindConflict means the operation would break a repository invariant.
	KindConflict Kind = "conflict"
)

// Error lets a Kind be used directly as an errors.Is target.
func (k Kind) Error() string {
	return string(k)
}

// KindOf returns the kind carried by err, or "" when err is not classified.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var kinded interface{ ErrorKind() Kind }
	if errors.As(err, &kinded) {
		return kinded.ErrorKind()
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}

// StoreError indicates a failure reading, decoding or writing an on-disk document.
type StoreError struct {
	Cause error
	Kind  Kind
	Op    string // load, save, rename, ...
	Path  string
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is matches the error's Kind.
func (e *StoreError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// ErrorKind returns the classification.
func (e *StoreError) ErrorKind() Kind {
	return e.Kind
}

// NewFileReadError wraps an I/O failure while reading path.
func NewFileReadError(path string, cause error) *StoreError {
	return &StoreError{Kind: KindFileRead, Op: "read", Path: path, Cause: cause}
}

// NewFileWriteError wraps an I/O failure while writing path.
func NewFileWriteError(path string, cause error) *StoreError {
	return &StoreError{Kind: KindFileWrite, Op: "write", Path: path, Cause: cause}
}

// NewJSONParseError wraps a decode failure for path.
func NewJSONParseError(path string, cause error) *StoreError {
	return &StoreError{Kind: KindJSONParse, Op: "parse", Path: path, Cause: cause}
}

// NewCorruptedError reports a document at path with an unexpected structure.
func NewCorruptedError(path string, cause error) *StoreError {
	return &StoreError{Kind: KindCorrupted, Op: "load", Path: path, Cause: cause}
}

// ValidationError indicates settings or profile validation failed.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%d issues)", e.Field, e.Message, len(e.Details))
}

// Is matches KindValidation.
func (e *ValidationError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == KindValidation
}

// ErrorKind returns KindValidation.
func (e *ValidationError) ErrorKind() Kind {
	return KindValidation
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// ProfileError indicates a profile repository operation was refused.
type ProfileError struct {
	Kind      Kind
	ProfileID string
	Message   string
}

func (e *ProfileError) Error() string {
	if e.ProfileID == "" {
		return "profile: " + e.Message
	}
	return fmt.Sprintf("profile %q: %s", e.ProfileID, e.Message)
}

// Is matches the error's Kind.
func (e *ProfileError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// ErrorKind returns the classification.
func (e *ProfileError) ErrorKind() Kind {
	return e.Kind
}

// NewNotFoundError reports a missing profile.
func NewNotFoundError(profileID string) *ProfileError {
	return &ProfileError{Kind: KindNotFound, ProfileID: profileID, Message: "not found"}
}

// NewNoActiveProfileError reports an unset active pointer.
func NewNoActiveProfileError() *ProfileError {
	return &ProfileError{Kind: KindNotFound, Message: "no active profile selected"}
}

// NewConflictError reports an operation that would violate a repository invariant.
func NewConflictError(profileID, message string) *ProfileError {
	return &ProfileError{Kind: KindConflict, ProfileID: profileID, Message: message}
}
