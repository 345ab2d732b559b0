package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness. Details, when
// present, enumerate the specific constraints an enrollment batch violated.
type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. Validation rejections carry one reason code per
// violated enrollment constraint so callers can render a precise message.
var (
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrEmptySelection      = New("EMPTY_SELECTION", http.StatusBadRequest, "no subjects selected")
	ErrDuplicateEnrollment = New("DUPLICATE_ENROLLMENT", http.StatusConflict, "subject already has a record for this term")
	ErrUnitCapExceeded     = New("UNIT_CAP_EXCEEDED", http.StatusBadRequest, "selected units exceed the applicable cap")
	ErrPrerequisitesUnmet  = New("PREREQUISITES_UNMET", http.StatusBadRequest, "one or more subjects have unmet prerequisites")
	ErrSectionFull         = New("SECTION_FULL", http.StatusConflict, "section has no remaining capacity")
	ErrSectionClosed       = New("SECTION_CLOSED", http.StatusConflict, "section is not open for enrollment")
	ErrConcurrencyConflict = New("CONCURRENCY_CONFLICT", http.StatusConflict, "concurrent enrollment conflict, retry the request")
	ErrCycleDetected       = New("CYCLE_DETECTED", http.StatusInternalServerError, "prerequisite graph contains a cycle")
	ErrConfiguration       = New("CONFIGURATION_ERROR", http.StatusInternalServerError, "invalid academic configuration")
	ErrNoActiveTerm        = New("NO_ACTIVE_TERM", http.StatusPreconditionFailed, "no active term for the student's level")
	ErrNoCurriculum        = New("NO_CURRICULUM", http.StatusPreconditionFailed, "student has no assigned curriculum")
	ErrMappingMissing      = New("MAPPING_MISSING", http.StatusPreconditionFailed, "subject has no placement in the curriculum")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithDetails returns a copy of the error carrying per-constraint detail
// strings.
func WithDetails(err *Error, details ...string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Details = append(clone.Details[:len(clone.Details):len(clone.Details)], details...)
	return &clone
}

// Is reports whether err carries the same reason code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
