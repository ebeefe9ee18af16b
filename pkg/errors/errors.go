package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
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

// Is matches errors sharing the same code so callers can use errors.Is against the predefined values.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// WithDetails returns a copy carrying per-field messages.
func (e *Error) WithDetails(details map[string]string) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Details = details
	return &clone
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	ErrInvalidRole         = New("INVALID_ROLE", http.StatusBadRequest, "invalid role")
	ErrInvalidRelationKind = New("INVALID_RELATION_KIND", http.StatusBadRequest, "invalid relationship kind")
	ErrInvalidTimeRange    = New("INVALID_TIME_RANGE", http.StatusBadRequest, "start time must be before end time")
	ErrInvalidDateRange    = New("INVALID_DATE_RANGE", http.StatusBadRequest, "valid from must not be after valid to")

	ErrDuplicateEmail    = New("DUPLICATE_EMAIL", http.StatusConflict, "email already used")
	ErrDuplicateMealSlot = New("DUPLICATE_MEAL_SLOT", http.StatusConflict, "meal already planned for this date and type")
	ErrDuplicateLink     = New("DUPLICATE_LINK", http.StatusConflict, "child already linked to this parent")

	ErrLastAdminProtected   = New("LAST_ADMIN_PROTECTED", http.StatusConflict, "the last administrator cannot be deleted")
	ErrGroupHasChildren     = New("GROUP_HAS_CHILDREN", http.StatusConflict, "group still has children")
	ErrTeacherHasSchedule   = New("TEACHER_HAS_SCHEDULE", http.StatusConflict, "teacher still has schedule entries")
	ErrTeacherAlreadyLinked = New("TEACHER_ALREADY_LINKED", http.StatusConflict, "teacher already linked to another employee")
	ErrTeacherNotFound      = New("TEACHER_NOT_FOUND", http.StatusNotFound, "teacher not found")

	ErrConstraintViolation = New("CONSTRAINT_VIOLATION", http.StatusConflict, "constraint violation")
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

// Internal wraps an infrastructure failure with a message.
func Internal(err error, message string) *Error {
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, message)
}
