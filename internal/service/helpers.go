package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/kita-portal/kita-api/pkg/database"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/validation"
)

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// invalidPayload converts a validator error into VALIDATION_ERROR with per-field messages.
func invalidPayload(err error, entity string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+entity+" payload").
		WithDetails(validation.Messages(err))
}

// isMissing reports a row that cannot exist: no match, or an id Postgres cannot parse as uuid.
func isMissing(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || database.IsInvalidTextRepresentation(err)
}

// lookupError maps a failed single-row read to NOT_FOUND or an internal error.
func lookupError(err error, entity string) error {
	if isMissing(err) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Internal(err, "failed to load "+entity)
}

// writeError maps a failed write. A unique violation becomes duplicate when given, any other
// constraint violation becomes CONSTRAINT_VIOLATION and a missing row NOT_FOUND.
func writeError(err error, entity, op string, duplicate *appErrors.Error) error {
	switch {
	case isMissing(err):
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	case duplicate != nil && database.IsUniqueViolation(err):
		return appErrors.Wrap(err, duplicate.Code, duplicate.Status, duplicate.Message)
	case database.IsConstraintViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConstraintViolation.Code, appErrors.ErrConstraintViolation.Status, "constraint violated: "+database.ConstraintName(err))
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Internal(err, "failed to "+op+" "+entity)
}
