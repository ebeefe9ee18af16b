package database

import (
	"errors"

	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"

	codeInvalidTextRepresentation = "22P02"
)

// IsUniqueViolation reports whether err originates from a unique constraint.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsForeignKeyViolation reports whether err originates from a foreign key constraint.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

// IsConstraintViolation covers unique, foreign key and check constraints.
func IsConstraintViolation(err error) bool {
	return hasCode(err, codeUniqueViolation) || hasCode(err, codeForeignKeyViolation) || hasCode(err, codeCheckViolation)
}

// IsInvalidTextRepresentation reports whether a parameter could not be parsed into its column
// type, e.g. a malformed uuid.
func IsInvalidTextRepresentation(err error) bool {
	return hasCode(err, codeInvalidTextRepresentation)
}

// ConstraintName returns the violated constraint or index name, if any.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}
