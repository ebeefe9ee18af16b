package repository

import (
	"database/sql"
	"fmt"
)

// affectedOne turns an update or delete that touched no row into sql.ErrNoRows.
func affectedOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
