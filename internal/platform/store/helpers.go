package store

import (
	"context"
	"database/sql"
	"errors"

	perr "toxlens/internal/platform/errors"

	"github.com/jackc/pgx/v5"
)

// Scalar queries the first row, first column into T
// a missing row comes back as perr.ErrNotFound for both drivers
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		if IsNoRows(err) {
			return zero, perr.ErrNotFound
		}
		return zero, err
	}
	return v, nil
}

// IsNoRows reports a missing row from either driver
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
