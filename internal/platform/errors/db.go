package errors

import (
	"context"
	stderrs "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLSTATE classes we map, everything else is a plain DB error
var pgCodes = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,
	"23502": ErrorCodeValidation,
	"23514": ErrorCodeValidation,
	"22001": ErrorCodeInvalidArgument,
	"22P02": ErrorCodeInvalidArgument,
	"25006": ErrorCodeUnavailable, // read only transaction
	"57P01": ErrorCodeUnavailable, // admin shutdown
	"57P03": ErrorCodeUnavailable, // cannot connect now
	"40001": ErrorCodeUnavailable, // serialization failure
	"40P01": ErrorCodeUnavailable, // deadlock
	"55P03": ErrorCodeUnavailable, // lock not available
}

// DBCode classifies a driver error from postgres or sqlite
// ok is false when err came from neither
func DBCode(err error) (code ErrorCode, ok bool) {
	if pe := (*pgconn.PgError)(nil); stderrs.As(err, &pe) {
		if c, hit := pgCodes[pe.Code]; hit {
			return c, true
		}
		return ErrorCodeDB, true
	}
	if se := (*sqlite.Error)(nil); stderrs.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrorCodeDuplicateKey, true
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
			return ErrorCodeValidation, true
		}
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN:
			return ErrorCodeUnavailable, true
		}
		return ErrorCodeDB, true
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeUnknown, false
}

// FromDB wraps a storage error under its mapped code, nil stays nil
// a deadline counts as unavailable, a cancellation does not
func FromDB(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	code, ok := DBCode(err)
	switch {
	case stderrs.Is(err, context.Canceled):
		code = ErrorCodeDB
	case stderrs.Is(err, context.DeadlineExceeded):
		code = ErrorCodeUnavailable
	case !ok:
		code = ErrorCodeDB
	}
	return Wrap(err, code, fmt.Sprintf(format, a...))
}
