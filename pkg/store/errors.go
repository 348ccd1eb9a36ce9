package store

import (
	"database/sql"

	"github.com/iov-one/weave/errors"
	"github.com/lib/pq"
)

var (
	// Archive errors start from 2000

	// ErrConflict is returned when a round is archived twice or another
	// constraint rejects the row.
	ErrConflict = errors.Register(2000, "conflict")
	// ErrLimit is returned when a page size exceeds MaxPageSize.
	ErrLimit = errors.Register(2001, "limit")
	// ErrRange is returned for an empty or inverted round range.
	ErrRange = errors.Register(2002, "invalid range")
)

// pgClasses maps Postgres error classes (the first two characters of the
// SQLSTATE) to archive errors.
var pgClasses = map[pq.ErrorClass]*errors.Error{
	"02": errors.ErrNotFound,
	"22": errors.ErrInput,
	"23": ErrConflict,
}

func wrapPgErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(castPgErr(err), msg)
}

func castPgErr(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return errors.ErrNotFound
	}

	e, ok := err.(*pq.Error)
	if !ok {
		return err
	}
	if registered, ok := pgClasses[e.Code.Class()]; ok {
		return errors.Wrap(registered, e.Message)
	}
	return errors.Wrap(err, string(e.Code))
}
