package errors

import (
	stderrs "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FromPG classifies a pgx error into a structured *Error.
// nil passes through; pgx.ErrNoRows becomes NotFound
func FromPG(err error, op string) error {
	if err == nil {
		return nil
	}
	if stderrs.Is(err, pgx.ErrNoRows) {
		return Wrapf(err, ErrorCodeNotFound, "%s: no rows", op)
	}

	var pge *pgconn.PgError
	if stderrs.As(err, &pge) {
		switch pge.Code {
		case "23505": // unique_violation
			return Wrapf(err, ErrorCodeDuplicateKey, "%s: duplicate key (%s)", op, pge.ConstraintName)
		case "23503": // foreign_key_violation
			return Wrapf(err, ErrorCodeConflict, "%s: fk violation (%s)", op, pge.ConstraintName)
		case "23514": // check_violation
			return Wrapf(err, ErrorCodeValidation, "%s: check violation (%s)", op, pge.ConstraintName)
		case "22P02": // invalid_text_representation, e.g. a malformed uuid
			return Wrapf(err, ErrorCodeInvalidArgument, "%s: invalid value", op)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return Wrapf(err, ErrorCodeUnavailable, "%s: retryable tx failure", op)
		case "57014": // query_canceled
			return Wrapf(err, ErrorCodeUnavailable, "%s: query canceled", op)
		}
		if len(pge.Code) >= 2 {
			switch pge.Code[:2] {
			case "08": // connection exceptions
				return Wrapf(err, ErrorCodeUnavailable, "%s: connection failure", op)
			case "53": // insufficient resources
				return Wrapf(err, ErrorCodeUnavailable, "%s: insufficient resources", op)
			}
		}
		return Wrapf(err, ErrorCodeDB, "%s: pg error %s", op, pge.Code)
	}

	return Wrapf(err, ErrorCodeDB, "%s: db error", op)
}
