package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("workflow precondition violated")
	ErrEmailTaken = errors.New("email already registered")
)

// Коды ошибок PostgreSQL, которые различает слой хранения.
const (
	raiseExceptionCode      = "P0001"
	noDataFoundCode         = "P0002"
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	invalidTextCode         = "22P02"
)

// mapError переводит ошибки драйвера в ошибки репозитория.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case raiseExceptionCode:
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
	case noDataFoundCode, foreignKeyViolationCode, invalidTextCode:
		return fmt.Errorf("%w: %s", ErrNotFound, pgErr.Message)
	case uniqueViolationCode:
		if pgErr.ConstraintName == "users_email_key" {
			return ErrEmailTaken
		}
	}
	return err
}
