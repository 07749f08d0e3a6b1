package postgres

import (
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-web/internal/domain"
)

// Open builds a bun.DB over the pgdriver connector and registers the m2m
// join model so relation queries work.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel((*domain.GroupQuiz)(nil))
	return db
}

// mapError converts driver-level errors into the domain taxonomy. field
// names the column whose unique index can fire for the statement.
func mapError(err error, field, value string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
		return &domain.DuplicateError{Field: field, Value: value}
	}
	return err
}
