package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"

	"account-service/internal/domain"
)

// Open returns a bun handle over a pgx connection pool. Connections are
// established on first use.
func Open(dsn string, debug bool) (*bun.DB, error) {
	if dsn == "" {
		return nil, errors.New("database dsn is required")
	}
	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

// CreateSchema creates the service tables when they are missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	tables := []struct {
		model any
		fk    string
	}{
		{model: (*userRow)(nil)},
		{model: (*applicationRow)(nil)},
		{model: (*grantRow)(nil), fk: `("application_id") REFERENCES "applications" ("id") ON DELETE CASCADE`},
		{model: (*keyRow)(nil), fk: `("application_id") REFERENCES "applications" ("id") ON DELETE CASCADE`},
	}
	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		if t.fk != "" {
			q = q.ForeignKey(t.fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	_, err := db.NewCreateIndex().
		Model((*grantRow)(nil)).
		Unique().
		IfNotExists().
		Index("app_staff_application_user_key").
		Column("application_id", "user_id").
		Exec(ctx)
	return err
}

const (
	uniqueViolation     = "23505"
	invalidTextEncoding = "22P02"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
		case invalidTextEncoding:
			return fmt.Errorf("%w: malformed identifier", domain.ErrInvalidInput)
		}
	}
	return err
}
