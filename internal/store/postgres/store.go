// Package postgres opens the PostgreSQL-backed store through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/humidorapp/humidor-server/internal/store/sqldb"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Dialect is the PostgreSQL flavor of sqldb.Dialect.
var Dialect = sqldb.Dialect{
	Name:       "postgres",
	Numbered:   true,
	EncodeTime: sqldb.NativeTime,
	IsUniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
	},
}

// Open connects to dsn, verifies connectivity and applies the schema.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*sqldb.Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres DSN is empty")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("postgres database opened")
	}
	return sqldb.New(db, Dialect, logger), nil
}
