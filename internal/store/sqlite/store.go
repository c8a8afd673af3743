// Package sqlite opens the SQLite-backed store.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/humidorapp/humidor-server/internal/store/sqldb"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Dialect is the SQLite flavor of sqldb.Dialect.
var Dialect = sqldb.Dialect{
	Name:       "sqlite",
	EncodeTime: sqldb.FormatTime,
	IsUniqueViolation: func(err error) bool {
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

// Pragmas applied to every pooled connection.
var pragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
	"busy_timeout(5000)",
}

// Open opens (or creates) the database file at path and applies the schema.
func Open(path string, logger *slog.Logger) (*sqldb.Store, error) {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	// Writers take the lock up front so concurrent transactions wait on
	// busy_timeout instead of failing on upgrade.
	q.Set("_txlock", "immediate")

	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("sqlite database opened", "path", path)
	}
	return sqldb.New(db, Dialect, logger), nil
}
