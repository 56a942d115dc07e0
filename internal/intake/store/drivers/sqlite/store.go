package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aussiebroadwan/leadflow/internal/intake/store/sqlstore"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	*sqlstore.Store
	dsn string
}

// NewStore opens the sqlite database at dsn with foreign keys enforced.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Each connection to :memory: is its own database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		Store: sqlstore.New(db, Dialect),
		dsn:   dsn,
	}, nil
}

var Dialect = sqlstore.Dialect{
	Name:            "sqlite",
	UniqueViolation: uniqueViolation,
}

func uniqueViolation(err error) (string, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return "", false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return se.Error(), true
	}
	return "", false
}
