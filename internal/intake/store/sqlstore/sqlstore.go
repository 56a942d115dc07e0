// Package sqlstore implements the store repositories on database/sql. The
// sqlite and postgres drivers supply a Dialect and their own migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/leadflow/internal/intake/store"
)

// Dialect captures what differs between the supported databases.
type Dialect struct {
	Name string

	// Numbered switches "?" placeholders to "$1", "$2", ...
	Numbered bool

	// UniqueViolation reports whether err is a unique or primary key clash
	// and returns the constraint name or message for it.
	UniqueViolation func(err error) (constraint string, ok bool)
}

func (d Dialect) rebind(q string) string {
	if !d.Numbered {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type conn struct {
	q querier
	d Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.d.rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.d.rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.rebind(query), args...)
}

// Store is the database/sql implementation of store.Store minus migrations,
// which the driver packages provide.
type Store struct {
	db *sql.DB
	d  Dialect
}

func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d}
}

// DB exposes the pool to driver packages for migrations.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error                   { return s.db.Close() }
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) ApplyMigrations() error         { return errors.New("sqlstore: migrations are driver specific") }

func (s *Store) Users() store.Users           { return &usersRepo{conn{s.db, s.d}} }
func (s *Store) Challenges() store.Challenges { return &challengesRepo{conn{s.db, s.d}} }
func (s *Store) Documents() store.Documents   { return &documentsRepo{conn{s.db, s.d}} }

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, d: s.d}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type txStore struct {
	tx *sql.Tx
	d  Dialect
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                 { return nil }
func (t *txStore) Ping(context.Context) error   { return nil }
func (t *txStore) ApplyMigrations() error       { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }
func (t *txStore) WithTx(context.Context, func(store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users           { return &usersRepo{conn{t.tx, t.d}} }
func (t *txStore) Challenges() store.Challenges { return &challengesRepo{conn{t.tx, t.d}} }
func (t *txStore) Documents() store.Documents   { return &documentsRepo{conn{t.tx, t.d}} }
