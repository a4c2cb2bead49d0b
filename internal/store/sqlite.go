// internal/store/sqlite.go
//
// SQLite implementation of KV: one row per key in the kv table
// (see assets/sql). Each Apply is a single transaction.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// SQLite stores each key as one row of the kv table.
type SQLite struct{ db *sql.DB }

func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

func (s *SQLite) GetString(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLite) GetInt(ctx context.Context, key string) (int, bool, error) {
	v, ok, err := s.GetString(ctx, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, fmt.Errorf("key %s: %w", key, err)
	}
	return n, true, nil
}

func (s *SQLite) Edit() Editor { return &sqliteEditor{db: s.db, p: newPending()} }

type sqliteEditor struct {
	db *sql.DB
	p  pending
}

func (e *sqliteEditor) PutInt(key string, v int) Editor {
	e.p.putInt(key, v)
	return e
}

func (e *sqliteEditor) PutString(key, v string) Editor {
	e.p.put(key, v)
	return e
}

// Apply upserts the whole batch inside one transaction.
func (e *sqliteEditor) Apply(ctx context.Context) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, k := range e.p.keys {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
			k, e.p.vals[k], now,
		); err != nil {
			return fmt.Errorf("put %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
