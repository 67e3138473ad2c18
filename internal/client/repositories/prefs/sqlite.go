package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/snaplet/snaplet/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pref[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, r.db, key, value)
}

func (r *SQLiteRepository) SetMany(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range keys {
			if err := set(ctx, tx, k, values[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM prefs WHERE key = ?`, k); err != nil {
				return fmt.Errorf("delete pref[%s]: %w", k, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM prefs`); err != nil {
		return fmt.Errorf("clear prefs: %w", err)
	}
	return nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, unixepoch())
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("set pref[%s]: %w", key, err)
	}
	return nil
}
