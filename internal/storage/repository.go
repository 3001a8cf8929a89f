package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finsight/internal/api"
	"finsight/internal/session"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable session store: the token and user survive
// process restarts until an explicit logout. A single row (id = 1) holds the
// at-most-one active session per client instance.
type SQLiteRepository struct {
	db *sql.DB
}

var _ session.Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the persisted session. A missing row or a row whose user payload
// no longer parses is reported as absent, never as an error.
func (r *SQLiteRepository) Load(ctx context.Context) (session.Record, bool, error) {
	var token, userJSON string
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_json FROM sessions WHERE id = 1`).Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Record{}, false, nil
	}
	if err != nil {
		return session.Record{}, false, fmt.Errorf("load session: %w", err)
	}

	var user api.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		slog.WarnContext(ctx, "Persisted session is malformed, treating as absent", "error", err)
		return session.Record{}, false, nil
	}

	return session.Record{Token: token, User: user}, true, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, rec session.Record) error {
	userJSON, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, user_json, saved_at)
		VALUES (1, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			saved_at = excluded.saved_at`,
		rec.Token, string(userJSON))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	slog.InfoContext(ctx, "Session saved", "user_id", rec.User.ID)
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CorruptForTest overwrites the stored user payload with unparseable bytes.
// Only tests use this; it exists because the malformed-data path cannot be
// reached through the public API.
func (r *SQLiteRepository) CorruptForTest(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET user_json = '{not json' WHERE id = 1`)
	return err
}
