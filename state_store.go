package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const (
	stateKeyAuthToken   = "auth_token"
	stateKeyShowBackNav = "show_back_nav"
)

// stateStore persists the dashboard's client-local state: the backend bearer
// token and the back-navigation preference flag. Values are read fresh on
// every access, never cached, so a token change is visible to the very next
// gateway call.
type stateStore struct {
	db *sql.DB
}

func openStateStore(path string) (*stateStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	store := &stateStore{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *stateStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate state store: %w", err)
	}
	return nil
}

func (s *stateStore) Close() error { return s.db.Close() }

func (s *stateStore) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *stateStore) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *stateStore) delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = $1`, key)
	return err
}

// Token implements CredentialProvider.
func (s *stateStore) Token(ctx context.Context) (string, error) {
	return s.get(ctx, stateKeyAuthToken)
}

func (s *stateStore) SetToken(ctx context.Context, token string) error {
	return s.set(ctx, stateKeyAuthToken, token)
}

func (s *stateStore) ClearToken(ctx context.Context) error {
	return s.delete(ctx, stateKeyAuthToken)
}

func (s *stateStore) ShowBackNav(ctx context.Context) (bool, error) {
	value, err := s.get(ctx, stateKeyShowBackNav)
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

func (s *stateStore) SetShowBackNav(ctx context.Context, show bool) error {
	if show {
		return s.set(ctx, stateKeyShowBackNav, "true")
	}
	return s.set(ctx, stateKeyShowBackNav, "false")
}
