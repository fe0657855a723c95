package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const defaultPingTimeout = 2 * time.Second

// CredentialStore implementa securestore.Storage sobre la tabla secure_storage.
// Sirve para hosts sin keychain donde varias instancias comparten sesión.
type CredentialStore struct {
	db          *sql.DB
	pingTimeout time.Duration
	now         func() time.Time
}

func NewCredentialStore(db *sql.DB) *CredentialStore {
	return &CredentialStore{
		db:          db,
		pingTimeout: defaultPingTimeout,
		now:         time.Now,
	}
}

// EnsureTable crea solo secure_storage. La CLI no necesita el resto del esquema.
func (s *CredentialStore) EnsureTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, secureStorageDDL); err != nil {
		return fmt.Errorf("postgres: create secure_storage: %w", err)
	}
	return nil
}

// Available hace un ping acotado; si falla, el tokenstore cae a memoria.
func (s *CredentialStore) Available(ctx context.Context) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()

	if err := s.db.PingContext(pingCtx); err != nil {
		return false, fmt.Errorf("postgres: ping: %w", err)
	}
	return true, nil
}

func (s *CredentialStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM secure_storage WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres: get secure value: %w", err)
	}
	return value, true, nil
}

func (s *CredentialStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO secure_storage (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value, s.now().UTC())
	if err != nil {
		return fmt.Errorf("postgres: set secure value: %w", err)
	}
	return nil
}

func (s *CredentialStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM secure_storage WHERE key = $1`, key); err != nil {
		return fmt.Errorf("postgres: delete secure value: %w", err)
	}
	return nil
}
