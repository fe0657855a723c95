package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"petverse/internal/domain/users"
)

// código SQLSTATE de unique_violation
const uniqueViolation = "23505"

// UsersRepo implementa users.Repository y users.PreferencesRepository.
type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (full_name, email, password_hash, user_type, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return users.User{}, users.ErrEmailTaken
	}
	if err != nil {
		return users.User{}, fmt.Errorf("postgres: insert user: %w", err)
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getOne(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, where string, arg any) (users.User, error) {
	var u users.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, password_hash, user_type, created_at, updated_at
		FROM users `+where, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, fmt.Errorf("postgres: get user: %w", err)
	}
	return u, nil
}

func (r *UsersRepo) GetSettings(ctx context.Context, userID int64) (users.Settings, error) {
	var s users.Settings
	err := r.getJSON(ctx, `SELECT settings FROM user_settings WHERE user_id = $1`, userID, &s)
	return s, err
}

func (r *UsersRepo) SaveSettings(ctx context.Context, userID int64, s users.Settings) error {
	return r.saveJSON(ctx, `
		INSERT INTO user_settings (user_id, settings) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET settings = EXCLUDED.settings
	`, userID, s)
}

func (r *UsersRepo) GetAddress(ctx context.Context, userID int64) (users.Address, error) {
	var a users.Address
	err := r.getJSON(ctx, `SELECT address FROM user_address WHERE user_id = $1`, userID, &a)
	return a, err
}

func (r *UsersRepo) SaveAddress(ctx context.Context, userID int64, a users.Address) error {
	return r.saveJSON(ctx, `
		INSERT INTO user_address (user_id, address) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET address = EXCLUDED.address
	`, userID, a)
}

// getJSON deja dst intacto si no hay fila.
func (r *UsersRepo) getJSON(ctx context.Context, query string, userID int64, dst any) error {
	var raw []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("postgres: get preferences: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("postgres: decode preferences: %w", err)
	}
	return nil
}

func (r *UsersRepo) saveJSON(ctx context.Context, query string, userID int64, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("postgres: encode preferences: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, userID, raw); err != nil {
		return fmt.Errorf("postgres: save preferences: %w", err)
	}
	return nil
}
