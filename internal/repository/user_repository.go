package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

// UserRepository manages persistence for API accounts and their refresh
// tokens.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail fetches a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password_hash, full_name, role, teacher_id, active, last_login_at, created_at, updated_at
        FROM users WHERE email = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID fetches a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, password_hash, full_name, role, teacher_id, active, last_login_at, created_at, updated_at
        FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastLogin records a successful authentication.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	query := "UPDATE users SET last_login_at = $2, updated_at = $2 WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}

// SaveRefreshToken persists a refresh token.
func (r *UserRepository) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked)
        VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked)`
	_, err := r.db.NamedExecContext(ctx, query, token)
	return err
}

// FindRefreshToken fetches a refresh token by its opaque value.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at
        FROM refresh_tokens WHERE token = $1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken invalidates a refresh token.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, at time.Time) error {
	query := "UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}
