package postgres

import (
	"context"
	"fmt"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, first_name, last_name, email, password_hash, role, created_at, photo_url, is_online, last_seen`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user; a taken email yields ErrDuplicateKey
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role,
		user.CreatedAt, user.PhotoURL, user.OnlineStatus.IsOnline, user.OnlineStatus.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile applies the non-nil fields of upd
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd repository.ProfileUpdate) error {
	query := `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			photo_url = COALESCE($4, photo_url)
		WHERE id = $1
	`
	if err := expectOne(r.db.Exec(ctx, query, id, upd.FirstName, upd.LastName, upd.PhotoURL)); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// UpdateOnlineStatus records presence for a user
func (r *UserRepository) UpdateOnlineStatus(ctx context.Context, id string, status models.OnlineStatus) error {
	query := `UPDATE users SET is_online = $2, last_seen = $3 WHERE id = $1`
	if err := expectOne(r.db.Exec(ctx, query, id, status.IsOnline, status.LastSeen)); err != nil {
		return fmt.Errorf("failed to update online status: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role,
		&u.CreatedAt, &u.PhotoURL, &u.OnlineStatus.IsOnline, &u.OnlineStatus.LastSeen,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}
