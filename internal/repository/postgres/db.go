// Package postgres implements the repository contract on PostgreSQL.
// Foreign keys and unique constraints in schema.sql back the invariants
// the services check before writing.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pet-adoption-backend/internal/repository"
)

//go:embed schema.sql
var schema string

// Connect opens a pool and verifies the connection
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates tables and indexes that do not exist yet
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// NewStore builds every repository on top of one pool
func NewStore(db *pgxpool.Pool) *repository.Store {
	return &repository.Store{
		Users:           NewUserRepository(db),
		AdopterProfiles: NewAdopterProfileRepository(db),
		Pets:            NewPetRepository(db),
		PetFeatures:     NewPetFeaturesRepository(db),
		Conversations:   NewConversationRepository(db),
		Messages:        NewMessageRepository(db),
		Reports:         NewReportRepository(db),
		Adoptions:       NewAdoptionRepository(db),
	}
}

// mapError translates driver errors into repository sentinels
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", repository.ErrDuplicateKey, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", repository.ErrInvalidReference, pgErr.ConstraintName)
		}
	}
	return err
}

// expectOne returns ErrNotFound when an update touched no rows
func expectOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
