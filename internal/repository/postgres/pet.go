package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const petColumns = `id, name, species, age, characteristics, status, created_at, breed,
	donor_id, size, rehome_reasons, location, color, photo_url`

// PetRepository handles database operations for pets
type PetRepository struct {
	db *pgxpool.Pool
}

// NewPetRepository creates a new pet repository
func NewPetRepository(db *pgxpool.Pool) *PetRepository {
	return &PetRepository{db: db}
}

// Create creates a new pet listing
func (r *PetRepository) Create(ctx context.Context, p *models.Pet) error {
	query := `
		INSERT INTO pets (` + petColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Species, p.Age, p.Characteristics, p.Status, p.CreatedAt, p.Breed,
		p.DonorID, p.Size, p.RehomeReasons, p.Location, p.Color, p.PhotoURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a pet by ID
func (r *PetRepository) GetByID(ctx context.Context, id string) (*models.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE id = $1`
	pet, err := scanPet(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return pet, nil
}

// List retrieves pets matching filter, newest first, with the total match count
func (r *PetRepository) List(ctx context.Context, f repository.PetFilter) ([]*models.Pet, int, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Species != "" {
		add("species = $%d", f.Species)
	}
	if f.DonorID != "" {
		add("donor_id = $%d", f.DonorID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pets`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pets: %w", err)
	}

	query := `SELECT ` + petColumns + ` FROM pets` + clause +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pets: %w", err)
	}
	defer rows.Close()

	var pets []*models.Pet
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating pets: %w", err)
	}
	return pets, total, nil
}

// UpdatePhoto sets the photo URL of a pet
func (r *PetRepository) UpdatePhoto(ctx context.Context, id, photoURL string) error {
	query := `UPDATE pets SET photo_url = $2 WHERE id = $1`
	if err := expectOne(r.db.Exec(ctx, query, id, photoURL)); err != nil {
		return fmt.Errorf("failed to update pet photo: %w", err)
	}
	return nil
}

// TransitionStatus moves a pet between statuses only if it is still in from
func (r *PetRepository) TransitionStatus(ctx context.Context, id string, from, to models.PetStatus) error {
	query := `UPDATE pets SET status = $3 WHERE id = $1 AND status = $2`
	err := expectOne(r.db.Exec(ctx, query, id, from, to))
	if errors.Is(err, repository.ErrNotFound) {
		var exists bool
		if qerr := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pets WHERE id = $1)`, id).Scan(&exists); qerr != nil {
			return fmt.Errorf("failed to check pet existence: %w", qerr)
		}
		if exists {
			return fmt.Errorf("pet %s is no longer %s: %w", id, from, repository.ErrStaleState)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to transition pet status: %w", err)
	}
	return nil
}

func scanPet(row pgx.Row) (*models.Pet, error) {
	var p models.Pet
	err := row.Scan(
		&p.ID, &p.Name, &p.Species, &p.Age, &p.Characteristics, &p.Status, &p.CreatedAt, &p.Breed,
		&p.DonorID, &p.Size, &p.RehomeReasons, &p.Location, &p.Color, &p.PhotoURL,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

// PetFeaturesRepository handles database operations for pet features
type PetFeaturesRepository struct {
	db *pgxpool.Pool
}

// NewPetFeaturesRepository creates a new pet features repository
func NewPetFeaturesRepository(db *pgxpool.Pool) *PetFeaturesRepository {
	return &PetFeaturesRepository{db: db}
}

// Upsert stores the features of a pet, replacing any previous set.
// The stored id is kept when the row already exists.
func (r *PetFeaturesRepository) Upsert(ctx context.Context, f *models.PetFeatures) error {
	query := `
		INSERT INTO pet_features (
			id, pet_id, description, live_with_children, microchipped, house_trained,
			has_behavioural_issues, live_with_dogs, shots_up_to_date, live_with_cats, spayed_or_neutered
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (pet_id) DO UPDATE SET
			description = EXCLUDED.description,
			live_with_children = EXCLUDED.live_with_children,
			microchipped = EXCLUDED.microchipped,
			house_trained = EXCLUDED.house_trained,
			has_behavioural_issues = EXCLUDED.has_behavioural_issues,
			live_with_dogs = EXCLUDED.live_with_dogs,
			shots_up_to_date = EXCLUDED.shots_up_to_date,
			live_with_cats = EXCLUDED.live_with_cats,
			spayed_or_neutered = EXCLUDED.spayed_or_neutered
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		f.ID, f.PetID, f.Description, f.LiveWithChildren, f.Microchipped, f.HouseTrained,
		f.HasBehaviouralIssues, f.LiveWithDogs, f.ShotsUpToDate, f.LiveWithCats, f.SpayedOrNeutered,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert pet features: %w", mapError(err))
	}
	return nil
}

// GetByPetID retrieves the features of a pet
func (r *PetFeaturesRepository) GetByPetID(ctx context.Context, petID string) (*models.PetFeatures, error) {
	query := `
		SELECT id, pet_id, description, live_with_children, microchipped, house_trained,
			has_behavioural_issues, live_with_dogs, shots_up_to_date, live_with_cats, spayed_or_neutered
		FROM pet_features
		WHERE pet_id = $1
	`
	var f models.PetFeatures
	err := r.db.QueryRow(ctx, query, petID).Scan(
		&f.ID, &f.PetID, &f.Description, &f.LiveWithChildren, &f.Microchipped, &f.HouseTrained,
		&f.HasBehaviouralIssues, &f.LiveWithDogs, &f.ShotsUpToDate, &f.LiveWithCats, &f.SpayedOrNeutered,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get pet features: %w", mapError(err))
	}
	return &f, nil
}
