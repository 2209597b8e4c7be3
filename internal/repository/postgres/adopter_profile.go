package postgres

import (
	"context"
	"fmt"

	"pet-adoption-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdopterProfileRepository handles database operations for adoption user details
type AdopterProfileRepository struct {
	db *pgxpool.Pool
}

// NewAdopterProfileRepository creates a new adopter profile repository
func NewAdopterProfileRepository(db *pgxpool.Pool) *AdopterProfileRepository {
	return &AdopterProfileRepository{db: db}
}

// Create stores the intake of a user; a second intake yields ErrDuplicateKey
func (r *AdopterProfileRepository) Create(ctx context.Context, d *models.AdoptionUserDetails) error {
	query := `
		INSERT INTO adoption_user_details (
			id, user_id, address, above18, living_situation, garden_available,
			household_setting, activity_level, home_images, no_of_adults, no_of_children,
			visiting_children, anyone_allergic_to_pets, another_animal, lifestyle_patterns,
			planning_to_move_in_6_months, holiday_in_next_3_months,
			suitable_transport_for_animal, experience_with_animals, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	visiting := d.VisitingChildren
	if visiting == nil {
		visiting = []models.VisitingChild{}
	}
	_, err := r.db.Exec(ctx, query,
		d.ID, d.UserID, d.Address, d.Above18, d.LivingSituation, d.GardenAvailable,
		d.HouseholdSetting, d.ActivityLevel, d.HomeImages, d.NoOfAdults, d.NoOfChildren,
		visiting, d.AnyoneAllergicToPets, d.AnotherAnimal, d.LifestylePatterns,
		d.PlanningToMoveIn6Months, d.HolidayInNext3Months,
		d.SuitableTransportForAnimal, d.ExperienceWithAnimals, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create adoption user details: %w", mapError(err))
	}
	return nil
}

// GetByUserID retrieves the intake of a user
func (r *AdopterProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.AdoptionUserDetails, error) {
	query := `
		SELECT id, user_id, address, above18, living_situation, garden_available,
			household_setting, activity_level, home_images, no_of_adults, no_of_children,
			visiting_children, anyone_allergic_to_pets, another_animal, lifestyle_patterns,
			planning_to_move_in_6_months, holiday_in_next_3_months,
			suitable_transport_for_animal, experience_with_animals, created_at
		FROM adoption_user_details
		WHERE user_id = $1
	`
	var d models.AdoptionUserDetails
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&d.ID, &d.UserID, &d.Address, &d.Above18, &d.LivingSituation, &d.GardenAvailable,
		&d.HouseholdSetting, &d.ActivityLevel, &d.HomeImages, &d.NoOfAdults, &d.NoOfChildren,
		&d.VisitingChildren, &d.AnyoneAllergicToPets, &d.AnotherAnimal, &d.LifestylePatterns,
		&d.PlanningToMoveIn6Months, &d.HolidayInNext3Months,
		&d.SuitableTransportForAnimal, &d.ExperienceWithAnimals, &d.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get adoption user details: %w", mapError(err))
	}
	return &d, nil
}
