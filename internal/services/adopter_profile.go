package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
	"pet-adoption-backend/internal/validation"

	"github.com/google/uuid"
)

// AdopterProfileService handles the adoption eligibility intake
type AdopterProfileService struct {
	profiles repository.AdopterProfileRepository
	users    repository.UserRepository
}

// NewAdopterProfileService creates a new adopter profile service
func NewAdopterProfileService(profiles repository.AdopterProfileRepository, users repository.UserRepository) *AdopterProfileService {
	return &AdopterProfileService{
		profiles: profiles,
		users:    users,
	}
}

// Submit stores the intake of an adopter. Each user submits at most once.
func (s *AdopterProfileService) Submit(ctx context.Context, caller Caller, details models.AdoptionUserDetails) (*models.AdoptionUserDetails, error) {
	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, reference("user", err)
	}
	if user.Role != models.RoleAdopter {
		return nil, fail(ErrForbidden, "Only adopters can submit adoption details")
	}

	details.ID = uuid.New().String()
	details.UserID = user.ID
	details.CreatedAt = time.Now().UTC()
	if details.VisitingChildren == nil {
		details.VisitingChildren = []models.VisitingChild{}
	}
	if err := validation.Struct(details); err != nil {
		return nil, err
	}
	if err := s.profiles.Create(ctx, &details); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fail(ErrConflict, "Adoption details already submitted")
		}
		return nil, fmt.Errorf("failed to create adoption details: %w", err)
	}
	return &details, nil
}

// Get retrieves the intake of a user
func (s *AdopterProfileService) Get(ctx context.Context, userID string) (*models.AdoptionUserDetails, error) {
	details, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, lookup("adoption details", err)
	}
	return details, nil
}
