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

// AdoptionService completes adoptions of approved pets
type AdoptionService struct {
	adoptions repository.AdoptionRepository
	pets      *PetService
	profiles  repository.AdopterProfileRepository
	reports   repository.ReportRepository
}

// NewAdoptionService creates a new adoption service
func NewAdoptionService(
	adoptions repository.AdoptionRepository,
	pets *PetService,
	profiles repository.AdopterProfileRepository,
	reports repository.ReportRepository,
) *AdoptionService {
	return &AdoptionService{
		adoptions: adoptions,
		pets:      pets,
		profiles:  profiles,
		reports:   reports,
	}
}

// AdoptRequest names the resolved report backing an adoption
type AdoptRequest struct {
	ReportID string `json:"reportId" validate:"required"`
}

// Adopt records the adoption of an approved pet by the caller and moves the
// pet to adopted in the same storage operation. The unique pet reference on
// AdoptionDetails guarantees at most one adoption per pet even under
// concurrent requests.
func (s *AdoptionService) Adopt(ctx context.Context, caller Caller, petID string, req AdoptRequest) (*models.AdoptionDetails, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdopter {
		return nil, fail(ErrForbidden, "Only adopters can adopt pets")
	}

	if _, err := s.profiles.GetByUserID(ctx, caller.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ErrConflict, "Adoption details must be submitted before adopting")
		}
		return nil, fmt.Errorf("failed to get adoption details: %w", err)
	}

	pet, err := s.pets.Get(ctx, petID)
	if err != nil {
		return nil, err
	}
	if pet.Status != models.PetApproved {
		return nil, fail(ErrConflict, "Pet is not available for adoption")
	}
	if pet.DonorID == caller.ID {
		return nil, fail(ErrConflict, "Donors cannot adopt their own pet")
	}

	report, err := s.reports.GetByID(ctx, req.ReportID)
	if err != nil {
		return nil, reference("report", err)
	}
	if report.PetID != pet.ID {
		return nil, fail(ErrInvalidReference, "report does not belong to this pet")
	}
	if report.Status == nil || *report.Status != models.ReportResolved {
		return nil, fail(ErrConflict, "Report must be resolved before adopting")
	}

	details := &models.AdoptionDetails{
		ID:        uuid.New().String(),
		UserID:    caller.ID,
		PetID:     pet.ID,
		ReportID:  report.ID,
		DonorID:   pet.DonorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := validation.Struct(details); err != nil {
		return nil, err
	}

	// The record and the approved -> adopted move are written together
	err = s.adoptions.Create(ctx, details)
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return nil, fail(ErrConflict, "Pet has already been adopted")
	case errors.Is(err, repository.ErrStaleState):
		return nil, fail(ErrConflict, "Pet is not available for adoption")
	case errors.Is(err, repository.ErrInvalidReference):
		return nil, reference("pet", err)
	case err != nil:
		return nil, fmt.Errorf("failed to create adoption details: %w", err)
	}
	return details, nil
}

// GetByPet retrieves the adoption of a pet. Visible to the adopter, the
// donor and admins.
func (s *AdoptionService) GetByPet(ctx context.Context, caller Caller, petID string) (*models.AdoptionDetails, error) {
	if _, err := s.pets.Get(ctx, petID); err != nil {
		return nil, err
	}
	details, err := s.adoptions.GetByPetID(ctx, petID)
	if err != nil {
		return nil, lookup("adoption", err)
	}
	if details.UserID != caller.ID && details.DonorID != caller.ID && !caller.IsAdmin() {
		return nil, fail(ErrForbidden, "Not allowed to view this adoption")
	}
	return details, nil
}
