package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
	"pet-adoption-backend/internal/validation"

	"github.com/google/uuid"
)

// PetService handles pet listings and their features
type PetService struct {
	pets     repository.PetRepository
	features repository.PetFeaturesRepository
	users    repository.UserRepository
	uploads  *UploadService
}

// NewPetService creates a new pet service
func NewPetService(
	pets repository.PetRepository,
	features repository.PetFeaturesRepository,
	users repository.UserRepository,
	uploads *UploadService,
) *PetService {
	return &PetService{
		pets:     pets,
		features: features,
		users:    users,
		uploads:  uploads,
	}
}

// CreatePetRequest represents a new listing
type CreatePetRequest struct {
	Name            string `json:"name"`
	Species         string `json:"species"`
	Age             int    `json:"age"`
	Characteristics string `json:"characteristics"`
	Breed           string `json:"breed"`
	Size            string `json:"size"`
	RehomeReasons   string `json:"rehomeReasons"`
	Location        string `json:"location"`
	Color           string `json:"color"`
}

// ListPetsRequest filters a listing query
type ListPetsRequest struct {
	Status  string `validate:"omitempty,oneof=pending approved adopted"`
	Species string
	DonorID string
	Limit   int
	Offset  int
}

// Create lists a pet on behalf of the caller. New listings always start pending.
func (s *PetService) Create(ctx context.Context, caller Caller, req CreatePetRequest) (*models.Pet, error) {
	if caller.Role != models.RoleRehomer && !caller.IsAdmin() {
		return nil, fail(ErrForbidden, "Only rehomers can list pets")
	}
	donor, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, reference("donor", err)
	}

	pet := &models.Pet{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(req.Name),
		Species:         strings.ToLower(strings.TrimSpace(req.Species)),
		Age:             req.Age,
		Characteristics: req.Characteristics,
		Status:          models.PetPending,
		CreatedAt:       time.Now().UTC(),
		Breed:           req.Breed,
		DonorID:         donor.ID,
		Size:            req.Size,
		RehomeReasons:   req.RehomeReasons,
		Location:        strings.TrimSpace(req.Location),
		Color:           req.Color,
	}
	if err := validation.Struct(pet); err != nil {
		return nil, err
	}

	if err := s.pets.Create(ctx, pet); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, reference("donor", err)
		}
		return nil, fmt.Errorf("failed to create pet: %w", err)
	}
	return pet, nil
}

// Get retrieves a pet by ID
func (s *PetService) Get(ctx context.Context, id string) (*models.Pet, error) {
	pet, err := s.pets.GetByID(ctx, id)
	if err != nil {
		return nil, lookup("pet", err)
	}
	return pet, nil
}

// List retrieves pets matching the filter with pagination
func (s *PetService) List(ctx context.Context, req ListPetsRequest) ([]*models.Pet, int, error) {
	if err := validation.Struct(req); err != nil {
		return nil, 0, err
	}
	limit, offset := normalizePaging(req.Limit, req.Offset)

	pets, total, err := s.pets.List(ctx, repository.PetFilter{
		Status:  models.PetStatus(req.Status),
		Species: strings.ToLower(strings.TrimSpace(req.Species)),
		DonorID: req.DonorID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pets: %w", err)
	}
	if pets == nil {
		pets = []*models.Pet{}
	}
	return pets, total, nil
}

// SetFeatures replaces the features of a pet. Only the donor or an admin may.
func (s *PetService) SetFeatures(ctx context.Context, caller Caller, petID string, features models.PetFeatures) (*models.PetFeatures, error) {
	pet, err := s.editable(ctx, caller, petID)
	if err != nil {
		return nil, err
	}

	features.ID = uuid.New().String()
	features.PetID = pet.ID
	if err := validation.Struct(features); err != nil {
		return nil, err
	}
	if err := s.features.Upsert(ctx, &features); err != nil {
		return nil, fmt.Errorf("failed to save pet features: %w", err)
	}
	return &features, nil
}

// GetFeatures retrieves the features of a pet
func (s *PetService) GetFeatures(ctx context.Context, petID string) (*models.PetFeatures, error) {
	if _, err := s.Get(ctx, petID); err != nil {
		return nil, err
	}
	features, err := s.features.GetByPetID(ctx, petID)
	if err != nil {
		return nil, lookup("pet features", err)
	}
	return features, nil
}

// Approve moves a pending listing to approved
func (s *PetService) Approve(ctx context.Context, petID string) (*models.Pet, error) {
	pet, err := s.Get(ctx, petID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, pet, models.PetApproved); err != nil {
		return nil, err
	}
	return pet, nil
}

// transition applies a workflow step conditionally on the pet's current status
func (s *PetService) transition(ctx context.Context, pet *models.Pet, to models.PetStatus) error {
	if !models.CanTransition(pet.Status, to) {
		return fail(ErrConflict, "Pet cannot move from %s to %s", pet.Status, to)
	}
	err := s.pets.TransitionStatus(ctx, pet.ID, pet.Status, to)
	switch {
	case errors.Is(err, repository.ErrStaleState):
		return fail(ErrConflict, "Pet is no longer %s", pet.Status)
	case err != nil:
		return lookup("pet", err)
	}
	pet.Status = to
	return nil
}

// PresignPhoto issues an upload URL for a listing photo and records the
// resulting object URL on the pet
func (s *PetService) PresignPhoto(ctx context.Context, caller Caller, petID string, req UploadRequest) (*Upload, error) {
	pet, err := s.editable(ctx, caller, petID)
	if err != nil {
		return nil, err
	}
	upload, err := s.uploads.PresignPetPhoto(ctx, pet.ID, req)
	if err != nil {
		return nil, err
	}
	if err := s.pets.UpdatePhoto(ctx, pet.ID, upload.FileURL); err != nil {
		return nil, lookup("pet", err)
	}
	return upload, nil
}

// editable loads a pet the caller may modify
func (s *PetService) editable(ctx context.Context, caller Caller, petID string) (*models.Pet, error) {
	pet, err := s.Get(ctx, petID)
	if err != nil {
		return nil, err
	}
	if pet.DonorID != caller.ID && !caller.IsAdmin() {
		return nil, fail(ErrForbidden, "Only the donor can modify this pet")
	}
	return pet, nil
}
