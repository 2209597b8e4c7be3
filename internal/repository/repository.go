// Package repository declares the storage contract shared by every backend.
package repository

import (
	"context"
	"errors"
	"time"

	"pet-adoption-backend/internal/models"
)

var (
	// ErrNotFound is returned when no document matches
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when a uniqueness constraint is violated
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidReference is returned when a foreign reference does not resolve
	ErrInvalidReference = errors.New("invalid reference")
	// ErrStaleState is returned when a conditional update lost its precondition
	ErrStaleState = errors.New("stale state")
)

// ProfileUpdate carries optional user profile changes; nil fields are untouched
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	PhotoURL  *string
}

// UserRepository persists users
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error
	UpdateOnlineStatus(ctx context.Context, id string, status models.OnlineStatus) error
}

// AdopterProfileRepository persists AdoptionUserDetails, unique per user
type AdopterProfileRepository interface {
	Create(ctx context.Context, details *models.AdoptionUserDetails) error
	GetByUserID(ctx context.Context, userID string) (*models.AdoptionUserDetails, error)
}

// PetFilter narrows pet listings; zero values match everything
type PetFilter struct {
	Status  models.PetStatus
	Species string
	DonorID string
	Limit   int
	Offset  int
}

// PetRepository persists pet listings
type PetRepository interface {
	Create(ctx context.Context, pet *models.Pet) error
	GetByID(ctx context.Context, id string) (*models.Pet, error)
	List(ctx context.Context, filter PetFilter) ([]*models.Pet, int, error)
	UpdatePhoto(ctx context.Context, id, photoURL string) error
	// TransitionStatus moves a pet from one status to another atomically.
	// It returns ErrStaleState when the pet is no longer in status from.
	TransitionStatus(ctx context.Context, id string, from, to models.PetStatus) error
}

// PetFeaturesRepository persists PetFeatures, unique per pet
type PetFeaturesRepository interface {
	Upsert(ctx context.Context, features *models.PetFeatures) error
	GetByPetID(ctx context.Context, petID string) (*models.PetFeatures, error)
}

// ConversationRepository persists conversations
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	// ListByParticipant returns conversations newest activity first
	ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*models.Conversation, error)
	SetApproved(ctx context.Context, id string, approved bool) error
	TouchLastMessage(ctx context.Context, id string, at time.Time) error
}

// MessageRepository persists messages
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	// ListByConversation returns messages oldest first
	ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*models.Message, error)
	UpdateStatus(ctx context.Context, id string, status models.DeliveryStatus, updatedAt time.Time) error
}

// ReportRepository persists moderation reports
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	ListByPet(ctx context.Context, petID string) ([]*models.Report, error)
	// UpdateStatus closes an open report. It returns ErrStaleState when the
	// report already carries a status.
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) error
}

// AdoptionRepository persists AdoptionDetails, unique per pet
type AdoptionRepository interface {
	// Create records the adoption and moves the pet from approved to adopted
	// as one operation: either both writes happen or neither does. It returns
	// ErrDuplicateKey when the pet already has an adoption and ErrStaleState
	// when the pet is no longer approved.
	Create(ctx context.Context, details *models.AdoptionDetails) error
	GetByID(ctx context.Context, id string) (*models.AdoptionDetails, error)
	GetByPetID(ctx context.Context, petID string) (*models.AdoptionDetails, error)
}

// Store groups the repositories of one backend
type Store struct {
	Users           UserRepository
	AdopterProfiles AdopterProfileRepository
	Pets            PetRepository
	PetFeatures     PetFeaturesRepository
	Conversations   ConversationRepository
	Messages        MessageRepository
	Reports         ReportRepository
	Adoptions       AdoptionRepository
}
