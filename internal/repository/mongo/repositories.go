package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
)

// UserRepository performs user operations on the users collection
type UserRepository struct {
	coll *mongo.Collection
}

// Create inserts a new user; a taken email yields ErrDuplicateKey
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return insertOne(ctx, r.coll, u)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"_id": id})
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"email": email})
}

// EmailExists counts instead of decoding; only existence matters
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

// UpdateProfile sets the non-nil profile fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd repository.ProfileUpdate) error {
	set := bson.M{}
	if upd.FirstName != nil {
		set["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		set["last_name"] = *upd.LastName
	}
	if upd.PhotoURL != nil {
		set["photo_url"] = *upd.PhotoURL
	}
	if len(set) == 0 {
		_, err := r.GetByID(ctx, id)
		return err
	}
	return updateOne(ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": set})
}

// UpdateOnlineStatus replaces the presence of a user
func (r *UserRepository) UpdateOnlineStatus(ctx context.Context, id string, status models.OnlineStatus) error {
	return updateOne(ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"online_status": status}})
}

// AdopterProfileRepository performs operations on adoption_user_details
type AdopterProfileRepository struct {
	coll *mongo.Collection
}

// Create inserts the intake of a user; a second intake yields ErrDuplicateKey
func (r *AdopterProfileRepository) Create(ctx context.Context, d *models.AdoptionUserDetails) error {
	return insertOne(ctx, r.coll, d)
}

// GetByUserID retrieves the intake of a user
func (r *AdopterProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.AdoptionUserDetails, error) {
	return findOne[models.AdoptionUserDetails](ctx, r.coll, bson.M{"user_id": userID})
}

// PetRepository performs operations on the pets collection
type PetRepository struct {
	coll *mongo.Collection
}

// Create inserts a new pet
func (r *PetRepository) Create(ctx context.Context, p *models.Pet) error {
	return insertOne(ctx, r.coll, p)
}

// GetByID retrieves a pet by ID
func (r *PetRepository) GetByID(ctx context.Context, id string) (*models.Pet, error) {
	return findOne[models.Pet](ctx, r.coll, bson.M{"_id": id})
}

// List retrieves pets matching the filter, newest first, with the total count
func (r *PetRepository) List(ctx context.Context, f repository.PetFilter) ([]*models.Pet, int, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Species != "" {
		filter["species"] = f.Species
	}
	if f.DonorID != "" {
		filter["donor_id"] = f.DonorID
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count pets: %w", err)
	}
	opts := paging(f.Limit, f.Offset).SetSort(bson.D{{Key: "created_at", Value: -1}})
	pets, err := findMany[models.Pet](ctx, r.coll, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return pets, int(total), nil
}

// UpdatePhoto sets the photo URL of a pet
func (r *PetRepository) UpdatePhoto(ctx context.Context, id, photoURL string) error {
	return updateOne(ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"photo_url": photoURL}})
}

// TransitionStatus filters on the current status so concurrent transitions
// cannot both succeed.
func (r *PetRepository) TransitionStatus(ctx context.Context, id string, from, to models.PetStatus) error {
	err := updateOne(ctx, r.coll, bson.M{"_id": id, "status": from}, bson.M{"$set": bson.M{"status": to}})
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return getErr
	}
	return fmt.Errorf("pet %s is no longer %s: %w", id, from, repository.ErrStaleState)
}

// PetFeaturesRepository performs operations on pet_features
type PetFeaturesRepository struct {
	coll *mongo.Collection
}

// Upsert replaces the features of a pet, keeping the original id when present
func (r *PetFeaturesRepository) Upsert(ctx context.Context, f *models.PetFeatures) error {
	existing, err := r.GetByPetID(ctx, f.PetID)
	switch {
	case err == nil:
		f.ID = existing.ID
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}
	_, err = r.coll.ReplaceOne(ctx, bson.M{"pet_id": f.PetID}, f, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert pet features: %w", mapError(err))
	}
	return nil
}

// GetByPetID retrieves the features of a pet
func (r *PetFeaturesRepository) GetByPetID(ctx context.Context, petID string) (*models.PetFeatures, error) {
	return findOne[models.PetFeatures](ctx, r.coll, bson.M{"pet_id": petID})
}

// ConversationRepository performs operations on conversations
type ConversationRepository struct {
	coll *mongo.Collection
}

// Create inserts a new conversation
func (r *ConversationRepository) Create(ctx context.Context, c *models.Conversation) error {
	return insertOne(ctx, r.coll, c)
}

// GetByID retrieves a conversation by ID
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	return findOne[models.Conversation](ctx, r.coll, bson.M{"_id": id})
}

// ListByParticipant retrieves conversations of a user, most recent activity first
func (r *ConversationRepository) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*models.Conversation, error) {
	opts := paging(limit, offset).SetSort(bson.D{{Key: "last_message_at", Value: -1}})
	return findMany[models.Conversation](ctx, r.coll, bson.M{"participants": userID}, opts)
}

// SetApproved sets the approval flag of a conversation
func (r *ConversationRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	return updateOne(ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_approved": approved}})
}

// TouchLastMessage moves lastMessageAt forward; older timestamps are ignored
func (r *ConversationRepository) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	return updateOne(ctx, r.coll, bson.M{"_id": id}, bson.M{"$max": bson.M{"last_message_at": at}})
}

// MessageRepository performs operations on messages
type MessageRepository struct {
	coll *mongo.Collection
}

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	return insertOne(ctx, r.coll, m)
}

// GetByID retrieves a message by ID
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	return findOne[models.Message](ctx, r.coll, bson.M{"_id": id})
}

// ListByConversation retrieves messages of a conversation, oldest first
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*models.Message, error) {
	opts := paging(limit, offset).SetSort(bson.D{{Key: "sent_at", Value: 1}})
	return findMany[models.Message](ctx, r.coll, bson.M{"conversation_id": conversationID}, opts)
}

// UpdateStatus replaces the delivery receipts of a message
func (r *MessageRepository) UpdateStatus(ctx context.Context, id string, status models.DeliveryStatus, updatedAt time.Time) error {
	return updateOne(ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status.delivered": status.Delivered,
		"status.read":      status.Read,
		"updated_at":       updatedAt,
	}})
}

// ReportRepository performs operations on reports
type ReportRepository struct {
	coll *mongo.Collection
}

// Create inserts a new report
func (r *ReportRepository) Create(ctx context.Context, rep *models.Report) error {
	return insertOne(ctx, r.coll, rep)
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	return findOne[models.Report](ctx, r.coll, bson.M{"_id": id})
}

// ListByPet retrieves reports filed against a pet, newest first
func (r *ReportRepository) ListByPet(ctx context.Context, petID string) ([]*models.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return findMany[models.Report](ctx, r.coll, bson.M{"pet_id": petID}, opts)
}

// UpdateStatus records the moderation outcome of a report that is still open
func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) error {
	filter := bson.M{"_id": id, "status": bson.M{"$exists": false}}
	err := updateOne(ctx, r.coll, filter, bson.M{"$set": bson.M{"status": status}})
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return getErr
	}
	return fmt.Errorf("report %s is already closed: %w", id, repository.ErrStaleState)
}

// AdoptionRepository performs operations on adoption_details and moves the
// adopted pet in the pets collection
type AdoptionRepository struct {
	coll *mongo.Collection
	pets *PetRepository
}

// Create marks the pet adopted, then inserts the adoption. A failed insert
// puts the pet back to approved, so no half-written adoption remains.
func (r *AdoptionRepository) Create(ctx context.Context, d *models.AdoptionDetails) error {
	err := r.pets.TransitionStatus(ctx, d.PetID, models.PetApproved, models.PetAdopted)
	switch {
	case errors.Is(err, repository.ErrStaleState):
		if _, getErr := r.GetByPetID(ctx, d.PetID); getErr == nil {
			return fmt.Errorf("%w: adoption_details.pet_id", repository.ErrDuplicateKey)
		}
		return err
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: adoption_details.pet_id", repository.ErrInvalidReference)
	case err != nil:
		return err
	}

	if err := insertOne(ctx, r.coll, d); err != nil {
		// the revert must run even when ctx is what failed the insert
		revertErr := r.pets.TransitionStatus(context.WithoutCancel(ctx), d.PetID, models.PetAdopted, models.PetApproved)
		if revertErr != nil {
			return fmt.Errorf("%w (reverting pet %s: %v)", err, d.PetID, revertErr)
		}
		return err
	}
	return nil
}

// GetByID retrieves an adoption by ID
func (r *AdoptionRepository) GetByID(ctx context.Context, id string) (*models.AdoptionDetails, error) {
	return findOne[models.AdoptionDetails](ctx, r.coll, bson.M{"_id": id})
}

// GetByPetID retrieves the adoption of a pet
func (r *AdoptionRepository) GetByPetID(ctx context.Context, petID string) (*models.AdoptionDetails, error) {
	return findOne[models.AdoptionDetails](ctx, r.coll, bson.M{"pet_id": petID})
}
