// Package memory implements the repository contract in process memory.
// It honours the same uniqueness rules as the database backends and is
// meant for local development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
)

// DB holds every collection behind one lock
type DB struct {
	mu            sync.RWMutex
	users         map[string]models.User
	profiles      map[string]models.AdoptionUserDetails // keyed by user id
	pets          map[string]models.Pet
	features      map[string]models.PetFeatures // keyed by pet id
	conversations map[string]models.Conversation
	messages      map[string]models.Message
	reports       map[string]models.Report
	adoptions     map[string]models.AdoptionDetails
}

// New returns an empty database
func New() *DB {
	return &DB{
		users:         map[string]models.User{},
		profiles:      map[string]models.AdoptionUserDetails{},
		pets:          map[string]models.Pet{},
		features:      map[string]models.PetFeatures{},
		conversations: map[string]models.Conversation{},
		messages:      map[string]models.Message{},
		reports:       map[string]models.Report{},
		adoptions:     map[string]models.AdoptionDetails{},
	}
}

// NewStore returns a Store backed by a fresh in-memory database
func NewStore() *repository.Store {
	db := New()
	return &repository.Store{
		Users:           (*userRepo)(db),
		AdopterProfiles: (*profileRepo)(db),
		Pets:            (*petRepo)(db),
		PetFeatures:     (*featuresRepo)(db),
		Conversations:   (*conversationRepo)(db),
		Messages:        (*messageRepo)(db),
		Reports:         (*reportRepo)(db),
		Adoptions:       (*adoptionRepo)(db),
	}
}

func duplicate(what string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicateKey, what)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func ptr[T any](v T) *T { return &v }

type userRepo DB

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return duplicate("users.id")
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return duplicate("users.email")
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return ptr(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *userRepo) UpdateProfile(_ context.Context, id string, upd repository.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = ptr(*upd.PhotoURL)
	}
	r.users[id] = u
	return nil
}

func (r *userRepo) UpdateOnlineStatus(_ context.Context, id string, status models.OnlineStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.OnlineStatus = status
	r.users[id] = u
	return nil
}

type profileRepo DB

func (r *profileRepo) Create(_ context.Context, d *models.AdoptionUserDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[d.UserID]; !ok {
		return fmt.Errorf("%w: adoption_user_details.user_id", repository.ErrInvalidReference)
	}
	if _, ok := r.profiles[d.UserID]; ok {
		return duplicate("adoption_user_details.user_id")
	}
	r.profiles[d.UserID] = *d
	return nil
}

func (r *profileRepo) GetByUserID(_ context.Context, userID string) (*models.AdoptionUserDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

type petRepo DB

func (r *petRepo) Create(_ context.Context, p *models.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[p.ID]; ok {
		return duplicate("pets.id")
	}
	if _, ok := r.users[p.DonorID]; !ok {
		return fmt.Errorf("%w: pets.donor_id", repository.ErrInvalidReference)
	}
	r.pets[p.ID] = *p
	return nil
}

func (r *petRepo) GetByID(_ context.Context, id string) (*models.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *petRepo) List(_ context.Context, f repository.PetFilter) ([]*models.Pet, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Pet
	for _, p := range r.pets {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Species != "" && p.Species != f.Species {
			continue
		}
		if f.DonorID != "" && p.DonorID != f.DonorID {
			continue
		}
		out = append(out, ptr(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *petRepo) UpdatePhoto(_ context.Context, id, photoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.PhotoURL = ptr(photoURL)
	r.pets[id] = p
	return nil
}

func (r *petRepo) TransitionStatus(_ context.Context, id string, from, to models.PetStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Status != from {
		return fmt.Errorf("pet %s is no longer %s: %w", id, from, repository.ErrStaleState)
	}
	p.Status = to
	r.pets[id] = p
	return nil
}

type featuresRepo DB

func (r *featuresRepo) Upsert(_ context.Context, f *models.PetFeatures) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[f.PetID]; !ok {
		return fmt.Errorf("%w: pet_features.pet_id", repository.ErrInvalidReference)
	}
	if existing, ok := r.features[f.PetID]; ok {
		f.ID = existing.ID
	}
	r.features[f.PetID] = *f
	return nil
}

func (r *featuresRepo) GetByPetID(_ context.Context, petID string) (*models.PetFeatures, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.features[petID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

type conversationRepo DB

func (r *conversationRepo) Create(_ context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[c.ID]; ok {
		return duplicate("conversations.id")
	}
	stored := *c
	stored.Participants = append([]string(nil), c.Participants...)
	r.conversations[c.ID] = stored
	return nil
}

func (r *conversationRepo) GetByID(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Participants = append([]string(nil), c.Participants...)
	return &c, nil
}

func (r *conversationRepo) ListByParticipant(_ context.Context, userID string, limit, offset int) ([]*models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Conversation
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			c.Participants = append([]string(nil), c.Participants...)
			out = append(out, ptr(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return page(out, limit, offset), nil
}

func (r *conversationRepo) SetApproved(_ context.Context, id string, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsApproved = approved
	r.conversations[id] = c
	return nil
}

func (r *conversationRepo) TouchLastMessage(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return repository.ErrNotFound
	}
	if at.After(c.LastMessageAt) {
		c.LastMessageAt = at
	}
	r.conversations[id] = c
	return nil
}

type messageRepo DB

func (r *messageRepo) Create(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[m.ConversationID]; !ok {
		return fmt.Errorf("%w: messages.conversation_id", repository.ErrInvalidReference)
	}
	if _, ok := r.messages[m.ID]; ok {
		return duplicate("messages.id")
	}
	r.messages[m.ID] = *m
	return nil
}

func (r *messageRepo) GetByID(_ context.Context, id string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *messageRepo) ListByConversation(_ context.Context, conversationID string, limit, offset int) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, ptr(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return page(out, limit, offset), nil
}

func (r *messageRepo) UpdateStatus(_ context.Context, id string, status models.DeliveryStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Status.Delivered = status.Delivered
	m.Status.Read = status.Read
	m.UpdatedAt = updatedAt
	r.messages[id] = m
	return nil
}

type reportRepo DB

func (r *reportRepo) Create(_ context.Context, rep *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[rep.ID]; ok {
		return duplicate("reports.id")
	}
	if _, ok := r.pets[rep.PetID]; !ok {
		return fmt.Errorf("%w: reports.pet_id", repository.ErrInvalidReference)
	}
	r.reports[rep.ID] = *rep
	return nil
}

func (r *reportRepo) GetByID(_ context.Context, id string) (*models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rep, nil
}

func (r *reportRepo) ListByPet(_ context.Context, petID string) ([]*models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Report
	for _, rep := range r.reports {
		if rep.PetID == petID {
			out = append(out, ptr(rep))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *reportRepo) UpdateStatus(_ context.Context, id string, status models.ReportStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return repository.ErrNotFound
	}
	if rep.Status != nil {
		return fmt.Errorf("report %s is already closed: %w", id, repository.ErrStaleState)
	}
	rep.Status = ptr(status)
	r.reports[id] = rep
	return nil
}

type adoptionRepo DB

func (r *adoptionRepo) Create(_ context.Context, d *models.AdoptionDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.adoptions {
		if existing.PetID == d.PetID {
			return duplicate("adoption_details.pet_id")
		}
	}
	if _, ok := r.reports[d.ReportID]; !ok {
		return fmt.Errorf("%w: adoption_details.report_id", repository.ErrInvalidReference)
	}
	pet, ok := r.pets[d.PetID]
	if !ok {
		return fmt.Errorf("%w: adoption_details.pet_id", repository.ErrInvalidReference)
	}
	if pet.Status != models.PetApproved {
		return fmt.Errorf("pet %s is no longer %s: %w", d.PetID, models.PetApproved, repository.ErrStaleState)
	}
	pet.Status = models.PetAdopted
	r.pets[d.PetID] = pet
	r.adoptions[d.ID] = *d
	return nil
}

func (r *adoptionRepo) GetByID(_ context.Context, id string) (*models.AdoptionDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.adoptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *adoptionRepo) GetByPetID(_ context.Context, petID string) (*models.AdoptionDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.adoptions {
		if d.PetID == petID {
			return ptr(d), nil
		}
	}
	return nil, repository.ErrNotFound
}
