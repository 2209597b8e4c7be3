// Package repotest holds behaviour checks every repository backend must pass.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
)

// Run exercises store against the shared repository contract. The store
// must be empty.
func Run(t *testing.T, store *repository.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("users", func(t *testing.T) { testUsers(t, ctx, store) })
	t.Run("pets", func(t *testing.T) { testPets(t, ctx, store) })
	t.Run("conversations", func(t *testing.T) { testConversations(t, ctx, store) })
	t.Run("adoptions", func(t *testing.T) { testAdoptions(t, ctx, store) })
}

// now is truncated to milliseconds, the coarsest precision of any backend
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewUser returns a valid user with a unique email
func NewUser(role models.Role) *models.User {
	id := uuid.New().String()
	return &models.User{
		ID:           id,
		FirstName:    "Ann",
		LastName:     "Lee",
		Email:        id + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    now(),
	}
}

// NewPet returns a valid pending pet donated by donorID
func NewPet(donorID string) *models.Pet {
	return &models.Pet{
		ID:        uuid.New().String(),
		Name:      "Rex",
		Species:   "dog",
		Age:       2,
		Status:    models.PetPending,
		CreatedAt: now(),
		DonorID:   donorID,
		Location:  "Leeds",
	}
}

func mustUser(t *testing.T, ctx context.Context, s *repository.Store, role models.Role) *models.User {
	t.Helper()
	u := NewUser(role)
	if err := s.Users.Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func mustPet(t *testing.T, ctx context.Context, s *repository.Store, donorID string) *models.Pet {
	t.Helper()
	p := NewPet(donorID)
	if err := s.Pets.Create(ctx, p); err != nil {
		t.Fatalf("create pet: %v", err)
	}
	return p
}

func testUsers(t *testing.T, ctx context.Context, s *repository.Store) {
	u := mustUser(t, ctx, s, models.RoleAdopter)

	dup := NewUser(models.RoleRehomer)
	dup.Email = u.Email
	if err := s.Users.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey for repeated email, got %v", err)
	}

	got, err := s.Users.GetByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}

	exists, err := s.Users.EmailExists(ctx, u.Email)
	if err != nil || !exists {
		t.Fatalf("EmailExists = %v, %v", exists, err)
	}
	exists, err = s.Users.EmailExists(ctx, "nobody@example.com")
	if err != nil || exists {
		t.Fatalf("EmailExists(unknown) = %v, %v", exists, err)
	}

	if _, err := s.Users.GetByID(ctx, uuid.New().String()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	photo := "https://cdn.example.com/u.jpg"
	name := "Anna"
	if err := s.Users.UpdateProfile(ctx, u.ID, repository.ProfileUpdate{FirstName: &name, PhotoURL: &photo}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	seen := now()
	if err := s.Users.UpdateOnlineStatus(ctx, u.ID, models.OnlineStatus{IsOnline: true, LastSeen: &seen}); err != nil {
		t.Fatalf("UpdateOnlineStatus: %v", err)
	}
	got, err = s.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FirstName != "Anna" || got.LastName != "Lee" {
		t.Fatalf("profile update lost fields: %+v", got)
	}
	if got.PhotoURL == nil || *got.PhotoURL != photo {
		t.Fatalf("photo not stored: %v", got.PhotoURL)
	}
	if !got.OnlineStatus.IsOnline || got.OnlineStatus.LastSeen == nil || !got.OnlineStatus.LastSeen.Equal(seen) {
		t.Fatalf("online status not stored: %+v", got.OnlineStatus)
	}

	if err := s.Users.UpdateOnlineStatus(ctx, uuid.New().String(), models.OnlineStatus{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating unknown user, got %v", err)
	}

	yes, no := true, false
	profile := &models.AdoptionUserDetails{
		ID:     uuid.New().String(),
		UserID: u.ID,
		Address: models.Address{
			AddressLine1: "1 Road", Town: "Leeds", PinCode: "12345", MobileOrTelephone: "0700",
		},
		Above18: &yes, LivingSituation: models.LivingOwn, GardenAvailable: &yes,
		HouseholdSetting: models.SettingTown, ActivityLevel: models.ActivityQuiet,
		HomeImages: []string{"https://img.example.com/h.jpg"}, NoOfAdults: 2,
		VisitingChildren:     []models.VisitingChild{{Age: 4}, {Age: 9}},
		AnyoneAllergicToPets: &no, LifestylePatterns: "calm",
		PlanningToMoveIn6Months: &no, HolidayInNext3Months: &no, SuitableTransportForAnimal: &yes,
		ExperienceWithAnimals: "two cats", CreatedAt: now(),
	}
	if err := s.AdopterProfiles.Create(ctx, profile); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	again := *profile
	again.ID = uuid.New().String()
	if err := s.AdopterProfiles.Create(ctx, &again); !errors.Is(err, repository.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey for second profile, got %v", err)
	}
	gotProfile, err := s.AdopterProfiles.GetByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if gotProfile.Address.Town != "Leeds" || len(gotProfile.VisitingChildren) != 2 || gotProfile.VisitingChildren[1].Age != 9 {
		t.Fatalf("profile round trip lost data: %+v", gotProfile)
	}
	if gotProfile.Above18 == nil || !*gotProfile.Above18 {
		t.Fatalf("above18 lost: %v", gotProfile.Above18)
	}
}

func testPets(t *testing.T, ctx context.Context, s *repository.Store) {
	donor := mustUser(t, ctx, s, models.RoleRehomer)
	first := mustPet(t, ctx, s, donor.ID)
	// one donor may list several pets
	second := NewPet(donor.ID)
	second.Species = "cat"
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	if err := s.Pets.Create(ctx, second); err != nil {
		t.Fatalf("second pet for same donor: %v", err)
	}

	pets, total, err := s.Pets.List(ctx, repository.PetFilter{DonorID: donor.ID, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(pets) != 2 || pets[0].ID != second.ID {
		t.Fatalf("expected newest first, got total=%d %v", total, pets)
	}
	pets, total, err = s.Pets.List(ctx, repository.PetFilter{DonorID: donor.ID, Species: "cat", Limit: 10})
	if err != nil || total != 1 || len(pets) != 1 || pets[0].ID != second.ID {
		t.Fatalf("species filter: total=%d pets=%v err=%v", total, pets, err)
	}
	pets, _, err = s.Pets.List(ctx, repository.PetFilter{DonorID: donor.ID, Limit: 1, Offset: 1})
	if err != nil || len(pets) != 1 || pets[0].ID != first.ID {
		t.Fatalf("paging: pets=%v err=%v", pets, err)
	}

	if err := s.Pets.TransitionStatus(ctx, first.ID, models.PetPending, models.PetApproved); err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}
	if err := s.Pets.TransitionStatus(ctx, first.ID, models.PetPending, models.PetApproved); !errors.Is(err, repository.ErrStaleState) {
		t.Fatalf("expected ErrStaleState, got %v", err)
	}
	if err := s.Pets.TransitionStatus(ctx, uuid.New().String(), models.PetPending, models.PetApproved); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, err := s.Pets.GetByID(ctx, first.ID)
	if err != nil || got.Status != models.PetApproved {
		t.Fatalf("status after transition: %v %v", got, err)
	}

	if err := s.Pets.UpdatePhoto(ctx, first.ID, "https://cdn.example.com/p.jpg"); err != nil {
		t.Fatalf("UpdatePhoto: %v", err)
	}

	features := &models.PetFeatures{ID: uuid.New().String(), PetID: first.ID, Description: "friendly", Microchipped: true}
	if err := s.PetFeatures.Upsert(ctx, features); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	firstID := features.ID
	replacement := &models.PetFeatures{ID: uuid.New().String(), PetID: first.ID, HouseTrained: true}
	if err := s.PetFeatures.Upsert(ctx, replacement); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	gotFeatures, err := s.PetFeatures.GetByPetID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByPetID: %v", err)
	}
	if gotFeatures.ID != firstID || !gotFeatures.HouseTrained || gotFeatures.Microchipped {
		t.Fatalf("upsert should replace flags and keep id: %+v", gotFeatures)
	}
}

func testConversations(t *testing.T, ctx context.Context, s *repository.Store) {
	a := mustUser(t, ctx, s, models.RoleAdopter)
	b := mustUser(t, ctx, s, models.RoleRehomer)

	older := &models.Conversation{
		ID: uuid.New().String(), Participants: []string{a.ID, b.ID},
		LastMessageAt: now().Add(-time.Hour), CreatedAt: now(),
	}
	newer := &models.Conversation{
		ID: uuid.New().String(), Participants: []string{a.ID, b.ID},
		LastMessageAt: now(), CreatedAt: now(),
	}
	for _, c := range []*models.Conversation{older, newer} {
		if err := s.Conversations.Create(ctx, c); err != nil {
			t.Fatalf("create conversation: %v", err)
		}
	}

	convs, err := s.Conversations.ListByParticipant(ctx, a.ID, 10, 0)
	if err != nil || len(convs) != 2 || convs[0].ID != newer.ID {
		t.Fatalf("expected newest activity first: %v %v", convs, err)
	}

	later := now().Add(time.Minute)
	if err := s.Conversations.TouchLastMessage(ctx, older.ID, later); err != nil {
		t.Fatalf("TouchLastMessage: %v", err)
	}
	if err := s.Conversations.TouchLastMessage(ctx, older.ID, later.Add(-time.Hour*2)); err != nil {
		t.Fatalf("TouchLastMessage backwards: %v", err)
	}
	convs, err = s.Conversations.ListByParticipant(ctx, b.ID, 10, 0)
	if err != nil || convs[0].ID != older.ID || !convs[0].LastMessageAt.Equal(later) {
		t.Fatalf("touch should reorder and never move back: %v %v", convs, err)
	}

	if err := s.Conversations.SetApproved(ctx, older.ID, true); err != nil {
		t.Fatalf("SetApproved: %v", err)
	}
	got, err := s.Conversations.GetByID(ctx, older.ID)
	if err != nil || !got.IsApproved || !got.HasParticipant(b.ID) {
		t.Fatalf("conversation after approve: %+v %v", got, err)
	}

	m1 := &models.Message{
		ID: uuid.New().String(), ConversationID: older.ID, SenderID: a.ID, Content: "hi",
		Attachments: models.Attachments{Photos: []string{"https://cdn.example.com/1.jpg"}},
		Status:      models.DeliveryStatus{Sent: now()}, SentAt: now(), UpdatedAt: now(),
	}
	m2 := &models.Message{
		ID: uuid.New().String(), ConversationID: older.ID, SenderID: b.ID, Content: "hello",
		Status: models.DeliveryStatus{Sent: now()}, SentAt: m1.SentAt.Add(time.Second), UpdatedAt: now(),
	}
	for _, m := range []*models.Message{m2, m1} {
		if err := s.Messages.Create(ctx, m); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}
	msgs, err := s.Messages.ListByConversation(ctx, older.ID, 10, 0)
	if err != nil || len(msgs) != 2 || msgs[0].ID != m1.ID {
		t.Fatalf("expected oldest first: %v %v", msgs, err)
	}
	if len(msgs[0].Attachments.Photos) != 1 {
		t.Fatalf("attachments lost: %+v", msgs[0].Attachments)
	}

	delivered := now()
	if err := s.Messages.UpdateStatus(ctx, m1.ID, models.DeliveryStatus{Sent: m1.Status.Sent, Delivered: &delivered}, delivered); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	gotMsg, err := s.Messages.GetByID(ctx, m1.ID)
	if err != nil || gotMsg.Status.Delivered == nil || gotMsg.Status.Read != nil {
		t.Fatalf("status after delivered: %+v %v", gotMsg, err)
	}
}

func testAdoptions(t *testing.T, ctx context.Context, s *repository.Store) {
	donor := mustUser(t, ctx, s, models.RoleRehomer)
	adopter := mustUser(t, ctx, s, models.RoleAdopter)
	pet := mustPet(t, ctx, s, donor.ID)

	report := &models.Report{
		ID: uuid.New().String(), UserID: adopter.ID, PetID: pet.ID,
		ReportType: "home-check", Date: now(),
	}
	if err := s.Reports.Create(ctx, report); err != nil {
		t.Fatalf("create report: %v", err)
	}
	if err := s.Reports.UpdateStatus(ctx, report.ID, models.ReportResolved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := s.Reports.UpdateStatus(ctx, report.ID, models.ReportRejected); !errors.Is(err, repository.ErrStaleState) {
		t.Fatalf("expected ErrStaleState closing a closed report, got %v", err)
	}
	if err := s.Reports.UpdateStatus(ctx, "missing", models.ReportResolved); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	reports, err := s.Reports.ListByPet(ctx, pet.ID)
	if err != nil || len(reports) != 1 || reports[0].Status == nil || *reports[0].Status != models.ReportResolved {
		t.Fatalf("reports: %v %v", reports, err)
	}

	details := &models.AdoptionDetails{
		ID: uuid.New().String(), UserID: adopter.ID, PetID: pet.ID,
		ReportID: report.ID, DonorID: donor.ID, CreatedAt: now(),
	}
	// a pending pet cannot be adopted and nothing is written
	if err := s.Adoptions.Create(ctx, details); !errors.Is(err, repository.ErrStaleState) {
		t.Fatalf("expected ErrStaleState for a pending pet, got %v", err)
	}
	if _, err := s.Adoptions.GetByPetID(ctx, pet.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("failed adoption left a record: %v", err)
	}

	if err := s.Pets.TransitionStatus(ctx, pet.ID, models.PetPending, models.PetApproved); err != nil {
		t.Fatalf("approve pet: %v", err)
	}
	if err := s.Adoptions.Create(ctx, details); err != nil {
		t.Fatalf("create adoption: %v", err)
	}
	adopted, err := s.Pets.GetByID(ctx, pet.ID)
	if err != nil || adopted.Status != models.PetAdopted {
		t.Fatalf("pet should be adopted with its record: %+v %v", adopted, err)
	}
	second := *details
	second.ID = uuid.New().String()
	if err := s.Adoptions.Create(ctx, &second); !errors.Is(err, repository.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey for second adoption of a pet, got %v", err)
	}
	got, err := s.Adoptions.GetByPetID(ctx, pet.ID)
	if err != nil || got.ID != details.ID || got.DonorID != donor.ID {
		t.Fatalf("GetByPetID: %+v %v", got, err)
	}
	if _, err := s.Adoptions.GetByID(ctx, details.ID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
}
