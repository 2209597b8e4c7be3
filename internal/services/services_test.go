package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"pet-adoption-backend/internal/auth"
	"pet-adoption-backend/internal/config"
	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
	"pet-adoption-backend/internal/repository/memory"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePresigner struct {
	keys []string
	err  error
}

func (f *fakePresigner) PresignPutObject(_ context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	f.keys = append(f.keys, *params.Key)
	return &v4.PresignedHTTPRequest{
		URL:    "https://signed.example.com/" + *params.Key + "?expires=" + opts.Expires.String(),
		Method: http.MethodPut,
	}, nil
}

type testEnv struct {
	store         *repository.Store
	presigner     *fakePresigner
	users         *UserService
	profiles      *AdopterProfileService
	pets          *PetService
	reports       *ReportService
	adoptions     *AdoptionService
	conversations *ConversationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	presigner := &fakePresigner{}
	uploads := NewUploadService(presigner, config.AWSConfig{Region: "eu-west-1", S3Bucket: "pets"})
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	pets := NewPetService(store.Pets, store.PetFeatures, store.Users, uploads)
	return &testEnv{
		store:         store,
		presigner:     presigner,
		users:         NewUserService(store.Users, tokens, uploads),
		profiles:      NewAdopterProfileService(store.AdopterProfiles, store.Users),
		pets:          pets,
		reports:       NewReportService(store.Reports, store.Pets),
		adoptions:     NewAdoptionService(store.Adoptions, pets, store.AdopterProfiles, store.Reports),
		conversations: NewConversationService(store.Conversations, store.Messages, store.Users, uploads),
	}
}

// signup creates a user with a unique email and returns it as a Caller
func (e *testEnv) signup(t *testing.T, role models.Role, email string) Caller {
	t.Helper()
	req := SignupRequest{FirstName: "Ann", LastName: "Lee", Email: email, Password: "secret1"}
	var (
		session *Session
		err     error
	)
	switch role {
	case models.RoleRehomer:
		session, err = e.users.SignupRehomer(context.Background(), req)
	default:
		session, err = e.users.SignupAdopter(context.Background(), req)
	}
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return Caller{ID: session.User.ID, Role: session.User.Role}
}

// admin inserts an admin directly; there is no public admin signup
func (e *testEnv) admin(t *testing.T) Caller {
	t.Helper()
	u := &models.User{
		ID: "admin-1", FirstName: "Root", LastName: "Admin", Email: "admin@example.com",
		PasswordHash: "x", Role: models.RoleAdmin, CreatedAt: time.Now(),
	}
	if err := e.store.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return Caller{ID: u.ID, Role: u.Role}
}

func (e *testEnv) approvedPet(t *testing.T, donor, admin Caller) *models.Pet {
	t.Helper()
	ctx := context.Background()
	pet, err := e.pets.Create(ctx, donor, CreatePetRequest{Name: "Rex", Species: "Dog", Age: 3, Location: "Leeds"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	if _, err := e.pets.Approve(ctx, pet.ID); err != nil {
		t.Fatalf("approve pet: %v", err)
	}
	return pet
}

func validIntake() models.AdoptionUserDetails {
	yes, no := true, false
	return models.AdoptionUserDetails{
		Address: models.Address{
			AddressLine1: "1 Road", Town: "Leeds", PinCode: "12345", MobileOrTelephone: "0700 000000",
		},
		Above18: &yes, LivingSituation: models.LivingOwn, GardenAvailable: &yes,
		HouseholdSetting: models.SettingTown, ActivityLevel: models.ActivityNormal,
		HomeImages: []string{"https://img.example.com/home.jpg"}, NoOfAdults: 2,
		AnyoneAllergicToPets: &no, LifestylePatterns: "home most days",
		PlanningToMoveIn6Months: &no, HolidayInNext3Months: &no, SuitableTransportForAnimal: &yes,
		ExperienceWithAnimals: "grew up with dogs",
	}
}

func assertIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}
