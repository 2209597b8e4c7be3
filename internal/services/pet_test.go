package services

import (
	"context"
	"errors"
	"testing"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/validation"
)

func TestCreatePet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	donor := env.signup(t, models.RoleRehomer, "rita@example.com")

	pet, err := env.pets.Create(ctx, donor, CreatePetRequest{Name: "Rex", Species: " Dog ", Age: 4, Location: "Leeds"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pet.Status != models.PetPending {
		t.Errorf("new pets must be pending, got %s", pet.Status)
	}
	if pet.DonorID != donor.ID || pet.Species != "dog" {
		t.Errorf("unexpected pet: %+v", pet)
	}

	// a donor may list more than one pet
	if _, err := env.pets.Create(ctx, donor, CreatePetRequest{Name: "Tom", Species: "cat", Location: "Leeds"}); err != nil {
		t.Fatalf("second pet: %v", err)
	}
}

func TestCreatePetRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	adopter := env.signup(t, models.RoleAdopter, "ann@example.com")
	donor := env.signup(t, models.RoleRehomer, "rita@example.com")

	_, err := env.pets.Create(ctx, adopter, CreatePetRequest{Name: "Rex", Species: "dog", Location: "Leeds"})
	assertIs(t, err, ErrForbidden)

	ghost := Caller{ID: "ghost", Role: models.RoleRehomer}
	_, err = env.pets.Create(ctx, ghost, CreatePetRequest{Name: "Rex", Species: "dog", Location: "Leeds"})
	assertIs(t, err, ErrInvalidReference)

	_, err = env.pets.Create(ctx, donor, CreatePetRequest{
		Name: "A name well beyond fifty characters for a single pet listing", Species: "dog", Age: -1,
	})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, want := range [][2]string{{"name", "max"}, {"age", "min"}, {"location", "required"}} {
		if !verr.Has(want[0], want[1]) {
			t.Errorf("missing %s/%s in %v", want[0], want[1], verr)
		}
	}
}

func TestPetWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	donor := env.signup(t, models.RoleRehomer, "rita@example.com")

	pet, err := env.pets.Create(ctx, donor, CreatePetRequest{Name: "Rex", Species: "dog", Location: "Leeds"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	approved, err := env.pets.Approve(ctx, pet.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != models.PetApproved {
		t.Errorf("status = %s", approved.Status)
	}

	_, err = env.pets.Approve(ctx, pet.ID)
	assertIs(t, err, ErrConflict)

	_, err = env.pets.Approve(ctx, "missing")
	assertIs(t, err, ErrNotFound)
}

func TestListPets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	donor := env.signup(t, models.RoleRehomer, "rita@example.com")
	admin := env.admin(t)

	env.approvedPet(t, donor, admin)
	if _, err := env.pets.Create(ctx, donor, CreatePetRequest{Name: "Tom", Species: "cat", Location: "York"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	pets, total, err := env.pets.List(ctx, ListPetsRequest{Status: "approved"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(pets) != 1 || pets[0].Name != "Rex" {
		t.Errorf("approved listing: total=%d pets=%v", total, pets)
	}

	pets, total, err = env.pets.List(ctx, ListPetsRequest{Species: "CAT"})
	if err != nil || total != 1 || pets[0].Name != "Tom" {
		t.Errorf("species filter: total=%d pets=%v err=%v", total, pets, err)
	}

	pets, _, err = env.pets.List(ctx, ListPetsRequest{Status: "adopted"})
	if err != nil || pets == nil || len(pets) != 0 {
		t.Errorf("empty listing should be an empty slice: %v %v", pets, err)
	}

	_, _, err = env.pets.List(ctx, ListPetsRequest{Status: "archived"})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestPetFeatures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	donor := env.signup(t, models.RoleRehomer, "rita@example.com")
	other := env.signup(t, models.RoleRehomer, "other@example.com")
	admin := env.admin(t)
	pet := env.approvedPet(t, donor, admin)

	_, err := env.pets.GetFeatures(ctx, pet.ID)
	assertIs(t, err, ErrNotFound)

	first, err := env.pets.SetFeatures(ctx, donor, pet.ID, models.PetFeatures{Microchipped: true, Description: "calm"})
	if err != nil {
		t.Fatalf("SetFeatures: %v", err)
	}
	second, err := env.pets.SetFeatures(ctx, admin, pet.ID, models.PetFeatures{HouseTrained: true})
	if err != nil {
		t.Fatalf("SetFeatures by admin: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("features id changed on replace: %s -> %s", first.ID, second.ID)
	}

	got, err := env.pets.GetFeatures(ctx, pet.ID)
	if err != nil {
		t.Fatalf("GetFeatures: %v", err)
	}
	if got.Microchipped || !got.HouseTrained {
		t.Errorf("features not replaced: %+v", got)
	}

	_, err = env.pets.SetFeatures(ctx, other, pet.ID, models.PetFeatures{})
	assertIs(t, err, ErrForbidden)
}

func TestPetPresignPhoto(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	donor := env.signup(t, models.RoleRehomer, "rita@example.com")
	admin := env.admin(t)
	pet := env.approvedPet(t, donor, admin)

	upload, err := env.pets.PresignPhoto(ctx, donor, pet.ID, UploadRequest{ContentType: "image/webp"})
	if err != nil {
		t.Fatalf("PresignPhoto: %v", err)
	}
	got, err := env.pets.Get(ctx, pet.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PhotoURL == nil || *got.PhotoURL != upload.FileURL {
		t.Errorf("photo url not recorded: %v", got.PhotoURL)
	}

	stranger := env.signup(t, models.RoleAdopter, "ann@example.com")
	_, err = env.pets.PresignPhoto(ctx, stranger, pet.ID, UploadRequest{ContentType: "image/webp"})
	assertIs(t, err, ErrForbidden)
}
