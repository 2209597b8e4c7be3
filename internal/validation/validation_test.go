package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pet-adoption-backend/internal/models"
)

func validPet() models.Pet {
	return models.Pet{
		ID:        "p1",
		Name:      "Rex",
		Species:   "dog",
		Age:       3,
		Status:    models.PetPending,
		CreatedAt: time.Now(),
		DonorID:   "u1",
		Location:  "Leeds",
	}
}

func TestStructAcceptsValidPet(t *testing.T) {
	p := validPet()
	if err := Struct(&p); err != nil {
		t.Fatalf("expected valid pet, got %v", err)
	}
}

func TestStructRejectsEnumOutsideSet(t *testing.T) {
	p := validPet()
	p.Status = "archived"

	err := Struct(&p)
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !verr.Has("status", "oneof") {
		t.Fatalf("expected status oneof violation, got %v", verr)
	}
}

func TestStructRejectsOverlongName(t *testing.T) {
	p := validPet()
	p.Name = strings.Repeat("x", 51)

	err := Struct(&p)
	var verr *Error
	if !errors.As(err, &verr) || !verr.Has("name", "max") {
		t.Fatalf("expected name max violation, got %v", err)
	}
}

func TestStructListsEveryViolation(t *testing.T) {
	p := models.Pet{ID: "p1", Status: "nope", Age: -1}

	err := Struct(&p)
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	for _, want := range []struct{ field, tag string }{
		{"name", "required"},
		{"species", "required"},
		{"age", "min"},
		{"status", "oneof"},
		{"donorId", "required"},
		{"location", "required"},
	} {
		if !verr.Has(want.field, want.tag) {
			t.Errorf("missing %s/%s in %v", want.field, want.tag, verr)
		}
	}
}

func TestStructNestedFieldPath(t *testing.T) {
	yes := true
	d := models.AdoptionUserDetails{
		ID:                         "d1",
		UserID:                     "u1",
		Address:                    models.Address{AddressLine1: "1 Road", PinCode: "12345", MobileOrTelephone: "0700"},
		Above18:                    &yes,
		LivingSituation:            models.LivingOwn,
		GardenAvailable:            &yes,
		HouseholdSetting:           models.SettingTown,
		ActivityLevel:              "party",
		HomeImages:                 []string{"https://img.example.com/1.jpg"},
		NoOfAdults:                 2,
		AnyoneAllergicToPets:       &yes,
		LifestylePatterns:          strings.Repeat("a", 201),
		PlanningToMoveIn6Months:    &yes,
		HolidayInNext3Months:       &yes,
		SuitableTransportForAnimal: nil,
		ExperienceWithAnimals:      "plenty",
	}

	err := Struct(&d)
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	for _, want := range []struct{ field, tag string }{
		{"address.town", "required"},
		{"activityLevel", "oneof"},
		{"lifestylePatterns", "max"},
		{"suitableTransportForAnimal", "required"},
	} {
		if !verr.Has(want.field, want.tag) {
			t.Errorf("missing %s/%s in %v", want.field, want.tag, verr)
		}
	}
}

func TestStructReportStatusOptional(t *testing.T) {
	r := models.Report{ID: "r1", UserID: "u1", PetID: "p1", ReportType: "neglect"}
	if err := Struct(&r); err != nil {
		t.Fatalf("open report should be valid: %v", err)
	}
	bad := models.ReportStatus("pending")
	r.Status = &bad
	var verr *Error
	if err := Struct(&r); !errors.As(err, &verr) || !verr.Has("status", "oneof") {
		t.Fatalf("expected status oneof violation, got %v", err)
	}
}

func TestStructConversationParticipants(t *testing.T) {
	c := models.Conversation{ID: "c1", Participants: []string{"u1", "u1"}}
	var verr *Error
	if err := Struct(&c); !errors.As(err, &verr) || !verr.Has("participants", "unique") {
		t.Fatalf("expected unique violation, got %v", err)
	}
}
