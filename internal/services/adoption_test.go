package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
	"pet-adoption-backend/internal/validation"
)

func TestAdopterProfileSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	adopter := env.signup(t, models.RoleAdopter, "ann@example.com")
	rehomer := env.signup(t, models.RoleRehomer, "rita@example.com")

	details, err := env.profiles.Submit(ctx, adopter, validIntake())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if details.UserID != adopter.ID || details.ID == "" {
		t.Errorf("unexpected details: %+v", details)
	}

	_, err = env.profiles.Submit(ctx, adopter, validIntake())
	assertIs(t, err, ErrConflict)

	_, err = env.profiles.Submit(ctx, rehomer, validIntake())
	assertIs(t, err, ErrForbidden)

	got, err := env.profiles.Get(ctx, adopter.ID)
	if err != nil || got.ID != details.ID {
		t.Fatalf("Get: %+v %v", got, err)
	}
}

func TestAdopterProfileValidation(t *testing.T) {
	env := newTestEnv(t)
	adopter := env.signup(t, models.RoleAdopter, "ann@example.com")

	intake := validIntake()
	intake.Above18 = nil
	intake.LivingSituation = "castle"
	intake.HomeImages = nil
	intake.Address.PinCode = "LS1"

	_, err := env.profiles.Submit(context.Background(), adopter, intake)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, want := range [][2]string{
		{"above18", "required"},
		{"livingSituation", "oneof"},
		{"homeImages", "required"},
		{"address.pinCode", "numeric"},
	} {
		if !verr.Has(want[0], want[1]) {
			t.Errorf("missing %s/%s in %v", want[0], want[1], verr)
		}
	}
}

// adoptionFixture prepares an approved pet, an adopter with intake and a
// resolved report on the pet
type adoptionFixture struct {
	env     *testEnv
	donor   Caller
	adopter Caller
	admin   Caller
	pet     *models.Pet
	report  *models.Report
}

func newAdoptionFixture(t *testing.T) *adoptionFixture {
	t.Helper()
	env := newTestEnv(t)
	ctx := context.Background()
	f := &adoptionFixture{
		env:     env,
		donor:   env.signup(t, models.RoleRehomer, "rita@example.com"),
		adopter: env.signup(t, models.RoleAdopter, "ann@example.com"),
		admin:   env.admin(t),
	}
	f.pet = env.approvedPet(t, f.donor, f.admin)

	if _, err := env.profiles.Submit(ctx, f.adopter, validIntake()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	report, err := env.reports.Create(ctx, f.adopter, f.pet.ID, CreateReportRequest{ReportType: "home-check"})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if f.report, err = env.reports.Resolve(ctx, report.ID, ResolveReportRequest{Status: models.ReportResolved}); err != nil {
		t.Fatalf("resolve report: %v", err)
	}
	return f
}

func TestAdopt(t *testing.T) {
	f := newAdoptionFixture(t)
	ctx := context.Background()

	details, err := f.env.adoptions.Adopt(ctx, f.adopter, f.pet.ID, AdoptRequest{ReportID: f.report.ID})
	if err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	if details.UserID != f.adopter.ID || details.DonorID != f.donor.ID || details.ReportID != f.report.ID {
		t.Errorf("unexpected details: %+v", details)
	}

	pet, err := f.env.pets.Get(ctx, f.pet.ID)
	if err != nil || pet.Status != models.PetAdopted {
		t.Fatalf("pet should be adopted: %+v %v", pet, err)
	}

	// adopted is terminal
	_, err = f.env.adoptions.Adopt(ctx, f.adopter, f.pet.ID, AdoptRequest{ReportID: f.report.ID})
	assertIs(t, err, ErrConflict)

	for _, c := range []Caller{f.adopter, f.donor, f.admin} {
		if _, err := f.env.adoptions.GetByPet(ctx, c, f.pet.ID); err != nil {
			t.Errorf("GetByPet as %s: %v", c.Role, err)
		}
	}
	stranger := f.env.signup(t, models.RoleAdopter, "sam@example.com")
	_, err = f.env.adoptions.GetByPet(ctx, stranger, f.pet.ID)
	assertIs(t, err, ErrForbidden)
}

func TestAdoptPreconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("pending pet", func(t *testing.T) {
		f := newAdoptionFixture(t)
		pending, err := f.env.pets.Create(ctx, f.donor, CreatePetRequest{Name: "Tom", Species: "cat", Location: "York"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		report, err := f.env.reports.Create(ctx, f.adopter, pending.ID, CreateReportRequest{ReportType: "home-check"})
		if err != nil {
			t.Fatalf("report: %v", err)
		}
		if _, err := f.env.reports.Resolve(ctx, report.ID, ResolveReportRequest{Status: models.ReportResolved}); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		_, err = f.env.adoptions.Adopt(ctx, f.adopter, pending.ID, AdoptRequest{ReportID: report.ID})
		assertIs(t, err, ErrConflict)
	})

	t.Run("not an adopter", func(t *testing.T) {
		f := newAdoptionFixture(t)
		_, err := f.env.adoptions.Adopt(ctx, f.donor, f.pet.ID, AdoptRequest{ReportID: f.report.ID})
		assertIs(t, err, ErrForbidden)
	})

	t.Run("missing intake", func(t *testing.T) {
		f := newAdoptionFixture(t)
		other := f.env.signup(t, models.RoleAdopter, "sam@example.com")
		_, err := f.env.adoptions.Adopt(ctx, other, f.pet.ID, AdoptRequest{ReportID: f.report.ID})
		assertIs(t, err, ErrConflict)
	})

	t.Run("unknown report", func(t *testing.T) {
		f := newAdoptionFixture(t)
		_, err := f.env.adoptions.Adopt(ctx, f.adopter, f.pet.ID, AdoptRequest{ReportID: "missing"})
		assertIs(t, err, ErrInvalidReference)
	})

	t.Run("open report", func(t *testing.T) {
		f := newAdoptionFixture(t)
		open, err := f.env.reports.Create(ctx, f.adopter, f.pet.ID, CreateReportRequest{ReportType: "home-check"})
		if err != nil {
			t.Fatalf("report: %v", err)
		}
		_, err = f.env.adoptions.Adopt(ctx, f.adopter, f.pet.ID, AdoptRequest{ReportID: open.ID})
		assertIs(t, err, ErrConflict)
	})

	t.Run("report for another pet", func(t *testing.T) {
		f := newAdoptionFixture(t)
		other := f.env.approvedPet(t, f.donor, f.admin)
		_, err := f.env.adoptions.Adopt(ctx, f.adopter, other.ID, AdoptRequest{ReportID: f.report.ID})
		assertIs(t, err, ErrInvalidReference)
	})

	t.Run("missing report id", func(t *testing.T) {
		f := newAdoptionFixture(t)
		_, err := f.env.adoptions.Adopt(ctx, f.adopter, f.pet.ID, AdoptRequest{})
		var verr *validation.Error
		if !errors.As(err, &verr) || !verr.Has("reportId", "required") {
			t.Fatalf("expected reportId required, got %v", err)
		}
	})
}

func TestConcurrentAdoption(t *testing.T) {
	f := newAdoptionFixture(t)
	ctx := context.Background()

	const n = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.env.adoptions.Adopt(ctx, f.adopter, f.pet.ID, AdoptRequest{ReportID: f.report.ID})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one adoption, got %d", successes)
	}
}

func TestReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	donor := env.signup(t, models.RoleRehomer, "rita@example.com")
	adopter := env.signup(t, models.RoleAdopter, "ann@example.com")
	admin := env.admin(t)
	pet := env.approvedPet(t, donor, admin)

	report, err := env.reports.Create(ctx, adopter, pet.ID, CreateReportRequest{ReportType: "misleading", ReportContext: "age wrong"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if report.Status != nil {
		t.Errorf("new reports are open, got %v", *report.Status)
	}

	_, err = env.reports.Create(ctx, adopter, "missing", CreateReportRequest{ReportType: "misleading"})
	assertIs(t, err, ErrNotFound)

	_, err = env.reports.Create(ctx, adopter, pet.ID, CreateReportRequest{})
	var verr *validation.Error
	if !errors.As(err, &verr) || !verr.Has("reportType", "required") {
		t.Fatalf("expected reportType required, got %v", err)
	}

	_, err = env.reports.Resolve(ctx, report.ID, ResolveReportRequest{Status: "archived"})
	if !errors.As(err, &verr) || !verr.Has("status", "oneof") {
		t.Fatalf("expected status oneof, got %v", err)
	}

	resolved, err := env.reports.Resolve(ctx, report.ID, ResolveReportRequest{Status: models.ReportRejected})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status == nil || *resolved.Status != models.ReportRejected {
		t.Errorf("status = %v", resolved.Status)
	}
	_, err = env.reports.Resolve(ctx, report.ID, ResolveReportRequest{Status: models.ReportResolved})
	assertIs(t, err, ErrConflict)

	reports, err := env.reports.ListByPet(ctx, pet.ID)
	if err != nil || len(reports) != 1 {
		t.Fatalf("ListByPet: %v %v", reports, err)
	}
}

// failingAdoptions fails the next Create without touching storage
type failingAdoptions struct {
	repository.AdoptionRepository
	failures int
}

func (f *failingAdoptions) Create(ctx context.Context, d *models.AdoptionDetails) error {
	if f.failures > 0 {
		f.failures--
		return context.DeadlineExceeded
	}
	return f.AdoptionRepository.Create(ctx, d)
}

// failingTransitions rejects every status transition
type failingTransitions struct {
	repository.PetRepository
}

func (failingTransitions) TransitionStatus(context.Context, string, models.PetStatus, models.PetStatus) error {
	return context.DeadlineExceeded
}

func TestAdoptStorageFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("failed write leaves nothing behind", func(t *testing.T) {
		f := newAdoptionFixture(t)
		store := f.env.store
		adoptions := NewAdoptionService(&failingAdoptions{AdoptionRepository: store.Adoptions, failures: 1},
			f.env.pets, store.AdopterProfiles, store.Reports)

		_, err := adoptions.Adopt(ctx, f.adopter, f.pet.ID, AdoptRequest{ReportID: f.report.ID})
		if err == nil || errors.Is(err, ErrConflict) {
			t.Fatalf("expected a storage error, got %v", err)
		}
		if _, err := store.Adoptions.GetByPetID(ctx, f.pet.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("no adoption should be recorded, got %v", err)
		}

		// a retry succeeds once storage recovers
		if _, err := adoptions.Adopt(ctx, f.adopter, f.pet.ID, AdoptRequest{ReportID: f.report.ID}); err != nil {
			t.Fatalf("retry: %v", err)
		}
		pet, err := f.env.pets.Get(ctx, f.pet.ID)
		if err != nil || pet.Status != models.PetAdopted {
			t.Fatalf("pet should be adopted: %+v %v", pet, err)
		}
	})

	t.Run("status moves with the record", func(t *testing.T) {
		f := newAdoptionFixture(t)
		store := f.env.store
		pets := NewPetService(failingTransitions{store.Pets}, store.PetFeatures, store.Users, nil)
		adoptions := NewAdoptionService(store.Adoptions, pets, store.AdopterProfiles, store.Reports)

		if _, err := adoptions.Adopt(ctx, f.adopter, f.pet.ID, AdoptRequest{ReportID: f.report.ID}); err != nil {
			t.Fatalf("Adopt: %v", err)
		}
		pet, err := store.Pets.GetByID(ctx, f.pet.ID)
		if err != nil || pet.Status != models.PetAdopted {
			t.Fatalf("pet should be adopted: %+v %v", pet, err)
		}
	})
}

// staleReports always reads reports as open
type staleReports struct {
	repository.ReportRepository
}

func (s staleReports) GetByID(ctx context.Context, id string) (*models.Report, error) {
	rep, err := s.ReportRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rep.Status = nil
	return rep, nil
}

func TestResolveOnceUnderStaleRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	donor := env.signup(t, models.RoleRehomer, "rita@example.com")
	adopter := env.signup(t, models.RoleAdopter, "ann@example.com")
	pet := env.approvedPet(t, donor, env.admin(t))

	report, err := env.reports.Create(ctx, adopter, pet.ID, CreateReportRequest{ReportType: "home-check"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	reports := NewReportService(staleReports{env.store.Reports}, env.store.Pets)

	if _, err := reports.Resolve(ctx, report.ID, ResolveReportRequest{Status: models.ReportResolved}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	_, err = reports.Resolve(ctx, report.ID, ResolveReportRequest{Status: models.ReportRejected})
	assertIs(t, err, ErrConflict)

	got, err := env.store.Reports.GetByID(ctx, report.ID)
	if err != nil || got.Status == nil || *got.Status != models.ReportResolved {
		t.Fatalf("first outcome must stick: %+v %v", got, err)
	}
}

func TestConcurrentResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	donor := env.signup(t, models.RoleRehomer, "rita@example.com")
	adopter := env.signup(t, models.RoleAdopter, "ann@example.com")
	pet := env.approvedPet(t, donor, env.admin(t))

	report, err := env.reports.Create(ctx, adopter, pet.ID, CreateReportRequest{ReportType: "home-check"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < n; i++ {
		status := models.ReportResolved
		if i%2 == 1 {
			status = models.ReportRejected
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.reports.Resolve(ctx, report.ID, ResolveReportRequest{Status: status})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one resolve, got %d", successes)
	}
}
