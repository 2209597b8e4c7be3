package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"pet-adoption-backend/internal/auth"
	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/validation"
)

func TestSignupAdopter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.users.SignupAdopter(ctx, SignupRequest{
		FirstName: "Ann", LastName: "Lee", Email: " Ann@Example.com ", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("SignupAdopter: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a token")
	}
	if session.User.Email != "ann@example.com" {
		t.Errorf("email not normalized: %q", session.User.Email)
	}
	if session.User.Role != models.RoleAdopter {
		t.Errorf("role = %s", session.User.Role)
	}
	if session.User.PasswordHash == "secret1" || !auth.VerifyPassword(session.User.PasswordHash, "secret1") {
		t.Error("password must be stored as a verifiable hash")
	}

	claims, err := env.users.ValidateToken(session.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != session.User.ID || claims.Role != models.RoleAdopter {
		t.Errorf("claims = %+v", claims)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := SignupRequest{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "secret1"}

	if _, err := env.users.SignupAdopter(ctx, req); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	req.Email = "ANN@example.com"
	_, err := env.users.SignupRehomer(ctx, req)
	assertIs(t, err, ErrUserExists)
	if msg, _ := Reason(err); msg != "User already exist" {
		t.Errorf("reason = %q", msg)
	}
}

func TestSignupInvalidInputCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.SignupAdopter(ctx, SignupRequest{Email: "bad", Password: "12345"})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, want := range [][2]string{
		{"firstName", "required"},
		{"lastName", "required"},
		{"email", "email"},
		{"password", "min"},
	} {
		if !verr.Has(want[0], want[1]) {
			t.Errorf("missing %s/%s in %v", want[0], want[1], verr)
		}
	}

	exists, err := env.store.Users.EmailExists(ctx, "bad")
	if err != nil || exists {
		t.Fatalf("no user should be created: exists=%v err=%v", exists, err)
	}
}

func TestSignupPasswordTooLong(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.SignupAdopter(context.Background(), SignupRequest{
		FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: strings.Repeat("a", 73),
	})
	var verr *validation.Error
	if !errors.As(err, &verr) || !verr.Has("password", "max") {
		t.Fatalf("expected password max violation, got %v", err)
	}
}

func TestSignupMultibytePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "72 bytes", password: strings.Repeat("é", 36), wantErr: false},
		{name: "40 runes over 72 bytes", password: strings.Repeat("é", 40), wantErr: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := fmt.Sprintf("multi%d@example.com", i)
			_, err := env.users.SignupAdopter(ctx, SignupRequest{
				FirstName: "Ann", LastName: "Lee", Email: email, Password: tt.password,
			})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("signup: %v", err)
				}
				return
			}

			var verr *validation.Error
			if !errors.As(err, &verr) || !verr.Has("password", "max") {
				t.Fatalf("expected password max violation, got %v", err)
			}
			exists, err := env.store.Users.EmailExists(ctx, email)
			if err != nil || exists {
				t.Fatalf("no user should be created: exists=%v err=%v", exists, err)
			}
		})
	}
}

func TestConcurrentSignupSameEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := SignupRequest{FirstName: "Ann", LastName: "Lee", Email: "race@example.com", Password: "secret1"}

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.users.SignupAdopter(ctx, req)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrUserExists) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful signup, got %d", successes)
	}
}

func TestSignin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	caller := env.signup(t, models.RoleRehomer, "rita@example.com")

	session, err := env.users.Signin(ctx, SigninRequest{Email: "RITA@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signin: %v", err)
	}
	if session.User.ID != caller.ID || session.Token == "" {
		t.Fatalf("unexpected session: %+v", session)
	}

	_, err = env.users.Signin(ctx, SigninRequest{Email: "rita@example.com", Password: "wrong-password"})
	assertIs(t, err, ErrInvalidCredentials)

	_, err = env.users.Signin(ctx, SigninRequest{Email: "nobody@example.com", Password: "secret1"})
	assertIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	caller := env.signup(t, models.RoleAdopter, "ann@example.com")

	name := "  Anna "
	user, err := env.users.UpdateProfile(ctx, caller.ID, UpdateProfileRequest{FirstName: &name})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.FirstName != "Anna" || user.LastName != "Lee" {
		t.Errorf("unexpected names: %q %q", user.FirstName, user.LastName)
	}

	bad := "not a url"
	_, err = env.users.UpdateProfile(ctx, caller.ID, UpdateProfileRequest{PhotoURL: &bad})
	var verr *validation.Error
	if !errors.As(err, &verr) || !verr.Has("photoUrl", "url") {
		t.Fatalf("expected url violation, got %v", err)
	}

	_, err = env.users.UpdateProfile(ctx, "missing", UpdateProfileRequest{FirstName: &name})
	assertIs(t, err, ErrNotFound)
}

func TestSetOnline(t *testing.T) {
	env := newTestEnv(t)
	caller := env.signup(t, models.RoleAdopter, "ann@example.com")

	user, err := env.users.SetOnline(context.Background(), caller.ID, true)
	if err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if !user.OnlineStatus.IsOnline || user.OnlineStatus.LastSeen == nil {
		t.Errorf("status = %+v", user.OnlineStatus)
	}
}

func TestUserPresignPhoto(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	caller := env.signup(t, models.RoleAdopter, "ann@example.com")

	upload, err := env.users.PresignPhoto(ctx, caller.ID, UploadRequest{Filename: "me.png", ContentType: "image/png"})
	if err != nil {
		t.Fatalf("PresignPhoto: %v", err)
	}
	if upload.ExpiresIn != 300 {
		t.Errorf("ExpiresIn = %d", upload.ExpiresIn)
	}
	if !strings.HasPrefix(upload.FileURL, "https://pets.s3.eu-west-1.amazonaws.com/users/"+caller.ID+"/") ||
		!strings.HasSuffix(upload.FileURL, ".png") {
		t.Errorf("FileURL = %s", upload.FileURL)
	}

	user, err := env.users.Get(ctx, caller.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if user.PhotoURL == nil || *user.PhotoURL != upload.FileURL {
		t.Errorf("photo url not recorded: %v", user.PhotoURL)
	}

	_, err = env.users.PresignPhoto(ctx, caller.ID, UploadRequest{ContentType: "application/zip"})
	var verr *validation.Error
	if !errors.As(err, &verr) || !verr.Has("contentType", "oneof") {
		t.Fatalf("expected content type violation, got %v", err)
	}
}

func TestUploadsDisabled(t *testing.T) {
	uploads := NewUploadService(nil, configWithoutBucket())
	_, err := uploads.PresignUserPhoto(context.Background(), "u1", UploadRequest{ContentType: "image/png"})
	assertIs(t, err, ErrUploadsDisabled)
}
