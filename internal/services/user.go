package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption-backend/internal/auth"
	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
	"pet-adoption-backend/internal/validation"

	"github.com/google/uuid"
)

// UserService handles user-related business logic
type UserService struct {
	users   repository.UserRepository
	tokens  *auth.TokenManager
	uploads *UploadService
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, uploads *UploadService) *UserService {
	return &UserService{
		users:   users,
		tokens:  tokens,
		uploads: uploads,
	}
}

// maxPasswordBytes is the longest input bcrypt accepts
const maxPasswordBytes = 72

// SignupRequest represents a request to create an account.
// bcrypt only reads the first 72 bytes, longer passwords are rejected.
type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

// SigninRequest represents a request to sign in
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries optional profile changes
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	PhotoURL  *string `json:"photoUrl" validate:"omitempty,url"`
}

// Session is a user together with a freshly issued token
type Session struct {
	User  *models.User
	Token string
}

// SignupAdopter creates an account with the Adopter role
func (s *UserService) SignupAdopter(ctx context.Context, req SignupRequest) (*Session, error) {
	return s.signup(ctx, req, models.RoleAdopter)
}

// SignupRehomer creates an account with the Rehomer role
func (s *UserService) SignupRehomer(ctx context.Context, req SignupRequest) (*Session, error) {
	return s.signup(ctx, req, models.RoleRehomer)
}

// signup validates, checks for an existing email, hashes, persists and
// issues a token. Nothing is written unless validation and the existence
// check pass.
func (s *UserService) signup(ctx context.Context, req SignupRequest, role models.Role) (*Session, error) {
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	// max=72 counts runes; bcrypt counts bytes
	if len(req.Password) > maxPasswordBytes {
		return nil, validation.Fail("password", "max")
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fail(ErrUserExists, "User already exist")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := validation.Struct(user); err != nil {
		return nil, err
	}

	// The unique index decides concurrent signups that both passed the check
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fail(ErrUserExists, "User already exist")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.session(user)
}

// Signin verifies credentials and issues a token
func (s *UserService) Signin(ctx context.Context, req SigninRequest) (*Session, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(ErrInvalidCredentials, "Invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, fail(ErrInvalidCredentials, "Invalid email or password")
	}

	return s.session(user)
}

func (s *UserService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

// ValidateToken validates a session token and returns its claims
func (s *UserService) ValidateToken(token string) (*auth.Claims, error) {
	return s.tokens.Validate(token)
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, lookup("user", err)
	}
	return user, nil
}

// UpdateProfile applies optional name and photo changes
func (s *UserService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*models.User, error) {
	if req.FirstName != nil {
		trimmed := strings.TrimSpace(*req.FirstName)
		req.FirstName = &trimmed
	}
	if req.LastName != nil {
		trimmed := strings.TrimSpace(*req.LastName)
		req.LastName = &trimmed
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	upd := repository.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PhotoURL:  req.PhotoURL,
	}
	if err := s.users.UpdateProfile(ctx, id, upd); err != nil {
		return nil, lookup("user", err)
	}
	return s.Get(ctx, id)
}

// SetOnline records presence; lastSeen is stamped on every change
func (s *UserService) SetOnline(ctx context.Context, id string, online bool) (*models.User, error) {
	now := time.Now().UTC()
	status := models.OnlineStatus{IsOnline: online, LastSeen: &now}
	if err := s.users.UpdateOnlineStatus(ctx, id, status); err != nil {
		return nil, lookup("user", err)
	}
	return s.Get(ctx, id)
}

// PresignPhoto issues an upload URL for the caller's profile photo and
// records the resulting object URL on the profile
func (s *UserService) PresignPhoto(ctx context.Context, id string, req UploadRequest) (*Upload, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	upload, err := s.uploads.PresignUserPhoto(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, id, repository.ProfileUpdate{PhotoURL: &upload.FileURL}); err != nil {
		return nil, lookup("user", err)
	}
	return upload, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
