package handlers

import (
	"context"
	"net/http"

	"pet-adoption-backend/internal/middleware"
	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles account and adoption-details HTTP requests
type UserHandler struct {
	userService    *services.UserService
	profileService *services.AdopterProfileService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, profileService *services.AdopterProfileService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		profileService: profileService,
	}
}

// AuthResponse is returned by signup and signin
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user,omitempty"`
}

// StatusRequest toggles presence
type StatusRequest struct {
	IsOnline bool `json:"isOnline"`
}

// SignupAdopter handles POST /api/v1/user/adopter/signup
func (h *UserHandler) SignupAdopter(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, h.userService.SignupAdopter)
}

// SignupRehomer handles POST /api/v1/user/rehomer/signup
func (h *UserHandler) SignupRehomer(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, h.userService.SignupRehomer)
}

func (h *UserHandler) signup(
	w http.ResponseWriter,
	r *http.Request,
	create func(context.Context, services.SignupRequest) (*services.Session, error),
) {
	var req services.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := create(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to sign up user")
		return
	}

	log.Info().
		Str("user_id", session.User.ID).
		Str("role", string(session.User.Role)).
		Msg("User created")

	respondJSON(w, http.StatusOK, AuthResponse{
		Message: "User created successfully",
		Token:   session.Token,
	})
}

// Signin handles POST /api/v1/user/signin
func (h *UserHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req services.SigninRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.userService.Signin(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to sign in user")
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{
		Message: "Signed in successfully",
		Token:   session.Token,
		User:    session.User,
	})
}

// GetMe handles GET /api/v1/user/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/user/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// SetStatus handles PUT /api/v1/user/me/status
func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.SetOnline(r.Context(), middleware.GetUserID(r.Context()), req.IsOnline)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update online status")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UploadPhoto handles POST /api/v1/user/me/photo
func (h *UserHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	var req services.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := middleware.GetUserID(r.Context())

	upload, err := h.userService.PresignPhoto(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate pre-signed URL")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("filename", req.Filename).
		Msg("Pre-signed URL generated")

	respondJSON(w, http.StatusOK, upload)
}

// SubmitAdoptionDetails handles POST /api/v1/user/me/adoption-details
func (h *UserHandler) SubmitAdoptionDetails(w http.ResponseWriter, r *http.Request) {
	var req models.AdoptionUserDetails
	if !decodeJSON(w, r, &req) {
		return
	}

	details, err := h.profileService.Submit(r.Context(), caller(r), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to submit adoption details")
		return
	}

	log.Info().Str("user_id", details.UserID).Msg("Adoption details submitted")
	respondJSON(w, http.StatusCreated, details)
}

// GetAdoptionDetails handles GET /api/v1/user/me/adoption-details
func (h *UserHandler) GetAdoptionDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.profileService.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get adoption details")
		return
	}
	respondJSON(w, http.StatusOK, details)
}
