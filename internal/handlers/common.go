package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"pet-adoption-backend/internal/middleware"
	"pet-adoption-backend/internal/repository"
	"pet-adoption-backend/internal/services"
	"pet-adoption-backend/internal/validation"

	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

// MessageResponse represents a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Message: message})
}

// respondServiceError maps a service error onto a status code and a
// client-safe message. Only unexpected failures are logged at error level.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid input", Errors: verr.Fields})
		return
	}

	status, fallback := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("user_id", middleware.GetUserID(r.Context())).
			Str("path", r.URL.Path).
			Msg(action)
		respondError(w, "Internal server error", status)
		return
	}

	log.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg(action)
	msg, ok := services.Reason(err)
	if !ok {
		msg = fallback
	}
	respondError(w, msg, status)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUserExists):
		return http.StatusBadRequest, "User already exist"
	case errors.Is(err, services.ErrInvalidReference):
		return http.StatusBadRequest, "Invalid reference"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, services.ErrConflict), errors.Is(err, repository.ErrDuplicateKey):
		return http.StatusConflict, "Conflict"
	case errors.Is(err, services.ErrUploadsDisabled):
		return http.StatusServiceUnavailable, "Uploads are not available"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// decodeJSON reads a JSON body into dst, answering 400 on malformed input
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, "Invalid input", http.StatusBadRequest)
		return false
	}
	return true
}

// caller builds the service caller from the authenticated context
func caller(r *http.Request) services.Caller {
	ctx := r.Context()
	return services.Caller{ID: middleware.GetUserID(ctx), Role: middleware.GetRole(ctx)}
}

// pagingParams parses limit and offset query parameters; services clamp them
func pagingParams(r *http.Request) (int, int) {
	limit, offset := 0, 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			limit = parsedLimit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil {
			offset = parsedOffset
		}
	}
	return limit, offset
}
