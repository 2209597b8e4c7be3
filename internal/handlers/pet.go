package handlers

import (
	"net/http"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PetHandler handles listing, feature and photo HTTP requests
type PetHandler struct {
	petService *services.PetService
}

// NewPetHandler creates a new pet handler
func NewPetHandler(petService *services.PetService) *PetHandler {
	return &PetHandler{
		petService: petService,
	}
}

// ListPets handles GET /api/v1/pet. Without a status filter only approved
// listings are returned.
func (h *PetHandler) ListPets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	if status == "" {
		status = string(models.PetApproved)
	}
	limit, offset := pagingParams(r)

	pets, total, err := h.petService.List(r.Context(), services.ListPetsRequest{
		Status:  status,
		Species: q.Get("species"),
		DonorID: q.Get("donorId"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to list pets")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pets":  pets,
		"total": total,
	})
}

// GetPet handles GET /api/v1/pet/{pet_id}
func (h *PetHandler) GetPet(w http.ResponseWriter, r *http.Request) {
	pet, err := h.petService.Get(r.Context(), chi.URLParam(r, "pet_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get pet")
		return
	}
	respondJSON(w, http.StatusOK, pet)
}

// CreatePet handles POST /api/v1/pet
func (h *PetHandler) CreatePet(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pet, err := h.petService.Create(r.Context(), caller(r), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create pet")
		return
	}

	log.Info().
		Str("pet_id", pet.ID).
		Str("donor_id", pet.DonorID).
		Msg("Pet listed")

	respondJSON(w, http.StatusCreated, pet)
}

// ApprovePet handles PUT /api/v1/pet/{pet_id}/approve
func (h *PetHandler) ApprovePet(w http.ResponseWriter, r *http.Request) {
	pet, err := h.petService.Approve(r.Context(), chi.URLParam(r, "pet_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to approve pet")
		return
	}

	log.Info().Str("pet_id", pet.ID).Msg("Pet approved")
	respondJSON(w, http.StatusOK, pet)
}

// GetFeatures handles GET /api/v1/pet/{pet_id}/features
func (h *PetHandler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	features, err := h.petService.GetFeatures(r.Context(), chi.URLParam(r, "pet_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get pet features")
		return
	}
	respondJSON(w, http.StatusOK, features)
}

// SetFeatures handles PUT /api/v1/pet/{pet_id}/features
func (h *PetHandler) SetFeatures(w http.ResponseWriter, r *http.Request) {
	var req models.PetFeatures
	if !decodeJSON(w, r, &req) {
		return
	}

	features, err := h.petService.SetFeatures(r.Context(), caller(r), chi.URLParam(r, "pet_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to set pet features")
		return
	}
	respondJSON(w, http.StatusOK, features)
}

// UploadPhoto handles POST /api/v1/pet/{pet_id}/photo
func (h *PetHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	var req services.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	petID := chi.URLParam(r, "pet_id")

	upload, err := h.petService.PresignPhoto(r.Context(), caller(r), petID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate pre-signed URL")
		return
	}

	log.Info().
		Str("pet_id", petID).
		Str("filename", req.Filename).
		Msg("Pre-signed URL generated")

	respondJSON(w, http.StatusOK, upload)
}
