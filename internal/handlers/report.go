package handlers

import (
	"net/http"

	"pet-adoption-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ReportHandler handles moderation reports and adoptions of pets
type ReportHandler struct {
	reportService   *services.ReportService
	adoptionService *services.AdoptionService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService, adoptionService *services.AdoptionService) *ReportHandler {
	return &ReportHandler{
		reportService:   reportService,
		adoptionService: adoptionService,
	}
}

// CreateReport handles POST /api/v1/pet/{pet_id}/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req services.CreateReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.reportService.Create(r.Context(), caller(r), chi.URLParam(r, "pet_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create report")
		return
	}

	log.Info().
		Str("report_id", report.ID).
		Str("pet_id", report.PetID).
		Str("user_id", report.UserID).
		Msg("Report filed")

	respondJSON(w, http.StatusCreated, report)
}

// ListReports handles GET /api/v1/pet/{pet_id}/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.ListByPet(r.Context(), chi.URLParam(r, "pet_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list reports")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
	})
}

// ResolveReport handles PUT /api/v1/pet/reports/{report_id}/status
func (h *ReportHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	var req services.ResolveReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.reportService.Resolve(r.Context(), chi.URLParam(r, "report_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to resolve report")
		return
	}

	log.Info().
		Str("report_id", report.ID).
		Str("status", string(req.Status)).
		Msg("Report resolved")

	respondJSON(w, http.StatusOK, report)
}

// Adopt handles POST /api/v1/pet/{pet_id}/adopt
func (h *ReportHandler) Adopt(w http.ResponseWriter, r *http.Request) {
	var req services.AdoptRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	details, err := h.adoptionService.Adopt(r.Context(), caller(r), chi.URLParam(r, "pet_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to adopt pet")
		return
	}

	log.Info().
		Str("adoption_id", details.ID).
		Str("pet_id", details.PetID).
		Str("user_id", details.UserID).
		Msg("Pet adopted")

	respondJSON(w, http.StatusCreated, details)
}

// GetAdoption handles GET /api/v1/pet/{pet_id}/adoption
func (h *ReportHandler) GetAdoption(w http.ResponseWriter, r *http.Request) {
	details, err := h.adoptionService.GetByPet(r.Context(), caller(r), chi.URLParam(r, "pet_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get adoption")
		return
	}
	respondJSON(w, http.StatusOK, details)
}
