package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
	"pet-adoption-backend/internal/validation"

	"github.com/google/uuid"
)

// ReportService handles moderation reports filed against pets
type ReportService struct {
	reports repository.ReportRepository
	pets    repository.PetRepository
}

// NewReportService creates a new report service
func NewReportService(reports repository.ReportRepository, pets repository.PetRepository) *ReportService {
	return &ReportService{
		reports: reports,
		pets:    pets,
	}
}

// CreateReportRequest represents a new report
type CreateReportRequest struct {
	ReportType    string `json:"reportType"`
	ReportContext string `json:"reportContext"`
}

// ResolveReportRequest records the outcome of a report
type ResolveReportRequest struct {
	Status models.ReportStatus `json:"status" validate:"required,oneof=resolved rejected"`
}

// Create files an open report against a pet
func (s *ReportService) Create(ctx context.Context, caller Caller, petID string, req CreateReportRequest) (*models.Report, error) {
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return nil, lookup("pet", err)
	}

	report := &models.Report{
		ID:            uuid.New().String(),
		UserID:        caller.ID,
		PetID:         petID,
		ReportType:    strings.TrimSpace(req.ReportType),
		ReportContext: req.ReportContext,
		Date:          time.Now().UTC(),
	}
	if err := validation.Struct(report); err != nil {
		return nil, err
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return report, nil
}

// ListByPet retrieves every report filed against a pet
func (s *ReportService) ListByPet(ctx context.Context, petID string) ([]*models.Report, error) {
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return nil, lookup("pet", err)
	}
	reports, err := s.reports.ListByPet(ctx, petID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	if reports == nil {
		reports = []*models.Report{}
	}
	return reports, nil
}

// Resolve closes an open report as resolved or rejected
func (s *ReportService) Resolve(ctx context.Context, reportID string, req ResolveReportRequest) (*models.Report, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, lookup("report", err)
	}
	if report.Status != nil {
		return nil, fail(ErrConflict, "Report is already %s", *report.Status)
	}

	err = s.reports.UpdateStatus(ctx, reportID, req.Status)
	switch {
	case errors.Is(err, repository.ErrStaleState):
		return nil, fail(ErrConflict, "Report is already closed")
	case err != nil:
		return nil, lookup("report", err)
	}
	report.Status = &req.Status
	return report, nil
}
