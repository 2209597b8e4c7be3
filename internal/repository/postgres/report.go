package postgres

import (
	"context"
	"errors"
	"fmt"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository handles database operations for reports
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create creates a new report
func (r *ReportRepository) Create(ctx context.Context, rep *models.Report) error {
	query := `
		INSERT INTO reports (id, user_id, pet_id, report_type, report_context, status, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		rep.ID, rep.UserID, rep.PetID, rep.ReportType, rep.ReportContext, rep.Status, rep.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query := `
		SELECT id, user_id, pet_id, report_type, report_context, status, date
		FROM reports
		WHERE id = $1
	`
	rep, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rep, nil
}

// ListByPet retrieves reports filed against a pet, newest first
func (r *ReportRepository) ListByPet(ctx context.Context, petID string) ([]*models.Report, error) {
	query := `
		SELECT id, user_id, pet_id, report_type, report_context, status, date
		FROM reports
		WHERE pet_id = $1
		ORDER BY date DESC
	`
	rows, err := r.db.Query(ctx, query, petID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, nil
}

// UpdateStatus records the moderation outcome of a report that is still open
func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) error {
	query := `UPDATE reports SET status = $2 WHERE id = $1 AND status IS NULL`
	err := expectOne(r.db.Exec(ctx, query, id, status))
	if errors.Is(err, repository.ErrNotFound) {
		var exists bool
		if qerr := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reports WHERE id = $1)`, id).Scan(&exists); qerr != nil {
			return fmt.Errorf("failed to check report existence: %w", qerr)
		}
		if exists {
			return fmt.Errorf("report %s is already closed: %w", id, repository.ErrStaleState)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}
	return nil
}

func scanReport(row pgx.Row) (*models.Report, error) {
	var rep models.Report
	err := row.Scan(&rep.ID, &rep.UserID, &rep.PetID, &rep.ReportType, &rep.ReportContext, &rep.Status, &rep.Date)
	if err != nil {
		return nil, mapError(err)
	}
	return &rep, nil
}

// AdoptionRepository handles database operations for adoption details
type AdoptionRepository struct {
	db *pgxpool.Pool
}

// NewAdoptionRepository creates a new adoption repository
func NewAdoptionRepository(db *pgxpool.Pool) *AdoptionRepository {
	return &AdoptionRepository{db: db}
}

// Create records an adoption and marks the pet adopted in one transaction.
// A second adoption of the same pet yields ErrDuplicateKey.
func (r *AdoptionRepository) Create(ctx context.Context, d *models.AdoptionDetails) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO adoption_details (id, user_id, pet_id, report_id, donor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, query, d.ID, d.UserID, d.PetID, d.ReportID, d.DonorID, d.CreatedAt); err != nil {
		return fmt.Errorf("failed to create adoption details: %w", mapError(err))
	}

	tag, err := tx.Exec(ctx, `UPDATE pets SET status = $2 WHERE id = $1 AND status = $3`,
		d.PetID, models.PetAdopted, models.PetApproved)
	if err != nil {
		return fmt.Errorf("failed to mark pet adopted: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pet %s is no longer %s: %w", d.PetID, models.PetApproved, repository.ErrStaleState)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit adoption: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves an adoption by ID
func (r *AdoptionRepository) GetByID(ctx context.Context, id string) (*models.AdoptionDetails, error) {
	return r.getBy(ctx, "id", id)
}

// GetByPetID retrieves the adoption of a pet
func (r *AdoptionRepository) GetByPetID(ctx context.Context, petID string) (*models.AdoptionDetails, error) {
	return r.getBy(ctx, "pet_id", petID)
}

func (r *AdoptionRepository) getBy(ctx context.Context, column, value string) (*models.AdoptionDetails, error) {
	query := `
		SELECT id, user_id, pet_id, report_id, donor_id, created_at
		FROM adoption_details
		WHERE ` + column + ` = $1
	`
	var d models.AdoptionDetails
	err := r.db.QueryRow(ctx, query, value).Scan(&d.ID, &d.UserID, &d.PetID, &d.ReportID, &d.DonorID, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get adoption details: %w", mapError(err))
	}
	return &d, nil
}
