package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/subculture-collective/clipper-sub007/internal/models"
)

// AppealRepository persists appeals against moderation decisions.
type AppealRepository struct {
	db *sqlx.DB
}

// NewAppealRepository constructs a new repository.
func NewAppealRepository(db *sqlx.DB) *AppealRepository {
	return &AppealRepository{db: db}
}

// Create stores a new pending appeal and its audit entry atomically.
func (r *AppealRepository) Create(ctx context.Context, appeal *models.Appeal, entry *models.AuditLogEntry) error {
	if appeal.ID == "" {
		appeal.ID = uuid.NewString()
	}
	if appeal.CreatedAt.IsZero() {
		appeal.CreatedAt = time.Now().UTC()
	}
	appeal.Status = models.AppealPending

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin appeal create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO appeals (id, moderation_action_id, user_id, reason, status, created_at)
VALUES (:id, :moderation_action_id, :user_id, :reason, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, appeal); err != nil {
		return fmt.Errorf("create appeal: %w", err)
	}

	if err := insertAuditLog(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit appeal create: %w", err)
	}
	return nil
}

// GetByID loads one appeal.
func (r *AppealRepository) GetByID(ctx context.Context, id string) (*models.Appeal, error) {
	const query = `SELECT id, moderation_action_id, user_id, reason, status, resolution, resolved_by, resolved_at, created_at
FROM appeals WHERE id = $1`
	var appeal models.Appeal
	if err := r.db.GetContext(ctx, &appeal, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get appeal: %w", err)
	}
	return &appeal, nil
}

// ResolveParams records a reviewer verdict.
type ResolveParams struct {
	ID         string
	Status     models.AppealStatus
	Resolution *string
	ResolvedBy string
	ResolvedAt time.Time
}

// Resolve applies the verdict with a compare-and-swap on pending status and
// appends the audit entry in the same transaction. An already-resolved appeal
// yields sql.ErrNoRows.
func (r *AppealRepository) Resolve(ctx context.Context, params ResolveParams, entry *models.AuditLogEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin appeal resolve: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE appeals
SET status = $2, resolution = $3, resolved_by = $4, resolved_at = $5
WHERE id = $1 AND status = 'pending'`
	res, err := tx.ExecContext(ctx, query, params.ID, params.Status, params.Resolution, params.ResolvedBy, params.ResolvedAt)
	if err != nil {
		return fmt.Errorf("resolve appeal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve appeal: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := insertAuditLog(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit appeal resolve: %w", err)
	}
	return nil
}
