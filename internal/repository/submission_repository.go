package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/subculture-collective/clipper-sub007/internal/models"
)

// SubmissionRepository manages persistence for clip submissions. Submissions
// are created by the upload flow elsewhere; this repository only reads them
// and applies moderation transitions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a new repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// GetByID loads one submission.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	const query = `SELECT id, user_id, clip_id, title, status, rejection_reason, reviewed_by, reviewed_at, created_at, updated_at
FROM submissions WHERE id = $1`
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &sub, nil
}

// TransitionParams describes one moderation state change.
type TransitionParams struct {
	ID         string
	To         models.SubmissionStatus
	Reason     *string
	ReviewedBy string
	ReviewedAt time.Time
}

// Transition applies a compare-and-swap status change and appends the audit
// entry in the same transaction. The update only matches rows still in
// pending, so of two racing reviewers at most one commit succeeds; the loser
// gets sql.ErrNoRows. A failed audit append rolls the whole transition back.
func (r *SubmissionRepository) Transition(ctx context.Context, params TransitionParams, entry *models.AuditLogEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE submissions
SET status = $2, rejection_reason = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $5
WHERE id = $1 AND status = 'pending'`
	res, err := tx.ExecContext(ctx, query, params.ID, params.To, params.Reason, params.ReviewedBy, params.ReviewedAt)
	if err != nil {
		return fmt.Errorf("transition submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition submission: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := insertAuditLog(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}
