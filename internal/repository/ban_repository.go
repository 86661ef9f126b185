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

// BanRepository persists the local mirror of platform bans. Mirror rows are
// only written after the platform confirmed the action, and each write shares
// a transaction with its audit entry.
type BanRepository struct {
	db *sqlx.DB
}

// NewBanRepository constructs a new repository.
func NewBanRepository(db *sqlx.DB) *BanRepository {
	return &BanRepository{db: db}
}

// Create stores a confirmed ban mirror together with its audit entry.
func (r *BanRepository) Create(ctx context.Context, record *models.BanRecord, entry *models.AuditLogEntry) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ban create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO ban_records (id, platform_ban_id, broadcaster_platform_id, target_platform_id, issued_by, reason, expires_at, created_at)
VALUES (:id, :platform_ban_id, :broadcaster_platform_id, :target_platform_id, :issued_by, :reason, :expires_at, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create ban record: %w", err)
	}

	if err := insertAuditLog(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ban create: %w", err)
	}
	return nil
}

// Delete removes the mirror row for an unbanned user together with its audit
// entry. Missing rows are not an error: the mirror may already have expired.
func (r *BanRepository) Delete(ctx context.Context, broadcasterPlatformID, targetPlatformID string, entry *models.AuditLogEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ban delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `DELETE FROM ban_records WHERE broadcaster_platform_id = $1 AND target_platform_id = $2`
	if _, err := tx.ExecContext(ctx, query, broadcasterPlatformID, targetPlatformID); err != nil {
		return fmt.Errorf("delete ban record: %w", err)
	}

	if err := insertAuditLog(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ban delete: %w", err)
	}
	return nil
}

// GetActive returns the mirror row for a target on a channel, if present.
func (r *BanRepository) GetActive(ctx context.Context, broadcasterPlatformID, targetPlatformID string) (*models.BanRecord, error) {
	const query = `SELECT id, platform_ban_id, broadcaster_platform_id, target_platform_id, issued_by, reason, expires_at, created_at
FROM ban_records WHERE broadcaster_platform_id = $1 AND target_platform_id = $2`
	var record models.BanRecord
	if err := r.db.GetContext(ctx, &record, query, broadcasterPlatformID, targetPlatformID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get ban record: %w", err)
	}
	return &record, nil
}

// DeleteExpired drops timeout mirrors whose expiry passed. The platform lifts
// those automatically, so no audit entries are produced.
func (r *BanRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ban_records WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired bans: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired bans: %w", err)
	}
	return affected, nil
}
