package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/subculture-collective/clipper-sub007/internal/models"
)

// MembershipRepository manages chat channel membership rows.
type MembershipRepository struct {
	db *sqlx.DB
}

// NewMembershipRepository constructs a new repository.
func NewMembershipRepository(db *sqlx.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// GetMember loads one membership row.
func (r *MembershipRepository) GetMember(ctx context.Context, channelID, userID string) (*models.ChannelMember, error) {
	const query = `SELECT channel_id, user_id, role, added_at
FROM channel_members WHERE channel_id = $1 AND user_id = $2`
	var member models.ChannelMember
	if err := r.db.GetContext(ctx, &member, query, channelID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get channel member: %w", err)
	}
	return &member, nil
}

// Remove deletes a non-owner membership and appends the audit entry in the
// same transaction. The owner guard is enforced in the statement as well as in
// policy, so a stale read can never delete the owner row.
func (r *MembershipRepository) Remove(ctx context.Context, channelID, userID string, entry *models.AuditLogEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin member remove: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `DELETE FROM channel_members WHERE channel_id = $1 AND user_id = $2 AND role <> 'owner'`
	res, err := tx.ExecContext(ctx, query, channelID, userID)
	if err != nil {
		return fmt.Errorf("remove channel member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove channel member: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := insertAuditLog(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit member remove: %w", err)
	}
	return nil
}

// UpdateRole changes a non-owner member's role and appends the audit entry in
// the same transaction.
func (r *MembershipRepository) UpdateRole(ctx context.Context, channelID, userID string, role models.MemberRole, entry *models.AuditLogEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin member role update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE channel_members SET role = $3 WHERE channel_id = $1 AND user_id = $2 AND role <> 'owner'`
	res, err := tx.ExecContext(ctx, query, channelID, userID, role)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := insertAuditLog(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit member role update: %w", err)
	}
	return nil
}
