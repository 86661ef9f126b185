package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/subculture-collective/clipper-sub007/internal/models"
)

// PlatformAccountRepository reads streaming platform account linkage.
type PlatformAccountRepository struct {
	db *sqlx.DB
}

// NewPlatformAccountRepository constructs a new repository.
func NewPlatformAccountRepository(db *sqlx.DB) *PlatformAccountRepository {
	return &PlatformAccountRepository{db: db}
}

// GetByUserID returns the linkage row for a site user, or sql.ErrNoRows when
// the user has not linked a platform account.
func (r *PlatformAccountRepository) GetByUserID(ctx context.Context, userID string) (*models.PlatformAccount, error) {
	const query = `SELECT user_id, platform_user_id, login, is_broadcaster, is_platform_moderator, scopes, linked_at
FROM platform_accounts WHERE user_id = $1`
	var account models.PlatformAccount
	if err := r.db.GetContext(ctx, &account, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get platform account: %w", err)
	}
	return &account, nil
}
