package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/subculture-collective/clipper-sub007/internal/models"
	appErrors "github.com/subculture-collective/clipper-sub007/pkg/errors"
)

type platformAccountReader interface {
	GetByUserID(ctx context.Context, userID string) (*models.PlatformAccount, error)
}

// IdentityService turns validated JWT claims into the flat actor attribute
// bag the permission policy evaluates, joining in the streaming platform
// linkage when the user has one.
type IdentityService struct {
	accounts platformAccountReader
	logger   *zap.Logger
}

// NewIdentityService constructs the service.
func NewIdentityService(accounts platformAccountReader, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{accounts: accounts, logger: logger}
}

// Resolve builds the Actor for one request. A missing platform linkage is not
// an error: the actor simply carries no platform attributes and the policy
// denies platform actions for them.
func (s *IdentityService) Resolve(ctx context.Context, claims *models.JWTClaims) (*models.Actor, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrNotAuthenticated
	}

	actor := &models.Actor{
		ID:   claims.UserID,
		Role: claims.Role,
	}

	account, err := s.accounts.GetByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return actor, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve platform linkage")
	}

	actor.PlatformAccountID = &account.PlatformUserID
	actor.IsBroadcaster = account.IsBroadcaster
	actor.IsPlatformModerator = account.IsPlatformModerator
	actor.HasBanScope = account.HasScope(models.BanScope)
	return actor, nil
}
