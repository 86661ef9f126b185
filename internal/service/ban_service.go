package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/subculture-collective/clipper-sub007/internal/dto"
	"github.com/subculture-collective/clipper-sub007/internal/models"
	"github.com/subculture-collective/clipper-sub007/internal/platform"
	"github.com/subculture-collective/clipper-sub007/internal/policy"
	"github.com/subculture-collective/clipper-sub007/internal/ratelimit"
	appErrors "github.com/subculture-collective/clipper-sub007/pkg/errors"
)

type banStore interface {
	Create(ctx context.Context, ban *models.BanRecord, entry *models.AuditLogEntry) error
	Delete(ctx context.Context, broadcasterID, targetID string, entry *models.AuditLogEntry) error
}

type banGateway interface {
	BanUser(ctx context.Context, req platform.BanRequest) (*platform.Ban, error)
	UnbanUser(ctx context.Context, broadcasterID, moderatorID, userID string) error
}

// BanService fronts the streaming platform's ban API. Every call walks the
// same gate order: rate limit, permission, field validation, upstream call,
// then the local mirror write with its audit entry. A request rejected by an
// earlier gate never reaches a later one.
type BanService struct {
	repo      banStore
	gateway   banGateway
	limiter   ratelimit.Limiter
	rateScope string
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewBanService constructs the service. rateScope is "global" or "actor".
func NewBanService(repo banStore, gateway banGateway, limiter ratelimit.Limiter, rateScope string, metrics *MetricsService, logger *zap.Logger) *BanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BanService{
		repo:      repo,
		gateway:   gateway,
		limiter:   limiter,
		rateScope: rateScope,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *BanService) rateKey(actor *models.Actor) string {
	if s.rateScope == "actor" && actor != nil {
		return actor.ID
	}
	return ratelimit.GlobalKey
}

func (s *BanService) takeBudget(ctx context.Context, actor *models.Actor) error {
	res, err := s.limiter.Take(ctx, s.rateKey(actor))
	if err != nil {
		// Fail closed when the limiter store is unreachable.
		s.logger.Error("rate limiter unavailable", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrRateLimitExceeded.Code, appErrors.ErrRateLimitExceeded.Status, appErrors.ErrRateLimitExceeded.Message)
	}
	if !res.Allowed {
		s.metrics.RecordRateLimited()
		return appErrors.WithMeta(appErrors.ErrRateLimitExceeded, map[string]interface{}{
			"reset_at": res.ResetAt.UTC().Format(time.RFC3339),
			"limit":    res.Limit,
		})
	}
	return nil
}

func (s *BanService) authorize(actor *models.Actor, action policy.Action) error {
	if err := policy.Decide(actor, action, policy.Resource{}); err != nil {
		s.metrics.RecordDenial(appErrors.FromError(err).Code)
		return err
	}
	return nil
}

// Ban issues a ban or timeout against a user in a broadcaster's channel and
// mirrors it locally once the platform accepts it.
func (s *BanService) Ban(ctx context.Context, actor *models.Actor, req *dto.BanUserRequest) (*models.BanRecord, error) {
	if err := s.takeBudget(ctx, actor); err != nil {
		return nil, err
	}
	if err := s.authorize(actor, policy.ActionBanUser); err != nil {
		return nil, err
	}

	if req.BroadcasterID == "" || req.UserID == "" {
		return nil, appErrors.ErrMissingFields
	}
	reason := strings.TrimSpace(req.Reason)
	if req.DurationSeconds != nil {
		d := *req.DurationSeconds
		if d < 1 || d > models.MaxBanDurationSeconds {
			return nil, appErrors.ErrDurationRange
		}
	}

	moderatorID := *actor.PlatformAccountID
	start := time.Now()
	ban, err := s.gateway.BanUser(ctx, platform.BanRequest{
		BroadcasterID:   req.BroadcasterID,
		ModeratorID:     moderatorID,
		UserID:          req.UserID,
		Reason:          reason,
		DurationSeconds: req.DurationSeconds,
	})
	s.metrics.ObservePlatformCall("ban_user", time.Since(start))
	if err != nil {
		s.metrics.RecordDecision(models.AuditActionBanUser, "upstream_error")
		return nil, s.mapPlatformError(err)
	}

	record := &models.BanRecord{
		PlatformBanID:         ban.UserID,
		BroadcasterPlatformID: req.BroadcasterID,
		TargetPlatformID:      req.UserID,
		IssuedBy:              actor.ID,
		ExpiresAt:             banExpiry(ban, req.DurationSeconds),
	}
	if reason != "" {
		record.Reason = &reason
	}
	entry := &models.AuditLogEntry{
		ActorID:      actor.ID,
		Action:       models.AuditActionBanUser,
		ResourceType: models.ResourcePlatformBan,
		ResourceID:   req.UserID,
		Details: auditDetails(map[string]interface{}{
			"broadcaster_id": req.BroadcasterID,
			"user_id":        req.UserID,
			"reason":         reason,
			"duration":       req.DurationSeconds,
			"is_timeout":     req.DurationSeconds != nil,
		}),
	}
	if err := s.repo.Create(ctx, record, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record ban")
	}

	s.metrics.RecordDecision(models.AuditActionBanUser, "success")
	return record, nil
}

// Unban lifts a ban in a broadcaster's channel and removes the local mirror.
func (s *BanService) Unban(ctx context.Context, actor *models.Actor, req *dto.UnbanUserRequest) error {
	if err := s.takeBudget(ctx, actor); err != nil {
		return err
	}
	if err := s.authorize(actor, policy.ActionUnbanUser); err != nil {
		return err
	}
	if req.BroadcasterID == "" || req.UserID == "" {
		return appErrors.ErrMissingFields
	}

	moderatorID := *actor.PlatformAccountID
	start := time.Now()
	err := s.gateway.UnbanUser(ctx, req.BroadcasterID, moderatorID, req.UserID)
	s.metrics.ObservePlatformCall("unban_user", time.Since(start))
	if err != nil {
		s.metrics.RecordDecision(models.AuditActionUnbanUser, "upstream_error")
		return s.mapPlatformError(err)
	}

	entry := &models.AuditLogEntry{
		ActorID:      actor.ID,
		Action:       models.AuditActionUnbanUser,
		ResourceType: models.ResourcePlatformBan,
		ResourceID:   req.UserID,
		Details: auditDetails(map[string]interface{}{
			"broadcaster_id": req.BroadcasterID,
			"user_id":        req.UserID,
		}),
	}
	if err := s.repo.Delete(ctx, req.BroadcasterID, req.UserID, entry); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear ban record")
	}

	s.metrics.RecordDecision(models.AuditActionUnbanUser, "success")
	return nil
}

func (s *BanService) mapPlatformError(err error) error {
	var apiErr *platform.APIError
	if !errors.As(err, &apiErr) {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
	switch apiErr.Category {
	case platform.CategoryAuth:
		return appErrors.Wrap(err, appErrors.ErrNotAuthenticatedExternal.Code, appErrors.ErrNotAuthenticatedExternal.Status, appErrors.ErrNotAuthenticatedExternal.Message)
	case platform.CategoryScope:
		return appErrors.Wrap(err, appErrors.ErrInsufficientScopes.Code, appErrors.ErrInsufficientScopes.Status, appErrors.ErrInsufficientScopes.Message)
	case platform.CategoryRateLimited:
		s.metrics.RecordRateLimited()
		return appErrors.Wrap(err, appErrors.ErrRateLimitExceeded.Code, appErrors.ErrRateLimitExceeded.Status, appErrors.ErrRateLimitExceeded.Message)
	case platform.CategoryNotFound:
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "ban target not found")
	case platform.CategoryInvalid:
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, apiErr.Message)
	default:
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
}

func banExpiry(ban *platform.Ban, durationSeconds *int) *time.Time {
	if ban != nil && ban.EndTime != nil {
		t := ban.EndTime.UTC()
		return &t
	}
	if durationSeconds != nil {
		t := time.Now().UTC().Add(time.Duration(*durationSeconds) * time.Second)
		return &t
	}
	return nil
}
