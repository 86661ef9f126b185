package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/subculture-collective/clipper-sub007/internal/models"
	"github.com/subculture-collective/clipper-sub007/internal/policy"
	appErrors "github.com/subculture-collective/clipper-sub007/pkg/errors"
)

type membershipStore interface {
	GetMember(ctx context.Context, channelID, userID string) (*models.ChannelMember, error)
	Remove(ctx context.Context, channelID, userID string, entry *models.AuditLogEntry) error
	UpdateRole(ctx context.Context, channelID, userID string, role models.MemberRole, entry *models.AuditLogEntry) error
}

// MembershipService manages chat channel membership. The channel owner can
// never be removed or demoted through it.
type MembershipService struct {
	repo    membershipStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewMembershipService constructs the service.
func NewMembershipService(repo membershipStore, metrics *MetricsService, logger *zap.Logger) *MembershipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MembershipService{repo: repo, metrics: metrics, logger: logger}
}

func (s *MembershipService) loadTarget(ctx context.Context, channelID, userID string) (*models.ChannelMember, error) {
	member, err := s.repo.GetMember(ctx, channelID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load channel member")
	}
	return member, nil
}

func (s *MembershipService) authorize(actor *models.Actor, action policy.Action, target *models.ChannelMember) error {
	res := policy.Resource{TargetIsOwner: target.Role == models.MemberRoleOwner}
	if err := policy.Decide(actor, action, res); err != nil {
		s.metrics.RecordDenial(appErrors.FromError(err).Code)
		return err
	}
	return nil
}

// Remove kicks a member out of a channel.
func (s *MembershipService) Remove(ctx context.Context, actor *models.Actor, channelID, userID string) error {
	target, err := s.loadTarget(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, policy.ActionRemoveChannelMember, target); err != nil {
		return err
	}

	entry := &models.AuditLogEntry{
		ActorID:      actor.ID,
		Action:       models.AuditActionRemoveChannelMember,
		ResourceType: models.ResourceChannelMember,
		ResourceID:   userID,
		Details: auditDetails(map[string]interface{}{
			"channel_id":    channelID,
			"user_id":       userID,
			"previous_role": target.Role,
		}),
	}
	if err := s.repo.Remove(ctx, channelID, userID, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove channel member")
	}

	s.metrics.RecordDecision(models.AuditActionRemoveChannelMember, "success")
	return nil
}

// ChangeRole switches a member between moderator and member.
func (s *MembershipService) ChangeRole(ctx context.Context, actor *models.Actor, channelID, userID string, role models.MemberRole) (*models.ChannelMember, error) {
	target, err := s.loadTarget(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, policy.ActionChangeMemberRole, target); err != nil {
		return nil, err
	}
	if role != models.MemberRoleModerator && role != models.MemberRoleMember {
		return nil, appErrors.ErrValidation
	}

	entry := &models.AuditLogEntry{
		ActorID:      actor.ID,
		Action:       models.AuditActionChangeMemberRole,
		ResourceType: models.ResourceChannelMember,
		ResourceID:   userID,
		Details: auditDetails(map[string]interface{}{
			"channel_id":    channelID,
			"user_id":       userID,
			"previous_role": target.Role,
			"new_role":      role,
		}),
	}
	if err := s.repo.UpdateRole(ctx, channelID, userID, role, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change member role")
	}

	s.metrics.RecordDecision(models.AuditActionChangeMemberRole, "success")
	target.Role = role
	return target, nil
}
