package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/subculture-collective/clipper-sub007/internal/dto"
	"github.com/subculture-collective/clipper-sub007/internal/models"
	"github.com/subculture-collective/clipper-sub007/internal/policy"
	"github.com/subculture-collective/clipper-sub007/internal/repository"
	appErrors "github.com/subculture-collective/clipper-sub007/pkg/errors"
)

type submissionStore interface {
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	Transition(ctx context.Context, params repository.TransitionParams, entry *models.AuditLogEntry) error
}

// ModerationService owns the submission review state machine: pending clips
// move to approved or rejected exactly once, singly or in bulk, and every
// committed transition carries its audit entry.
type ModerationService struct {
	repo    submissionStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewModerationService constructs the service.
func NewModerationService(repo submissionStore, metrics *MetricsService, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{repo: repo, metrics: metrics, logger: logger}
}

func (s *ModerationService) authorize(actor *models.Actor, action policy.Action) error {
	if err := policy.Decide(actor, action, policy.Resource{}); err != nil {
		s.metrics.RecordDenial(appErrors.FromError(err).Code)
		return err
	}
	return nil
}

// Approve moves a pending submission to approved.
func (s *ModerationService) Approve(ctx context.Context, id string, actor *models.Actor) (*models.Submission, error) {
	if err := s.authorize(actor, policy.ActionApproveSubmission); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, actor, models.SubmissionApproved, nil, models.AuditActionApproveSubmission, nil)
}

// Reject moves a pending submission to rejected with a mandatory reason.
func (s *ModerationService) Reject(ctx context.Context, id string, actor *models.Actor, reason string) (*models.Submission, error) {
	if err := s.authorize(actor, policy.ActionRejectSubmission); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.ErrReasonRequired
	}
	details := map[string]interface{}{"rejection_reason": reason}
	return s.transition(ctx, id, actor, models.SubmissionRejected, &reason, models.AuditActionRejectSubmission, details)
}

func (s *ModerationService) transition(ctx context.Context, id string, actor *models.Actor, to models.SubmissionStatus, reason *string, auditAction string, details map[string]interface{}) (*models.Submission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if sub.Status != models.SubmissionPending {
		return nil, appErrors.ErrInvalidState
	}

	now := time.Now().UTC()
	entry := &models.AuditLogEntry{
		ActorID:      actor.ID,
		Action:       auditAction,
		ResourceType: models.ResourceSubmission,
		ResourceID:   id,
		Details:      auditDetails(details),
	}
	params := repository.TransitionParams{
		ID:         id,
		To:         to,
		Reason:     reason,
		ReviewedBy: actor.ID,
		ReviewedAt: now,
	}
	if err := s.repo.Transition(ctx, params, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A racing reviewer won the compare-and-swap.
			return nil, appErrors.ErrInvalidState
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to transition submission")
	}

	s.metrics.RecordDecision(auditAction, "success")

	sub.Status = to
	sub.RejectionReason = reason
	sub.ReviewedBy = &actor.ID
	sub.ReviewedAt = &now
	sub.UpdatedAt = now
	return sub, nil
}

// BulkApprove approves every pending id it can reach. Missing or already
// reviewed ids are skipped, not fatal.
func (s *ModerationService) BulkApprove(ctx context.Context, ids []string, actor *models.Actor) (*dto.BulkResult, error) {
	if err := s.authorize(actor, policy.ActionBulkApproveSubmission); err != nil {
		return nil, err
	}
	return s.bulkTransition(ctx, ids, actor, models.SubmissionApproved, nil, models.AuditActionBulkApproveSubmission)
}

// BulkReject rejects every pending id it can reach with a shared reason. The
// reason is validated before any mutation; per-id failures are skipped.
func (s *ModerationService) BulkReject(ctx context.Context, ids []string, actor *models.Actor, reason string) (*dto.BulkResult, error) {
	if err := s.authorize(actor, policy.ActionBulkRejectSubmission); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.ErrReasonRequired
	}
	return s.bulkTransition(ctx, ids, actor, models.SubmissionRejected, &reason, models.AuditActionBulkRejectSubmission)
}

func (s *ModerationService) bulkTransition(ctx context.Context, ids []string, actor *models.Actor, to models.SubmissionStatus, reason *string, auditAction string) (*dto.BulkResult, error) {
	result := &dto.BulkResult{BatchSize: len(ids)}
	now := time.Now().UTC()

	for _, id := range ids {
		// Cancellation keeps what already committed; there is no batch
		// rollback.
		if ctx.Err() != nil {
			s.logger.Warn("bulk moderation cancelled",
				zap.String("action", auditAction),
				zap.Int("committed", result.Count),
				zap.Int("batch_size", result.BatchSize))
			return result, nil
		}

		details := map[string]interface{}{"batch_size": len(ids)}
		if reason != nil {
			details["rejection_reason"] = *reason
		}
		entry := &models.AuditLogEntry{
			ActorID:      actor.ID,
			Action:       auditAction,
			ResourceType: models.ResourceSubmission,
			ResourceID:   id,
			Details:      auditDetails(details),
		}
		params := repository.TransitionParams{
			ID:         id,
			To:         to,
			Reason:     reason,
			ReviewedBy: actor.ID,
			ReviewedAt: now,
		}
		if err := s.repo.Transition(ctx, params, entry); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			// Storage failure is structural: report the partial count.
			return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bulk transition failed")
		}
		result.Count++
	}

	s.metrics.RecordDecision(auditAction, "success")
	return result, nil
}
