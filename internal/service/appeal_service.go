package service

import (
	"context"
	"database/sql"
	"encoding/json"
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

type appealStore interface {
	Create(ctx context.Context, appeal *models.Appeal, entry *models.AuditLogEntry) error
	GetByID(ctx context.Context, id string) (*models.Appeal, error)
	Resolve(ctx context.Context, params repository.ResolveParams, entry *models.AuditLogEntry) error
}

type auditEntryReader interface {
	GetByID(ctx context.Context, id string) (*models.AuditLogEntry, error)
}

type submissionReader interface {
	GetByID(ctx context.Context, id string) (*models.Submission, error)
}

// AppealService lets the subject of a moderation action contest it and lets
// staff resolve the appeal. Resolving never reverses the original action.
type AppealService struct {
	repo        appealStore
	audit       auditEntryReader
	submissions submissionReader
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewAppealService constructs the service.
func NewAppealService(repo appealStore, audit auditEntryReader, submissions submissionReader, metrics *MetricsService, logger *zap.Logger) *AppealService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppealService{repo: repo, audit: audit, submissions: submissions, metrics: metrics, logger: logger}
}

// Submit files an appeal against a prior moderation action. Only the subject
// of the original action may appeal it.
func (s *AppealService) Submit(ctx context.Context, actor *models.Actor, req *dto.CreateAppealRequest) (*models.Appeal, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.ErrReasonRequired
	}

	original, err := s.audit.GetByID(ctx, req.ModerationActionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "moderation action not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load moderation action")
	}

	ownerID, err := s.subjectOf(ctx, actor, original)
	if err != nil {
		return nil, err
	}
	if err := policy.Decide(actor, policy.ActionSubmitAppeal, policy.Resource{OwnerID: ownerID}); err != nil {
		s.metrics.RecordDenial(appErrors.FromError(err).Code)
		return nil, err
	}

	appeal := &models.Appeal{
		ModerationActionID: original.ID,
		UserID:             actor.ID,
		Reason:             reason,
		Status:             models.AppealPending,
	}
	entry := &models.AuditLogEntry{
		ActorID:      actor.ID,
		Action:       models.AuditActionAppealSubmitted,
		ResourceType: models.ResourceAppeal,
		ResourceID:   original.ID,
		Details: auditDetails(map[string]interface{}{
			"moderation_action_id": original.ID,
			"reason":               reason,
		}),
	}
	if err := s.repo.Create(ctx, appeal, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appeal")
	}

	s.metrics.RecordDecision(models.AuditActionAppealSubmitted, "success")
	return appeal, nil
}

// subjectOf resolves who the original moderation action was taken against,
// expressed as the site user id the ownership check compares with. For
// submission reviews that is the submitter; for platform bans the banned
// platform account is matched against the caller's linked account.
func (s *AppealService) subjectOf(ctx context.Context, actor *models.Actor, original *models.AuditLogEntry) (string, error) {
	switch original.ResourceType {
	case models.ResourceSubmission:
		sub, err := s.submissions.GetByID(ctx, original.ResourceID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", appErrors.New(appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "appealed submission not found")
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appealed submission")
		}
		return sub.UserID, nil
	case models.ResourcePlatformBan:
		var details struct {
			UserID string `json:"user_id"`
		}
		if len(original.Details) > 0 {
			if err := json.Unmarshal(original.Details, &details); err != nil {
				s.logger.Warn("malformed audit details on appealed ban", zap.String("audit_id", original.ID), zap.Error(err))
			}
		}
		bannedID := details.UserID
		if bannedID == "" {
			bannedID = original.ResourceID
		}
		if actor != nil && actor.PlatformAccountID != nil && *actor.PlatformAccountID == bannedID {
			return actor.ID, nil
		}
		// No matching linked account: hand back an id that cannot be the
		// caller so the ownership check denies.
		return "platform:" + bannedID, nil
	default:
		return "", appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "action is not appealable")
	}
}

// Resolve applies a staff verdict to a pending appeal.
func (s *AppealService) Resolve(ctx context.Context, id string, actor *models.Actor, req *dto.ResolveAppealRequest) (*models.Appeal, error) {
	if err := policy.Decide(actor, policy.ActionResolveAppeal, policy.Resource{}); err != nil {
		s.metrics.RecordDenial(appErrors.FromError(err).Code)
		return nil, err
	}

	appeal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appeal")
	}
	if appeal.Status != models.AppealPending {
		return nil, appErrors.ErrInvalidState
	}

	status := models.AppealRejected
	if models.AppealDecision(req.Decision) == models.AppealDecisionApprove {
		status = models.AppealApproved
	}
	var resolution *string
	if trimmed := strings.TrimSpace(req.Resolution); trimmed != "" {
		resolution = &trimmed
	}

	now := time.Now().UTC()
	entry := &models.AuditLogEntry{
		ActorID:      actor.ID,
		Action:       models.AuditActionAppealResolved,
		ResourceType: models.ResourceAppeal,
		ResourceID:   id,
		Details: auditDetails(map[string]interface{}{
			"decision":   req.Decision,
			"resolution": resolution,
		}),
	}
	params := repository.ResolveParams{
		ID:         id,
		Status:     status,
		Resolution: resolution,
		ResolvedBy: actor.ID,
		ResolvedAt: now,
	}
	if err := s.repo.Resolve(ctx, params, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidState
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve appeal")
	}

	s.metrics.RecordDecision(models.AuditActionAppealResolved, "success")

	appeal.Status = status
	appeal.Resolution = resolution
	appeal.ResolvedBy = &actor.ID
	appeal.ResolvedAt = &now
	return appeal, nil
}
