package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/subculture-collective/clipper-sub007/internal/dto"
	"github.com/subculture-collective/clipper-sub007/internal/models"
	"github.com/subculture-collective/clipper-sub007/internal/policy"
	appErrors "github.com/subculture-collective/clipper-sub007/pkg/errors"
)

type auditReader interface {
	Query(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLogEntry, int, error)
}

// AuditService exposes the operator read side of the audit trail.
type AuditService struct {
	repo   auditReader
	logger *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(repo auditReader, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Query returns audit entries matching the filter, newest first. Restricted
// to site staff.
func (s *AuditService) Query(ctx context.Context, actor *models.Actor, query dto.AuditLogQuery) ([]models.AuditLogEntry, *models.Pagination, error) {
	if err := policy.Decide(actor, policy.ActionQueryAuditLog, policy.Resource{}); err != nil {
		return nil, nil, err
	}

	filter := models.AuditLogFilter{
		ResourceID: query.ResourceID,
		Action:     query.Action,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	entries, total, err := s.repo.Query(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query audit log")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return entries, pagination, nil
}

// auditDetails marshals action-specific detail maps for audit entries. The
// maps only hold JSON-safe values, so marshalling cannot realistically fail;
// a nil result falls back to the empty object on insert.
func auditDetails(details map[string]interface{}) json.RawMessage {
	if len(details) == 0 {
		return nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil
	}
	return raw
}
