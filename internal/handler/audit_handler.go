package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/subculture-collective/clipper-sub007/internal/dto"
	"github.com/subculture-collective/clipper-sub007/internal/models"
	"github.com/subculture-collective/clipper-sub007/pkg/response"
)

type auditService interface {
	Query(ctx context.Context, actor *models.Actor, query dto.AuditLogQuery) ([]models.AuditLogEntry, *models.Pagination, error)
}

// AuditHandler exposes the audit trail read endpoint.
type AuditHandler struct {
	service  auditService
	identity actorResolver
}

// NewAuditHandler builds a new handler.
func NewAuditHandler(service auditService, identity actorResolver) *AuditHandler {
	return &AuditHandler{service: service, identity: identity}
}

// List godoc
// @Summary Query the moderation audit trail
// @Tags Audit
// @Produce json
// @Param resource_id query string false "Filter by resource id"
// @Param action query string false "Filter by action"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /audit-log [get]
func (h *AuditHandler) List(c *gin.Context) {
	query := dto.AuditLogQuery{
		ResourceID: c.Query("resource_id"),
		Action:     c.Query("action"),
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, pagination, err := h.service.Query(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}
