package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/subculture-collective/clipper-sub007/internal/dto"
	"github.com/subculture-collective/clipper-sub007/internal/models"
	appErrors "github.com/subculture-collective/clipper-sub007/pkg/errors"
	"github.com/subculture-collective/clipper-sub007/pkg/response"
)

type moderationService interface {
	Approve(ctx context.Context, id string, actor *models.Actor) (*models.Submission, error)
	Reject(ctx context.Context, id string, actor *models.Actor, reason string) (*models.Submission, error)
	BulkApprove(ctx context.Context, ids []string, actor *models.Actor) (*dto.BulkResult, error)
	BulkReject(ctx context.Context, ids []string, actor *models.Actor, reason string) (*dto.BulkResult, error)
}

// ModerationHandler exposes the submission review endpoints.
type ModerationHandler struct {
	service  moderationService
	identity actorResolver
}

// NewModerationHandler builds a new handler.
func NewModerationHandler(service moderationService, identity actorResolver) *ModerationHandler {
	return &ModerationHandler{service: service, identity: identity}
}

// Approve godoc
// @Summary Approve a pending submission
// @Tags Moderation
// @Produce json
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Router /moderation/submissions/{id}/approve [post]
func (h *ModerationHandler) Approve(c *gin.Context) {
	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	sub, err := h.service.Approve(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Reject godoc
// @Summary Reject a pending submission
// @Tags Moderation
// @Accept json
// @Produce json
// @Param id path string true "Submission id"
// @Param payload body dto.RejectSubmissionRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Router /moderation/submissions/{id}/reject [post]
func (h *ModerationHandler) Reject(c *gin.Context) {
	var req dto.RejectSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rejection payload"))
		return
	}
	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	sub, err := h.service.Reject(c.Request.Context(), c.Param("id"), actor, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// BulkApprove godoc
// @Summary Approve multiple pending submissions
// @Tags Moderation
// @Accept json
// @Produce json
// @Param payload body dto.BulkApproveRequest true "Bulk approve payload"
// @Success 200 {object} response.Envelope
// @Router /moderation/submissions/bulk-approve [post]
func (h *ModerationHandler) BulkApprove(c *gin.Context) {
	var req dto.BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk approve payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk approve payload"))
		return
	}
	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.BulkApprove(c.Request.Context(), req.IDs, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// BulkReject godoc
// @Summary Reject multiple pending submissions
// @Tags Moderation
// @Accept json
// @Produce json
// @Param payload body dto.BulkRejectRequest true "Bulk reject payload"
// @Success 200 {object} response.Envelope
// @Router /moderation/submissions/bulk-reject [post]
func (h *ModerationHandler) BulkReject(c *gin.Context) {
	var req dto.BulkRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk reject payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk reject payload"))
		return
	}
	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.BulkReject(c.Request.Context(), req.IDs, actor, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
