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

type banService interface {
	Ban(ctx context.Context, actor *models.Actor, req *dto.BanUserRequest) (*models.BanRecord, error)
	Unban(ctx context.Context, actor *models.Actor, req *dto.UnbanUserRequest) error
}

// BanHandler exposes the platform ban proxy endpoints.
type BanHandler struct {
	service  banService
	identity actorResolver
}

// NewBanHandler builds a new handler.
func NewBanHandler(service banService, identity actorResolver) *BanHandler {
	return &BanHandler{service: service, identity: identity}
}

// Ban godoc
// @Summary Ban or time out a user on a channel
// @Tags Bans
// @Accept json
// @Produce json
// @Param payload body dto.BanUserRequest true "Ban payload"
// @Success 201 {object} response.Envelope
// @Router /moderation/bans [post]
func (h *BanHandler) Ban(c *gin.Context) {
	var req dto.BanUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ban payload"))
		return
	}
	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.service.Ban(c.Request.Context(), actor, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Unban godoc
// @Summary Lift a ban on a channel
// @Tags Bans
// @Produce json
// @Param broadcaster_id query string true "Broadcaster platform id"
// @Param user_id query string true "Target platform id"
// @Success 204 "No Content"
// @Router /moderation/bans [delete]
func (h *BanHandler) Unban(c *gin.Context) {
	req := dto.UnbanUserRequest{
		BroadcasterID: c.Query("broadcaster_id"),
		UserID:        c.Query("user_id"),
	}
	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Unban(c.Request.Context(), actor, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
