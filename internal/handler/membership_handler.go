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

type membershipService interface {
	Remove(ctx context.Context, actor *models.Actor, channelID, userID string) error
	ChangeRole(ctx context.Context, actor *models.Actor, channelID, userID string, role models.MemberRole) (*models.ChannelMember, error)
}

// MembershipHandler exposes the channel membership endpoints.
type MembershipHandler struct {
	service  membershipService
	identity actorResolver
}

// NewMembershipHandler builds a new handler.
func NewMembershipHandler(service membershipService, identity actorResolver) *MembershipHandler {
	return &MembershipHandler{service: service, identity: identity}
}

// Remove godoc
// @Summary Remove a member from a channel
// @Tags Channels
// @Produce json
// @Param id path string true "Channel id"
// @Param userId path string true "User id"
// @Success 204 "No Content"
// @Router /channels/{id}/members/{userId} [delete]
func (h *MembershipHandler) Remove(c *gin.Context) {
	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Remove(c.Request.Context(), actor, c.Param("id"), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ChangeRole godoc
// @Summary Change a channel member's role
// @Tags Channels
// @Accept json
// @Produce json
// @Param id path string true "Channel id"
// @Param userId path string true "User id"
// @Param payload body dto.ChangeMemberRoleRequest true "Role payload"
// @Success 200 {object} response.Envelope
// @Router /channels/{id}/members/{userId} [patch]
func (h *MembershipHandler) ChangeRole(c *gin.Context) {
	var req dto.ChangeMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role payload"))
		return
	}
	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	member, err := h.service.ChangeRole(c.Request.Context(), actor, c.Param("id"), c.Param("userId"), models.MemberRole(req.Role))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}
