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

type appealService interface {
	Submit(ctx context.Context, actor *models.Actor, req *dto.CreateAppealRequest) (*models.Appeal, error)
	Resolve(ctx context.Context, id string, actor *models.Actor, req *dto.ResolveAppealRequest) (*models.Appeal, error)
}

// AppealHandler exposes the appeal endpoints.
type AppealHandler struct {
	service  appealService
	identity actorResolver
}

// NewAppealHandler builds a new handler.
func NewAppealHandler(service appealService, identity actorResolver) *AppealHandler {
	return &AppealHandler{service: service, identity: identity}
}

// Create godoc
// @Summary Appeal a moderation action
// @Tags Appeals
// @Accept json
// @Produce json
// @Param payload body dto.CreateAppealRequest true "Appeal payload"
// @Success 201 {object} response.Envelope
// @Router /appeals [post]
func (h *AppealHandler) Create(c *gin.Context) {
	var req dto.CreateAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid appeal payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid appeal payload"))
		return
	}
	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	appeal, err := h.service.Submit(c.Request.Context(), actor, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appeal)
}

// Resolve godoc
// @Summary Resolve a pending appeal
// @Tags Appeals
// @Accept json
// @Produce json
// @Param id path string true "Appeal id"
// @Param payload body dto.ResolveAppealRequest true "Resolution payload"
// @Success 200 {object} response.Envelope
// @Router /appeals/{id}/resolve [post]
func (h *AppealHandler) Resolve(c *gin.Context) {
	var req dto.ResolveAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}
	actor, err := resolveActor(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	appeal, err := h.service.Resolve(c.Request.Context(), c.Param("id"), actor, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appeal, nil)
}
