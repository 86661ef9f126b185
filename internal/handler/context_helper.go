package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/subculture-collective/clipper-sub007/internal/middleware"
	"github.com/subculture-collective/clipper-sub007/internal/models"
)

var validate = validator.New()

// actorResolver turns request claims into the actor attribute bag the
// services evaluate.
type actorResolver interface {
	Resolve(ctx context.Context, claims *models.JWTClaims) (*models.Actor, error)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func resolveActor(c *gin.Context, resolver actorResolver) (*models.Actor, error) {
	return resolver.Resolve(c.Request.Context(), claimsFromContext(c))
}
