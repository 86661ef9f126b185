package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subculture-collective/clipper-sub007/internal/dto"
	"github.com/subculture-collective/clipper-sub007/internal/models"
	appErrors "github.com/subculture-collective/clipper-sub007/pkg/errors"
)

type banServiceMock struct {
	banErr   error
	unbanErr error

	lastBan   *dto.BanUserRequest
	lastUnban *dto.UnbanUserRequest
}

func (m *banServiceMock) Ban(_ context.Context, _ *models.Actor, req *dto.BanUserRequest) (*models.BanRecord, error) {
	if m.banErr != nil {
		return nil, m.banErr
	}
	m.lastBan = req
	return &models.BanRecord{TargetPlatformID: req.UserID, BroadcasterPlatformID: req.BroadcasterID}, nil
}

func (m *banServiceMock) Unban(_ context.Context, _ *models.Actor, req *dto.UnbanUserRequest) error {
	if m.unbanErr != nil {
		return m.unbanErr
	}
	m.lastUnban = req
	return nil
}

func TestBanHandlerCreate(t *testing.T) {
	svc := &banServiceMock{}
	handler := NewBanHandler(svc, &identityResolverMock{})
	body, _ := json.Marshal(dto.BanUserRequest{BroadcasterID: "chan-1", UserID: "target-7", Reason: "spam"})
	c, w := staffContext(t, http.MethodPost, "/moderation/bans", body)

	handler.Ban(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.lastBan)
	assert.Equal(t, "target-7", svc.lastBan.UserID)
}

func TestBanHandlerRateLimited(t *testing.T) {
	svc := &banServiceMock{banErr: appErrors.ErrRateLimitExceeded}
	handler := NewBanHandler(svc, &identityResolverMock{})
	body, _ := json.Marshal(dto.BanUserRequest{BroadcasterID: "chan-1", UserID: "target-7", Reason: "spam"})
	c, w := staffContext(t, http.MethodPost, "/moderation/bans", body)

	handler.Ban(c)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestBanHandlerUnbanReadsQuery(t *testing.T) {
	svc := &banServiceMock{}
	handler := NewBanHandler(svc, &identityResolverMock{})
	c, w := staffContext(t, http.MethodDelete, "/moderation/bans?broadcaster_id=chan-1&user_id=target-7", nil)

	handler.Unban(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, svc.lastUnban)
	assert.Equal(t, "chan-1", svc.lastUnban.BroadcasterID)
	assert.Equal(t, "target-7", svc.lastUnban.UserID)
}

func TestBanHandlerInvalidBody(t *testing.T) {
	handler := NewBanHandler(&banServiceMock{}, &identityResolverMock{})
	c, w := staffContext(t, http.MethodPost, "/moderation/bans", []byte(`invalid`))

	handler.Ban(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
