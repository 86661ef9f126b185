// Package platform is the HTTP client for the streaming platform's moderation
// API (Helix-style ban/unban endpoints). It deliberately performs no retries:
// transient failures surface to the caller, which owns the backoff policy.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"github.com/subculture-collective/clipper-sub007/pkg/config"
)

// Client talks to the platform moderation endpoints with app credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	token      string
	logger     *zap.Logger
}

// NewClient builds a platform API client from configuration.
func NewClient(cfg config.PlatformConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := cleanhttp.DefaultPooledClient()
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		clientID:   cfg.ClientID,
		token:      cfg.Token,
		logger:     logger,
	}
}

// BanRequest describes a ban or timeout to apply on a channel.
type BanRequest struct {
	BroadcasterID   string
	ModeratorID     string
	UserID          string
	Reason          string
	DurationSeconds *int
}

// Ban is the platform's record of an applied ban.
type Ban struct {
	BroadcasterID string     `json:"broadcaster_id"`
	ModeratorID   string     `json:"moderator_id"`
	UserID        string     `json:"user_id"`
	CreatedAt     time.Time  `json:"created_at"`
	EndTime       *time.Time `json:"end_time"`
}

type banPayload struct {
	Data struct {
		UserID   string `json:"user_id"`
		Reason   string `json:"reason,omitempty"`
		Duration *int   `json:"duration,omitempty"`
	} `json:"data"`
}

type banResponse struct {
	Data []Ban `json:"data"`
}

// BanUser bans or times out a user on the broadcaster's channel.
func (c *Client) BanUser(ctx context.Context, req BanRequest) (*Ban, error) {
	payload := banPayload{}
	payload.Data.UserID = req.UserID
	payload.Data.Reason = req.Reason
	payload.Data.Duration = req.DurationSeconds

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal ban payload: %w", err)
	}

	endpoint := c.moderationURL(req.BroadcasterID, req.ModeratorID, "")
	respBody, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	var parsed banResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode ban response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, &APIError{Category: CategoryTransient, Message: "empty ban response"}
	}
	return &parsed.Data[0], nil
}

// UnbanUser lifts a ban or timeout for a user on the broadcaster's channel.
func (c *Client) UnbanUser(ctx context.Context, broadcasterID, moderatorID, userID string) error {
	endpoint := c.moderationURL(broadcasterID, moderatorID, userID)
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil)
	return err
}

func (c *Client) moderationURL(broadcasterID, moderatorID, userID string) string {
	q := url.Values{}
	q.Set("broadcaster_id", broadcasterID)
	q.Set("moderator_id", moderatorID)
	if userID != "" {
		q.Set("user_id", userID)
	}
	return fmt.Sprintf("%s/moderation/bans?%s", c.baseURL, q.Encode())
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build platform request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Client-Id", c.clientID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures and timeouts are ambiguous: the caller must not
		// record any local state for them.
		c.logger.Warn("platform request failed",
			zap.String("method", method),
			zap.Error(err))
		return nil, &APIError{Category: CategoryTransient, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &APIError{Category: CategoryTransient, Message: "read platform response", Err: err}
	}

	c.logger.Debug("platform request",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}
	return nil, newAPIError(resp.StatusCode, respBody)
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		apiErr.Message = parsed.Message
	} else {
		apiErr.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		apiErr.Category = CategoryAuth
	case status == http.StatusForbidden:
		apiErr.Category = CategoryScope
	case status == http.StatusTooManyRequests:
		apiErr.Category = CategoryRateLimited
	case status == http.StatusNotFound:
		apiErr.Category = CategoryNotFound
	case status >= 500:
		apiErr.Category = CategoryTransient
	default:
		apiErr.Category = CategoryInvalid
	}
	return apiErr
}
