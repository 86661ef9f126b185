package dto

// BanUserRequest asks the platform to ban or time out a user on a channel.
// A nil DurationSeconds means a permanent ban.
type BanUserRequest struct {
	BroadcasterID   string `json:"broadcaster_id"`
	UserID          string `json:"user_id"`
	Reason          string `json:"reason"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
}

// UnbanUserRequest lifts a platform ban.
type UnbanUserRequest struct {
	BroadcasterID string `json:"broadcaster_id"`
	UserID        string `json:"user_id"`
}
