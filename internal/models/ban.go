package models

import "time"

// BanRecord mirrors a ban issued through the streaming platform API. The
// platform remains authoritative; rows here exist so the site can display ban
// state without a platform round trip. A nil ExpiresAt means a permanent ban.
type BanRecord struct {
	ID                    string     `db:"id" json:"id"`
	PlatformBanID         string     `db:"platform_ban_id" json:"platform_ban_id"`
	BroadcasterPlatformID string     `db:"broadcaster_platform_id" json:"broadcaster_platform_id"`
	TargetPlatformID      string     `db:"target_platform_id" json:"target_platform_id"`
	IssuedBy              string     `db:"issued_by" json:"issued_by"`
	Reason                *string    `db:"reason" json:"reason,omitempty"`
	ExpiresAt             *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
}

// MaxBanDurationSeconds is the platform ceiling for timeouts (14 days).
const MaxBanDurationSeconds = 1_209_600
