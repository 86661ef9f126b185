package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole represents the site-level roles recognised by the permission policy.
type UserRole string

const (
	RoleUser      UserRole = "USER"
	RoleModerator UserRole = "MODERATOR"
	RoleAdmin     UserRole = "ADMIN"
)

// BanScope is the platform scope required for ban/unban calls.
const BanScope = "moderator:manage:banned_users"

// Actor is the flat attribute bag the permission policy evaluates. It combines
// the site role with the streaming platform linkage and is immutable for the
// duration of one decision.
type Actor struct {
	ID                  string   `json:"id"`
	Role                UserRole `json:"role"`
	IsBroadcaster       bool     `json:"is_broadcaster"`
	IsPlatformModerator bool     `json:"is_platform_moderator"`
	HasBanScope         bool     `json:"has_ban_scope"`
	PlatformAccountID   *string  `json:"platform_account_id,omitempty"`
}

// IsSiteStaff reports whether the actor holds a local moderation role.
func (a *Actor) IsSiteStaff() bool {
	return a != nil && (a.Role == RoleModerator || a.Role == RoleAdmin)
}

// PlatformAccount is a row in platform_accounts linking a site user to their
// streaming platform identity and granted scopes.
type PlatformAccount struct {
	UserID              string         `db:"user_id" json:"user_id"`
	PlatformUserID      string         `db:"platform_user_id" json:"platform_user_id"`
	Login               string         `db:"login" json:"login"`
	IsBroadcaster       bool           `db:"is_broadcaster" json:"is_broadcaster"`
	IsPlatformModerator bool           `db:"is_platform_moderator" json:"is_platform_moderator"`
	Scopes              pq.StringArray `db:"scopes" json:"scopes"`
	LinkedAt            time.Time      `db:"linked_at" json:"linked_at"`
}

// HasScope reports whether the linked account was granted the named scope.
func (p *PlatformAccount) HasScope(scope string) bool {
	if p == nil {
		return false
	}
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
