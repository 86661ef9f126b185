package models

import "time"

// MemberRole is a user's role within a chat channel.
type MemberRole string

const (
	MemberRoleOwner     MemberRole = "owner"
	MemberRoleModerator MemberRole = "moderator"
	MemberRoleMember    MemberRole = "member"
)

// ChannelMember is one membership row of a chat channel. The owner row can
// never be removed or demoted, regardless of the acting actor's role.
type ChannelMember struct {
	ChannelID string     `db:"channel_id" json:"channel_id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Role      MemberRole `db:"role" json:"role"`
	AddedAt   time.Time  `db:"added_at" json:"added_at"`
}
