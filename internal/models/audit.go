package models

import (
	"encoding/json"
	"time"
)

// Audit actions form a closed vocabulary; the strings are a stable contract
// shared with API callers and must not change.
const (
	AuditActionApproveSubmission     = "approve_submission"
	AuditActionRejectSubmission      = "reject_submission"
	AuditActionBulkApproveSubmission = "bulk_approve_submission"
	AuditActionBulkRejectSubmission  = "bulk_reject_submission"
	AuditActionBanUser               = "ban_user"
	AuditActionUnbanUser             = "unban_user"
	AuditActionAppealSubmitted       = "appeal_submitted"
	AuditActionAppealResolved        = "appeal_resolved"
	AuditActionRemoveChannelMember   = "remove_channel_member"
	AuditActionChangeMemberRole      = "change_member_role"
)

// Resource types referenced by audit entries.
const (
	ResourceSubmission    = "submission"
	ResourcePlatformBan   = "platform_ban"
	ResourceAppeal        = "appeal"
	ResourceChannelMember = "channel_member"
)

// AuditLogEntry is an immutable record of one completed mutating action.
// Entries are append-only: no update or delete path exists anywhere in this
// codebase, and corrections are recorded as new entries.
type AuditLogEntry struct {
	ID           string          `db:"id" json:"id"`
	ActorID      string          `db:"actor_id" json:"actor_id"`
	Action       string          `db:"action" json:"action"`
	ResourceType string          `db:"resource_type" json:"resource_type"`
	ResourceID   string          `db:"resource_id" json:"resource_id"`
	Details      json.RawMessage `db:"details" json:"details,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// AuditLogFilter narrows audit queries; all provided fields must match.
type AuditLogFilter struct {
	ResourceID string
	Action     string
	Page       int
	PageSize   int
}
