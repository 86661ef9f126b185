package models

import "time"

// AppealStatus is the lifecycle state of an appeal.
type AppealStatus string

const (
	AppealPending  AppealStatus = "pending"
	AppealApproved AppealStatus = "approved"
	AppealRejected AppealStatus = "rejected"
)

// Appeal contests a prior moderation decision, referenced by the audit entry
// id of the original action. Resolving an appeal never reverses the original
// action automatically; reversal is a separate explicit call.
//
// Invariant: ResolvedBy, ResolvedAt and Resolution are all nil while Status is
// pending and all set once the appeal is resolved.
type Appeal struct {
	ID                 string       `db:"id" json:"id"`
	ModerationActionID string       `db:"moderation_action_id" json:"moderation_action_id"`
	UserID             string       `db:"user_id" json:"user_id"`
	Reason             string       `db:"reason" json:"reason"`
	Status             AppealStatus `db:"status" json:"status"`
	Resolution         *string      `db:"resolution" json:"resolution,omitempty"`
	ResolvedBy         *string      `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt         *time.Time   `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
}

// AppealDecision is a reviewer verdict on an appeal.
type AppealDecision string

const (
	AppealDecisionApprove AppealDecision = "approve"
	AppealDecisionReject  AppealDecision = "reject"
)
