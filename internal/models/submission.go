package models

import "time"

// SubmissionStatus is the moderation lifecycle state of a submitted clip.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission is a user-submitted clip awaiting, or past, moderation review.
// Rows are never physically deleted by this service.
//
// Invariant: RejectionReason is non-empty exactly when Status is rejected.
type Submission struct {
	ID              string           `db:"id" json:"id"`
	UserID          string           `db:"user_id" json:"user_id"`
	ClipID          string           `db:"clip_id" json:"clip_id"`
	Title           string           `db:"title" json:"title"`
	Status          SubmissionStatus `db:"status" json:"status"`
	RejectionReason *string          `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ReviewedBy      *string          `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}
