package dto

// CreateAppealRequest contests a prior moderation decision identified by its
// audit entry id.
type CreateAppealRequest struct {
	ModerationActionID string `json:"moderation_action_id" validate:"required"`
	Reason             string `json:"reason"`
}

// ResolveAppealRequest records a reviewer verdict.
type ResolveAppealRequest struct {
	Decision   string `json:"decision" validate:"required,oneof=approve reject"`
	Resolution string `json:"resolution"`
}
