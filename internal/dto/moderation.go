package dto

// RejectSubmissionRequest carries the mandatory rejection reason.
type RejectSubmissionRequest struct {
	Reason string `json:"reason"`
}

// BulkApproveRequest lists submissions to approve in one call.
type BulkApproveRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// BulkRejectRequest lists submissions to reject with a shared reason.
type BulkRejectRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1"`
	Reason string   `json:"reason"`
}

// BulkResult reports how many submissions actually transitioned. Bulk calls
// are best-effort per id, so Count may be lower than BatchSize.
type BulkResult struct {
	Count     int `json:"count"`
	BatchSize int `json:"batch_size"`
}
