package dto

// AuditLogQuery narrows an audit trail read; all provided filters must match.
type AuditLogQuery struct {
	ResourceID string `json:"resource_id"`
	Action     string `json:"action"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}
