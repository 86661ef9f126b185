package dto

// ChangeMemberRoleRequest updates a channel member's role. The owner role can
// never be granted or revoked through this call.
type ChangeMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=moderator member"`
}
