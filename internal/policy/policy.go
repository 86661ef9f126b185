// Package policy implements the permission decision function for moderation
// actions. Decisions are pure: they depend only on the actor attributes and
// the resource context passed in, never on stored state or I/O.
package policy

import (
	"github.com/subculture-collective/clipper-sub007/internal/models"
	appErrors "github.com/subculture-collective/clipper-sub007/pkg/errors"
)

// Action identifies an operation subject to a permission decision. The values
// double as the audit log action vocabulary.
type Action string

const (
	ActionApproveSubmission     Action = models.AuditActionApproveSubmission
	ActionRejectSubmission      Action = models.AuditActionRejectSubmission
	ActionBulkApproveSubmission Action = models.AuditActionBulkApproveSubmission
	ActionBulkRejectSubmission  Action = models.AuditActionBulkRejectSubmission
	ActionBanUser               Action = models.AuditActionBanUser
	ActionUnbanUser             Action = models.AuditActionUnbanUser
	ActionSubmitAppeal          Action = models.AuditActionAppealSubmitted
	ActionResolveAppeal         Action = models.AuditActionAppealResolved
	ActionRemoveChannelMember   Action = models.AuditActionRemoveChannelMember
	ActionChangeMemberRole      Action = models.AuditActionChangeMemberRole
	ActionQueryAuditLog         Action = "query_audit_log"
)

// Resource carries the per-request context a decision may need. Zero values
// are valid for actions that do not inspect the target.
type Resource struct {
	// OwnerID is the id of the user owning the originally-actioned content,
	// checked for appeal submission.
	OwnerID string
	// TargetIsOwner is true when a membership mutation targets the member
	// holding the owner role.
	TargetIsOwner bool
}

func isLocalModeration(action Action) bool {
	switch action {
	case ActionApproveSubmission, ActionRejectSubmission,
		ActionBulkApproveSubmission, ActionBulkRejectSubmission:
		return true
	}
	return false
}

func isPlatformAction(action Action) bool {
	return action == ActionBanUser || action == ActionUnbanUser
}

func isMembershipMutation(action Action) bool {
	return action == ActionRemoveChannelMember || action == ActionChangeMemberRole
}

// Decide evaluates the ordered policy rules and returns nil when the action is
// allowed, or the matching deny error. Rules are evaluated in order and the
// first match wins.
func Decide(actor *models.Actor, action Action, res Resource) error {
	if actor == nil || actor.ID == "" {
		return appErrors.ErrNotAuthenticated
	}

	switch {
	case isLocalModeration(action) || action == ActionQueryAuditLog:
		if !actor.IsSiteStaff() {
			return appErrors.ErrNotAuthenticated
		}
		return nil

	case isPlatformAction(action):
		// Site moderators hold local authority only; the platform stays
		// read-only for them even when every other attribute is set.
		if actor.Role == models.RoleModerator && !actor.IsPlatformModerator {
			return appErrors.ErrSiteModeratorsReadOnly
		}
		if actor.PlatformAccountID == nil || *actor.PlatformAccountID == "" {
			return appErrors.ErrNotAuthenticatedExternal
		}
		if !actor.HasBanScope {
			return appErrors.ErrInsufficientScopes
		}
		if !actor.IsBroadcaster && !actor.IsPlatformModerator {
			return appErrors.ErrNotBroadcaster
		}
		return nil

	case action == ActionResolveAppeal:
		if !actor.IsSiteStaff() {
			return appErrors.ErrNotAuthenticated
		}
		return nil

	case action == ActionSubmitAppeal:
		if res.OwnerID == "" || res.OwnerID != actor.ID {
			return appErrors.ErrForbidden
		}
		return nil

	case isMembershipMutation(action):
		// The owner row is untouchable for everyone, admins included.
		if res.TargetIsOwner {
			return appErrors.ErrOwnerProtected
		}
		if !actor.IsSiteStaff() {
			return appErrors.ErrNotAuthenticated
		}
		return nil
	}

	return appErrors.ErrForbidden
}
