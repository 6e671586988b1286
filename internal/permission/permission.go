package permission

import (
	"github.com/google/uuid"
)

// Capability is one of the fixed sprint operations a caller can be
// authorized for.
type Capability string

const (
	CreateSprint Capability = "CREATE_SPRINT"
	UpdateSprint Capability = "UPDATE_SPRINT"
	DeleteSprint Capability = "DELETE_SPRINT"
	StartSprint  Capability = "START_SPRINT"
	EndSprint    Capability = "END_SPRINT"
	ViewSprint   Capability = "VIEW_SPRINT"
)

// PermissionSet is the flags record the membership authority returns for a
// (user, project) pair. A zero value means no permissions.
type PermissionSet struct {
	IsOwner          bool `json:"isOwner"`
	IsScrumMaster    bool `json:"isScrumMaster"`
	CanCreateSprint  bool `json:"canCreateSprint"`
	CanManageSprints bool `json:"canManageSprints"`
}

// Allows evaluates a capability against the flag set. Pure; callers decide
// what a failed resolver fetch means (this service treats it as deny).
func (p PermissionSet) Allows(c Capability) bool {
	switch c {
	case CreateSprint:
		// Strict on purpose: only the explicit flag counts. An owner
		// without canCreateSprint is denied.
		return p.CanCreateSprint
	case UpdateSprint, StartSprint, EndSprint:
		return p.IsOwner || p.IsScrumMaster || p.CanCreateSprint || p.CanManageSprints
	case DeleteSprint:
		// Governs delete, cancel, restore and audit reads. The broader
		// management flags are not enough here.
		return p.IsOwner || p.IsScrumMaster
	case ViewSprint:
		// Any member may view; membership itself was established by the
		// resolver returning a record.
		return true
	default:
		return false
	}
}

// Actor identifies who is making a request. The zero value is the system
// actor (no user attached); use User to build one for an end user. This
// replaces "missing header means skip the check" with a value that says so.
type Actor struct {
	userID  uuid.UUID
	present bool
}

// User returns an actor for the given user id.
func User(id uuid.UUID) Actor {
	return Actor{userID: id, present: true}
}

// System returns the actor for trusted internal callers.
func System() Actor {
	return Actor{}
}

// UserID returns the acting user id and whether one is attached.
func (a Actor) UserID() (uuid.UUID, bool) {
	return a.userID, a.present
}

// IsSystem reports whether no user is attached to the request.
func (a Actor) IsSystem() bool {
	return !a.present
}

// Policy decides what to do with a system actor.
type Policy int

const (
	// Enforce denies system actors any capability check would be needed for.
	Enforce Policy = iota
	// SkipForTrustedCaller lets system actors through without a check.
	// Meant for deployments where the service sits behind a trusted
	// gateway or is called by sibling services.
	SkipForTrustedCaller
)
