package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership links an athlete to the single team they play for.
type Membership struct {
	TeamID    uuid.UUID `json:"team_id"`
	AthleteID uuid.UUID `json:"athlete_id"`
	Role      Role      `json:"role"`
	IsCaptain bool      `json:"is_captain"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Role is a member's position in the team hierarchy
type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleCaptain Role = "CAPTAIN"
	RolePlayer  Role = "PLAYER"
	RoleManager Role = "MANAGER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleCaptain, RolePlayer, RoleManager:
		return true
	default:
		return false
	}
}

// IsLeader is true for the roles that run the team: OWNER and CAPTAIN.
func (r Role) IsLeader() bool {
	return r == RoleOwner || r == RoleCaptain
}

// CaptainFlag is the isCaptain value stored for a membership with this role.
func (r Role) CaptainFlag() bool {
	return r.IsLeader()
}

// Capabilities is what a role may do on its own team.
type Capabilities struct {
	CanInvite         bool
	CanManageRequests bool
	CanEdit           bool
	CanTransfer       bool
	// removable and assignable list the target roles this role may act on
	removable  map[Role]bool
	assignable map[Role]bool
}

// CanRemove reports whether a member may remove someone holding target.
func (c Capabilities) CanRemove(target Role) bool {
	return c.removable[target]
}

// CanAssign reports whether a member may set another member's role to newRole.
func (c Capabilities) CanAssign(newRole Role) bool {
	return c.assignable[newRole]
}

var capabilityTable = map[Role]Capabilities{
	RoleOwner: {
		CanInvite:         true,
		CanManageRequests: true,
		CanEdit:           true,
		CanTransfer:       true,
		removable:         map[Role]bool{RoleCaptain: true, RolePlayer: true, RoleManager: true},
		assignable:        map[Role]bool{RoleCaptain: true, RolePlayer: true, RoleManager: true},
	},
	RoleCaptain: {
		CanInvite:         true,
		CanManageRequests: true,
		CanEdit:           true,
		removable:         map[Role]bool{RolePlayer: true, RoleManager: true},
		assignable:        map[Role]bool{RolePlayer: true, RoleManager: true},
	},
	RoleManager: {
		CanInvite: true,
	},
	RolePlayer: {
		CanInvite: true,
	},
}

// Capabilities returns the capability row for r. Unknown roles get nothing.
func (r Role) Capabilities() Capabilities {
	return capabilityTable[r]
}
