package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation is a team-initiated offer for an athlete to join
type Invitation struct {
	ID          uuid.UUID        `json:"id"`
	TeamID      uuid.UUID        `json:"team_id"`
	AthleteID   uuid.UUID        `json:"athlete_id"`
	InvitedBy   uuid.UUID        `json:"invited_by"`
	Status      InvitationStatus `json:"status"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// InvitationStatus is terminal for every value except PENDING
type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "PENDING"
	InvitationStatusAccepted  InvitationStatus = "ACCEPTED"
	InvitationStatusRejected  InvitationStatus = "REJECTED"
	InvitationStatusExpired   InvitationStatus = "EXPIRED"
	InvitationStatusCancelled InvitationStatus = "CANCELLED"
)

// ExpiredAt reports whether the invitation has passed its expiry at now.
func (i Invitation) ExpiredAt(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}
