package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxJoinRequestMessage is the longest message, in characters, a join request may carry.
const MaxJoinRequestMessage = 500

// JoinRequest is an athlete-initiated request to join a team
type JoinRequest struct {
	ID         uuid.UUID         `json:"id"`
	TeamID     uuid.UUID         `json:"team_id"`
	AthleteID  uuid.UUID         `json:"athlete_id"`
	Message    string            `json:"message"`
	Status     JoinRequestStatus `json:"status"`
	ReviewedBy *uuid.UUID        `json:"reviewed_by,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	ReviewedAt *time.Time        `json:"reviewed_at,omitempty"`
}

type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "PENDING"
	JoinRequestStatusAccepted JoinRequestStatus = "ACCEPTED"
	JoinRequestStatusRejected JoinRequestStatus = "REJECTED"
)

// Decision is a leader's verdict on a join request
type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)
