package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/geo"
)

// TeamStatus is the lifecycle state of a team
type TeamStatus string

const (
	TeamStatusPendingMembers TeamStatus = "PENDING_MEMBERS"
	TeamStatusActive         TeamStatus = "ACTIVE"
	TeamStatusInactive       TeamStatus = "INACTIVE"
)

// Team represents a sports team in the system
type Team struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Sport          string           `json:"sport"`
	Classification string           `json:"classification"`
	Location       *geo.Coordinates `json:"location,omitempty"`
	OwnerID        uuid.UUID        `json:"owner_id"`
	Status         TeamStatus       `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// TeamStats holds the counters created alongside a team.
type TeamStats struct {
	TeamID        uuid.UUID `json:"team_id"`
	MatchesPlayed int       `json:"matches_played"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	Draws         int       `json:"draws"`
}
