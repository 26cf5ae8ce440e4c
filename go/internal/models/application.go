package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/geo"
)

// TeamApplication is a prospective team awaiting a guide's review.
type TeamApplication struct {
	ID             uuid.UUID         `json:"id"`
	ApplicantID    uuid.UUID         `json:"applicant_id"`
	GuideID        uuid.UUID         `json:"guide_id"`
	Name           string            `json:"name"`
	Sport          string            `json:"sport"`
	Classification string            `json:"classification"`
	Location       *geo.Coordinates  `json:"location,omitempty"`
	Status         ApplicationStatus `json:"status"`
	ReviewNote     *string           `json:"review_note,omitempty"`
	TeamID         *uuid.UUID        `json:"team_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	ReviewedAt     *time.Time        `json:"reviewed_at,omitempty"`
}

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)
