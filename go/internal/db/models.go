package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type Athlete struct {
	ID             uuid.UUID       `json:"id"`
	Username       string          `json:"username"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	PrimarySport   string          `json:"primary_sport"`
	SecondarySport sql.NullString  `json:"secondary_sport"`
	Rank           int32           `json:"rank"`
	Classification string          `json:"classification"`
	Latitude       sql.NullFloat64 `json:"latitude"`
	Longitude      sql.NullFloat64 `json:"longitude"`
	CreatedAt      time.Time       `json:"created_at"`
}

type Team struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Sport          string          `json:"sport"`
	Classification string          `json:"classification"`
	Latitude       sql.NullFloat64 `json:"latitude"`
	Longitude      sql.NullFloat64 `json:"longitude"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type TeamStat struct {
	TeamID        uuid.UUID `json:"team_id"`
	MatchesPlayed int32     `json:"matches_played"`
	Wins          int32     `json:"wins"`
	Losses        int32     `json:"losses"`
	Draws         int32     `json:"draws"`
}

type Membership struct {
	TeamID    uuid.UUID `json:"team_id"`
	AthleteID uuid.UUID `json:"athlete_id"`
	Role      string    `json:"role"`
	IsCaptain bool      `json:"is_captain"`
	JoinedAt  time.Time `json:"joined_at"`
}

type Invitation struct {
	ID          uuid.UUID    `json:"id"`
	TeamID      uuid.UUID    `json:"team_id"`
	AthleteID   uuid.UUID    `json:"athlete_id"`
	InvitedBy   uuid.UUID    `json:"invited_by"`
	Status      string       `json:"status"`
	ExpiresAt   sql.NullTime `json:"expires_at"`
	CreatedAt   time.Time    `json:"created_at"`
	RespondedAt sql.NullTime `json:"responded_at"`
}

type JoinRequest struct {
	ID         uuid.UUID     `json:"id"`
	TeamID     uuid.UUID     `json:"team_id"`
	AthleteID  uuid.UUID     `json:"athlete_id"`
	Message    string        `json:"message"`
	Status     string        `json:"status"`
	ReviewedBy uuid.NullUUID `json:"reviewed_by"`
	CreatedAt  time.Time     `json:"created_at"`
	ReviewedAt sql.NullTime  `json:"reviewed_at"`
}

type TeamApplication struct {
	ID             uuid.UUID       `json:"id"`
	ApplicantID    uuid.UUID       `json:"applicant_id"`
	GuideID        uuid.UUID       `json:"guide_id"`
	Name           string          `json:"name"`
	Sport          string          `json:"sport"`
	Classification string          `json:"classification"`
	Latitude       sql.NullFloat64 `json:"latitude"`
	Longitude      sql.NullFloat64 `json:"longitude"`
	Status         string          `json:"status"`
	ReviewNote     sql.NullString  `json:"review_note"`
	TeamID         uuid.NullUUID   `json:"team_id"`
	CreatedAt      time.Time       `json:"created_at"`
	ReviewedAt     sql.NullTime    `json:"reviewed_at"`
}

type Notification struct {
	ID          uuid.UUID             `json:"id"`
	RecipientID uuid.UUID             `json:"recipient_id"`
	ActorID     uuid.UUID             `json:"actor_id"`
	Type        string                `json:"type"`
	Title       string                `json:"title"`
	Message     string                `json:"message"`
	Payload     pqtype.NullRawMessage `json:"payload"`
	CreatedAt   time.Time             `json:"created_at"`
	SentAt      sql.NullTime          `json:"sent_at"`
}
