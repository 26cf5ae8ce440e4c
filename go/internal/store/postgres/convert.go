package postgres

import (
	"encoding/json"

	"github.com/mcdev12/recruit/go/internal/db"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/sqlutil"
)

func athleteFromDB(a db.Athlete) models.Athlete {
	return models.Athlete{
		ID:             a.ID,
		Username:       a.Username,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		PrimarySport:   a.PrimarySport,
		SecondarySport: sqlutil.FromSqlStringPtr(a.SecondarySport),
		Rank:           int(a.Rank),
		Classification: a.Classification,
		Location:       sqlutil.FromSqlCoordinates(a.Latitude, a.Longitude),
		CreatedAt:      a.CreatedAt,
	}
}

func teamFromDB(t db.Team) *models.Team {
	return &models.Team{
		ID:             t.ID,
		Name:           t.Name,
		Sport:          t.Sport,
		Classification: t.Classification,
		Location:       sqlutil.FromSqlCoordinates(t.Latitude, t.Longitude),
		OwnerID:        t.OwnerID,
		Status:         models.TeamStatus(t.Status),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func membershipFromDB(m db.Membership) models.Membership {
	return models.Membership{
		TeamID:    m.TeamID,
		AthleteID: m.AthleteID,
		Role:      models.Role(m.Role),
		IsCaptain: m.IsCaptain,
		JoinedAt:  m.JoinedAt,
	}
}

func invitationFromDB(i db.Invitation) models.Invitation {
	return models.Invitation{
		ID:          i.ID,
		TeamID:      i.TeamID,
		AthleteID:   i.AthleteID,
		InvitedBy:   i.InvitedBy,
		Status:      models.InvitationStatus(i.Status),
		ExpiresAt:   sqlutil.FromSqlTime(i.ExpiresAt),
		CreatedAt:   i.CreatedAt,
		RespondedAt: sqlutil.FromSqlTime(i.RespondedAt),
	}
}

func joinRequestFromDB(r db.JoinRequest) models.JoinRequest {
	return models.JoinRequest{
		ID:         r.ID,
		TeamID:     r.TeamID,
		AthleteID:  r.AthleteID,
		Message:    r.Message,
		Status:     models.JoinRequestStatus(r.Status),
		ReviewedBy: sqlutil.FromNullUUID(r.ReviewedBy),
		CreatedAt:  r.CreatedAt,
		ReviewedAt: sqlutil.FromSqlTime(r.ReviewedAt),
	}
}

func applicationFromDB(a db.TeamApplication) *models.TeamApplication {
	return &models.TeamApplication{
		ID:             a.ID,
		ApplicantID:    a.ApplicantID,
		GuideID:        a.GuideID,
		Name:           a.Name,
		Sport:          a.Sport,
		Classification: a.Classification,
		Location:       sqlutil.FromSqlCoordinates(a.Latitude, a.Longitude),
		Status:         models.ApplicationStatus(a.Status),
		ReviewNote:     sqlutil.FromSqlStringPtr(a.ReviewNote),
		TeamID:         sqlutil.FromNullUUID(a.TeamID),
		CreatedAt:      a.CreatedAt,
		ReviewedAt:     sqlutil.FromSqlTime(a.ReviewedAt),
	}
}

// NotificationFromDB is exported for the outbox relay, which reads the same table.
func NotificationFromDB(n db.Notification) models.Notification {
	var payload json.RawMessage
	if n.Payload.Valid {
		payload = n.Payload.RawMessage
	}
	return models.Notification{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		ActorID:     n.ActorID,
		Type:        models.NotificationType(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Payload:     payload,
		CreatedAt:   n.CreatedAt,
		SentAt:      sqlutil.FromSqlTime(n.SentAt),
	}
}
