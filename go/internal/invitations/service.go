package invitations

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/rpc"
)

// ServiceName is the connect service the invitation procedures are mounted under.
const ServiceName = "recruit.v1.InvitationService"

// InvitationApp defines what the service layer needs from the invitations application
type InvitationApp interface {
	Invite(ctx context.Context, teamID, targetID, actorID uuid.UUID) (*models.Invitation, error)
	Accept(ctx context.Context, invitationID, actorID uuid.UUID) (*models.Membership, error)
	Decline(ctx context.Context, invitationID, actorID uuid.UUID) (*models.Invitation, error)
	Cancel(ctx context.Context, invitationID, actorID uuid.UUID) (*models.Invitation, error)
	ListForAthlete(ctx context.Context, actorID uuid.UUID) ([]models.Invitation, error)
}

// Service exposes the invitations App over connect
type Service struct {
	app InvitationApp
}

// NewService creates a new invitations service
func NewService(app InvitationApp) *Service {
	return &Service{
		app: app,
	}
}

type InviteRequest struct {
	TeamID    string `json:"team_id"`
	AthleteID string `json:"athlete_id"`
}

type InvitationRequest struct {
	InvitationID string `json:"invitation_id"`
}

type ListMineResponse struct {
	Invitations []models.Invitation `json:"invitations"`
}

// Handler builds the connect handler for InvitationService.
func (s *Service) Handler(resolver rpc.Resolver) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, resolver)
	rpc.Handle(svc, "Invite", s.Invite)
	rpc.Handle(svc, "Accept", s.Accept)
	rpc.Handle(svc, "Decline", s.Decline)
	rpc.Handle(svc, "Cancel", s.Cancel)
	rpc.Handle(svc, "ListMine", s.ListMine)
	return svc.Handler()
}

// Invite creates a pending invitation
func (s *Service) Invite(ctx context.Context, caller uuid.UUID, req *InviteRequest) (models.Invitation, error) {
	teamID, err := rpc.ParseID("team_id", req.TeamID)
	if err != nil {
		return models.Invitation{}, err
	}
	athleteID, err := rpc.ParseID("athlete_id", req.AthleteID)
	if err != nil {
		return models.Invitation{}, err
	}
	inv, err := s.app.Invite(ctx, teamID, athleteID, caller)
	if err != nil {
		return models.Invitation{}, err
	}
	return *inv, nil
}

// Accept joins the caller to the inviting team
func (s *Service) Accept(ctx context.Context, caller uuid.UUID, req *InvitationRequest) (models.Membership, error) {
	id, err := rpc.ParseID("invitation_id", req.InvitationID)
	if err != nil {
		return models.Membership{}, err
	}
	m, err := s.app.Accept(ctx, id, caller)
	if err != nil {
		return models.Membership{}, err
	}
	return *m, nil
}

// Decline rejects an invitation addressed to the caller
func (s *Service) Decline(ctx context.Context, caller uuid.UUID, req *InvitationRequest) (models.Invitation, error) {
	return s.respond(ctx, caller, req, s.app.Decline)
}

// Cancel withdraws an invitation
func (s *Service) Cancel(ctx context.Context, caller uuid.UUID, req *InvitationRequest) (models.Invitation, error) {
	return s.respond(ctx, caller, req, s.app.Cancel)
}

// ListMine returns the caller's pending invitations
func (s *Service) ListMine(ctx context.Context, caller uuid.UUID, _ *rpc.Empty) (ListMineResponse, error) {
	invitations, err := s.app.ListForAthlete(ctx, caller)
	if err != nil {
		return ListMineResponse{}, err
	}
	return ListMineResponse{Invitations: invitations}, nil
}

// Helper methods

func (s *Service) respond(
	ctx context.Context,
	caller uuid.UUID,
	req *InvitationRequest,
	fn func(ctx context.Context, invitationID, actorID uuid.UUID) (*models.Invitation, error),
) (models.Invitation, error) {
	id, err := rpc.ParseID("invitation_id", req.InvitationID)
	if err != nil {
		return models.Invitation{}, err
	}
	inv, err := fn(ctx, id, caller)
	if err != nil {
		return models.Invitation{}, err
	}
	return *inv, nil
}
