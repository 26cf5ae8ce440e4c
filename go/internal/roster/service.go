package roster

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/rpc"
)

// ServiceName is the connect service the roster procedures are mounted under.
const ServiceName = "recruit.v1.RosterService"

// RosterApp defines what the service layer needs from the roster application
type RosterApp interface {
	ListMembers(ctx context.Context, teamID, actorID uuid.UUID) ([]models.Membership, error)
	RemoveMember(ctx context.Context, teamID, targetID, actorID uuid.UUID) error
	ChangeRole(ctx context.Context, teamID, targetID, actorID uuid.UUID, newRole models.Role) (*models.Membership, error)
	TransferOwnership(ctx context.Context, teamID, targetID, actorID uuid.UUID) (*models.Team, error)
	Leave(ctx context.Context, teamID, actorID uuid.UUID) error
}

// Service exposes the roster App over connect
type Service struct {
	app RosterApp
}

// NewService creates a new roster service
func NewService(app RosterApp) *Service {
	return &Service{
		app: app,
	}
}

type TeamRequest struct {
	TeamID string `json:"team_id"`
}

type MemberRequest struct {
	TeamID    string `json:"team_id"`
	AthleteID string `json:"athlete_id"`
}

type ChangeRoleRequest struct {
	TeamID    string      `json:"team_id"`
	AthleteID string      `json:"athlete_id"`
	Role      models.Role `json:"role"`
}

type ListMembersResponse struct {
	Members []models.Membership `json:"members"`
}

type RemoveMemberResponse struct {
	Removed bool `json:"removed"`
}

type LeaveResponse struct {
	Left bool `json:"left"`
}

// Handler builds the connect handler for RosterService.
func (s *Service) Handler(resolver rpc.Resolver) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, resolver)
	rpc.Handle(svc, "ListMembers", s.ListMembers)
	rpc.Handle(svc, "RemoveMember", s.RemoveMember)
	rpc.Handle(svc, "ChangeRole", s.ChangeRole)
	rpc.Handle(svc, "TransferOwnership", s.TransferOwnership)
	rpc.Handle(svc, "Leave", s.Leave)
	return svc.Handler()
}

// ListMembers returns the roster of a team to one of its members
func (s *Service) ListMembers(ctx context.Context, caller uuid.UUID, req *TeamRequest) (ListMembersResponse, error) {
	teamID, err := rpc.ParseID("team_id", req.TeamID)
	if err != nil {
		return ListMembersResponse{}, err
	}
	members, err := s.app.ListMembers(ctx, teamID, caller)
	if err != nil {
		return ListMembersResponse{}, err
	}
	return ListMembersResponse{Members: members}, nil
}

// RemoveMember removes a member from a team
func (s *Service) RemoveMember(ctx context.Context, caller uuid.UUID, req *MemberRequest) (RemoveMemberResponse, error) {
	teamID, athleteID, err := parseMember(req.TeamID, req.AthleteID)
	if err != nil {
		return RemoveMemberResponse{}, err
	}
	if err := s.app.RemoveMember(ctx, teamID, athleteID, caller); err != nil {
		return RemoveMemberResponse{}, err
	}
	return RemoveMemberResponse{Removed: true}, nil
}

// ChangeRole updates a member's role
func (s *Service) ChangeRole(ctx context.Context, caller uuid.UUID, req *ChangeRoleRequest) (models.Membership, error) {
	teamID, athleteID, err := parseMember(req.TeamID, req.AthleteID)
	if err != nil {
		return models.Membership{}, err
	}
	m, err := s.app.ChangeRole(ctx, teamID, athleteID, caller, req.Role)
	if err != nil {
		return models.Membership{}, err
	}
	return *m, nil
}

// TransferOwnership hands the team to another member
func (s *Service) TransferOwnership(ctx context.Context, caller uuid.UUID, req *MemberRequest) (models.Team, error) {
	teamID, athleteID, err := parseMember(req.TeamID, req.AthleteID)
	if err != nil {
		return models.Team{}, err
	}
	team, err := s.app.TransferOwnership(ctx, teamID, athleteID, caller)
	if err != nil {
		return models.Team{}, err
	}
	return *team, nil
}

// Leave removes the caller from a team
func (s *Service) Leave(ctx context.Context, caller uuid.UUID, req *TeamRequest) (LeaveResponse, error) {
	teamID, err := rpc.ParseID("team_id", req.TeamID)
	if err != nil {
		return LeaveResponse{}, err
	}
	if err := s.app.Leave(ctx, teamID, caller); err != nil {
		return LeaveResponse{}, err
	}
	return LeaveResponse{Left: true}, nil
}

// Helper methods

func parseMember(team, athlete string) (uuid.UUID, uuid.UUID, error) {
	teamID, err := rpc.ParseID("team_id", team)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	athleteID, err := rpc.ParseID("athlete_id", athlete)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return teamID, athleteID, nil
}
