package discovery

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/rpc"
)

// ServiceName is the connect service the discovery procedures are mounted under.
const ServiceName = "recruit.v1.DiscoveryService"

// DiscoveryApp defines what the service layer needs from the discovery application
type DiscoveryApp interface {
	FindForTeam(ctx context.Context, teamID, actorID uuid.UUID, search string, limit int) ([]models.Candidate, error)
}

// Service exposes the discovery App over connect
type Service struct {
	app DiscoveryApp
}

// NewService creates a new discovery service
func NewService(app DiscoveryApp) *Service {
	return &Service{
		app: app,
	}
}

type FindCandidatesRequest struct {
	TeamID string `json:"team_id"`
	Search string `json:"search"`
	Limit  int    `json:"limit"`
}

type FindCandidatesResponse struct {
	Candidates []models.Candidate `json:"candidates"`
}

// Handler builds the connect handler for DiscoveryService.
func (s *Service) Handler(resolver rpc.Resolver) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, resolver)
	rpc.Handle(svc, "FindCandidates", s.FindCandidates)
	return svc.Handler()
}

// FindCandidates lists free agents near the caller's team
func (s *Service) FindCandidates(ctx context.Context, caller uuid.UUID, req *FindCandidatesRequest) (FindCandidatesResponse, error) {
	teamID, err := rpc.ParseID("team_id", req.TeamID)
	if err != nil {
		return FindCandidatesResponse{}, err
	}
	candidates, err := s.app.FindForTeam(ctx, teamID, caller, req.Search, req.Limit)
	if err != nil {
		return FindCandidatesResponse{}, err
	}
	return FindCandidatesResponse{Candidates: candidates}, nil
}
