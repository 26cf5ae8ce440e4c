package joinrequests

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/rpc"
)

// ServiceName is the connect service the join-request procedures are mounted under.
const ServiceName = "recruit.v1.JoinRequestService"

// JoinRequestApp defines what the service layer needs from the join-request application
type JoinRequestApp interface {
	Request(ctx context.Context, teamID, actorID uuid.UUID, message string) (*models.JoinRequest, error)
	Decide(ctx context.Context, requestID uuid.UUID, decision models.Decision, reviewerID uuid.UUID) (*models.JoinRequest, error)
	Withdraw(ctx context.Context, requestID, actorID uuid.UUID) error
	ListPendingForTeam(ctx context.Context, teamID, actorID uuid.UUID) ([]models.JoinRequest, error)
}

// Service exposes the join-request App over connect
type Service struct {
	app JoinRequestApp
}

// NewService creates a new join-request service
func NewService(app JoinRequestApp) *Service {
	return &Service{
		app: app,
	}
}

type RequestRequest struct {
	TeamID  string `json:"team_id"`
	Message string `json:"message"`
}

type DecideRequest struct {
	RequestID string          `json:"request_id"`
	Decision  models.Decision `json:"decision"`
}

type WithdrawRequest struct {
	RequestID string `json:"request_id"`
}

type WithdrawResponse struct {
	Withdrawn bool `json:"withdrawn"`
}

type ListPendingRequest struct {
	TeamID string `json:"team_id"`
}

type ListPendingResponse struct {
	Requests []models.JoinRequest `json:"requests"`
}

// Handler builds the connect handler for JoinRequestService.
func (s *Service) Handler(resolver rpc.Resolver) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, resolver)
	rpc.Handle(svc, "Request", s.Request)
	rpc.Handle(svc, "Decide", s.Decide)
	rpc.Handle(svc, "Withdraw", s.Withdraw)
	rpc.Handle(svc, "ListPending", s.ListPending)
	return svc.Handler()
}

// Request asks to join a team
func (s *Service) Request(ctx context.Context, caller uuid.UUID, req *RequestRequest) (models.JoinRequest, error) {
	teamID, err := rpc.ParseID("team_id", req.TeamID)
	if err != nil {
		return models.JoinRequest{}, err
	}
	jr, err := s.app.Request(ctx, teamID, caller, req.Message)
	if err != nil {
		return models.JoinRequest{}, err
	}
	return *jr, nil
}

// Decide accepts or rejects a join request
func (s *Service) Decide(ctx context.Context, caller uuid.UUID, req *DecideRequest) (models.JoinRequest, error) {
	id, err := rpc.ParseID("request_id", req.RequestID)
	if err != nil {
		return models.JoinRequest{}, err
	}
	jr, err := s.app.Decide(ctx, id, req.Decision, caller)
	if err != nil {
		return models.JoinRequest{}, err
	}
	return *jr, nil
}

// Withdraw deletes the caller's own pending request
func (s *Service) Withdraw(ctx context.Context, caller uuid.UUID, req *WithdrawRequest) (WithdrawResponse, error) {
	id, err := rpc.ParseID("request_id", req.RequestID)
	if err != nil {
		return WithdrawResponse{}, err
	}
	if err := s.app.Withdraw(ctx, id, caller); err != nil {
		return WithdrawResponse{}, err
	}
	return WithdrawResponse{Withdrawn: true}, nil
}

// ListPending returns a team's pending requests
func (s *Service) ListPending(ctx context.Context, caller uuid.UUID, req *ListPendingRequest) (ListPendingResponse, error) {
	teamID, err := rpc.ParseID("team_id", req.TeamID)
	if err != nil {
		return ListPendingResponse{}, err
	}
	requests, err := s.app.ListPendingForTeam(ctx, teamID, caller)
	if err != nil {
		return ListPendingResponse{}, err
	}
	return ListPendingResponse{Requests: requests}, nil
}
