package applications

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mcdev12/recruit/go/internal/geo"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/rpc"
)

// ServiceName is the connect service the application procedures are mounted under.
const ServiceName = "recruit.v1.ApplicationService"

// ApplicationApp defines what the service layer needs from the applications application
type ApplicationApp interface {
	Submit(ctx context.Context, actorID uuid.UUID, req SubmitRequest) (*models.TeamApplication, error)
	Approve(ctx context.Context, applicationID, reviewerID uuid.UUID) (*models.Team, error)
	Reject(ctx context.Context, applicationID uuid.UUID, note string, reviewerID uuid.UUID) (*models.TeamApplication, error)
}

// Service exposes the applications App over connect
type Service struct {
	app ApplicationApp
}

// NewService creates a new applications service
func NewService(app ApplicationApp) *Service {
	return &Service{
		app: app,
	}
}

type SubmitApplicationRequest struct {
	GuideID        string           `json:"guide_id"`
	Name           string           `json:"name"`
	Sport          string           `json:"sport"`
	Classification string           `json:"classification"`
	Location       *geo.Coordinates `json:"location,omitempty"`
}

type ApproveRequest struct {
	ApplicationID string `json:"application_id"`
}

type RejectRequest struct {
	ApplicationID string `json:"application_id"`
	Note          string `json:"note"`
}

// Handler builds the connect handler for ApplicationService.
func (s *Service) Handler(resolver rpc.Resolver) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, resolver)
	rpc.Handle(svc, "Submit", s.Submit)
	rpc.Handle(svc, "Approve", s.Approve)
	rpc.Handle(svc, "Reject", s.Reject)
	return svc.Handler()
}

// Submit files a team application
func (s *Service) Submit(ctx context.Context, caller uuid.UUID, req *SubmitApplicationRequest) (models.TeamApplication, error) {
	guideID, err := rpc.ParseID("guide_id", req.GuideID)
	if err != nil {
		return models.TeamApplication{}, err
	}
	app, err := s.app.Submit(ctx, caller, SubmitRequest{
		GuideID:        guideID,
		Name:           req.Name,
		Sport:          req.Sport,
		Classification: req.Classification,
		Location:       req.Location,
	})
	if err != nil {
		return models.TeamApplication{}, err
	}
	return *app, nil
}

// Approve founds the team described by an application
func (s *Service) Approve(ctx context.Context, caller uuid.UUID, req *ApproveRequest) (models.Team, error) {
	id, err := rpc.ParseID("application_id", req.ApplicationID)
	if err != nil {
		return models.Team{}, err
	}
	team, err := s.app.Approve(ctx, id, caller)
	if err != nil {
		return models.Team{}, err
	}
	return *team, nil
}

// Reject closes an application with a note
func (s *Service) Reject(ctx context.Context, caller uuid.UUID, req *RejectRequest) (models.TeamApplication, error) {
	id, err := rpc.ParseID("application_id", req.ApplicationID)
	if err != nil {
		return models.TeamApplication{}, err
	}
	app, err := s.app.Reject(ctx, id, req.Note, caller)
	if err != nil {
		return models.TeamApplication{}, err
	}
	return *app, nil
}
