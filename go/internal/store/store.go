// Package store declares the persistence contract shared by every workflow.
// Implementations live in store/postgres and store/memory.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/apperr"
	"github.com/mcdev12/recruit/go/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// Store runs units of work. Every mutating workflow operation is exactly one
// RunInTx call; if fn returns an error nothing it wrote is kept.
type Store interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
	// SearchFreeAgents runs the discovery pre-filter outside any transaction.
	SearchFreeAgents(ctx context.Context, filter models.CandidateFilter) ([]models.Athlete, error)
}

// Tx is the set of reads and writes available inside a unit of work.
type Tx interface {
	Athletes
	Teams
	Memberships
	Invitations
	JoinRequests
	Applications
	Notifications

	// LockPair serializes invite and join-request creation for one
	// (team, athlete) pair until the transaction ends.
	LockPair(ctx context.Context, teamID, athleteID uuid.UUID) error

	// BestEffort runs fn in a nested savepoint. A failure inside fn is rolled
	// back to the savepoint and returned, leaving the outer transaction usable.
	BestEffort(ctx context.Context, fn func(tx Tx) error) error
}

type Athletes interface {
	GetAthlete(ctx context.Context, id uuid.UUID) (*models.Athlete, error)
}

type Teams interface {
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	// LockTeam reads the team and holds a row lock on it until the transaction ends.
	LockTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetTeamByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Team, error)
	CreateTeam(ctx context.Context, team models.Team) error
	CreateTeamStats(ctx context.Context, stats models.TeamStats) error
	SetTeamOwner(ctx context.Context, teamID, ownerID uuid.UUID, at time.Time) error
}

type Memberships interface {
	// GetMembershipByAthlete returns the athlete's only membership, on any team.
	GetMembershipByAthlete(ctx context.Context, athleteID uuid.UUID) (*models.Membership, error)
	GetMembership(ctx context.Context, teamID, athleteID uuid.UUID) (*models.Membership, error)
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.Membership, error)
	CreateMembership(ctx context.Context, m models.Membership) error
	UpdateMembershipRole(ctx context.Context, teamID, athleteID uuid.UUID, role models.Role) error
	DeleteMembership(ctx context.Context, teamID, athleteID uuid.UUID) error
}

// Single-record reads of invitations, join requests and applications lock the
// row, and status updates only apply to PENDING records; updating a record
// that is no longer pending returns ErrNotFound.

type Invitations interface {
	GetInvitation(ctx context.Context, id uuid.UUID) (*models.Invitation, error)
	GetPendingInvitation(ctx context.Context, teamID, athleteID uuid.UUID) (*models.Invitation, error)
	ListPendingInvitationsByAthlete(ctx context.Context, athleteID uuid.UUID) ([]models.Invitation, error)
	CreateInvitation(ctx context.Context, inv models.Invitation) error
	UpdateInvitationStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus, at time.Time) error
	// ExpireInvitations marks every pending invitation expired at or before now.
	ExpireInvitations(ctx context.Context, now time.Time) (int64, error)
}

type JoinRequests interface {
	GetJoinRequest(ctx context.Context, id uuid.UUID) (*models.JoinRequest, error)
	GetPendingJoinRequest(ctx context.Context, teamID, athleteID uuid.UUID) (*models.JoinRequest, error)
	ListPendingJoinRequests(ctx context.Context, teamID uuid.UUID) ([]models.JoinRequest, error)
	CreateJoinRequest(ctx context.Context, req models.JoinRequest) error
	ReviewJoinRequest(ctx context.Context, id uuid.UUID, status models.JoinRequestStatus, reviewerID uuid.UUID, at time.Time) error
	DeleteJoinRequest(ctx context.Context, id uuid.UUID) error
}

type Applications interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*models.TeamApplication, error)
	GetPendingApplication(ctx context.Context, applicantID uuid.UUID) (*models.TeamApplication, error)
	CreateApplication(ctx context.Context, app models.TeamApplication) error
	ReviewApplication(ctx context.Context, id uuid.UUID, review ApplicationReview) error
}

// ApplicationReview is the terminal decision written onto an application.
type ApplicationReview struct {
	Status     models.ApplicationStatus
	Note       *string
	TeamID     *uuid.UUID
	ReviewedAt time.Time
}

type Notifications interface {
	InsertNotification(ctx context.Context, n models.Notification) error
}

// NotFoundAs maps ErrNotFound to a NotFound failure carrying msg. Any other
// error is returned as a storage failure.
func NotFoundAs(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.From(err)
}

// ConflictAs maps ErrConflict to a Conflict failure carrying msg. Any other
// error is returned as a storage failure.
func ConflictAs(err error, msg string) error {
	if errors.Is(err, ErrConflict) {
		return apperr.Conflict(msg)
	}
	return apperr.From(err)
}

// Exists turns a lookup result into a presence flag, passing through real
// errors. It takes a lookup's return values directly:
//
//	found, err := store.Exists(tx.GetTeamByOwner(ctx, id))
func Exists[T any](_ T, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// TransitionAs maps ErrNotFound from a status update to a Conflict carrying
// msg: the record stopped being PENDING after it was read.
func TransitionAs(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.Conflict(msg)
	}
	return apperr.From(err)
}
