package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/store"
)

type txStore struct {
	st                *state
	failNotifications error
}

var _ store.Tx = (*txStore)(nil)

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, store.ErrNotFound)
}

func conflict(what string) error {
	return fmt.Errorf("%s: %w", what, store.ErrConflict)
}

// LockTeam and LockPair have nothing to do: the store lock is already held
// for the whole transaction.

func (t *txStore) LockPair(ctx context.Context, teamID, athleteID uuid.UUID) error {
	return nil
}

func (t *txStore) LockTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	return t.GetTeam(ctx, id)
}

func (t *txStore) BestEffort(ctx context.Context, fn func(tx store.Tx) error) error {
	snapshot := t.st.clone()
	if err := fn(t); err != nil {
		t.st = snapshot
		return err
	}
	return nil
}

// athletes

func (t *txStore) GetAthlete(ctx context.Context, id uuid.UUID) (*models.Athlete, error) {
	a, ok := t.st.athletes[id]
	if !ok {
		return nil, notFound("get athlete")
	}
	return &a, nil
}

// teams

func (t *txStore) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, ok := t.st.teams[id]
	if !ok {
		return nil, notFound("get team")
	}
	return &team, nil
}

func (t *txStore) GetTeamByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Team, error) {
	for _, team := range t.st.teams {
		if team.OwnerID == ownerID {
			team := team
			return &team, nil
		}
	}
	return nil, notFound("get team by owner")
}

func (t *txStore) CreateTeam(ctx context.Context, team models.Team) error {
	if _, exists := t.st.teams[team.ID]; exists {
		return conflict("create team")
	}
	for _, other := range t.st.teams {
		if other.OwnerID == team.OwnerID {
			return conflict("create team: owner already owns a team")
		}
	}
	team.UpdatedAt = team.CreatedAt
	t.st.teams[team.ID] = team
	return nil
}

func (t *txStore) CreateTeamStats(ctx context.Context, stats models.TeamStats) error {
	if _, exists := t.st.stats[stats.TeamID]; exists {
		return conflict("create team stats")
	}
	t.st.stats[stats.TeamID] = stats
	return nil
}

func (t *txStore) SetTeamOwner(ctx context.Context, teamID, ownerID uuid.UUID, at time.Time) error {
	team, ok := t.st.teams[teamID]
	if !ok {
		return notFound("set team owner")
	}
	for id, other := range t.st.teams {
		if id != teamID && other.OwnerID == ownerID {
			return conflict("set team owner")
		}
	}
	team.OwnerID = ownerID
	team.UpdatedAt = at
	t.st.teams[teamID] = team
	return nil
}

// memberships

func (t *txStore) GetMembershipByAthlete(ctx context.Context, athleteID uuid.UUID) (*models.Membership, error) {
	m, ok := t.st.memberships[athleteID]
	if !ok {
		return nil, notFound("get membership by athlete")
	}
	return &m, nil
}

func (t *txStore) GetMembership(ctx context.Context, teamID, athleteID uuid.UUID) (*models.Membership, error) {
	m, ok := t.st.memberships[athleteID]
	if !ok || m.TeamID != teamID {
		return nil, notFound("get membership")
	}
	return &m, nil
}

var roleOrder = map[models.Role]int{
	models.RoleOwner:   0,
	models.RoleCaptain: 1,
	models.RoleManager: 2,
	models.RolePlayer:  3,
}

func (t *txStore) ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.Membership, error) {
	var members []models.Membership
	for _, m := range t.st.memberships {
		if m.TeamID == teamID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if roleOrder[a.Role] != roleOrder[b.Role] {
			return roleOrder[a.Role] < roleOrder[b.Role]
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.AthleteID.String() < b.AthleteID.String()
	})
	return members, nil
}

func (t *txStore) hasOtherOwner(teamID, athleteID uuid.UUID) bool {
	for _, m := range t.st.memberships {
		if m.TeamID == teamID && m.Role == models.RoleOwner && m.AthleteID != athleteID {
			return true
		}
	}
	return false
}

func (t *txStore) CreateMembership(ctx context.Context, m models.Membership) error {
	if _, exists := t.st.memberships[m.AthleteID]; exists {
		return conflict("create membership: athlete already on a team")
	}
	if m.Role == models.RoleOwner && t.hasOtherOwner(m.TeamID, m.AthleteID) {
		return conflict("create membership: team already has an owner")
	}
	t.st.memberships[m.AthleteID] = m
	return nil
}

func (t *txStore) UpdateMembershipRole(ctx context.Context, teamID, athleteID uuid.UUID, role models.Role) error {
	m, ok := t.st.memberships[athleteID]
	if !ok || m.TeamID != teamID {
		return notFound("update membership role")
	}
	if role == models.RoleOwner && t.hasOtherOwner(teamID, athleteID) {
		return conflict("update membership role: team already has an owner")
	}
	m.Role = role
	m.IsCaptain = role.CaptainFlag()
	t.st.memberships[athleteID] = m
	return nil
}

func (t *txStore) DeleteMembership(ctx context.Context, teamID, athleteID uuid.UUID) error {
	m, ok := t.st.memberships[athleteID]
	if !ok || m.TeamID != teamID {
		return notFound("delete membership")
	}
	delete(t.st.memberships, athleteID)
	return nil
}

// invitations

func (t *txStore) GetInvitation(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	inv, ok := t.st.invitations[id]
	if !ok {
		return nil, notFound("get invitation")
	}
	return &inv, nil
}

func (t *txStore) GetPendingInvitation(ctx context.Context, teamID, athleteID uuid.UUID) (*models.Invitation, error) {
	for _, inv := range t.st.invitations {
		if inv.TeamID == teamID && inv.AthleteID == athleteID && inv.Status == models.InvitationStatusPending {
			inv := inv
			return &inv, nil
		}
	}
	return nil, notFound("get pending invitation")
}

func (t *txStore) ListPendingInvitationsByAthlete(ctx context.Context, athleteID uuid.UUID) ([]models.Invitation, error) {
	var out []models.Invitation
	for _, inv := range t.st.invitations {
		if inv.AthleteID == athleteID && inv.Status == models.InvitationStatusPending {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (t *txStore) CreateInvitation(ctx context.Context, inv models.Invitation) error {
	if _, err := t.GetPendingInvitation(ctx, inv.TeamID, inv.AthleteID); err == nil && inv.Status == models.InvitationStatusPending {
		return conflict("create invitation: pending invitation exists")
	}
	t.st.invitations[inv.ID] = inv
	return nil
}

func (t *txStore) UpdateInvitationStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus, at time.Time) error {
	inv, ok := t.st.invitations[id]
	if !ok || inv.Status != models.InvitationStatusPending {
		return notFound("update invitation status")
	}
	inv.Status = status
	inv.RespondedAt = &at
	t.st.invitations[id] = inv
	return nil
}

func (t *txStore) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, inv := range t.st.invitations {
		if inv.Status == models.InvitationStatusPending && inv.ExpiredAt(now) {
			inv.Status = models.InvitationStatusExpired
			at := now
			inv.RespondedAt = &at
			t.st.invitations[id] = inv
			n++
		}
	}
	return n, nil
}

// join requests

func (t *txStore) GetJoinRequest(ctx context.Context, id uuid.UUID) (*models.JoinRequest, error) {
	r, ok := t.st.joinRequests[id]
	if !ok {
		return nil, notFound("get join request")
	}
	return &r, nil
}

func (t *txStore) GetPendingJoinRequest(ctx context.Context, teamID, athleteID uuid.UUID) (*models.JoinRequest, error) {
	for _, r := range t.st.joinRequests {
		if r.TeamID == teamID && r.AthleteID == athleteID && r.Status == models.JoinRequestStatusPending {
			r := r
			return &r, nil
		}
	}
	return nil, notFound("get pending join request")
}

func (t *txStore) ListPendingJoinRequests(ctx context.Context, teamID uuid.UUID) ([]models.JoinRequest, error) {
	var out []models.JoinRequest
	for _, r := range t.st.joinRequests {
		if r.TeamID == teamID && r.Status == models.JoinRequestStatusPending {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *txStore) CreateJoinRequest(ctx context.Context, req models.JoinRequest) error {
	if _, err := t.GetPendingJoinRequest(ctx, req.TeamID, req.AthleteID); err == nil && req.Status == models.JoinRequestStatusPending {
		return conflict("create join request: pending request exists")
	}
	t.st.joinRequests[req.ID] = req
	return nil
}

func (t *txStore) ReviewJoinRequest(ctx context.Context, id uuid.UUID, status models.JoinRequestStatus, reviewerID uuid.UUID, at time.Time) error {
	r, ok := t.st.joinRequests[id]
	if !ok || r.Status != models.JoinRequestStatusPending {
		return notFound("review join request")
	}
	r.Status = status
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &at
	t.st.joinRequests[id] = r
	return nil
}

func (t *txStore) DeleteJoinRequest(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.st.joinRequests[id]; !ok {
		return notFound("delete join request")
	}
	delete(t.st.joinRequests, id)
	return nil
}

// applications

func (t *txStore) GetApplication(ctx context.Context, id uuid.UUID) (*models.TeamApplication, error) {
	a, ok := t.st.applications[id]
	if !ok {
		return nil, notFound("get application")
	}
	return &a, nil
}

func (t *txStore) GetPendingApplication(ctx context.Context, applicantID uuid.UUID) (*models.TeamApplication, error) {
	for _, a := range t.st.applications {
		if a.ApplicantID == applicantID && a.Status == models.ApplicationStatusPending {
			a := a
			return &a, nil
		}
	}
	return nil, notFound("get pending application")
}

func (t *txStore) CreateApplication(ctx context.Context, app models.TeamApplication) error {
	if _, err := t.GetPendingApplication(ctx, app.ApplicantID); err == nil && app.Status == models.ApplicationStatusPending {
		return conflict("create application: pending application exists")
	}
	t.st.applications[app.ID] = app
	return nil
}

func (t *txStore) ReviewApplication(ctx context.Context, id uuid.UUID, review store.ApplicationReview) error {
	a, ok := t.st.applications[id]
	if !ok || a.Status != models.ApplicationStatusPending {
		return notFound("review application")
	}
	at := review.ReviewedAt
	a.Status = review.Status
	a.ReviewNote = review.Note
	a.TeamID = review.TeamID
	a.ReviewedAt = &at
	t.st.applications[id] = a
	return nil
}

// notifications

func (t *txStore) InsertNotification(ctx context.Context, n models.Notification) error {
	if t.failNotifications != nil {
		return fmt.Errorf("insert notification: %w", t.failNotifications)
	}
	t.st.notifications = append(t.st.notifications, n)
	return nil
}
