package memory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/models"
)

// Seeding and inspection helpers. They bypass transactions and uniqueness
// checks, so tests can build any starting state.

func (s *Store) PutAthlete(a models.Athlete) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.athletes[a.ID] = a
}

func (s *Store) PutTeam(t models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.teams[t.ID] = t
}

func (s *Store) PutMembership(m models.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.memberships[m.AthleteID] = m
}

func (s *Store) PutInvitation(inv models.Invitation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.invitations[inv.ID] = inv
}

func (s *Store) PutJoinRequest(r models.JoinRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.joinRequests[r.ID] = r
}

func (s *Store) PutApplication(a models.TeamApplication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.applications[a.ID] = a
}

func (s *Store) Team(id uuid.UUID) (models.Team, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data.teams[id]
	return t, ok
}

func (s *Store) TeamStats(teamID uuid.UUID) (models.TeamStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data.stats[teamID]
	return st, ok
}

// Membership returns the athlete's membership on any team.
func (s *Store) Membership(athleteID uuid.UUID) (models.Membership, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data.memberships[athleteID]
	return m, ok
}

// Members returns a team's memberships ordered by athlete id.
func (s *Store) Members(teamID uuid.UUID) []models.Membership {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Membership
	for _, m := range s.data.memberships {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AthleteID.String() < out[j].AthleteID.String() })
	return out
}

func (s *Store) Invitation(id uuid.UUID) (models.Invitation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.data.invitations[id]
	return inv, ok
}

func (s *Store) Invitations() []models.Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Invitation, 0, len(s.data.invitations))
	for _, inv := range s.data.invitations {
		out = append(out, inv)
	}
	return out
}

func (s *Store) JoinRequest(id uuid.UUID) (models.JoinRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.joinRequests[id]
	return r, ok
}

func (s *Store) JoinRequests() []models.JoinRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.JoinRequest, 0, len(s.data.joinRequests))
	for _, r := range s.data.joinRequests {
		out = append(out, r)
	}
	return out
}

func (s *Store) Application(id uuid.UUID) (models.TeamApplication, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.data.applications[id]
	return a, ok
}

// Notifications returns every committed notification in insert order.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.data.notifications...)
}

// NotificationsFor returns the committed notifications addressed to recipient.
func (s *Store) NotificationsFor(recipient uuid.UUID) []models.Notification {
	var out []models.Notification
	for _, n := range s.Notifications() {
		if n.RecipientID == recipient {
			out = append(out, n)
		}
	}
	return out
}
