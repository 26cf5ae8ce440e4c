// Package memory is an in-process store.Store used by tests and local runs.
// Transactions take one coarse lock and work on a copy of the data, so a
// failed unit of work leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/store"
)

type Store struct {
	mu   sync.Mutex
	data *state

	failNotifications error
	failSearch        error
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: newState()}
}

// FailNotificationsWith makes every notification insert fail with err until
// called again with nil.
func (s *Store) FailNotificationsWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNotifications = err
}

// FailSearchWith makes SearchFreeAgents fail with err until called again with nil.
func (s *Store) FailSearchWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSearch = err
}

func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txStore{st: s.data.clone(), failNotifications: s.failNotifications}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.st
	return nil
}

func (s *Store) SearchFreeAgents(ctx context.Context, filter models.CandidateFilter) ([]models.Athlete, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSearch != nil {
		return nil, s.failSearch
	}

	var matches []models.Athlete
	for _, a := range s.data.athletes {
		if a.Location == nil || !filter.Box.Contains(*a.Location) {
			continue
		}
		if _, member := s.data.memberships[a.ID]; member {
			continue
		}
		if !filter.Matches(a) {
			continue
		}
		matches = append(matches, a)
	}

	sort.Slice(matches, func(i, j int) bool {
		mi, mj := matches[i].PlaysSport(filter.Sport), matches[j].PlaysSport(filter.Sport)
		if mi != mj {
			return mi
		}
		if matches[i].Rank != matches[j].Rank {
			return matches[i].Rank > matches[j].Rank
		}
		return strings.Compare(matches[i].ID.String(), matches[j].ID.String()) < 0
	})
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

// state is everything the store holds. Memberships are keyed by athlete,
// which is what keeps an athlete on at most one team.
type state struct {
	athletes      map[uuid.UUID]models.Athlete
	teams         map[uuid.UUID]models.Team
	stats         map[uuid.UUID]models.TeamStats
	memberships   map[uuid.UUID]models.Membership
	invitations   map[uuid.UUID]models.Invitation
	joinRequests  map[uuid.UUID]models.JoinRequest
	applications  map[uuid.UUID]models.TeamApplication
	notifications []models.Notification
}

func newState() *state {
	return &state{
		athletes:     make(map[uuid.UUID]models.Athlete),
		teams:        make(map[uuid.UUID]models.Team),
		stats:        make(map[uuid.UUID]models.TeamStats),
		memberships:  make(map[uuid.UUID]models.Membership),
		invitations:  make(map[uuid.UUID]models.Invitation),
		joinRequests: make(map[uuid.UUID]models.JoinRequest),
		applications: make(map[uuid.UUID]models.TeamApplication),
	}
}

// clone copies the maps. Records are values, so a shallow copy of each map is
// enough as long as nobody mutates through the pointer fields.
func (s *state) clone() *state {
	return &state{
		athletes:      copyMap(s.athletes),
		teams:         copyMap(s.teams),
		stats:         copyMap(s.stats),
		memberships:   copyMap(s.memberships),
		invitations:   copyMap(s.invitations),
		joinRequests:  copyMap(s.joinRequests),
		applications:  copyMap(s.applications),
		notifications: append([]models.Notification(nil), s.notifications...),
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
