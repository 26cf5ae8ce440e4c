package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/mcdev12/recruit/go/internal/apperr"
	"github.com/mcdev12/recruit/go/internal/geo"
	"github.com/mcdev12/recruit/go/internal/metrics"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/store/memory"
)

var downtownLA = geo.Coordinates{Latitude: 34.0522, Longitude: -118.2437}

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]models.Candidate
	failGet error
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]models.Candidate)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]models.Candidate, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return nil, false, c.failGet
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, candidates []models.Candidate, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = candidates
	return nil
}

type DiscoverySuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	metrics *metrics.Metrics
	cfg     Config
	app     *App
}

func TestDiscoverySuite(t *testing.T) {
	suite.Run(t, new(DiscoverySuite))
}

func (s *DiscoverySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.cfg = DefaultConfig()
	s.app = NewApp(s.store, nil, s.cfg, s.metrics)
}

func (s *DiscoverySuite) SetupSubTest() {
	s.SetupTest()
}

func (s *DiscoverySuite) athleteAt(username, sport string, rank int, lat, lon float64) models.Athlete {
	a := models.Athlete{
		ID:           uuid.New(),
		Username:     username,
		PrimarySport: sport,
		Rank:         rank,
		Location:     &geo.Coordinates{Latitude: lat, Longitude: lon},
	}
	s.store.PutAthlete(a)
	return a
}

func (s *DiscoverySuite) usernames(candidates []models.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Athlete.Username
	}
	return out
}

func (s *DiscoverySuite) TestNearbyFreeAgent() {
	a := s.athleteAt("nearby", "soccer", 10, 34.05, -118.25)

	got := s.app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer"})
	s.Require().Len(got, 1)
	s.Equal(a.ID, got[0].Athlete.ID)
	s.InDelta(0.63, got[0].DistanceKm, 0.01)
}

func (s *DiscoverySuite) TestFiltersAndOrdering() {
	s.athleteAt("mid", "soccer", 1, 34.5, -118.2437)      // ~50 km
	s.athleteAt("close", "soccer", 1, 34.1, -118.2437)    // ~5 km
	s.athleteAt("far", "soccer", 99, 35.5, -118.2437)     // ~161 km, inside the box
	s.athleteAt("outside", "soccer", 99, 37.0, -118.2437) // outside the box
	s.athleteAt("tennis", "tennis", 99, 34.06, -118.2437)
	member := s.athleteAt("member", "soccer", 99, 34.06, -118.2437)
	s.store.PutMembership(models.Membership{TeamID: uuid.New(), AthleteID: member.ID, Role: models.RolePlayer})
	secondary := "soccer"
	s.store.PutAthlete(models.Athlete{
		ID:             uuid.New(),
		Username:       "secondary",
		PrimarySport:   "futsal",
		SecondarySport: &secondary,
		Location:       &geo.Coordinates{Latitude: 34.2, Longitude: -118.2437},
	})

	got := s.app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer"})
	s.Equal([]string{"close", "secondary", "mid"}, s.usernames(got))
	for _, c := range got {
		s.LessOrEqual(c.DistanceKm, s.cfg.RadiusKm)
	}
}

func (s *DiscoverySuite) TestNoSportMatchesEveryFreeAgent() {
	s.athleteAt("a", "soccer", 1, 34.1, -118.2437)
	s.athleteAt("b", "tennis", 1, 34.2, -118.2437)

	got := s.app.FindCandidates(s.ctx, Query{Origin: &downtownLA})
	s.Equal([]string{"a", "b"}, s.usernames(got))
}

func (s *DiscoverySuite) TestSearchCombination() {
	s.Run("search narrows by default", func() {
		s.athleteAt("maria", "soccer", 1, 34.1, -118.2437)
		s.athleteAt("mario", "tennis", 1, 34.2, -118.2437)
		s.athleteAt("lucas", "soccer", 1, 34.3, -118.2437)

		got := s.app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer", Search: " MAR "})
		s.Equal([]string{"maria"}, s.usernames(got))
	})

	s.Run("search widens when configured", func() {
		s.athleteAt("maria", "soccer", 1, 34.1, -118.2437)
		s.athleteAt("mario", "tennis", 1, 34.2, -118.2437)
		s.athleteAt("lucas", "soccer", 1, 34.3, -118.2437)
		cfg := DefaultConfig()
		cfg.SearchWidens = true
		app := NewApp(s.store, nil, cfg, s.metrics)

		got := app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer", Search: "mar"})
		s.Equal([]string{"maria", "mario", "lucas"}, s.usernames(got))
	})
}

func (s *DiscoverySuite) TestLimits() {
	for i := 0; i < 120; i++ {
		s.athleteAt(fmt.Sprintf("p%03d", i), "soccer", i, 34.0522+float64(i)*0.001, -118.2437)
	}

	s.Len(s.app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer"}), 20)
	s.Len(s.app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer", Limit: -3}), 20)
	s.Len(s.app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer", Limit: 5}), 5)
	s.Len(s.app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer", Limit: 500}), 50)
}

func (s *DiscoverySuite) TestMissingOrigin() {
	s.athleteAt("a", "soccer", 1, 34.1, -118.2437)

	s.Empty(s.app.FindCandidates(s.ctx, Query{Sport: "soccer"}))
	s.Empty(s.app.FindCandidates(s.ctx, Query{Origin: &geo.Coordinates{Latitude: 120}, Sport: "soccer"}))
}

func (s *DiscoverySuite) TestStorageFailureYieldsEmptyList() {
	s.athleteAt("a", "soccer", 1, 34.1, -118.2437)
	s.store.FailSearchWith(errors.New("connection refused"))

	got := s.app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer"})
	s.NotNil(got)
	s.Empty(got)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.DiscoveryDegraded))
}

func (s *DiscoverySuite) TestCache() {
	cache := newMapCache()
	app := NewApp(s.store, cache, s.cfg, s.metrics)
	s.athleteAt("a", "soccer", 1, 34.1, -118.2437)

	first := app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer"})
	s.Require().Len(first, 1)
	s.Len(cache.entries, 1)

	s.store.FailSearchWith(errors.New("down"))
	second := app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer"})
	s.Equal(first, second, "served from cache")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CandidateCache.WithLabelValues("hit")))

	cache.failGet = errors.New("cache down")
	s.store.FailSearchWith(nil)
	third := app.FindCandidates(s.ctx, Query{Origin: &downtownLA, Sport: "soccer"})
	s.Len(third, 1, "cache errors fall through to storage")
}

func (s *DiscoverySuite) TestFindForTeam() {
	owner, player, outsider := uuid.New(), uuid.New(), uuid.New()
	team := models.Team{ID: uuid.New(), Name: "LA United", Sport: "soccer", OwnerID: owner, Location: &downtownLA}
	s.store.PutTeam(team)
	s.store.PutMembership(models.Membership{TeamID: team.ID, AthleteID: owner, Role: models.RoleOwner})
	s.store.PutMembership(models.Membership{TeamID: team.ID, AthleteID: player, Role: models.RolePlayer})
	s.athleteAt("nearby", "soccer", 1, 34.05, -118.25)
	s.athleteAt("tennis", "tennis", 1, 34.05, -118.25)

	got, err := s.app.FindForTeam(s.ctx, team.ID, player, "", 0)
	s.Require().NoError(err)
	s.Equal([]string{"nearby"}, s.usernames(got))

	_, err = s.app.FindForTeam(s.ctx, team.ID, outsider, "", 0)
	s.ErrorIs(err, apperr.ErrUnauthorized)

	_, err = s.app.FindForTeam(s.ctx, uuid.New(), owner, "", 0)
	s.ErrorIs(err, apperr.ErrNotFound)

	homeless := models.Team{ID: uuid.New(), Sport: "soccer", OwnerID: uuid.New()}
	s.store.PutTeam(homeless)
	got, err = s.app.FindForTeam(s.ctx, homeless.ID, homeless.OwnerID, "", 0)
	s.Require().NoError(err)
	s.Empty(got)
}
