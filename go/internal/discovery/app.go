// Package discovery finds free agents near a team: a cheap bounding-box query
// in storage, then exact great-circle distances in process.
package discovery

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mcdev12/recruit/go/internal/geo"
	"github.com/mcdev12/recruit/go/internal/metrics"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/roster"
	"github.com/mcdev12/recruit/go/internal/store"
)

// Config holds the discovery tunables.
type Config struct {
	RadiusKm   float64 `yaml:"radius_km"`
	BoxDegrees float64 `yaml:"box_degrees"`
	// CandidateMultiplier scales how many pre-filtered rows are fetched per
	// requested result. Higher values find more of the athletes inside the
	// radius at the cost of a larger query.
	CandidateMultiplier int           `yaml:"candidate_multiplier"`
	DefaultLimit        int           `yaml:"default_limit"`
	MaxLimit            int           `yaml:"max_limit"`
	SearchWidens        bool          `yaml:"search_widens"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
}

func DefaultConfig() Config {
	return Config{
		RadiusKm:            100,
		BoxDegrees:          2,
		CandidateMultiplier: 2,
		DefaultLimit:        20,
		MaxLimit:            50,
		CacheTTL:            30 * time.Second,
	}
}

// Query is one discovery search.
type Query struct {
	Origin *geo.Coordinates
	Sport  string
	Search string
	Limit  int
}

// App answers discovery queries. It never writes.
type App struct {
	store   store.Store
	cache   Cache
	cfg     Config
	metrics *metrics.Metrics
}

// NewApp creates a new discovery App. cache may be nil.
func NewApp(st store.Store, cache Cache, cfg Config, m *metrics.Metrics) *App {
	return &App{
		store:   st,
		cache:   cache,
		cfg:     cfg,
		metrics: m,
	}
}

// FindCandidates returns free agents within the radius of q.Origin, nearest
// first. It never fails: a storage error is logged and yields no candidates.
func (a *App) FindCandidates(ctx context.Context, q Query) []models.Candidate {
	if q.Origin == nil || !q.Origin.Valid() {
		return []models.Candidate{}
	}
	q.Search = strings.TrimSpace(q.Search)
	limit := a.limit(q.Limit)

	key := cacheKey(q, limit, a.cfg.SearchWidens)
	if cached, ok := a.cacheGet(ctx, key); ok {
		return cached
	}

	filter := models.CandidateFilter{
		Box:          geo.BoundingBox(*q.Origin, a.cfg.BoxDegrees),
		Sport:        q.Sport,
		Search:       q.Search,
		SearchWidens: a.cfg.SearchWidens,
		Limit:        limit * a.cfg.CandidateMultiplier,
	}
	athletes, err := a.store.SearchFreeAgents(ctx, filter)
	if err != nil {
		a.metrics.IncDiscoveryDegraded()
		log.Error().
			Err(err).
			Str("sport", q.Sport).
			Msg("free agent search failed, returning no candidates")
		return []models.Candidate{}
	}

	candidates := rank(*q.Origin, athletes, a.cfg.RadiusKm, limit)
	a.metrics.ObserveDiscovery(len(candidates))
	a.cacheSet(ctx, key, candidates)
	return candidates
}

// FindForTeam runs FindCandidates from the team's location and sport. The
// caller must be able to invite for the team.
func (a *App) FindForTeam(ctx context.Context, teamID, actorID uuid.UUID, search string, limit int) (result []models.Candidate, err error) {
	ctx, done := a.metrics.Track(ctx, "discovery.FindForTeam", attribute.String("team.id", teamID.String()))
	defer func() { done(err) }()

	var team *models.Team
	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		team, err = roster.LoadTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		return roster.RequireInviteCapability(ctx, tx, team, actorID)
	})
	if err != nil {
		return nil, err
	}

	return a.FindCandidates(ctx, Query{
		Origin: team.Location,
		Sport:  team.Sport,
		Search: search,
		Limit:  limit,
	}), nil
}

// rank keeps athletes within radiusKm of origin, sorts them nearest first and
// keeps at most limit. Ties keep the storage order.
func rank(origin geo.Coordinates, athletes []models.Athlete, radiusKm float64, limit int) []models.Candidate {
	candidates := make([]models.Candidate, 0, len(athletes))
	for _, athlete := range athletes {
		if athlete.Location == nil {
			continue
		}
		d := geo.Distance(origin, *athlete.Location)
		if math.IsNaN(d) || d > radiusKm {
			continue
		}
		candidates = append(candidates, models.Candidate{Athlete: athlete, DistanceKm: d})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func (a *App) limit(requested int) int {
	switch {
	case requested <= 0:
		return a.cfg.DefaultLimit
	case requested > a.cfg.MaxLimit:
		return a.cfg.MaxLimit
	default:
		return requested
	}
}

func (a *App) cacheGet(ctx context.Context, key string) ([]models.Candidate, bool) {
	if a.cache == nil {
		return nil, false
	}
	candidates, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		a.metrics.IncCandidateCache("error")
		log.Warn().Err(err).Str("key", key).Msg("candidate cache read failed")
		return nil, false
	}
	if !ok {
		a.metrics.IncCandidateCache("miss")
		return nil, false
	}
	a.metrics.IncCandidateCache("hit")
	return candidates, true
}

func (a *App) cacheSet(ctx context.Context, key string, candidates []models.Candidate) {
	if a.cache == nil || a.cfg.CacheTTL <= 0 {
		return
	}
	if err := a.cache.Set(ctx, key, candidates, a.cfg.CacheTTL); err != nil {
		a.metrics.IncCandidateCache("error")
		log.Warn().Err(err).Str("key", key).Msg("candidate cache write failed")
	}
}
