//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/mcdev12/recruit/go/internal/apperr"
	"github.com/mcdev12/recruit/go/internal/geo"
	"github.com/mcdev12/recruit/go/internal/invitations"
	"github.com/mcdev12/recruit/go/internal/metrics"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/notify"
	"github.com/mcdev12/recruit/go/internal/notify/outbox"
	"github.com/mcdev12/recruit/go/internal/roster"
	"github.com/mcdev12/recruit/go/internal/store/postgres"
)

type PostgresStoreSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *sql.DB
	store     *postgres.Store

	clock       clockwork.Clock
	invitations *invitations.App
	roster      *roster.App
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("recruit"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.db, err = sql.Open("postgres", dsn)
	s.Require().NoError(err)

	s.store = postgres.New(s.db)
	s.Require().NoError(s.store.Migrate(ctx))
	// Migrate must be safe to run twice.
	s.Require().NoError(s.store.Migrate(ctx))

	s.clock = clockwork.NewRealClock()
	m := metrics.New(prometheus.NewRegistry())
	notifier := notify.NewEmitter(s.clock, m)
	s.invitations = invitations.NewApp(s.store, notifier, s.clock, m, invitations.DefaultTTL)
	s.roster = roster.NewApp(s.store, notifier, s.clock, m)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE notifications, team_applications, join_requests, invitations,
		memberships, team_stats, teams, athletes CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedAthlete(username string) uuid.UUID {
	id := uuid.New()
	_, err := s.db.Exec(`INSERT INTO athletes (id, username, primary_sport, latitude, longitude)
		VALUES ($1, $2, 'basketball', 40.7128, -74.0060)`, id, username)
	s.Require().NoError(err)
	return id
}

// seedTeam creates a team owned by ownerID with an OWNER membership.
func (s *PostgresStoreSuite) seedTeam(name string, ownerID uuid.UUID) uuid.UUID {
	id := uuid.New()
	_, err := s.db.Exec(`INSERT INTO teams (id, name, sport, owner_id, latitude, longitude)
		VALUES ($1, $2, 'basketball', $3, 40.7128, -74.0060)`, id, name, ownerID)
	s.Require().NoError(err)
	s.addMember(id, ownerID, models.RoleOwner)
	return id
}

func (s *PostgresStoreSuite) addMember(teamID, athleteID uuid.UUID, role models.Role) {
	_, err := s.db.Exec(`INSERT INTO memberships (team_id, athlete_id, role, is_captain)
		VALUES ($1, $2, $3, $4)`, teamID, athleteID, role, role == models.RoleOwner || role == models.RoleCaptain)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) count(query string, args ...any) int {
	var n int
	s.Require().NoError(s.db.QueryRow(query, args...).Scan(&n))
	return n
}

// race runs fn from n goroutines released together and returns their errors.
func race(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}()
	}
	close(start)
	wg.Wait()
	return errs
}

func (s *PostgresStoreSuite) TestConcurrentInviteCreatesOnePending() {
	ctx := context.Background()
	owner := s.seedAthlete("owner")
	target := s.seedAthlete("target")
	team := s.seedTeam("Hoopers", owner)

	const goroutines = 10
	errs := race(goroutines, func(int) error {
		_, err := s.invitations.Invite(ctx, team, target, owner)
		return err
	})

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.Equal(apperr.CodeConflict, apperr.CodeOf(err), err.Error())
	}
	s.Equal(1, succeeded)
	s.Equal(1, s.count(`SELECT count(*) FROM invitations WHERE team_id = $1 AND athlete_id = $2 AND status = 'PENDING'`, team, target))
}

func (s *PostgresStoreSuite) TestConcurrentAcceptJoinsOneTeam() {
	ctx := context.Background()
	ownerA := s.seedAthlete("owner-a")
	ownerB := s.seedAthlete("owner-b")
	target := s.seedAthlete("target")
	teamA := s.seedTeam("A", ownerA)
	teamB := s.seedTeam("B", ownerB)

	invA, err := s.invitations.Invite(ctx, teamA, target, ownerA)
	s.Require().NoError(err)
	invB, err := s.invitations.Invite(ctx, teamB, target, ownerB)
	s.Require().NoError(err)

	ids := []uuid.UUID{invA.ID, invB.ID}
	errs := race(len(ids), func(i int) error {
		_, err := s.invitations.Accept(ctx, ids[i], target)
		return err
	})

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.Equal(apperr.CodeConflict, apperr.CodeOf(err), err.Error())
	}
	s.Equal(1, succeeded)
	s.Equal(1, s.count(`SELECT count(*) FROM memberships WHERE athlete_id = $1`, target))
}

func (s *PostgresStoreSuite) TestConcurrentTransfersKeepOneOwner() {
	ctx := context.Background()
	owner := s.seedAthlete("owner")
	team := s.seedTeam("Hoopers", owner)
	candidates := make([]uuid.UUID, 4)
	for i := range candidates {
		candidates[i] = s.seedAthlete("member-" + uuid.NewString()[:6])
		s.addMember(team, candidates[i], models.RolePlayer)
	}

	errs := race(len(candidates), func(i int) error {
		_, err := s.roster.TransferOwnership(ctx, team, candidates[i], owner)
		return err
	})

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.Contains([]apperr.Code{apperr.CodeUnauthorized, apperr.CodeConflict}, apperr.CodeOf(err), err.Error())
	}
	s.Equal(1, succeeded)
	s.Equal(1, s.count(`SELECT count(*) FROM memberships WHERE team_id = $1 AND role = 'OWNER'`, team))

	var ownerID uuid.UUID
	s.Require().NoError(s.db.QueryRow(`SELECT owner_id FROM teams WHERE id = $1`, team).Scan(&ownerID))
	s.Equal(1, s.count(`SELECT count(*) FROM memberships WHERE team_id = $1 AND athlete_id = $2 AND role = 'OWNER'`, team, ownerID))
}

func (s *PostgresStoreSuite) TestSearchFreeAgentsExcludesMembers() {
	ctx := context.Background()
	owner := s.seedAthlete("owner")
	s.seedTeam("Hoopers", owner)
	free := s.seedAthlete("free")

	found, err := s.store.SearchFreeAgents(ctx, models.CandidateFilter{
		Box:   geo.BoundingBox(geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}, 2),
		Sport: "basketball",
		Limit: 10,
	})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(free, found[0].ID)
}

func (s *PostgresStoreSuite) TestOutboxRelaysCommittedNotifications() {
	ctx := context.Background()
	owner := s.seedAthlete("owner")
	target := s.seedAthlete("target")
	team := s.seedTeam("Hoopers", owner)

	_, err := s.invitations.Invite(ctx, team, target, owner)
	s.Require().NoError(err)

	repo := outbox.NewRepository(s.db, s.clock)
	unsent, err := repo.CountUnsent(ctx)
	s.Require().NoError(err)
	s.EqualValues(1, unsent)

	var got []models.Notification
	claimed, sent, err := repo.ClaimBatch(ctx, 10, func(_ context.Context, n models.Notification) error {
		got = append(got, n)
		return nil
	})
	s.Require().NoError(err)
	s.Equal(1, claimed)
	s.Equal(1, sent)
	s.Require().Len(got, 1)
	s.Equal(target, got[0].RecipientID)
	s.Equal(models.NotificationInvitationReceived, got[0].Type)

	ok, err := repo.Claim(ctx, got[0].ID, func(context.Context, models.Notification) error {
		s.Fail("sent notification must not be published again")
		return nil
	})
	s.Require().NoError(err)
	s.False(ok)

	unsent, err = repo.CountUnsent(ctx)
	s.Require().NoError(err)
	s.Zero(unsent)
	s.WithinDuration(time.Now(), s.sentAt(got[0].ID), time.Minute)
}

func (s *PostgresStoreSuite) sentAt(id uuid.UUID) time.Time {
	var at time.Time
	s.Require().NoError(s.db.QueryRow(`SELECT sent_at FROM notifications WHERE id = $1`, id).Scan(&at))
	return at
}
