package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/recruit/go/internal/apperr"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/store"
	"github.com/mcdev12/recruit/go/internal/store/memory"
)

func TestExistsWithLookupResults(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	owner := uuid.New()
	st.PutAthlete(models.Athlete{ID: owner, Username: "owner", PrimarySport: "rugby"})
	st.PutTeam(models.Team{ID: uuid.New(), Name: "Riverside", Sport: "rugby", OwnerID: owner})

	err := st.RunInTx(ctx, func(tx store.Tx) error {
		owns, err := store.Exists(tx.GetTeamByOwner(ctx, owner))
		require.NoError(t, err)
		assert.True(t, owns)

		owns, err = store.Exists(tx.GetTeamByOwner(ctx, uuid.New()))
		require.NoError(t, err)
		assert.False(t, owns)

		member, err := store.Exists(tx.GetMembershipByAthlete(ctx, uuid.New()))
		require.NoError(t, err)
		assert.False(t, member)
		return nil
	})
	require.NoError(t, err)
}

func TestExistsPassesThroughFailures(t *testing.T) {
	boom := errors.New("connection reset")
	found, err := store.Exists[*models.Team](nil, fmt.Errorf("get team: %w", boom))
	assert.False(t, found)
	assert.ErrorIs(t, err, boom)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperr.Code
	}{
		{"not found", store.NotFoundAs(store.ErrNotFound, "Team not found"), apperr.CodeNotFound},
		{"conflict", store.ConflictAs(store.ErrConflict, "Already on a team"), apperr.CodeConflict},
		{"lost transition", store.TransitionAs(store.ErrNotFound, "Invitation is no longer pending"), apperr.CodeConflict},
		{"storage", store.ConflictAs(errors.New("disk full"), "unused"), apperr.CodeStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, apperr.CodeOf(tt.err))
		})
	}
}
