package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The store contract repairs duplicate active rows on read: the newest row
// wins and older actives are closed. GormStore does this in its accessors;
// the in-memory store mirrors it so the policy is pinned down here.

func TestDuplicateActiveGamesKeepNewest(t *testing.T) {
	st := newMemStore()
	older, err := st.CreateGame(100)
	require.NoError(t, err)
	newer, err := st.CreateGame(100)
	require.NoError(t, err)

	game, err := st.GetActiveGame(100)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, game.ID)

	// The stale game must not come back once the newer one ends.
	require.NoError(t, st.SetGameActive(newer.ID, false))
	_, err = st.GetActiveGame(100)
	assert.Error(t, err)
	_ = older
}

func TestDuplicateActiveRoundsKeepNewest(t *testing.T) {
	st := newMemStore()
	game, err := st.CreateGame(100)
	require.NoError(t, err)
	older, err := st.CreateRound(game.ID)
	require.NoError(t, err)
	newer, err := st.CreateRound(game.ID)
	require.NoError(t, err)

	round, err := st.GetActiveRound(100)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, round.ID)

	rounds, err := st.ListRounds(game.ID)
	require.NoError(t, err)
	for _, r := range rounds {
		if r.ID == older.ID {
			assert.False(t, r.IsActive, "stale round must be closed")
		}
	}

	require.NoError(t, st.FinishRound(newer.ID))
	_, err = st.GetActiveRound(100)
	assert.Error(t, err)
}
