package services

import (
	"sync"
	"testing"

	"hundredbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupArbiterGame(t *testing.T, st *memStore, players int) (*models.Game, *models.GameRound, []*models.Player) {
	t.Helper()
	game, err := st.CreateGame(100)
	require.NoError(t, err)
	round, err := st.CreateRound(game.ID)
	require.NoError(t, err)

	var joined []*models.Player
	for i := 0; i < players; i++ {
		p, err := st.CreatePlayer(int64(1000+i), "player")
		require.NoError(t, err)
		_, err = st.CreateScore(p.ID, game.ID)
		require.NoError(t, err)
		joined = append(joined, p)
	}
	return game, round, joined
}

func TestClaimFloorSingleWinner(t *testing.T) {
	st := newMemStore()
	game, round, players := setupArbiterGame(t, st, 10)
	arbiter := NewArbiter(st)

	results := make([]ClaimStatus, len(players))
	var wg sync.WaitGroup
	for i, p := range players {
		wg.Add(1)
		go func(i int, playerID uint) {
			defer wg.Done()
			status, err := arbiter.ClaimFloor(round, game.ID, playerID)
			require.NoError(t, err)
			results[i] = status
		}(i, p.ID)
	}
	wg.Wait()

	granted := 0
	for _, status := range results {
		switch status {
		case ClaimGranted:
			granted++
		case ClaimAlreadyHeld:
		default:
			t.Fatalf("unexpected claim status %d", status)
		}
	}
	assert.Equal(t, 1, granted)
}

func TestClaimFloorHeld(t *testing.T) {
	st := newMemStore()
	game, round, players := setupArbiterGame(t, st, 2)
	arbiter := NewArbiter(st)

	status, err := arbiter.ClaimFloor(round, game.ID, players[0].ID)
	require.NoError(t, err)
	require.Equal(t, ClaimGranted, status)

	status, err = arbiter.ClaimFloor(round, game.ID, players[1].ID)
	require.NoError(t, err)
	assert.Equal(t, ClaimAlreadyHeld, status)
}

func TestClaimFloorEliminatedPlayer(t *testing.T) {
	st := newMemStore()
	game, round, players := setupArbiterGame(t, st, 1)
	arbiter := NewArbiter(st)

	require.NoError(t, st.SetScoreActive(players[0].ID, game.ID, false))

	status, err := arbiter.ClaimFloor(round, game.ID, players[0].ID)
	require.NoError(t, err)
	assert.Equal(t, ClaimIneligible, status)

	// The floor must stay open for everyone else.
	fresh, err := st.GetActiveRound(100)
	require.NoError(t, err)
	assert.Zero(t, fresh.CurrentPlayerID)
}

func TestClaimFloorNonParticipant(t *testing.T) {
	st := newMemStore()
	game, round, _ := setupArbiterGame(t, st, 1)
	arbiter := NewArbiter(st)

	outsider, err := st.CreatePlayer(9999, "outsider")
	require.NoError(t, err)

	status, err := arbiter.ClaimFloor(round, game.ID, outsider.ID)
	require.NoError(t, err)
	assert.Equal(t, ClaimNotJoined, status)

	// The floor must stay open.
	fresh, err := st.GetActiveRound(100)
	require.NoError(t, err)
	assert.Zero(t, fresh.CurrentPlayerID)
}
