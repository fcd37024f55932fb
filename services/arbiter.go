package services

import (
	"errors"

	"hundredbot/models"
	"hundredbot/store"
)

// ClaimStatus is the outcome of a floor claim.
type ClaimStatus int

const (
	// ClaimGranted means the claimant now holds the floor.
	ClaimGranted ClaimStatus = iota
	// ClaimAlreadyHeld means another player holds the floor.
	ClaimAlreadyHeld
	// ClaimIneligible means the claimant was eliminated on the current
	// question.
	ClaimIneligible
	// ClaimNotJoined means the claimant is not a participant of the game.
	ClaimNotJoined
)

// Arbiter grants or denies the exclusive right to attempt an answer. The
// grant itself is the store's compare-and-set, so concurrent claims for the
// same round resolve to exactly one winner regardless of how many workers
// are running.
type Arbiter struct {
	store store.Store
}

func NewArbiter(st store.Store) *Arbiter {
	return &Arbiter{store: st}
}

// ClaimFloor tries to give the floor of the round to the player. The floor
// is released later by the progression engine when the answer attempt
// resolves, never by the claimant.
func (a *Arbiter) ClaimFloor(round *models.GameRound, gameID, playerID uint) (ClaimStatus, error) {
	score, err := a.store.GetScore(playerID, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return ClaimNotJoined, nil
	}
	if err != nil {
		return 0, err
	}
	if !score.IsActive {
		return ClaimIneligible, nil
	}

	won, err := a.store.ClaimFloor(round.ID, playerID)
	if err != nil {
		return 0, err
	}
	if !won {
		return ClaimAlreadyHeld, nil
	}
	return ClaimGranted, nil
}
