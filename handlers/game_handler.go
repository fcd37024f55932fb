package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"hundredbot/services"
	"hundredbot/store"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	store store.Store
	cache *services.StateCache
}

func NewGameHandler(st store.Store, cache *services.StateCache) *GameHandler {
	return &GameHandler{store: st, cache: cache}
}

// GetChatState serves the live state of a chat's game. The Redis snapshot
// is the fast path; on a miss the state is rebuilt from the database.
func (h *GameHandler) GetChatState(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chatID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID"})
		return
	}

	state, err := h.cache.Get(chatID)
	if err != nil {
		log.Printf("state cache read for chat %d failed: %v", chatID, err)
	}
	if state != nil {
		c.JSON(http.StatusOK, state)
		return
	}

	state, err = h.buildFromStore(chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No game in this chat"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game state"})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *GameHandler) buildFromStore(chatID int64) (*services.ChatState, error) {
	game, err := h.store.GetActiveGame(chatID)
	if err != nil {
		return nil, err
	}

	state := &services.ChatState{
		ChatID: chatID,
		GameID: game.ID,
		Active: game.IsActive,
	}

	scores, err := h.store.ListScores(game.ID)
	if err != nil {
		return nil, err
	}
	for _, sc := range scores {
		state.Scoreboard = append(state.Scoreboard, services.PlayerScore{
			Name:     sc.Player.FirstName,
			Score:    sc.Score,
			Eligible: sc.IsActive,
		})
	}

	round, err := h.store.GetActiveRound(chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return state, nil
		}
		return nil, err
	}
	state.RoundActive = true
	if round.CurrentQuestionID != 0 {
		if rq, err := h.store.GetRoundQuestion(round.CurrentQuestionID); err == nil {
			state.Question = rq.Question.Text
		}
	}
	if round.CurrentPlayerID != 0 {
		if player, err := h.store.GetPlayer(round.CurrentPlayerID); err == nil {
			state.FloorHolder = player.FirstName
		}
	}
	return state, nil
}
