package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateTTL = 2 * time.Hour

// PlayerScore is one scoreboard line in a chat snapshot.
type PlayerScore struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Eligible bool   `json:"eligible"`
}

// ChatState is the read model of a chat's game, kept in Redis for the HTTP
// surface and the websocket feed. Never consulted for game decisions.
type ChatState struct {
	ChatID      int64         `json:"chat_id"`
	GameID      uint          `json:"game_id,omitempty"`
	Active      bool          `json:"active"`
	RoundActive bool          `json:"round_active"`
	Question    string        `json:"question,omitempty"`
	FloorHolder string        `json:"floor_holder,omitempty"`
	Scoreboard  []PlayerScore `json:"scoreboard,omitempty"`
}

// StateCache stores chat snapshots in Redis with a TTL.
type StateCache struct {
	redis *redis.Client
}

func NewStateCache(client *redis.Client) *StateCache {
	return &StateCache{redis: client}
}

func (c *StateCache) key(chatID int64) string {
	return fmt.Sprintf("chat:%d", chatID)
}

func (c *StateCache) Set(chatID int64, state *ChatState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal chat state: %w", err)
	}
	return c.redis.Set(context.Background(), c.key(chatID), data, stateTTL).Err()
}

// Get returns the cached snapshot, or nil when none is stored.
func (c *StateCache) Get(chatID int64) (*ChatState, error) {
	data, err := c.redis.Get(context.Background(), c.key(chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state ChatState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("unmarshal chat state: %w", err)
	}
	return &state, nil
}
