package models

import (
	"time"
)

// GameScore ties a player to a game. IsActive is the player's eligibility to
// claim the floor for the current question, not game membership: it resets to
// true whenever a new question starts and flips to false when the player
// answers the current question incorrectly.
type GameScore struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PlayerID  uint      `json:"player_id" gorm:"not null;uniqueIndex:uix_player_game"`
	GameID    uint      `json:"game_id" gorm:"not null;uniqueIndex:uix_player_game"`
	Score     int       `json:"score" gorm:"not null;default:0"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Player Player `json:"player,omitempty"`
	Game   Game   `json:"game,omitempty"`
}
