package models

import (
	"time"
)

// Game is one game session in a group chat. At most one game per chat may
// be active at a time.
type Game struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ChatID    int64     `json:"chat_id" gorm:"index;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Scores []GameScore `json:"scores,omitempty" gorm:"foreignKey:GameID"`
	Rounds []GameRound `json:"rounds,omitempty" gorm:"foreignKey:GameID"`
}
