package models

import (
	"time"
)

// GameRound is one round of up to three questions. CurrentQuestionID points at
// the RoundQuestion currently in play. CurrentPlayerID is the floor holder;
// zero means the floor is open.
type GameRound struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	GameID            uint      `json:"game_id" gorm:"index;not null"`
	CurrentQuestionID uint      `json:"current_question_id"`
	CurrentPlayerID   uint      `json:"current_player_id" gorm:"not null;default:0"`
	IsActive          bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relationships
	Game      Game            `json:"game,omitempty"`
	Questions []RoundQuestion `json:"questions,omitempty" gorm:"foreignKey:RoundID"`
}
