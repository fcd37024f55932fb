package models

import (
	"time"
)

// Player is a chat participant. Players are created lazily the first time
// they interact with the bot or get added to a group chat.
type Player struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TelegramID int64     `json:"telegram_id" gorm:"uniqueIndex;not null"`
	FirstName  string    `json:"first_name" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Scores []GameScore `json:"scores,omitempty" gorm:"foreignKey:PlayerID"`
}
