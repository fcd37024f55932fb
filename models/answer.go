package models

import (
	"time"

	"gorm.io/gorm"
)

// Answer is one ranked answer of a question. Score is the number of points
// awarded to the first player to name it.
type Answer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	QuestionID uint           `json:"question_id" gorm:"not null"`
	Word       string         `json:"word" gorm:"not null"`
	Score      int            `json:"score" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Question Question `json:"question,omitempty"`
}
