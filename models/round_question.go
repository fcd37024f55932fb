package models

// RoundQuestion tracks one question's progress within a round. IsFound flips
// true once every answer under it has been revealed.
type RoundQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	RoundID    uint `json:"round_id" gorm:"index;not null"`
	QuestionID uint `json:"question_id" gorm:"not null"`
	IsFound    bool `json:"is_found" gorm:"not null;default:false"`

	// Relationships
	Question Question              `json:"question,omitempty"`
	Answers  []RoundQuestionAnswer `json:"answers,omitempty" gorm:"foreignKey:RoundQuestionID"`
}
