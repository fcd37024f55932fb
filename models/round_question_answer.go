package models

// RoundQuestionAnswer is one ranked answer's reveal state within a round.
type RoundQuestionAnswer struct {
	ID              uint `json:"id" gorm:"primaryKey"`
	RoundQuestionID uint `json:"round_question_id" gorm:"index;not null"`
	AnswerID        uint `json:"answer_id" gorm:"not null"`
	IsFound         bool `json:"is_found" gorm:"not null;default:false"`

	// Relationships
	Answer Answer `json:"answer,omitempty"`
}
