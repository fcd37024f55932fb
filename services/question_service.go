package services

import (
	"errors"

	"hundredbot/models"

	"gorm.io/gorm"
)

type QuestionService struct {
	db *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{db: db}
}

type CreateQuestionRequest struct {
	Text    string                `json:"text" binding:"required"`
	Answers []CreateAnswerRequest `json:"answers" binding:"required,min=1,max=10"`
}

type CreateAnswerRequest struct {
	Word  string `json:"word" binding:"required"`
	Score int    `json:"score" binding:"required,min=1"`
}

func (s *QuestionService) CreateQuestion(req *CreateQuestionRequest) (*models.Question, error) {
	seen := make(map[string]bool, len(req.Answers))
	for _, a := range req.Answers {
		if seen[a.Word] {
			return nil, errors.New("duplicate answer word: " + a.Word)
		}
		seen[a.Word] = true
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	question := models.Question{Text: req.Text}
	if err := tx.Create(&question).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, a := range req.Answers {
		answer := models.Answer{
			QuestionID: question.ID,
			Word:       a.Word,
			Score:      a.Score,
		}
		if err := tx.Create(&answer).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return s.GetQuestionByID(question.ID)
}

func (s *QuestionService) GetQuestions() ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("answers.score DESC")
	}).Order("created_at DESC").Find(&questions).Error
	return questions, err
}

func (s *QuestionService) GetQuestionByID(questionID uint) (*models.Question, error) {
	var question models.Question
	err := s.db.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("answers.score DESC")
	}).First(&question, questionID).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *QuestionService) DeleteQuestion(questionID uint) error {
	if _, err := s.GetQuestionByID(questionID); err != nil {
		return err
	}
	return s.db.Delete(&models.Question{}, questionID).Error
}
