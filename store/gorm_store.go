package store

import (
	"errors"
	"log"

	"hundredbot/models"

	"gorm.io/gorm"
)

// GormStore implements Store on a gorm-managed Postgres database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetActiveGame(chatID int64) (*models.Game, error) {
	var games []models.Game
	if err := s.db.Where("chat_id = ? AND is_active = true", chatID).
		Order("id DESC").Find(&games).Error; err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, ErrNotFound
	}

	// More than one active game per chat is a corruption; keep the newest row
	// and deactivate the rest.
	if len(games) > 1 {
		log.Printf("store: %d active games for chat %d, keeping game %d", len(games), chatID, games[0].ID)
		for _, stale := range games[1:] {
			if err := s.SetGameActive(stale.ID, false); err != nil {
				return nil, err
			}
		}
	}
	return &games[0], nil
}

func (s *GormStore) CreateGame(chatID int64) (*models.Game, error) {
	game := models.Game{ChatID: chatID, IsActive: true}
	if err := s.db.Create(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *GormStore) SetGameActive(gameID uint, active bool) error {
	return s.db.Model(&models.Game{}).Where("id = ?", gameID).
		Update("is_active", active).Error
}

func (s *GormStore) CreateRound(gameID uint) (*models.GameRound, error) {
	round := models.GameRound{GameID: gameID, IsActive: true}
	if err := s.db.Create(&round).Error; err != nil {
		return nil, err
	}
	return &round, nil
}

func (s *GormStore) GetActiveRound(chatID int64) (*models.GameRound, error) {
	game, err := s.GetActiveGame(chatID)
	if err != nil {
		return nil, err
	}

	var rounds []models.GameRound
	if err := s.db.Where("game_id = ? AND is_active = true", game.ID).
		Order("id DESC").Find(&rounds).Error; err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		return nil, ErrNotFound
	}
	if len(rounds) > 1 {
		log.Printf("store: %d active rounds for game %d, keeping round %d", len(rounds), game.ID, rounds[0].ID)
		for _, stale := range rounds[1:] {
			if err := s.FinishRound(stale.ID); err != nil {
				return nil, err
			}
		}
	}
	return &rounds[0], nil
}

func (s *GormStore) ListRounds(gameID uint) ([]models.GameRound, error) {
	var rounds []models.GameRound
	err := s.db.Where("game_id = ?", gameID).Order("id").Find(&rounds).Error
	return rounds, err
}

func (s *GormStore) SetRoundCurrentQuestion(roundID, roundQuestionID uint) error {
	return s.db.Model(&models.GameRound{}).Where("id = ?", roundID).
		Update("current_question_id", roundQuestionID).Error
}

func (s *GormStore) FinishRound(roundID uint) error {
	return s.db.Model(&models.GameRound{}).Where("id = ?", roundID).
		Updates(map[string]interface{}{"is_active": false, "current_player_id": 0}).Error
}

// ClaimFloor resolves races between simultaneous claimants with a single
// conditional UPDATE: only the statement that observes an open floor on an
// active round assigns the player, everyone else sees zero rows affected.
func (s *GormStore) ClaimFloor(roundID, playerID uint) (bool, error) {
	res := s.db.Model(&models.GameRound{}).
		Where("id = ? AND current_player_id = 0 AND is_active = true", roundID).
		Update("current_player_id", playerID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) ReleaseFloor(roundID uint) error {
	return s.db.Model(&models.GameRound{}).Where("id = ?", roundID).
		Update("current_player_id", 0).Error
}

func (s *GormStore) CreateRoundQuestion(roundID, questionID uint) (*models.RoundQuestion, error) {
	rq := models.RoundQuestion{RoundID: roundID, QuestionID: questionID}
	if err := s.db.Create(&rq).Error; err != nil {
		return nil, err
	}
	return &rq, nil
}

func (s *GormStore) GetRoundQuestion(id uint) (*models.RoundQuestion, error) {
	var rq models.RoundQuestion
	err := s.db.Preload("Question").Preload("Answers").Preload("Answers.Answer").
		First(&rq, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rq, nil
}

func (s *GormStore) ListRoundQuestions(roundID uint) ([]models.RoundQuestion, error) {
	var rqs []models.RoundQuestion
	err := s.db.Where("round_id = ?", roundID).Order("id").Find(&rqs).Error
	return rqs, err
}

func (s *GormStore) SetRoundQuestionFound(id uint, found bool) error {
	return s.db.Model(&models.RoundQuestion{}).Where("id = ?", id).
		Update("is_found", found).Error
}

func (s *GormStore) CreateRoundQuestionAnswer(roundQuestionID, answerID uint) (*models.RoundQuestionAnswer, error) {
	rqa := models.RoundQuestionAnswer{RoundQuestionID: roundQuestionID, AnswerID: answerID}
	if err := s.db.Create(&rqa).Error; err != nil {
		return nil, err
	}
	return &rqa, nil
}

func (s *GormStore) ListRoundQuestionAnswers(roundQuestionID uint) ([]models.RoundQuestionAnswer, error) {
	var rqas []models.RoundQuestionAnswer
	err := s.db.Preload("Answer").Where("round_question_id = ?", roundQuestionID).
		Order("id").Find(&rqas).Error
	return rqas, err
}

func (s *GormStore) SetAnswerFound(id uint, found bool) error {
	return s.db.Model(&models.RoundQuestionAnswer{}).Where("id = ?", id).
		Update("is_found", found).Error
}

func (s *GormStore) CreateScore(playerID, gameID uint) (*models.GameScore, error) {
	var existing models.GameScore
	err := s.db.Where("player_id = ? AND game_id = ?", playerID, gameID).
		First(&existing).Error
	if err == nil {
		return nil, ErrDuplicate
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	score := models.GameScore{PlayerID: playerID, GameID: gameID, Score: 0, IsActive: true}
	if err := s.db.Create(&score).Error; err != nil {
		return nil, err
	}
	return &score, nil
}

func (s *GormStore) GetScore(playerID, gameID uint) (*models.GameScore, error) {
	var score models.GameScore
	err := s.db.Where("player_id = ? AND game_id = ?", playerID, gameID).
		First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (s *GormStore) ListScores(gameID uint) ([]models.GameScore, error) {
	var scores []models.GameScore
	err := s.db.Preload("Player").Where("game_id = ?", gameID).
		Order("score DESC").Find(&scores).Error
	return scores, err
}

func (s *GormStore) AddScore(playerID, gameID uint, points int) error {
	return s.db.Model(&models.GameScore{}).
		Where("player_id = ? AND game_id = ?", playerID, gameID).
		Update("score", gorm.Expr("score + ?", points)).Error
}

func (s *GormStore) SetScoreActive(playerID, gameID uint, active bool) error {
	return s.db.Model(&models.GameScore{}).
		Where("player_id = ? AND game_id = ?", playerID, gameID).
		Update("is_active", active).Error
}

func (s *GormStore) SetAllScoresActive(gameID uint, active bool) error {
	return s.db.Model(&models.GameScore{}).Where("game_id = ?", gameID).
		Update("is_active", active).Error
}

func (s *GormStore) RandomQuestions(n int) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Preload("Answers").Order("RANDOM()").Limit(n).Find(&questions).Error
	return questions, err
}

func (s *GormStore) GetQuestion(id uint) (*models.Question, error) {
	var question models.Question
	err := s.db.Preload("Answers").First(&question, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *GormStore) GetPlayerByTelegramID(telegramID int64) (*models.Player, error) {
	var player models.Player
	err := s.db.Where("telegram_id = ?", telegramID).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *GormStore) GetPlayer(id uint) (*models.Player, error) {
	var player models.Player
	err := s.db.First(&player, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *GormStore) CreatePlayer(telegramID int64, firstName string) (*models.Player, error) {
	player := models.Player{TelegramID: telegramID, FirstName: firstName}
	if err := s.db.Create(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}
