package store

import (
	"errors"

	"hundredbot/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a uniqueness constraint would be violated.
	ErrDuplicate = errors.New("store: duplicate")
)

// Store is the persistence contract the game engine runs against. Every
// operation is atomic at the single-statement level; multi-row sequences
// (seeding a round) are applied by the caller in a fixed order and are not
// assumed atomic across rows.
type Store interface {
	// Games. GetActiveGame returns the most recently created active game for
	// the chat, deactivating any stale older actives it finds.
	GetActiveGame(chatID int64) (*models.Game, error)
	CreateGame(chatID int64) (*models.Game, error)
	SetGameActive(gameID uint, active bool) error

	// Rounds. ClaimFloor is a compare-and-set: it assigns the floor to the
	// player only if the floor is currently open, and reports whether the
	// assignment won. Exactly one concurrent claimant can win.
	CreateRound(gameID uint) (*models.GameRound, error)
	GetActiveRound(chatID int64) (*models.GameRound, error)
	ListRounds(gameID uint) ([]models.GameRound, error)
	SetRoundCurrentQuestion(roundID, roundQuestionID uint) error
	FinishRound(roundID uint) error
	ClaimFloor(roundID, playerID uint) (bool, error)
	ReleaseFloor(roundID uint) error

	// Round questions and their per-round answer rows.
	CreateRoundQuestion(roundID, questionID uint) (*models.RoundQuestion, error)
	GetRoundQuestion(id uint) (*models.RoundQuestion, error)
	ListRoundQuestions(roundID uint) ([]models.RoundQuestion, error)
	SetRoundQuestionFound(id uint, found bool) error
	CreateRoundQuestionAnswer(roundQuestionID, answerID uint) (*models.RoundQuestionAnswer, error)
	ListRoundQuestionAnswers(roundQuestionID uint) ([]models.RoundQuestionAnswer, error)
	SetAnswerFound(id uint, found bool) error

	// Scores.
	CreateScore(playerID, gameID uint) (*models.GameScore, error)
	GetScore(playerID, gameID uint) (*models.GameScore, error)
	ListScores(gameID uint) ([]models.GameScore, error)
	AddScore(playerID, gameID uint, points int) error
	SetScoreActive(playerID, gameID uint, active bool) error
	SetAllScoresActive(gameID uint, active bool) error

	// Question bank (read-only to the game engine).
	RandomQuestions(n int) ([]models.Question, error)
	GetQuestion(id uint) (*models.Question, error)

	// Players.
	GetPlayerByTelegramID(telegramID int64) (*models.Player, error)
	GetPlayer(id uint) (*models.Player, error)
	CreatePlayer(telegramID int64, firstName string) (*models.Player, error)
}
