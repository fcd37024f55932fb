package services

import (
	"errors"
	"fmt"

	"hundredbot/models"
	"hundredbot/store"
)

// ErrNoQuestions is returned when a round cannot be seeded because the
// question bank is empty. Fatal for that game: the engine deactivates it
// before returning.
var ErrNoQuestions = errors.New("no questions available")

// AnswerResult classifies how an answer attempt resolved.
type AnswerResult int

const (
	AnswerCorrect AnswerResult = iota
	AnswerAlreadyFound
	AnswerWrong
)

// Outcome describes everything that happened while resolving one answer
// attempt, so the orchestrator can narrate it without re-reading state.
type Outcome struct {
	Result       AnswerResult
	Answer       *models.Answer // the revealed answer, on AnswerCorrect
	Points       int
	ForcedReveal bool // every player was eliminated; the rest of the answers were revealed for free
	QuestionDone bool // the current question has no unrevealed answers left
	RoundDone    bool // the round was finalized; the game awaits a play-again decision
	NextQuestion *models.Question   // next question to announce, when the round continues
	Scores       []models.GameScore // final standings, when the round finalized
}

// Engine computes every state transition that follows an answer attempt, and
// seeds new rounds. All writes go through the store in a fixed order so a
// crash mid-sequence is detectable (a round without questions is re-seeded).
type Engine struct {
	store store.Store
	size  int // questions per round
}

func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, size: 3}
}

// ResolveAnswer applies the full transition for one answer attempt by the
// floor holder. Whatever the result, the floor ends up released.
func (e *Engine) ResolveAnswer(game *models.Game, round *models.GameRound, playerID uint, text string) (*Outcome, error) {
	rq, err := e.store.GetRoundQuestion(round.CurrentQuestionID)
	if err != nil {
		return nil, fmt.Errorf("load current question: %w", err)
	}

	match, result := MatchAnswer(rq.Answers, text)
	switch result {
	case Matched:
		return e.resolveCorrect(game, round, rq, playerID, match)
	case AlreadyFound:
		if err := e.store.ReleaseFloor(round.ID); err != nil {
			return nil, err
		}
		return &Outcome{Result: AnswerAlreadyFound}, nil
	default:
		return e.resolveWrong(game, round, rq, playerID)
	}
}

func (e *Engine) resolveCorrect(game *models.Game, round *models.GameRound, rq *models.RoundQuestion, playerID uint, match *models.RoundQuestionAnswer) (*Outcome, error) {
	out := &Outcome{
		Result: AnswerCorrect,
		Answer: &match.Answer,
		Points: match.Answer.Score,
	}

	if err := e.store.AddScore(playerID, game.ID, match.Answer.Score); err != nil {
		return nil, err
	}
	if err := e.store.SetAnswerFound(match.ID, true); err != nil {
		return nil, err
	}
	if err := e.store.ReleaseFloor(round.ID); err != nil {
		return nil, err
	}
	// Everyone becomes eligible again for the next claim.
	if err := e.store.SetAllScoresActive(game.ID, true); err != nil {
		return nil, err
	}

	remaining, err := e.unfoundCount(rq.ID)
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		return out, nil
	}

	out.QuestionDone = true
	if err := e.advance(game, round, rq, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) resolveWrong(game *models.Game, round *models.GameRound, rq *models.RoundQuestion, playerID uint) (*Outcome, error) {
	out := &Outcome{Result: AnswerWrong}

	if err := e.store.ReleaseFloor(round.ID); err != nil {
		return nil, err
	}
	// Eliminated from this question only; eligibility comes back with the
	// next correct answer or the next question.
	if err := e.store.SetScoreActive(playerID, game.ID, false); err != nil {
		return nil, err
	}

	scores, err := e.store.ListScores(game.ID)
	if err != nil {
		return nil, err
	}
	for _, s := range scores {
		if s.IsActive {
			return out, nil
		}
	}

	// Nobody left who may answer: reveal the rest of the answers without
	// awarding points and move on.
	out.ForcedReveal = true
	out.QuestionDone = true
	answers, err := e.store.ListRoundQuestionAnswers(rq.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		if a.IsFound {
			continue
		}
		if err := e.store.SetAnswerFound(a.ID, true); err != nil {
			return nil, err
		}
	}
	if err := e.store.SetAllScoresActive(game.ID, true); err != nil {
		return nil, err
	}
	if err := e.advance(game, round, rq, out); err != nil {
		return nil, err
	}
	return out, nil
}

// advance marks the finished question found and either moves the round to
// its next unfound question or finalizes it.
func (e *Engine) advance(game *models.Game, round *models.GameRound, rq *models.RoundQuestion, out *Outcome) error {
	if err := e.store.SetRoundQuestionFound(rq.ID, true); err != nil {
		return err
	}

	rqs, err := e.store.ListRoundQuestions(round.ID)
	if err != nil {
		return err
	}
	for _, next := range rqs {
		if next.IsFound || next.ID == rq.ID {
			continue
		}
		if err := e.store.SetRoundCurrentQuestion(round.ID, next.ID); err != nil {
			return err
		}
		question, err := e.store.GetQuestion(next.QuestionID)
		if err != nil {
			return err
		}
		out.NextQuestion = question
		return nil
	}

	// No questions remain: finalize the round. The game stays active and
	// awaits the play-again decision.
	if err := e.store.FinishRound(round.ID); err != nil {
		return err
	}
	out.RoundDone = true
	scores, err := e.store.ListScores(game.ID)
	if err != nil {
		return err
	}
	out.Scores = scores
	return nil
}

// SeedRound creates a fresh round for the game: up to three random questions
// with their full answer sets, first question current, everyone eligible.
// Returns the question to announce.
func (e *Engine) SeedRound(game *models.Game) (*models.GameRound, *models.Question, error) {
	round, err := e.store.CreateRound(game.ID)
	if err != nil {
		return nil, nil, err
	}
	question, err := e.seedInto(game, round)
	if err != nil {
		return nil, nil, err
	}
	return round, question, nil
}

// ReseedRound fills an existing round that has no questions yet. This is the
// recovery path for a crash between round creation and question creation.
func (e *Engine) ReseedRound(game *models.Game, round *models.GameRound) (*models.Question, error) {
	return e.seedInto(game, round)
}

func (e *Engine) seedInto(game *models.Game, round *models.GameRound) (*models.Question, error) {
	questions, err := e.store.RandomQuestions(e.size)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		if err := e.store.FinishRound(round.ID); err != nil {
			return nil, err
		}
		if err := e.store.SetGameActive(game.ID, false); err != nil {
			return nil, err
		}
		return nil, ErrNoQuestions
	}

	for i, q := range questions {
		rq, err := e.store.CreateRoundQuestion(round.ID, q.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range q.Answers {
			if _, err := e.store.CreateRoundQuestionAnswer(rq.ID, a.ID); err != nil {
				return nil, err
			}
		}
		if i == 0 {
			if err := e.store.SetRoundCurrentQuestion(round.ID, rq.ID); err != nil {
				return nil, err
			}
		}
	}

	if err := e.store.SetAllScoresActive(game.ID, true); err != nil {
		return nil, err
	}
	return &questions[0], nil
}

func (e *Engine) unfoundCount(roundQuestionID uint) (int, error) {
	answers, err := e.store.ListRoundQuestionAnswers(roundQuestionID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range answers {
		if !a.IsFound {
			n++
		}
	}
	return n, nil
}
