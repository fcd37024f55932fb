package services

import (
	"strings"

	"hundredbot/models"
)

// MatchOutcome classifies what a free-text submission hit.
type MatchOutcome int

const (
	// NoMatch means the text names none of the question's answers.
	NoMatch MatchOutcome = iota
	// Matched means the text names an answer that was not yet revealed.
	Matched
	// AlreadyFound means the text names an answer that was revealed earlier.
	// It must not re-award points or re-flip state.
	AlreadyFound
)

// MatchAnswer finds the ranked answer named by free text among a question's
// per-round answer rows (Answer relation loaded). Matching is
// case-insensitive; the submitted text matches an answer when it equals the
// answer's canonical word or is contained within it. Unrevealed answers take
// priority, so a submission that could name both a revealed and an
// unrevealed answer counts as a fresh match.
func MatchAnswer(answers []models.RoundQuestionAnswer, text string) (*models.RoundQuestionAnswer, MatchOutcome) {
	submitted := strings.ToLower(strings.TrimSpace(text))
	if submitted == "" {
		return nil, NoMatch
	}

	var found *models.RoundQuestionAnswer
	for i := range answers {
		canonical := strings.ToLower(strings.TrimSpace(answers[i].Answer.Word))
		if canonical != submitted && !strings.Contains(canonical, submitted) {
			continue
		}
		if !answers[i].IsFound {
			return &answers[i], Matched
		}
		if found == nil {
			found = &answers[i]
		}
	}
	if found != nil {
		return found, AlreadyFound
	}
	return nil, NoMatch
}
