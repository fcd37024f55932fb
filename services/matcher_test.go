package services

import (
	"testing"

	"hundredbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rqa(id uint, word string, score int, found bool) models.RoundQuestionAnswer {
	return models.RoundQuestionAnswer{
		ID:      id,
		IsFound: found,
		Answer:  models.Answer{ID: id, Word: word, Score: score},
	}
}

func TestMatchAnswerExact(t *testing.T) {
	answers := []models.RoundQuestionAnswer{
		rqa(1, "bread", 28, false),
		rqa(2, "milk", 15, false),
	}

	match, outcome := MatchAnswer(answers, "bread")
	require.Equal(t, Matched, outcome)
	assert.Equal(t, "bread", match.Answer.Word)
}

func TestMatchAnswerCaseAndWhitespace(t *testing.T) {
	answers := []models.RoundQuestionAnswer{rqa(1, "Bread", 28, false)}

	match, outcome := MatchAnswer(answers, "  BREAD  ")
	require.Equal(t, Matched, outcome)
	assert.Equal(t, uint(1), match.ID)
}

func TestMatchAnswerContained(t *testing.T) {
	answers := []models.RoundQuestionAnswer{rqa(1, "white bread", 28, false)}

	match, outcome := MatchAnswer(answers, "bread")
	require.Equal(t, Matched, outcome)
	assert.Equal(t, "white bread", match.Answer.Word)
}

func TestMatchAnswerLongerSubmissionDoesNotMatch(t *testing.T) {
	answers := []models.RoundQuestionAnswer{rqa(1, "bread", 28, false)}

	_, outcome := MatchAnswer(answers, "white bread")
	assert.Equal(t, NoMatch, outcome)
}

func TestMatchAnswerPrefersUnfound(t *testing.T) {
	// "bread" names both rows; the unrevealed one wins even though the
	// revealed one comes first.
	answers := []models.RoundQuestionAnswer{
		rqa(1, "bread", 28, true),
		rqa(2, "breadsticks", 5, false),
	}

	match, outcome := MatchAnswer(answers, "bread")
	require.Equal(t, Matched, outcome)
	assert.Equal(t, "breadsticks", match.Answer.Word)
}

func TestMatchAnswerAlreadyFound(t *testing.T) {
	answers := []models.RoundQuestionAnswer{
		rqa(1, "bread", 28, true),
		rqa(2, "milk", 15, false),
	}

	match, outcome := MatchAnswer(answers, "bread")
	require.Equal(t, AlreadyFound, outcome)
	assert.Equal(t, "bread", match.Answer.Word)
}

func TestMatchAnswerNoMatch(t *testing.T) {
	answers := []models.RoundQuestionAnswer{rqa(1, "bread", 28, false)}

	match, outcome := MatchAnswer(answers, "cheese")
	assert.Equal(t, NoMatch, outcome)
	assert.Nil(t, match)
}

func TestMatchAnswerEmptyText(t *testing.T) {
	answers := []models.RoundQuestionAnswer{rqa(1, "bread", 28, false)}

	_, outcome := MatchAnswer(answers, "   ")
	assert.Equal(t, NoMatch, outcome)
}
