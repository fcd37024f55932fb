package services

import (
	"sort"
	"strings"
	"sync"

	"hundredbot/models"
	"hundredbot/store"
)

// memStore is an in-memory Store used by the service tests. ClaimFloor is a
// real compare-and-set under the mutex, so arbitration tests exercise the
// same single-winner guarantee the database gives.
type memStore struct {
	mu        sync.Mutex
	nextID    uint
	games     map[uint]*models.Game
	rounds    map[uint]*models.GameRound
	rqs       map[uint]*models.RoundQuestion
	rqas      map[uint]*models.RoundQuestionAnswer
	scores    map[uint]*models.GameScore
	players   map[uint]*models.Player
	questions map[uint]*models.Question
}

func newMemStore() *memStore {
	return &memStore{
		games:     make(map[uint]*models.Game),
		rounds:    make(map[uint]*models.GameRound),
		rqs:       make(map[uint]*models.RoundQuestion),
		rqas:      make(map[uint]*models.RoundQuestionAnswer),
		scores:    make(map[uint]*models.GameScore),
		players:   make(map[uint]*models.Player),
		questions: make(map[uint]*models.Question),
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

type answerSpec struct {
	word  string
	score int
}

// addQuestion seeds the question bank. Returns the question ID.
func (m *memStore) addQuestion(text string, answers ...answerSpec) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := &models.Question{ID: m.id(), Text: text}
	for _, a := range answers {
		q.Answers = append(q.Answers, models.Answer{
			ID:         m.id(),
			QuestionID: q.ID,
			Word:       a.word,
			Score:      a.score,
		})
	}
	m.questions[q.ID] = q
	return q.ID
}

func (m *memStore) GetActiveGame(chatID int64) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *models.Game
	for _, g := range m.games {
		if g.ChatID != chatID || !g.IsActive {
			continue
		}
		if newest == nil || g.ID > newest.ID {
			newest = g
		}
	}
	if newest == nil {
		return nil, store.ErrNotFound
	}
	// Same repair GormStore applies: duplicate active games keep the newest
	// row, the rest are deactivated.
	for _, g := range m.games {
		if g.ChatID == chatID && g.IsActive && g.ID != newest.ID {
			g.IsActive = false
		}
	}
	cp := *newest
	return &cp, nil
}

func (m *memStore) CreateGame(chatID int64) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &models.Game{ID: m.id(), ChatID: chatID, IsActive: true}
	m.games[g.ID] = g
	cp := *g
	return &cp, nil
}

func (m *memStore) SetGameActive(gameID uint, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return store.ErrNotFound
	}
	g.IsActive = active
	return nil
}

func (m *memStore) CreateRound(gameID uint) (*models.GameRound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &models.GameRound{ID: m.id(), GameID: gameID, IsActive: true}
	m.rounds[r.ID] = r
	cp := *r
	return &cp, nil
}

func (m *memStore) GetActiveRound(chatID int64) (*models.GameRound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *models.GameRound
	for _, r := range m.rounds {
		if !r.IsActive {
			continue
		}
		g, ok := m.games[r.GameID]
		if !ok || g.ChatID != chatID {
			continue
		}
		if newest == nil || r.ID > newest.ID {
			newest = r
		}
	}
	if newest == nil {
		return nil, store.ErrNotFound
	}
	for _, r := range m.rounds {
		if !r.IsActive || r.ID == newest.ID {
			continue
		}
		if g, ok := m.games[r.GameID]; ok && g.ChatID == chatID {
			r.IsActive = false
			r.CurrentPlayerID = 0
		}
	}
	cp := *newest
	return &cp, nil
}

func (m *memStore) ListRounds(gameID uint) ([]models.GameRound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.GameRound
	for _, r := range m.rounds {
		if r.GameID == gameID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SetRoundCurrentQuestion(roundID, roundQuestionID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok {
		return store.ErrNotFound
	}
	r.CurrentQuestionID = roundQuestionID
	return nil
}

func (m *memStore) FinishRound(roundID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok {
		return store.ErrNotFound
	}
	r.IsActive = false
	r.CurrentPlayerID = 0
	return nil
}

func (m *memStore) ClaimFloor(roundID, playerID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok || !r.IsActive || r.CurrentPlayerID != 0 {
		return false, nil
	}
	r.CurrentPlayerID = playerID
	return true, nil
}

func (m *memStore) ReleaseFloor(roundID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok {
		return store.ErrNotFound
	}
	r.CurrentPlayerID = 0
	return nil
}

func (m *memStore) CreateRoundQuestion(roundID, questionID uint) (*models.RoundQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rq := &models.RoundQuestion{ID: m.id(), RoundID: roundID, QuestionID: questionID}
	m.rqs[rq.ID] = rq
	cp := *rq
	return &cp, nil
}

func (m *memStore) GetRoundQuestion(id uint) (*models.RoundQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rq, ok := m.rqs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rq
	if q, ok := m.questions[rq.QuestionID]; ok {
		cp.Question = *q
	}
	cp.Answers = m.answersFor(rq.ID)
	return &cp, nil
}

func (m *memStore) ListRoundQuestions(roundID uint) ([]models.RoundQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RoundQuestion
	for _, rq := range m.rqs {
		if rq.RoundID == roundID {
			out = append(out, *rq)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SetRoundQuestionFound(id uint, found bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rq, ok := m.rqs[id]
	if !ok {
		return store.ErrNotFound
	}
	rq.IsFound = found
	return nil
}

func (m *memStore) CreateRoundQuestionAnswer(roundQuestionID, answerID uint) (*models.RoundQuestionAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rqa := &models.RoundQuestionAnswer{ID: m.id(), RoundQuestionID: roundQuestionID, AnswerID: answerID}
	m.rqas[rqa.ID] = rqa
	cp := *rqa
	return &cp, nil
}

func (m *memStore) ListRoundQuestionAnswers(roundQuestionID uint) ([]models.RoundQuestionAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answersFor(roundQuestionID), nil
}

// answersFor must be called with the mutex held.
func (m *memStore) answersFor(roundQuestionID uint) []models.RoundQuestionAnswer {
	var out []models.RoundQuestionAnswer
	for _, rqa := range m.rqas {
		if rqa.RoundQuestionID != roundQuestionID {
			continue
		}
		cp := *rqa
		for _, q := range m.questions {
			for _, a := range q.Answers {
				if a.ID == rqa.AnswerID {
					cp.Answer = a
				}
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) SetAnswerFound(id uint, found bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rqa, ok := m.rqas[id]
	if !ok {
		return store.ErrNotFound
	}
	rqa.IsFound = found
	return nil
}

func (m *memStore) CreateScore(playerID, gameID uint) (*models.GameScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.scores {
		if s.PlayerID == playerID && s.GameID == gameID {
			return nil, store.ErrDuplicate
		}
	}
	s := &models.GameScore{ID: m.id(), PlayerID: playerID, GameID: gameID, IsActive: true}
	m.scores[s.ID] = s
	cp := *s
	return &cp, nil
}

func (m *memStore) GetScore(playerID, gameID uint) (*models.GameScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.scores {
		if s.PlayerID == playerID && s.GameID == gameID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListScores(gameID uint) ([]models.GameScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.GameScore
	for _, s := range m.scores {
		if s.GameID != gameID {
			continue
		}
		cp := *s
		if p, ok := m.players[s.PlayerID]; ok {
			cp.Player = *p
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (m *memStore) AddScore(playerID, gameID uint, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.scores {
		if s.PlayerID == playerID && s.GameID == gameID {
			s.Score += points
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) SetScoreActive(playerID, gameID uint, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.scores {
		if s.PlayerID == playerID && s.GameID == gameID {
			s.IsActive = active
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) SetAllScoresActive(gameID uint, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.scores {
		if s.GameID == gameID {
			s.IsActive = active
		}
	}
	return nil
}

// RandomQuestions is deterministic here: it returns the bank in ID order.
func (m *memStore) RandomQuestions(n int) ([]models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Question
	for _, q := range m.questions {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *memStore) GetQuestion(id uint) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *memStore) GetPlayerByTelegramID(telegramID int64) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.TelegramID == telegramID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetPlayer(id uint) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) CreatePlayer(telegramID int64, firstName string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &models.Player{ID: m.id(), TelegramID: telegramID, FirstName: firstName}
	m.players[p.ID] = p
	cp := *p
	return &cp, nil
}

var _ store.Store = (*memStore)(nil)

// recordingNotifier captures outbound messages for assertions.
type recordingNotifier struct {
	mu         sync.Mutex
	messages   []string
	buttons    [][]Button
	suppressed []int
}

func (n *recordingNotifier) Notify(chatID int64, text string, opts *NotifyOptions) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	if opts != nil {
		n.buttons = append(n.buttons, opts.Buttons)
	} else {
		n.buttons = append(n.buttons, nil)
	}
}

func (n *recordingNotifier) SuppressPriorOptions(chatID int64, messageID int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.suppressed = append(n.suppressed, messageID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func (n *recordingNotifier) contains(substr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, msg := range n.messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = nil
	n.buttons = nil
	n.suppressed = nil
}
