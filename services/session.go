package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"hundredbot/models"
	"hundredbot/store"

	"github.com/coder/quartz"
)

// Callback payloads carried by inline keyboard buttons. The telegram
// dispatcher translates them back into events.
const (
	CallbackJoin      = "join_game"
	CallbackClaim     = "want_answer"
	CallbackPlayAgain = "yes_button"
	CallbackStop      = "no_button"
)

const rulesText = `How to play "100 to 1":

1. The bot posts a question with several hidden ranked answers.
2. Press the button to grab the right to answer. First press wins it.
3. A correct answer scores the answer's points. A wrong answer locks you
   out of the current question.
4. A round is up to three questions. After each round you choose whether
   to keep playing.

Commands:
/start_game - start a new game
/stop_game  - stop the current game
/rules      - show this text`

// Orchestrator is the per-chat state machine. It consumes inbound events,
// drives the arbiter and the progression engine, persists through the store
// and emits notifications afterwards. All events for one chat must be
// delivered to it serially; the Sessions manager guarantees that.
type Orchestrator struct {
	store      store.Store
	engine     *Engine
	arbiter    *Arbiter
	notifier   Notifier
	cache      *StateCache
	clock      quartz.Clock
	joinWindow time.Duration

	// dispatch re-enqueues internally generated events through the per-chat
	// queue. Set by the Sessions manager.
	dispatch func(Event)

	mu         sync.Mutex
	joinTimers map[int64]*quartz.Timer
}

func NewOrchestrator(st store.Store, notifier Notifier, cache *StateCache, clock quartz.Clock, joinWindow time.Duration) *Orchestrator {
	return &Orchestrator{
		store:      st,
		engine:     NewEngine(st),
		arbiter:    NewArbiter(st),
		notifier:   notifier,
		cache:      cache,
		clock:      clock,
		joinWindow: joinWindow,
		joinTimers: make(map[int64]*quartz.Timer),
	}
}

// SetDispatch wires the event queue used for internally generated events.
func (o *Orchestrator) SetDispatch(dispatch func(Event)) {
	o.dispatch = dispatch
}

// HandleEvent processes one inbound event. Must not be called concurrently
// for the same chat.
func (o *Orchestrator) HandleEvent(ev Event) {
	var err error
	switch ev.Type {
	case EventStart:
		err = o.handleStart(ev)
	case EventStop:
		err = o.handleStop(ev)
	case EventRules:
		o.notifier.Notify(ev.ChatID, rulesText, nil)
	case EventJoin:
		err = o.handleJoin(ev)
	case EventClaim:
		err = o.handleClaim(ev)
	case EventAnswer:
		err = o.handleAnswer(ev)
	case EventNextRound:
		err = o.handleNextRound(ev)
	case EventNewMember:
		_, err = o.ensurePlayer(ev.TelegramID, ev.FirstName)
	case EventSeedRound:
		err = o.handleSeedTimer(ev)
	}
	if err != nil {
		log.Printf("session chat %d: event %d failed: %v", ev.ChatID, ev.Type, err)
		o.notifier.Notify(ev.ChatID, "Something went wrong, please try again.", nil)
	}
}

func (o *Orchestrator) handleStart(ev Event) error {
	game, err := o.store.GetActiveGame(ev.ChatID)
	if errors.Is(err, store.ErrNotFound) {
		return o.openGame(ev.ChatID)
	}
	if err != nil {
		return err
	}

	round, err := o.store.GetActiveRound(ev.ChatID)
	if errors.Is(err, store.ErrNotFound) {
		o.notifier.Notify(ev.ChatID, "The game is already on.", nil)
		return o.seedRound(ev.ChatID, game)
	}
	if err != nil {
		return err
	}

	// An active round with no questions means seeding crashed midway;
	// treat it as unseeded and fill it in.
	rqs, err := o.store.ListRoundQuestions(round.ID)
	if err != nil {
		return err
	}
	if len(rqs) == 0 {
		question, err := o.engine.ReseedRound(game, round)
		if err != nil {
			return o.reportSeedFailure(ev.ChatID, err)
		}
		o.announceQuestion(ev.ChatID, question)
		o.refreshState(ev.ChatID, game)
		return nil
	}

	// A round is running: report the current question and floor status.
	// Repeated /start_game calls change nothing.
	return o.reportStatus(ev.ChatID, game, round)
}

// openGame creates the game, opens the join window and schedules the first
// round. The timer fires back through the per-chat queue and is cancelled by
// /stop_game.
func (o *Orchestrator) openGame(chatID int64) error {
	game, err := o.store.CreateGame(chatID)
	if err != nil {
		return err
	}

	o.notifier.Notify(chatID, fmt.Sprintf("Game on! You have %d seconds to join.", int(o.joinWindow.Seconds())), &NotifyOptions{
		Buttons: []Button{{Text: "Join the game", Data: CallbackJoin}},
	})

	timer := o.clock.AfterFunc(o.joinWindow, func() {
		o.dispatch(Event{Type: EventSeedRound, ChatID: chatID})
	})
	o.mu.Lock()
	if old := o.joinTimers[chatID]; old != nil {
		old.Stop()
	}
	o.joinTimers[chatID] = timer
	o.mu.Unlock()

	o.refreshState(chatID, game)
	return nil
}

// handleSeedTimer runs when the join window elapses. The game may have been
// stopped in the meantime, so everything is re-checked from the store.
func (o *Orchestrator) handleSeedTimer(ev Event) error {
	o.dropJoinTimer(ev.ChatID)

	game, err := o.store.GetActiveGame(ev.ChatID)
	if errors.Is(err, store.ErrNotFound) {
		return nil // stopped before the window closed
	}
	if err != nil {
		return err
	}

	round, err := o.store.GetActiveRound(ev.ChatID)
	if err == nil {
		// A round already exists. If it has no questions the seeding
		// crashed midway; fill it in. Otherwise nothing to do.
		rqs, err := o.store.ListRoundQuestions(round.ID)
		if err != nil {
			return err
		}
		if len(rqs) > 0 {
			return nil
		}
		question, err := o.engine.ReseedRound(game, round)
		if err != nil {
			return o.reportSeedFailure(ev.ChatID, err)
		}
		o.announceQuestion(ev.ChatID, question)
		o.refreshState(ev.ChatID, game)
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return o.seedRound(ev.ChatID, game)
}

func (o *Orchestrator) seedRound(chatID int64, game *models.Game) error {
	_, question, err := o.engine.SeedRound(game)
	if err != nil {
		return o.reportSeedFailure(chatID, err)
	}
	o.announceQuestion(chatID, question)
	o.refreshState(chatID, game)
	return nil
}

func (o *Orchestrator) reportSeedFailure(chatID int64, err error) error {
	if errors.Is(err, ErrNoQuestions) {
		// The engine already deactivated the game: nothing to play with.
		o.notifier.Notify(chatID, "No questions are available. The game is over.", nil)
		o.refreshState(chatID, nil)
		return nil
	}
	return err
}

func (o *Orchestrator) handleJoin(ev Event) error {
	game, err := o.store.GetActiveGame(ev.ChatID)
	if errors.Is(err, store.ErrNotFound) {
		o.notifier.Notify(ev.ChatID, "There is no game to join.", nil)
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := o.store.GetActiveRound(ev.ChatID); err == nil {
		o.notifier.Notify(ev.ChatID, "The game already started, joining is closed.", nil)
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	player, err := o.ensurePlayer(ev.TelegramID, ev.FirstName)
	if err != nil {
		return err
	}

	_, err = o.store.CreateScore(player.ID, game.ID)
	if errors.Is(err, store.ErrDuplicate) {
		o.notifier.Notify(ev.ChatID, fmt.Sprintf("%s, you are already in!", player.FirstName), nil)
		return nil
	}
	if err != nil {
		return err
	}

	o.notifier.Notify(ev.ChatID, fmt.Sprintf("%s joined the game!", player.FirstName), nil)
	o.refreshState(ev.ChatID, game)
	return nil
}

func (o *Orchestrator) handleClaim(ev Event) error {
	game, err := o.store.GetActiveGame(ev.ChatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	round, err := o.store.GetActiveRound(ev.ChatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	player, err := o.ensurePlayer(ev.TelegramID, ev.FirstName)
	if err != nil {
		return err
	}

	status, err := o.arbiter.ClaimFloor(round, game.ID, player.ID)
	if err != nil {
		return err
	}
	switch status {
	case ClaimGranted:
		o.notifier.Notify(ev.ChatID, fmt.Sprintf("%s is answering!", player.FirstName), nil)
		o.notifier.SuppressPriorOptions(ev.ChatID, ev.MessageID)
		o.refreshState(ev.ChatID, game)
	case ClaimAlreadyHeld:
		o.notifier.Notify(ev.ChatID, "Someone is already answering this question!", nil)
	case ClaimIneligible:
		o.notifier.Notify(ev.ChatID, fmt.Sprintf("%s, you are locked out of this question!", player.FirstName), nil)
	case ClaimNotJoined:
		o.notifier.Notify(ev.ChatID, fmt.Sprintf("%s, you are not in this game!", player.FirstName), nil)
	}
	return nil
}

func (o *Orchestrator) handleAnswer(ev Event) error {
	game, err := o.store.GetActiveGame(ev.ChatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	round, err := o.store.GetActiveRound(ev.ChatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	player, err := o.store.GetPlayerByTelegramID(ev.TelegramID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	// Only the floor holder may answer. Anything else is a stale or
	// off-topic message and is dropped without a reply.
	if round.CurrentPlayerID != player.ID {
		return nil
	}

	outcome, err := o.engine.ResolveAnswer(game, round, player.ID, ev.Text)
	if err != nil {
		return err
	}
	o.narrate(ev.ChatID, player, outcome)
	o.refreshState(ev.ChatID, game)
	return nil
}

// narrate turns a progression outcome into chat messages, in order.
func (o *Orchestrator) narrate(chatID int64, player *models.Player, out *Outcome) {
	switch out.Result {
	case AnswerCorrect:
		o.notifier.Notify(chatID, fmt.Sprintf("Correct! %q earns %s %d points.", out.Answer.Word, player.FirstName, out.Points), nil)
	case AnswerAlreadyFound:
		o.notifier.Notify(chatID, "That answer was already given.", nil)
	case AnswerWrong:
		o.notifier.Notify(chatID, fmt.Sprintf("Wrong! %s is out for this question.", player.FirstName), nil)
	}

	if out.ForcedReveal {
		o.notifier.Notify(chatID, "Nobody left to answer. Revealing the remaining answers, no points awarded.", nil)
	}
	if out.QuestionDone {
		o.notifier.Notify(chatID, "No answers left for this question.", nil)
	}

	switch {
	case out.RoundDone:
		o.notifier.Notify(chatID, formatStandings(out.Scores), nil)
		o.notifier.Notify(chatID, "Play another round?", &NotifyOptions{
			Buttons: []Button{
				{Text: "Yes", Data: CallbackPlayAgain},
				{Text: "No", Data: CallbackStop},
			},
		})
	case out.NextQuestion != nil:
		o.announceQuestion(chatID, out.NextQuestion)
	default:
		o.promptClaim(chatID)
	}
}

func (o *Orchestrator) handleNextRound(ev Event) error {
	game, err := o.store.GetActiveGame(ev.ChatID)
	if errors.Is(err, store.ErrNotFound) {
		o.notifier.Notify(ev.ChatID, "No active game found.", nil)
		return nil
	}
	if err != nil {
		return err
	}

	// A decision button pressed while a round is already running is stale.
	if _, err := o.store.GetActiveRound(ev.ChatID); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	o.notifier.SuppressPriorOptions(ev.ChatID, ev.MessageID)

	if !ev.PlayAgain {
		if err := o.store.SetGameActive(game.ID, false); err != nil {
			return err
		}
		o.notifier.Notify(ev.ChatID, "Game over. Thanks for playing!", nil)
		o.refreshState(ev.ChatID, nil)
		return nil
	}
	return o.seedRound(ev.ChatID, game)
}

func (o *Orchestrator) handleStop(ev Event) error {
	o.dropJoinTimer(ev.ChatID)

	game, err := o.store.GetActiveGame(ev.ChatID)
	if errors.Is(err, store.ErrNotFound) {
		o.notifier.Notify(ev.ChatID, "The game is not active.", nil)
		return nil
	}
	if err != nil {
		return err
	}

	if round, err := o.store.GetActiveRound(ev.ChatID); err == nil {
		if err := o.store.FinishRound(round.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := o.store.SetGameActive(game.ID, false); err != nil {
		return err
	}

	o.notifier.Notify(ev.ChatID, "The game is over.", nil)
	o.refreshState(ev.ChatID, nil)
	return nil
}

// reportStatus answers an idempotent /start_game while a round is running.
func (o *Orchestrator) reportStatus(chatID int64, game *models.Game, round *models.GameRound) error {
	rq, err := o.store.GetRoundQuestion(round.CurrentQuestionID)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("The game is already running.\n")
	sb.WriteString("Question: " + rq.Question.Text + "\n")
	if round.CurrentPlayerID == 0 {
		sb.WriteString("The floor is open.")
	} else {
		holder, err := o.store.GetPlayer(round.CurrentPlayerID)
		if err != nil {
			return err
		}
		sb.WriteString(holder.FirstName + " is answering.")
	}
	o.notifier.Notify(chatID, sb.String(), nil)
	if round.CurrentPlayerID == 0 {
		o.promptClaim(chatID)
	}
	return nil
}

func (o *Orchestrator) announceQuestion(chatID int64, question *models.Question) {
	o.notifier.Notify(chatID, "Question: "+question.Text, nil)
	o.promptClaim(chatID)
}

func (o *Orchestrator) promptClaim(chatID int64) {
	o.notifier.Notify(chatID, "Hit the button to answer!", &NotifyOptions{
		Buttons: []Button{{Text: "I want to answer!", Data: CallbackClaim}},
	})
}

func (o *Orchestrator) ensurePlayer(telegramID int64, firstName string) (*models.Player, error) {
	player, err := o.store.GetPlayerByTelegramID(telegramID)
	if errors.Is(err, store.ErrNotFound) {
		return o.store.CreatePlayer(telegramID, firstName)
	}
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (o *Orchestrator) dropJoinTimer(chatID int64) {
	o.mu.Lock()
	if timer := o.joinTimers[chatID]; timer != nil {
		timer.Stop()
		delete(o.joinTimers, chatID)
	}
	o.mu.Unlock()
}

// refreshState pushes a fresh chat snapshot into the cache. Best effort:
// the cache is a read model for the HTTP surface, never game truth.
func (o *Orchestrator) refreshState(chatID int64, game *models.Game) {
	if o.cache == nil {
		return
	}
	state := o.buildState(chatID, game)
	if err := o.cache.Set(chatID, state); err != nil {
		log.Printf("session chat %d: cache refresh failed: %v", chatID, err)
	}
}

func (o *Orchestrator) buildState(chatID int64, game *models.Game) *ChatState {
	state := &ChatState{ChatID: chatID}
	if game == nil {
		return state
	}
	state.GameID = game.ID
	state.Active = true

	if scores, err := o.store.ListScores(game.ID); err == nil {
		for _, s := range scores {
			state.Scoreboard = append(state.Scoreboard, PlayerScore{
				Name:     s.Player.FirstName,
				Score:    s.Score,
				Eligible: s.IsActive,
			})
		}
	}

	round, err := o.store.GetActiveRound(chatID)
	if err != nil {
		return state
	}
	state.RoundActive = true
	if rq, err := o.store.GetRoundQuestion(round.CurrentQuestionID); err == nil {
		state.Question = rq.Question.Text
	}
	if round.CurrentPlayerID != 0 {
		if holder, err := o.store.GetPlayer(round.CurrentPlayerID); err == nil {
			state.FloorHolder = holder.FirstName
		}
	}
	return state
}

func formatStandings(scores []models.GameScore) string {
	var sb strings.Builder
	sb.WriteString("Standings:\n")
	for _, s := range scores {
		if s.Score <= 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s: %d\n", s.Player.FirstName, s.Score)
	}
	return strings.TrimRight(sb.String(), "\n")
}
