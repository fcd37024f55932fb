package services

// EventType enumerates every inbound action the orchestrator understands.
// The set is closed: HandleEvent switches over it exhaustively.
type EventType int

const (
	EventStart EventType = iota
	EventStop
	EventRules
	EventJoin
	EventClaim
	EventAnswer
	EventNextRound
	EventNewMember
	// EventSeedRound is produced internally when a join window elapses. It
	// goes through the same per-chat queue as external events so seeding is
	// serialized with everything else for that chat.
	EventSeedRound
)

// Event is one inbound action for a chat.
type Event struct {
	Type       EventType
	ChatID     int64
	TelegramID int64
	FirstName  string
	MessageID  int    // message carrying the pressed button, for option suppression
	Text       string // free-text answer for EventAnswer
	PlayAgain  bool   // decision for EventNextRound
}
