package services

import "log"

// Button is one inline keyboard button attached to an outbound message.
type Button struct {
	Text string
	Data string
}

// NotifyOptions carries optional message decorations.
type NotifyOptions struct {
	Buttons []Button
}

// Notifier delivers text and buttons to a chat. Calls are fire-and-forget
// from the game's perspective: implementations log delivery failures and
// never surface them as game-state errors.
type Notifier interface {
	Notify(chatID int64, text string, opts *NotifyOptions)
	// SuppressPriorOptions removes the inline keyboard from a previously
	// sent message so its buttons cannot be pressed again.
	SuppressPriorOptions(chatID int64, messageID int)
}

// MultiNotifier fans a notification out to several sinks, e.g. the Telegram
// chat and the websocket spectator feed.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(chatID int64, text string, opts *NotifyOptions) {
	for _, n := range m {
		n.Notify(chatID, text, opts)
	}
}

func (m MultiNotifier) SuppressPriorOptions(chatID int64, messageID int) {
	for _, n := range m {
		n.SuppressPriorOptions(chatID, messageID)
	}
}

// LogNotifier is a Notifier that only logs. Useful when running without a
// configured bot token.
type LogNotifier struct{}

func (LogNotifier) Notify(chatID int64, text string, opts *NotifyOptions) {
	log.Printf("notify chat %d: %s", chatID, text)
}

func (LogNotifier) SuppressPriorOptions(chatID int64, messageID int) {}
