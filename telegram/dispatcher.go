package telegram

import (
	"strings"

	"hundredbot/services"
)

// MapUpdate translates a Telegram update into the game events it carries.
// Most updates yield one event; a service message announcing several new
// chat members yields one per member, and irrelevant updates yield none.
func MapUpdate(u Update) []services.Event {
	if u.CallbackQuery != nil {
		return mapCallback(*u.CallbackQuery)
	}
	if u.Message != nil {
		return mapMessage(*u.Message)
	}
	return nil
}

func mapCallback(cq CallbackQuery) []services.Event {
	if cq.Message == nil {
		return nil
	}
	ev := services.Event{
		ChatID:     cq.Message.Chat.ID,
		TelegramID: cq.From.ID,
		FirstName:  cq.From.FirstName,
		MessageID:  cq.Message.MessageID,
	}
	switch cq.Data {
	case services.CallbackJoin:
		ev.Type = services.EventJoin
	case services.CallbackClaim:
		ev.Type = services.EventClaim
	case services.CallbackPlayAgain:
		ev.Type = services.EventNextRound
		ev.PlayAgain = true
	case services.CallbackStop:
		ev.Type = services.EventNextRound
		ev.PlayAgain = false
	default:
		return nil
	}
	return []services.Event{ev}
}

func mapMessage(m Message) []services.Event {
	if len(m.NewChatMembers) > 0 {
		events := make([]services.Event, 0, len(m.NewChatMembers))
		for _, member := range m.NewChatMembers {
			events = append(events, services.Event{
				Type:       services.EventNewMember,
				ChatID:     m.Chat.ID,
				TelegramID: member.ID,
				FirstName:  member.FirstName,
			})
		}
		return events
	}

	if m.From == nil || m.Text == "" {
		return nil
	}
	ev := services.Event{
		ChatID:     m.Chat.ID,
		TelegramID: m.From.ID,
		FirstName:  m.From.FirstName,
		MessageID:  m.MessageID,
	}

	switch command(m.Text) {
	case "/start_game":
		ev.Type = services.EventStart
	case "/stop_game":
		ev.Type = services.EventStop
	case "/rules":
		ev.Type = services.EventRules
	default:
		ev.Type = services.EventAnswer
		ev.Text = m.Text
	}
	return []services.Event{ev}
}

// command extracts the leading bot command from a message, dropping any
// @botname suffix used when addressing the bot in a group.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd
}
