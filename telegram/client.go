package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"hundredbot/services"
)

const (
	apiURLTemplate = "https://api.telegram.org/bot%s/%s"
	pollTimeout    = 30 // seconds, long-poll duration for getUpdates
)

// Client is a minimal Telegram Bot API client covering exactly what the
// game needs: long-polling updates, sending messages with optional inline
// keyboards, and stripping keyboards off earlier messages.
type Client struct {
	token string
	http  *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token: token,
		// Longer than the poll timeout so getUpdates can run its course.
		http: &http.Client{Timeout: (pollTimeout + 10) * time.Second},
	}
}

// Update is the Bot API update envelope, limited to the fields we read.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type Message struct {
	MessageID      int    `json:"message_id"`
	From           *User  `json:"from"`
	Chat           Chat   `json:"chat"`
	Text           string `json:"text"`
	NewChatMembers []User `json:"new_chat_members"`
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message"`
	Data    string   `json:"data"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal %s params: %w", method, err)
	}

	url := fmt.Sprintf(apiURLTemplate, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("%s: telegram error: %s", method, api.Description)
	}
	if result != nil {
		return json.Unmarshal(api.Result, result)
	}
	return nil
}

// GetUpdates long-polls the Bot API for new updates past the offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	params := map[string]interface{}{
		"offset":          offset,
		"timeout":         pollTimeout,
		"allowed_updates": []string{"message", "callback_query"},
	}
	var updates []Update
	if err := c.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) SendMessage(chatID int64, text string, markup *InlineKeyboardMarkup) error {
	params := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if markup != nil {
		params["reply_markup"] = markup
	}
	return c.call(context.Background(), "sendMessage", params, nil)
}

// EditMessageReplyMarkup replaces a message's inline keyboard with an empty
// one, removing its buttons.
func (c *Client) EditMessageReplyMarkup(chatID int64, messageID int) error {
	params := map[string]interface{}{
		"chat_id":      chatID,
		"message_id":   messageID,
		"reply_markup": InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{}},
	}
	return c.call(context.Background(), "editMessageReplyMarkup", params, nil)
}

// Notify implements services.Notifier. Delivery failures are logged only;
// game state never depends on a message arriving.
func (c *Client) Notify(chatID int64, text string, opts *services.NotifyOptions) {
	var markup *InlineKeyboardMarkup
	if opts != nil && len(opts.Buttons) > 0 {
		row := make([]InlineKeyboardButton, len(opts.Buttons))
		for i, b := range opts.Buttons {
			row[i] = InlineKeyboardButton{Text: b.Text, CallbackData: b.Data}
		}
		markup = &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{row}}
	}
	if err := c.SendMessage(chatID, text, markup); err != nil {
		log.Printf("telegram: send to chat %d failed: %v", chatID, err)
	}
}

// SuppressPriorOptions implements services.Notifier.
func (c *Client) SuppressPriorOptions(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if err := c.EditMessageReplyMarkup(chatID, messageID); err != nil {
		log.Printf("telegram: edit markup in chat %d failed: %v", chatID, err)
	}
}
