package services

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

// Hub mirrors game notifications to websocket spectators, one room per chat.
type Hub struct {
	cache      *StateCache
	register   chan *SpectatorClient
	unregister chan *SpectatorClient
	broadcast  chan broadcastMsg
	clients    map[*SpectatorClient]bool
}

type broadcastMsg struct {
	chatID int64
	data   []byte
}

// SpectatorClient is one websocket connection watching a chat's game.
type SpectatorClient struct {
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte
	chatID int64
}

// HubMessage is the wire envelope for the spectator feed.
type HubMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(cache *StateCache) *Hub {
	return &Hub{
		cache:      cache,
		register:   make(chan *SpectatorClient),
		unregister: make(chan *SpectatorClient),
		broadcast:  make(chan broadcastMsg, 64),
		clients:    make(map[*SpectatorClient]bool),
	}
}

// Run owns the client set; register, unregister and broadcast all go through
// the hub goroutine so no mutex is needed.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("hub: spectator joined chat %d (%d connected)", client.chatID, len(h.clients))
			h.sendState(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("hub: spectator left chat %d (%d connected)", client.chatID, len(h.clients))
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.chatID != msg.chatID {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastToChat sends a message to every spectator of the chat. Safe to
// call from any goroutine; a saturated hub drops the message.
func (h *Hub) BroadcastToChat(chatID int64, messageType string, payload interface{}) {
	data, err := json.Marshal(HubMessage{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("hub: marshal %s failed: %v", messageType, err)
		return
	}
	select {
	case h.broadcast <- broadcastMsg{chatID: chatID, data: data}:
	default:
		log.Printf("hub: broadcast queue full, dropping %s for chat %d", messageType, chatID)
	}
}

func (h *Hub) sendState(client *SpectatorClient) {
	if h.cache == nil {
		return
	}
	state, err := h.cache.Get(client.chatID)
	if err != nil || state == nil {
		return
	}
	data, err := json.Marshal(HubMessage{Type: "state", Payload: state})
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

// RegisterClient attaches a websocket connection to a chat room and starts
// its pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn, chatID int64) *SpectatorClient {
	client := &SpectatorClient{
		hub:    h,
		socket: conn,
		send:   make(chan []byte, 256),
		chatID: chatID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
	return client
}

func (c *SpectatorClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("hub: read error: %v", err)
			}
			break
		}

		var msg HubMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "request_state" {
			c.hub.sendState(c)
		}
	}
}

func (c *SpectatorClient) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

// HubNotifier adapts the hub to the Notifier interface so spectators see the
// same messages the bot sends to the chat.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) Notify(chatID int64, text string, opts *NotifyOptions) {
	payload := map[string]interface{}{"text": text}
	if opts != nil && len(opts.Buttons) > 0 {
		payload["buttons"] = opts.Buttons
	}
	n.hub.BroadcastToChat(chatID, "notify", payload)
}

func (n *HubNotifier) SuppressPriorOptions(chatID int64, messageID int) {
	n.hub.BroadcastToChat(chatID, "options_suppressed", map[string]interface{}{
		"message_id": messageID,
	})
}
