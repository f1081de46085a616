package ws_room

import (
	"log/slog"
	"sync"

	usecase_game "github.com/janlopes/HiLo-Game/internal/usecase/game"
)

// Event is the envelope pushed to room subscribers.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type topicEvent struct {
	topic string
	event Event
}

// Hub fans room events out to currently-subscribed websocket clients. It
// implements the game use case's Notifier: delivery is fire-and-forget, a
// slow client gets dropped rather than blocking the room.
type Hub struct {
	logger     *slog.Logger
	topics     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan topicEvent
	mu         sync.RWMutex
}

type HubOption func(*Hub)

func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger:     slog.Default(),
		topics:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan topicEvent, 64),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case te := <-h.broadcast:
			h.broadcastToTopic(te.topic, te.event)
		}
	}
}

// Broadcast queues an event for every subscriber of topic. Called by the
// game use case after the store write made the change durable.
func (h *Hub) Broadcast(topic string, event string, payload any) {
	h.broadcast <- topicEvent{
		topic: topic,
		event: Event{Type: event, Payload: payload},
	}
}

// Subscribe attaches a connected client to its room topic.
func (h *Hub) Subscribe(client *Client) {
	h.register <- client
}

func (h *Hub) Unsubscribe(client *Client) {
	h.unregister <- client
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.topics[client.topic]; !exists {
		h.topics[client.topic] = make(map[*Client]bool)
	}
	h.topics[client.topic][client] = true

	h.logger.Info("client subscribed", "topic", client.topic)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.topics[client.topic]; exists {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.topics, client.topic)
			}
		}
	}

	h.logger.Info("client unsubscribed", "topic", client.topic)
}

func (h *Hub) broadcastToTopic(topic string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, exists := h.topics[topic]; exists {
		for client := range clients {
			select {
			case client.send <- event:
			default:
				close(client.send)
				delete(h.topics[topic], client)
			}
		}
	}
}

var _ usecase_game.Notifier = (*Hub)(nil)
