package ws_room

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	usecase_game "github.com/janlopes/HiLo-Game/internal/usecase/game"
)

type Client struct {
	conn  *websocket.Conn
	send  chan Event
	topic string
}

// StartReading discards inbound frames; the socket is push-only. Returning
// means the peer is gone, so the client is unsubscribed.
func (h *Hub) StartReading(client *Client) {
	defer func() {
		h.Unsubscribe(client)
		client.conn.Close()
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) StartWriting(client *Client) {
	defer client.conn.Close()

	for event := range client.send {
		if err := client.conn.WriteJSON(event); err != nil {
			break
		}
	}
}

type Controller struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewController(hub *Hub) *Controller {
	return &Controller{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws/rooms/:room_id", c.subscribe)
}

func (c *Controller) subscribe(ctx *gin.Context) {
	roomID := ctx.Param("room_id")

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("websocket upgrade failed",
			slog.String("room_id", roomID),
			slog.String("error", err.Error()))
		return
	}

	client := &Client{
		conn:  conn,
		send:  make(chan Event, 16),
		topic: usecase_game.RoomTopic(roomID),
	}
	c.hub.Subscribe(client)

	go c.hub.StartWriting(client)
	go c.hub.StartReading(client)
}
