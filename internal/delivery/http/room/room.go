package http_room

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	http_common "github.com/janlopes/HiLo-Game/internal/delivery/http/common"
	"github.com/janlopes/HiLo-Game/internal/model"
	usecase_game "github.com/janlopes/HiLo-Game/internal/usecase/game"
)

type Controller struct {
	usecase *usecase_game.Usecase
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(usecase *usecase_game.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", c.create)
		rooms.GET("/:room_id", c.get)
		rooms.POST("/:room_id/join", c.join)
	}
}

type CreateRoomRequestDTO struct {
	Name   string `json:"name" binding:"required"`
	Low    *int   `json:"low"`
	High   *int   `json:"high"`
	Secret *int   `json:"secret"`
}

type CreateRoomResponseDTO struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
	Low    int    `json:"low"`
	High   int    `json:"high"`
}

type PlayerDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	WantsRematch bool   `json:"wants_rematch"`
}

type GuessDTO struct {
	PlayerID string    `json:"player_id"`
	Value    int       `json:"value"`
	Outcome  string    `json:"outcome"`
	At       time.Time `json:"at"`
}

// RoomViewDTO is the non-privileged read of a room: the secret is withheld.
type RoomViewDTO struct {
	RoomID          string      `json:"room_id"`
	Name            string      `json:"name"`
	Low             int         `json:"low"`
	High            int         `json:"high"`
	Status          string      `json:"status"`
	Players         []PlayerDTO `json:"players"`
	CurrentPlayerID *string     `json:"current_player_id"`
	Guesses         []GuessDTO  `json:"guesses"`
	CreatedAt       time.Time   `json:"created_at"`
}

func NewRoomViewDTO(room *model.Room) RoomViewDTO {
	view := RoomViewDTO{
		RoomID:    room.ID,
		Name:      room.Name,
		Low:       room.Low,
		High:      room.High,
		Status:    string(room.Status),
		Players:   make([]PlayerDTO, 0, len(room.Players)),
		Guesses:   make([]GuessDTO, 0, len(room.Guesses)),
		CreatedAt: room.CreatedAt,
	}
	for _, p := range room.Players {
		view.Players = append(view.Players, PlayerDTO{
			ID:           p.ID,
			Name:         p.Name,
			WantsRematch: p.WantsRematch,
		})
	}
	for _, g := range room.Guesses {
		view.Guesses = append(view.Guesses, GuessDTO{
			PlayerID: g.PlayerID,
			Value:    g.Value,
			Outcome:  string(g.Outcome),
			At:       g.At,
		})
	}
	if current := room.CurrentPlayer(); current != nil && room.Status == model.StatusInProgress {
		id := current.ID
		view.CurrentPlayerID = &id
	}
	return view
}

func (c *Controller) create(ctx *gin.Context) {
	var req CreateRoomRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request body",
		})
		return
	}

	low, high := 1, 100
	if req.Low != nil {
		low = *req.Low
	}
	if req.High != nil {
		high = *req.High
	}

	room, err := c.usecase.CreateRoom(ctx, req.Name, low, high, req.Secret)
	if err != nil {
		c.respondError(ctx, "failed to create room", err)
		return
	}

	ctx.JSON(http.StatusCreated, CreateRoomResponseDTO{
		RoomID: room.ID,
		Name:   room.Name,
		Low:    room.Low,
		High:   room.High,
	})
}

func (c *Controller) get(ctx *gin.Context) {
	roomID := ctx.Param("room_id")

	room, err := c.usecase.Room(ctx, roomID)
	if err != nil {
		c.respondError(ctx, "failed to get room", err)
		return
	}

	ctx.JSON(http.StatusOK, NewRoomViewDTO(room))
}

type JoinRoomRequestDTO struct {
	PlayerID   string `json:"player_id" binding:"required"`
	PlayerName string `json:"player_name" binding:"required"`
}

func (c *Controller) join(ctx *gin.Context) {
	roomID := ctx.Param("room_id")

	var req JoinRoomRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request body",
		})
		return
	}

	room, err := c.usecase.Join(ctx, roomID, req.PlayerID, req.PlayerName)
	if err != nil {
		c.respondError(ctx, "failed to join room", err)
		return
	}

	ctx.JSON(http.StatusOK, NewRoomViewDTO(room))
}

func (c *Controller) respondError(ctx *gin.Context, msg string, err error) {
	c.logger.Error(msg, slog.String("error", err.Error()))

	switch {
	case errors.Is(err, model.ErrValidation):
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: err.Error()})
	case errors.Is(err, usecase_game.ErrRoomNotFound):
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{Message: "room not found"})
	case errors.Is(err, model.ErrConflict):
		ctx.JSON(http.StatusConflict, http_common.ErrorResponse{Message: err.Error()})
	case errors.Is(err, usecase_game.ErrConcurrency):
		ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{Message: "room is busy, retry"})
	default:
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{Message: "internal error"})
	}
}
