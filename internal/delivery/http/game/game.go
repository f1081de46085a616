package http_game

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/janlopes/HiLo-Game/internal/delivery/http/common"
	http_room "github.com/janlopes/HiLo-Game/internal/delivery/http/room"
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
	game := router.Group("/game")
	{
		game.POST("/:room_id/start", c.start)
		game.POST("/:room_id/guess", c.guess)
		game.GET("/:room_id/status", c.status)
		game.POST("/:room_id/vote-rematch", c.voteRematch)
	}
}

type StartMatchResponseDTO struct {
	RoomID          string `json:"room_id"`
	CurrentPlayerID string `json:"current_player_id"`
}

func (c *Controller) start(ctx *gin.Context) {
	roomID := ctx.Param("room_id")

	room, err := c.usecase.Start(ctx, roomID)
	if err != nil {
		c.respondError(ctx, "failed to start match", err)
		return
	}

	ctx.JSON(http.StatusOK, StartMatchResponseDTO{
		RoomID:          room.ID,
		CurrentPlayerID: room.CurrentPlayer().ID,
	})
}

type GuessRequestDTO struct {
	PlayerID string `json:"player_id" binding:"required"`
	Value    *int   `json:"value" binding:"required"`
}

type GuessResponseDTO struct {
	RoomID       string  `json:"room_id"`
	Hint         string  `json:"hint"`
	NextPlayerID *string `json:"next_player_id"`
}

// hint returns the classic hi-lo answer: HI when the secret is higher than
// the guess, LO when it is lower.
func hint(outcome model.Outcome) string {
	switch outcome {
	case model.OutcomeCorrect:
		return "CORRECT"
	case model.OutcomeTooLow:
		return "HI"
	case model.OutcomeTooHigh:
		return "LO"
	}
	return ""
}

func (c *Controller) guess(ctx *gin.Context) {
	roomID := ctx.Param("room_id")

	var req GuessRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request body",
		})
		return
	}

	outcome, room, err := c.usecase.Guess(ctx, roomID, req.PlayerID, *req.Value)
	if err != nil {
		c.respondError(ctx, "failed to make guess", err)
		return
	}

	resp := GuessResponseDTO{
		RoomID: room.ID,
		Hint:   hint(outcome),
	}
	if outcome != model.OutcomeCorrect {
		id := room.CurrentPlayer().ID
		resp.NextPlayerID = &id
	}
	ctx.JSON(http.StatusOK, resp)
}

type StatusResponseDTO struct {
	RoomID          string  `json:"room_id"`
	Status          string  `json:"status"`
	CurrentPlayerID *string `json:"current_player_id"`
	Low             int     `json:"low"`
	High            int     `json:"high"`
	GuessCount      int     `json:"guess_count"`
}

func (c *Controller) status(ctx *gin.Context) {
	roomID := ctx.Param("room_id")

	room, err := c.usecase.Room(ctx, roomID)
	if err != nil {
		c.respondError(ctx, "failed to get status", err)
		return
	}

	resp := StatusResponseDTO{
		RoomID:     room.ID,
		Status:     string(room.Status),
		Low:        room.Low,
		High:       room.High,
		GuessCount: len(room.Guesses),
	}
	if current := room.CurrentPlayer(); current != nil && room.Status == model.StatusInProgress {
		id := current.ID
		resp.CurrentPlayerID = &id
	}
	ctx.JSON(http.StatusOK, resp)
}

type VoteRematchRequestDTO struct {
	PlayerID string `json:"player_id" binding:"required"`
	Want     *bool  `json:"want" binding:"required"`
}

func (c *Controller) voteRematch(ctx *gin.Context) {
	roomID := ctx.Param("room_id")

	var req VoteRematchRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request body",
		})
		return
	}

	room, err := c.usecase.VoteRematch(ctx, roomID, req.PlayerID, *req.Want)
	if err != nil {
		c.respondError(ctx, "failed to vote rematch", err)
		return
	}

	ctx.JSON(http.StatusOK, http_room.NewRoomViewDTO(room))
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
