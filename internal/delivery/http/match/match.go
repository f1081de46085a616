package http_match

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/janlopes/HiLo-Game/internal/delivery/http/common"
	"github.com/janlopes/HiLo-Game/internal/model"
	usecase_match "github.com/janlopes/HiLo-Game/internal/usecase/match"
)

type Controller struct {
	usecase *usecase_match.Usecase
	logger  *slog.Logger
}

func New(usecase *usecase_match.Usecase) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	matches := router.Group("/matches")
	{
		matches.GET("", c.list)
		matches.GET("/:match_id", c.get)
	}
}

type MatchSummaryDTO struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	RoomName   string    `json:"room_name"`
	WinnerName string    `json:"winner_name"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

func (c *Controller) list(ctx *gin.Context) {
	summaries, err := c.usecase.List(ctx)
	if err != nil {
		c.logger.Error("failed to list matches", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	dtos := make([]MatchSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, MatchSummaryDTO{
			ID:         s.ID.String(),
			RoomID:     s.RoomID,
			RoomName:   s.RoomName,
			WinnerName: s.WinnerName,
			StartedAt:  s.StartedAt,
			EndedAt:    s.EndedAt,
		})
	}
	ctx.JSON(http.StatusOK, dtos)
}

type GuessLogDTO struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Value      int       `json:"value"`
	Outcome    string    `json:"outcome"`
	At         time.Time `json:"at"`
}

type MatchDetailDTO struct {
	MatchSummaryDTO
	Low     int           `json:"low"`
	High    int           `json:"high"`
	Secret  int           `json:"secret"`
	Players []PlayerDTO   `json:"players"`
	Guesses []GuessLogDTO `json:"guesses"`
}

type PlayerDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Controller) get(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("match_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid match id",
		})
		return
	}

	record, err := c.usecase.ByID(ctx, id)
	if err != nil {
		c.logger.Error("failed to get match", slog.String("error", err.Error()))
		if errors.Is(err, usecase_match.ErrMatchNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "match not found",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusOK, newMatchDetailDTO(record))
}

func newMatchDetailDTO(record *model.MatchRecord) MatchDetailDTO {
	detail := MatchDetailDTO{
		MatchSummaryDTO: MatchSummaryDTO{
			ID:         record.ID.String(),
			RoomID:     record.RoomID,
			RoomName:   record.RoomName,
			WinnerName: record.WinnerName,
			StartedAt:  record.StartedAt,
			EndedAt:    record.EndedAt,
		},
		Low:     record.Low,
		High:    record.High,
		Secret:  record.Secret,
		Players: make([]PlayerDTO, 0, len(record.Players)),
		Guesses: make([]GuessLogDTO, 0, len(record.Guesses)),
	}
	for _, p := range record.Players {
		detail.Players = append(detail.Players, PlayerDTO{ID: p.ID, Name: p.Name})
	}
	for _, g := range record.Guesses {
		detail.Guesses = append(detail.Guesses, GuessLogDTO{
			PlayerID:   g.PlayerID,
			PlayerName: g.PlayerName,
			Value:      g.Value,
			Outcome:    string(g.Outcome),
			At:         g.At,
		})
	}
	return detail
}
