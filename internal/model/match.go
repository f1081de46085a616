package model

import (
	"time"

	"github.com/google/uuid"
)

type PlayerSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type GuessLogEntry struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Value      int       `json:"value"`
	Outcome    Outcome   `json:"outcome"`
	At         time.Time `json:"at"`
}

// MatchRecord is the immutable durable summary of one finished match.
type MatchRecord struct {
	ID         uuid.UUID        `json:"id"`
	RoomID     string           `json:"room_id"`
	RoomName   string           `json:"room_name"`
	Low        int              `json:"low"`
	High       int              `json:"high"`
	Secret     int              `json:"secret"`
	StartedAt  time.Time        `json:"started_at"`
	EndedAt    time.Time        `json:"ended_at"`
	WinnerID   string           `json:"winner_id"`
	WinnerName string           `json:"winner_name"`
	Players    []PlayerSnapshot `json:"players"`
	Guesses    []GuessLogEntry  `json:"guesses"`
}

// MatchSummary is the listing projection of a MatchRecord.
type MatchSummary struct {
	ID         uuid.UUID `json:"id"`
	RoomID     string    `json:"room_id"`
	RoomName   string    `json:"room_name"`
	WinnerName string    `json:"winner_name"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}
