package model

import (
	"errors"
	"fmt"
	"time"
)

// Error roots used to classify aggregate rule violations.
// Callers dispatch with errors.Is on the root.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrInvalidRange     = fmt.Errorf("%w: low must be less than high", ErrValidation)
	ErrSecretOutOfRange = fmt.Errorf("%w: secret must be within [low, high]", ErrValidation)
	ErrGuessOutOfRange  = fmt.Errorf("%w: guess must be within [low, high]", ErrValidation)
	ErrNoPlayers        = fmt.Errorf("%w: need at least 1 player to start", ErrConflict)
	ErrNotInLobby       = fmt.Errorf("%w: match already started", ErrConflict)
	ErrNotInProgress    = fmt.Errorf("%w: match not in progress", ErrConflict)
	ErrNotYourTurn      = fmt.Errorf("%w: not your turn", ErrConflict)
	ErrUnknownPlayer    = fmt.Errorf("%w: player not in room", ErrConflict)
)

type Status string

const (
	StatusLobby      Status = "lobby"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

type Outcome string

const (
	OutcomeTooLow  Outcome = "too_low"
	OutcomeTooHigh Outcome = "too_high"
	OutcomeCorrect Outcome = "correct"
)

type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	WantsRematch bool   `json:"wants_rematch"`
}

type Guess struct {
	PlayerID string    `json:"player_id"`
	Value    int       `json:"value"`
	At       time.Time `json:"at"`
	Outcome  Outcome   `json:"outcome"`
}

// RematchQuorum is the number of yes-votes that triggers a rematch reset,
// regardless of room size.
const RematchQuorum = 2

// Room is the aggregate for one game instance. All methods are pure in-memory
// transitions; persistence and I/O live elsewhere.
type Room struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Low                int       `json:"low"`
	High               int       `json:"high"`
	Secret             int       `json:"secret"`
	Status             Status    `json:"status"`
	Players            []Player  `json:"players"`
	CurrentPlayerIndex int       `json:"current_player_index"`
	Guesses            []Guess   `json:"guesses"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewRoom builds a Lobby room. The room name doubles as its identifier.
func NewRoom(name string, low, high, secret int, createdAt time.Time) (*Room, error) {
	if low >= high {
		return nil, ErrInvalidRange
	}
	if secret < low || secret > high {
		return nil, ErrSecretOutOfRange
	}
	return &Room{
		ID:        name,
		Name:      name,
		Low:       low,
		High:      high,
		Secret:    secret,
		Status:    StatusLobby,
		Players:   []Player{},
		Guesses:   []Guess{},
		CreatedAt: createdAt,
	}, nil
}

// CurrentPlayer returns nil while the room has no players.
func (r *Room) CurrentPlayer() *Player {
	if len(r.Players) == 0 {
		return nil
	}
	return &r.Players[r.CurrentPlayerIndex%len(r.Players)]
}

func (r *Room) FindPlayer(playerID string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

// AddPlayer appends p to the turn order. Adding an already-present player id
// is a no-op.
func (r *Room) AddPlayer(p Player) {
	if r.FindPlayer(p.ID) != nil {
		return
	}
	r.Players = append(r.Players, p)
}

func (r *Room) Start() error {
	if r.Status != StatusLobby {
		return ErrNotInLobby
	}
	if len(r.Players) == 0 {
		return ErrNoPlayers
	}
	r.Status = StatusInProgress
	r.CurrentPlayerIndex = 0
	return nil
}

// ApplyGuess records a guess for the current player. On a miss the turn
// advances; on a correct guess the room transitions to Finished and the
// index is left untouched.
func (r *Room) ApplyGuess(playerID string, value int, at time.Time) (Outcome, error) {
	if r.Status != StatusInProgress {
		return "", ErrNotInProgress
	}
	current := r.CurrentPlayer()
	if current == nil || current.ID != playerID {
		return "", ErrNotYourTurn
	}
	if value < r.Low || value > r.High {
		return "", ErrGuessOutOfRange
	}

	var outcome Outcome
	switch {
	case value == r.Secret:
		outcome = OutcomeCorrect
	case value < r.Secret:
		outcome = OutcomeTooLow
	default:
		outcome = OutcomeTooHigh
	}

	r.Guesses = append(r.Guesses, Guess{
		PlayerID: playerID,
		Value:    value,
		At:       at,
		Outcome:  outcome,
	})

	if outcome == OutcomeCorrect {
		r.Status = StatusFinished
	} else {
		r.CurrentPlayerIndex = (r.CurrentPlayerIndex + 1) % len(r.Players)
	}
	return outcome, nil
}

func (r *Room) SetRematchVote(playerID string, want bool) error {
	p := r.FindPlayer(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	p.WantsRematch = want
	return nil
}

func (r *Room) rematchVotes() int {
	n := 0
	for i := range r.Players {
		if r.Players[i].WantsRematch {
			n++
		}
	}
	return n
}

// EvaluateRematch resets the room for a new match when it is Finished and at
// least RematchQuorum players voted yes. newSecret replaces the secret on
// reset and is ignored otherwise. Reports whether the reset happened.
func (r *Room) EvaluateRematch(newSecret int) bool {
	if r.Status != StatusFinished || r.rematchVotes() < RematchQuorum {
		return false
	}
	r.Guesses = []Guess{}
	for i := range r.Players {
		r.Players[i].WantsRematch = false
	}
	r.Secret = newSecret
	r.Status = StatusInProgress
	r.CurrentPlayerIndex = 0
	return true
}

// WinningGuess returns the last correct guess, nil if there is none.
func (r *Room) WinningGuess() *Guess {
	for i := len(r.Guesses) - 1; i >= 0; i-- {
		if r.Guesses[i].Outcome == OutcomeCorrect {
			return &r.Guesses[i]
		}
	}
	return nil
}
