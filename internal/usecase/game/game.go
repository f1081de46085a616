package usecase_game

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/janlopes/HiLo-Game/internal/model"
)

var (
	ErrRoomNotFound = errors.New("no such room")
	ErrConcurrency  = errors.New("room is busy")
	ErrInternal     = errors.New("internal error")
)

// Event names pushed to room subscribers after a durable store write.
const (
	EventPlayerJoined   = "playerJoined"
	EventTurnChanged    = "turnChanged"
	EventGuessMade      = "guessMade"
	EventMatchEnded     = "matchEnded"
	EventVoteUpdated    = "voteUpdated"
	EventRematchStarted = "rematchStarted"
)

// RoomTopic is the fan-out topic for one room's subscribers.
func RoomTopic(roomID string) string {
	return "room:" + roomID
}

//go:generate mockery --name=RoomRepository --output=./mocks/repository --filename=repository.go
type RoomRepository interface {
	Load(ctx context.Context, roomID string) (*model.Room, error)
	Save(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, roomID string) error
}

//go:generate mockery --name=Archiver --output=./mocks/archiver --filename=archiver.go
type Archiver interface {
	ArchiveFinished(ctx context.Context, room *model.Room) error
}

type Notifier interface {
	Broadcast(topic string, event string, payload any)
}

// Locker serializes mutating use cases per room id. The store offers no
// atomic read-modify-write, so the lock must span the whole load-mutate-save
// sequence.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

type Usecase struct {
	rooms    RoomRepository
	archiver Archiver
	notifier Notifier
	locker   Locker

	logger *slog.Logger
	secret func(low, high int) int
	now    func() time.Time
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

// WithSecretSource replaces the secret draw, e.g. with a fixed value in
// tests.
func WithSecretSource(draw func(low, high int) int) Option {
	return func(u *Usecase) {
		u.secret = draw
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func New(
	rooms RoomRepository,
	archiver Archiver,
	notifier Notifier,
	locker Locker,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		rooms:    rooms,
		archiver: archiver,
		notifier: notifier,
		locker:   locker,
		logger:   slog.Default(),
		secret: func(low, high int) int {
			return low + rand.Intn(high-low+1)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CreateRoom persists a fresh Lobby room under the given name. The name is
// the room id; creating twice with the same name overwrites the stored
// state, last writer wins.
func (u *Usecase) CreateRoom(ctx context.Context, name string, low, high int, secret *int) (*model.Room, error) {
	if low >= high {
		return nil, model.ErrInvalidRange
	}

	s := u.secret(low, high)
	if secret != nil {
		s = *secret
	}

	room, err := model.NewRoom(name, low, high, s, u.now())
	if err != nil {
		return nil, err
	}

	unlock, err := u.locker.Acquire(ctx, room.ID)
	if err != nil {
		return nil, errors.Join(ErrConcurrency, err)
	}
	defer unlock()

	if err := u.rooms.Save(ctx, room); err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return room, nil
}

// Room loads a snapshot without taking the room's lock. Readers may observe
// slightly stale state; that is acceptable for status queries.
func (u *Usecase) Room(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := u.rooms.Load(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, errors.Join(ErrInternal, err)
	}
	return room, nil
}

func (u *Usecase) Join(ctx context.Context, roomID, playerID, playerName string) (*model.Room, error) {
	return u.mutate(ctx, roomID, func(room *model.Room) error {
		if room.Status != model.StatusLobby {
			return model.ErrNotInLobby
		}
		room.AddPlayer(model.Player{ID: playerID, Name: playerName})
		return nil
	}, func(room *model.Room) {
		u.notifier.Broadcast(RoomTopic(roomID), EventPlayerJoined, map[string]any{
			"player_id":   playerID,
			"player_name": playerName,
			"players":     len(room.Players),
		})
	})
}

func (u *Usecase) Start(ctx context.Context, roomID string) (*model.Room, error) {
	return u.mutate(ctx, roomID, func(room *model.Room) error {
		return room.Start()
	}, func(room *model.Room) {
		u.notifier.Broadcast(RoomTopic(roomID), EventTurnChanged, map[string]any{
			"current_player_id": room.CurrentPlayer().ID,
		})
	})
}

// Guess applies one guess for playerID. On the winning guess the finished
// match is handed to the archiver; an archival failure never rolls back the
// already-persisted room.
func (u *Usecase) Guess(ctx context.Context, roomID, playerID string, value int) (model.Outcome, *model.Room, error) {
	var outcome model.Outcome
	room, err := u.mutate(ctx, roomID, func(room *model.Room) error {
		var err error
		outcome, err = room.ApplyGuess(playerID, value, u.now())
		return err
	}, nil)
	if err != nil {
		return "", nil, err
	}

	if outcome == model.OutcomeCorrect {
		if err := u.archiver.ArchiveFinished(ctx, room); err != nil {
			u.logger.Error("failed to archive finished match",
				slog.String("room_id", roomID),
				slog.String("error", err.Error()))
		}
		u.notifier.Broadcast(RoomTopic(roomID), EventMatchEnded, map[string]any{
			"winner_id": playerID,
		})
	} else {
		u.notifier.Broadcast(RoomTopic(roomID), EventGuessMade, map[string]any{
			"player_id": playerID,
			"value":     value,
			"outcome":   outcome,
		})
		u.notifier.Broadcast(RoomTopic(roomID), EventTurnChanged, map[string]any{
			"current_player_id": room.CurrentPlayer().ID,
		})
	}
	return outcome, room, nil
}

func (u *Usecase) VoteRematch(ctx context.Context, roomID, playerID string, want bool) (*model.Room, error) {
	restarted := false
	room, err := u.mutate(ctx, roomID, func(room *model.Room) error {
		if err := room.SetRematchVote(playerID, want); err != nil {
			return err
		}
		restarted = room.EvaluateRematch(u.secret(room.Low, room.High))
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}

	votes := make([]map[string]any, 0, len(room.Players))
	for _, p := range room.Players {
		votes = append(votes, map[string]any{
			"player_id":     p.ID,
			"wants_rematch": p.WantsRematch,
		})
	}
	u.notifier.Broadcast(RoomTopic(roomID), EventVoteUpdated, map[string]any{
		"votes": votes,
	})
	if restarted {
		u.notifier.Broadcast(RoomTopic(roomID), EventRematchStarted, map[string]any{
			"current_player_id": room.CurrentPlayer().ID,
		})
	}
	return room, nil
}

// mutate runs one load-mutate-save sequence under the room's lock. notify, if
// set, runs after the save made the change durable.
func (u *Usecase) mutate(ctx context.Context, roomID string, op func(*model.Room) error, notify func(*model.Room)) (*model.Room, error) {
	unlock, err := u.locker.Acquire(ctx, roomID)
	if err != nil {
		return nil, errors.Join(ErrConcurrency, err)
	}
	defer unlock()

	room, err := u.rooms.Load(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, errors.Join(ErrInternal, err)
	}

	if err := op(room); err != nil {
		return nil, err
	}

	if err := u.rooms.Save(ctx, room); err != nil {
		return nil, errors.Join(ErrInternal, err)
	}

	if notify != nil {
		notify(room)
	}
	return room, nil
}
