package usecase_match

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/janlopes/HiLo-Game/internal/model"
)

var (
	ErrMatchNotFound = errors.New("no such match")
	ErrInternal      = errors.New("internal error")

	// ErrIntegrity marks an aggregate invariant violation: a room handed in
	// for archival that is not a finished match with a winning guess. It is
	// never retried.
	ErrIntegrity = errors.New("integrity violation")
)

//go:generate mockery --name=MatchRepository --output=./mocks/repository --filename=repository.go
type MatchRepository interface {
	Append(ctx context.Context, record model.MatchRecord) error
	List(ctx context.Context) ([]model.MatchSummary, error)
	ByID(ctx context.Context, id uuid.UUID) (*model.MatchRecord, error)
}

type Usecase struct {
	matches MatchRepository
	logger  *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(matches MatchRepository, opts ...Option) *Usecase {
	u := &Usecase{
		matches: matches,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ArchiveFinished derives the durable MatchRecord from a finished room and
// appends it to the match log. Duplicate appends on retry are an acceptable
// degradation; each append gets its own record id.
func (u *Usecase) ArchiveFinished(ctx context.Context, room *model.Room) error {
	record, err := BuildRecord(room)
	if err != nil {
		return err
	}
	if err := u.matches.Append(ctx, record); err != nil {
		return errors.Join(ErrInternal, err)
	}
	u.logger.Info("match archived",
		slog.String("match_id", record.ID.String()),
		slog.String("room_id", record.RoomID),
		slog.String("winner_id", record.WinnerID))
	return nil
}

// BuildRecord snapshots a finished room into an immutable MatchRecord. The
// match start is taken from the first guess so rematches in a long-lived
// room report their own span, not the room's creation time.
func BuildRecord(room *model.Room) (model.MatchRecord, error) {
	if room.Status != model.StatusFinished {
		return model.MatchRecord{}, errors.Join(ErrIntegrity, errors.New("room is not finished"))
	}
	winning := room.WinningGuess()
	if winning == nil {
		return model.MatchRecord{}, errors.Join(ErrIntegrity, errors.New("finished room has no winning guess"))
	}
	winner := room.FindPlayer(winning.PlayerID)
	if winner == nil {
		return model.MatchRecord{}, errors.Join(ErrIntegrity, errors.New("winning guess belongs to no player"))
	}

	startedAt := room.CreatedAt
	if len(room.Guesses) > 0 {
		startedAt = room.Guesses[0].At
	}

	players := make([]model.PlayerSnapshot, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, model.PlayerSnapshot{ID: p.ID, Name: p.Name})
	}

	guesses := make([]model.GuessLogEntry, 0, len(room.Guesses))
	for _, g := range room.Guesses {
		name := g.PlayerID
		if p := room.FindPlayer(g.PlayerID); p != nil {
			name = p.Name
		}
		guesses = append(guesses, model.GuessLogEntry{
			PlayerID:   g.PlayerID,
			PlayerName: name,
			Value:      g.Value,
			Outcome:    g.Outcome,
			At:         g.At,
		})
	}

	return model.MatchRecord{
		ID:         uuid.New(),
		RoomID:     room.ID,
		RoomName:   room.Name,
		Low:        room.Low,
		High:       room.High,
		Secret:     room.Secret,
		StartedAt:  startedAt,
		EndedAt:    winning.At,
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Players:    players,
		Guesses:    guesses,
	}, nil
}

func (u *Usecase) List(ctx context.Context) ([]model.MatchSummary, error) {
	summaries, err := u.matches.List(ctx)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return summaries, nil
}

func (u *Usecase) ByID(ctx context.Context, id uuid.UUID) (*model.MatchRecord, error) {
	record, err := u.matches.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, errors.Join(ErrInternal, err)
	}
	return record, nil
}
