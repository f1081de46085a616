package usecase_match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/janlopes/HiLo-Game/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	appended []model.MatchRecord
	err      error
}

func (r *fakeRepo) Append(_ context.Context, record model.MatchRecord) error {
	if r.err != nil {
		return r.err
	}
	r.appended = append(r.appended, record)
	return nil
}

func (r *fakeRepo) List(_ context.Context) ([]model.MatchSummary, error) {
	if r.err != nil {
		return nil, r.err
	}
	summaries := make([]model.MatchSummary, 0, len(r.appended))
	for _, m := range r.appended {
		summaries = append(summaries, model.MatchSummary{
			ID:         m.ID,
			RoomID:     m.RoomID,
			RoomName:   m.RoomName,
			WinnerName: m.WinnerName,
			StartedAt:  m.StartedAt,
			EndedAt:    m.EndedAt,
		})
	}
	return summaries, nil
}

func (r *fakeRepo) ByID(_ context.Context, id uuid.UUID) (*model.MatchRecord, error) {
	for i := range r.appended {
		if r.appended[i].ID == id {
			return &r.appended[i], nil
		}
	}
	return nil, ErrMatchNotFound
}

func finishedRoom(t *testing.T) *model.Room {
	t.Helper()

	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	room, err := model.NewRoom("Lobby", 1, 100, 42, base.Add(-time.Hour))
	require.NoError(t, err)
	room.AddPlayer(model.Player{ID: "p1", Name: "Alice"})
	room.AddPlayer(model.Player{ID: "p2", Name: "Bob"})
	require.NoError(t, room.Start())

	_, err = room.ApplyGuess("p1", 10, base)
	require.NoError(t, err)
	_, err = room.ApplyGuess("p2", 90, base.Add(time.Minute))
	require.NoError(t, err)
	_, err = room.ApplyGuess("p1", 42, base.Add(2*time.Minute))
	require.NoError(t, err)
	return room
}

func TestBuildRecord(t *testing.T) {
	t.Run("snapshots a finished room", func(t *testing.T) {
		room := finishedRoom(t)

		record, err := BuildRecord(room)
		require.NoError(t, err)

		assert.Equal(t, "Lobby", record.RoomID)
		assert.Equal(t, 42, record.Secret)
		assert.Equal(t, "p1", record.WinnerID)
		assert.Equal(t, "Alice", record.WinnerName)
		require.Len(t, record.Players, 2)
		require.Len(t, record.Guesses, 3)
		assert.Equal(t, model.OutcomeCorrect, record.Guesses[2].Outcome)
		assert.Equal(t, "Bob", record.Guesses[1].PlayerName)

		// Match span is taken from the guess log, not the room's creation.
		assert.Equal(t, room.Guesses[0].At, record.StartedAt)
		assert.Equal(t, room.Guesses[2].At, record.EndedAt)
	})

	t.Run("room not finished is an integrity violation", func(t *testing.T) {
		room, err := model.NewRoom("Lobby", 1, 100, 42, time.Now())
		require.NoError(t, err)
		room.AddPlayer(model.Player{ID: "p1", Name: "Alice"})
		require.NoError(t, room.Start())

		_, err = BuildRecord(room)
		assert.ErrorIs(t, err, ErrIntegrity)
	})

	t.Run("finished room without winning guess is an integrity violation", func(t *testing.T) {
		room := finishedRoom(t)
		room.Guesses = room.Guesses[:2]

		_, err := BuildRecord(room)
		assert.ErrorIs(t, err, ErrIntegrity)
	})
}

func TestArchiveFinished(t *testing.T) {
	t.Run("appends the derived record", func(t *testing.T) {
		repo := &fakeRepo{}
		usecase := New(repo)

		err := usecase.ArchiveFinished(context.Background(), finishedRoom(t))

		require.NoError(t, err)
		require.Len(t, repo.appended, 1)
		assert.Equal(t, "p1", repo.appended[0].WinnerID)
	})

	t.Run("repository failure wraps internal error", func(t *testing.T) {
		repo := &fakeRepo{err: errors.New("pg down")}
		usecase := New(repo)

		err := usecase.ArchiveFinished(context.Background(), finishedRoom(t))

		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestByID(t *testing.T) {
	repo := &fakeRepo{}
	usecase := New(repo)
	require.NoError(t, usecase.ArchiveFinished(context.Background(), finishedRoom(t)))

	t.Run("finds archived match", func(t *testing.T) {
		record, err := usecase.ByID(context.Background(), repo.appended[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Lobby", record.RoomName)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := usecase.ByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrMatchNotFound)
	})
}
