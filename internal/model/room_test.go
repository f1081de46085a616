package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRoom(t *testing.T) *Room {
	t.Helper()
	room, err := NewRoom("Lobby", 1, 100, 42, time.Now())
	require.NoError(t, err)
	return room
}

func startedRoom(t *testing.T) *Room {
	t.Helper()
	room := validRoom(t)
	room.AddPlayer(Player{ID: "p1", Name: "Alice"})
	room.AddPlayer(Player{ID: "p2", Name: "Bob"})
	require.NoError(t, room.Start())
	return room
}

func TestNewRoom(t *testing.T) {
	testCases := []struct {
		name        string
		low, high   int
		secret      int
		expectedErr error
	}{
		{name: "valid range", low: 1, high: 100, secret: 42},
		{name: "secret at low bound", low: 5, high: 10, secret: 5},
		{name: "secret at high bound", low: 5, high: 10, secret: 10},
		{name: "low equals high", low: 7, high: 7, secret: 7, expectedErr: ErrInvalidRange},
		{name: "low above high", low: 10, high: 1, secret: 5, expectedErr: ErrInvalidRange},
		{name: "secret below range", low: 5, high: 10, secret: 4, expectedErr: ErrSecretOutOfRange},
		{name: "secret above range", low: 5, high: 10, secret: 11, expectedErr: ErrSecretOutOfRange},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			room, err := NewRoom("test", tc.low, tc.high, tc.secret, time.Now())

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Nil(t, room)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusLobby, room.Status)
			assert.Equal(t, "test", room.ID)
			assert.Empty(t, room.Players)
			assert.Empty(t, room.Guesses)
			assert.GreaterOrEqual(t, room.Secret, room.Low)
			assert.LessOrEqual(t, room.Secret, room.High)
		})
	}
}

func TestAddPlayerIsIdempotent(t *testing.T) {
	room := validRoom(t)

	room.AddPlayer(Player{ID: "p1", Name: "Alice"})
	room.AddPlayer(Player{ID: "p2", Name: "Bob"})
	room.AddPlayer(Player{ID: "p1", Name: "Alice again"})

	require.Len(t, room.Players, 2)
	assert.Equal(t, "Alice", room.Players[0].Name)
	assert.Equal(t, "Bob", room.Players[1].Name)
}

func TestStart(t *testing.T) {
	t.Run("fails with no players", func(t *testing.T) {
		room := validRoom(t)

		err := room.Start()

		assert.ErrorIs(t, err, ErrNoPlayers)
		assert.Equal(t, StatusLobby, room.Status)
	})

	t.Run("allows a single player", func(t *testing.T) {
		room := validRoom(t)
		room.AddPlayer(Player{ID: "p1", Name: "Alice"})

		require.NoError(t, room.Start())

		assert.Equal(t, StatusInProgress, room.Status)
		assert.Equal(t, "p1", room.CurrentPlayer().ID)
	})

	t.Run("fails when already started", func(t *testing.T) {
		room := startedRoom(t)

		err := room.Start()

		assert.ErrorIs(t, err, ErrNotInLobby)
	})
}

func TestApplyGuess(t *testing.T) {
	now := time.Now()

	t.Run("rejects out of turn guess", func(t *testing.T) {
		room := startedRoom(t)

		_, err := room.ApplyGuess("p2", 10, now)

		assert.ErrorIs(t, err, ErrNotYourTurn)
		assert.Empty(t, room.Guesses)
	})

	t.Run("rejects guess before start", func(t *testing.T) {
		room := validRoom(t)
		room.AddPlayer(Player{ID: "p1", Name: "Alice"})

		_, err := room.ApplyGuess("p1", 10, now)

		assert.ErrorIs(t, err, ErrNotInProgress)
	})

	t.Run("out of range guess mutates nothing", func(t *testing.T) {
		room := startedRoom(t)

		_, err := room.ApplyGuess("p1", 101, now)

		assert.ErrorIs(t, err, ErrGuessOutOfRange)
		assert.Empty(t, room.Guesses)
		assert.Equal(t, StatusInProgress, room.Status)
		assert.Equal(t, "p1", room.CurrentPlayer().ID)
	})

	t.Run("miss advances turn in insertion order and wraps", func(t *testing.T) {
		room := startedRoom(t)

		outcome, err := room.ApplyGuess("p1", 10, now)
		require.NoError(t, err)
		assert.Equal(t, OutcomeTooLow, outcome)
		assert.Equal(t, "p2", room.CurrentPlayer().ID)

		outcome, err = room.ApplyGuess("p2", 90, now)
		require.NoError(t, err)
		assert.Equal(t, OutcomeTooHigh, outcome)
		assert.Equal(t, "p1", room.CurrentPlayer().ID)
	})

	t.Run("correct guess finishes the match", func(t *testing.T) {
		room := startedRoom(t)

		outcome, err := room.ApplyGuess("p1", 42, now)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCorrect, outcome)
		assert.Equal(t, StatusFinished, room.Status)
		require.NotNil(t, room.WinningGuess())
		assert.Equal(t, "p1", room.WinningGuess().PlayerID)

		_, err = room.ApplyGuess("p2", 42, now)
		assert.ErrorIs(t, err, ErrNotInProgress)
	})

	t.Run("correct guess is always the last guess", func(t *testing.T) {
		room := startedRoom(t)

		_, err := room.ApplyGuess("p1", 10, now)
		require.NoError(t, err)
		_, err = room.ApplyGuess("p2", 42, now)
		require.NoError(t, err)

		require.NotEmpty(t, room.Guesses)
		assert.Equal(t, OutcomeCorrect, room.Guesses[len(room.Guesses)-1].Outcome)
	})
}

func TestRematch(t *testing.T) {
	now := time.Now()

	finished := func(t *testing.T) *Room {
		room := startedRoom(t)
		_, err := room.ApplyGuess("p1", 42, now)
		require.NoError(t, err)
		return room
	}

	t.Run("vote for unknown player fails", func(t *testing.T) {
		room := finished(t)

		err := room.SetRematchVote("ghost", true)

		assert.ErrorIs(t, err, ErrUnknownPlayer)
	})

	t.Run("single vote does not reset", func(t *testing.T) {
		room := finished(t)
		require.NoError(t, room.SetRematchVote("p1", true))

		assert.False(t, room.EvaluateRematch(50))
		assert.Equal(t, StatusFinished, room.Status)
		assert.NotEmpty(t, room.Guesses)
	})

	t.Run("no reset while match in progress", func(t *testing.T) {
		room := startedRoom(t)
		require.NoError(t, room.SetRematchVote("p1", true))
		require.NoError(t, room.SetRematchVote("p2", true))

		assert.False(t, room.EvaluateRematch(50))
		assert.Equal(t, StatusInProgress, room.Status)
	})

	t.Run("two votes reset the finished room", func(t *testing.T) {
		room := finished(t)
		require.NoError(t, room.SetRematchVote("p1", true))
		require.NoError(t, room.SetRematchVote("p2", true))

		assert.True(t, room.EvaluateRematch(50))
		assert.Equal(t, StatusInProgress, room.Status)
		assert.Equal(t, 50, room.Secret)
		assert.Empty(t, room.Guesses)
		assert.Equal(t, "p1", room.CurrentPlayer().ID)
		for _, p := range room.Players {
			assert.False(t, p.WantsRematch)
		}
	})

	t.Run("retracted vote breaks quorum", func(t *testing.T) {
		room := finished(t)
		require.NoError(t, room.SetRematchVote("p1", true))
		require.NoError(t, room.SetRematchVote("p2", true))
		require.NoError(t, room.SetRematchVote("p2", false))

		assert.False(t, room.EvaluateRematch(50))
		assert.Equal(t, StatusFinished, room.Status)
	})
}
