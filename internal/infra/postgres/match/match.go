package infra_postgres_match

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/janlopes/HiLo-Game/internal/model"
	usecase_match "github.com/janlopes/HiLo-Game/internal/usecase/match"
	"github.com/jmoiron/sqlx"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type matchDTO struct {
	ID         uuid.UUID    `db:"id"`
	RoomID     string       `db:"room_id"`
	RoomName   string       `db:"room_name"`
	Low        int          `db:"low"`
	High       int          `db:"high"`
	Secret     int          `db:"secret"`
	StartedAt  sql.NullTime `db:"started_at"`
	EndedAt    sql.NullTime `db:"ended_at"`
	WinnerID   string       `db:"winner_id"`
	WinnerName string       `db:"winner_name"`
}

type playerDTO struct {
	MatchID    uuid.UUID `db:"match_id"`
	PlayerID   string    `db:"player_id"`
	PlayerName string    `db:"player_name"`
}

type guessDTO struct {
	ID         uuid.UUID    `db:"id"`
	MatchID    uuid.UUID    `db:"match_id"`
	Position   int          `db:"position"`
	PlayerID   string       `db:"player_id"`
	PlayerName string       `db:"player_name"`
	Value      int          `db:"value"`
	Outcome    string       `db:"outcome"`
	MadeAt     sql.NullTime `db:"made_at"`
}

// Append writes the match, its player snapshot and its full guess log in one
// transaction.
func (d *Driver) Append(ctx context.Context, record model.MatchRecord) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insertMatch = `
		INSERT INTO matches (id, room_id, room_name, low, high, secret, started_at, ended_at, winner_id, winner_name)
		VALUES (:id, :room_id, :room_name, :low, :high, :secret, :started_at, :ended_at, :winner_id, :winner_name)
	`
	_, err = tx.NamedExecContext(ctx, insertMatch, matchDTO{
		ID:         record.ID,
		RoomID:     record.RoomID,
		RoomName:   record.RoomName,
		Low:        record.Low,
		High:       record.High,
		Secret:     record.Secret,
		StartedAt:  sql.NullTime{Time: record.StartedAt, Valid: true},
		EndedAt:    sql.NullTime{Time: record.EndedAt, Valid: true},
		WinnerID:   record.WinnerID,
		WinnerName: record.WinnerName,
	})
	if err != nil {
		return err
	}

	const insertPlayer = `
		INSERT INTO match_players (match_id, player_id, player_name)
		VALUES (:match_id, :player_id, :player_name)
	`
	for _, p := range record.Players {
		if _, err := tx.NamedExecContext(ctx, insertPlayer, playerDTO{
			MatchID:    record.ID,
			PlayerID:   p.ID,
			PlayerName: p.Name,
		}); err != nil {
			return err
		}
	}

	const insertGuess = `
		INSERT INTO match_guesses (id, match_id, position, player_id, player_name, value, outcome, made_at)
		VALUES (:id, :match_id, :position, :player_id, :player_name, :value, :outcome, :made_at)
	`
	for i, g := range record.Guesses {
		if _, err := tx.NamedExecContext(ctx, insertGuess, guessDTO{
			ID:         uuid.New(),
			MatchID:    record.ID,
			Position:   i,
			PlayerID:   g.PlayerID,
			PlayerName: g.PlayerName,
			Value:      g.Value,
			Outcome:    string(g.Outcome),
			MadeAt:     sql.NullTime{Time: g.At, Valid: true},
		}); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *Driver) List(ctx context.Context) ([]model.MatchSummary, error) {
	const query = `
		SELECT id, room_id, room_name, winner_name, started_at, ended_at
		FROM matches
		ORDER BY ended_at DESC
	`
	var rows []matchDTO
	if err := d.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	summaries := make([]model.MatchSummary, 0, len(rows))
	for _, m := range rows {
		summaries = append(summaries, model.MatchSummary{
			ID:         m.ID,
			RoomID:     m.RoomID,
			RoomName:   m.RoomName,
			WinnerName: m.WinnerName,
			StartedAt:  m.StartedAt.Time,
			EndedAt:    m.EndedAt.Time,
		})
	}
	return summaries, nil
}

func (d *Driver) ByID(ctx context.Context, id uuid.UUID) (*model.MatchRecord, error) {
	const query = `
		SELECT id, room_id, room_name, low, high, secret, started_at, ended_at, winner_id, winner_name
		FROM matches
		WHERE id = $1
	`
	var m matchDTO
	if err := d.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase_match.ErrMatchNotFound
		}
		return nil, err
	}

	const playersQuery = `
		SELECT match_id, player_id, player_name
		FROM match_players
		WHERE match_id = $1
	`
	var players []playerDTO
	if err := d.db.SelectContext(ctx, &players, playersQuery, id); err != nil {
		return nil, fmt.Errorf("load players of match %s: %w", id, err)
	}

	const guessesQuery = `
		SELECT id, match_id, position, player_id, player_name, value, outcome, made_at
		FROM match_guesses
		WHERE match_id = $1
		ORDER BY position ASC
	`
	var guesses []guessDTO
	if err := d.db.SelectContext(ctx, &guesses, guessesQuery, id); err != nil {
		return nil, fmt.Errorf("load guess log of match %s: %w", id, err)
	}

	record := &model.MatchRecord{
		ID:         m.ID,
		RoomID:     m.RoomID,
		RoomName:   m.RoomName,
		Low:        m.Low,
		High:       m.High,
		Secret:     m.Secret,
		StartedAt:  m.StartedAt.Time,
		EndedAt:    m.EndedAt.Time,
		WinnerID:   m.WinnerID,
		WinnerName: m.WinnerName,
	}
	for _, p := range players {
		record.Players = append(record.Players, model.PlayerSnapshot{
			ID:   p.PlayerID,
			Name: p.PlayerName,
		})
	}
	for _, g := range guesses {
		record.Guesses = append(record.Guesses, model.GuessLogEntry{
			PlayerID:   g.PlayerID,
			PlayerName: g.PlayerName,
			Value:      g.Value,
			Outcome:    model.Outcome(g.Outcome),
			At:         g.MadeAt.Time,
		})
	}
	return record, nil
}
