package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/undeconstructed/godominion/game"

	_ "modernc.org/sqlite"
)

// SQLite keeps games in a sqlite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens, and if needed creates, the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := migrateUp(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveGame(ctx context.Context, rec GameRecord) error {
	kingdom, err := json.Marshal(rec.Kingdom)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games (lobby_id, kingdom, finished_at) VALUES (?, ?, ?)`,
		rec.LobbyID, string(kingdom), rec.FinishedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, r := range rec.Results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO results (game_id, position, player_id, points) VALUES (?, ?, ?, ?)`,
			id, i, r.PlayerID, r.Points)
		if err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Recent(ctx context.Context, limit int) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lobby_id, kingdom, finished_at FROM games ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var out []GameRecord
	for rows.Next() {
		var id, finished int64
		var rec GameRecord
		var kingdom string
		if err := rows.Scan(&id, &rec.LobbyID, &kingdom, &finished); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(kingdom), &rec.Kingdom); err != nil {
			return nil, fmt.Errorf("game %d kingdom: %w", id, err)
		}
		rec.FinishedAt = time.Unix(0, finished).UTC()
		ids = append(ids, id)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i, id := range ids {
		results, err := s.results(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i].Results = results
	}
	return out, nil
}

func (s *SQLite) results(ctx context.Context, gameID int64) ([]game.PlayerResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, points FROM results WHERE game_id = ? ORDER BY position`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []game.PlayerResult
	for rows.Next() {
		var r game.PlayerResult
		if err := rows.Scan(&r.PlayerID, &r.Points); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Leaders adds up points over all games.
func (s *SQLite) Leaders(ctx context.Context, limit int) ([]game.PlayerResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, SUM(points) AS total FROM results GROUP BY player_id ORDER BY total DESC, player_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaders: %w", err)
	}
	defer rows.Close()

	var out []game.PlayerResult
	for rows.Next() {
		var r game.PlayerResult
		if err := rows.Scan(&r.PlayerID, &r.Points); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
