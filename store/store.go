package store

import (
	"context"
	"fmt"
	"time"

	"github.com/undeconstructed/godominion/config"
	"github.com/undeconstructed/godominion/game"
)

// GameRecord is a finished game.
type GameRecord struct {
	LobbyID    string              `json:"lobby_id"`
	Kingdom    []string            `json:"kingdom"`
	Results    []game.PlayerResult `json:"results"`
	FinishedAt time.Time           `json:"finished_at"`
}

// Store keeps finished games.
type Store interface {
	SaveGame(ctx context.Context, rec GameRecord) error
	// Recent is the latest games, newest first.
	Recent(ctx context.Context, limit int) ([]GameRecord, error)
	Close() error
}

// Leaderboard is for stores that add up points across games.
type Leaderboard interface {
	Leaders(ctx context.Context, limit int) ([]game.PlayerResult, error)
}

// Nop keeps nothing.
type Nop struct{}

func (Nop) SaveGame(context.Context, GameRecord) error        { return nil }
func (Nop) Recent(context.Context, int) ([]GameRecord, error) { return nil, nil }
func (Nop) Close() error                                      { return nil }

// Open makes the store the config asks for.
func Open(ctx context.Context, c config.StoreConfig) (Store, error) {
	switch c.Driver {
	case "", "none":
		return Nop{}, nil
	case "sqlite":
		return OpenSQLite(c.SQLitePath)
	case "redis":
		return NewRedis(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
}
