package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/undeconstructed/godominion/game"

	redis "github.com/redis/go-redis/v9"
)

const (
	gamesKey   = "dominion:games"
	leadersKey = "dominion:leaderboard"
	keepGames  = 100
)

// Redis keeps the latest games in a list and a points leaderboard.
type Redis struct {
	client *redis.Client
}

// NewRedis connects, and fails if the server doesn't answer a ping.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) SaveGame(ctx context.Context, rec GameRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, gamesKey, b)
	pipe.LTrim(ctx, gamesKey, 0, keepGames-1)
	for _, res := range rec.Results {
		pipe.ZIncrBy(ctx, leadersKey, float64(res.Points), res.PlayerID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (r *Redis) Recent(ctx context.Context, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	items, err := r.client.LRange(ctx, gamesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("recent games: %w", err)
	}
	var out []GameRecord
	for _, item := range items {
		var rec GameRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("bad game record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *Redis) Leaders(ctx context.Context, limit int) ([]game.PlayerResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	zs, err := r.client.ZRevRangeWithScores(ctx, leadersKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	var out []game.PlayerResult
	for _, z := range zs {
		id, _ := z.Member.(string)
		out = append(out, game.PlayerResult{PlayerID: id, Points: int(z.Score)})
	}
	return out, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
