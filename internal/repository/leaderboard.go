package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

type LeaderboardRepository interface {
	Increment(ctx context.Context, leaderboardID, ownerID string, score int64) error
	Top(ctx context.Context, leaderboardID string, limit int) ([]entity.LeaderboardRecord, error)
}

type dbLeaderboard struct {
	client *redis.Client
}

// NewLeaderboardRepository keeps scores in a sorted set per leaderboard.
func NewLeaderboardRepository(client *redis.Client) LeaderboardRepository {
	return &dbLeaderboard{
		client: client,
	}
}

func leaderboardKey(leaderboardID string) string {
	return "leaderboard:" + leaderboardID
}

func (that *dbLeaderboard) Increment(ctx context.Context, leaderboardID, ownerID string, score int64) error {
	if err := that.client.ZIncrBy(ctx, leaderboardKey(leaderboardID), float64(score), ownerID).Err(); err != nil {
		return fmt.Errorf("failed to increment score: %w", err)
	}

	return nil
}

func (that *dbLeaderboard) Top(ctx context.Context, leaderboardID string, limit int) ([]entity.LeaderboardRecord, error) {
	if limit <= 0 {
		return []entity.LeaderboardRecord{}, nil
	}

	members, err := that.client.ZRevRangeWithScores(ctx, leaderboardKey(leaderboardID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	records := make([]entity.LeaderboardRecord, 0, len(members))
	for i, member := range members {
		ownerID, _ := member.Member.(string)

		records = append(records, entity.LeaderboardRecord{
			OwnerID: ownerID,
			Score:   int64(member.Score),
			Rank:    int64(i + 1),
		})
	}

	return records, nil
}
