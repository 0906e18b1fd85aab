package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

type pgLeaderboard struct {
	conn *sql.DB
}

// NewPostgresLeaderboardRepository keeps scores in the leaderboard_records table.
func NewPostgresLeaderboardRepository(conn *sql.DB) LeaderboardRepository {
	return &pgLeaderboard{
		conn: conn,
	}
}

func (that *pgLeaderboard) Increment(ctx context.Context, leaderboardID, ownerID string, score int64) error {
	query := `INSERT INTO leaderboard_records (leaderboard_id, owner_id, score, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (leaderboard_id, owner_id) DO UPDATE SET
			score = leaderboard_records.score + EXCLUDED.score,
			updated_at = EXCLUDED.updated_at`

	if _, err := that.conn.ExecContext(ctx, query, leaderboardID, ownerID, score); err != nil {
		return fmt.Errorf("can't increment score: %w", err)
	}

	return nil
}

func (that *pgLeaderboard) Top(ctx context.Context, leaderboardID string, limit int) ([]entity.LeaderboardRecord, error) {
	if limit <= 0 {
		return []entity.LeaderboardRecord{}, nil
	}

	query := `SELECT owner_id, score FROM leaderboard_records
		WHERE leaderboard_id = $1
		ORDER BY score DESC, owner_id
		LIMIT $2`

	rows, err := that.conn.QueryContext(ctx, query, leaderboardID, limit)
	if err != nil {
		return nil, fmt.Errorf("can't read leaderboard: %w", err)
	}
	defer rows.Close()

	records := make([]entity.LeaderboardRecord, 0, limit)
	for rows.Next() {
		var record entity.LeaderboardRecord
		if err = rows.Scan(&record.OwnerID, &record.Score); err != nil {
			return nil, fmt.Errorf("can't scan leaderboard record: %w", err)
		}

		record.Rank = int64(len(records) + 1)
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate leaderboard: %w", err)
	}

	return records, nil
}
