package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// import the Postgres driver to register it with the database/sql package.
	_ "github.com/lib/pq"
)

var ErrEmptyDSN = errors.New("postgres dsn is empty")

type PostgresStorage struct {
	Connection *sql.DB
}

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	conn.SetMaxOpenConns(16)
	conn.SetMaxIdleConns(8)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &PostgresStorage{Connection: conn}, nil
}

func (that *PostgresStorage) Init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS leaderboard_records (
		leaderboard_id TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		score BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (leaderboard_id, owner_id)
	)`

	if _, err := that.Connection.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	return nil
}

func (that *PostgresStorage) Close() error {
	return that.Connection.Close()
}
