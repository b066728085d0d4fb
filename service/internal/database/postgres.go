// internal/database/postgres.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS declare_rounds (
	id          BIGSERIAL PRIMARY KEY,
	game_id     UUID        NOT NULL,
	round_num   INTEGER     NOT NULL,
	declarer    TEXT        NOT NULL,
	challenged  BOOLEAN     NOT NULL,
	scores      JSONB       NOT NULL,
	hand_points JSONB       NOT NULL,
	eliminated  JSONB       NOT NULL,
	winner      TEXT        NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS declare_rounds_game_idx ON declare_rounds (game_id, round_num);
`

// PostgresStore writes round records through a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url and creates the rounds table when missing.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// SaveRound inserts one round record.
func (s *PostgresStore) SaveRound(ctx context.Context, rec RoundRecord) error {
	if err := rec.normalize(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO declare_rounds (game_id, round_num, declarer, challenged, scores, hand_points, eliminated, winner, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.GameID,
		rec.RoundNum,
		rec.Declarer,
		rec.Challenged,
		rec.Scores,
		rec.HandPoints,
		rec.Eliminated,
		rec.Winner,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert round %d: %w", rec.RoundNum, err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
