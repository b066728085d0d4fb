// internal/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS declare_rounds (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id     TEXT    NOT NULL,
	round_num   INTEGER NOT NULL,
	declarer    TEXT    NOT NULL,
	challenged  INTEGER NOT NULL,
	scores      TEXT    NOT NULL,
	hand_points TEXT    NOT NULL,
	eliminated  TEXT    NOT NULL,
	winner      TEXT    NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS declare_rounds_game_idx ON declare_rounds (game_id, round_num);
`

// SQLiteStore writes round records to a local SQLite file. It suits
// development setups without a database server.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single writer keeps in-memory databases on one connection.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// SaveRound inserts one round record.
func (s *SQLiteStore) SaveRound(ctx context.Context, rec RoundRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.normalize(); err != nil {
		return err
	}
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	points, err := json.Marshal(rec.HandPoints)
	if err != nil {
		return fmt.Errorf("marshal hand points: %w", err)
	}
	eliminated, err := json.Marshal(rec.Eliminated)
	if err != nil {
		return fmt.Errorf("marshal eliminated: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO declare_rounds (
	game_id,
	round_num,
	declarer,
	challenged,
	scores,
	hand_points,
	eliminated,
	winner,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		rec.GameID.String(),
		rec.RoundNum,
		rec.Declarer,
		rec.Challenged,
		string(scores),
		string(points),
		string(eliminated),
		rec.Winner,
		rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert round %d: %w", rec.RoundNum, err)
	}
	return nil
}

// Rounds lists the recorded rounds of a game in round order.
func (s *SQLiteStore) Rounds(ctx context.Context, gameID uuid.UUID) ([]RoundRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT round_num, declarer, challenged, scores, hand_points, eliminated, winner, created_at
FROM declare_rounds
WHERE game_id = ?
ORDER BY round_num, id
`, gameID.String())
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var out []RoundRecord
	for rows.Next() {
		rec := RoundRecord{GameID: gameID}
		var scores, points, eliminated string
		var created int64
		if err := rows.Scan(&rec.RoundNum, &rec.Declarer, &rec.Challenged, &scores, &points, &eliminated, &rec.Winner, &created); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		if err := json.Unmarshal([]byte(scores), &rec.Scores); err != nil {
			return nil, fmt.Errorf("decode scores: %w", err)
		}
		if err := json.Unmarshal([]byte(points), &rec.HandPoints); err != nil {
			return nil, fmt.Errorf("decode hand points: %w", err)
		}
		if err := json.Unmarshal([]byte(eliminated), &rec.Eliminated); err != nil {
			return nil, fmt.Errorf("decode eliminated: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
