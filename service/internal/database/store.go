// Package database records completed rounds for auditing. Nothing is read
// back by the game server; the stores are append-only.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RoundRecord is the outcome of one accepted declare.
type RoundRecord struct {
	GameID     uuid.UUID
	RoundNum   int
	Declarer   string
	Challenged bool
	Scores     map[string]int // score delta per player name
	HandPoints map[string]int // hand points per player name at the declare
	Eliminated []string
	Winner     string // empty unless the round ended the game
	CreatedAt  time.Time
}

// RoundStore persists round records.
type RoundStore interface {
	SaveRound(ctx context.Context, rec RoundRecord) error
	Close() error
}

// Open picks a store by URL scheme: postgres:// or postgresql:// for
// PostgreSQL, sqlite://path or file: for SQLite.
func Open(ctx context.Context, url string) (RoundStore, error) {
	var (
		store RoundStore
		err   error
	)
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		store, err = OpenPostgres(ctx, url)
	case strings.HasPrefix(url, "sqlite://"):
		store, err = OpenSQLite(ctx, strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "file:"):
		store, err = OpenSQLite(ctx, url)
	default:
		return nil, fmt.Errorf("unsupported database url %q", redact(url))
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// normalize fills defaults shared by every store.
func (r *RoundRecord) normalize() error {
	if r.GameID == uuid.Nil {
		return fmt.Errorf("game id is required")
	}
	if r.RoundNum <= 0 {
		return fmt.Errorf("round number must be positive")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()
	if r.Scores == nil {
		r.Scores = map[string]int{}
	}
	if r.HandPoints == nil {
		r.HandPoints = map[string]int{}
	}
	if r.Eliminated == nil {
		r.Eliminated = []string{}
	}
	return nil
}

// redact drops everything after the scheme so credentials stay out of errors.
func redact(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i+3] + "…"
	}
	if len(url) > 8 {
		return url[:8] + "…"
	}
	return url
}
