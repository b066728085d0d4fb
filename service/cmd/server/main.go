// Package main starts the Declare game server and handles termination.
package main

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vanshdiora21/Declare/service/internal/cache"
	"github.com/vanshdiora21/Declare/service/internal/config"
	"github.com/vanshdiora21/Declare/service/internal/database"
	"github.com/vanshdiora21/Declare/service/internal/game"
	"github.com/vanshdiora21/Declare/service/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		logrus.Fatalf("configure logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server stopped with error.")
	}
}

func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	rng, err := newRNG()
	if err != nil {
		return err
	}
	g := game.NewGame(cfg.HouseRules(), rng)
	g.Log = logger.WithField("game_id", g.ID)
	g.RoundDelay = cfg.RoundDelay

	if cfg.RedisURL != "" {
		h, err := cache.NewRedisHistorian(ctx, cfg.RedisURL, cfg.HistorianKey)
		if err != nil {
			return fmt.Errorf("historian: %w", err)
		}
		defer h.Close()
		g.Historian = h
		logger.WithField("key", h.Key()).Info("Publishing actions to Redis.")
	}
	if cfg.DatabaseURL != "" {
		store, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("round store: %w", err)
		}
		defer store.Close()
		g.Store = store
		logger.Info("Recording round results.")
	}

	srv := server.New(g, cfg.AllowedOrigins, logger.WithField("component", "server"))
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.WithField("addr", cfg.Addr).Info("Listening.")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Hijacked WebSocket connections are not tracked by Shutdown.
		srv.Close()
		g.Stop()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

// newRNG seeds the shuffle generator from crypto/rand.
func newRNG() (*rand.Rand, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]))), nil
}
