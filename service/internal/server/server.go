// Package server exposes the game over WebSocket. Each connection is one
// player identity; inbound messages are intents and outbound messages are
// game events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vanshdiora21/Declare/service/internal/game"
	"github.com/vanshdiora21/Declare/service/internal/models"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	readLimit    = 16 << 10
)

// conn is one connected client.
type conn struct {
	id     uuid.UUID
	ws     *websocket.Conn
	send   chan []byte
	cancel context.CancelFunc
}

// Server routes WebSocket traffic to a single game.
type Server struct {
	game    *game.Game
	log     *logrus.Entry
	origins []string

	mu    sync.RWMutex
	conns map[uuid.UUID]*conn
}

// New creates a server for g and installs itself as g's broadcaster.
// origins lists the accepted Origin host patterns; "*" accepts any.
func New(g *game.Game, origins []string, log *logrus.Entry) *Server {
	s := &Server{
		game:    g,
		log:     log,
		origins: origins,
		conns:   make(map[uuid.UUID]*conn),
	}
	g.Mu.Lock()
	g.BroadcastFn = s.broadcast
	g.BroadcastToPlayerFn = s.sendTo
	g.Mu.Unlock()
	return s
}

// Handler returns the HTTP routes: /ws, /healthz and /state.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /state", s.handleState)
	return mux
}

// Close drops every connection. Their handlers then run the usual disconnect path.
func (s *Server) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.conns {
		c.cancel()
	}
}

// Connections returns the number of open connections.
func (s *Server) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.game.State()); err != nil {
		s.log.WithError(err).Error("Failed to write state.")
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     s.origins,
		InsecureSkipVerify: len(s.origins) == 1 && s.origins[0] == "*",
	})
	if err != nil {
		s.log.WithError(err).Warn("WebSocket accept failed.")
		return
	}
	ws.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{id: uuid.New(), ws: ws, send: make(chan []byte, sendBuffer), cancel: cancel}
	log := s.log.WithField("player_id", c.id)

	s.register(c)
	log.Debug("Client connected.")
	s.sendTo(c.id, game.GameEvent{Type: game.EventConnected, Payload: map[string]uuid.UUID{"id": c.id}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(ctx, c, log)
	}()
	s.readLoop(ctx, c, log)

	cancel()
	<-done
	s.unregister(c)
	s.game.HandleDisconnect(c.id)
	_ = ws.Close(websocket.StatusNormalClosure, "")
	log.Debug("Client disconnected.")
}

// readLoop feeds intents to the game until the connection ends.
func (s *Server) readLoop(ctx context.Context, c *conn, log *logrus.Entry) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					log.WithError(err).Debug("Read ended.")
				}
			}
			return
		}
		if typ != websocket.MessageText {
			log.Debug("Ignoring binary message.")
			continue
		}
		var in models.Intent
		if err := json.Unmarshal(data, &in); err != nil {
			log.WithError(err).Debug("Ignoring malformed message.")
			continue
		}
		_ = s.game.HandleIntent(c.id, in)
	}
}

// writeLoop drains the connection's queue.
func (s *Server) writeLoop(ctx context.Context, c *conn, log *logrus.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("Write failed, dropping client.")
				}
				c.cancel()
				return
			}
		}
	}
}

func (s *Server) register(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c.id] = c
}

func (s *Server) unregister(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c.id)
}

// broadcast queues ev for every connection. It is marshalled right away
// because payloads may alias game state.
func (s *Server) broadcast(ev game.GameEvent) {
	data, ok := s.marshal(ev)
	if !ok {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.conns {
		s.enqueue(c, data)
	}
}

// sendTo queues ev for one connection, if it is still open.
func (s *Server) sendTo(playerID uuid.UUID, ev game.GameEvent) {
	data, ok := s.marshal(ev)
	if !ok {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, found := s.conns[playerID]; found {
		s.enqueue(c, data)
	}
}

func (s *Server) marshal(ev game.GameEvent) ([]byte, bool) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.WithError(err).WithField("event", ev.Type).Error("Failed to marshal event.")
		return nil, false
	}
	return data, true
}

// enqueue never blocks. A client whose queue is full is dropped.
func (s *Server) enqueue(c *conn, data []byte) {
	select {
	case c.send <- data:
	default:
		s.log.WithField("player_id", c.id).Warn("Send queue full, dropping slow client.")
		c.cancel()
	}
}
