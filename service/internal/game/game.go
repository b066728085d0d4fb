// internal/game/game.go
package game

import (
	"context"
	"errors"
	"maps"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	engine "github.com/vanshdiora21/Declare/engine"
	"github.com/vanshdiora21/Declare/service/internal/cache"
	"github.com/vanshdiora21/Declare/service/internal/database"
)

// DefaultRoundDelay is the pause between a settled declare and the next deal.
const DefaultRoundDelay = 5 * time.Second

// GameEventType represents the type of a game-related event sent to clients.
// Values match the engine's event kinds.
type GameEventType string

// Outbound event types.
const (
	EventConnected        GameEventType = "connected" // Private: the connection's player id.
	EventLobbyUpdate                    = GameEventType(engine.EventLobbyUpdate)
	EventLimitFinalized                 = GameEventType(engine.EventLimitFinalized)
	EventYourHand                       = GameEventType(engine.EventYourHand)
	EventHandPoints                     = GameEventType(engine.EventHandPoints)
	EventGameStart                      = GameEventType(engine.EventGameStart)
	EventTurnUpdate                     = GameEventType(engine.EventTurnUpdate)
	EventStackUpdate                    = GameEventType(engine.EventStackUpdate)
	EventLastPlayedBundle               = GameEventType(engine.EventLastPlayedBundle)
	EventYourPickPhase                  = GameEventType(engine.EventYourPickPhase)
	EventDeclareResult                  = GameEventType(engine.EventDeclareResult)
	EventGameWinner                     = GameEventType(engine.EventGameWinner)
	EventGameReset                      = GameEventType(engine.EventGameReset)
	EventGameFull                       = GameEventType(engine.EventGameFull)
)

// GameEvent is the standard structure for every message sent to clients.
type GameEvent struct {
	Type    GameEventType `json:"type"`
	Payload any           `json:"payload,omitempty"`
}

// Historian receives a record of every accepted action.
type Historian interface {
	PublishGameAction(ctx context.Context, rec cache.GameActionRecord) error
}

// RoundStore receives the result of every completed round.
type RoundStore interface {
	SaveRound(ctx context.Context, rec database.RoundRecord) error
}

// Game is the single session a server hosts. It serialises every intent on Mu,
// applies it to the engine and dispatches the resulting events.
type Game struct {
	ID uuid.UUID

	Mu      sync.Mutex
	session *engine.Session

	// RoundDelay is how long a settled round waits before the next deal.
	RoundDelay time.Duration
	roundTimer *time.Timer
	roundGen   int // bumped whenever a pending deal must not fire

	actionIndex int // sequential index for historian records

	Log       *logrus.Entry
	Historian Historian  // optional
	Store     RoundStore // optional

	// Communication callbacks. They run with Mu held and must not block.
	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
}

// NewGame creates a game in the lobby phase. rng drives every shuffle.
func NewGame(rules engine.HouseRules, rng *rand.Rand) *Game {
	id := uuid.New()
	return &Game{
		ID:         id,
		session:    engine.NewSession(rules, rng),
		RoundDelay: DefaultRoundDelay,
		Log:        logrus.WithField("game_id", id),
	}
}

// JoinLobby adds playerID to the lobby under name.
func (g *Game) JoinLobby(playerID uuid.UUID, name string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	err := g.apply(playerID, "join_lobby", map[string]interface{}{"name": name}, func() ([]engine.Event, error) {
		return g.session.JoinLobby(playerID, name)
	})
	if errors.Is(err, engine.ErrGameInProgress) {
		g.Log.WithField("player_id", playerID).Info("Join refused, game in progress.")
	}
	return err
}

// ProposeLimit sets the game point limit. Anyone connected may propose.
func (g *Game) ProposeLimit(playerID uuid.UUID, limit int) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.apply(playerID, "propose_limit", map[string]interface{}{"limit": limit}, func() ([]engine.Event, error) {
		return g.session.ProposeLimit(limit), nil
	})
}

// StartGame deals the first round. A deal still pending from an earlier game is discarded.
func (g *Game) StartGame(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	err := g.apply(playerID, "start_game", nil, g.session.StartGame)
	if err == nil {
		g.cancelRoundTimer()
		g.Log.WithField("players", len(g.session.ActivePlayers())).Info("Game started.")
	}
	return err
}

// FirstTurnPick draws the round starter's opening card.
func (g *Game) FirstTurnPick(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.apply(playerID, "first_turn_pick", nil, func() ([]engine.Event, error) {
		return g.session.FirstTurnPick(playerID)
	})
}

// PlayCards discards cards from playerID's hand.
func (g *Game) PlayCards(playerID uuid.UUID, cards []engine.Card) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.apply(playerID, "play_cards", map[string]interface{}{"cards": cards}, func() ([]engine.Event, error) {
		return g.session.PlayCards(playerID, cards)
	})
}

// PickCard ends playerID's pick phase.
func (g *Game) PickCard(playerID uuid.UUID, source engine.PickSource, cardIdx *int) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	details := map[string]interface{}{"source": source}
	if cardIdx != nil {
		details["cardIdx"] = *cardIdx
	}
	return g.apply(playerID, "pick_card", details, func() ([]engine.Event, error) {
		return g.session.PickCard(playerID, source, cardIdx)
	})
}

// Declare ends the round on playerID's claim. On success the next deal is
// scheduled after RoundDelay, unless the declare ended the game.
func (g *Game) Declare(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	var result *engine.DeclareResult
	err := g.apply(playerID, "declare", nil, func() ([]engine.Event, error) {
		events, err := g.session.Declare(playerID)
		if err == nil {
			result = declareResultOf(events)
		}
		return events, err
	})
	var rej *engine.DeclareRejection
	if errors.As(err, &rej) {
		g.Log.WithFields(logrus.Fields{"player_id": playerID, "reason": rej.Reason}).Info("Declare rejected.")
		return err
	}
	if err != nil || result == nil {
		return err
	}

	g.Log.WithFields(logrus.Fields{
		"round":      result.RoundNum,
		"declarer":   result.Declarer,
		"challenged": result.Challenged,
		"eliminated": result.Eliminated,
	}).Info("Round declared.")
	g.persistRound(*result)

	switch g.session.Phase {
	case engine.PhaseRoundSettling:
		g.scheduleNextRound()
	case engine.PhaseGameOver:
		g.cancelRoundTimer()
		g.logAction(uuid.Nil, "game_over", map[string]interface{}{"winner": g.session.Winner})
		g.Log.WithField("winner", g.session.Winner).Info("Game over.")
	}
	return nil
}

// HandleDisconnect removes playerID. A member leaving mid-game resets the
// session and cancels any pending deal.
func (g *Game) HandleDisconnect(playerID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	wasInGame := g.session.InGame()
	err := g.apply(playerID, "player_disconnect", nil, func() ([]engine.Event, error) {
		return g.session.Disconnect(playerID)
	})
	if err != nil {
		return
	}
	if wasInGame {
		g.cancelRoundTimer()
		g.logAction(uuid.Nil, "game_reset", nil)
		g.Log.WithField("player_id", playerID).Info("Player left mid-game, session reset.")
	}
}

// Stop cancels a pending deal. The game stays usable.
func (g *Game) Stop() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.cancelRoundTimer()
}

// apply runs one engine transition and dispatches its events. Protocol
// violations are logged at debug level and otherwise ignored.
// Assumes lock is held by caller.
func (g *Game) apply(actor uuid.UUID, action string, details map[string]interface{}, fn func() ([]engine.Event, error)) error {
	events, err := fn()
	g.dispatch(events)
	switch {
	case err == nil:
		g.logAction(actor, action, details)
	case errors.Is(err, engine.ErrProtocol):
		g.Log.WithFields(logrus.Fields{
			"player_id": actor,
			"action":    action,
			"reason":    err.Error(),
		}).Debug("Ignored intent.")
	}
	return err
}

// dispatch converts engine events to GameEvents and hands them to the callbacks.
// Assumes lock is held by caller.
func (g *Game) dispatch(events []engine.Event) {
	for _, ev := range events {
		out := GameEvent{Type: GameEventType(ev.Kind), Payload: ev.Payload}
		if len(ev.Recipients) == 0 {
			g.fireEvent(out)
			continue
		}
		for _, id := range ev.Recipients {
			g.fireEventToPlayer(id, out)
		}
	}
}

// fireEvent broadcasts an event to every connection via BroadcastFn.
// Assumes lock is held by caller.
func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn == nil {
		g.Log.WithField("event", ev.Type).Warn("BroadcastFn is nil, dropping event.")
		return
	}
	g.BroadcastFn(ev)
}

// fireEventToPlayer sends an event to a single connection via BroadcastToPlayerFn.
// Assumes lock is held by caller.
func (g *Game) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		g.Log.WithFields(logrus.Fields{"event": ev.Type, "player_id": playerID}).Warn("BroadcastToPlayerFn is nil, dropping event.")
		return
	}
	g.BroadcastToPlayerFn(playerID, ev)
}

// scheduleNextRound arms the timer that deals the next round. A timer that
// fires after its generation was superseded does nothing.
// Assumes lock is held by caller.
func (g *Game) scheduleNextRound() {
	g.cancelRoundTimer()
	gen := g.roundGen
	g.roundTimer = time.AfterFunc(g.RoundDelay, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if gen != g.roundGen {
			return
		}
		g.roundTimer = nil
		g.beginNextRound()
	})
}

// cancelRoundTimer stops and invalidates any pending deal.
// Assumes lock is held by caller.
func (g *Game) cancelRoundTimer() {
	g.roundGen++
	if g.roundTimer != nil {
		g.roundTimer.Stop()
		g.roundTimer = nil
	}
}

// beginNextRound deals the next round.
// Assumes lock is held by caller.
func (g *Game) beginNextRound() {
	err := g.apply(uuid.Nil, "round_start", nil, g.session.BeginNextRound)
	if err != nil {
		g.Log.WithError(err).Warn("Next round not started.")
		return
	}
	g.Log.WithField("round", g.session.Round).Info("Round started.")
}

// declareResultOf returns the successful declare result among events.
func declareResultOf(events []engine.Event) *engine.DeclareResult {
	for _, ev := range events {
		if res, ok := ev.Payload.(engine.DeclareResult); ok && ev.Kind == engine.EventDeclareResult && res.Success {
			return &res
		}
	}
	return nil
}

// persistRound saves a round result to the store in the background.
// Assumes lock is held by caller.
func (g *Game) persistRound(res engine.DeclareResult) {
	if g.Store == nil {
		return
	}
	rec := database.RoundRecord{
		GameID:     g.ID,
		RoundNum:   res.RoundNum,
		Declarer:   res.Declarer,
		Challenged: res.Challenged,
		Scores:     maps.Clone(map[string]int(res.RoundScore)),
		HandPoints: maps.Clone(res.HandPoints),
		Eliminated: append([]string(nil), res.Eliminated...),
		CreatedAt:  time.Now(),
	}
	if res.Winner != nil {
		rec.Winner = *res.Winner
	}
	store, log := g.Store, g.Log
	go func(rec database.RoundRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.SaveRound(ctx, rec); err != nil {
			log.WithError(err).WithField("round", rec.RoundNum).Warn("Failed to store round result.")
		}
	}(rec)
}

// logAction sends action details to the historian.
// Increments the internal action index for ordering.
// Assumes lock is held by caller.
func (g *Game) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if g.Historian == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}

	historian, log := g.Historian, g.Log
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := historian.PublishGameAction(ctx, rec); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"action_index": rec.ActionIndex,
				"action":       rec.ActionType,
			}).Warn("Failed publishing action to historian.")
		}
	}(record)
}
