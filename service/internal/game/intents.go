// internal/game/intents.go
package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	engine "github.com/vanshdiora21/Declare/engine"
	"github.com/vanshdiora21/Declare/service/internal/models"
)

// ErrBadPayload marks an intent whose payload does not decode.
var ErrBadPayload = fmt.Errorf("%w: malformed payload", engine.ErrProtocol)

// ErrUnknownIntent marks an intent type the server does not handle.
var ErrUnknownIntent = fmt.Errorf("%w: unknown intent", engine.ErrProtocol)

// HandleIntent routes one client message to the matching game operation.
// The returned error is informational; every outcome the client needs has
// already been dispatched as events.
func (g *Game) HandleIntent(playerID uuid.UUID, in models.Intent) error {
	switch in.Type {
	case models.IntentJoinLobby:
		var name string
		if err := in.Decode(&name); err != nil {
			return g.badPayload(playerID, in, err)
		}
		return g.JoinLobby(playerID, name)
	case models.IntentProposeLimit:
		var limit int
		if err := in.Decode(&limit); err != nil {
			return g.badPayload(playerID, in, err)
		}
		return g.ProposeLimit(playerID, limit)
	case models.IntentStartGame:
		return g.StartGame(playerID)
	case models.IntentFirstTurnPick:
		return g.FirstTurnPick(playerID)
	case models.IntentPlayCards:
		var cards []engine.Card
		if err := in.Decode(&cards); err != nil {
			return g.badPayload(playerID, in, err)
		}
		return g.PlayCards(playerID, cards)
	case models.IntentPickCard:
		var p models.PickCardPayload
		if err := in.Decode(&p); err != nil {
			return g.badPayload(playerID, in, err)
		}
		return g.PickCard(playerID, p.Source, p.CardIdx)
	case models.IntentDeclare:
		return g.Declare(playerID)
	default:
		g.Log.WithFields(logrus.Fields{"player_id": playerID, "intent": in.Type}).Debug("Unknown intent type.")
		return fmt.Errorf("%w %q", ErrUnknownIntent, in.Type)
	}
}

func (g *Game) badPayload(playerID uuid.UUID, in models.Intent, err error) error {
	g.Log.WithFields(logrus.Fields{"player_id": playerID, "intent": in.Type}).WithError(err).Debug("Malformed intent payload.")
	return fmt.Errorf("%w: %s: %v", ErrBadPayload, in.Type, err)
}
