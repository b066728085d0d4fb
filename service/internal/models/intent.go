// internal/models/intent.go
package models

import (
	"encoding/json"

	engine "github.com/vanshdiora21/Declare/engine"
)

// IntentType names an inbound client message.
type IntentType string

// Inbound intent types, as sent by clients.
const (
	IntentJoinLobby     IntentType = "joinLobby"     // payload: player name (string)
	IntentProposeLimit  IntentType = "proposeLimit"  // payload: point limit (number, 0 clears)
	IntentStartGame     IntentType = "startGame"     // no payload
	IntentFirstTurnPick IntentType = "firstTurnPick" // no payload
	IntentPlayCards     IntentType = "playCards"     // payload: [{value, suit}, ...]
	IntentPickCard      IntentType = "pickCard"      // payload: PickCardPayload
	IntentDeclare       IntentType = "declare"       // no payload
)

// Intent is one message read from a client connection.
type Intent struct {
	Type    IntentType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PickCardPayload selects where a pick-phase card comes from.
type PickCardPayload struct {
	Source  engine.PickSource `json:"source"`
	CardIdx *int              `json:"cardIdx,omitempty"`
}

// Decode unmarshals the payload into v. A missing payload leaves v untouched.
func (i Intent) Decode(v any) error {
	if len(i.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(i.Payload, v)
}
