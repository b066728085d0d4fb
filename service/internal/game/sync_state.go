// internal/game/sync_state.go
package game

import (
	"maps"

	"github.com/google/uuid"
	engine "github.com/vanshdiora21/Declare/engine"
)

// PublicState is the observer view of the game: no hands, no deck order.
type PublicState struct {
	GameID    uuid.UUID            `json:"gameId"`
	Phase     string               `json:"phase"`
	Lobby     []engine.LobbyMember `json:"lobby"`
	Game      *engine.Snapshot     `json:"game,omitempty"` // nil outside a game
	Winner    string               `json:"winner,omitempty"`
	HandSizes map[uuid.UUID]int    `json:"handSizes,omitempty"`
}

// State returns the current public state.
func (g *Game) State() PublicState {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.publicState()
}

// publicState builds the observer view.
// Assumes lock is held by caller.
func (g *Game) publicState() PublicState {
	s := g.session
	st := PublicState{
		GameID: g.ID,
		Phase:  s.Phase.String(),
		Lobby:  make([]engine.LobbyMember, 0, len(s.Lobby)),
		Winner: s.Winner,
	}
	for _, p := range s.Lobby {
		st.Lobby = append(st.Lobby, engine.LobbyMember{ID: p.ID, Name: p.Name})
	}
	if s.Phase == engine.PhaseLobby {
		return st
	}
	snap := s.Snapshot()
	// The score table is shared with the session; callers read it unlocked.
	scores := make(engine.ScoreTable, 0, len(snap.ScoresTable))
	for _, round := range snap.ScoresTable {
		scores = append(scores, maps.Clone(round))
	}
	snap.ScoresTable = scores
	st.Game = &snap
	st.HandSizes = make(map[uuid.UUID]int, len(s.Hands))
	for id, hand := range s.Hands {
		st.HandSizes[id] = len(hand)
	}
	return st
}
