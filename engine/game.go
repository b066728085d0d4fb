// Package engine implements the rules of Declare, a multi-round draw-and-discard
// card game played with two decks and six jokers.
//
// The package is pure: a Session is mutated only through its intent methods,
// each of which validates completely before changing anything and returns the
// events the transition produced. Delivering those events, timing the pause
// between rounds and serialising access are left to the caller.
package engine

import (
	"math/rand/v2"
	"strings"
)

// MinPlayers is the number of lobby members needed to start a game.
const MinPlayers = 2

// Session is the complete state of the one game a server hosts.
type Session struct {
	Rules HouseRules
	rng   *rand.Rand

	Phase Phase
	Lobby []Player

	Turns  TurnScheduler
	Deck   Deck
	Hands  Hands
	Ledger DiscardLedger

	Round      int
	RoundStart int // index of the round's first player in Turns.Players
	PointLimit int // zero when no limit is set
	ReEntry    map[string]bool
	Scores     ScoreTable
	Winner     string
}

// NewSession creates an empty lobby. rng drives every shuffle.
func NewSession(rules HouseRules, rng *rand.Rand) *Session {
	return &Session{
		Rules:   rules,
		rng:     rng,
		Phase:   PhaseLobby,
		Hands:   Hands{},
		ReEntry: map[string]bool{},
	}
}

// InGame reports whether a game is running, including the pause between rounds.
func (s *Session) InGame() bool {
	return s.Phase == PhaseInProgress || s.Phase == PhaseRoundSettling
}

// ActivePlayers returns the players still in the game.
func (s *Session) ActivePlayers() []*Player { return s.Turns.Players }

// CardCount returns the number of physical cards in the round. It is DeckSize
// from the deal until the next round begins.
func (s *Session) CardCount() int {
	return s.Deck.Len() + s.Hands.Total() + s.Ledger.CardCount()
}

func (s *Session) lobbyIndex(id PlayerID) int {
	for i, p := range s.Lobby {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) lobbyEvent() Event {
	members := make([]LobbyMember, 0, len(s.Lobby))
	for _, p := range s.Lobby {
		members = append(members, LobbyMember{ID: p.ID, Name: p.Name})
	}
	return broadcast(EventLobbyUpdate, members)
}

// JoinLobby adds a player to the lobby. While a game runs the sender gets gameFull instead.
func (s *Session) JoinLobby(id PlayerID, name string) ([]Event, error) {
	if s.InGame() {
		return []Event{addressed(id, EventGameFull, "Game already started")}, ErrGameInProgress
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if s.lobbyIndex(id) >= 0 {
		return nil, ErrAlreadyJoined
	}
	for _, p := range s.Lobby {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrDuplicateName
		}
	}
	s.Lobby = append(s.Lobby, Player{ID: id, Name: name})
	return []Event{s.lobbyEvent()}, nil
}

// ProposeLimit sets the game point limit. The last proposal wins; zero or less clears it.
func (s *Session) ProposeLimit(limit int) []Event {
	s.PointLimit = max(limit, 0)
	return []Event{broadcast(EventLimitFinalized, s.pointLimit())}
}

func (s *Session) pointLimit() *int {
	if s.PointLimit <= 0 {
		return nil
	}
	limit := s.PointLimit
	return &limit
}

// StartGame seats every lobby member and deals the first round.
func (s *Session) StartGame() ([]Event, error) {
	if s.InGame() {
		return nil, ErrGameInProgress
	}
	if len(s.Lobby) < MinPlayers {
		return nil, ErrTooFewPlayers
	}
	players := make([]*Player, 0, len(s.Lobby))
	for _, p := range s.Lobby {
		players = append(players, &Player{ID: p.ID, Name: p.Name})
	}
	s.Turns = TurnScheduler{Players: players}
	s.ReEntry = map[string]bool{}
	s.Scores = ScoreTable{}
	s.Winner = ""
	s.Round = 1
	s.RoundStart = 0
	return s.dealRound(), nil
}

// BeginNextRound starts the round that follows a settled declare.
func (s *Session) BeginNextRound() ([]Event, error) {
	if s.Phase != PhaseRoundSettling {
		return nil, ErrWrongPhase
	}
	s.Round++
	s.RoundStart = (s.RoundStart + 1) % len(s.Turns.Players)
	return s.dealRound(), nil
}

// dealRound shuffles a fresh deck, turns up one card, deals and emits the
// private hands followed by gameStart.
func (s *Session) dealRound() []Event {
	s.Deck = NewDeck()
	s.Deck.Shuffle(s.rng)
	turnUp, ok := s.Deck.Draw()
	s.Ledger.Reset(turnUp, ok)

	ids := make([]PlayerID, 0, len(s.Turns.Players))
	for _, p := range s.Turns.Players {
		ids = append(ids, p.ID)
	}
	s.Hands = Deal(ids, &s.Deck, s.Rules.HandSize)
	s.Turns.BeginRound(s.RoundStart, !s.Rules.FirstPickRequired)
	s.Phase = PhaseInProgress

	events := make([]Event, 0, 2*len(ids)+1)
	for _, id := range ids {
		events = append(events, s.handEvents(id)...)
	}
	return append(events, broadcast(EventGameStart, s.Snapshot()))
}

// handEvents returns the private hand and points updates for id.
func (s *Session) handEvents(id PlayerID) []Event {
	hand := s.Hands[id]
	return []Event{
		addressed(id, EventYourHand, SortHand(hand)),
		addressed(id, EventHandPoints, HandPoints(hand)),
	}
}

// Snapshot returns the public state of the running game.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Stack:          append([]Card{}, s.Ledger.Stack...),
		RoundNum:       s.Round,
		Players:        make([]LobbyMember, 0, len(s.Turns.Players)),
		UserTurns:      make(map[PlayerID]int, len(s.Turns.Turns)),
		ScoresTable:    s.Scores,
		GamePointLimit: s.pointLimit(),
		ReEntry:        make(map[string]bool, len(s.ReEntry)),
		DeckCount:      s.Deck.Len(),
	}
	if cur := s.Turns.CurrentPlayer(); cur != nil {
		snap.CurrentTurn = cur.ID
	}
	for _, p := range s.Turns.Players {
		snap.Players = append(snap.Players, LobbyMember{ID: p.ID, Name: p.Name})
	}
	for id, n := range s.Turns.Turns {
		snap.UserTurns[id] = n
	}
	for name, used := range s.ReEntry {
		snap.ReEntry[name] = used
	}
	return snap
}

// advance moves the turn on. With a single survivor the game ends instead.
func (s *Session) advance() []Event {
	survivor, over := s.Turns.Advance()
	if !over {
		return []Event{broadcast(EventTurnUpdate, s.Snapshot())}
	}
	return s.finish(survivor)
}

// finish ends the game with survivor as the winner.
func (s *Session) finish(survivor *Player) []Event {
	s.Phase = PhaseGameOver
	s.Turns.State = TurnGameOver
	if survivor == nil {
		return nil
	}
	s.Winner = survivor.Name
	return []Event{broadcast(EventGameWinner, s.Winner)}
}

// Disconnect removes id from the lobby. A member leaving a running game resets
// the whole session to the lobby.
func (s *Session) Disconnect(id PlayerID) ([]Event, error) {
	i := s.lobbyIndex(id)
	if i < 0 {
		return nil, ErrUnknownPlayer
	}
	s.Lobby = append(s.Lobby[:i:i], s.Lobby[i+1:]...)
	events := []Event{s.lobbyEvent()}
	if s.InGame() {
		s.reset()
		events = append(events, broadcast(EventGameReset, nil))
	}
	return events, nil
}

// reset drops all round state and returns to the lobby.
func (s *Session) reset() {
	s.Phase = PhaseLobby
	s.Deck = nil
	s.Hands = Hands{}
	s.Ledger = DiscardLedger{}
	s.Turns = TurnScheduler{}
	s.Round = 0
	s.RoundStart = 0
	s.Scores = nil
	s.ReEntry = map[string]bool{}
	s.Winner = ""
}
