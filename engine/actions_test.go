package engine

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// giveHand replaces id's hand. The session stops conserving cards afterwards.
func giveHand(s *Session, id PlayerID, cards ...Card) {
	s.Hands[id] = append([]Card(nil), cards...)
}

func TestPlayCardsRejectsWithoutChange(t *testing.T) {
	s, ids := newStartedSession(t, "alice", "bob")
	giveHand(s, ids[0], NewCard(RankFive, SuitClubs), NewCard(RankSix, SuitClubs), NewCard(RankKing, SuitHearts))
	giveHand(s, ids[1], NewCard(RankTwo, SuitHearts))
	stack := len(s.Ledger.Stack)

	tests := []struct {
		name  string
		id    PlayerID
		cards []Card
		want  error
	}{
		{"not your turn", ids[1], []Card{NewCard(RankTwo, SuitHearts)}, ErrNotYourTurn},
		{"empty", ids[0], nil, ErrEmptyPlay},
		{"invalid card", ids[0], []Card{{Value: "1", Suit: SuitClubs}}, ErrInvalidCard},
		{"illegal combination", ids[0], []Card{NewCard(RankFive, SuitClubs), NewCard(RankSix, SuitClubs)}, ErrIllegalPlay},
		{"not held", ids[0], []Card{NewCard(RankQueen, SuitHearts)}, ErrCardNotInHand},
		{"second copy not held", ids[0], []Card{NewCard(RankFive, SuitClubs), NewCard(RankFive, SuitClubs)}, ErrCardNotInHand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := s.PlayCards(tt.id, tt.cards)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrProtocol)
			assert.Empty(t, events)
			assert.Len(t, s.Hands[ids[0]], 3)
			assert.Len(t, s.Ledger.Stack, stack)
			assert.True(t, s.Turns.IsCurrent(ids[0]))
			assert.Equal(t, TurnActive, s.Turns.State)
		})
	}
}

func TestUnconnectedPlayThenDeckPick(t *testing.T) {
	s, ids := newStartedSession(t, "alice", "bob")
	king := NewCard(RankKing, SuitClubs)
	giveHand(s, ids[0], king, NewCard(RankTwo, SuitHearts))
	deck := s.Deck.Len()

	events, err := s.PlayCards(ids[0], []Card{king})
	require.NoError(t, err)
	assert.Equal(t, TurnPickPhase, s.Turns.State)
	assert.True(t, s.Turns.IsCurrent(ids[0]), "the turn waits for the pick")

	ev, ok := findEvent(events, EventYourPickPhase)
	require.True(t, ok)
	assert.Equal(t, []PlayerID{ids[0]}, ev.Recipients)
	assert.Equal(t, deck, ev.Payload.(PickPhasePayload).DeckCount)
	ev, ok = findEvent(events, EventStackUpdate)
	require.True(t, ok)
	assert.Equal(t, king, ev.Payload.([]Card)[len(ev.Payload.([]Card))-1])
	_, ok = findEvent(events, EventTurnUpdate)
	assert.False(t, ok)

	_, err = s.PlayCards(ids[0], []Card{NewCard(RankTwo, SuitHearts)})
	assert.ErrorIs(t, err, ErrWrongPhase, "no second play in the pick phase")

	events, err = s.PickCard(ids[0], PickFromDeck, nil)
	require.NoError(t, err)
	assert.Len(t, s.Hands[ids[0]], 2)
	assert.Equal(t, deck-1, s.Deck.Len())
	assert.True(t, s.Turns.IsCurrent(ids[1]))
	assert.Equal(t, 1, s.Turns.TurnsTaken(ids[1]))
	ev, ok = findEvent(events, EventTurnUpdate)
	require.True(t, ok)
	assert.Equal(t, ids[1], ev.Payload.(Snapshot).CurrentTurn)
}

func TestConnectedPlaySkipsPick(t *testing.T) {
	s, ids := newStartedSession(t, "alice", "bob", "carol")
	giveHand(s, ids[0], NewCard(RankSeven, SuitSpades), NewCard(RankKing, SuitHearts))
	giveHand(s, ids[1], NewCard(RankSeven, SuitHearts), NewCard(RankKing, SuitHearts))

	_, err := s.PlayCards(ids[0], []Card{NewCard(RankSeven, SuitSpades)})
	require.NoError(t, err)
	_, err = s.PickCard(ids[0], PickFromDeck, nil)
	require.NoError(t, err)

	events, err := s.PlayCards(ids[1], []Card{NewCard(RankSeven, SuitHearts)})
	require.NoError(t, err)
	assert.True(t, s.Turns.IsCurrent(ids[2]))
	assert.Equal(t, TurnActive, s.Turns.State)
	assert.Len(t, s.Hands[ids[1]], 1, "no pick after a connected play")
	_, ok := findEvent(events, EventYourPickPhase)
	assert.False(t, ok)
}

func TestPickFromBundle(t *testing.T) {
	s, ids := newStartedSession(t, "alice", "bob")
	fiveC, fiveH := NewCard(RankFive, SuitClubs), NewCard(RankFive, SuitHearts)
	giveHand(s, ids[0], fiveC, fiveH, NewCard(RankKing, SuitHearts))
	giveHand(s, ids[1], NewCard(RankKing, SuitSpades), NewCard(RankTwo, SuitDiamonds))

	_, err := s.PlayCards(ids[0], []Card{fiveC, fiveH})
	require.NoError(t, err)
	assert.Equal(t, BundleSameRank, s.Ledger.Bundles[0].Kind)
	_, err = s.PickCard(ids[0], PickFromDeck, nil)
	require.NoError(t, err)

	events, err := s.PlayCards(ids[1], []Card{NewCard(RankKing, SuitSpades)})
	require.NoError(t, err)
	ev, ok := findEvent(events, EventYourPickPhase)
	require.True(t, ok)
	assert.Equal(t, []Card{fiveC, fiveH}, ev.Payload.(PickPhasePayload).LastPlayedBundle)

	bad := 2
	_, err = s.PickCard(ids[1], PickFromBundle, &bad)
	assert.ErrorIs(t, err, ErrBadCardIndex)
	_, err = s.PickCard(ids[1], PickFromBundle, nil)
	assert.ErrorIs(t, err, ErrBadCardIndex)
	_, err = s.PickCard(ids[1], PickSource("stack"), nil)
	assert.ErrorIs(t, err, ErrBadPickSource)
	assert.Equal(t, TurnPickPhase, s.Turns.State, "failed picks keep the pick phase")

	idx := 1
	events, err = s.PickCard(ids[1], PickFromBundle, &idx)
	require.NoError(t, err)
	assert.Contains(t, s.Hands[ids[1]], fiveH)
	assert.Equal(t, []Card{fiveC}, s.Ledger.Bundles[0].Cards)
	ev, ok = findEvent(events, EventLastPlayedBundle)
	require.True(t, ok)
	assert.Equal(t, []Card{fiveC}, ev.Payload.([]Card))
	assert.True(t, s.Turns.IsCurrent(ids[0]))
}

func TestPickFromEmptyDeckStillPasses(t *testing.T) {
	s, ids := newStartedSession(t, "alice", "bob")
	giveHand(s, ids[0], NewCard(RankKing, SuitClubs))
	s.Deck = Deck{}

	_, err := s.PlayCards(ids[0], []Card{NewCard(RankKing, SuitClubs)})
	require.NoError(t, err)
	events, err := s.PickCard(ids[0], PickFromDeck, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Hands[ids[0]])
	assert.True(t, s.Turns.IsCurrent(ids[1]))
	_, ok := findEvent(events, EventYourHand)
	assert.False(t, ok)
}

func TestDeclareRejections(t *testing.T) {
	s, ids := newStartedSession(t, "alice", "bob")
	giveHand(s, ids[0], NewCard(RankAce, SuitClubs))
	giveHand(s, ids[1], NewCard(RankKing, SuitClubs), NewCard(RankKing, SuitHearts))

	events, err := s.Declare(ids[0])
	var rej *DeclareRejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, ReasonInsufficientTurns, rej.Reason)
	require.Len(t, events, 1)
	assert.Equal(t, []PlayerID{ids[0]}, events[0].Recipients)
	result := events[0].Payload.(DeclareResult)
	assert.False(t, result.Success)
	assert.Equal(t, ReasonInsufficientTurns, result.Reason)
	assert.NotEmpty(t, result.Message)

	s.Turns.Turns[ids[1]] = 2
	_, err = s.Declare(ids[1])
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, ReasonPointsTooHigh, rej.Reason)

	assert.Equal(t, PhaseInProgress, s.Phase)
	assert.Empty(t, s.Scores)
	assert.False(t, errors.Is(err, ErrProtocol), "rejections are reported, not ignored")
}

func TestDeclareSettlesRound(t *testing.T) {
	s, ids := newStartedSession(t, "alice", "bob", "carol")
	giveHand(s, ids[0], NewCard(RankKing, SuitClubs), NewCard(RankTwo, SuitClubs))
	giveHand(s, ids[1], NewCard(RankTen, SuitClubs))
	giveHand(s, ids[2], NewCard(RankEight, SuitClubs))
	s.Turns.Turns[ids[1]] = 2

	// Declaring does not need the turn.
	events, err := s.Declare(ids[1])
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Recipients)
	result := events[0].Payload.(DeclareResult)
	assert.True(t, result.Success)
	assert.True(t, result.Challenged)
	assert.Equal(t, "bob", result.Declarer)
	assert.Equal(t, ScoreRound{"alice": 12, "bob": 30, "carol": -3}, result.RoundScore)
	assert.Equal(t, 1, result.RoundNum)
	assert.Nil(t, result.Winner)

	assert.Equal(t, PhaseRoundSettling, s.Phase)
	assert.Equal(t, TurnRoundOver, s.Turns.State)
	require.Len(t, s.Scores, 1)

	_, err = s.Declare(ids[1])
	assert.ErrorIs(t, err, ErrWrongPhase, "one declare per round")
	_, err = s.PickCard(ids[0], PickFromDeck, nil)
	assert.ErrorIs(t, err, ErrWrongPhase)

	events, err = s.BeginNextRound()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Round)
	assert.Equal(t, PhaseInProgress, s.Phase)
	assert.True(t, s.Turns.IsCurrent(ids[1]), "the start rotates")
	assert.Equal(t, DeckSize, s.CardCount())
	assert.Equal(t, 0, s.Turns.TurnsTaken(ids[0]))
	last := events[len(events)-1]
	assert.Equal(t, EventGameStart, last.Kind)
	assert.Len(t, last.Payload.(Snapshot).ScoresTable, 1)
}

func TestDeclareEliminatesAndEndsGame(t *testing.T) {
	s, ids := newStartedSession(t, "alice", "bob")
	s.ProposeLimit(10)
	s.ReEntry["alice"] = true
	giveHand(s, ids[0], NewCard(RankKing, SuitClubs), NewCard(RankKing, SuitHearts))
	giveHand(s, ids[1], NewCard(RankAce, SuitClubs))
	s.Turns.Turns[ids[1]] = 2

	events, err := s.Declare(ids[1])
	require.NoError(t, err)
	require.Len(t, events, 2)

	result := events[0].Payload.(DeclareResult)
	assert.Equal(t, []string{"alice"}, result.Eliminated)
	require.NotNil(t, result.Winner)
	assert.Equal(t, "bob", *result.Winner)
	assert.Equal(t, EventGameWinner, events[1].Kind)
	assert.Equal(t, "bob", events[1].Payload)

	assert.Equal(t, PhaseGameOver, s.Phase)
	_, err = s.BeginNextRound()
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestDeclareReEntryKeepsPlaying(t *testing.T) {
	s, ids := newStartedSession(t, "alice", "bob", "carol")
	s.ProposeLimit(15)
	giveHand(s, ids[0], NewCard(RankKing, SuitClubs), NewCard(RankKing, SuitHearts))
	giveHand(s, ids[1], NewCard(RankAce, SuitClubs))
	giveHand(s, ids[2], NewCard(RankNine, SuitClubs))
	s.Turns.Turns[ids[1]] = 2

	events, err := s.Declare(ids[1])
	require.NoError(t, err)
	result := events[0].Payload.(DeclareResult)
	assert.Empty(t, result.Eliminated)
	assert.True(t, result.ReEntry["alice"])
	assert.Equal(t, 9, s.Scores.Total("alice"), "lowered to carol's total")
	assert.Equal(t, PhaseRoundSettling, s.Phase)
}

// TestCardConservation plays a seeded game to the end and checks that every
// card stays accounted for after each intent.
func TestCardConservation(t *testing.T) {
	s, ids := newLobby(t, DefaultHouseRules(), "alice", "bob", "carol")
	s.ProposeLimit(60)
	_, err := s.StartGame()
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(3, 5))

	for step := 0; step < 20000 && s.Phase != PhaseGameOver; step++ {
		if s.Phase == PhaseRoundSettling {
			_, err := s.BeginNextRound()
			require.NoError(t, err)
			continue
		}
		require.Equal(t, DeckSize, s.CardCount(), "step %d", step)

		cur := s.Turns.CurrentPlayer()
		hand := s.Hands[cur.ID]
		switch s.Turns.State {
		case TurnActive:
			if s.Turns.TurnsTaken(cur.ID) >= 2 && (HandPoints(hand) < 15 || len(hand) == 0) {
				_, err = s.Declare(cur.ID)
				require.NoError(t, err)
				continue
			}
			_, err = s.PlayCards(cur.ID, []Card{highest(hand)})
			require.NoError(t, err)
		case TurnPickPhase:
			if bundle := s.Ledger.LastBundleFor(cur.ID); len(bundle) > 0 && rng.IntN(2) == 0 {
				idx := rng.IntN(len(bundle))
				_, err = s.PickCard(cur.ID, PickFromBundle, &idx)
			} else {
				_, err = s.PickCard(cur.ID, PickFromDeck, nil)
			}
			require.NoError(t, err)
		default:
			t.Fatalf("unexpected turn state %s", s.Turns.State)
		}
	}
	assert.Equal(t, PhaseGameOver, s.Phase, "a point limit ends the game")
	assert.LessOrEqual(t, s.Turns.Remaining(), 1)
	if s.Winner != "" {
		names := make([]string, 0, len(ids))
		for _, p := range s.Turns.Players {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{s.Winner}, names)
	}
}

func highest(hand []Card) Card {
	best := hand[0]
	for _, c := range hand[1:] {
		if c.Points() > best.Points() {
			best = c
		}
	}
	return best
}
