package engine

import "github.com/google/uuid"

// PlayerID is the stable connection identity used for hand and turn lookups.
type PlayerID = uuid.UUID

// Rank is the face value of a card as it appears on the wire ("A", "7", "JOKER").
type Rank string

// Suit is the suit symbol of a card. Jokers carry SuitJoker.
type Suit string

// Rank constants.
const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
	RankJoker Rank = "JOKER"
)

// Suit constants.
const (
	SuitSpades   Suit = "♠"
	SuitHearts   Suit = "♥"
	SuitDiamonds Suit = "♦"
	SuitClubs    Suit = "♣"
	SuitJoker    Suit = "★"
)

// Ranks lists the non-joker ranks in run order. A run never wraps around K→A.
var Ranks = [...]Rank{
	RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
	RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing,
}

// Suits lists the four standard suits.
var Suits = [...]Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

// Card is an immutable playing card. Two cards are equal when both fields match.
type Card struct {
	Value Rank `json:"value"`
	Suit  Suit `json:"suit"`
}

// NewCard constructs a Card.
func NewCard(value Rank, suit Suit) Card { return Card{Value: value, Suit: suit} }

// Joker returns a joker card.
func Joker() Card { return Card{Value: RankJoker, Suit: SuitJoker} }

// IsJoker reports whether the card is a joker.
func (c Card) IsJoker() bool { return c.Value == RankJoker }

// String renders the card as value followed by suit, e.g. "10♥".
func (c Card) String() string {
	if c.IsJoker() {
		return string(RankJoker)
	}
	return string(c.Value) + string(c.Suit)
}

// Points returns the card's point value.
//   - Ace → 1
//   - Two–Ten → face value
//   - Jack, Queen, King → 10
//   - Joker → 0
func (c Card) Points() int {
	if c.IsJoker() {
		return 0
	}
	ord := c.Value.Ordinal()
	switch {
	case ord < 0:
		return 0
	case ord >= 9: // Ten and the face cards.
		return 10
	default:
		return ord + 1
	}
}

// Ordinal returns the rank's position in Ranks, or -1 for jokers and unknown ranks.
func (r Rank) Ordinal() int {
	for i, v := range Ranks {
		if v == r {
			return i
		}
	}
	return -1
}

// Valid reports whether c is a card that exists in the deck.
func (c Card) Valid() bool {
	if c.IsJoker() {
		return c.Suit == SuitJoker
	}
	if c.Value.Ordinal() < 0 {
		return false
	}
	for _, s := range Suits {
		if s == c.Suit {
			return true
		}
	}
	return false
}

// BundleKind classifies a played bundle.
type BundleKind string

const (
	// BundleSingle is a lone card. It serialises as null.
	BundleSingle   BundleKind = ""
	BundleSameRank BundleKind = "SAME_RANK"
	BundleRun      BundleKind = "RUN"
)

// MarshalJSON encodes a single-card bundle kind as null.
func (k BundleKind) MarshalJSON() ([]byte, error) {
	if k == BundleSingle {
		return []byte("null"), nil
	}
	return []byte(`"` + string(k) + `"`), nil
}

// Player is a participant in the session.
type Player struct {
	ID         PlayerID `json:"id"`
	Name       string   `json:"name"`
	Eliminated bool     `json:"-"`
}

// TurnState describes what the current player is allowed to do.
type TurnState uint8

const (
	TurnWaitingFirstPick TurnState = iota // must draw once before playing
	TurnActive                            // may play cards
	TurnPickPhase                         // played without chaining, must pick
	TurnRoundOver                         // round settled, nobody may act
	TurnGameOver                          // one player left
)

func (s TurnState) String() string {
	switch s {
	case TurnWaitingFirstPick:
		return "WAITING_FIRST_PICK"
	case TurnActive:
		return "ACTIVE_TURN"
	case TurnPickPhase:
		return "PICK_PHASE"
	case TurnRoundOver:
		return "ROUND_OVER"
	case TurnGameOver:
		return "GAME_OVER"
	}
	return "UNKNOWN"
}

// Phase is the lifecycle stage of the session.
type Phase uint8

const (
	PhaseLobby Phase = iota
	PhaseInProgress
	PhaseRoundSettling
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "LOBBY"
	case PhaseInProgress:
		return "IN_PROGRESS"
	case PhaseRoundSettling:
		return "ROUND_SETTLING"
	case PhaseGameOver:
		return "GAME_OVER"
	}
	return "UNKNOWN"
}

// PickSource names where a pick draws from.
type PickSource string

const (
	PickFromDeck   PickSource = "deck"
	PickFromBundle PickSource = "bundle"
)
