package engine

import "math/rand/v2"

const (
	SubDecks          = 2
	JokersPerSubDeck  = 3
	DeckSize          = SubDecks * (len(Ranks)*len(Suits) + JokersPerSubDeck) // 110
)

// Deck is an ordered pile of cards. The last element is the top.
type Deck []Card

// NewDeck builds an unshuffled deck: two standard 52-card decks, each with three jokers.
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for k := 0; k < SubDecks; k++ {
		for _, s := range Suits {
			for _, v := range Ranks {
				deck = append(deck, NewCard(v, s))
			}
		}
		for j := 0; j < JokersPerSubDeck; j++ {
			deck = append(deck, Joker())
		}
	}
	return deck
}

// Shuffle permutes the deck in place (Fisher-Yates) using rng.
func (d Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d), func(i, j int) { d[i], d[j] = d[j], d[i] })
}

// Draw pops the top card. ok is false when the deck is empty.
func (d *Deck) Draw() (card Card, ok bool) {
	n := len(*d)
	if n == 0 {
		return Card{}, false
	}
	card = (*d)[n-1]
	*d = (*d)[:n-1]
	return card, true
}

// Len returns the number of cards left.
func (d Deck) Len() int { return len(d) }
