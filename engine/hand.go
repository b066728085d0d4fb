package engine

import "sort"

// Hands maps each player to the cards they hold. Order inside a hand carries no meaning.
type Hands map[PlayerID][]Card

// Deal gives each player up to size cards from the top of the deck, in player order.
// A player gets fewer when the deck runs out; the deck is never refilled mid-deal.
func Deal(players []PlayerID, deck *Deck, size int) Hands {
	hands := make(Hands, len(players))
	for _, id := range players {
		hand := make([]Card, 0, size)
		for len(hand) < size {
			card, ok := deck.Draw()
			if !ok {
				break
			}
			hand = append(hand, card)
		}
		hands[id] = hand
	}
	return hands
}

// HandPoints sums the point values of cards.
func HandPoints(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Points()
	}
	return total
}

// RemoveCard removes the first exact match of card from hand.
// The hand is returned unmodified with ok=false when card is missing.
func RemoveCard(hand []Card, card Card) (out []Card, ok bool) {
	for i, c := range hand {
		if c == card {
			out = make([]Card, 0, len(hand)-1)
			out = append(out, hand[:i]...)
			return append(out, hand[i+1:]...), true
		}
	}
	return hand, false
}

// RemoveCards removes every card of played from hand, counting duplicates.
// It fails without touching hand if any card is missing.
func RemoveCards(hand []Card, played []Card) ([]Card, bool) {
	out := hand
	for _, c := range played {
		var ok bool
		if out, ok = RemoveCard(out, c); !ok {
			return hand, false
		}
	}
	return out, true
}

// Total returns the number of cards held across all hands.
func (h Hands) Total() int {
	n := 0
	for _, cards := range h {
		n += len(cards)
	}
	return n
}

// SortHand returns a copy of cards ordered for display: by points, then by
// suit and rank. Jokers are worth nothing and so come first.
func SortHand(cards []Card) []Card {
	out := append([]Card(nil), cards...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if pa, pb := a.Points(), b.Points(); pa != pb {
			return pa < pb
		}
		if a.Suit == b.Suit {
			return a.Value.Ordinal() < b.Value.Ordinal()
		}
		return a.Suit < b.Suit
	})
	return out
}
