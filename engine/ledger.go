package engine

// PlayedBundle is the set of cards one player put down in a single play.
type PlayedBundle struct {
	OwnerID PlayerID   `json:"ownerId"`
	Cards   []Card     `json:"cards"`
	Kind    BundleKind `json:"kind"`
}

// DiscardLedger records everything discarded during a round.
//
// Stack is the flat display history, starting with the turn-up card. Bundles
// holds what each play put down; cards stolen from a bundle leave it, and
// copies removed by the double-claim rule move to Purged.
type DiscardLedger struct {
	Stack   []Card
	Bundles []PlayedBundle
	Purged  []Card

	turnUp bool
}

// Reset clears the ledger for a new round and seeds the stack with turnUp.
func (l *DiscardLedger) Reset(turnUp Card, ok bool) {
	l.Stack = l.Stack[:0:0]
	l.Bundles = nil
	l.Purged = nil
	l.turnUp = ok
	if ok {
		l.Stack = append(l.Stack, turnUp)
	}
}

// Record appends a bundle and reports whether it connects with the bundle
// played just before it.
func (l *DiscardLedger) Record(rules *HouseRules, owner PlayerID, cards []Card, kind BundleKind) (connected bool) {
	played := append([]Card(nil), cards...)
	l.Stack = append(l.Stack, played...)
	l.Bundles = append(l.Bundles, PlayedBundle{OwnerID: owner, Cards: played, Kind: kind})
	n := len(l.Bundles)
	if n < 2 {
		return false
	}
	return rules.BundlesConnect(l.Bundles[n-2].Cards, l.Bundles[n-1].Cards)
}

// LatestFromOther returns the index of the most recent bundle not owned by
// player, or -1 when there is none.
func (l *DiscardLedger) LatestFromOther(player PlayerID) int {
	for i := len(l.Bundles) - 1; i >= 0; i-- {
		if l.Bundles[i].OwnerID != player {
			return i
		}
	}
	return -1
}

// LastBundleFor returns the cards player may steal from, which is the most
// recent bundle another player put down.
func (l *DiscardLedger) LastBundleFor(player PlayerID) []Card {
	i := l.LatestFromOther(player)
	if i < 0 {
		return []Card{}
	}
	return append([]Card{}, l.Bundles[i].Cards...)
}

// Steal removes the card at idx from the most recent bundle of another player.
// If an identical card also remains in an older bundle not owned by player,
// the copies in the newest such bundle are purged so the card cannot be
// claimed twice.
func (l *DiscardLedger) Steal(player PlayerID, idx int) (Card, error) {
	src := l.LatestFromOther(player)
	if src < 0 {
		return Card{}, ErrNothingToSteal
	}
	b := &l.Bundles[src]
	if idx < 0 || idx >= len(b.Cards) {
		return Card{}, ErrBadCardIndex
	}
	card := b.Cards[idx]
	b.Cards = append(b.Cards[:idx:idx], b.Cards[idx+1:]...)

	for i := src - 1; i >= 0; i-- {
		older := &l.Bundles[i]
		if older.OwnerID == player {
			continue
		}
		kept := older.Cards[:0:0]
		for _, c := range older.Cards {
			if c == card {
				l.Purged = append(l.Purged, c)
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) != len(older.Cards) {
			older.Cards = kept
			break
		}
	}
	return card, nil
}

// CardCount returns the number of physical cards the ledger holds.
func (l *DiscardLedger) CardCount() int {
	n := len(l.Purged)
	if l.turnUp {
		n++
	}
	for _, b := range l.Bundles {
		n += len(b.Cards)
	}
	return n
}
