package engine

// splitJokers separates jokers from natural cards.
func splitJokers(cards []Card) (naturals []Card, jokers int) {
	naturals = make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.IsJoker() {
			jokers++
			continue
		}
		naturals = append(naturals, c)
	}
	return naturals, jokers
}

// sameSuit reports whether every card shares the suit of the first.
func sameSuit(cards []Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

// IsRun reports whether cards form a same-suit sequence once jokers fill the gaps.
//
// At least three cards and two naturals are required. The naturals must share
// a suit, and the span between the lowest and highest rank minus the number of
// naturals must not exceed the number of jokers. With RejectDuplicateRunRanks
// unset, repeated ranks are not checked beyond that formula.
func (r *HouseRules) IsRun(cards []Card) bool {
	if len(cards) < 3 {
		return false
	}
	naturals, jokers := splitJokers(cards)
	if len(naturals) < 2 || !sameSuit(naturals) {
		return false
	}
	lo, hi := len(Ranks), -1
	seen := make(map[int]bool, len(naturals))
	for _, c := range naturals {
		ord := c.Value.Ordinal()
		if ord < 0 {
			return false
		}
		if r.RejectDuplicateRunRanks && seen[ord] {
			return false
		}
		seen[ord] = true
		lo = min(lo, ord)
		hi = max(hi, ord)
	}
	span := hi - lo + 1
	return span-len(naturals) <= jokers
}

// SameRankGroup reports whether at least two cards all share one rank.
// Suits are ignored unless SameRankSameSuit is set.
func (r *HouseRules) SameRankGroup(cards []Card) bool {
	if len(cards) < 2 {
		return false
	}
	for _, c := range cards[1:] {
		if c.Value != cards[0].Value {
			return false
		}
	}
	if r.SameRankSameSuit && !sameSuit(cards) {
		return false
	}
	return true
}

// LegalPlay reports whether cards may be played together in one turn.
func (r *HouseRules) LegalPlay(cards []Card) bool {
	return r.ClassifyPlay(cards) != nil
}

// ClassifyPlay returns the bundle kind of a legal play, or nil if the play is illegal.
func (r *HouseRules) ClassifyPlay(cards []Card) *BundleKind {
	var kind BundleKind
	switch {
	case len(cards) == 1:
		kind = BundleSingle
	case r.SameRankGroup(cards):
		kind = BundleSameRank
	case len(cards) >= 3 && r.IsRun(cards):
		kind = BundleRun
	default:
		return nil
	}
	return &kind
}

// BundlesConnect decides whether cur chains onto prev, letting the next player
// skip drawing. Bundles connect when they share a natural rank, or when their
// naturals share one suit and together they still form a run.
func (r *HouseRules) BundlesConnect(prev, cur []Card) bool {
	if len(prev) == 0 || len(cur) == 0 {
		return false
	}
	prevNat, _ := splitJokers(prev)
	curNat, _ := splitJokers(cur)
	ranks := make(map[Rank]bool, len(prevNat))
	for _, c := range prevNat {
		ranks[c.Value] = true
	}
	for _, c := range curNat {
		if ranks[c.Value] {
			return true
		}
	}
	if len(prevNat) == 0 || len(curNat) == 0 {
		return false
	}
	if prevNat[0].Suit != curNat[0].Suit {
		return false
	}
	combined := make([]Card, 0, len(prev)+len(cur))
	combined = append(combined, prev...)
	combined = append(combined, cur...)
	return r.IsRun(combined)
}

var defaultRules = DefaultHouseRules()

// IsRun applies the default house rules.
func IsRun(cards []Card) bool { return defaultRules.IsRun(cards) }

// SameRankGroup applies the default house rules.
func SameRankGroup(cards []Card) bool { return defaultRules.SameRankGroup(cards) }

// LegalPlay applies the default house rules.
func LegalPlay(cards []Card) bool { return defaultRules.LegalPlay(cards) }

// BundlesConnect applies the default house rules.
func BundlesConnect(prev, cur []Card) bool { return defaultRules.BundlesConnect(prev, cur) }
