package engine

// HouseRules holds configurable game rule settings.
type HouseRules struct {
	HandSize         int // cards dealt per player per round
	MinDeclareTurns  int // turns a player must have taken before declaring
	DeclareThreshold int // hand points limit for declaring

	// DeclareInclusive accepts a declare at exactly DeclareThreshold points.
	// When false the hand must be strictly below the threshold.
	DeclareInclusive bool

	// SameRankSameSuit requires the cards of a same-rank group to also share a suit.
	SameRankSameSuit bool
	// RejectDuplicateRunRanks refuses runs that repeat a non-joker rank.
	// When false only the span formula is applied and duplicates may pass.
	RejectDuplicateRunRanks bool
	// FirstPickRequired makes the round starter draw one card (firstTurnPick)
	// before anyone plays. The starter is then not credited a turn at round start.
	FirstPickRequired bool

	DeclareWinScore        int // declarer's score when nobody undercuts them
	DeclareChallengedScore int // declarer's score when challenged
	UndercutScore          int // score for players strictly below a challenged declarer
}

// DefaultHouseRules returns the standard rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		HandSize:                7,
		MinDeclareTurns:         2,
		DeclareThreshold:        15,
		DeclareInclusive:        false,
		SameRankSameSuit:        false,
		RejectDuplicateRunRanks: false,
		FirstPickRequired:       false,
		DeclareWinScore:         -5,
		DeclareChallengedScore:  30,
		UndercutScore:           -3,
	}
}

// pointsAllowDeclare reports whether a hand worth points may be declared.
func (r *HouseRules) pointsAllowDeclare(points int) bool {
	if r.DeclareInclusive {
		return points <= r.DeclareThreshold
	}
	return points < r.DeclareThreshold
}
