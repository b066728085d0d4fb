package engine

import "fmt"

// ScoreRound maps player name to the score delta for one round.
type ScoreRound map[string]int

// ScoreTable holds one ScoreRound per completed round.
type ScoreTable []ScoreRound

// Total returns a player's running total. Rounds without an entry count as zero.
func (t ScoreTable) Total(name string) int {
	sum := 0
	for _, round := range t {
		sum += round[name]
	}
	return sum
}

// checkDeclare enforces the declare preconditions.
func (r *HouseRules) checkDeclare(turns, points int) error {
	if turns < r.MinDeclareTurns {
		return &DeclareRejection{
			Reason:  ReasonInsufficientTurns,
			Message: fmt.Sprintf("You must take at least %d turns before declaring.", r.MinDeclareTurns),
		}
	}
	if !r.pointsAllowDeclare(points) {
		msg := fmt.Sprintf("You must have less than %d points to declare.", r.DeclareThreshold)
		if r.DeclareInclusive {
			msg = fmt.Sprintf("You must have at most %d points to declare.", r.DeclareThreshold)
		}
		return &DeclareRejection{Reason: ReasonPointsTooHigh, Message: msg}
	}
	return nil
}

// ScoreDeclare scores a round ended by declarer.
//
// The declarer is challenged when any other player holds strictly fewer
// points. Unchallenged, the declarer gets DeclareWinScore and everyone else
// their hand points. Challenged, the declarer gets DeclareChallengedScore,
// players below the declarer get UndercutScore and the rest their hand points.
func (r *HouseRules) ScoreDeclare(declarer PlayerID, players []*Player, hands Hands) (round ScoreRound, points map[string]int, challenged bool) {
	points = make(map[string]int, len(players))
	var declarerPoints int
	for _, p := range players {
		points[p.Name] = HandPoints(hands[p.ID])
		if p.ID == declarer {
			declarerPoints = points[p.Name]
		}
	}
	for _, p := range players {
		if p.ID != declarer && points[p.Name] < declarerPoints {
			challenged = true
			break
		}
	}

	round = make(ScoreRound, len(players))
	for _, p := range players {
		switch {
		case p.ID == declarer && challenged:
			round[p.Name] = r.DeclareChallengedScore
		case p.ID == declarer:
			round[p.Name] = r.DeclareWinScore
		case challenged && points[p.Name] < declarerPoints:
			round[p.Name] = r.UndercutScore
		default:
			round[p.Name] = points[p.Name]
		}
	}
	return round, points, challenged
}

// ApplyPointLimit enforces the point limit after the latest round was appended
// to table. Players are visited in order; totals are recomputed for each so
// earlier adjustments are seen by later players.
//
// A player reaching the limit for the first time re-enters: their latest
// round score is lowered by the gap between their total and the highest total
// still below the limit (the whole total if nobody is below), and reEntry
// records it. A player who already re-entered is eliminated instead.
// A limit of zero or less disables the rule.
func ApplyPointLimit(table ScoreTable, players []*Player, limit int, reEntry map[string]bool) (eliminated []*Player) {
	if limit <= 0 || len(table) == 0 {
		return nil
	}
	latest := table[len(table)-1]
	for _, p := range players {
		total := table.Total(p.Name)
		if total < limit {
			continue
		}
		if reEntry[p.Name] {
			p.Eliminated = true
			eliminated = append(eliminated, p)
			continue
		}
		highest, found := 0, false
		for _, other := range players {
			if t := table.Total(other.Name); t < limit && (!found || t > highest) {
				highest, found = t, true
			}
		}
		latest[p.Name] -= total - highest
		reEntry[p.Name] = true
	}
	return eliminated
}
