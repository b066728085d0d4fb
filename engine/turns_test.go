package engine

import (
	"testing"

	"github.com/google/uuid"
)

func seat(names ...string) []*Player {
	players := make([]*Player, 0, len(names))
	for _, n := range names {
		players = append(players, &Player{ID: uuid.New(), Name: n})
	}
	return players
}

// TestAdvanceSkipsEliminated: with B out, A and C alternate.
func TestAdvanceSkipsEliminated(t *testing.T) {
	players := seat("A", "B", "C")
	players[1].Eliminated = true
	ts := TurnScheduler{Players: players}
	ts.BeginRound(0, true)

	want := []string{"C", "A", "C", "A"}
	for i, name := range want {
		if _, over := ts.Advance(); over {
			t.Fatalf("step %d: game ended early", i)
		}
		if got := ts.CurrentPlayer().Name; got != name {
			t.Fatalf("step %d: current = %s, want %s", i, got, name)
		}
	}
	if got := ts.TurnsTaken(players[0].ID); got != 3 {
		t.Errorf("A turns = %d, want 3 (credited start plus two)", got)
	}
	if got := ts.TurnsTaken(players[1].ID); got != 0 {
		t.Errorf("eliminated B took %d turns", got)
	}
}

// TestAdvanceLastPlayerWins ends the rotation with one player left.
func TestAdvanceLastPlayerWins(t *testing.T) {
	players := seat("A", "B")
	ts := TurnScheduler{Players: players}
	ts.BeginRound(0, true)
	players[0].Eliminated = true

	survivor, over := ts.Advance()
	if !over || survivor != players[1] {
		t.Fatalf("Advance() = %v, %v; want B, true", survivor, over)
	}
	if ts.State != TurnGameOver {
		t.Errorf("state = %s, want %s", ts.State, TurnGameOver)
	}
}

func TestBeginRoundCredit(t *testing.T) {
	players := seat("A", "B", "C")
	ts := TurnScheduler{Players: players}

	ts.BeginRound(4, true)
	if ts.CurrentPlayer() != players[1] || ts.State != TurnActive {
		t.Fatalf("start 4 of 3 should seat B active, got %s %s", ts.CurrentPlayer().Name, ts.State)
	}
	if ts.TurnsTaken(players[1].ID) != 1 {
		t.Error("starter should be credited one turn")
	}

	ts.BeginRound(0, false)
	if ts.State != TurnWaitingFirstPick || ts.TurnsTaken(players[0].ID) != 0 {
		t.Errorf("uncredited start: state %s turns %d", ts.State, ts.TurnsTaken(players[0].ID))
	}
}

func TestRemoveEliminatedKeepsCurrent(t *testing.T) {
	players := seat("A", "B", "C", "D")
	ts := TurnScheduler{Players: players}
	ts.BeginRound(2, true)
	players[0].Eliminated = true
	players[3].Eliminated = true

	removed := ts.RemoveEliminated()
	if len(removed) != 2 {
		t.Fatalf("removed %d players, want 2", len(removed))
	}
	if len(ts.Players) != 2 || ts.CurrentPlayer().Name != "C" {
		t.Fatalf("after removal current = %s among %d players", ts.CurrentPlayer().Name, len(ts.Players))
	}
	if ts.Find(players[0].ID) != nil {
		t.Error("eliminated player still found")
	}
}
