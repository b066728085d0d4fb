package engine

// TurnScheduler rotates the turn over the active players and counts how many
// turns each player has started this round.
type TurnScheduler struct {
	Players []*Player        // active players in seating order
	Current int              // index into Players
	Turns   map[PlayerID]int // turns started this round
	State   TurnState
}

// BeginRound resets the per-round counters and makes the player at start current.
// When creditStarter is set the starter begins with one turn and may play at
// once; otherwise they must take a first pick.
func (s *TurnScheduler) BeginRound(start int, creditStarter bool) {
	s.Turns = make(map[PlayerID]int, len(s.Players))
	if len(s.Players) == 0 {
		s.State = TurnGameOver
		return
	}
	s.Current = start % len(s.Players)
	if s.Players[s.Current].Eliminated {
		s.Current = s.nextEligible(s.Current)
	}
	if creditStarter {
		s.Turns[s.Players[s.Current].ID] = 1
		s.State = TurnActive
		return
	}
	s.State = TurnWaitingFirstPick
}

// CurrentPlayer returns the player whose turn it is, or nil when nobody is seated.
func (s *TurnScheduler) CurrentPlayer() *Player {
	if len(s.Players) == 0 || s.Current >= len(s.Players) {
		return nil
	}
	return s.Players[s.Current]
}

// IsCurrent reports whether id holds the turn.
func (s *TurnScheduler) IsCurrent(id PlayerID) bool {
	p := s.CurrentPlayer()
	return p != nil && p.ID == id
}

// TurnsTaken returns the number of turns id has started this round.
func (s *TurnScheduler) TurnsTaken(id PlayerID) int { return s.Turns[id] }

// Remaining counts the players that are not eliminated.
func (s *TurnScheduler) Remaining() int {
	n := 0
	for _, p := range s.Players {
		if !p.Eliminated {
			n++
		}
	}
	return n
}

// Find returns the active player with id.
func (s *TurnScheduler) Find(id PlayerID) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Advance passes the turn to the next player that is not eliminated and
// credits them a turn. When at most one player remains there is no rotation:
// the state becomes TurnGameOver and the survivor (nil if none) is returned.
func (s *TurnScheduler) Advance() (survivor *Player, over bool) {
	if s.Remaining() <= 1 {
		s.State = TurnGameOver
		for _, p := range s.Players {
			if !p.Eliminated {
				return p, true
			}
		}
		return nil, true
	}
	s.Current = s.nextEligible(s.Current)
	s.Turns[s.Players[s.Current].ID]++
	s.State = TurnActive
	return nil, false
}

// nextEligible returns the first index after from whose player is still in the game.
// Callers ensure at least one such player exists.
func (s *TurnScheduler) nextEligible(from int) int {
	n := len(s.Players)
	i := from
	for step := 0; step < n; step++ {
		i = (i + 1) % n
		if !s.Players[i].Eliminated {
			return i
		}
	}
	return from
}

// RemoveEliminated drops eliminated players from the rotation, keeping the
// current index on the same player when they survive.
func (s *TurnScheduler) RemoveEliminated() (removed []*Player) {
	cur := s.CurrentPlayer()
	kept := s.Players[:0:0]
	for _, p := range s.Players {
		if p.Eliminated {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	s.Players = kept
	s.Current = 0
	for i, p := range kept {
		if p == cur {
			s.Current = i
		}
	}
	return removed
}
