package engine

// requireTurn checks that the game is running, id holds the turn and the turn is in state.
func (s *Session) requireTurn(id PlayerID, state TurnState) error {
	if s.Phase != PhaseInProgress {
		return ErrWrongPhase
	}
	if !s.Turns.IsCurrent(id) {
		return ErrNotYourTurn
	}
	if s.Turns.State != state {
		return ErrWrongPhase
	}
	return nil
}

// FirstTurnPick draws the one card the round starter takes before anyone
// plays, then passes the turn. It only applies when FirstPickRequired is set.
func (s *Session) FirstTurnPick(id PlayerID) ([]Event, error) {
	if err := s.requireTurn(id, TurnWaitingFirstPick); err != nil {
		return nil, err
	}
	if s.Turns.TurnsTaken(id) != 0 {
		return nil, ErrWrongPhase
	}
	var events []Event
	if card, ok := s.Deck.Draw(); ok {
		s.Hands[id] = append(s.Hands[id], card)
		events = append(events, s.handEvents(id)...)
	}
	// The starter's draw counts as their first turn.
	s.Turns.Turns[id]++
	return append(events, s.advance()...), nil
}

// PlayCards puts cards from id's hand onto the discard ledger.
//
// When the new bundle connects with the previous one the turn passes at once;
// otherwise the player enters the pick phase and is told what they can pick.
func (s *Session) PlayCards(id PlayerID, cards []Card) ([]Event, error) {
	if err := s.requireTurn(id, TurnActive); err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrEmptyPlay
	}
	for _, c := range cards {
		if !c.Valid() {
			return nil, ErrInvalidCard
		}
	}
	kind := s.Rules.ClassifyPlay(cards)
	if kind == nil {
		return nil, ErrIllegalPlay
	}
	hand, ok := RemoveCards(s.Hands[id], cards)
	if !ok {
		return nil, ErrCardNotInHand
	}

	s.Hands[id] = hand
	connected := s.Ledger.Record(&s.Rules, id, cards, *kind)

	events := s.handEvents(id)
	events = append(events,
		broadcast(EventStackUpdate, append([]Card{}, s.Ledger.Stack...)),
		broadcast(EventLastPlayedBundle, append([]Card{}, cards...)),
	)
	if connected {
		return append(events, s.advance()...), nil
	}
	s.Turns.State = TurnPickPhase
	return append(events, addressed(id, EventYourPickPhase, PickPhasePayload{
		Stack:            append([]Card{}, s.Ledger.Stack...),
		DeckCount:        s.Deck.Len(),
		LastPlayedBundle: s.Ledger.LastBundleFor(id),
	})), nil
}

// PickCard ends a pick phase. From the deck it takes the top card, or nothing
// when the deck is empty. From a bundle it steals the card at cardIdx from the
// most recent bundle another player put down. The turn passes either way.
func (s *Session) PickCard(id PlayerID, source PickSource, cardIdx *int) ([]Event, error) {
	if err := s.requireTurn(id, TurnPickPhase); err != nil {
		return nil, err
	}
	var (
		card   Card
		picked bool
	)
	switch source {
	case PickFromDeck:
		card, picked = s.Deck.Draw()
	case PickFromBundle:
		if cardIdx == nil {
			return nil, ErrBadCardIndex
		}
		var err error
		if card, err = s.Ledger.Steal(id, *cardIdx); err != nil {
			return nil, err
		}
		picked = true
	default:
		return nil, ErrBadPickSource
	}

	var events []Event
	if picked {
		s.Hands[id] = append(s.Hands[id], card)
		events = append(s.handEvents(id), broadcast(EventLastPlayedBundle, s.Ledger.LastBundleFor(id)))
	}
	return append(events, s.advance()...), nil
}

// Declare ends the round on id's claim of a low hand. It is not bound to the
// turn. A refused declare changes nothing and reports the reason to id only.
//
// After scoring, the point limit is applied and eliminated players leave the
// rotation. The session then settles, waiting for BeginNextRound, unless one
// player or none is left, which ends the game.
func (s *Session) Declare(id PlayerID) ([]Event, error) {
	if s.Phase != PhaseInProgress {
		return nil, ErrWrongPhase
	}
	declarer := s.Turns.Find(id)
	if declarer == nil {
		return nil, ErrUnknownPlayer
	}
	if err := s.Rules.checkDeclare(s.Turns.TurnsTaken(id), HandPoints(s.Hands[id])); err != nil {
		rej := err.(*DeclareRejection)
		return []Event{addressed(id, EventDeclareResult, DeclareResult{
			Success: false,
			Reason:  rej.Reason,
			Message: rej.Message,
		})}, err
	}

	players := s.Turns.Players
	round, points, challenged := s.Rules.ScoreDeclare(id, players, s.Hands)
	s.Scores = append(s.Scores, round)
	eliminated := ApplyPointLimit(s.Scores, players, s.PointLimit, s.ReEntry)
	s.Turns.RemoveEliminated()

	s.Phase = PhaseRoundSettling
	s.Turns.State = TurnRoundOver

	var tail []Event
	if s.Turns.Remaining() <= 1 {
		var survivor *Player
		if len(s.Turns.Players) == 1 {
			survivor = s.Turns.Players[0]
		}
		tail = s.finish(survivor)
	}

	result := DeclareResult{
		Success:     true,
		HandPoints:  points,
		Declarer:    declarer.Name,
		Challenged:  challenged,
		RoundScore:  round,
		ScoresTable: s.Scores,
		RoundNum:    s.Round,
		ReEntry:     s.Snapshot().ReEntry,
	}
	for _, p := range eliminated {
		result.Eliminated = append(result.Eliminated, p.Name)
	}
	if s.Winner != "" {
		winner := s.Winner
		result.Winner = &winner
	}
	return append([]Event{broadcast(EventDeclareResult, result)}, tail...), nil
}
