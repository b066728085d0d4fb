package engine

import (
	"errors"
	"fmt"
)

// ErrProtocol marks intents that are out of sync with the session: wrong turn,
// wrong phase, cards the sender does not hold. They change nothing and are
// never reported back to the sender.
var ErrProtocol = errors.New("protocol violation")

var (
	ErrNotYourTurn    = fmt.Errorf("%w: not your turn", ErrProtocol)
	ErrWrongPhase     = fmt.Errorf("%w: action not allowed in this phase", ErrProtocol)
	ErrUnknownPlayer  = fmt.Errorf("%w: player not in game", ErrProtocol)
	ErrCardNotInHand  = fmt.Errorf("%w: card not in hand", ErrProtocol)
	ErrInvalidCard    = fmt.Errorf("%w: invalid card", ErrProtocol)
	ErrIllegalPlay    = fmt.Errorf("%w: cards do not form a legal play", ErrProtocol)
	ErrEmptyPlay      = fmt.Errorf("%w: no cards played", ErrProtocol)
	ErrBadPickSource  = fmt.Errorf("%w: unknown pick source", ErrProtocol)
	ErrBadCardIndex   = fmt.Errorf("%w: card index out of range", ErrProtocol)
	ErrNothingToSteal = fmt.Errorf("%w: no opponent bundle to pick from", ErrProtocol)
	ErrAlreadyJoined  = fmt.Errorf("%w: already in lobby", ErrProtocol)
	ErrEmptyName      = fmt.Errorf("%w: empty player name", ErrProtocol)
	ErrDuplicateName  = fmt.Errorf("%w: name already taken", ErrProtocol)
	ErrTooFewPlayers  = fmt.Errorf("%w: not enough players to start", ErrProtocol)
	ErrGameInProgress = fmt.Errorf("%w: game already in progress", ErrProtocol)
)

// DeclareReason is the machine-readable reason a declare was refused.
type DeclareReason string

const (
	ReasonInsufficientTurns DeclareReason = "INSUFFICIENT_TURNS"
	ReasonPointsTooHigh     DeclareReason = "POINTS_TOO_HIGH"
)

// DeclareRejection is returned when a declare breaks a rule the player is told about.
type DeclareRejection struct {
	Reason  DeclareReason
	Message string
}

func (e *DeclareRejection) Error() string {
	return fmt.Sprintf("declare rejected (%s): %s", e.Reason, e.Message)
}
