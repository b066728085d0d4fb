package engine

// EventKind names an outbound event. The values are the wire names clients listen for.
type EventKind string

const (
	EventLobbyUpdate      EventKind = "lobbyUpdate"      // Public: lobby member list.
	EventLimitFinalized   EventKind = "limitFinalized"   // Public: point limit changed.
	EventYourHand         EventKind = "yourHand"         // Private: the recipient's hand.
	EventHandPoints       EventKind = "handPoints"       // Private: the recipient's hand points.
	EventGameStart        EventKind = "gameStart"        // Public: a round began.
	EventTurnUpdate       EventKind = "turnUpdate"       // Public: the turn moved.
	EventStackUpdate      EventKind = "stackUpdate"      // Public: discard stack changed.
	EventLastPlayedBundle EventKind = "lastPlayedBundle" // Public: bundle available to steal from.
	EventYourPickPhase    EventKind = "yourPickPhase"    // Private: recipient must pick.
	EventDeclareResult    EventKind = "declareResult"    // Public on success, private on rejection.
	EventGameWinner       EventKind = "gameWinner"       // Public: the game ended.
	EventGameReset        EventKind = "gameReset"        // Public: session dropped back to the lobby.
	EventGameFull         EventKind = "gameFull"         // Private: join refused.
)

// Event is produced by a session transition. An empty Recipients list means broadcast.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []PlayerID
}

func broadcast(kind EventKind, payload any) Event {
	return Event{Kind: kind, Payload: payload}
}

func addressed(to PlayerID, kind EventKind, payload any) Event {
	return Event{Kind: kind, Payload: payload, Recipients: []PlayerID{to}}
}

// LobbyMember is a lobby entry as clients see it.
type LobbyMember struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`
}

// Snapshot is the public session state carried by gameStart and turnUpdate.
type Snapshot struct {
	Stack          []Card           `json:"stack"`
	CurrentTurn    PlayerID         `json:"currentTurn"`
	RoundNum       int              `json:"roundNum"`
	Players        []LobbyMember    `json:"players"`
	UserTurns      map[PlayerID]int `json:"userTurns"`
	ScoresTable    ScoreTable       `json:"scoresTable"`
	GamePointLimit *int             `json:"gamePointLimit"`
	ReEntry        map[string]bool  `json:"reEntry"`
	DeckCount      int              `json:"deckCount"`
}

// PickPhasePayload tells the acting player what they may pick from.
type PickPhasePayload struct {
	Stack            []Card `json:"stack"`
	DeckCount        int    `json:"deckCount"`
	LastPlayedBundle []Card `json:"lastPlayedBundle"`
}

// DeclareResult reports a declare. Rejections only fill Success, Reason and Message.
type DeclareResult struct {
	Success     bool            `json:"success"`
	Reason      DeclareReason   `json:"reason,omitempty"`
	Message     string          `json:"message,omitempty"`
	HandPoints  map[string]int  `json:"handPoints,omitempty"`
	Declarer    string          `json:"declarer,omitempty"`
	Challenged  bool            `json:"challenged"`
	RoundScore  ScoreRound      `json:"roundScore,omitempty"`
	ScoresTable ScoreTable      `json:"scoresTable,omitempty"`
	RoundNum    int             `json:"roundNum,omitempty"`
	ReEntry     map[string]bool `json:"reEntry,omitempty"`
	Eliminated  []string        `json:"eliminated,omitempty"`
	Winner      *string         `json:"winner"`
}
