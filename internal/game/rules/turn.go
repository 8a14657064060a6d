package rules

import "fmt"

// Phase represents the phases of a Monopoly Deal turn.
type Phase int

const (
	PhaseDraw Phase = iota
	PhaseAct
	PhaseDiscard
	PhaseResolving
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseDraw:      "DRAW",
	PhaseAct:       "ACT",
	PhaseDiscard:   "DISCARD",
	PhaseResolving: "RESOLVING",
	PhaseGameOver:  "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Per-turn limits from the US ruleset.
const (
	DrawPerTurn      = 2
	DrawOnEmptyHand  = 5
	MaxPlaysPerTurn  = 3
	HandLimit        = 7
	MaxDoubleTheRent = 2
)

// TurnManager tracks active player, phase progression, and per-turn counters.
// The manager is mechanical: it answers "where are we in the turn"; legality
// of individual plays lives with the caller.
type TurnManager struct {
	seats            []string
	turnIndex        int
	turnNumber       int
	phase            Phase
	actionsPlayed    int
	drawn            bool
	emptyHandAtStart bool
	resolving        bool
	gameOver         bool
}

// NewTurnManager creates a turn manager at turn 1, draw phase, first seat
// active. Seat order is fixed for the life of the game except for removals.
func NewTurnManager(seats []string) *TurnManager {
	return &TurnManager{
		seats:      append([]string(nil), seats...),
		turnIndex:  0,
		turnNumber: 1,
		phase:      PhaseDraw,
	}
}

// ActivePlayer returns the player whose turn it is.
func (tm *TurnManager) ActivePlayer() string {
	if len(tm.seats) == 0 {
		return ""
	}
	return tm.seats[tm.turnIndex]
}

// Seats returns the seat order.
func (tm *TurnManager) Seats() []string {
	return append([]string(nil), tm.seats...)
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// Phase returns the phase currently in progress. While a resolution chain is
// open the reported phase is PhaseResolving regardless of the underlying
// turn phase.
func (tm *TurnManager) Phase() Phase {
	if tm.gameOver {
		return PhaseGameOver
	}
	if tm.resolving {
		return PhaseResolving
	}
	return tm.phase
}

// ActionsPlayed returns the number of plays consumed this turn.
func (tm *TurnManager) ActionsPlayed() int {
	return tm.actionsPlayed
}

// CanPlay reports whether another play fits in this turn's limit.
func (tm *TurnManager) CanPlay() bool {
	return tm.actionsPlayed < MaxPlaysPerTurn
}

// RecordPlay consumes one of the turn's plays.
func (tm *TurnManager) RecordPlay() {
	tm.actionsPlayed++
}

// MarkEmptyHandAtStart records that the active player began the turn with an
// empty hand, entitling them to the larger draw.
func (tm *TurnManager) MarkEmptyHandAtStart() {
	tm.emptyHandAtStart = true
}

// DrawEntitlement returns how many cards the active player's draw pulls.
func (tm *TurnManager) DrawEntitlement() int {
	if tm.emptyHandAtStart {
		return DrawOnEmptyHand
	}
	return DrawPerTurn
}

// HasDrawn reports whether the active player completed their draw.
func (tm *TurnManager) HasDrawn() bool {
	return tm.drawn
}

// RecordDraw marks the turn's draw as taken and moves to the act phase.
func (tm *TurnManager) RecordDraw() {
	tm.drawn = true
	tm.phase = PhaseAct
}

// EnterDiscard moves from acting to discarding.
func (tm *TurnManager) EnterDiscard() {
	tm.phase = PhaseDiscard
}

// EnterResolving opens the interrupt sub-state.
func (tm *TurnManager) EnterResolving() {
	tm.resolving = true
}

// ExitResolving closes the interrupt sub-state, returning to the underlying
// turn phase.
func (tm *TurnManager) ExitResolving() {
	tm.resolving = false
}

// Resolving reports whether a resolution chain is open.
func (tm *TurnManager) Resolving() bool {
	return tm.resolving
}

// AdvanceTurn rotates to the next seat and resets per-turn counters.
func (tm *TurnManager) AdvanceTurn() {
	if len(tm.seats) == 0 {
		return
	}
	tm.turnIndex = (tm.turnIndex + 1) % len(tm.seats)
	tm.turnNumber++
	tm.phase = PhaseDraw
	tm.actionsPlayed = 0
	tm.drawn = false
	tm.emptyHandAtStart = false
}

// RemoveSeat drops a player from the rotation. If the removed player was
// active, the turn passes to the next seat with a fresh draw phase.
func (tm *TurnManager) RemoveSeat(playerID string) {
	idx := -1
	for i, s := range tm.seats {
		if s == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	wasActive := idx == tm.turnIndex
	tm.seats = append(tm.seats[:idx], tm.seats[idx+1:]...)
	if len(tm.seats) == 0 {
		tm.turnIndex = 0
		return
	}
	if idx < tm.turnIndex {
		tm.turnIndex--
	}
	tm.turnIndex = tm.turnIndex % len(tm.seats)
	if wasActive {
		tm.phase = PhaseDraw
		tm.actionsPlayed = 0
		tm.drawn = false
		tm.emptyHandAtStart = false
	}
}

// SetGameOver locks the manager into the terminal phase.
func (tm *TurnManager) SetGameOver() {
	tm.gameOver = true
	tm.resolving = false
}

// GameOver reports whether the game has ended.
func (tm *TurnManager) GameOver() bool {
	return tm.gameOver
}
