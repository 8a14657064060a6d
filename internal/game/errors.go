package game

import "errors"

// Error taxonomy. Every rejection is a deterministic function of
// (current state, requested action); callers discriminate with errors.Is.
var (
	// Validation errors: malformed requests, rejected before any state read.
	ErrUnknownCard   = errors.New("unknown card id")
	ErrUnknownPlayer = errors.New("unknown player id")
	ErrInvalidAction = errors.New("invalid action")

	// Illegal moves: well-formed but against the rules. No state mutation.
	ErrNotYourTurn         = errors.New("not your turn")
	ErrWrongPhase          = errors.New("wrong phase")
	ErrMustDrawFirst       = errors.New("must draw first")
	ErrActionLimitExceeded = errors.New("action limit exceeded")
	ErrHandOverLimit       = errors.New("hand over limit")
	ErrCardNotInHand       = errors.New("card not in hand")
	ErrBuildIneligible     = errors.New("build ineligible")
	ErrNoMatchingProperty  = errors.New("target has no matching property")
	ErrSetComplete         = errors.New("set already complete")
	ErrSetNotComplete      = errors.New("set not complete")
	ErrWildColorInvalid    = errors.New("wildcard cannot take that color")
	ErrResolving           = errors.New("resolution chain open")
	ErrNotResolving        = errors.New("no resolution chain open")

	// Session-level errors.
	ErrGameOver      = errors.New("game already over")
	ErrSessionFrozen = errors.New("session frozen pending recovery")

	// Consistency faults: an engine invariant broke. The session is frozen,
	// never silently repaired.
	ErrConsistency = errors.New("consistency fault")
)
