package session

import (
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionFull is returned when a join would exceed the seat cap.
	ErrSessionFull = errors.New("session full")
	// ErrSessionNotJoinable is returned when joining after the game started.
	ErrSessionNotJoinable = errors.New("session not joinable")
	// ErrAlreadyJoined is returned when a player joins a session twice.
	ErrAlreadyJoined = errors.New("player already in session")
	// ErrNotInSession is returned when a player acts in a session they never joined.
	ErrNotInSession = errors.New("player not in session")
	// ErrNotEnoughPlayers is returned when starting below the seat minimum.
	ErrNotEnoughPlayers = errors.New("not enough players")
	// ErrAlreadyStarted is returned when starting a running session.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrNotStarted is returned for gameplay calls against a lobby.
	ErrNotStarted = errors.New("session not started")
)

// State is a session's lifecycle stage.
type State int

const (
	StateLobby State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateLobby:
		return "LOBBY"
	case StateInProgress:
		return "IN_PROGRESS"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Info captures a consistent view of a session for external use.
type Info struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	Host       string    `json:"host"`
	Players    []string  `json:"players"`
	Winner     string    `json:"winner,omitempty"`
	CreateTime time.Time `json:"create_time"`
	LastActive time.Time `json:"last_active"`
}
