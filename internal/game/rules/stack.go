package rules

import (
	"errors"
	"sync"
)

var (
	// ErrStackEmpty is returned when popping or countering with no open frame.
	ErrStackEmpty = errors.New("resolution stack empty")
	// ErrNotCounterWindow is returned when a player responds out of window.
	ErrNotCounterWindow = errors.New("player does not hold the counter window")
)

// Frame is a pending interruptible effect awaiting counters. The frame is
// pushed when an action card is played against a target and stays on the
// stack while Just Say No responses re-arm it; a decline pops it.
type Frame struct {
	ID             string
	Initiator      string
	Target         string
	Description    string
	CounterWindow  string // player who may currently respond
	NegationParity int    // count of Just Say No plays so far
	Apply          func() error
	Cancel         func()
}

// ResolutionStack holds the in-flight interrupt chain for one game. Frames
// resolve LIFO; the chain length is bounded only by the players' Just Say No
// cards.
type ResolutionStack struct {
	mu     sync.Mutex
	frames []Frame
}

// NewResolutionStack creates an empty resolution stack.
func NewResolutionStack() *ResolutionStack {
	return &ResolutionStack{
		frames: make([]Frame, 0, 4),
	}
}

// Push opens a new frame. The counter window starts with the target.
func (rs *ResolutionStack) Push(frame Frame) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if frame.CounterWindow == "" {
		frame.CounterWindow = frame.Target
	}
	rs.frames = append(rs.frames, frame)
}

// Negate records a Just Say No played by responder against the top frame.
// The frame is not popped: parity increments and the counter window flips to
// the other party, giving them the chance to counter the counter.
func (rs *ResolutionStack) Negate(responder string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.frames) == 0 {
		return ErrStackEmpty
	}
	top := &rs.frames[len(rs.frames)-1]
	if top.CounterWindow != responder {
		return ErrNotCounterWindow
	}
	top.NegationParity++
	if top.CounterWindow == top.Target {
		top.CounterWindow = top.Initiator
	} else {
		top.CounterWindow = top.Target
	}
	return nil
}

// Decline pops the top frame in response to the window holder passing.
// applied reports whether the frame's effect stands: even parity applies the
// original effect, odd parity discards it.
func (rs *ResolutionStack) Decline(responder string) (frame Frame, applied bool, err error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.frames) == 0 {
		return Frame{}, false, ErrStackEmpty
	}
	top := rs.frames[len(rs.frames)-1]
	if top.CounterWindow != responder {
		return Frame{}, false, ErrNotCounterWindow
	}
	rs.frames = rs.frames[:len(rs.frames)-1]
	return top, top.NegationParity%2 == 0, nil
}

// DeclineFor pops every frame whose counter window the player holds,
// regardless of position. Used when a player leaves mid-resolution: their
// windows decline implicitly so the chain can always make progress.
func (rs *ResolutionStack) DeclineFor(playerID string) []DeclinedFrame {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var out []DeclinedFrame
	kept := rs.frames[:0]
	for i := len(rs.frames) - 1; i >= 0; i-- {
		frame := rs.frames[i]
		if frame.CounterWindow == playerID {
			out = append(out, DeclinedFrame{Frame: frame, Applied: frame.NegationParity%2 == 0})
		}
	}
	for _, frame := range rs.frames {
		if frame.CounterWindow != playerID {
			kept = append(kept, frame)
		}
	}
	rs.frames = kept
	return out
}

// CancelInvolving removes every frame where the player is initiator or
// target, at any depth, without applying effects. Frame Cancel hooks run
// for each removed frame.
func (rs *ResolutionStack) CancelInvolving(playerID string) []Frame {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var out []Frame
	kept := rs.frames[:0]
	for _, frame := range rs.frames {
		if frame.Initiator == playerID || frame.Target == playerID {
			if frame.Cancel != nil {
				frame.Cancel()
			}
			out = append(out, frame)
			continue
		}
		kept = append(kept, frame)
	}
	rs.frames = kept
	return out
}

// DeclinedFrame pairs an implicitly declined frame with its outcome.
type DeclinedFrame struct {
	Frame   Frame
	Applied bool
}

// CounterWindow returns the player who may currently respond, if any frame
// is open.
func (rs *ResolutionStack) CounterWindow() (string, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.frames) == 0 {
		return "", false
	}
	return rs.frames[len(rs.frames)-1].CounterWindow, true
}

// Peek returns the top frame without removing it.
func (rs *ResolutionStack) Peek() (Frame, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.frames) == 0 {
		return Frame{}, false
	}
	return rs.frames[len(rs.frames)-1], true
}

// Depth returns the number of open frames.
func (rs *ResolutionStack) Depth() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.frames)
}

// IsEmpty reports whether the stack has no open frames.
func (rs *ResolutionStack) IsEmpty() bool {
	return rs.Depth() == 0
}

// List returns a copy of all open frames (topmost last).
func (rs *ResolutionStack) List() []Frame {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	cpy := make([]Frame, len(rs.frames))
	copy(cpy, rs.frames)
	return cpy
}
