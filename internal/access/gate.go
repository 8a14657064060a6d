// Package access decides who may create or join sessions. The engine only
// depends on the Gate interface; deployments plug in their own policy.
package access

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrDenied is returned when a player fails the admission policy.
var ErrDenied = errors.New("access denied")

// Gate is consulted before a player enters a session.
type Gate interface {
	Allow(ctx context.Context, playerID string) error
}

// AllowAll admits every player. The default policy.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, string) error {
	return nil
}

// Denylist admits everyone except the listed players.
type Denylist struct {
	mu     sync.RWMutex
	denied map[string]bool
}

// NewDenylist creates a denylist gate with an initial set of players.
func NewDenylist(playerIDs ...string) *Denylist {
	d := &Denylist{denied: make(map[string]bool, len(playerIDs))}
	for _, pid := range playerIDs {
		d.denied[pid] = true
	}
	return d
}

// Deny adds a player to the list.
func (d *Denylist) Deny(playerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denied[playerID] = true
}

// Restore removes a player from the list.
func (d *Denylist) Restore(playerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.denied, playerID)
}

func (d *Denylist) Allow(_ context.Context, playerID string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.denied[playerID] {
		return fmt.Errorf("%w: %s", ErrDenied, playerID)
	}
	return nil
}
