package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gavvahar/Monopoly-Deal/internal/access"
	"github.com/gavvahar/Monopoly-Deal/internal/game"
	"github.com/gavvahar/Monopoly-Deal/internal/game/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options tunes the session manager.
type Options struct {
	// IdleTimeout is how long a session may sit untouched before the
	// cleanup loop removes it. Zero disables idle collection.
	IdleTimeout time.Duration
	// KeepTopDiscard is the deck reshuffle carryover policy for new games.
	KeepTopDiscard bool
	// Gate is consulted on create and join. Nil admits everyone.
	Gate access.Gate
}

type session struct {
	id         string
	host       string
	state      State
	players    []string
	game       *game.Game
	createTime time.Time
	lastActive time.Time
	subs       map[int]*subscriber
	nextSub    int
}

type subscriber struct {
	fn        rules.Listener
	busHandle int
	attached  bool
}

func (s *session) hasPlayer(playerID string) bool {
	for _, pid := range s.players {
		if pid == playerID {
			return true
		}
	}
	return false
}

// Manager is the session registry: it owns the lobby lifecycle and routes
// gameplay to the per-session game aggregates. The registry lock is held
// only for map access; gameplay serializes on each game's own lock, so
// sessions never block each other.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	opts     Options
	gate     access.Gate
	logger   *zap.Logger
}

// NewManager creates a session manager.
func NewManager(opts Options, logger *zap.Logger) *Manager {
	gate := opts.Gate
	if gate == nil {
		gate = access.AllowAll{}
	}
	return &Manager{
		sessions: make(map[string]*session),
		opts:     opts,
		gate:     gate,
		logger:   logger,
	}
}

// Create opens a new lobby with the creator seated as host.
func (m *Manager) Create(ctx context.Context, hostID string) (Info, error) {
	if err := m.gate.Allow(ctx, hostID); err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	s := &session{
		id:         uuid.NewString(),
		host:       hostID,
		state:      StateLobby,
		players:    []string{hostID},
		createTime: now,
		lastActive: now,
		subs:       make(map[int]*subscriber),
	}
	m.sessions[s.id] = s

	m.logger.Info("session created",
		zap.String("session_id", s.id),
		zap.String("host", hostID),
	)
	return infoOf(s), nil
}

// Join seats a player in a lobby.
func (m *Manager) Join(ctx context.Context, sessionID, playerID string) (Info, error) {
	if err := m.gate.Allow(ctx, playerID); err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if s.state != StateLobby {
		return Info{}, fmt.Errorf("%w: %s", ErrSessionNotJoinable, s.state)
	}
	if s.hasPlayer(playerID) {
		return Info{}, fmt.Errorf("%w: %s", ErrAlreadyJoined, playerID)
	}
	if len(s.players) >= game.MaxPlayers {
		return Info{}, fmt.Errorf("%w: %d seats", ErrSessionFull, game.MaxPlayers)
	}

	s.players = append(s.players, playerID)
	s.lastActive = time.Now()

	m.logger.Info("player joined session",
		zap.String("session_id", sessionID),
		zap.String("player", playerID),
		zap.Int("seated", len(s.players)),
	)
	return infoOf(s), nil
}

// Leave removes a player. In a lobby the seat simply empties; in a running
// game the departure settles open counter windows and forfeits the
// player's cards. An emptied session is removed immediately.
func (m *Manager) Leave(sessionID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if !s.hasPlayer(playerID) {
		return fmt.Errorf("%w: %s", ErrNotInSession, playerID)
	}

	if s.state == StateInProgress {
		if err := s.game.RemovePlayer(playerID); err != nil {
			return err
		}
		if s.game.Winner() != "" {
			s.state = StateFinished
		}
	}

	for i, pid := range s.players {
		if pid == playerID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			break
		}
	}
	if s.host == playerID && len(s.players) > 0 {
		s.host = s.players[0]
	}
	s.lastActive = time.Now()

	m.logger.Info("player left session",
		zap.String("session_id", sessionID),
		zap.String("player", playerID),
		zap.Int("seated", len(s.players)),
	)

	if len(s.players) == 0 {
		delete(m.sessions, sessionID)
		m.logger.Info("session removed, no players left",
			zap.String("session_id", sessionID))
	}
	return nil
}

// Start deals the opening hands and begins play. Any seated player may
// start once the minimum seat count is met.
func (m *Manager) Start(sessionID, playerID string, seed int64) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if !s.hasPlayer(playerID) {
		return Info{}, fmt.Errorf("%w: %s", ErrNotInSession, playerID)
	}
	if s.state != StateLobby {
		return Info{}, fmt.Errorf("%w: %s", ErrAlreadyStarted, s.state)
	}
	if len(s.players) < game.MinPlayers {
		return Info{}, fmt.Errorf("%w: %d of %d", ErrNotEnoughPlayers, len(s.players), game.MinPlayers)
	}

	g, err := game.New(s.id, s.players, game.Options{
		KeepTopDiscard: m.opts.KeepTopDiscard,
		Seed:           seed,
		Logger:         m.logger,
	})
	if err != nil {
		return Info{}, err
	}
	s.game = g
	s.state = StateInProgress
	s.lastActive = time.Now()

	// Attach subscribers registered while the session was a lobby.
	for _, sub := range s.subs {
		sub.busHandle = g.Events().Subscribe(sub.fn)
		sub.attached = true
	}

	ev := rules.NewEvent(rules.EventGameStarted, playerID, "")
	ev.Description = s.id
	g.Events().Publish(ev)

	m.logger.Info("session started",
		zap.String("session_id", sessionID),
		zap.Int("players", len(s.players)),
	)
	return infoOf(s), nil
}

// Dispatch routes a gameplay action to the session's game.
func (m *Manager) Dispatch(sessionID, playerID string, action game.Action) (*game.StateDelta, error) {
	s, g, err := m.runningGame(sessionID)
	if err != nil {
		return nil, err
	}

	delta, err := g.Apply(playerID, action)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	s.lastActive = time.Now()
	if delta.Winner != "" {
		s.state = StateFinished
	}
	m.mu.Unlock()
	return delta, nil
}

// View returns the redacted game state for one player.
func (m *Manager) View(sessionID, playerID string) (*game.PlayerView, error) {
	_, g, err := m.runningGame(sessionID)
	if err != nil {
		return nil, err
	}
	return g.View(playerID)
}

func (m *Manager) runningGame(sessionID string) (*session, *game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if s.game == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotStarted, sessionID)
	}
	return s, s.game, nil
}

// Subscribe registers an event listener for a session and returns a cancel
// function. Listeners run synchronously inside the game's dispatch, so they
// must hand work off rather than call back into the engine.
func (m *Manager) Subscribe(sessionID string, fn rules.Listener) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	sub := &subscriber{fn: fn}
	if s.game != nil {
		sub.busHandle = s.game.Events().Subscribe(fn)
		sub.attached = true
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if cur, ok := m.sessions[sessionID]; ok {
			if sub, ok := cur.subs[id]; ok {
				if sub.attached && cur.game != nil {
					cur.game.Events().Unsubscribe(sub.busHandle)
				}
				delete(cur.subs, id)
			}
		}
	}, nil
}

// Snapshot serializes a session's game state for the journal.
func (m *Manager) Snapshot(sessionID string) (data []byte, checksum string, err error) {
	_, g, err := m.runningGame(sessionID)
	if err != nil {
		return nil, "", err
	}
	return g.Snapshot()
}

// Get returns a snapshot of one session.
func (m *Manager) Get(sessionID string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return infoOf(s), nil
}

// List returns snapshots of every session.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, infoOf(s))
	}
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupIdleSessions periodically removes sessions past the idle timeout.
// Runs until the context is cancelled.
func (m *Manager) CleanupIdleSessions(ctx context.Context) {
	if m.opts.IdleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(m.opts.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectIdle()
		}
	}
}

func (m *Manager) collectIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.opts.IdleTimeout)
	for id, s := range m.sessions {
		if s.lastActive.Before(cutoff) {
			delete(m.sessions, id)
			m.logger.Info("idle session collected",
				zap.String("session_id", id),
				zap.Time("last_active", s.lastActive),
			)
		}
	}
}

func infoOf(s *session) Info {
	info := Info{
		ID:         s.id,
		State:      s.state.String(),
		Host:       s.host,
		Players:    append([]string(nil), s.players...),
		CreateTime: s.createTime,
		LastActive: s.lastActive,
	}
	if s.game != nil {
		info.Winner = s.game.Winner()
	}
	return info
}
