package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gavvahar/Monopoly-Deal/internal/catalog"
	"github.com/gavvahar/Monopoly-Deal/internal/game/rules"
	"go.uber.org/zap"
)

const (
	// MinPlayers and MaxPlayers bound a session's seat count.
	MinPlayers = 2
	MaxPlayers = 5

	// InitialHandSize is dealt to every player at game start.
	InitialHandSize = 5
)

// Options configures a new game.
type Options struct {
	// KeepTopDiscard controls the reshuffle carryover policy (see Deck).
	KeepTopDiscard bool
	// Seed fixes the shuffle order; 0 seeds from the clock.
	Seed int64
	// Logger is optional.
	Logger *zap.Logger
}

// Game is one session's complete game state. All mutation goes through
// Apply, which serializes on the game's own mutex: the action protocol
// needs atomic multi-field transitions, so there is a single lock for the
// whole aggregate rather than per-pile locks.
type Game struct {
	mu      sync.Mutex
	id      string
	cat     *catalog.Catalog
	deck    *Deck
	players map[string]*playerState
	order   []string
	turns   *rules.TurnManager
	stack   *rules.ResolutionStack
	bus     *rules.EventBus
	logger  *zap.Logger
	winner  string
	frozen  bool
	seq     int

	// pending collects the events of the dispatch in flight.
	pending []rules.Event
}

// New creates a started game: shuffled deck, five cards dealt to each
// player, first seat in the draw phase.
func New(id string, playerIDs []string, opts Options) (*Game, error) {
	if len(playerIDs) < MinPlayers || len(playerIDs) > MaxPlayers {
		return nil, fmt.Errorf("%w: need %d-%d players, got %d",
			ErrInvalidAction, MinPlayers, MaxPlayers, len(playerIDs))
	}

	seen := make(map[string]bool, len(playerIDs))
	for _, pid := range playerIDs {
		if pid == "" || seen[pid] {
			return nil, fmt.Errorf("%w: duplicate or empty player id", ErrInvalidAction)
		}
		seen[pid] = true
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cat := catalog.New()
	g := &Game{
		id:      id,
		cat:     cat,
		deck:    NewDeck(cat, opts.KeepTopDiscard, rand.New(rand.NewSource(seed))),
		players: make(map[string]*playerState, len(playerIDs)),
		order:   append([]string(nil), playerIDs...),
		turns:   rules.NewTurnManager(playerIDs),
		stack:   rules.NewResolutionStack(),
		bus:     rules.NewEventBus(),
		logger:  logger,
	}

	for _, pid := range playerIDs {
		p := newPlayerState(pid)
		cards, _ := g.deck.Draw(InitialHandSize)
		p.Hand = append(p.Hand, cards...)
		g.players[pid] = p
	}

	logger.Info("game started",
		zap.String("game_id", id),
		zap.Strings("players", playerIDs),
		zap.Int("draw_pile", g.deck.DrawCount()),
	)
	return g, nil
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return g.id
}

// Events exposes the game's event bus for broadcast subscribers.
func (g *Game) Events() *rules.EventBus {
	return g.bus
}

// Winner returns the winning player id, empty while the game runs.
func (g *Game) Winner() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner
}

// Frozen reports whether the game hit a consistency fault.
func (g *Game) Frozen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frozen
}

// PlayerCount returns the number of seated players.
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

// HasPlayer reports whether the player is seated in this game.
func (g *Game) HasPlayer(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.players[playerID]
	return ok
}

// Apply is the single entry point for gameplay mutation. Errors are
// deterministic in (state, action) and leave the state untouched, with the
// sole exception of a consistency fault, which freezes the game.
func (g *Game) Apply(playerID string, action Action) (*StateDelta, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return nil, fmt.Errorf("%w: game %s", ErrSessionFrozen, g.id)
	}
	if g.turns.GameOver() {
		return nil, fmt.Errorf("%w: winner %s", ErrGameOver, g.winner)
	}

	p, ok := g.players[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}

	g.pending = nil

	var err error
	if !g.stack.IsEmpty() {
		switch action.Kind {
		case ActionJustSayNo:
			err = g.handleJustSayNo(p, action)
		case ActionPass:
			err = g.handleDecline(p)
		default:
			err = fmt.Errorf("%w: only counters are accepted", ErrResolving)
		}
	} else {
		switch action.Kind {
		case ActionJustSayNo, ActionPass:
			err = ErrNotResolving
		default:
			if g.turns.ActivePlayer() != playerID {
				err = fmt.Errorf("%w: active player is %s", ErrNotYourTurn, g.turns.ActivePlayer())
			} else {
				err = g.applyTurnAction(p, action)
			}
		}
	}
	if err != nil {
		return nil, err
	}

	if auditErr := g.auditConservation(); auditErr != nil {
		g.frozen = true
		g.emit(rules.NewEvent(rules.EventGameFrozen, playerID, ""))
		g.logger.Error("conservation audit failed, freezing game",
			zap.String("game_id", g.id),
			zap.Error(auditErr),
		)
		return nil, auditErr
	}

	g.seq++
	return g.buildDelta(), nil
}

func (g *Game) applyTurnAction(p *playerState, action Action) error {
	switch action.Kind {
	case ActionDraw:
		return g.handleDraw(p)
	case ActionPlayMoney:
		return g.handlePlayMoney(p, action)
	case ActionPlayProperty:
		return g.handlePlayProperty(p, action)
	case ActionPlayBuilding:
		return g.handlePlayBuilding(p, action)
	case ActionPlayAction:
		return g.handlePlayAction(p, action)
	case ActionEndPhase:
		return g.handleEndPhase(p)
	case ActionDiscard:
		return g.handleDiscard(p, action)
	default:
		return fmt.Errorf("%w: unknown action kind %d", ErrInvalidAction, int(action.Kind))
	}
}

func (g *Game) handleDraw(p *playerState) error {
	if g.turns.Phase() != rules.PhaseDraw {
		return fmt.Errorf("%w: draw already taken this turn", ErrWrongPhase)
	}

	// Nothing can change the hand between turn start and the draw, so the
	// empty-hand bonus is decided here.
	if p.handSize() == 0 {
		g.turns.MarkEmptyHandAtStart()
	}

	cards, reshuffled := g.deck.Draw(g.turns.DrawEntitlement())
	p.Hand = append(p.Hand, cards...)
	g.turns.RecordDraw()

	if reshuffled {
		g.emit(rules.NewEvent(rules.EventDeckReshuffled, p.ID, ""))
	}
	ev := rules.NewEvent(rules.EventCardsDrawn, p.ID, "")
	ev.Amount = len(cards)
	g.emit(ev)

	phaseEv := rules.NewEvent(rules.EventPhaseChanged, p.ID, "")
	phaseEv.Description = g.turns.Phase().String()
	g.emit(phaseEv)
	return nil
}

// beginPlay runs the checks shared by every act-phase play and returns the
// catalog entry for the card. It does not consume the play or the card.
func (g *Game) beginPlay(p *playerState, id catalog.CardID) (catalog.Card, error) {
	switch g.turns.Phase() {
	case rules.PhaseDraw:
		return catalog.Card{}, fmt.Errorf("%w: draw phase", ErrMustDrawFirst)
	case rules.PhaseAct:
	default:
		return catalog.Card{}, fmt.Errorf("%w: %s", ErrWrongPhase, g.turns.Phase())
	}
	if !g.turns.CanPlay() {
		return catalog.Card{}, fmt.Errorf("%w: %d plays used", ErrActionLimitExceeded, g.turns.ActionsPlayed())
	}
	card, ok := g.cat.Card(id)
	if !ok {
		return catalog.Card{}, fmt.Errorf("%w: %d", ErrUnknownCard, int(id))
	}
	if !p.holdsInHand(id) {
		return catalog.Card{}, fmt.Errorf("%w: %s", ErrCardNotInHand, card.Name)
	}
	return card, nil
}

func (g *Game) handlePlayMoney(p *playerState, action Action) error {
	card, err := g.beginPlay(p, action.Card)
	if err != nil {
		return err
	}
	if card.Kind == catalog.KindProperty || card.Kind == catalog.KindPropertyWild {
		return fmt.Errorf("%w: properties cannot be banked", ErrInvalidAction)
	}

	p.removeFromHand(card.ID)
	p.Bank = append(p.Bank, card.ID)
	g.turns.RecordPlay()

	ev := rules.NewEvent(rules.EventMoneyBanked, p.ID, "")
	ev.Amount = card.Value
	ev.Metadata["card"] = card.Name
	g.emit(ev)
	return nil
}

func (g *Game) handlePlayProperty(p *playerState, action Action) error {
	card, err := g.beginPlay(p, action.Card)
	if err != nil {
		return err
	}

	var color catalog.Color
	switch card.Kind {
	case catalog.KindProperty:
		color = card.Colors[0]
	case catalog.KindPropertyWild:
		// Wildcard color assignment happens at play time and is immutable
		// afterwards: the card simply joins the chosen column.
		color = action.Color
		if !card.CanSatisfy(color) {
			return fmt.Errorf("%w: %s into %s", ErrWildColorInvalid, card.Name, color)
		}
	default:
		return fmt.Errorf("%w: %s is not a property", ErrInvalidAction, card.Name)
	}

	if p.holding(color).IsComplete(color) {
		return fmt.Errorf("%w: %s", ErrSetComplete, color)
	}

	p.removeFromHand(card.ID)
	p.placeProperty(color, card.ID)
	g.turns.RecordPlay()

	ev := rules.NewEvent(rules.EventPropertyPlaced, p.ID, "")
	ev.Metadata["card"] = card.Name
	ev.Metadata["color"] = color.String()
	g.emit(ev)

	g.checkWin(p)
	return nil
}

func (g *Game) handlePlayBuilding(p *playerState, action Action) error {
	card, err := g.beginPlay(p, action.Card)
	if err != nil {
		return err
	}

	color := action.Color
	holding := p.holding(color)
	switch card.Kind {
	case catalog.KindHouse:
		if !rules.CanBuildHouse(color, holding) {
			return fmt.Errorf("%w: house on %s", ErrBuildIneligible, color)
		}
		p.removeFromHand(card.ID)
		b := p.ensureBuildings(color)
		b.House = true
		b.HouseCard = card.ID
	case catalog.KindHotel:
		if !rules.CanBuildHotel(color, holding) {
			return fmt.Errorf("%w: hotel on %s", ErrBuildIneligible, color)
		}
		p.removeFromHand(card.ID)
		b := p.ensureBuildings(color)
		b.Hotel = true
		b.HotelCard = card.ID
	default:
		return fmt.Errorf("%w: %s is not a building", ErrInvalidAction, card.Name)
	}

	g.turns.RecordPlay()
	ev := rules.NewEvent(rules.EventBuildingPlaced, p.ID, "")
	ev.Metadata["card"] = card.Name
	ev.Metadata["color"] = color.String()
	g.emit(ev)
	return nil
}

func (g *Game) handleEndPhase(p *playerState) error {
	switch g.turns.Phase() {
	case rules.PhaseDraw:
		return fmt.Errorf("%w: must draw before ending the turn", ErrMustDrawFirst)
	case rules.PhaseAct:
		g.turns.EnterDiscard()
		if p.handSize() <= rules.HandLimit {
			g.advanceTurn()
			return nil
		}
		ev := rules.NewEvent(rules.EventPhaseChanged, p.ID, "")
		ev.Description = g.turns.Phase().String()
		g.emit(ev)
		return nil
	case rules.PhaseDiscard:
		if p.handSize() > rules.HandLimit {
			return fmt.Errorf("%w: %d cards in hand", ErrHandOverLimit, p.handSize())
		}
		g.advanceTurn()
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrWrongPhase, g.turns.Phase())
	}
}

func (g *Game) handleDiscard(p *playerState, action Action) error {
	if g.turns.Phase() != rules.PhaseDiscard {
		return fmt.Errorf("%w: %s", ErrWrongPhase, g.turns.Phase())
	}
	over := p.handSize() - rules.HandLimit
	if over <= 0 {
		return fmt.Errorf("%w: hand already at limit", ErrInvalidAction)
	}
	if len(action.Discards) == 0 || len(action.Discards) > over {
		return fmt.Errorf("%w: must discard up to %d cards", ErrInvalidAction, over)
	}
	for _, id := range action.Discards {
		if _, ok := g.cat.Card(id); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownCard, int(id))
		}
	}
	// All-or-nothing: verify the whole batch is in hand before mutating.
	seen := make(map[catalog.CardID]int)
	for _, id := range action.Discards {
		seen[id]++
		if seen[id] > 1 || !p.holdsInHand(id) {
			return fmt.Errorf("%w: %d", ErrCardNotInHand, int(id))
		}
	}

	for _, id := range action.Discards {
		p.removeFromHand(id)
		g.deck.Discard(id)
	}

	ev := rules.NewEvent(rules.EventCardsDiscarded, p.ID, "")
	ev.Amount = len(action.Discards)
	g.emit(ev)

	if p.handSize() <= rules.HandLimit {
		g.advanceTurn()
	}
	return nil
}

func (g *Game) advanceTurn() {
	g.turns.AdvanceTurn()
	ev := rules.NewEvent(rules.EventTurnAdvanced, g.turns.ActivePlayer(), "")
	ev.Amount = g.turns.TurnNumber()
	g.emit(ev)
}

// checkWin runs the win condition for one player and ends the game on the
// action that completes the third distinct set.
func (g *Game) checkWin(p *playerState) {
	if g.turns.GameOver() {
		return
	}
	if !rules.HasWon(p.holdings()) {
		return
	}
	g.winner = p.ID
	g.turns.SetGameOver()
	ev := rules.NewEvent(rules.EventGameOver, p.ID, "")
	ev.Description = fmt.Sprintf("%s wins with %d complete sets", p.ID, p.completeSetCount())
	g.emit(ev)
	g.logger.Info("game over",
		zap.String("game_id", g.id),
		zap.String("winner", p.ID),
	)
}

// auditConservation verifies the conservation law: every catalog instance is
// in exactly one pile. A breach is fatal for the session, never repaired.
func (g *Game) auditConservation() error {
	total := g.deck.cardsInPiles()
	for _, p := range g.players {
		total += p.cardCount()
	}
	// Cards belonging to departed players are returned to the discard pile
	// on leave, so the census always covers the full catalog.
	if total != g.cat.Size() {
		return fmt.Errorf("%w: %d cards reachable, catalog has %d", ErrConsistency, total, g.cat.Size())
	}
	return nil
}

func (g *Game) emit(ev rules.Event) {
	g.pending = append(g.pending, ev)
	g.bus.Publish(ev)
}

func (g *Game) buildDelta() *StateDelta {
	delta := &StateDelta{
		GameID:       g.id,
		Seq:          g.seq,
		Phase:        g.turns.Phase().String(),
		Turn:         g.turns.TurnNumber(),
		ActivePlayer: g.turns.ActivePlayer(),
		Winner:       g.winner,
		Events:       append([]rules.Event(nil), g.pending...),
	}
	if window, ok := g.stack.CounterWindow(); ok {
		delta.CounterWindow = window
	}
	return delta
}

// RemovePlayer removes a player from the game. Counter windows they hold
// decline implicitly so open chains keep making progress, frames that
// involve them otherwise are cancelled, and their cards return to the
// discard pile to preserve the conservation law.
func (g *Game) RemovePlayer(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}

	g.pending = nil

	for _, d := range g.stack.DeclineFor(playerID) {
		if d.Applied && d.Frame.Apply != nil {
			if err := d.Frame.Apply(); err != nil {
				g.logger.Warn("pending effect failed during leave",
					zap.String("game_id", g.id),
					zap.String("frame", d.Frame.ID),
					zap.Error(err),
				)
			}
			g.emit(rules.NewEvent(rules.EventEffectApplied, d.Frame.Initiator, d.Frame.Target))
		} else {
			g.emit(rules.NewEvent(rules.EventEffectCancelled, d.Frame.Initiator, d.Frame.Target))
		}
	}

	// Frames the departed player initiated or was targeted by cannot settle
	// against an empty seat; they are discarded outright.
	for _, frame := range g.stack.CancelInvolving(playerID) {
		g.emit(rules.NewEvent(rules.EventEffectCancelled, frame.Initiator, frame.Target))
	}

	// Return every card the player held to the discard pile.
	g.deck.Discard(p.Hand...)
	g.deck.Discard(p.Bank...)
	for _, column := range p.Properties {
		g.deck.Discard(column...)
	}
	for _, b := range p.Buildings {
		if b.House {
			g.deck.Discard(b.HouseCard)
		}
		if b.Hotel {
			g.deck.Discard(b.HotelCard)
		}
	}

	delete(g.players, playerID)
	for i, pid := range g.order {
		if pid == playerID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.turns.RemoveSeat(playerID)
	if g.stack.IsEmpty() {
		g.turns.ExitResolving()
	}

	g.emit(rules.NewEvent(rules.EventPlayerLeft, playerID, ""))

	// A lone survivor wins by default.
	if len(g.order) == 1 && !g.turns.GameOver() {
		g.winner = g.order[0]
		g.turns.SetGameOver()
		ev := rules.NewEvent(rules.EventGameOver, g.winner, "")
		ev.Description = fmt.Sprintf("%s wins by default", g.winner)
		g.emit(ev)
	}
	return nil
}
