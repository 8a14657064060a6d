package game

import (
	"fmt"

	"github.com/gavvahar/Monopoly-Deal/internal/catalog"
)

// BuildingView mirrors the buildings record for serialization.
type BuildingView struct {
	House bool `json:"house"`
	Hotel bool `json:"hotel"`
}

// TableView is the public side of one player: everything on the table plus
// the hand reduced to a count. Opponents see each other only through this.
type TableView struct {
	PlayerID     string                      `json:"player_id"`
	HandCount    int                         `json:"hand_count"`
	Bank         []catalog.CardID            `json:"bank"`
	BankTotal    int                         `json:"bank_total"`
	Properties   map[string][]catalog.CardID `json:"properties"`
	Buildings    map[string]BuildingView     `json:"buildings,omitempty"`
	CompleteSets int                         `json:"complete_sets"`
}

// PlayerView is the game as one player sees it: their own hand in full,
// every other hand redacted to a count.
type PlayerView struct {
	GameID        string           `json:"game_id"`
	Seq           int              `json:"seq"`
	ViewerID      string           `json:"viewer_id"`
	Hand          []catalog.CardID `json:"hand"`
	Table         []TableView      `json:"table"`
	Phase         string           `json:"phase"`
	Turn          int              `json:"turn"`
	ActivePlayer  string           `json:"active_player"`
	CounterWindow string           `json:"counter_window,omitempty"`
	Winner        string           `json:"winner,omitempty"`
	Frozen        bool             `json:"frozen,omitempty"`
	DrawPile      int              `json:"draw_pile"`
	DiscardPile   int              `json:"discard_pile"`
	TopDiscard    catalog.CardID   `json:"top_discard,omitempty"`
}

// View builds the redacted snapshot for one player. The table is listed in
// seat order starting with the viewer.
func (g *Game) View(viewerID string) (*PlayerView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	viewer, ok := g.players[viewerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, viewerID)
	}

	view := &PlayerView{
		GameID:       g.id,
		Seq:          g.seq,
		ViewerID:     viewerID,
		Hand:         append([]catalog.CardID(nil), viewer.Hand...),
		Phase:        g.turns.Phase().String(),
		Turn:         g.turns.TurnNumber(),
		ActivePlayer: g.turns.ActivePlayer(),
		Winner:       g.winner,
		Frozen:       g.frozen,
		DrawPile:     g.deck.DrawCount(),
		DiscardPile:  g.deck.DiscardCount(),
	}
	if window, ok := g.stack.CounterWindow(); ok {
		view.CounterWindow = window
	}
	if top, ok := g.deck.TopDiscard(); ok {
		view.TopDiscard = top
	}

	start := 0
	for i, pid := range g.order {
		if pid == viewerID {
			start = i
			break
		}
	}
	for i := 0; i < len(g.order); i++ {
		pid := g.order[(start+i)%len(g.order)]
		view.Table = append(view.Table, g.tableViewOf(g.players[pid]))
	}
	return view, nil
}

func (g *Game) tableViewOf(p *playerState) TableView {
	tv := TableView{
		PlayerID:     p.ID,
		HandCount:    p.handSize(),
		Bank:         append([]catalog.CardID(nil), p.Bank...),
		BankTotal:    p.bankTotal(g.cat),
		Properties:   make(map[string][]catalog.CardID, len(p.Properties)),
		CompleteSets: p.completeSetCount(),
	}
	for color, column := range p.Properties {
		tv.Properties[color.String()] = append([]catalog.CardID(nil), column...)
	}
	if len(p.Buildings) > 0 {
		tv.Buildings = make(map[string]BuildingView, len(p.Buildings))
		for color, b := range p.Buildings {
			tv.Buildings[color.String()] = BuildingView{House: b.House, Hotel: b.Hotel}
		}
	}
	return tv
}
