package game

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gavvahar/Monopoly-Deal/internal/catalog"
)

// PlayerSnapshot is one player's piles in full, for persistence.
type PlayerSnapshot struct {
	PlayerID   string                      `json:"player_id"`
	Hand       []catalog.CardID            `json:"hand"`
	Bank       []catalog.CardID            `json:"bank"`
	Properties map[string][]catalog.CardID `json:"properties"`
	Buildings  map[string]BuildingView     `json:"buildings,omitempty"`
}

// Snapshot is the full game state at one sequence number. Open counter
// frames carry closures and are recorded by description only, so restores
// happen from quiescent snapshots.
type Snapshot struct {
	GameID       string           `json:"game_id"`
	Seq          int              `json:"seq"`
	Turn         int              `json:"turn"`
	Phase        string           `json:"phase"`
	ActivePlayer string           `json:"active_player"`
	Winner       string           `json:"winner,omitempty"`
	Frozen       bool             `json:"frozen,omitempty"`
	DrawPile     []catalog.CardID `json:"draw_pile"`
	DiscardPile  []catalog.CardID `json:"discard_pile"`
	Players      []PlayerSnapshot `json:"players"`
	OpenFrames   []string         `json:"open_frames,omitempty"`
}

// Snapshot serializes the full state deterministically and returns the
// encoding with its SHA-256 checksum. Equal states produce equal bytes.
func (g *Game) Snapshot() ([]byte, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		GameID:       g.id,
		Seq:          g.seq,
		Turn:         g.turns.TurnNumber(),
		Phase:        g.turns.Phase().String(),
		ActivePlayer: g.turns.ActivePlayer(),
		Winner:       g.winner,
		Frozen:       g.frozen,
		DrawPile:     g.deck.drawPile(),
		DiscardPile:  g.deck.discardPile(),
	}

	for _, pid := range g.order {
		p := g.players[pid]
		ps := PlayerSnapshot{
			PlayerID:   pid,
			Hand:       sortedIDs(p.Hand),
			Bank:       sortedIDs(p.Bank),
			Properties: make(map[string][]catalog.CardID, len(p.Properties)),
		}
		for color, column := range p.Properties {
			ps.Properties[color.String()] = sortedIDs(column)
		}
		if len(p.Buildings) > 0 {
			ps.Buildings = make(map[string]BuildingView, len(p.Buildings))
			for color, b := range p.Buildings {
				ps.Buildings[color.String()] = BuildingView{House: b.House, Hotel: b.Hotel}
			}
		}
		snap.Players = append(snap.Players, ps)
	}

	for _, frame := range g.stack.List() {
		snap.OpenFrames = append(snap.OpenFrames, frame.Description)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, "", fmt.Errorf("encode snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return data, hex.EncodeToString(sum[:]), nil
}

// sortedIDs copies and orders a pile whose order carries no game meaning,
// so the encoding does not depend on play history.
func sortedIDs(ids []catalog.CardID) []catalog.CardID {
	out := append([]catalog.CardID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
