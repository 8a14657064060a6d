package game

import (
	"math/rand"

	"github.com/gavvahar/Monopoly-Deal/internal/catalog"
)

// Deck manages the draw and discard piles for one game. The top of the draw
// pile is the end of the slice.
type Deck struct {
	draw    []catalog.CardID
	discard []catalog.CardID

	// keepTopDiscard controls reshuffle carryover: when true, the most
	// recent discard stays behind as the new discard pile instead of being
	// shuffled back in, so it cannot be immediately redrawn.
	keepTopDiscard bool
	rng            *rand.Rand
}

// NewDeck builds a shuffled deck containing every catalog instance.
func NewDeck(cat *catalog.Catalog, keepTopDiscard bool, rng *rand.Rand) *Deck {
	d := &Deck{
		draw:           cat.AllIDs(),
		discard:        make([]catalog.CardID, 0, 16),
		keepTopDiscard: keepTopDiscard,
		rng:            rng,
	}
	d.shuffle(d.draw)
	return d
}

func (d *Deck) shuffle(pile []catalog.CardID) {
	d.rng.Shuffle(len(pile), func(i, j int) {
		pile[i], pile[j] = pile[j], pile[i]
	})
}

// Draw removes up to n cards from the top of the draw pile, reshuffling the
// discard pile in when the draw pile runs dry. With both piles empty the
// remaining draws are a no-op; reshuffled reports whether a reshuffle
// happened.
func (d *Deck) Draw(n int) (cards []catalog.CardID, reshuffled bool) {
	for i := 0; i < n; i++ {
		if len(d.draw) == 0 {
			if !d.reshuffle() {
				break
			}
			reshuffled = true
		}
		top := len(d.draw) - 1
		cards = append(cards, d.draw[top])
		d.draw = d.draw[:top]
	}
	return cards, reshuffled
}

func (d *Deck) reshuffle() bool {
	if len(d.discard) == 0 {
		return false
	}

	var carry []catalog.CardID
	pool := d.discard
	if d.keepTopDiscard && len(pool) > 1 {
		carry = []catalog.CardID{pool[len(pool)-1]}
		pool = pool[:len(pool)-1]
	}

	d.draw = append(d.draw, pool...)
	d.shuffle(d.draw)
	d.discard = append(d.discard[:0], carry...)
	return len(d.draw) > 0
}

// Discard places cards on top of the discard pile in order.
func (d *Deck) Discard(cards ...catalog.CardID) {
	d.discard = append(d.discard, cards...)
}

// DrawCount returns the size of the draw pile.
func (d *Deck) DrawCount() int {
	return len(d.draw)
}

// DiscardCount returns the size of the discard pile.
func (d *Deck) DiscardCount() int {
	return len(d.discard)
}

// TopDiscard returns the most recently discarded card, if any.
func (d *Deck) TopDiscard() (catalog.CardID, bool) {
	if len(d.discard) == 0 {
		return 0, false
	}
	return d.discard[len(d.discard)-1], true
}

// cardsInPiles returns the total card count across both piles, used by the
// conservation audit.
func (d *Deck) cardsInPiles() int {
	return len(d.draw) + len(d.discard)
}

// drawPile copies the draw pile in order for snapshots.
func (d *Deck) drawPile() []catalog.CardID {
	return append([]catalog.CardID(nil), d.draw...)
}

// discardPile copies the discard pile in order for snapshots.
func (d *Deck) discardPile() []catalog.CardID {
	return append([]catalog.CardID(nil), d.discard...)
}
