package game

import (
	"github.com/gavvahar/Monopoly-Deal/internal/catalog"
	"github.com/gavvahar/Monopoly-Deal/internal/game/rules"
)

// buildings tracks the house/hotel counters for one color column. At most
// one of each per completed set.
type buildings struct {
	House bool
	Hotel bool
	// Card instances backing the flags, so transfers and audits can follow
	// the physical cards.
	HouseCard catalog.CardID
	HotelCard catalog.CardID
}

// playerState holds one player's private and public piles. Wildcard color
// assignment is fixed at placement: the card id simply lives in the chosen
// color's column.
type playerState struct {
	ID         string
	Hand       []catalog.CardID
	Bank       []catalog.CardID
	Properties map[catalog.Color][]catalog.CardID
	Buildings  map[catalog.Color]*buildings
}

func newPlayerState(id string) *playerState {
	return &playerState{
		ID:         id,
		Hand:       make([]catalog.CardID, 0, 8),
		Bank:       make([]catalog.CardID, 0, 8),
		Properties: make(map[catalog.Color][]catalog.CardID),
		Buildings:  make(map[catalog.Color]*buildings),
	}
}

func (p *playerState) handSize() int {
	return len(p.Hand)
}

// removeFromHand takes a card out of the hand, reporting whether it was held.
func (p *playerState) removeFromHand(id catalog.CardID) bool {
	for i, c := range p.Hand {
		if c == id {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// holdsInHand reports whether the hand contains the card.
func (p *playerState) holdsInHand(id catalog.CardID) bool {
	for _, c := range p.Hand {
		if c == id {
			return true
		}
	}
	return false
}

// bankTotal sums the face values of the banked cards.
func (p *playerState) bankTotal(cat *catalog.Catalog) int {
	total := 0
	for _, id := range p.Bank {
		if card, ok := cat.Card(id); ok {
			total += card.Value
		}
	}
	return total
}

// placedCount returns the number of property cards in a color column.
func (p *playerState) placedCount(color catalog.Color) int {
	return len(p.Properties[color])
}

// holding builds the rules view of one color column.
func (p *playerState) holding(color catalog.Color) rules.HoldingInfo {
	info := rules.HoldingInfo{Placed: p.placedCount(color)}
	if b, ok := p.Buildings[color]; ok {
		info.HasHouse = b.House
		info.HasHotel = b.Hotel
	}
	return info
}

// holdings builds the rules view of every non-empty color column.
func (p *playerState) holdings() map[catalog.Color]rules.HoldingInfo {
	out := make(map[catalog.Color]rules.HoldingInfo, len(p.Properties))
	for color := range p.Properties {
		if p.placedCount(color) > 0 {
			out[color] = p.holding(color)
		}
	}
	return out
}

// placeProperty puts a property or assigned wildcard into a color column.
func (p *playerState) placeProperty(color catalog.Color, id catalog.CardID) {
	p.Properties[color] = append(p.Properties[color], id)
}

// removeProperty takes a specific card out of a color column, reporting
// whether it was there.
func (p *playerState) removeProperty(color catalog.Color, id catalog.CardID) bool {
	column := p.Properties[color]
	for i, c := range column {
		if c == id {
			p.Properties[color] = append(column[:i], column[i+1:]...)
			if len(p.Properties[color]) == 0 {
				delete(p.Properties, color)
			}
			return true
		}
	}
	return false
}

// findProperty locates a placed card and returns the column it occupies.
func (p *playerState) findProperty(id catalog.CardID) (catalog.Color, bool) {
	for color, column := range p.Properties {
		for _, c := range column {
			if c == id {
				return color, true
			}
		}
	}
	return catalog.ColorNone, false
}

// ensureBuildings returns the buildings record for a color, creating it.
func (p *playerState) ensureBuildings(color catalog.Color) *buildings {
	b, ok := p.Buildings[color]
	if !ok {
		b = &buildings{}
		p.Buildings[color] = b
	}
	return b
}

// cardCount returns every card instance the player holds across all piles,
// for the conservation audit.
func (p *playerState) cardCount() int {
	n := len(p.Hand) + len(p.Bank)
	for _, column := range p.Properties {
		n += len(column)
	}
	for _, b := range p.Buildings {
		if b.House {
			n++
		}
		if b.Hotel {
			n++
		}
	}
	return n
}

// completeSetCount returns how many distinct color sets are complete.
func (p *playerState) completeSetCount() int {
	n := 0
	for color := range p.Properties {
		if p.holding(color).IsComplete(color) {
			n++
		}
	}
	return n
}
