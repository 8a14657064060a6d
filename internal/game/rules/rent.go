package rules

import "github.com/gavvahar/Monopoly-Deal/internal/catalog"

// HoldingInfo describes one color column of a player's collection as the
// rule functions need it: placed count plus building flags.
type HoldingInfo struct {
	Placed   int
	HasHouse bool
	HasHotel bool
}

// IsComplete reports whether the holding fills the color's set.
func (h HoldingInfo) IsComplete(color catalog.Color) bool {
	size := catalog.SetSize(color)
	return size > 0 && h.Placed >= size
}

// ComputeRent returns the rent owed for a color holding. Building bonuses
// apply only on complete, build-eligible sets; each Double the Rent doubles
// the total, capped at MaxDoubleTheRent per rent action.
func ComputeRent(color catalog.Color, holding HoldingInfo, doubleRentCards int) int {
	rent := catalog.BaseRent(color, holding.Placed)
	if holding.IsComplete(color) && catalog.BuildEligible(color) {
		if holding.HasHouse {
			rent += catalog.HouseBonus
		}
		if holding.HasHotel {
			rent += catalog.HotelBonus
		}
	}

	doubles := doubleRentCards
	if doubles > MaxDoubleTheRent {
		doubles = MaxDoubleTheRent
	}
	for i := 0; i < doubles; i++ {
		rent *= 2
	}
	return rent
}

// CanBuildHouse reports whether a house may be placed on the holding.
func CanBuildHouse(color catalog.Color, holding HoldingInfo) bool {
	if !catalog.BuildEligible(color) {
		return false
	}
	if !holding.IsComplete(color) {
		return false
	}
	return !holding.HasHouse && !holding.HasHotel
}

// CanBuildHotel reports whether a hotel may be placed on the holding. A hotel
// requires a house already present.
func CanBuildHotel(color catalog.Color, holding HoldingInfo) bool {
	if !catalog.BuildEligible(color) {
		return false
	}
	if !holding.IsComplete(color) {
		return false
	}
	return holding.HasHouse && !holding.HasHotel
}

// SetsNeededToWin is the win condition threshold.
const SetsNeededToWin = 3

// HasWon reports whether the holdings contain enough complete distinct-color
// sets to win.
func HasWon(holdings map[catalog.Color]HoldingInfo) bool {
	complete := 0
	for color, holding := range holdings {
		if holding.IsComplete(color) {
			complete++
		}
	}
	return complete >= SetsNeededToWin
}
