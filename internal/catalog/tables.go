package catalog

// Rule tables for the US ruleset. Values mirror the physical game.

const (
	// HouseBonus is added to a complete set's rent when a house is present.
	HouseBonus = 3
	// HotelBonus is added on top of the house bonus when a hotel is present.
	HotelBonus = 4

	// DebtCollectorAmount is the sum a Debt Collector demands.
	DebtCollectorAmount = 5
	// BirthdayAmount is the sum It's My Birthday demands from each opponent.
	BirthdayAmount = 2

	// PassGoDraw is the number of cards Pass Go draws.
	PassGoDraw = 2
)

var setSizes = map[Color]int{
	ColorBrown:     2,
	ColorLightBlue: 3,
	ColorPink:      3,
	ColorOrange:    3,
	ColorRed:       3,
	ColorYellow:    3,
	ColorGreen:     3,
	ColorDarkBlue:  2,
	ColorRailroad:  4,
	ColorUtility:   2,
}

// Index = properties placed - 1.
var rentTable = map[Color][]int{
	ColorBrown:     {1, 2},
	ColorLightBlue: {1, 2, 3},
	ColorPink:      {1, 2, 4},
	ColorOrange:    {1, 3, 5},
	ColorRed:       {2, 3, 6},
	ColorYellow:    {2, 4, 6},
	ColorGreen:     {2, 4, 7},
	ColorDarkBlue:  {3, 8},
	ColorRailroad:  {1, 2, 3, 4},
	ColorUtility:   {1, 2},
}

// SetSize returns the number of properties required to complete a color set.
// Returns 0 for an unknown color.
func SetSize(color Color) int {
	return setSizes[color]
}

// BaseRent returns the rent for a color at the given placed count, clamped to
// the table's range. Placed counts never exceed the set size in legal states;
// the clamp keeps the lookup total for callers holding transient state.
func BaseRent(color Color, placed int) int {
	table, ok := rentTable[color]
	if !ok || placed < 1 {
		return 0
	}
	if placed > len(table) {
		placed = len(table)
	}
	return table[placed-1]
}

// BuildEligible reports whether houses/hotels may be built on the color.
// Railroads and utilities never take buildings.
func BuildEligible(color Color) bool {
	return color != ColorRailroad && color != ColorUtility && setSizes[color] > 0
}
