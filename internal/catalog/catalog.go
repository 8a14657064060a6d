package catalog

import "fmt"

// CardID identifies a single physical card instance in the deck.
// IDs are assigned sequentially by the catalog builder and never change.
type CardID int

// Color represents a property color group.
type Color int

const (
	ColorNone Color = iota
	ColorBrown
	ColorLightBlue
	ColorPink
	ColorOrange
	ColorRed
	ColorYellow
	ColorGreen
	ColorDarkBlue
	ColorRailroad
	ColorUtility
)

var colorNames = map[Color]string{
	ColorNone:      "NONE",
	ColorBrown:     "BROWN",
	ColorLightBlue: "LIGHT_BLUE",
	ColorPink:      "PINK",
	ColorOrange:    "ORANGE",
	ColorRed:       "RED",
	ColorYellow:    "YELLOW",
	ColorGreen:     "GREEN",
	ColorDarkBlue:  "DARK_BLUE",
	ColorRailroad:  "RAILROAD",
	ColorUtility:   "UTILITY",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("COLOR_%d", int(c))
}

// ParseColor maps the wire name of a color back to its value.
func ParseColor(name string) (Color, bool) {
	for color, n := range colorNames {
		if n == name {
			return color, true
		}
	}
	return ColorNone, false
}

// Colors returns every property color group in a stable order.
func Colors() []Color {
	return []Color{
		ColorBrown, ColorLightBlue, ColorPink, ColorOrange, ColorRed,
		ColorYellow, ColorGreen, ColorDarkBlue, ColorRailroad, ColorUtility,
	}
}

// Kind is the closed set of card categories. Dispatch over cards matches
// exhaustively on Kind; new card behavior means a new Kind or ActionType.
type Kind int

const (
	KindMoney Kind = iota
	KindProperty
	KindPropertyWild
	KindRent
	KindAction
	KindJustSayNo
	KindHouse
	KindHotel
)

var kindNames = map[Kind]string{
	KindMoney:        "MONEY",
	KindProperty:     "PROPERTY",
	KindPropertyWild: "PROPERTY_WILD",
	KindRent:         "RENT",
	KindAction:       "ACTION",
	KindJustSayNo:    "JUST_SAY_NO",
	KindHouse:        "HOUSE",
	KindHotel:        "HOTEL",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// ActionType distinguishes the effects of KindAction cards.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionDealBreaker
	ActionSlyDeal
	ActionForcedDeal
	ActionDebtCollector
	ActionBirthday
	ActionPassGo
	ActionDoubleRent
)

var actionNames = map[ActionType]string{
	ActionNone:          "NONE",
	ActionDealBreaker:   "DEAL_BREAKER",
	ActionSlyDeal:       "SLY_DEAL",
	ActionForcedDeal:    "FORCED_DEAL",
	ActionDebtCollector: "DEBT_COLLECTOR",
	ActionBirthday:      "BIRTHDAY",
	ActionPassGo:        "PASS_GO",
	ActionDoubleRent:    "DOUBLE_THE_RENT",
}

func (a ActionType) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_%d", int(a))
}

// Card is an immutable catalog entry. Piles and hands reference cards by ID
// only; a Card value is never mutated after the catalog is built.
type Card struct {
	ID     CardID
	Name   string
	Kind   Kind
	Value  int
	Colors []Color    // colors the card can satisfy; empty for pure money
	Action ActionType // set only for KindAction
}

// IsWildAnyColor reports whether the card is the any-color property wildcard.
func (c Card) IsWildAnyColor() bool {
	return c.Kind == KindPropertyWild && len(c.Colors) == len(Colors())
}

// CanSatisfy reports whether the card can be placed into (or, for rent cards,
// demand against) the given color.
func (c Card) CanSatisfy(color Color) bool {
	for _, cc := range c.Colors {
		if cc == color {
			return true
		}
	}
	return false
}

// Catalog holds the full deck definition.
type Catalog struct {
	cards []Card
}

// New builds the standard US Monopoly Deal catalog.
func New() *Catalog {
	b := &builder{}

	// Money
	b.add(6, Card{Name: "1M", Kind: KindMoney, Value: 1})
	b.add(5, Card{Name: "2M", Kind: KindMoney, Value: 2})
	b.add(3, Card{Name: "3M", Kind: KindMoney, Value: 3})
	b.add(3, Card{Name: "4M", Kind: KindMoney, Value: 4})
	b.add(2, Card{Name: "5M", Kind: KindMoney, Value: 5})
	b.add(1, Card{Name: "10M", Kind: KindMoney, Value: 10})

	// Properties
	b.property("Mediterranean Avenue", ColorBrown, 1)
	b.property("Baltic Avenue", ColorBrown, 1)
	b.property("Oriental Avenue", ColorLightBlue, 1)
	b.property("Vermont Avenue", ColorLightBlue, 1)
	b.property("Connecticut Avenue", ColorLightBlue, 1)
	b.property("St. Charles Place", ColorPink, 2)
	b.property("States Avenue", ColorPink, 2)
	b.property("Virginia Avenue", ColorPink, 2)
	b.property("St. James Place", ColorOrange, 2)
	b.property("Tennessee Avenue", ColorOrange, 2)
	b.property("New York Avenue", ColorOrange, 2)
	b.property("Kentucky Avenue", ColorRed, 3)
	b.property("Indiana Avenue", ColorRed, 3)
	b.property("Illinois Avenue", ColorRed, 3)
	b.property("Atlantic Avenue", ColorYellow, 3)
	b.property("Ventnor Avenue", ColorYellow, 3)
	b.property("Marvin Gardens", ColorYellow, 3)
	b.property("Pacific Avenue", ColorGreen, 4)
	b.property("North Carolina Avenue", ColorGreen, 4)
	b.property("Pennsylvania Avenue", ColorGreen, 4)
	b.property("Park Place", ColorDarkBlue, 4)
	b.property("Boardwalk", ColorDarkBlue, 4)
	b.property("Reading Railroad", ColorRailroad, 2)
	b.property("Pennsylvania Railroad", ColorRailroad, 2)
	b.property("B&O Railroad", ColorRailroad, 2)
	b.property("Short Line", ColorRailroad, 2)
	b.property("Electric Company", ColorUtility, 2)
	b.property("Water Works", ColorUtility, 2)

	// Property wildcards
	b.add(1, Card{Name: "Blue/Green Wild", Kind: KindPropertyWild, Value: 4, Colors: []Color{ColorDarkBlue, ColorGreen}})
	b.add(1, Card{Name: "Railroad/Utility Wild", Kind: KindPropertyWild, Value: 2, Colors: []Color{ColorRailroad, ColorUtility}})
	b.add(2, Card{Name: "Property Wild (Any Color)", Kind: KindPropertyWild, Value: 0, Colors: Colors()})

	// Action cards
	b.add(2, Card{Name: "Deal Breaker", Kind: KindAction, Value: 5, Action: ActionDealBreaker})
	b.add(3, Card{Name: "Sly Deal", Kind: KindAction, Value: 3, Action: ActionSlyDeal})
	b.add(4, Card{Name: "Forced Deal", Kind: KindAction, Value: 3, Action: ActionForcedDeal})
	b.add(3, Card{Name: "Debt Collector", Kind: KindAction, Value: 3, Action: ActionDebtCollector})
	b.add(3, Card{Name: "It's My Birthday", Kind: KindAction, Value: 2, Action: ActionBirthday})
	b.add(10, Card{Name: "Pass Go", Kind: KindAction, Value: 1, Action: ActionPassGo})
	b.add(3, Card{Name: "Double the Rent", Kind: KindAction, Value: 1, Action: ActionDoubleRent})
	b.add(3, Card{Name: "House", Kind: KindHouse, Value: 3})
	b.add(2, Card{Name: "Hotel", Kind: KindHotel, Value: 4})
	b.add(6, Card{Name: "Just Say No", Kind: KindJustSayNo, Value: 4})

	// Rent cards
	b.add(2, Card{Name: "Rent Brown/Light Blue", Kind: KindRent, Value: 1, Colors: []Color{ColorBrown, ColorLightBlue}})
	b.add(2, Card{Name: "Rent Pink/Orange", Kind: KindRent, Value: 1, Colors: []Color{ColorPink, ColorOrange}})
	b.add(2, Card{Name: "Rent Red/Yellow", Kind: KindRent, Value: 1, Colors: []Color{ColorRed, ColorYellow}})
	b.add(2, Card{Name: "Rent Green/Dark Blue", Kind: KindRent, Value: 1, Colors: []Color{ColorGreen, ColorDarkBlue}})
	b.add(2, Card{Name: "Rent Railroad/Utility", Kind: KindRent, Value: 1, Colors: []Color{ColorRailroad, ColorUtility}})
	b.add(3, Card{Name: "Rent Wild (Any Color)", Kind: KindRent, Value: 3, Colors: Colors()})

	return &Catalog{cards: b.cards}
}

type builder struct {
	cards []Card
}

func (b *builder) add(count int, template Card) {
	for i := 0; i < count; i++ {
		card := template
		card.ID = CardID(len(b.cards))
		card.Colors = append([]Color(nil), template.Colors...)
		b.cards = append(b.cards, card)
	}
}

func (b *builder) property(name string, color Color, value int) {
	b.add(1, Card{Name: name, Kind: KindProperty, Value: value, Colors: []Color{color}})
}

// Card returns the catalog entry for an instance ID.
func (c *Catalog) Card(id CardID) (Card, bool) {
	if id < 0 || int(id) >= len(c.cards) {
		return Card{}, false
	}
	return c.cards[id], true
}

// Size returns the total number of card instances in the deck.
func (c *Catalog) Size() int {
	return len(c.cards)
}

// AllIDs returns every card instance ID in catalog order.
func (c *Catalog) AllIDs() []CardID {
	ids := make([]CardID, len(c.cards))
	for i := range c.cards {
		ids[i] = c.cards[i].ID
	}
	return ids
}
