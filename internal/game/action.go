package game

import (
	"fmt"

	"github.com/gavvahar/Monopoly-Deal/internal/catalog"
	"github.com/gavvahar/Monopoly-Deal/internal/game/rules"
)

// ActionKind is the closed set of gameplay requests.
type ActionKind int

const (
	// ActionDraw pulls the turn's draw entitlement.
	ActionDraw ActionKind = iota
	// ActionPlayMoney banks a card for its face value.
	ActionPlayMoney
	// ActionPlayProperty places a property or wildcard into a color column.
	ActionPlayProperty
	// ActionPlayBuilding places a house or hotel on a complete set.
	ActionPlayBuilding
	// ActionPlayAction plays an action or rent card for its effect.
	ActionPlayAction
	// ActionEndPhase ends the act phase, or ends the turn from discard.
	ActionEndPhase
	// ActionDiscard discards cards during the discard phase.
	ActionDiscard
	// ActionJustSayNo counters the open resolution frame.
	ActionJustSayNo
	// ActionPass declines to counter the open resolution frame.
	ActionPass
)

var actionKindNames = map[ActionKind]string{
	ActionDraw:         "DRAW",
	ActionPlayMoney:    "PLAY_MONEY",
	ActionPlayProperty: "PLAY_PROPERTY",
	ActionPlayBuilding: "PLAY_BUILDING",
	ActionPlayAction:   "PLAY_ACTION",
	ActionEndPhase:     "END_PHASE",
	ActionDiscard:      "DISCARD",
	ActionJustSayNo:    "JUST_SAY_NO",
	ActionPass:         "PASS",
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_KIND_%d", int(k))
}

// ParseActionKind maps the wire name of an action kind back to its value.
func ParseActionKind(name string) (ActionKind, bool) {
	for kind, n := range actionKindNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}

// Action is a typed gameplay request. Which fields matter depends on Kind;
// the engine validates the combination before touching state.
type Action struct {
	Kind ActionKind

	// Card is the card being played (money, property, building, action,
	// rent, or the Just Say No used to counter).
	Card catalog.CardID

	// Color carries the color choice: wildcard placement, rent demand,
	// building target, or the set a Deal Breaker takes.
	Color catalog.Color

	// Target is the opponent an action is played against. Required for
	// Sly Deal, Forced Deal, Debt Collector, Deal Breaker, and wild rent.
	Target string

	// TargetCard is the opponent's card taken by Sly Deal or Forced Deal.
	TargetCard catalog.CardID

	// GiveCard is the initiator's property offered in a Forced Deal.
	GiveCard catalog.CardID

	// DoubleRent lists Double the Rent cards played alongside a rent card.
	// Each consumes one of the turn's plays.
	DoubleRent []catalog.CardID

	// Discards lists the cards let go during the discard phase.
	Discards []catalog.CardID
}

// StateDelta describes the outcome of one successful dispatch, suitable for
// broadcast to all session participants.
type StateDelta struct {
	GameID       string `json:"game_id"`
	Seq          int    `json:"seq"`
	Phase        string `json:"phase"`
	Turn         int    `json:"turn"`
	ActivePlayer string `json:"active_player"`
	// CounterWindow holds the player who may respond while a resolution
	// chain is open; empty otherwise.
	CounterWindow string        `json:"counter_window,omitempty"`
	Winner        string        `json:"winner,omitempty"`
	Events        []rules.Event `json:"events"`
}
