package game

import (
	"testing"

	"github.com/gavvahar/Monopoly-Deal/internal/catalog"
	"github.com/gavvahar/Monopoly-Deal/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, players ...string) *Game {
	t.Helper()
	g, err := New("test-game", players, Options{KeepTopDiscard: true, Seed: 42})
	require.NoError(t, err)
	return g
}

// extractCard pulls a card instance out of whatever pile currently holds
// it, so tests can rig states without breaking the conservation law.
func extractCard(t *testing.T, g *Game, id catalog.CardID) {
	t.Helper()
	for i, c := range g.deck.draw {
		if c == id {
			g.deck.draw = append(g.deck.draw[:i], g.deck.draw[i+1:]...)
			return
		}
	}
	for i, c := range g.deck.discard {
		if c == id {
			g.deck.discard = append(g.deck.discard[:i], g.deck.discard[i+1:]...)
			return
		}
	}
	for _, p := range g.players {
		if p.removeFromHand(id) {
			return
		}
		for i, c := range p.Bank {
			if c == id {
				p.Bank = append(p.Bank[:i], p.Bank[i+1:]...)
				return
			}
		}
		for color := range p.Properties {
			if p.removeProperty(color, id) {
				return
			}
		}
	}
	t.Fatalf("card %d not found in any pile", int(id))
}

// cardsNamed returns every instance of a card by catalog name.
func cardsNamed(g *Game, name string) []catalog.CardID {
	var out []catalog.CardID
	for _, id := range g.cat.AllIDs() {
		if card, _ := g.cat.Card(id); card.Name == name {
			out = append(out, id)
		}
	}
	return out
}

// heldBy reports which player holds a card, or "" when it sits in a deck pile.
func heldBy(g *Game, id catalog.CardID) string {
	for pid, p := range g.players {
		if p.holdsInHand(id) {
			return pid
		}
		for _, c := range p.Bank {
			if c == id {
				return pid
			}
		}
		if _, ok := p.findProperty(id); ok {
			return pid
		}
	}
	return ""
}

// grantHand moves n instances of a named card into a player's hand,
// preferring copies still in the deck so earlier rigs stay put.
func grantHand(t *testing.T, g *Game, playerID, name string, n int) []catalog.CardID {
	t.Helper()
	var candidates []catalog.CardID
	for _, id := range cardsNamed(g, name) {
		if holder := heldBy(g, id); holder == "" || holder == playerID {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) < n {
		// Not enough free copies; take held ones too.
		for _, id := range cardsNamed(g, name) {
			if holder := heldBy(g, id); holder != "" && holder != playerID {
				candidates = append(candidates, id)
			}
		}
	}
	require.GreaterOrEqual(t, len(candidates), n, "too few copies of %q", name)
	p := g.players[playerID]
	for _, id := range candidates[:n] {
		extractCard(t, g, id)
		p.Hand = append(p.Hand, id)
	}
	return candidates[:n]
}

// rigBank moves a named card straight into a player's bank.
func rigBank(t *testing.T, g *Game, playerID, name string) catalog.CardID {
	t.Helper()
	id := grantHand(t, g, playerID, name, 1)[0]
	p := g.players[playerID]
	p.removeFromHand(id)
	p.Bank = append(p.Bank, id)
	return id
}

// rigProperty places a named card straight into a player's color column.
func rigProperty(t *testing.T, g *Game, playerID, name string, color catalog.Color) catalog.CardID {
	t.Helper()
	id := grantHand(t, g, playerID, name, 1)[0]
	p := g.players[playerID]
	p.removeFromHand(id)
	p.placeProperty(color, id)
	return id
}

func mustApply(t *testing.T, g *Game, playerID string, action Action) *StateDelta {
	t.Helper()
	delta, err := g.Apply(playerID, action)
	require.NoError(t, err)
	return delta
}

func draw(t *testing.T, g *Game, playerID string) {
	t.Helper()
	mustApply(t, g, playerID, Action{Kind: ActionDraw})
}

func TestNewGameDealsOpeningHands(t *testing.T) {
	g := newTestGame(t, "alice", "bob", "carol")

	for _, pid := range []string{"alice", "bob", "carol"} {
		assert.Equal(t, InitialHandSize, g.players[pid].handSize(), "player %s", pid)
	}
	assert.Equal(t, g.cat.Size()-3*InitialHandSize, g.deck.DrawCount())
	assert.Equal(t, "alice", g.turns.ActivePlayer())

	draw(t, g, "alice")
	assert.Equal(t, InitialHandSize+rules.DrawPerTurn, g.players["alice"].handSize())
}

func TestDrawRequiredBeforeActing(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	money := grantHand(t, g, "alice", "5M", 1)

	_, err := g.Apply("alice", Action{Kind: ActionPlayMoney, Card: money[0]})
	assert.ErrorIs(t, err, ErrMustDrawFirst)

	_, err = g.Apply("alice", Action{Kind: ActionEndPhase})
	assert.ErrorIs(t, err, ErrMustDrawFirst)
}

func TestOffTurnActionRejected(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	_, err := g.Apply("bob", Action{Kind: ActionDraw})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = g.Apply("mallory", Action{Kind: ActionDraw})
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestEmptyHandDrawsFive(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	alice := g.players["alice"]

	// Empty the opening hand back into the discard pile.
	for _, id := range append([]catalog.CardID(nil), alice.Hand...) {
		alice.removeFromHand(id)
		g.deck.Discard(id)
	}

	draw(t, g, "alice")
	assert.Equal(t, rules.DrawOnEmptyHand, alice.handSize())
}

func TestActionLimit(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	money := grantHand(t, g, "alice", "1M", 4)
	draw(t, g, "alice")

	for i := 0; i < rules.MaxPlaysPerTurn; i++ {
		mustApply(t, g, "alice", Action{Kind: ActionPlayMoney, Card: money[i]})
	}
	_, err := g.Apply("alice", Action{Kind: ActionPlayMoney, Card: money[3]})
	assert.ErrorIs(t, err, ErrActionLimitExceeded)
}

func TestBankedPropertyRejected(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	prop := grantHand(t, g, "alice", "Boardwalk", 1)
	draw(t, g, "alice")

	_, err := g.Apply("alice", Action{Kind: ActionPlayMoney, Card: prop[0]})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestWildcardPlacement(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	wild := grantHand(t, g, "alice", "Blue/Green Wild", 1)[0]
	draw(t, g, "alice")

	_, err := g.Apply("alice", Action{Kind: ActionPlayProperty, Card: wild, Color: catalog.ColorBrown})
	assert.ErrorIs(t, err, ErrWildColorInvalid)

	mustApply(t, g, "alice", Action{Kind: ActionPlayProperty, Card: wild, Color: catalog.ColorGreen})
	assert.Equal(t, 1, g.players["alice"].placedCount(catalog.ColorGreen))
	assert.Equal(t, 0, g.players["alice"].placedCount(catalog.ColorDarkBlue))
}

func TestPlacementIntoCompleteSetRejected(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	wild := grantHand(t, g, "alice", "Blue/Green Wild", 1)[0]
	draw(t, g, "alice")

	_, err := g.Apply("alice", Action{Kind: ActionPlayProperty, Card: wild, Color: catalog.ColorDarkBlue})
	assert.ErrorIs(t, err, ErrSetComplete)
}

// A rent demand against a holding of 2 dark blue properties charges the
// table rate; a Just Say No from the target cancels the payment entirely.
func TestRentCancelledByJustSayNo(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	rent := grantHand(t, g, "alice", "Rent Green/Dark Blue", 1)[0]
	jsn := grantHand(t, g, "bob", "Just Say No", 1)[0]
	bobMoney := rigBank(t, g, "bob", "10M")

	draw(t, g, "alice")
	delta := mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: rent, Color: catalog.ColorDarkBlue})
	assert.Equal(t, "bob", delta.CounterWindow)
	assert.Equal(t, rules.PhaseResolving.String(), delta.Phase)

	// Gameplay is parked while the chain is open.
	_, err := g.Apply("alice", Action{Kind: ActionEndPhase})
	assert.ErrorIs(t, err, ErrResolving)

	mustApply(t, g, "bob", Action{Kind: ActionJustSayNo, Card: jsn})
	delta = mustApply(t, g, "alice", Action{Kind: ActionPass})

	assert.Empty(t, delta.CounterWindow)
	assert.Equal(t, rules.PhaseAct.String(), delta.Phase)
	assert.Contains(t, g.players["bob"].Bank, bobMoney, "cancelled rent moves no money")
	assert.Empty(t, g.players["alice"].Bank)
}

// A second Just Say No from the initiator re-arms the original effect.
func TestJustSayNoChainEvenParityApplies(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	rent := grantHand(t, g, "alice", "Rent Green/Dark Blue", 1)[0]
	jsnBob := grantHand(t, g, "bob", "Just Say No", 1)[0]
	jsnAlice := grantHand(t, g, "alice", "Just Say No", 1)[0]
	bobMoney := rigBank(t, g, "bob", "10M")

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: rent, Color: catalog.ColorDarkBlue})
	mustApply(t, g, "bob", Action{Kind: ActionJustSayNo, Card: jsnBob})
	mustApply(t, g, "alice", Action{Kind: ActionJustSayNo, Card: jsnAlice})

	// Window is back with bob, who has no counter left.
	delta := mustApply(t, g, "bob", Action{Kind: ActionPass})
	assert.Empty(t, delta.CounterWindow)
	assert.Contains(t, g.players["alice"].Bank, bobMoney, "even parity applies the rent")
	assert.NotContains(t, g.players["bob"].Bank, bobMoney)
}

func TestJustSayNoRequiresCardInHand(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Baltic Avenue", catalog.ColorBrown)
	rent := grantHand(t, g, "alice", "Rent Brown/Light Blue", 1)[0]
	jsn := cardsNamed(g, "Just Say No")[0]
	extractCard(t, g, jsn)
	g.deck.Discard(jsn)

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: rent, Color: catalog.ColorBrown})

	_, err := g.Apply("bob", Action{Kind: ActionJustSayNo, Card: jsn})
	assert.ErrorIs(t, err, ErrCardNotInHand)
}

func TestRentPaymentGreedy(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	rent := grantHand(t, g, "alice", "Rent Green/Dark Blue", 1)[0]
	five := rigBank(t, g, "bob", "5M")
	two := rigBank(t, g, "bob", "2M")
	one := rigBank(t, g, "bob", "1M")
	prop := rigProperty(t, g, "bob", "Baltic Avenue", catalog.ColorBrown)

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: rent, Color: catalog.ColorDarkBlue})
	mustApply(t, g, "bob", Action{Kind: ActionPass})

	// Rent is 8: the bank covers every bill before any property moves.
	alice := g.players["alice"]
	assert.ElementsMatch(t, []catalog.CardID{five, two, one}, alice.Bank)
	assert.Equal(t, 1, g.players["bob"].placedCount(catalog.ColorBrown))
	assert.NotContains(t, alice.Properties[catalog.ColorBrown], prop)
}

func TestRentPaymentTakesProperties(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	rent := grantHand(t, g, "alice", "Rent Green/Dark Blue", 1)[0]
	one := rigBank(t, g, "bob", "1M")
	prop := rigProperty(t, g, "bob", "Kentucky Avenue", catalog.ColorRed)

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: rent, Color: catalog.ColorDarkBlue})
	mustApply(t, g, "bob", Action{Kind: ActionPass})

	alice := g.players["alice"]
	assert.Contains(t, alice.Bank, one)
	assert.Contains(t, alice.Properties[catalog.ColorRed], prop,
		"short bank pays with properties, keeping their color")
	assert.Equal(t, 0, g.players["bob"].placedCount(catalog.ColorRed))
}

func TestRentRequiresOwnedColor(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rent := grantHand(t, g, "alice", "Rent Green/Dark Blue", 1)[0]
	draw(t, g, "alice")

	_, err := g.Apply("alice", Action{Kind: ActionPlayAction, Card: rent, Color: catalog.ColorDarkBlue})
	assert.ErrorIs(t, err, ErrNoMatchingProperty)
}

func TestDoubleTheRent(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	rent := grantHand(t, g, "alice", "Rent Green/Dark Blue", 1)[0]
	double := grantHand(t, g, "alice", "Double the Rent", 1)
	ten := rigBank(t, g, "bob", "10M")
	five := rigBank(t, g, "bob", "5M")
	two := rigBank(t, g, "bob", "2M")

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{
		Kind: ActionPlayAction, Card: rent,
		Color: catalog.ColorDarkBlue, DoubleRent: double,
	})
	mustApply(t, g, "bob", Action{Kind: ActionPass})

	// Rent 8 doubled to 16: 10M + 5M + 2M greedy.
	assert.ElementsMatch(t, []catalog.CardID{ten, five, two}, g.players["alice"].Bank)
	// The rent play plus the doubler consumed two of the turn's three plays.
	assert.Equal(t, 2, g.turns.ActionsPlayed())
}

// Scenario: a house on a complete set raises the effective rent by the
// house bonus, and a second house is rejected.
func TestHousePlacement(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	houses := grantHand(t, g, "alice", "House", 2)
	draw(t, g, "alice")

	before := rules.ComputeRent(catalog.ColorDarkBlue, g.players["alice"].holding(catalog.ColorDarkBlue), 0)
	mustApply(t, g, "alice", Action{Kind: ActionPlayBuilding, Card: houses[0], Color: catalog.ColorDarkBlue})
	after := rules.ComputeRent(catalog.ColorDarkBlue, g.players["alice"].holding(catalog.ColorDarkBlue), 0)
	assert.Equal(t, before+catalog.HouseBonus, after)

	_, err := g.Apply("alice", Action{Kind: ActionPlayBuilding, Card: houses[1], Color: catalog.ColorDarkBlue})
	assert.ErrorIs(t, err, ErrBuildIneligible)
}

func TestHouseNeedsCompleteSet(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	house := grantHand(t, g, "alice", "House", 1)[0]
	draw(t, g, "alice")

	_, err := g.Apply("alice", Action{Kind: ActionPlayBuilding, Card: house, Color: catalog.ColorDarkBlue})
	assert.ErrorIs(t, err, ErrBuildIneligible)
}

func TestHotelRequiresHouse(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	hotel := grantHand(t, g, "alice", "Hotel", 1)[0]
	draw(t, g, "alice")

	_, err := g.Apply("alice", Action{Kind: ActionPlayBuilding, Card: hotel, Color: catalog.ColorDarkBlue})
	assert.ErrorIs(t, err, ErrBuildIneligible)
}

// Scenario: a 9-card hand cannot end the turn until 2 cards go.
func TestDiscardDownToHandLimit(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	extra := grantHand(t, g, "alice", "1M", 2)
	draw(t, g, "alice") // 5 + 2 granted + 2 drawn = 9

	alice := g.players["alice"]
	require.Equal(t, 9, alice.handSize())

	mustApply(t, g, "alice", Action{Kind: ActionEndPhase})
	assert.Equal(t, rules.PhaseDiscard, g.turns.Phase())

	_, err := g.Apply("alice", Action{Kind: ActionEndPhase})
	assert.ErrorIs(t, err, ErrHandOverLimit)

	_, err = g.Apply("alice", Action{Kind: ActionDiscard, Discards: append([]catalog.CardID(nil), extra[0], extra[1], alice.Hand[0])})
	assert.ErrorIs(t, err, ErrInvalidAction, "discarding below the limit is rejected")

	mustApply(t, g, "alice", Action{Kind: ActionDiscard, Discards: []catalog.CardID{extra[0], extra[1]}})
	assert.Equal(t, rules.HandLimit, alice.handSize())
	assert.Equal(t, "bob", g.turns.ActivePlayer(), "completing the discard ends the turn")
}

func TestEndTurnUnderLimitSkipsDiscard(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	draw(t, g, "alice")

	mustApply(t, g, "alice", Action{Kind: ActionEndPhase})
	assert.Equal(t, "bob", g.turns.ActivePlayer())
	assert.Equal(t, rules.PhaseDraw, g.turns.Phase())
}

func TestPassGoDrawsImmediately(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	passGo := grantHand(t, g, "alice", "Pass Go", 1)[0]
	draw(t, g, "alice")

	before := g.players["alice"].handSize()
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: passGo})
	assert.Equal(t, before-1+catalog.PassGoDraw, g.players["alice"].handSize())
	assert.True(t, g.stack.IsEmpty(), "Pass Go opens no counter window")
}

func TestBirthdayCollectsFromEveryOpponent(t *testing.T) {
	g := newTestGame(t, "alice", "bob", "carol")
	birthday := grantHand(t, g, "alice", "It's My Birthday", 1)[0]
	bobMoney := rigBank(t, g, "bob", "2M")
	carolMoney := rigBank(t, g, "carol", "2M")

	draw(t, g, "alice")
	delta := mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: birthday})
	assert.Equal(t, "bob", delta.CounterWindow, "first seat after the initiator responds first")

	mustApply(t, g, "bob", Action{Kind: ActionPass})
	delta = mustApply(t, g, "carol", Action{Kind: ActionPass})

	assert.Empty(t, delta.CounterWindow)
	assert.ElementsMatch(t, []catalog.CardID{bobMoney, carolMoney}, g.players["alice"].Bank)
}

func TestDebtCollector(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	debt := grantHand(t, g, "alice", "Debt Collector", 1)[0]
	five := rigBank(t, g, "bob", "5M")

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: debt, Target: "bob"})
	mustApply(t, g, "bob", Action{Kind: ActionPass})

	assert.Contains(t, g.players["alice"].Bank, five)
}

func TestSlyDealCannotTouchCompleteSet(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	sly := grantHand(t, g, "alice", "Sly Deal", 1)[0]
	rigProperty(t, g, "bob", "Park Place", catalog.ColorDarkBlue)
	target := rigProperty(t, g, "bob", "Boardwalk", catalog.ColorDarkBlue)

	draw(t, g, "alice")
	_, err := g.Apply("alice", Action{Kind: ActionPlayAction, Card: sly, Target: "bob", TargetCard: target})
	assert.ErrorIs(t, err, ErrSetComplete)
}

func TestSlyDealStealsProperty(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	sly := grantHand(t, g, "alice", "Sly Deal", 1)[0]
	target := rigProperty(t, g, "bob", "Baltic Avenue", catalog.ColorBrown)

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: sly, Target: "bob", TargetCard: target})
	mustApply(t, g, "bob", Action{Kind: ActionPass})

	assert.Contains(t, g.players["alice"].Properties[catalog.ColorBrown], target)
	assert.Equal(t, 0, g.players["bob"].placedCount(catalog.ColorBrown))
}

func TestForcedDealSwapsProperties(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	forced := grantHand(t, g, "alice", "Forced Deal", 1)[0]
	give := rigProperty(t, g, "alice", "Baltic Avenue", catalog.ColorBrown)
	want := rigProperty(t, g, "bob", "Kentucky Avenue", catalog.ColorRed)

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{
		Kind: ActionPlayAction, Card: forced,
		Target: "bob", TargetCard: want, GiveCard: give,
	})
	mustApply(t, g, "bob", Action{Kind: ActionPass})

	assert.Contains(t, g.players["alice"].Properties[catalog.ColorRed], want)
	assert.Contains(t, g.players["bob"].Properties[catalog.ColorBrown], give)
}

func TestForcedDealCannotGiveFromCompleteSet(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	forced := grantHand(t, g, "alice", "Forced Deal", 1)[0]
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	give := rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	want := rigProperty(t, g, "bob", "Baltic Avenue", catalog.ColorBrown)

	draw(t, g, "alice")
	_, err := g.Apply("alice", Action{
		Kind: ActionPlayAction, Card: forced,
		Target: "bob", TargetCard: want, GiveCard: give,
	})
	assert.ErrorIs(t, err, ErrSetComplete)
	assert.Equal(t, 2, g.players["alice"].placedCount(catalog.ColorDarkBlue),
		"rejected trade leaves the set intact")
}

func TestDealBreakerRequiresCompleteSet(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	breaker := grantHand(t, g, "alice", "Deal Breaker", 1)[0]
	rigProperty(t, g, "bob", "Park Place", catalog.ColorDarkBlue)

	draw(t, g, "alice")
	_, err := g.Apply("alice", Action{Kind: ActionPlayAction, Card: breaker, Target: "bob", Color: catalog.ColorDarkBlue})
	assert.ErrorIs(t, err, ErrSetNotComplete)
}

func TestDealBreakerTransfersSetAndWinsGame(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Mediterranean Avenue", catalog.ColorBrown)
	rigProperty(t, g, "alice", "Baltic Avenue", catalog.ColorBrown)
	rigProperty(t, g, "alice", "Electric Company", catalog.ColorUtility)
	rigProperty(t, g, "alice", "Water Works", catalog.ColorUtility)
	rigProperty(t, g, "bob", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "bob", "Boardwalk", catalog.ColorDarkBlue)
	breaker := grantHand(t, g, "alice", "Deal Breaker", 1)[0]

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: breaker, Target: "bob", Color: catalog.ColorDarkBlue})
	delta := mustApply(t, g, "bob", Action{Kind: ActionPass})

	assert.Equal(t, "alice", delta.Winner, "the stolen set is the third complete set")
	assert.Equal(t, 2, g.players["alice"].placedCount(catalog.ColorDarkBlue))

	_, err := g.Apply("bob", Action{Kind: ActionDraw})
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestDealBreakerRedirectsOverflowWildcard(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "bob", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "bob", "Boardwalk", catalog.ColorDarkBlue)
	wild := rigProperty(t, g, "alice", "Blue/Green Wild", catalog.ColorDarkBlue)
	breaker := grantHand(t, g, "alice", "Deal Breaker", 1)[0]

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: breaker, Target: "bob", Color: catalog.ColorDarkBlue})
	mustApply(t, g, "bob", Action{Kind: ActionPass})

	alice := g.players["alice"]
	assert.Equal(t, catalog.SetSize(catalog.ColorDarkBlue), alice.placedCount(catalog.ColorDarkBlue),
		"column never exceeds the set size")
	assert.Contains(t, alice.Properties[catalog.ColorGreen], wild,
		"displaced wildcard moves to another color it can satisfy")
}

func TestDealBreakerBanksUnmovableOverflow(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "bob", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "bob", "Blue/Green Wild", catalog.ColorDarkBlue)
	boardwalk := rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	breaker := grantHand(t, g, "alice", "Deal Breaker", 1)[0]

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: breaker, Target: "bob", Color: catalog.ColorDarkBlue})
	mustApply(t, g, "bob", Action{Kind: ActionPass})

	alice := g.players["alice"]
	assert.Equal(t, catalog.SetSize(catalog.ColorDarkBlue), alice.placedCount(catalog.ColorDarkBlue))
	assert.Contains(t, alice.Bank, boardwalk, "a street with nowhere else to go is banked")
}

func TestWinOnThirdCompleteSet(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Mediterranean Avenue", catalog.ColorBrown)
	rigProperty(t, g, "alice", "Baltic Avenue", catalog.ColorBrown)
	rigProperty(t, g, "alice", "Electric Company", catalog.ColorUtility)
	rigProperty(t, g, "alice", "Water Works", catalog.ColorUtility)
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	boardwalk := grantHand(t, g, "alice", "Boardwalk", 1)[0]

	draw(t, g, "alice")
	delta := mustApply(t, g, "alice", Action{Kind: ActionPlayProperty, Card: boardwalk})

	assert.Equal(t, "alice", delta.Winner)
	assert.Equal(t, "alice", g.Winner())
}

func TestTwoCompleteSetsDoNotWin(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	rigProperty(t, g, "alice", "Mediterranean Avenue", catalog.ColorBrown)
	rigProperty(t, g, "alice", "Baltic Avenue", catalog.ColorBrown)
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	boardwalk := grantHand(t, g, "alice", "Boardwalk", 1)[0]

	draw(t, g, "alice")
	delta := mustApply(t, g, "alice", Action{Kind: ActionPlayProperty, Card: boardwalk})
	assert.Empty(t, delta.Winner)
}

func TestRemovePlayerReturnsCardsAndDeclinesWindows(t *testing.T) {
	g := newTestGame(t, "alice", "bob", "carol")
	rigProperty(t, g, "alice", "Park Place", catalog.ColorDarkBlue)
	rigProperty(t, g, "alice", "Boardwalk", catalog.ColorDarkBlue)
	rent := grantHand(t, g, "alice", "Rent Green/Dark Blue", 1)[0]
	bobMoney := rigBank(t, g, "bob", "5M")

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: rent, Color: catalog.ColorDarkBlue})
	require.False(t, g.stack.IsEmpty())

	// Bob leaves holding the counter window: the rent applies against his
	// piles before they return to the discard.
	require.NoError(t, g.RemovePlayer("bob"))

	assert.Contains(t, g.players["alice"].Bank, bobMoney)
	assert.NotContains(t, g.order, "bob")

	total := g.deck.cardsInPiles()
	for _, p := range g.players {
		total += p.cardCount()
	}
	assert.Equal(t, g.cat.Size(), total, "departed player's cards stay in circulation")
}

func TestRemovePlayerSettlesBuriedWindowImmediately(t *testing.T) {
	g := newTestGame(t, "alice", "bob", "carol")
	birthday := grantHand(t, g, "alice", "It's My Birthday", 1)[0]
	bobMoney := rigBank(t, g, "bob", "2M")
	carolMoney := rigBank(t, g, "carol", "2M")

	draw(t, g, "alice")
	mustApply(t, g, "alice", Action{Kind: ActionPlayAction, Card: birthday})

	// Carol holds the window of the buried frame. Her departure settles that
	// frame right away; bob's frame stays open on top and resolves normally.
	require.NoError(t, g.RemovePlayer("carol"))
	assert.Contains(t, g.players["alice"].Bank, carolMoney)

	window, ok := g.stack.CounterWindow()
	require.True(t, ok, "bob's frame survives carol's departure")
	assert.Equal(t, "bob", window)

	mustApply(t, g, "bob", Action{Kind: ActionPass})
	assert.Contains(t, g.players["alice"].Bank, bobMoney)
	assert.True(t, g.stack.IsEmpty())
}

func TestLoneSurvivorWins(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	require.NoError(t, g.RemovePlayer("bob"))
	assert.Equal(t, "alice", g.Winner())
}

func TestConservationHoldsThroughPlay(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	money := grantHand(t, g, "alice", "2M", 2)
	draw(t, g, "alice")

	mustApply(t, g, "alice", Action{Kind: ActionPlayMoney, Card: money[0]})
	mustApply(t, g, "alice", Action{Kind: ActionPlayMoney, Card: money[1]})
	mustApply(t, g, "alice", Action{Kind: ActionEndPhase})

	total := g.deck.cardsInPiles()
	for _, p := range g.players {
		total += p.cardCount()
	}
	assert.Equal(t, g.cat.Size(), total)
}
