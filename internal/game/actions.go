package game

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gavvahar/Monopoly-Deal/internal/catalog"
	"github.com/gavvahar/Monopoly-Deal/internal/game/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (g *Game) handlePlayAction(p *playerState, action Action) error {
	card, err := g.beginPlay(p, action.Card)
	if err != nil {
		return err
	}

	switch card.Kind {
	case catalog.KindRent:
		return g.playRent(p, card, action)
	case catalog.KindJustSayNo:
		return fmt.Errorf("%w: Just Say No is only playable as a counter", ErrInvalidAction)
	case catalog.KindAction:
	default:
		return fmt.Errorf("%w: %s is not an action card", ErrInvalidAction, card.Name)
	}

	switch card.Action {
	case catalog.ActionPassGo:
		return g.playPassGo(p, card)
	case catalog.ActionDealBreaker:
		return g.playDealBreaker(p, card, action)
	case catalog.ActionSlyDeal:
		return g.playSlyDeal(p, card, action)
	case catalog.ActionForcedDeal:
		return g.playForcedDeal(p, card, action)
	case catalog.ActionDebtCollector:
		return g.playDebtCollector(p, card, action)
	case catalog.ActionBirthday:
		return g.playBirthday(p, card)
	case catalog.ActionDoubleRent:
		return fmt.Errorf("%w: Double The Rent is only playable alongside a rent card", ErrInvalidAction)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidAction, card.Name)
	}
}

// spendActionCard moves a played action card from hand to the discard pile
// and consumes a play. The card is spent even if the effect is later
// negated by a Just Say No.
func (g *Game) spendActionCard(p *playerState, card catalog.Card) {
	p.removeFromHand(card.ID)
	g.deck.Discard(card.ID)
	g.turns.RecordPlay()

	ev := rules.NewEvent(rules.EventActionPlayed, p.ID, "")
	ev.Metadata["card"] = card.Name
	g.emit(ev)
}

// targetOf resolves and validates an opponent named by an action.
func (g *Game) targetOf(p *playerState, action Action) (*playerState, error) {
	if action.Target == "" {
		return nil, fmt.Errorf("%w: target required", ErrInvalidAction)
	}
	if action.Target == p.ID {
		return nil, fmt.Errorf("%w: cannot target yourself", ErrInvalidAction)
	}
	target, ok := g.players[action.Target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, action.Target)
	}
	return target, nil
}

// opponentsAfter lists the other players in seat order starting from the
// seat after p, so multi-target effects resolve around the table.
func (g *Game) opponentsAfter(p *playerState) []string {
	start := 0
	for i, pid := range g.order {
		if pid == p.ID {
			start = i
			break
		}
	}
	out := make([]string, 0, len(g.order)-1)
	for i := 1; i < len(g.order); i++ {
		out = append(out, g.order[(start+i)%len(g.order)])
	}
	return out
}

// pushFrame opens a counter window and parks the turn in the resolving
// state until the chain settles.
func (g *Game) pushFrame(frame rules.Frame) {
	if frame.ID == "" {
		frame.ID = uuid.NewString()
	}
	g.stack.Push(frame)
	g.turns.EnterResolving()
}

func (g *Game) playPassGo(p *playerState, card catalog.Card) error {
	g.spendActionCard(p, card)

	// Pass Go is not interruptible: the cards are in hand immediately.
	cards, reshuffled := g.deck.Draw(catalog.PassGoDraw)
	p.Hand = append(p.Hand, cards...)
	if reshuffled {
		g.emit(rules.NewEvent(rules.EventDeckReshuffled, p.ID, ""))
	}
	ev := rules.NewEvent(rules.EventCardsDrawn, p.ID, "")
	ev.Amount = len(cards)
	g.emit(ev)
	return nil
}

func (g *Game) playDealBreaker(p *playerState, card catalog.Card, action Action) error {
	target, err := g.targetOf(p, action)
	if err != nil {
		return err
	}
	color := action.Color
	holding := target.holding(color)
	if holding.Placed == 0 {
		return fmt.Errorf("%w: %s has no %s properties", ErrNoMatchingProperty, target.ID, color)
	}
	if !holding.IsComplete(color) {
		return fmt.Errorf("%w: %s %s", ErrSetNotComplete, target.ID, color)
	}

	g.spendActionCard(p, card)
	g.pushFrame(rules.Frame{
		Initiator:   p.ID,
		Target:      target.ID,
		Description: fmt.Sprintf("Deal Breaker: %s set", color),
		Apply: func() error {
			return g.transferSet(target, p, color)
		},
	})
	return nil
}

// transferSet moves a whole color column, buildings included, between
// players.
func (g *Game) transferSet(from, to *playerState, color catalog.Color) error {
	column := from.Properties[color]
	if len(column) == 0 || !from.holding(color).IsComplete(color) {
		return fmt.Errorf("%w: %s no longer complete", ErrSetNotComplete, color)
	}

	// Cards the recipient already had in this color would overfill the
	// column once the full set arrives; they are re-homed first.
	displaced := append([]catalog.CardID(nil), to.Properties[color]...)
	for _, id := range displaced {
		to.removeProperty(color, id)
	}
	for _, id := range displaced {
		g.overflowProperty(to, id, color)
	}

	for _, id := range column {
		to.placeProperty(color, id)
	}
	delete(from.Properties, color)

	if fb, ok := from.Buildings[color]; ok {
		tb := to.ensureBuildings(color)
		if fb.House {
			if tb.House {
				to.Bank = append(to.Bank, fb.HouseCard)
			} else {
				tb.House = true
				tb.HouseCard = fb.HouseCard
			}
		}
		if fb.Hotel {
			if tb.Hotel {
				to.Bank = append(to.Bank, fb.HotelCard)
			} else {
				tb.Hotel = true
				tb.HotelCard = fb.HotelCard
			}
		}
		delete(from.Buildings, color)
	}

	ev := rules.NewEvent(rules.EventSetStolen, to.ID, from.ID)
	ev.Metadata["color"] = color.String()
	g.emit(ev)

	g.checkWin(to)
	return nil
}

// overflowProperty re-homes a card that no longer fits a full color column:
// a wildcard moves to another color it can satisfy with room, anything else
// is banked. Either way no column exceeds its set size.
func (g *Game) overflowProperty(p *playerState, id catalog.CardID, exclude catalog.Color) {
	if card, ok := g.cat.Card(id); ok {
		for _, c := range card.Colors {
			if c != exclude && !p.holding(c).IsComplete(c) {
				p.placeProperty(c, id)
				return
			}
		}
	}
	p.Bank = append(p.Bank, id)
}

// acquireProperty adds a property taken from an opponent, overflowing when
// the destination column is already complete.
func (g *Game) acquireProperty(p *playerState, color catalog.Color, id catalog.CardID) {
	if p.holding(color).IsComplete(color) {
		g.overflowProperty(p, id, color)
		return
	}
	p.placeProperty(color, id)
}

func (g *Game) playSlyDeal(p *playerState, card catalog.Card, action Action) error {
	target, err := g.targetOf(p, action)
	if err != nil {
		return err
	}
	color, ok := target.findProperty(action.TargetCard)
	if !ok {
		return fmt.Errorf("%w: %s does not hold card %d", ErrNoMatchingProperty, target.ID, int(action.TargetCard))
	}
	if target.holding(color).IsComplete(color) {
		return fmt.Errorf("%w: cannot steal from a complete %s set", ErrSetComplete, color)
	}

	wanted := action.TargetCard
	g.spendActionCard(p, card)
	g.pushFrame(rules.Frame{
		Initiator:   p.ID,
		Target:      target.ID,
		Description: fmt.Sprintf("Sly Deal: card %d", int(wanted)),
		Apply: func() error {
			col, ok := target.findProperty(wanted)
			if !ok {
				return fmt.Errorf("%w: card %d gone", ErrNoMatchingProperty, int(wanted))
			}
			target.removeProperty(col, wanted)
			g.acquireProperty(p, col, wanted)

			ev := rules.NewEvent(rules.EventSetStolen, p.ID, target.ID)
			ev.Metadata["color"] = col.String()
			g.emit(ev)

			g.checkWin(p)
			return nil
		},
	})
	return nil
}

func (g *Game) playForcedDeal(p *playerState, card catalog.Card, action Action) error {
	target, err := g.targetOf(p, action)
	if err != nil {
		return err
	}
	wantColor, ok := target.findProperty(action.TargetCard)
	if !ok {
		return fmt.Errorf("%w: %s does not hold card %d", ErrNoMatchingProperty, target.ID, int(action.TargetCard))
	}
	if target.holding(wantColor).IsComplete(wantColor) {
		return fmt.Errorf("%w: cannot trade from a complete %s set", ErrSetComplete, wantColor)
	}
	giveColor, ok := p.findProperty(action.GiveCard)
	if !ok {
		return fmt.Errorf("%w: you do not hold card %d", ErrNoMatchingProperty, int(action.GiveCard))
	}
	if p.holding(giveColor).IsComplete(giveColor) {
		return fmt.Errorf("%w: cannot trade out of a complete %s set", ErrSetComplete, giveColor)
	}

	wanted, given := action.TargetCard, action.GiveCard
	g.spendActionCard(p, card)
	g.pushFrame(rules.Frame{
		Initiator:   p.ID,
		Target:      target.ID,
		Description: fmt.Sprintf("Forced Deal: card %d for card %d", int(wanted), int(given)),
		Apply: func() error {
			wantCol, wantOK := target.findProperty(wanted)
			giveCol, giveOK := p.findProperty(given)
			if !wantOK || !giveOK {
				return fmt.Errorf("%w: trade cards moved", ErrNoMatchingProperty)
			}
			target.removeProperty(wantCol, wanted)
			p.removeProperty(giveCol, given)
			g.acquireProperty(p, wantCol, wanted)
			g.acquireProperty(target, giveCol, given)

			g.emit(rules.NewEvent(rules.EventPropertySwapped, p.ID, target.ID))

			g.checkWin(p)
			g.checkWin(target)
			return nil
		},
	})
	return nil
}

func (g *Game) playDebtCollector(p *playerState, card catalog.Card, action Action) error {
	target, err := g.targetOf(p, action)
	if err != nil {
		return err
	}

	g.spendActionCard(p, card)
	ev := rules.NewEvent(rules.EventDebtDemanded, p.ID, target.ID)
	ev.Amount = catalog.DebtCollectorAmount
	g.emit(ev)

	g.pushFrame(rules.Frame{
		Initiator:   p.ID,
		Target:      target.ID,
		Description: fmt.Sprintf("Debt Collector: %dM", catalog.DebtCollectorAmount),
		Apply: func() error {
			g.settlePayment(target, p, catalog.DebtCollectorAmount)
			return nil
		},
	})
	return nil
}

func (g *Game) playBirthday(p *playerState, card catalog.Card) error {
	opponents := g.opponentsAfter(p)
	g.spendActionCard(p, card)

	// Pushed in reverse so the first seat after the initiator holds the
	// topmost counter window.
	for i := len(opponents) - 1; i >= 0; i-- {
		oppID := opponents[i]
		opp := g.players[oppID]

		ev := rules.NewEvent(rules.EventDebtDemanded, p.ID, oppID)
		ev.Amount = catalog.BirthdayAmount
		g.emit(ev)

		g.pushFrame(rules.Frame{
			Initiator:   p.ID,
			Target:      oppID,
			Description: fmt.Sprintf("It's My Birthday: %dM", catalog.BirthdayAmount),
			Apply: func() error {
				g.settlePayment(opp, p, catalog.BirthdayAmount)
				return nil
			},
		})
	}
	return nil
}

func (g *Game) playRent(p *playerState, card catalog.Card, action Action) error {
	color := action.Color
	if !card.CanSatisfy(color) {
		return fmt.Errorf("%w: %s cannot charge %s rent", ErrInvalidAction, card.Name, color)
	}
	holding := p.holding(color)
	if holding.Placed == 0 {
		return fmt.Errorf("%w: no %s properties placed", ErrNoMatchingProperty, color)
	}

	// Double The Rent cards each consume one of the turn's plays, on top of
	// the rent card itself.
	doubles := action.DoubleRent
	if len(doubles) > rules.MaxDoubleTheRent {
		return fmt.Errorf("%w: at most %d Double The Rent cards", ErrInvalidAction, rules.MaxDoubleTheRent)
	}
	for _, id := range doubles {
		dc, ok := g.cat.Card(id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownCard, int(id))
		}
		if dc.Action != catalog.ActionDoubleRent {
			return fmt.Errorf("%w: %s is not Double The Rent", ErrInvalidAction, dc.Name)
		}
		if !p.holdsInHand(id) {
			return fmt.Errorf("%w: %s", ErrCardNotInHand, dc.Name)
		}
	}
	if len(doubles) == 2 && doubles[0] == doubles[1] {
		return fmt.Errorf("%w: %d", ErrCardNotInHand, int(doubles[0]))
	}
	if g.turns.ActionsPlayed()+1+len(doubles) > rules.MaxPlaysPerTurn {
		return fmt.Errorf("%w: rent with %d doublers needs %d plays", ErrActionLimitExceeded, len(doubles), 1+len(doubles))
	}

	var targets []string
	if len(card.Colors) == len(catalog.Colors()) {
		// The any-color wild rent bills a single opponent.
		target, err := g.targetOf(p, action)
		if err != nil {
			return err
		}
		targets = []string{target.ID}
	} else {
		targets = g.opponentsAfter(p)
	}

	amount := rules.ComputeRent(color, holding, len(doubles))

	g.spendActionCard(p, card)
	for _, id := range doubles {
		p.removeFromHand(id)
		g.deck.Discard(id)
		g.turns.RecordPlay()
	}

	for i := len(targets) - 1; i >= 0; i-- {
		targetID := targets[i]
		debtor := g.players[targetID]

		ev := rules.NewEvent(rules.EventRentDemanded, p.ID, targetID)
		ev.Amount = amount
		ev.Metadata["color"] = color.String()
		g.emit(ev)

		g.pushFrame(rules.Frame{
			Initiator:   p.ID,
			Target:      targetID,
			Description: fmt.Sprintf("%s rent: %dM", color, amount),
			Apply: func() error {
				g.settlePayment(debtor, p, amount)
				return nil
			},
		})
	}
	return nil
}

// settlePayment transfers value from payer to payee: bank bills first,
// largest first, then property cards by descending value. Property cards
// keep their column color on the payee's side unless that column is already
// complete, in which case they overflow. A payer who runs out of cards pays
// what they have.
func (g *Game) settlePayment(payer, payee *playerState, amount int) {
	if amount <= 0 {
		return
	}
	paid := 0

	bills := append([]catalog.CardID(nil), payer.Bank...)
	sort.SliceStable(bills, func(i, j int) bool {
		return g.cardValue(bills[i]) > g.cardValue(bills[j])
	})
	for _, id := range bills {
		if paid >= amount {
			break
		}
		for i, b := range payer.Bank {
			if b == id {
				payer.Bank = append(payer.Bank[:i], payer.Bank[i+1:]...)
				break
			}
		}
		payee.Bank = append(payee.Bank, id)
		paid += g.cardValue(id)
	}

	if paid < amount {
		type placed struct {
			color catalog.Color
			id    catalog.CardID
		}
		var props []placed
		for color, column := range payer.Properties {
			for _, id := range column {
				// Zero-value cards (the any-color wildcard) pay nothing
				// and stay put.
				if g.cardValue(id) > 0 {
					props = append(props, placed{color, id})
				}
			}
		}
		sort.SliceStable(props, func(i, j int) bool {
			vi, vj := g.cardValue(props[i].id), g.cardValue(props[j].id)
			if vi != vj {
				return vi > vj
			}
			return props[i].id < props[j].id
		})
		for _, pr := range props {
			if paid >= amount {
				break
			}
			payer.removeProperty(pr.color, pr.id)
			g.acquireProperty(payee, pr.color, pr.id)
			paid += g.cardValue(pr.id)
		}
	}

	ev := rules.NewEvent(rules.EventPaymentMade, payer.ID, payee.ID)
	ev.Amount = paid
	g.emit(ev)

	// Received property cards can complete sets.
	g.checkWin(payee)
}

func (g *Game) cardValue(id catalog.CardID) int {
	card, ok := g.cat.Card(id)
	if !ok {
		return 0
	}
	return card.Value
}

// handleJustSayNo counters the top frame. Just Say No is playable off-turn
// and does not consume one of the turn's plays.
func (g *Game) handleJustSayNo(p *playerState, action Action) error {
	card, ok := g.cat.Card(action.Card)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCard, int(action.Card))
	}
	if card.Kind != catalog.KindJustSayNo {
		return fmt.Errorf("%w: %s is not Just Say No", ErrInvalidAction, card.Name)
	}
	if !p.holdsInHand(card.ID) {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, card.Name)
	}

	if err := g.stack.Negate(p.ID); err != nil {
		if errors.Is(err, rules.ErrNotCounterWindow) {
			return fmt.Errorf("%w: counter window is elsewhere", ErrNotYourTurn)
		}
		return err
	}

	p.removeFromHand(card.ID)
	g.deck.Discard(card.ID)

	top, _ := g.stack.Peek()
	ev := rules.NewEvent(rules.EventJustSayNoPlayed, p.ID, "")
	ev.Amount = top.NegationParity
	ev.Description = top.Description
	g.emit(ev)
	return nil
}

// handleDecline passes on the open counter window, popping the top frame.
// Even negation parity applies the original effect, odd parity cancels it.
func (g *Game) handleDecline(p *playerState) error {
	frame, applied, err := g.stack.Decline(p.ID)
	if err != nil {
		if errors.Is(err, rules.ErrNotCounterWindow) {
			return fmt.Errorf("%w: counter window is elsewhere", ErrNotYourTurn)
		}
		return err
	}

	if applied && frame.Apply != nil {
		if applyErr := frame.Apply(); applyErr != nil {
			// The effect's preconditions evaporated while it waited on the
			// stack. The frame fizzles; state is unchanged.
			g.logger.Warn("pending effect fizzled",
				zap.String("game_id", g.id),
				zap.String("frame", frame.ID),
				zap.Error(applyErr),
			)
			g.emit(rules.NewEvent(rules.EventEffectCancelled, frame.Initiator, frame.Target))
		} else {
			ev := rules.NewEvent(rules.EventEffectApplied, frame.Initiator, frame.Target)
			ev.Description = frame.Description
			g.emit(ev)
		}
	} else {
		if frame.Cancel != nil {
			frame.Cancel()
		}
		ev := rules.NewEvent(rules.EventEffectCancelled, frame.Initiator, frame.Target)
		ev.Description = frame.Description
		g.emit(ev)
	}

	if g.stack.IsEmpty() {
		g.turns.ExitResolving()
		ev := rules.NewEvent(rules.EventPhaseChanged, g.turns.ActivePlayer(), "")
		ev.Description = g.turns.Phase().String()
		g.emit(ev)
	}
	return nil
}
