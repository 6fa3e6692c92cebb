package game

import (
	"fmt"

	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

func (g *Game) buildSettlement(c Color, point int) error {
	if err := g.require(rules.ActionBuildSettlement); err != nil {
		return err
	}
	p, err := g.requireTurn(c)
	if err != nil {
		return err
	}
	setup := g.states.CurrentState().IsSetup()

	if p.Stock.Settlements == 0 {
		return fmt.Errorf("%w: no settlements left", ErrInsufficientStock)
	}
	if err := g.board.CheckSettlement(int(c), point, !setup); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlacement, err)
	}
	if !setup && !resources.Transfer(p.Hand, g.bank, resources.SettlementCost) {
		return fmt.Errorf("%w: settlement costs %s", ErrInsufficientResources, resources.SettlementCost)
	}

	g.board.PlaceSettlement(int(c), point)
	p.Stock.Settlements--
	g.emit(rules.NewEventWithAmount(rules.EventSettlementBuilt, int(c), point))

	if setup {
		g.setupAnchor = point
		if g.inSecondSetupRound() {
			g.grantStartingResources(p, point)
		}
	}

	if err := g.moveState(rules.ActionBuildSettlement); err != nil {
		return err
	}
	g.updateLongestRoad()
	return nil
}

// grantStartingResources pays out one card per resource hex around a second
// setup settlement, as far as the bank allows.
func (g *Game) grantStartingResources(p *Player, point int) {
	granted := resources.NewCollection()
	for kind, n := range g.board.StartingYield(point) {
		n = min(n, g.bank.Get(kind))
		if n > 0 {
			g.bank.Remove(kind, n)
			granted.Add(kind, n)
		}
	}
	p.Hand.AddAll(granted)
	if !granted.IsEmpty() {
		g.emit(rules.NewEventWithResources(rules.EventResourcesProduced, int(p.Color), granted))
	}
}

func (g *Game) buildRoad(c Color, edge int) error {
	if err := g.require(rules.ActionBuildRoad); err != nil {
		return err
	}
	p, err := g.requireTurn(c)
	if err != nil {
		return err
	}
	state := g.states.CurrentState()

	if p.Stock.Roads == 0 {
		return fmt.Errorf("%w: no roads left", ErrInsufficientStock)
	}
	anchor := -1
	if state == rules.StateSetupRoad {
		anchor = g.setupAnchor
	}
	if err := g.board.CheckRoad(int(c), edge, anchor); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlacement, err)
	}
	free := state == rules.StateSetupRoad || state == rules.StateRoamingRoads
	if !free && !resources.Transfer(p.Hand, g.bank, resources.RoadCost) {
		return fmt.Errorf("%w: road costs %s", ErrInsufficientResources, resources.RoadCost)
	}

	g.board.PlaceRoad(int(c), edge)
	p.Stock.Roads--
	g.emit(rules.NewEventWithAmount(rules.EventRoadBuilt, int(c), edge))

	if err := g.moveState(rules.ActionBuildRoad); err != nil {
		return err
	}
	g.updateLongestRoad()

	switch state {
	case rules.StateSetupRoad:
		return g.advanceSetup()
	case rules.StateRoamingRoads:
		g.roamingLeft--
		if g.roamingLeft > 0 && p.Stock.Roads > 0 && len(g.board.AvailableRoads(int(c), -1)) > 0 {
			return nil
		}
		g.roamingLeft = 0
		return g.moveState(rules.ActionRoamingComplete)
	}
	return nil
}

func (g *Game) buildTown(c Color, point int) error {
	if err := g.require(rules.ActionBuildTown); err != nil {
		return err
	}
	p, err := g.requireTurn(c)
	if err != nil {
		return err
	}
	if p.Stock.Towns == 0 {
		return fmt.Errorf("%w: no towns left", ErrInsufficientStock)
	}
	if err := g.board.CheckTown(int(c), point); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlacement, err)
	}
	if !resources.Transfer(p.Hand, g.bank, resources.TownCost) {
		return fmt.Errorf("%w: town costs %s", ErrInsufficientResources, resources.TownCost)
	}

	g.board.UpgradeToTown(point)
	p.Stock.Towns--
	p.Stock.Settlements++
	g.emit(rules.NewEventWithAmount(rules.EventTownBuilt, int(c), point))
	return g.moveState(rules.ActionBuildTown)
}

// updateLongestRoad recomputes every player's longest trail and moves the
// bonus. The holder keeps it on a tie; when the holder is overtaken or drops
// below the minimum, a sole leader takes it and a tie leaves it unclaimed.
func (g *Game) updateLongestRoad() {
	best := 0
	for _, p := range g.players {
		p.RoadLength = g.board.LongestRoad(int(p.Color))
		best = max(best, p.RoadLength)
	}

	if g.longestRoad != ColorNone {
		holder, _ := g.player(g.longestRoad)
		if holder.RoadLength >= MinLongestRoad && holder.RoadLength >= best {
			return
		}
	}

	next := ColorNone
	if best >= MinLongestRoad {
		for _, p := range g.players {
			if p.RoadLength != best {
				continue
			}
			if next != ColorNone {
				next = ColorNone
				break
			}
			next = p.Color
		}
	}
	if next == g.longestRoad {
		return
	}
	g.longestRoad = next
	length := 0
	if next != ColorNone {
		length = best
	}
	g.emit(rules.NewEventWithAmount(rules.EventLongestRoadChanged, int(next), length))
}

// AvailableRoadLocations lists the edges the current player may build a road on.
func (g *Game) AvailableRoadLocations() []int {
	anchor := -1
	if g.states.CurrentState() == rules.StateSetupRoad {
		anchor = g.setupAnchor
	}
	return nonNil(g.board.AvailableRoads(int(g.CurrentPlayer()), anchor))
}

// AvailableSettlementLocations lists the points the current player may settle.
func (g *Game) AvailableSettlementLocations() []int {
	setup := g.states.CurrentState().IsSetup()
	return nonNil(g.board.AvailableSettlements(int(g.CurrentPlayer()), !setup))
}

// AvailableTownLocations lists the current player's upgradable settlements.
func (g *Game) AvailableTownLocations() []int {
	return nonNil(g.board.AvailableTowns(int(g.CurrentPlayer())))
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
