package board

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownLocation = errors.New("unknown board location")
	ErrOccupied        = errors.New("location already occupied")
	ErrTooClose        = errors.New("too close to another building")
	ErrNotConnected    = errors.New("not connected to own network")
	ErrNotOwned        = errors.New("location not owned by player")
	ErrNotSettlement   = errors.New("only settlements can be upgraded")
	ErrSameHex         = errors.New("robber must move to a different hex")
)

// CheckRoad validates a road placement for owner. During setup, anchor is the
// point of the settlement just placed and the road must touch it; pass -1
// outside of setup.
func (b *Board) CheckRoad(owner, edgeID, anchor int) error {
	if !b.ValidEdge(edgeID) {
		return fmt.Errorf("%w: edge %d", ErrUnknownLocation, edgeID)
	}
	e := b.Edges[edgeID]
	if e.Owner != NoOwner {
		return fmt.Errorf("%w: edge %d already has a road", ErrOccupied, edgeID)
	}
	if anchor >= 0 {
		if !e.Touches(anchor) {
			return fmt.Errorf("%w: edge %d does not touch point %d", ErrNotConnected, edgeID, anchor)
		}
		return nil
	}
	if !b.roadConnects(owner, e.A, edgeID) && !b.roadConnects(owner, e.B, edgeID) {
		return fmt.Errorf("%w: edge %d", ErrNotConnected, edgeID)
	}
	return nil
}

// roadConnects reports whether a new road on edgeID joins owner's network at point.
// An opponent's building on the point blocks the connection.
func (b *Board) roadConnects(owner, point, edgeID int) bool {
	p := b.Points[point]
	if p.IsOccupied() {
		return p.Owner == owner
	}
	for _, eid := range p.Edges {
		if eid != edgeID && b.Edges[eid].Owner == owner {
			return true
		}
	}
	return false
}

// CheckSettlement validates a settlement placement. requireRoad is false
// during setup, when settlements need not touch a road.
func (b *Board) CheckSettlement(owner, pointID int, requireRoad bool) error {
	if !b.ValidPoint(pointID) {
		return fmt.Errorf("%w: point %d", ErrUnknownLocation, pointID)
	}
	p := b.Points[pointID]
	if p.IsOccupied() {
		return fmt.Errorf("%w: point %d", ErrOccupied, pointID)
	}
	for _, n := range p.Neighbours {
		if b.Points[n].IsOccupied() {
			return fmt.Errorf("%w: point %d neighbours a building at %d", ErrTooClose, pointID, n)
		}
	}
	if requireRoad && !b.hasRoadAt(owner, pointID) {
		return fmt.Errorf("%w: point %d has no adjacent road", ErrNotConnected, pointID)
	}
	return nil
}

func (b *Board) hasRoadAt(owner, pointID int) bool {
	for _, eid := range b.Points[pointID].Edges {
		if b.Edges[eid].Owner == owner {
			return true
		}
	}
	return false
}

// CheckTown validates upgrading owner's settlement at pointID.
func (b *Board) CheckTown(owner, pointID int) error {
	if !b.ValidPoint(pointID) {
		return fmt.Errorf("%w: point %d", ErrUnknownLocation, pointID)
	}
	p := b.Points[pointID]
	if !p.IsOccupied() || p.Owner != owner {
		return fmt.Errorf("%w: point %d", ErrNotOwned, pointID)
	}
	if p.Building != BuildingSettlement {
		return fmt.Errorf("%w: point %d holds a %s", ErrNotSettlement, pointID, p.Building)
	}
	return nil
}

// PlaceRoad claims an edge. Callers validate with CheckRoad first.
func (b *Board) PlaceRoad(owner, edgeID int) {
	b.Edges[edgeID].Owner = owner
}

// PlaceSettlement claims a point. Callers validate with CheckSettlement first.
func (b *Board) PlaceSettlement(owner, pointID int) {
	b.Points[pointID].Owner = owner
	b.Points[pointID].Building = BuildingSettlement
}

// UpgradeToTown turns a settlement into a town. Callers validate with CheckTown first.
func (b *Board) UpgradeToTown(pointID int) {
	b.Points[pointID].Building = BuildingTown
}

// MoveRobber relocates the robber to another hex.
func (b *Board) MoveRobber(hexID int) error {
	if !b.ValidHex(hexID) {
		return fmt.Errorf("%w: hex %d", ErrUnknownLocation, hexID)
	}
	if hexID == b.Robber {
		return fmt.Errorf("%w: hex %d", ErrSameHex, hexID)
	}
	b.Robber = hexID
	return nil
}

// AvailableRoads lists every edge owner could build a road on.
func (b *Board) AvailableRoads(owner, anchor int) []int {
	var ids []int
	for _, e := range b.Edges {
		if b.CheckRoad(owner, e.ID, anchor) == nil {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// AvailableSettlements lists every point owner could build a settlement on.
func (b *Board) AvailableSettlements(owner int, requireRoad bool) []int {
	var ids []int
	for _, p := range b.Points {
		if b.CheckSettlement(owner, p.ID, requireRoad) == nil {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// AvailableTowns lists every settlement owner could upgrade.
func (b *Board) AvailableTowns(owner int) []int {
	var ids []int
	for _, p := range b.Points {
		if b.CheckTown(owner, p.ID) == nil {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
