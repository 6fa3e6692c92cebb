package board

import (
	"github.com/natak-game/natak-server-go/internal/game/resources"
)

// NoOwner marks an unowned point or edge.
const NoOwner = 0

// Building describes what stands on a point.
type Building string

const (
	BuildingNone       Building = ""
	BuildingSettlement Building = "SETTLEMENT"
	BuildingTown       Building = "TOWN"
)

// Yield returns the number of cards a building produces per matching roll.
func (b Building) Yield() int {
	switch b {
	case BuildingSettlement:
		return 1
	case BuildingTown:
		return 2
	default:
		return 0
	}
}

// Coord is an axial hex coordinate.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Hex is a single production tile. Resource is empty for the desert.
type Hex struct {
	ID       int            `json:"id"`
	Coord    Coord          `json:"coord"`
	Resource resources.Kind `json:"resource,omitempty"`
	Token    int            `json:"token,omitempty"`
	Points   []int          `json:"points"`
}

// IsDesert reports whether the hex produces nothing.
func (h Hex) IsDesert() bool {
	return h.Resource == ""
}

// Point is a settlement/town slot at a hex corner.
type Point struct {
	ID         int        `json:"id"`
	X          int        `json:"x"`
	Y          int        `json:"y"`
	Hexes      []int      `json:"hexes"`
	Edges      []int      `json:"edges"`
	Neighbours []int      `json:"neighbours"`
	Harbor     HarborKind `json:"harbor,omitempty"`
	Owner      int        `json:"owner,omitempty"`
	Building   Building   `json:"building,omitempty"`
}

// IsOccupied reports whether a settlement or town stands on the point.
func (p Point) IsOccupied() bool {
	return p.Building != BuildingNone
}

// Edge is a road slot between two points.
type Edge struct {
	ID    int   `json:"id"`
	A     int   `json:"a"`
	B     int   `json:"b"`
	Hexes []int `json:"hexes"`
	Owner int   `json:"owner,omitempty"`
}

// Other returns the endpoint opposite to point.
func (e Edge) Other(point int) int {
	if e.A == point {
		return e.B
	}
	return e.A
}

// Touches reports whether the edge ends at point.
func (e Edge) Touches(point int) bool {
	return e.A == point || e.B == point
}

// Board holds the hex layout, the point/edge graph with ownership, the
// harbors and the robber position.
type Board struct {
	Hexes   []Hex    `json:"hexes"`
	Points  []Point  `json:"points"`
	Edges   []Edge   `json:"edges"`
	Harbors []Harbor `json:"harbors"`
	Robber  int      `json:"robber"`
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	cpy := &Board{
		Hexes:   make([]Hex, len(b.Hexes)),
		Points:  make([]Point, len(b.Points)),
		Edges:   make([]Edge, len(b.Edges)),
		Harbors: make([]Harbor, len(b.Harbors)),
		Robber:  b.Robber,
	}
	for i, h := range b.Hexes {
		h.Points = append([]int(nil), h.Points...)
		cpy.Hexes[i] = h
	}
	for i, p := range b.Points {
		p.Hexes = append([]int(nil), p.Hexes...)
		p.Edges = append([]int(nil), p.Edges...)
		p.Neighbours = append([]int(nil), p.Neighbours...)
		cpy.Points[i] = p
	}
	for i, e := range b.Edges {
		e.Hexes = append([]int(nil), e.Hexes...)
		cpy.Edges[i] = e
	}
	copy(cpy.Harbors, b.Harbors)
	return cpy
}

// ValidHex reports whether id names a hex on the board.
func (b *Board) ValidHex(id int) bool {
	return id >= 0 && id < len(b.Hexes)
}

// ValidPoint reports whether id names a point on the board.
func (b *Board) ValidPoint(id int) bool {
	return id >= 0 && id < len(b.Points)
}

// ValidEdge reports whether id names an edge on the board.
func (b *Board) ValidEdge(id int) bool {
	return id >= 0 && id < len(b.Edges)
}

// EdgeBetween returns the edge joining two points, if any.
func (b *Board) EdgeBetween(p1, p2 int) (int, bool) {
	if !b.ValidPoint(p1) {
		return 0, false
	}
	for _, id := range b.Points[p1].Edges {
		if b.Edges[id].Other(p1) == p2 {
			return id, true
		}
	}
	return 0, false
}

// BuildingOwners returns the distinct owners of buildings around a hex.
func (b *Board) BuildingOwners(hexID int) []int {
	if !b.ValidHex(hexID) {
		return nil
	}
	seen := make(map[int]bool)
	owners := make([]int, 0, 3)
	for _, pid := range b.Hexes[hexID].Points {
		p := b.Points[pid]
		if p.IsOccupied() && !seen[p.Owner] {
			seen[p.Owner] = true
			owners = append(owners, p.Owner)
		}
	}
	return owners
}

// Grant is one building's claim on a production roll.
type Grant struct {
	Owner  int
	Kind   resources.Kind
	Amount int
}

// Production lists every grant owed for a dice sum, skipping the robber's hex.
func (b *Board) Production(roll int) []Grant {
	var grants []Grant
	for _, h := range b.Hexes {
		if h.IsDesert() || h.Token != roll || h.ID == b.Robber {
			continue
		}
		for _, pid := range h.Points {
			p := b.Points[pid]
			if amount := p.Building.Yield(); amount > 0 {
				grants = append(grants, Grant{Owner: p.Owner, Kind: h.Resource, Amount: amount})
			}
		}
	}
	return grants
}

// StartingYield returns one card per resource hex around a point, used for the
// second setup settlement.
func (b *Board) StartingYield(pointID int) resources.Collection {
	c := resources.NewCollection()
	if !b.ValidPoint(pointID) {
		return c
	}
	for _, hid := range b.Points[pointID].Hexes {
		if h := b.Hexes[hid]; !h.IsDesert() {
			c.Add(h.Resource, 1)
		}
	}
	return c
}

// CountBuildings returns how many settlements and towns an owner has placed.
func (b *Board) CountBuildings(owner int) (settlements, towns int) {
	for _, p := range b.Points {
		if p.Owner != owner {
			continue
		}
		switch p.Building {
		case BuildingSettlement:
			settlements++
		case BuildingTown:
			towns++
		}
	}
	return settlements, towns
}
