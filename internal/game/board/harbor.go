package board

import (
	"github.com/natak-game/natak-server-go/internal/game/resources"
)

// HarborKind is either HarborGeneric or the resource kind a 2:1 harbor accepts.
type HarborKind string

const (
	HarborNone    HarborKind = ""
	HarborGeneric HarborKind = "GENERIC"
)

// Bank trade ratios.
const (
	DefaultTradeRatio  = 4
	GenericTradeRatio  = 3
	SpecificTradeRatio = 2
)

var standardHarbors = []HarborKind{
	HarborGeneric, HarborGeneric, HarborGeneric, HarborGeneric,
	HarborKind(resources.Lumber), HarborKind(resources.Brick), HarborKind(resources.Wool),
	HarborKind(resources.Grain), HarborKind(resources.Ore),
}

// Harbor is a coastal trading post reachable from two points.
type Harbor struct {
	Kind   HarborKind `json:"kind"`
	Edge   int        `json:"edge"`
	Points [2]int     `json:"points"`
}

// Accepts reports whether the harbor discounts trades of the given kind.
func (k HarborKind) Accepts(kind resources.Kind) bool {
	return k == HarborGeneric || k == HarborKind(kind)
}

func (b *Board) placeHarbors(kinds []HarborKind) {
	coast := b.coastalEdges()
	if len(coast) == 0 {
		return
	}
	for i, kind := range kinds {
		eid := coast[i*len(coast)/len(kinds)]
		e := b.Edges[eid]
		b.Harbors = append(b.Harbors, Harbor{Kind: kind, Edge: eid, Points: [2]int{e.A, e.B}})
		b.Points[e.A].Harbor = kind
		b.Points[e.B].Harbor = kind
	}
}

// HarborsOf returns the harbor kinds an owner can use through its buildings.
func (b *Board) HarborsOf(owner int) []HarborKind {
	seen := make(map[HarborKind]bool)
	var kinds []HarborKind
	for _, p := range b.Points {
		if p.Owner == owner && p.IsOccupied() && p.Harbor != HarborNone && !seen[p.Harbor] {
			seen[p.Harbor] = true
			kinds = append(kinds, p.Harbor)
		}
	}
	return kinds
}

// TradeRatio returns the best bank ratio an owner gets when giving kind.
func (b *Board) TradeRatio(owner int, kind resources.Kind) int {
	ratio := DefaultTradeRatio
	for _, h := range b.HarborsOf(owner) {
		switch {
		case h == HarborKind(kind):
			return SpecificTradeRatio
		case h == HarborGeneric:
			ratio = GenericTradeRatio
		}
	}
	return ratio
}
