package board

import (
	"math"
	"sort"

	"github.com/natak-game/natak-server-go/internal/game/resources"
)

// Radius of the standard board in hexes from the centre.
const Radius = 2

// Shuffler randomises the order of n elements. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// standardTerrain lists the 19 tiles of the base game; the empty kind is the desert.
var standardTerrain = []resources.Kind{
	resources.Lumber, resources.Lumber, resources.Lumber, resources.Lumber,
	resources.Wool, resources.Wool, resources.Wool, resources.Wool,
	resources.Grain, resources.Grain, resources.Grain, resources.Grain,
	resources.Brick, resources.Brick, resources.Brick,
	resources.Ore, resources.Ore, resources.Ore,
	"",
}

var standardTokens = []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}

// corner offsets of a pointy-top hex on the integer lattice, clockwise from the top.
// A hex at axial (q, r) is centred at (2q+r, 3r).
var cornerOffsets = [6][2]int{{0, -2}, {1, -1}, {1, 1}, {0, 2}, {-1, 1}, {-1, -1}}

// NewStandard builds the base-game board. Terrain, tokens and harbor kinds are
// shuffled with rng; a nil rng yields the fixed canonical layout.
func NewStandard(rng Shuffler) *Board {
	b := buildGeometry()

	terrain := append([]resources.Kind(nil), standardTerrain...)
	tokens := append([]int(nil), standardTokens...)
	harbors := append([]HarborKind(nil), standardHarbors...)
	if rng != nil {
		rng.Shuffle(len(terrain), func(i, j int) { terrain[i], terrain[j] = terrain[j], terrain[i] })
		rng.Shuffle(len(tokens), func(i, j int) { tokens[i], tokens[j] = tokens[j], tokens[i] })
		rng.Shuffle(len(harbors), func(i, j int) { harbors[i], harbors[j] = harbors[j], harbors[i] })
	}

	next := 0
	for i := range b.Hexes {
		b.Hexes[i].Resource = terrain[i]
		if terrain[i] == "" {
			b.Robber = i
			continue
		}
		b.Hexes[i].Token = tokens[next]
		next++
	}

	b.placeHarbors(harbors)
	return b
}

func buildGeometry() *Board {
	b := &Board{}
	pointIDs := make(map[[2]int]int)
	edgeIDs := make(map[[2]int]int)

	for r := -Radius; r <= Radius; r++ {
		qMin := max(-Radius, -r-Radius)
		qMax := min(Radius, -r+Radius)
		for q := qMin; q <= qMax; q++ {
			hex := Hex{ID: len(b.Hexes), Coord: Coord{Q: q, R: r}}
			cx, cy := 2*q+r, 3*r

			for _, off := range cornerOffsets {
				key := [2]int{cx + off[0], cy + off[1]}
				pid, ok := pointIDs[key]
				if !ok {
					pid = len(b.Points)
					pointIDs[key] = pid
					b.Points = append(b.Points, Point{ID: pid, X: key[0], Y: key[1]})
				}
				b.Points[pid].Hexes = append(b.Points[pid].Hexes, hex.ID)
				hex.Points = append(hex.Points, pid)
			}

			for i := range hex.Points {
				a, c := hex.Points[i], hex.Points[(i+1)%len(hex.Points)]
				key := [2]int{min(a, c), max(a, c)}
				eid, ok := edgeIDs[key]
				if !ok {
					eid = len(b.Edges)
					edgeIDs[key] = eid
					b.Edges = append(b.Edges, Edge{ID: eid, A: key[0], B: key[1]})
					b.Points[key[0]].Edges = append(b.Points[key[0]].Edges, eid)
					b.Points[key[1]].Edges = append(b.Points[key[1]].Edges, eid)
					b.Points[key[0]].Neighbours = append(b.Points[key[0]].Neighbours, key[1])
					b.Points[key[1]].Neighbours = append(b.Points[key[1]].Neighbours, key[0])
				}
				b.Edges[eid].Hexes = append(b.Edges[eid].Hexes, hex.ID)
			}

			b.Hexes = append(b.Hexes, hex)
		}
	}
	return b
}

// coastalEdges returns the edges bordering a single hex, ordered by angle
// around the board centre.
func (b *Board) coastalEdges() []int {
	var coast []int
	for _, e := range b.Edges {
		if len(e.Hexes) == 1 {
			coast = append(coast, e.ID)
		}
	}
	angle := func(id int) float64 {
		e := b.Edges[id]
		pa, pb := b.Points[e.A], b.Points[e.B]
		x := float64(pa.X+pb.X) * math.Sqrt(3) / 2
		y := float64(pa.Y + pb.Y)
		return math.Atan2(y, x)
	}
	sort.SliceStable(coast, func(i, j int) bool { return angle(coast[i]) < angle(coast[j]) })
	return coast
}
