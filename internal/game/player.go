package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/natak-game/natak-server-go/internal/game/resources"
)

// Color identifies a seat. Seats are numbered from 1; board ownership uses the
// same numbers.
type Color int

const (
	ColorNone Color = iota
	ColorRed
	ColorBlue
	ColorGreen
	ColorYellow
)

var colorNames = map[Color]string{
	ColorNone:   "NONE",
	ColorRed:    "RED",
	ColorBlue:   "BLUE",
	ColorGreen:  "GREEN",
	ColorYellow: "YELLOW",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("COLOR_%d", int(c))
}

// ParseColor accepts either a seat number or a colour name.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		c := Color(n)
		if c < ColorRed || c > ColorYellow {
			return ColorNone, fmt.Errorf("%w: colour %d", ErrInvalidPlayer, n)
		}
		return c, nil
	}
	upper := strings.ToUpper(s)
	for c, name := range colorNames {
		if c != ColorNone && name == upper {
			return c, nil
		}
	}
	return ColorNone, fmt.Errorf("%w: colour %q", ErrInvalidPlayer, s)
}

// GrowthCard is a development card kind.
type GrowthCard string

const (
	CardSoldier      GrowthCard = "SOLDIER"
	CardRoaming      GrowthCard = "ROAMING"
	CardWealth       GrowthCard = "WEALTH"
	CardGatherer     GrowthCard = "GATHERER"
	CardVictoryPoint GrowthCard = "VICTORY_POINT"
)

// Stock is what a player still has left to build.
type Stock struct {
	Roads       int `json:"roads"`
	Settlements int `json:"settlements"`
	Towns       int `json:"towns"`
}

// Starting stock per player.
const (
	StartingRoads       = 15
	StartingSettlements = 5
	StartingTowns       = 4
)

// Player holds a seat's private and public holdings.
type Player struct {
	Color Color                `json:"color"`
	Hand  resources.Collection `json:"hand"`
	Stock Stock                `json:"stock"`
	// Cards are playable; NewCards were bought this turn. Victory point cards
	// go straight to Cards.
	Cards          map[GrowthCard]int `json:"cards"`
	NewCards       map[GrowthCard]int `json:"new_cards"`
	PlayedSoldiers int                `json:"played_soldiers"`
	Embargoes      []Color            `json:"embargoes,omitempty"`
	RoadLength     int                `json:"road_length"`
}

func newPlayer(c Color) *Player {
	return &Player{
		Color: c,
		Hand:  resources.NewCollection(),
		Stock: Stock{
			Roads:       StartingRoads,
			Settlements: StartingSettlements,
			Towns:       StartingTowns,
		},
		Cards:    make(map[GrowthCard]int),
		NewCards: make(map[GrowthCard]int),
	}
}

func (p *Player) clone() *Player {
	cpy := *p
	cpy.Hand = p.Hand.Clone()
	cpy.Cards = cloneCards(p.Cards)
	cpy.NewCards = cloneCards(p.NewCards)
	cpy.Embargoes = append([]Color(nil), p.Embargoes...)
	return &cpy
}

func cloneCards(m map[GrowthCard]int) map[GrowthCard]int {
	cpy := make(map[GrowthCard]int, len(m))
	for k, n := range m {
		if n > 0 {
			cpy[k] = n
		}
	}
	return cpy
}

// HasEmbargoed reports whether p refuses to trade with other.
func (p *Player) HasEmbargoed(other Color) bool {
	for _, c := range p.Embargoes {
		if c == other {
			return true
		}
	}
	return false
}

// CardCount returns the number of growth cards held in both buckets.
func (p *Player) CardCount() int {
	n := 0
	for _, v := range p.Cards {
		n += v
	}
	for _, v := range p.NewCards {
		n += v
	}
	return n
}

func (p *Player) promoteCards() {
	for k, n := range p.NewCards {
		p.Cards[k] += n
	}
	p.NewCards = make(map[GrowthCard]int)
}
