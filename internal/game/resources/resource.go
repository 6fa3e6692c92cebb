package resources

import (
	"fmt"
	"strings"
)

// Kind represents a type of resource card.
type Kind string

const (
	Lumber Kind = "LUMBER"
	Brick  Kind = "BRICK"
	Wool   Kind = "WOOL"
	Grain  Kind = "GRAIN"
	Ore    Kind = "ORE"
)

// Kinds lists every resource kind in canonical order.
var Kinds = []Kind{Lumber, Brick, Wool, Grain, Ore}

// Valid reports whether k is one of the five resource kinds.
func (k Kind) Valid() bool {
	switch k {
	case Lumber, Brick, Wool, Grain, Ore:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind parses a resource kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown resource kind: %q", s)
	}
	return k, nil
}
