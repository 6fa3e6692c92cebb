package resources

import (
	"fmt"
	"sort"
	"strings"
)

// Collection is a multiset of resource cards. It is used for player hands,
// the bank stock, costs and trade offers alike.
type Collection map[Kind]int

// NewCollection creates an empty collection.
func NewCollection() Collection {
	return Collection{}
}

// Uniform creates a collection holding n of every resource kind.
func Uniform(n int) Collection {
	c := NewCollection()
	for _, k := range Kinds {
		c[k] = n
	}
	return c
}

// Of builds a collection from a list of kinds, one card per entry.
func Of(kinds ...Kind) Collection {
	c := NewCollection()
	for _, k := range kinds {
		c[k]++
	}
	return c
}

// Get returns the count held of a kind.
func (c Collection) Get(k Kind) int {
	return c[k]
}

// Add adds amount cards of a kind. Non-positive amounts are ignored.
func (c Collection) Add(k Kind, amount int) {
	if amount <= 0 {
		return
	}
	c[k] += amount
}

// Remove removes amount cards of a kind.
// Returns false and leaves the collection untouched if not enough are held.
func (c Collection) Remove(k Kind, amount int) bool {
	if amount <= 0 {
		return true
	}
	if c[k] < amount {
		return false
	}
	c[k] -= amount
	if c[k] == 0 {
		delete(c, k)
	}
	return true
}

// Take removes and returns every card of a kind.
func (c Collection) Take(k Kind) int {
	n := c[k]
	delete(c, k)
	return n
}

// Total returns the number of cards in the collection.
func (c Collection) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// IsEmpty reports whether the collection holds no cards.
func (c Collection) IsEmpty() bool {
	return c.Total() == 0
}

// Contains reports whether c holds at least every card in other.
func (c Collection) Contains(other Collection) bool {
	for k, n := range other {
		if n > 0 && c[k] < n {
			return false
		}
	}
	return true
}

// AddAll adds every card in other.
func (c Collection) AddAll(other Collection) {
	for k, n := range other {
		c.Add(k, n)
	}
}

// RemoveAll removes every card in other, all or nothing.
func (c Collection) RemoveAll(other Collection) bool {
	if !c.Contains(other) {
		return false
	}
	for k, n := range other {
		c.Remove(k, n)
	}
	return true
}

// Clone returns an independent copy.
func (c Collection) Clone() Collection {
	cpy := make(Collection, len(c))
	for k, n := range c {
		if n != 0 {
			cpy[k] = n
		}
	}
	return cpy
}

// Equal reports whether both collections hold the same cards.
func (c Collection) Equal(other Collection) bool {
	for _, k := range Kinds {
		if c[k] != other[k] {
			return false
		}
	}
	return true
}

// Validate checks that every key is a known kind and no count is negative.
func (c Collection) Validate() error {
	for k, n := range c {
		if !k.Valid() {
			return fmt.Errorf("unknown resource kind: %q", string(k))
		}
		if n < 0 {
			return fmt.Errorf("negative count %d for %s", n, k)
		}
	}
	return nil
}

// Overlaps reports whether any kind has a positive count in both collections.
func (c Collection) Overlaps(other Collection) bool {
	for k, n := range c {
		if n > 0 && other[k] > 0 {
			return true
		}
	}
	return false
}

// Cards expands the collection into one entry per card, in canonical kind order.
func (c Collection) Cards() []Kind {
	cards := make([]Kind, 0, c.Total())
	for _, k := range Kinds {
		for i := 0; i < c[k]; i++ {
			cards = append(cards, k)
		}
	}
	return cards
}

func (c Collection) String() string {
	parts := make([]string, 0, len(c))
	for k, n := range c {
		if n != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, n))
		}
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
