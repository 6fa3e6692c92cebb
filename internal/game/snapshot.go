package game

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/natak-game/natak-server-go/internal/game/board"
	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is a complete, serialisable copy of a game.
type Snapshot struct {
	Version     int                  `json:"version"`
	ID          string               `json:"id"`
	Seed        uint64               `json:"seed"`
	RuleSet     RuleSet              `json:"rules"`
	Board       *board.Board         `json:"board"`
	Players     []*Player            `json:"players"`
	Current     int                  `json:"current"`
	Stack       []rules.GameState    `json:"stack"`
	Bank        resources.Collection `json:"bank"`
	Deck        []GrowthCard         `json:"deck"`
	Offer       *TradeOffer          `json:"offer,omitempty"`
	Dice        Dice                 `json:"dice"`
	Turn        int                  `json:"turn"`
	Random      []byte               `json:"random"`
	Discards    map[Color]int        `json:"discards,omitempty"`
	SetupStep   int                  `json:"setup_step"`
	SetupAnchor int                  `json:"setup_anchor"`
	RoamingLeft int                  `json:"roaming_left"`
	CardPlayed  bool                 `json:"card_played"`
	LongestRoad Color                `json:"longest_road"`
	LargestArmy Color                `json:"largest_army"`
	Winner      Color                `json:"winner"`
	Log         []Command            `json:"log"`
}

// Snapshot captures the full game state. The snapshot shares no memory with
// the game.
func (g *Game) Snapshot() (*Snapshot, error) {
	state, err := g.rng.State()
	if err != nil {
		return nil, fmt.Errorf("failed to capture random state: %w", err)
	}

	s := &Snapshot{
		Version:     SnapshotVersion,
		ID:          g.id,
		Seed:        g.seed,
		RuleSet:     g.ruleSet,
		Board:       g.board.Clone(),
		Players:     make([]*Player, len(g.players)),
		Current:     g.current,
		Stack:       g.states.Stack(),
		Bank:        g.bank.Clone(),
		Deck:        append([]GrowthCard(nil), g.deck...),
		Offer:       g.offer.clone(),
		Dice:        g.dice,
		Turn:        g.turn,
		Random:      state,
		Discards:    g.PendingDiscards(),
		SetupStep:   g.setupStep,
		SetupAnchor: g.setupAnchor,
		RoamingLeft: g.roamingLeft,
		CardPlayed:  g.cardPlayed,
		LongestRoad: g.longestRoad,
		LargestArmy: g.largestArmy,
		Winner:      g.winner,
		Log:         make([]Command, len(g.log)),
	}
	for i, p := range g.players {
		s.Players[i] = p.clone()
	}
	for i, cmd := range g.log {
		s.Log[i] = cmd.clone()
	}
	return s, nil
}

// Restore rebuilds a game from a snapshot. The game shares no memory with
// the snapshot.
func Restore(s *Snapshot) (*Game, error) {
	if s == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %d", s.Version)
	}
	if len(s.Players) < MinPlayers || len(s.Players) > MaxPlayers {
		return nil, fmt.Errorf("%w: snapshot has %d players", ErrInvalidPlayerCount, len(s.Players))
	}
	if s.Current < 0 || s.Current >= len(s.Players) {
		return nil, fmt.Errorf("snapshot current player %d out of range", s.Current)
	}
	if s.Board == nil {
		return nil, fmt.Errorf("snapshot has no board")
	}
	states, err := rules.RestoreStateManager(s.Stack)
	if err != nil {
		return nil, err
	}
	rng, err := RestoreRandom(s.Random)
	if err != nil {
		return nil, err
	}

	g := &Game{
		id:          s.ID,
		seed:        s.Seed,
		ruleSet:     s.RuleSet,
		board:       s.Board.Clone(),
		players:     make([]*Player, len(s.Players)),
		current:     s.Current,
		states:      states,
		bank:        s.Bank.Clone(),
		deck:        append([]GrowthCard(nil), s.Deck...),
		offer:       s.Offer.clone(),
		dice:        s.Dice,
		turn:        s.Turn,
		rng:         rng,
		discards:    make(map[Color]int, len(s.Discards)),
		setupStep:   s.SetupStep,
		setupAnchor: s.SetupAnchor,
		roamingLeft: s.RoamingLeft,
		cardPlayed:  s.CardPlayed,
		longestRoad: s.LongestRoad,
		largestArmy: s.LargestArmy,
		winner:      s.Winner,
		log:         make([]Command, len(s.Log)),
	}
	for i, p := range s.Players {
		if p == nil || p.Color != Color(i+1) {
			return nil, fmt.Errorf("snapshot seat %d is malformed", i+1)
		}
		cpy := p.clone()
		if cpy.Hand == nil {
			cpy.Hand = resources.NewCollection()
		}
		g.players[i] = cpy
	}
	if g.bank == nil {
		g.bank = resources.NewCollection()
	}
	for c, n := range s.Discards {
		g.discards[c] = n
	}
	for i, cmd := range s.Log {
		g.log[i] = cmd.clone()
	}
	return g, nil
}

// Clone returns an independent deep copy of the game. Pending events are not
// copied.
func (g *Game) Clone() (*Game, error) {
	s, err := g.Snapshot()
	if err != nil {
		return nil, err
	}
	return Restore(s)
}

// Checksum returns the hex blake2b-256 digest of the snapshot's JSON form.
// encoding/json writes map keys in sorted order, so equal snapshots always
// produce equal checksums.
func (s *Snapshot) Checksum() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SealedSnapshot is the stored form of a snapshot.
type SealedSnapshot struct {
	Checksum string    `json:"checksum"`
	SavedAt  time.Time `json:"saved_at"`
	Snapshot *Snapshot `json:"snapshot"`
}

// EncodeSnapshot serialises a snapshot together with its checksum.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	sum, err := s.Checksum()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(SealedSnapshot{
		Checksum: sum,
		SavedAt:  time.Now().UTC(),
		Snapshot: s,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sealed snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses EncodeSnapshot output and verifies its checksum.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var sealed SealedSnapshot
	if err := json.Unmarshal(data, &sealed); err != nil {
		return nil, fmt.Errorf("failed to decode sealed snapshot: %w", err)
	}
	if sealed.Snapshot == nil {
		return nil, fmt.Errorf("sealed snapshot is empty")
	}
	sum, err := sealed.Snapshot.Checksum()
	if err != nil {
		return nil, err
	}
	if sum != sealed.Checksum {
		return nil, fmt.Errorf("%w: stored %s, computed %s", ErrChecksumMismatch, sealed.Checksum, sum)
	}
	return sealed.Snapshot, nil
}
