package game

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// GameStore holds the active games. Lock must serialise all commands for one
// game id: the engine holds it from read to upsert, and while deleting.
type GameStore interface {
	Get(ctx context.Context, id string) (*Game, error)
	Upsert(ctx context.Context, g *Game) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

// SnapshotStorage persists snapshots beyond the process lifetime.
type SnapshotStorage interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context, id string) (*Snapshot, error)
}

// Engine is the command and query surface over the active game store. Every
// command runs against a copy of the game that replaces the stored game only
// on success, so a rejected command never leaves partial changes behind.
type Engine struct {
	logger  *zap.Logger
	store   GameStore
	bus     *rules.EventBus
	mu      sync.RWMutex
	storage SnapshotStorage
	ruleSet RuleSet
}

// NewEngine creates an engine over store with the default rules.
func NewEngine(store GameStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:  logger,
		store:   store,
		bus:     rules.NewEventBus(),
		ruleSet: DefaultRuleSet(),
	}
}

// SetStorage enables SaveGame and LoadGame.
func (e *Engine) SetStorage(storage SnapshotStorage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.storage = storage
}

// SetRuleSet changes the rules used for games created afterwards.
func (e *Engine) SetRuleSet(rs RuleSet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ruleSet = rs
}

// Events returns the bus every committed game event is published on.
func (e *Engine) Events() *rules.EventBus {
	return e.bus
}

// CreateGame starts a game for playerCount seats. A nil seed picks a random one.
func (e *Engine) CreateGame(ctx context.Context, playerCount int, seed *uint64) (*Status, error) {
	id := uuid.NewString()
	var s uint64
	if seed != nil {
		s = *seed
	} else {
		u := uuid.New()
		s = binary.BigEndian.Uint64(u[:8])
	}

	e.mu.RLock()
	rs := e.ruleSet
	e.mu.RUnlock()

	g, err := NewGame(id, playerCount, s, rs)
	if err != nil {
		return nil, err
	}
	if err := e.store.Upsert(ctx, g); err != nil {
		e.logger.Error("failed to store new game",
			zap.String("game_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to store game %s: %w", id, err)
	}

	e.logger.Info("game created",
		zap.String("game_id", id),
		zap.Int("players", playerCount),
		zap.Uint64("seed", s),
	)
	e.publish(id, g.DrainEvents())
	return g.Status(ColorNone)
}

// Execute applies a command to a game and returns the acting player's view.
func (e *Engine) Execute(ctx context.Context, gameID string, cmd Command) (*Status, error) {
	unlock, err := e.store.Lock(ctx, gameID)
	if err != nil {
		return nil, err
	}

	current, err := e.store.Get(ctx, gameID)
	if err != nil {
		unlock()
		return nil, err
	}
	next, err := current.Clone()
	if err != nil {
		unlock()
		return nil, fmt.Errorf("failed to copy game %s: %w", gameID, err)
	}

	if err := next.Apply(cmd); err != nil {
		unlock()
		e.logger.Debug("command rejected",
			zap.String("game_id", gameID),
			zap.Stringer("action", cmd.Action),
			zap.Stringer("player", cmd.Player),
			zap.Error(err),
		)
		return nil, err
	}

	if err := e.store.Upsert(ctx, next); err != nil {
		unlock()
		e.logger.Error("failed to store game",
			zap.String("game_id", gameID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to store game %s: %w", gameID, err)
	}
	events := next.DrainEvents()
	unlock()

	e.logger.Debug("command applied",
		zap.String("game_id", gameID),
		zap.Stringer("action", cmd.Action),
		zap.Stringer("player", cmd.Player),
		zap.Stringer("state", next.State()),
	)
	for _, evt := range events {
		if evt.Type == rules.EventGameWon {
			e.logger.Info("game won",
				zap.String("game_id", gameID),
				zap.Stringer("winner", next.Winner()),
				zap.Int("turn", next.Turn()),
			)
		}
	}
	e.publish(gameID, events)
	return next.Status(cmd.Player)
}

func (e *Engine) publish(gameID string, events []rules.Event) {
	for i := range events {
		events[i].ID = uuid.NewString()
		events[i].GameID = gameID
	}
	e.bus.PublishBatch(events)
}

// Status returns a game as seen by viewer.
func (e *Engine) Status(ctx context.Context, gameID string, viewer Color) (*Status, error) {
	g, err := e.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return g.Status(viewer)
}

// AvailableRoadLocations lists the edges the current player may build on.
func (e *Engine) AvailableRoadLocations(ctx context.Context, gameID string) ([]int, error) {
	g, err := e.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return g.AvailableRoadLocations(), nil
}

// AvailableSettlementLocations lists the points the current player may settle.
func (e *Engine) AvailableSettlementLocations(ctx context.Context, gameID string) ([]int, error) {
	g, err := e.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return g.AvailableSettlementLocations(), nil
}

// AvailableTownLocations lists the current player's upgradable settlements.
func (e *Engine) AvailableTownLocations(ctx context.Context, gameID string) ([]int, error) {
	g, err := e.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return g.AvailableTownLocations(), nil
}

// SaveGame writes the game's snapshot to durable storage.
func (e *Engine) SaveGame(ctx context.Context, gameID string) error {
	storage, err := e.requireStorage()
	if err != nil {
		return err
	}
	unlock, err := e.store.Lock(ctx, gameID)
	if err != nil {
		return err
	}
	defer unlock()

	g, err := e.store.Get(ctx, gameID)
	if err != nil {
		return err
	}
	s, err := g.Snapshot()
	if err != nil {
		return err
	}
	if err := storage.Save(ctx, s); err != nil {
		e.logger.Warn("failed to save game",
			zap.String("game_id", gameID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save game %s: %w", gameID, err)
	}

	e.logger.Info("game saved",
		zap.String("game_id", gameID),
		zap.Int("turn", g.Turn()),
		zap.Int("commands", len(s.Log)),
	)
	e.publish(gameID, []rules.Event{rules.NewEventWithAmount(rules.EventGameSaved, int(ColorNone), g.Turn())})
	return nil
}

// LoadGame replaces the active game with its last saved snapshot.
func (e *Engine) LoadGame(ctx context.Context, gameID string) (*Status, error) {
	storage, err := e.requireStorage()
	if err != nil {
		return nil, err
	}
	s, err := storage.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	g, err := Restore(s)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game %s: %w", gameID, err)
	}

	unlock, err := e.store.Lock(ctx, gameID)
	if err != nil {
		return nil, err
	}
	err = e.store.Upsert(ctx, g)
	unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to store game %s: %w", gameID, err)
	}

	e.logger.Info("game loaded",
		zap.String("game_id", gameID),
		zap.Int("turn", g.Turn()),
		zap.Stringer("state", g.State()),
	)
	e.publish(gameID, []rules.Event{rules.NewEventWithAmount(rules.EventGameLoaded, int(ColorNone), g.Turn())})
	return g.Status(ColorNone)
}

// CloseGame removes a game from the active store. With storage enabled the
// game is saved first and stays active if that save fails.
func (e *Engine) CloseGame(ctx context.Context, gameID string) error {
	e.mu.RLock()
	storage := e.storage
	e.mu.RUnlock()

	unlock, err := e.store.Lock(ctx, gameID)
	if err != nil {
		return err
	}
	g, err := e.store.Get(ctx, gameID)
	if err != nil {
		unlock()
		return err
	}
	if storage != nil {
		s, err := g.Snapshot()
		if err != nil {
			unlock()
			return err
		}
		if err := storage.Save(ctx, s); err != nil {
			unlock()
			e.logger.Warn("failed to save closing game",
				zap.String("game_id", gameID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to save game %s: %w", gameID, err)
		}
	}
	err = e.store.Delete(ctx, gameID)
	unlock()
	if err != nil {
		return fmt.Errorf("failed to remove game %s: %w", gameID, err)
	}

	e.logger.Info("game closed",
		zap.String("game_id", gameID),
		zap.Int("turn", g.Turn()),
		zap.Bool("saved", storage != nil),
	)
	e.publish(gameID, []rules.Event{rules.NewEventWithAmount(rules.EventGameClosed, int(ColorNone), g.Turn())})
	return nil
}

// ErrStorageDisabled is returned by SaveGame and LoadGame without storage.
var ErrStorageDisabled = errors.New("game storage is disabled")

func (e *Engine) requireStorage() (SnapshotStorage, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.storage == nil {
		return nil, ErrStorageDisabled
	}
	return e.storage, nil
}

// RollDice rolls for the current player.
func (e *Engine) RollDice(ctx context.Context, gameID string, c Color) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionRollDice, Player: c})
}

// EndTurn passes the turn to the next seat.
func (e *Engine) EndTurn(ctx context.Context, gameID string, c Color) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionEndTurn, Player: c})
}

// BuildRoad builds a road on an edge.
func (e *Engine) BuildRoad(ctx context.Context, gameID string, c Color, edge int) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionBuildRoad, Player: c, Location: edge})
}

// BuildSettlement builds a settlement on a point.
func (e *Engine) BuildSettlement(ctx context.Context, gameID string, c Color, point int) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionBuildSettlement, Player: c, Location: point})
}

// BuildTown upgrades a settlement.
func (e *Engine) BuildTown(ctx context.Context, gameID string, c Color, point int) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionBuildTown, Player: c, Location: point})
}

// BuyGrowthCard draws a growth card.
func (e *Engine) BuyGrowthCard(ctx context.Context, gameID string, c Color) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionBuyGrowthCard, Player: c})
}

// PlaySoldier plays a soldier card.
func (e *Engine) PlaySoldier(ctx context.Context, gameID string, c Color) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionPlaySoldier, Player: c})
}

// PlayRoaming plays a roaming card.
func (e *Engine) PlayRoaming(ctx context.Context, gameID string, c Color) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionPlayRoaming, Player: c})
}

// PlayWealth plays a wealth card taking first and second from the bank.
func (e *Engine) PlayWealth(ctx context.Context, gameID string, c Color, first, second resources.Kind) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionPlayWealth, Player: c, Request: resources.Of(first, second)})
}

// PlayGatherer plays a gatherer card for kind.
func (e *Engine) PlayGatherer(ctx context.Context, gameID string, c Color, kind resources.Kind) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionPlayGatherer, Player: c, Resource: kind})
}

// MoveThief moves the thief to a hex.
func (e *Engine) MoveThief(ctx context.Context, gameID string, c Color, hex int) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionMoveThief, Player: c, Location: hex})
}

// StealResource steals a random card from victim.
func (e *Engine) StealResource(ctx context.Context, gameID string, c, victim Color) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionStealResource, Player: c, Target: victim})
}

// DiscardResources discards cards after a seven.
func (e *Engine) DiscardResources(ctx context.Context, gameID string, c Color, cards resources.Collection) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionDiscardResources, Player: c, Offer: cards})
}

// TradeWithBank trades give for one get at the player's best ratio.
func (e *Engine) TradeWithBank(ctx context.Context, gameID string, c Color, give, get resources.Kind) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionTradeWithBank, Player: c, Resource: give, Want: get})
}

// MakeTradeOffer proposes a trade to the other players.
func (e *Engine) MakeTradeOffer(ctx context.Context, gameID string, c Color, offer, request resources.Collection) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionMakeTradeOffer, Player: c, Offer: offer, Request: request})
}

// RespondToTradeOffer accepts or rejects the live offer.
func (e *Engine) RespondToTradeOffer(ctx context.Context, gameID string, c Color, accept bool) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionRespondToTradeOffer, Player: c, Accept: accept})
}

// CancelTradeOffer withdraws the live offer.
func (e *Engine) CancelTradeOffer(ctx context.Context, gameID string, c Color) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionCancelTradeOffer, Player: c})
}

// Embargo stops trading between c and target.
func (e *Engine) Embargo(ctx context.Context, gameID string, c, target Color) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionEmbargo, Player: c, Target: target})
}

// RemoveEmbargo lifts c's embargo on target.
func (e *Engine) RemoveEmbargo(ctx context.Context, gameID string, c, target Color) (*Status, error) {
	return e.Execute(ctx, gameID, Command{Action: rules.ActionRemoveEmbargo, Player: c, Target: target})
}
