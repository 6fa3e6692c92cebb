package rules

import "fmt"

// GameState is the phase tag stored on the state stack.
type GameState int

const (
	StateSetupSettlement GameState = iota
	StateSetupRoad
	StateBeforeRoll
	StateAfterRoll
	StateDiscardResources
	StateMoveThief
	StateStealResource
	StateRoamingRoads
	StateGameOver
)

var stateNames = map[GameState]string{
	StateSetupSettlement:  "SETUP_SETTLEMENT",
	StateSetupRoad:        "SETUP_ROAD",
	StateBeforeRoll:       "BEFORE_ROLL",
	StateAfterRoll:        "AFTER_ROLL",
	StateDiscardResources: "DISCARD_RESOURCES",
	StateMoveThief:        "MOVE_THIEF",
	StateStealResource:    "STEAL_RESOURCE",
	StateRoamingRoads:     "ROAMING_ROADS",
	StateGameOver:         "GAME_OVER",
}

func (s GameState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int(s))
}

// IsSetup reports whether the state belongs to initial placement.
func (s GameState) IsSetup() bool {
	return s == StateSetupSettlement || s == StateSetupRoad
}

// MarshalText encodes the state by name.
func (s GameState) MarshalText() ([]byte, error) {
	name, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown game state %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a state name.
func (s *GameState) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown game state %q", string(text))
}

// ActionType identifies a command that may move the state machine.
type ActionType int

const (
	ActionBuildSettlement ActionType = iota
	ActionBuildRoad
	ActionBuildTown
	ActionRollDice
	ActionEndTurn
	ActionBuyGrowthCard
	ActionPlaySoldier
	ActionPlayRoaming
	ActionPlayWealth
	ActionPlayGatherer
	ActionMoveThief
	ActionStealResource
	ActionDiscardResources
	ActionTradeWithBank
	ActionMakeTradeOffer
	ActionRespondToTradeOffer
	ActionCancelTradeOffer
	ActionEmbargo
	ActionRemoveEmbargo

	// System actions are issued by rule handlers, never by players.
	ActionSetupComplete
	ActionRollSeven
	ActionRequireDiscard
	ActionDiscardComplete
	ActionNoStealTarget
	ActionRoamingComplete
	ActionVictoryReached
)

var actionNames = map[ActionType]string{
	ActionBuildSettlement:     "BUILD_SETTLEMENT",
	ActionBuildRoad:           "BUILD_ROAD",
	ActionBuildTown:           "BUILD_TOWN",
	ActionRollDice:            "ROLL_DICE",
	ActionEndTurn:             "END_TURN",
	ActionBuyGrowthCard:       "BUY_GROWTH_CARD",
	ActionPlaySoldier:         "PLAY_SOLDIER",
	ActionPlayRoaming:         "PLAY_ROAMING",
	ActionPlayWealth:          "PLAY_WEALTH",
	ActionPlayGatherer:        "PLAY_GATHERER",
	ActionMoveThief:           "MOVE_THIEF",
	ActionStealResource:       "STEAL_RESOURCE",
	ActionDiscardResources:    "DISCARD_RESOURCES",
	ActionTradeWithBank:       "TRADE_WITH_BANK",
	ActionMakeTradeOffer:      "MAKE_TRADE_OFFER",
	ActionRespondToTradeOffer: "RESPOND_TO_TRADE_OFFER",
	ActionCancelTradeOffer:    "CANCEL_TRADE_OFFER",
	ActionEmbargo:             "EMBARGO",
	ActionRemoveEmbargo:       "REMOVE_EMBARGO",
	ActionSetupComplete:       "SETUP_COMPLETE",
	ActionRollSeven:           "ROLL_SEVEN",
	ActionRequireDiscard:      "REQUIRE_DISCARD",
	ActionDiscardComplete:     "DISCARD_COMPLETE",
	ActionNoStealTarget:       "NO_STEAL_TARGET",
	ActionRoamingComplete:     "ROAMING_COMPLETE",
	ActionVictoryReached:      "VICTORY_REACHED",
}

func (a ActionType) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_%d", int(a))
}

// IsSystem reports whether the action is driven by the engine rather than a player.
func (a ActionType) IsSystem() bool {
	return a >= ActionSetupComplete
}

// MarshalText encodes the action by name.
func (a ActionType) MarshalText() ([]byte, error) {
	name, ok := actionNames[a]
	if !ok {
		return nil, fmt.Errorf("unknown action type %d", int(a))
	}
	return []byte(name), nil
}

// UnmarshalText decodes an action name.
func (a *ActionType) UnmarshalText(text []byte) error {
	for action, name := range actionNames {
		if name == string(text) {
			*a = action
			return nil
		}
	}
	return fmt.Errorf("unknown action type %q", string(text))
}
