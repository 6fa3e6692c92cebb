package rules

import "fmt"

// StackOp is the stack operation a transition applies.
type StackOp int

const (
	OpPush StackOp = iota
	OpPop
	OpReplace
)

var stackOpNames = map[StackOp]string{
	OpPush:    "PUSH",
	OpPop:     "POP",
	OpReplace: "REPLACE",
}

func (op StackOp) String() string {
	if name, ok := stackOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_%d", int(op))
}

// Transition is the outcome of performing an action in a state. Next is
// ignored for OpPop.
type Transition struct {
	Next GameState
	Op   StackOp
}

type transitionKey struct {
	state  GameState
	action ActionType
}

// transitions is built once and never mutated.
var transitions = buildTransitions()

func buildTransitions() map[transitionKey]Transition {
	t := make(map[transitionKey]Transition)
	replace := func(from GameState, action ActionType, to GameState) {
		t[transitionKey{from, action}] = Transition{Next: to, Op: OpReplace}
	}
	push := func(from GameState, action ActionType, to GameState) {
		t[transitionKey{from, action}] = Transition{Next: to, Op: OpPush}
	}
	pop := func(from GameState, action ActionType) {
		t[transitionKey{from, action}] = Transition{Op: OpPop}
	}
	keep := func(from GameState, actions ...ActionType) {
		for _, a := range actions {
			replace(from, a, from)
		}
	}

	// initial placement
	replace(StateSetupSettlement, ActionBuildSettlement, StateSetupRoad)
	replace(StateSetupRoad, ActionBuildRoad, StateSetupSettlement)
	replace(StateSetupSettlement, ActionSetupComplete, StateBeforeRoll)

	// turn
	replace(StateBeforeRoll, ActionRollDice, StateAfterRoll)
	replace(StateAfterRoll, ActionEndTurn, StateBeforeRoll)
	keep(StateBeforeRoll,
		ActionPlayWealth, ActionPlayGatherer,
		ActionEmbargo, ActionRemoveEmbargo,
	)
	keep(StateAfterRoll,
		ActionBuildSettlement, ActionBuildRoad, ActionBuildTown,
		ActionBuyGrowthCard, ActionPlayWealth, ActionPlayGatherer,
		ActionTradeWithBank, ActionMakeTradeOffer, ActionRespondToTradeOffer, ActionCancelTradeOffer,
		ActionEmbargo, ActionRemoveEmbargo,
	)

	// thief sequence, from a rolled seven or a soldier
	push(StateAfterRoll, ActionRollSeven, StateMoveThief)
	push(StateMoveThief, ActionRequireDiscard, StateDiscardResources)
	keep(StateDiscardResources, ActionDiscardResources)
	pop(StateDiscardResources, ActionDiscardComplete)
	replace(StateMoveThief, ActionMoveThief, StateStealResource)
	pop(StateStealResource, ActionStealResource)
	pop(StateStealResource, ActionNoStealTarget)

	for _, s := range []GameState{StateBeforeRoll, StateAfterRoll} {
		push(s, ActionPlaySoldier, StateMoveThief)
		push(s, ActionPlayRoaming, StateRoamingRoads)
	}
	keep(StateRoamingRoads, ActionBuildRoad)
	pop(StateRoamingRoads, ActionRoamingComplete)

	for _, s := range []GameState{
		StateBeforeRoll, StateAfterRoll, StateDiscardResources,
		StateMoveThief, StateStealResource, StateRoamingRoads,
	} {
		replace(s, ActionVictoryReached, StateGameOver)
	}

	return t
}

// Lookup returns the transition for performing action in state.
func Lookup(state GameState, action ActionType) (Transition, bool) {
	tr, ok := transitions[transitionKey{state, action}]
	return tr, ok
}

// ActionsFor returns every action, player or system, with a transition out of
// state, in action order.
func ActionsFor(state GameState) []ActionType {
	var actions []ActionType
	for a := ActionType(0); a <= ActionVictoryReached; a++ {
		if _, ok := transitions[transitionKey{state, a}]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}
