package rules

import (
	"errors"
	"fmt"
)

// ErrInvalidAction is returned when the current state has no transition for an action.
var ErrInvalidAction = errors.New("action not valid in current state")

// StateManager keeps the game's phase stack. The top of the stack is the
// current state. It is not safe for concurrent use; callers serialise access
// per game.
type StateManager struct {
	stack []GameState
}

// NewStateManager creates a state manager holding a single initial state.
func NewStateManager(initial GameState) *StateManager {
	stack := make([]GameState, 1, 4)
	stack[0] = initial
	return &StateManager{stack: stack}
}

// RestoreStateManager rebuilds a state manager from a saved stack, bottom first.
func RestoreStateManager(stack []GameState) (*StateManager, error) {
	if len(stack) == 0 {
		return nil, errors.New("state stack is empty")
	}
	for _, s := range stack {
		if _, ok := stateNames[s]; !ok {
			return nil, fmt.Errorf("unknown game state %d in stack", int(s))
		}
	}
	cpy := make([]GameState, len(stack))
	copy(cpy, stack)
	return &StateManager{stack: cpy}, nil
}

// CurrentState returns the state on top of the stack.
func (sm *StateManager) CurrentState() GameState {
	return sm.stack[len(sm.stack)-1]
}

// Stack returns a copy of the stack, bottom first.
func (sm *StateManager) Stack() []GameState {
	cpy := make([]GameState, len(sm.stack))
	copy(cpy, sm.stack)
	return cpy
}

// Depth returns the number of states on the stack.
func (sm *StateManager) Depth() int {
	return len(sm.stack)
}

// CanPerform reports whether action has a transition from the current state.
func (sm *StateManager) CanPerform(action ActionType) bool {
	_, ok := Lookup(sm.CurrentState(), action)
	return ok
}

// GetValidActions returns the player actions the current state accepts.
func (sm *StateManager) GetValidActions() []ActionType {
	all := ActionsFor(sm.CurrentState())
	actions := make([]ActionType, 0, len(all))
	for _, a := range all {
		if !a.IsSystem() {
			actions = append(actions, a)
		}
	}
	return actions
}

// MoveState applies the transition for action to the stack. It returns
// ErrInvalidAction when no transition exists. A transition that leaves the
// stack empty means the transition table is corrupt and panics.
func (sm *StateManager) MoveState(action ActionType) error {
	from := sm.CurrentState()
	tr, ok := Lookup(from, action)
	if !ok {
		return fmt.Errorf("%w: %s in %s", ErrInvalidAction, action, from)
	}

	switch tr.Op {
	case OpPush:
		sm.stack = append(sm.stack, tr.Next)
	case OpPop:
		sm.stack = sm.stack[:len(sm.stack)-1]
	case OpReplace:
		sm.stack[len(sm.stack)-1] = tr.Next
	default:
		panic(fmt.Sprintf("unknown stack operation %s for %s in %s", tr.Op, action, from))
	}

	if len(sm.stack) == 0 {
		panic(fmt.Sprintf("state stack empty after %s in %s", action, from))
	}
	return nil
}
