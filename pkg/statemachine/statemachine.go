package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// State represents a state in the machine.
type State interface {
	Name() string
}

// Event represents an event that can trigger a transition.
type Event interface {
	Name() string
}

// Action executes side effects during a transition. Returning an error aborts
// the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard evaluates whether a transition should be allowed.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition defines a state change triggered by an event, with optional
// guards and actions.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard  // All must pass for transition to proceed
	Actions []Action // Executed in order before state change
}

// StringState is a string-based State for basic use cases.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is a string-based Event for basic use cases.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }

// Machine is a thread-safe in-memory state machine. Transition lookups use a
// nested map keyed by [fromState][event].
type Machine struct {
	initial     State
	current     State
	transitions map[string]map[string][]Transition
	mu          sync.RWMutex
}

// New creates a machine positioned at the given initial state.
func New(initial State) (*Machine, error) {
	if initial == nil {
		return nil, ErrInvalidState
	}
	return &Machine{
		initial:     initial,
		current:     initial,
		transitions: make(map[string]map[string][]Transition),
	}, nil
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SetCurrent positions the machine at the given state without firing any
// transition. Used when the machine models an entity whose state is loaded
// from storage.
func (m *Machine) SetCurrent(s State) error {
	if s == nil {
		return ErrInvalidState
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	return nil
}

// AddTransition registers a transition. Multiple transitions may share the
// same from-state and event to support guard-based branching.
func (m *Machine) AddTransition(from, to State, event Event, guards []Guard, actions []Action) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fromName := from.Name()
	eventName := event.Name()

	if _, ok := m.transitions[fromName]; !ok {
		m.transitions[fromName] = make(map[string][]Transition)
	}

	m.transitions[fromName][eventName] = append(m.transitions[fromName][eventName], Transition{
		From:    from,
		To:      to,
		Event:   event,
		Guards:  guards,
		Actions: actions,
	})
	return nil
}

// Fire attempts to transition on the given event. The first registered
// transition whose guards all pass wins; its actions run before the state
// change and any action error aborts the transition.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	currentName := m.current.Name()
	eventName := event.Name()

	transitions := m.transitions[currentName][eventName]
	if len(transitions) == 0 {
		return NewErrNoTransition(currentName, eventName)
	}

	var valid *Transition
	for i, t := range transitions {
		if m.guardsPass(ctx, t, event, data) {
			valid = &transitions[i]
			break
		}
	}
	if valid == nil {
		return NewErrTransitionRejected(currentName, eventName)
	}

	for _, action := range valid.Actions {
		if action != nil {
			if err := action(ctx, m.current, valid.To, event, data); err != nil {
				return fmt.Errorf("action failed: %w", err)
			}
		}
	}

	m.current = valid.To
	return nil
}

// CanFire reports whether any registered transition would accept the event
// from the current state.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.transitions[m.current.Name()][event.Name()] {
		if m.guardsPass(ctx, t, event, data) {
			return true
		}
	}
	return false
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
	return nil
}

func (m *Machine) guardsPass(ctx context.Context, t Transition, event Event, data any) bool {
	for _, guard := range t.Guards {
		if guard != nil && !guard(ctx, m.current, event, data) {
			return false
		}
	}
	return true
}
