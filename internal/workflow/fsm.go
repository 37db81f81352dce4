// Package workflow holds the state machines of projects, revisions, purchase
// orders and contracts, and the quantity rules of fulfillment tracking.
//
// Every machine is a transition table keyed by the current state; a
// transition may carry a guard that inspects a context value of type C.
// Requests that are not in the table are rejected with
// storage.InvalidTransitionError naming both states.
package workflow

import "estimate-backend/internal/storage"

// Guard inspects the context of a transition and returns an error to veto it.
type Guard[C any] func(c C) error

type Transition[S ~string, C any] struct {
	From  S
	To    S
	Guard Guard[C]
}

type Machine[S ~string, C any] struct {
	entity string
	table  map[S]map[S]Guard[C]
}

func NewMachine[S ~string, C any](entity string, transitions ...Transition[S, C]) *Machine[S, C] {
	table := make(map[S]map[S]Guard[C], len(transitions))
	for _, t := range transitions {
		if table[t.From] == nil {
			table[t.From] = make(map[S]Guard[C])
		}
		table[t.From][t.To] = t.Guard
	}
	return &Machine[S, C]{entity: entity, table: table}
}

// Allowed reports whether the table has an edge from -> to, ignoring guards.
func (m *Machine[S, C]) Allowed(from, to S) bool {
	_, ok := m.table[from][to]
	return ok
}

// Check validates the edge and runs its guard.
func (m *Machine[S, C]) Check(from, to S, c C) error {
	guard, ok := m.table[from][to]
	if !ok {
		return storage.InvalidTransition(m.entity, string(from), string(to), "")
	}
	if guard == nil {
		return nil
	}
	if err := guard(c); err != nil {
		return storage.InvalidTransition(m.entity, string(from), string(to), err.Error())
	}
	return nil
}

// Next lists the states reachable from the given one in one step.
func (m *Machine[S, C]) Next(from S) []S {
	next := make([]S, 0, len(m.table[from]))
	for to := range m.table[from] {
		next = append(next, to)
	}
	return next
}

// Path walks single steps from -> to through the table, following the only
// outgoing edge at each step. It is used by the linear document machines.
func (m *Machine[S, C]) Path(from, to S, c C) ([]S, error) {
	var path []S
	cur := from
	for cur != to {
		edges := m.table[cur]
		if len(edges) != 1 {
			return nil, storage.InvalidTransition(m.entity, string(from), string(to), "")
		}
		var step S
		for s := range edges {
			step = s
		}
		if err := m.Check(cur, step, c); err != nil {
			return nil, err
		}
		path = append(path, step)
		cur = step
		if len(path) > len(m.table) {
			return nil, storage.InvalidTransition(m.entity, string(from), string(to), "")
		}
	}
	return path, nil
}
