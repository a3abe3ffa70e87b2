package workflow

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidTransition is returned when a trigger has no edge from the current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrFinalState is returned when a trigger is fired from a final state
	ErrFinalState = errors.New("state is final")

	// ErrDefinition is returned by Define for a malformed transition table
	ErrDefinition = errors.New("invalid lifecycle definition")
)

// Trigger names the action that moves a lifecycle along an edge
type Trigger string

const (
	TriggerStartReview Trigger = "START_REVIEW"
	TriggerAccept      Trigger = "ACCEPT"
	TriggerReject      Trigger = "REJECT"
	TriggerUpload      Trigger = "UPLOAD"
	TriggerApprove     Trigger = "APPROVE"
)

func (t Trigger) String() string {
	return string(t)
}

// Transition is a single edge of a lifecycle
type Transition struct {
	From    State
	Trigger Trigger
	To      State
}

// Lifecycle is an immutable transition table shared by every machine started from it
type Lifecycle struct {
	name  string
	edges map[State]map[Trigger]State
	final map[State]bool
}

// Define validates a transition table. Final states may not have outgoing edges,
// and a (state, trigger) pair may lead to one target only.
func Define(name string, final []State, transitions ...Transition) (*Lifecycle, error) {
	l := &Lifecycle{
		name:  name,
		edges: make(map[State]map[Trigger]State),
		final: make(map[State]bool, len(final)),
	}

	for _, s := range final {
		if !s.IsValid() {
			return nil, fmt.Errorf("%w: %s: unknown final state %q", ErrDefinition, name, s)
		}
		l.final[s] = true
	}

	for _, t := range transitions {
		if !t.From.IsValid() || !t.To.IsValid() {
			return nil, fmt.Errorf("%w: %s: unknown state in %s -%s-> %s", ErrDefinition, name, t.From, t.Trigger, t.To)
		}
		if l.final[t.From] {
			return nil, fmt.Errorf("%w: %s: final state %s has outgoing edge %s", ErrDefinition, name, t.From, t.Trigger)
		}
		out, ok := l.edges[t.From]
		if !ok {
			out = make(map[Trigger]State)
			l.edges[t.From] = out
		}
		if prev, dup := out[t.Trigger]; dup && prev != t.To {
			return nil, fmt.Errorf("%w: %s: %s -%s-> is ambiguous (%s, %s)", ErrDefinition, name, t.From, t.Trigger, prev, t.To)
		}
		out[t.Trigger] = t.To
	}

	return l, nil
}

// MustDefine is Define for package-level tables; it panics on a malformed definition
func MustDefine(name string, final []State, transitions ...Transition) *Lifecycle {
	l, err := Define(name, final, transitions...)
	if err != nil {
		panic(err)
	}
	return l
}

// Name identifies the lifecycle in errors and metrics
func (l *Lifecycle) Name() string {
	return l.name
}

// IsFinal reports whether s was declared final
func (l *Lifecycle) IsFinal(s State) bool {
	return l.final[s]
}

// Next resolves the target of firing trigger from state from
func (l *Lifecycle) Next(from State, trigger Trigger) (State, error) {
	if l.final[from] {
		return from, fmt.Errorf("%w: %s: cannot fire %s from %s", ErrFinalState, l.name, trigger, from)
	}
	to, ok := l.edges[from][trigger]
	if !ok {
		return from, fmt.Errorf("%w: %s: cannot fire %s from %s", ErrInvalidTransition, l.name, trigger, from)
	}
	return to, nil
}

// Permitted lists the triggers available from state s, sorted
func (l *Lifecycle) Permitted(s State) []Trigger {
	out := l.edges[s]
	triggers := make([]Trigger, 0, len(out))
	for t := range out {
		triggers = append(triggers, t)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}

// Start returns a machine positioned at initial
func (l *Lifecycle) Start(initial State) *Machine {
	return &Machine{lifecycle: l, state: initial}
}

// Machine tracks the position of one entity within a lifecycle
type Machine struct {
	lifecycle *Lifecycle
	state     State
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) IsFinal() bool {
	return m.lifecycle.IsFinal(m.state)
}

// CanFire reports whether trigger has an edge from the current state
func (m *Machine) CanFire(trigger Trigger) bool {
	_, err := m.lifecycle.Next(m.state, trigger)
	return err == nil
}

// Fire moves the machine along trigger's edge. The state is unchanged on error.
func (m *Machine) Fire(trigger Trigger) error {
	to, err := m.lifecycle.Next(m.state, trigger)
	if err != nil {
		return err
	}
	m.state = to
	return nil
}

// PermittedTriggers lists the triggers available from the current state
func (m *Machine) PermittedTriggers() []Trigger {
	return m.lifecycle.Permitted(m.state)
}
