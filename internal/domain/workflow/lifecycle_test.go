package workflow

import (
	"errors"
	"reflect"
	"testing"
)

func reviewLifecycle(t *testing.T) *Lifecycle {
	t.Helper()
	l, err := Define("review", []State{StateAccepted, StateRejected},
		Transition{StatePending, TriggerStartReview, StateUnderReview},
		Transition{StatePending, TriggerAccept, StateAccepted},
		Transition{StatePending, TriggerReject, StateRejected},
		Transition{StateUnderReview, TriggerAccept, StateAccepted},
		Transition{StateUnderReview, TriggerReject, StateRejected},
	)
	if err != nil {
		t.Fatalf("Define() failed: %v", err)
	}
	return l
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"pending", StatePending, true},
		{"under review", StateUnderReview, true},
		{"absent", StateAbsent, true},
		{"approved", StateApproved, true},
		{"upper case", State("PENDING"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDefine_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		final       []State
		transitions []Transition
	}{
		{"unknown final", []State{"archived"}, nil},
		{"unknown source", nil, []Transition{{"draft", TriggerUpload, StatePending}}},
		{"unknown target", nil, []Transition{{StatePending, TriggerAccept, "done"}}},
		{"edge from final", []State{StateApproved}, []Transition{{StateApproved, TriggerUpload, StatePending}}},
		{"ambiguous edge", nil, []Transition{
			{StatePending, TriggerAccept, StateAccepted},
			{StatePending, TriggerAccept, StateRejected},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Define("broken", tt.final, tt.transitions...); !errors.Is(err, ErrDefinition) {
				t.Errorf("Define() error = %v, want %v", err, ErrDefinition)
			}
		})
	}
}

func TestDefine_DuplicateIdenticalEdge(t *testing.T) {
	_, err := Define("dup", nil,
		Transition{StateAbsent, TriggerUpload, StatePending},
		Transition{StateAbsent, TriggerUpload, StatePending},
	)
	if err != nil {
		t.Errorf("identical duplicate edge should be accepted, got %v", err)
	}
}

func TestMustDefine_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustDefine() should panic on a malformed table")
		}
	}()
	MustDefine("broken", []State{"archived"})
}

func TestMachine_Fire(t *testing.T) {
	l := reviewLifecycle(t)

	m := l.Start(StatePending)
	if !m.CanFire(TriggerStartReview) {
		t.Error("CanFire() should be true for a configured edge")
	}
	if err := m.Fire(TriggerStartReview); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m.State() != StateUnderReview {
		t.Errorf("State() = %v, want %v", m.State(), StateUnderReview)
	}

	err := m.Fire(TriggerStartReview)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if m.State() != StateUnderReview {
		t.Errorf("state must not move on a failed Fire(), got %v", m.State())
	}
}

func TestMachine_FinalState(t *testing.T) {
	m := reviewLifecycle(t).Start(StateAccepted)

	if !m.IsFinal() {
		t.Error("IsFinal() should be true for a declared final state")
	}
	if m.CanFire(TriggerReject) {
		t.Error("CanFire() should be false from a final state")
	}
	if err := m.Fire(TriggerReject); !errors.Is(err, ErrFinalState) {
		t.Errorf("Fire() error = %v, want %v", err, ErrFinalState)
	}
	if got := m.PermittedTriggers(); len(got) != 0 {
		t.Errorf("PermittedTriggers() = %v, want none", got)
	}
}

func TestMachine_PermittedTriggers(t *testing.T) {
	got := reviewLifecycle(t).Start(StatePending).PermittedTriggers()
	want := []Trigger{TriggerAccept, TriggerReject, TriggerStartReview}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PermittedTriggers() = %v, want %v", got, want)
	}
}

func TestLifecycle_SharedAcrossMachines(t *testing.T) {
	l := reviewLifecycle(t)
	a, b := l.Start(StatePending), l.Start(StatePending)

	if err := a.Fire(TriggerAccept); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if b.State() != StatePending {
		t.Errorf("machines must not share position, b = %v", b.State())
	}
	if l.Name() != "review" {
		t.Errorf("Name() = %q", l.Name())
	}
}
