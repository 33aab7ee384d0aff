package orchestrator

import "testing"

func TestStateValid(t *testing.T) {
	for _, s := range []State{StateIdle, StatePlanning, StateRouting, StateExecuting, StateSynthesizing, StateFailed} {
		if !s.Valid() {
			t.Errorf("State(%q).Valid() = false, want true", s)
		}
	}
	for _, s := range []State{"", "running", "IDLE"} {
		if State(s).Valid() {
			t.Errorf("State(%q).Valid() = true, want false", s)
		}
	}
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
		want bool
	}{
		{StateIdle, StatePlanning, true},
		{StateIdle, StateExecuting, false},
		{StateIdle, StateFailed, false},
		{StatePlanning, StateRouting, true},
		{StatePlanning, StateFailed, true},
		{StatePlanning, StateIdle, false},
		{StateRouting, StateExecuting, true},
		{StateRouting, StateFailed, false},
		{StateExecuting, StateSynthesizing, true},
		{StateExecuting, StateIdle, false},
		{StateSynthesizing, StateIdle, true},
		{StateSynthesizing, StateFailed, true},
		{StateFailed, StateIdle, true},
		{StateFailed, StatePlanning, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: CanTransitionTo = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
