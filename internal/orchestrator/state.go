package orchestrator

// State is the orchestrator's position in the query lifecycle. Exactly
// one task moves through the pipeline at a time, so the state also tells
// callers whether a new query can be accepted.
type State string

const (
	// StateIdle means no task is in flight; queries are accepted.
	StateIdle State = "idle"
	// StatePlanning means the query is being decomposed into subtasks.
	StatePlanning State = "planning"
	// StateRouting means planned subtasks are being matched to workers.
	StateRouting State = "routing"
	// StateExecuting means assigned subtasks are running.
	StateExecuting State = "executing"
	// StateSynthesizing means subtask results are being merged.
	StateSynthesizing State = "synthesizing"
	// StateFailed means planning or synthesis hit a backend failure.
	// The orchestrator stays here, rejecting queries, until Reset.
	StateFailed State = "failed"
)

// Valid returns true if the state is a known value.
func (s State) Valid() bool {
	switch s {
	case StateIdle, StatePlanning, StateRouting, StateExecuting, StateSynthesizing, StateFailed:
		return true
	default:
		return false
	}
}

// transitions maps each state to the states it may legally move to.
// Routing and execution never fail the run: unroutable subtasks are
// reported as data and worker failures degrade their own results.
var transitions = map[State][]State{
	StateIdle:         {StatePlanning},
	StatePlanning:     {StateRouting, StateFailed},
	StateRouting:      {StateExecuting},
	StateExecuting:    {StateSynthesizing},
	StateSynthesizing: {StateIdle, StateFailed},
	StateFailed:       {StateIdle},
}

// CanTransitionTo returns true if moving from s to next is legal.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}
