// Package router assigns planned subtasks to registered workers by
// specialization match.
package router

import (
	"github.com/ShayCichocki/hive/internal/registry"
	"github.com/ShayCichocki/hive/pkg/models"
)

// Assignment is the router's verdict on a plan: which subtasks run and
// under whom, which could not be matched, and which were cut by the
// subtask cap. Nothing is silently dropped.
type Assignment struct {
	// Assigned holds the subtasks that will execute, in plan order,
	// each with AssignedTo resolved to exactly one worker.
	Assigned []models.Subtask
	// Unroutable holds subtasks no worker scored above zero for. They
	// are excluded from execution and surface as gaps in the response.
	Unroutable []models.Subtask
	// Overflow holds subtasks beyond the configured cap, in plan order.
	Overflow []models.Subtask
}

// Router matches subtasks to workers using a scoring strategy. Highest
// score wins; ties go to the earlier-registered worker so assignment is
// deterministic for a fixed roster.
type Router struct {
	strategy    ScoreStrategy
	maxSubtasks int
}

// New creates a router. A non-positive maxSubtasks falls back to the
// model default.
func New(strategy ScoreStrategy, maxSubtasks int) *Router {
	if strategy == nil {
		strategy = TagOverlap{}
	}
	if maxSubtasks <= 0 {
		maxSubtasks = models.DefaultMaxSubtasks
	}
	return &Router{strategy: strategy, maxSubtasks: maxSubtasks}
}

// Strategy returns the active scoring strategy.
func (r *Router) Strategy() ScoreStrategy { return r.strategy }

// Assign resolves every subtask to at most one worker. Plan entries
// beyond the cap land in Overflow; entries no worker fits land in
// Unroutable. Unroutable subtasks are data, not errors: the caller
// reports them as gaps and executes the rest.
func (r *Router) Assign(subtasks []models.Subtask, reg *registry.Registry) Assignment {
	var a Assignment

	if len(subtasks) > r.maxSubtasks {
		a.Overflow = append(a.Overflow, subtasks[r.maxSubtasks:]...)
		subtasks = subtasks[:r.maxSubtasks]
	}

	workers := reg.All()
	for _, st := range subtasks {
		worker, ok := r.pick(st, workers)
		if !ok {
			a.Unroutable = append(a.Unroutable, st)
			continue
		}
		st.AssignedTo = worker
		a.Assigned = append(a.Assigned, st)
	}
	return a
}

// pick returns the best-scoring worker for the subtask. Registration
// order breaks ties because only a strictly higher score displaces the
// current best.
func (r *Router) pick(st models.Subtask, workers []models.AgentProfile) (string, bool) {
	var (
		bestName  string
		bestScore float64
	)
	for _, w := range workers {
		score := r.strategy.Score(st.Specializations, w.Specializations)
		if score > bestScore {
			bestScore = score
			bestName = w.Name
		}
	}
	if bestScore == 0 {
		return "", false
	}
	return bestName, true
}
