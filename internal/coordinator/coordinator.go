// Package coordinator runs assigned subtasks under the configured
// execution mode. It is the only component that introduces concurrency.
package coordinator

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/hive/pkg/models"
)

const (
	// DefaultMaxParallel bounds concurrent subtask executions.
	DefaultMaxParallel = 5
	// DefaultSubtaskTimeout bounds one subtask execution.
	DefaultSubtaskTimeout = 120 * time.Second
)

// Worker handles one subtask and always returns a terminal result.
type Worker interface {
	Handle(ctx context.Context, st models.Subtask) models.SubtaskResult
}

// Observer receives execution progress. Implementations must be safe for
// concurrent calls; parallel units report from their own goroutines.
type Observer interface {
	SubtaskStarted(st models.Subtask)
	SubtaskFinished(st models.Subtask, result models.SubtaskResult)
}

type nopObserver struct{}

func (nopObserver) SubtaskStarted(models.Subtask)                        {}
func (nopObserver) SubtaskFinished(models.Subtask, models.SubtaskResult) {}

// Options tune the coordinator. Zero values select the defaults.
type Options struct {
	MaxParallel    int
	SubtaskTimeout time.Duration
	Observer       Observer
}

// Coordinator executes (subtask, worker) assignments. Result order always
// matches input order regardless of completion order, and one slow or
// failed unit never blocks collection of the others.
type Coordinator struct {
	workers        map[string]Worker
	maxParallel    int
	subtaskTimeout time.Duration
	observer       Observer
}

// New creates a coordinator over a set of named workers.
func New(workers map[string]Worker, opts Options) *Coordinator {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = DefaultMaxParallel
	}
	if opts.SubtaskTimeout <= 0 {
		opts.SubtaskTimeout = DefaultSubtaskTimeout
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Coordinator{
		workers:        workers,
		maxParallel:    opts.MaxParallel,
		subtaskTimeout: opts.SubtaskTimeout,
		observer:       opts.Observer,
	}
}

// Run executes all subtasks under the given mode and returns one result
// per subtask, in input order. Parallel mode requires independent
// subtasks; a batch carrying dependencies is demoted to sequential
// execution in dependency-satisfied order (results still in input order).
func (c *Coordinator) Run(ctx context.Context, subtasks []models.Subtask, mode models.ExecutionMode) []models.SubtaskResult {
	if len(subtasks) == 0 {
		return nil
	}

	if mode == models.ModeParallel && hasDependencies(subtasks) {
		log.Printf("[coordinator] batch carries dependencies, demoting to sequential execution")
		mode = models.ModeSequential
	}

	if mode == models.ModeSequential {
		return c.runSequential(ctx, subtasks)
	}
	return c.runParallel(ctx, subtasks)
}

// runParallel fans the batch out on a bounded errgroup. Every unit writes
// its own slot and returns nil, so a failure or timeout in one unit never
// cancels siblings. In-flight work drains before Wait returns.
func (c *Coordinator) runParallel(ctx context.Context, subtasks []models.Subtask) []models.SubtaskResult {
	results := make([]models.SubtaskResult, len(subtasks))

	var g errgroup.Group
	g.SetLimit(c.maxParallel)
	for i, st := range subtasks {
		g.Go(func() error {
			results[i] = c.runOne(ctx, st)
			return nil
		})
	}
	g.Wait()
	return results
}

// runSequential executes units one at a time in dependency-satisfied
// order; a failure does not stop the remainder. Results land in input
// order regardless of execution order.
func (c *Coordinator) runSequential(ctx context.Context, subtasks []models.Subtask) []models.SubtaskResult {
	results := make([]models.SubtaskResult, len(subtasks))
	for _, i := range executionOrder(subtasks) {
		results[i] = c.runOne(ctx, subtasks[i])
	}
	return results
}

// runOne executes a single subtask under its own timeout. The timeout
// cancels only this unit and its in-flight tool call, never siblings.
func (c *Coordinator) runOne(ctx context.Context, st models.Subtask) models.SubtaskResult {
	c.observer.SubtaskStarted(st)

	unitCtx, cancel := context.WithTimeout(ctx, c.subtaskTimeout)
	defer cancel()

	var result models.SubtaskResult
	if w, ok := c.workers[st.AssignedTo]; ok {
		result = w.Handle(unitCtx, st)
	} else {
		result = models.SubtaskResult{
			SubtaskID:   st.ID,
			Worker:      st.AssignedTo,
			Status:      models.StatusFailed,
			ErrorDetail: fmt.Sprintf("no worker %q available", st.AssignedTo),
		}
	}

	c.observer.SubtaskFinished(st, result)
	return result
}

func hasDependencies(subtasks []models.Subtask) bool {
	for _, st := range subtasks {
		if len(st.DependsOn) > 0 {
			return true
		}
	}
	return false
}

// executionOrder returns subtask indices in dependency-satisfied order,
// preferring input order among ready units. Dependencies pointing outside
// the batch (cut by routing or the cap) count as satisfied. The planner
// rejects cycles, but an unresolvable batch still executes: remaining
// units are appended in input order.
func executionOrder(subtasks []models.Subtask) []int {
	n := len(subtasks)
	indexByID := make(map[string]int, n)
	for i, st := range subtasks {
		indexByID[st.ID] = i
	}

	order := make([]int, 0, n)
	done := make([]bool, n)

	ready := func(i int) bool {
		for _, dep := range subtasks[i].DependsOn {
			if j, ok := indexByID[dep]; ok && !done[j] {
				return false
			}
		}
		return true
	}

	for len(order) < n {
		progressed := false
		for i := 0; i < n; i++ {
			if done[i] || !ready(i) {
				continue
			}
			order = append(order, i)
			done[i] = true
			progressed = true
		}
		if !progressed {
			for i := 0; i < n; i++ {
				if !done[i] {
					order = append(order, i)
					done[i] = true
				}
			}
		}
	}
	return order
}
