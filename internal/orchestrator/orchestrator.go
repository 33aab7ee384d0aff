package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/hive/internal/backend"
	"github.com/ShayCichocki/hive/internal/coordinator"
	"github.com/ShayCichocki/hive/internal/memory"
	"github.com/ShayCichocki/hive/internal/planner"
	"github.com/ShayCichocki/hive/internal/registry"
	"github.com/ShayCichocki/hive/internal/router"
	"github.com/ShayCichocki/hive/internal/synthesis"
	"github.com/ShayCichocki/hive/internal/tools"
	"github.com/ShayCichocki/hive/internal/worker"
	"github.com/ShayCichocki/hive/pkg/models"
)

// defaultEventBuffer sizes the event channel. A full buffer drops
// events instead of blocking the pipeline.
const defaultEventBuffer = 100

// Options configure an Orchestrator.
type Options struct {
	// Provider is the capability provider shared by planning, workers,
	// and synthesis. Required.
	Provider backend.Provider
	// Registry holds the worker roster. Required, may be empty.
	Registry *registry.Registry
	// Invoker dispatches tool calls for workers. Nil disables tools.
	Invoker *tools.Invoker
	// Store persists conversation digests. Nil disables memory.
	Store memory.Store
	// Head is the profile of the coordinating agent itself; its Memory
	// flag gates conversation history. Zero value enables memory
	// whenever a store is configured.
	Head models.AgentProfile
	// Strategy scores subtask-to-worker matches. Nil means tag overlap.
	Strategy router.ScoreStrategy
	// MaxSubtasks caps the plan size. Non-positive means the default.
	MaxSubtasks int
	// MaxParallel caps concurrent subtask execution.
	MaxParallel int
	// SubtaskTimeout bounds each subtask's execution.
	SubtaskTimeout time.Duration
	// Tracker accumulates token usage reported in responses.
	Tracker *backend.TokenTracker
	// DebugLogPath is the debug log file. Empty disables debug logging.
	DebugLogPath string
	// EventBuffer sizes the event channel. Non-positive means the default.
	EventBuffer int
}

// Orchestrator owns the full query lifecycle: plan the query into
// subtasks, route them to workers, execute the routed ones under the
// coordinator, and synthesize a single response. Partial failure
// degrades the response; only planner or synthesizer backend failures
// fail the run.
type Orchestrator struct {
	provider backend.Provider
	invoker  *tools.Invoker
	store    memory.Store
	head     models.AgentProfile
	tracker  *backend.TokenTracker

	planner *planner.Planner
	router  *router.Router
	synth   *synthesis.Synthesizer

	maxParallel    int
	subtaskTimeout time.Duration

	events chan Event
	debug  *DebugLogger

	mu       sync.Mutex
	state    State
	cause    error
	taskID   string
	registry *registry.Registry
	coord    *coordinator.Coordinator
}

var _ coordinator.Observer = (*Orchestrator)(nil)

// New assembles an orchestrator from its parts. One worker is built per
// registered profile; the roster can be replaced later with SwapRegistry.
func New(opts Options) (*Orchestrator, error) {
	if opts.Provider == nil {
		return nil, models.NewError(models.ErrCodeValidation, "orchestrator requires a capability provider")
	}
	if opts.Registry == nil {
		return nil, models.NewError(models.ErrCodeValidation, "orchestrator requires a worker registry")
	}

	debug, err := NewDebugLogger(opts.DebugLogPath)
	if err != nil {
		return nil, err
	}

	if opts.Invoker == nil {
		opts.Invoker = tools.NewInvoker(tools.NewRegistry())
	}

	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}

	head := opts.Head
	if head.Name == "" {
		head = models.AgentProfile{Name: "head", Memory: opts.Store != nil}
	}

	o := &Orchestrator{
		provider:       opts.Provider,
		invoker:        opts.Invoker,
		store:          opts.Store,
		head:           head,
		tracker:        opts.Tracker,
		planner:        planner.New(opts.Provider, opts.MaxSubtasks),
		router:         router.New(opts.Strategy, opts.MaxSubtasks),
		synth:          synthesis.New(opts.Provider),
		maxParallel:    opts.MaxParallel,
		subtaskTimeout: opts.SubtaskTimeout,
		events:         make(chan Event, buffer),
		debug:          debug,
		state:          StateIdle,
		registry:       opts.Registry,
	}
	o.coord = coordinator.New(o.buildWorkers(opts.Registry), coordinator.Options{
		MaxParallel:    opts.MaxParallel,
		SubtaskTimeout: opts.SubtaskTimeout,
		Observer:       o,
	})
	return o, nil
}

// buildWorkers constructs one worker per registered profile.
func (o *Orchestrator) buildWorkers(reg *registry.Registry) map[string]coordinator.Worker {
	workers := make(map[string]coordinator.Worker, reg.Len())
	for _, profile := range reg.All() {
		workers[profile.Name] = worker.New(profile, o.provider, o.invoker)
	}
	return workers
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Events returns a read-only channel of orchestrator events.
// This is used by the TUI to receive progress updates.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// Reset returns a failed orchestrator to idle, clearing the stored
// failure cause. Calling it in any other state is a no-op.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	if o.state != StateFailed {
		o.mu.Unlock()
		return
	}
	o.state = StateIdle
	o.cause = nil
	o.mu.Unlock()

	o.debug.Log("reset: failed -> idle")
	o.emit(Event{Type: EventStateChanged, State: StateIdle, Timestamp: time.Now()})
}

// Close releases the debug log. The event channel is left open because
// in-flight emitters may still hold it.
func (o *Orchestrator) Close() error {
	return o.debug.Close()
}

// SwapRegistry replaces the worker roster, rebuilding the worker pool.
// The swap is rejected while a task is in flight.
func (o *Orchestrator) SwapRegistry(reg *registry.Registry) error {
	if reg == nil {
		return models.NewError(models.ErrCodeValidation, "cannot swap in a nil registry")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle && o.state != StateFailed {
		return models.NewError(models.ErrCodeValidation, "cannot swap roster while a task is in flight")
	}
	o.registry = reg
	o.coord = coordinator.New(o.buildWorkers(reg), coordinator.Options{
		MaxParallel:    o.maxParallel,
		SubtaskTimeout: o.subtaskTimeout,
		Observer:       o,
	})
	o.debug.Log("registry swapped: %d workers", reg.Len())
	return nil
}

// HandleQuery runs one task through the full pipeline and returns the
// synthesized response. Unroutable, failed, and timed-out subtasks
// degrade the response rather than aborting it; a backend failure in
// planning or synthesis moves the orchestrator to the failed state and
// is returned to the caller.
func (o *Orchestrator) HandleQuery(ctx context.Context, task models.Task) (models.FinalResponse, error) {
	task, err := normalize(task)
	if err != nil {
		return models.FinalResponse{}, err
	}
	if err := o.begin(task.ID); err != nil {
		return models.FinalResponse{}, err
	}
	defer o.clearTask()

	o.debug.Log("task %s accepted: %q (mode=%s format=%s)", task.ID, task.Query, task.Mode, task.Format)

	// Planning.
	reg := o.currentRegistry()
	history := o.history(ctx, task.ConversationID)
	plan, err := o.planner.Plan(ctx, task, reg.Vocabulary(), history)
	if err != nil {
		return models.FinalResponse{}, o.fail(err)
	}
	o.debug.Log("task %s planned: %d subtasks", task.ID, len(plan))
	o.emit(Event{Type: EventPlanReady, TaskID: task.ID, Plan: plan, Timestamp: time.Now()})

	// Routing.
	o.setState(StateRouting)
	asg := o.router.Assign(plan, reg)
	o.debug.Log("task %s routed: %d assigned, %d unroutable, %d overflow",
		task.ID, len(asg.Assigned), len(asg.Unroutable), len(asg.Overflow))
	for _, st := range asg.Unroutable {
		o.emit(Event{
			Type:         EventSubtaskUpdate,
			TaskID:       task.ID,
			SubtaskID:    st.ID,
			SubtaskTitle: st.Title,
			Status:       models.StatusUnroutable,
			Message:      "no worker matched",
			Timestamp:    time.Now(),
		})
	}

	// Executing.
	o.setState(StateExecuting)
	results := o.coordinatorFor().Run(ctx, asg.Assigned, task.Mode)

	// Synthesizing.
	o.setState(StateSynthesizing)
	merged, titles := mergeResults(plan, asg, results)
	resp, err := o.synth.Synthesize(ctx, models.SynthesisRequest{
		Query:   task.Query,
		Results: merged,
		Titles:  titles,
		Format:  task.Format,
	})
	if err != nil {
		return models.FinalResponse{}, o.fail(err)
	}

	resp.Overflow = subtaskTitles(asg.Overflow)
	if o.tracker != nil {
		resp.Usage = o.tracker.Usage()
	}

	o.remember(ctx, task, resp, merged, titles)

	o.debug.Log("task %s done: confidence=%.2f unrouted=%d overflow=%d",
		task.ID, resp.Confidence, len(resp.Unrouted), len(resp.Overflow))
	o.emit(Event{
		Type:       EventResponseReady,
		TaskID:     task.ID,
		Confidence: resp.Confidence,
		Timestamp:  time.Now(),
	})
	o.setState(StateIdle)
	return resp, nil
}

// SubtaskStarted implements coordinator.Observer.
func (o *Orchestrator) SubtaskStarted(st models.Subtask) {
	o.debug.Log("subtask %s (%s) started on %s", st.ID, st.Title, st.AssignedTo)
	o.emit(Event{
		Type:         EventSubtaskUpdate,
		TaskID:       o.currentTaskID(),
		SubtaskID:    st.ID,
		SubtaskTitle: st.Title,
		Worker:       st.AssignedTo,
		Message:      "started",
		Timestamp:    time.Now(),
	})
}

// SubtaskFinished implements coordinator.Observer.
func (o *Orchestrator) SubtaskFinished(st models.Subtask, result models.SubtaskResult) {
	o.debug.Log("subtask %s (%s) finished: status=%s confidence=%.2f tools=%d",
		st.ID, st.Title, result.Status, result.Confidence, result.ToolCalls)
	o.emit(Event{
		Type:         EventSubtaskUpdate,
		TaskID:       o.currentTaskID(),
		SubtaskID:    st.ID,
		SubtaskTitle: st.Title,
		Worker:       result.Worker,
		Status:       result.Status,
		Message:      "finished",
		Timestamp:    time.Now(),
	})
}

// normalize fills task defaults and rejects malformed fields.
func normalize(task models.Task) (models.Task, error) {
	if strings.TrimSpace(task.Query) == "" {
		return task, models.NewError(models.ErrCodeValidation, "task query is empty")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if task.Mode == "" {
		task.Mode = models.ModeParallel
	} else if !task.Mode.Valid() {
		return task, models.Errorf(models.ErrCodeValidation, "unknown execution mode %q", task.Mode)
	}
	if task.Format == "" {
		task.Format = models.FormatConcise
	} else if !task.Format.Valid() {
		return task, models.Errorf(models.ErrCodeValidation, "unknown response format %q", task.Format)
	}
	return task, nil
}

// begin accepts the task if the orchestrator is idle.
func (o *Orchestrator) begin(taskID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StateIdle:
		o.state = StatePlanning
		o.taskID = taskID
	case StateFailed:
		if o.cause != nil {
			return fmt.Errorf("orchestrator is in a failed state (reset required): %w", o.cause)
		}
		return models.NewError(models.ErrCodeValidation, "orchestrator is in a failed state (reset required)")
	default:
		return models.NewError(models.ErrCodeValidation, "orchestrator is busy with another task")
	}
	o.emit(Event{Type: EventStateChanged, State: StatePlanning, TaskID: taskID, Timestamp: time.Now()})
	return nil
}

func (o *Orchestrator) clearTask() {
	o.mu.Lock()
	o.taskID = ""
	o.mu.Unlock()
}

func (o *Orchestrator) currentTaskID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.taskID
}

func (o *Orchestrator) currentRegistry() *registry.Registry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.registry
}

func (o *Orchestrator) coordinatorFor() *coordinator.Coordinator {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.coord
}

// setState moves the pipeline forward, ignoring illegal transitions so
// a misuse never wedges an in-flight run.
func (o *Orchestrator) setState(next State) {
	o.mu.Lock()
	prev := o.state
	if !prev.CanTransitionTo(next) {
		o.mu.Unlock()
		o.debug.Log("illegal state transition %s -> %s ignored", prev, next)
		return
	}
	o.state = next
	taskID := o.taskID
	o.mu.Unlock()

	o.debug.Log("state %s -> %s", prev, next)
	o.emit(Event{Type: EventStateChanged, State: next, TaskID: taskID, Timestamp: time.Now()})
}

// fail records a run-fatal error and parks the orchestrator in the
// failed state until Reset.
func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.state = StateFailed
	o.cause = err
	taskID := o.taskID
	o.mu.Unlock()

	o.debug.Log("run failed: %v", err)
	o.emit(Event{Type: EventStateChanged, State: StateFailed, TaskID: taskID, Message: err.Error(), Timestamp: time.Now()})
	return err
}

// emit sends an event without blocking; when the buffer is full the
// event is dropped so a slow consumer cannot stall the pipeline.
func (o *Orchestrator) emit(event Event) {
	select {
	case o.events <- event:
	default:
	}
}

// history loads prior conversation digests when memory applies to this
// task. Memory errors degrade to an empty history.
func (o *Orchestrator) history(ctx context.Context, conversationID string) []string {
	if o.store == nil || !o.head.Memory || conversationID == "" {
		return nil
	}
	digests, err := o.store.History(ctx, conversationID)
	if err != nil {
		o.debug.Log("memory history unavailable: %v", err)
		return nil
	}
	return memory.PromptLines(digests)
}

// remember appends this turn's digest to the conversation history.
// Append errors are logged and otherwise ignored; memory never fails a
// completed run.
func (o *Orchestrator) remember(ctx context.Context, task models.Task, resp models.FinalResponse, results []models.SubtaskResult, titles map[string]string) {
	if o.store == nil || !o.head.Memory || task.ConversationID == "" {
		return
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%s: %s", titles[r.SubtaskID], r.Status))
	}
	d := memory.Digest{
		ConversationID: task.ConversationID,
		Query:          task.Query,
		Response:       resp.Text,
		Confidence:     resp.Confidence,
		Subtasks:       lines,
		CreatedAt:      time.Now(),
	}
	if err := o.store.Append(ctx, d); err != nil {
		o.debug.Log("memory append failed: %v", err)
	}
}

// mergeResults interleaves executed results with synthetic entries for
// unroutable subtasks, in plan order. Overflow subtasks were never
// admitted, so they stay out of the result set entirely.
func mergeResults(plan []models.Subtask, asg router.Assignment, results []models.SubtaskResult) ([]models.SubtaskResult, map[string]string) {
	byID := make(map[string]models.SubtaskResult, len(results))
	for _, r := range results {
		byID[r.SubtaskID] = r
	}
	unroutable := make(map[string]bool, len(asg.Unroutable))
	for _, st := range asg.Unroutable {
		unroutable[st.ID] = true
	}
	overflow := make(map[string]bool, len(asg.Overflow))
	for _, st := range asg.Overflow {
		overflow[st.ID] = true
	}

	merged := make([]models.SubtaskResult, 0, len(plan))
	titles := make(map[string]string, len(plan))
	for _, st := range plan {
		if overflow[st.ID] {
			continue
		}
		if unroutable[st.ID] {
			titles[st.ID] = st.Title
			merged = append(merged, models.SubtaskResult{
				SubtaskID:   st.ID,
				Status:      models.StatusUnroutable,
				ErrorDetail: fmt.Sprintf("no registered worker covers %s", strings.Join(st.Specializations, ", ")),
			})
			continue
		}
		if r, ok := byID[st.ID]; ok {
			titles[st.ID] = st.Title
			merged = append(merged, r)
		}
	}
	return merged, titles
}

func subtaskTitles(subtasks []models.Subtask) []string {
	if len(subtasks) == 0 {
		return nil
	}
	titles := make([]string, 0, len(subtasks))
	for _, st := range subtasks {
		titles = append(titles, st.Title)
	}
	return titles
}
