package graph

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tripplanner/orchestrator/internal/checkpoint"
	"github.com/tripplanner/orchestrator/internal/state"
)

var tracer = otel.Tracer("graph")

// Event is emitted on the stream output as each node completes, per
// spec §4.3 step 4 ("Emit (node_name, partial_state) to the stream
// output").
type Event struct {
	NodeName string
	Partial  state.PartialState
	Err      error
}

// Status is the outcome of a Run/Resume call.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSuspended Status = "suspended"
	StatusTimeout   Status = "timeout"
)

// Result wraps the final state and how the run ended.
type Result struct {
	State  *state.PlannerState
	Status Status
}

// Executor drives one Graph against a Checkpointer, generalized from
// langgraph.GraphExecutor (teacher repo), adding fan-out dispatch,
// barrier joins, suspension, and resume — none of which the teacher's
// single-path executor supported.
type Executor struct {
	g            *Graph
	checkpointer checkpoint.Checkpointer

	// saveMu serializes checkpoint writes for one run so concurrent
	// fan-out branches don't interleave writes to the same thread_id,
	// per spec §5 ("writes are serialized; readers see a committed
	// snapshot").
	saveMu sync.Mutex

	// lastResult is set by run()/resumeFrom() right before their
	// out channel closes; Run/Resume read it only after fully draining
	// that channel, and one Executor drives only one Run/Resume call at
	// a time, so no further synchronization is needed.
	lastResult *Result
}

// NewExecutor builds an Executor bound to a graph and a checkpoint
// store.
func NewExecutor(g *Graph, cp checkpoint.Checkpointer) *Executor {
	return &Executor{g: g, checkpointer: cp}
}

// Run drives the graph to completion or suspension and returns the
// final state, per the run(...) inbound contract of spec §6.
func (e *Executor) Run(ctx context.Context, threadID string, s *state.PlannerState) (*Result, error) {
	var writeErr error
	for ev := range e.Stream(ctx, threadID, s) {
		if ev.Err != nil {
			// Only checkpoint-write failures propagate out of Run, per
			// spec §7's propagation policy; everything else becomes an
			// entry in s.Errors and the stream continues.
			if cwe, ok := ev.Err.(*checkpointWriteError); ok {
				writeErr = cwe
			}
		}
	}
	if writeErr != nil {
		return nil, writeErr
	}
	return e.lastResult, nil
}

// checkpointWriteError marks a fatal, propagating failure per spec §7
// taxonomy item 6.
type checkpointWriteError struct{ err error }

func (e *checkpointWriteError) Error() string { return fmt.Sprintf("checkpoint write failed: %v", e.err) }
func (e *checkpointWriteError) Unwrap() error  { return e.err }

// Stream executes the graph, emitting an Event per completed node as
// soon as it completes (including concurrent fan-out branches, in
// completion order — not enqueue order, per spec §4.3's ordering
// guarantees). The channel is closed when the run completes, suspends,
// or times out.
func (e *Executor) Stream(ctx context.Context, threadID string, s *state.PlannerState) <-chan Event {
	out := make(chan Event, 16)
	go e.run(ctx, threadID, s, out)
	return out
}

func (e *Executor) run(ctx context.Context, threadID string, s *state.PlannerState, out chan<- Event) {
	defer close(out)

	type task struct{ node string }
	queue := []task{{e.g.entry}}

	for len(queue) > 0 {
		if ctx.Err() != nil {
			s.Apply(state.PartialState{Errors: []string{"timeout: run cancelled or deadline exceeded"}})
			e.checkpointSafe(ctx, threadID, s, out)
			e.lastResult = &Result{State: s, Status: StatusTimeout}
			return
		}

		t := queue[0]
		queue = queue[1:]

		n, err := e.g.node(t.node)
		if err != nil {
			s.Apply(state.PartialState{Errors: []string{err.Error()}})
			continue
		}

		_, nodeErr := e.execNode(ctx, n, s, out)
		if nodeErr != nil {
			// Node failure: caught, logged, branch ends per spec §4.3's
			// failure semantics. The top-level branch simply stops
			// advancing; nothing further is enqueued from t.node.
			continue
		}

		if s.RequiresApproval {
			// Suspend: drain the queue, persist, return control.
			if !e.checkpointSafe(ctx, threadID, s, out) {
				return
			}
			e.lastResult = &Result{State: s, Status: StatusSuspended}
			return
		}

		next := e.routeFrom(t.node, s)
		if next.Dispatch != nil {
			e.runDispatch(ctx, threadID, next.Dispatch, s, out)
			if s.RequiresApproval {
				if !e.checkpointSafe(ctx, threadID, s, out) {
					return
				}
				e.lastResult = &Result{State: s, Status: StatusSuspended}
				return
			}
			queue = append(queue, task{next.Dispatch.Join})
			continue
		}
		if next.Next != "" {
			queue = append(queue, task{next.Next})
			continue
		}
		// No outgoing edge: terminal node or dead end, this branch ends.
	}

	if !e.checkpointSafe(ctx, threadID, s, out) {
		return
	}
	e.lastResult = &Result{State: s, Status: StatusCompleted}
}

// execNode runs a single node, merges its output, and emits a stream
// event. It writes no checkpoint: state is persisted after each fan-out
// branch, when a run suspends or times out, and when it ends, so a node
// on the sequential path is not checkpointed on its own.
func (e *Executor) execNode(ctx context.Context, n Node, s *state.PlannerState, out chan<- Event) (state.PartialState, error) {
	ctx, span := tracer.Start(ctx, "graph.node."+n.Name())
	defer span.End()
	span.SetAttributes(attribute.String("graph.node", n.Name()))

	snapshot := s.Snapshot()
	partial, err := n.Execute(ctx, snapshot)

	if err != nil {
		span.RecordError(err)
		s.Apply(state.PartialState{Errors: []string{fmt.Sprintf("%s: %v", n.Name(), err)}})
		out <- Event{NodeName: n.Name(), Err: err}
		return state.PartialState{}, err
	}

	s.Apply(partial)
	out <- Event{NodeName: n.Name(), Partial: partial}
	return partial, nil
}

// routeFrom evaluates the conditional router for node, falling back to
// its static edge if no router is registered.
func (e *Executor) routeFrom(node string, s *state.PlannerState) RouteResult {
	if r, ok := e.g.routers[node]; ok {
		return r(s)
	}
	if to, ok := e.g.static[node]; ok {
		return RouteResult{Next: to}
	}
	return RouteResult{}
}

// runDispatch fans a set of branch nodes out concurrently (permitted by
// spec §5 as long as reducers are honored atomically, which
// state.PlannerState.Apply already guarantees via its internal mutex)
// and blocks until every branch completes — the barrier join.
func (e *Executor) runDispatch(ctx context.Context, threadID string, d *DispatchSet, s *state.PlannerState, out chan<- Event) {
	var wg sync.WaitGroup
	for _, target := range d.Targets {
		n, err := e.g.node(target)
		if err != nil {
			s.Apply(state.PartialState{Errors: []string{err.Error()}})
			continue
		}
		wg.Add(1)
		go func(n Node) {
			defer wg.Done()
			// One failed branch does not cancel peers, per spec §4.3's
			// failure semantics; execNode already folds the error into
			// s.Errors and the barrier simply proceeds without this
			// branch's contribution.
			e.execNode(ctx, n, s, out)
			e.checkpointSafe(ctx, threadID, s, out)
		}(n)
	}
	wg.Wait()
}

// checkpointSafe persists the state, serialized across concurrent
// branches. On a failed write it emits a checkpointWriteError event and
// returns false; Run and Resume return that error to their caller (spec
// §7 taxonomy item 6). A failed write inside a fan-out branch does not
// stop the sibling branches.
func (e *Executor) checkpointSafe(ctx context.Context, threadID string, s *state.PlannerState, out chan<- Event) bool {
	if e.checkpointer == nil {
		return true
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if err := e.checkpointer.Save(ctx, threadID, s); err != nil {
		out <- Event{NodeName: "__checkpoint__", Err: &checkpointWriteError{err: err}}
		return false
	}
	return true
}

// Resume loads the last checkpoint for threadID, applies feedback and/or
// clears the approval gate, and continues execution from the node that
// suspended the run, per spec §4.3's suspension contract and the
// resume(...) inbound contract of spec §6.
func (e *Executor) Resume(ctx context.Context, threadID string, feedback string, approval bool) (*Result, error) {
	s, err := e.checkpointer.Load(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("graph: resume: %w", err)
	}

	if feedback != "" {
		s.Apply(state.PartialState{UserFeedback: &feedback})
	}
	if approval {
		falseVal := false
		s.Apply(state.PartialState{RequiresApproval: &falseVal})
	}

	if s.RequiresApproval {
		// Approval withheld: remain suspended, nothing to resume.
		return &Result{State: s, Status: StatusSuspended}, nil
	}

	out := make(chan Event, 16)
	suspendedAt := s.CurrentStage
	go func() {
		defer close(out)
		e.resumeFrom(ctx, threadID, suspendedAt, s, out)
	}()
	var writeErr error
	for ev := range out {
		if cwe, ok := ev.Err.(*checkpointWriteError); ok {
			writeErr = cwe
		}
	}
	if writeErr != nil {
		return nil, writeErr
	}
	return e.lastResult, nil
}

// resumeFrom continues scheduling starting with the routing decision for
// the node that suspended the run — that node itself already executed
// before suspending, so resume only re-evaluates its outgoing edges.
func (e *Executor) resumeFrom(ctx context.Context, threadID string, fromNode string, s *state.PlannerState, out chan<- Event) {
	type task struct{ node string }
	var queue []task

	next := e.routeFrom(fromNode, s)
	if next.Dispatch != nil {
		e.runDispatch(ctx, threadID, next.Dispatch, s, out)
		queue = append(queue, task{next.Dispatch.Join})
	} else if next.Next != "" {
		queue = append(queue, task{next.Next})
	}

	for len(queue) > 0 {
		if ctx.Err() != nil {
			s.Apply(state.PartialState{Errors: []string{"timeout: run cancelled or deadline exceeded"}})
			e.checkpointSafe(ctx, threadID, s, out)
			e.lastResult = &Result{State: s, Status: StatusTimeout}
			return
		}
		t := queue[0]
		queue = queue[1:]

		n, err := e.g.node(t.node)
		if err != nil {
			s.Apply(state.PartialState{Errors: []string{err.Error()}})
			continue
		}
		if _, err := e.execNode(ctx, n, s, out); err != nil {
			continue
		}
		if s.RequiresApproval {
			e.checkpointSafe(ctx, threadID, s, out)
			e.lastResult = &Result{State: s, Status: StatusSuspended}
			return
		}
		nr := e.routeFrom(t.node, s)
		if nr.Dispatch != nil {
			e.runDispatch(ctx, threadID, nr.Dispatch, s, out)
			queue = append(queue, task{nr.Dispatch.Join})
			continue
		}
		if nr.Next != "" {
			queue = append(queue, task{nr.Next})
		}
	}

	e.checkpointSafe(ctx, threadID, s, out)
	e.lastResult = &Result{State: s, Status: StatusCompleted}
}
