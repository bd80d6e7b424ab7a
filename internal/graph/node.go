// Package graph generalizes internal/langgraph's single-path Graph,
// Node, Edge, and GraphExecutor into the spec §4.3 runtime: a
// cooperative scheduler over pure state -> partial-state nodes, with
// conditional routing, dynamic fan-out via Send/Dispatch, barrier joins,
// checkpointing, suspension/resume, and streaming.
package graph

import (
	"context"

	"github.com/tripplanner/orchestrator/internal/state"
)

// Node is a pure function state -> partial-state, registered in the
// graph, per the glossary's "Agent node" definition. Generalized from
// langgraph.Node's Execute(ctx, *State) (*State, error) signature, which
// returned a whole replacement state; here a node returns only what it
// changed, consistent with spec §4.5's node convention.
type Node interface {
	Name() string
	Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error)
}

// FuncNode adapts a plain function into a Node, mirroring
// langgraph.FunctionNode's role in the teacher repo.
type FuncNode struct {
	NodeName string
	Fn       func(ctx context.Context, s *state.PlannerState) (state.PartialState, error)
}

func (f *FuncNode) Name() string { return f.NodeName }

func (f *FuncNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	return f.Fn(ctx, s)
}
