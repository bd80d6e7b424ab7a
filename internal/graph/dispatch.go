package graph

import "github.com/tripplanner/orchestrator/internal/state"

// DispatchSet is the fan-out form a conditional edge's routing function
// may return: a list of Send targets plus the barrier-join node that
// must wait for all of them, per spec §4.3/§9 ("a conditional edge
// returns either a node name or a list of Dispatch{target, snapshot}
// commands; the runtime interprets these"). Naming the join explicitly
// here is the one generalization beyond a fully dynamic dispatch list:
// every fan-out in this pipeline (search, enrichment) has exactly one
// aggregator downstream, so the join is known at routing time.
type DispatchSet struct {
	Targets []string
	Join    string
}

// RouteResult is what a conditional edge's router function returns:
// exactly one of Next (continue to a single node) or Dispatch (fan out).
// An empty RouteResult (both fields zero) ends the run on that branch.
type RouteResult struct {
	Next     string
	Dispatch *DispatchSet
}

// Router evaluates a conditional edge against the current merged state,
// mirroring langgraph.Condition.Evaluate generalized to return routing
// decisions instead of a boolean.
type Router func(s *state.PlannerState) RouteResult

// Static routes unconditionally to a fixed next node.
func Static(next string) Router {
	return func(*state.PlannerState) RouteResult { return RouteResult{Next: next} }
}

// Dispatch fans out to targets, joining at join.
func Dispatch(join string, targets ...string) RouteResult {
	return RouteResult{Dispatch: &DispatchSet{Targets: targets, Join: join}}
}
