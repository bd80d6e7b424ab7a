package graph

import "github.com/tripplanner/orchestrator/internal/state"

// Builder is a fluent graph constructor, mirroring
// langgraph.GraphBuilder/TravelGraphBuilder's chained API in the teacher
// repo, generalized from node-type-specific helpers (AddLLMNode,
// AddToolNode, ...) to plain Node registration since every node here is
// already a concrete agent implementation (see internal/agents).
type Builder struct {
	g *Graph
}

// NewBuilder starts a new graph build.
func NewBuilder() *Builder {
	return &Builder{g: NewGraph()}
}

func (b *Builder) Node(n Node) *Builder {
	b.g.AddNode(n)
	return b
}

func (b *Builder) Entry(name string) *Builder {
	b.g.SetEntryPoint(name)
	return b
}

func (b *Builder) Exit(name string) *Builder {
	b.g.AddExitPoint(name)
	return b
}

func (b *Builder) Edge(from, to string) *Builder {
	b.g.Connect(from, to)
	return b
}

func (b *Builder) Conditional(from string, r Router) *Builder {
	b.g.Route(from, r)
	return b
}

// FanOut registers an unconditional dispatch from a node to a fixed set
// of parallel targets, joining at join. Use Conditional instead when the
// fan-out targets or join depend on the current state.
func (b *Builder) FanOut(from, join string, targets ...string) *Builder {
	b.g.Route(from, func(*state.PlannerState) RouteResult {
		return Dispatch(join, targets...)
	})
	return b
}

// Build finalizes and validates the graph.
func (b *Builder) Build() (*Graph, error) {
	if err := b.g.Validate(); err != nil {
		return nil, err
	}
	return b.g, nil
}
