package graph

import "fmt"

// Graph is a directed multigraph of named nodes, static edges, and
// conditional routers, generalized from langgraph.Graph (teacher repo)
// which supported only a single unconditional/first-true-wins edge list
// per node and no fan-out.
type Graph struct {
	entry   string
	nodes   map[string]Node
	static  map[string]string // node -> unconditional next node
	routers map[string]Router // node -> conditional router (overrides static if present)
	exits   map[string]bool
}

// NewGraph builds an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]Node),
		static:  make(map[string]string),
		routers: make(map[string]Router),
		exits:   make(map[string]bool),
	}
}

// AddNode registers a node.
func (g *Graph) AddNode(n Node) *Graph {
	g.nodes[n.Name()] = n
	return g
}

// SetEntryPoint names the node execution starts from.
func (g *Graph) SetEntryPoint(name string) *Graph {
	g.entry = name
	return g
}

// AddExitPoint records a node in the graph's exits set. The executor does
// not consult that set: any node that completes with no outgoing edge
// ends its branch, whether or not it was marked as an exit.
func (g *Graph) AddExitPoint(name string) *Graph {
	g.exits[name] = true
	return g
}

// Connect adds a static, unconditional edge.
func (g *Graph) Connect(from, to string) *Graph {
	g.static[from] = to
	return g
}

// Route registers a conditional router for a node, taking precedence
// over any static edge from the same node.
func (g *Graph) Route(from string, r Router) *Graph {
	g.routers[from] = r
	return g
}

// Validate checks that the entry point and both ends of every static edge
// are registered nodes. Router targets and fan-out targets are not
// checked here; an unknown name there is recorded in the state's errors
// when the executor reaches it.
func (g *Graph) Validate() error {
	if g.entry == "" {
		return fmt.Errorf("graph: no entry point set")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("graph: entry point %q not registered", g.entry)
	}
	for from, to := range g.static {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("graph: static edge source %q not registered", from)
		}
		if _, ok := g.nodes[to]; !ok {
			return fmt.Errorf("graph: static edge target %q not registered", to)
		}
	}
	return nil
}

func (g *Graph) node(name string) (Node, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("graph: unknown node %q", name)
	}
	return n, nil
}

func (g *Graph) isExit(name string) bool { return g.exits[name] }
