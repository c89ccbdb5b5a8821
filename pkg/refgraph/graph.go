package refgraph

import (
	"strings"

	"github.com/matzehuels/reftext/pkg/reftext"
)

// Node is one distinct array or object.
type Node struct {
	// ID is the path at which serialization writes the value in full.
	ID       string
	Type     reftext.ValueType
	Entries  int
	InDegree int

	value any
}

// Edge links a container to a child container through one path piece.
type Edge struct {
	From  string
	To    string
	Label string
}

// Graph is the reference graph of a value: nodes in discovery order and
// edges in entry order.
type Graph struct {
	nodes []*Node
	edges []Edge
	index map[string]int
	out   map[string][]int
}

func newGraph() *Graph {
	return &Graph{index: make(map[string]int), out: make(map[string][]int)}
}

// Build computes the reference graph of v. Values other than arrays and
// objects produce an empty graph.
func Build(v any) (*Graph, error) {
	locs, err := reftext.Locations(v)
	if err != nil {
		return nil, err
	}

	g := newGraph()
	paths := make(map[reftext.Ref]string, len(locs))
	for _, loc := range locs {
		ref, _ := reftext.RefOf(loc.Value)
		paths[ref] = loc.Path
		g.addNode(&Node{ID: loc.Path, Type: loc.Type, value: loc.Value})
	}
	if len(locs) == 0 {
		// an empty []any root has no identity, so it has no location either
		if t, ok := reftext.KindOf(v); ok && t.IsReference() {
			g.addNode(&Node{ID: reftext.FormatPath(nil), Type: t, value: v})
		}
	}

	// Nodes appended for identity-less children are visited too; they have
	// no entries.
	for i := 0; i < len(g.nodes); i++ {
		n := g.nodes[i]
		entries := reftext.Entries(n.value)
		n.Entries = len(entries)
		for _, e := range entries {
			t, ok := reftext.KindOf(e.Value)
			if !ok || !t.IsReference() {
				continue
			}
			to, has := "", false
			if ref, ok := reftext.RefOf(e.Value); ok {
				to, has = paths[ref]
			}
			if !has {
				to = childPath(n.ID, e.Piece)
				g.addNode(&Node{ID: to, Type: t, value: e.Value})
			}
			g.addEdge(n.ID, to, e.Piece.String())
		}
	}
	return g, nil
}

// childPath appends one segment to a reference path.
func childPath(parent string, piece reftext.PathPiece) string {
	var sb strings.Builder
	if parent == reftext.FormatPath(nil) {
		sb.WriteByte('/')
	} else {
		sb.WriteString(parent)
	}
	sb.WriteString(piece.String())
	sb.WriteByte('/')
	return sb.String()
}

func (g *Graph) addNode(n *Node) {
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

func (g *Graph) addEdge(from, to, label string) {
	g.out[from] = append(g.out[from], len(g.edges))
	g.edges = append(g.edges, Edge{From: from, To: to, Label: label})
	g.nodes[g.index[to]].InDegree++
}

// Nodes returns the nodes in discovery order. The root comes first.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns all edges.
func (g *Graph) Edges() []Edge { return g.edges }

// Node looks up a node by path.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Children returns the outgoing edges of id in entry order.
func (g *Graph) Children(id string) []Edge {
	idx := g.out[id]
	out := make([]Edge, len(idx))
	for i, e := range idx {
		out[i] = g.edges[e]
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }
