package refgraph

import "github.com/matzehuels/reftext/pkg/reftext"

// Stats summarizes the sharing structure of a graph.
type Stats struct {
	Nodes   int
	Edges   int
	Arrays  int
	Objects int

	// Shared counts nodes reached through more than one edge.
	Shared int

	// BackEdges counts edges that close a cycle.
	BackEdges int
}

// Cyclic reports whether the value contains a cycle.
func (s Stats) Cyclic() bool { return s.BackEdges > 0 }

// ComputeStats summarizes g.
func ComputeStats(g *Graph) Stats {
	s := Stats{
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		BackEdges: len(BackEdges(g)),
	}
	for _, n := range g.nodes {
		switch n.Type {
		case reftext.TypeArray:
			s.Arrays++
		case reftext.TypeObject:
			s.Objects++
		}
		if n.InDegree > 1 {
			s.Shared++
		}
	}
	return s
}

// BackEdges returns the edges that point at a container still open on the
// depth-first path from the root, in the order the search finds them.
func BackEdges(g *Graph) []Edge {
	const (
		white = iota
		gray
		black
	)

	type frame struct {
		id   string
		next int
	}

	color := make(map[string]int, len(g.nodes))
	var back []Edge

	visit := func(start string) {
		color[start] = gray
		stack := []frame{{id: start}}
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			out := g.out[f.id]
			if f.next >= len(out) {
				color[f.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			e := g.edges[out[f.next]]
			f.next++
			switch color[e.To] {
			case white:
				color[e.To] = gray
				stack = append(stack, frame{id: e.To})
			case gray:
				back = append(back, e)
			}
		}
	}

	for _, n := range g.nodes {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}
	return back
}
