// Package refgraph analyzes the sharing structure of reftext values.
//
// A value's reference graph has one node per distinct array or object and
// one edge per container-to-container link. Node IDs are the reference
// paths the serializer would write for each container, so a graph can be
// read side by side with the serialized text:
//
//	g, err := refgraph.Build(v)
//	stats := refgraph.ComputeStats(g)
//	fmt.Println(stats.Shared, stats.BackEdges)
//
// # Cycles
//
// [BackEdges] runs a white/gray/black depth-first search from the root. An
// edge into a gray node closes a cycle. The search keeps its own stack, so
// deeply nested values do not grow the goroutine stack.
//
// # Rendering
//
// [ToDOT] produces Graphviz DOT with shared nodes highlighted and back edges
// dashed. [RenderSVG] renders DOT in-process with
// [github.com/goccy/go-graphviz], which needs no system Graphviz install.
package refgraph
