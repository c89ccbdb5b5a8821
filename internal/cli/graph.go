package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reftext/pkg/errors"
	"github.com/matzehuels/reftext/pkg/refgraph"
)

// Graph output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var shared bool

	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Summarize the reference structure of a document",
		Long: `Count the arrays and objects in a document, how many of them are shared,
and how many references close a cycle.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			v, err := decode(cmd.Context(), name, data)
			if err != nil {
				return err
			}
			g, err := refgraph.Build(v)
			if err != nil {
				return err
			}

			s := refgraph.ComputeStats(g)
			fmt.Fprintln(cmd.OutOrStdout(), StyleTitle.Render(name))
			fmt.Fprintln(cmd.OutOrStdout(), statsTable(len(data), s))
			if shared {
				fmt.Fprintln(cmd.OutOrStdout(), sharedTable(g))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&shared, "shared", false, "list shared containers with their in-degree")
	return cmd
}

func statsTable(size int, s refgraph.Stats) string {
	return newTable().
		Rows(
			[]string{"bytes", renderCount(size)},
			[]string{"arrays", renderCount(s.Arrays)},
			[]string{"objects", renderCount(s.Objects)},
			[]string{"links", renderCount(s.Edges)},
			[]string{"shared", renderCount(s.Shared)},
			[]string{"back edges", renderCount(s.BackEdges)},
			[]string{"cyclic", renderCyclic(s.Cyclic())},
		).
		Render()
}

// sharedTable lists containers referenced from more than one slot, by the
// path they are written at.
func sharedTable(g *refgraph.Graph) string {
	var rows [][]string
	for _, n := range g.Nodes() {
		if n.InDegree > 1 {
			rows = append(rows, []string{n.ID, renderKind(n.Type), renderInDegree(n.InDegree)})
		}
	}
	if len(rows) == 0 {
		return StyleDim.Render("  no shared containers")
	}
	return newTable("Path", "Type", "Refs").Rows(rows...).Render()
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph [file]",
		Short: "Draw the reference graph of a document",
		Long: `Write the reference graph of a document as Graphviz DOT or SVG.

Each array or object is a node labelled with its reference path. Shared
nodes are shaded and edges that close a cycle are dashed. SVG is rendered
in-process; no Graphviz install is needed.`,
		Example: `  reftext graph doc.rt | dot -Tpng > graph.png
  reftext graph --format svg doc.rt -o graph.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatDOT && format != formatSVG {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot or svg)", format)
			}

			name, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			v, err := decode(cmd.Context(), name, data)
			if err != nil {
				return err
			}
			g, err := refgraph.Build(v)
			if err != nil {
				return err
			}

			dot := refgraph.ToDOT(g, refgraph.Options{Detailed: detailed})
			if format == formatDOT {
				return writeOutput(cmd, output, []byte(dot))
			}

			prog := newProgress(loggerFromContext(cmd.Context()))
			var svg []byte
			err = spin(cmd.Context(), cmd.ErrOrStderr(),
				fmt.Sprintf("Rendering %d nodes, %d links...", g.NodeCount(), g.EdgeCount()),
				"Rendering failed",
				func() error {
					var err error
					svg, err = refgraph.RenderSVG(dot)
					return err
				})
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "render %s", name)
			}
			prog.done(fmt.Sprintf("Rendered %d nodes", g.NodeCount()))
			return writeOutput(cmd, output, svg)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with type, size and in-degree")
	return cmd
}
