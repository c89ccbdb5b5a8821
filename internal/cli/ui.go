package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/reftext/pkg/reftext"
)

// Palette. Reference paths and shared containers get their own colors so
// stats, graph and inspect read the same way.
var (
	colorCyan   = lipgloss.Color("36")  // containers, counts
	colorGreen  = lipgloss.Color("35")  // valid, acyclic
	colorYellow = lipgloss.Color("220") // cycles, shared
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // reference paths
	colorWhite  = lipgloss.Color("255") // scalar values
	colorGray   = lipgloss.Color("245") // headers, kinds
	colorDim    = lipgloss.Color("240") // borders, hints
)

var (
	// StyleTitle renders document names and the inspector path.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim renders hints and secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleRef     = lipgloss.NewStyle().Foreground(colorBlue)
	styleCount   = lipgloss.NewStyle().Foreground(colorCyan)
	styleShared  = lipgloss.NewStyle().Foreground(colorYellow)
	styleScalar  = lipgloss.NewStyle().Foreground(colorWhite)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// renderKind colors a value kind: containers stand out from scalars, and
// null and undefined fade.
func renderKind(t reftext.ValueType) string {
	switch {
	case t.IsReference():
		return styleCount.Render(t.String())
	case t == reftext.TypeNull || t == reftext.TypeUndefined:
		return StyleDim.Render(t.String())
	default:
		return lipgloss.NewStyle().Foreground(colorGray).Render(t.String())
	}
}

// renderRef renders a reference to the container first written at path.
func renderRef(path string) string {
	return styleRef.Render("→ " + path)
}

func renderCount(n int) string {
	return styleCount.Render(strconv.Itoa(n))
}

// renderInDegree highlights containers referenced from more than one slot.
func renderInDegree(n int) string {
	if n > 1 {
		return styleShared.Render(strconv.Itoa(n))
	}
	return strconv.Itoa(n)
}

func renderCyclic(cyclic bool) string {
	if cyclic {
		return styleShared.Render("yes")
	}
	return lipgloss.NewStyle().Foreground(colorGreen).Render("no")
}

// newTable returns the rounded table used by stats and inspect. The header
// row, if any, is styled; other cells are padded.
func newTable(headers ...string) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	if len(headers) > 0 {
		t = t.Headers(headers...)
	}
	return t
}

// =============================================================================
// Status Output
// =============================================================================

// Status lines go to stderr so stdout carries only documents.
type status struct {
	icon  string
	style lipgloss.Style
}

var (
	statusOK   = status{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	statusFail = status{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	statusInfo = status{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func (s status) print(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, s.style.Render(s.icon)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(w io.Writer, format string, args ...any) { statusOK.print(w, format, args...) }

func printError(w io.Writer, format string, args ...any) { statusFail.print(w, format, args...) }

func printInfo(w io.Writer, format string, args ...any) { statusInfo.print(w, format, args...) }

// printDetail prints an indented secondary line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written output file.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render("→")+" "+styleScalar.Render(path))
}
