package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reftext/pkg/errors"
	"github.com/matzehuels/reftext/pkg/reftext"
)

// previewWidth caps the scalar preview column.
const previewWidth = 48

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse a document interactively",
		Long: `Open a document in a terminal browser. Shared arrays and objects show the
reference path of their canonical location; following one jumps there.`,
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
			m, err := NewInspectModel(v)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// =============================================================================
// InspectModel - Interactive value browser
// =============================================================================

// inspectFrame is one open container.
type inspectFrame struct {
	pieces  []reftext.PathPiece
	value   any
	entries []reftext.Entry
	cursor  int
	offset  int
}

func (f inspectFrame) path() string { return reftext.FormatPath(f.pieces) }

// InspectModel is the bubbletea model for browsing a value.
type InspectModel struct {
	Height int

	frames    []inspectFrame
	canonical map[reftext.Ref]string
}

// NewInspectModel creates a browser rooted at v, which must be an array or
// object.
func NewInspectModel(v any) (InspectModel, error) {
	t, ok := reftext.KindOf(v)
	if !ok || !t.IsReference() {
		return InspectModel{}, errors.New(errors.ErrCodeInvalidInput, "inspect needs an array or object, got %s", t)
	}
	locs, err := reftext.Locations(v)
	if err != nil {
		return InspectModel{}, err
	}
	canonical := make(map[reftext.Ref]string, len(locs))
	for _, loc := range locs {
		if ref, ok := reftext.RefOf(loc.Value); ok {
			canonical[ref] = loc.Path
		}
	}
	return InspectModel{
		Height:    15,
		frames:    []inspectFrame{{value: v, entries: reftext.Entries(v)}},
		canonical: canonical,
	}, nil
}

// Path returns the reference path of the container being shown.
func (m InspectModel) Path() string {
	return m.frames[len(m.frames)-1].path()
}

// Depth returns the number of open containers, counting the root.
func (m InspectModel) Depth() int {
	return len(m.frames)
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		f := &m.frames[len(m.frames)-1]
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if f.cursor > 0 {
				f.cursor--
				if f.cursor < f.offset {
					f.offset = f.cursor
				}
			}
		case "down", "j":
			if f.cursor < len(f.entries)-1 {
				f.cursor++
				if f.cursor >= f.offset+m.Height {
					f.offset = f.cursor - m.Height + 1
				}
			}
		case "enter", "right", "l":
			m = m.open()
		case "backspace", "left", "h":
			if len(m.frames) > 1 {
				m.frames = m.frames[:len(m.frames)-1]
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// open descends into the selected entry when it is a container. Following a
// reference jumps to the container's canonical path.
func (m InspectModel) open() InspectModel {
	f := m.frames[len(m.frames)-1]
	if len(f.entries) == 0 {
		return m
	}
	e := f.entries[f.cursor]
	if t, ok := reftext.KindOf(e.Value); !ok || !t.IsReference() {
		return m
	}

	pieces := m.slotPieces(f, e)
	if target, ok := m.target(e.Value); ok {
		if parsed, err := reftext.ParsePath(target); err == nil {
			pieces = parsed
		}
	}
	// frames must not share backing arrays with their parents
	m.frames = append(m.frames[:len(m.frames):len(m.frames)], inspectFrame{
		pieces:  pieces,
		value:   e.Value,
		entries: reftext.Entries(e.Value),
	})
	return m
}

func (m InspectModel) slotPieces(f inspectFrame, e reftext.Entry) []reftext.PathPiece {
	pieces := make([]reftext.PathPiece, len(f.pieces)+1)
	copy(pieces, f.pieces)
	pieces[len(f.pieces)] = e.Piece
	return pieces
}

// target returns the canonical path of a container.
func (m InspectModel) target(v any) (string, bool) {
	ref, ok := reftext.RefOf(v)
	if !ok {
		return "", false
	}
	p, ok := m.canonical[ref]
	return p, ok
}

func (m InspectModel) View() string {
	var b strings.Builder
	f := m.frames[len(m.frames)-1]

	b.WriteString(StyleTitle.Render(f.path()))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ open  ⌫ back  q quit"))
	b.WriteString("\n\n")

	if len(f.entries) == 0 {
		b.WriteString(StyleDim.Render("  (empty)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(f.offset+m.Height, len(f.entries))
	rows := [][]string{}
	for i := f.offset; i < end; i++ {
		e := f.entries[i]
		cursor := "  "
		if i == f.cursor {
			cursor = "▸ "
		}
		t, _ := reftext.KindOf(e.Value)
		rows = append(rows, []string{cursor, e.Piece.String(), t.String(), m.preview(f, e)})
	}

	t := newTable("", "Key", "Type", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case f.offset+row == f.cursor:
				return StyleTitle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", f.cursor+1, len(f.entries))))
	return b.String()
}

// preview renders one entry's value column: the scalar text, a size for a
// container written here, or the reference path of a container written
// elsewhere.
func (m InspectModel) preview(f inspectFrame, e reftext.Entry) string {
	t, ok := reftext.KindOf(e.Value)
	if !ok {
		return StyleDim.Render("(not representable)")
	}
	if t.IsReference() {
		slot := reftext.FormatPath(m.slotPieces(f, e))
		if target, ok := m.target(e.Value); ok && target != slot {
			return renderRef(target)
		}
		n := len(reftext.Entries(e.Value))
		if t == reftext.TypeArray {
			return "[" + strconv.Itoa(n) + " items]"
		}
		return "{" + strconv.Itoa(n) + " keys}"
	}

	text, _, err := reftext.Serialize(e.Value)
	if err != nil {
		return StyleDim.Render("(" + errors.UserMessage(err) + ")")
	}
	return truncate(text, previewWidth)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
