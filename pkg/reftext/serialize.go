package reftext

import (
	"math/big"
	"slices"
	"strings"

	"github.com/matzehuels/reftext/pkg/errors"
)

// EncodeOptions configures serialization.
type EncodeOptions struct {
	// Indent, when non-empty, puts every array element and object member on
	// its own line, indented once per nesting level. Reference paths are the
	// same either way.
	Indent string
}

// Serialize converts v to text. The second result is false, with no text and
// no error, when v itself is a value the format skips (a function, channel or
// similar). Shared and cyclic arrays and objects are written in full once, at
// the location a depth-first walk reaches first, and as reference paths
// everywhere else.
//
// Every failure is a *SerializeError.
func Serialize(v any) (string, bool, error) {
	return SerializeWithOptions(v, EncodeOptions{})
}

// SerializeWithOptions is like [Serialize] with explicit options.
func SerializeWithOptions(v any, opts EncodeOptions) (string, bool, error) {
	switch _, class := classify(v); class {
	case classNonRepresentable:
		return "", false, nil
	case classUnsupported:
		return "", false, serializeError(errors.ErrCodeUnsupported, rootPath, "unsupported Go type %T", v)
	}

	s := newSerializer(opts)
	if err := s.buildReferencePaths(v); err != nil {
		return "", false, err
	}
	if err := s.emit(v); err != nil {
		return "", false, err
	}
	return s.sb.String(), true, nil
}

// Location is the canonical location of one array or object: the path at
// which serialization writes it in full.
type Location struct {
	Path  string
	Type  ValueType
	Value any
}

// Locations returns the canonical location of every array and object
// reachable from v, in the order serialization first reaches them.
func Locations(v any) ([]Location, error) {
	if _, class := classify(v); class == classUnsupported {
		return nil, serializeError(errors.ErrCodeUnsupported, rootPath, "unsupported Go type %T", v)
	}
	s := newSerializer(EncodeOptions{})
	if err := s.buildReferencePaths(v); err != nil {
		return nil, err
	}
	out := make([]Location, len(s.order))
	for i, loc := range s.order {
		out[i] = Location{Path: loc.location.String(), Type: loc.valueType, Value: loc.value}
	}
	return out, nil
}

// pathNode is one step of a path, linked to its parent. Paths are only
// formatted when a reference or an error needs the text.
type pathNode struct {
	parent *pathNode
	piece  PathPiece
	text   string
}

// String formats the path from the root down to n.
func (n *pathNode) String() string {
	if n.text != "" {
		return n.text
	}
	var pieces []PathPiece
	for cur := n; cur.parent != nil; cur = cur.parent {
		pieces = append(pieces, cur.piece)
	}
	slices.Reverse(pieces)
	n.text = FormatPath(pieces)
	return n.text
}

// child returns the path of the value reached through piece, or n itself
// for the root when piece is nil.
func (n *pathNode) child(piece *PathPiece) *pathNode {
	if piece == nil {
		return n
	}
	return &pathNode{parent: n, piece: *piece}
}

// referenceLocation is where a container is first reached. visited is set
// once the container has been written in full.
type referenceLocation struct {
	location  *pathNode
	visited   bool
	value     any
	valueType ValueType
}

// at reports whether the location is the slot piece of the container
// written at parent. A nil piece denotes the root.
func (l *referenceLocation) at(parent *pathNode, piece *PathPiece) bool {
	if piece == nil {
		return l.location.parent == nil
	}
	return l.location.parent == parent && l.location.piece == *piece
}

type serializer struct {
	opts      EncodeOptions
	locations map[identity]*referenceLocation
	order     []*referenceLocation
	sb        strings.Builder
}

func newSerializer(opts EncodeOptions) *serializer {
	return &serializer{opts: opts, locations: make(map[identity]*referenceLocation)}
}

// buildReferencePaths walks the graph depth first with an explicit stack and
// records the first location of every container. Children are pushed in
// reverse so they pop in the same order emit writes them. Dates and Go types
// are validated on the way, so emit never fails halfway through the text.
func (s *serializer) buildReferencePaths(root any) error {
	t, _ := classify(root)
	if t == TypeDate {
		if _, ok := dateValue(root); !ok {
			return serializeError(errors.ErrCodeInvalidDate, rootPath, "invalid date")
		}
	}
	if !t.IsReference() {
		return nil
	}

	type item struct {
		path  *pathNode
		value any
	}
	stack := []item{{path: &pathNode{}, value: root}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if id, ok := identityOf(it.value); ok {
			if _, seen := s.locations[id]; seen {
				continue
			}
			vt, _ := classify(it.value)
			loc := &referenceLocation{location: it.path, value: it.value, valueType: vt}
			s.locations[id] = loc
			s.order = append(s.order, loc)
		}

		entries := Entries(it.value)
		children := make([]item, 0, len(entries))
		for _, e := range entries {
			ct, class := classify(e.Value)
			switch {
			case class == classUnsupported:
				return serializeError(errors.ErrCodeUnsupported, it.path.child(&e.Piece).String(),
					"unsupported Go type %T", e.Value)
			case class == classNonRepresentable:
				continue
			case ct == TypeDate:
				if _, ok := dateValue(e.Value); !ok {
					return serializeError(errors.ErrCodeInvalidDate, it.path.child(&e.Piece).String(), "invalid date")
				}
			case ct.IsReference():
				if id, ok := identityOf(e.Value); ok {
					if _, seen := s.locations[id]; seen {
						continue
					}
				}
				children = append(children, item{path: it.path.child(&e.Piece), value: e.Value})
			}
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

// emitFrame is an open container during emission.
type emitFrame struct {
	path    *pathNode
	entries []Entry
	next    int
	written int
	object  bool
}

// emit writes v using the locations recorded by buildReferencePaths. Open
// containers live on an explicit stack, so nesting depth is bounded only by
// memory.
func (s *serializer) emit(root any) error {
	var stack []*emitFrame
	f, err := s.writeValue(root, &pathNode{}, nil)
	if err != nil {
		return err
	}
	if f != nil {
		stack = append(stack, f)
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.object {
			// members the format cannot carry are left out of objects
			for f.next < len(f.entries) {
				if _, class := classify(f.entries[f.next].Value); class != classNonRepresentable {
					break
				}
				f.next++
			}
		}

		if f.next >= len(f.entries) {
			if f.written > 0 {
				s.newline(len(stack) - 1)
			}
			if f.object {
				s.sb.WriteByte(objectClose)
			} else {
				s.sb.WriteByte(arrayClose)
			}
			stack = stack[:len(stack)-1]
			continue
		}

		e := f.entries[f.next]
		f.next++
		if f.written > 0 {
			s.sb.WriteByte(valueSeparator)
		}
		f.written++
		s.newline(len(stack))
		if f.object {
			s.sb.WriteString(quote(e.Piece.Key))
			s.sb.WriteByte(nameSeparator)
			if s.opts.Indent != "" {
				s.sb.WriteByte(' ')
			}
		}

		piece := e.Piece
		child, err := s.writeValue(e.Value, f.path, &piece)
		if err != nil {
			return err
		}
		if child != nil {
			stack = append(stack, child)
		}
	}
	return nil
}

func (s *serializer) newline(depth int) {
	if s.opts.Indent == "" {
		return
	}
	s.sb.WriteByte('\n')
	for range depth {
		s.sb.WriteString(s.opts.Indent)
	}
}

// writeValue writes a scalar or reference path, or the opening bracket of a
// container written in full. In the last case it returns the frame that
// emits the container's children. piece is nil for the root.
func (s *serializer) writeValue(v any, parent *pathNode, piece *PathPiece) (*emitFrame, error) {
	path := func() string { return parent.child(piece).String() }

	t, class := classify(v)
	switch class {
	case classNonRepresentable:
		// only array elements get here; they hold their position
		s.sb.WriteString(keywordUndefined)
		return nil, nil
	case classUnsupported:
		return nil, serializeError(errors.ErrCodeUnsupported, path(), "unsupported Go type %T", v)
	}

	switch t {
	case TypeNull:
		s.sb.WriteString(keywordNull)
	case TypeUndefined:
		s.sb.WriteString(keywordUndefined)
	case TypeBoolean:
		if v.(bool) {
			s.sb.WriteString(keywordTrue)
		} else {
			s.sb.WriteString(keywordFalse)
		}
	case TypeNumber:
		s.sb.WriteString(formatNumber(toFloat(v)))
	case TypeBigInt:
		s.sb.WriteByte(bigIntDelimiter)
		s.sb.WriteString(bigIntOf(v).String())
		s.sb.WriteByte(bigIntDelimiter)
	case TypeString:
		s.sb.WriteString(quote(v.(string)))
	case TypeDate:
		tm, ok := dateValue(v)
		if !ok {
			return nil, serializeError(errors.ErrCodeInvalidDate, path(), "invalid date")
		}
		s.sb.WriteByte(dateDelimiter)
		s.sb.WriteString(quote(formatISO(tm)))
		s.sb.WriteByte(dateDelimiter)
	case TypeArray, TypeObject:
		return s.writeContainer(v, t, parent, piece)
	default:
		return nil, serializeError(errors.ErrCodeBug, path(), "no encoding for %s", t)
	}
	return nil, nil
}

// writeContainer writes the container in full when this slot is its recorded
// location and a reference path to that location otherwise.
func (s *serializer) writeContainer(v any, t ValueType, parent *pathNode, piece *PathPiece) (*emitFrame, error) {
	path := parent.child(piece)
	if id, ok := identityOf(v); ok {
		loc := s.locations[id]
		if loc == nil {
			return nil, serializeError(errors.ErrCodeBug, path.String(), "%s has no recorded location", t)
		}
		if !loc.at(parent, piece) {
			if !loc.visited {
				return nil, serializeError(errors.ErrCodeBug, path.String(),
					"reference to %s written before the %s itself", loc.location, t)
			}
			s.sb.WriteString(loc.location.String())
			return nil, nil
		}
		if loc.visited {
			return nil, serializeError(errors.ErrCodeBug, path.String(), "%s written in full twice", t)
		}
		loc.visited = true
		path = loc.location
	}

	if t == TypeObject {
		s.sb.WriteByte(objectOpen)
	} else {
		s.sb.WriteByte(arrayOpen)
	}
	return &emitFrame{path: path, entries: Entries(v), object: t == TypeObject}, nil
}

func bigIntOf(v any) *big.Int {
	switch x := v.(type) {
	case *big.Int:
		return x
	case big.Int:
		return &x
	}
	return nil
}
