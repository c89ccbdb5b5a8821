package reftext

import (
	"fmt"
	"time"

	"github.com/matzehuels/reftext/pkg/errors"
)

// Deserialize parses text into a value. Arrays become *Array and objects
// become *Object; numbers are float64, bigints *big.Int, and dates UTC
// time.Time with millisecond precision. Reference paths are resolved to the
// very container they point at, so shared and cyclic structure is restored.
//
// Every failure is a *DeserializeError.
func Deserialize(text string) (any, error) {
	root, err := newLexer(text).lex()
	if err != nil {
		return nil, err
	}
	value, refs := materialize(root)
	if err := resolve(value, refs); err != nil {
		return nil, err
	}
	return value, nil
}

// placeholder stands in for a reference path until every container exists.
type placeholder struct {
	pieces   []PathPiece
	location CharacterLocation
	// superseded is set when a later duplicate member replaced the slot.
	superseded bool
}

// pendingReference is a placeholder and the container slot holding it.
type pendingReference struct {
	container any
	slot      PathPiece
	target    *placeholder
}

// materialize builds the output tree from the lexed tree. Reference paths
// become placeholders; their slots are collected in depth-first order with
// children taken in member order.
func materialize(root *typeValue) (any, []pendingReference) {
	if !root.valueType.IsReference() {
		return scalarValue(root), nil
	}

	type frame struct {
		node   *typeValue
		target any
	}

	var refs []pendingReference
	value := newContainer(root)
	stack := []frame{{node: root, target: value}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var children []frame
		store := func(piece PathPiece, child *typeValue) any {
			switch {
			case child.valueType.IsReference():
				c := newContainer(child)
				children = append(children, frame{node: child, target: c})
				return c
			case child.valueType == TypeReferencePath:
				ph := &placeholder{pieces: child.value.([]PathPiece), location: child.location}
				refs = append(refs, pendingReference{container: f.target, slot: piece, target: ph})
				return ph
			}
			return scalarValue(child)
		}

		switch f.node.valueType {
		case TypeArray:
			arr := f.target.(*Array)
			arr.elems = make([]any, len(f.node.elems))
			for i, child := range f.node.elems {
				arr.elems[i] = store(IndexPiece(i), child)
			}
		case TypeObject:
			obj := f.target.(*Object)
			for _, m := range f.node.members {
				if prev, ok := obj.values[m.name].(*placeholder); ok {
					prev.superseded = true
				}
				obj.Set(m.name, store(KeyPiece(m.name), m.value))
			}
		}

		// reverse push keeps the first child on top
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return value, refs
}

func newContainer(tv *typeValue) any {
	if tv.valueType == TypeArray {
		return &Array{}
	}
	return NewObject()
}

func scalarValue(tv *typeValue) any {
	switch tv.valueType {
	case TypeNull:
		return nil
	case TypeUndefined:
		return Undefined
	case TypeDate:
		return tv.value.(time.Time)
	}
	return tv.value
}

// resolve replaces every placeholder with the container its path names.
// All targets are looked up before any slot is patched, so a path is always
// walked through the tree exactly as it was written.
func resolve(root any, refs []pendingReference) error {
	targets := make([]any, len(refs))
	for i, ref := range refs {
		if ref.target.superseded {
			continue
		}
		target, err := walkPath(root, ref.target.pieces)
		if err != nil {
			return resolveError(ref.target, "%v", err)
		}
		if t, _ := classify(target); !t.IsReference() {
			return resolveError(ref.target, "reference path %s points at a %s, not an array or object",
				FormatPath(ref.target.pieces), t)
		}
		targets[i] = target
	}

	for i, ref := range refs {
		if ref.target.superseded {
			continue
		}
		switch c := ref.container.(type) {
		case *Array:
			c.Set(ref.slot.Index, targets[i])
		case *Object:
			c.Set(ref.slot.Key, targets[i])
		default:
			return resolveBug(ref.target, "slot %s has a %T parent", ref.slot, ref.container)
		}
	}
	return nil
}

// walkPath follows pieces from root. Walking into or through an unresolved
// reference is an error.
func walkPath(root any, pieces []PathPiece) (any, error) {
	cur := root
	for i, p := range pieces {
		switch c := cur.(type) {
		case *Array:
			if p.Type != TypeArray {
				return nil, fmt.Errorf("reference path %s: segment %d is a key but the value is an array",
					FormatPath(pieces), i)
			}
			if p.Index >= c.Len() {
				return nil, fmt.Errorf("reference path %s: index %d out of range for array of length %d",
					FormatPath(pieces), p.Index, c.Len())
			}
			cur = c.At(p.Index)
		case *Object:
			if p.Type != TypeObject {
				return nil, fmt.Errorf("reference path %s: segment %d is an index but the value is an object",
					FormatPath(pieces), i)
			}
			v, ok := c.Get(p.Key)
			if !ok {
				return nil, fmt.Errorf("reference path %s: no member %s", FormatPath(pieces), quote(p.Key))
			}
			cur = v
		case *placeholder:
			return nil, fmt.Errorf("reference path %s passes through reference path %s",
				FormatPath(pieces), FormatPath(c.pieces))
		default:
			t, _ := classify(cur)
			return nil, fmt.Errorf("reference path %s: segment %d steps into a %s",
				FormatPath(pieces), i, t)
		}
	}
	if ph, ok := cur.(*placeholder); ok {
		return nil, fmt.Errorf("reference path %s points at reference path %s",
			FormatPath(pieces), FormatPath(ph.pieces))
	}
	return cur, nil
}

func resolveError(ph *placeholder, format string, args ...any) *DeserializeError {
	return &DeserializeError{
		Err:      errors.New(errors.ErrCodeMalformed, format, args...),
		Method:   "resolve",
		Location: ph.location,
	}
}

func resolveBug(ph *placeholder, format string, args ...any) *DeserializeError {
	return &DeserializeError{
		Err:      errors.New(errors.ErrCodeBug, format, args...),
		Method:   "resolve",
		Location: ph.location,
	}
}
