package reftext

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"

	"github.com/matzehuels/reftext/pkg/errors"
)

// maxJSONDepth bounds the nesting ToJSON follows before giving up.
const maxJSONDepth = 10000

// FromJSON converts JSON text to a value. Objects become *Object with members
// in document order, arrays become *Array and numbers float64.
func FromJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	type frame struct {
		container any
		key       string
		hasKey    bool
	}
	var (
		stack []*frame
		root  any
		done  bool
	)

	attach := func(v any) {
		if len(stack) == 0 {
			root, done = v, true
			return
		}
		top := stack[len(stack)-1]
		switch c := top.container.(type) {
		case *Array:
			c.Append(v)
		case *Object:
			c.Set(top.key, v)
			top.hasKey = false
		}
	}

	for !done {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid JSON")
		}

		if len(stack) > 0 {
			top := stack[len(stack)-1]
			if _, isObj := top.container.(*Object); isObj && !top.hasKey {
				if key, ok := tok.(string); ok {
					top.key, top.hasKey = key, true
					continue
				}
			}
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '[':
				stack = append(stack, &frame{container: &Array{}})
			case '{':
				stack = append(stack, &frame{container: NewObject()})
			case ']', '}':
				c := stack[len(stack)-1].container
				stack = stack[:len(stack)-1]
				attach(c)
			}
		default:
			attach(t)
		}
	}

	if _, err := dec.Token(); !stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid JSON: unexpected data after the top-level value")
	}
	return root, nil
}

// ToJSON converts v to JSON text. Undefined and values the format skips are
// dropped from objects and written as null in arrays; non-finite numbers are
// null; bigints and dates become strings. Shared containers are written out
// at every place they occur, as JSON.stringify would, and a cycle is an
// UNSUPPORTED error.
// A non-empty indent pretty-prints the result.
func ToJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	w := &jsonWriter{buf: &buf, active: make(map[identity]bool)}
	if err := w.write(v, &pathNode{}, 0); err != nil {
		return nil, err
	}
	if indent == "" {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", indent); err != nil {
		return nil, serializeError(errors.ErrCodeBug, rootPath, "indent JSON: %v", err)
	}
	return out.Bytes(), nil
}

type jsonWriter struct {
	buf    *bytes.Buffer
	active map[identity]bool
}

func (w *jsonWriter) write(v any, path *pathNode, depth int) error {
	if depth > maxJSONDepth {
		return serializeError(errors.ErrCodeUnsupported, path.String(), "nesting deeper than %d", maxJSONDepth)
	}

	t, class := classify(v)
	switch class {
	case classNonRepresentable:
		w.buf.WriteString(keywordNull)
		return nil
	case classUnsupported:
		return serializeError(errors.ErrCodeUnsupported, path.String(), "unsupported Go type %T", v)
	}

	switch t {
	case TypeNull, TypeUndefined:
		w.buf.WriteString(keywordNull)
	case TypeBoolean:
		fmt.Fprint(w.buf, v.(bool))
	case TypeNumber:
		f := toFloat(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			w.buf.WriteString(keywordNull)
		} else {
			w.buf.WriteString(formatNumber(f))
		}
	case TypeBigInt:
		w.buf.WriteString(quote(bigIntOf(v).String()))
	case TypeString:
		w.buf.WriteString(quote(v.(string)))
	case TypeDate:
		tm, ok := dateValue(v)
		if !ok {
			return serializeError(errors.ErrCodeInvalidDate, path.String(), "invalid date")
		}
		w.buf.WriteString(quote(formatISO(tm)))
	case TypeArray, TypeObject:
		return w.writeContainer(v, t, path, depth)
	}
	return nil
}

func (w *jsonWriter) writeContainer(v any, t ValueType, path *pathNode, depth int) error {
	id, hasID := identityOf(v)
	if hasID {
		if w.active[id] {
			return serializeError(errors.ErrCodeUnsupported, path.String(), "cycle cannot be written as JSON")
		}
		w.active[id] = true
		defer delete(w.active, id)
	}

	if t == TypeArray {
		w.buf.WriteByte(arrayOpen)
		for i, e := range Entries(v) {
			if i > 0 {
				w.buf.WriteByte(valueSeparator)
			}
			if err := w.write(e.Value, path.child(&e.Piece), depth+1); err != nil {
				return err
			}
		}
		w.buf.WriteByte(arrayClose)
		return nil
	}

	w.buf.WriteByte(objectOpen)
	n := 0
	for _, e := range Entries(v) {
		if et, class := classify(e.Value); class == classNonRepresentable || (class == classRepresentable && et == TypeUndefined) {
			continue
		}
		if n > 0 {
			w.buf.WriteByte(valueSeparator)
		}
		n++
		w.buf.WriteString(quote(e.Piece.Key))
		w.buf.WriteByte(nameSeparator)
		if err := w.write(e.Value, path.child(&e.Piece), depth+1); err != nil {
			return err
		}
	}
	w.buf.WriteByte(objectClose)
	return nil
}
