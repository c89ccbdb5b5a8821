package reftext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/reftext/pkg/errors"
)

// PathPiece is one step of a reference path: an index into an array or a key
// into an object.
type PathPiece struct {
	Type  ValueType // TypeArray or TypeObject
	Index int
	Key   string
}

// IndexPiece returns the path piece for array index i.
func IndexPiece(i int) PathPiece {
	return PathPiece{Type: TypeArray, Index: i}
}

// KeyPiece returns the path piece for object key k.
func KeyPiece(k string) PathPiece {
	return PathPiece{Type: TypeObject, Key: k}
}

// String returns the segment text: ["0"] for an index, {"key"} for a key.
func (p PathPiece) String() string {
	var sb strings.Builder
	writeSegment(&sb, p)
	return sb.String()
}

func writeSegment(sb *strings.Builder, p PathPiece) {
	if p.Type == TypeArray {
		sb.WriteByte(arrayOpen)
		sb.WriteByte(stringDelimiter)
		sb.WriteString(strconv.Itoa(p.Index))
		sb.WriteByte(stringDelimiter)
		sb.WriteByte(arrayClose)
		return
	}
	sb.WriteByte(objectOpen)
	writeQuoted(sb, p.Key, true)
	sb.WriteByte(objectClose)
}

// FormatPath renders a reference path. The empty path, denoting the root
// value, is "//"; otherwise every segment is followed by a '/':
//
//	/["0"]/{"name"}/
func FormatPath(pieces []PathPiece) string {
	if len(pieces) == 0 {
		return rootPath
	}
	var sb strings.Builder
	sb.WriteByte(pathDelimiter)
	for _, p := range pieces {
		writeSegment(&sb, p)
		sb.WriteByte(pathDelimiter)
	}
	return sb.String()
}

// ParsePath parses a complete reference path such as `/["0"]/{"a"}/`.
// The returned error is a *DeserializeError with code MALFORMED.
func ParsePath(text string) ([]PathPiece, error) {
	pieces, end, perr := scanPath(text, 0)
	if perr == nil && end != len(text) {
		perr = &pathError{offset: end, msg: "unexpected text after reference path"}
	}
	if perr != nil {
		return nil, &DeserializeError{
			Err:      errors.New(errors.ErrCodeMalformed, "%s", perr.msg),
			Method:   "ParsePath",
			Location: CharacterLocation{Line: 1, Offset: perr.offset},
		}
	}
	return pieces, nil
}

// pathError is a reference path failure at a byte offset.
type pathError struct {
	offset int
	msg    string
}

// scanPath reads the reference path that starts at text[start]. It returns
// the pieces and the index just past the final '/'.
func scanPath(text string, start int) ([]PathPiece, int, *pathError) {
	if start >= len(text) || text[start] != pathDelimiter {
		return nil, 0, &pathError{offset: start, msg: "reference path must start with '/'"}
	}
	i := start + 1
	if i < len(text) && text[i] == pathDelimiter {
		return []PathPiece{}, i + 1, nil
	}

	pieces := []PathPiece{}
	for {
		piece, next, perr := scanSegment(text, i)
		if perr != nil {
			return nil, 0, perr
		}
		if next >= len(text) || text[next] != pathDelimiter {
			return nil, 0, &pathError{offset: next, msg: "reference path segment must be followed by '/'"}
		}
		pieces = append(pieces, piece)
		i = next + 1
		if i >= len(text) || (text[i] != arrayOpen && text[i] != objectOpen) {
			return pieces, i, nil
		}
	}
}

// scanSegment reads one ["index"] or {"key"} segment at text[i].
func scanSegment(text string, i int) (PathPiece, int, *pathError) {
	if i >= len(text) {
		return PathPiece{}, 0, &pathError{offset: i, msg: "unterminated reference path"}
	}
	var closer byte
	switch text[i] {
	case arrayOpen:
		closer = arrayClose
	case objectOpen:
		closer = objectClose
	default:
		return PathPiece{}, 0, &pathError{offset: i, msg: fmt.Sprintf("reference path segment must start with '[' or '{', found %q", text[i])}
	}

	value, next, errOffset, err := scanQuoted(text, i+1)
	if err != nil {
		return PathPiece{}, 0, &pathError{offset: errOffset, msg: "reference path segment: " + err.Error()}
	}
	if next >= len(text) || text[next] != closer {
		return PathPiece{}, 0, &pathError{offset: next, msg: fmt.Sprintf("reference path segment must end with %q", closer)}
	}

	if closer == objectClose {
		return KeyPiece(value), next + 1, nil
	}
	index, ok := parseIndex(value)
	if !ok {
		return PathPiece{}, 0, &pathError{offset: i, msg: fmt.Sprintf("array segment %q is not a non-negative integer", value)}
	}
	return IndexPiece(index), next + 1, nil
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
