package reftext

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/matzehuels/reftext/pkg/errors"
)

// typeValue is one node of the tree built while lexing. Containers link to
// their enclosing container through parent, so the lexer climbs back up
// without using the call stack.
type typeValue struct {
	valueType ValueType
	value     any          // scalar payload; []PathPiece for reference paths
	elems     []*typeValue // TypeArray
	members   []*member    // TypeObject
	parent    *typeValue
	state     containerState
	location  CharacterLocation
}

// member is a named slot of an object; value stays nil until the value token
// following "name": has been lexed.
type member struct {
	name  string
	value *typeValue
}

// containerState tracks where an open container is in its grammar.
type containerState int

const (
	// stateOpened: nothing appended yet.
	stateOpened containerState = iota
	// stateAwaitValue: after ',' in an array, after "name": in an object.
	stateAwaitValue
	// stateHasValue: a value was appended; ',' or the closing bracket follows.
	stateHasValue
)

// lexer turns text into a typeValue tree in a single left-to-right scan.
type lexer struct {
	text  string
	index int

	line  int
	space int
	tab   int

	// cursor is the innermost open container, nil at top level.
	cursor *typeValue
	result *typeValue
}

func newLexer(text string) *lexer {
	return &lexer{text: text, line: 1}
}

// lex scans the whole input and returns the root of the tree.
func (l *lexer) lex() (*typeValue, error) {
	for {
		l.skipWhitespace()
		if l.index >= len(l.text) {
			if l.cursor != nil {
				return nil, l.malformed("lex", "unexpected end of input: unclosed %s", l.cursor.valueType)
			}
			return nil, l.malformed("lex", "empty input")
		}

		switch c := l.text[l.index]; c {
		case arrayOpen, objectOpen:
			if err := l.open(c); err != nil {
				return nil, err
			}
		case arrayClose, objectClose:
			done, err := l.close(c)
			if err != nil {
				return nil, err
			}
			if done {
				return l.result, l.finish()
			}
		case valueSeparator:
			if err := l.separator(); err != nil {
				return nil, err
			}
		case nameSeparator:
			return nil, l.malformed("lex", "unexpected %q", c)
		default:
			tv, err := l.lexValue()
			if err != nil {
				return nil, err
			}
			if l.cursor == nil {
				if tv.valueType == TypeReferencePath {
					return nil, l.malformedAt("lex", tv.location, "a reference path cannot be the entire document")
				}
				l.result = tv
				return l.result, l.finish()
			}
			if err := l.appendValue(tv); err != nil {
				return nil, err
			}
		}
	}
}

// finish rejects anything but whitespace after the complete root value.
func (l *lexer) finish() error {
	l.skipWhitespace()
	if l.index < len(l.text) {
		return l.malformed("finish", "unexpected %q after the end of the value", l.text[l.index])
	}
	return nil
}

func (l *lexer) skipWhitespace() {
	for l.index < len(l.text) {
		switch l.text[l.index] {
		case ' ':
			l.space++
		case '\t':
			l.tab++
		case '\n':
			if l.index == 0 || l.text[l.index-1] != '\r' {
				l.line++
			}
			l.space, l.tab = 0, 0
		case '\r':
			l.line++
			l.space, l.tab = 0, 0
		default:
			return
		}
		l.index++
	}
}

// open pushes a new container whose parent is the current cursor.
func (l *lexer) open(c byte) error {
	if l.cursor != nil {
		if err := l.checkAcceptsValue("open"); err != nil {
			return err
		}
	}
	node := &typeValue{valueType: TypeArray, parent: l.cursor, location: l.location()}
	if c == objectOpen {
		node.valueType = TypeObject
	}
	l.cursor = node
	l.index++
	if node.valueType == TypeObject {
		return l.lexMemberName(false)
	}
	return nil
}

// close completes the current container. It reports true when the container
// was the root, which ends the scan.
func (l *lexer) close(c byte) (bool, error) {
	node := l.cursor
	if node == nil {
		return false, l.malformed("close", "unexpected %q outside of any array or object", c)
	}
	if (c == arrayClose) != (node.valueType == TypeArray) {
		return false, l.malformed("close", "unexpected %q while inside %s opened at %s", c, node.valueType, node.location)
	}
	if node.state == stateAwaitValue {
		return false, l.malformed("close", "expected a value before %q", c)
	}
	l.index++

	if node.parent == nil {
		l.cursor = nil
		l.result = node
		return true, nil
	}
	l.cursor = node.parent
	return false, l.attach(node)
}

// separator handles ',' inside the current container.
func (l *lexer) separator() error {
	if l.cursor == nil {
		return l.malformed("separator", "unexpected %q outside of any array or object", valueSeparator)
	}
	if l.cursor.state != stateHasValue {
		return l.malformed("separator", "unexpected %q: expected a value", valueSeparator)
	}
	l.index++
	if l.cursor.valueType == TypeObject {
		return l.lexMemberName(true)
	}
	l.cursor.state = stateAwaitValue
	return nil
}

// lexMemberName reads `"name" :` for the current object. Unless required, a
// closing brace in place of the name ends an empty object. The empty name
// "" is a valid key: Serialize emits it for objects that carry one.
func (l *lexer) lexMemberName(required bool) error {
	l.skipWhitespace()
	if l.index >= len(l.text) {
		return l.malformed("lexMemberName", "unexpected end of input: expected an object member name")
	}
	if !required && l.text[l.index] == objectClose {
		return nil
	}
	if l.text[l.index] != stringDelimiter {
		return l.malformed("lexMemberName", "object member name must be a quoted string, found %q", l.text[l.index])
	}
	name, end, errOffset, err := scanQuoted(l.text, l.index)
	if err != nil {
		return l.malformedAtOffset("lexMemberName", errOffset, "object member name: %v", err)
	}
	l.index = end

	l.skipWhitespace()
	if l.index >= len(l.text) || l.text[l.index] != nameSeparator {
		return l.malformed("lexMemberName", "expected %q after object member name %s", nameSeparator, quote(name))
	}
	l.index++

	l.cursor.members = append(l.cursor.members, &member{name: name})
	l.cursor.state = stateAwaitValue
	return nil
}

func (l *lexer) checkAcceptsValue(method string) error {
	switch l.cursor.valueType {
	case TypeArray:
		if l.cursor.state == stateHasValue {
			return l.malformed(method, "expected %q or %q before the next value", valueSeparator, arrayClose)
		}
	case TypeObject:
		if l.cursor.state != stateAwaitValue {
			return l.malformed(method, "expected %q or %q before the next member", valueSeparator, objectClose)
		}
	default:
		return l.bug(method, "cursor is a %s, not a container", l.cursor.valueType)
	}
	return nil
}

func (l *lexer) appendValue(tv *typeValue) error {
	if err := l.checkAcceptsValue("appendValue"); err != nil {
		return err
	}
	return l.attach(tv)
}

// attach stores a completed value in the cursor container: pushed onto an
// array, or assigned to the most recently named member of an object.
func (l *lexer) attach(tv *typeValue) error {
	switch l.cursor.valueType {
	case TypeArray:
		l.cursor.elems = append(l.cursor.elems, tv)
	case TypeObject:
		if len(l.cursor.members) == 0 {
			return l.bug("attach", "object has no member awaiting a value")
		}
		last := l.cursor.members[len(l.cursor.members)-1]
		if last.value != nil {
			return l.bug("attach", "member %s already has a value", quote(last.name))
		}
		last.value = tv
	default:
		return l.bug("attach", "cursor is a %s, not a container", l.cursor.valueType)
	}
	l.cursor.state = stateHasValue
	return nil
}

// lexValue reads one scalar or reference path token at the current index.
func (l *lexer) lexValue() (*typeValue, error) {
	loc := l.location()
	var (
		tv  *typeValue
		err error
	)
	switch c := l.text[l.index]; {
	case c == stringDelimiter:
		tv, err = l.lexString()
	case c == dateDelimiter:
		tv, err = l.lexDate()
	case c == pathDelimiter:
		tv, err = l.lexReferencePath()
	case c == bigIntDelimiter && !strings.HasPrefix(l.text[l.index:], keywordNull):
		tv, err = l.lexBigInt()
	case c == '-' && strings.HasPrefix(l.text[l.index:], keywordNegInfinity):
		tv, err = l.lexKeyword()
	case c == '-' || c == '+' || isDigit(c):
		tv, err = l.lexNumber()
	default:
		tv, err = l.lexKeyword()
	}
	if err != nil {
		return nil, err
	}
	if l.index < len(l.text) && !isTokenBoundary(l.text[l.index]) {
		return nil, l.malformed("lexValue", "unexpected %q after %s", l.text[l.index], tv.valueType)
	}
	tv.location = loc
	return tv, nil
}

func (l *lexer) lexString() (*typeValue, error) {
	s, end, errOffset, err := scanQuoted(l.text, l.index)
	if err != nil {
		return nil, l.malformedAtOffset("lexString", errOffset, "string: %v", err)
	}
	l.index = end
	return &typeValue{valueType: TypeString, value: s}, nil
}

// lexDate reads @"<ISO-8601 instant>"@.
func (l *lexer) lexDate() (*typeValue, error) {
	start := l.index
	l.index++
	if l.index >= len(l.text) || l.text[l.index] != stringDelimiter {
		return nil, l.malformed("lexDate", "date content must be a quoted string")
	}
	s, end, errOffset, err := scanQuoted(l.text, l.index)
	if err != nil {
		return nil, l.malformedAtOffset("lexDate", errOffset, "date: %v", err)
	}
	if end >= len(l.text) || l.text[end] != dateDelimiter {
		l.index = end
		return nil, l.malformed("lexDate", "date starting at offset %d is missing its closing %q", start, dateDelimiter)
	}
	t, err := parseISO(s)
	if err != nil {
		return nil, l.malformed("lexDate", "date: %v", err)
	}
	l.index = end + 1
	return &typeValue{valueType: TypeDate, value: t}, nil
}

// lexBigInt reads n<integer>n.
func (l *lexer) lexBigInt() (*typeValue, error) {
	start := l.index
	i := start + 1
	if i < len(l.text) && l.text[i] == '-' {
		i++
	}
	digits := i
	for i < len(l.text) && isDigit(l.text[i]) {
		i++
	}
	if i == digits {
		return nil, l.malformed("lexBigInt", "bigint must contain at least one digit")
	}
	if i >= len(l.text) || l.text[i] != bigIntDelimiter {
		l.index = i
		return nil, l.malformed("lexBigInt", "bigint starting at offset %d is missing its closing %q", start, bigIntDelimiter)
	}
	n, ok := new(big.Int).SetString(l.text[start+1:i], 10)
	if !ok {
		return nil, l.bug("lexBigInt", "digits %q rejected by big.Int", l.text[start+1:i])
	}
	l.index = i + 1
	return &typeValue{valueType: TypeBigInt, value: n}, nil
}

func (l *lexer) lexNumber() (*typeValue, error) {
	n := scanNumber(l.text[l.index:])
	if n == 0 {
		return nil, l.malformed("lexNumber", "invalid number")
	}
	lit := l.text[l.index : l.index+n]
	f, err := parseNumber(lit)
	if err != nil {
		return nil, l.malformed("lexNumber", "invalid number %q: %v", lit, err)
	}
	l.index += n
	return &typeValue{valueType: TypeNumber, value: f}, nil
}

// lexKeyword matches a keyword within a lookahead window of the longest
// keyword's length.
func (l *lexer) lexKeyword() (*typeValue, error) {
	window := l.text[l.index:min(l.index+maxKeywordLength, len(l.text))]
	for _, kw := range keywords {
		if !strings.HasPrefix(window, kw) {
			continue
		}
		l.index += len(kw)
		switch kw {
		case keywordNull:
			return &typeValue{valueType: TypeNull}, nil
		case keywordUndefined:
			return &typeValue{valueType: TypeUndefined, value: Undefined}, nil
		case keywordTrue:
			return &typeValue{valueType: TypeBoolean, value: true}, nil
		case keywordFalse:
			return &typeValue{valueType: TypeBoolean, value: false}, nil
		case keywordInfinity:
			return &typeValue{valueType: TypeNumber, value: math.Inf(1)}, nil
		case keywordNegInfinity:
			return &typeValue{valueType: TypeNumber, value: math.Inf(-1)}, nil
		case keywordNaN:
			return &typeValue{valueType: TypeNumber, value: math.NaN()}, nil
		}
		return nil, l.bug("lexKeyword", "keyword %q has no value", kw)
	}
	return nil, l.malformed("lexKeyword", "unexpected %q", l.text[l.index])
}

func (l *lexer) lexReferencePath() (*typeValue, error) {
	pieces, end, perr := scanPath(l.text, l.index)
	if perr != nil {
		return nil, l.malformedAtOffset("lexReferencePath", perr.offset, "%s", perr.msg)
	}
	l.index = end
	return &typeValue{valueType: TypeReferencePath, value: pieces}, nil
}

func (l *lexer) location() CharacterLocation {
	return CharacterLocation{Line: l.line, Space: l.space, Tab: l.tab, Offset: l.index}
}

func (l *lexer) malformed(method, format string, args ...any) *DeserializeError {
	return l.malformedAt(method, l.location(), format, args...)
}

// malformedAtOffset reports an error found inside a token. Tokens never span
// whitespace counters, so only the offset moves.
func (l *lexer) malformedAtOffset(method string, offset int, format string, args ...any) *DeserializeError {
	loc := l.location()
	loc.Offset = offset
	return l.malformedAt(method, loc, format, args...)
}

func (l *lexer) malformedAt(method string, loc CharacterLocation, format string, args ...any) *DeserializeError {
	return &DeserializeError{
		Err:      errors.New(errors.ErrCodeMalformed, format, args...),
		Method:   method,
		Location: loc,
	}
}

func (l *lexer) bug(method, format string, args ...any) *DeserializeError {
	return &DeserializeError{
		Err:      errors.New(errors.ErrCodeBug, format, args...),
		Method:   method,
		Location: l.location(),
	}
}

// String renders the tree for debugging.
func (tv *typeValue) String() string {
	switch tv.valueType {
	case TypeArray:
		return fmt.Sprintf("array(%d)", len(tv.elems))
	case TypeObject:
		return fmt.Sprintf("object(%d)", len(tv.members))
	case TypeReferencePath:
		return FormatPath(tv.value.([]PathPiece))
	}
	return fmt.Sprintf("%s(%v)", tv.valueType, tv.value)
}
