package reftext

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// writeQuoted writes s as a JSON string literal. Invalid UTF-8 is replaced
// with U+FFFD. When escapeSlash is set '/' is written as `\/`, which keeps
// object keys inside reference path segments free of bare path delimiters.
func writeQuoted(sb *strings.Builder, s string, escapeSlash bool) {
	sb.Grow(len(s) + 2)
	sb.WriteByte(stringDelimiter)
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == stringDelimiter:
				sb.WriteString(`\"`)
			case c == escapeCharacter:
				sb.WriteString(`\\`)
			case c == pathDelimiter && escapeSlash:
				sb.WriteString(`\/`)
			case c == '\n':
				sb.WriteString(`\n`)
			case c == '\r':
				sb.WriteString(`\r`)
			case c == '\t':
				sb.WriteString(`\t`)
			case c == '\b':
				sb.WriteString(`\b`)
			case c == '\f':
				sb.WriteString(`\f`)
			case c < 0x20:
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigits[c>>4])
				sb.WriteByte(hexDigits[c&0xf])
			default:
				sb.WriteByte(c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteString(`�`)
		} else {
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	sb.WriteByte(stringDelimiter)
}

func quote(s string) string {
	var sb strings.Builder
	writeQuoted(&sb, s, false)
	return sb.String()
}

// scanQuoted decodes the JSON string literal starting at text[start], which
// must be a double quote. It returns the decoded value and the index just past
// the closing quote. On failure it returns the offset of the problem.
func scanQuoted(text string, start int) (string, int, int, error) {
	if start >= len(text) || text[start] != stringDelimiter {
		return "", 0, start, fmt.Errorf("expected '\"'")
	}
	var sb strings.Builder
	i := start + 1
	for {
		if i >= len(text) {
			return "", 0, start, fmt.Errorf("unterminated string")
		}
		c := text[i]
		switch {
		case c == stringDelimiter:
			return sb.String(), i + 1, 0, nil
		case c < 0x20:
			return "", 0, i, fmt.Errorf("control character %q in string", c)
		case c != escapeCharacter:
			sb.WriteByte(c)
			i++
			continue
		}

		// escape sequence
		if i+1 >= len(text) {
			return "", 0, i, fmt.Errorf("unterminated escape sequence")
		}
		esc := text[i+1]
		i += 2
		switch esc {
		case '"', '\\', '/':
			sb.WriteByte(esc)
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'u':
			r, ok := decodeHex4(text, i)
			if !ok {
				return "", 0, i - 2, fmt.Errorf("invalid unicode escape")
			}
			i += 4
			if utf16.IsSurrogate(r) {
				if r2, ok := decodeHex4(text, i+2); ok && text[i] == '\\' && text[i+1] == 'u' {
					if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
						r = dec
						i += 6
					} else {
						r = utf8.RuneError
					}
				} else {
					r = utf8.RuneError
				}
			}
			sb.WriteRune(r)
		default:
			return "", 0, i - 2, fmt.Errorf("invalid escape character %q", esc)
		}
	}
}

// decodeHex4 reads four hex digits at text[i:].
func decodeHex4(text string, i int) (rune, bool) {
	if i < 0 || i+4 > len(text) {
		return 0, false
	}
	v, err := strconv.ParseUint(text[i:i+4], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
