package reftext

// Keyword literals.
const (
	keywordNull        = "null"
	keywordUndefined   = "undefined"
	keywordTrue        = "true"
	keywordFalse       = "false"
	keywordInfinity    = "Infinity"
	keywordNegInfinity = "-Infinity"
	keywordNaN         = "NaN"
)

// keywords is ordered longest first so a lookahead match never stops at a
// shorter keyword that is a prefix of a longer one.
var keywords = []string{
	keywordNegInfinity,
	keywordUndefined,
	keywordInfinity,
	keywordFalse,
	keywordNull,
	keywordTrue,
	keywordNaN,
}

// maxKeywordLength bounds the lookahead used to recognise a keyword.
const maxKeywordLength = len(keywordNegInfinity)

// Delimiters and separators.
const (
	stringDelimiter = '"'
	bigIntDelimiter = 'n'
	dateDelimiter   = '@'
	pathDelimiter   = '/'
	escapeCharacter = '\\'

	arrayOpen   = '['
	arrayClose  = ']'
	objectOpen  = '{'
	objectClose = '}'

	nameSeparator  = ':'
	valueSeparator = ','
)

// rootPath is the reference path that denotes the root value itself.
const rootPath = "//"

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isTokenBoundary reports whether c may directly follow a complete value token.
func isTokenBoundary(c byte) bool {
	switch c {
	case valueSeparator, nameSeparator, arrayClose, objectClose:
		return true
	}
	return isWhitespace(c)
}
