package decl

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken = iota
	identifierToken
	wildcardToken
	extendsToken
	superToken
	openArgsToken
	closeArgsToken
	commaToken
	arrayToken
	ampersandToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
var identifierMatcher = parsly.NewToken(identifierToken, "Identifier", &identifierMatch{})
var wildcardMatcher = parsly.NewToken(wildcardToken, "Wildcard", matcher.NewByte('?'))
var extendsMatcher = parsly.NewToken(extendsToken, "Extends", &keywordMatch{keyword: "extends"})
var superMatcher = parsly.NewToken(superToken, "Super", &keywordMatch{keyword: "super"})
var openArgsMatcher = parsly.NewToken(openArgsToken, "<", matcher.NewByte('<'))
var closeArgsMatcher = parsly.NewToken(closeArgsToken, ">", matcher.NewByte('>'))
var commaMatcher = parsly.NewToken(commaToken, ",", matcher.NewByte(','))
var arrayMatcher = parsly.NewToken(arrayToken, "[]", matcher.NewFragment("[]"))
var ampersandMatcher = parsly.NewToken(ampersandToken, "&", matcher.NewByte('&'))

// identifierMatch matches qualified names such as 'java.util.List' or 'Outer$Inner'
type identifierMatch struct{}

func (i *identifierMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos >= cursor.InputSize {
		return 0
	}
	if !isIdentifierStart(cursor.Input[cursor.Pos]) {
		return 0
	}
	pos := cursor.Pos + 1
	for pos < cursor.InputSize && isIdentifierPart(cursor.Input[pos]) {
		pos++
	}
	return pos - cursor.Pos
}

// keywordMatch matches keyword only when it is not the prefix of a longer identifier
type keywordMatch struct {
	keyword string
}

func (k *keywordMatch) Match(cursor *parsly.Cursor) int {
	end := cursor.Pos + len(k.keyword)
	if end > cursor.InputSize {
		return 0
	}
	if string(cursor.Input[cursor.Pos:end]) != k.keyword {
		return 0
	}
	if end < cursor.InputSize && isIdentifierPart(cursor.Input[end]) {
		return 0
	}
	return len(k.keyword)
}

func isIdentifierStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' || b == '$'
}

func isIdentifierPart(b byte) bool {
	return isIdentifierStart(b) || (b >= '0' && b <= '9') || b == '.'
}
