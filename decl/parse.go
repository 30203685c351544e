package decl

import (
	"fmt"

	"github.com/cottand/genres/typeerr"
	"github.com/viant/parsly"
)

// Parse turns signature text such as 'Map<K, List<? extends V>>[]' into a Type.
// Names resolve to the type variables in scope first, then to classes registered in u.
//
// Parse is also the type token of this package: callers use it to name fully
// parameterized types like 'List<String>' when seeding resolution.
func Parse(u *Universe, text string, scope ...*TypeVar) (Type, error) {
	p := newParser(u, text, scope)
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustParse is Parse for signatures known to be valid, typically in tests
func MustParse(u *Universe, text string, scope ...*TypeVar) Type {
	t, err := Parse(u, text, scope...)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTypeParams parses type parameter declarations such as 'T extends Comparable<T>'.
// Every declared name is in scope for every bound, so self-referential bounds work.
func ParseTypeParams(u *Universe, decls []string, outer ...*TypeVar) ([]*TypeVar, error) {
	vars := make([]*TypeVar, len(decls))
	parsers := make([]*parser, len(decls))
	for i, text := range decls {
		p := newParser(u, text, nil)
		matched := p.cursor.MatchAfterOptional(whitespaceMatcher, identifierMatcher)
		if matched.Code != identifierToken {
			return nil, p.syntaxError(identifierMatcher)
		}
		vars[i] = &TypeVar{Name: matched.Text(p.cursor)}
		parsers[i] = p
	}

	scope := make([]*TypeVar, 0, len(outer)+len(vars))
	scope = append(scope, outer...)
	scope = append(scope, vars...)
	for i, p := range parsers {
		p.addScope(scope)
		matched := p.cursor.MatchAfterOptional(whitespaceMatcher, extendsMatcher)
		if matched.Code == extendsToken {
			bounds, err := p.parseBounds()
			if err != nil {
				return nil, err
			}
			vars[i].Bounds = bounds
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
	}
	return vars, nil
}

type parser struct {
	u      *Universe
	text   string
	scope  map[string]*TypeVar
	cursor *parsly.Cursor
}

func newParser(u *Universe, text string, scope []*TypeVar) *parser {
	p := &parser{
		u:      u,
		text:   text,
		scope:  make(map[string]*TypeVar, len(scope)),
		cursor: parsly.NewCursor("", []byte(text), 0),
	}
	p.addScope(scope)
	return p
}

// addScope makes vars visible; later entries shadow earlier ones
func (p *parser) addScope(vars []*TypeVar) {
	for _, tv := range vars {
		p.scope[tv.Name] = tv
	}
}

func (p *parser) parseType() (Type, error) {
	matched := p.cursor.MatchAfterOptional(whitespaceMatcher, wildcardMatcher, identifierMatcher)
	var t Type
	var err error
	switch matched.Code {
	case wildcardToken:
		return p.parseWildcard()
	case identifierToken:
		t, err = p.parseReference(matched.Text(p.cursor))
	case parsly.EOF:
		return nil, p.fail("unexpected end of signature")
	default:
		return nil, p.syntaxError(identifierMatcher, wildcardMatcher)
	}
	if err != nil {
		return nil, err
	}
	for {
		matched = p.cursor.MatchAfterOptional(whitespaceMatcher, arrayMatcher)
		if matched.Code != arrayToken {
			return t, nil
		}
		t = p.u.ArrayType(t)
	}
}

func (p *parser) parseReference(name string) (Type, error) {
	if tv, ok := p.scope[name]; ok {
		return tv, nil
	}
	class, ok := p.u.Lookup(name)
	if !ok {
		return nil, p.fail(fmt.Sprintf("unknown type '%s'", name))
	}
	matched := p.cursor.MatchAfterOptional(whitespaceMatcher, openArgsMatcher)
	if matched.Code != openArgsToken {
		return class, nil
	}
	var args []Type
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		matched = p.cursor.MatchAfterOptional(whitespaceMatcher, commaMatcher, closeArgsMatcher)
		switch matched.Code {
		case commaToken:
			continue
		case closeArgsToken:
			return &Parameterized{Raw: class, Args: args}, nil
		default:
			return nil, p.syntaxError(commaMatcher, closeArgsMatcher)
		}
	}
}

func (p *parser) parseWildcard() (Type, error) {
	matched := p.cursor.MatchAfterOptional(whitespaceMatcher, extendsMatcher, superMatcher)
	switch matched.Code {
	case extendsToken:
		bounds, err := p.parseBounds()
		if err != nil {
			return nil, err
		}
		return &Wildcard{Upper: bounds}, nil
	case superToken:
		bound, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Wildcard{Lower: []Type{bound}}, nil
	default:
		return &Wildcard{}, nil
	}
}

// parseBounds parses 'A & B & C'
func (p *parser) parseBounds() ([]Type, error) {
	var bounds []Type
	for {
		bound, err := p.parseType()
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, bound)
		if matched := p.cursor.MatchAfterOptional(whitespaceMatcher, ampersandMatcher); matched.Code != ampersandToken {
			return bounds, nil
		}
	}
}

func (p *parser) expectEnd() error {
	p.cursor.MatchOne(whitespaceMatcher)
	if p.cursor.Pos < p.cursor.InputSize {
		return p.fail(fmt.Sprintf("unexpected '%s'", string(p.cursor.Input[p.cursor.Pos:])))
	}
	return nil
}

func (p *parser) fail(reason string) error {
	return typeerr.New(typeerr.NewLoad{Where: fmt.Sprintf("signature '%s'", p.text), Reason: reason})
}

func (p *parser) syntaxError(expected ...*parsly.Token) error {
	return p.fail(p.cursor.NewError(expected...).Error())
}
