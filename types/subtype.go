package types

import (
	"github.com/cottand/genres/decl"
	"github.com/cottand/genres/typeerr"
	"github.com/hashicorp/go-set/v3"
)

// ResolveSubtype narrows super to candidate, recovering candidate's type arguments
// from those of super. Given 'class Strings implements List<String>' nothing needs
// recovering, while narrowing 'Collection<Integer>' to 'class ArrayList<E> implements List<E>'
// yields 'ArrayList<Integer>'.
//
// Parameters of candidate that do not show up in super's arguments resolve to their first bound.
func (r *Resolver) ResolveSubtype(super ResolvedType, candidate *decl.Class) (ResolvedType, error) {
	superClass := super.ErasedType()
	if !r.universe.IsSubclass(candidate, superClass) {
		return nil, typeerr.New(typeerr.NewSubtype{Supertype: super.String(), Candidate: candidate.Name})
	}
	switch super := super.(type) {
	case *PrimitiveType:
		return super, nil
	case *ArrayType:
		if !candidate.IsArray() {
			return nil, typeerr.New(typeerr.NewSubtype{Supertype: super.String(), Candidate: candidate.Name})
		}
		element, err := r.ResolveSubtype(super.element, candidate.Component())
		if err != nil {
			return nil, err
		}
		return r.newResolution().arrayOf(element), nil
	}
	if !candidate.IsGeneric() {
		return r.Resolve(candidate)
	}
	if candidate == superClass {
		return r.ResolveWith(candidate, super.TypeParameters()...)
	}

	// express super's parameters in terms of candidate's own type variables...
	path := supertypePath(r.universe, candidate, superClass, set.New[*decl.Class](8))
	subst := identity(candidate.TypeParams)
	for _, sig := range path {
		subst = stepUp(sig, subst)
	}
	// ...then read candidate's arguments off super's actual arguments
	matched := make(map[*decl.TypeVar]ResolvedType, len(candidate.TypeParams))
	actual := super.TypeParameters()
	for i, tv := range superClass.TypeParams {
		expr, ok := subst[tv]
		if !ok || i >= len(actual) {
			continue
		}
		if err := matchArgument(expr, actual[i], matched, super, candidate); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(matched))
	types := make([]ResolvedType, 0, len(matched))
	for _, tv := range candidate.TypeParams {
		if t, ok := matched[tv]; ok {
			names = append(names, tv.Name)
			types = append(types, t)
		}
	}
	known := &TypeBindings{names: names, types: types, unbound: EmptyBindings().unbound}
	args := make([]ResolvedType, len(candidate.TypeParams))
	for i, tv := range candidate.TypeParams {
		if t, ok := matched[tv]; ok {
			args[i] = t
			continue
		}
		t, err := r.ResolveIn(known, tv)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	r.logger.Debug("narrowed", "from", super, "to", candidate.Name, "args", args)
	return r.ResolveWith(candidate, args...)
}

// supertypePath returns the supertype signatures leading from sub up to target, sub first
func supertypePath(u *decl.Universe, sub, target *decl.Class, visited *set.Set[*decl.Class]) []decl.Type {
	if !visited.Insert(sub) {
		return nil
	}
	parents := make([]decl.Type, 0, len(sub.Interfaces)+1)
	if sub.Super != nil {
		parents = append(parents, sub.Super)
	}
	parents = append(parents, sub.Interfaces...)
	for _, sig := range parents {
		erased := u.Erasure(sig)
		if erased == target {
			return []decl.Type{sig}
		}
		if rest := supertypePath(u, erased, target, visited); rest != nil {
			return append([]decl.Type{sig}, rest...)
		}
	}
	return nil
}

type substitution map[*decl.TypeVar]decl.Type

func identity(vars []*decl.TypeVar) substitution {
	s := make(substitution, len(vars))
	for _, tv := range vars {
		s[tv] = tv
	}
	return s
}

// stepUp maps the type parameters of the class sig refers to through sig's arguments.
// A raw supertype binds nothing.
func stepUp(sig decl.Type, current substitution) substitution {
	p, ok := sig.(*decl.Parameterized)
	if !ok {
		return substitution{}
	}
	next := make(substitution, len(p.Args))
	for i, tv := range p.Raw.TypeParams {
		if i < len(p.Args) {
			next[tv] = substitute(p.Args[i], current)
		}
	}
	return next
}

func substitute(t decl.Type, s substitution) decl.Type {
	switch t := t.(type) {
	case *decl.TypeVar:
		if replaced, ok := s[t]; ok {
			return replaced
		}
		return t
	case *decl.Parameterized:
		args := make([]decl.Type, len(t.Args))
		for i, arg := range t.Args {
			args[i] = substitute(arg, s)
		}
		return &decl.Parameterized{Raw: t.Raw, Args: args}
	case *decl.GenericArray:
		return &decl.GenericArray{Component: substitute(t.Component, s)}
	case *decl.Wildcard:
		w := &decl.Wildcard{}
		for _, b := range t.Upper {
			w.Upper = append(w.Upper, substitute(b, s))
		}
		for _, b := range t.Lower {
			w.Lower = append(w.Lower, substitute(b, s))
		}
		return w
	default:
		return t
	}
}

// matchArgument walks expr and actual side by side, recording what each of the
// candidate's type variables lines up with
func matchArgument(expr decl.Type, actual ResolvedType, matched map[*decl.TypeVar]ResolvedType, super ResolvedType, candidate *decl.Class) error {
	switch expr := expr.(type) {
	case *decl.TypeVar:
		if !isOwnParam(candidate, expr) {
			return nil
		}
		if existing, ok := matched[expr]; ok && !Equal(existing, actual) {
			return typeerr.New(typeerr.NewSubtype{Supertype: super.String(), Candidate: candidate.Name})
		}
		matched[expr] = actual
	case *decl.Parameterized:
		if actual.ErasedType() != expr.Raw {
			return nil
		}
		args := actual.TypeParameters()
		for i, arg := range expr.Args {
			if i >= len(args) {
				break
			}
			if err := matchArgument(arg, args[i], matched, super, candidate); err != nil {
				return err
			}
		}
	case *decl.GenericArray:
		if element := actual.ArrayElementType(); element != nil {
			return matchArgument(expr.Component, element, matched, super, candidate)
		}
	}
	return nil
}

func isOwnParam(c *decl.Class, tv *decl.TypeVar) bool {
	for _, own := range c.TypeParams {
		if own == tv {
			return true
		}
	}
	return false
}
