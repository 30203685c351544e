package types

import (
	"fmt"
	"log/slog"

	"github.com/cottand/genres/decl"
	"github.com/cottand/genres/internal/log"
	"github.com/cottand/genres/typeerr"
	"github.com/cottand/genres/util"
	"golang.org/x/sync/singleflight"
)

type ResolverConfig struct {
	Cache CacheStrategy
	// MaxEntries defaults to DefaultCacheEntries
	MaxEntries int
	// Logger defaults to log.DefaultLogger
	Logger *slog.Logger
}

// Resolver turns erased classes and generic signatures into ResolvedTypes.
//
// A Resolver is safe for concurrent use. Completed types are cached and shared,
// so resolving the same class with the same arguments twice returns the same instance.
type Resolver struct {
	universe   *decl.Universe
	cache      ResolvedTypeCache
	group      singleflight.Group
	logger     *slog.Logger
	top        *ObjectType
	primitives map[*decl.Class]*PrimitiveType
}

func NewResolver(universe *decl.Universe, cfg ResolverConfig) (*Resolver, error) {
	cache, err := NewCache(cfg.Cache, cfg.MaxEntries)
	if err != nil {
		return nil, err
	}
	r := &Resolver{
		universe:   universe,
		cache:      cache,
		logger:     log.Section(cfg.Logger, "resolve"),
		top:        newObjectType(universe.Top(), EmptyBindings(), nil, nil),
		primitives: make(map[*decl.Class]*PrimitiveType, len(decl.PrimitiveNames)),
	}
	for _, name := range decl.PrimitiveNames {
		class := universe.MustLookup(name)
		r.primitives[class] = newPrimitiveType(class)
	}
	return r, nil
}

func (r *Resolver) Universe() *decl.Universe { return r.universe }

// Top returns the resolved top type
func (r *Resolver) Top() ResolvedType { return r.top }

// Cache exposes the cache backing r, mostly for inspection
func (r *Resolver) Cache() ResolvedTypeCache { return r.cache }

// Resolve resolves erased without type arguments. A generic class is then used raw:
// each of its type parameters is bound to its first bound, or to the top type.
func (r *Resolver) Resolve(erased *decl.Class) (ResolvedType, error) {
	return r.newResolution().fromClass(erased, nil)
}

// ResolveWith binds args positionally to the type parameters of erased
func (r *Resolver) ResolveWith(erased *decl.Class, args ...ResolvedType) (ResolvedType, error) {
	bindings, err := NewTypeBindings(erased, args)
	if err != nil {
		return nil, err
	}
	if !erased.IsGeneric() {
		bindings = nil
	}
	return r.newResolution().fromClass(erased, bindings)
}

// ResolveIn resolves one unsubstituted signature, such as a field type,
// against the bindings of the type that declares it
func (r *Resolver) ResolveIn(bindings *TypeBindings, sig decl.Type) (ResolvedType, error) {
	if bindings == nil {
		bindings = EmptyBindings()
	}
	return r.newResolution().resolveSignature(sig, bindings)
}

// ResolveType resolves a fully written signature, typically one from decl.Parse:
//
//	r.ResolveType(decl.MustParse(u, "Map<String, List<Integer>>"))
func (r *Resolver) ResolveType(sig decl.Type) (ResolvedType, error) {
	return r.ResolveIn(EmptyBindings(), sig)
}

// frame is a class whose type is under construction
type frame struct {
	class        *decl.Class
	placeholders []*RecursiveType
	// selfReferencedOuter is set when something built in this frame refers
	// to a frame further down the stack, which is not complete yet
	selfReferencedOuter bool
}

// resolution holds the class stack of one call into the Resolver
type resolution struct {
	*Resolver
	stack util.Stack[*frame]
}

func (r *Resolver) newResolution() *resolution {
	return &resolution{Resolver: r}
}

// fromClass resolves erased with bindings; nil bindings means raw usage
func (res *resolution) fromClass(erased *decl.Class, bindings *TypeBindings) (ResolvedType, error) {
	if erased.IsPrimitive() {
		return res.primitives[erased], nil
	}
	if erased == res.universe.Top() {
		return res.top, nil
	}
	if erased.IsArray() {
		element, err := res.fromClass(erased.Component(), nil)
		if err != nil {
			return nil, err
		}
		return res.arrayOf(element), nil
	}
	if placeholder := res.selfReference(erased); placeholder != nil {
		return placeholder, nil
	}

	var key Key
	if bindings == nil {
		key = RawKey(erased)
	} else {
		key = NewKey(erased, bindings.Types())
	}
	cacheable := key.cacheable()
	if cacheable {
		if t, ok := res.cache.Find(key); ok {
			return t, nil
		}
	}
	// only the outermost class is shared between callers: a shared computation
	// waiting on another one could otherwise wait on itself
	if cacheable && res.stack.Len() == 0 {
		t, err, _ := res.group.Do(key.id, func() (any, error) {
			if t, ok := res.cache.Find(key); ok {
				return t, nil
			}
			return res.build(erased, bindings, key, cacheable)
		})
		if err != nil {
			return nil, err
		}
		return t.(ResolvedType), nil
	}
	return res.build(erased, bindings, key, cacheable)
}

// arrayOf wraps element, keyed by the array class and its element type.
// Only arrays built outside any frame are stored: below the outermost frame
// the element may still point at types under construction.
func (res *resolution) arrayOf(element ResolvedType) ResolvedType {
	erased := res.universe.ArrayOf(element.ErasedType())
	key := NewKey(erased, []ResolvedType{element})
	if !key.cacheable() {
		return newArrayType(erased, res.top, element)
	}
	if t, ok := res.cache.Find(key); ok {
		return t
	}
	t := newArrayType(erased, res.top, element)
	if res.stack.Len() == 0 {
		res.cache.Put(key, t)
	}
	return t
}

// selfReference returns a placeholder when erased is already under construction
func (res *resolution) selfReference(erased *decl.Class) *RecursiveType {
	at := res.stack.FindFromTop(func(f *frame) bool { return f.class == erased })
	if at < 0 {
		return nil
	}
	placeholder := newRecursiveType(erased)
	target := res.stack.At(at)
	target.placeholders = append(target.placeholders, placeholder)
	for _, f := range res.stack.Above(at + 1) {
		f.selfReferencedOuter = true
	}
	res.logger.Debug("self reference", "class", erased.Name, "depth", res.stack.Len())
	return placeholder
}

func (res *resolution) build(erased *decl.Class, bindings *TypeBindings, key Key, cacheable bool) (ResolvedType, error) {
	f := &frame{class: erased}
	res.stack.Push(f)
	t, err := res.construct(erased, bindings)
	res.stack.Pop()
	if err != nil {
		return nil, err
	}
	for _, placeholder := range f.placeholders {
		if err := placeholder.setReference(t); err != nil {
			return nil, err
		}
	}
	if cacheable && !f.selfReferencedOuter && key.cacheable() {
		res.cache.Put(key, t)
	}
	res.logger.Debug("resolved", "type", t, "placeholders", len(f.placeholders))
	return t, nil
}

func (res *resolution) construct(erased *decl.Class, bindings *TypeBindings) (ResolvedType, error) {
	if bindings == nil {
		var err error
		if bindings, err = res.rawBindings(erased); err != nil {
			return nil, err
		}
	}
	interfaces := make([]ResolvedType, 0, len(erased.Interfaces))
	for _, sig := range erased.Interfaces {
		iface, err := res.resolveSignature(sig, bindings)
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, iface)
	}
	if erased.IsInterface() {
		return newInterfaceType(erased, bindings, interfaces), nil
	}
	var super ResolvedType = res.top
	if erased.Super != nil {
		var err error
		if super, err = res.resolveSignature(erased.Super, bindings); err != nil {
			return nil, err
		}
	}
	return newObjectType(erased, bindings, super, interfaces), nil
}

// rawBindings binds every type parameter of erased to its first bound.
// It runs inside erased's own frame, so a bound mentioning erased yields a placeholder.
func (res *resolution) rawBindings(erased *decl.Class) (*TypeBindings, error) {
	if !erased.IsGeneric() {
		return EmptyBindings(), nil
	}
	args := make([]ResolvedType, len(erased.TypeParams))
	for i, tv := range erased.TypeParams {
		arg, err := res.resolveSignature(tv, EmptyBindings())
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return NewTypeBindings(erased, args)
}

func (res *resolution) resolveSignature(sig decl.Type, bindings *TypeBindings) (ResolvedType, error) {
	switch sig := sig.(type) {
	case *decl.Class:
		return res.fromClass(sig, nil)

	case *decl.Parameterized:
		args := make([]ResolvedType, len(sig.Args))
		for i, argSig := range sig.Args {
			arg, err := res.resolveSignature(argSig, bindings)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		newBindings, err := NewTypeBindings(sig.Raw, args)
		if err != nil {
			return nil, err
		}
		return res.fromClass(sig.Raw, newBindings)

	case *decl.GenericArray:
		element, err := res.resolveSignature(sig.Component, bindings)
		if err != nil {
			return nil, err
		}
		return res.arrayOf(element), nil

	case *decl.TypeVar:
		if bound, ok := bindings.Find(sig.Name); ok {
			return bound, nil
		}
		// a variable whose bound refers back to itself, as in 'T extends Comparable<T>'
		if bindings.HasUnbound(sig.Name) {
			return res.top, nil
		}
		first := sig.FirstBound()
		if first == nil {
			return res.top, nil
		}
		return res.resolveSignature(first, bindings.WithUnboundVariable(sig.Name))

	case *decl.Wildcard:
		if len(sig.Upper) > 0 {
			return res.resolveSignature(sig.Upper[0], bindings)
		}
		return res.top, nil

	default:
		return nil, typeerr.New(typeerr.NewInternalConsistency{
			Reason: fmt.Sprintf("unrecognised signature node %T (%v)", sig, sig),
		})
	}
}
