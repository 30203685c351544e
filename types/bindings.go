package types

import (
	"hash/fnv"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/genres/decl"
	"github.com/cottand/genres/typeerr"
)

// TypeBindings is the binding environment of one generic declaration:
// the declared parameter names and the types bound to them, positionally.
//
// TypeBindings are immutable. Unbound names are the type variables whose bound is
// currently being resolved; a reference back to one of them resolves to the top type.
type TypeBindings struct {
	names   []string
	types   []ResolvedType
	unbound immutable.Set[string]
}

var emptyBindings = &TypeBindings{unbound: immutable.NewSet[string](immutable.NewHasher(""))}

func EmptyBindings() *TypeBindings {
	return emptyBindings
}

// NewTypeBindings binds args to the type parameters of erased, in declaration order
func NewTypeBindings(erased *decl.Class, args []ResolvedType) (*TypeBindings, error) {
	if len(erased.TypeParams) != len(args) {
		return nil, typeerr.New(typeerr.NewConfiguration{
			TypeName: erased.Name,
			Expected: len(erased.TypeParams),
			Got:      len(args),
		})
	}
	if len(args) == 0 {
		return emptyBindings, nil
	}
	names := make([]string, len(args))
	for i, tv := range erased.TypeParams {
		names[i] = tv.Name
	}
	return &TypeBindings{
		names:   names,
		types:   append([]ResolvedType(nil), args...),
		unbound: emptyBindings.unbound,
	}, nil
}

func (b *TypeBindings) Len() int      { return len(b.types) }
func (b *TypeBindings) IsEmpty() bool { return len(b.types) == 0 }

func (b *TypeBindings) BoundName(i int) string       { return b.names[i] }
func (b *TypeBindings) BoundType(i int) ResolvedType { return b.types[i] }

// Types returns the bound types in declaration order. The slice must not be modified.
func (b *TypeBindings) Types() []ResolvedType { return b.types }

func (b *TypeBindings) Find(name string) (ResolvedType, bool) {
	for i, n := range b.names {
		if n == name {
			return b.types[i], true
		}
	}
	return nil, false
}

func (b *TypeBindings) HasUnbound(name string) bool {
	return b.unbound.Has(name)
}

// WithUnboundVariable returns bindings identical to b that also mark name as unbound
func (b *TypeBindings) WithUnboundVariable(name string) *TypeBindings {
	if b.unbound.Has(name) {
		return b
	}
	return &TypeBindings{
		names:   b.names,
		types:   b.types,
		unbound: b.unbound.Add(name),
	}
}

// Equal compares the bound types structurally; names and unbound markers are ignored
func (b *TypeBindings) Equal(other *TypeBindings) bool {
	if b == other {
		return true
	}
	if len(b.types) != len(other.types) {
		return false
	}
	for i := range b.types {
		if !Equal(b.types[i], other.types[i]) {
			return false
		}
	}
	return true
}

func (b *TypeBindings) Hash() uint64 {
	h := fnv.New64a()
	for _, t := range b.types {
		writeUint64(h, t.Hash())
	}
	return h.Sum64()
}

func (b *TypeBindings) String() string {
	if len(b.types) == 0 {
		return "<>"
	}
	sb := &strings.Builder{}
	sb.WriteByte('<')
	for i, t := range b.types {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(b.names[i])
		sb.WriteByte('=')
		sb.WriteString(t.String())
	}
	sb.WriteByte('>')
	return sb.String()
}
