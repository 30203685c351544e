// Package types resolves generic signatures into fully parameterized types.
//
// A ResolvedType is one of *ObjectType, *InterfaceType, *ArrayType, *PrimitiveType
// or *RecursiveType; callers switch on the concrete type (or on Kind) rather than
// relying on behaviour shared through the interface.
//
// A *RecursiveType forwards ParentClass, ImplementedInterfaces, MemberFields and the
// other accessors to the type it stands for. Until that type is back-patched the
// accessors panic with an internal consistency error; IsPending reports that state.
package types

import (
	"fmt"
	"hash"
	"hash/fnv"
	"strings"

	"github.com/cottand/genres/decl"
	"github.com/cottand/genres/typeerr"
	"github.com/hashicorp/go-set/v3"
)

type Kind uint8

const (
	_ Kind = iota
	KindObject
	KindInterface
	KindArray
	KindPrimitive
	KindRecursive
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindInterface:
		return "interface"
	case KindArray:
		return "array"
	case KindPrimitive:
		return "primitive"
	case KindRecursive:
		return "recursive"
	default:
		return "invalid"
	}
}

type ResolvedType interface {
	Kind() Kind
	ErasedType() *decl.Class
	TypeBindings() *TypeBindings
	// TypeParameters returns the bound type arguments, in declaration order
	TypeParameters() []ResolvedType
	// ParentClass is the resolved super class, nil for everything but objects
	ParentClass() ResolvedType
	ImplementedInterfaces() []ResolvedType
	// ArrayElementType is nil for everything but arrays
	ArrayElementType() ResolvedType
	// SelfReferencedType is nil for everything but placeholders
	SelfReferencedType() ResolvedType

	MemberFields() []RawField
	StaticFields() []RawField
	MemberMethods() []RawMethod
	StaticMethods() []RawMethod
	Constructors() []RawConstructor

	Hash() uint64
	String() string

	isResolvedType()
}

var (
	_ ResolvedType = (*ObjectType)(nil)
	_ ResolvedType = (*InterfaceType)(nil)
	_ ResolvedType = (*ArrayType)(nil)
	_ ResolvedType = (*PrimitiveType)(nil)
	_ ResolvedType = (*RecursiveType)(nil)
)

type base struct {
	erased   *decl.Class
	bindings *TypeBindings
}

func (b *base) ErasedType() *decl.Class          { return b.erased }
func (b *base) TypeBindings() *TypeBindings      { return b.bindings }
func (b *base) TypeParameters() []ResolvedType   { return b.bindings.Types() }
func (b *base) ArrayElementType() ResolvedType   { return nil }
func (b *base) SelfReferencedType() ResolvedType { return nil }
func (b *base) isResolvedType()                  {}

// ObjectType is a resolved class, including abstract ones and the top type itself
type ObjectType struct {
	base
	super      ResolvedType
	interfaces []ResolvedType
}

func newObjectType(erased *decl.Class, bindings *TypeBindings, super ResolvedType, interfaces []ResolvedType) *ObjectType {
	return &ObjectType{base: base{erased: erased, bindings: bindings}, super: super, interfaces: interfaces}
}

func (t *ObjectType) Kind() Kind                            { return KindObject }
func (t *ObjectType) ParentClass() ResolvedType             { return t.super }
func (t *ObjectType) ImplementedInterfaces() []ResolvedType { return t.interfaces }
func (t *ObjectType) MemberFields() []RawField              { return rawFields(t, false) }
func (t *ObjectType) StaticFields() []RawField              { return rawFields(t, true) }
func (t *ObjectType) MemberMethods() []RawMethod            { return rawMethods(t, false) }
func (t *ObjectType) StaticMethods() []RawMethod            { return rawMethods(t, true) }
func (t *ObjectType) Constructors() []RawConstructor        { return rawConstructors(t) }
func (t *ObjectType) Hash() uint64                          { return hashOf(t) }
func (t *ObjectType) String() string                        { return nameWithArgs(t) }

type InterfaceType struct {
	base
	interfaces []ResolvedType
}

func newInterfaceType(erased *decl.Class, bindings *TypeBindings, interfaces []ResolvedType) *InterfaceType {
	return &InterfaceType{base: base{erased: erased, bindings: bindings}, interfaces: interfaces}
}

func (t *InterfaceType) Kind() Kind                            { return KindInterface }
func (t *InterfaceType) ParentClass() ResolvedType             { return nil }
func (t *InterfaceType) ImplementedInterfaces() []ResolvedType { return t.interfaces }
func (t *InterfaceType) MemberFields() []RawField              { return rawFields(t, false) }
func (t *InterfaceType) StaticFields() []RawField              { return rawFields(t, true) }
func (t *InterfaceType) MemberMethods() []RawMethod            { return rawMethods(t, false) }
func (t *InterfaceType) StaticMethods() []RawMethod            { return rawMethods(t, true) }
func (t *InterfaceType) Constructors() []RawConstructor        { return nil }
func (t *InterfaceType) Hash() uint64                          { return hashOf(t) }
func (t *InterfaceType) String() string                        { return nameWithArgs(t) }

// ArrayType is an array of a resolved element type. Arrays extend the top type.
type ArrayType struct {
	base
	top     ResolvedType
	element ResolvedType
}

func newArrayType(erased *decl.Class, top, element ResolvedType) *ArrayType {
	return &ArrayType{base: base{erased: erased, bindings: EmptyBindings()}, top: top, element: element}
}

func (t *ArrayType) Kind() Kind                            { return KindArray }
func (t *ArrayType) ParentClass() ResolvedType             { return t.top }
func (t *ArrayType) ImplementedInterfaces() []ResolvedType { return nil }
func (t *ArrayType) ArrayElementType() ResolvedType        { return t.element }
func (t *ArrayType) MemberFields() []RawField              { return nil }
func (t *ArrayType) StaticFields() []RawField              { return nil }
func (t *ArrayType) MemberMethods() []RawMethod            { return nil }
func (t *ArrayType) StaticMethods() []RawMethod            { return nil }
func (t *ArrayType) Constructors() []RawConstructor        { return nil }
func (t *ArrayType) Hash() uint64                          { return hashOf(t) }
func (t *ArrayType) String() string                        { return t.element.String() + "[]" }

type PrimitiveType struct {
	base
}

func newPrimitiveType(erased *decl.Class) *PrimitiveType {
	return &PrimitiveType{base: base{erased: erased, bindings: EmptyBindings()}}
}

func (t *PrimitiveType) Kind() Kind                            { return KindPrimitive }
func (t *PrimitiveType) ParentClass() ResolvedType             { return nil }
func (t *PrimitiveType) ImplementedInterfaces() []ResolvedType { return nil }
func (t *PrimitiveType) MemberFields() []RawField              { return nil }
func (t *PrimitiveType) StaticFields() []RawField              { return nil }
func (t *PrimitiveType) MemberMethods() []RawMethod            { return nil }
func (t *PrimitiveType) StaticMethods() []RawMethod            { return nil }
func (t *PrimitiveType) Constructors() []RawConstructor        { return nil }
func (t *PrimitiveType) Hash() uint64                          { return hashOf(t) }
func (t *PrimitiveType) String() string                        { return t.erased.Name }

// RecursiveType stands in for a type that was still being resolved when it
// was referenced again, as in 'Enum<E extends Enum<E>>'.
//
// Once the referenced type is complete the placeholder is pointed at it, exactly once.
// Until then the forwarding accessors panic with an internal consistency error.
// Equality and hashing only ever look at the erased class.
type RecursiveType struct {
	erased *decl.Class
	ref    ResolvedType
}

func newRecursiveType(erased *decl.Class) *RecursiveType {
	return &RecursiveType{erased: erased}
}

func (t *RecursiveType) setReference(ref ResolvedType) error {
	if t.ref != nil {
		return typeerr.New(typeerr.NewIllegalReentrancy{TypeName: t.erased.Name})
	}
	t.ref = ref
	return nil
}

func (t *RecursiveType) target() ResolvedType {
	if t.ref == nil {
		panic(typeerr.New(typeerr.NewInternalConsistency{
			Reason: fmt.Sprintf("self-reference to '%s' used before its type was complete", t.erased.Name),
		}))
	}
	return t.ref
}

func (t *RecursiveType) Kind() Kind                            { return KindRecursive }
func (t *RecursiveType) ErasedType() *decl.Class               { return t.erased }
func (t *RecursiveType) SelfReferencedType() ResolvedType      { return t.ref }
func (t *RecursiveType) TypeBindings() *TypeBindings           { return t.target().TypeBindings() }
func (t *RecursiveType) TypeParameters() []ResolvedType        { return t.target().TypeParameters() }
func (t *RecursiveType) ParentClass() ResolvedType             { return t.target().ParentClass() }
func (t *RecursiveType) ImplementedInterfaces() []ResolvedType { return t.target().ImplementedInterfaces() }
func (t *RecursiveType) ArrayElementType() ResolvedType        { return nil }
func (t *RecursiveType) MemberFields() []RawField              { return t.target().MemberFields() }
func (t *RecursiveType) StaticFields() []RawField              { return t.target().StaticFields() }
func (t *RecursiveType) MemberMethods() []RawMethod            { return t.target().MemberMethods() }
func (t *RecursiveType) StaticMethods() []RawMethod            { return t.target().StaticMethods() }
func (t *RecursiveType) Constructors() []RawConstructor        { return t.target().Constructors() }
func (t *RecursiveType) Hash() uint64                          { return hashOf(t) }
func (t *RecursiveType) String() string                        { return t.erased.Name }
func (t *RecursiveType) isResolvedType()                       {}

// IsPending reports whether the placeholder still waits for its type to complete
func (t *RecursiveType) IsPending() bool { return t.ref == nil }

// Equal compares two resolved types structurally: same variant, same erased class
// and equal type arguments. Placeholders are equal when their erased classes are,
// so comparisons over self-referential graphs terminate.
func Equal(a, b ResolvedType) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind() != b.Kind() || a.ErasedType() != b.ErasedType() {
		return false
	}
	switch a := a.(type) {
	case *RecursiveType:
		return true
	case *ArrayType:
		return Equal(a.element, b.ArrayElementType())
	case *PrimitiveType:
		return true
	default:
		return a.TypeBindings().Equal(b.TypeBindings())
	}
}

func hashOf(t ResolvedType) uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(t.Kind())})
	h.Write([]byte(t.ErasedType().Name))
	switch t := t.(type) {
	case *RecursiveType:
	case *ArrayType:
		writeUint64(h, t.element.Hash())
	default:
		for _, arg := range t.TypeParameters() {
			writeUint64(h, arg.Hash())
		}
	}
	return h.Sum64()
}

func writeUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
	h.Write(buf[:])
}

func nameWithArgs(t ResolvedType) string {
	args := t.TypeParameters()
	if len(args) == 0 {
		return t.ErasedType().Name
	}
	sb := &strings.Builder{}
	sb.WriteString(t.ErasedType().Name)
	sb.WriteByte('<')
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte('>')
	return sb.String()
}

// FindSupertype returns the type in t's ancestry (t included) whose erased class is erased, or nil
func FindSupertype(t ResolvedType, erased *decl.Class) ResolvedType {
	return findSupertype(t, erased, set.New[*decl.Class](8))
}

func findSupertype(t ResolvedType, erased *decl.Class, visited *set.Set[*decl.Class]) ResolvedType {
	if t == nil {
		return nil
	}
	if t.ErasedType() == erased {
		return t
	}
	if !visited.Insert(t.ErasedType()) {
		return nil
	}
	if parent := t.ParentClass(); parent != nil {
		if found := findSupertype(parent, erased, visited); found != nil {
			return found
		}
	}
	for _, iface := range t.ImplementedInterfaces() {
		if found := findSupertype(iface, erased, visited); found != nil {
			return found
		}
	}
	return nil
}

// TypeParametersFor returns the type arguments t binds for its ancestor erased,
// or nil when erased is not in t's ancestry
func TypeParametersFor(t ResolvedType, erased *decl.Class) []ResolvedType {
	if found := FindSupertype(t, erased); found != nil {
		return found.TypeParameters()
	}
	return nil
}
