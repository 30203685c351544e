// Package decl is the introspection surface the resolver works against: erased classes
// with their unsubstituted generic signatures, declared members and annotations.
//
// Everything in this package describes declarations as written; nothing is substituted.
// Values are built once (by hand or through Load) and treated as read-only afterwards.
package decl

import "strings"

type ClassKind uint8

const (
	_ ClassKind = iota
	KindClass
	KindInterface
	KindPrimitive
	KindArray
)

func (k ClassKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

type Modifiers uint8

const (
	Abstract Modifiers = 1 << iota
	Final
)

func (m Modifiers) Has(other Modifiers) bool { return m&other == other }

// Class is an erased type: the type-parameter-stripped identity of a declaration.
// A *Class is also a Type, standing for a reference to the class without type arguments.
type Class struct {
	Name      string
	Kind      ClassKind
	Modifiers Modifiers

	TypeParams []*TypeVar
	// Super is nil for interfaces, primitives, arrays and the top type
	Super      Type
	Interfaces []Type

	Fields       []*Field
	Methods      []*Method
	Constructors []*Constructor
	Annotations  []Annotation

	// component is only set for KindArray
	component *Class
}

func (c *Class) TypeName() string { return c.Name }
func (c *Class) String() string   { return c.Name }

func (c *Class) IsInterface() bool { return c.Kind == KindInterface }
func (c *Class) IsPrimitive() bool { return c.Kind == KindPrimitive }
func (c *Class) IsArray() bool     { return c.Kind == KindArray }
func (c *Class) IsAbstract() bool  { return c.IsInterface() || c.Modifiers.Has(Abstract) }
func (c *Class) IsFinal() bool     { return c.Modifiers.Has(Final) }

// Component returns the element class of an array class, or nil
func (c *Class) Component() *Class { return c.component }

func (c *Class) IsGeneric() bool { return len(c.TypeParams) > 0 }

// TypeParam returns the declared type parameter called name, or nil
func (c *Class) TypeParam(name string) *TypeVar {
	for _, tv := range c.TypeParams {
		if tv.Name == name {
			return tv
		}
	}
	return nil
}

// Describe renders the declaration header, eg 'class Foo<T extends Bar> extends Base<T> implements Iface'
func (c *Class) Describe() string {
	sb := &strings.Builder{}
	sb.WriteString(c.Kind.String())
	sb.WriteByte(' ')
	sb.WriteString(c.Name)
	if len(c.TypeParams) > 0 {
		sb.WriteByte('<')
		for i, tv := range c.TypeParams {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(tv.Declaration())
		}
		sb.WriteByte('>')
	}
	if c.Super != nil {
		sb.WriteString(" extends ")
		sb.WriteString(c.Super.TypeName())
	}
	if len(c.Interfaces) > 0 {
		if c.IsInterface() {
			sb.WriteString(" extends ")
		} else {
			sb.WriteString(" implements ")
		}
		sb.WriteString(joinTypes(c.Interfaces, ", "))
	}
	return sb.String()
}

func joinTypes(ts []Type, sep string) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.TypeName()
	}
	return strings.Join(names, sep)
}
