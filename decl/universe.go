package decl

import (
	"fmt"
	"sync"

	"github.com/cottand/genres/typeerr"
	"github.com/hashicorp/go-set/v3"
)

// TopTypeName is the name of the universal top type every class extends
const TopTypeName = "Object"

// PrimitiveNames lists the builtin primitive classes of every Universe
var PrimitiveNames = []string{"boolean", "byte", "char", "short", "int", "long", "float", "double", "void"}

// Universe is the registry of every erased class and annotation kind that signatures may refer to.
//
// Classes and annotation kinds are registered up front; after that a Universe is only read,
// except for array classes which are interned on demand and may be requested concurrently.
type Universe struct {
	classes     map[string]*Class
	order       []*Class
	annotations map[string]*AnnotationKind
	top         *Class

	arraysMu sync.Mutex
	arrays   map[*Class]*Class
}

func NewUniverse() *Universe {
	u := &Universe{
		classes:     make(map[string]*Class),
		annotations: make(map[string]*AnnotationKind),
		arrays:      make(map[*Class]*Class),
	}
	u.top = &Class{Name: TopTypeName, Kind: KindClass}
	u.mustDefine(u.top)
	for _, name := range PrimitiveNames {
		u.mustDefine(&Class{Name: name, Kind: KindPrimitive, Modifiers: Final})
	}
	return u
}

// Top returns the universal top type
func (u *Universe) Top() *Class { return u.top }

func (u *Universe) Lookup(name string) (*Class, bool) {
	if c, ok := u.classes[name]; ok {
		return c, true
	}
	return nil, false
}

// MustLookup is Lookup for names known to be registered
func (u *Universe) MustLookup(name string) *Class {
	c, ok := u.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("class %s is not defined", name))
	}
	return c
}

// Define registers c. Classes that extend nothing but are not interfaces,
// primitives or the top type itself get the top type as their super class.
func (u *Universe) Define(c *Class) error {
	if c.Name == "" {
		return typeerr.New(typeerr.NewLoad{Reason: "class without a name"})
	}
	if _, exists := u.classes[c.Name]; exists {
		return typeerr.New(typeerr.NewLoad{Where: c.Name, Reason: "class defined twice"})
	}
	if c.Kind == 0 {
		c.Kind = KindClass
	}
	if c.Kind == KindClass && c.Super == nil && u.top != nil && c != u.top {
		c.Super = u.top
	}
	u.classes[c.Name] = c
	u.order = append(u.order, c)
	return nil
}

func (u *Universe) mustDefine(c *Class) {
	if err := u.Define(c); err != nil {
		panic(err)
	}
}

// Classes returns every registered class in registration order, builtins first
func (u *Universe) Classes() []*Class {
	return u.order
}

func (u *Universe) DefineAnnotation(kind *AnnotationKind) error {
	if _, exists := u.annotations[kind.Name]; exists {
		return typeerr.New(typeerr.NewLoad{Where: "@" + kind.Name, Reason: "annotation defined twice"})
	}
	u.annotations[kind.Name] = kind
	return nil
}

func (u *Universe) AnnotationKind(name string) (*AnnotationKind, bool) {
	kind, ok := u.annotations[name]
	return kind, ok
}

// ArrayOf returns the interned array class whose elements are component
func (u *Universe) ArrayOf(component *Class) *Class {
	u.arraysMu.Lock()
	defer u.arraysMu.Unlock()
	if arr, ok := u.arrays[component]; ok {
		return arr
	}
	arr := &Class{
		Name:      component.Name + "[]",
		Kind:      KindArray,
		Modifiers: Final,
		component: component,
	}
	u.arrays[component] = arr
	return arr
}

// ArrayType returns the array signature whose elements are component:
// an array class when component is erased, a GenericArray otherwise
func (u *Universe) ArrayType(component Type) Type {
	if c, ok := component.(*Class); ok {
		return u.ArrayOf(c)
	}
	return &GenericArray{Component: component}
}

// Erasure strips every type argument from t.
// Type variables and wildcards erase to their first (upper) bound, or to the top type.
func (u *Universe) Erasure(t Type) *Class {
	switch t := t.(type) {
	case nil:
		return nil
	case *Class:
		return t
	case *Parameterized:
		return t.Raw
	case *GenericArray:
		return u.ArrayOf(u.Erasure(t.Component))
	case *TypeVar:
		if bound := t.FirstBound(); bound != nil {
			return u.Erasure(bound)
		}
		return u.top
	case *Wildcard:
		if len(t.Upper) > 0 {
			return u.Erasure(t.Upper[0])
		}
		return u.top
	default:
		return u.top
	}
}

// IsSubclass reports whether sub is super or extends or implements it, directly or not
func (u *Universe) IsSubclass(sub, super *Class) bool {
	if sub == super {
		return true
	}
	if sub.IsPrimitive() || super.IsPrimitive() {
		return false
	}
	if super == u.top {
		return true
	}
	if sub.IsArray() {
		return super.IsArray() && u.IsSubclass(sub.component, super.component)
	}
	return u.isSubclass(sub, super, set.New[*Class](8))
}

func (u *Universe) isSubclass(sub, super *Class, visited *set.Set[*Class]) bool {
	if sub == super {
		return true
	}
	if !visited.Insert(sub) {
		return false
	}
	for _, iface := range sub.Interfaces {
		if u.isSubclass(u.Erasure(iface), super, visited) {
			return true
		}
	}
	if sub.Super != nil {
		return u.isSubclass(u.Erasure(sub.Super), super, visited)
	}
	return false
}
