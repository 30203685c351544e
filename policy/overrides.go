package policy

import "github.com/cottand/genres/decl"

// Overrides lists the mix-ins whose annotations are layered onto a target class,
// highest precedence first
type Overrides interface {
	MixInsFor(target *decl.Class) []*decl.Class
}

// NoOverrides has no mix-ins for any class
var NoOverrides Overrides = StdOverrides{}

type StdOverrides map[*decl.Class][]*decl.Class

func NewStdOverrides() StdOverrides {
	return make(StdOverrides)
}

// Add appends mixins to target's list, after any already there
func (o StdOverrides) Add(target *decl.Class, mixins ...*decl.Class) StdOverrides {
	o[target] = append(o[target], mixins...)
	return o
}

func (o StdOverrides) MixInsFor(target *decl.Class) []*decl.Class {
	return o[target]
}

// OverridesFromDocument returns the mix-in table declared in a universe document
func OverridesFromDocument(doc *decl.Document) StdOverrides {
	o := NewStdOverrides()
	for target, mixins := range doc.MixIns {
		o.Add(target, mixins...)
	}
	return o
}
