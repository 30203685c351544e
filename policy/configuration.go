package policy

import (
	"github.com/cottand/genres/decl"
	"github.com/pkg/errors"
)

// Configuration tells which Inclusion applies to an annotation kind, per member kind
type Configuration interface {
	InclusionForClass(kind *decl.AnnotationKind) Inclusion
	InclusionForField(kind *decl.AnnotationKind) Inclusion
	InclusionForMethod(kind *decl.AnnotationKind) Inclusion
	InclusionForConstructor(kind *decl.AnnotationKind) Inclusion
	InclusionForParameter(kind *decl.AnnotationKind) Inclusion
}

// StdConfiguration applies the same table to every member kind:
// the Inclusion set for a kind, or Default when none was set.
type StdConfiguration struct {
	Default Inclusion
	kinds   map[*decl.AnnotationKind]Inclusion
}

var _ Configuration = (*StdConfiguration)(nil)

func NewStdConfiguration(defaultInclusion Inclusion) *StdConfiguration {
	return &StdConfiguration{
		Default: defaultInclusion,
		kinds:   make(map[*decl.AnnotationKind]Inclusion),
	}
}

// Set returns c so that tables can be built in one expression
func (c *StdConfiguration) Set(kind *decl.AnnotationKind, inclusion Inclusion) *StdConfiguration {
	c.kinds[kind] = inclusion
	return c
}

func (c *StdConfiguration) inclusionFor(kind *decl.AnnotationKind) Inclusion {
	if inclusion, ok := c.kinds[kind]; ok {
		return inclusion
	}
	return c.Default
}

func (c *StdConfiguration) InclusionForClass(kind *decl.AnnotationKind) Inclusion {
	return c.inclusionFor(kind)
}
func (c *StdConfiguration) InclusionForField(kind *decl.AnnotationKind) Inclusion {
	return c.inclusionFor(kind)
}
func (c *StdConfiguration) InclusionForMethod(kind *decl.AnnotationKind) Inclusion {
	return c.inclusionFor(kind)
}
func (c *StdConfiguration) InclusionForConstructor(kind *decl.AnnotationKind) Inclusion {
	return c.inclusionFor(kind)
}
func (c *StdConfiguration) InclusionForParameter(kind *decl.AnnotationKind) Inclusion {
	return c.inclusionFor(kind)
}

// FromDocument builds the table declared in a universe document.
// An empty default means IncludeIfInheritable.
func FromDocument(doc *decl.Document) (*StdConfiguration, error) {
	defaultInclusion := IncludeIfInheritable
	if doc.Inclusion.Default != "" {
		var err error
		if defaultInclusion, err = ParseInclusion(doc.Inclusion.Default); err != nil {
			return nil, errors.Wrap(err, "default inclusion")
		}
	}
	c := NewStdConfiguration(defaultInclusion)
	for name, inclusionName := range doc.Inclusion.Kinds {
		kind, ok := doc.Universe.AnnotationKind(name)
		if !ok {
			return nil, errors.Errorf("inclusion for unknown annotation '%s'", name)
		}
		inclusion, err := ParseInclusion(inclusionName)
		if err != nil {
			return nil, errors.Wrapf(err, "inclusion of @%s", name)
		}
		c.Set(kind, inclusion)
	}
	return c, nil
}
