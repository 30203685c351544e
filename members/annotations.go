package members

import (
	"strings"

	"github.com/cottand/genres/decl"
)

// Annotations holds at most one annotation per kind, in the order kinds were first added
type Annotations struct {
	slots map[*decl.AnnotationKind]int
	list  []decl.Annotation
}

func NewAnnotations() *Annotations {
	return &Annotations{slots: make(map[*decl.AnnotationKind]int)}
}

// Add sets ann, replacing any annotation of the same kind
func (a *Annotations) Add(ann decl.Annotation) {
	if i, ok := a.slots[ann.Kind]; ok {
		a.list[i] = ann
		return
	}
	a.slots[ann.Kind] = len(a.list)
	a.list = append(a.list, ann)
}

// AddAsDefault sets ann only when no annotation of its kind is present yet
func (a *Annotations) AddAsDefault(ann decl.Annotation) bool {
	if _, ok := a.slots[ann.Kind]; ok {
		return false
	}
	a.Add(ann)
	return true
}

func (a *Annotations) Get(kind *decl.AnnotationKind) (decl.Annotation, bool) {
	i, ok := a.slots[kind]
	if !ok {
		return decl.Annotation{}, false
	}
	return a.list[i], true
}

func (a *Annotations) Has(kind *decl.AnnotationKind) bool {
	_, ok := a.slots[kind]
	return ok
}

func (a *Annotations) Len() int { return len(a.list) }

// All returns the annotations in insertion order. The slice must not be modified.
func (a *Annotations) All() []decl.Annotation { return a.list }

func (a *Annotations) String() string {
	names := make([]string, len(a.list))
	for i, ann := range a.list {
		names[i] = ann.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func newParamAnnotations(n int) []*Annotations {
	params := make([]*Annotations, n)
	for i := range params {
		params[i] = NewAnnotations()
	}
	return params
}
