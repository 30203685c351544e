package policy

import "github.com/cottand/genres/decl"

type memberKind uint8

const (
	classMember memberKind = iota
	fieldMember
	methodMember
	constructorMember
	parameterMember
)

type cacheKey struct {
	member memberKind
	kind   *decl.AnnotationKind
}

// Handler answers inclusion questions for one flattening, remembering every answer.
// It is not safe for concurrent use.
type Handler struct {
	config Configuration
	cache  map[cacheKey]Inclusion
}

func NewHandler(config Configuration) *Handler {
	return &Handler{config: config, cache: make(map[cacheKey]Inclusion)}
}

func (h *Handler) inclusion(member memberKind, kind *decl.AnnotationKind) Inclusion {
	key := cacheKey{member: member, kind: kind}
	if inclusion, ok := h.cache[key]; ok {
		return inclusion
	}
	var inclusion Inclusion
	switch member {
	case classMember:
		inclusion = h.config.InclusionForClass(kind)
	case fieldMember:
		inclusion = h.config.InclusionForField(kind)
	case methodMember:
		inclusion = h.config.InclusionForMethod(kind)
	case constructorMember:
		inclusion = h.config.InclusionForConstructor(kind)
	case parameterMember:
		inclusion = h.config.InclusionForParameter(kind)
	}
	inclusion = inclusion.resolve(kind)
	h.cache[key] = inclusion
	return inclusion
}

func (h *Handler) IncludeClass(ann decl.Annotation) bool {
	return h.inclusion(classMember, ann.Kind).Includes()
}

func (h *Handler) IncludeField(ann decl.Annotation) bool {
	return h.inclusion(fieldMember, ann.Kind).Includes()
}

func (h *Handler) IncludeMethod(ann decl.Annotation) bool {
	return h.inclusion(methodMember, ann.Kind).Includes()
}

func (h *Handler) IncludeConstructor(ann decl.Annotation) bool {
	return h.inclusion(constructorMember, ann.Kind).Includes()
}

func (h *Handler) IncludeParameter(ann decl.Annotation) bool {
	return h.inclusion(parameterMember, ann.Kind).Includes()
}

// MethodCanInherit reports whether ann may propagate from a masked method to the one masking it
func (h *Handler) MethodCanInherit(ann decl.Annotation) bool {
	return h.inclusion(methodMember, ann.Kind) == IncludeAndInherit
}

// ClassCanInherit reports whether ann on an ancestor class also applies to its subclasses
func (h *Handler) ClassCanInherit(ann decl.Annotation) bool {
	return h.inclusion(classMember, ann.Kind) == IncludeAndInherit
}

func (h *Handler) ParameterCanInherit(ann decl.Annotation) bool {
	return h.inclusion(parameterMember, ann.Kind) == IncludeAndInherit
}
