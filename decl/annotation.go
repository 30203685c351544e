package decl

import (
	"maps"
	"slices"
	"strings"
)

// AnnotationKind identifies an annotation type. Inheritable marks kinds that
// propagate from a masked declaration to the member masking it
// when the inclusion policy defers to the kind.
type AnnotationKind struct {
	Name        string
	Inheritable bool
}

func (k *AnnotationKind) String() string { return "@" + k.Name }

type Annotation struct {
	Kind   *AnnotationKind
	Values map[string]string
}

func NewAnnotation(kind *AnnotationKind, keyValues ...string) Annotation {
	ann := Annotation{Kind: kind}
	if len(keyValues) > 0 {
		ann.Values = make(map[string]string, len(keyValues)/2)
		for i := 0; i+1 < len(keyValues); i += 2 {
			ann.Values[keyValues[i]] = keyValues[i+1]
		}
	}
	return ann
}

// Value returns the value of key, or "" when unset
func (a Annotation) Value(key string) string {
	return a.Values[key]
}

func (a Annotation) String() string {
	if len(a.Values) == 0 {
		return a.Kind.String()
	}
	sb := &strings.Builder{}
	sb.WriteString(a.Kind.String())
	sb.WriteByte('(')
	for i, key := range slices.Sorted(maps.Keys(a.Values)) {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(a.Values[key])
	}
	sb.WriteByte(')')
	return sb.String()
}
