// Package policy decides which annotations survive member flattening and which
// classes contribute annotation overrides (mix-ins) to which targets.
package policy

import (
	"fmt"

	"github.com/cottand/genres/decl"
)

// Inclusion is what happens to an annotation of some kind when members are flattened
type Inclusion uint8

const (
	// DontInclude drops the annotation everywhere
	DontInclude Inclusion = iota
	// IncludeNoInherit keeps the annotation only on the member that declares it
	IncludeNoInherit
	// IncludeAndInherit keeps the annotation and lets it propagate to masking members
	IncludeAndInherit
	// IncludeIfInheritable is IncludeAndInherit for inheritable kinds, IncludeNoInherit otherwise
	IncludeIfInheritable
)

var inclusionNames = []string{"DontInclude", "IncludeNoInherit", "IncludeAndInherit", "IncludeIfInheritable"}

func (i Inclusion) String() string {
	if int(i) < len(inclusionNames) {
		return inclusionNames[i]
	}
	return fmt.Sprintf("Inclusion(%d)", uint8(i))
}

func ParseInclusion(name string) (Inclusion, error) {
	for i, n := range inclusionNames {
		if n == name {
			return Inclusion(i), nil
		}
	}
	return 0, fmt.Errorf("unknown inclusion '%s'", name)
}

func (i Inclusion) MarshalText() ([]byte, error) {
	if int(i) >= len(inclusionNames) {
		return nil, fmt.Errorf("invalid inclusion %d", uint8(i))
	}
	return []byte(i.String()), nil
}

func (i *Inclusion) UnmarshalText(text []byte) error {
	parsed, err := ParseInclusion(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func (i Inclusion) Includes() bool {
	return i != DontInclude
}

// resolve turns IncludeIfInheritable into one of the other three
func (i Inclusion) resolve(kind *decl.AnnotationKind) Inclusion {
	if i != IncludeIfInheritable {
		return i
	}
	if kind.Inheritable {
		return IncludeAndInherit
	}
	return IncludeNoInherit
}
