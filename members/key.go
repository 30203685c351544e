package members

import (
	"strings"

	"github.com/cottand/genres/decl"
)

// MemberKey identifies a member for masking purposes. Fields are keyed by name,
// methods and constructors by name and erased parameter types; return types never count.
type MemberKey struct {
	name   string
	params string
	field  bool
}

func FieldKey(name string) MemberKey {
	return MemberKey{name: name, field: true}
}

func MethodKey(u *decl.Universe, name string, params []decl.Param) MemberKey {
	erased := make([]string, len(params))
	for i, p := range params {
		erased[i] = u.Erasure(p.Type).Name
	}
	return MemberKey{name: name, params: strings.Join(erased, ",")}
}

func ConstructorKey(u *decl.Universe, params []decl.Param) MemberKey {
	return MethodKey(u, decl.ConstructorName, params)
}

func (k MemberKey) Name() string { return k.name }

func (k MemberKey) String() string {
	if k.field {
		return k.name
	}
	return k.name + "(" + k.params + ")"
}
