package decl

// Type is an unsubstituted generic signature node, as found in a supertype clause,
// a field type, a parameter type or a return type.
//
// The resolver understands *Class, *Parameterized, *GenericArray, *TypeVar and *Wildcard.
// Any other implementation is treated as malformed input.
type Type interface {
	TypeName() string
}

var (
	_ Type = (*Class)(nil)
	_ Type = (*Parameterized)(nil)
	_ Type = (*GenericArray)(nil)
	_ Type = (*TypeVar)(nil)
	_ Type = (*Wildcard)(nil)
)

// Parameterized is a reference to a generic class with type arguments, eg List<String>
type Parameterized struct {
	Raw  *Class
	Args []Type
}

func (p *Parameterized) TypeName() string {
	return p.Raw.Name + "<" + joinTypes(p.Args, ",") + ">"
}

// GenericArray is an array whose component is not an erased class, eg T[] or List<String>[].
// Arrays of erased classes are classes themselves, see Universe.ArrayOf
type GenericArray struct {
	Component Type
}

func (a *GenericArray) TypeName() string { return a.Component.TypeName() + "[]" }

// TypeVar is a declared type parameter of a class or a method
type TypeVar struct {
	Name string
	// Bounds are the declared upper bounds; only the first one is used during resolution
	Bounds []Type
}

func (tv *TypeVar) TypeName() string { return tv.Name }

// FirstBound returns the first declared bound, or nil when there is none
func (tv *TypeVar) FirstBound() Type {
	if len(tv.Bounds) == 0 {
		return nil
	}
	return tv.Bounds[0]
}

// Declaration renders the variable as it appears in a type parameter list
func (tv *TypeVar) Declaration() string {
	if len(tv.Bounds) == 0 {
		return tv.Name
	}
	return tv.Name + " extends " + joinTypes(tv.Bounds, " & ")
}

// Wildcard is '?', '? extends Upper' or '? super Lower'
type Wildcard struct {
	Upper []Type
	Lower []Type
}

func (w *Wildcard) TypeName() string {
	switch {
	case len(w.Upper) > 0:
		return "? extends " + joinTypes(w.Upper, " & ")
	case len(w.Lower) > 0:
		return "? super " + joinTypes(w.Lower, " & ")
	default:
		return "?"
	}
}

// Params returns a Parameterized reference of raw with args
func Params(raw *Class, args ...Type) *Parameterized {
	return &Parameterized{Raw: raw, Args: args}
}

func describeTypes(ts []Type) string {
	return "(" + joinTypes(ts, ", ") + ")"
}

// SignatureString renders a method-like parameter list
func SignatureString(name string, params []Param) string {
	ts := make([]Type, len(params))
	for i, p := range params {
		ts[i] = p.Type
	}
	return name + describeTypes(ts)
}
