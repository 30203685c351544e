package decl

type Param struct {
	// Name may be empty
	Name        string
	Type        Type
	Annotations []Annotation
}

type Field struct {
	Name        string
	Static      bool
	Type        Type
	Annotations []Annotation
}

func (f *Field) String() string {
	return f.Name + " " + f.Type.TypeName()
}

type Method struct {
	Name   string
	Static bool
	// TypeParams are the method's own type variables, eg <X> in '<X> X first(List<X>)'
	TypeParams []*TypeVar
	Params     []Param
	// Return is nil for void methods
	Return      Type
	Annotations []Annotation
}

func (m *Method) String() string {
	ret := "void"
	if m.Return != nil {
		ret = m.Return.TypeName()
	}
	return ret + " " + SignatureString(m.Name, m.Params)
}

// ConstructorName is the member name used for constructors in member keys
const ConstructorName = "<init>"

type Constructor struct {
	Params      []Param
	Annotations []Annotation
}

func (c *Constructor) String() string {
	return SignatureString(ConstructorName, c.Params)
}

// ParamAnnotations returns the annotations of every parameter position of params
func ParamAnnotations(params []Param) [][]Annotation {
	anns := make([][]Annotation, len(params))
	for i, p := range params {
		anns[i] = p.Annotations
	}
	return anns
}
