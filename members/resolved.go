package members

import (
	"strings"

	"github.com/cottand/genres/decl"
	"github.com/cottand/genres/types"
)

type ResolvedField struct {
	Declaring   types.ResolvedType
	Field       *decl.Field
	Type        types.ResolvedType
	Annotations *Annotations
}

func (f *ResolvedField) Name() string   { return f.Field.Name }
func (f *ResolvedField) IsStatic() bool { return f.Field.Static }

func (f *ResolvedField) String() string {
	return f.Type.String() + " " + f.Declaring.ErasedType().Name + "." + f.Field.Name
}

// annotatedParams is shared by methods and constructors: annotations of the member
// itself plus one set per parameter position
type annotatedParams struct {
	Annotations      *Annotations
	ParamAnnotations []*Annotations
}

func newAnnotatedParams(params int) annotatedParams {
	return annotatedParams{Annotations: NewAnnotations(), ParamAnnotations: newParamAnnotations(params)}
}

type ResolvedMethod struct {
	Declaring types.ResolvedType
	Method    *decl.Method
	// ReturnType is nil for void methods
	ReturnType    types.ResolvedType
	ArgumentTypes []types.ResolvedType
	annotatedParams
}

func (m *ResolvedMethod) Name() string   { return m.Method.Name }
func (m *ResolvedMethod) IsStatic() bool { return m.Method.Static }

func (m *ResolvedMethod) String() string {
	ret := "void"
	if m.ReturnType != nil {
		ret = m.ReturnType.String()
	}
	return ret + " " + m.Declaring.ErasedType().Name + "." + m.Method.Name + argumentList(m.ArgumentTypes)
}

type ResolvedConstructor struct {
	Declaring     types.ResolvedType
	Constructor   *decl.Constructor
	ArgumentTypes []types.ResolvedType
	annotatedParams
}

func (c *ResolvedConstructor) String() string {
	return c.Declaring.ErasedType().Name + argumentList(c.ArgumentTypes)
}

func argumentList(args []types.ResolvedType) string {
	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = arg.String()
	}
	return "(" + strings.Join(names, ", ") + ")"
}
