package types

import "github.com/cottand/genres/decl"

// RawField is a declared field paired with the resolved type that declares it.
// Its signature is still unsubstituted; resolve it against Declaring.TypeBindings().
type RawField struct {
	Field     *decl.Field
	Declaring ResolvedType
}

func (f RawField) Name() string { return f.Field.Name }

type RawMethod struct {
	Method    *decl.Method
	Declaring ResolvedType
}

func (m RawMethod) Name() string { return m.Method.Name }

type RawConstructor struct {
	Constructor *decl.Constructor
	Declaring   ResolvedType
}

func rawFields(t ResolvedType, static bool) []RawField {
	var fields []RawField
	for _, f := range t.ErasedType().Fields {
		if f.Static == static {
			fields = append(fields, RawField{Field: f, Declaring: t})
		}
	}
	return fields
}

func rawMethods(t ResolvedType, static bool) []RawMethod {
	var methods []RawMethod
	for _, m := range t.ErasedType().Methods {
		if m.Static == static {
			methods = append(methods, RawMethod{Method: m, Declaring: t})
		}
	}
	return methods
}

func rawConstructors(t ResolvedType) []RawConstructor {
	ctors := make([]RawConstructor, len(t.ErasedType().Constructors))
	for i, c := range t.ErasedType().Constructors {
		ctors[i] = RawConstructor{Constructor: c, Declaring: t}
	}
	return ctors
}
