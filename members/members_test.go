package members

import (
	"strings"
	"testing"

	"github.com/cottand/genres/decl"
	"github.com/cottand/genres/policy"
	"github.com/cottand/genres/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
annotations:
  - {name: Marker}
  - {name: Inherited, inheritable: true}
  - {name: Json, inheritable: true}
types:
  - name: String
    final: true
  - name: Base
    params: [T]
    annotations: [Inherited, Marker]
    fields:
      - {name: value, type: T, annotations: [Marker]}
      - {name: count, type: int}
      - {name: DEFAULT, type: String, static: true}
    methods:
      - {name: get, returns: T, annotations: [Inherited, Marker]}
      - name: set
        params: [{name: v, type: T, annotations: [Inherited, Marker]}]
      - name: rename
        params: [{name: name, type: String, annotations: [Inherited, Marker]}]
      - name: first
        typeParams: ["X extends String"]
        params: ["Base<X>"]
        returns: X
      - {name: create, static: true, returns: "Base<T>"}
    constructors:
      - params: []
      - params: [T]
  - name: BaseMixIn
    fields:
      - {name: count, type: int, annotations: [Json]}
    methods:
      - name: get
        returns: Object
        annotations: [{name: Json, values: {name: base}}]
  - name: Middle
    extends: Base<String>
    methods:
      - {name: get, returns: String}
      - {name: rename, params: [String]}
  - name: Leaf
    extends: Middle
    fields:
      - {name: value, type: String, annotations: [Json]}
      - {name: NAME, type: String, static: true}
    methods:
      - {name: describe, returns: String}
      - {name: of, static: true, params: [String], returns: Leaf}
    constructors:
      - params: [String]
        annotations: [Marker]
  - name: LeafMixIn
    annotations: [Json]
    fields:
      - {name: value, type: String, annotations: [Marker]}
      - {name: NAME, type: String, static: true, annotations: [Marker]}
    methods:
      - name: get
        returns: String
        annotations: [{name: Json, values: {name: g}}]
      - {name: describe, returns: String, annotations: [Marker]}
      - {name: unknown, returns: int, annotations: [Marker]}
      - {name: of, static: true, params: [String], returns: Leaf, annotations: [Json]}
    constructors:
      - params: [String]
        annotations: [Json]
mixins:
  - {target: Leaf, overrides: [LeafMixIn]}
  - {target: Base, overrides: [BaseMixIn]}
`

type testEnv struct {
	doc      *decl.Document
	u        *decl.Universe
	resolver *types.Resolver
}

func newEnv(t *testing.T) testEnv {
	t.Helper()
	doc, err := decl.Load(strings.NewReader(fixture))
	require.NoError(t, err)
	r, err := types.NewResolver(doc.Universe, types.ResolverConfig{})
	require.NoError(t, err)
	return testEnv{doc: doc, u: doc.Universe, resolver: r}
}

func (e testEnv) kind(name string) *decl.AnnotationKind {
	kind, ok := e.u.AnnotationKind(name)
	if !ok {
		panic("no annotation kind " + name)
	}
	return kind
}

func (e testEnv) flatten(t *testing.T, name string, annotations policy.Configuration, cfg Config) *TypeWithMembers {
	t.Helper()
	leaf, err := e.resolver.Resolve(e.u.MustLookup(name))
	require.NoError(t, err)
	resolved, err := NewMemberResolver(e.resolver, cfg).Resolve(leaf, annotations, policy.OverridesFromDocument(e.doc))
	require.NoError(t, err)
	return resolved
}

func annotationNames(anns *Annotations) []string {
	names := make([]string, 0, anns.Len())
	for _, ann := range anns.All() {
		names = append(names, ann.String())
	}
	return names
}

func methodNames(methods []*ResolvedMethod) []string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.Name()
	}
	return names
}

func findMethod(t *testing.T, methods []*ResolvedMethod, name string) *ResolvedMethod {
	t.Helper()
	for _, m := range methods {
		if m.Name() == name {
			return m
		}
	}
	require.Failf(t, "method not found", "no method %s", name)
	return nil
}

func TestMemberFields(t *testing.T) {
	env := newEnv(t)
	leaf := env.flatten(t, "Leaf", nil, Config{})

	fields, err := leaf.MemberFields()
	require.NoError(t, err)
	require.Len(t, fields, 2)

	value := fields[0]
	assert.Equal(t, "value", value.Name())
	assert.Equal(t, "Leaf", value.Declaring.String())
	assert.Equal(t, "String", value.Type.String())
	assert.Equal(t, []string{"@Json", "@Marker"}, annotationNames(value.Annotations))

	count := fields[1]
	assert.Equal(t, "count", count.Name())
	assert.Equal(t, "Base<String>", count.Declaring.String())
	assert.Equal(t, "int", count.Type.String())
	assert.Equal(t, []string{"@Json"}, annotationNames(count.Annotations))
}

func TestMemberFieldTypesAreSubstituted(t *testing.T) {
	env := newEnv(t)

	type testCase struct {
		leaf      string
		declaring string
		valueType string
	}
	testCases := []testCase{
		{"Middle", "Base<String>", "String"},
		{"Base", "Base<Object>", "Object"},
	}
	for _, tc := range testCases {
		t.Run(tc.leaf, func(t *testing.T) {
			fields, err := env.flatten(t, tc.leaf, nil, Config{IgnoreMixins: true}).MemberFields()
			require.NoError(t, err)
			require.NotEmpty(t, fields)
			assert.Equal(t, "value", fields[0].Name())
			assert.Equal(t, tc.declaring, fields[0].Declaring.String())
			assert.Equal(t, tc.valueType, fields[0].Type.String())
		})
	}
}

func TestMemberMethods(t *testing.T) {
	env := newEnv(t)
	leaf := env.flatten(t, "Leaf", nil, Config{})

	methods, err := leaf.MemberMethods()
	require.NoError(t, err)
	assert.Equal(t, []string{"describe", "get", "rename", "set", "first"}, methodNames(methods))

	describe := findMethod(t, methods, "describe")
	assert.Equal(t, "Leaf", describe.Declaring.String())
	assert.Equal(t, []string{"@Marker"}, annotationNames(describe.Annotations))

	// Middle masks Base; the leaf mix-in wins over the Base mix-in, Base only fills gaps
	get := findMethod(t, methods, "get")
	assert.Equal(t, "Middle", get.Declaring.String())
	assert.Equal(t, "String", get.ReturnType.String())
	assert.Equal(t, []string{"@Json(name=g)", "@Inherited"}, annotationNames(get.Annotations))

	rename := findMethod(t, methods, "rename")
	assert.Equal(t, "Middle", rename.Declaring.String())
	assert.Empty(t, rename.Annotations.All())
	require.Len(t, rename.ParamAnnotations, 1)
	assert.Equal(t, []string{"@Inherited"}, annotationNames(rename.ParamAnnotations[0]))

	set := findMethod(t, methods, "set")
	assert.Nil(t, set.ReturnType)
	assert.Equal(t, "Base<String>", set.Declaring.String())
	require.Len(t, set.ArgumentTypes, 1)
	assert.Equal(t, "String", set.ArgumentTypes[0].String())
	assert.Equal(t, []string{"@Inherited", "@Marker"}, annotationNames(set.ParamAnnotations[0]))
	assert.Equal(t, "void Base.set(String)", set.String())

	first := findMethod(t, methods, "first")
	assert.Equal(t, "String", first.ReturnType.String())
	assert.Equal(t, "Base<String>", first.ArgumentTypes[0].String())
}

func TestMethodAnnotationDispositions(t *testing.T) {
	env := newEnv(t)

	type testCase struct {
		name        string
		annotations policy.Configuration
		get         []string
		renameParam []string
	}
	testCases := []testCase{
		{
			name:        "default defers to the kind",
			annotations: nil,
			get:         []string{"@Json(name=g)", "@Inherited"},
			renameParam: []string{"@Inherited"},
		},
		{
			name:        "inherit everything",
			annotations: policy.NewStdConfiguration(policy.IncludeAndInherit),
			get:         []string{"@Json(name=g)", "@Inherited", "@Marker"},
			renameParam: []string{"@Inherited", "@Marker"},
		},
		{
			name:        "no inheritance",
			annotations: policy.NewStdConfiguration(policy.IncludeNoInherit),
			get:         []string{"@Json(name=g)"},
			renameParam: []string{},
		},
		{
			name:        "nothing included",
			annotations: policy.NewStdConfiguration(policy.DontInclude),
			get:         []string{},
			renameParam: []string{},
		},
		{
			name:        "one kind dropped",
			annotations: policy.NewStdConfiguration(policy.IncludeIfInheritable).Set(env.kind("Json"), policy.DontInclude),
			get:         []string{"@Inherited"},
			renameParam: []string{"@Inherited"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			methods, err := env.flatten(t, "Leaf", tc.annotations, Config{}).MemberMethods()
			require.NoError(t, err)
			assert.Equal(t, tc.get, annotationNames(findMethod(t, methods, "get").Annotations))
			assert.Equal(t, tc.renameParam, annotationNames(findMethod(t, methods, "rename").ParamAnnotations[0]))
		})
	}
}

func TestIgnoreMixins(t *testing.T) {
	env := newEnv(t)
	leaf := env.flatten(t, "Leaf", nil, Config{IgnoreMixins: true})

	methods, err := leaf.MemberMethods()
	require.NoError(t, err)
	assert.Empty(t, findMethod(t, methods, "describe").Annotations.All())
	assert.Equal(t, []string{"@Inherited"}, annotationNames(findMethod(t, methods, "get").Annotations))

	fields, err := leaf.MemberFields()
	require.NoError(t, err)
	assert.Equal(t, []string{"@Json"}, annotationNames(fields[0].Annotations))
	assert.Empty(t, fields[1].Annotations.All())
}

func TestFilters(t *testing.T) {
	env := newEnv(t)
	leaf := env.flatten(t, "Leaf", nil, Config{
		FieldFilter: func(f types.RawField) bool {
			return f.Declaring.ErasedType().Name != "Leaf"
		},
		MethodFilter: func(m types.RawMethod) bool {
			return m.Name() != "get"
		},
		ConstructorFilter: func(types.RawConstructor) bool {
			return false
		},
	})

	methods, err := leaf.MemberMethods()
	require.NoError(t, err)
	assert.Equal(t, []string{"describe", "rename", "set", "first"}, methodNames(methods))

	fields, err := leaf.MemberFields()
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "Base<String>", fields[0].Declaring.String())
	assert.Equal(t, []string{"@Marker"}, annotationNames(fields[0].Annotations))

	statics, err := leaf.StaticFields()
	require.NoError(t, err)
	assert.Empty(t, statics)

	ctors, err := leaf.Constructors()
	require.NoError(t, err)
	assert.Empty(t, ctors)
}

func TestStatics(t *testing.T) {
	env := newEnv(t)
	leaf := env.flatten(t, "Leaf", nil, Config{})

	fields, err := leaf.StaticFields()
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "NAME", fields[0].Name())
	assert.True(t, fields[0].IsStatic())
	assert.Equal(t, []string{"@Marker"}, annotationNames(fields[0].Annotations))

	methods, err := leaf.StaticMethods()
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "of", methods[0].Name())
	assert.Equal(t, "Leaf", methods[0].ReturnType.String())
	assert.Equal(t, []string{"@Json"}, annotationNames(methods[0].Annotations))

	// statics of ancestors are not flattened
	base := env.flatten(t, "Base", nil, Config{})
	baseStatics, err := base.StaticMethods()
	require.NoError(t, err)
	require.Len(t, baseStatics, 1)
	assert.Equal(t, "Base<Object>", baseStatics[0].ReturnType.String())
}

func TestConstructors(t *testing.T) {
	env := newEnv(t)

	ctors, err := env.flatten(t, "Leaf", nil, Config{}).Constructors()
	require.NoError(t, err)
	require.Len(t, ctors, 1)
	assert.Equal(t, "Leaf(String)", ctors[0].String())
	assert.Equal(t, []string{"@Marker", "@Json"}, annotationNames(ctors[0].Annotations))

	baseCtors, err := env.flatten(t, "Base", nil, Config{}).Constructors()
	require.NoError(t, err)
	require.Len(t, baseCtors, 2)
	assert.Empty(t, baseCtors[0].ArgumentTypes)
	assert.Equal(t, "Object", baseCtors[1].ArgumentTypes[0].String())

	// constructors are never inherited
	middleCtors, err := env.flatten(t, "Middle", nil, Config{}).Constructors()
	require.NoError(t, err)
	assert.Empty(t, middleCtors)
}

func TestClassAnnotations(t *testing.T) {
	env := newEnv(t)

	anns, err := env.flatten(t, "Leaf", nil, Config{}).ClassAnnotations()
	require.NoError(t, err)
	assert.Equal(t, []string{"@Json", "@Inherited"}, annotationNames(anns))

	anns, err = env.flatten(t, "Base", nil, Config{}).ClassAnnotations()
	require.NoError(t, err)
	assert.Equal(t, []string{"@Inherited", "@Marker"}, annotationNames(anns))
}

func TestTopTypeLeftOut(t *testing.T) {
	env := newEnv(t)
	top := env.flatten(t, decl.TopTypeName, nil, Config{})

	assert.Zero(t, top.Hierarchy().Len())
	fields, err := top.StaticFields()
	require.NoError(t, err)
	assert.Empty(t, fields)
	ctors, err := top.Constructors()
	require.NoError(t, err)
	assert.Empty(t, ctors)
	anns, err := top.ClassAnnotations()
	require.NoError(t, err)
	assert.Zero(t, anns.Len())
}

func TestMembersAreMemoized(t *testing.T) {
	env := newEnv(t)
	leaf := env.flatten(t, "Leaf", nil, Config{})

	first, err := leaf.MemberMethods()
	require.NoError(t, err)
	second, err := leaf.MemberMethods()
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.Same(t, first[0], second[0])
}

func TestMemberKey(t *testing.T) {
	env := newEnv(t)
	base := env.u.MustLookup("Base")

	var set, rename *decl.Method
	for _, m := range base.Methods {
		switch m.Name {
		case "set":
			set = m
		case "rename":
			rename = m
		}
	}
	require.NotNil(t, set)
	require.NotNil(t, rename)

	assert.Equal(t, "set(Object)", MethodKey(env.u, set.Name, set.Params).String())
	assert.Equal(t, "rename(String)", MethodKey(env.u, rename.Name, rename.Params).String())
	assert.Equal(t, "value", FieldKey("value").String())
	assert.Equal(t, "<init>(Object)", ConstructorKey(env.u, base.Constructors[1].Params).String())
	assert.Equal(t, "<init>()", ConstructorKey(env.u, nil).String())

	assert.NotEqual(t, FieldKey("get"), MethodKey(env.u, "get", nil))
	assert.Equal(t, MethodKey(env.u, "get", nil), MethodKey(env.u, "get", []decl.Param{}))
}

func TestAnnotations(t *testing.T) {
	a := &decl.AnnotationKind{Name: "A"}
	b := &decl.AnnotationKind{Name: "B"}
	anns := NewAnnotations()

	anns.Add(decl.NewAnnotation(a, "v", "1"))
	assert.True(t, anns.AddAsDefault(decl.NewAnnotation(b)))
	assert.False(t, anns.AddAsDefault(decl.NewAnnotation(a, "v", "2")))
	anns.Add(decl.NewAnnotation(a, "v", "3"))

	assert.Equal(t, "[@A(v=3), @B]", anns.String())
	got, ok := anns.Get(a)
	require.True(t, ok)
	assert.Equal(t, "3", got.Value("v"))
	assert.True(t, anns.Has(b))
	assert.False(t, anns.Has(&decl.AnnotationKind{Name: "A"}))
}
