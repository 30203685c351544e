package policy

import (
	"strings"
	"testing"

	"github.com/cottand/genres/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestHandlerDispositions(t *testing.T) {
	inheritable := &decl.AnnotationKind{Name: "Inheritable", Inheritable: true}
	plain := &decl.AnnotationKind{Name: "Plain"}

	type testCase struct {
		inclusion  Inclusion
		kind       *decl.AnnotationKind
		includes   bool
		canInherit bool
	}

	testCases := []testCase{
		{DontInclude, plain, false, false},
		{DontInclude, inheritable, false, false},
		{IncludeNoInherit, plain, true, false},
		{IncludeNoInherit, inheritable, true, false},
		{IncludeAndInherit, plain, true, true},
		{IncludeAndInherit, inheritable, true, true},
		{IncludeIfInheritable, plain, true, false},
		{IncludeIfInheritable, inheritable, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.inclusion.String()+"/"+tc.kind.Name, func(t *testing.T) {
			h := NewHandler(NewStdConfiguration(DontInclude).Set(tc.kind, tc.inclusion))
			ann := decl.NewAnnotation(tc.kind)

			assert.Equal(t, tc.includes, h.IncludeClass(ann))
			assert.Equal(t, tc.includes, h.IncludeField(ann))
			assert.Equal(t, tc.includes, h.IncludeMethod(ann))
			assert.Equal(t, tc.includes, h.IncludeConstructor(ann))
			assert.Equal(t, tc.includes, h.IncludeParameter(ann))
			assert.Equal(t, tc.canInherit, h.ClassCanInherit(ann))
			assert.Equal(t, tc.canInherit, h.MethodCanInherit(ann))
			assert.Equal(t, tc.canInherit, h.ParameterCanInherit(ann))
		})
	}
}

// countingConfiguration differs per member kind and counts lookups
type countingConfiguration struct {
	calls int
}

func (c *countingConfiguration) InclusionForClass(*decl.AnnotationKind) Inclusion {
	c.calls++
	return IncludeAndInherit
}
func (c *countingConfiguration) InclusionForField(*decl.AnnotationKind) Inclusion {
	c.calls++
	return DontInclude
}
func (c *countingConfiguration) InclusionForMethod(*decl.AnnotationKind) Inclusion {
	c.calls++
	return IncludeAndInherit
}
func (c *countingConfiguration) InclusionForConstructor(*decl.AnnotationKind) Inclusion {
	c.calls++
	return IncludeNoInherit
}
func (c *countingConfiguration) InclusionForParameter(*decl.AnnotationKind) Inclusion {
	c.calls++
	return IncludeIfInheritable
}

func TestHandlerCachesPerMemberKind(t *testing.T) {
	config := &countingConfiguration{}
	h := NewHandler(config)
	ann := decl.NewAnnotation(&decl.AnnotationKind{Name: "A"})

	for range 3 {
		assert.False(t, h.IncludeField(ann))
		assert.True(t, h.MethodCanInherit(ann))
		assert.True(t, h.IncludeConstructor(ann))
		assert.False(t, h.ParameterCanInherit(ann))
		assert.True(t, h.ClassCanInherit(ann))
	}
	assert.Equal(t, 5, config.calls)
}

func TestInclusionText(t *testing.T) {
	for _, inclusion := range []Inclusion{DontInclude, IncludeNoInherit, IncludeAndInherit, IncludeIfInheritable} {
		text, err := inclusion.MarshalText()
		require.NoError(t, err)
		var parsed Inclusion
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, inclusion, parsed)
	}

	var table map[string]Inclusion
	require.NoError(t, yaml.Unmarshal([]byte("a: DontInclude\nb: IncludeIfInheritable\n"), &table))
	assert.Equal(t, map[string]Inclusion{"a": DontInclude, "b": IncludeIfInheritable}, table)

	assert.Error(t, yaml.Unmarshal([]byte("a: Sometimes\n"), &table))
	_, err := Inclusion(42).MarshalText()
	assert.Error(t, err)
}

func TestFromDocument(t *testing.T) {
	doc, err := decl.Load(strings.NewReader(`
annotations:
  - {name: Kept, inheritable: true}
  - {name: Dropped}
  - {name: Other}
types:
  - name: Target
  - name: MixIn
mixins:
  - {target: Target, overrides: [MixIn]}
inclusion:
  default: IncludeNoInherit
  kinds:
    Dropped: DontInclude
`))
	require.NoError(t, err)

	config, err := FromDocument(doc)
	require.NoError(t, err)
	kept, _ := doc.Universe.AnnotationKind("Kept")
	dropped, _ := doc.Universe.AnnotationKind("Dropped")
	other, _ := doc.Universe.AnnotationKind("Other")
	assert.Equal(t, IncludeNoInherit, config.InclusionForMethod(kept))
	assert.Equal(t, DontInclude, config.InclusionForField(dropped))
	assert.Equal(t, IncludeNoInherit, config.InclusionForParameter(other))

	overrides := OverridesFromDocument(doc)
	target := doc.Universe.MustLookup("Target")
	assert.Equal(t, []*decl.Class{doc.Universe.MustLookup("MixIn")}, overrides.MixInsFor(target))
	assert.Empty(t, overrides.MixInsFor(doc.Universe.MustLookup("MixIn")))
	assert.Empty(t, NoOverrides.MixInsFor(target))

	doc.Inclusion.Default = "Never"
	_, err = FromDocument(doc)
	assert.Error(t, err)
}
