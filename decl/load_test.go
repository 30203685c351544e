package decl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cottand/genres/typeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = `
annotations:
  - name: JsonProperty
    inheritable: true
  - name: Deprecated
types:
  - name: Node
    abstract: true
    params: ["N extends Node<N>"]
    annotations: [Deprecated]
    fields:
      - name: parent
        type: N
      - name: COUNT
        type: int
        static: true
    methods:
      - name: children
        returns: List<N>
      - name: visit
        typeParams: ["R extends N"]
        params:
          - R
          - name: depth
            type: int
            annotations:
              - name: JsonProperty
                values: {value: depth}
        returns: R
    constructors:
      - params: [N]
        annotations: [Deprecated]
  - name: List
    kind: interface
    params: [E]
  - name: Tree
    final: true
    extends: Node<Tree>
    implements: ["List<Tree>"]
mixins:
  - target: Tree
    overrides: [TreeMixIn]
  - target: Node
    overrides: [TreeMixIn, List]
  - target: Node
    overrides: [Tree]
inclusion:
  default: IncludeAndInherit
  kinds:
    Deprecated: DontInclude
`

func TestLoad(t *testing.T) {
	doc, err := Load(strings.NewReader(strings.Replace(document, "types:\n", "types:\n  - name: TreeMixIn\n", 1)))
	require.NoError(t, err)
	u := doc.Universe

	node := u.MustLookup("Node")
	tree := u.MustLookup("Tree")
	list := u.MustLookup("List")
	mixin := u.MustLookup("TreeMixIn")

	assert.Equal(t, "class Node<N extends Node<N>> extends Object", node.Describe())
	assert.Equal(t, "class Tree extends Node<Tree> implements List<Tree>", tree.Describe())
	assert.Equal(t, "interface List<E>", list.Describe())
	assert.True(t, node.IsAbstract())
	assert.True(t, tree.IsFinal())
	assert.Same(t, u.Top(), mixin.Super)

	require.Len(t, node.Annotations, 1)
	assert.Equal(t, "@Deprecated", node.Annotations[0].String())

	require.Len(t, node.Fields, 2)
	assert.Same(t, node.TypeParams[0], node.Fields[0].Type)
	assert.True(t, node.Fields[1].Static)

	require.Len(t, node.Methods, 2)
	assert.Equal(t, "List<N> children()", node.Methods[0].String())
	visit := node.Methods[1]
	assert.Equal(t, "R visit(R, int)", visit.String())
	require.Len(t, visit.TypeParams, 1)
	assert.Same(t, node.TypeParams[0], visit.TypeParams[0].FirstBound())
	assert.Same(t, visit.TypeParams[0], visit.Params[0].Type)
	assert.Equal(t, "depth", visit.Params[1].Name)
	assert.Equal(t, "@JsonProperty(value=depth)", visit.Params[1].Annotations[0].String())

	require.Len(t, node.Constructors, 1)
	assert.Equal(t, "<init>(N)", node.Constructors[0].String())

	assert.Equal(t, []*Class{mixin}, doc.MixIns[tree])
	assert.Equal(t, []*Class{mixin, list, tree}, doc.MixIns[node])
	assert.Equal(t, "IncludeAndInherit", doc.Inclusion.Default)
	assert.Equal(t, "DontInclude", doc.Inclusion.Kinds["Deprecated"])

	kind, ok := u.AnnotationKind("JsonProperty")
	require.True(t, ok)
	assert.True(t, kind.Inheritable)
}

func TestLoadErrors(t *testing.T) {
	type testCase struct {
		name string
		doc  string
	}

	testCases := []testCase{
		{"unknown type in extends", "types:\n  - name: A\n    extends: B\n"},
		{"unknown annotation", "types:\n  - name: A\n    annotations: [Nope]\n"},
		{"unknown field type", "types:\n  - name: A\n    fields: [{name: f, type: Nope}]\n"},
		{"unknown mixin", "types:\n  - name: A\nmixins:\n  - {target: A, overrides: [B]}\n"},
		{"unknown inclusion kind", "inclusion:\n  kinds: {Nope: DontInclude}\n"},
		{"duplicate class", "types:\n  - name: A\n  - name: A\n"},
		{"redefined builtin", "types:\n  - name: Object\n"},
		{"unknown kind", "types:\n  - name: A\n    kind: enum\n"},
		{"interface extending", "types:\n  - name: I\n    kind: interface\n    extends: Object\n"},
		{"unknown key", "types:\n  - name: A\n    extend: Object\n"},
		{"not yaml", "types: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.doc))
			require.Error(t, err)
			assert.True(t, typeerr.Is(err, typeerr.Load), "unexpected error %v", err)
		})
	}
}

func TestLoadEmpty(t *testing.T) {
	doc, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Len(t, doc.Universe.Classes(), 1+len(PrimitiveNames))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("types:\n  - name: A\n  - name: B\n    extends: A\n"), 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	b := doc.Universe.MustLookup("B")
	assert.Same(t, doc.Universe.MustLookup("A"), b.Super)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
