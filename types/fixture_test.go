package types

import (
	"strings"
	"testing"

	"github.com/cottand/genres/decl"
	"github.com/hashicorp/go-set/v3"
	"github.com/stretchr/testify/require"
)

const fixture = `
types:
  - name: Comparable
    kind: interface
    params: [T]
  - name: Number
    abstract: true
  - name: Integer
    final: true
    extends: Number
    implements: ["Comparable<Integer>"]
  - name: String
    final: true
    implements: ["Comparable<String>"]
  - name: Collection
    kind: interface
    params: [E]
  - name: List
    kind: interface
    params: [E]
    implements: ["Collection<E>"]
  - name: ArrayList
    params: [E]
    implements: ["List<E>"]
  - name: StringList
    implements: ["List<String>"]
  - name: Map
    kind: interface
    params: [K, V]
  - name: Swapped
    params: [A, B]
    implements: ["Map<B, A>"]
  - name: ListMap
    params: [X, Y]
    implements: ["Map<X, List<Y>>"]
  - name: Pair
    params: [A, B]
  - name: BoundedPair
    params: [A, "B extends Number"]
  - name: Sorted
    params: ["T extends Comparable<T>"]
  - name: Enum
    abstract: true
    params: ["E extends Enum<E>"]
    implements: ["Comparable<E>"]
  - name: Color
    final: true
    extends: Enum<Color>
  - name: Node
    params: ["N extends Node<N>"]
  - name: Tree
    extends: Node<Tree>
  - name: Base
    params: [T]
    fields:
      - {name: value, type: T}
    methods:
      - {name: get, returns: T}
      - {name: set, params: [T]}
  - name: Middle
    params: [U]
    extends: Base<List<U>>
  - name: Leaf
    extends: Middle<String>
`

func loadFixture(t *testing.T) *decl.Universe {
	t.Helper()
	doc, err := decl.Load(strings.NewReader(fixture))
	require.NoError(t, err)
	return doc.Universe
}

func newTestResolver(t *testing.T, u *decl.Universe, strategy CacheStrategy) *Resolver {
	t.Helper()
	r, err := NewResolver(u, ResolverConfig{Cache: strategy})
	require.NoError(t, err)
	return r
}

// placeholdersIn collects every distinct placeholder reachable from t
func placeholdersIn(t ResolvedType) *set.Set[*RecursiveType] {
	found := set.New[*RecursiveType](2)
	visited := set.New[ResolvedType](16)
	var walk func(ResolvedType)
	walk = func(t ResolvedType) {
		if t == nil || !visited.Insert(t) {
			return
		}
		if p, ok := t.(*RecursiveType); ok {
			found.Insert(p)
			return
		}
		walk(t.ParentClass())
		walk(t.ArrayElementType())
		for _, iface := range t.ImplementedInterfaces() {
			walk(iface)
		}
		for _, arg := range t.TypeParameters() {
			walk(arg)
		}
	}
	walk(t)
	return found
}
