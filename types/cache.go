package types

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/genres/decl"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultCacheEntries is the cache size used when ResolverConfig.MaxEntries is not set
const DefaultCacheEntries = 200

type CacheStrategy uint8

const (
	// CacheLRU evicts the least recently used entry, every access holds one lock
	CacheLRU CacheStrategy = iota
	// CacheConcurrent reads without locking and clears the whole table when it overflows
	CacheConcurrent
)

func (s CacheStrategy) String() string {
	switch s {
	case CacheLRU:
		return "lru"
	case CacheConcurrent:
		return "concurrent"
	default:
		return fmt.Sprintf("CacheStrategy(%d)", uint8(s))
	}
}

func ParseCacheStrategy(name string) (CacheStrategy, error) {
	switch strings.ToLower(name) {
	case "", "lru":
		return CacheLRU, nil
	case "concurrent":
		return CacheConcurrent, nil
	default:
		return 0, fmt.Errorf("unknown cache strategy '%s', expected lru or concurrent", name)
	}
}

// Key identifies a resolved type by its erased class and its type arguments.
// Raw keys stand for the class used without arguments.
type Key struct {
	erased *decl.Class
	args   []ResolvedType
	raw    bool
	id     string
	hash   uint64
}

func NewKey(erased *decl.Class, args []ResolvedType) Key {
	sb := &strings.Builder{}
	sb.WriteString(erased.Name)
	sb.WriteByte('<')
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeCanonical(sb, arg)
	}
	sb.WriteByte('>')
	h := fnv.New64a()
	h.Write([]byte(erased.Name))
	for _, arg := range args {
		writeUint64(h, arg.Hash())
	}
	return Key{erased: erased, args: args, id: sb.String(), hash: h.Sum64()}
}

func RawKey(erased *decl.Class) Key {
	h := fnv.New64a()
	h.Write([]byte(erased.Name))
	h.Write([]byte{0})
	return Key{erased: erased, raw: true, id: erased.Name + "#raw", hash: h.Sum64()}
}

func (k Key) Erased() *decl.Class { return k.erased }
func (k Key) Hash() uint64        { return k.hash }
func (k Key) String() string      { return k.id }

func (k Key) Equal(other Key) bool {
	if k.erased != other.erased || k.raw != other.raw || len(k.args) != len(other.args) {
		return false
	}
	for i := range k.args {
		if !Equal(k.args[i], other.args[i]) {
			return false
		}
	}
	return true
}

// cacheable reports whether the key may be stored: none of its arguments may be,
// or contain, a placeholder still waiting for its type
func (k Key) cacheable() bool {
	for _, arg := range k.args {
		if _, ok := arg.(*RecursiveType); ok {
			return false
		}
		if hasPendingPlaceholder(arg) {
			return false
		}
	}
	return true
}

func hasPendingPlaceholder(t ResolvedType) bool {
	switch t := t.(type) {
	case *RecursiveType:
		return t.IsPending()
	case *ArrayType:
		return hasPendingPlaceholder(t.element)
	default:
		for _, arg := range t.TypeParameters() {
			if hasPendingPlaceholder(arg) {
				return true
			}
		}
		return false
	}
}

// writeCanonical renders t unambiguously: placeholders are marked with '^'
func writeCanonical(sb *strings.Builder, t ResolvedType) {
	switch t := t.(type) {
	case *RecursiveType:
		sb.WriteByte('^')
		sb.WriteString(t.erased.Name)
	case *ArrayType:
		writeCanonical(sb, t.element)
		sb.WriteString("[]")
	default:
		sb.WriteString(t.ErasedType().Name)
		args := t.TypeParameters()
		if len(args) == 0 {
			return
		}
		sb.WriteByte('<')
		for i, arg := range args {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonical(sb, arg)
		}
		sb.WriteByte('>')
	}
}

// ResolvedTypeCache stores fully constructed types. Implementations are safe for concurrent use.
type ResolvedTypeCache interface {
	Find(key Key) (ResolvedType, bool)
	Put(key Key, t ResolvedType)
	Len() int
}

func NewCache(strategy CacheStrategy, maxEntries int) (ResolvedTypeCache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	switch strategy {
	case CacheLRU:
		return newLRUCache(maxEntries)
	case CacheConcurrent:
		return newConcurrentCache(maxEntries), nil
	default:
		return nil, fmt.Errorf("unknown cache strategy %v", strategy)
	}
}

type cacheEntry struct {
	key Key
	t   ResolvedType
}

type lruCache struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, cacheEntry]
}

func newLRUCache(maxEntries int) (*lruCache, error) {
	lru, err := simplelru.NewLRU[string, cacheEntry](maxEntries, nil)
	if err != nil {
		return nil, err
	}
	return &lruCache{lru: lru}, nil
}

func (c *lruCache) Find(key Key) (ResolvedType, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Get(key.id)
	if !ok || !entry.key.Equal(key) {
		return nil, false
	}
	return entry.t, true
}

func (c *lruCache) Put(key Key, t ResolvedType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key.id, cacheEntry{key: key, t: t})
}

func (c *lruCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

type keyHasher struct{}

func (keyHasher) Hash(key Key) uint32  { return uint32(key.hash ^ key.hash>>32) }
func (keyHasher) Equal(a, b Key) bool { return a.Equal(b) }

var _ immutable.Hasher[Key] = keyHasher{}

type concurrentCache struct {
	maxEntries int
	table      atomic.Pointer[immutable.Map[Key, ResolvedType]]
	// writeMu serialises writers; readers only load table
	writeMu sync.Mutex
}

func newConcurrentCache(maxEntries int) *concurrentCache {
	c := &concurrentCache{maxEntries: maxEntries}
	c.table.Store(immutable.NewMap[Key, ResolvedType](keyHasher{}))
	return c
}

func (c *concurrentCache) Find(key Key) (ResolvedType, bool) {
	return c.table.Load().Get(key)
}

func (c *concurrentCache) Put(key Key, t ResolvedType) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	table := c.table.Load()
	if _, ok := table.Get(key); ok {
		return
	}
	if table.Len() >= c.maxEntries {
		table = immutable.NewMap[Key, ResolvedType](keyHasher{})
	}
	c.table.Store(table.Set(key, t))
}

func (c *concurrentCache) Len() int {
	return c.table.Load().Len()
}
