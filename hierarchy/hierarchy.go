// Package hierarchy lays out the ancestry of a resolved type as a single list,
// most general type first, with mix-ins injected after the types they target.
package hierarchy

import (
	"fmt"
	"log/slog"

	"github.com/cottand/genres/decl"
	"github.com/cottand/genres/internal/log"
	"github.com/cottand/genres/policy"
	"github.com/cottand/genres/types"
	"github.com/cottand/genres/util"
	"github.com/hashicorp/go-set/v3"
)

type Config struct {
	// IncludeTopType keeps the top type in the list, as its first entry
	IncludeTopType bool
	// IgnoreMixins skips the overrides entirely
	IgnoreMixins bool
	Logger       *slog.Logger
}

// HierarchicType is one entry of a Hierarchy. Rank is the position of the entry,
// so higher ranks take precedence over lower ones.
type HierarchicType struct {
	Type  types.ResolvedType
	Mixin bool
	Rank  int
}

func (h HierarchicType) ErasedType() *decl.Class { return h.Type.ErasedType() }

func (h HierarchicType) String() string {
	if h.Mixin {
		return fmt.Sprintf("%d %s (mix-in)", h.Rank, h.Type)
	}
	return fmt.Sprintf("%d %s", h.Rank, h.Type)
}

// Hierarchy is the linearized ancestry of a leaf type, in ascending precedence.
// It is not safe for concurrent use.
type Hierarchy struct {
	entries  []HierarchicType
	mainRank int
}

// Linearize walks leaf's ancestry depth first: the type itself, its interfaces in
// declaration order, then its super class. Each erased class is recorded once, on first visit.
// The list is then reversed and each entry followed by its mix-ins, resolved raw.
// MixInsFor lists a target's mix-ins highest precedence first; they are inserted in
// the reverse of that order, so the highest precedence mix-in comes last and Types
// stays in ascending precedence throughout.
func Linearize(resolver *types.Resolver, leaf types.ResolvedType, overrides policy.Overrides, cfg Config) (*Hierarchy, error) {
	if overrides == nil {
		overrides = policy.NoOverrides
	}
	logger := log.Section(cfg.Logger, "hierarchy")
	top := resolver.Universe().Top()
	seen := set.New[*decl.Class](16)

	var leafFirst []types.ResolvedType
	var collect func(t types.ResolvedType)
	collect = func(t types.ResolvedType) {
		if t == nil {
			return
		}
		erased := t.ErasedType()
		if erased == top && !cfg.IncludeTopType {
			return
		}
		if !seen.Insert(erased) {
			return
		}
		leafFirst = append(leafFirst, t)
		for _, iface := range t.ImplementedInterfaces() {
			collect(iface)
		}
		collect(t.ParentClass())
	}
	collect(leaf)

	h := &Hierarchy{entries: make([]HierarchicType, 0, len(leafFirst)), mainRank: -1}
	for i := len(leafFirst) - 1; i >= 0; i-- {
		t := leafFirst[i]
		if i == 0 {
			h.mainRank = len(h.entries)
		}
		h.entries = append(h.entries, HierarchicType{Type: t, Rank: len(h.entries)})
		if cfg.IgnoreMixins {
			continue
		}
		for class := range util.Reverse(overrides.MixInsFor(t.ErasedType())) {
			if !seen.Insert(class) {
				logger.Debug("mix-in already in hierarchy", "mixin", class.Name, "target", t)
				continue
			}
			mixin, err := resolver.Resolve(class)
			if err != nil {
				return nil, err
			}
			h.entries = append(h.entries, HierarchicType{Type: mixin, Mixin: true, Rank: len(h.entries)})
		}
	}
	logger.Debug("linearized", "leaf", leaf, "entries", len(h.entries))
	return h, nil
}

// Types returns every entry, lowest precedence first
func (h *Hierarchy) Types() []HierarchicType { return h.entries }

func (h *Hierarchy) Len() int { return len(h.entries) }

// MainType returns the entry of the leaf type. The leaf is only missing when it is
// the top type and the top type was left out.
func (h *Hierarchy) MainType() (HierarchicType, bool) {
	if h.mainRank < 0 {
		return HierarchicType{}, false
	}
	return h.entries[h.mainRank], true
}

// MainTypeAndOverrides returns the leaf followed by the mix-ins injected after it
func (h *Hierarchy) MainTypeAndOverrides() []HierarchicType {
	if h.mainRank < 0 {
		return nil
	}
	return h.entries[h.mainRank:]
}

// OverridesOnly returns the mix-ins injected after the leaf, in ascending precedence
func (h *Hierarchy) OverridesOnly() []HierarchicType {
	if h.mainRank < 0 {
		return nil
	}
	return h.entries[h.mainRank+1:]
}
