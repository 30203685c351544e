// Package members flattens the fields, methods and constructors of a resolved type
// across its hierarchy, with member types substituted and annotations merged.
package members

import (
	"log/slog"

	"github.com/cottand/genres/decl"
	"github.com/cottand/genres/hierarchy"
	"github.com/cottand/genres/internal/log"
	"github.com/cottand/genres/policy"
	"github.com/cottand/genres/types"
	"github.com/cottand/genres/util"
	"github.com/pkg/errors"
)

type Config struct {
	IncludeTopType bool
	IgnoreMixins   bool
	// Filters drop declared members before flattening; nil keeps everything.
	// They never see mix-in members.
	FieldFilter       func(types.RawField) bool
	MethodFilter      func(types.RawMethod) bool
	ConstructorFilter func(types.RawConstructor) bool
	Logger            *slog.Logger
}

type MemberResolver struct {
	resolver *types.Resolver
	cfg      Config
	logger   *slog.Logger
}

func NewMemberResolver(resolver *types.Resolver, cfg Config) *MemberResolver {
	return &MemberResolver{
		resolver: resolver,
		cfg:      cfg,
		logger:   log.Section(cfg.Logger, "members"),
	}
}

// Resolve linearizes leaf and prepares its members. Nothing beyond the hierarchy
// is computed until one of the accessors of the result asks for it.
// A nil annotations configuration includes every annotation, inheriting the inheritable ones.
func (m *MemberResolver) Resolve(leaf types.ResolvedType, annotations policy.Configuration, overrides policy.Overrides) (*TypeWithMembers, error) {
	if annotations == nil {
		annotations = policy.NewStdConfiguration(policy.IncludeIfInheritable)
	}
	h, err := hierarchy.Linearize(m.resolver, leaf, overrides, hierarchy.Config{
		IncludeTopType: m.cfg.IncludeTopType,
		IgnoreMixins:   m.cfg.IgnoreMixins,
		Logger:         m.cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &TypeWithMembers{
		main:      leaf,
		hierarchy: h,
		resolver:  m.resolver,
		handler:   policy.NewHandler(annotations),
		cfg:       m.cfg,
		logger:    m.logger,
	}, nil
}

// lazy memoizes the first outcome of compute, error included
type lazy[T any] struct {
	done  bool
	value T
	err   error
}

func (l *lazy[T]) get(compute func() (T, error)) (T, error) {
	if !l.done {
		l.value, l.err = compute()
		l.done = true
	}
	return l.value, l.err
}

// TypeWithMembers is a resolved type with its flattened members.
// It is not safe for concurrent use.
type TypeWithMembers struct {
	main      types.ResolvedType
	hierarchy *hierarchy.Hierarchy
	resolver  *types.Resolver
	handler   *policy.Handler
	cfg       Config
	logger    *slog.Logger

	memberFields     lazy[[]*ResolvedField]
	staticFields     lazy[[]*ResolvedField]
	memberMethods    lazy[[]*ResolvedMethod]
	staticMethods    lazy[[]*ResolvedMethod]
	constructors     lazy[[]*ResolvedConstructor]
	classAnnotations lazy[*Annotations]
}

func (t *TypeWithMembers) MainType() types.ResolvedType    { return t.main }
func (t *TypeWithMembers) Hierarchy() *hierarchy.Hierarchy { return t.hierarchy }
func (t *TypeWithMembers) universe() *decl.Universe        { return t.resolver.Universe() }

func (t *TypeWithMembers) MemberFields() ([]*ResolvedField, error) {
	return t.memberFields.get(t.resolveMemberFields)
}

func (t *TypeWithMembers) StaticFields() ([]*ResolvedField, error) {
	return t.staticFields.get(t.resolveStaticFields)
}

func (t *TypeWithMembers) MemberMethods() ([]*ResolvedMethod, error) {
	return t.memberMethods.get(t.resolveMemberMethods)
}

func (t *TypeWithMembers) StaticMethods() ([]*ResolvedMethod, error) {
	return t.staticMethods.get(t.resolveStaticMethods)
}

func (t *TypeWithMembers) Constructors() ([]*ResolvedConstructor, error) {
	return t.constructors.get(t.resolveConstructors)
}

// ClassAnnotations merges the annotations of the leaf with those of its mix-ins,
// then fills gaps with inheritable annotations of its ancestors, nearest first
func (t *TypeWithMembers) ClassAnnotations() (*Annotations, error) {
	return t.classAnnotations.get(t.resolveClassAnnotations)
}

func (t *TypeWithMembers) resolveClassAnnotations() (*Annotations, error) {
	anns := NewAnnotations()
	main, ok := t.hierarchy.MainType()
	if !ok {
		return anns, nil
	}
	for _, entry := range t.hierarchy.MainTypeAndOverrides() {
		for _, ann := range entry.ErasedType().Annotations {
			if t.handler.IncludeClass(ann) {
				anns.Add(ann)
			}
		}
	}
	for entry := range util.Reverse(t.hierarchy.Types()[:main.Rank]) {
		for _, ann := range entry.ErasedType().Annotations {
			if t.handler.ClassCanInherit(ann) {
				anns.AddAsDefault(ann)
			}
		}
	}
	return anns, nil
}

func (t *TypeWithMembers) resolveMemberFields() ([]*ResolvedField, error) {
	var fields []*ResolvedField
	slots := make(map[string]int)
	for _, entry := range t.hierarchy.Types() {
		if entry.Mixin {
			for _, raw := range entry.Type.MemberFields() {
				if i, ok := slots[raw.Name()]; ok {
					t.overrideField(fields[i], raw.Field)
				}
			}
			continue
		}
		for _, raw := range entry.Type.MemberFields() {
			if t.cfg.FieldFilter != nil && !t.cfg.FieldFilter(raw) {
				continue
			}
			field, err := t.newField(raw)
			if err != nil {
				return nil, err
			}
			if i, ok := slots[raw.Name()]; ok {
				fields[i] = field
				continue
			}
			slots[raw.Name()] = len(fields)
			fields = append(fields, field)
		}
	}
	t.logger.Debug("member fields", "type", t.main, "count", len(fields))
	return fields, nil
}

func (t *TypeWithMembers) resolveStaticFields() ([]*ResolvedField, error) {
	main, ok := t.hierarchy.MainType()
	if !ok {
		return nil, nil
	}
	var fields []*ResolvedField
	byName := make(map[string]*ResolvedField)
	for _, raw := range main.Type.StaticFields() {
		if t.cfg.FieldFilter != nil && !t.cfg.FieldFilter(raw) {
			continue
		}
		field, err := t.newField(raw)
		if err != nil {
			return nil, err
		}
		byName[raw.Name()] = field
		fields = append(fields, field)
	}
	for _, mixin := range t.hierarchy.OverridesOnly() {
		for _, raw := range mixin.Type.StaticFields() {
			if field, ok := byName[raw.Name()]; ok {
				t.overrideField(field, raw.Field)
			}
		}
	}
	return fields, nil
}

func (t *TypeWithMembers) newField(raw types.RawField) (*ResolvedField, error) {
	fieldType, err := t.resolver.ResolveIn(raw.Declaring.TypeBindings(), raw.Field.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "field %s.%s", raw.Declaring, raw.Name())
	}
	field := &ResolvedField{Declaring: raw.Declaring, Field: raw.Field, Type: fieldType, Annotations: NewAnnotations()}
	t.overrideField(field, raw.Field)
	return field, nil
}

func (t *TypeWithMembers) overrideField(field *ResolvedField, from *decl.Field) {
	for _, ann := range from.Annotations {
		if t.handler.IncludeField(ann) {
			field.Annotations.Add(ann)
		}
	}
}

// pendingMixIn collects annotations of mix-in methods met before the method they apply to
type pendingMixIn struct {
	annotatedParams
}

func (t *TypeWithMembers) resolveMemberMethods() ([]*ResolvedMethod, error) {
	var methods []*ResolvedMethod
	byKey := make(map[MemberKey]*ResolvedMethod)
	pending := make(map[MemberKey]*pendingMixIn)

	for entry := range util.Reverse(t.hierarchy.Types()) {
		for _, raw := range entry.Type.MemberMethods() {
			if !entry.Mixin && t.cfg.MethodFilter != nil && !t.cfg.MethodFilter(raw) {
				continue
			}
			key := MethodKey(t.universe(), raw.Name(), raw.Method.Params)
			if existing, ok := byKey[key]; ok {
				t.inheritMethod(&existing.annotatedParams, raw.Method.Annotations, raw.Method.Params)
				continue
			}
			if entry.Mixin {
				t.bufferMixIn(pending, key, raw.Method.Annotations, raw.Method.Params)
				continue
			}
			method, err := t.newMethod(raw)
			if err != nil {
				return nil, err
			}
			if mixin, ok := pending[key]; ok {
				applyOverrides(&method.annotatedParams, &mixin.annotatedParams)
				delete(pending, key)
			}
			byKey[key] = method
			methods = append(methods, method)
		}
	}
	for key := range pending {
		t.logger.Debug("mix-in method matches nothing", "type", t.main, "method", key)
	}
	t.logger.Debug("member methods", "type", t.main, "count", len(methods))
	return methods, nil
}

func (t *TypeWithMembers) bufferMixIn(pending map[MemberKey]*pendingMixIn, key MemberKey, anns []decl.Annotation, params []decl.Param) {
	mixin, ok := pending[key]
	if !ok {
		mixin = &pendingMixIn{newAnnotatedParams(len(params))}
		pending[key] = mixin
	}
	for _, ann := range anns {
		if t.handler.IncludeMethod(ann) {
			mixin.Annotations.AddAsDefault(ann)
		}
	}
	for i, p := range params {
		for _, ann := range p.Annotations {
			if t.handler.IncludeParameter(ann) {
				mixin.ParamAnnotations[i].AddAsDefault(ann)
			}
		}
	}
}

// inheritMethod fills gaps in an already materialized method with the inheritable
// annotations of a masked declaration or a lower precedence mix-in
func (t *TypeWithMembers) inheritMethod(into *annotatedParams, anns []decl.Annotation, params []decl.Param) {
	for _, ann := range anns {
		if t.handler.MethodCanInherit(ann) {
			into.Annotations.AddAsDefault(ann)
		}
	}
	for i, p := range params {
		for _, ann := range p.Annotations {
			if t.handler.ParameterCanInherit(ann) {
				into.ParamAnnotations[i].AddAsDefault(ann)
			}
		}
	}
}

func applyOverrides(into, from *annotatedParams) {
	for _, ann := range from.Annotations.All() {
		into.Annotations.Add(ann)
	}
	for i, params := range from.ParamAnnotations {
		for _, ann := range params.All() {
			into.ParamAnnotations[i].Add(ann)
		}
	}
}

func (t *TypeWithMembers) resolveStaticMethods() ([]*ResolvedMethod, error) {
	main, ok := t.hierarchy.MainType()
	if !ok {
		return nil, nil
	}
	var methods []*ResolvedMethod
	byKey := make(map[MemberKey]*ResolvedMethod)
	for _, raw := range main.Type.StaticMethods() {
		if t.cfg.MethodFilter != nil && !t.cfg.MethodFilter(raw) {
			continue
		}
		method, err := t.newMethod(raw)
		if err != nil {
			return nil, err
		}
		byKey[MethodKey(t.universe(), raw.Name(), raw.Method.Params)] = method
		methods = append(methods, method)
	}
	for _, mixin := range t.hierarchy.OverridesOnly() {
		for _, raw := range mixin.Type.StaticMethods() {
			if method, ok := byKey[MethodKey(t.universe(), raw.Name(), raw.Method.Params)]; ok {
				t.overrideMethod(&method.annotatedParams, raw.Method.Annotations, raw.Method.Params, t.handler.IncludeMethod)
			}
		}
	}
	return methods, nil
}

func (t *TypeWithMembers) newMethod(raw types.RawMethod) (*ResolvedMethod, error) {
	bindings := raw.Declaring.TypeBindings()
	method := &ResolvedMethod{
		Declaring:       raw.Declaring,
		Method:          raw.Method,
		annotatedParams: newAnnotatedParams(len(raw.Method.Params)),
	}
	if raw.Method.Return != nil {
		ret, err := t.resolver.ResolveIn(bindings, raw.Method.Return)
		if err != nil {
			return nil, errors.Wrapf(err, "return type of %s.%s", raw.Declaring, raw.Name())
		}
		method.ReturnType = ret
	}
	args, err := t.resolveArguments(bindings, raw.Method.Params)
	if err != nil {
		return nil, errors.Wrapf(err, "arguments of %s.%s", raw.Declaring, raw.Name())
	}
	method.ArgumentTypes = args
	t.overrideMethod(&method.annotatedParams, raw.Method.Annotations, raw.Method.Params, t.handler.IncludeMethod)
	return method, nil
}

// overrideMethod adds every included annotation of a declaration, replacing those of the same kind
func (t *TypeWithMembers) overrideMethod(into *annotatedParams, anns []decl.Annotation, params []decl.Param, include func(decl.Annotation) bool) {
	for _, ann := range anns {
		if include(ann) {
			into.Annotations.Add(ann)
		}
	}
	for i, p := range params {
		for _, ann := range p.Annotations {
			if t.handler.IncludeParameter(ann) {
				into.ParamAnnotations[i].Add(ann)
			}
		}
	}
}

func (t *TypeWithMembers) resolveArguments(bindings *types.TypeBindings, params []decl.Param) ([]types.ResolvedType, error) {
	args := make([]types.ResolvedType, len(params))
	for i, p := range params {
		arg, err := t.resolver.ResolveIn(bindings, p.Type)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

func (t *TypeWithMembers) resolveConstructors() ([]*ResolvedConstructor, error) {
	main, ok := t.hierarchy.MainType()
	if !ok {
		return nil, nil
	}
	var ctors []*ResolvedConstructor
	byKey := make(map[MemberKey]*ResolvedConstructor)
	for _, raw := range main.Type.Constructors() {
		if t.cfg.ConstructorFilter != nil && !t.cfg.ConstructorFilter(raw) {
			continue
		}
		args, err := t.resolveArguments(raw.Declaring.TypeBindings(), raw.Constructor.Params)
		if err != nil {
			return nil, errors.Wrapf(err, "constructor of %s", raw.Declaring)
		}
		ctor := &ResolvedConstructor{
			Declaring:       raw.Declaring,
			Constructor:     raw.Constructor,
			ArgumentTypes:   args,
			annotatedParams: newAnnotatedParams(len(raw.Constructor.Params)),
		}
		t.overrideMethod(&ctor.annotatedParams, raw.Constructor.Annotations, raw.Constructor.Params, t.handler.IncludeConstructor)
		byKey[ConstructorKey(t.universe(), raw.Constructor.Params)] = ctor
		ctors = append(ctors, ctor)
	}
	for _, mixin := range t.hierarchy.OverridesOnly() {
		for _, raw := range mixin.Type.Constructors() {
			if ctor, ok := byKey[ConstructorKey(t.universe(), raw.Constructor.Params)]; ok {
				t.overrideMethod(&ctor.annotatedParams, raw.Constructor.Annotations, raw.Constructor.Params, t.handler.IncludeConstructor)
			}
		}
	}
	return ctors, nil
}
