package decl

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cottand/genres/typeerr"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document is a loaded universe description: the classes themselves plus the
// declarative mix-in table and annotation inclusion settings that travel with them.
type Document struct {
	Universe *Universe
	// MixIns maps a target class to its overrides, highest precedence first
	MixIns map[*Class][]*Class
	// Inclusion holds disposition names as written, eg "IncludeAndInherit"
	Inclusion InclusionSettings
}

type InclusionSettings struct {
	Default string            `yaml:"default"`
	Kinds   map[string]string `yaml:"kinds"`
}

type documentSpec struct {
	Annotations []annotationSpec  `yaml:"annotations"`
	Types       []classSpec       `yaml:"types"`
	MixIns      []mixInSpec       `yaml:"mixins"`
	Inclusion   InclusionSettings `yaml:"inclusion"`
}

type annotationSpec struct {
	Name        string `yaml:"name"`
	Inheritable bool   `yaml:"inheritable"`
}

type classSpec struct {
	Name         string            `yaml:"name"`
	Kind         string            `yaml:"kind"`
	Abstract     bool              `yaml:"abstract"`
	Final        bool              `yaml:"final"`
	Params       []string          `yaml:"params"`
	Extends      string            `yaml:"extends"`
	Implements   []string          `yaml:"implements"`
	Annotations  []annotationUse   `yaml:"annotations"`
	Fields       []fieldSpec       `yaml:"fields"`
	Methods      []methodSpec      `yaml:"methods"`
	Constructors []constructorSpec `yaml:"constructors"`
}

type fieldSpec struct {
	Name        string          `yaml:"name"`
	Type        string          `yaml:"type"`
	Static      bool            `yaml:"static"`
	Annotations []annotationUse `yaml:"annotations"`
}

type methodSpec struct {
	Name        string          `yaml:"name"`
	Static      bool            `yaml:"static"`
	TypeParams  []string        `yaml:"typeParams"`
	Params      []paramSpec     `yaml:"params"`
	Returns     string          `yaml:"returns"`
	Annotations []annotationUse `yaml:"annotations"`
}

type constructorSpec struct {
	Params      []paramSpec     `yaml:"params"`
	Annotations []annotationUse `yaml:"annotations"`
}

type mixInSpec struct {
	Target    string   `yaml:"target"`
	Overrides []string `yaml:"overrides"`
}

// paramSpec accepts either a bare signature ('List<T>') or a mapping
type paramSpec struct {
	Name        string          `yaml:"name"`
	Type        string          `yaml:"type"`
	Annotations []annotationUse `yaml:"annotations"`
}

func (p *paramSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Type = value.Value
		return nil
	}
	type plain paramSpec
	return value.Decode((*plain)(p))
}

// annotationUse accepts either a bare name ('Marker') or a mapping with values
type annotationUse struct {
	Name   string            `yaml:"name"`
	Values map[string]string `yaml:"values"`
}

func (a *annotationUse) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		a.Name = value.Value
		return nil
	}
	type plain annotationUse
	return value.Decode((*plain)(a))
}

func LoadFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read universe file %s", path)
	}
	doc, err := Load(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrapf(err, "could not load universe file %s", path)
	}
	return doc, nil
}

// Load reads a YAML universe document.
//
// Classes are declared first and their signatures parsed afterwards,
// so types may refer to each other (and to themselves) in any order.
func Load(r io.Reader) (*Document, error) {
	var spec documentSpec
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return nil, typeerr.New(typeerr.NewLoad{Reason: err.Error()})
	}

	u := NewUniverse()
	for _, ann := range spec.Annotations {
		if err := u.DefineAnnotation(&AnnotationKind{Name: ann.Name, Inheritable: ann.Inheritable}); err != nil {
			return nil, err
		}
	}

	classes := make([]*Class, len(spec.Types))
	for i, cs := range spec.Types {
		class, err := declareClass(cs)
		if err != nil {
			return nil, err
		}
		if err := u.Define(class); err != nil {
			return nil, err
		}
		classes[i] = class
	}

	l := loader{u: u}
	for i, cs := range spec.Types {
		if err := l.fillClass(classes[i], cs); err != nil {
			return nil, err
		}
	}

	doc := &Document{
		Universe:  u,
		MixIns:    make(map[*Class][]*Class, len(spec.MixIns)),
		Inclusion: spec.Inclusion,
	}
	for _, ms := range spec.MixIns {
		target, err := l.lookup(ms.Target, "mixins")
		if err != nil {
			return nil, err
		}
		for _, name := range ms.Overrides {
			override, err := l.lookup(name, "mixins of "+ms.Target)
			if err != nil {
				return nil, err
			}
			doc.MixIns[target] = append(doc.MixIns[target], override)
		}
	}
	for name := range spec.Inclusion.Kinds {
		if _, ok := u.AnnotationKind(name); !ok {
			return nil, typeerr.New(typeerr.NewLoad{Where: "inclusion", Reason: fmt.Sprintf("unknown annotation '%s'", name)})
		}
	}
	return doc, nil
}

func declareClass(cs classSpec) (*Class, error) {
	class := &Class{Name: cs.Name}
	switch cs.Kind {
	case "", "class":
		class.Kind = KindClass
	case "interface":
		class.Kind = KindInterface
	default:
		return nil, typeerr.New(typeerr.NewLoad{Where: cs.Name, Reason: fmt.Sprintf("unknown kind '%s'", cs.Kind)})
	}
	if cs.Abstract {
		class.Modifiers |= Abstract
	}
	if cs.Final {
		class.Modifiers |= Final
	}
	return class, nil
}

type loader struct {
	u *Universe
}

func (l loader) lookup(name, where string) (*Class, error) {
	class, ok := l.u.Lookup(name)
	if !ok {
		return nil, typeerr.New(typeerr.NewLoad{Where: where, Reason: fmt.Sprintf("unknown type '%s'", name)})
	}
	return class, nil
}

func (l loader) fillClass(class *Class, cs classSpec) error {
	params, err := ParseTypeParams(l.u, cs.Params)
	if err != nil {
		return errors.Wrapf(err, "type parameters of %s", cs.Name)
	}
	class.TypeParams = params

	if cs.Extends != "" {
		if class.IsInterface() {
			return typeerr.New(typeerr.NewLoad{Where: cs.Name, Reason: "interfaces implement, they do not extend"})
		}
		super, err := Parse(l.u, cs.Extends, params...)
		if err != nil {
			return errors.Wrapf(err, "super class of %s", cs.Name)
		}
		class.Super = super
	}
	for _, text := range cs.Implements {
		iface, err := Parse(l.u, text, params...)
		if err != nil {
			return errors.Wrapf(err, "interfaces of %s", cs.Name)
		}
		class.Interfaces = append(class.Interfaces, iface)
	}
	if class.Annotations, err = l.annotations(cs.Annotations, cs.Name); err != nil {
		return err
	}

	for _, fs := range cs.Fields {
		where := cs.Name + "." + fs.Name
		t, err := Parse(l.u, fs.Type, params...)
		if err != nil {
			return errors.Wrapf(err, "field %s", where)
		}
		anns, err := l.annotations(fs.Annotations, where)
		if err != nil {
			return err
		}
		class.Fields = append(class.Fields, &Field{Name: fs.Name, Static: fs.Static, Type: t, Annotations: anns})
	}

	for _, ms := range cs.Methods {
		where := cs.Name + "." + ms.Name
		method := &Method{Name: ms.Name, Static: ms.Static}
		scope := params
		if len(ms.TypeParams) > 0 {
			if method.TypeParams, err = ParseTypeParams(l.u, ms.TypeParams, params...); err != nil {
				return errors.Wrapf(err, "type parameters of %s", where)
			}
			scope = append(append([]*TypeVar{}, params...), method.TypeParams...)
		}
		if method.Params, err = l.params(ms.Params, scope, where); err != nil {
			return err
		}
		if ms.Returns != "" && ms.Returns != "void" {
			if method.Return, err = Parse(l.u, ms.Returns, scope...); err != nil {
				return errors.Wrapf(err, "return type of %s", where)
			}
		}
		if method.Annotations, err = l.annotations(ms.Annotations, where); err != nil {
			return err
		}
		class.Methods = append(class.Methods, method)
	}

	for i, cons := range cs.Constructors {
		where := fmt.Sprintf("%s.%s#%d", cs.Name, ConstructorName, i)
		ctor := &Constructor{}
		if ctor.Params, err = l.params(cons.Params, params, where); err != nil {
			return err
		}
		if ctor.Annotations, err = l.annotations(cons.Annotations, where); err != nil {
			return err
		}
		class.Constructors = append(class.Constructors, ctor)
	}
	return nil
}

func (l loader) params(specs []paramSpec, scope []*TypeVar, where string) ([]Param, error) {
	params := make([]Param, len(specs))
	for i, ps := range specs {
		t, err := Parse(l.u, ps.Type, scope...)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d of %s", i, where)
		}
		anns, err := l.annotations(ps.Annotations, fmt.Sprintf("parameter %d of %s", i, where))
		if err != nil {
			return nil, err
		}
		params[i] = Param{Name: ps.Name, Type: t, Annotations: anns}
	}
	return params, nil
}

func (l loader) annotations(uses []annotationUse, where string) ([]Annotation, error) {
	if len(uses) == 0 {
		return nil, nil
	}
	anns := make([]Annotation, len(uses))
	for i, use := range uses {
		kind, ok := l.u.AnnotationKind(use.Name)
		if !ok {
			return nil, typeerr.New(typeerr.NewLoad{Where: where, Reason: fmt.Sprintf("unknown annotation '%s'", use.Name)})
		}
		anns[i] = Annotation{Kind: kind, Values: use.Values}
	}
	return anns, nil
}
