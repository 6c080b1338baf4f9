// Package manifest describes Targets, their members and their bindings in
// YAML so they can be assembled without writing Go.
package manifest

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/interpose/internal/errx"
	"github.com/jingkaihe/interpose/pkg/member"
)

// Extend selects which facade a type body gets.
type Extend string

const (
	ExtendNone           Extend = "none"
	ExtendAnnotation     Extend = "annotation"
	ExtendDecorator      Extend = "decorator"
	ExtendLazyAnnotation Extend = "lazy_annotation"
	ExtendLazyDecorator  Extend = "lazy_decorator"
)

func (e Extend) valid() bool {
	switch e {
	case "", ExtendNone, ExtendAnnotation, ExtendDecorator, ExtendLazyAnnotation, ExtendLazyDecorator:
		return true
	}
	return false
}

// Lazy reports whether bindings are deferred until the body completes.
func (e Extend) Lazy() bool {
	return e == ExtendLazyAnnotation || e == ExtendLazyDecorator
}

// Kind is the binding kind the facade records, or false for ExtendNone.
func (e Extend) Kind() (member.Kind, bool) {
	switch e {
	case ExtendAnnotation, ExtendLazyAnnotation:
		return member.KindAnnotation, true
	case ExtendDecorator, ExtendLazyDecorator:
		return member.KindDecorator, true
	}
	return member.KindInterceptor, false
}

type Manifest struct {
	Types []TypeSpec `yaml:"types" json:"types"`
}

// TypeSpec is one class body. Several specs with the same name reopen the
// same Target in document order.
type TypeSpec struct {
	Name   string      `yaml:"name" json:"name"`
	Extend Extend      `yaml:"extend,omitempty" json:"extend,omitempty"`
	Body   []Statement `yaml:"body" json:"body"`
}

// Statement holds exactly one of its fields.
type Statement struct {
	Def      *Def     `yaml:"def,omitempty" json:"def,omitempty"`
	Annotate *Binding `yaml:"annotate,omitempty" json:"annotate,omitempty"`
	Decorate *Binding `yaml:"decorate,omitempty" json:"decorate,omitempty"`
	Undef    *Undef   `yaml:"undef,omitempty" json:"undef,omitempty"`
}

// Def defines a member with one built-in body.
type Def struct {
	Name   string `yaml:"name" json:"name"`
	Static bool   `yaml:"static,omitempty" json:"static,omitempty"`

	Return    *string   `yaml:"return,omitempty" json:"return,omitempty"`
	Transform Transform `yaml:"transform,omitempty" json:"transform,omitempty"`
	Template  string    `yaml:"template,omitempty" json:"template,omitempty"`
	Echo      bool      `yaml:"echo,omitempty" json:"echo,omitempty"`
}

func (d *Def) Level() member.Level {
	if d.Static {
		return member.LevelStatic
	}
	return member.LevelInstance
}

type Binding struct {
	Method string `yaml:"method" json:"method"`
	With   string `yaml:"with" json:"with"`
}

type Undef struct {
	Name   string `yaml:"name" json:"name"`
	Static bool   `yaml:"static,omitempty" json:"static,omitempty"`
}

func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errx.Wrap(ErrDecodeManifest, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a single YAML document. Unknown fields are rejected.
func Load(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, errx.Wrap(ErrDecodeManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) Validate() error {
	for i, ts := range m.Types {
		if ts.Name == "" {
			return errx.With(ErrDecodeManifest, ": types[%d] has no name", i)
		}
		if !ts.Extend.valid() {
			return errx.With(ErrUnknownExtend, " %q on %s", ts.Extend, ts.Name)
		}
		for j, st := range ts.Body {
			if err := st.validate(); err != nil {
				return errx.With(err, " (%s body[%d])", ts.Name, j)
			}
		}
	}
	return nil
}

func (s Statement) validate() error {
	set := 0
	for _, ok := range []bool{s.Def != nil, s.Annotate != nil, s.Decorate != nil, s.Undef != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return errx.With(ErrUnknownStatement, ": want exactly one of def, annotate, decorate, undef")
	}

	switch {
	case s.Def != nil:
		return s.Def.validate()
	case s.Annotate != nil:
		return s.Annotate.validate("annotate")
	case s.Decorate != nil:
		return s.Decorate.validate("decorate")
	default:
		if s.Undef.Name == "" {
			return errx.With(ErrUnknownStatement, ": undef without name")
		}
	}
	return nil
}

func (d *Def) validate() error {
	if d.Name == "" {
		return errx.With(ErrInvalidDef, ": missing name")
	}
	bodies := 0
	if d.Return != nil {
		bodies++
	}
	if d.Transform != "" {
		if !d.Transform.valid() {
			return errx.With(ErrUnknownTransform, " %q for %s", d.Transform, d.Name)
		}
		bodies++
	}
	if d.Template != "" {
		bodies++
	}
	if d.Echo {
		bodies++
	}
	if bodies != 1 {
		return errx.With(ErrInvalidDef, ": %s needs exactly one of return, transform, template, echo", d.Name)
	}
	return nil
}

func (b *Binding) validate(verb string) error {
	if b.Method == "" || b.With == "" {
		return errx.With(ErrUnknownStatement, ": %s needs method and with", verb)
	}
	return nil
}
