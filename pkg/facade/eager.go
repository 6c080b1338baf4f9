package facade

import (
	"github.com/jingkaihe/interpose/pkg/member"
)

// Interceptor applies a binding immediately.
type Interceptor interface {
	Intercept(t *member.Target, b member.Binding) error
}

// Eager wraps members as soon as a binding is requested. Both the member and
// the interceptor must already be defined.
type Eager struct {
	target *member.Target
	engine Interceptor
}

func Extend(t *member.Target, engine Interceptor) *Eager {
	return &Eager{target: t, engine: engine}
}

func (e *Eager) Target() *member.Target { return e.target }

func (e *Eager) AnnotateMethod(method, annotation string) error {
	return e.engine.Intercept(e.target, member.Binding{Member: method, Interceptor: annotation, Kind: member.KindAnnotation})
}

func (e *Eager) DecorateMethod(method, decorator string) error {
	return e.engine.Intercept(e.target, member.Binding{Member: method, Interceptor: decorator, Kind: member.KindDecorator})
}
