package facade

import (
	"github.com/jingkaihe/interpose/pkg/member"
)

// Queue records bindings until a Target's definition completes.
type Queue interface {
	Enqueue(t *member.Target, b member.Binding) error
}

// Deferred queues bindings so that members and interceptors may be defined
// after the request, in any order, as long as both exist once the definition
// completes. Errors surface from the host's completion step.
type Deferred struct {
	target *member.Target
	queue  Queue
}

// ExtendDeferred opts t into deferred binding.
func ExtendDeferred(t *member.Target, queue Queue) *Deferred {
	t.MarkDeferred()
	return &Deferred{target: t, queue: queue}
}

func (d *Deferred) Target() *member.Target { return d.target }

func (d *Deferred) AnnotateMethod(method, annotation string) error {
	return d.queue.Enqueue(d.target, member.Binding{Member: method, Interceptor: annotation, Kind: member.KindAnnotation})
}

func (d *Deferred) DecorateMethod(method, decorator string) error {
	return d.queue.Enqueue(d.target, member.Binding{Member: method, Interceptor: decorator, Kind: member.KindDecorator})
}
