// Package facade is the surface a Target mixes in to gain AnnotateMethod and
// DecorateMethod. Eager applies bindings at once; Deferred queues them until
// the Target's definition completes.
package facade

import "github.com/jingkaihe/interpose/pkg/member"

// Facade routes binding requests for one Target. Both verbs are available on
// every facade; they apply the same wrap and differ only in the noun used when
// the interceptor is missing ("is not a valid annotation" or "decorator").
type Facade interface {
	AnnotateMethod(method, annotation string) error
	DecorateMethod(method, decorator string) error
	Target() *member.Target
}

var (
	_ Facade = (*Eager)(nil)
	_ Facade = (*Deferred)(nil)
)
