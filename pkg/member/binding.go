package member

import "github.com/jingkaihe/interpose/internal/errx"

// Kind is the vocabulary a binding was requested with. It only affects how
// an invalid interceptor is described in errors.
type Kind string

const (
	KindInterceptor Kind = "interceptor"
	KindAnnotation  Kind = "annotation"
	KindDecorator   Kind = "decorator"
)

// Noun returns the word used for the interceptor in messages.
func (k Kind) Noun() string {
	if k == "" {
		return string(KindInterceptor)
	}
	return string(k)
}

// Binding requests that Member be routed through Interceptor. Both are
// referenced by name: in deferred mode neither has to exist yet.
type Binding struct {
	Member      string
	Interceptor string
	Kind        Kind
}

func (b Binding) Validate() error {
	if b.Member == "" {
		return errx.With(ErrInvalidBinding, ": member name is empty")
	}
	if b.Interceptor == "" {
		return errx.With(ErrInvalidBinding, ": %s name is empty for %s", b.Kind.Noun(), b.Member)
	}
	return nil
}
