package intercept

import (
	"errors"

	"github.com/jingkaihe/interpose/pkg/member"
)

var (
	ErrUnknownMember      = errors.New("unknown member")
	ErrInvalidInterceptor = errors.New("invalid interceptor")
	// ErrSelfInterception rejects a member as its own interceptor, which would
	// recurse without end through the alias.
	ErrSelfInterception   = errors.New("member cannot intercept itself")
)

// UnknownMemberError reports a member name absent from the Target. When
// Scoped is set the lookup was restricted to Level.
type UnknownMemberError struct {
	Target string
	Name   string
	Level  member.Level
	Scoped bool
}

func (e *UnknownMemberError) Error() string {
	if e.Scoped {
		return e.Name + " is not a " + e.Level.String() + " method"
	}
	return e.Name + " is not a class or instance method"
}

func (e *UnknownMemberError) Is(target error) bool {
	return target == ErrUnknownMember
}

// InvalidInterceptorError reports an interceptor missing from the space of
// the member it should wrap.
type InvalidInterceptorError struct {
	Target string
	Name   string
	Level  member.Level
	Noun   string
}

func (e *InvalidInterceptorError) Error() string {
	return e.Name + " is not a valid " + e.Noun
}

func (e *InvalidInterceptorError) Is(target error) bool {
	return target == ErrInvalidInterceptor
}
