// Package intercept wraps a Target's members so that calls route through an
// interceptor member that receives the original behavior as its block.
package intercept

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jingkaihe/interpose/internal/errx"
	"github.com/jingkaihe/interpose/pkg/member"
)

// SkipEvent describes a wrap request dropped because the member was already
// wrapped.
type SkipEvent struct {
	Target   *member.Target
	Level    member.Level
	Binding  member.Binding
	Existing member.Member
}

// SkipFunc observes dropped wrap requests.
type SkipFunc func(ev SkipEvent)

// Engine applies bindings to Targets. One engine serves both eager and
// deferred binding; it keeps no per-Target state.
type Engine struct {
	logger *zap.Logger

	skipMu sync.RWMutex
	skipFn SkipFunc
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// SetSkipFunc installs a hook called whenever a request for an already
// wrapped member is dropped.
func (e *Engine) SetSkipFunc(fn SkipFunc) {
	e.skipMu.Lock()
	e.skipFn = fn
	e.skipMu.Unlock()
}

// Intercept resolves b.Member on t (instance space first) and wraps it in the
// space it was found in.
func (e *Engine) Intercept(t *member.Target, b member.Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	level, ok := member.Resolve(t, b.Member).Level()
	if !ok {
		return &UnknownMemberError{Target: t.Name(), Name: b.Member}
	}
	return e.Wrap(t, level, b)
}

// Wrap routes b.Member through b.Interceptor within a single space of t.
// Requests for a member that is already a wrapper succeed without effect, so
// a second, different interceptor for the same member is dropped.
func (e *Engine) Wrap(t *member.Target, level member.Level, b member.Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	var (
		skipped  bool
		existing member.Member
	)
	err := t.Edit(level, func(tbl *member.Table) error {
		current, ok := tbl.Get(b.Member)
		if !ok {
			return &UnknownMemberError{Target: t.Name(), Name: b.Member, Level: level, Scoped: true}
		}
		if !tbl.Has(b.Interceptor) {
			return &InvalidInterceptorError{Target: t.Name(), Name: b.Interceptor, Level: level, Noun: b.Kind.Noun()}
		}
		if b.Member == b.Interceptor {
			return errx.With(ErrSelfInterception, ": %s", t.Qualify(level, b.Member))
		}
		if current.Wrapped {
			skipped, existing = true, current
			return nil
		}

		alias := AliasName(b.Member)
		tbl.Hide(alias, current)
		tbl.Set(member.Member{
			Name:        b.Member,
			Impl:        wrapper(t, level, alias, b.Interceptor),
			Original:    current.Original,
			Wrapped:     true,
			Interceptor: b.Interceptor,
		})
		return nil
	})
	if err != nil {
		return err
	}

	if skipped {
		e.logger.Debug("member already wrapped",
			zap.String("target", t.Name()),
			zap.Stringer("level", level),
			zap.String("member", b.Member),
			zap.String("requested", b.Interceptor),
			zap.String("existing", existing.Interceptor))
		e.emitSkip(SkipEvent{Target: t, Level: level, Binding: b, Existing: existing})
		return nil
	}

	e.logger.Debug("wrapped member",
		zap.String("target", t.Name()),
		zap.Stringer("level", level),
		zap.String("member", b.Member),
		zap.String("interceptor", b.Interceptor),
		zap.String("kind", b.Kind.Noun()))
	return nil
}

func (e *Engine) emitSkip(ev SkipEvent) {
	e.skipMu.RLock()
	fn := e.skipFn
	e.skipMu.RUnlock()
	if fn == nil {
		return
	}
	fn(ev)
}

// wrapper builds the replacement for a wrapped member. The interceptor is
// resolved by name on every call; its block replays the caller's arguments
// (unless it passes its own) and the caller's block into the original.
// Calling the block with no arguments always replays the caller's, so an
// interceptor cannot call the original with zero arguments when the caller
// supplied some.
func wrapper(t *member.Target, level member.Level, alias, interceptor string) member.Method {
	return func(ctx context.Context, call member.Call) (any, error) {
		next := func(ctx context.Context, args ...any) (any, error) {
			if len(args) == 0 {
				args = call.Args
			}
			return t.InvokeHidden(ctx, level, alias, member.Call{
				Self:  call.Self,
				Args:  args,
				Block: call.Block,
			})
		}
		return t.Invoke(ctx, level, interceptor, member.Call{
			Self:  call.Self,
			Args:  call.Args,
			Block: next,
		})
	}
}
