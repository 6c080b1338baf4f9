package facade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jingkaihe/interpose/pkg/deferred"
	"github.com/jingkaihe/interpose/pkg/intercept"
	"github.com/jingkaihe/interpose/pkg/lifecycle"
	"github.com/jingkaihe/interpose/pkg/member"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func returns(v any) member.Method {
	return func(ctx context.Context, call member.Call) (any, error) { return v, nil }
}

func upcase(ctx context.Context, call member.Call) (any, error) {
	v, err := call.Yield(ctx)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(fmt.Sprint(v)), nil
}

func wrap(ctx context.Context, call member.Call) (any, error) {
	v, err := call.Yield(ctx)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf(">>> %v <<<", v), nil
}

type env struct {
	host       *lifecycle.Host
	engine     *intercept.Engine
	dispatcher *deferred.Dispatcher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	host := lifecycle.NewHost(nil)
	engine := intercept.NewEngine(nil)
	d := deferred.NewDispatcher(host, engine, nil)
	t.Cleanup(d.Close)
	return &env{host: host, engine: engine, dispatcher: d}
}

type mode struct {
	name   string
	lazy   bool
	extend func(e *env, t *member.Target) Facade
}

var modes = []mode{
	{
		name:   "eager",
		extend: func(e *env, t *member.Target) Facade { return Extend(t, e.engine) },
	},
	{
		name:   "deferred",
		lazy:   true,
		extend: func(e *env, t *member.Target) Facade { return ExtendDeferred(t, e.dispatcher) },
	},
}

type kind struct {
	name string
	noun string
	bind func(f Facade, method, interceptor string) error
}

var kinds = []kind{
	{
		name: "annotation",
		noun: "annotation",
		bind: func(f Facade, method, interceptor string) error { return f.AnnotateMethod(method, interceptor) },
	},
	{
		name: "decorator",
		noun: "decorator",
		bind: func(f Facade, method, interceptor string) error { return f.DecorateMethod(method, interceptor) },
	},
}

// step is one statement of a class body.
type step func(t *member.Target, f Facade) error

func define(level member.Level, name string, fn member.Method) step {
	return func(t *member.Target, _ Facade) error { return t.Define(level, name, fn) }
}

func (e *env) base(t *testing.T) {
	t.Helper()
	_, err := e.host.Class(context.Background(), "MyClass", func(tgt *member.Target) error {
		tgt.DefineStatic("bar", returns("bar"))
		tgt.DefineMethod("foo", returns("foo"))
		return nil
	})
	require.NoError(t, err)
}

// reopen extends MyClass and evaluates steps in order.
func (e *env) reopen(m mode, steps ...step) (*member.Target, error) {
	return e.host.Class(context.Background(), "MyClass", func(tgt *member.Target) error {
		f := m.extend(e, tgt)
		for _, s := range steps {
			if err := s(tgt, f); err != nil {
				return err
			}
		}
		return nil
	})
}

// ordered places the binding after the interceptor definition for eager
// facades and before it for deferred ones.
func ordered(m mode, def, bind step) []step {
	if m.lazy {
		return []step{bind, def}
	}
	return []step{def, bind}
}

func TestFacade_BaseClass(t *testing.T) {
	e := newEnv(t)
	e.base(t)

	tgt, ok := e.host.Lookup("MyClass")
	require.True(t, ok)

	v, err := tgt.Call(context.Background(), "bar")
	require.NoError(t, err)
	assert.Equal(t, "bar", v)

	v, err = tgt.New(nil).Call(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, "foo", v)
}

func TestFacade_Wrapped(t *testing.T) {
	for _, m := range modes {
		for _, k := range kinds {
			t.Run(m.name+"/"+k.name, func(t *testing.T) {
				e := newEnv(t)
				e.base(t)

				bind := func(method, interceptor string) step {
					return func(_ *member.Target, f Facade) error { return k.bind(f, method, interceptor) }
				}
				steps := ordered(m, define(member.LevelStatic, "upcase", upcase), bind("bar", "upcase"))
				steps = append(steps, ordered(m, define(member.LevelInstance, "wrap", wrap), bind("foo", "wrap"))...)

				tgt, err := e.reopen(m, steps...)
				require.NoError(t, err)

				v, err := tgt.Call(context.Background(), "bar")
				require.NoError(t, err)
				assert.Equal(t, "BAR", v)

				v, err = tgt.New(nil).Call(context.Background(), "foo")
				require.NoError(t, err)
				assert.Equal(t, ">>> foo <<<", v)
			})
		}
	}
}

func TestFacade_Errors(t *testing.T) {
	tests := []struct {
		name        string
		interceptor member.Level
		defineIt    bool
		method      string
		sentinel    error
		message     func(noun string) string
	}{
		{
			name:        "nonexistent class method",
			interceptor: member.LevelStatic,
			defineIt:    true,
			method:      "qux",
			sentinel:    intercept.ErrUnknownMember,
			message:     func(string) string { return "qux is not a class or instance method" },
		},
		{
			name:        "nonexistent instance method",
			interceptor: member.LevelInstance,
			defineIt:    true,
			method:      "qux",
			sentinel:    intercept.ErrUnknownMember,
			message:     func(string) string { return "qux is not a class or instance method" },
		},
		{
			name:     "nonexistent class method interceptor",
			method:   "bar",
			sentinel: intercept.ErrInvalidInterceptor,
			message:  func(noun string) string { return "upcase is not a valid " + noun },
		},
		{
			name:     "nonexistent instance method interceptor",
			method:   "foo",
			sentinel: intercept.ErrInvalidInterceptor,
			message:  func(noun string) string { return "upcase is not a valid " + noun },
		},
	}

	for _, m := range modes {
		for _, k := range kinds {
			for _, tt := range tests {
				t.Run(m.name+"/"+k.name+"/"+tt.name, func(t *testing.T) {
					e := newEnv(t)
					e.base(t)

					bind := func(_ *member.Target, f Facade) error { return k.bind(f, tt.method, "upcase") }
					steps := []step{bind}
					if tt.defineIt {
						steps = ordered(m, define(tt.interceptor, "upcase", upcase), bind)
					}

					_, err := e.reopen(m, steps...)
					require.Error(t, err)
					assert.True(t, errors.Is(err, tt.sentinel))
					assert.EqualError(t, err, tt.message(k.noun))
				})
			}
		}
	}
}

func TestDeferred_ReturnsNilAndQueues(t *testing.T) {
	e := newEnv(t)
	tgt, err := e.host.Define("Lazy")
	require.NoError(t, err)

	f := ExtendDeferred(tgt, e.dispatcher)
	assert.True(t, tgt.Deferred())
	assert.Same(t, tgt, f.Target())

	require.NoError(t, f.AnnotateMethod("later", "nothing"))
	require.NoError(t, f.DecorateMethod("later", "nothing"))
	assert.Equal(t, []member.Binding{
		{Member: "later", Interceptor: "nothing", Kind: member.KindAnnotation},
		{Member: "later", Interceptor: "nothing", Kind: member.KindDecorator},
	}, tgt.Pending())
	assert.True(t, e.dispatcher.Initialized())
}

func TestEager_DoesNotQueue(t *testing.T) {
	e := newEnv(t)
	tgt, err := e.host.Define("Eager")
	require.NoError(t, err)
	tgt.DefineMethod("foo", returns("foo")).DefineMethod("wrap", wrap)

	f := Extend(tgt, e.engine)
	require.NoError(t, f.DecorateMethod("foo", "wrap"))
	assert.False(t, tgt.Deferred())
	assert.Empty(t, tgt.Pending())

	m, ok := tgt.Lookup(member.LevelInstance, "foo")
	require.True(t, ok)
	assert.True(t, m.Wrapped)
	assert.Equal(t, "wrap", m.Interceptor)
}

func TestEager_InvalidBinding(t *testing.T) {
	e := newEnv(t)
	tgt, err := e.host.Define("Eager")
	require.NoError(t, err)

	err = Extend(tgt, e.engine).AnnotateMethod("", "wrap")
	assert.ErrorIs(t, err, member.ErrInvalidBinding)
}

func TestEager_BothVerbsOnOneFacade(t *testing.T) {
	e := newEnv(t)
	tgt, err := e.host.Define("Both")
	require.NoError(t, err)
	tgt.DefineMethod("foo", returns("foo")).DefineMethod("bar", returns("bar")).DefineMethod("wrap", wrap)

	f := Extend(tgt, e.engine)
	require.NoError(t, f.AnnotateMethod("foo", "wrap"))
	require.NoError(t, f.DecorateMethod("bar", "wrap"))
	assert.EqualError(t, f.AnnotateMethod("foo", "nope"), "nope is not a valid annotation")
	assert.EqualError(t, f.DecorateMethod("bar", "nope"), "nope is not a valid decorator")

	v, err := tgt.New(nil).Call(context.Background(), "bar")
	require.NoError(t, err)
	assert.Equal(t, ">>> bar <<<", v)
}
