package manifest

import (
	"context"

	"github.com/jingkaihe/interpose/internal/errx"
	"github.com/jingkaihe/interpose/pkg/facade"
	"github.com/jingkaihe/interpose/pkg/member"
)

// Host evaluates a class body against a named Target and completes it.
type Host interface {
	Class(ctx context.Context, name string, body func(t *member.Target) error) (*member.Target, error)
}

// Apply evaluates every type body in document order and returns the Targets
// touched, one entry per distinct name. The first failing body stops Apply.
func Apply(ctx context.Context, host Host, engine facade.Interceptor, queue facade.Queue, m *Manifest) ([]*member.Target, error) {
	var (
		out  []*member.Target
		seen = make(map[*member.Target]bool)
	)
	for _, ts := range m.Types {
		t, err := host.Class(ctx, ts.Name, func(t *member.Target) error {
			f := extend(t, ts.Extend, engine, queue)
			for _, st := range ts.Body {
				if err := st.eval(t, ts, f); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return out, err
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func extend(t *member.Target, mode Extend, engine facade.Interceptor, queue facade.Queue) facade.Facade {
	switch {
	case mode.Lazy():
		return facade.ExtendDeferred(t, queue)
	case mode == ExtendAnnotation || mode == ExtendDecorator:
		return facade.Extend(t, engine)
	}
	return nil
}

func (s Statement) eval(t *member.Target, ts TypeSpec, f facade.Facade) error {
	switch {
	case s.Def != nil:
		return t.Define(s.Def.Level(), s.Def.Name, s.Def.Method())

	case s.Undef != nil:
		level := member.LevelInstance
		if s.Undef.Static {
			level = member.LevelStatic
		}
		t.Undefine(level, s.Undef.Name)
		return nil

	case s.Annotate != nil:
		if kind, ok := ts.Extend.Kind(); !ok || kind != member.KindAnnotation {
			return errx.With(ErrNotExtended, ": %s does not respond to annotate_method", ts.Name)
		}
		return f.AnnotateMethod(s.Annotate.Method, s.Annotate.With)

	case s.Decorate != nil:
		if kind, ok := ts.Extend.Kind(); !ok || kind != member.KindDecorator {
			return errx.With(ErrNotExtended, ": %s does not respond to decorate_method", ts.Name)
		}
		return f.DecorateMethod(s.Decorate.Method, s.Decorate.With)
	}
	return ErrUnknownStatement
}
