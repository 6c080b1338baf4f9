package manifest

import (
	"context"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/jingkaihe/interpose/internal/errx"
	"github.com/jingkaihe/interpose/pkg/member"
)

// Invocation is a parsed call expression such as `Greeter#hello "a b" c`.
type Invocation struct {
	Type   string
	Level  member.Level
	Member string
	Args   []string
}

func (inv Invocation) String() string {
	words := append([]string{inv.Type + inv.Level.Separator() + inv.Member}, inv.Args...)
	return shellquote.Join(words...)
}

// ParseCall splits expr with shell quoting rules. The first word is
// `Type#member` for an instance call or `Type.member` for a static one.
func ParseCall(expr string) (Invocation, error) {
	words, err := shellquote.Split(expr)
	if err != nil {
		return Invocation{}, errx.Wrap(ErrInvalidCall, err)
	}
	if len(words) == 0 {
		return Invocation{}, errx.With(ErrInvalidCall, ": empty expression")
	}

	head := words[0]
	i := strings.IndexAny(head, "#.")
	if i <= 0 || i == len(head)-1 {
		return Invocation{}, errx.With(ErrInvalidCall, ": %q is not Type#member or Type.member", head)
	}
	inv := Invocation{
		Type:   head[:i],
		Level:  member.LevelInstance,
		Member: head[i+1:],
		Args:   words[1:],
	}
	if head[i] == '.' {
		inv.Level = member.LevelStatic
	}
	return inv, nil
}

// Lookup finds a Target by name.
type Lookup interface {
	Lookup(name string) (*member.Target, bool)
}

// Invoke runs inv against the Target registered under inv.Type. Instance
// calls go through a fresh instance.
func (inv Invocation) Invoke(ctx context.Context, targets Lookup) (any, error) {
	t, ok := targets.Lookup(inv.Type)
	if !ok {
		return nil, errx.With(ErrUnknownType, " %s", inv.Type)
	}
	args := make([]any, len(inv.Args))
	for i, a := range inv.Args {
		args[i] = a
	}
	if inv.Level == member.LevelStatic {
		return t.Call(ctx, inv.Member, args...)
	}
	return t.New(nil).Call(ctx, inv.Member, args...)
}
