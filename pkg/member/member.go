// Package member models interceptable types: a Target owns two member spaces
// (instance and static), each an indirection table from name to Member.
package member

import (
	"context"
	"fmt"
)

// Level selects one of a Target's member spaces.
type Level int

const (
	LevelInstance Level = iota
	LevelStatic
)

func (l Level) String() string {
	switch l {
	case LevelInstance:
		return "instance"
	case LevelStatic:
		return "static"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Separator is the conventional qualifier between a type and member name:
// "Type#member" for instance members and "Type.member" for static ones.
func (l Level) Separator() string {
	if l == LevelStatic {
		return "."
	}
	return "#"
}

func (l Level) valid() bool {
	return l == LevelInstance || l == LevelStatic
}

// Block is a trailing continuation passed along with a call.
type Block func(ctx context.Context, args ...any) (any, error)

// Call carries the receiver, arguments and optional block of an invocation.
// Self is the *Instance for instance members and the *Target for static ones.
type Call struct {
	Self  any
	Args  []any
	Block Block
}

// Yield invokes the call's block.
func (c Call) Yield(ctx context.Context, args ...any) (any, error) {
	if c.Block == nil {
		return nil, ErrNoBlock
	}
	return c.Block(ctx, args...)
}

// BlockGiven reports whether the caller supplied a block.
func (c Call) BlockGiven() bool {
	return c.Block != nil
}

// Method is the implementation of a member. Arguments are opaque to the
// interception machinery and are forwarded untouched.
type Method func(ctx context.Context, call Call) (any, error)

// Member is a named callable installed in one space of a Target.
type Member struct {
	Name  string
	Level Level
	Impl  Method

	// Original is the name the implementation was first defined under.
	// It differs from Name for members moved into the alias table.
	Original string

	// Wrapped marks a member installed by the interception engine.
	Wrapped bool
	// Interceptor names the member that Wrapped members route through.
	Interceptor string
}

func (m Member) String() string {
	if m.Wrapped {
		return fmt.Sprintf("%s%s (via %s)", m.Level.Separator(), m.Name, m.Interceptor)
	}
	return m.Level.Separator() + m.Name
}
