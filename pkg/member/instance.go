package member

import "context"

// Instance is a receiver for instance members of a Target.
type Instance struct {
	target *Target
	state  any
}

// New returns an instance of t carrying optional state.
func (t *Target) New(state any) *Instance {
	return &Instance{target: t, state: state}
}

func (i *Instance) Target() *Target { return i.target }
func (i *Instance) State() any      { return i.state }

func (i *Instance) Call(ctx context.Context, name string, args ...any) (any, error) {
	return i.CallWithBlock(ctx, name, nil, args...)
}

func (i *Instance) CallWithBlock(ctx context.Context, name string, block Block, args ...any) (any, error) {
	return i.target.Invoke(ctx, LevelInstance, name, Call{Self: i, Args: args, Block: block})
}
