package member

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jingkaihe/interpose/internal/errx"
)

type space struct {
	members map[string]Member
	// aliases holds members moved aside by the interception engine. It is
	// never consulted by Lookup, Has or Invoke.
	aliases map[string]Member
}

func newSpace() *space {
	return &space{
		members: make(map[string]Member),
		aliases: make(map[string]Member),
	}
}

// Target is a runtime type whose members may be wrapped. It exclusively owns
// its member spaces and its queue of pending bindings; a single lock guards
// all of them.
type Target struct {
	id   uuid.UUID
	name string

	mu       sync.RWMutex
	spaces   map[Level]*space
	pending  []Binding
	deferred bool
}

func NewTarget(name string) *Target {
	return &Target{
		id:   uuid.New(),
		name: name,
		spaces: map[Level]*space{
			LevelInstance: newSpace(),
			LevelStatic:   newSpace(),
		},
	}
}

func (t *Target) ID() uuid.UUID  { return t.id }
func (t *Target) Name() string   { return t.name }
func (t *Target) String() string { return t.name }

// Qualify renders name as "Type#name" or "Type.name".
func (t *Target) Qualify(level Level, name string) string {
	return t.name + level.Separator() + name
}

// Define installs fn under name, replacing any existing member. A replaced
// wrapper loses its wrap tag, so the new definition can be wrapped again.
func (t *Target) Define(level Level, name string, fn Method) error {
	if !level.valid() {
		return errx.With(ErrInvalidMember, ": unknown level %v", level)
	}
	if name == "" {
		return errx.With(ErrInvalidMember, ": empty name on %s", t.name)
	}
	if fn == nil {
		return errx.With(ErrInvalidMember, ": nil implementation for %s", t.Qualify(level, name))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.spaces[level].members[name] = Member{
		Name:     name,
		Level:    level,
		Impl:     fn,
		Original: name,
	}
	return nil
}

// DefineMethod defines an instance member and returns t for chaining.
// It panics if name is empty or fn is nil.
func (t *Target) DefineMethod(name string, fn Method) *Target {
	if err := t.Define(LevelInstance, name, fn); err != nil {
		panic(err)
	}
	return t
}

// DefineStatic defines a static member and returns t for chaining.
// It panics if name is empty or fn is nil.
func (t *Target) DefineStatic(name string, fn Method) *Target {
	if err := t.Define(LevelStatic, name, fn); err != nil {
		panic(err)
	}
	return t
}

// Undefine removes a public member. Aliased originals are left in place.
func (t *Target) Undefine(level Level, name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.spaces[level]
	if !ok {
		return false
	}
	if _, ok := s.members[name]; !ok {
		return false
	}
	delete(s.members, name)
	return true
}

func (t *Target) Has(level Level, name string) bool {
	_, ok := t.Lookup(level, name)
	return ok
}

func (t *Target) Lookup(level Level, name string) (Member, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.spaces[level]
	if !ok {
		return Member{}, false
	}
	m, ok := s.members[name]
	return m, ok
}

// Members lists the public members of a space sorted by name.
func (t *Target) Members(level Level) []Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.spaces[level]
	if !ok {
		return nil
	}
	out := make([]Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Hidden returns a member from the alias table.
func (t *Target) Hidden(level Level, alias string) (Member, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.spaces[level]
	if !ok {
		return Member{}, false
	}
	m, ok := s.aliases[alias]
	return m, ok
}

// Invoke calls a public member. The member is read under the lock and run
// without it, so implementations may call back into t.
func (t *Target) Invoke(ctx context.Context, level Level, name string, call Call) (any, error) {
	m, ok := t.Lookup(level, name)
	if !ok {
		return nil, errx.With(ErrNoSuchMember, " %s", t.Qualify(level, name))
	}
	return m.Impl(ctx, call)
}

// InvokeHidden calls a member from the alias table.
func (t *Target) InvokeHidden(ctx context.Context, level Level, alias string, call Call) (any, error) {
	m, ok := t.Hidden(level, alias)
	if !ok {
		return nil, errx.With(ErrNoSuchMember, " %s (alias)", t.Qualify(level, alias))
	}
	return m.Impl(ctx, call)
}

// Call invokes a static member with t as the receiver.
func (t *Target) Call(ctx context.Context, name string, args ...any) (any, error) {
	return t.CallWithBlock(ctx, name, nil, args...)
}

func (t *Target) CallWithBlock(ctx context.Context, name string, block Block, args ...any) (any, error) {
	return t.Invoke(ctx, LevelStatic, name, Call{Self: t, Args: args, Block: block})
}

// Edit runs fn with exclusive access to one member space. Readers observe
// either the state before fn or the state after it.
func (t *Target) Edit(level Level, fn func(tbl *Table) error) error {
	if !level.valid() {
		return errx.With(ErrInvalidMember, ": unknown level %v", level)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(&Table{level: level, s: t.spaces[level]})
}

// AddPending appends b to the pending queue unless an identical binding is
// already queued. It reports whether b was added.
func (t *Target) AddPending(b Binding) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.pending {
		if p == b {
			return false
		}
	}
	t.pending = append(t.pending, b)
	return true
}

// Pending returns a copy of the queued bindings in request order.
func (t *Target) Pending() []Binding {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Binding(nil), t.pending...)
}

// TakePending empties the queue and returns what it held.
func (t *Target) TakePending() []Binding {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.pending
	t.pending = nil
	return out
}

// MarkDeferred opts t into deferred binding. It reports true on the first
// call only.
func (t *Target) MarkDeferred() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.deferred {
		return false
	}
	t.deferred = true
	return true
}

func (t *Target) Deferred() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.deferred
}

// Table is the locked view of one member space passed to Target.Edit. It must
// not be retained after the callback returns.
type Table struct {
	level Level
	s     *space
}

func (tb *Table) Level() Level { return tb.level }

func (tb *Table) Get(name string) (Member, bool) {
	m, ok := tb.s.members[name]
	return m, ok
}

func (tb *Table) Has(name string) bool {
	_, ok := tb.s.members[name]
	return ok
}

// Set installs m under m.Name. The level is forced to the table's level.
func (tb *Table) Set(m Member) {
	m.Level = tb.level
	tb.s.members[m.Name] = m
}

func (tb *Table) Hidden(alias string) (Member, bool) {
	m, ok := tb.s.aliases[alias]
	return m, ok
}

// Hide stores m in the alias table under alias. Original is preserved.
func (tb *Table) Hide(alias string, m Member) {
	m.Level = tb.level
	m.Name = alias
	tb.s.aliases[alias] = m
}
