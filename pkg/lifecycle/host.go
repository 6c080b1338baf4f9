// Package lifecycle is the definition-time host: it creates Targets, tracks
// whether their bodies are still being assembled, and tells subscribers each
// time a body completes.
package lifecycle

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jingkaihe/interpose/internal/errx"
	"github.com/jingkaihe/interpose/pkg/member"
)

// CompleteFunc observes a finished (or re-finished) Target definition.
type CompleteFunc func(ctx context.Context, t *member.Target) error

type subscription struct {
	id uint64
	fn CompleteFunc
}

// Host owns the name registry and phase records of the Targets it defines.
type Host struct {
	logger *zap.Logger

	mu      sync.Mutex
	targets map[string]*member.Target
	records map[*member.Target]*Record

	subMu  sync.RWMutex
	subs   []subscription
	nextID uint64

	journal Journal

	now func() time.Time
}

func NewHost(logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{
		logger:  logger,
		targets: make(map[string]*member.Target),
		records: make(map[*member.Target]*Record),
		now:     time.Now,
	}
}

// SetJournal makes h append a copy of a Target's record on every definition
// and phase change. Journal failures are logged and do not fail the change.
// Changes made before the call are not journaled.
func (h *Host) SetJournal(j Journal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.journal = j
}

// Subscribe registers fn for every definition-complete event. Subscribers
// run in registration order. The returned func removes the subscription.
func (h *Host) Subscribe(fn CompleteFunc) (cancel func()) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: fn})

	return func() {
		h.subMu.Lock()
		defer h.subMu.Unlock()
		for i, s := range h.subs {
			if s.id == id {
				h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

// Define creates a new Target in the defining phase.
func (h *Host) Define(name string) (*member.Target, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.targets[name]; ok {
		return nil, errx.With(ErrTargetExists, " %q", name)
	}

	t := member.NewTarget(name)
	now := h.now()
	rec := &Record{
		TargetID:  t.ID(),
		Name:      name,
		Phase:     PhaseDefining,
		CreatedAt: now,
		UpdatedAt: now,
	}
	h.targets[name] = t
	h.records[t] = rec
	h.logger.Debug("target defined", zap.String("target", name), zap.Stringer("id", t.ID()))
	h.appendJournal(*rec)
	return t, nil
}

// Lookup returns the registered Target with the given name.
func (h *Host) Lookup(name string) (*member.Target, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.targets[name]
	return t, ok
}

// Forget unregisters name so a later Define starts from a fresh Target.
func (h *Host) Forget(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.targets[name]
	if !ok {
		return false
	}
	delete(h.targets, name)
	delete(h.records, t)
	return true
}

// Targets lists registered Targets sorted by name.
func (h *Host) Targets() []*member.Target {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*member.Target, 0, len(h.targets))
	for _, t := range h.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Record returns a copy of t's lifecycle record.
func (h *Host) Record(t *member.Target) (Record, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec, ok := h.records[t]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Reopen puts a completed Target back into the defining phase.
func (h *Host) Reopen(t *member.Target) error {
	return h.setPhase(t, PhaseDefining)
}

// Finalize completes t's definition and notifies subscribers in order. The
// first subscriber error stops notification and is returned unchanged; the
// Target stays complete.
func (h *Host) Finalize(ctx context.Context, t *member.Target) error {
	if err := h.setPhase(t, PhaseComplete); err != nil {
		return err
	}

	h.subMu.RLock()
	subs := append([]subscription(nil), h.subs...)
	h.subMu.RUnlock()

	for _, s := range subs {
		if err := s.fn(ctx, t); err != nil {
			h.logger.Debug("definition-complete observer failed",
				zap.String("target", t.Name()), zap.Error(err))
			return err
		}
	}
	return nil
}

// Class evaluates body against the Target named name, defining it on first
// use and reopening it afterwards, then finalizes it. A body error skips
// finalization and leaves the Target in the defining phase.
func (h *Host) Class(ctx context.Context, name string, body func(t *member.Target) error) (*member.Target, error) {
	t, ok := h.Lookup(name)
	if ok {
		if err := h.Reopen(t); err != nil {
			return t, err
		}
	} else {
		var err error
		if t, err = h.Define(name); err != nil {
			return nil, err
		}
	}

	if body != nil {
		if err := body(t); err != nil {
			return t, err
		}
	}
	return t, h.Finalize(ctx, t)
}

func (h *Host) setPhase(t *member.Target, to Phase) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.records[t]
	if !ok {
		return errx.With(ErrTargetNotFound, " %q", t.Name())
	}
	if err := validateTransition(rec.Phase, to); err != nil {
		return errx.With(err, " for %s", t.Name())
	}

	from := rec.Phase
	rec.Phase = to
	rec.UpdatedAt = h.now()
	if to == PhaseComplete {
		rec.Completions++
	}
	h.logger.Debug("target phase changed",
		zap.String("target", t.Name()),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	h.appendJournal(*rec)
	return nil
}

// appendJournal is called with h.mu held.
func (h *Host) appendJournal(rec Record) {
	if h.journal == nil {
		return
	}
	if err := h.journal.Append(rec); err != nil {
		h.logger.Warn("journal append failed",
			zap.String("target", rec.Name),
			zap.String("phase", string(rec.Phase)),
			zap.Error(err))
	}
}
