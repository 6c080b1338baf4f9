// Package deferred queues bindings against Targets that are still being
// defined and applies them when the host reports the definition complete.
package deferred

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jingkaihe/interpose/pkg/lifecycle"
	"github.com/jingkaihe/interpose/pkg/member"
)

// Subscriber is the definition-complete event source.
type Subscriber interface {
	Subscribe(fn lifecycle.CompleteFunc) (cancel func())
}

// Interceptor applies a single binding eagerly.
type Interceptor interface {
	Intercept(t *member.Target, b member.Binding) error
}

// Dispatcher routes definition-complete events to the pending queue of
// deferred Targets. It stores nothing per Target; the queue and the deferred
// marker live on the Target itself.
type Dispatcher struct {
	events Subscriber
	engine Interceptor
	logger *zap.Logger

	once   sync.Once
	mu     sync.Mutex
	cancel func()
}

func NewDispatcher(events Subscriber, engine Interceptor, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		events: events,
		engine: engine,
		logger: logger,
	}
}

// Init subscribes the dispatcher to completion events. Only the first call
// subscribes; later calls return the same dispatcher without effect.
func (d *Dispatcher) Init() *Dispatcher {
	d.once.Do(func() {
		cancel := d.events.Subscribe(d.OnDefinitionComplete)
		d.mu.Lock()
		d.cancel = cancel
		d.mu.Unlock()
		d.logger.Debug("deferred dispatcher subscribed")
	})
	return d
}

// Initialized reports whether Init has subscribed the dispatcher.
func (d *Dispatcher) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// Close drops the subscription. A closed dispatcher is not re-subscribed by
// Init.
func (d *Dispatcher) Close() {
	d.once.Do(func() {})
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// OnDefinitionComplete drains t if it opted into deferred binding.
func (d *Dispatcher) OnDefinitionComplete(ctx context.Context, t *member.Target) error {
	if !t.Deferred() {
		return nil
	}
	return d.Drain(ctx, t)
}
