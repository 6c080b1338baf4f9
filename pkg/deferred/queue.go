package deferred

import (
	"context"

	"go.uber.org/zap"

	"github.com/jingkaihe/interpose/pkg/member"
)

// Enqueue records b against t for the next definition-complete event. The
// first call for a Target marks it deferred; identical bindings already
// pending are ignored.
func (d *Dispatcher) Enqueue(t *member.Target, b member.Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	d.Init()

	if t.MarkDeferred() {
		d.logger.Debug("target registered for deferred binding", zap.String("target", t.Name()))
	}
	if !t.AddPending(b) {
		d.logger.Debug("duplicate binding ignored",
			zap.String("target", t.Name()),
			zap.String("member", b.Member),
			zap.String("interceptor", b.Interceptor))
		return nil
	}
	d.logger.Debug("binding queued",
		zap.String("target", t.Name()),
		zap.String("member", b.Member),
		zap.String("interceptor", b.Interceptor))
	return nil
}

// Drain empties t's queue and applies each binding in request order. The
// queue is cleared before any binding runs. The first failure stops the
// drain; the remaining bindings are discarded.
func (d *Dispatcher) Drain(ctx context.Context, t *member.Target) error {
	pending := t.TakePending()
	if len(pending) == 0 {
		return nil
	}

	d.logger.Debug("draining deferred bindings",
		zap.String("target", t.Name()),
		zap.Int("pending", len(pending)))
	for _, b := range pending {
		if err := d.engine.Intercept(t, b); err != nil {
			d.logger.Debug("deferred binding failed",
				zap.String("target", t.Name()),
				zap.String("member", b.Member),
				zap.Error(err))
			return err
		}
	}
	return nil
}
