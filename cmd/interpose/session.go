package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/jingkaihe/interpose/internal/errx"
	"github.com/jingkaihe/interpose/pkg/deferred"
	"github.com/jingkaihe/interpose/pkg/intercept"
	"github.com/jingkaihe/interpose/pkg/lifecycle"
	"github.com/jingkaihe/interpose/pkg/manifest"
	"github.com/jingkaihe/interpose/pkg/member"
)

// session is one manifest applied to a fresh host.
type session struct {
	host       *lifecycle.Host
	engine     *intercept.Engine
	dispatcher *deferred.Dispatcher
	journal    *lifecycle.SQLJournal
	targets    []*member.Target
	skipped    []intercept.SkipEvent
}

func newSession(log *zap.Logger) *session {
	host := lifecycle.NewHost(log.Named("host"))
	engine := intercept.NewEngine(log.Named("engine"))
	s := &session{
		host:       host,
		engine:     engine,
		dispatcher: deferred.NewDispatcher(host, engine, log.Named("deferred")),
	}
	engine.SetSkipFunc(func(ev intercept.SkipEvent) {
		s.skipped = append(s.skipped, ev)
		log.Warn("binding dropped, member already wrapped",
			zap.String("member", ev.Target.Qualify(ev.Level, ev.Binding.Member)),
			zap.String("requested", ev.Binding.Interceptor),
			zap.String("existing", ev.Existing.Interceptor))
	})
	return s
}

// openSession loads and applies the manifest at path. When journalPath is
// set every phase change is also appended to that journal.
func openSession(ctx context.Context, log *zap.Logger, path, journalPath string) (*session, error) {
	m, err := manifest.LoadFile(path)
	if err != nil {
		return nil, errx.Wrap(ErrLoadManifest, err)
	}
	s := newSession(log)
	if journalPath != "" {
		j, err := lifecycle.OpenJournal(journalPath)
		if err != nil {
			return nil, err
		}
		s.journal = j
		s.host.SetJournal(j)
	}
	if err := s.apply(ctx, m); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) apply(ctx context.Context, m *manifest.Manifest) error {
	targets, err := manifest.Apply(ctx, s.host, s.engine, s.dispatcher, m)
	s.targets = targets
	if err != nil {
		return errx.Wrap(ErrApplyManifest, err)
	}
	return nil
}

func (s *session) Close() {
	s.dispatcher.Close()
	if s.journal != nil {
		_ = s.journal.Close()
	}
}
