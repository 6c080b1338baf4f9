package lifecycle

import (
	"github.com/jingkaihe/interpose/internal/errx"
)

type Phase string

const (
	// PhaseDefining means the type body is being assembled.
	PhaseDefining Phase = "defining"
	// PhaseComplete means the body finished and observers were notified.
	PhaseComplete Phase = "complete"
)

var allowedTransitions = map[Phase]map[Phase]bool{
	PhaseDefining: {
		PhaseDefining: true,
		PhaseComplete: true,
	},
	PhaseComplete: {
		PhaseDefining: true,
	},
}

func validateTransition(from, to Phase) error {
	if from == "" {
		from = PhaseDefining
	}
	if to == "" {
		return errx.With(ErrInvalidPhase, " empty target phase from %q", from)
	}
	allowed := allowedTransitions[from]
	if len(allowed) == 0 || !allowed[to] {
		return errx.With(ErrInvalidPhase, " %q -> %q", from, to)
	}
	return nil
}
