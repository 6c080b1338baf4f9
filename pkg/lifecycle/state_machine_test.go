package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateTransition(t *testing.T) {
	require.NoError(t, validateTransition(PhaseDefining, PhaseComplete))
	require.NoError(t, validateTransition(PhaseComplete, PhaseDefining))
	require.NoError(t, validateTransition(PhaseDefining, PhaseDefining))
	require.NoError(t, validateTransition("", PhaseComplete))
	require.ErrorIs(t, validateTransition(PhaseComplete, PhaseComplete), ErrInvalidPhase)
	require.ErrorIs(t, validateTransition(PhaseDefining, ""), ErrInvalidPhase)
	require.ErrorIs(t, validateTransition(Phase("bogus"), PhaseComplete), ErrInvalidPhase)
}
