package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/interpose/pkg/member"
)

func TestParseCall(t *testing.T) {
	tests := []struct {
		expr string
		want Invocation
	}{
		{expr: "Greeter#foo", want: Invocation{Type: "Greeter", Level: member.LevelInstance, Member: "foo", Args: []string{}}},
		{expr: "Greeter.bar", want: Invocation{Type: "Greeter", Level: member.LevelStatic, Member: "bar", Args: []string{}}},
		{expr: `Echo#say "a b" 'c'  d`, want: Invocation{Type: "Echo", Level: member.LevelInstance, Member: "say", Args: []string{"a b", "c", "d"}}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseCall(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCall_Invalid(t *testing.T) {
	for _, expr := range []string{"", "   ", "Greeter", "#foo", "Greeter.", `Greeter#foo "unterminated`} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseCall(expr)
			assert.ErrorIs(t, err, ErrInvalidCall)
		})
	}
}

func TestInvocation_String(t *testing.T) {
	inv, err := ParseCall(`Echo#say "a b"`)
	require.NoError(t, err)
	assert.Equal(t, `Echo#say 'a b'`, inv.String())
}

func TestInvocation_UnknownType(t *testing.T) {
	s := newStack(t)
	inv, err := ParseCall("Nope#foo")
	require.NoError(t, err)
	_, err = inv.Invoke(context.Background(), s.host)
	assert.ErrorIs(t, err, ErrUnknownType)
}
