package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tgt := NewTarget("Greeter").
		DefineMethod("foo", constant("foo")).
		DefineStatic("bar", constant("bar"))

	assert.Equal(t, ResolvedInstance, Resolve(tgt, "foo"))
	assert.Equal(t, ResolvedStatic, Resolve(tgt, "bar"))
	assert.Equal(t, Unresolved, Resolve(tgt, "qux"))
}

func TestResolve_InstanceTakesPriority(t *testing.T) {
	tgt := NewTarget("Greeter").
		DefineMethod("bar", constant("instance")).
		DefineStatic("bar", constant("static"))

	assert.Equal(t, ResolvedInstance, Resolve(tgt, "bar"))
}

func TestResolution_Level(t *testing.T) {
	l, ok := ResolvedStatic.Level()
	assert.True(t, ok)
	assert.Equal(t, LevelStatic, l)

	_, ok = Unresolved.Level()
	assert.False(t, ok)
	assert.Equal(t, "unresolved", Unresolved.String())
}
