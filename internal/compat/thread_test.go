package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadLifecycle(t *testing.T) {
	th := NewThread("top", nil)
	assert.Equal(t, StateRunning, th.State())
	assert.Equal(t, []string{"top"}, th.Stack)

	require.NoError(t, th.Yield())
	assert.Equal(t, StateYielded, th.State())
	require.NoError(t, th.Resume())
	assert.Equal(t, StateRunning, th.State())
	assert.Equal(t, 1, th.Resumes())

	require.NoError(t, th.Yield())
	require.NoError(t, th.Retire())
	assert.Equal(t, StateRetired, th.State())
}

func TestThreadIllegalTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Thread)
		step  func(*Thread) error
	}{
		{"resume while running", func(*Thread) {}, (*Thread).Resume},
		{"yield twice", func(th *Thread) { _ = th.Yield() }, (*Thread).Yield},
		{"retire twice", func(th *Thread) { _ = th.Retire() }, (*Thread).Retire},
		{"resume retired", func(th *Thread) { _ = th.Retire() }, (*Thread).Resume},
		{"yield retired", func(th *Thread) { _ = th.Retire() }, (*Thread).Yield},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewThread("top", nil)
			tt.setup(th)
			before := th.State()

			err := tt.step(th)
			require.Error(t, err)
			assert.True(t, IsIllegalTransition(err))
			assert.Equal(t, before, th.State(), "state unchanged on error")
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "yielded", StateYielded.String())
	assert.Equal(t, "retired", StateRetired.String())
	assert.Equal(t, "unknown", State(42).String())
}
