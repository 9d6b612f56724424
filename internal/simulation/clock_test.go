package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_Lifecycle(t *testing.T) {
	c := NewClock()
	assert.Equal(t, ClockState{Speed: 1}, c.State())

	c.Start()
	assert.True(t, c.State().Running)
	assert.True(t, c.Playing())

	c.Step()
	c.Step()
	assert.Equal(t, 200*time.Millisecond, c.Elapsed())

	c.Pause()
	state := c.State()
	assert.True(t, state.Running)
	assert.False(t, state.Playing)
	assert.Equal(t, int64(200), state.TimeMs)

	c.Stop()
	assert.Equal(t, ClockState{Speed: 1}, c.State())
}

func TestClock_SetSpeed(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1, 1},
		{2.5, 2.5},
		{0, MinSpeed},
		{-3, MinSpeed},
		{0.1, 0.1},
		{5, 5},
		{12, MaxSpeed},
	}

	for _, tt := range tests {
		c := NewClock()
		assert.Equal(t, tt.want, c.SetSpeed(tt.in), "SetSpeed(%v)", tt.in)
		assert.Equal(t, tt.want, c.Speed())
	}
}

func TestClock_Advance(t *testing.T) {
	c := NewClock()
	c.Advance(250 * time.Millisecond)
	c.Advance(-time.Second)
	assert.Equal(t, 250*time.Millisecond, c.Elapsed())
}
