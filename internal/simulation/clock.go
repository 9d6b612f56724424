// Package simulation drives the editor's visual simulation: a play/pause
// clock and messages that animate from one device to another. It carries no
// protocol semantics.
//
// Neither type is safe for concurrent use; service.EditorService guards them.
package simulation

import "time"

// StepInterval is how far one Step advances simulated time
const StepInterval = 100 * time.Millisecond

// Speed bounds accepted by SetSpeed
const (
	MinSpeed = 0.1
	MaxSpeed = 5.0
)

// Clock tracks whether the simulation runs and how much simulated time passed
type Clock struct {
	running bool
	playing bool
	speed   float64
	elapsed time.Duration
}

// ClockState is a snapshot of a Clock
type ClockState struct {
	Running bool    `json:"running"`
	Playing bool    `json:"playing"`
	Speed   float64 `json:"speed"`
	TimeMs  int64   `json:"time_ms"`
}

// NewClock creates a stopped clock at speed 1
func NewClock() *Clock {
	return &Clock{speed: 1}
}

// Start marks the simulation running and playing
func (c *Clock) Start() {
	c.running = true
	c.playing = true
}

// Pause stops playback; the simulation stays running
func (c *Clock) Pause() {
	c.playing = false
}

// Stop halts the simulation and rewinds time to zero
func (c *Clock) Stop() {
	c.running = false
	c.playing = false
	c.elapsed = 0
}

// Step advances simulated time by StepInterval
func (c *Clock) Step() {
	c.elapsed += StepInterval
}

// Advance moves simulated time forward by d
func (c *Clock) Advance(d time.Duration) {
	if d > 0 {
		c.elapsed += d
	}
}

// SetSpeed clamps speed to [MinSpeed, MaxSpeed] and returns the applied value
func (c *Clock) SetSpeed(speed float64) float64 {
	c.speed = max(MinSpeed, min(MaxSpeed, speed))
	return c.speed
}

// Speed returns the playback multiplier
func (c *Clock) Speed() float64 {
	return c.speed
}

// Playing reports whether ticks should advance the simulation
func (c *Clock) Playing() bool {
	return c.playing
}

// Elapsed returns the simulated time
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// State returns a snapshot of the clock
func (c *Clock) State() ClockState {
	return ClockState{
		Running: c.running,
		Playing: c.playing,
		Speed:   c.speed,
		TimeMs:  c.elapsed.Milliseconds(),
	}
}
