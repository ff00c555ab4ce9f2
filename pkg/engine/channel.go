package engine

import (
	"github.com/seashells/side/pkg/gain"
)

// PlayState is the playback state of a channel.
type PlayState int

const (
	StateIdle PlayState = iota
	StatePlaying
	StateLooping
)

func (s PlayState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateLooping:
		return "looping"
	default:
		return "unknown"
	}
}

// Channel is one of the fixed playback channels. Its fields are owned by the
// Engine and only change through Engine methods.
type Channel struct {
	index int
	state PlayState

	clip   Clip
	clipID uint16
	gain   gain.Q15
	src    Source

	// fadeIn is set when the previous frame ended exactly on a loop seam.
	fadeIn bool
	seams  []int
	// err is why the last playback was cut short.
	err error
}

// Index returns the channel position, starting at 0.
func (c *Channel) Index() int { return c.index }

// State returns the playback state.
func (c *Channel) State() PlayState { return c.state }

// Clip returns the assigned clip, nil when unassigned.
func (c *Channel) Clip() Clip { return c.clip }

// ClipID returns the catalog id of the assigned clip, 0 when it was assigned
// directly.
func (c *Channel) ClipID() uint16 { return c.clipID }

// Gain returns the channel gain.
func (c *Channel) Gain() gain.Q15 { return c.gain }

// Source returns the live source, nil when idle.
func (c *Channel) Source() Source { return c.src }

// Err returns why the channel was last forced idle, or nil when playback
// ended normally or was stopped. It wraps storage.ErrStall for a storage
// stall and is cleared when the channel is started or reassigned.
func (c *Channel) Err() error { return c.err }

// PendingFadeIn reports whether the next frame starts with a fade-in.
func (c *Channel) PendingFadeIn() bool { return c.fadeIn }

// Pool is the fixed set of channels of an engine.
type Pool [Channels]Channel

func (p *Pool) init() {
	for i := range p {
		p[i] = Channel{index: i, gain: gain.Unity}
	}
}

// Active returns the number of channels that are not idle.
func (p *Pool) Active() int {
	var n int
	for i := range p {
		if p[i].state != StateIdle {
			n++
		}
	}
	return n
}
