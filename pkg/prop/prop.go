// Package prop describes the PCM streams outputs are opened with and how a
// requested stream is matched against what an output supports.
package prop

import (
	"fmt"
	"time"
)

// Audio represents an audio's properties
type Audio struct {
	ChannelCount int
	SampleRate   int
	// SampleSize is the size of one sample in bytes.
	SampleSize int
	// Latency is the duration of audio buffered between the engine and the
	// device.
	Latency time.Duration
}

func (a Audio) String() string {
	return fmt.Sprintf("%dch %dHz %dbit %v", a.ChannelCount, a.SampleRate, a.SampleSize*8, a.Latency)
}

// Merge copies the non-zero fields of o into a.
func (a *Audio) Merge(o Audio) {
	if o.ChannelCount != 0 {
		a.ChannelCount = o.ChannelCount
	}
	if o.SampleRate != 0 {
		a.SampleRate = o.SampleRate
	}
	if o.SampleSize != 0 {
		a.SampleSize = o.SampleSize
	}
	if o.Latency != 0 {
		a.Latency = o.Latency
	}
}

// LatencySamples returns how many sample frames fit in the latency.
func (a Audio) LatencySamples() int {
	return int(int64(a.SampleRate) * int64(a.Latency) / int64(time.Second))
}

// AudioConstraints is what a caller asks of an output. Nil fields accept
// anything.
type AudioConstraints struct {
	ChannelCount IntConstraint
	SampleRate   IntConstraint
	Latency      DurationConstraint
}

// FitnessDistance scores a against c. 0 is a perfect match. ok is false when
// a violates a hard constraint.
func (c AudioConstraints) FitnessDistance(a Audio) (dist float64, ok bool) {
	ok = true
	add := func(d float64, match bool) {
		dist += d
		ok = ok && match
	}
	if c.ChannelCount != nil {
		add(c.ChannelCount.Compare(a.ChannelCount))
	}
	if c.SampleRate != nil {
		add(c.SampleRate.Compare(a.SampleRate))
	}
	if c.Latency != nil {
		add(c.Latency.Compare(a.Latency))
	}
	return dist, ok
}

// Select returns the candidate closest to c that satisfies it.
func Select(c AudioConstraints, candidates []Audio) (Audio, bool) {
	var best Audio
	var found bool
	bestDist := 0.0
	for _, a := range candidates {
		d, ok := c.FitnessDistance(a)
		if !ok {
			continue
		}
		if !found || d < bestDist {
			best, bestDist, found = a, d, true
		}
	}
	return best, found
}
