package engine

import (
	"github.com/seashells/side/pkg/cache"
	"github.com/seashells/side/pkg/storage"
)

// Channels is the number of playback channels of a Side node.
const Channels = 4

// Config holds the engine parameters. Zero fields take their defaults.
type Config struct {
	// SampleRate is the engine rate in Hz.
	SampleRate int
	// FrameSamples is the length of the frame FillFrame produces.
	FrameSamples int
	// DeclickSamples is the widest ramp applied on each side of a loop seam.
	// A negative value disables declicking.
	DeclickSamples int
	// MasterGainDB is applied by Mix after the channels are summed.
	MasterGainDB float64
	// CacheCapacity is the number of clips the memory cache holds.
	CacheCapacity int
	// CacheMaxBytes caps the payload size of a single cached clip.
	CacheMaxBytes int64
	// Storage bounds the recovery of storage reads.
	Storage storage.Options
}

// DefaultConfig returns the configuration of a Side node.
func DefaultConfig() Config {
	return Config{
		SampleRate:     44100,
		FrameSamples:   1024,
		DeclickSamples: 64,
		CacheCapacity:  64,
		CacheMaxBytes:  cache.DefaultMaxBytes,
		Storage:        storage.DefaultOptions(),
	}
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.FrameSamples <= 0 {
		c.FrameSamples = def.FrameSamples
	}
	if c.DeclickSamples == 0 {
		c.DeclickSamples = def.DeclickSamples
	}
	if c.DeclickSamples < 0 {
		c.DeclickSamples = 0
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = def.CacheCapacity
	}
	if c.CacheMaxBytes <= 0 {
		c.CacheMaxBytes = def.CacheMaxBytes
	}

	s := &c.Storage
	if s.Budget <= 0 {
		*s = def.Storage
	}
	if len(s.Clocks) == 0 {
		s.Clocks = def.Storage.Clocks
	}
	s.Rate = c.SampleRate
}
