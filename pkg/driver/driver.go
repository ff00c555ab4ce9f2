// Package driver manages the devices the engine plays through.
package driver

import (
	"github.com/seashells/side/pkg/io/audio"
	"github.com/seashells/side/pkg/prop"
)

type OpenCloser interface {
	Open() error
	Close() error
}

// Info describes a registered output.
type Info struct {
	Label      string
	DeviceType DeviceType
	Priority   Priority
}

// AudioPlayer plays the chunks it reads from r until r returns an error or
// the output is closed. AudioPlay must not block.
type AudioPlayer interface {
	AudioPlay(p prop.Audio, r audio.Reader) error
}

// Adapter is what an output implementation provides.
type Adapter interface {
	OpenCloser
	AudioPlayer
	Properties() []prop.Audio
}

// Driver is a registered Adapter with an id and a tracked state.
type Driver interface {
	Adapter
	ID() string
	Info() Info
	Status() State
}
