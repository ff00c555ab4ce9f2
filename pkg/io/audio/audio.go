// Package audio moves mixed PCM chunks from the engine to output devices.
package audio

import (
	"github.com/seashells/side/pkg/gain"
	"github.com/seashells/side/pkg/wave"
)

// Reader produces interleaved 16-bit chunks.
type Reader interface {
	Read() (*wave.Int16Interleaved, error)
}

type ReaderFunc func() (*wave.Int16Interleaved, error)

func (rf ReaderFunc) Read() (*wave.Int16Interleaved, error) {
	return rf()
}

// TransformFunc produces a new Reader that will produces a transformed audio
type TransformFunc func(r Reader) Reader

// Merge merges transforms and produces a new TransformFunc that will execute
// transforms in order
func Merge(transforms ...TransformFunc) TransformFunc {
	return func(r Reader) Reader {
		for _, transform := range transforms {
			if transform == nil {
				continue
			}

			r = transform(r)
		}

		return r
	}
}

// Volume scales every chunk by g in place.
func Volume(g gain.Q15) TransformFunc {
	return func(r Reader) Reader {
		if g == gain.Unity {
			return r
		}
		return ReaderFunc(func() (*wave.Int16Interleaved, error) {
			chunk, err := r.Read()
			if err != nil {
				return nil, err
			}
			gain.Apply(chunk.Data, g)
			return chunk, nil
		})
	}
}
