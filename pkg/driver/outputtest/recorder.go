// Package outputtest provides an in-memory output for testing.
package outputtest

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/seashells/side/pkg/driver"
	"github.com/seashells/side/pkg/io/audio"
	"github.com/seashells/side/pkg/prop"
	"github.com/seashells/side/pkg/wave"
)

// defaultPeriod is the period, in sample frames, used when the playback
// properties carry no latency.
const defaultPeriod = 512

// Recorder is an output that keeps every sample it plays.
type Recorder struct {
	mu      sync.Mutex
	samples []int16
	chunks  int
	prop    prop.Audio

	closed chan struct{}
	done   chan struct{}
}

// Register adds a Recorder to m.
func Register(m *driver.Manager, label string) (*Recorder, driver.Driver) {
	r := &Recorder{}
	d := m.Register(r, driver.Info{Label: label, DeviceType: driver.Virtual})
	return r, d
}

func (r *Recorder) Open() error {
	r.closed = make(chan struct{})
	r.done = make(chan struct{})
	return nil
}

func (r *Recorder) Close() error {
	close(r.closed)
	<-r.done
	return nil
}

func (r *Recorder) Properties() []prop.Audio {
	return []prop.Audio{
		{ChannelCount: 1, SampleRate: 44100, SampleSize: 2},
		{ChannelCount: 2, SampleRate: 44100, SampleSize: 2},
	}
}

// AudioPlay pulls src as little-endian bytes one period at a time, the way a
// device callback does, and decodes every period back into samples. The
// period is the latency of p; with a latency set, reads are paced like a real
// device. Playback ends when src fails or the recorder is closed.
func (r *Recorder) AudioPlay(p prop.Audio, src audio.Reader) error {
	if p.ChannelCount <= 0 {
		return fmt.Errorf("outputtest: invalid channel count %d", p.ChannelCount)
	}
	period := p.LatencySamples()
	if period <= 0 {
		period = defaultPeriod
	}
	frameBytes := p.ChannelCount * 2

	r.mu.Lock()
	r.prop = p
	r.mu.Unlock()

	closed, done := r.closed, r.done
	br := audio.NewByteReader(src)
	buf := make([]byte, period*frameBytes)
	go func() {
		defer close(done)
		next := time.Now()
		for {
			select {
			case <-closed:
				return
			default:
			}
			if p.Latency > 0 {
				time.Sleep(time.Until(next))
				next = next.Add(p.Latency)
			}

			n, err := io.ReadFull(br, buf)
			n -= n % frameBytes
			if n > 0 {
				chunk, derr := wave.Decode(buf[:n], p.ChannelCount)
				if derr != nil {
					err = derr
				} else {
					r.mu.Lock()
					r.samples = append(r.samples, chunk.Data...)
					r.chunks++
					r.mu.Unlock()
				}
			}
			if err != nil {
				<-closed
				return
			}
		}
	}()
	return nil
}

// Samples returns a copy of the interleaved samples played so far.
func (r *Recorder) Samples() []int16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int16(nil), r.samples...)
}

// Chunks returns the number of periods played so far.
func (r *Recorder) Chunks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chunks
}

// Prop returns the properties playback was started with.
func (r *Recorder) Prop() prop.Audio {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prop
}

// WaitChunks waits until at least n periods were played.
func (r *Recorder) WaitChunks(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r.Chunks() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return r.Chunks() >= n
}
