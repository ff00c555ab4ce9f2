// Package otospeaker plays audio through the host sound system using oto.
// Unlike package speaker it needs no cgo on most platforms.
package otospeaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/seashells/side/internal/logging"
	"github.com/seashells/side/pkg/driver"
	"github.com/seashells/side/pkg/driver/availability"
	"github.com/seashells/side/pkg/io/audio"
	"github.com/seashells/side/pkg/prop"
)

const defaultLatency = 40 * time.Millisecond

var logger = logging.NewLogger("side/driver/otospeaker")

// oto allows a single context per process, fixed at its first use.
var (
	ctxMu   sync.Mutex
	ctx     *oto.Context
	ctxProp prop.Audio
)

type speaker struct {
	player *oto.Player
}

// Initialize registers the default output of the host with the driver
// manager.
func Initialize() {
	driver.GetManager().Register(&speaker{}, driver.Info{
		Label:      "oto default output",
		DeviceType: driver.Speaker,
		Priority:   driver.PriorityLow,
	})
}

func sharedContext(p prop.Audio) (*oto.Context, error) {
	ctxMu.Lock()
	defer ctxMu.Unlock()

	if ctx != nil {
		if ctxProp.SampleRate != p.SampleRate || ctxProp.ChannelCount != p.ChannelCount {
			return nil, fmt.Errorf("otospeaker: already playing %v: %w", ctxProp, availability.ErrBusy)
		}
		return ctx, nil
	}

	c, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   p.SampleRate,
		ChannelCount: p.ChannelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   p.Latency,
	})
	if err != nil {
		return nil, fmt.Errorf("otospeaker: %w", err)
	}
	<-ready

	ctx, ctxProp = c, p
	return ctx, nil
}

func (s *speaker) Open() error {
	return nil
}

func (s *speaker) Close() error {
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}

func (s *speaker) AudioPlay(p prop.Audio, r audio.Reader) error {
	if p.SampleSize != 0 && p.SampleSize != 2 {
		return fmt.Errorf("otospeaker: unsupported sample size %d", p.SampleSize)
	}
	if p.Latency == 0 {
		p.Latency = defaultLatency
	}

	c, err := sharedContext(p)
	if err != nil {
		return err
	}
	s.player = c.NewPlayer(audio.NewByteReader(r))
	s.player.Play()
	logger.Infof("playing %v", p)
	return nil
}

func (s *speaker) Properties() []prop.Audio {
	return []prop.Audio{
		{ChannelCount: 2, SampleRate: 44100, SampleSize: 2, Latency: defaultLatency},
		{ChannelCount: 1, SampleRate: 44100, SampleSize: 2, Latency: defaultLatency},
	}
}
