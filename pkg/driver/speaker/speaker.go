//go:build !nospeaker
// +build !nospeaker

// Package speaker plays audio through the host sound system using miniaudio.
package speaker

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/seashells/side/internal/logging"
	"github.com/seashells/side/pkg/driver"
	"github.com/seashells/side/pkg/driver/availability"
	"github.com/seashells/side/pkg/io/audio"
	"github.com/seashells/side/pkg/prop"
)

const defaultLatency = 20 * time.Millisecond

var logger = logging.NewLogger("side/driver/speaker")

var (
	initOnce sync.Once
	initErr  error
	ctx      *malgo.AllocatedContext
)

type speaker struct {
	malgo.DeviceInfo
	device *malgo.Device
}

// Initialize finds the playback devices of the host and registers them with
// the driver manager. It is safe to call more than once.
func Initialize() error {
	initOnce.Do(func() {
		initErr = initialize(driver.GetManager())
	})
	return initErr
}

func initialize(m *driver.Manager) error {
	var err error
	ctx, err = malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debugf("%v", message)
	})
	if err != nil {
		return fmt.Errorf("speaker: %w", err)
	}

	devices, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return fmt.Errorf("speaker: %w", err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("speaker: %w", availability.ErrNoDevice)
	}

	for _, device := range devices {
		info, err := ctx.DeviceInfo(malgo.Playback, device.ID, malgo.Shared)
		if err != nil {
			logger.Warnf("skipping %s: %v", device.ID.String(), err)
			continue
		}
		priority := driver.PriorityNormal
		if info.IsDefault > 0 {
			priority = driver.PriorityHigh
		}
		m.Register(&speaker{DeviceInfo: info}, driver.Info{
			Label:      device.ID.String(),
			DeviceType: driver.Speaker,
			Priority:   priority,
		})
	}
	return nil
}

func (s *speaker) Open() error {
	return nil
}

func (s *speaker) Close() error {
	if s.device != nil {
		if err := s.device.Stop(); err != nil {
			logger.Warnf("stop: %v", err)
		}
		s.device.Uninit()
		s.device = nil
	}
	return nil
}

func (s *speaker) AudioPlay(p prop.Audio, r audio.Reader) error {
	if p.SampleSize != 0 && p.SampleSize != 2 {
		return fmt.Errorf("speaker: unsupported sample size %d", p.SampleSize)
	}
	if p.Latency == 0 {
		p.Latency = defaultLatency
	}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.PerformanceProfile = malgo.LowLatency
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = uint32(p.ChannelCount)
	config.Playback.DeviceID = s.ID.Pointer()
	config.SampleRate = uint32(p.SampleRate)
	config.PeriodSizeInMilliseconds = uint32(p.Latency / time.Millisecond)

	src := audio.NewByteReader(r)
	var ended bool
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			if ended {
				clear(out)
				return
			}
			n, err := io.ReadFull(src, out)
			if err != nil {
				if err != io.EOF && err != io.ErrUnexpectedEOF {
					logger.Errorf("read: %v", err)
				}
				ended = true
				clear(out[n:])
			}
		},
	}

	device, err := malgo.InitDevice(ctx.Context, config, callbacks)
	if err != nil {
		return fmt.Errorf("speaker: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("speaker: %w", err)
	}
	s.device = device
	logger.Infof("playing %v", p)
	return nil
}

func (s *speaker) Properties() []prop.Audio {
	// miniaudio converts to the device format, so the engine rate is always
	// accepted.
	var props []prop.Audio
	for _, ch := range []int{2, 1} {
		props = append(props, prop.Audio{
			ChannelCount: ch,
			SampleRate:   44100,
			SampleSize:   2,
			Latency:      defaultLatency,
		})
	}
	return props
}
