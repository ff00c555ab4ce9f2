package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/seashells/side/pkg/driver"
	"github.com/seashells/side/pkg/engine"
	"github.com/seashells/side/pkg/gain"
	"github.com/seashells/side/pkg/io/audio"
	"github.com/seashells/side/pkg/prop"
	"github.com/seashells/side/pkg/wave"
	"github.com/seashells/side/pkg/wave/mixer"
)

// queuedFrames bounds how far the engine runs ahead of the device.
const queuedFrames = 4

type playOptions struct {
	// pair is the stereo pair sent to the output, or -1 for a mono down-mix
	// of all four channels on both sides.
	pair     int
	frames   int
	volumeDB float64
	// commands, when set, is drained before every tick.
	commands *engine.Queue
}

// play feeds one stereo pair of the engine mix to d until frames frames were
// queued, the context ends or the process is interrupted. frames 0 means no
// limit.
func play(ctx context.Context, e *engine.Engine, d driver.Driver, opts playOptions) error {
	cfg := e.Config()

	if err := d.Open(); err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Warnf("close output: %v", err)
		}
	}()

	p, ok := prop.Select(prop.AudioConstraints{
		ChannelCount: prop.IntExact(2),
		SampleRate:   prop.IntExact(cfg.SampleRate),
	}, d.Properties())
	if !ok {
		return fmt.Errorf("output %s cannot play 2ch %d Hz", d.Info().Label, cfg.SampleRate)
	}

	queue := make(chan *wave.Int16Interleaved, queuedFrames)
	silence := wave.ChunkInfo{Len: cfg.FrameSamples, Channels: 2, SamplingRate: cfg.SampleRate}
	src := audio.Merge(
		audio.Volume(gain.FromDecibels(opts.volumeDB)),
	)(audio.FromChannel(queue, silence))
	if err := d.AudioPlay(p, src); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case sig := <-sigs:
			logger.Infof("%v, stopping", sig)
		case <-gctx.Done():
		}
		cancel()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return feed(gctx, e, queue, opts)
	})
	return g.Wait()
}

// feed runs the engine and queues the chosen pair. It is the only goroutine
// touching the engine.
func feed(ctx context.Context, e *engine.Engine, queue chan<- *wave.Int16Interleaved, opts playOptions) error {
	var spread mixer.ChannelMixer = &mixer.MonoMixer{}
	for n := 0; opts.frames == 0 || n < opts.frames; n++ {
		if opts.commands != nil {
			opts.commands.Drain(e)
		}

		frames := e.Tick()
		var out *wave.Int16Interleaved
		if opts.pair < 0 {
			mono := e.Downmix(frames)
			out = wave.NewInt16Interleaved(wave.ChunkInfo{Len: mono.Size.Len, Channels: 2, SamplingRate: e.Config().SampleRate})
			if err := spread.Mix(out, mono); err != nil {
				return err
			}
		} else {
			out = e.Mix(frames)[opts.pair]
		}

		select {
		case queue <- out:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
