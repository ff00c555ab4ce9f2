package main

import (
	"context"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/seashells/side/pkg/engine"
)

// renderWAV runs the engine for frames frames and writes each stereo output
// to <prefix>-<n>.wav.
func renderWAV(ctx context.Context, e *engine.Engine, prefix string, frames int) (err error) {
	cfg := e.Config()

	var files [2]*os.File
	var encoders [2]*wav.Encoder
	// Each encoder patches its header before its file is closed, on every
	// return path.
	defer func() {
		for k, f := range files {
			if f == nil {
				continue
			}
			if cerr := encoders[k].Close(); err == nil && cerr != nil {
				err = fmt.Errorf("render output %d: %w", k, cerr)
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
	}()

	for k := range files {
		f, cerr := os.Create(fmt.Sprintf("%s-%d.wav", prefix, k))
		if cerr != nil {
			return cerr
		}
		files[k] = f
		encoders[k] = wav.NewEncoder(f, cfg.SampleRate, 16, 2, 1)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: cfg.SampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, cfg.FrameSamples*2),
	}
	for n := 0; n < frames; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := e.Mix(e.Tick())
		for k, enc := range encoders {
			for i, s := range out[k].Data {
				buf.Data[i] = int(s)
			}
			if err := enc.Write(buf); err != nil {
				return fmt.Errorf("render output %d: %w", k, err)
			}
		}
	}

	logger.Infof("rendered %d frames to %s-{0,1}.wav", frames, prefix)
	return nil
}
