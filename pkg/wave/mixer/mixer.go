// Package mixer combines channel frames into output buffers.
package mixer

import (
	"errors"
	"math"

	"github.com/seashells/side/pkg/gain"
	"github.com/seashells/side/pkg/wave"
)

// ChannelMixer mixes audio into specific channels.
type ChannelMixer interface {
	Mix(dst wave.Audio, src wave.Audio) error
}

// MonoMixer mixes channels into monaural audio.
type MonoMixer struct {
}

func (m *MonoMixer) Mix(dst wave.Audio, src wave.Audio) error {
	if dst.ChunkInfo().Len != src.ChunkInfo().Len {
		return errors.New("buffer size mismatch")
	}
	dstSetter, ok := dst.(wave.EditableAudio)
	if !ok {
		return errors.New("destination buffer is not settable")
	}

	n := src.ChunkInfo().Len
	channels := src.ChunkInfo().Channels
	dstChannels := dst.ChunkInfo().Channels
	for i := 0; i < n; i++ {
		var mean int64
		for ch := 0; ch < channels; ch++ {
			mean += int64(src.At(i, ch))
		}
		mean /= int64(channels)

		for ch := 0; ch < dstChannels; ch++ {
			dstSetter.Set(i, ch, int16(mean))
		}
	}
	return nil
}

// StereoPairs routes four channel frames to two stereo outputs: channels 0
// and 1 become the left and right of output 0, channels 2 and 3 those of
// output 1. master is applied to every sample. All frames must have the same
// length.
func StereoPairs(frames [4][]int16, master gain.Q15) [2]*wave.Int16Interleaved {
	n := len(frames[0])
	var out [2]*wave.Int16Interleaved
	for k := range out {
		out[k] = wave.NewInt16Interleaved(wave.ChunkInfo{Len: n, Channels: 2})
		l, r := frames[2*k], frames[2*k+1]
		for i := 0; i < n; i++ {
			out[k].Data[2*i] = gain.Mul(l[i], master)
			out[k].Data[2*i+1] = gain.Mul(r[i], master)
		}
	}
	return out
}

// Sum adds frames sample by sample into a mono buffer, clamping to the int16
// range before master is applied.
func Sum(frames [][]int16, master gain.Q15) *wave.Int16Interleaved {
	var n int
	if len(frames) > 0 {
		n = len(frames[0])
	}
	out := wave.NewInt16Interleaved(wave.ChunkInfo{Len: n, Channels: 1})
	for i := 0; i < n; i++ {
		var acc int32
		for _, f := range frames {
			acc += int32(f[i])
		}
		out.Data[i] = gain.Mul(clamp(acc), master)
	}
	return out
}

func clamp(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
