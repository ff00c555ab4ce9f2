package engine

import (
	"fmt"

	"github.com/seashells/side/pkg/gain"
	"github.com/seashells/side/pkg/storage"
)

// FillFrame writes the next frame of channel idx into dst, which must hold
// exactly FrameSamples samples. Every sample of dst is written: an idle
// channel produces silence, and a clip that ends or stalls mid-frame is
// followed by zeros. A looping clip wraps inside the frame. A stall is not an
// error of FillFrame; it is recorded on the channel, see Channel.Err.
func (e *Engine) FillFrame(idx int, dst []int16) error {
	ch, err := e.channel(idx)
	if err != nil {
		return err
	}
	if len(dst) != e.cfg.FrameSamples {
		return fmt.Errorf("%w: got %d samples, want %d", ErrFrameSize, len(dst), e.cfg.FrameSamples)
	}
	e.fill(ch, dst)
	return nil
}

func (e *Engine) fill(ch *Channel, dst []int16) {
	fadeIn := ch.fadeIn
	ch.fadeIn = false
	ch.seams = ch.seams[:0]

	if ch.src == nil {
		clear(dst)
		return
	}

	var pos int
	var wrapped bool
	for pos < len(dst) {
		n, err := ch.src.pull(dst[pos:])
		pos += n
		emptyLoop := wrapped && n == 0
		wrapped = false

		if err == nil && n == 0 && !ch.src.exhausted() {
			err = storage.ErrStall
		}
		if err != nil {
			logger.Warnf("CH%d: %s stalled, stopping: %v", ch.index+1, ch.clip, err)
			clear(dst[pos:])
			e.release(ch)
			ch.err = fmt.Errorf("CH%d: %s: %w", ch.index+1, ch.clip, err)
			break
		}
		if !ch.src.exhausted() {
			continue
		}
		if ch.state != StateLooping || emptyLoop {
			logger.Debugf("CH%d: %s finished", ch.index+1, ch.clip)
			clear(dst[pos:])
			e.release(ch)
			break
		}

		ch.src.rewind()
		wrapped = true
		if pos == len(dst) {
			// The seam falls on the frame boundary: fade this tail out and
			// the head of the next frame in.
			rampOut(dst, e.cfg.DeclickSamples)
			ch.fadeIn = true
			break
		}
		ch.seams = append(ch.seams, pos)
	}

	if fadeIn {
		rampIn(dst, e.cfg.DeclickSamples)
	}
	declick(dst, ch.seams, e.cfg.DeclickSamples)
	gain.Apply(dst, ch.gain)
}
