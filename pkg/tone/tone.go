// Package tone synthesizes the procedural tones a channel can play instead of
// a recorded clip.
package tone

import (
	"fmt"
	"math"
	"math/rand"
)

// Kind selects the waveform algorithm.
type Kind int

const (
	Constant Kind = iota
	SweepUp
	SweepDown
	Siren
	Noise
	DoubleClick
	TripleBeep
)

func (k Kind) String() string {
	switch k {
	case Constant:
		return "constant"
	case SweepUp:
		return "sweep-up"
	case SweepDown:
		return "sweep-down"
	case Siren:
		return "siren"
	case Noise:
		return "noise"
	case DoubleClick:
		return "double-click"
	case TripleBeep:
		return "triple-beep"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	// Headroom keeps synthesized output below full scale so the gain and mix
	// stages do not clip.
	Headroom = 0.5

	sweepPeriod = 0.4 // seconds
	sirenPeriod = 1.2 // seconds
	beepLength  = 0.04
	gapLength   = 0.04
	tailLength  = 0.4
)

// Params describes a tone. F2 is only used by sweeps and the siren.
type Params struct {
	Kind Kind
	F1   float64
	F2   float64
	// On gates noise into bursts of On seconds followed by the trailing
	// silence. Zero plays continuous noise.
	On float64
}

// State is the running state of one channel's tone. It is owned by the
// channel and mutated by Next.
type State struct {
	Params

	rate    float64
	phase   float64
	lfo     float64
	pos     int
	sweepN  int
	pattern int
	active  int
	onLen   int
	step    int
	rng     *rand.Rand
}

// New prepares a tone for playback at rate samples per second.
func New(p Params, rate int) *State {
	s := &State{
		Params: p,
		rate:   float64(rate),
		sweepN: int(sweepPeriod * float64(rate)),
	}
	if s.sweepN < 1 {
		s.sweepN = 1
	}

	beep := int(beepLength * float64(rate))
	gap := int(gapLength * float64(rate))
	beeps := 0
	switch p.Kind {
	case DoubleClick:
		beeps = 2
	case TripleBeep:
		beeps = 3
	}
	s.step = beep + gap
	s.onLen = beep
	s.active = beeps * s.step
	s.pattern = s.active + int(tailLength*float64(rate))
	if p.Kind == Noise && p.On > 0 {
		s.onLen = max(1, int(p.On*float64(rate)))
		s.pattern = s.onLen + int(tailLength*float64(rate))
	}
	if s.pattern < 1 {
		s.pattern = 1
	}
	if s.step < 1 {
		s.step = 1
	}
	s.rng = rand.New(rand.NewSource(s.seed()))
	return s
}

func (s *State) seed() int64 {
	return int64(s.Kind)<<32 | int64(s.F1)
}

// Reset rewinds the tone to its first sample.
func (s *State) Reset() {
	s.phase = 0
	s.lfo = 0
	s.pos = 0
	s.rng = rand.New(rand.NewSource(s.seed()))
}

// Next returns the next sample in [-1, 1] and advances the state.
func (s *State) Next() float32 {
	var v float64
	switch s.Kind {
	case Constant:
		v = s.osc(s.F1)

	case SweepUp, SweepDown:
		t := float64(s.pos%s.sweepN) / float64(s.sweepN)
		if s.Kind == SweepDown {
			t = 1 - t
		}
		v = s.osc(s.F1 + (s.F2-s.F1)*t)

	case Siren:
		mid := (s.F1 + s.F2) / 2
		depth := (s.F2 - s.F1) / 2
		f := mid + depth*math.Sin(2*math.Pi*s.lfo)
		s.lfo += 1 / (sirenPeriod * s.rate)
		if s.lfo >= 1 {
			s.lfo--
		}
		v = s.osc(f)

	case Noise:
		if s.On > 0 && s.pos%s.pattern >= s.onLen {
			break
		}
		v = (s.rng.Float64()*2 - 1) * Headroom

	case DoubleClick, TripleBeep:
		p := s.pos % s.pattern
		if p < s.active && p%s.step < s.onLen {
			v = s.osc(s.F1)
		}
	}
	s.pos++
	return float32(v)
}

func (s *State) osc(f float64) float64 {
	v := math.Sin(2*math.Pi*s.phase) * Headroom
	s.phase += f / s.rate
	if s.phase >= 1 {
		s.phase -= math.Floor(s.phase)
	}
	return v
}

// ToInt16 converts a sample in [-1, 1] to 16-bit PCM, clamping out-of-range
// values.
func ToInt16(v float32) int16 {
	x := math.Round(float64(v) * math.MaxInt16)
	if x > math.MaxInt16 {
		return math.MaxInt16
	}
	if x < math.MinInt16 {
		return math.MinInt16
	}
	return int16(x)
}

// Fill writes len(dst) samples into dst.
func (s *State) Fill(dst []int16) {
	for i := range dst {
		dst[i] = ToInt16(s.Next())
	}
}
