package tone

import (
	"math"
	"testing"
)

const rate = 44100

// crossings counts upward zero crossings in n samples, which approximates the
// frequency when n is one second.
func crossings(s *State, n int) int {
	var count int
	prev := s.Next()
	for i := 1; i < n; i++ {
		v := s.Next()
		if prev < 0 && v >= 0 {
			count++
		}
		prev = v
	}
	return count
}

func TestHeadroom(t *testing.T) {
	for id, p := range presets {
		s := New(p, rate)
		var peak float64
		for i := 0; i < rate; i++ {
			v := math.Abs(float64(s.Next()))
			if v > peak {
				peak = v
			}
		}
		if peak > Headroom+1e-6 {
			t.Errorf("%d (%s) exceeds headroom: %v", id, p.Kind, peak)
		}
		if peak <= 0.1 {
			t.Errorf("%d (%s) is silent", id, p.Kind)
		}
	}
}

func TestConstantFrequency(t *testing.T) {
	s := New(Params{Kind: Constant, F1: 440}, rate)
	if n := crossings(s, rate); n < 438 || n > 442 {
		t.Errorf("expected about 440 crossings, got %d", n)
	}
}

func TestSweepDirection(t *testing.T) {
	half := int(sweepPeriod * rate / 2)

	up := New(Params{Kind: SweepUp, F1: 400, F2: 1600}, rate)
	upFirst := crossings(up, half)
	upSecond := crossings(up, half)
	if upFirst >= upSecond {
		t.Errorf("sweep up must rise: %d then %d", upFirst, upSecond)
	}

	down := New(Params{Kind: SweepDown, F1: 400, F2: 1600}, rate)
	downFirst := crossings(down, half)
	downSecond := crossings(down, half)
	if downFirst <= downSecond {
		t.Errorf("sweep down must fall: %d then %d", downFirst, downSecond)
	}
}

func TestSirenStaysWithinBounds(t *testing.T) {
	s := New(Params{Kind: Siren, F1: 500, F2: 900}, rate)
	n := int(sirenPeriod * rate)
	f := float64(crossings(s, n)) / sirenPeriod
	if math.Abs(f-700) > 10 {
		t.Errorf("expected a mean of about 700 Hz, got %v", f)
	}
}

func TestNoiseIsReproducible(t *testing.T) {
	a := New(Params{Kind: Noise}, rate)
	b := New(Params{Kind: Noise}, rate)
	first := make([]float32, 64)
	for i := range first {
		first[i] = a.Next()
		if v := b.Next(); v != first[i] {
			t.Fatalf("sample %d differs: %v != %v", i, first[i], v)
		}
	}

	a.Reset()
	for i := range first {
		if v := a.Next(); v != first[i] {
			t.Fatalf("sample %d differs after reset: %v != %v", i, first[i], v)
		}
	}
}

func TestNoiseBursts(t *testing.T) {
	testCases := map[string]struct {
		id uint16
		on int
	}{
		"Short": {id: BurstShortID, on: rate / 10},
		"Long":  {id: BurstLongID, on: rate * 4 / 10},
	}

	tail := int(tailLength * rate)
	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			p, ok := Preset(testCase.id)
			if !ok {
				t.Fatalf("no preset for %d", testCase.id)
			}
			s := New(p, rate)

			var loud int
			for i := 0; i < testCase.on; i++ {
				if s.Next() != 0 {
					loud++
				}
			}
			if loud < testCase.on*9/10 {
				t.Errorf("expected a burst of %d samples, only %d were loud", testCase.on, loud)
			}
			for i := 0; i < tail; i++ {
				if v := s.Next(); v != 0 {
					t.Fatalf("sample %d of the gap is %v", i, v)
				}
			}
			if s.Next() == 0 && s.Next() == 0 {
				t.Error("the next burst did not start")
			}
		})
	}
}

func TestClickPatterns(t *testing.T) {
	beep := int(beepLength * rate)
	step := beep + int(gapLength*rate)

	testCases := map[string]struct {
		kind  Kind
		beeps int
	}{
		"DoubleClick": {kind: DoubleClick, beeps: 2},
		"TripleBeep":  {kind: TripleBeep, beeps: 3},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			s := New(Params{Kind: testCase.kind, F1: 1000}, rate)
			pattern := testCase.beeps*step + int(tailLength*rate)
			out := make([]float32, 2*pattern)
			for i := range out {
				out[i] = s.Next()
			}

			for i, v := range out {
				p := i % pattern
				inBeep := p < testCase.beeps*step && p%step < beep
				if !inBeep && v != 0 {
					t.Fatalf("sample %d should be silent, got %v", i, v)
				}
			}

			var loud int
			for _, v := range out[:beep] {
				if v != 0 {
					loud++
				}
			}
			if loud <= beep/2 {
				t.Errorf("first beep is mostly silent: %d of %d", loud, beep)
			}
		})
	}
}

func TestToInt16(t *testing.T) {
	testCases := map[float32]int16{
		0:    0,
		1:    32767,
		-1:   -32767,
		2:    32767,
		-2:   -32768,
		0.5:  16384,
		-0.5: -16384,
	}
	for in, expected := range testCases {
		if out := ToInt16(in); out != expected {
			t.Errorf("ToInt16(%v): expected %d, got %d", in, expected, out)
		}
	}
}

func TestFill(t *testing.T) {
	s := New(Params{Kind: Constant, F1: 1000}, rate)
	buf := make([]int16, 256)
	s.Fill(buf)
	for i, v := range buf {
		if v > 16384 || v < -16384 {
			t.Fatalf("sample %d exceeds headroom: %d", i, v)
		}
	}
	if buf[0] != 0 || buf[1] == 0 {
		t.Errorf("expected a sine starting at 0, got %v", buf[:2])
	}
}

func TestPreset(t *testing.T) {
	p, ok := Preset(SirenSlowID)
	if !ok || p.Kind != Siren {
		t.Errorf("expected the slow siren, got %+v %v", p, ok)
	}
	if _, ok := Preset(1001); ok {
		t.Error("1001 is not a tone")
	}
}
