package storage

import (
	"errors"
	"io"
	"time"
)

// Result is the outcome of a Reader.Read call.
type Result int

const (
	// ResultOK means the requested bytes were read or the payload ended.
	ResultOK Result = iota
	// ResultExhausted means the recovery budget ran out with the medium still
	// present. The caller should treat the source as stalled.
	ResultExhausted
	// ResultFatal means the medium could not be reinitialized at any clock.
	ResultFatal
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultExhausted:
		return "exhausted"
	case ResultFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Options bound the recovery ladder of a Reader.
type Options struct {
	// Retries is how many times an empty read is retried in place.
	Retries int
	// Backoff is the pause before each in-place retry.
	Backoff time.Duration
	// Reopens is how many times a handle is reopened and its header re-parsed.
	Reopens int
	// Clocks are the bus clocks tried, in order, when remounting the medium.
	Clocks []uint32
	// Budget caps the recovery attempts of a single Read across all
	// strategies.
	Budget int
	// Rate is the engine sample rate, used for header re-validation.
	Rate int
}

// DefaultOptions returns the recovery bounds used on the Side node.
func DefaultOptions() Options {
	return Options{
		Retries: 2,
		Backoff: time.Millisecond,
		Reopens: 2,
		Clocks:  []uint32{12000000, 8000000},
		Budget:  5,
	}
}

type failure int

const (
	// failClosed means the stream has no usable handle.
	failClosed failure = iota
	// failEmpty means an open handle returned no bytes.
	failEmpty
)

type outcome int

const (
	recovered outcome = iota
	failed
	fatal
)

type strategy struct {
	name    string
	limit   int
	handles func(failure) bool
	run     func(r *Reader, s *Stream) outcome
}

const maxStrategies = 4

// Reader reads payload bytes for a Stream and works through an ordered
// recovery ladder when the medium misbehaves: retry in place, reopen the
// file, remount the medium. All strategies share one attempt budget per call.
type Reader struct {
	dev       Device
	opts      Options
	ladder    []strategy
	reopenAll func() bool
	sleep     func(time.Duration)
}

// NewReader creates a Reader for dev. reopenAll is called after a successful
// remount and must reopen and re-validate every open stream on dev, since a
// remount invalidates all handles. When nil, only the stream being read is
// reopened.
func NewReader(dev Device, opts Options, reopenAll func() bool) *Reader {
	r := &Reader{
		dev:       dev,
		opts:      opts,
		reopenAll: reopenAll,
		sleep:     time.Sleep,
	}
	r.ladder = []strategy{
		{
			name:    "retry",
			limit:   opts.Retries,
			handles: func(f failure) bool { return f == failEmpty },
			run:     (*Reader).retry,
		},
		{
			name:    "reopen",
			limit:   opts.Reopens,
			handles: func(failure) bool { return true },
			run:     (*Reader).reopen,
		},
		{
			name:    "remount",
			limit:   1,
			handles: func(failure) bool { return true },
			run:     (*Reader).remount,
		},
	}
	return r
}

// Read fills dst from the stream's cursor, stopping early at the end of the
// payload. Bytes already placed in dst are never overwritten by a later
// attempt. A short count with ResultOK means the payload ended.
func (r *Reader) Read(s *Stream, dst []byte) (int, Result) {
	var used [maxStrategies]int
	budget := r.opts.Budget
	total := 0

	for total < len(dst) {
		remaining := s.Remaining()
		if remaining <= 0 {
			break
		}

		if s.File == nil {
			if res := r.recover(s, failClosed, &used, &budget); res != ResultOK {
				return total, res
			}
			continue
		}

		if _, err := s.File.Seek(s.DataStart+s.Cur, io.SeekStart); err != nil {
			logger.Debugf("%s: seek failed: %v", s.Path, err)
			s.Close()
			continue
		}

		chunk := int64(len(dst) - total)
		if chunk > remaining {
			chunk = remaining
		}
		n, err := s.File.Read(dst[total : total+int(chunk)])
		if n > 0 {
			s.Cur += int64(n)
			total += n
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			logger.Debugf("%s: read failed at %d: %v", s.Path, s.Cur, err)
		}
		if res := r.recover(s, failEmpty, &used, &budget); res != ResultOK {
			return total, res
		}
	}

	return total, ResultOK
}

func (r *Reader) recover(s *Stream, f failure, used *[maxStrategies]int, budget *int) Result {
	for i, st := range r.ladder {
		if !st.handles(f) || used[i] >= st.limit {
			continue
		}
		if *budget <= 0 {
			break
		}
		used[i]++
		*budget--

		switch st.run(r, s) {
		case recovered:
			return ResultOK
		case fatal:
			logger.Errorf("%s: medium lost, giving up", s.Path)
			return ResultFatal
		}
	}

	logger.Warnf("%s: recovery exhausted at byte %d", s.Path, s.Cur)
	return ResultExhausted
}

func (r *Reader) retry(s *Stream) outcome {
	r.sleep(r.opts.Backoff)
	return recovered
}

func (r *Reader) reopen(s *Stream) outcome {
	if err := s.Reopen(r.dev, r.opts.Rate); err != nil {
		logger.Warnf("reopen failed: %v", err)
		return failed
	}
	logger.Infof("%s: reopened at byte %d", s.Path, s.Cur)
	return recovered
}

func (r *Reader) remount(s *Stream) outcome {
	if !Remount(r.dev, r.opts.Clocks) {
		return fatal
	}

	if r.reopenAll != nil {
		r.reopenAll()
	} else if err := s.Reopen(r.dev, r.opts.Rate); err != nil {
		logger.Warnf("reopen after remount failed: %v", err)
	}

	if s.File == nil {
		return failed
	}
	return recovered
}

// Remount reinitializes dev at each clock in turn until one succeeds.
func Remount(dev Device, clocks []uint32) bool {
	for _, hz := range clocks {
		if err := dev.Reinit(hz); err != nil {
			logger.Warnf("remount at %d Hz failed: %v", hz, err)
			continue
		}
		logger.Infof("remounted at %d Hz", hz)
		return true
	}
	return false
}
