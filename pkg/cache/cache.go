// Package cache loads whole PCM payloads into memory so they can be played
// without touching storage on the audio tick.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/seashells/side/internal/logging"
	"github.com/seashells/side/pkg/storage"
	"github.com/seashells/side/pkg/wave"
)

// DefaultMaxBytes is the largest payload a Loader will allocate by default.
const DefaultMaxBytes = 8 << 20

var logger = logging.NewLogger("side/cache")

var (
	// ErrTooLarge is returned when a payload exceeds the allocation limit.
	ErrTooLarge = errors.New("payload exceeds allocation limit")
	// ErrNoProgress is returned when a read returns no bytes before the
	// payload is complete.
	ErrNoProgress = errors.New("read made no progress")
	// ErrFull is returned when the table has no free slot.
	ErrFull = errors.New("cache: table full")
	// ErrDuplicate is returned when an id is already cached.
	ErrDuplicate = errors.New("cache: id already cached")
)

// LoadError reports why a clip could not be cached. The clip is simply left
// out of the cache.
type LoadError struct {
	Op   string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cache: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader reads complete payloads from a Device.
type Loader struct {
	Device storage.Device
	// Rate is the engine sample rate, used for the mismatch warning.
	Rate int
	// MaxBytes caps the payload size. Zero means DefaultMaxBytes.
	MaxBytes int64
}

// Load reads the whole payload of the container at path. It blocks until the
// payload is in memory, yielding the processor between reads. It never
// returns a partial buffer.
func (l *Loader) Load(ctx context.Context, path string) ([]int16, error) {
	f, err := l.Device.Open(path)
	if err != nil {
		return nil, &LoadError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var opts []wave.ParseOption
	if l.Rate > 0 {
		opts = append(opts, wave.ExpectRate(l.Rate))
	}
	h, err := wave.ParseHeader(f, f.Size(), opts...)
	if err != nil {
		return nil, &LoadError{Op: "parse", Path: path, Err: err}
	}

	maxBytes := l.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if h.DataLen > maxBytes {
		return nil, &LoadError{Op: "alloc", Path: path, Err: fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, h.DataLen, maxBytes)}
	}

	if _, err := f.Seek(h.DataStart, io.SeekStart); err != nil {
		return nil, &LoadError{Op: "seek", Path: path, Err: err}
	}

	raw := make([]byte, h.DataLen)
	var off int
	for off < len(raw) {
		if err := ctx.Err(); err != nil {
			return nil, &LoadError{Op: "read", Path: path, Err: err}
		}
		n, err := f.Read(raw[off:])
		if n == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				err = ErrNoProgress
			}
			return nil, &LoadError{Op: "read", Path: path, Err: fmt.Errorf("at byte %d: %w", off, err)}
		}
		off += n
		runtime.Gosched()
	}

	samples := make([]int16, len(raw)/2)
	wave.DecodeInt16LE(samples, raw)
	return samples, nil
}
