package engine

import (
	"errors"
	"fmt"

	"github.com/seashells/side/pkg/storage"
	"github.com/seashells/side/pkg/tone"
	"github.com/seashells/side/pkg/wave"
)

// SourceMode tells where a channel's samples come from.
type SourceMode int

const (
	StorageBacked SourceMode = iota + 1
	MemoryCached
	Synthesized
)

func (m SourceMode) String() string {
	switch m {
	case StorageBacked:
		return "storage"
	case MemoryCached:
		return "memory"
	case Synthesized:
		return "tone"
	default:
		return "none"
	}
}

// Source produces the samples of a playing channel. The set of sources is
// closed: *StorageSource, *MemorySource and *ToneSource.
type Source interface {
	Mode() SourceMode

	// pull copies up to len(dst) samples and advances the cursor. It
	// returns an error when the samples could not be produced.
	pull(dst []int16) (n int, err error)
	exhausted() bool
	rewind()
	release()
}

// StorageSource streams a payload from the storage device.
type StorageSource struct {
	stream  storage.Stream
	reader  *storage.Reader
	scratch *[]byte
}

func (*StorageSource) Mode() SourceMode { return StorageBacked }

// Path returns the file being streamed.
func (s *StorageSource) Path() string { return s.stream.Path }

func (s *StorageSource) pull(dst []int16) (int, error) {
	want := len(dst) * 2
	if cap(*s.scratch) < want {
		*s.scratch = make([]byte, want)
	}
	buf := (*s.scratch)[:want]

	n, res := s.reader.Read(&s.stream, buf)
	samples := wave.DecodeInt16LE(dst, buf[:n&^1])
	switch res {
	case storage.ResultExhausted:
		return samples, storage.ErrStall
	case storage.ResultFatal:
		return samples, fmt.Errorf("%w: %w", storage.ErrStall, storage.ErrNoMedia)
	}
	return samples, nil
}

func (s *StorageSource) exhausted() bool { return s.stream.Remaining() < 2 }
func (s *StorageSource) rewind()         { s.stream.Rewind() }
func (s *StorageSource) release()        { s.stream.Close() }

// MemorySource plays a clip held in the memory cache.
type MemorySource struct {
	id      uint16
	samples []int16
	cur     int
}

func (*MemorySource) Mode() SourceMode { return MemoryCached }

// ID returns the cached clip id.
func (s *MemorySource) ID() uint16 { return s.id }

func (s *MemorySource) pull(dst []int16) (int, error) {
	n := copy(dst, s.samples[s.cur:])
	s.cur += n
	return n, nil
}

func (s *MemorySource) exhausted() bool { return s.cur >= len(s.samples) }
func (s *MemorySource) rewind()         { s.cur = 0 }
func (s *MemorySource) release()        {}

// ToneSource synthesizes a tone. It never runs out.
type ToneSource struct {
	state *tone.State
}

func (*ToneSource) Mode() SourceMode { return Synthesized }

// Params returns the tone being played.
func (s *ToneSource) Params() tone.Params { return s.state.Params }

func (s *ToneSource) pull(dst []int16) (int, error) {
	s.state.Fill(dst)
	return len(dst), nil
}

func (s *ToneSource) exhausted() bool { return false }
func (s *ToneSource) rewind()         { s.state.Reset() }
func (s *ToneSource) release()        {}

// Clip is what a channel is assigned: a file on storage, a cached payload or
// a tone. Starting playback turns it into a fresh Source.
type Clip interface {
	fmt.Stringer
	open(e *Engine) (Source, error)
}

// FileClip streams Path from the storage device.
type FileClip struct {
	Path string
}

func (c FileClip) String() string { return c.Path }

func (c FileClip) open(e *Engine) (Source, error) {
	if e.dev == nil {
		return nil, storage.ErrNoMedia
	}
	s := &StorageSource{
		stream:  storage.Stream{Path: c.Path},
		reader:  e.reader,
		scratch: &e.scratch,
	}
	if err := s.stream.Open(e.dev, e.cfg.SampleRate); err != nil {
		return nil, err
	}
	return s, nil
}

// CachedClip plays Samples from memory. Samples are shared and never
// modified.
type CachedClip struct {
	ID      uint16
	Samples []int16
}

func (c CachedClip) String() string { return fmt.Sprintf("cache:%d", c.ID) }

var errEmptyClip = errors.New("clip has no samples")

func (c CachedClip) open(*Engine) (Source, error) {
	if len(c.Samples) == 0 {
		return nil, errEmptyClip
	}
	return &MemorySource{id: c.ID, samples: c.Samples}, nil
}

// ToneClip synthesizes Params.
type ToneClip struct {
	Params tone.Params
}

func (c ToneClip) String() string { return "tone:" + c.Params.Kind.String() }

func (c ToneClip) open(e *Engine) (Source, error) {
	return &ToneSource{state: tone.New(c.Params, e.cfg.SampleRate)}, nil
}
