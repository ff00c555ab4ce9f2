package storage

import (
	"fmt"
	"io"

	"github.com/seashells/side/pkg/wave"
)

// Stream is one channel's view of a WAVE payload on a Device. It owns its
// File for the lifetime of playback.
type Stream struct {
	Path string
	File File

	// DataStart and DataEnd delimit the payload inside the container.
	DataStart int64
	DataEnd   int64
	// Cur is the number of payload bytes already consumed.
	Cur int64
}

// Len returns the payload length in bytes.
func (s *Stream) Len() int64 {
	return s.DataEnd - s.DataStart
}

// Remaining returns the payload bytes left after the cursor.
func (s *Stream) Remaining() int64 {
	return s.Len() - s.Cur
}

// Open opens the stream from scratch and resets the cursor. rate is the engine
// sample rate used for the mismatch warning; 0 disables it.
func (s *Stream) Open(dev Device, rate int) error {
	s.Cur = 0
	if err := s.attach(dev, rate); err != nil {
		return err
	}
	return nil
}

// Reopen replaces the handle and re-derives the payload range from the
// container, keeping the cursor. The reopened file may lay its chunks out
// differently, so offsets from the old handle are never reused.
func (s *Stream) Reopen(dev Device, rate int) error {
	if err := s.attach(dev, rate); err != nil {
		return err
	}
	if s.Cur > s.Len() {
		s.Cur = s.Len()
	}
	return nil
}

func (s *Stream) attach(dev Device, rate int) error {
	s.Close()

	f, err := dev.Open(s.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Path, err)
	}

	var opts []wave.ParseOption
	if rate > 0 {
		opts = append(opts, wave.ExpectRate(rate))
	}
	h, err := wave.ParseHeader(f, f.Size(), opts...)
	if err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", s.Path, err)
	}
	if h.DataEnd() <= h.DataStart {
		f.Close()
		return fmt.Errorf("%s: %w", s.Path, &wave.ParseError{Reason: "empty payload"})
	}

	if _, err := f.Seek(h.DataStart, io.SeekStart); err != nil {
		f.Close()
		return fmt.Errorf("seek %s: %w", s.Path, err)
	}

	s.File = f
	s.DataStart = h.DataStart
	s.DataEnd = h.DataEnd()
	return nil
}

// Rewind moves the cursor back to the start of the payload.
func (s *Stream) Rewind() {
	s.Cur = 0
}

// Close releases the handle. The payload range and cursor are kept so a later
// Reopen can resume.
func (s *Stream) Close() {
	if s.File != nil {
		if err := s.File.Close(); err != nil {
			logger.Debugf("close %s: %v", s.Path, err)
		}
		s.File = nil
	}
}
