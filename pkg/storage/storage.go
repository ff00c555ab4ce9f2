// Package storage reads PCM payloads from removable media and recovers from
// the transient failures such media produce.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/seashells/side/internal/logging"
)

var logger = logging.NewLogger("side/storage")

var (
	// ErrStall is reported when every recovery strategy was used up before the
	// requested bytes could be read.
	ErrStall = errors.New("storage: stall")
	// ErrNoMedia is returned by a Device that has no mounted medium.
	ErrNoMedia = errors.New("storage: no medium")
)

// File is an open file on a storage device.
type File interface {
	io.Reader
	io.Seeker
	io.Closer
	// Size returns the file length in bytes.
	Size() int64
}

// Device gives access to files on a storage medium.
type Device interface {
	// Open opens path for reading.
	Open(path string) (File, error)
	// Reinit reinitializes the medium at the given bus clock. Files opened
	// before a Reinit must be considered invalid afterwards.
	Reinit(hz uint32) error
}

// Dir is a Device backed by a directory of the host filesystem.
type Dir struct {
	Root string
}

type osFile struct {
	*os.File
	size int64
}

func (f *osFile) Size() int64 {
	return f.size
}

func (d Dir) Open(path string) (File, error) {
	name := filepath.Join(d.Root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("storage: %s is a directory", path)
	}
	return &osFile{File: f, size: st.Size()}, nil
}

// Reinit checks that the root is still reachable. The host filesystem has no
// bus clock, so hz is only logged.
func (d Dir) Reinit(hz uint32) error {
	st, err := os.Stat(d.Root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoMedia, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNoMedia, d.Root)
	}
	logger.Debugf("remounted %s (clock %d Hz ignored)", d.Root, hz)
	return nil
}
