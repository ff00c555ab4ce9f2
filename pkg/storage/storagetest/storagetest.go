// Package storagetest provides a scripted in-memory storage device for tests.
package storagetest

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/seashells/side/pkg/storage"
)

var errInvalid = errors.New("storagetest: handle invalidated by remount")

// Device is an in-memory storage.Device whose failures can be scripted.
// It is not safe for concurrent use.
type Device struct {
	files map[string][]byte
	gen   int

	// EmptyReads makes the next n Read calls on any handle return no data.
	EmptyReads int
	// FailOpens makes the next n Open calls fail.
	FailOpens int
	// FailReinits makes the next n Reinit calls fail.
	FailReinits int
	// Ejected makes every Open and Reinit fail.
	Ejected bool
	// ReadHook, when set, is called with the 1-based index of every Read
	// call on the device and forces an empty read when it returns true.
	ReadHook func(call int) bool
	// MaxRead caps the bytes returned by a single Read when positive.
	MaxRead int

	Opens   int
	Reads   int
	Reinits []uint32
}

// New creates an empty Device.
func New() *Device {
	return &Device{files: make(map[string][]byte)}
}

// Add stores b at path.
func (d *Device) Add(path string, b []byte) {
	d.files[path] = b
}

// Remove deletes path.
func (d *Device) Remove(path string) {
	delete(d.files, path)
}

// Invalidate breaks every open handle without a remount, as a glitching card
// would.
func (d *Device) Invalidate() {
	d.gen++
}

func (d *Device) Open(path string) (storage.File, error) {
	d.Opens++
	if d.Ejected {
		return nil, storage.ErrNoMedia
	}
	if d.FailOpens > 0 {
		d.FailOpens--
		return nil, os.ErrNotExist
	}
	b, ok := d.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return &file{d: d, r: bytes.NewReader(b), gen: d.gen}, nil
}

func (d *Device) Reinit(hz uint32) error {
	d.Reinits = append(d.Reinits, hz)
	if d.Ejected {
		return storage.ErrNoMedia
	}
	if d.FailReinits > 0 {
		d.FailReinits--
		return storage.ErrNoMedia
	}
	d.gen++
	return nil
}

type file struct {
	d      *Device
	r      *bytes.Reader
	gen    int
	closed bool
}

func (f *file) valid() error {
	if f.closed {
		return os.ErrClosed
	}
	if f.gen != f.d.gen {
		return errInvalid
	}
	return nil
}

func (f *file) Read(p []byte) (int, error) {
	f.d.Reads++
	if err := f.valid(); err != nil {
		return 0, err
	}
	if f.d.EmptyReads > 0 {
		f.d.EmptyReads--
		return 0, nil
	}
	if f.d.ReadHook != nil && f.d.ReadHook(f.d.Reads) {
		return 0, nil
	}
	if f.d.MaxRead > 0 && len(p) > f.d.MaxRead {
		p = p[:f.d.MaxRead]
	}
	return f.r.Read(p)
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	if err := f.valid(); err != nil {
		return 0, err
	}
	return f.r.Seek(offset, whence)
}

func (f *file) Close() error {
	if f.closed {
		return os.ErrClosed
	}
	f.closed = true
	return nil
}

func (f *file) Size() int64 {
	return f.r.Size()
}

var _ io.ReadSeeker = (*file)(nil)
