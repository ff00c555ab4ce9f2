// Package wavtest builds WAVE containers for tests.
package wavtest

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Encode writes a WAVE container holding samples to w using the go-audio
// encoder. format is the WAVE format tag (1 for PCM).
func Encode(w io.WriteSeeker, rate, bitDepth, channels, format int, samples []int) error {
	enc := wav.NewEncoder(w, rate, bitDepth, channels, format)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// Mono16 returns a 16-bit mono PCM container holding samples.
func Mono16(rate int, samples []int16) ([]byte, error) {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	var f File
	if err := Encode(&f, rate, 16, 1, 1, data); err != nil {
		return nil, err
	}
	return f.Bytes(), nil
}

// WriteMono16 writes a 16-bit mono PCM container to path.
func WriteMono16(path string, rate int, samples []int16) error {
	b, err := Mono16(rate, samples)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Ramp returns n samples counting up from start, wrapping within int16.
func Ramp(start, n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(start + i)
	}
	return s
}

// Chunk is one raw RIFF chunk used by Build.
type Chunk struct {
	ID   string
	Body []byte
	// Size overrides the declared size when non-zero.
	Size uint32
}

// FmtBody returns a 16-byte fmt chunk body.
func FmtBody(format, channels uint16, rate uint32, bits uint16) []byte {
	b := make([]byte, 16)
	blockAlign := channels * bits / 8
	binary.LittleEndian.PutUint16(b[0:2], format)
	binary.LittleEndian.PutUint16(b[2:4], channels)
	binary.LittleEndian.PutUint32(b[4:8], rate)
	binary.LittleEndian.PutUint32(b[8:12], rate*uint32(blockAlign))
	binary.LittleEndian.PutUint16(b[12:14], blockAlign)
	binary.LittleEndian.PutUint16(b[14:16], bits)
	return b
}

// Build assembles a RIFF/WAVE container from raw chunks, padding odd bodies
// to a word boundary. It is meant for malformed fixtures the encoder refuses
// to write.
func Build(chunks ...Chunk) []byte {
	out := []byte("RIFF\x00\x00\x00\x00WAVE")
	for _, c := range chunks {
		var hdr [8]byte
		copy(hdr[0:4], c.ID)
		size := c.Size
		if size == 0 {
			size = uint32(len(c.Body))
		}
		binary.LittleEndian.PutUint32(hdr[4:8], size)
		out = append(out, hdr[:]...)
		out = append(out, c.Body...)
		if len(c.Body)%2 == 1 {
			out = append(out, 0)
		}
	}
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	return out
}

// File is an in-memory io.WriteSeeker.
type File struct {
	buf []byte
	off int64
}

func (f *File) Write(p []byte) (int, error) {
	end := f.off + int64(len(p))
	if end > int64(len(f.buf)) {
		f.buf = append(f.buf, make([]byte, end-int64(len(f.buf)))...)
	}
	copy(f.buf[f.off:], p)
	f.off = end
	return len(p), nil
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.off + offset
	case io.SeekEnd:
		abs = int64(len(f.buf)) + offset
	default:
		return 0, errors.New("wavtest: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("wavtest: negative position")
	}
	f.off = abs
	return abs, nil
}

// Bytes returns the written content.
func (f *File) Bytes() []byte {
	return f.buf
}
