package wave

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/seashells/side/internal/logging"
)

const (
	// FormatPCM is the WAVE format tag for uncompressed integer PCM.
	FormatPCM = 1

	riffHeaderSize  = 12
	chunkHeaderSize = 8
	minFmtSize      = 16
	// maxChunks bounds the chunk walk so a malformed container cannot loop.
	maxChunks = 32
)

var logger = logging.NewLogger("side/wave")

// Header is the parsed description of a WAVE container.
type Header struct {
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	BlockAlign    uint16

	// DataStart is the byte offset of the payload inside the container.
	DataStart int64
	// DataLen is the payload length in bytes. It is always even and never
	// extends past the end of the source.
	DataLen int64
}

// DataEnd returns the offset one past the last payload byte.
func (h Header) DataEnd() int64 {
	return h.DataStart + h.DataLen
}

// Samples returns the number of 16-bit samples in the payload.
func (h Header) Samples() int {
	return int(h.DataLen / sampleSize)
}

// ParseError reports a malformed or unsupported WAVE container.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wave: %s: %v", e.Reason, e.Err)
	}
	return "wave: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(format string, args ...interface{}) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

type parseConfig struct {
	expectRate int
}

// ParseOption customizes ParseHeader.
type ParseOption func(*parseConfig)

// ExpectRate makes ParseHeader log a warning when the container sample rate
// differs from rate. A mismatch never fails the parse.
func ExpectRate(rate int) ParseOption {
	return func(c *parseConfig) {
		c.expectRate = rate
	}
}

// ParseHeader walks the chunks of the WAVE container in r, whose total length
// is size, and returns the location of the payload. Only 16-bit mono PCM is
// accepted.
func ParseHeader(r io.ReadSeeker, size int64, opts ...ParseOption) (Header, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var h Header
	var buf [riffHeaderSize]byte

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return h, &ParseError{Reason: "seek to header", Err: err}
	}
	if err := readFull(r, buf[:riffHeaderSize]); err != nil {
		return h, &ParseError{Reason: "truncated RIFF header", Err: err}
	}
	if string(buf[0:4]) != "RIFF" || string(buf[8:12]) != "WAVE" {
		return h, parseErrorf("missing RIFF/WAVE magic")
	}

	var haveFmt bool
	off := int64(riffHeaderSize)
	for i := 0; i < maxChunks; i++ {
		if off+chunkHeaderSize > size {
			return h, parseErrorf("no data chunk")
		}
		if _, err := r.Seek(off, io.SeekStart); err != nil {
			return h, &ParseError{Reason: "seek to chunk", Err: err}
		}
		if err := readFull(r, buf[:chunkHeaderSize]); err != nil {
			return h, &ParseError{Reason: "truncated chunk header", Err: err}
		}
		id := string(buf[0:4])
		chunkLen := int64(binary.LittleEndian.Uint32(buf[4:8]))
		body := off + chunkHeaderSize

		switch id {
		case "fmt ":
			if chunkLen < minFmtSize {
				return h, parseErrorf("fmt chunk too small (%d bytes)", chunkLen)
			}
			var fmtBuf [minFmtSize]byte
			if err := readFull(r, fmtBuf[:]); err != nil {
				return h, &ParseError{Reason: "truncated fmt chunk", Err: err}
			}
			h.Format = binary.LittleEndian.Uint16(fmtBuf[0:2])
			h.Channels = binary.LittleEndian.Uint16(fmtBuf[2:4])
			h.SampleRate = binary.LittleEndian.Uint32(fmtBuf[4:8])
			h.BlockAlign = binary.LittleEndian.Uint16(fmtBuf[12:14])
			h.BitsPerSample = binary.LittleEndian.Uint16(fmtBuf[14:16])
			haveFmt = true

		case "data":
			if !haveFmt {
				return h, parseErrorf("data chunk before fmt chunk")
			}
			if err := h.validate(cfg); err != nil {
				return h, err
			}

			h.DataStart = body
			avail := size - body
			if avail < 0 {
				avail = 0
			}
			h.DataLen = chunkLen
			if h.DataLen > avail {
				logger.Debugf("data chunk declares %d bytes but only %d are present", chunkLen, avail)
				h.DataLen = avail
			}
			h.DataLen &^= 1
			if h.DataLen <= 0 {
				return h, parseErrorf("empty data chunk")
			}
			return h, nil
		}

		// Chunks are word aligned; odd sizes carry one pad byte.
		next := body + chunkLen + chunkLen&1
		if next <= off {
			return h, parseErrorf("chunk walk did not advance at offset %d", off)
		}
		off = next
	}

	return h, parseErrorf("no data chunk within %d chunks", maxChunks)
}

func (h *Header) validate(cfg parseConfig) error {
	if h.Format != FormatPCM {
		return parseErrorf("unsupported format tag %d", h.Format)
	}
	if h.BitsPerSample != 16 {
		return parseErrorf("unsupported bit depth %d", h.BitsPerSample)
	}
	if h.Channels != 1 {
		return parseErrorf("unsupported channel count %d", h.Channels)
	}
	if cfg.expectRate != 0 && int(h.SampleRate) != cfg.expectRate {
		logger.Warnf("sample rate %d Hz differs from engine rate %d Hz, playback speed will be off", h.SampleRate, cfg.expectRate)
	}
	return nil
}

// readFull is io.ReadFull, except that a read returning neither bytes nor an
// error fails with io.ErrNoProgress instead of being retried forever.
func readFull(r io.Reader, buf []byte) error {
	var n int
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if n == len(buf) {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) && n > 0 {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		if m == 0 {
			return io.ErrNoProgress
		}
	}
	return nil
}
