package audio

import (
	"io"

	"github.com/seashells/side/pkg/wave"
)

// FromChannel reads chunks from ch. When no chunk is queued it returns a
// silent chunk shaped like silence, so a device callback never waits on the
// engine. A closed channel ends the stream with io.EOF.
func FromChannel(ch <-chan *wave.Int16Interleaved, silence wave.ChunkInfo) Reader {
	return ReaderFunc(func() (*wave.Int16Interleaved, error) {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return nil, io.EOF
			}
			return chunk, nil
		default:
			return wave.NewInt16Interleaved(silence), nil
		}
	})
}

// NewByteReader exposes r as little-endian PCM bytes. A chunk is split across
// as many reads as needed.
func NewByteReader(r Reader) io.Reader {
	return &byteReader{r: r}
}

type byteReader struct {
	r   Reader
	buf []byte
	off int
}

func (b *byteReader) Read(p []byte) (int, error) {
	var n int
	for n < len(p) {
		if b.off >= len(b.buf) {
			chunk, err := b.r.Read()
			if err != nil {
				if n > 0 {
					return n, nil
				}
				return 0, err
			}
			b.buf = chunk.Bytes(b.buf[:0])
			b.off = 0
			if len(b.buf) == 0 {
				continue
			}
		}
		c := copy(p[n:], b.buf[b.off:])
		n += c
		b.off += c
	}
	return n, nil
}
