package wave

// Int16Interleaved multi-channel interlaced Audio.
type Int16Interleaved struct {
	Data []int16
	Size ChunkInfo
}

// ChunkInfo returns audio chunk size.
func (a *Int16Interleaved) ChunkInfo() ChunkInfo {
	return a.Size
}

func (a *Int16Interleaved) At(i, ch int) int16 {
	return a.Data[i*a.Size.Channels+ch]
}

func (a *Int16Interleaved) Set(i, ch int, s int16) {
	a.Data[i*a.Size.Channels+ch] = s
}

// Bytes encodes the samples as little-endian PCM into dst, growing it if
// needed, and returns the encoded slice.
func (a *Int16Interleaved) Bytes(dst []byte) []byte {
	n := len(a.Data) * 2
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	EncodeInt16LE(dst, a.Data)
	return dst
}

func NewInt16Interleaved(size ChunkInfo) *Int16Interleaved {
	return &Int16Interleaved{
		Data: make([]int16, size.Channels*size.Len),
		Size: size,
	}
}
