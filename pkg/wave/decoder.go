package wave

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

const sampleSize = 2

var hostEndian binary.ByteOrder

func init() {
	switch v := *(*uint16)(unsafe.Pointer(&([]byte{0x12, 0x34}[0]))); v {
	case 0x1234:
		hostEndian = binary.BigEndian
	case 0x3412:
		hostEndian = binary.LittleEndian
	default:
		panic(fmt.Sprintf("failed to determine host endianness: %x", v))
	}
}

// DecodeInt16LE decodes little-endian 16-bit samples from src into dst and
// returns the number of samples written. A trailing odd byte is ignored.
func DecodeInt16LE(dst []int16, src []byte) int {
	n := len(src) / sampleSize
	if n > len(dst) {
		n = len(dst)
	}
	if n == 0 {
		return 0
	}

	if hostEndian == binary.LittleEndian {
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), n*sampleSize)
		copy(raw, src[:n*sampleSize])
		return n
	}

	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*sampleSize:]))
	}
	return n
}

// EncodeInt16LE encodes src into dst as little-endian 16-bit samples and
// returns the number of samples written.
func EncodeInt16LE(dst []byte, src []int16) int {
	n := len(dst) / sampleSize
	if n > len(src) {
		n = len(src)
	}
	if n == 0 {
		return 0
	}

	if hostEndian == binary.LittleEndian {
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&src[0])), n*sampleSize)
		copy(dst, raw)
		return n
	}

	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*sampleSize:], uint16(src[i]))
	}
	return n
}

func calculateChunkInfo(chunk []byte, channels int) (ChunkInfo, error) {
	if channels <= 0 {
		return ChunkInfo{}, fmt.Errorf("channels has to be greater than 0")
	}

	sampleLen := channels * sampleSize
	if len(chunk)%sampleLen != 0 {
		expectedLen := len(chunk) + (sampleLen - len(chunk)%sampleLen)
		return ChunkInfo{}, fmt.Errorf("expected chunk to have a length of %d, but got %d", expectedLen, len(chunk))
	}

	return ChunkInfo{
		Channels: channels,
		Len:      len(chunk) / sampleLen,
	}, nil
}

// Decode decodes an interleaved little-endian 16-bit chunk.
func Decode(chunk []byte, channels int) (*Int16Interleaved, error) {
	chunkInfo, err := calculateChunkInfo(chunk, channels)
	if err != nil {
		return nil, err
	}

	container := NewInt16Interleaved(chunkInfo)
	DecodeInt16LE(container.Data, chunk)
	return container, nil
}
