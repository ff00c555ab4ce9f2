// Package wave implements the 16-bit PCM containers, byte decoding, and WAVE
// header parsing used by the playback engine.
package wave

// Audio is a finite series of 16-bit audio samples.
type Audio interface {
	ChunkInfo() ChunkInfo
	At(i, ch int) int16
}

// EditableAudio is an editable finite series of 16-bit audio samples.
type EditableAudio interface {
	Audio
	Set(i, ch int, s int16)
}

// ChunkInfo contains size of the audio chunk.
type ChunkInfo struct {
	Len          int
	Channels     int
	SamplingRate int
}
