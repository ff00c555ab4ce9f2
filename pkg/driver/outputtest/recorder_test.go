package outputtest

import (
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/seashells/side/pkg/driver"
	"github.com/seashells/side/pkg/io/audio"
	"github.com/seashells/side/pkg/prop"
	"github.com/seashells/side/pkg/wave"
)

func TestRecorder(t *testing.T) {
	m := driver.NewManager()
	rec, d := Register(m, "test")
	if drivers := m.Query(driver.FilterDeviceType(driver.Virtual)); !reflect.DeepEqual([]driver.Driver{d}, drivers) {
		t.Fatalf("expected the recorder to be the only virtual output, got %v", drivers)
	}

	chunks := []*wave.Int16Interleaved{
		{Data: []int16{1, 2}, Size: wave.ChunkInfo{Len: 1, Channels: 2}},
		{Data: []int16{3, -4}, Size: wave.ChunkInfo{Len: 1, Channels: 2}},
	}
	src := audio.ReaderFunc(func() (*wave.Int16Interleaved, error) {
		if len(chunks) == 0 {
			return nil, io.EOF
		}
		c := chunks[0]
		chunks = chunks[1:]
		return c, nil
	})

	if err := d.Open(); err != nil {
		t.Fatal(err)
	}
	p, ok := prop.Select(prop.AudioConstraints{ChannelCount: prop.IntExact(2)}, d.Properties())
	if !ok {
		t.Fatal("expected a stereo mode")
	}
	if err := d.AudioPlay(p, src); err != nil {
		t.Fatal(err)
	}
	if s := d.Status(); s != driver.StateRunning {
		t.Errorf("expected %s, got %s", driver.StateRunning, s)
	}

	// Both chunks arrive in one short period before the stream ends.
	if !rec.WaitChunks(1, time.Second) {
		t.Fatal("nothing was played")
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	if samples := rec.Samples(); !reflect.DeepEqual([]int16{1, 2, 3, -4}, samples) {
		t.Errorf("expected the decoded bytes of both chunks, got %v", samples)
	}
	if n := rec.Prop().ChannelCount; n != 2 {
		t.Errorf("expected 2 channels, got %d", n)
	}
}

func TestRecorderPacesReads(t *testing.T) {
	rec := &Recorder{}
	if err := rec.Open(); err != nil {
		t.Fatal(err)
	}

	ch := make(chan *wave.Int16Interleaved)
	src := audio.FromChannel(ch, wave.ChunkInfo{Len: 4, Channels: 2})
	p := prop.Audio{ChannelCount: 2, SampleRate: 44100, Latency: 5 * time.Millisecond}
	if err := rec.AudioPlay(p, src); err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	n := rec.Chunks()
	if n <= 0 || n >= 30 {
		t.Fatalf("expected a paced number of periods, got %d", n)
	}
	// 5 ms at 44.1 kHz is a 220 frame period.
	if samples := rec.Samples(); !reflect.DeepEqual(make([]int16, n*220*2), samples) {
		t.Errorf("expected %d periods of silence, got %d samples", n, len(samples))
	}
}

func TestRecorderRejectsNoChannels(t *testing.T) {
	rec := &Recorder{}
	if err := rec.Open(); err != nil {
		t.Fatal(err)
	}
	src := audio.FromChannel(nil, wave.ChunkInfo{Len: 4, Channels: 2})
	if err := rec.AudioPlay(prop.Audio{SampleRate: 44100}, src); err == nil {
		t.Fatal("expected an error for a zero channel count")
	}
}
