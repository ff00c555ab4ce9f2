package storage_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/seashells/side/pkg/storage"
	"github.com/seashells/side/pkg/storage/storagetest"
	"github.com/seashells/side/pkg/wave"
	"github.com/seashells/side/pkg/wave/wavtest"
)

const testRate = 44100

func testOptions() storage.Options {
	opts := storage.DefaultOptions()
	opts.Backoff = time.Microsecond
	opts.Rate = testRate
	return opts
}

// clip returns a mono ramp file of the given length and its payload.
func clip(t *testing.T, samples int) ([]byte, []byte) {
	t.Helper()
	b, err := wavtest.Mono16(testRate, wavtest.Ramp(1, samples))
	if err != nil {
		t.Fatal(err)
	}
	return b, b[44:]
}

func openStream(t *testing.T, dev storage.Device, path string) *storage.Stream {
	t.Helper()
	s := &storage.Stream{Path: path}
	if err := s.Open(dev, testRate); err != nil {
		t.Fatal(err)
	}
	return s
}

func expectRead(t *testing.T, r *storage.Reader, s *storage.Stream, dst []byte, n int, res storage.Result) {
	t.Helper()
	gotN, gotRes := r.Read(s, dst)
	if gotN != n || gotRes != res {
		t.Fatalf("expected %d bytes with %v, got %d with %v", n, res, gotN, gotRes)
	}
}

func TestReadStopsAtPayloadEnd(t *testing.T) {
	dev := storagetest.New()
	b, payload := clip(t, 10)
	dev.Add("/a.wav", b)

	s := openStream(t, dev, "/a.wav")
	if s.DataStart != 44 || s.DataEnd != 64 {
		t.Fatalf("expected payload 44..64, got %d..%d", s.DataStart, s.DataEnd)
	}

	r := storage.NewReader(dev, testOptions(), nil)
	dst := make([]byte, 16)
	expectRead(t, r, s, dst, 16, storage.ResultOK)
	if !bytes.Equal(payload[:16], dst) {
		t.Errorf("expected %v, got %v", payload[:16], dst)
	}

	expectRead(t, r, s, dst, 4, storage.ResultOK)
	if !bytes.Equal(payload[16:], dst[:4]) {
		t.Errorf("expected %v, got %v", payload[16:], dst[:4])
	}
	if s.Remaining() != 0 {
		t.Errorf("expected nothing left, got %d", s.Remaining())
	}

	expectRead(t, r, s, dst, 0, storage.ResultOK)
}

func TestReadRecoversFromEmptyReads(t *testing.T) {
	dev := storagetest.New()
	b, payload := clip(t, 32)
	dev.Add("/a.wav", b)
	s := openStream(t, dev, "/a.wav")

	dev.MaxRead = 8
	start := dev.Reads
	// The second, third and fourth reads of this call come back empty.
	dev.ReadHook = func(call int) bool {
		i := call - start
		return i >= 2 && i <= 4
	}

	r := storage.NewReader(dev, testOptions(), nil)
	dst := make([]byte, 32)
	expectRead(t, r, s, dst, 32, storage.ResultOK)
	if !bytes.Equal(payload[:32], dst) {
		t.Errorf("bytes read before the failures must survive: got %v", dst)
	}
	// Two retries and one reopen are enough.
	if len(dev.Reinits) != 0 {
		t.Errorf("expected no remount, got %v", dev.Reinits)
	}
}

func TestReadReopensClosedHandle(t *testing.T) {
	dev := storagetest.New()
	b, payload := clip(t, 16)
	dev.Add("/a.wav", b)
	s := openStream(t, dev, "/a.wav")
	r := storage.NewReader(dev, testOptions(), nil)

	dst := make([]byte, 8)
	expectRead(t, r, s, dst, 8, storage.ResultOK)

	s.Close()
	opens := dev.Opens
	expectRead(t, r, s, dst, 8, storage.ResultOK)
	if !bytes.Equal(payload[8:16], dst) {
		t.Errorf("expected %v, got %v", payload[8:16], dst)
	}
	if dev.Opens != opens+1 {
		t.Errorf("expected one reopen, got %d", dev.Opens-opens)
	}
}

func TestReopenRevalidatesHeader(t *testing.T) {
	dev := storagetest.New()
	b, payload := clip(t, 16)
	dev.Add("/a.wav", b)
	s := openStream(t, dev, "/a.wav")
	r := storage.NewReader(dev, testOptions(), nil)

	dst := make([]byte, 8)
	expectRead(t, r, s, dst, 8, storage.ResultOK)

	// The same payload, now behind an extra metadata chunk.
	dev.Add("/a.wav", wavtest.Build(
		wavtest.Chunk{ID: "fmt ", Body: wavtest.FmtBody(wave.FormatPCM, 1, testRate, 16)},
		wavtest.Chunk{ID: "LIST", Body: []byte("INFOtitle!")},
		wavtest.Chunk{ID: "data", Body: payload},
	))
	s.Close()

	expectRead(t, r, s, dst, 8, storage.ResultOK)
	if !bytes.Equal(payload[8:16], dst) {
		t.Errorf("expected %v, got %v", payload[8:16], dst)
	}
	if s.DataStart != 62 {
		t.Errorf("expected the payload to move to 62, got %d", s.DataStart)
	}
}

func TestReadRemountsAfterReopenFails(t *testing.T) {
	dev := storagetest.New()
	b, payload := clip(t, 8)
	dev.Add("/a.wav", b)
	s := openStream(t, dev, "/a.wav")

	var reopened int
	r := storage.NewReader(dev, testOptions(), func() bool {
		reopened++
		return s.Reopen(dev, testRate) == nil
	})

	dev.Invalidate()
	dev.FailOpens = 1
	dev.FailReinits = 1

	dst := make([]byte, 16)
	expectRead(t, r, s, dst, 16, storage.ResultOK)
	if !bytes.Equal(payload, dst) {
		t.Errorf("expected %v, got %v", payload, dst)
	}
	if expected := []uint32{12000000, 8000000}; !reflect.DeepEqual(expected, dev.Reinits) {
		t.Errorf("expected %v, got %v", expected, dev.Reinits)
	}
	if reopened != 1 {
		t.Errorf("expected the remount hook once, got %d", reopened)
	}
}

func TestReadFatalWhenMediumLost(t *testing.T) {
	dev := storagetest.New()
	b, _ := clip(t, 8)
	dev.Add("/a.wav", b)
	s := openStream(t, dev, "/a.wav")
	r := storage.NewReader(dev, testOptions(), nil)

	dev.Invalidate()
	dev.Ejected = true

	expectRead(t, r, s, make([]byte, 16), 0, storage.ResultFatal)
	if expected := []uint32{12000000, 8000000}; !reflect.DeepEqual(expected, dev.Reinits) {
		t.Errorf("expected %v, got %v", expected, dev.Reinits)
	}
}

func TestReadExhaustsBudget(t *testing.T) {
	dev := storagetest.New()
	b, _ := clip(t, 8)
	dev.Add("/a.wav", b)
	s := openStream(t, dev, "/a.wav")

	opts := testOptions()
	opts.Budget = 2
	r := storage.NewReader(dev, opts, nil)

	dev.EmptyReads = 100
	reads := dev.Reads
	expectRead(t, r, s, make([]byte, 16), 0, storage.ResultExhausted)
	// One read plus one per recovery attempt.
	if dev.Reads != reads+3 {
		t.Errorf("expected 3 reads, got %d", dev.Reads-reads)
	}
	if len(dev.Reinits) != 0 {
		t.Errorf("expected no remount, got %v", dev.Reinits)
	}
}

func TestStreamOpenRejects(t *testing.T) {
	dev := storagetest.New()
	dev.Add("/stereo.wav", wavtest.Build(
		wavtest.Chunk{ID: "fmt ", Body: wavtest.FmtBody(wave.FormatPCM, 2, testRate, 16)},
		wavtest.Chunk{ID: "data", Body: make([]byte, 8)},
	))

	s := &storage.Stream{Path: "/stereo.wav"}
	var perr *wave.ParseError
	if err := s.Open(dev, testRate); !errors.As(err, &perr) {
		t.Errorf("expected a parse error, got %v", err)
	}
	if s.File != nil {
		t.Error("a rejected stream must not keep its handle")
	}

	s = &storage.Stream{Path: "/missing.wav"}
	if err := s.Open(dev, testRate); err == nil {
		t.Error("expected an error for a missing file")
	}
	if s.File != nil {
		t.Error("a failed open must not leave a handle")
	}
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	if err := wavtest.WriteMono16(filepath.Join(root, "tone.wav"), testRate, wavtest.Ramp(100, 4)); err != nil {
		t.Fatal(err)
	}

	dev := storage.Dir{Root: root}
	s := openStream(t, dev, "/tone.wav")
	defer s.Close()

	r := storage.NewReader(dev, testOptions(), nil)
	dst := make([]byte, 8)
	expectRead(t, r, s, dst, 8, storage.ResultOK)

	samples := make([]int16, 4)
	wave.DecodeInt16LE(samples, dst)
	if expected := []int16{100, 101, 102, 103}; !reflect.DeepEqual(expected, samples) {
		t.Errorf("expected %v, got %v", expected, samples)
	}

	if err := dev.Reinit(12000000); err != nil {
		t.Errorf("remounting a present directory: %v", err)
	}
	if err := (storage.Dir{Root: filepath.Join(root, "gone")}).Reinit(12000000); !errors.Is(err, storage.ErrNoMedia) {
		t.Errorf("expected %v, got %v", storage.ErrNoMedia, err)
	}
	if _, err := dev.Open("/"); err == nil {
		t.Error("a directory is not a clip")
	}
}
