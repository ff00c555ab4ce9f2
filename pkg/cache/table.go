package cache

import (
	"context"
	"runtime"
)

// Entry is one cached clip.
type Entry struct {
	ID      uint16
	Samples []int16
}

// Table is a fixed-capacity, append-only set of cached clips. It is filled
// once at startup and read-only afterwards, so readers need no locking once
// precaching is done.
type Table struct {
	entries  []Entry
	capacity int
}

// NewTable creates a Table holding at most capacity clips.
func NewTable(capacity int) *Table {
	return &Table{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Add caches samples under id.
func (t *Table) Add(id uint16, samples []int16) error {
	if _, ok := t.Get(id); ok {
		return ErrDuplicate
	}
	if len(t.entries) >= t.capacity {
		return ErrFull
	}
	t.entries = append(t.entries, Entry{ID: id, Samples: samples})
	return nil
}

// Get returns the samples cached under id. The slice must not be modified.
func (t *Table) Get(id uint16) ([]int16, bool) {
	for i := range t.entries {
		if t.entries[i].ID == id {
			return t.entries[i].Samples, true
		}
	}
	return nil, false
}

// Len returns the number of cached clips.
func (t *Table) Len() int {
	return len(t.entries)
}

// Full reports whether the table has no free slot.
func (t *Table) Full() bool {
	return len(t.entries) >= t.capacity
}

// Request names a clip to precache.
type Request struct {
	ID   uint16
	Path string
}

// Precache loads every request into t, best effort. Failures are logged and
// the clip is left out. It returns the number of clips added.
func Precache(ctx context.Context, l *Loader, t *Table, reqs []Request) int {
	var added int
	for i, req := range reqs {
		if ctx.Err() != nil {
			break
		}
		if t.Full() {
			logger.Warnf("table full, %d clips left uncached", len(reqs)-i)
			break
		}
		if req.Path == "" {
			continue
		}

		samples, err := l.Load(ctx, req.Path)
		if err != nil {
			logger.Warnf("ID%d: %v", req.ID, err)
			continue
		}
		if err := t.Add(req.ID, samples); err != nil {
			logger.Warnf("ID%d: %v", req.ID, err)
			continue
		}
		logger.Infof("ID%d: cached %d samples from %s", req.ID, len(samples), req.Path)
		added++
		runtime.Gosched()
	}
	logger.Infof("precached %d clips", added)
	return added
}
