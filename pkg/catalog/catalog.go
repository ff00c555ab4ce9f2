// Package catalog maps clip ids to their storage path, precache flag and
// volume trim, as listed in the manifest on the storage medium.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/seashells/side/internal/logging"
	"github.com/seashells/side/pkg/storage"
)

// MaxClips is the largest number of clips a Manifest keeps.
const MaxClips = 512

// DefaultPath is where the manifest lives on the medium.
const DefaultPath = "/manifest.csv"

var logger = logging.NewLogger("side/catalog")

// Pool is the legacy A/B bucket a clip belongs to.
type Pool uint8

const (
	PoolA Pool = iota
	PoolB
)

// Clip is one manifest entry.
type Clip struct {
	ID       uint16
	Pool     Pool
	Path     string
	Precache bool
	VolumeDB int

	Base string
	Sub  string
	Sub2 string
	Tags string
}

// Catalog resolves clip ids.
type Catalog interface {
	Find(id uint16) (Clip, bool)
}

// Picker draws random clip ids by category.
type Picker interface {
	PickByBase(base string, need int) []uint16
	PickByBaseNot(base string, need int) []uint16
}

// SameBase is the category random sets draw their matching clips from. Every
// other base counts as odd.
const SameBase = "animals"

// Manifest is an in-memory Catalog.
type Manifest struct {
	clips []Clip
	rng   *rand.Rand
}

// Option customizes a Manifest.
type Option func(*Manifest)

// WithSeed makes the random pickers deterministic.
func WithSeed(seed int64) Option {
	return func(m *Manifest) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// New creates a Manifest from clips. Entries with id 0, which is reserved for
// "no clip", and entries past MaxClips are dropped.
func New(clips []Clip, opts ...Option) *Manifest {
	m := &Manifest{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(m)
	}
	for _, c := range clips {
		m.add(c)
	}
	return m
}

func (m *Manifest) add(c Clip) {
	if c.ID == 0 {
		return
	}
	if len(m.clips) >= MaxClips {
		logger.Warnf("manifest full, dropping clip %d", c.ID)
		return
	}
	m.clips = append(m.clips, c)
}

// Parse reads a manifest in the format
//
//	id,pool,path,precache,volume_db,base,sub,sub2,tags
//
// Blank lines, '#' comments, the header row and rows not starting with a digit
// are skipped. Rows with fewer than nine fields are ignored. Tags may contain
// commas.
func Parse(r io.Reader, opts ...Option) (*Manifest, error) {
	m := New(nil, opts...)

	sc := bufio.NewScanner(r)
	var lineNo int
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "id,") {
			continue
		}
		if line[0] < '0' || line[0] > '9' {
			continue
		}

		fields := strings.SplitN(line, ",", 9)
		if len(fields) < 9 {
			logger.Debugf("line %d: expected 9 fields, got %d", lineNo, len(fields))
			continue
		}
		c, err := parseClip(fields)
		if err != nil {
			logger.Warnf("line %d: %v", lineNo, err)
			continue
		}
		m.add(c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	logger.Infof("loaded %d clips", len(m.clips))
	return m, nil
}

func parseClip(fields []string) (Clip, error) {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	id, err := strconv.ParseUint(fields[0], 10, 16)
	if err != nil {
		return Clip{}, fmt.Errorf("bad id %q: %w", fields[0], err)
	}

	c := Clip{
		ID:   uint16(id),
		Pool: PoolA,
		Path: fields[2],
		Base: fields[5],
		Sub:  fields[6],
		Sub2: fields[7],
		Tags: fields[8],
	}
	if p := fields[1]; p == "B" || p == "b" {
		c.Pool = PoolB
	}
	if n, err := strconv.Atoi(fields[3]); err == nil {
		c.Precache = n != 0
	}
	if fields[4] != "" {
		db, err := strconv.Atoi(fields[4])
		if err != nil {
			return Clip{}, fmt.Errorf("clip %d: bad volume_db %q: %w", c.ID, fields[4], err)
		}
		c.VolumeDB = db
	}
	return c, nil
}

// Load opens path on dev and parses it.
func Load(dev storage.Device, path string, opts ...Option) (*Manifest, error) {
	f, err := dev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, opts...)
}

// Find returns the clip with id.
func (m *Manifest) Find(id uint16) (Clip, bool) {
	for _, c := range m.clips {
		if c.ID == id {
			return c, true
		}
	}
	return Clip{}, false
}

// Len returns the number of clips.
func (m *Manifest) Len() int {
	return len(m.clips)
}

// Clips returns a copy of all clips in manifest order.
func (m *Manifest) Clips() []Clip {
	return append([]Clip(nil), m.clips...)
}

// Precached returns the clips flagged for precaching.
func (m *Manifest) Precached() []Clip {
	var out []Clip
	for _, c := range m.clips {
		if c.Precache && c.Path != "" {
			out = append(out, c)
		}
	}
	return out
}

// CountPool returns how many clips belong to p.
func (m *Manifest) CountPool(p Pool) int {
	var n int
	for _, c := range m.clips {
		if c.Pool == p {
			n++
		}
	}
	return n
}

// PickByBase returns up to need distinct random ids whose base equals base,
// ignoring case.
func (m *Manifest) PickByBase(base string, need int) []uint16 {
	return m.pick(need, func(c Clip) bool { return strings.EqualFold(c.Base, base) })
}

// PickByBaseNot returns up to need distinct random ids whose base differs from
// base, ignoring case.
func (m *Manifest) PickByBaseNot(base string, need int) []uint16 {
	return m.pick(need, func(c Clip) bool { return !strings.EqualFold(c.Base, base) })
}

func (m *Manifest) pick(need int, match func(Clip) bool) []uint16 {
	if need <= 0 {
		return nil
	}
	var out []uint16
	for _, i := range m.rng.Perm(len(m.clips)) {
		c := m.clips[i]
		if !match(c) || contains(out, c.ID) {
			continue
		}
		out = append(out, c.ID)
		if len(out) == need {
			break
		}
	}
	return out
}

func contains(ids []uint16, id uint16) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
