// Package engine implements the four-channel playback engine of a Side node:
// channel state, sample sources and frame filling.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/seashells/side/internal/logging"
	"github.com/seashells/side/pkg/cache"
	"github.com/seashells/side/pkg/catalog"
	"github.com/seashells/side/pkg/gain"
	"github.com/seashells/side/pkg/storage"
	"github.com/seashells/side/pkg/tone"
	"github.com/seashells/side/pkg/wave"
	"github.com/seashells/side/pkg/wave/mixer"
)

var logger = logging.NewLogger("side/engine")

var (
	ErrChannel     = errors.New("engine: channel index out of range")
	ErrUnassigned  = errors.New("engine: channel has no clip")
	ErrUnknownClip = errors.New("engine: unknown clip")
	ErrFrameSize   = errors.New("engine: wrong frame size")
	ErrNoPicker    = errors.New("engine: catalog cannot pick random clips")
)

// Engine owns the channel pool, the storage reader and the memory cache.
// It is not safe for concurrent use: all methods must be called from the
// audio goroutine.
type Engine struct {
	cfg     Config
	dev     storage.Device
	catalog catalog.Catalog

	reader *storage.Reader
	loader *cache.Loader
	cache  *cache.Table

	pool    Pool
	master  gain.Q15
	scratch []byte
	frames  [Channels][]int16
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCatalog makes Assign resolve clip ids through c.
func WithCatalog(c catalog.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// New creates an Engine reading from dev. dev may be nil when only tones and
// directly assigned cached clips are played.
func New(cfg Config, dev storage.Device, opts ...Option) *Engine {
	cfg.normalize()

	e := &Engine{
		cfg:     cfg,
		dev:     dev,
		cache:   cache.NewTable(cfg.CacheCapacity),
		master:  gain.FromDecibels(cfg.MasterGainDB),
		scratch: make([]byte, cfg.FrameSamples*2),
	}
	e.pool.init()
	for i := range e.frames {
		e.frames[i] = make([]int16, cfg.FrameSamples)
	}
	if dev != nil {
		e.reader = storage.NewReader(dev, cfg.Storage, e.reopenAll)
		e.loader = &cache.Loader{Device: dev, Rate: cfg.SampleRate, MaxBytes: cfg.CacheMaxBytes}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the normalized configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Cache returns the memory cache.
func (e *Engine) Cache() *cache.Table {
	return e.cache
}

// Channel returns channel idx for inspection.
func (e *Engine) Channel(idx int) (*Channel, error) {
	return e.channel(idx)
}

// Active returns the number of channels that are not idle.
func (e *Engine) Active() int {
	return e.pool.Active()
}

func (e *Engine) channel(idx int) (*Channel, error) {
	if idx < 0 || idx >= Channels {
		return nil, fmt.Errorf("%w: %d", ErrChannel, idx)
	}
	return &e.pool[idx], nil
}

// SetMasterGain sets the gain Mix applies after summing.
func (e *Engine) SetMasterGain(db float64) {
	e.master = gain.FromDecibels(db)
}

// Precache loads the given clips into the memory cache, skipping the ones
// that fail. It returns the number of clips cached.
func (e *Engine) Precache(ctx context.Context, clips []catalog.Clip) int {
	if e.loader == nil {
		return 0
	}
	reqs := make([]cache.Request, 0, len(clips))
	for _, c := range clips {
		reqs = append(reqs, cache.Request{ID: c.ID, Path: c.Path})
	}
	return cache.Precache(ctx, e.loader, e.cache, reqs)
}

// Assign stops channel idx and binds it to clip id. Tone ids become tones,
// cached ids play from memory and the rest stream from storage. The clip's
// volume trim becomes the channel gain. Id 0 clears the channel.
func (e *Engine) Assign(idx int, id uint16) error {
	ch, err := e.channel(idx)
	if err != nil {
		return err
	}
	if id == 0 {
		e.bind(ch, nil, 0, gain.Unity)
		return nil
	}

	var entry catalog.Clip
	var found bool
	if e.catalog != nil {
		entry, found = e.catalog.Find(id)
	}

	var clip Clip
	if p, ok := tone.Preset(id); ok {
		clip = ToneClip{Params: p}
	} else if samples, ok := e.cache.Get(id); ok {
		clip = CachedClip{ID: id, Samples: samples}
	} else if found && entry.Path != "" {
		clip = FileClip{Path: entry.Path}
	} else {
		return fmt.Errorf("%w: %d", ErrUnknownClip, id)
	}

	g := gain.Unity
	if found {
		g = gain.FromDecibels(float64(entry.VolumeDB))
	}
	e.bind(ch, clip, id, g)
	return nil
}

// AssignClip stops channel idx and binds it to clip with gain g.
func (e *Engine) AssignClip(idx int, clip Clip, g gain.Q15) error {
	ch, err := e.channel(idx)
	if err != nil {
		return err
	}
	e.bind(ch, clip, 0, g)
	return nil
}

func (e *Engine) bind(ch *Channel, clip Clip, id uint16, g gain.Q15) {
	e.release(ch)
	ch.err = nil
	ch.clip = clip
	ch.clipID = id
	ch.gain = g
}

// Play starts the assigned clip of channel idx once from its beginning.
func (e *Engine) Play(idx int) error {
	return e.start(idx, StatePlaying)
}

// Loop starts the assigned clip of channel idx repeating from its beginning.
func (e *Engine) Loop(idx int) error {
	return e.start(idx, StateLooping)
}

func (e *Engine) start(idx int, state PlayState) error {
	ch, err := e.channel(idx)
	if err != nil {
		return err
	}
	if ch.clip == nil {
		return fmt.Errorf("CH%d: %w", idx+1, ErrUnassigned)
	}

	e.release(ch)
	ch.err = nil
	src, err := ch.clip.open(e)
	if err != nil {
		logger.Warnf("CH%d: cannot start %s: %v", idx+1, ch.clip, err)
		return fmt.Errorf("CH%d: %w", idx+1, err)
	}
	ch.src = src
	ch.state = state
	logger.Debugf("CH%d: %s %s from %s", idx+1, state, ch.clip, src.Mode())
	return nil
}

// Stop makes channel idx idle and releases its source. The assignment is
// kept.
func (e *Engine) Stop(idx int) error {
	ch, err := e.channel(idx)
	if err != nil {
		return err
	}
	e.release(ch)
	return nil
}

// StopAll stops every channel.
func (e *Engine) StopAll() {
	for i := range e.pool {
		e.release(&e.pool[i])
	}
}

// Scene stops every channel and assigns ids to the channels in order. It
// assigns as many as it can and returns the errors of the rest.
func (e *Engine) Scene(ids [Channels]uint16) error {
	e.StopAll()
	var errs []error
	for i, id := range ids {
		if err := e.Assign(i, id); err != nil {
			logger.Warnf("CH%d: %v", i+1, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RandomSet draws up to needA clips of the catalog.SameBase category and up to
// needB clips of any other category, and assigns them as a scene: the
// matching clips first, the odd ones after, as many as fit the channels. It
// returns the picked ids.
func (e *Engine) RandomSet(needA, needB int) (same, odd []uint16, err error) {
	p, ok := e.catalog.(catalog.Picker)
	if !ok {
		return nil, nil, ErrNoPicker
	}
	needA = min(max(needA, 0), Channels)
	needB = min(max(needB, 0), Channels-needA)
	same = p.PickByBase(catalog.SameBase, needA)
	odd = p.PickByBaseNot(catalog.SameBase, needB)

	var ids [Channels]uint16
	n := copy(ids[:], same)
	copy(ids[n:], odd)
	logger.Infof("random set: same=%v odd=%v", same, odd)
	return same, odd, e.Scene(ids)
}

// LoopAll starts every assigned channel looping.
func (e *Engine) LoopAll() error {
	var errs []error
	for i := range e.pool {
		if e.pool[i].clip == nil {
			continue
		}
		if err := e.Loop(i); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Tick fills one frame for every channel. The returned slices are reused by
// the next call.
func (e *Engine) Tick() [Channels][]int16 {
	for i := range e.pool {
		e.fill(&e.pool[i], e.frames[i])
	}
	return e.frames
}

// Mix folds four channel frames into the two stereo outputs and applies the
// master gain.
func (e *Engine) Mix(frames [Channels][]int16) [2]*wave.Int16Interleaved {
	return mixer.StereoPairs(frames, e.master)
}

// Downmix sums all four channel frames into one mono buffer for rigs with a
// single speaker.
func (e *Engine) Downmix(frames [Channels][]int16) *wave.Int16Interleaved {
	return mixer.Sum(frames[:], e.master)
}

func (e *Engine) release(ch *Channel) {
	if ch.src != nil {
		ch.src.release()
		ch.src = nil
	}
	ch.state = StateIdle
	ch.fadeIn = false
}

// reopenAll reopens every storage-backed channel after the medium was
// remounted, re-reading each header. Channels that cannot be reopened are
// left closed and stall on their next read.
func (e *Engine) reopenAll() bool {
	var reopened bool
	for i := range e.pool {
		ch := &e.pool[i]
		src, ok := ch.src.(*StorageSource)
		if !ok {
			continue
		}
		if err := src.stream.Reopen(e.dev, e.cfg.SampleRate); err != nil {
			logger.Warnf("CH%d: reopen after remount: %v", i+1, err)
			continue
		}
		logger.Infof("CH%d: reopened %s at byte %d", i+1, src.stream.Path, src.stream.Cur)
		reopened = true
	}
	return reopened
}
