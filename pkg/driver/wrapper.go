package driver

import (
	"github.com/google/uuid"

	"github.com/seashells/side/pkg/io/audio"
	"github.com/seashells/side/pkg/prop"
)

func wrapAdapter(a Adapter, info Info) Driver {
	return &adapterWrapper{
		Adapter: a,
		id:      uuid.NewString(),
		info:    info,
		state:   StateClosed,
	}
}

type adapterWrapper struct {
	Adapter
	id    string
	info  Info
	state State
}

func (w *adapterWrapper) ID() string {
	return w.id
}

func (w *adapterWrapper) Info() Info {
	return w.info
}

func (w *adapterWrapper) Status() State {
	return w.state
}

func (w *adapterWrapper) Open() error {
	return w.state.Update(StateOpened, w.Adapter.Open)
}

func (w *adapterWrapper) Close() error {
	return w.state.Update(StateClosed, w.Adapter.Close)
}

func (w *adapterWrapper) Properties() []prop.Audio {
	if w.state == StateClosed {
		return nil
	}
	return w.Adapter.Properties()
}

func (w *adapterWrapper) AudioPlay(p prop.Audio, r audio.Reader) error {
	return w.state.Update(StateRunning, func() error {
		return w.Adapter.AudioPlay(p, r)
	})
}
