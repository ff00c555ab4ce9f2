// Command sidemix runs the Side node playback engine on a host: it plays a
// scene from a clip directory through the sound card, or renders it to WAV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/seashells/side/internal/logging"
	"github.com/seashells/side/pkg/catalog"
	"github.com/seashells/side/pkg/driver"
	"github.com/seashells/side/pkg/driver/otospeaker"
	"github.com/seashells/side/pkg/driver/speaker"
	"github.com/seashells/side/pkg/engine"
	"github.com/seashells/side/pkg/storage"
)

var logger = logging.NewLogger("side/sidemix")

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "sidemix:", err)
		os.Exit(1)
	}
}

func main() {
	var (
		root     = flag.String("root", ".", "directory holding the clips and the manifest")
		manifest = flag.String("manifest", catalog.DefaultPath, "manifest path inside root")
		scene    = flag.String("scene", "", "up to four comma separated clip ids, 0 leaves a channel empty")
		once     = flag.Bool("once", false, "play the scene once instead of looping it")
		duration = flag.Duration("duration", 10*time.Second, "how long to play or render, 0 plays until interrupted")
		master   = flag.Float64("master", 0, "master gain in dB")
		volume   = flag.Float64("volume", 0, "output volume in dB, applied after the master gain")
		precache = flag.Bool("precache", true, "load precache-flagged clips into memory first")
		render   = flag.String("render", "", "render to <prefix>-0.wav and <prefix>-1.wav instead of playing")
		output   = flag.String("output", "speaker", "output backend: speaker (miniaudio) or oto")
		device   = flag.String("device", "", "pick the output whose label contains this")
		pair     = flag.Int("pair", 0, "stereo pair sent to the output: 0 for channels 1-2, 1 for channels 3-4, -1 for a mono down-mix of all four")
		control  = flag.Bool("stdin", false, "read control commands (play 1, loop 2, stop 3, stopall, loopall, scene a,b,c,d, random 2 2) from stdin")
	)
	flag.Parse()

	ids, err := parseScene(*scene)
	must(err)

	dev := storage.Dir{Root: *root}
	cfg := engine.DefaultConfig()
	cfg.MasterGainDB = *master

	var engineOpts []engine.Option
	m, err := catalog.Load(dev, *manifest)
	if err != nil {
		logger.Warnf("no manifest, only tone ids will resolve: %v", err)
	} else {
		logger.Infof("manifest: %d clips, pool A %d, pool B %d", m.Len(), m.CountPool(catalog.PoolA), m.CountPool(catalog.PoolB))
		engineOpts = append(engineOpts, engine.WithCatalog(m))
	}
	e := engine.New(cfg, dev, engineOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if m != nil && *precache {
		e.Precache(ctx, m.Precached())
	}
	if err := e.Scene(ids); err != nil {
		logger.Warnf("scene partly assigned: %v", err)
	}
	must(start(e, !*once))
	describe(e)

	var frames int
	if *duration > 0 {
		frames = int(duration.Seconds() * float64(cfg.SampleRate) / float64(cfg.FrameSamples))
	}

	if *render != "" {
		if frames == 0 {
			must(fmt.Errorf("-render needs a -duration"))
		}
		must(renderWAV(ctx, e, *render, frames))
		describe(e)
		return
	}

	if *pair < -1 || *pair > 1 {
		must(fmt.Errorf("-pair must be -1, 0 or 1"))
	}
	d, err := openOutput(*output, *device)
	must(err)

	opts := playOptions{pair: *pair, frames: frames, volumeDB: *volume}
	if *control {
		opts.commands = engine.NewQueue(engine.DefaultQueueDepth)
		// Not part of the playback group: a stdin read cannot be interrupted.
		go func() {
			if err := readCommands(os.Stdin, opts.commands); err != nil {
				logger.Warnf("stdin: %v", err)
			}
		}()
	}
	must(play(ctx, e, d, opts))
	describe(e)
}

func parseScene(s string) ([engine.Channels]uint16, error) {
	var ids [engine.Channels]uint16
	if strings.TrimSpace(s) == "" {
		return ids, nil
	}
	fields := strings.Split(s, ",")
	if len(fields) > engine.Channels {
		return ids, fmt.Errorf("scene has %d ids, at most %d channels", len(fields), engine.Channels)
	}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		id, err := strconv.ParseUint(f, 10, 16)
		if err != nil {
			return ids, fmt.Errorf("scene id %q: %w", f, err)
		}
		ids[i] = uint16(id)
	}
	return ids, nil
}

// describe logs what every channel is playing from, or why it stopped.
func describe(e *engine.Engine) {
	for i := 0; i < engine.Channels; i++ {
		ch, _ := e.Channel(i)
		switch src := ch.Source().(type) {
		case *engine.StorageSource:
			logger.Infof("CH%d: %s streaming %s", i+1, ch.State(), src.Path())
		case *engine.MemorySource:
			logger.Infof("CH%d: %s cached clip %d", i+1, ch.State(), src.ID())
		case *engine.ToneSource:
			p := src.Params()
			logger.Infof("CH%d: %s tone %s %.0f-%.0f Hz", i+1, ch.State(), p.Kind, p.F1, p.F2)
		default:
			if err := ch.Err(); err != nil {
				logger.Warnf("CH%d: idle after %v", i+1, err)
				continue
			}
			logger.Infof("CH%d: idle", i+1)
		}
	}
}

// start plays or loops every assigned channel.
func start(e *engine.Engine, loop bool) error {
	if loop {
		return e.LoopAll()
	}
	for i := 0; i < engine.Channels; i++ {
		ch, err := e.Channel(i)
		if err != nil {
			return err
		}
		if ch.Clip() == nil {
			continue
		}
		if err := e.Play(i); err != nil {
			return err
		}
	}
	return nil
}

func openOutput(backend, label string) (driver.Driver, error) {
	switch backend {
	case "speaker":
		if err := speaker.Initialize(); err != nil {
			return nil, err
		}
	case "oto":
		otospeaker.Initialize()
	default:
		return nil, fmt.Errorf("unknown output %q", backend)
	}

	filter := driver.FilterDeviceType(driver.Speaker)
	if label != "" {
		filter = driver.FilterAnd(filter, driver.FilterLabel(label))
	}
	drivers := driver.GetManager().Query(filter)
	if len(drivers) == 0 {
		return nil, fmt.Errorf("no %s output matches %q", backend, label)
	}
	d := drivers[0]
	logger.Infof("using output %s", d.Info().Label)
	return d, nil
}
