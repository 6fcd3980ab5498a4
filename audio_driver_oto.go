//go:build !headless

// audio_driver_oto.go - OTO v3 output driver (square-wave synthesis)

package main

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	// driverVoices is the tone capacity of this driver: how many stacked
	// tones it mixes at once. Deeper stacks rely on tone multiplexing.
	driverVoices = 3

	// ticksPerSecond is the engine tick cadence. One tick unit equals
	// 1/64 s, so a 64-unit note lasts one beat at 60 BPM.
	ticksPerSecond = 64

	voiceLevel = 0.2 // per-voice amplitude, headroom for driverVoices tones
)

// OtoDriver renders the engine's selected frequencies as square waves through
// an OTO player. OTO pulls samples via Read on its own goroutine, so the
// engine pointer is atomic and the mutex guards setup only.
type OtoDriver struct {
	ctx        *oto.Context
	player     *oto.Player
	engine     atomic.Pointer[Engine]
	started    atomic.Bool
	dirty      atomic.Bool // frequencies must be re-read before synthesis
	sampleRate int

	phases      [driverVoices]float64
	frequencies [driverVoices]float32
	tickSamples int // samples between AdvanceState calls
	tickCount   int

	mutex sync.Mutex
}

// NewOtoDriver opens an OTO context at the given sample rate.
func NewOtoDriver(sampleRate int) (*OtoDriver, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoDriver{
		ctx:         ctx,
		sampleRate:  sampleRate,
		tickSamples: sampleRate / ticksPerSecond,
	}, nil
}

// Attach binds the driver to its engine and starts the pull loop. The player
// runs continuously and emits silence whenever the driver is stopped.
func (d *OtoDriver) Attach(e *Engine) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.engine.Store(e)
	if d.player == nil {
		d.player = d.ctx.NewPlayer(d)
		d.player.Play()
	}
}

func (d *OtoDriver) Initialize() error { return nil }

func (d *OtoDriver) Start() {
	d.started.Store(true)
	d.dirty.Store(true)
}

func (d *OtoDriver) Stop() {
	d.started.Store(false)
}

// Close tears down the player. The driver cannot be restarted afterwards.
func (d *OtoDriver) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.player != nil {
		return d.player.Close()
	}
	return nil
}

// Read synthesizes the next chunk of samples. Every 1/64 s of rendered audio
// it ticks the engine; the frequencies are re-read only when the engine
// reports a change, so quiet ticks stay cheap.
func (d *OtoDriver) Read(p []byte) (int, error) {
	e := d.engine.Load()
	if e == nil || !d.started.Load() {
		for i := range p {
			p[i] = 0
		}
		d.tickCount = 0
		return len(p), nil
	}

	if d.dirty.Swap(false) {
		d.refreshFrequencies(e)
	}

	numSamples := len(p) / 4
	for i := 0; i < numSamples; i++ {
		d.tickCount++
		if d.tickCount >= d.tickSamples {
			d.tickCount = 0
			if e.AdvanceState(1, 1.0) {
				d.refreshFrequencies(e)
			}
		}

		var sample float32
		for v := 0; v < driverVoices; v++ {
			f := d.frequencies[v]
			if f <= 0 {
				continue
			}
			d.phases[v] += float64(f) / float64(d.sampleRate)
			if d.phases[v] >= 1 {
				d.phases[v] -= math.Floor(d.phases[v])
			}
			if d.phases[v] < 0.5 {
				sample += voiceLevel
			} else {
				sample -= voiceLevel
			}
		}

		bits := math.Float32bits(sample)
		p[i*4] = byte(bits)
		p[i*4+1] = byte(bits >> 8)
		p[i*4+2] = byte(bits >> 16)
		p[i*4+3] = byte(bits >> 24)
	}

	return numSamples * 4, nil
}

func (d *OtoDriver) refreshFrequencies(e *Engine) {
	for v := 0; v < driverVoices; v++ {
		d.frequencies[v] = e.ProcessedFrequency(v)
	}
}
