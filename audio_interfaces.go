// audio_interfaces.go - Collaborator contracts consumed by the audio engine

package main

import "time"

// Driver is the hardware-specific collaborator that actually emits sound for
// the frequencies the engine selects. Start is signalled on the 0->1
// active-tone transition, Stop on 1->0 or an explicit stop-all; both must be
// idempotent under repeated calls.
type Driver interface {
	// Initialize prepares the output hardware; called once from lazy init
	Initialize() error
	// Start begins sound output
	Start()
	// Stop silences the output
	Stop()
}

// nopDriver is the default Driver; it swallows every signal so the engine can
// run with no output hardware attached (tests, dry runs).
type nopDriver struct{}

func (nopDriver) Initialize() error { return nil }
func (nopDriver) Start()            {}
func (nopDriver) Stop()             {}

// Voice supplies the instrument character: pitch-bend (glissando), periodic
// pitch wobble (vibrato) and amplitude/envelope shaping. The engine only
// invokes the shaping, it never implements the effect math itself.
type Voice interface {
	// Glissando reports whether pitch-bend shaping is active
	Glissando() bool
	// Vibrato reports whether pitch wobble is active
	Vibrato() bool
	// ResetTimer restarts the effect timebase; called on every note start
	// and note advance
	ResetTimer()
	// Envelope shapes the given frequency and returns the one to emit
	Envelope(frequency float32) float32
}

// flatVoice is the default Voice: no effects, identity envelope.
type flatVoice struct{}

func (flatVoice) Glissando() bool                    { return false }
func (flatVoice) Vibrato() bool                      { return false }
func (flatVoice) ResetTimer()                        {}
func (flatVoice) Envelope(frequency float32) float32 { return frequency }

// ConfigStore persists the enable flags across restarts.
type ConfigStore interface {
	Read() (AudioConfig, error)
	Write(cfg AudioConfig) error
}

// Clock is a monotonic millisecond reader, used by the tone multiplexer's
// rotation formula.
type Clock interface {
	Now() uint32
}

type sysClock struct {
	start time.Time
}

func newSysClock() sysClock {
	return sysClock{start: time.Now()}
}

func (c sysClock) Now() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}
