// audio_test_helpers_test.go - Shared fakes for the audio engine tests

package main

// fakeDriver records the start/stop signals the engine emits.
type fakeDriver struct {
	initialized int
	starts      int
	stops       int
}

func (d *fakeDriver) Initialize() error {
	d.initialized++
	return nil
}

func (d *fakeDriver) Start() { d.starts++ }
func (d *fakeDriver) Stop()  { d.stops++ }

func (d *fakeDriver) reset() {
	d.starts = 0
	d.stops = 0
}

// fakeClock is a hand-stepped monotonic clock for multiplexer tests.
type fakeClock struct {
	now uint32
}

func (c *fakeClock) Now() uint32 { return c.now }

// fakeVoice lets tests flip the effect flags and watch the timer resets.
type fakeVoice struct {
	glissando bool
	vibrato   bool
	resets    int
	envelope  func(frequency float32) float32
}

func (v *fakeVoice) Glissando() bool { return v.glissando }
func (v *fakeVoice) Vibrato() bool   { return v.vibrato }
func (v *fakeVoice) ResetTimer()     { v.resets++ }

func (v *fakeVoice) Envelope(frequency float32) float32 {
	if v.envelope != nil {
		return v.envelope(frequency)
	}
	return frequency
}

// newTestEngine returns an initialized, silent, enabled engine and its
// recording driver: the startup song is cleared and the driver counters and
// changed-latch are zeroed, so tests observe only their own transitions.
func newTestEngine() (*Engine, *fakeDriver) {
	driver := &fakeDriver{}
	e := NewEngine(driver)
	e.StopAll()          // forces init, then silences the startup song
	e.AdvanceState(0, 1) // drain the changed latch
	driver.reset()
	return e, driver
}

// tickUntilDone advances the engine one unit at a time until the melody
// completes, returning the tick count. Bails out well past any sane length.
func tickUntilDone(e *Engine) int {
	ticks := 0
	for e.IsPlayingMelody() {
		e.AdvanceState(1, 1.0)
		ticks++
		if ticks > 100000 {
			return -1
		}
	}
	return ticks
}
