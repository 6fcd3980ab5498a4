// audio_engine.go - Platform-agnostic audio feedback engine
//
// The engine tracks the actively sounding tones and walks melodies under a
// tempo clock. It produces no waveform itself: an attached Driver is told
// when to start and stop, and reads back the frequency it should emit through
// Frequency/ProcessedFrequency. The driver in turn owes the engine a steady
// stream of AdvanceState calls (one per timer tick) to move playback along.

package main

import (
	"sync"
	"time"
)

const (
	// toneStackSize bounds how many simultaneous tone requests are tracked;
	// the driver may well be able to reproduce fewer.
	toneStackSize = 8

	// unusedFrequency marks an empty slot in the tone stack.
	unusedFrequency = -1.0

	defaultTempo = 120
	minTempo     = 10

	// restBetweenNotes is the duration (in 64ths of a beat) of the silent
	// gap inserted between two successive melody notes of equal frequency.
	restBetweenNotes = 2
)

// Note is a single melody step: a frequency in Hz (0 is a rest) and a
// duration in 64ths of a beat. 64 units last exactly one beat, so the wall
// time of a note is Duration * (60/tempo) driver ticks at 64 ticks a second.
type Note struct {
	Frequency float32
	Duration  float32
}

// Engine owns all platform-agnostic audio state: the tone stack, melody
// playback position, tempo and the persisted enable flags. All mutation goes
// through its methods; a single mutex serialises the driver's tick callback
// against play/stop calls from other goroutines.
type Engine struct {
	mu sync.Mutex

	// tone stack, recency ordered: the most recently requested frequency
	// sits at index activeTones-1
	frequencies [toneStackSize]float32
	activeTones int

	playingNote   bool
	playingMelody bool
	stateChanged  bool // latched by any stack mutation, cleared by AdvanceState

	melody       []Note
	melodyRepeat bool
	currentNote  int
	noteLength   float32 // scaled duration of the current note, in tick units
	notePosition float32 // elapsed tick units within the current note
	noteResting  bool    // a synthetic rest currently separates two equal notes
	tempo        uint8

	cfg         AudioConfig
	initialized bool

	driver Driver
	voice  Voice
	store  ConfigStore
	mux    Multiplexer
}

// NewEngine creates an engine bound to the given driver. A nil driver is
// replaced by a silent stand-in. Voice, config store and multiplexer default
// to no-op implementations; use the Set* methods to attach real ones before
// playback starts.
func NewEngine(driver Driver) *Engine {
	e := &Engine{
		tempo:  defaultTempo,
		driver: nopDriver{},
		voice:  flatVoice{},
		store:  NewMemoryConfigStore(AudioConfig{Enable: true}),
		mux:    nopMultiplexer{},
	}
	if driver != nil {
		e.driver = driver
	}
	for i := range e.frequencies {
		e.frequencies[i] = unusedFrequency
	}
	return e
}

// SetVoice attaches the effects collaborator.
func (e *Engine) SetVoice(v Voice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v == nil {
		v = flatVoice{}
	}
	e.voice = v
}

// SetConfigStore attaches the persistence collaborator. Must be called before
// the first playback entry point, which lazily reads the stored config.
func (e *Engine) SetConfigStore(s ConfigStore) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s == nil {
		s = NewMemoryConfigStore(AudioConfig{Enable: true})
	}
	e.store = s
}

// SetMultiplexer attaches the tone multiplexing capability.
func (e *Engine) SetMultiplexer(m Multiplexer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m == nil {
		m = nopMultiplexer{}
	}
	e.mux = m
}

// init runs the lazy, idempotent initialization: read the persisted config,
// bring up the driver and play the startup song if audio is enabled. Every
// entry point funnels through here, so callers never see an uninitialized
// engine. Lock must be held.
func (e *Engine) init() {
	if e.initialized {
		return
	}
	if cfg, err := e.store.Read(); err == nil {
		e.cfg = cfg
	} else {
		e.cfg = AudioConfig{Enable: true}
	}
	e.driver.Initialize()
	e.initialized = true

	if e.cfg.Enable {
		e.playMelody(startupSong, false)
	}
}

// PlayTone pushes a frequency onto the tone stack and starts the driver if it
// was idle. A negative frequency is normalized to its absolute value. The call
// is ignored while audio is disabled.
func (e *Engine) PlayTone(frequency float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playTone(frequency)
}

func (e *Engine) playTone(frequency float32) {
	e.init()
	if !e.cfg.Enable {
		return
	}
	if frequency < 0 {
		frequency = -frequency
	}

	// round robin: if the frequency is already active the hardware is
	// already reproducing it, so just rotate it to the top of the stack
	for i := e.activeTones - 1; i >= 0; i-- {
		if e.frequencies[i] == frequency {
			for j := i; j < e.activeTones-1; j++ {
				e.frequencies[j] = e.frequencies[j+1]
				e.frequencies[j+1] = frequency
			}
			return
		}
	}

	e.activeTones++
	if e.activeTones > toneStackSize {
		e.activeTones = toneStackSize
		// shift out the oldest tone to make room
		for i := 0; i < e.activeTones-1; i++ {
			e.frequencies[i] = e.frequencies[i+1]
		}
	}
	e.stateChanged = true
	e.playingNote = true
	e.frequencies[e.activeTones-1] = frequency

	e.voice.ResetTimer()

	if e.activeTones == 1 { // sufficient to start when switching from 0 to 1
		e.driver.Start()
	}
}

// StopTone removes a frequency from the tone stack, stopping the driver once
// the last tone is gone. Unknown frequencies are a silent no-op.
func (e *Engine) StopTone(frequency float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTone(frequency)
}

func (e *Engine) stopTone(frequency float32) {
	if frequency < 0 {
		frequency = -frequency
	}

	if !e.playingNote {
		return
	}
	e.init()

	found := false
	for i := toneStackSize - 1; i >= 0; i-- {
		if e.frequencies[i] == frequency {
			found = true
			e.frequencies[i] = unusedFrequency
			for j := i; j < toneStackSize-1; j++ {
				e.frequencies[j] = e.frequencies[j+1]
				e.frequencies[j+1] = unusedFrequency
			}
			break
		}
	}
	if !found {
		return
	}

	e.stateChanged = true
	if e.activeTones > 0 {
		e.activeTones--
	}
	if e.activeTones == 0 {
		e.driver.Stop()
		e.playingNote = false
	}
}

// StopAll unconditionally empties the tone stack, stops the driver and ends
// any melody in flight.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAll()
}

func (e *Engine) stopAll() {
	e.init()
	e.activeTones = 0

	e.driver.Stop()

	e.playingMelody = false
	e.playingNote = false

	for i := range e.frequencies {
		e.frequencies[i] = unusedFrequency
	}
}

// PlayMelody starts playback of a note sequence. The notes are copied, so the
// caller may reuse its slice immediately. With repeat set the melody wraps
// around forever; otherwise playback ends when the last note's duration has
// elapsed. An active single-note playback is cancelled first. Ignored while
// audio is disabled or for an empty sequence.
func (e *Engine) PlayMelody(notes []Note, repeat bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playMelody(notes, repeat)
}

func (e *Engine) playMelody(notes []Note, repeat bool) {
	e.init()
	if !e.cfg.Enable || len(notes) == 0 {
		return
	}

	// cancel simultaneous tones before sequencing
	if e.playingNote {
		e.stopAll()
	}

	e.playingMelody = true
	e.noteResting = false

	e.melody = append(e.melody[:0], notes...)
	e.melodyRepeat = repeat
	e.currentNote = 0

	e.noteLength = e.melody[0].Duration * (60.0 / float32(e.tempo))
	e.notePosition = 0

	// start the first note by hand, which also starts the driver; all
	// remaining notes are stepped through by AdvanceState
	e.playTone(e.melody[0].Frequency)
}

// PlayClick plays a keypress click: a single short tone, optionally preceded
// by a silent delay. delayMS and durationMS are wall-clock milliseconds.
func (e *Engine) PlayClick(delayMS uint16, frequency float32, durationMS uint16) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// ms -> 64ths of a beat; NB: 64/60 is integer division
	durationTone := float32(64/60) * float32(e.tempo) * (float32(durationMS) / 1000.0)
	durationDelay := float32(64/60) * float32(e.tempo) * (float32(delayMS) / 1000.0)

	if delayMS == 0 {
		e.playMelody([]Note{
			{Frequency: frequency, Duration: durationTone},
		}, false)
	} else {
		e.playMelody([]Note{
			{Frequency: 0, Duration: durationDelay}, // leading rest
			{Frequency: frequency, Duration: durationTone},
		}, false)
	}
}

// AdvanceState is the single scheduling entry point, meant to be called at a
// steady cadence from the driver's timer. step is the elapsed time in tick
// units; end is the fraction of the note length that must have elapsed before
// the melody advances (1.0 for exact timing, lower for early cut-off).
// The return value tells the driver whether it must recompute its output this
// cycle; ticks where nothing changed are cheap no-ops.
func (e *Engine) AdvanceState(step uint32, end float32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advanceState(step, end)
}

func (e *Engine) advanceState(step uint32, end float32) bool {
	gotoNextNote := false

	if e.playingNote {
		e.mux.Advance(e.activeTones)
		if e.mux.Rate() > 0 {
			// rotation shifts which tone is audible, so the driver must
			// re-read its frequency every cycle
			gotoNextNote = true
		}
		if e.voice.Vibrato() || e.voice.Glissando() {
			// ditto: these shift the frequency without a state transition
			gotoNextNote = true
		}
	}

	if e.playingMelody {
		e.notePosition += float32(step)

		gotoNextNote = e.notePosition >= e.noteLength*end
		if gotoNextNote {
			previousNote := e.currentNote
			e.currentNote++
			e.voice.ResetTimer()

			if e.currentNote >= len(e.melody) {
				if e.melodyRepeat {
					e.currentNote = 0
				} else {
					e.playingMelody = false
					e.stopTone(e.melody[previousNote].Frequency)
					return true
				}
			}

			if !e.noteResting && e.melody[previousNote].Frequency == e.melody[e.currentNote].Frequency {
				// successive notes of the same frequency: insert a short
				// pause so they stay audibly separate
				e.noteResting = true
				e.currentNote = previousNote
				e.playTone(0)
				e.stopTone(e.melody[previousNote].Frequency)
				e.notePosition -= e.noteLength * end
				e.noteLength = restBetweenNotes * (60.0 / float32(e.tempo))
			} else {
				e.noteResting = false

				// start the next tone before releasing the previous one, so
				// the stack never transiently empties and stops the driver
				e.playTone(e.melody[e.currentNote].Frequency)
				if e.melody[previousNote].Frequency != e.melody[e.currentNote].Frequency {
					e.stopTone(e.melody[previousNote].Frequency)
				}

				// carry the overshoot into the next note so timing error
				// does not accumulate across the melody
				e.notePosition -= e.noteLength * end

				e.noteLength = e.melody[e.currentNote].Duration * (60.0 / float32(e.tempo))
			}
		}
	}

	if !e.playingNote && !e.playingMelody {
		e.stopAll()
	}

	// stack mutations always outrank everything else
	if e.stateChanged {
		e.stateChanged = false
		return true
	}

	return gotoNextNote
}

// IsPlayingNote reports whether any tone is currently active.
func (e *Engine) IsPlayingNote() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playingNote
}

// IsPlayingMelody reports whether a melody is currently in flight.
func (e *Engine) IsPlayingMelody() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playingMelody
}

// ActiveTones returns the number of tones on the stack.
func (e *Engine) ActiveTones() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeTones
}

// Frequency returns the raw frequency at the given logical slot, slot 0 being
// the most recently added tone. Out-of-range slots return silence.
func (e *Engine) Frequency(slot int) float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if slot < 0 || slot >= e.activeTones {
		return 0
	}
	return e.frequencies[e.activeTones-slot-1]
}

// ProcessedFrequency returns the frequency the driver should emit for the
// given logical slot: multiplex rotation applied, then the voice's shaping.
func (e *Engine) ProcessedFrequency(slot int) float32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if slot < 0 || slot >= e.activeTones {
		return 0
	}

	// new tones are appended at the end, so the most recent is activeTones-1
	index := e.activeTones - slot - 1

	index -= e.mux.Shift(e.activeTones)
	if index < 0 { // wrap around
		index += e.activeTones
	}

	if e.frequencies[index] <= 0 {
		return 0
	}

	return e.voice.Envelope(e.frequencies[index])
}

// On enables audio, persists the flag and plays the confirmation song.
func (e *Engine) On() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
	e.cfg.Enable = true
	e.store.Write(e.cfg)
	e.playMelody(audioOnSong, false)
}

// Off plays the shutdown song, silences everything and persists the disabled
// flag. The short sleep lets the song get underway before the cut.
func (e *Engine) Off() {
	e.mu.Lock()
	e.init()
	e.playMelody(audioOffSong, false)
	e.mu.Unlock()

	time.Sleep(100 * time.Millisecond)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAll()
	e.cfg.Enable = false
	e.store.Write(e.cfg)
}

// Toggle flips the enable flag and persists it.
func (e *Engine) Toggle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
	e.cfg.Enable = !e.cfg.Enable
	e.store.Write(e.cfg)
}

// IsOn reports whether audio is enabled.
func (e *Engine) IsOn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
	return e.cfg.Enable
}

// SetClicky sets and persists the keypress-click flag.
func (e *Engine) SetClicky(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
	e.cfg.ClickyEnable = enabled
	e.store.Write(e.cfg)
}

// ToggleClicky flips and persists the keypress-click flag.
func (e *Engine) ToggleClicky() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
	e.cfg.ClickyEnable = !e.cfg.ClickyEnable
	e.store.Write(e.cfg)
}

// IsClickyEnabled reports whether keypress clicks are enabled.
func (e *Engine) IsClickyEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
	return e.cfg.ClickyEnable
}

// Tempo returns the current tempo in beats per minute.
func (e *Engine) Tempo() uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tempo
}

// SetTempo sets the tempo, clamped to the floor of 10 BPM. It affects the
// scaled length of future notes, not the one in flight.
func (e *Engine) SetTempo(tempo uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tempo < minTempo {
		e.tempo = minTempo
	} else {
		e.tempo = tempo
	}
}

// IncreaseTempo raises the tempo, saturating at 255 instead of wrapping.
func (e *Engine) IncreaseTempo(by uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if by > 255-e.tempo {
		e.tempo = 255
	} else {
		e.tempo += by
	}
}

// DecreaseTempo lowers the tempo, saturating at the floor of 10 BPM.
func (e *Engine) DecreaseTempo(by uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if by >= e.tempo-minTempo {
		e.tempo = minTempo
	} else {
		e.tempo -= by
	}
}

// SetMultiplexRate sets the multiplex rotation rate in clock units per step;
// 0 disables rotation. No-op without an attached multiplexer.
func (e *Engine) SetMultiplexRate(rate float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mux.SetRate(rate)
}

// MultiplexRate returns the current rotation rate, 0 when disabled.
func (e *Engine) MultiplexRate() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mux.Rate()
}

// EnableMultiplexing turns tone rotation on at the default rate.
func (e *Engine) EnableMultiplexing() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mux.SetRate(defaultMultiplexRate)
}

// DisableMultiplexing turns tone rotation off.
func (e *Engine) DisableMultiplexing() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mux.SetRate(0)
}

// IncreaseMultiplexRate scales the rotation rate up by the given factor.
func (e *Engine) IncreaseMultiplexRate(factor float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mux.SetRate(e.mux.Rate() * factor)
}

// DecreaseMultiplexRate scales the rotation rate down by the given factor.
func (e *Engine) DecreaseMultiplexRate(factor float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if factor != 0 {
		e.mux.SetRate(e.mux.Rate() / factor)
	}
}
