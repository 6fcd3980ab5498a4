// audio_multiplex.go - Tone multiplexing (time-slicing a single output)

package main

const (
	// maxSimultaneousTones caps how many stacked tones take part in the
	// rotation; hardware with a single output cycles between at most this
	// many.
	maxSimultaneousTones = 3

	// defaultMultiplexRate is the rotation speed installed by
	// EnableMultiplexing, in clock units per step.
	defaultMultiplexRate = 10
)

// Multiplexer rotates which tone-stack slot drives the hardware output, so a
// single-output driver can fake chords by time-slicing. The engine recomputes
// the rotation every tick while a note is active and subtracts the shift from
// the slot index on every frequency query.
type Multiplexer interface {
	// Rate returns the rotation rate; 0 means rotation is off
	Rate() float32
	// SetRate sets the rotation rate in clock units per step
	SetRate(rate float32)
	// Advance recomputes the rotation for the current tick
	Advance(activeTones int)
	// Shift returns the current slot offset, always within
	// [0, min(maxSimultaneousTones, activeTones))
	Shift(activeTones int) int
}

// nopMultiplexer is the default capability on hardware that can reproduce
// every stacked tone at once: no rotation, ever.
type nopMultiplexer struct{}

func (nopMultiplexer) Rate() float32   { return 0 }
func (nopMultiplexer) SetRate(float32) {}
func (nopMultiplexer) Advance(int)     {}
func (nopMultiplexer) Shift(int) int   { return 0 }

// ToneMultiplexer derives the rotation from a monotonic clock, stepping the
// shift once every rate clock units.
type ToneMultiplexer struct {
	clock Clock
	rate  float32
	shift int
}

// NewToneMultiplexer creates a multiplexer driven by the given clock. A nil
// clock falls back to wall time. Rotation starts disabled.
func NewToneMultiplexer(clock Clock) *ToneMultiplexer {
	if clock == nil {
		clock = newSysClock()
	}
	return &ToneMultiplexer{clock: clock}
}

func (m *ToneMultiplexer) Rate() float32 { return m.rate }

func (m *ToneMultiplexer) SetRate(rate float32) {
	if rate < 0 {
		rate = 0
	}
	m.rate = rate
}

func (m *ToneMultiplexer) Advance(activeTones int) {
	if m.rate <= 0 || activeTones <= 0 {
		m.shift = 0
		return
	}
	window := maxSimultaneousTones
	if activeTones < window {
		window = activeTones
	}
	m.shift = int(float32(m.clock.Now())/m.rate) % window
}

func (m *ToneMultiplexer) Shift(activeTones int) int {
	if m.shift >= activeTones {
		return 0
	}
	return m.shift
}
