// audio_midi_test.go - Tests for MIDI to melody conversion

package main

import (
	"math"
	"testing"
)

// smfFile assembles a minimal format-0 file at 96 ticks per quarter from raw
// track bytes.
func smfFile(track []byte) []byte {
	data := []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6,
		0, 0, // format 0
		0, 1, // one track
		0, 96, // ticks per quarter
		'M', 'T', 'r', 'k',
		byte(len(track) >> 24), byte(len(track) >> 16), byte(len(track) >> 8), byte(len(track)),
	}
	return append(data, track...)
}

// TestMelodyFromSMFSingleNote converts a one-beat A4.
func TestMelodyFromSMFSingleNote(t *testing.T) {
	data := smfFile([]byte{
		0x00, 0x90, 69, 100, // note on A4
		0x60, 0x80, 69, 0, // note off after 96 ticks = 1 beat
		0x00, 0xFF, 0x2F, 0x00, // end of track
	})

	notes, _, err := MelodyFromSMF(data)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if got := notes[0].Frequency; math.Abs(float64(got)-440) > 0.01 {
		t.Errorf("frequency: got %v, want 440", got)
	}
	if got := notes[0].Duration; math.Abs(float64(got)-64) > 0.01 {
		t.Errorf("duration: got %v, want 64 (one beat)", got)
	}
}

// TestMelodyFromSMFRestsAndTempo converts a two-note phrase with a gap and a
// tempo meta event.
func TestMelodyFromSMFRestsAndTempo(t *testing.T) {
	data := smfFile([]byte{
		0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20, // tempo 500000 us = 120 BPM
		0x00, 0x90, 60, 100, // C4 on
		0x30, 0x80, 60, 0, // C4 off at tick 48
		0x30, 0x90, 67, 100, // G4 on at tick 96 (48-tick gap)
		0x60, 0x80, 67, 0, // G4 off at tick 192
		0x00, 0xFF, 0x2F, 0x00,
	})

	notes, bpm, err := MelodyFromSMF(data)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if math.Abs(bpm-120) > 0.01 {
		t.Errorf("tempo: got %v BPM, want 120", bpm)
	}

	want := []Note{
		{Frequency: 261.63, Duration: 32},
		{Frequency: 0, Duration: 32},
		{Frequency: 392.00, Duration: 64},
	}
	if len(notes) != len(want) {
		t.Fatalf("got %d notes, want %d: %+v", len(notes), len(want), notes)
	}
	for i := range want {
		if math.Abs(float64(notes[i].Frequency-want[i].Frequency)) > 0.01 {
			t.Errorf("note %d frequency: got %v, want %v", i, notes[i].Frequency, want[i].Frequency)
		}
		if math.Abs(float64(notes[i].Duration-want[i].Duration)) > 0.01 {
			t.Errorf("note %d duration: got %v, want %v", i, notes[i].Duration, want[i].Duration)
		}
	}
}

// TestMelodyFromSMFZeroVelocityNoteOff treats note-on at velocity 0 as a
// release.
func TestMelodyFromSMFZeroVelocityNoteOff(t *testing.T) {
	data := smfFile([]byte{
		0x00, 0x90, 69, 100,
		0x60, 0x90, 69, 0, // velocity-0 note on = note off
		0x00, 0xFF, 0x2F, 0x00,
	})

	notes, _, err := MelodyFromSMF(data)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if got := notes[0].Duration; math.Abs(float64(got)-64) > 0.01 {
		t.Errorf("duration: got %v, want 64", got)
	}
}

// TestMelodyFromSMFErrors covers garbage input and note-free files.
func TestMelodyFromSMFErrors(t *testing.T) {
	if _, _, err := MelodyFromSMF([]byte("not a midi file")); err == nil {
		t.Error("garbage input converted without error")
	}

	empty := smfFile([]byte{0x00, 0xFF, 0x2F, 0x00})
	if _, _, err := MelodyFromSMF(empty); err == nil {
		t.Error("note-free file converted without error")
	}
}

// TestMidiNoteFrequency spot-checks the equal-temperament mapping.
func TestMidiNoteFrequency(t *testing.T) {
	cases := []struct {
		key  uint8
		want float64
	}{
		{69, 440.0},  // A4
		{60, 261.63}, // C4
		{81, 880.0},  // A5
		{57, 220.0},  // A3
	}
	for _, tc := range cases {
		if got := midiNoteFrequency(tc.key); math.Abs(float64(got)-tc.want) > 0.01 {
			t.Errorf("key %d: got %v, want %v", tc.key, got, tc.want)
		}
	}
}
