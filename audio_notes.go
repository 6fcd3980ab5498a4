// audio_notes.go - Pitch and duration constants plus the built-in songs

package main

import "math"

// Durations in 64ths of a beat.
const (
	wholeNote        = 64
	halfNote         = 32
	quarterNote      = 16
	eighthNote       = 8
	sixteenthNote    = 4
	thirtysecondNote = 2
)

// Equal-tempered pitches around A4 = 440 Hz.
const (
	noteC4  float32 = 261.63
	noteDb4 float32 = 277.18
	noteD4  float32 = 293.66
	noteEb4 float32 = 311.13
	noteE4  float32 = 329.63
	noteF4  float32 = 349.23
	noteGb4 float32 = 369.99
	noteG4  float32 = 392.00
	noteAb4 float32 = 415.30
	noteA4  float32 = 440.00
	noteBb4 float32 = 466.16
	noteB4  float32 = 493.88
	noteC5  float32 = 523.25
	noteE5  float32 = 659.26
	noteA5  float32 = 880.00
	noteE6  float32 = 1318.51
)

// midiNoteFrequency converts a MIDI key number to Hz (A4 = key 69 = 440 Hz).
func midiNoteFrequency(key uint8) float32 {
	return 440.0 * float32(math.Pow(2, (float64(key)-69)/12))
}

// Built-in songs played on engine lifecycle transitions.
var (
	startupSong = []Note{
		{Frequency: noteE5, Duration: eighthNote},
		{Frequency: noteA5, Duration: eighthNote},
		{Frequency: noteE6, Duration: quarterNote},
	}

	audioOnSong = []Note{
		{Frequency: noteA5, Duration: eighthNote},
		{Frequency: noteE6, Duration: quarterNote},
	}

	audioOffSong = []Note{
		{Frequency: noteE6, Duration: eighthNote},
		{Frequency: noteA5, Duration: quarterNote},
	}

	// scaleSong is one ascending C major octave, handy for driver checks.
	scaleSong = []Note{
		{Frequency: noteC4, Duration: quarterNote},
		{Frequency: noteD4, Duration: quarterNote},
		{Frequency: noteE4, Duration: quarterNote},
		{Frequency: noteF4, Duration: quarterNote},
		{Frequency: noteG4, Duration: quarterNote},
		{Frequency: noteA4, Duration: quarterNote},
		{Frequency: noteB4, Duration: quarterNote},
		{Frequency: noteC5, Duration: halfNote},
	}
)
