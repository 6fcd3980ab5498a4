// audio_midi.go - Standard MIDI File to melody conversion

package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// MelodyFromSMF flattens a Standard MIDI File into a monophonic melody the
// engine can play. Note events from all tracks are merged in tick order; a
// new note-on cuts whatever was sounding, and gaps become rests. Durations
// come out in 64ths of a beat, so playback speed follows the engine tempo.
// The returned BPM is the file's first tempo meta event, or 0 if it has none.
func MelodyFromSMF(data []byte) ([]Note, float64, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	ticksPerQuarter := uint16(480)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		ticksPerQuarter = mt.Resolution()
	}

	type noteEvent struct {
		tick int64
		key  uint8
		on   bool
	}

	var events []noteEvent
	var bpm float64

	for _, track := range s.Tracks {
		var currentTick int64
		for _, ev := range track {
			currentTick += int64(ev.Delta)
			msg := ev.Message

			// Tempo meta message: FF 51 03 followed by usec-per-beat
			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				usecPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if bpm == 0 && usecPerBeat > 0 {
					bpm = 60000000.0 / float64(usecPerBeat)
				}
				continue
			}

			if len(msg) < 3 {
				continue
			}
			status := msg[0]
			key := msg[1]
			velocity := msg[2]

			switch {
			case status >= 0x90 && status <= 0x9F && velocity > 0:
				events = append(events, noteEvent{tick: currentTick, key: key, on: true})
			case status >= 0x80 && status <= 0x8F,
				status >= 0x90 && status <= 0x9F: // note-on with velocity 0
				events = append(events, noteEvent{tick: currentTick, key: key, on: false})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	ticksToUnits := func(ticks int64) float32 {
		return float32(ticks) * 64.0 / float32(ticksPerQuarter)
	}

	var notes []Note
	soundingKey := -1
	var soundingSince int64
	var cursor int64 // end of the last emitted note/rest

	emit := func(until int64) {
		if soundingKey < 0 || until <= soundingSince {
			return
		}
		notes = append(notes, Note{
			Frequency: midiNoteFrequency(uint8(soundingKey)),
			Duration:  ticksToUnits(until - soundingSince),
		})
		cursor = until
	}

	for _, ev := range events {
		if ev.on {
			emit(ev.tick)
			if ev.tick > cursor {
				notes = append(notes, Note{Frequency: 0, Duration: ticksToUnits(ev.tick - cursor)})
			}
			soundingKey = int(ev.key)
			soundingSince = ev.tick
			cursor = ev.tick
		} else if int(ev.key) == soundingKey {
			emit(ev.tick)
			soundingKey = -1
		}
	}

	if len(notes) == 0 {
		return nil, bpm, fmt.Errorf("no notes found in MIDI data")
	}
	return notes, bpm, nil
}

// LoadMelody reads and converts a MIDI file from disk.
func LoadMelody(path string) ([]Note, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return MelodyFromSMF(data)
}
