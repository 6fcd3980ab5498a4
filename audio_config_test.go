// audio_config_test.go - Tests for config persistence

package main

import (
	"os"
	"path/filepath"
	"testing"
)

// TestFileConfigStoreMissingFile checks a missing file reads as the enabled
// defaults, not an error.
func TestFileConfigStoreMissingFile(t *testing.T) {
	store := NewFileConfigStore(filepath.Join(t.TempDir(), "audio.json"))

	cfg, err := store.Read()
	if err != nil {
		t.Fatalf("read of missing file failed: %v", err)
	}
	if !cfg.Enable {
		t.Error("missing config should default to enabled")
	}
}

// TestFileConfigStoreRoundTrip checks write-then-read fidelity.
func TestFileConfigStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audio.json")
	store := NewFileConfigStore(path)

	want := AudioConfig{Enable: false, ClickyEnable: true}
	if err := store.Write(want); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := store.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got != want {
		t.Errorf("round trip: got %+v, want %+v", got, want)
	}

	// no temp file left behind
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after write")
	}
}

// TestFileConfigStoreCorruptFile checks a corrupted file surfaces an error
// rather than silently resetting.
func TestFileConfigStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileConfigStore(path).Read(); err == nil {
		t.Error("corrupt config read succeeded")
	}
}

// TestTogglePersists checks the enable flag round-trips through the store.
func TestTogglePersists(t *testing.T) {
	store := NewMemoryConfigStore(AudioConfig{Enable: true})
	e := NewEngine(&fakeDriver{})
	e.SetConfigStore(store)

	e.Toggle()
	if cfg, _ := store.Read(); cfg.Enable {
		t.Error("toggle off not persisted")
	}
	if e.IsOn() {
		t.Error("engine still reports enabled")
	}

	e.Toggle()
	if cfg, _ := store.Read(); !cfg.Enable {
		t.Error("toggle on not persisted")
	}
}

// TestOffSilencesAndPersists checks Off tears playback down and stores the
// disabled flag.
func TestOffSilencesAndPersists(t *testing.T) {
	store := NewMemoryConfigStore(AudioConfig{Enable: true})
	e := NewEngine(&fakeDriver{})
	e.SetConfigStore(store)

	e.PlayTone(440)
	e.Off()

	if e.ActiveTones() != 0 || e.IsPlayingMelody() {
		t.Error("playback survived Off")
	}
	if cfg, _ := store.Read(); cfg.Enable {
		t.Error("disabled flag not persisted")
	}

	e.PlayTone(440)
	if e.ActiveTones() != 0 {
		t.Error("disabled engine accepted a tone")
	}
}

// TestClickyFlagPersists checks the keypress-click flag.
func TestClickyFlagPersists(t *testing.T) {
	store := NewMemoryConfigStore(AudioConfig{Enable: true})
	e := NewEngine(&fakeDriver{})
	e.SetConfigStore(store)

	if e.IsClickyEnabled() {
		t.Error("clicky unexpectedly enabled by default")
	}

	e.SetClicky(true)
	if cfg, _ := store.Read(); !cfg.ClickyEnable {
		t.Error("clicky enable not persisted")
	}

	e.ToggleClicky()
	if e.IsClickyEnabled() {
		t.Error("clicky toggle off not applied")
	}
}
