// main.go - beepkit CLI: play melodies, clicks and tones through the engine

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagSampleRate int
	flagTempo      int
	flagLoop       bool
	flagMux        bool
	flagSeconds    float64
	flagDelay      int
	flagFreq       float64
	flagLength     int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "beepkit",
	Short: "Keyboard-style audio feedback: tones, clicks and melodies",
	Long: `beepkit drives a small square-wave beeper the way keyboard firmware
drives its speaker: a bounded stack of active tones, a melody sequencer
under a tempo clock, and per-keypress clicks.

Examples:
  beepkit scale
  beepkit play melody.mid --tempo 140
  beepkit tone 440 --seconds 2
  beepkit click --freq 1000 --length 8
  beepkit keys`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagSampleRate, "sample-rate", 48000, "output sample rate")
	rootCmd.PersistentFlags().BoolVar(&flagMux, "mux", false, "enable tone multiplexing")

	playCmd.Flags().IntVar(&flagTempo, "tempo", 0, "tempo in BPM (0 = use the file's tempo)")
	playCmd.Flags().BoolVar(&flagLoop, "loop", false, "repeat the melody until interrupted")
	toneCmd.Flags().Float64Var(&flagSeconds, "seconds", 1.0, "how long to hold the tone")
	clickCmd.Flags().IntVar(&flagDelay, "delay", 0, "leading silence in milliseconds")
	clickCmd.Flags().Float64Var(&flagFreq, "freq", 1000, "click frequency in Hz")
	clickCmd.Flags().IntVar(&flagLength, "length", 8, "click length in milliseconds")

	rootCmd.AddCommand(playCmd, toneCmd, clickCmd, scaleCmd, keysCmd)
}

// newPlayback wires a driver, the persisted config and the optional
// multiplexer into a ready engine.
func newPlayback() (*Engine, *OtoDriver, error) {
	driver, err := NewOtoDriver(flagSampleRate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audio output: %w", err)
	}

	engine := NewEngine(driver)
	if path, err := DefaultConfigPath(); err == nil {
		engine.SetConfigStore(NewFileConfigStore(path))
	}
	if flagMux {
		engine.SetMultiplexer(NewToneMultiplexer(nil))
		engine.EnableMultiplexing()
	}
	driver.Attach(engine)
	return engine, driver, nil
}

// waitForMelody blocks until the engine finishes the current melody, plus a
// little slack for the trailing edge of the last note.
func waitForMelody(e *Engine) {
	for e.IsPlayingMelody() {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
}

var playCmd = &cobra.Command{
	Use:   "play <file.mid>",
	Short: "Play a MIDI file as a beeper melody",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, bpm, err := LoadMelody(args[0])
		if err != nil {
			return err
		}

		engine, driver, err := newPlayback()
		if err != nil {
			return err
		}
		defer driver.Close()

		switch {
		case flagTempo > 0:
			engine.SetTempo(clampTempo(flagTempo))
		case bpm > 0:
			engine.SetTempo(clampTempo(int(bpm)))
		}

		engine.PlayMelody(notes, flagLoop)
		if flagLoop {
			fmt.Println("looping, press ctrl-c to stop")
			select {}
		}
		waitForMelody(engine)
		return nil
	},
}

func clampTempo(bpm int) uint8 {
	if bpm > 255 {
		return 255
	}
	if bpm < 0 {
		return 0
	}
	return uint8(bpm)
}

var toneCmd = &cobra.Command{
	Use:   "tone <hz>",
	Short: "Hold a single tone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var hz float64
		if _, err := fmt.Sscanf(args[0], "%g", &hz); err != nil || hz <= 0 {
			return fmt.Errorf("invalid frequency %q", args[0])
		}

		engine, driver, err := newPlayback()
		if err != nil {
			return err
		}
		defer driver.Close()

		engine.StopAll() // cut the startup song short
		engine.PlayTone(float32(hz))
		time.Sleep(time.Duration(flagSeconds * float64(time.Second)))
		engine.StopTone(float32(hz))
		return nil
	},
}

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Play a single keypress click",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, driver, err := newPlayback()
		if err != nil {
			return err
		}
		defer driver.Close()

		engine.PlayClick(uint16(flagDelay), float32(flagFreq), uint16(flagLength))
		waitForMelody(engine)
		return nil
	},
}

var scaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Play an ascending C major scale",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, driver, err := newPlayback()
		if err != nil {
			return err
		}
		defer driver.Close()

		engine.PlayMelody(scaleSong, false)
		waitForMelody(engine)
		return nil
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Click on every keypress (q or ctrl-c quits)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, driver, err := newPlayback()
		if err != nil {
			return err
		}
		defer driver.Close()

		fd := int(os.Stdin.Fd())
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer term.Restore(fd, oldState)

		fmt.Print("type away; q quits\r\n")
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				return nil
			}
			c := buf[0]
			if c == 'q' || c == 3 || c == 27 { // q, ctrl-c, esc
				return nil
			}
			// spread the keys over an octave so typing has some contour
			engine.PlayClick(0, midiNoteFrequency(69+c%12), 8)
		}
	},
}
