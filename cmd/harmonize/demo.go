package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	"github.com/CodingFreeze/Harmonize/core/engine"
	"github.com/CodingFreeze/Harmonize/core/model"
	"github.com/CodingFreeze/Harmonize/core/synth"
	"github.com/CodingFreeze/Harmonize/internal/audio"
)

var (
	demoInstrument string
	demoStylus     string
	demoBPM        float64
	demoSpeed      float64
	demoLoop       int
)

func init() {
	demoCmd.Flags().StringVar(&demoInstrument, "instrument", "poly", "voice kind: poly, am, fm, membrane, metal")
	demoCmd.Flags().StringVar(&demoStylus, "stylus", "default", "stylus profile: default, brush, pencil, marker, watercolor")
	demoCmd.Flags().Float64Var(&demoBPM, "bpm", 120, "transport tempo")
	demoCmd.Flags().Float64Var(&demoSpeed, "speed", 1.0, "playback speed multiplier (0.1-2.0)")
	demoCmd.Flags().IntVar(&demoLoop, "loop", 0, "extra loop passes before the spiral is allowed to end")
	rootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Play a synthetic spiral stroke and print the MIDI messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo()
	},
}

const (
	demoCanvasW = 800.0
	demoCanvasH = 600.0
)

// spiralStroke fabricates the stroke a user would draw sweeping outward from
// the canvas center over four seconds.
func spiralStroke(stylusID string) model.Stroke {
	const points = 64
	var pts []model.StrokePoint
	for i := 0; i < points; i++ {
		frac := float64(i) / float64(points-1)
		angle := frac * 4 * math.Pi
		radius := 30 + frac*240
		pts = append(pts, model.StrokePoint{
			X:        demoCanvasW/2 + radius*math.Cos(angle),
			Y:        demoCanvasH/2 + radius*math.Sin(angle),
			Time:     frac * 4000,
			Pressure: 0.5,
		})
	}
	return model.NewStroke(pts, "#3366cc", 4, stylusID)
}

func runDemo() error {
	logger := newLogger()
	clock := synth.SystemClock{}
	sender := audio.SenderFunc(func(msg midi.Message) error {
		fmt.Printf("%8.3fs  %s\n", time.Since(startTime).Seconds(), msg)
		return nil
	})

	backend := audio.New(sender, clock, logger)

	eng, err := engine.New(backend,
		engine.WithLogger(logger),
		engine.WithInstrument(demoInstrument),
		engine.WithCanvasSize(demoCanvasW, demoCanvasH),
		engine.WithBPM(demoBPM),
	)
	if err != nil {
		return err
	}
	defer eng.Dispose()

	eng.SetStylus(demoStylus)
	eng.SetPlaybackSpeed(demoSpeed)
	if demoLoop > 0 {
		eng.SetLoopPlayback(true)
	}
	if !eng.ManualInitialize() {
		diag := eng.TestAudio()
		return fmt.Errorf("audio backend not available: %s", diag.Message)
	}

	ended := make(chan struct{})
	eng.OnPlaybackEnded(func() { close(ended) })

	eng.AddStroke(spiralStroke(demoStylus))
	if err := eng.Play(0); err != nil {
		return err
	}
	fmt.Printf("playing %.1fs composition (%d loop passes)...\n", eng.TotalDuration(), demoLoop)

	// Looping never reports end of playback, so let the extra passes run on
	// wall time and then release the loop for a natural finish.
	if demoLoop > 0 {
		time.Sleep(time.Duration(eng.TotalDuration()*float64(demoLoop)) * time.Second)
		eng.SetLoopPlayback(false)
	}

	select {
	case <-ended:
	case <-time.After(time.Duration(eng.TotalDuration()+5) * time.Second):
		return fmt.Errorf("playback did not finish in time")
	}
	return nil
}

var startTime = time.Now()
