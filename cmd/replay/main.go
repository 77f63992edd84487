// Replay - run a recorded pose trace through the rep-counting engine
//
// Feeds a JSON trace of pose snapshots through the engine without a
// camera or model, printing every event. Useful for tuning zone and
// timer parameters against recorded sessions.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/repcam/go-repcam/internal/log"
	"github.com/repcam/go-repcam/pkg/calibstore"
	"github.com/repcam/go-repcam/pkg/engine"
	"github.com/repcam/go-repcam/pkg/estimator"
	"github.com/repcam/go-repcam/pkg/pose"
)

// trace is the recorded session format.
type trace struct {
	// IntervalMs is the spacing between frames in milliseconds.
	IntervalMs int `json:"interval_ms"`

	// Exercise selects the kind to replay against.
	Exercise engine.Kind `json:"exercise"`

	// Calibration optionally seeds a calibration record.
	Calibration *calibstore.Record `json:"calibration,omitempty"`

	// Frames are the per-frame snapshots; null means no person.
	Frames []*pose.Snapshot `json:"frames"`
}

func main() {
	var (
		path     = flag.String("trace", "", "trace JSON file (required)")
		logLevel = flag.String("log", "info", "log level")
	)
	flag.Parse()
	log.Init(*logLevel)

	if *path == "" {
		fmt.Fprintln(os.Stderr, "Usage: replay -trace session.json")
		os.Exit(1)
	}

	if err := run(*path); err != nil {
		log.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

func run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read trace: %w", err)
	}

	var tr trace
	if err := json.Unmarshal(data, &tr); err != nil {
		return fmt.Errorf("parse trace: %w", err)
	}
	if tr.IntervalMs <= 0 {
		tr.IntervalMs = 100
	}
	if tr.Exercise == "" {
		tr.Exercise = engine.KindSitToStand
	}

	store := calibstore.NewMemoryStore()
	if tr.Calibration != nil {
		if err := store.Save(*tr.Calibration); err != nil {
			return err
		}
	}

	mock := estimator.NewMock()
	mock.Queue(tr.Frames...)

	cfg := engine.DefaultConfig()
	cfg.DecimationRatio = 1 // Every trace frame carries a snapshot
	eng, err := engine.New(cfg, mock, store)
	if err != nil {
		return err
	}
	if err := eng.SelectExercise(tr.Exercise); err != nil {
		return err
	}

	eng.Subscribe(func(ev engine.Event) {
		switch e := ev.(type) {
		case engine.Speak:
			fmt.Printf("speak: %s\n", e.Text)
		case engine.CapturePhoto:
			fmt.Printf("photo: rep=%d position=%s\n", e.Rep, e.Position)
		case engine.RepCompleted:
			fmt.Printf("rep:   %d\n", e.Rep)
		case engine.ExerciseChanged:
			fmt.Printf("state: %s -> %s\n", e.From, e.To)
		case engine.CalibrationChanged:
			fmt.Printf("calib: %s\n", e.State)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(done)
	}()

	// Replay with synthetic timestamps so dwell and hold timers behave
	// exactly as they did live.
	interval := time.Duration(tr.IntervalMs) * time.Millisecond
	at := time.Now()
	for range tr.Frames {
		eng.SubmitFrame([]byte{0xff, 0xd8}, at)
		at = at.Add(interval)
		time.Sleep(time.Millisecond) // Let the coordinator drain
	}
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	status := eng.Status()
	fmt.Printf("\nreplayed %d frames: %d reps, final state %s\n",
		len(tr.Frames), status.RepCount, status.ExerciseState)
	return nil
}
