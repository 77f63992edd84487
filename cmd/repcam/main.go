// RepCam - camera-based exercise rep counter
//
// Wires the capture pipeline into the rep-counting engine and serves
// the live dashboard: camera → pose estimation → calibration/exercise
// state machines → speech, photos, dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/repcam/go-repcam/internal/config"
	"github.com/repcam/go-repcam/internal/log"
	"github.com/repcam/go-repcam/pkg/calibstore"
	"github.com/repcam/go-repcam/pkg/capture"
	"github.com/repcam/go-repcam/pkg/debug"
	"github.com/repcam/go-repcam/pkg/engine"
	"github.com/repcam/go-repcam/pkg/estimator"
	"github.com/repcam/go-repcam/pkg/photo"
	"github.com/repcam/go-repcam/pkg/speech"
	"github.com/repcam/go-repcam/pkg/web"
)

func main() {
	var (
		cameraIndex = flag.Int("camera", config.CameraIndex(), "capture device index")
		modelPath   = flag.String("model", config.ModelPath(), "pose model ONNX path")
		oracleAddr  = flag.String("oracle", config.OracleURL(), "remote pose service host:port (empty = in-process)")
		port        = flag.String("port", config.WebPort(), "dashboard port")
		dataDir     = flag.String("data", config.DataDir(), "data directory (calibration, photos)")
		exercise    = flag.String("exercise", string(engine.KindSitToStand), "initial exercise kind")
		logLevel    = flag.String("log", "info", "log level (debug, info, warn, error)")
		debugPose   = flag.Bool("debug-pose", false, "verbose per-frame pose logs")
	)
	flag.Parse()

	log.Init(*logLevel)
	debug.Pose = *debugPose

	if err := run(*cameraIndex, *modelPath, *oracleAddr, *port, *dataDir, *exercise); err != nil && err != context.Canceled {
		log.Error("repcam failed", "error", err)
		os.Exit(1)
	}
}

func run(cameraIndex int, modelPath, oracleAddr, port, dataDir, exercise string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	// Calibration persistence
	store, err := calibstore.NewJSONStore(filepath.Join(dataDir, "calibration.json"))
	if err != nil {
		return fmt.Errorf("open calibration store: %w", err)
	}

	// Pose oracle: remote service or in-process model
	var est estimator.Estimator
	estCfg := estimator.DefaultConfig()
	estCfg.ModelPath = modelPath
	if oracleAddr != "" {
		est, err = estimator.NewRemote(oracleAddr, estCfg)
	} else {
		est, err = estimator.NewMoveNet(estCfg)
	}
	if err != nil {
		return fmt.Errorf("open pose estimator: %w", err)
	}
	defer est.Close()

	// Engine
	eng, err := engine.New(engine.DefaultConfig(), est, store)
	if err != nil {
		return err
	}
	if err := eng.SelectExercise(engine.Kind(exercise)); err != nil {
		return err
	}

	// Sinks
	var speaker speech.Speaker
	speaker, err = speech.NewSay()
	if err != nil {
		log.Warn("no system TTS, speech goes to the log")
		speaker = speech.NewLog()
	}
	defer speaker.Close()

	photos, err := photo.NewSaver(filepath.Join(dataDir, "photos"))
	if err != nil {
		return fmt.Errorf("open photo saver: %w", err)
	}

	server := web.NewServer(port, eng)

	eng.Subscribe(server.Listener())
	eng.Subscribe(func(ev engine.Event) {
		switch e := ev.(type) {
		case engine.Speak:
			go func() {
				if err := speaker.Speak(ctx, e.Text); err != nil {
					log.Warn("speech failed", "error", err)
				}
			}()
		case engine.CapturePhoto:
			sessionID := eng.Status().SessionID
			go func() {
				if _, err := photos.Save(sessionID, e.Rep, string(e.Position), e.Frame); err != nil {
					log.Warn("photo save failed", "error", err)
				}
			}()
		case engine.RepCompleted:
			log.Info("rep completed", "rep", e.Rep)
		}
	})

	// Camera
	capCfg := capture.DefaultConfig()
	capCfg.DeviceIndex = cameraIndex
	cam, err := capture.Open(capCfg)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer cam.Close()

	server.StartAsync(ctx)
	defer server.Shutdown()

	go func() {
		if err := eng.Run(ctx); err != nil && err != context.Canceled {
			log.Error("engine stopped", "error", err)
			cancel()
		}
	}()

	// Frame pump: every frame goes to the preview stream, the engine
	// decimates its own inference path.
	return cam.Run(ctx, func(jpeg []byte, at time.Time) {
		server.SendPreviewFrame(jpeg)
		eng.SubmitFrame(jpeg, at)
	})
}
