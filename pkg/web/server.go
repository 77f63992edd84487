// Package web provides the live dashboard for go-repcam: current
// calibration and exercise state over REST, plus websocket streams for
// status updates, engine events, and camera preview frames.
package web

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/repcam/go-repcam/internal/log"
	"github.com/repcam/go-repcam/pkg/engine"
	"github.com/repcam/go-repcam/pkg/hub"
)

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, speech, photo, rep, error
	Message string `json:"message"`
}

// eventEnvelope wraps engine events for the websocket stream.
type eventEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	port   string
	engine *engine.Engine

	// Log buffer (last 500 entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub  *hub.Hub
	eventHub   *hub.Hub
	previewHub *hub.Hub
}

// NewServer creates a new dashboard server wired to an engine.
func NewServer(port string, eng *engine.Engine) *Server {
	s := &Server{
		port:       port,
		engine:     eng,
		logs:       make([]LogEntry, 0, 500),
		statusHub:  hub.New("status"),
		eventHub:   hub.New("events"),
		previewHub: hub.New("preview"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "RepCam Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/exercises", s.handleListExercises)
	api.Post("/exercise", s.handleSelectExercise)
	api.Post("/calibration/start", s.handleStartCalibration)
	api.Post("/calibration/cancel", s.handleCancelCalibration)
	api.Delete("/calibration", s.handleClearCalibration)
	api.Post("/session/reset", s.handleResetSession)
	api.Get("/logs", s.handleGetLogs)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))

	s.app = app
	return s
}

// Start runs the hubs and listens. Blocks until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	log.Info("dashboard listening", "url", "http://localhost:"+s.port)

	go s.statusHub.Run(ctx)
	go s.eventHub.Run(ctx)
	go s.previewHub.Run(ctx)

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			log.Error("web server error", "error", err)
		}
	}()
}

// Listener returns the engine event listener feeding the dashboard.
// Register it on the engine before Run.
func (s *Server) Listener() engine.Listener {
	return func(ev engine.Event) {
		switch e := ev.(type) {
		case engine.Speak:
			s.AddLog("speech", e.Text)
			s.eventHub.BroadcastJSON(eventEnvelope{Type: "speak", Data: e})
		case engine.CapturePhoto:
			s.AddLog("photo", string(e.Position))
			s.eventHub.BroadcastJSON(eventEnvelope{Type: "photo", Data: e})
		case engine.RepCompleted:
			s.AddLog("rep", "rep completed")
			s.eventHub.BroadcastJSON(eventEnvelope{Type: "rep", Data: e})
		case engine.CalibrationChanged:
			s.eventHub.BroadcastJSON(eventEnvelope{Type: "calibration", Data: e})
		case engine.ExerciseChanged:
			s.eventHub.BroadcastJSON(eventEnvelope{Type: "exercise", Data: e})
		}
		// Every event can move the status; push a fresh copy.
		s.statusHub.BroadcastJSON(s.engine.Status())
	}
}

// AddLog records a log entry for the dashboard log panel.
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > 500 {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()
}

// SendPreviewFrame broadcasts a JPEG preview frame to all clients.
func (s *Server) SendPreviewFrame(jpeg []byte) {
	s.previewHub.BroadcastBinary(jpeg)
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
