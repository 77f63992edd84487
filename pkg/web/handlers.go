package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/repcam/go-repcam/pkg/engine"
	"github.com/repcam/go-repcam/pkg/hub"
)

// handleStatus returns the engine's current state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.engine.Status())
}

// handleListExercises returns the supported exercise kinds.
func (s *Server) handleListExercises(c *fiber.Ctx) error {
	return c.JSON(engine.Kinds())
}

// SelectExerciseRequest is the request body for switching exercises.
type SelectExerciseRequest struct {
	Kind engine.Kind `json:"kind"`
}

// handleSelectExercise switches the exercise kind, resetting the session.
func (s *Server) handleSelectExercise(c *fiber.Ctx) error {
	var req SelectExerciseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := s.engine.SelectExercise(req.Kind); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	s.AddLog("info", "exercise: "+string(req.Kind))
	return c.JSON(fiber.Map{"exercise": req.Kind})
}

// handleStartCalibration begins the calibration dialogue.
func (s *Server) handleStartCalibration(c *fiber.Ctx) error {
	s.engine.StartCalibration()
	s.AddLog("info", "calibration started")
	return c.JSON(fiber.Map{"ok": true})
}

// handleCancelCalibration aborts the calibration dialogue.
func (s *Server) handleCancelCalibration(c *fiber.Ctx) error {
	s.engine.CancelCalibration()
	s.AddLog("info", "calibration cancelled")
	return c.JSON(fiber.Map{"ok": true})
}

// handleClearCalibration deletes the stored calibration and resets the
// current session.
func (s *Server) handleClearCalibration(c *fiber.Ctx) error {
	s.engine.ClearCalibration()
	s.AddLog("info", "calibration cleared")
	return c.JSON(fiber.Map{"ok": true})
}

// handleResetSession zeroes the rep counter.
func (s *Server) handleResetSession(c *fiber.Ctx) error {
	s.engine.ResetSession()
	s.AddLog("info", "session reset")
	return c.JSON(fiber.Map{"ok": true})
}

// handleGetLogs returns recent log entries.
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleStatusWS streams status snapshots.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	client := hub.NewClient(s.statusHub, c)

	// Send current status immediately on connect
	c.WriteJSON(s.engine.Status())

	client.Run()
}

// handleEventsWS streams engine events.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.eventHub, c)
	client.Run()
}

// handlePreviewWS streams JPEG preview frames.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	client := hub.NewClient(s.previewHub, c)
	client.Run()
}
