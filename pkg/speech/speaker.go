// Package speech provides the spoken-feedback sink for engine events.
// Implementations must be cheap to call from the event path; anything
// slow runs on its own goroutine.
package speech

import (
	"context"
	"errors"
	"os/exec"
	"sync"

	"github.com/repcam/go-repcam/internal/log"
)

// ErrNoSpeechBackend is returned when no system TTS is available.
var ErrNoSpeechBackend = errors.New("speech: no system TTS available")

// Speaker converts a text line to audible speech.
type Speaker interface {
	// Speak voices one line. Lines are spoken in submission order;
	// a line submitted while another is playing waits its turn.
	Speak(ctx context.Context, text string) error

	// Close releases resources.
	Close() error
}

// SaySpeaker uses the system `say` command (macOS).
type SaySpeaker struct {
	mu sync.Mutex // Serializes playback
}

// NewSay creates a Speaker backed by the system `say` command.
func NewSay() (*SaySpeaker, error) {
	if _, err := exec.LookPath("say"); err != nil {
		return nil, ErrNoSpeechBackend
	}
	return &SaySpeaker{}, nil
}

// Speak blocks until the line has been voiced.
func (s *SaySpeaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return exec.CommandContext(ctx, "say", text).Run()
}

// Close is a no-op.
func (s *SaySpeaker) Close() error { return nil }

// LogSpeaker writes lines to the log instead of speaking them.
// Used when no TTS backend is available.
type LogSpeaker struct{}

// NewLog creates a log-only Speaker.
func NewLog() *LogSpeaker { return &LogSpeaker{} }

// Speak logs the line.
func (s *LogSpeaker) Speak(ctx context.Context, text string) error {
	log.Info("speak", "text", text)
	return nil
}

// Close is a no-op.
func (s *LogSpeaker) Close() error { return nil }

// Verify implementations at compile time.
var (
	_ Speaker = (*SaySpeaker)(nil)
	_ Speaker = (*LogSpeaker)(nil)
)
