// Package photo saves rep photos requested by the engine: the frame
// that triggered a sitting or standing transition, filed per session.
package photo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/repcam/go-repcam/internal/log"
)

// Saver writes rep photos under a base directory, one subdirectory per
// session.
type Saver struct {
	dir string
}

// NewSaver creates a saver rooted at dir, creating it if needed.
func NewSaver(dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("photo: create directory: %w", err)
	}
	return &Saver{dir: dir}, nil
}

// Save writes one JPEG under <dir>/<sessionID>/. The filename carries
// the rep number and position tag plus a short unique suffix, e.g.
// rep003_standing_1a2b3c4d.jpg.
func (s *Saver) Save(sessionID string, rep int, position string, jpeg []byte) (string, error) {
	if len(jpeg) == 0 {
		return "", fmt.Errorf("photo: empty frame")
	}

	sessionDir := filepath.Join(s.dir, sessionID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return "", fmt.Errorf("photo: create session directory: %w", err)
	}

	name := fmt.Sprintf("rep%03d_%s_%s.jpg", rep, position, uuid.NewString()[:8])
	path := filepath.Join(sessionDir, name)
	if err := os.WriteFile(path, jpeg, 0644); err != nil {
		return "", fmt.Errorf("photo: write file: %w", err)
	}

	log.Debug("photo saved", "path", path)
	return path, nil
}

// Dir returns the base directory.
func (s *Saver) Dir() string {
	return s.dir
}
