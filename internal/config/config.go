// Package config provides configuration helpers for go-repcam commands.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Defaults for process-level settings.
const (
	DefaultWebPort     = "8090"
	DefaultModelPath   = "models/movenet_singlepose_lightning.onnx"
	DefaultCameraIndex = 0
)

// DataDir returns the directory for persistent data (calibration, photos).
// Uses REPCAM_DATA_DIR if set, otherwise ~/.repcam.
func DataDir() string {
	if dir := os.Getenv("REPCAM_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".repcam"
	}
	return filepath.Join(home, ".repcam")
}

// WebPort returns the dashboard port from REPCAM_PORT or the default.
func WebPort() string {
	if port := os.Getenv("REPCAM_PORT"); port != "" {
		return port
	}
	return DefaultWebPort
}

// ModelPath returns the pose model path from REPCAM_MODEL or the default.
func ModelPath() string {
	if path := os.Getenv("REPCAM_MODEL"); path != "" {
		return path
	}
	return DefaultModelPath
}

// CameraIndex returns the capture device index from REPCAM_CAMERA.
// Falls back to the default if not set or not a number.
func CameraIndex() int {
	if idx := os.Getenv("REPCAM_CAMERA"); idx != "" {
		if n, err := strconv.Atoi(idx); err == nil && n >= 0 {
			return n
		}
	}
	return DefaultCameraIndex
}

// OracleURL returns the remote pose-oracle address from REPCAM_ORACLE.
// Empty means use the in-process estimator.
func OracleURL() string {
	return os.Getenv("REPCAM_ORACLE")
}
