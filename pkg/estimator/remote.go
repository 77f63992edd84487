package estimator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/repcam/go-repcam/internal/httpc"
	"github.com/repcam/go-repcam/pkg/pose"
)

// remoteResponse is the wire format from the estimation service.
type remoteResponse struct {
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
	Is3D       bool    `json:"is_3d"`
	Joints     map[string]struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Score float64 `json:"score"`
	} `json:"joints"`
	Joints3D map[string]struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"joints_3d,omitempty"`
	BodyHeight     float64 `json:"body_height,omitempty"`
	CameraDistance float64 `json:"camera_distance,omitempty"`
}

// RemoteEstimator talks to an out-of-process pose-estimation service
// over a websocket: it sends one binary JPEG frame per request and
// reads one JSON result back. Requests are serialized on the single
// connection.
type RemoteEstimator struct {
	baseURL string
	floor   float64

	mu     sync.Mutex // Protects the connection
	ws     *websocket.Conn
	closed bool
}

// NewRemote connects to the estimation service at host:port. A health
// probe runs first so a missing service fails fast at startup.
func NewRemote(addr string, cfg Config) (*RemoteEstimator, error) {
	e := &RemoteEstimator{
		baseURL: addr,
		floor:   cfg.ConfidenceFloor,
	}

	resp, err := httpc.Get(fmt.Sprintf("http://%s/healthz", addr))
	if err != nil {
		return nil, fmt.Errorf("estimation service unreachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("estimation service unhealthy: status %d", resp.StatusCode)
	}

	wsURL := url.URL{Scheme: "ws", Host: addr, Path: "/ws/pose"}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, _, err := dialer.Dial(wsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("estimation service connect failed: %w", err)
	}
	e.ws = ws
	return e, nil
}

// Estimate sends one frame and waits for its result.
func (e *RemoteEstimator) Estimate(ctx context.Context, jpeg []byte) (*pose.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	if e.ws == nil {
		return nil, ErrNotConnected
	}

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	e.ws.SetWriteDeadline(deadline)
	if err := e.ws.WriteMessage(websocket.BinaryMessage, jpeg); err != nil {
		return nil, fmt.Errorf("send frame: %w", err)
	}

	e.ws.SetReadDeadline(deadline)
	_, msg, err := e.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}

	var r remoteResponse
	if err := json.Unmarshal(msg, &r); err != nil {
		return nil, fmt.Errorf("parse result: %w", err)
	}
	if !r.Detected {
		return nil, nil
	}

	snap := pose.Snapshot{
		Joints:         make(map[pose.JointName]pose.Point),
		Confidence:     r.Confidence,
		Is3D:           r.Is3D,
		BodyHeight:     r.BodyHeight,
		CameraDistance: r.CameraDistance,
	}
	for name, j := range r.Joints {
		if j.Score < e.floor {
			continue
		}
		snap.Joints[pose.JointName(name)] = pose.Point{X: j.X, Y: j.Y}
	}
	if r.Is3D && len(r.Joints3D) > 0 {
		snap.Joints3D = make(map[pose.JointName]pose.Point3D, len(r.Joints3D))
		for name, j := range r.Joints3D {
			snap.Joints3D[pose.JointName(name)] = pose.Point3D{X: j.X, Y: j.Y, Z: j.Z}
		}
	}
	return &snap, nil
}

// Close shuts down the websocket connection.
func (e *RemoteEstimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.ws != nil {
		e.ws.WriteMessage(websocket.CloseMessage, []byte{})
		return e.ws.Close()
	}
	return nil
}

// Verify RemoteEstimator implements Estimator at compile time.
var _ Estimator = (*RemoteEstimator)(nil)
