// Package camera manages the lifecycle of a live camera stream and frame capture.
package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"sync"
	"time"

	"github.com/nfnt/resize"
)

// MetadataTimeout bounds how long Start waits for the stream to report its dimensions.
const MetadataTimeout = 5 * time.Second

// JPEGQuality is the encoder quality used for captured frames.
const JPEGQuality = 95

// Constraints describe the ideal stream resolution. Devices may deliver other sizes.
type Constraints struct {
	Width  int
	Height int
}

// Preferred is the ideal capture resolution.
var Preferred = Constraints{Width: 1280, Height: 720}

// Device acquires video-only streams.
type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Stream is an acquired camera stream.
type Stream interface {
	// Ready is closed once the stream knows its frame dimensions.
	Ready() <-chan struct{}
	// Frame returns the current frame. Bounds may be empty while warming up.
	Frame() (image.Image, error)
	Close() error
}

// failer is implemented by streams whose warm-up can fail before Ready.
type failer interface {
	Failed() <-chan struct{}
	Err() error
}

// Surface displays frames. It holds a non-owning reference to the stream.
type Surface interface {
	Bind(src FrameSource)
	Unbind()
}

// FrameSource is the read-only view of a stream given to surfaces.
type FrameSource interface {
	Frame() (image.Image, error)
}

// Manager owns at most one active stream.
type Manager struct {
	device      Device
	constraints Constraints
	timeout     time.Duration

	lifecycle sync.Mutex
	mu        sync.Mutex
	stream    Stream
	streaming bool
	surface   Surface
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout overrides the metadata timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithConstraints overrides the preferred resolution.
func WithConstraints(c Constraints) Option {
	return func(m *Manager) { m.constraints = c }
}

// WithSurface binds a display surface while streaming.
func WithSurface(s Surface) Option {
	return func(m *Manager) { m.surface = s }
}

// NewManager creates a manager for device. A nil device reports NotSupported on Start.
func NewManager(device Device, opts ...Option) *Manager {
	m := &Manager{device: device, constraints: Preferred, timeout: MetadataTimeout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start acquires a stream and waits for its metadata. An active stream is
// released first.
func (m *Manager) Start(ctx context.Context) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if m.device == nil {
		return ErrNotSupported
	}
	m.release()

	stream, err := m.device.Open(ctx, m.constraints)
	if err != nil {
		return classify(err)
	}

	var failed <-chan struct{}
	fs, canFail := stream.(failer)
	if canFail {
		failed = fs.Failed()
	}

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()
	select {
	case <-stream.Ready():
	case <-failed:
		closeStream(stream)
		return classify(fs.Err())
	case <-timer.C:
		closeStream(stream)
		return ErrTimeout
	case <-ctx.Done():
		closeStream(stream)
		return &Error{Kind: DeviceUnavailable, Err: ctx.Err()}
	}

	m.mu.Lock()
	m.stream = stream
	m.streaming = true
	surface := m.surface
	m.mu.Unlock()
	if surface != nil {
		surface.Bind(stream)
	}
	return nil
}

// Stop releases the stream and clears the display binding. Safe to call repeatedly.
func (m *Manager) Stop() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	m.release()
}

func (m *Manager) release() {
	m.mu.Lock()
	stream := m.stream
	surface := m.surface
	m.stream = nil
	m.streaming = false
	m.mu.Unlock()
	if surface != nil {
		surface.Unbind()
	}
	if stream != nil {
		closeStream(stream)
	}
}

// Streaming reports whether a stream is live.
func (m *Manager) Streaming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streaming
}

// CaptureFrame returns the current frame mirrored and JPEG-encoded. It
// returns nil without error when no stream is live or the frame has no area.
func (m *Manager) CaptureFrame() ([]byte, error) {
	m.mu.Lock()
	stream := m.stream
	streaming := m.streaming
	m.mu.Unlock()
	if !streaming || stream == nil {
		return nil, nil
	}
	frame, err := stream.Frame()
	if err != nil {
		var camErr *Error
		if errors.As(err, &camErr) {
			return nil, camErr
		}
		return nil, &Error{Kind: NoSignal, Err: err}
	}
	if frame == nil || frame.Bounds().Empty() {
		return nil, nil
	}
	return EncodeFrame(frame, m.constraints)
}

// EncodeFrame mirrors img horizontally, scales it down to fit c, and encodes it as JPEG.
func EncodeFrame(img image.Image, c Constraints) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, nil
	}
	var out image.Image = Mirror(img)
	b := out.Bounds()
	if c.Width > 0 && c.Height > 0 && (b.Dx() > c.Width || b.Dy() > c.Height) {
		out = resize.Thumbnail(uint(c.Width), uint(c.Height), out, resize.Lanczos3)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// Mirror flips img horizontally (selfie view).
func Mirror(img image.Image) *image.RGBA {
	b := img.Bounds()
	src := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)
	dst := image.NewRGBA(src.Bounds())
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < w; x++ {
			dst.SetRGBA(w-1-x, y, src.RGBAAt(x, y))
		}
	}
	return dst
}

func closeStream(s Stream) {
	if err := s.Close(); err != nil {
		// Best-effort release of hardware resources.
		_ = err
	}
}
