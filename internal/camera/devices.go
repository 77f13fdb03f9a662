package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder.
	_ "image/png"  // PNG decoder.
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DirDevice replays still images from a directory as a virtual webcam.
type DirDevice struct {
	Dir string
}

// Open implements Device.
func (d DirDevice) Open(_ context.Context, _ Constraints) (Stream, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &Error{Kind: DeviceUnavailable, Err: err}
		}
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(d.Dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, &Error{Kind: NoSignal, Err: fmt.Errorf("no images in %s", d.Dir)}
	}
	sort.Strings(paths)
	s := &dirStream{paths: paths, ready: make(chan struct{})}
	if _, err := s.Frame(); err != nil {
		return nil, &Error{Kind: NoSignal, Err: err}
	}
	close(s.ready)
	return s, nil
}

type dirStream struct {
	mu     sync.Mutex
	paths  []string
	next   int
	ready  chan struct{}
	closed bool
}

func (s *dirStream) Ready() <-chan struct{} { return s.ready }

func (s *dirStream) Frame() (image.Image, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("stream closed")
	}
	path := s.paths[s.next%len(s.paths)]
	s.next++
	s.mu.Unlock()
	return decodeFile(path)
}

func (s *dirStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only frame.
			_ = cerr
		}
	}()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// CommandDevice grabs frames by running a program that writes one JPEG or PNG
// image to stdout, e.g. "ffmpeg -f v4l2 -i /dev/video0 -frames:v 1 -f mjpeg -".
// The placeholders {width} and {height} are replaced with the ideal resolution.
type CommandDevice struct {
	CommandLine string
}

// Open implements Device. Readiness is signaled after the first frame is grabbed.
func (d CommandDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	fields := strings.Fields(d.CommandLine)
	if len(fields) == 0 {
		return nil, &Error{Kind: NotSupported, Err: fmt.Errorf("camera command is empty")}
	}
	for i, f := range fields {
		f = strings.ReplaceAll(f, "{width}", fmt.Sprint(c.Width))
		fields[i] = strings.ReplaceAll(f, "{height}", fmt.Sprint(c.Height))
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, &Error{Kind: NotSupported, Err: err}
	}
	streamCtx, cancel := context.WithCancel(context.Background())
	s := &commandStream{
		ctx:    streamCtx,
		cancel: cancel,
		argv:   fields,
		ready:  make(chan struct{}),
		failed: make(chan struct{}),
	}
	go s.warmUp()
	return s, nil
}

// PreviewRefresh is the minimum age of the cached frame before Latest grabs again.
const PreviewRefresh = time.Second

type commandStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	argv   []string
	ready  chan struct{}
	failed chan struct{}

	// grabMu serializes device access between captures and preview refreshes.
	grabMu sync.Mutex

	mu         sync.Mutex
	last       image.Image
	lastAt     time.Time
	refreshing bool
	err        error
}

func (s *commandStream) warmUp() {
	img, err := s.grab()
	if err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.failed)
		return
	}
	s.store(img)
	close(s.ready)
}

func (s *commandStream) grab() (image.Image, error) {
	s.grabMu.Lock()
	defer s.grabMu.Unlock()
	cmd := exec.CommandContext(s.ctx, s.argv[0], s.argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		return nil, &Error{
			Kind: commandErrorKind(detail),
			Err:  fmt.Errorf("%s failed: %w: %s", s.argv[0], err, detail),
		}
	}
	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, &Error{Kind: NoSignal, Err: fmt.Errorf("failed to decode frame: %w", err)}
	}
	return img, nil
}

// commandErrorKind maps the capture program's diagnostics onto an error kind.
func commandErrorKind(stderr string) ErrorKind {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "permission denied"), strings.Contains(lower, "not permitted"):
		return PermissionDenied
	case strings.Contains(lower, "no such file"), strings.Contains(lower, "no such device"),
		strings.Contains(lower, "device or resource busy"):
		return DeviceUnavailable
	default:
		return NoSignal
	}
}

func (s *commandStream) store(img image.Image) {
	s.mu.Lock()
	s.last = img
	s.lastAt = time.Now()
	s.mu.Unlock()
}

func (s *commandStream) Ready() <-chan struct{} { return s.ready }

// Failed is closed when warm-up could not grab a first frame.
func (s *commandStream) Failed() <-chan struct{} { return s.failed }

// Err returns the warm-up failure once Failed is closed.
func (s *commandStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Frame grabs a fresh frame. The cached frame is only served by Latest.
func (s *commandStream) Frame() (image.Image, error) {
	img, err := s.grab()
	if err != nil {
		return nil, err
	}
	s.store(img)
	return img, nil
}

// Latest returns the cached frame and refreshes it in the background once it
// is older than PreviewRefresh.
func (s *commandStream) Latest() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refreshing && time.Since(s.lastAt) >= PreviewRefresh && s.ctx.Err() == nil {
		s.refreshing = true
		go s.refresh()
	}
	return s.last
}

func (s *commandStream) refresh() {
	img, err := s.grab()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing = false
	if err != nil {
		// The next capture reports the failure.
		return
	}
	s.last = img
	s.lastAt = time.Now()
}

func (s *commandStream) Close() error {
	s.cancel()
	return nil
}
