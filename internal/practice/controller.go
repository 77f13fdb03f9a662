// Package practice drives the record, predict and feedback cycle of a practice session.
package practice

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
	"github.com/verte-zerg/signtutor/internal/speech"
	"github.com/verte-zerg/signtutor/internal/stats"
)

// State is the controller phase.
type State int

// Controller states. Idle is both initial and resting.
const (
	Idle State = iota
	Recording
	Processing
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Processing:
		return "processing"
	default:
		return "idle"
	}
}

const outboxSize = 32

// Camera captures encoded frames. A nil frame means the camera is not ready.
type Camera interface {
	CaptureFrame() ([]byte, error)
}

// Predictor recognizes the sign in one frame.
type Predictor interface {
	Predict(ctx context.Context, frame []byte) (model.PredictionResult, error)
}

// Recorder receives performance logs. It must not block.
type Recorder interface {
	Record(entry model.PerformanceLog)
}

// Attempt identifies one recording. Results are applied only while the
// attempt is still the current one.
type Attempt struct {
	ID     uint64
	Target model.Sign
}

// Outcome is the result of capturing and predicting one attempt.
type Outcome struct {
	Result model.PredictionResult
	Err    error
}

// Resolution describes what a resolved attempt changed.
type Resolution struct {
	Attempt  Attempt
	Correct  bool
	Feedback Feedback
	Gesture  *model.CapturedGesture
}

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	State    State
	Target   model.Sign
	Feedback Feedback
	Last     *model.PredictionResult
	Stats    model.SessionStats
	History  []model.CapturedGesture
}

// Controller is the practice session state machine. It is safe for
// concurrent use; blocking I/O happens only in Process.
type Controller struct {
	camera    Camera
	predictor Predictor
	recorder  Recorder
	studentID string
	predCap   int
	now       func() time.Time

	mu       sync.Mutex
	state    State
	target   model.Sign
	seq      uint64
	pending  uint64
	feedback Feedback
	last     *model.PredictionResult
	stats    model.SessionStats
	history  *stats.GestureHistory
	outbox   chan speech.Utterance
	closed   bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder sends every resolved attempt to r.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns an idle controller targeting cfg.StartSign, or the first sign.
func New(cfg model.Config, cam Camera, predictor Predictor, opts ...Option) *Controller {
	target := cfg.StartSign
	if signs.Index(target) < 0 {
		target = signs.All[0]
	}
	c := &Controller{
		camera:    cam,
		predictor: predictor,
		studentID: cfg.StudentID,
		predCap:   cfg.PredictionsCap,
		now:       time.Now,
		target:    target,
		history:   stats.NewGestureHistory(cfg.HistoryCap),
		outbox:    make(chan speech.Utterance, outboxSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Utterances is the ordered queue of spoken feedback.
func (c *Controller) Utterances() <-chan speech.Utterance {
	return c.outbox
}

// Mount queues the welcome and the first target announcement.
func (c *Controller) Mount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.say(MsgWelcome)
	c.say(Announcement(c.target))
}

// StartRecording moves Idle to Recording. It reports false in any other state.
func (c *Controller) StartRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle || c.closed {
		return false
	}
	c.state = Recording
	c.feedback = Feedback{Text: MsgRecording, Tone: ToneWorking}
	return true
}

// StopRecording moves Recording to Processing and returns the attempt to process.
func (c *Controller) StopRecording() (Attempt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Recording {
		return Attempt{}, false
	}
	c.state = Processing
	c.feedback = Feedback{Text: MsgProcessing, Tone: ToneWorking}
	c.seq++
	c.pending = c.seq
	return Attempt{ID: c.seq, Target: c.target}, true
}

// Process captures a frame and then predicts it. It does not touch controller state.
func (c *Controller) Process(ctx context.Context, a Attempt) Outcome {
	frame, err := c.camera.CaptureFrame()
	if err != nil {
		return Outcome{Err: fmt.Errorf("%w: %w", ErrCapture, err)}
	}
	if frame == nil {
		return Outcome{Err: ErrCameraNotReady}
	}
	res, err := c.predictor.Predict(ctx, frame)
	if err != nil {
		return Outcome{Result: res, Err: err}
	}
	return Outcome{Result: res}
}

// Resolve applies the outcome of a and returns to Idle. It reports false and
// changes nothing when a is stale: abandoned, superseded, or aimed at a
// target that is no longer current.
func (c *Controller) Resolve(a Attempt, o Outcome) (Resolution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Processing || a.ID != c.pending || a.Target != c.target {
		return Resolution{}, false
	}
	c.state = Idle
	c.pending = 0
	res := Resolution{Attempt: a}

	if o.Err != nil {
		fb, spoken := failureFeedback(o.Err)
		log.Printf("practice: attempt %d failed: %v", a.ID, o.Err)
		c.feedback = fb
		res.Feedback = fb
		if spoken {
			c.say(fb.Text)
		}
		return res, true
	}

	correct, fb := Judge(a.Target, o.Result)
	now := c.now()
	result := o.Result
	c.last = &result
	c.feedback = fb
	c.stats = stats.Apply(c.stats, stats.Outcome{
		Label:      result.Label,
		Confidence: result.Confidence,
		Correct:    correct,
		At:         now,
	}, c.predCap)
	gesture := c.history.Add(result.Label, now)
	c.say(fb.Text)
	c.say(Confirmation(gesture.DisplayText))

	if c.recorder != nil {
		c.recorder.Record(model.PerformanceLog{
			StudentID:     c.studentID,
			TargetSign:    a.Target,
			PredictedSign: result.Label,
			Confidence:    result.Confidence,
			IsCorrect:     correct,
			Timestamp:     now,
		})
	}
	res.Correct = correct
	res.Feedback = fb
	res.Gesture = &gesture
	return res, true
}

// Abandon drops the attempt being processed and returns to Idle.
func (c *Controller) Abandon() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Processing {
		return false
	}
	c.state = Idle
	c.pending = 0
	c.feedback = Feedback{}
	return true
}

// NextSign advances the target with wrap-around. Only allowed while Idle.
func (c *Controller) NextSign() (model.Sign, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		return c.target, false
	}
	c.target = signs.Next(c.target)
	c.last = nil
	c.feedback = Feedback{}
	c.say(Announcement(c.target))
	return c.target, true
}

// ReplayLast speaks the most recent captured gesture again.
func (c *Controller) ReplayLast() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.history.Latest()
	if !ok {
		return false
	}
	c.say(g.DisplayText)
	return true
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:    c.state,
		Target:   c.target,
		Feedback: c.feedback,
		Stats:    c.stats,
		History:  c.history.Items(),
	}
	snap.Stats.Predictions = append([]model.PredictionRecord(nil), c.stats.Predictions...)
	if c.last != nil {
		last := *c.last
		snap.Last = &last
	}
	return snap
}

// State returns the current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close discards any pending attempt and closes the utterance queue.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.state = Idle
	c.pending = 0
	close(c.outbox)
}

// say queues text for speech. Callers hold mu.
func (c *Controller) say(text string) {
	if c.closed {
		return
	}
	select {
	case c.outbox <- speech.Utterance{Text: text}:
	default:
		log.Printf("practice: speech queue full, dropped %q", text)
	}
}
