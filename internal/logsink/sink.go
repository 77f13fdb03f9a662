// Package logsink records practice attempts without blocking the practice loop.
package logsink

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/verte-zerg/signtutor/internal/model"
)

// DefaultTimeout bounds one remote log call.
const DefaultTimeout = 10 * time.Second

// Poster sends a performance log to the analytics service.
type Poster interface {
	LogPerformance(ctx context.Context, entry model.PerformanceLog) error
}

// AttemptWriter persists attempts locally.
type AttemptWriter interface {
	InsertAttempt(ctx context.Context, rec model.AttemptRecord) (int64, error)
}

// Sink forwards attempts to the remote service and mirrors them into the
// local store. Failures are logged and never reach the caller.
type Sink struct {
	poster    Poster
	store     AttemptWriter
	sessionID int64
	timeout   time.Duration
	anonID    string

	wg sync.WaitGroup
}

// Option configures a Sink.
type Option func(*Sink)

// WithStore mirrors attempts into st under sessionID.
func WithStore(st AttemptWriter, sessionID int64) Option {
	return func(s *Sink) {
		s.store = st
		s.sessionID = sessionID
	}
}

// WithAnonymousID replaces the student id in remote posts with id.
// The local store keeps the real id.
func WithAnonymousID(id string) Option {
	return func(s *Sink) { s.anonID = id }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New returns a sink posting to poster. A nil poster keeps attempts local.
func New(poster Poster, opts ...Option) *Sink {
	s := &Sink{poster: poster, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record hands entry off and returns immediately.
func (s *Sink) Record(entry model.PerformanceLog) {
	if s == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.write(entry)
	}()
}

func (s *Sink) write(entry model.PerformanceLog) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if s.store != nil {
		rec := model.AttemptRecord{
			SessionID:     s.sessionID,
			StudentID:     entry.StudentID,
			TargetSign:    entry.TargetSign,
			PredictedSign: entry.PredictedSign,
			Confidence:    entry.Confidence,
			IsCorrect:     entry.IsCorrect,
			CreatedAt:     entry.Timestamp,
		}
		if _, err := s.store.InsertAttempt(ctx, rec); err != nil {
			log.Printf("logsink: failed to store attempt: %v", err)
		}
	}
	if s.poster != nil {
		if s.anonID != "" {
			entry.StudentID = s.anonID
		}
		if err := s.poster.LogPerformance(ctx, entry); err != nil {
			log.Printf("logsink: failed to log performance: %v", err)
		}
	}
}

// Wait blocks until every recorded entry has been handled.
func (s *Sink) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}
