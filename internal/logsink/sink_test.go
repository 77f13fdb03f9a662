package logsink

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/signtutor/internal/model"
)

type recordingPoster struct {
	mu      sync.Mutex
	entries []model.PerformanceLog
	err     error
	block   chan struct{}
}

func (p *recordingPoster) LogPerformance(ctx context.Context, entry model.PerformanceLog) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry)
	return p.err
}

type recordingStore struct {
	mu   sync.Mutex
	recs []model.AttemptRecord
}

func (s *recordingStore) InsertAttempt(_ context.Context, rec model.AttemptRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return int64(len(s.recs)), nil
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestRecordPostsAndMirrors(t *testing.T) {
	poster := &recordingPoster{}
	st := &recordingStore{}
	sink := New(poster, WithStore(st, 7))

	entry := model.PerformanceLog{StudentID: "s1", TargetSign: "hello", PredictedSign: "hello", Confidence: 0.9, IsCorrect: true, Timestamp: time.Unix(5, 0)}
	sink.Record(entry)
	sink.Wait()

	if len(poster.entries) != 1 || poster.entries[0] != entry {
		t.Fatalf("unexpected posted entries: %+v", poster.entries)
	}
	if len(st.recs) != 1 || st.recs[0].SessionID != 7 || !st.recs[0].IsCorrect {
		t.Fatalf("unexpected stored attempts: %+v", st.recs)
	}
}

func TestRecordFailureIsOnlyLogged(t *testing.T) {
	buf := captureLog(t)
	poster := &recordingPoster{err: errors.New("service down")}
	sink := New(poster)

	sink.Record(model.PerformanceLog{StudentID: "s1"})
	sink.Wait()

	if !strings.Contains(buf.String(), "service down") {
		t.Fatalf("expected failure in log, got %q", buf.String())
	}
}

func TestRecordDoesNotBlock(t *testing.T) {
	captureLog(t)
	poster := &recordingPoster{block: make(chan struct{})}
	sink := New(poster, WithTimeout(time.Second))

	done := make(chan struct{})
	go func() {
		sink.Record(model.PerformanceLog{StudentID: "s1"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("record blocked on a slow poster")
	}
	close(poster.block)
	sink.Wait()
}

func TestRecordTimesOut(t *testing.T) {
	buf := captureLog(t)
	poster := &recordingPoster{block: make(chan struct{})}
	sink := New(poster, WithTimeout(20*time.Millisecond))

	sink.Record(model.PerformanceLog{StudentID: "s1"})
	sink.Wait()
	if !strings.Contains(buf.String(), "deadline exceeded") {
		t.Fatalf("expected timeout to be logged, got %q", buf.String())
	}
}

func TestNilSink(t *testing.T) {
	var sink *Sink
	sink.Record(model.PerformanceLog{})
	sink.Wait()
}

func TestAnonymousIDOnlyReachesRemote(t *testing.T) {
	poster := &recordingPoster{}
	st := &recordingStore{}
	sink := New(poster, WithStore(st, 1), WithAnonymousID("anon-42"))

	sink.Record(model.PerformanceLog{StudentID: "s1", TargetSign: "nice"})
	sink.Wait()

	if len(poster.entries) != 1 || poster.entries[0].StudentID != "anon-42" {
		t.Fatalf("expected pseudonym in remote post, got %+v", poster.entries)
	}
	if len(st.recs) != 1 || st.recs[0].StudentID != "s1" {
		t.Fatalf("expected real id in local store, got %+v", st.recs)
	}
}
