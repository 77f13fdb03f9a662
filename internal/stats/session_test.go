package stats

import (
	"math"
	"testing"
	"time"

	"github.com/verte-zerg/signtutor/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApplyFirstCorrectAttempt(t *testing.T) {
	now := time.Unix(100, 0)
	got := Apply(model.SessionStats{}, Outcome{Label: "hello", Confidence: 0.95, Correct: true, At: now}, 0)
	if got.TotalAttempts != 1 || got.CorrectPredictions != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if !approx(got.AverageConfidence, 0.95) {
		t.Fatalf("expected avg 0.95, got %f", got.AverageConfidence)
	}
	if len(got.Predictions) != 1 || got.Predictions[0].Label != "hello" || !got.Predictions[0].Timestamp.Equal(now) {
		t.Fatalf("unexpected predictions: %+v", got.Predictions)
	}
}

func TestApplyIncorrectAttempt(t *testing.T) {
	got := Apply(model.SessionStats{}, Outcome{Label: "goodbye", Confidence: 0.6}, 0)
	if got.TotalAttempts != 1 || got.CorrectPredictions != 0 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if !approx(got.AverageConfidence, 0.6) {
		t.Fatalf("expected avg 0.6, got %f", got.AverageConfidence)
	}
}

func TestApplyIncrementalMean(t *testing.T) {
	s := Apply(model.SessionStats{}, Outcome{Label: "hello", Confidence: 0.8, Correct: true}, 0)
	s = Apply(s, Outcome{Label: "help", Confidence: 0.6}, 0)
	if !approx(s.AverageConfidence, 0.7) {
		t.Fatalf("expected avg 0.7, got %f", s.AverageConfidence)
	}
	if s.CorrectPredictions > s.TotalAttempts {
		t.Fatalf("correct exceeds total: %+v", s)
	}
}

func TestApplyDoesNotMutatePrevious(t *testing.T) {
	prev := Apply(model.SessionStats{}, Outcome{Label: "hello", Confidence: 0.9, Correct: true}, 0)
	_ = Apply(prev, Outcome{Label: "nice", Confidence: 0.5}, 0)
	if prev.TotalAttempts != 1 || len(prev.Predictions) != 1 {
		t.Fatalf("previous stats changed: %+v", prev)
	}
}

func TestApplyCapKeepsNewest(t *testing.T) {
	var s model.SessionStats
	for _, label := range []model.Sign{"good", "hello", "help"} {
		s = Apply(s, Outcome{Label: label, Confidence: 0.5}, 2)
	}
	if s.TotalAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", s.TotalAttempts)
	}
	if len(s.Predictions) != 2 || s.Predictions[0].Label != "hello" || s.Predictions[1].Label != "help" {
		t.Fatalf("unexpected capped predictions: %+v", s.Predictions)
	}
}

func TestAccuracyAndRecent(t *testing.T) {
	if Accuracy(model.SessionStats{}) != 0 {
		t.Fatalf("expected zero accuracy without attempts")
	}
	var s model.SessionStats
	for i, label := range []model.Sign{"good", "hello", "help", "meet"} {
		s = Apply(s, Outcome{Label: label, Confidence: 0.5, Correct: i%2 == 0}, 0)
	}
	if !approx(Accuracy(s), 0.5) {
		t.Fatalf("expected 0.5 accuracy, got %f", Accuracy(s))
	}
	recent := Recent(s, 3)
	if len(recent) != 3 || recent[0].Label != "hello" || recent[2].Label != "meet" {
		t.Fatalf("unexpected recent: %+v", recent)
	}
	if got := Recent(s, 10); len(got) != 4 {
		t.Fatalf("expected all 4, got %d", len(got))
	}
}

func TestGestureHistoryBounded(t *testing.T) {
	h := NewGestureHistory(0)
	base := time.Unix(0, 0)
	for i := 0; i < 12; i++ {
		h.Add("hello", base.Add(time.Duration(i)*time.Second))
	}
	items := h.Items()
	if len(items) != HistoryCap {
		t.Fatalf("expected %d items, got %d", HistoryCap, len(items))
	}
	if !items[0].CapturedAt.Equal(base.Add(11 * time.Second)) {
		t.Fatalf("expected newest first, got %v", items[0].CapturedAt)
	}
	if !items[len(items)-1].CapturedAt.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("expected oldest evicted, got %v", items[len(items)-1].CapturedAt)
	}
	if items[0].ID == items[1].ID || items[0].DisplayText != "Hello" {
		t.Fatalf("unexpected gesture fields: %+v", items[0])
	}
}

func TestProgressSummary(t *testing.T) {
	cases := map[float64]string{
		85: "Excellent progress!",
		65: "Good progress, keep practicing!",
		45: "You're learning, don't give up!",
		10: "Keep practicing!",
	}
	for pct, want := range cases {
		if got := ProgressSummary(pct, 1); got != want {
			t.Fatalf("%v: expected %q, got %q", pct, want, got)
		}
	}
	if got := ProgressSummary(0, 0); got != "No attempts yet" {
		t.Fatalf("unexpected empty summary %q", got)
	}
}
