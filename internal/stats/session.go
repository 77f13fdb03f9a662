// Package stats contains practice statistics calculations and reporting.
package stats

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
)

// HistoryCap bounds the captured gesture history.
const HistoryCap = 10

// Outcome is one resolved prediction against a target sign.
type Outcome struct {
	Label      model.Sign
	Confidence float64
	Correct    bool
	At         time.Time
}

// Apply folds an outcome into prev and returns the new stats. prev is not
// modified. When limit > 0 only the newest limit predictions are kept.
func Apply(prev model.SessionStats, o Outcome, limit int) model.SessionStats {
	next := prev
	next.TotalAttempts = prev.TotalAttempts + 1
	if o.Correct {
		next.CorrectPredictions = prev.CorrectPredictions + 1
	}
	n := float64(next.TotalAttempts)
	next.AverageConfidence = (prev.AverageConfidence*(n-1) + o.Confidence) / n

	preds := make([]model.PredictionRecord, 0, len(prev.Predictions)+1)
	preds = append(preds, prev.Predictions...)
	preds = append(preds, model.PredictionRecord{Label: o.Label, Confidence: o.Confidence, Timestamp: o.At})
	if limit > 0 && len(preds) > limit {
		preds = preds[len(preds)-limit:]
	}
	next.Predictions = preds
	return next
}

// Accuracy returns correct/total as a fraction, 0 with no attempts.
func Accuracy(s model.SessionStats) float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.CorrectPredictions) / float64(s.TotalAttempts)
}

// Recent returns up to n of the latest predictions, oldest first.
func Recent(s model.SessionStats, n int) []model.PredictionRecord {
	if n <= 0 || len(s.Predictions) == 0 {
		return nil
	}
	if n > len(s.Predictions) {
		n = len(s.Predictions)
	}
	out := make([]model.PredictionRecord, n)
	copy(out, s.Predictions[len(s.Predictions)-n:])
	return out
}

// ProgressSummary describes an accuracy percentage in words.
func ProgressSummary(accuracyPct float64, attempts int) string {
	switch {
	case attempts == 0:
		return "No attempts yet"
	case accuracyPct >= 80:
		return "Excellent progress!"
	case accuracyPct >= 60:
		return "Good progress, keep practicing!"
	case accuracyPct >= 40:
		return "You're learning, don't give up!"
	default:
		return "Keep practicing!"
	}
}

// GestureHistory is a bounded most-recent-first list of captured gestures.
type GestureHistory struct {
	limit int
	items []model.CapturedGesture
}

// NewGestureHistory returns a history holding at most limit gestures.
// A non-positive limit uses HistoryCap.
func NewGestureHistory(limit int) *GestureHistory {
	if limit <= 0 {
		limit = HistoryCap
	}
	return &GestureHistory{limit: limit}
}

// Add records a recognized gesture and evicts the oldest beyond the limit.
func (h *GestureHistory) Add(sign model.Sign, at time.Time) model.CapturedGesture {
	g := model.CapturedGesture{
		ID:          uuid.NewString(),
		Gesture:     sign,
		DisplayText: signs.DisplayText(sign),
		CapturedAt:  at,
	}
	items := make([]model.CapturedGesture, 0, h.limit)
	items = append(items, g)
	for _, old := range h.items {
		if len(items) == h.limit {
			break
		}
		items = append(items, old)
	}
	h.items = items
	return g
}

// Items returns a copy of the history, newest first.
func (h *GestureHistory) Items() []model.CapturedGesture {
	out := make([]model.CapturedGesture, len(h.items))
	copy(out, h.items)
	return out
}

// Latest returns the newest gesture.
func (h *GestureHistory) Latest() (model.CapturedGesture, bool) {
	if len(h.items) == 0 {
		return model.CapturedGesture{}, false
	}
	return h.items[0], true
}

// Len reports the number of stored gestures.
func (h *GestureHistory) Len() int {
	return len(h.items)
}
