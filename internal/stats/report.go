package stats

import (
	"context"
	"sort"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/store"
)

// Report contains precomputed data for dashboard rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	SignsAll         []model.SignStats
	SignsWindow      []model.SignStats
}

// BuildReport loads and prepares data for dashboard rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	allIDs := sessionIDs(sessions)
	windowIDs := allIDs
	if cfg.CurveWindow > 0 && len(sessions) > cfg.CurveWindow {
		windowIDs = sessionIDs(sessions[len(sessions)-cfg.CurveWindow:])
	}

	all, err := st.SignAggregates(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	window, err := st.SignAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		SignsAll:         all,
		SignsWindow:      window,
	}, nil
}

// Totals sums attempts, correct predictions and confidence over sessions.
func (r Report) Totals() (attempts, correct int, avgConfidence float64) {
	var confSum float64
	for _, s := range r.Sessions {
		attempts += s.Attempts
		correct += s.Correct
		confSum += s.ConfidenceSum
	}
	if attempts > 0 {
		avgConfidence = confSum / float64(attempts)
	}
	return attempts, correct, avgConfidence
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

// MostPracticed returns up to n signs ordered by attempt count.
func MostPracticed(aggs []model.SignStats, n int) []model.Sign {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := append([]model.SignStats(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalAttempts == sorted[j].TotalAttempts {
			return sorted[i].Sign < sorted[j].Sign
		}
		return sorted[i].TotalAttempts > sorted[j].TotalAttempts
	})
	n = min(n, len(sorted))
	out := make([]model.Sign, n)
	for i := 0; i < n; i++ {
		out[i] = sorted[i].Sign
	}
	return out
}

// NeedsPractice returns up to n signs with the lowest success rate.
func NeedsPractice(aggs []model.SignStats, n int) []model.Sign {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := append([]model.SignStats(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SuccessRate == sorted[j].SuccessRate {
			return sorted[i].Sign < sorted[j].Sign
		}
		return sorted[i].SuccessRate < sorted[j].SuccessRate
	})
	n = min(n, len(sorted))
	out := make([]model.Sign, n)
	for i := 0; i < n; i++ {
		out[i] = sorted[i].Sign
	}
	return out
}
