package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
)

// RenderSummary prints overview totals for the report.
func RenderSummary(w io.Writer, r Report) error {
	if len(r.Sessions) == 0 {
		_, err := fmt.Fprintln(w, "No practice sessions found.")
		return err
	}
	attempts, correct, avgConf := r.Totals()
	accuracy := 0.0
	if attempts > 0 {
		accuracy = float64(correct) / float64(attempts) * 100
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(r.Sessions)),
		fmt.Sprintf("Attempts: %d", attempts),
		fmt.Sprintf("Correct: %d", correct),
		fmt.Sprintf("Accuracy: %.1f%%", accuracy),
		fmt.Sprintf("Avg Confidence: %.1f%%", avgConf*100),
		ProgressSummary(accuracy, attempts),
		"",
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// RenderSignTable prints per-sign aggregates, weakest first.
func RenderSignTable(w io.Writer, aggs []model.SignStats) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No sign stats found.")
		return err
	}
	sorted := append([]model.SignStats(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SuccessRate == sorted[j].SuccessRate {
			return sorted[i].Sign < sorted[j].Sign
		}
		return sorted[i].SuccessRate < sorted[j].SuccessRate
	})

	headers := []string{"Sign", "Success", "Avg Confidence", "Correct", "Attempts"}
	rows := make([][]string, 0, len(sorted))
	for _, st := range sorted {
		rows = append(rows, []string{
			signs.DisplayText(st.Sign),
			fmt.Sprintf("%.1f%%", st.SuccessRate*100),
			fmt.Sprintf("%.1f%%", st.AverageConfidence*100),
			fmt.Sprintf("%d", st.SuccessfulAttempts),
			fmt.Sprintf("%d", st.TotalAttempts),
		})
	}
	out := []string{"Per-Sign (Windowed)"}
	out = append(out, formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})...)
	_, err := io.WriteString(w, strings.Join(out, "\n")+"\n\n")
	return err
}

// RenderCurves charts session accuracy and confidence, smoothed over window.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, color bool) error {
	if len(sessions) == 0 {
		return nil
	}
	acc := make([]float64, len(sessions))
	conf := make([]float64, len(sessions))
	for i, s := range sessions {
		if s.Attempts == 0 {
			continue
		}
		acc[i] = float64(s.Correct) / float64(s.Attempts) * 100
		conf[i] = s.ConfidenceSum / float64(s.Attempts) * 100
	}
	width := 0
	if totalWidth > 0 {
		width = ChartWidthFor(totalWidth)
	}
	return Chart(w, "Learning Curves", []Series{
		{Name: "Accuracy", Values: MovingAverage(acc, window)},
		{Name: "Confidence", Values: MovingAverage(conf, window)},
	}, width, height, color)
}

// RenderSignCurves charts the per-session success rate of each selected sign.
func RenderSignCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[model.Sign]model.SignStats, selected []model.Sign, window, totalWidth, height int, color bool) error {
	if len(sessions) == 0 || len(selected) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Sign Curves"); err != nil {
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = ChartWidthFor(totalWidth)
	}
	for _, sign := range selected {
		rate := make([]float64, 0, len(sessions))
		for _, s := range sessions {
			if st, ok := perSession[s.SessionID][sign]; ok && st.TotalAttempts > 0 {
				rate = append(rate, st.SuccessRate*100)
			}
		}
		if len(rate) == 0 {
			continue
		}
		if err := Chart(w, signs.DisplayText(sign), []Series{
			{Name: "Success", Values: MovingAverage(rate, window)},
		}, width, height, color); err != nil {
			return err
		}
	}
	return nil
}
