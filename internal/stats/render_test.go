package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/store"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	lines := formatTable(
		[]string{"Sign", "Success"},
		[][]string{{"Hello", "97.5%"}, {"Good morning", "8.0%"}},
		map[int]bool{1: true},
	)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Sign          Success" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Hello           97.5%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Good morning     8.0%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestChartLayout(t *testing.T) {
	var buf bytes.Buffer
	err := Chart(&buf, "Trend", []Series{
		{Name: "Accuracy", Values: []float64{0, 50, 100}},
		{Name: "Empty"},
	}, 12, 4, false)
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Trend\n") {
		t.Fatalf("expected title first, got %q", out)
	}
	if !strings.Contains(out, "Accuracy 100.0%") || strings.Contains(out, "Empty") {
		t.Fatalf("unexpected legend: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
}

func TestChartWidthFor(t *testing.T) {
	if got := ChartWidthFor(80); got != 74 {
		t.Fatalf("expected 74, got %d", got)
	}
	if got := ChartWidthFor(0); got != chartMinWidth {
		t.Fatalf("expected min width, got %d", got)
	}
}

func TestMovingAverageAndSparkline(t *testing.T) {
	got := MovingAverage([]float64{10, 20, 30, 40}, 2)
	want := []float64{10, 15, 25, 35}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Fatalf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
	if s := Sparkline([]float64{0, 100}); s != "▁█" {
		t.Fatalf("unexpected sparkline %q", s)
	}
}

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "signtutor.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	base := time.Unix(0, 0)
	var ids []int64
	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		id, err := st.OpenSession(ctx, "s1", start)
		if err != nil {
			t.Fatalf("open session: %v", err)
		}
		ids = append(ids, id)
		attempts := []model.AttemptRecord{
			{SessionID: id, StudentID: "s1", TargetSign: "hello", PredictedSign: "hello", Confidence: 0.9, IsCorrect: true, CreatedAt: start.Add(time.Minute)},
			{SessionID: id, StudentID: "s1", TargetSign: "help", PredictedSign: "hello", Confidence: 0.5, CreatedAt: start.Add(2 * time.Minute)},
		}
		for _, a := range attempts {
			if _, err := st.InsertAttempt(ctx, a); err != nil {
				t.Fatalf("insert attempt: %v", err)
			}
		}
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, CurveWindow: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 || report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected sessions: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 1 || report.WindowSessionIDs[0] != ids[2] {
		t.Fatalf("unexpected window ids: %+v", report.WindowSessionIDs)
	}
	attempts, correct, avg := report.Totals()
	if attempts != 4 || correct != 2 || !approx(avg, 0.7) {
		t.Fatalf("unexpected totals %d %d %f", attempts, correct, avg)
	}
	if weak := NeedsPractice(report.SignsAll, 1); len(weak) != 1 || weak[0] != "help" {
		t.Fatalf("unexpected weak signs: %v", weak)
	}

	var buf bytes.Buffer
	if err := RenderSummary(&buf, report); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(buf.String(), "Accuracy: 50.0%") {
		t.Fatalf("unexpected summary: %q", buf.String())
	}
	buf.Reset()
	if err := RenderSignTable(&buf, report.SignsAll); err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.Contains(buf.String(), "Help") {
		t.Fatalf("expected display names in table: %q", buf.String())
	}
}
