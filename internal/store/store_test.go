package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/signtutor/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "signtutor.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestAttemptsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	id, err := st.OpenSession(ctx, "s1", start)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	rec := model.AttemptRecord{SessionID: id, StudentID: "s1", TargetSign: "hello", PredictedSign: "help", Confidence: 0.4, CreatedAt: start.Add(time.Second)}
	if _, err := st.InsertAttempt(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := st.CloseSession(ctx, id, start.Add(time.Minute)); err != nil {
		t.Fatalf("close session: %v", err)
	}

	got, err := st.ListAttempts(ctx, id)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(got) != 1 || got[0].PredictedSign != "help" || got[0].IsCorrect || !got[0].CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("unexpected attempts: %+v", got)
	}
}

func TestStudentAndSignStats(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Unix(1000, 0)

	for _, student := range []string{"s1", "s2"} {
		id, err := st.OpenSession(ctx, student, now)
		if err != nil {
			t.Fatalf("open session: %v", err)
		}
		for i, correct := range []bool{true, true, false} {
			rec := model.AttemptRecord{
				SessionID:     id,
				StudentID:     student,
				TargetSign:    "hello",
				PredictedSign: "hello",
				Confidence:    0.5 + 0.1*float64(i),
				IsCorrect:     correct,
				CreatedAt:     now.Add(time.Duration(i) * time.Second),
			}
			if _, err := st.InsertAttempt(ctx, rec); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}
	}

	students, err := st.ListStudents(ctx)
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 2 || students[0].ID != "s1" {
		t.Fatalf("unexpected students: %+v", students)
	}

	ss, err := st.StudentStats(ctx, "s1")
	if err != nil {
		t.Fatalf("student stats: %v", err)
	}
	if ss.TotalAttempts != 3 || ss.CorrectPredictions != 2 || ss.SignPerformance["hello"].Correct != 2 {
		t.Fatalf("unexpected student stats: %+v", ss)
	}
	if ss.Accuracy < 66.6 || ss.Accuracy > 66.7 {
		t.Fatalf("expected accuracy percentage, got %f", ss.Accuracy)
	}

	sign, err := st.SignStats(ctx, "hello", "")
	if err != nil {
		t.Fatalf("sign stats: %v", err)
	}
	if sign.TotalAttempts != 6 || sign.StudentCount != 2 || sign.SuccessfulAttempts != 4 {
		t.Fatalf("unexpected sign stats: %+v", sign)
	}

	empty, err := st.SignStats(ctx, "goodbye", "s1")
	if err != nil {
		t.Fatalf("empty sign stats: %v", err)
	}
	if empty.TotalAttempts != 0 || empty.SuccessRate != 0 {
		t.Fatalf("expected empty stats, got %+v", empty)
	}

	sessions, err := st.ListSessions(ctx, model.StatsConfig{StudentID: "s2"})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Attempts != 3 || sessions[0].StudentID != "s2" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestDashboardMetrics(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, label := range []model.Sign{"hello", "hello", "nice"} {
		if err := st.InsertPrediction(ctx, model.PredictionEvent{Label: label, Confidence: 0.8, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("insert prediction: %v", err)
		}
	}
	metrics, err := st.DashboardMetrics(ctx)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if metrics.TotalPredictions != 3 || metrics.UsageByLabel["hello"] != 2 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestSettingsDefaultsSaveReset(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	got, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != model.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}

	got.Theme = "dark"
	got.AudioFeedback = false
	if err := st.SaveSettings(ctx, got); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Theme != "dark" || loaded.AudioFeedback {
		t.Fatalf("unexpected saved settings: %+v", loaded)
	}

	if err := st.ResetSettings(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	loaded, err = st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("reload after reset: %v", err)
	}
	if loaded != model.DefaultSettings() {
		t.Fatalf("expected defaults after reset, got %+v", loaded)
	}
}
