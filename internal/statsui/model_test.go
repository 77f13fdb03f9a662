package statsui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "signtutor.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	id, err := st.OpenSession(ctx, "s1", start)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	attempts := []model.AttemptRecord{
		{TargetSign: "hello", PredictedSign: "hello", Confidence: 0.9, IsCorrect: true},
		{TargetSign: "hello", PredictedSign: "help", Confidence: 0.5},
		{TargetSign: "goodbye", PredictedSign: "goodbye", Confidence: 0.8, IsCorrect: true},
	}
	for i, rec := range attempts {
		rec.SessionID = id
		rec.StudentID = "s1"
		rec.CreatedAt = start.Add(time.Duration(i+1) * time.Second)
		if _, err := st.InsertAttempt(ctx, rec); err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
	}
	return st
}

type fakeRemote struct {
	err error
}

func (f fakeRemote) Dashboard(context.Context) (model.DashboardMetrics, error) {
	if f.err != nil {
		return model.DashboardMetrics{}, f.err
	}
	return model.DashboardMetrics{TotalPredictions: 7, UsageByLabel: map[model.Sign]int{"hello": 5, "nice": 2}}, nil
}

func (f fakeRemote) Students(context.Context) ([]model.StudentSummary, error) {
	return []model.StudentSummary{{ID: "s1", Name: "Student s1"}}, nil
}

func TestOverviewCards(t *testing.T) {
	m := NewModel(seededStore(t), nil, model.StatsConfig{CurveWindow: 5}, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	for _, want := range []string{"Attempts", "66.7%", "Most Practiced", "Hello"} {
		if !strings.Contains(view, want) {
			t.Fatalf("overview missing %q:\n%s", want, view)
		}
	}
	if len(m.signSelection) != 2 || m.signSelection[0] != "hello" {
		t.Fatalf("expected most practiced signs selected, got %v", m.signSelection)
	}
}

func TestRemoteTab(t *testing.T) {
	m := NewModel(seededStore(t), fakeRemote{}, model.StatsConfig{CurveWindow: 5}, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(m.Init()())
	m.moveTab(-1)
	if m.activeTab != tabRemote {
		t.Fatalf("expected remote tab, got %d", m.activeTab)
	}
	view := m.View()
	if !strings.Contains(view, "Total Predictions") || !strings.Contains(view, "Student s1") {
		t.Fatalf("remote tab missing data:\n%s", view)
	}

	m = NewModel(seededStore(t), fakeRemote{err: errors.New("connection refused")}, model.StatsConfig{CurveWindow: 5}, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(m.Init()())
	m.moveTab(-1)
	if !strings.Contains(m.View(), "Remote API unreachable") {
		t.Fatalf("expected unreachable message")
	}
}

func TestParseSignList(t *testing.T) {
	got, err := ParseSignList("hello, Thank You goodbye hello")
	if err == nil {
		t.Fatalf("expected error for split display name, got %v", got)
	}
	got, err = ParseSignList("hello, thankyou goodbye,hello")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []model.Sign{"hello", "thankyou", "goodbye"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if nextCurveWindow(1) != 5 || nextCurveWindow(5) != 10 || nextCurveWindow(7) != 10 {
		t.Fatalf("unexpected next window")
	}
	if prevCurveWindow(5) != 1 || prevCurveWindow(10) != 5 || prevCurveWindow(7) != 5 {
		t.Fatalf("unexpected previous window")
	}
}

func TestThemeFallsBackToDark(t *testing.T) {
	if newTheme("neon").header.GetForeground() != newTheme("dark").header.GetForeground() {
		t.Fatalf("unknown theme should use the dark palette")
	}
	if newTheme("light").header.GetForeground() == newTheme("dark").header.GetForeground() {
		t.Fatalf("light and dark themes should differ")
	}
}
