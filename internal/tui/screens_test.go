package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/signtutor/internal/catalog"
	"github.com/verte-zerg/signtutor/internal/model"
)

func TestHomeMenuSelection(t *testing.T) {
	m := NewHomeModel("3 attempts so far")
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if m.Chosen() != GoModules {
		t.Fatalf("expected modules, got %d", m.Chosen())
	}

	m = NewHomeModel("")
	m.Update(key("4"))
	if m.Chosen() != GoSettings {
		t.Fatalf("expected settings, got %d", m.Chosen())
	}

	m = NewHomeModel("")
	m.Update(key("q"))
	if m.Chosen() != GoNowhere {
		t.Fatalf("expected no destination, got %d", m.Chosen())
	}
}

func TestModulesFilterAndSelect(t *testing.T) {
	modules, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	m := NewModulesModel(modules, "advanced")
	for _, mod := range m.shown {
		if mod.Difficulty != "advanced" {
			t.Fatalf("unexpected module %q at %s", mod.Name, mod.Difficulty)
		}
	}
	m.Update(key("d"))
	if m.difficulty != "" || len(m.shown) != len(modules) {
		t.Fatalf("expected all modules after cycling, got %q with %d", m.difficulty, len(m.shown))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	sel, ok := m.Selected()
	if !ok || sel.ID != modules[0].ID {
		t.Fatalf("expected first module selected, got %+v ok=%v", sel, ok)
	}
	if !strings.Contains(m.View(), "Learning modules") {
		t.Fatalf("view missing title")
	}
}

func TestNextDifficultyCycles(t *testing.T) {
	got := []string{}
	d := ""
	for i := 0; i < 4; i++ {
		d = nextDifficulty(d)
		got = append(got, d)
	}
	want := []string{"beginner", "intermediate", "advanced", ""}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cycle mismatch at %d: got %q want %q", i, got[i], want[i])
		}
	}
}

type fakeSaver struct {
	saved []model.Settings
	err   error
}

func (f *fakeSaver) SaveSettings(_ context.Context, s model.Settings) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, s)
	return nil
}

func TestSettingsToggleAndSave(t *testing.T) {
	saver := &fakeSaver{}
	m := NewSettingsModel(saver, model.DefaultSettings())
	m.Update(key(" "))
	if !m.Dirty() {
		t.Fatalf("expected unsaved changes")
	}
	if !strings.Contains(m.View(), "Unsaved changes") {
		t.Fatalf("view should mention unsaved changes")
	}
	m.Update(key("s"))
	if len(saver.saved) != 1 || saver.saved[0].AudioFeedback {
		t.Fatalf("expected audio feedback off to be saved, got %+v", saver.saved)
	}
	if m.Dirty() || m.Settings().AudioFeedback {
		t.Fatalf("saved settings not tracked")
	}

	m.Update(key("R"))
	if m.current != model.DefaultSettings() {
		t.Fatalf("expected defaults restored")
	}
}

func TestSettingsSaveFailureKeepsEdits(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk full")}
	m := NewSettingsModel(saver, model.DefaultSettings())
	m.Update(key(" "))
	m.Update(key("s"))
	if !m.Dirty() {
		t.Fatalf("failed save should keep edits pending")
	}
	if !strings.Contains(m.View(), "disk full") {
		t.Fatalf("view should show the save error")
	}
}
