package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinCatalog(t *testing.T) {
	modules, err := Builtin()
	if err != nil {
		t.Fatalf("builtin catalog: %v", err)
	}
	if len(modules) != 6 {
		t.Fatalf("expected 6 modules, got %d", len(modules))
	}
	advanced := FilterByDifficulty(modules, "Advanced")
	if len(advanced) != 2 {
		t.Fatalf("expected 2 advanced modules, got %d", len(advanced))
	}
	if got := FilterByDifficulty(modules, "all"); len(got) != len(modules) {
		t.Fatalf("expected all modules for 'all' filter")
	}
	m, ok := Find(modules, 5)
	if !ok || len(m.Signs) != 8 {
		t.Fatalf("expected module 5 with every sign, got %+v", m)
	}
}

func TestParseRejectsUnknownSign(t *testing.T) {
	data := []byte("- id: 1\n  name: X\n  difficulty: beginner\n  signs: [wave]\n")
	if _, err := Parse(data); err == nil {
		t.Fatalf("expected unknown sign error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := []byte("- id: 7\n  name: Custom\n  difficulty: Intermediate\n  signs: [hello]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	modules, err := Load(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(modules) != 1 || modules[0].Difficulty != "intermediate" {
		t.Fatalf("unexpected modules: %+v", modules)
	}
}
