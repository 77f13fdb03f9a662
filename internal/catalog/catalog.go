// Package catalog loads the learning-modules catalog.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
)

//go:embed modules.yaml
var builtin []byte

// Difficulties lists the accepted difficulty levels in ascending order.
var Difficulties = []string{"beginner", "intermediate", "advanced"}

// Builtin returns the catalog shipped with the binary.
func Builtin() ([]model.Module, error) {
	return Parse(builtin)
}

// Load reads a catalog from path. An empty path yields the builtin catalog.
func Load(path string) ([]model.Module, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) ([]model.Module, error) {
	var modules []model.Module
	if err := yaml.Unmarshal(data, &modules); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	seen := map[int]struct{}{}
	for i := range modules {
		m := &modules[i]
		if _, ok := seen[m.ID]; ok {
			return nil, fmt.Errorf("duplicate module id %d", m.ID)
		}
		seen[m.ID] = struct{}{}
		m.Difficulty = strings.ToLower(strings.TrimSpace(m.Difficulty))
		if !validDifficulty(m.Difficulty) {
			return nil, fmt.Errorf("module %d: unknown difficulty %q", m.ID, m.Difficulty)
		}
		for _, s := range m.Signs {
			if signs.Index(s) < 0 {
				return nil, fmt.Errorf("module %d: unknown sign %q", m.ID, s)
			}
		}
	}
	return modules, nil
}

// FilterByDifficulty keeps modules at the given level; "" or "all" keeps everything.
func FilterByDifficulty(modules []model.Module, difficulty string) []model.Module {
	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	if difficulty == "" || difficulty == "all" {
		return modules
	}
	out := make([]model.Module, 0, len(modules))
	for _, m := range modules {
		if m.Difficulty == difficulty {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the module with the given id.
func Find(modules []model.Module, id int) (model.Module, bool) {
	for _, m := range modules {
		if m.ID == id {
			return m, true
		}
	}
	return model.Module{}, false
}

func validDifficulty(d string) bool {
	for _, candidate := range Difficulties {
		if candidate == d {
			return true
		}
	}
	return false
}
