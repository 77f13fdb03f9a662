package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/signtutor/internal/catalog"
	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
)

var detailStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder(), true).
	BorderForeground(lipgloss.Color("#4A4A4A"))

// ModulesModel lists the learning modules. Enter picks a module to practice.
type ModulesModel struct {
	all        []model.Module
	shown      []model.Module
	difficulty string
	table      table.Model
	selected   *model.Module

	width  int
	height int
}

// NewModulesModel constructs the catalog browser filtered by difficulty ("" for all).
func NewModulesModel(modules []model.Module, difficulty string) *ModulesModel {
	m := &ModulesModel{all: modules, difficulty: difficulty}
	m.table = table.New(
		table.WithColumns(moduleColumns()),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	m.table.SetStyles(moduleTableStyles())
	m.applyFilter()
	return m
}

// Selected returns the module chosen for practice, if any.
func (m *ModulesModel) Selected() (model.Module, bool) {
	if m.selected == nil {
		return model.Module{}, false
	}
	return *m.selected, true
}

// Init implements tea.Model.
func (m *ModulesModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ModulesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(maxInt(3, msg.Height-12))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "d":
			m.difficulty = nextDifficulty(m.difficulty)
			m.applyFilter()
			return m, nil
		case "enter":
			if mod, ok := m.current(); ok {
				m.selected = &mod
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *ModulesModel) View() string {
	filter := m.difficulty
	if filter == "" {
		filter = "all"
	}
	lines := []string{
		titleStyle.Render("Learning modules"),
		mutedStyle.Render(fmt.Sprintf("Difficulty: %s  (%d of %d)", filter, len(m.shown), len(m.all))),
		"",
	}
	if len(m.shown) == 0 {
		lines = append(lines, "No modules at this level.")
	} else {
		lines = append(lines, m.table.View())
		if mod, ok := m.current(); ok {
			lines = append(lines, detailStyle.Render(moduleDetail(mod)))
		}
	}
	lines = append(lines, footerStyle.Render("up/down: move  d: difficulty  enter: practice  q: back"))
	return strings.Join(lines, "\n")
}

func (m *ModulesModel) current() (model.Module, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.shown) {
		return model.Module{}, false
	}
	return m.shown[idx], true
}

func (m *ModulesModel) applyFilter() {
	m.shown = catalog.FilterByDifficulty(m.all, m.difficulty)
	rows := make([]table.Row, 0, len(m.shown))
	for _, mod := range m.shown {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", mod.ID),
			mod.Name,
			mod.Difficulty,
			fmt.Sprintf("%d", mod.Lessons),
			mod.Duration,
		})
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func moduleColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Module", Width: 24},
		{Title: "Level", Width: 12},
		{Title: "Lessons", Width: 7},
		{Title: "Time", Width: 10},
	}
}

func moduleTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#C89A3A")).
		Bold(true)
	return styles
}

func moduleDetail(mod model.Module) string {
	names := make([]string, len(mod.Signs))
	for i, s := range mod.Signs {
		names[i] = signs.DisplayText(s)
	}
	lines := []string{titleStyle.Render(mod.Name)}
	if mod.Description != "" {
		lines = append(lines, wrapText(mod.Description, 60))
	}
	if mod.Objective != "" {
		lines = append(lines, "Objective: "+mod.Objective)
	}
	lines = append(lines, "Signs: "+strings.Join(names, ", "))
	return strings.Join(lines, "\n")
}

func nextDifficulty(current string) string {
	levels := append([]string{""}, catalog.Difficulties...)
	for i, l := range levels {
		if l == current {
			return levels[(i+1)%len(levels)]
		}
	}
	return ""
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
