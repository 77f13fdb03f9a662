package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/settings"
)

// SettingsSaver persists the settings panel.
type SettingsSaver interface {
	SaveSettings(ctx context.Context, s model.Settings) error
}

// SettingsModel is the settings and compliance panel.
type SettingsModel struct {
	saver   SettingsSaver
	current model.Settings
	saved   model.Settings
	cursor  int
	status  string
	errMsg  string

	width  int
	height int
}

// NewSettingsModel constructs the panel showing s.
func NewSettingsModel(saver SettingsSaver, s model.Settings) *SettingsModel {
	return &SettingsModel{saver: saver, current: s, saved: s}
}

// Settings returns the last saved settings.
func (m *SettingsModel) Settings() model.Settings {
	return m.saved
}

// Dirty reports unsaved edits.
func (m *SettingsModel) Dirty() bool {
	return m.current != m.saved
}

// Init implements tea.Model.
func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.cursor = (m.cursor - 1 + len(settings.Fields)) % len(settings.Fields)
		case "down", "j", "tab":
			m.cursor = (m.cursor + 1) % len(settings.Fields)
		case " ", "enter":
			next, err := settings.Toggle(m.current, settings.Fields[m.cursor].Key)
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.current = next
			m.status = ""
			m.errMsg = ""
		case "s":
			m.save()
		case "R":
			m.current = model.DefaultSettings()
			m.status = "Defaults restored, press s to save"
			m.errMsg = ""
		}
	}
	return m, nil
}

func (m *SettingsModel) save() {
	if err := settings.Validate(m.current); err != nil {
		m.errMsg = err.Error()
		return
	}
	if m.saver != nil {
		if err := m.saver.SaveSettings(context.Background(), m.current); err != nil {
			m.errMsg = fmt.Sprintf("failed to save settings: %v", err)
			return
		}
	}
	m.saved = m.current
	m.status = "Settings saved"
	m.errMsg = ""
}

// View implements tea.Model.
func (m *SettingsModel) View() string {
	lines := []string{titleStyle.Render("Settings & compliance"), ""}
	for i, f := range settings.Fields {
		label := padRight(f.Label, 26)
		value := f.Get(m.current)
		line := fmt.Sprintf("%s %s", label, value)
		if i == m.cursor {
			lines = append(lines, selectedStyle.Render("> "+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	lines = append(lines, "")
	switch {
	case m.errMsg != "":
		lines = append(lines, errorStyle.Render(m.errMsg))
	case m.status != "":
		lines = append(lines, successStyle.Render(m.status))
	case m.Dirty():
		lines = append(lines, workingStyle.Render("Unsaved changes"))
	}
	lines = append(lines, footerStyle.Render("space: toggle  s: save  R: defaults  q: back"))
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
