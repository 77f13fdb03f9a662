package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Destination is a screen picked on the home menu.
type Destination int

// Home menu entries.
const (
	GoNowhere Destination = iota
	GoPractice
	GoModules
	GoDashboard
	GoSettings
)

type homeItem struct {
	dest  Destination
	title string
	desc  string
}

var homeItems = []homeItem{
	{GoPractice, "Practice", "Sign in front of the camera and get instant feedback"},
	{GoModules, "Learning modules", "Browse lessons grouped by difficulty"},
	{GoDashboard, "Dashboard", "Progress, accuracy and per-sign statistics"},
	{GoSettings, "Settings", "Audio feedback, privacy and data retention"},
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// HomeModel is the landing menu.
type HomeModel struct {
	greeting string
	cursor   int
	chosen   Destination

	width  int
	height int
}

// NewHomeModel constructs the home menu. summary is shown under the title.
func NewHomeModel(summary string) *HomeModel {
	return &HomeModel{greeting: summary}
}

// Chosen returns the picked destination, GoNowhere when the user quit.
func (m *HomeModel) Chosen() Destination {
	return m.chosen
}

// Init implements tea.Model.
func (m *HomeModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *HomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.chosen = GoNowhere
			return m, tea.Quit
		case "up", "k":
			m.cursor = (m.cursor - 1 + len(homeItems)) % len(homeItems)
		case "down", "j", "tab":
			m.cursor = (m.cursor + 1) % len(homeItems)
		case "enter", " ":
			m.chosen = homeItems[m.cursor].dest
			return m, tea.Quit
		case "1", "2", "3", "4":
			idx := int(msg.String()[0] - '1')
			m.chosen = homeItems[idx].dest
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *HomeModel) View() string {
	lines := []string{titleStyle.Render("Sign Language Tutor")}
	if m.greeting != "" {
		lines = append(lines, mutedStyle.Render(m.greeting))
	}
	lines = append(lines, "")
	for i, item := range homeItems {
		title := fmt.Sprintf("%d. %s", i+1, item.title)
		if i == m.cursor {
			lines = append(lines, selectedStyle.Render("> "+title))
		} else {
			lines = append(lines, "  "+title)
		}
		lines = append(lines, mutedStyle.Render("   "+item.desc))
	}
	lines = append(lines, "", footerStyle.Render("up/down: move  enter: open  q: quit"))
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
