package statsui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	accent lipgloss.Color
	text   lipgloss.Color
	subtle lipgloss.Color
	dim    lipgloss.Color
	border lipgloss.Color
	danger lipgloss.Color
}

// Keys match the theme setting values.
var palettes = map[string]palette{
	"dark": {
		accent: "#C89A3A",
		text:   "#F0F0F0",
		subtle: "#B0B0B0",
		dim:    "#6E6E6E",
		border: "#4A4A4A",
		danger: "#FF4D4F",
	},
	"light": {
		accent: "#8A5A00",
		text:   "#1F1F1F",
		subtle: "#505050",
		dim:    "#7A7A7A",
		border: "#BFBFBF",
		danger: "#CF1322",
	},
}

type theme struct {
	activeNav   lipgloss.Style
	inactiveNav lipgloss.Style
	header      lipgloss.Style
	err         lipgloss.Style
	card        lipgloss.Style
	cardTitle   lipgloss.Style
	cardValue   lipgloss.Style
	muted       lipgloss.Style
	modal       lipgloss.Style
	table       table.Styles
}

// newTheme builds the dashboard styles. Unknown names fall back to dark.
func newTheme(name string) theme {
	p, ok := palettes[name]
	if !ok {
		p = palettes["dark"]
	}
	nav := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true)
	th := theme{
		activeNav:   nav.Foreground(p.text).Bold(true).BorderForeground(p.accent),
		inactiveNav: nav.Foreground(p.subtle).BorderForeground(p.border),
		header:      lipgloss.NewStyle().Foreground(p.dim),
		err:         lipgloss.NewStyle().Foreground(p.danger),
		card:        lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(p.border),
		cardTitle:   lipgloss.NewStyle().Foreground(p.dim),
		cardValue:   lipgloss.NewStyle().Foreground(p.text).Bold(true),
		muted:       lipgloss.NewStyle().Foreground(p.subtle),
		modal:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(p.accent).Padding(1, 2),
	}

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(p.border).
		Foreground(p.subtle).
		Bold(true).
		Padding(0, 1, 0, 0)
	ts.Cell = ts.Cell.Padding(0, 1, 0, 0)
	ts.Selected = ts.Cell.Foreground(p.accent).Bold(true)
	th.table = ts
	return th
}

func (th theme) metricCard(label, value string) string {
	return th.card.Render(th.cardTitle.Render(label) + "\n" + th.cardValue.Render(value))
}
