// Package tui provides the Bubble Tea practice, home, modules and settings screens.
package tui

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/practice"
	"github.com/verte-zerg/signtutor/internal/signs"
	statsPkg "github.com/verte-zerg/signtutor/internal/stats"
)

const (
	previewInterval = 250 * time.Millisecond
	previewWidth    = 48
	previewHeight   = 14
	historyRows     = 5
	distributionTop = 3
	barWidth        = 20
)

// CameraControl starts and stops the capture device.
type CameraControl interface {
	Start(ctx context.Context) error
	Stop()
	Streaming() bool
}

// PreviewRenderer draws the live camera image as text.
type PreviewRenderer interface {
	Render(width, height int) string
}

// SessionLister loads stored sessions for the all-time footer.
type SessionLister interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

type cameraMsg struct {
	err error
}

type resolvedMsg struct {
	attempt practice.Attempt
	outcome practice.Outcome
}

type previewTickMsg time.Time

type previewMsg string

// Model implements the Bubble Tea practice UI.
type Model struct {
	ctrl      *practice.Controller
	camera    CameraControl
	preview   PreviewRenderer
	sessions  SessionLister
	studentID string

	width  int
	height int

	spinner       spinner.Model
	cameraErr     error
	cameraPending bool
	previewText   string
	cancelAttempt context.CancelFunc

	allAttempts int
	allCorrect  int
}

var (
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	recordingStyle = previewStyle.Copy().BorderForeground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a practice TUI model. preview and sessions may be nil.
func NewModel(ctrl *practice.Controller, cam CameraControl, preview PreviewRenderer, sessions SessionLister, studentID string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle
	m := &Model{
		ctrl:          ctrl,
		camera:        cam,
		preview:       preview,
		sessions:      sessions,
		studentID:     studentID,
		spinner:       sp,
		cameraPending: true,
	}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.ctrl.Mount()
	return tea.Batch(m.startCamera(), m.spinner.Tick, previewTick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case cameraMsg:
		m.cameraPending = false
		m.cameraErr = msg.err
		if msg.err != nil {
			log.Printf("camera: %v", msg.err)
		}
		return m, nil
	case resolvedMsg:
		m.handleResolved(msg)
		return m, nil
	case previewTickMsg:
		return m, tea.Batch(m.renderPreview(), previewTick())
	case previewMsg:
		m.previewText = string(msg)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.abandon()
		return m, tea.Quit
	case " ", "enter":
		return m, m.toggleRecording()
	case "esc":
		m.abandon()
		return m, nil
	case "n":
		m.ctrl.NextSign()
		return m, nil
	case "r":
		m.ctrl.ReplayLast()
		return m, nil
	case "c":
		if m.ctrl.State() != practice.Idle {
			return m, nil
		}
		m.cameraPending = true
		m.cameraErr = nil
		return m, m.startCamera()
	default:
		return m, nil
	}
}

func (m *Model) toggleRecording() tea.Cmd {
	switch m.ctrl.State() {
	case practice.Idle:
		if !m.ctrl.StartRecording() {
			return nil
		}
		if m.camera == nil || m.camera.Streaming() || m.cameraPending {
			return nil
		}
		m.cameraPending = true
		m.cameraErr = nil
		return m.startCamera()
	case practice.Recording:
		attempt, ok := m.ctrl.StopRecording()
		if !ok {
			return nil
		}
		return m.process(attempt)
	default:
		return nil
	}
}

func (m *Model) process(a practice.Attempt) tea.Cmd {
	if m.cancelAttempt != nil {
		m.cancelAttempt()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelAttempt = cancel
	ctrl := m.ctrl
	return func() tea.Msg {
		return resolvedMsg{attempt: a, outcome: ctrl.Process(ctx, a)}
	}
}

func (m *Model) abandon() {
	if m.cancelAttempt != nil {
		m.cancelAttempt()
		m.cancelAttempt = nil
	}
	m.ctrl.Abandon()
}

func (m *Model) handleResolved(msg resolvedMsg) {
	res, ok := m.ctrl.Resolve(msg.attempt, msg.outcome)
	if !ok {
		return
	}
	if m.cancelAttempt != nil {
		m.cancelAttempt()
		m.cancelAttempt = nil
	}
	if res.Gesture == nil {
		return
	}
	m.allAttempts++
	if res.Correct {
		m.allCorrect++
	}
}

func (m *Model) startCamera() tea.Cmd {
	cam := m.camera
	if cam == nil {
		return nil
	}
	return func() tea.Msg {
		return cameraMsg{err: cam.Start(context.Background())}
	}
}

func previewTick() tea.Cmd {
	return tea.Tick(previewInterval, func(t time.Time) tea.Msg {
		return previewTickMsg(t)
	})
}

func (m *Model) renderPreview() tea.Cmd {
	if m.preview == nil || m.camera == nil || !m.camera.Streaming() {
		return nil
	}
	p := m.preview
	return func() tea.Msg {
		return previewMsg(p.Render(previewWidth, previewHeight))
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.ctrl.Snapshot()
	width := m.width
	if width == 0 {
		width = 80
	}
	contentWidth := int(float64(width) * 0.70)
	if contentWidth < 20 {
		contentWidth = 20
	}

	sections := []string{
		"Please sign: " + targetStyle.Render(signs.DisplayText(snap.Target)),
		m.renderCamera(snap.State),
	}
	if fb := m.renderFeedback(snap, contentWidth); fb != "" {
		sections = append(sections, fb)
	}
	if snap.Last != nil {
		sections = append(sections, renderDistribution(*snap.Last))
	}
	if hist := renderHistory(snap.History); hist != "" {
		sections = append(sections, hist)
	}
	sections = append(sections, mutedStyle.Render(helpLine(snap.State)))
	content := lipgloss.NewStyle().Width(contentWidth).Render(strings.Join(sections, "\n\n"))

	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderCamera(state practice.State) string {
	switch {
	case m.cameraPending:
		return mutedStyle.Render(m.spinner.View() + " Starting camera...")
	case m.cameraErr != nil:
		return errorStyle.Render(fmt.Sprintf("Camera unavailable: %v (press c to retry)", m.cameraErr))
	}
	style := previewStyle
	if state == practice.Recording {
		style = recordingStyle
	}
	text := m.previewText
	if text == "" {
		text = mutedStyle.Render("camera live")
	}
	return style.Render(text)
}

func (m *Model) renderFeedback(snap practice.Snapshot, width int) string {
	text := snap.Feedback.Text
	if text == "" {
		return ""
	}
	if snap.State == practice.Processing {
		text = m.spinner.View() + " " + text
	}
	wrapped := wrapText(text, width)
	switch snap.Feedback.Tone {
	case practice.ToneSuccess:
		return successStyle.Render(wrapped)
	case practice.ToneError:
		return errorStyle.Render(wrapped)
	default:
		return workingStyle.Render(wrapped)
	}
}

func renderDistribution(res model.PredictionResult) string {
	lines := []string{fmt.Sprintf("Detected %s (%.1f%%)", signs.DisplayText(res.Label), res.Confidence*100)}
	type entry struct {
		sign model.Sign
		p    float64
	}
	entries := make([]entry, 0, len(res.Distribution))
	for s, p := range res.Distribution {
		entries = append(entries, entry{sign: s, p: p})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].p == entries[j].p {
			return entries[i].sign < entries[j].sign
		}
		return entries[i].p > entries[j].p
	})
	if len(entries) > distributionTop {
		entries = entries[:distributionTop]
	}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s %5.1f%%", padRight(signs.DisplayText(e.sign), 12), bar(e.p, barWidth), e.p*100))
	}
	return strings.Join(lines, "\n")
}

func renderHistory(history []model.CapturedGesture) string {
	if len(history) == 0 {
		return ""
	}
	lines := []string{mutedStyle.Render("Recent gestures")}
	for i, g := range history {
		if i >= historyRows {
			break
		}
		lines = append(lines, fmt.Sprintf("%s  %s", g.CapturedAt.Local().Format("15:04:05"), g.DisplayText))
	}
	return strings.Join(lines, "\n")
}

func helpLine(state practice.State) string {
	switch state {
	case practice.Recording:
		return "space/enter: stop and check  q: quit"
	case practice.Processing:
		return "esc: cancel  q: quit"
	default:
		return "space/enter: record  n: next sign  r: replay  c: camera  q: quit"
	}
}

func (m *Model) loadFooterStats() {
	if m.sessions == nil {
		return
	}
	sessions, err := m.sessions.ListSessions(context.Background(), model.StatsConfig{StudentID: m.studentID})
	if err != nil {
		log.Printf("failed to load session stats: %v", err)
		return
	}
	for _, s := range sessions {
		m.allAttempts += s.Attempts
		m.allCorrect += s.Correct
	}
}

func (m *Model) renderFooter() string {
	snap := m.ctrl.Snapshot()
	st := snap.Stats
	segments := []string{fmt.Sprintf("Attempts %d", st.TotalAttempts)}
	if st.TotalAttempts > 0 {
		segments = append(segments, fmt.Sprintf("Accuracy %.1f%%", statsPkg.Accuracy(st)*100))
		segments = append(segments, fmt.Sprintf("Avg conf %.1f%%", st.AverageConfidence*100))
	}
	if m.allAttempts > 0 {
		acc := float64(m.allCorrect) / float64(m.allAttempts) * 100
		segments = append(segments, fmt.Sprintf("All-time %.1f%% of %d", acc, m.allAttempts))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
