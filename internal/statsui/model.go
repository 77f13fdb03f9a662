// Package statsui provides the Bubble Tea educator dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
	"github.com/verte-zerg/signtutor/internal/stats"
	"github.com/verte-zerg/signtutor/internal/store"
)

const (
	tabOverview = iota
	tabSignTable
	tabSignCurves
	tabRemote
)

const (
	plotHeight     = 10
	defaultSignTop = 4
	remoteTimeout  = 5 * time.Second
)

// Remote is the analytics API consulted for server-side metrics.
type Remote interface {
	Dashboard(ctx context.Context) (model.DashboardMetrics, error)
	Students(ctx context.Context) ([]model.StudentSummary, error)
}

type remoteMsg struct {
	metrics  model.DashboardMetrics
	students []model.StudentSummary
	err      error
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	store  *store.Store
	remote Remote
	cfg    model.StatsConfig
	theme  theme

	report     stats.Report
	errMsg     string
	signErrMsg string

	remoteLoaded bool
	remoteErr    error
	remoteData   remoteMsg

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	signTable  table.Model
	signLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	signSelection       []model.Sign
	signSelectionCustom bool
	signPerSession      map[int64]map[model.Sign]model.SignStats

	signInputMode  bool
	signInput      textinput.Model
	signInputError string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a dashboard model. remote may be nil.
func NewModel(st *store.Store, remote Remote, cfg model.StatsConfig, selected []model.Sign) *Model {
	m := &Model{
		store:  st,
		remote: remote,
		cfg:    cfg,
		theme:  newTheme(""),
		tabs:   []string{"Overview", "Sign Table", "Sign Curves", "Remote"},
	}
	if len(selected) > 0 {
		m.signSelection = selected
		m.signSelectionCustom = true
	}
	m.initInputs()
	m.initSignInput()
	m.signTable = buildSignTable(m.theme.table, 0, 1)
	m.initViewports()
	m.refreshReport()
	return m
}

// SetTheme switches the color scheme ("light" or "dark").
func (m *Model) SetTheme(name string) {
	m.theme = newTheme(name)
	m.signTable.SetStyles(m.theme.table)
	m.renderTabContents()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.fetchRemote()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case remoteMsg:
		m.remoteLoaded = true
		m.remoteErr = msg.err
		m.remoteData = msg
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (msg.String() == "q" && !m.filterMode && !m.signInputMode) {
			return m, tea.Quit
		}
		if m.activeTab == tabSignTable {
			m.signTable.Focus()
		} else {
			m.signTable.Blur()
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.signInputMode {
			return m.updateSignInput(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "/":
			return m.startFilter()
		case "r":
			m.refreshReport()
			return m, m.fetchRemote()
		case "enter":
			if m.activeTab == tabSignCurves {
				return m.startSignInput()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabSignTable {
				m.signTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabSignTable {
				m.signTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabSignTable {
				var cmd tea.Cmd
				m.signTable, cmd = m.signTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.signInputMode {
		return fitLines(m.renderSignModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) fetchRemote() tea.Cmd {
	remote := m.remote
	if remote == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		metrics, err := remote.Dashboard(ctx)
		if err != nil {
			return remoteMsg{err: err}
		}
		students, err := remote.Students(ctx)
		if err != nil {
			return remoteMsg{err: err}
		}
		return remoteMsg{metrics: metrics, students: students}
	}
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Student: "),
		newFilterInput("Sign: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func (m *Model) initSignInput() {
	m.signInput = newFilterInput("Signs: ")
	m.signInput.Placeholder = "hello, goodbye, thankyou"
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(m.theme.activeNav.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	m.filterInputs[0].SetValue(m.cfg.StudentID)
	m.filterInputs[1].SetValue(string(m.cfg.Sign))
	if m.cfg.Since != nil {
		m.filterInputs[2].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[2].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[3].SetValue("")
	}
	m.filterInputs[4].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setSignTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
	promptWidth := lipgloss.Width(m.signInput.Prompt)
	m.signInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabSignTable {
		m.signTable.Focus()
	} else {
		m.signTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, m.theme.activeNav.Render(tab))
		} else {
			parts = append(parts, m.theme.inactiveNav.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	student := m.cfg.StudentID
	if student == "" {
		student = "all"
	}
	sign := string(m.cfg.Sign)
	if sign == "" {
		sign = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Filters: student=%s  sign=%s  since=%s  last=%s  window=%d", student, sign, since, last, m.cfg.CurveWindow)
	return m.theme.header.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Filters: /  Reload: r  Quit: q"
	if m.activeTab == tabSignCurves {
		help = "Nav: left/right  Edit signs: enter  Window: -/=  Filters: /  Reload: r  Quit: q"
	}
	return m.theme.header.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.theme.header.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + m.theme.err.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filters (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, m.theme.err.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabSignTable {
		switch {
		case len(m.report.Sessions) == 0:
			return fitLines("No sessions found.", m.width, height)
		case len(m.report.SignsAll) == 0:
			return fitLines("No sign stats found.", m.width, height)
		default:
			return fitLines(m.theme.muted.Render(m.signTable.View()), m.width, height)
		}
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.signErrMsg = ""
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	if !m.signSelectionCustom {
		m.signSelection = stats.MostPracticed(m.report.SignsAll, defaultSignTop)
	}
	m.loadSignPerSession()
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.applySignTable(width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabRemote].SetContent(m.renderRemote(width))
	if m.errMsg != "" {
		for _, tab := range []int{tabOverview, tabSignCurves} {
			m.viewports[tab].SetContent("Failed to load stats.")
		}
		return
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.theme, m.report, m.cfg.CurveWindow, width))
	m.viewports[tabSignCurves].SetContent(renderSignCurves(m.theme, m.report.Sessions, m.signSelection, m.signPerSession, m.cfg.CurveWindow, width, m.signErrMsg))
}

func renderOverview(th theme, r stats.Report, window, width int) string {
	if len(r.Sessions) == 0 {
		return "No sessions found."
	}
	summary := renderSummaryCards(th, r, width)
	lines := []string{summary}
	if weak := stats.NeedsPractice(r.SignsWindow, 3); len(weak) > 0 {
		lines = append(lines, th.header.Render("Needs practice: "+joinSigns(weak)))
	}
	lines = append(lines, renderCurves(r.Sessions, window, width))
	return strings.TrimRight(strings.Join(lines, "\n\n"), "\n")
}

func renderSummaryCards(th theme, r stats.Report, width int) string {
	attempts, correct, avgConf := r.Totals()
	accuracy := 0.0
	if attempts > 0 {
		accuracy = float64(correct) / float64(attempts) * 100
	}
	best := ""
	if top := stats.MostPracticed(r.SignsAll, 1); len(top) > 0 {
		best = signs.DisplayText(top[0])
	}
	cards := []string{
		th.metricCard("Sessions", fmt.Sprintf("%d", len(r.Sessions))),
		th.metricCard("Attempts", fmt.Sprintf("%d", attempts)),
		th.metricCard("Accuracy", fmt.Sprintf("%.1f%%", accuracy)),
		th.metricCard("Avg Confidence", fmt.Sprintf("%.1f%%", avgConf*100)),
		th.metricCard("Most Practiced", valueOr(best, "-")),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	progress := th.header.Render(stats.ProgressSummary(accuracy, attempts))
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2, progress)
}

func renderCurves(sessions []model.SessionAggregate, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, sessions, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderRemote(width int) string {
	switch {
	case m.remote == nil:
		return "Remote API not configured."
	case !m.remoteLoaded:
		return "Loading remote metrics..."
	case m.remoteErr != nil:
		return m.theme.err.Render(truncateLine(fmt.Sprintf("Remote API unreachable: %v", m.remoteErr), width))
	}
	data := m.remoteData
	lines := []string{
		m.theme.metricCard("Total Predictions", fmt.Sprintf("%d", data.metrics.TotalPredictions)),
		m.theme.header.Render("Usage by sign"),
	}
	type usage struct {
		sign  model.Sign
		count int
	}
	usages := make([]usage, 0, len(data.metrics.UsageByLabel))
	maxCount := 0
	for s, c := range data.metrics.UsageByLabel {
		usages = append(usages, usage{sign: s, count: c})
		if c > maxCount {
			maxCount = c
		}
	}
	sort.Slice(usages, func(i, j int) bool {
		if usages[i].count == usages[j].count {
			return usages[i].sign < usages[j].sign
		}
		return usages[i].count > usages[j].count
	})
	for _, u := range usages {
		barLen := 0
		if maxCount > 0 {
			barLen = u.count * 30 / maxCount
		}
		lines = append(lines, fmt.Sprintf("%-14s %s %d", signs.DisplayText(u.sign), strings.Repeat("█", barLen), u.count))
	}
	if len(data.students) > 0 {
		lines = append(lines, "", m.theme.header.Render(fmt.Sprintf("Students (%d)", len(data.students))))
		for _, s := range data.students {
			lines = append(lines, fmt.Sprintf("%s  %s", s.ID, s.Name))
		}
	}
	return strings.Join(lines, "\n")
}

func buildSignTable(styles table.Styles, width, height int) table.Model {
	t := table.New(
		table.WithColumns(signColumns()),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(styles)
	return t
}

func signColumns() []table.Column {
	return []table.Column{
		{Title: "Sign", Width: 14},
		{Title: "Success", Width: 9},
		{Title: "Avg Conf", Width: 9},
		{Title: "Correct", Width: 7},
		{Title: "Total", Width: 6},
		{Title: "Trend", Width: 12},
	}
}

func (m *Model) applySignTable(width, height int) {
	rows := buildSignRows(m.report.SignsAll, m.signTrends())
	m.signTable.SetRows(rows)
	m.signLayout.rowCount = len(rows)
	m.signLayout.width = 0
	m.setSignTableSize(width, height)
}

func (m *Model) signTrends() map[model.Sign]string {
	if len(m.report.Sessions) == 0 || len(m.report.SignsAll) == 0 {
		return nil
	}
	all := make([]model.Sign, len(m.report.SignsAll))
	for i, agg := range m.report.SignsAll {
		all[i] = agg.Sign
	}
	perSession, err := m.store.ListSignStatsForSessions(context.Background(), m.report.WindowSessionIDs, all)
	if err != nil {
		return nil
	}
	out := make(map[model.Sign]string, len(all))
	for _, s := range all {
		var series []float64
		for _, id := range m.report.WindowSessionIDs {
			if st, ok := perSession[id][s]; ok && st.TotalAttempts > 0 {
				series = append(series, st.SuccessRate*100)
			}
		}
		out[s] = stats.Sparkline(series)
	}
	return out
}

func buildSignRows(aggs []model.SignStats, trends map[model.Sign]string) []table.Row {
	sorted := append([]model.SignStats(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalAttempts == sorted[j].TotalAttempts {
			return sorted[i].Sign < sorted[j].Sign
		}
		return sorted[i].TotalAttempts > sorted[j].TotalAttempts
	})
	rows := make([]table.Row, 0, len(sorted))
	for _, agg := range sorted {
		rows = append(rows, table.Row{
			signs.DisplayText(agg.Sign),
			fmt.Sprintf("%.1f%%", agg.SuccessRate*100),
			fmt.Sprintf("%.1f%%", agg.AverageConfidence*100),
			fmt.Sprintf("%d", agg.SuccessfulAttempts),
			fmt.Sprintf("%d", agg.TotalAttempts),
			trends[agg.Sign],
		})
	}
	return rows
}

func (m *Model) setSignTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.signLayout.width == width && m.signLayout.height == viewportHeight {
		return
	}
	m.signLayout.width = width
	m.signLayout.height = viewportHeight
	m.signTable.SetWidth(width)
	m.signTable.SetHeight(viewportHeight)
}

func renderSignCurves(th theme, sessions []model.SessionAggregate, selected []model.Sign, perSession map[int64]map[model.Sign]model.SignStats, window, width int, errMsg string) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	if errMsg != "" {
		return fmt.Sprintf("Failed to load sign curves: %s", errMsg)
	}
	if len(selected) == 0 {
		return "No signs selected. Press Enter to pick signs."
	}
	header := th.header.Render("Signs: " + joinSigns(selected))
	var buf bytes.Buffer
	if err := stats.RenderSignCurves(&buf, sessions, perSession, selected, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render sign curves: %v", err)
	}
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) startSignInput() (tea.Model, tea.Cmd) {
	m.signInputMode = true
	m.signInputError = ""
	names := make([]string, len(m.signSelection))
	for i, s := range m.signSelection {
		names[i] = string(s)
	}
	m.signInput.SetValue(strings.Join(names, ", "))
	return m, m.signInput.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) updateSignInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.signInputMode = false
		m.signInputError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applySignInput(); err != nil {
			m.signInputError = err.Error()
			return m, nil
		}
		m.signInputMode = false
		m.signInputError = ""
		m.loadSignPerSession()
		m.renderTabContents()
		return m, nil
	}
	var cmd tea.Cmd
	m.signInput, cmd = m.signInput.Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	student := strings.TrimSpace(m.filterInputs[0].Value())

	var sign model.Sign
	if raw := strings.TrimSpace(m.filterInputs[1].Value()); raw != "" {
		parsed, err := signs.Parse(raw)
		if err != nil {
			return err
		}
		sign = parsed
	}

	var since *time.Time
	if raw := strings.TrimSpace(m.filterInputs[2].Value()); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	last := 0
	if raw := strings.TrimSpace(m.filterInputs[3].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	window := m.cfg.CurveWindow
	if raw := strings.TrimSpace(m.filterInputs[4].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}

	m.cfg = model.StatsConfig{
		StudentID:   student,
		Sign:        sign,
		Since:       since,
		Last:        last,
		CurveWindow: window,
	}
	return nil
}

func (m *Model) applySignInput() error {
	selected, err := ParseSignList(m.signInput.Value())
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		m.signSelectionCustom = false
		m.signSelection = stats.MostPracticed(m.report.SignsAll, defaultSignTop)
		return nil
	}
	m.signSelectionCustom = true
	m.signSelection = selected
	return nil
}

// ParseSignList parses a comma or space separated list of signs.
func ParseSignList(input string) ([]model.Sign, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]model.Sign, 0, len(fields))
	seen := map[model.Sign]struct{}{}
	for _, f := range fields {
		s, err := signs.Parse(f)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func (m *Model) renderSignModal() string {
	body := []string{
		m.theme.cardValue.Render("Select Signs"),
		m.signInput.View(),
		m.theme.header.Render("Separate signs with commas. Leave empty for the most practiced."),
		m.theme.header.Render("Enter to apply / Esc to cancel"),
	}
	if m.signInputError != "" {
		body = append(body, m.theme.err.Render(m.signInputError))
	}
	box := m.theme.modal.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) loadSignPerSession() {
	m.signErrMsg = ""
	m.signPerSession = nil
	if len(m.report.Sessions) == 0 || len(m.signSelection) == 0 {
		return
	}
	ids := make([]int64, len(m.report.Sessions))
	for i, s := range m.report.Sessions {
		ids[i] = s.SessionID
	}
	perSession, err := m.store.ListSignStatsForSessions(context.Background(), ids, m.signSelection)
	if err != nil {
		m.signErrMsg = err.Error()
		return
	}
	m.signPerSession = perSession
}

func joinSigns(list []model.Sign) string {
	names := make([]string, len(list))
	for i, s := range list {
		names[i] = signs.DisplayText(s)
	}
	return strings.Join(names, ", ")
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width) - 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
