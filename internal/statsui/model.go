// Package statsui provides the Bubble Tea analytics dashboard.
package statsui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/analytics"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/api"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/auth"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/history"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

const (
	tabOverview = iota
	tabTrends
	tabBreakdown
	tabHistory
)

const (
	pageSize   = 10
	plotHeight = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea analytics dashboard.
type Model struct {
	client *api.Client
	gate   *auth.Gate
	cache  *history.Cache

	filter     model.Filter
	timeMetric analytics.TimeMetric
	snapshot   analytics.Snapshot

	breakdown      model.Breakdown
	breakdownToken uint64
	breakdownErr   string

	tabs      []string
	activeTab int
	viewports []viewport.Model

	historyTable table.Model
	page         int
	searchInput  textinput.Model
	searching    bool
	searchTerm   string

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int

	confirmDeleteID int64
	detailTitle     string
	detailLines     []string
	detailOpen      bool

	errMsg   string
	loading  bool
	needAuth bool

	width  int
	height int
}

type loadedMsg struct {
	records []model.SessionRecord
	err     error
}

type authMsg struct {
	ok  bool
	err error
}

type breakdownMsg struct {
	token uint64
	data  model.Breakdown
	err   error
}

type detailMsg struct {
	record model.SessionRecord
	cards  []model.CardDetail
	err    error
}

type deleteDoneMsg struct {
	id  int64
	err error
}

type tierTickMsg struct{}

type tierDoneMsg struct {
	token uint64
	tier  model.TierInfo
	err   error
}

// NewModel constructs the dashboard model.
func NewModel(client *api.Client, gate *auth.Gate, filter model.Filter) *Model {
	searchInput := textinput.New()
	searchInput.Prompt = "Search: "

	m := &Model{
		client:      client,
		gate:        gate,
		cache:       history.NewCache(),
		filter:      filter,
		tabs:        []string{"Overview", "Trends", "Breakdown", "History"},
		page:        1,
		loading:     true,
		searchInput: searchInput,
	}
	m.filterInputs = []textinput.Model{
		newFilterInput("Last N sessions (empty = all): "),
		newFilterInput("Last N days (empty = all): "),
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.historyTable = buildHistoryTable(nil, 0, 1)
	return m
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.authCmd(), tierTick())
}

func tierTick() tea.Cmd {
	return tea.Tick(auth.PollInterval, func(time.Time) tea.Msg {
		return tierTickMsg{}
	})
}

func (m *Model) authCmd() tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		ok, err := gate.SilentLogin(context.Background())
		return authMsg{ok: ok, err: err}
	}
}

func (m *Model) loadCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		records, err := client.ListSessions(context.Background())
		return loadedMsg{records: records, err: err}
	}
}

func (m *Model) breakdownCmd(token uint64, ids []int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if len(ids) == 0 {
			return breakdownMsg{token: token}
		}
		data, err := client.TypeDifficultyBreakdown(context.Background(), ids)
		return breakdownMsg{token: token, data: data, err: err}
	}
}

func (m *Model) detailCmd(record model.SessionRecord) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		cards, err := client.GetFlashcards(context.Background(), record.ID)
		return detailMsg{record: record, cards: cards, err: err}
	}
}

func (m *Model) deleteCmd(id int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.DeleteSession(context.Background(), id)
		return deleteDoneMsg{id: id, err: err}
	}
}

func (m *Model) tierCmd(token uint64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		tier, err := client.TierInfo(context.Background())
		return tierDoneMsg{token: token, tier: tier, err: err}
	}
}

// recompute rebuilds every derived view from the cache and the current
// filter in one step, then kicks off the remote breakdown for the same
// subset. Nothing renders a mix of old and new filters.
func (m *Model) recompute() tea.Cmd {
	m.snapshot = analytics.BuildSnapshot(m.cache.Records(), m.filter, m.timeMetric, time.Now())
	m.page = m.cache.ClampPage(m.page, pageSize)
	m.rebuildHistoryTable()
	m.renderTabContents()
	m.breakdownToken++
	return m.breakdownCmd(m.breakdownToken, m.snapshot.SessionIDs())
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

	case authMsg:
		if !msg.ok {
			m.needAuth = true
			m.loading = false
			if msg.err != nil {
				m.errMsg = msg.err.Error()
			}
			return m, nil
		}
		token := m.gate.BeginTierPoll()
		return m, tea.Batch(m.loadCmd(), m.tierCmd(token))

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrAuthRequired) {
				m.needAuth = true
				return m, nil
			}
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.cache.SetRecords(msg.records)
		return m, m.recompute()

	case breakdownMsg:
		if msg.token != m.breakdownToken {
			return m, nil
		}
		if msg.err != nil {
			m.breakdownErr = msg.err.Error()
		} else {
			m.breakdownErr = ""
			m.breakdown = msg.data
		}
		m.renderTabContents()
		return m, nil

	case detailMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.openDetail(msg.record, msg.cards)
		return m, nil

	case deleteDoneMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("failed to delete session: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.cache.Remove(msg.id)
		return m, m.recompute()

	case tierTickMsg:
		if !m.gate.Authenticated() {
			return m, tierTick()
		}
		token := m.gate.BeginTierPoll()
		return m, tea.Batch(m.tierCmd(token), tierTick())

	case tierDoneMsg:
		m.gate.CompleteTierPoll(msg.token, msg.tier, msg.err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.needAuth {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.detailOpen {
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			m.detailOpen = false
		}
		return m, nil
	}
	if m.confirmDeleteID != 0 {
		switch msg.String() {
		case "y", "Y":
			id := m.confirmDeleteID
			m.confirmDeleteID = 0
			return m, m.deleteCmd(id)
		default:
			m.confirmDeleteID = 0
		}
		return m, nil
	}
	if m.filterMode {
		return m.updateFilterMode(msg)
	}
	if m.searching {
		return m.updateSearchMode(msg)
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "/":
		return m.startFilterMode()
	case "m":
		if m.timeMetric == analytics.TimeMetricDuration {
			m.timeMetric = analytics.TimeMetricPerQuestion
		} else {
			m.timeMetric = analytics.TimeMetricDuration
		}
		return m, m.recompute()
	case "r":
		m.loading = true
		return m, m.loadCmd()
	}
	if m.activeTab == tabHistory {
		return m.handleHistoryKey(msg)
	}
	vp := m.viewports[m.activeTab]
	var cmd tea.Cmd
	vp, cmd = vp.Update(msg)
	m.viewports[m.activeTab] = vp
	return m, cmd
}

func (m *Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		m.searching = true
		m.searchInput.Focus()
		return m, nil
	case "n", "pgdown":
		if m.searchTerm == "" && m.page < m.cache.TotalPages(pageSize) {
			m.page++
			m.rebuildHistoryTable()
		}
		return m, nil
	case "p", "pgup":
		if m.searchTerm == "" && m.page > 1 {
			m.page--
			m.rebuildHistoryTable()
		}
		return m, nil
	case "d":
		if record, ok := m.selectedRecord(); ok {
			m.confirmDeleteID = record.ID
		}
		return m, nil
	case "enter":
		if record, ok := m.selectedRecord(); ok {
			return m, m.detailCmd(record)
		}
		return m, nil
	case "esc":
		if m.searchTerm != "" {
			m.searchTerm = ""
			m.searchInput.SetValue("")
			m.rebuildHistoryTable()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.historyTable, cmd = m.historyTable.Update(msg)
	return m, cmd
}

func (m *Model) updateSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.searchInput.Blur()
		m.searchTerm = strings.TrimSpace(m.searchInput.Value())
		m.rebuildHistoryTable()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue(m.searchTerm)
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) startFilterMode() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterIndex = 0
	if m.filter.Last > 0 {
		m.filterInputs[0].SetValue(strconv.Itoa(m.filter.Last))
	} else {
		m.filterInputs[0].SetValue("")
	}
	if m.filter.Days > 0 {
		m.filterInputs[1].SetValue(strconv.Itoa(m.filter.Days))
	} else {
		m.filterInputs[1].SetValue("")
	}
	m.filterInputs[0].Focus()
	m.filterInputs[1].Blur()
	return m, nil
}

func (m *Model) updateFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		return m, nil
	case tea.KeyTab, tea.KeyDown, tea.KeyUp:
		m.filterInputs[m.filterIndex].Blur()
		m.filterIndex = (m.filterIndex + 1) % len(m.filterInputs)
		m.filterInputs[m.filterIndex].Focus()
		return m, nil
	case tea.KeyEnter:
		last, err := parseFilterValue(m.filterInputs[0].Value())
		if err != nil {
			m.errMsg = "last must be a non-negative number"
			return m, nil
		}
		days, err := parseFilterValue(m.filterInputs[1].Value())
		if err != nil {
			m.errMsg = "days must be a non-negative number"
			return m, nil
		}
		m.errMsg = ""
		m.filterMode = false
		m.filter = model.Filter{Last: last, Days: days}
		return m, m.recompute()
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func parseFilterValue(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid filter value %q", value)
	}
	return n, nil
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
}

func (m *Model) selectedRecord() (model.SessionRecord, bool) {
	row := m.historyTable.SelectedRow()
	if row == nil {
		return model.SessionRecord{}, false
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return model.SessionRecord{}, false
	}
	return m.cache.Get(id)
}

func (m *Model) visibleRecords() []model.SessionRecord {
	if m.searchTerm != "" {
		return m.cache.Search(m.searchTerm, pageSize)
	}
	records, err := m.cache.Page(m.page, pageSize)
	if err != nil {
		return nil
	}
	return records
}

func (m *Model) rebuildHistoryTable() {
	_, bodyHeight, _ := m.layoutHeights()
	m.historyTable = buildHistoryTable(m.visibleRecords(), m.width, bodyHeight-3)
}

func buildHistoryTable(records []model.SessionRecord, width, height int) table.Model {
	if height < 1 {
		height = 1
	}
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Title", Width: 34},
		{Title: "Created", Width: 16},
		{Title: "Questions", Width: 9},
		{Title: "Score", Width: 6},
		{Title: "Duration", Width: 9},
	}
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			strconv.FormatInt(r.ID, 10),
			r.Title,
			r.CreatedAt.Format("2006-01-02 15:04"),
			strconv.Itoa(r.TotalQuestions),
			fmt.Sprintf("%d%%", r.ScorePercent),
			formatDuration(r.DurationSeconds),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(height),
		table.WithFocused(true),
	)
	return t
}

func (m *Model) openDetail(record model.SessionRecord, cards []model.CardDetail) {
	m.detailTitle = record.Title
	lines := []string{
		fmt.Sprintf("%s · %d questions · %d%%", record.CreatedAt.Format("2006-01-02 15:04"), record.TotalQuestions, record.ScorePercent),
		"",
	}
	for i, card := range cards {
		status := "✗"
		if card.IsCorrect {
			status = "✓"
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s", i+1, status, card.Prompt))
		for j, option := range card.Options {
			marker := "   "
			switch {
			case j == card.CorrectAnswer:
				marker = " ✓ "
			case card.UserAnswer != nil && *card.UserAnswer == j:
				marker = " ✗ "
			}
			lines = append(lines, fmt.Sprintf("  %s%s", marker, option))
		}
		lines = append(lines, "")
	}
	m.detailLines = lines
	m.detailOpen = true
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.rebuildHistoryTable()
}

func (m *Model) renderTabContents() {
	m.viewports[tabOverview].SetContent(m.renderOverview())
	m.viewports[tabTrends].SetContent(m.renderTrends())
	m.viewports[tabBreakdown].SetContent(m.renderBreakdown())
}

func (m *Model) renderOverview() string {
	s := m.snapshot
	cards := []string{
		statCard("Sessions", strconv.Itoa(s.Summary.Sessions)),
		statCard("Avg score", fmt.Sprintf("%.1f%%", s.Summary.AvgScore)),
		statCard("Questions", strconv.Itoa(s.Summary.TotalQuestions)),
		statCard("Success rate", fmt.Sprintf("%.0f%%", s.Summary.SuccessRate)),
	}
	timeCards := []string{
		statCard("Study time", formatDuration(s.Time.TotalSeconds)),
		statCard("Avg session", formatDuration(s.Time.AvgSessionSeconds)),
		statCard("Questions/hour", fmt.Sprintf("%.1f", s.Time.QuestionsPerHour)),
		statCard("Avg per question", formatDuration(s.Time.AvgSecondsPerQuestion)),
	}
	var scores []float64
	for _, p := range s.Trend {
		scores = append(scores, p.Score)
	}
	spark := ""
	if len(scores) > 0 {
		spark = "\nScores: " + analytics.Sparkline(scores)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, timeCards...) + spark
}

func statCard(title, value string) string {
	content := cardTitleStyle.Render(title) + "\n" + cardValueStyle.Render(value)
	return cardStyle.Render(content)
}

func (m *Model) renderTrends() string {
	if len(m.snapshot.Trend) == 0 {
		return "No sessions in the selected window."
	}
	scores := make([]float64, len(m.snapshot.Trend))
	times := make([]float64, len(m.snapshot.Trend))
	for i, p := range m.snapshot.Trend {
		scores[i] = p.Score
		times[i] = p.TimeValue
	}
	timeName := "Session duration (s)"
	if m.timeMetric == analytics.TimeMetricPerQuestion {
		timeName = "Seconds per question"
	}
	var buf bytes.Buffer
	width := analytics.PlotWidthFor(m.width)
	scoreSeries := []analytics.Series{
		{Name: "Score", Values: scores, Percent: true},
	}
	if len(scores) >= 5 {
		scoreSeries = append(scoreSeries, analytics.Series{
			Name:    "Score (5-session avg)",
			Values:  analytics.MovingAverage(scores, 5),
			Percent: true,
		})
	}
	if err := analytics.PlotSeries(&buf, "Score trend", scoreSeries, width, plotHeight); err != nil {
		return err.Error()
	}
	buf.WriteString("\n")
	if err := analytics.PlotSeries(&buf, "Time trend (m toggles metric)", []analytics.Series{
		{Name: timeName, Values: times},
	}, width, plotHeight); err != nil {
		return err.Error()
	}
	return buf.String()
}

func (m *Model) renderBreakdown() string {
	if m.breakdownErr != "" {
		return errorStyle.Render("Breakdown unavailable: " + m.breakdownErr)
	}
	if len(m.snapshot.Sessions) == 0 {
		return "No sessions in the selected window."
	}
	var b strings.Builder
	b.WriteString("Accuracy by question type\n")
	for _, line := range breakdownTable(m.breakdown.Kinds) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\nAccuracy by difficulty\n")
	for _, line := range breakdownTable(m.breakdown.Difficulties) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func breakdownTable(groups []model.GroupAccuracy) []string {
	if len(groups) == 0 {
		return []string{"  no data"}
	}
	headers := []string{"Group", "Accuracy", "Correct", "Total"}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.Label,
			fmt.Sprintf("%.1f%%", g.Accuracy()),
			strconv.Itoa(g.Correct),
			strconv.Itoa(g.Total),
		})
	}
	return analytics.Table(headers, rows, map[int]bool{1: true, 2: true, 3: true})
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.needAuth {
		msg := "Sign in first: studybuddy login --email you@example.com"
		if m.errMsg != "" {
			msg += "\n" + errorStyle.Render(m.errMsg)
		}
		return msg
	}
	if m.loading {
		return "Loading session history..."
	}
	if m.detailOpen {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderDetailModal())
	}
	if m.confirmDeleteID != 0 {
		prompt := fmt.Sprintf("Delete session %d? This cannot be undone. (y/N)", m.confirmDeleteID)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modalStyle.Render(prompt))
	}
	header := m.renderHeader()
	body := m.renderBody()
	footer := m.renderFooter()
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderDetailModal() string {
	var b strings.Builder
	b.WriteString(cardValueStyle.Render(m.detailTitle))
	b.WriteByte('\n')
	maxLines := m.height - 8
	if maxLines < 5 {
		maxLines = 5
	}
	lines := m.detailLines
	if len(lines) > maxLines {
		lines = append(append([]string{}, lines[:maxLines]...), "…")
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render("esc close"))
	return modalStyle.Render(b.String())
}

func (m *Model) renderHeader() string {
	nav := make([]string, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			nav[i] = activeNavStyle.Render(tab)
		} else {
			nav[i] = inactiveNavStyle.Render(tab)
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Center, nav...)
	info := m.filterLabel()
	if tier := m.gate.TierLine(); tier != "" {
		info += "   " + tier
	}
	return line + "\n" + headerStyle.Render(info)
}

func (m *Model) filterLabel() string {
	last := "all"
	if m.filter.Last > 0 {
		last = strconv.Itoa(m.filter.Last)
	}
	days := "all"
	if m.filter.Days > 0 {
		days = fmt.Sprintf("%dd", m.filter.Days)
	}
	return fmt.Sprintf("Filter: last %s · window %s · %d of %d sessions", last, days, len(m.snapshot.Sessions), m.cache.Len())
}

func (m *Model) renderBody() string {
	_, bodyHeight, _ := m.layoutHeights()
	if m.filterMode {
		lines := []string{"Set analytics filters (tab switches, enter applies, esc cancels):", ""}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		return fitLines(strings.Join(lines, "\n"), bodyHeight)
	}
	if m.activeTab == tabHistory {
		return fitLines(m.renderHistory(), bodyHeight)
	}
	return fitLines(m.viewports[m.activeTab].View(), bodyHeight)
}

func (m *Model) renderHistory() string {
	var b strings.Builder
	if m.searching || m.searchTerm != "" {
		b.WriteString(m.searchInput.View())
		b.WriteByte('\n')
	}
	b.WriteString(m.historyTable.View())
	b.WriteByte('\n')
	if m.searchTerm != "" {
		b.WriteString(headerStyle.Render(fmt.Sprintf("search %q — paging disabled, esc clears", m.searchTerm)))
	} else {
		b.WriteString(headerStyle.Render(fmt.Sprintf("page %d/%d", m.page, maxInt(m.cache.TotalPages(pageSize), 1))))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	help := "←/→ tabs · / filter · r refresh · q quit"
	if m.activeTab == tabHistory {
		help = "↑/↓ select · enter detail · d delete · s search · n/p page · " + help
	}
	footer := headerStyle.Render(help)
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg) + "\n" + footer
	}
	return footer
}

func fitLines(content string, height int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
