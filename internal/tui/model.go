package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/api"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/auth"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/history"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	optionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5AD787"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Params are the generation settings active for this run.
type Params struct {
	Count      int
	Kind       model.QuestionKind
	Difficulty model.Difficulty
}

// Model implements the Bubble Tea study UI: notes in, questions out,
// answer, reveal, save.
type Model struct {
	ctrl   *session.Controller
	gate   *auth.Gate
	client *api.Client
	cache  *history.Cache
	params Params

	notes        textarea.Model
	editingNotes bool

	loginInput  textinput.Model
	needLogin   bool
	authChecked bool

	current       int
	status        string
	statusIsError bool

	width  int
	height int
}

type authCheckedMsg struct {
	ok  bool
	err error
}

type loginDoneMsg struct {
	user model.User
	err  error
}

type generateDoneMsg struct {
	intent    session.GenerateIntent
	questions []model.Question
	err       error
}

type saveDoneMsg struct {
	intent session.SaveIntent
	err    error
}

type refreshDoneMsg struct {
	records []model.SessionRecord
	err     error
}

type tierTickMsg struct{}

type tierDoneMsg struct {
	token uint64
	tier  model.TierInfo
	err   error
}

// NewModel constructs the study TUI model.
func NewModel(client *api.Client, gate *auth.Gate, params Params, initialNotes string) *Model {
	notes := textarea.New()
	notes.Placeholder = "Paste or type your study notes..."
	notes.SetValue(initialNotes)
	notes.Focus()

	loginInput := textinput.New()
	loginInput.Prompt = "Email: "
	loginInput.Placeholder = "you@example.com"

	return &Model{
		ctrl:         session.NewController(),
		gate:         gate,
		client:       client,
		cache:        history.NewCache(),
		params:       params,
		notes:        notes,
		editingNotes: true,
		loginInput:   loginInput,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.silentLoginCmd(), tierTick())
}

func tierTick() tea.Cmd {
	return tea.Tick(auth.PollInterval, func(time.Time) tea.Msg {
		return tierTickMsg{}
	})
}

func (m *Model) silentLoginCmd() tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		ok, err := gate.SilentLogin(context.Background())
		return authCheckedMsg{ok: ok, err: err}
	}
}

func (m *Model) loginCmd(email string) tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		user, err := gate.Login(context.Background(), email)
		return loginDoneMsg{user: user, err: err}
	}
}

func (m *Model) generateCmd(intent session.GenerateIntent) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		questions, err := client.GenerateQuestions(context.Background(), intent.Request)
		return generateDoneMsg{intent: intent, questions: questions, err: err}
	}
}

func (m *Model) saveCmd(intent session.SaveIntent) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.SaveSession(context.Background(), intent.Payload)
		return saveDoneMsg{intent: intent, err: err}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		records, err := client.ListSessions(context.Background())
		return refreshDoneMsg{records: records, err: err}
	}
}

func (m *Model) tierCmd(token uint64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		tier, err := client.TierInfo(context.Background())
		return tierDoneMsg{token: token, tier: tier, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.notes.SetWidth(m.contentWidth())
		return m, nil

	case authCheckedMsg:
		m.authChecked = true
		if msg.ok {
			m.needLogin = false
			token := m.gate.BeginTierPoll()
			return m, tea.Batch(m.tierCmd(token), m.refreshCmd())
		}
		m.needLogin = true
		m.loginInput.Focus()
		if msg.err != nil && !errors.Is(msg.err, api.ErrAuthRequired) {
			m.setError(msg.err.Error())
		}
		return m, nil

	case loginDoneMsg:
		if msg.err != nil {
			m.setError(msg.err.Error())
			return m, nil
		}
		m.needLogin = false
		m.setStatus(fmt.Sprintf("signed in as %s", msg.user.Email))
		token := m.gate.BeginTierPoll()
		return m, tea.Batch(m.tierCmd(token), m.refreshCmd())

	case generateDoneMsg:
		m.ctrl.CompleteGenerate(msg.intent, msg.questions, msg.err)
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrAuthRequired) {
				m.needLogin = true
				m.loginInput.Focus()
				return m, nil
			}
			m.setError(msg.err.Error())
			return m, nil
		}
		if m.ctrl.Phase() == model.PhaseReady {
			m.editingNotes = false
			m.notes.Blur()
			m.current = 0
			m.setStatus(fmt.Sprintf("%d questions ready", m.ctrl.Store().Len()))
		}
		return m, nil

	case saveDoneMsg:
		m.ctrl.CompleteSave(msg.intent, msg.err)
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrAuthRequired) {
				m.needLogin = true
				m.loginInput.Focus()
				return m, nil
			}
			m.setError(msg.err.Error())
			return m, nil
		}
		if m.ctrl.Phase() == model.PhaseSaved {
			m.setStatus("session saved")
			// Save completion strictly precedes the history refresh.
			return m, m.refreshCmd()
		}
		return m, nil

	case refreshDoneMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("failed to refresh history: %v", msg.err))
			return m, nil
		}
		m.cache.SetRecords(msg.records)
		return m, nil

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
	if m.needLogin {
		return m.handleLoginKey(msg)
	}
	if m.editingNotes {
		return m.handleNotesKey(msg)
	}
	return m.handleQuestionKey(msg)
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		email := strings.TrimSpace(m.loginInput.Value())
		if email == "" {
			m.setError("enter an email to sign in")
			return m, nil
		}
		return m, m.loginCmd(email)
	}
	var cmd tea.Cmd
	m.loginInput, cmd = m.loginInput.Update(msg)
	return m, cmd
}

func (m *Model) handleNotesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlG:
		return m.startGenerate()
	case tea.KeyEsc:
		if m.ctrl.Store().Len() > 0 {
			m.editingNotes = false
			m.notes.Blur()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m *Model) startGenerate() (tea.Model, tea.Cmd) {
	intent, err := m.ctrl.BeginGenerate(m.notes.Value(), m.params.Count, m.params.Kind, m.params.Difficulty)
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.setStatus("generating questions...")
	return m, m.generateCmd(intent)
}

func (m *Model) handleQuestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		if m.current > 0 {
			m.current--
		}
		return m, nil
	case "right", "l", "tab":
		if m.current < m.ctrl.Store().Len()-1 {
			m.current++
		}
		return m, nil
	case "enter", " ":
		if err := m.ctrl.RevealQuestion(m.current); err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.clearStatus()
		m.advanceIfRevealed()
		return m, nil
	case "s":
		return m.startSave()
	case "n":
		m.ctrl.NewSession()
		m.current = 0
		m.editingNotes = true
		m.notes.Focus()
		m.clearStatus()
		return m, nil
	case "e":
		m.editingNotes = true
		m.notes.Focus()
		return m, nil
	}
	if option, ok := optionForKey(msg.String()); ok {
		if err := m.ctrl.SelectAnswer(m.current, option); err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.clearStatus()
	}
	return m, nil
}

func (m *Model) startSave() (tea.Model, tea.Cmd) {
	intent, err := m.ctrl.BeginSave()
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.setStatus("saving session...")
	return m, m.saveCmd(intent)
}

// advanceIfRevealed moves the cursor to the next unrevealed question after a
// reveal so the answer flow stays keyboard-only.
func (m *Model) advanceIfRevealed() {
	store := m.ctrl.Store()
	for i := 0; i < store.Len(); i++ {
		idx := (m.current + 1 + i) % store.Len()
		if q, ok := store.Question(idx); ok && !q.Revealed {
			m.current = idx
			return
		}
	}
}

func optionForKey(key string) (int, bool) {
	switch key {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return int(key[0] - '1'), true
	case "t":
		return 0, true
	case "f":
		return 1, true
	}
	return 0, false
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusIsError = false
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusIsError = true
}

func (m *Model) clearStatus() {
	m.status = ""
}

func (m *Model) contentWidth() int {
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	if width > 100 {
		width = 100
	}
	return width
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.authChecked {
		return mutedStyle.Render("Checking sign-in...")
	}
	if m.needLogin {
		return m.viewLogin()
	}
	var body string
	if m.editingNotes {
		body = m.viewNotes()
	} else {
		body = m.viewQuestions()
	}
	return body + "\n" + m.viewFooter()
}

func (m *Model) viewLogin() string {
	lines := []string{
		titleStyle.Render("Study Buddy"),
		"",
		mutedStyle.Render("Sign in to generate questions and track your progress."),
		"",
		m.loginInput.View(),
	}
	if m.status != "" {
		lines = append(lines, "", m.statusLine())
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewNotes() string {
	header := titleStyle.Render("Study Buddy") + "  " +
		mutedStyle.Render(fmt.Sprintf("%d × %s · %s", m.params.Count, kindLabel(m.params.Kind), m.params.Difficulty))
	help := footerStyle.Render("ctrl+g generate · esc back to questions · ctrl+c quit")
	return strings.Join([]string{header, "", m.notes.View(), "", help}, "\n")
}

func (m *Model) viewQuestions() string {
	store := m.ctrl.Store()
	if store.Len() == 0 {
		return mutedStyle.Render("No questions yet. Press e to edit notes.")
	}
	q, _ := store.Question(m.current)
	width := m.contentWidth()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Question %d of %d", m.current+1, store.Len())))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("[%s · %s]", kindLabel(q.Kind), q.Difficulty)))
	b.WriteString("\n\n")
	for _, line := range wrapText(q.Prompt, width) {
		b.WriteString(promptStyle.Render(line))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for i, option := range q.Options {
		b.WriteString(m.renderOption(q, i, option, width))
		b.WriteByte('\n')
	}
	if q.Revealed {
		b.WriteByte('\n')
		if q.Correct() {
			b.WriteString(correctStyle.Render("Correct!"))
		} else {
			b.WriteString(wrongStyle.Render(fmt.Sprintf("Incorrect — the answer was %d.", q.CorrectIndex+1)))
		}
		b.WriteByte('\n')
	}
	if m.ctrl.Phase() == model.PhaseAllAnswered || m.ctrl.Phase() == model.PhaseSaved {
		b.WriteByte('\n')
		b.WriteString(titleStyle.Render(m.ctrl.ScoreLine()))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) renderOption(q model.Question, index int, option string, width int) string {
	marker := "  "
	style := optionStyle
	selected := q.UserAnswer != nil && *q.UserAnswer == index
	if selected {
		marker = "> "
		style = selectedStyle
	}
	if q.Revealed {
		switch {
		case index == q.CorrectIndex:
			style = correctStyle
		case selected:
			style = wrongStyle
		default:
			style = mutedStyle
		}
	}
	label := fmt.Sprintf("%s%d. %s", marker, index+1, option)
	lines := wrapText(label, width)
	for i := range lines {
		lines[i] = style.Render(lines[i])
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewFooter() string {
	store := m.ctrl.Store()
	segments := []string{}
	switch m.ctrl.Phase() {
	case model.PhaseGenerating:
		segments = append(segments, "generating...")
	case model.PhaseSaving:
		segments = append(segments, "saving...")
	case model.PhaseSaved:
		segments = append(segments, "saved · n new session")
	default:
		if store.Len() > 0 {
			answered := store.Len() - store.Unanswered()
			segments = append(segments, fmt.Sprintf("answered %d/%d · revealed %d/%d",
				answered, store.Len(), store.Len()-store.Unrevealed(), store.Len()))
		}
	}
	if compact := m.gate.TierLineCompact(); compact != "" {
		segments = append(segments, compact)
	}
	if m.cache.Loaded() {
		segments = append(segments, fmt.Sprintf("%d sessions saved", m.cache.Len()))
	}
	segments = append(segments, "1-9 answer · enter reveal · s save · n new · q quit")
	footer := footerStyle.Render(strings.Join(segments, "  |  "))
	if m.status != "" {
		return m.statusLine() + "\n" + footer
	}
	return footer
}

func (m *Model) statusLine() string {
	if m.statusIsError {
		return errorStyle.Render(m.status)
	}
	return mutedStyle.Render(m.status)
}

func kindLabel(kind model.QuestionKind) string {
	if kind == model.KindTrueFalse {
		return "true/false"
	}
	return "multiple choice"
}
