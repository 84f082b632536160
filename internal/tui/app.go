package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jules-cli/internal/app"
)

// — state ———————————————————————————————————————————————————————————————————

type appState int

const (
	stateList appState = iota
	stateDetail
	stateNewSession
)

// — styles ——————————————————————————————————————————————————————————————————

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	dimStyle  = lipgloss.NewStyle().Faint(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(2)

	labelStyle = lipgloss.NewStyle().Faint(true)

	detailHeadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 3).
			Width(64)
)

// — messages ————————————————————————————————————————————————————————————————

type sessionsLoadedMsg struct {
	sessions []app.Session
}

type moreSessionsLoadedMsg struct {
	sessions []app.Session
}

type sourcesLoadedMsg struct {
	sources []app.Source
}

type moreSourcesLoadedMsg struct {
	sources []app.Source
}

type activitiesLoadedMsg struct {
	session    string
	activities []app.Activity
	silent     bool
}

type sessionCreatedMsg struct {
	session *app.Session
}

type planApprovedMsg struct {
	err error
}

type messageSentMsg struct {
	err error
}

type exportDoneMsg struct {
	path string
	err  error
}

type pollTickMsg struct{}

type onlineMsg struct {
	online bool
}

// — list item ———————————————————————————————————————————————————————————————

type sessionItem struct {
	s  app.Session
	tr app.Translator
}

func (i sessionItem) Title() string {
	title := i.s.Title
	if title == "" {
		title = i.s.Name
	}
	return title
}

func (i sessionItem) Description() string {
	state := i.tr(i.s.State.LabelKey())
	if pr := i.s.PullRequestURL(); pr != "" {
		return state + " · " + pr
	}
	return state
}

func (i sessionItem) FilterValue() string { return i.s.Title }

// — model ———————————————————————————————————————————————————————————————————

type Model struct {
	client *app.Client
	tr     app.Translator

	width  int
	height int
	state  appState

	list     list.Model
	sessions []app.Session
	offline  bool

	// detail
	current    *app.Session
	activities []app.Activity
	timeline   viewport.Model
	reply      textinput.Model
	replying   bool
	pending    string // plan id awaiting approval, "" when none
	notice     string // transient confirmation line, e.g. export path

	create createForm

	pollInterval time.Duration
	exportDir    string
}

type Options struct {
	Client          *app.Client
	Translator      app.Translator
	PollIntervalSec int
	ExportDir       string
}

func New(opts Options) Model {
	tr := opts.Translator
	if tr == nil {
		tr = app.NewTranslator(app.LangEnglish)
	}

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = tr("sessions")
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	reply := textinput.New()
	reply.Placeholder = tr("replyPlaceholder")
	reply.CharLimit = 2000

	interval := time.Duration(opts.PollIntervalSec) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return Model{
		client:       opts.Client,
		tr:           tr,
		list:         l,
		reply:        reply,
		create:       newCreateForm(tr),
		pollInterval: interval,
		exportDir:    opts.ExportDir,
	}
}

// — commands ————————————————————————————————————————————————————————————————

func (m Model) fetchSessionsCmd(silent bool) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return sessionsLoadedMsg{sessions: c.FetchSessions(context.Background(), silent)}
	}
}

func (m Model) fetchMoreSessionsCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return moreSessionsLoadedMsg{sessions: c.FetchMoreSessions(context.Background())}
	}
}

func (m Model) fetchSourcesCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return sourcesLoadedMsg{sources: c.FetchSources(context.Background(), false)}
	}
}

func (m Model) fetchMoreSourcesCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return moreSourcesLoadedMsg{sources: c.FetchMoreSources(context.Background())}
	}
}

func (m Model) fetchActivitiesCmd(sessionName string, silent bool) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return activitiesLoadedMsg{
			session:    sessionName,
			activities: c.FetchActivities(context.Background(), sessionName, silent),
			silent:     silent,
		}
	}
}

func (m Model) approvePlanCmd(sessionName string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return planApprovedMsg{err: c.ApprovePlan(context.Background(), sessionName)}
	}
}

func (m Model) sendMessageCmd(sessionName, text string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return messageSentMsg{err: c.SendMessage(context.Background(), sessionName, text)}
	}
}

func (m Model) createSessionCmd(opts app.CreateSessionOptions) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return sessionCreatedMsg{session: c.CreateSession(context.Background(), opts)}
	}
}

func (m Model) exportCmd() tea.Cmd {
	sess := *m.current
	acts := m.activities
	dir := m.exportDir
	return func() tea.Msg {
		path, err := app.SaveExport(dir, sess, acts, app.ExportMarkdown)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m Model) checkOnlineCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return onlineMsg{online: app.Online(context.Background(), c.BaseURL())}
	}
}

func (m Model) pollCmd() tea.Cmd {
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m *Model) buildItems() {
	items := make([]list.Item, len(m.sessions))
	for i, s := range m.sessions {
		items[i] = sessionItem{s: s, tr: m.tr}
	}
	m.list.SetItems(items)
}

func (m Model) selectedSession() *app.Session {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		return nil
	}
	s := item.s
	return &s
}

// — tea.Model ———————————————————————————————————————————————————————————————

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchSessionsCmd(false), m.checkOnlineCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-3)
		m.timeline.Width = msg.Width - 4
		m.timeline.Height = msg.Height - 8
		return m, nil

	case sessionsLoadedMsg:
		m.sessions = msg.sessions
		m.buildItems()
		return m, nil

	case moreSessionsLoadedMsg:
		m.sessions = msg.sessions
		m.buildItems()
		return m, nil

	case sourcesLoadedMsg:
		m.create.setSources(msg.sources)
		return m, nil

	case moreSourcesLoadedMsg:
		m.create.setSources(msg.sources)
		return m, nil

	case activitiesLoadedMsg:
		return m.onActivitiesLoaded(msg)

	case sessionCreatedMsg:
		if msg.session == nil {
			// Error slot already carries the reason; stay on the form.
			return m, nil
		}
		m.state = stateDetail
		m.current = msg.session
		m.activities = nil
		m.pending = ""
		m.notice = ""
		return m, tea.Batch(
			m.fetchSessionsCmd(true),
			m.fetchActivitiesCmd(msg.session.Name, false),
			m.pollCmd(),
		)

	case planApprovedMsg:
		if msg.err != nil || m.current == nil {
			return m, nil
		}
		// Refresh only chains off a successful approval.
		return m, m.fetchActivitiesCmd(m.current.Name, false)

	case messageSentMsg:
		if msg.err != nil || m.current == nil {
			return m, nil
		}
		m.reply.Reset()
		m.replying = false
		m.reply.Blur()
		return m, m.fetchActivitiesCmd(m.current.Name, false)

	case exportDoneMsg:
		if msg.err != nil {
			m.notice = errStyle.Render(msg.err.Error())
			return m, nil
		}
		m.notice = okStyle.Render("Saved " + msg.path)
		return m, nil

	case onlineMsg:
		m.offline = !msg.online
		return m, nil

	case pollTickMsg:
		if m.state != stateDetail || m.current == nil {
			return m, nil
		}
		if m.current.State.Terminal() && len(m.activities) > 0 {
			// Finished sessions stop changing; keep ticking in case the user
			// switches sessions, but skip the fetch.
			return m, m.pollCmd()
		}
		return m, tea.Batch(m.fetchActivitiesCmd(m.current.Name, true), m.pollCmd())
	}

	switch m.state {
	case stateDetail:
		return m.updateDetail(msg)
	case stateNewSession:
		return m.updateCreate(msg)
	default:
		return m.updateList(msg)
	}
}

func (m Model) onActivitiesLoaded(msg activitiesLoadedMsg) (tea.Model, tea.Cmd) {
	if m.current == nil || msg.session != m.current.Name {
		return m, nil
	}
	if msg.silent && !app.NewerActivities(m.activities, msg.activities) {
		return m, nil
	}
	atBottom := m.timeline.AtBottom()
	m.activities = msg.activities
	m.pending = app.PendingPlanID(m.activities)
	m.timeline.SetContent(m.renderTimeline())
	if atBottom {
		m.timeline.GotoBottom()
	}
	return m, nil
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.fetchSessionsCmd(false)
		case "m":
			if m.client.HasMoreSessions() {
				return m, m.fetchMoreSessionsCmd()
			}
			return m, nil
		case "n":
			m.state = stateNewSession
			m.create.reset()
			return m, tea.Batch(m.fetchSourcesCmd(), textinput.Blink)
		case "x":
			m.client.ClearError()
			return m, nil
		case "enter":
			s := m.selectedSession()
			if s == nil {
				return m, nil
			}
			m.state = stateDetail
			m.current = s
			m.activities = nil
			m.pending = ""
			m.notice = ""
			m.timeline.SetContent("")
			return m, tea.Batch(m.fetchActivitiesCmd(s.Name, false), m.pollCmd())
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	var base string
	switch m.state {
	case stateDetail:
		base = m.viewDetail()
	default:
		base = m.viewList()
	}

	if banner := m.client.Err(); banner != "" {
		base = bannerStyle.Render(m.tr("error")+": "+banner+"  (x)") + "\n" + base
	}

	if m.state == stateNewSession {
		modal := m.create.view()
		if banner := m.client.Err(); banner != "" {
			modal += "\n" + errStyle.Render(banner)
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			modalStyle.Render(modal))
	}
	return base
}

func (m Model) viewList() string {
	if m.client.IsLoading() && len(m.sessions) == 0 {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.tr("loading"))
	}
	if len(m.sessions) == 0 {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			m.tr("noSessions") + "\n" + dimStyle.Render(m.tr("noSessionsHint")))
	}

	help := "enter: open · n: new · r: refresh"
	if m.client.HasMoreSessions() {
		help += " · m: more"
	}
	help += " · q: quit"
	if m.offline {
		help += "   " + warnStyle.Render("offline")
	}
	return m.list.View() + "\n" + helpStyle.Render(help)
}
