// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model of the medchat TUI.
//
// It routes on the session status: a spinner while the stored credential is
// checked, the login and register forms for anonymous sessions, and the
// sidebar with the chat, appointments and profile pages once signed in.
// Every failure any view reports arrives as a components.NoticeMsg and is
// shown in the single notice banner.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/session"
	"github.com/jeranaias/medchat-tui/internal/ui/chat"
	"github.com/jeranaias/medchat-tui/internal/ui/components"
	"github.com/jeranaias/medchat-tui/internal/ui/forms"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES & MESSAGES
// =============================================================================

// Session is the auth surface of the app.
type Session interface {
	Init(ctx context.Context) session.Status
	Status() session.Status
	User() *apiclient.User
	Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.User, error)
	Register(ctx context.Context, reg apiclient.Registration) (*apiclient.User, error)
	Logout(ctx context.Context) error
}

// Options configures the root model.
type Options struct {
	Session Session
	// Chat is the template for the chat view; Theme and User are filled in.
	Chat        chat.Options
	Theme       *styles.Theme
	ShowSidebar bool
	Logger      *zap.Logger
}

// ConfigReloadedMsg delivers a configuration change from config.Watch.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

type sessionReadyMsg struct {
	status session.Status
}

type loggedOutMsg struct {
	err error
}

// screen is the top-level routing target.
type screen int

const (
	screenChecking screen = iota
	screenLogin
	screenRegister
	screenMain
)

// focusArea is where keys go on the main screen.
type focusArea int

const (
	focusContent focusArea = iota
	focusSidebar
)

// KeyMap holds the global bindings.
type KeyMap struct {
	Quit    key.Binding
	Focus   key.Binding
	Dismiss key.Binding
}

// DefaultKeyMap returns the global bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "sidebar/content"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss notice"),
		),
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root model.
type Model struct {
	ctx  context.Context
	opts Options
	keys KeyMap
	log  *zap.Logger

	theme  *styles.Theme
	screen screen
	focus  focusArea

	spinner  spinner.Model
	banner   components.Banner
	login    forms.Login
	register forms.Register
	sidebar  components.Sidebar
	doctors  components.DoctorList
	chat     *chat.Model

	width  int
	height int
}

// New creates the root model. Nothing touches the network until Init.
func New(ctx context.Context, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner
	opts.Theme.SetSize(80, 24)

	return Model{
		ctx:      ctx,
		opts:     opts,
		keys:     DefaultKeyMap(),
		log:      opts.Logger,
		theme:    opts.Theme,
		screen:   screenChecking,
		spinner:  sp,
		banner:   components.NewBanner(),
		login:    forms.NewLogin(ctx, opts.Session),
		register: forms.NewRegister(ctx, opts.Session),
		sidebar:  components.NewSidebar(),
		doctors:  components.NewDoctorList(),
		width:    80,
		height:   24,
	}
}

// Init checks the stored credential.
func (m Model) Init() tea.Cmd {
	ctx, sess := m.ctx, m.opts.Session
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return sessionReadyMsg{status: sess.Init(ctx)}
	})
}

// Screen names the visible screen, for tests and logs.
func (m Model) Screen() string {
	switch m.screen {
	case screenLogin:
		return "login"
	case screenRegister:
		return "register"
	case screenMain:
		return "main:" + m.sidebar.Active().String()
	default:
		return "checking"
	}
}

// Notice returns the visible notice, if any.
func (m Model) Notice() (components.Notice, bool) {
	return m.banner.Current()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the visible screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.resizeChat()
		return m, nil

	case components.NoticeMsg:
		var cmd tea.Cmd
		m.banner, cmd = m.banner.Update(msg)
		return m, cmd

	case sessionReadyMsg:
		if msg.status == session.StatusAuthenticated {
			return m.enterMain()
		}
		return m.enterAuth(screenLogin)

	case forms.SwitchMsg:
		if msg.To == forms.KindRegister {
			return m.enterAuth(screenRegister)
		}
		return m.enterAuth(screenLogin)

	case forms.SignedInMsg:
		return m.enterMain()

	case components.NavigateMsg:
		return m.navigate(msg.Page)

	case components.LogoutMsg:
		ctx, sess := m.ctx, m.opts.Session
		return m, func() tea.Msg { return loggedOutMsg{err: sess.Logout(ctx)} }

	case loggedOutMsg:
		return m.handleLoggedOut(msg)

	case ConfigReloadedMsg:
		return m.applyConfig(msg)

	case spinner.TickMsg:
		if m.screen != screenChecking {
			break
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	// Anything else belongs to the banner timers or the visible screen.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.banner, cmd = m.banner.Update(msg)
	cmds = append(cmds, cmd)
	m, cmd = m.updateScreen(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.screen == screenMain {
		graphOpen := m.chat != nil && m.chat.GraphOpen() && m.sidebar.Active() == components.PageChat
		if !graphOpen {
			if key.Matches(msg, m.keys.Dismiss) {
				if _, ok := m.banner.Current(); ok {
					m.banner = m.banner.Dismiss()
					return m, nil
				}
			}
			if key.Matches(msg, m.keys.Focus) && m.sidebarVisible() {
				return m.toggleFocus()
			}
		}
		if m.focus == focusSidebar {
			var cmd tea.Cmd
			m.sidebar, cmd = m.sidebar.Update(msg)
			return m, cmd
		}
	}
	return m.updateScreen(msg)
}

// updateScreen forwards msg to the visible screen's model.
func (m Model) updateScreen(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenLogin:
		m.login, cmd = m.login.Update(msg)
	case screenRegister:
		m.register, cmd = m.register.Update(msg)
	case screenMain:
		switch m.sidebar.Active() {
		case components.PageChat:
			if m.chat != nil {
				c, ccmd := m.chat.Update(msg)
				m.chat = &c
				cmd = ccmd
			}
		case components.PageAppointments:
			m.doctors, cmd = m.doctors.Update(msg)
		}
	}
	return m, cmd
}

// =============================================================================
// TRANSITIONS
// =============================================================================

func (m Model) enterAuth(s screen) (Model, tea.Cmd) {
	m.screen = s
	if s == screenRegister {
		return m, m.register.Init()
	}
	return m, m.login.Init()
}

// enterMain builds the chat view for the signed-in user.
func (m Model) enterMain() (Model, tea.Cmd) {
	m.screen = screenMain
	m.focus = focusContent
	m.sidebar = m.sidebar.SetActive(components.PageChat)

	if m.chat != nil {
		m.chat.Close()
	}
	opts := m.opts.Chat
	opts.Theme = m.theme
	opts.Logger = m.log
	sess := m.opts.Session
	opts.User = sess.User
	c := chat.New(m.ctx, opts)
	m.chat = &c
	m.resizeChat()

	m.log.Info("session started", zap.String("screen", m.Screen()))
	return m, c.Init()
}

func (m Model) handleLoggedOut(msg loggedOutMsg) (Model, tea.Cmd) {
	if m.chat != nil {
		m.chat.Close()
		m.chat = nil
	}
	if m.opts.Chat.Chat != nil {
		m.opts.Chat.Chat.ClearChat()
	}
	m.login = forms.NewLogin(m.ctx, m.opts.Session)
	m.register = forms.NewRegister(m.ctx, m.opts.Session)
	m.sidebar = components.NewSidebar()
	m.focus = focusContent

	m, cmd := m.enterAuth(screenLogin)
	if msg.err != nil {
		return m, tea.Batch(cmd, components.ErrorNotice("Signed out, but the saved session could not be removed"))
	}
	return m, cmd
}

func (m Model) navigate(page components.Page) (Model, tea.Cmd) {
	m.sidebar = m.sidebar.SetActive(page)
	m.focus = focusContent
	m.doctors.Blur()
	if page == components.PageAppointments {
		return m, m.doctors.Focus()
	}
	return m, nil
}

func (m Model) toggleFocus() (Model, tea.Cmd) {
	if m.focus == focusSidebar {
		m.focus = focusContent
		if m.sidebar.Active() == components.PageAppointments {
			return m, m.doctors.Focus()
		}
		return m, nil
	}
	m.focus = focusSidebar
	m.doctors.Blur()
	return m, nil
}

// applyConfig re-themes in place so every view sharing the theme follows.
func (m Model) applyConfig(msg ConfigReloadedMsg) (Model, tea.Cmd) {
	if msg.Err == nil && msg.Config == nil {
		return m, nil
	}
	if msg.Err != nil {
		m.log.Warn("config reload failed", zap.Error(msg.Err))
		return m, components.ErrorNotice("Configuration reload failed: " + msg.Err.Error())
	}
	fresh := styles.NewTheme(msg.Config.UI.Theme)
	fresh.SetSize(m.width, m.height)
	*m.theme = *fresh
	m.opts.ShowSidebar = msg.Config.UI.ShowSidebar
	if !m.sidebarVisible() {
		m.focus = focusContent
	}
	m.resizeChat()
	return m, components.InfoNotice("Configuration reloaded")
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) sidebarVisible() bool {
	return m.opts.ShowSidebar && m.theme.GetLayoutMode() != styles.LayoutNarrow
}

// contentSize is the area left for the page after header, banner and
// sidebar.
func (m Model) contentSize() (int, int) {
	w := m.width
	if m.sidebarVisible() {
		w -= components.SidebarWidth
	}
	h := m.height - 2
	if w < 10 {
		w = 10
	}
	if h < 5 {
		h = 5
	}
	return w, h
}

func (m *Model) resizeChat() {
	if m.chat == nil {
		return
	}
	w, h := m.contentSize()
	m.chat.SetSize(w, h)
}
