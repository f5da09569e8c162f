// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/session"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/ui/chat"
	"github.com/jeranaias/medchat-tui/internal/ui/components"
	"github.com/jeranaias/medchat-tui/internal/ui/forms"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

type fakeSession struct {
	initial   session.Status
	status    session.Status
	user      *apiclient.User
	loginErr  error
	logoutErr error
	logouts   int
}

func (f *fakeSession) Init(context.Context) session.Status {
	f.status = f.initial
	return f.status
}

func (f *fakeSession) Status() session.Status { return f.status }

func (f *fakeSession) User() *apiclient.User { return f.user }

func (f *fakeSession) Login(_ context.Context, c apiclient.Credentials) (*apiclient.User, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.user = &apiclient.User{ID: "1", Email: c.Email, FullName: "Ada"}
	f.status = session.StatusAuthenticated
	return f.user, nil
}

func (f *fakeSession) Register(_ context.Context, r apiclient.Registration) (*apiclient.User, error) {
	f.user = &apiclient.User{ID: "2", Email: r.Email, FullName: r.FullName}
	f.status = session.StatusAuthenticated
	return f.user, nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.logouts++
	f.user = nil
	f.status = session.StatusAnonymous
	return f.logoutErr
}

type echoAPI struct{}

func (echoAPI) Query(_ context.Context, req apiclient.QueryRequest) (*apiclient.QueryResponse, error) {
	return &apiclient.QueryResponse{Answer: "echo: " + req.Text, ConvID: "5"}, nil
}

func (echoAPI) Graph(context.Context, apiclient.ID) (*apiclient.Graph, error) {
	return &apiclient.Graph{}, nil
}

func newTestApp(t *testing.T, sess *fakeSession) (Model, *store.Chat) {
	t.Helper()
	chatStore := store.NewChat(echoAPI{}, nil)
	m := New(context.Background(), Options{
		Session:     sess,
		Chat:        chat.Options{Chat: chatStore},
		Theme:       styles.NewTheme("dark"),
		ShowSidebar: true,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), chatStore
}

// exec runs cmd with a short deadline. Timers, cursor blinks and
// subscription waits do not finish in time and are dropped.
func exec(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(100 * time.Millisecond):
		return nil, false
	}
}

// run executes cmd and feeds the results back into the model.
func run(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	msg, ok := exec(cmd)
	if !ok {
		return m
	}
	switch msg := msg.(type) {
	case nil, spinner.TickMsg:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(m, c)
		}
		return m
	default:
		next, c := m.Update(msg)
		return run(next.(Model), c)
	}
}

func keys(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		m = run(next.(Model), cmd)
	}
	return m
}

func text(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestRouting_AnonymousShowsLogin(t *testing.T) {
	m, _ := newTestApp(t, &fakeSession{initial: session.StatusAnonymous})
	require.Equal(t, "checking", m.Screen())

	next, _ := m.Update(sessionReadyMsg{status: session.StatusAnonymous})
	m = next.(Model)
	require.Equal(t, "login", m.Screen())
	require.Contains(t, m.View(), "Welcome Back")
}

func TestRouting_AuthenticatedShowsChat(t *testing.T) {
	sess := &fakeSession{initial: session.StatusAuthenticated, user: &apiclient.User{ID: "1", FullName: "Ada"}}
	m, _ := newTestApp(t, sess)

	next, _ := m.Update(sessionReadyMsg{status: session.StatusAuthenticated})
	m = next.(Model)
	require.Equal(t, "main:Chat", m.Screen())
	require.Contains(t, m.View(), "Ada")
}

func TestLoginThenChat(t *testing.T) {
	sess := &fakeSession{initial: session.StatusAnonymous}
	m, chatStore := newTestApp(t, sess)
	m = keys(m, sessionReadyMsg{status: session.StatusAnonymous})

	m = keys(m, text("ada@example.com"), tab, text("secret123"), enter)
	require.Equal(t, "main:Chat", m.Screen())

	m = keys(m, text("hello"), enter)
	msgs := chatStore.State().Messages
	require.Len(t, msgs, 2)
	require.Equal(t, "echo: hello", msgs[1].Content)
}

func TestLoginFailureStaysOnForm(t *testing.T) {
	sess := &fakeSession{initial: session.StatusAnonymous, loginErr: errors.New("Invalid credentials")}
	m, _ := newTestApp(t, sess)
	m = keys(m, sessionReadyMsg{status: session.StatusAnonymous})

	m = keys(m, text("a@b.co"), tab, text("nope"), enter)
	require.Equal(t, "login", m.Screen())
	require.Contains(t, m.View(), "Invalid credentials")
}

func TestSwitchToRegister(t *testing.T) {
	m, _ := newTestApp(t, &fakeSession{initial: session.StatusAnonymous})
	m = keys(m, sessionReadyMsg{status: session.StatusAnonymous}, forms.SwitchMsg{To: forms.KindRegister})
	require.Equal(t, "register", m.Screen())
	require.Contains(t, m.View(), "Create Account")
}

func TestSidebarNavigationAndLogout(t *testing.T) {
	sess := &fakeSession{initial: session.StatusAuthenticated, user: &apiclient.User{ID: "1", FullName: "Ada", Email: "ada@example.com"}}
	m, chatStore := newTestApp(t, sess)
	m = keys(m, sessionReadyMsg{status: session.StatusAuthenticated})
	m = keys(m, text("hi"), enter)
	require.NotEmpty(t, chatStore.State().Messages)

	// tab focuses the sidebar; down + enter opens Appointments
	m = keys(m, tab, down, enter)
	require.Equal(t, "main:Appointments", m.Screen())
	require.Contains(t, m.View(), "Dr. Aisha Khan")

	m = keys(m, components.NavigateMsg{Page: components.PageProfile})
	require.Contains(t, m.View(), "ada@example.com")

	m = keys(m, components.LogoutMsg{})
	require.Equal(t, "login", m.Screen())
	require.Equal(t, 1, sess.logouts)
	require.Empty(t, chatStore.State().Messages, "chat is cleared on logout")
}

func TestLogoutFailureShowsNotice(t *testing.T) {
	sess := &fakeSession{initial: session.StatusAuthenticated, user: &apiclient.User{ID: "1"}, logoutErr: errors.New("disk")}
	m, _ := newTestApp(t, sess)
	m = keys(m, sessionReadyMsg{status: session.StatusAuthenticated}, components.LogoutMsg{})

	n, ok := m.Notice()
	require.True(t, ok)
	require.Equal(t, components.NoticeError, n.Kind)
	require.Equal(t, "login", m.Screen())
}

func TestNoticesAndDismiss(t *testing.T) {
	m, _ := newTestApp(t, &fakeSession{initial: session.StatusAuthenticated, user: &apiclient.User{ID: "1"}})
	m = keys(m, sessionReadyMsg{status: session.StatusAuthenticated})

	m = keys(m, text("/graph"), enter)
	n, ok := m.Notice()
	require.True(t, ok)
	require.Equal(t, chat.MsgNoConvYet, n.Text)
	require.Contains(t, m.View(), chat.MsgNoConvYet)

	m = keys(m, esc)
	_, ok = m.Notice()
	require.False(t, ok)
}

func TestConfigReloadRethemes(t *testing.T) {
	m, _ := newTestApp(t, &fakeSession{initial: session.StatusAuthenticated, user: &apiclient.User{ID: "1"}})
	m = keys(m, sessionReadyMsg{status: session.StatusAuthenticated})

	cfg := config.Default()
	cfg.UI.Theme = "light"
	cfg.UI.ShowSidebar = false
	m = keys(m, ConfigReloadedMsg{Config: cfg})

	require.False(t, m.theme.IsDark)
	require.False(t, m.sidebarVisible())
	n, ok := m.Notice()
	require.True(t, ok)
	require.Equal(t, "Configuration reloaded", n.Text)

	m = keys(m, ConfigReloadedMsg{Err: errors.New("bad toml")})
	n, _ = m.Notice()
	require.Equal(t, components.NoticeError, n.Kind)
}
