// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package forms

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
	"github.com/jeranaias/medchat-tui/internal/validate"
)

type fakeAuth struct {
	mu     sync.Mutex
	logins []apiclient.Credentials
	regs   []apiclient.Registration
	user   *apiclient.User
	err    error
}

func (f *fakeAuth) Login(_ context.Context, c apiclient.Credentials) (*apiclient.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, c)
	return f.user, f.err
}

func (f *fakeAuth) Register(_ context.Context, r apiclient.Registration) (*apiclient.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs = append(f.regs, r)
	return f.user, f.err
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyCtrlR = tea.KeyMsg{Type: tea.KeyCtrlR}
)

// =============================================================================
// LOGIN
// =============================================================================

func fillLogin(t *testing.T, l Login, email, password string) Login {
	t.Helper()
	l, _ = l.Update(typeText(email))
	l, _ = l.Update(keyTab)
	l, _ = l.Update(typeText(password))
	return l
}

func TestLogin_SubmitsExactCredentials(t *testing.T) {
	auth := &fakeAuth{user: &apiclient.User{ID: "1", Email: "a@b.co"}}
	l := fillLogin(t, NewLogin(context.Background(), auth), "a@b.co", "secret123")

	l, cmd := l.Update(keyEnter)
	require.True(t, l.Loading())
	require.NotNil(t, cmd)

	res := cmd()
	require.Equal(t, []apiclient.Credentials{{Email: "a@b.co", Password: "secret123"}}, auth.logins)

	l, cmd = l.Update(res)
	require.False(t, l.Loading())
	require.Empty(t, l.Err())
	require.Equal(t, SignedInMsg{User: auth.user}, cmd())
}

func TestLogin_ErrorMessages(t *testing.T) {
	auth := &fakeAuth{err: &apiclient.Error{Status: 401, Message: "Invalid credentials"}}
	l := fillLogin(t, NewLogin(context.Background(), auth), "a@b.co", "nope")

	l, cmd := l.Update(keyEnter)
	l, _ = l.Update(cmd())
	require.Equal(t, "Invalid credentials", l.Err())
	require.Contains(t, l.View(styles.NewTheme("dark")), "Invalid credentials")

	auth.err = errors.New("")
	l, cmd = l.Update(keyEnter)
	l, _ = l.Update(cmd())
	require.Equal(t, MsgLoginFailed, l.Err())
}

func TestLogin_SwitchAndCycle(t *testing.T) {
	l := NewLogin(context.Background(), &fakeAuth{})
	_, cmd := l.Update(keyCtrlR)
	require.Equal(t, SwitchMsg{To: KindRegister}, cmd())

	l, _ = l.Update(keyTab)
	l, _ = l.Update(keyTab) // wraps to email
	l, _ = l.Update(typeText("x@y.z"))
	require.Equal(t, "x@y.z", l.Credentials().Email)
}

func TestLogin_IgnoresSubmitWhileLoading(t *testing.T) {
	l := fillLogin(t, NewLogin(context.Background(), &fakeAuth{}), "a@b.co", "secret123")
	l, cmd := l.Update(keyEnter)
	require.NotNil(t, cmd)
	_, cmd = l.Update(keyEnter)
	require.Nil(t, cmd)
}

func TestLogin_InvalidFieldsShortCircuit(t *testing.T) {
	tests := []struct {
		name         string
		email        string
		password     string
		wantEmail    string
		wantPassword string
	}{
		{"empty form", "", "", validate.MsgEmailRequired, validate.MsgPasswordRequired},
		{"malformed email", "not-an-email", "x", validate.MsgEmailInvalid, ""},
		{"missing password", "a@b.co", "", "", validate.MsgPasswordRequired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuth{}
			l := fillLogin(t, NewLogin(context.Background(), auth), tc.email, tc.password)

			l, cmd := l.Update(keyEnter)
			require.Nil(t, cmd, "invalid forms never reach the network")
			require.False(t, l.Loading())
			require.Empty(t, auth.logins)

			errs := l.FieldErrors()
			require.Equal(t, tc.wantEmail, errs["email"])
			require.Equal(t, tc.wantPassword, errs["password"])
		})
	}
}

func TestLogin_ErrorsClearOnValidResubmit(t *testing.T) {
	auth := &fakeAuth{user: &apiclient.User{ID: "1"}}
	l := fillLogin(t, NewLogin(context.Background(), auth), "a@b.co", "")

	l, cmd := l.Update(keyEnter)
	require.Nil(t, cmd)
	require.Contains(t, l.View(styles.NewTheme("dark")), validate.MsgPasswordRequired)

	l, _ = l.Update(typeText("secret123"))
	l, cmd = l.Update(keyEnter)
	require.NotNil(t, cmd)
	require.True(t, l.FieldErrors().OK())
	cmd()
	require.Equal(t, []apiclient.Credentials{{Email: "a@b.co", Password: "secret123"}}, auth.logins)
}

// =============================================================================
// REGISTER
// =============================================================================

func fillRegister(r Register, name, email, password, confirm string) Register {
	for i, v := range []string{name, email, password, confirm} {
		if i > 0 {
			r, _ = r.Update(keyTab)
		}
		r, _ = r.Update(typeText(v))
	}
	return r
}

func TestRegister_SubmitsPayloadWithoutConfirm(t *testing.T) {
	auth := &fakeAuth{user: &apiclient.User{ID: "7", FullName: "Ada Lovelace"}}
	r := fillRegister(NewRegister(context.Background(), auth), "Ada Lovelace", "ada@example.com", "abc12345", "abc12345")

	r, cmd := r.Update(keyEnter)
	require.True(t, r.Loading())
	require.True(t, r.FieldErrors().OK())

	res := cmd()
	require.Equal(t, []apiclient.Registration{{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "abc12345",
	}}, auth.regs)

	_, cmd = r.Update(res)
	require.Equal(t, SignedInMsg{User: auth.user}, cmd())
}

func TestRegister_MismatchShortCircuits(t *testing.T) {
	auth := &fakeAuth{}
	r := fillRegister(NewRegister(context.Background(), auth), "Ada Lovelace", "ada@example.com", "abc12345", "abc12346")

	r, cmd := r.Update(keyEnter)
	require.Nil(t, cmd, "invalid forms never reach the network")
	require.False(t, r.Loading())
	require.Empty(t, auth.regs)
	require.Equal(t, validate.MsgPasswordMismatch, r.FieldErrors()["confirm"])
}

func TestRegister_AllValidatorsRun(t *testing.T) {
	r := fillRegister(NewRegister(context.Background(), &fakeAuth{}), "A", "not-an-email", "short", "")

	r, cmd := r.Update(keyEnter)
	require.Nil(t, cmd)

	errs := r.FieldErrors()
	require.Contains(t, errs, "name")
	require.Contains(t, errs, "email")
	require.Contains(t, errs, "password")
	require.Contains(t, errs, "confirm")
}

func TestRegister_ErrorFallback(t *testing.T) {
	auth := &fakeAuth{err: errors.New(" ")}
	r := fillRegister(NewRegister(context.Background(), auth), "Ada Lovelace", "ada@example.com", "abc12345", "abc12345")

	r, cmd := r.Update(keyEnter)
	r, _ = r.Update(cmd())
	require.Equal(t, MsgRegistrationFailed, r.Err())

	_, cmd = r.Update(keyCtrlR)
	require.Equal(t, SwitchMsg{To: KindLogin}, cmd())
}
