// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package forms provides the login and register forms shown before a
// session exists.
//
// Forms never touch the network themselves: submitting returns a tea.Cmd that
// calls the injected Authenticator and reports back with a result message.
package forms

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// =============================================================================
// CONTRACT
// =============================================================================

// Authenticator is the session surface the forms submit to.
type Authenticator interface {
	Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.User, error)
	Register(ctx context.Context, reg apiclient.Registration) (*apiclient.User, error)
}

// Default form-level messages when a failure carries no text.
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
)

// =============================================================================
// MESSAGES
// =============================================================================

// Kind names a form.
type Kind int

const (
	KindLogin Kind = iota
	KindRegister
)

// SwitchMsg asks the owner to show the other form.
type SwitchMsg struct {
	To Kind
}

// SignedInMsg reports a successful login or registration.
type SignedInMsg struct {
	User *apiclient.User
}

// loginResultMsg and registerResultMsg carry submit outcomes back to the
// form that issued them.
type loginResultMsg struct {
	user *apiclient.User
	err  error
}

type registerResultMsg struct {
	user *apiclient.User
	err  error
}

// =============================================================================
// KEYS
// =============================================================================

// KeyMap holds the form bindings.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Switch key.Binding
}

// DefaultKeyMap returns the form bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Switch: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "switch form"),
		),
	}
}

// =============================================================================
// FIELDS
// =============================================================================

// field is one labelled input with an optional validation message.
type field struct {
	name  string
	label string
	input textinput.Model
	err   string
}

func newField(name, label, placeholder string, secret bool) field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 256
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return field{name: name, label: label, input: ti}
}

// focusIndex moves focus to fields[i] and blurs the rest.
func focusIndex(fields []field, i int) tea.Cmd {
	var cmd tea.Cmd
	for j := range fields {
		if j == i {
			cmd = fields[j].input.Focus()
			continue
		}
		fields[j].input.Blur()
	}
	return cmd
}

func cycle(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

func renderFields(theme *styles.Theme, fields []field) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(theme.Label.Render(f.label))
		b.WriteString("\n")
		b.WriteString(f.input.View())
		b.WriteString("\n")
		if f.err != "" {
			b.WriteString(theme.FieldError.Render(f.err))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// errorText is err's message, or fallback when it has none.
func errorText(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
