// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package forms

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
	"github.com/jeranaias/medchat-tui/internal/validate"
)

const (
	loginEmail = iota
	loginPassword
)

// Login is the sign-in form.
type Login struct {
	ctx    context.Context
	auth   Authenticator
	keys   KeyMap
	fields []field
	focus  int

	loading bool
	err     string
}

// NewLogin creates the form with the email field focused.
func NewLogin(ctx context.Context, auth Authenticator) Login {
	l := Login{
		ctx:  ctx,
		auth: auth,
		keys: DefaultKeyMap(),
		fields: []field{
			newField("email", "Email Address", "yourname@example.com", false),
			newField("password", "Password", "••••••••", true),
		},
	}
	focusIndex(l.fields, 0)
	return l
}

// Init focuses the first field.
func (l Login) Init() tea.Cmd {
	return focusIndex(l.fields, l.focus)
}

// Loading reports whether a submit is in flight.
func (l Login) Loading() bool { return l.loading }

// Err is the form-level error, if any.
func (l Login) Err() string { return l.err }

// FieldErrors returns the validation message per field name.
func (l Login) FieldErrors() validate.Errors {
	errs := validate.Errors{}
	for _, f := range l.fields {
		errs.Add(f.name, f.err)
	}
	return errs
}

// Credentials is the payload a submit sends.
func (l Login) Credentials() apiclient.Credentials {
	return apiclient.Credentials{
		Email:    l.fields[loginEmail].input.Value(),
		Password: l.fields[loginPassword].input.Value(),
	}
}

// Update handles keys and the submit result.
func (l Login) Update(msg tea.Msg) (Login, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		l.loading = false
		if msg.err != nil {
			l.err = errorText(msg.err, MsgLoginFailed)
			return l, nil
		}
		l.fields[loginPassword].input.SetValue("")
		user := msg.user
		return l, func() tea.Msg { return SignedInMsg{User: user} }

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, l.keys.Switch):
			return l, func() tea.Msg { return SwitchMsg{To: KindRegister} }
		case key.Matches(msg, l.keys.Next):
			l.focus = cycle(l.focus, 1, len(l.fields))
			return l, focusIndex(l.fields, l.focus)
		case key.Matches(msg, l.keys.Prev):
			l.focus = cycle(l.focus, -1, len(l.fields))
			return l, focusIndex(l.fields, l.focus)
		case key.Matches(msg, l.keys.Submit):
			return l.submit()
		}
	}

	var cmd tea.Cmd
	l.fields[l.focus].input, cmd = l.fields[l.focus].input.Update(msg)
	return l, cmd
}

func (l Login) submit() (Login, tea.Cmd) {
	if l.loading {
		return l, nil
	}
	l.err = ""

	creds := l.Credentials()
	errs := validate.Login(creds.Email, creds.Password)
	for i := range l.fields {
		l.fields[i].err = errs[l.fields[i].name]
	}
	if !errs.OK() {
		return l, nil
	}

	l.loading = true
	ctx, auth := l.ctx, l.auth
	return l, func() tea.Msg {
		user, err := auth.Login(ctx, creds)
		return loginResultMsg{user: user, err: err}
	}
}

// View renders the form body.
func (l Login) View(theme *styles.Theme) string {
	var b strings.Builder
	b.WriteString(theme.CardTitle.Render("Welcome Back 👋"))
	b.WriteString("\n")
	b.WriteString(theme.Muted.Render("Sign in to continue your medical insights"))
	b.WriteString("\n\n")
	if l.err != "" {
		b.WriteString(theme.FormError.Render(styles.StatusIndicators.Error + " " + l.err))
		b.WriteString("\n\n")
	}
	b.WriteString(renderFields(theme, l.fields))

	label := "Login"
	if l.loading {
		label = "Logging in..."
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		theme.ButtonFocus.Render(label),
		" ",
		theme.Muted.Render("ctrl+r register"),
	))
	return b.String()
}
