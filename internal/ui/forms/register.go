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
	regName = iota
	regEmail
	regPassword
	regConfirm
)

// Register is the account creation form.
type Register struct {
	ctx    context.Context
	auth   Authenticator
	keys   KeyMap
	fields []field
	focus  int

	loading bool
	err     string
}

// NewRegister creates the form with the name field focused.
func NewRegister(ctx context.Context, auth Authenticator) Register {
	r := Register{
		ctx:  ctx,
		auth: auth,
		keys: DefaultKeyMap(),
		fields: []field{
			newField("name", "Full Name", "Dr. John Doe", false),
			newField("email", "Email Address", "yourname@example.com", false),
			newField("password", "Password", "••••••••", true),
			newField("confirm", "Confirm Password", "Re-enter your password", true),
		},
	}
	focusIndex(r.fields, 0)
	return r
}

// Init focuses the current field.
func (r Register) Init() tea.Cmd {
	return focusIndex(r.fields, r.focus)
}

// Loading reports whether a submit is in flight.
func (r Register) Loading() bool { return r.loading }

// Err is the form-level error, if any.
func (r Register) Err() string { return r.err }

// FieldErrors returns the validation message per field name.
func (r Register) FieldErrors() validate.Errors {
	errs := validate.Errors{}
	for _, f := range r.fields {
		errs.Add(f.name, f.err)
	}
	return errs
}

// Registration is the payload a submit sends. The confirmation never leaves
// the form.
func (r Register) Registration() apiclient.Registration {
	return apiclient.Registration{
		FullName: r.fields[regName].input.Value(),
		Email:    r.fields[regEmail].input.Value(),
		Password: r.fields[regPassword].input.Value(),
	}
}

// Update handles keys and the submit result.
func (r Register) Update(msg tea.Msg) (Register, tea.Cmd) {
	switch msg := msg.(type) {
	case registerResultMsg:
		r.loading = false
		if msg.err != nil {
			r.err = errorText(msg.err, MsgRegistrationFailed)
			return r, nil
		}
		r.fields[regPassword].input.SetValue("")
		r.fields[regConfirm].input.SetValue("")
		user := msg.user
		return r, func() tea.Msg { return SignedInMsg{User: user} }

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, r.keys.Switch):
			return r, func() tea.Msg { return SwitchMsg{To: KindLogin} }
		case key.Matches(msg, r.keys.Next):
			r.focus = cycle(r.focus, 1, len(r.fields))
			return r, focusIndex(r.fields, r.focus)
		case key.Matches(msg, r.keys.Prev):
			r.focus = cycle(r.focus, -1, len(r.fields))
			return r, focusIndex(r.fields, r.focus)
		case key.Matches(msg, r.keys.Submit):
			return r.submit()
		}
	}

	var cmd tea.Cmd
	r.fields[r.focus].input, cmd = r.fields[r.focus].input.Update(msg)
	return r, cmd
}

// submit validates every field and only calls the gateway when all pass.
func (r Register) submit() (Register, tea.Cmd) {
	if r.loading {
		return r, nil
	}
	r.err = ""

	errs := validate.Registration(
		r.fields[regName].input.Value(),
		r.fields[regEmail].input.Value(),
		r.fields[regPassword].input.Value(),
		r.fields[regConfirm].input.Value(),
	)
	for i := range r.fields {
		r.fields[i].err = errs[r.fields[i].name]
	}
	if !errs.OK() {
		return r, nil
	}

	r.loading = true
	ctx, auth, reg := r.ctx, r.auth, r.Registration()
	return r, func() tea.Msg {
		user, err := auth.Register(ctx, reg)
		return registerResultMsg{user: user, err: err}
	}
}

// View renders the form body.
func (r Register) View(theme *styles.Theme) string {
	var b strings.Builder
	b.WriteString(theme.CardTitle.Render("Create Account ✨"))
	b.WriteString("\n")
	b.WriteString(theme.Muted.Render("Join GenAI Medical Chat for smarter insights"))
	b.WriteString("\n\n")
	if r.err != "" {
		b.WriteString(theme.FormError.Render(styles.StatusIndicators.Error + " " + r.err))
		b.WriteString("\n\n")
	}
	b.WriteString(renderFields(theme, r.fields))

	label := "Register"
	if r.loading {
		label = "Registering..."
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		theme.ButtonFocus.Render(label),
		" ",
		theme.Muted.Render("ctrl+r login"),
	))
	return b.String()
}
