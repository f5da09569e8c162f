// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, register, logout and whoami.

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/ui/components"
	"github.com/jeranaias/medchat-tui/internal/validate"
)

// Order form errors are reported in; the first failing field wins.
var (
	loginFields        = []string{"email", "password"}
	registrationFields = []string{"name", "email", "password", "confirm"}
)

// firstFieldError turns the first failure in order into a ValidationError.
func firstFieldError(errs validate.Errors, order []string) error {
	for _, field := range order {
		if msg, ok := errs[field]; ok {
			return &ValidationError{Field: field, Reason: msg}
		}
	}
	return nil
}

// HandleLogin signs in. Missing email and password are prompted for.
func HandleLogin(ctx context.Context, args Args, d Deps) error {
	return OutputJSON(d.Out, args.JSON, "login", func() (interface{}, error) {
		email, err := promptIfEmpty(d.Prompt, args.Email, "Email: ")
		if err != nil {
			return nil, err
		}
		if d.Prompt == nil {
			return nil, &TTYRequiredError{Operation: "read the password"}
		}
		password, err := d.Prompt.ReadPassword("Password: ")
		if err != nil {
			return nil, err
		}
		if err := firstFieldError(validate.Login(email, password), loginFields); err != nil {
			return nil, err
		}

		user, err := d.Session.Login(ctx, apiclient.Credentials{Email: email, Password: password})
		if err != nil {
			return nil, err
		}
		if !args.JSON {
			status(d, "ok", fmt.Sprintf("Logged in as %s", user.DisplayName()))
		}
		return user, nil
	})
}

// HandleRegister creates an account. Fields run through the same validators
// as the TUI form before anything is sent.
func HandleRegister(ctx context.Context, args Args, d Deps) error {
	return OutputJSON(d.Out, args.JSON, "register", func() (interface{}, error) {
		name, err := promptIfEmpty(d.Prompt, args.Name, "Full name: ")
		if err != nil {
			return nil, err
		}
		email, err := promptIfEmpty(d.Prompt, args.Email, "Email: ")
		if err != nil {
			return nil, err
		}
		if d.Prompt == nil {
			return nil, &TTYRequiredError{Operation: "read the password"}
		}
		password, err := d.Prompt.ReadPassword("Password: ")
		if err != nil {
			return nil, err
		}
		confirm, err := d.Prompt.ReadPassword("Confirm password: ")
		if err != nil {
			return nil, err
		}

		if err := firstFieldError(validate.Registration(name, email, password, confirm), registrationFields); err != nil {
			return nil, err
		}

		user, err := d.Session.Register(ctx, apiclient.Registration{FullName: name, Email: email, Password: password})
		if err != nil {
			return nil, err
		}
		if !args.JSON {
			status(d, "ok", fmt.Sprintf("Account created. Logged in as %s", user.DisplayName()))
		}
		return user, nil
	})
}

// HandleLogout forgets the stored session.
func HandleLogout(ctx context.Context, args Args, d Deps) error {
	return OutputJSON(d.Out, args.JSON, "logout", func() (interface{}, error) {
		if err := d.Session.Logout(ctx); err != nil {
			return nil, WrapError(err, "failed to remove the saved session")
		}
		if !args.JSON {
			status(d, "ok", "Logged out")
		}
		return map[string]bool{"logged_out": true}, nil
	})
}

// HandleWhoami shows the signed-in user.
func HandleWhoami(ctx context.Context, args Args, d Deps) error {
	return OutputJSON(d.Out, args.JSON, "whoami", func() (interface{}, error) {
		user, err := requireSession(ctx, d)
		if err != nil {
			return nil, err
		}
		if !args.JSON {
			if user == nil {
				fmt.Fprintln(d.Out, components.MsgNoUser)
				return nil, nil
			}
			fmt.Fprintln(d.Out, TitleStyle.Render(user.DisplayName()))
			fmt.Fprintln(d.Out, RenderField("Email", user.Email))
			fmt.Fprintln(d.Out, RenderField("User ID", user.ID.String()))
			if user.CreatedAt != "" {
				fmt.Fprintln(d.Out, RenderField("Member since", user.CreatedAt))
			}
		}
		return user, nil
	})
}
