// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// MsgNoUser is shown on the profile page without a signed-in user.
const MsgNoUser = "No user information available"

// RenderProfile renders the profile page for user.
func RenderProfile(theme *styles.Theme, user *apiclient.User, width int) string {
	title := theme.CardTitle.Render("Profile")
	if user == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, theme.Muted.Render(MsgNoUser))
	}

	inner := width - 10
	if inner < 10 {
		inner = 10
	}
	name := lipgloss.NewStyle().Bold(true).Render(util.TruncateWidth(user.DisplayName(), inner))
	email := theme.Label.Render(util.TruncateWidth(user.Email, inner))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, name, email)),
	)
}
