// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// AppTitle is the product name shown in the header and on the auth card.
const AppTitle = "GenAI Medical Chat"

// RenderHeader renders the top bar: title on the left, the signed-in user on
// the right.
func RenderHeader(theme *styles.Theme, user *apiclient.User, width int) string {
	left := theme.HeaderTitle.Render("🧬 " + AppTitle)
	if user == nil || width <= 0 {
		return theme.Header.Width(max(width, 0)).Render(left)
	}

	right := theme.HeaderUser.Render(util.TruncateWidth(user.DisplayName(), width/3))
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return theme.Header.Width(width).Render(left)
	}
	return theme.Header.Width(width).Render(left + util.PadRight("", gap) + right)
}
