// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the color palette and lipgloss styles of the
// medchat TUI.
//
// Colors are lipgloss.AdaptiveColor values so they follow the terminal
// background. NewTheme can force a dark or light rendering.
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	header := theme.HeaderTitle.Render("GenAI Medical Chat")
package styles
