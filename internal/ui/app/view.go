// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/ui/components"
)

// View renders the visible screen with the notice banner on top.
func (m Model) View() string {
	switch m.screen {
	case screenChecking:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" "+m.theme.Muted.Render("Checking session..."))
	case screenLogin, screenRegister:
		return m.renderAuth()
	default:
		return m.renderMain()
	}
}

// renderAuth centers the active form in a card under the product title.
func (m Model) renderAuth() string {
	body := m.login.View(m.theme)
	if m.screen == screenRegister {
		body = m.register.View(m.theme)
	}

	card := m.theme.Card.Render(lipgloss.JoinVertical(lipgloss.Center,
		m.theme.HeaderTitle.Render("🧬 "+components.AppTitle),
		"",
		body,
	))

	banner := m.banner.View(m.theme, m.width)
	placed := lipgloss.Place(m.width, m.height-lipgloss.Height(banner), lipgloss.Center, lipgloss.Center, card)
	if banner == "" {
		return placed
	}
	return lipgloss.JoinVertical(lipgloss.Left, banner, placed)
}

// renderMain lays out header, banner line, sidebar and the active page.
func (m Model) renderMain() string {
	header := components.RenderHeader(m.theme, m.opts.Session.User(), m.width)
	banner := m.banner.View(m.theme, m.width)
	if banner == "" {
		banner = " "
	}

	w, h := m.contentSize()
	var page string
	switch m.sidebar.Active() {
	case components.PageAppointments:
		page = m.doctors.View(m.theme, w)
	case components.PageProfile:
		page = components.RenderProfile(m.theme, m.opts.Session.User(), w)
	default:
		if m.chat != nil {
			page = m.chat.View()
		}
	}
	page = lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(page)

	body := page
	if m.sidebarVisible() {
		side := m.sidebar.View(m.theme, h, m.focus == focusSidebar)
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, page)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, banner, body)
}
