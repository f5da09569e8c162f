// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// Page is a top-level screen of the signed-in app.
type Page int

const (
	PageChat Page = iota
	PageAppointments
	PageProfile
)

func (p Page) String() string {
	switch p {
	case PageAppointments:
		return "Appointments"
	case PageProfile:
		return "Profile"
	default:
		return "Chat"
	}
}

// NavItem is one sidebar entry. Logout entries end the session instead of
// switching page.
type NavItem struct {
	Label  string
	Icon   string
	Page   Page
	Logout bool
}

// NavigateMsg switches the visible page.
type NavigateMsg struct {
	Page Page
}

// LogoutMsg asks the root model to end the session.
type LogoutMsg struct{}

// SidebarWidth is the rendered width including the border.
const SidebarWidth = 22

// Sidebar is the navigation column.
type Sidebar struct {
	items  []NavItem
	cursor int
	active Page
}

// NewSidebar returns the sidebar with Chat active.
func NewSidebar() Sidebar {
	return Sidebar{
		items: []NavItem{
			{Label: "Chat", Icon: "💬", Page: PageChat},
			{Label: "Appointments", Icon: "📅", Page: PageAppointments},
			{Label: "Profile", Icon: "👤", Page: PageProfile},
			{Label: "Logout", Icon: "⏻", Logout: true},
		},
	}
}

// Items returns the entries in display order.
func (s Sidebar) Items() []NavItem {
	return append([]NavItem(nil), s.items...)
}

// Active returns the visible page.
func (s Sidebar) Active() Page {
	return s.active
}

// SetActive marks page as visible and moves the cursor to it.
func (s Sidebar) SetActive(page Page) Sidebar {
	s.active = page
	for i, it := range s.items {
		if !it.Logout && it.Page == page {
			s.cursor = i
		}
	}
	return s
}

// Selected returns the entry under the cursor.
func (s Sidebar) Selected() NavItem {
	return s.items[s.cursor]
}

// Update moves the cursor with up/down (or k/j) and activates the entry on
// enter.
func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.items)-1 {
			s.cursor++
		}
	case "enter":
		return s, s.activate(s.items[s.cursor])
	}
	return s, nil
}

func (s Sidebar) activate(item NavItem) tea.Cmd {
	if item.Logout {
		return func() tea.Msg { return LogoutMsg{} }
	}
	page := item.Page
	return func() tea.Msg { return NavigateMsg{Page: page} }
}

// View renders the sidebar at height rows. focused highlights the cursor.
func (s Sidebar) View(theme *styles.Theme, height int, focused bool) string {
	var b strings.Builder
	b.WriteString(theme.HeaderTitle.Render("🧬 MedChat"))
	b.WriteString("\n\n")

	for i, it := range s.items {
		label := it.Icon + " " + it.Label
		style := theme.SidebarItem
		if (!it.Logout && it.Page == s.active) || (focused && i == s.cursor) {
			style = theme.SidebarItemActive
		}
		if focused && i == s.cursor {
			label = "› " + label
		} else {
			label = "  " + label
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}

	inner := theme.Sidebar.Width(SidebarWidth - 1)
	if height > 2 {
		inner = inner.Height(height - 2)
	}
	return inner.Render(b.String())
}
