// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/appointments"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// DoctorList is the appointments page: a search box over the doctor
// directory.
type DoctorList struct {
	search  textinput.Model
	doctors []appointments.Doctor
}

// NewDoctorList creates the page over the static directory.
func NewDoctorList() DoctorList {
	ti := textinput.New()
	ti.Placeholder = "Search doctors or specialties"
	ti.Prompt = "🔍 "
	ti.CharLimit = 64
	return DoctorList{search: ti, doctors: appointments.Doctors()}
}

// Focus gives the search box keyboard focus.
func (d *DoctorList) Focus() tea.Cmd {
	return d.search.Focus()
}

// Blur removes keyboard focus.
func (d *DoctorList) Blur() {
	d.search.Blur()
}

// Query is the current search text.
func (d DoctorList) Query() string {
	return d.search.Value()
}

// SetQuery replaces the search text.
func (d *DoctorList) SetQuery(q string) {
	d.search.SetValue(q)
}

// Results are the doctors matching the query.
func (d DoctorList) Results() []appointments.Doctor {
	return appointments.Filter(d.doctors, d.search.Value())
}

// Update forwards keys to the search box.
func (d DoctorList) Update(msg tea.Msg) (DoctorList, tea.Cmd) {
	var cmd tea.Cmd
	d.search, cmd = d.search.Update(msg)
	return d, cmd
}

// View renders the search box and the matching doctors.
func (d DoctorList) View(theme *styles.Theme, width int) string {
	var b strings.Builder
	b.WriteString(theme.CardTitle.Render("Appointments"))
	b.WriteString("\n")
	b.WriteString(d.search.View())
	b.WriteString("\n\n")

	results := d.Results()
	if len(results) == 0 {
		b.WriteString(theme.Muted.Render(appointments.MsgNoDoctors))
		return b.String()
	}

	inner := width - 8
	if inner < 16 {
		inner = 16
	}
	for _, doc := range results {
		card := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(util.TruncateWidth(doc.Name, inner)),
			theme.Label.Render(util.TruncateWidth(doc.Specialty, inner)),
			theme.Muted.Render(util.TruncateWidth("Availability: "+doc.Availability, inner)),
		)
		b.WriteString(theme.Card.Padding(0, 1).Render(card))
		b.WriteString("\n")
	}
	return b.String()
}
