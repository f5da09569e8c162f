// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package appointments is the static doctor directory.
package appointments

import (
	"strings"

	"golang.org/x/text/cases"
)

// Doctor is one directory entry.
type Doctor struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Specialty    string `json:"specialty"`
	Availability string `json:"availability"`
}

// MsgNoDoctors is shown when a search matches nothing.
const MsgNoDoctors = "No doctors found"

var directory = []Doctor{
	{ID: 1, Name: "Dr. Aisha Khan", Specialty: "Cardiologist", Availability: "Mon, Wed, Fri"},
	{ID: 2, Name: "Dr. Luis García", Specialty: "Dermatologist", Availability: "Tue, Thu"},
	{ID: 3, Name: "Dr. Mei Lin", Specialty: "Neurologist", Availability: "Daily"},
	{ID: 4, Name: "Dr. Ravi Patel", Specialty: "General Physician", Availability: "Weekends"},
}

// Doctors returns the full directory.
func Doctors() []Doctor {
	return append([]Doctor(nil), directory...)
}

// Filter returns doctors whose name or specialty contains query, ignoring
// case. An empty query matches everyone.
func Filter(doctors []Doctor, query string) []Doctor {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))

	out := make([]Doctor, 0, len(doctors))
	for _, d := range doctors {
		if strings.Contains(fold.String(d.Name), q) || strings.Contains(fold.String(d.Specialty), q) {
			out = append(out, d)
		}
	}
	return out
}
