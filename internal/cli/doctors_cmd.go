// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctors_cmd.go - Doctor directory search.

package cli

import (
	"fmt"

	"github.com/jeranaias/medchat-tui/internal/appointments"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// HandleDoctors lists doctors whose name or specialty matches the query.
func HandleDoctors(args Args, d Deps) error {
	return OutputJSON(d.Out, args.JSON, "doctors", func() (interface{}, error) {
		found := appointments.Filter(appointments.Doctors(), args.Query)
		if !args.JSON {
			if len(found) == 0 {
				fmt.Fprintln(d.Out, DimStyle.Render(appointments.MsgNoDoctors))
				return found, nil
			}
			for _, doc := range found {
				fmt.Fprintf(d.Out, "%s  %s  %s\n",
					ValueStyle.Render(util.PadRight(doc.Name, 20)),
					TitleStyle.Render(util.PadRight(doc.Specialty, 18)),
					DimStyle.Render(doc.Availability))
			}
		}
		return found, nil
	})
}
