// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for medchat commands.
//
// Interactive terminals get colors, markdown and prompts. Piped output gets
// plain text, and NO_COLOR is respected.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// DefaultTerminalWidth is used when stdout is not a terminal.
	DefaultTerminalWidth = 80
	// MinTerminalWidth keeps answers readable in narrow panes.
	MinTerminalWidth = 40
	// MaxAnswerWidth caps markdown wrapping on very wide terminals.
	MaxAnswerWidth = 100
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool {
	return isTerminal(os.Stdout)
}

// CanPrompt reports whether interactive prompts on stdin are possible.
func CanPrompt() bool {
	return isTerminal(os.Stdin)
}

// AnswerWidth is the wrap width for rendered answers: the terminal width
// less a margin, clamped to [MinTerminalWidth, MaxAnswerWidth].
func AnswerWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = DefaultTerminalWidth
	}
	return clampWidth(width - 2)
}

func clampWidth(w int) int {
	switch {
	case w < MinTerminalWidth:
		return MinTerminalWidth
	case w > MaxAnswerWidth:
		return MaxAnswerWidth
	}
	return w
}

// colorChoice decides color output from the environment. NO_COLOR wins over
// FORCE_COLOR, which wins over tty detection.
func colorChoice(getenv func(string) string, tty bool) bool {
	if getenv("NO_COLOR") != "" {
		return false
	}
	if getenv("FORCE_COLOR") != "" {
		return true
	}
	return tty
}

var colorsEnabled = sync.OnceValue(func() bool {
	return colorChoice(os.Getenv, IsStdoutTTY())
})

// ColorsEnabled reports whether colored output should be used.
func ColorsEnabled() bool {
	return colorsEnabled()
}

// colorProfile is Ascii when colors are off, else what termenv detects.
func colorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// TTYRequiredError is returned when an operation needs a terminal on stdin.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation == "" {
		return "stdin is not a terminal; interactive input not available"
	}
	return "stdin is not a terminal; cannot " + e.Operation + " interactively"
}
