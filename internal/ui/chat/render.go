// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/medchat-tui/internal/util"
)

// markdownRenderer renders bot answers with glamour. Output is cached by
// content until the width changes.
type markdownRenderer struct {
	enabled bool
	dark    bool
	width   int

	term  *glamour.TermRenderer
	cache map[string]string
}

func newMarkdownRenderer(enabled, dark bool) *markdownRenderer {
	return &markdownRenderer{enabled: enabled, dark: dark, cache: map[string]string{}}
}

// setWidth drops the glamour instance and the cache when the wrap width
// changes.
func (r *markdownRenderer) setWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width {
		return
	}
	r.width = width
	r.term = nil
	r.cache = map[string]string{}
}

func (r *markdownRenderer) renderer() *glamour.TermRenderer {
	if r.term != nil {
		return r.term
	}
	style := "light"
	if r.dark {
		style = "dark"
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return nil
	}
	r.term = term
	return term
}

// render returns content as terminal markdown, or wrapped plain text when
// markdown is off or glamour fails.
func (r *markdownRenderer) render(content string) string {
	if !r.enabled {
		return util.Wrap(content, r.width)
	}
	if out, ok := r.cache[content]; ok {
		return out
	}

	term := r.renderer()
	if term == nil {
		return util.Wrap(content, r.width)
	}
	out, err := term.Render(content)
	if err != nil {
		return util.Wrap(content, r.width)
	}
	out = strings.Trim(out, "\n")
	r.cache[content] = out
	return out
}
