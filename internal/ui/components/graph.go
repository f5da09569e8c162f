// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// =============================================================================
// JSON HIGHLIGHTING (Chroma-based)
// =============================================================================

// HighlightJSON colors a JSON document for a 256-color terminal. The input
// is returned unchanged if it cannot be tokenized.
func HighlightJSON(src string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return src
	}
	return buf.String()
}

// =============================================================================
// GRAPH MODAL
// =============================================================================

// GraphTitle is the modal heading for convID.
func GraphTitle(convID apiclient.ID) string {
	return "Reasoning Graph (Conv: " + convID.String() + ")"
}

// GraphModal shows a conversation's reasoning graph as scrollable,
// highlighted JSON.
type GraphModal struct {
	ConvID apiclient.ID
	Body   string

	viewport viewport.Model
}

// NewGraphModal builds a modal sized to fit inside width x height.
func NewGraphModal(convID apiclient.ID, graph *apiclient.Graph, width, height int) GraphModal {
	m := GraphModal{
		ConvID: convID,
		Body:   graph.Pretty(),
	}
	m.viewport = viewport.New(1, 1)
	m.viewport.SetContent(HighlightJSON(m.Body))
	m.SetSize(width, height)
	return m
}

// SetSize resizes the modal. Border, padding and title take four columns
// and three rows.
func (m *GraphModal) SetSize(width, height int) {
	w := width*9/10 - 4
	if w < 20 {
		w = 20
	}
	h := height*8/10 - 3
	if h < 3 {
		h = 3
	}
	m.viewport.Width = w
	m.viewport.Height = h
}

// Update scrolls the graph. Closing is handled by the owner.
func (m GraphModal) Update(msg tea.Msg) (GraphModal, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the modal box.
func (m GraphModal) View(theme *styles.Theme) string {
	title := theme.ModalTitle.Render(GraphTitle(m.ConvID))
	hint := theme.Muted.Render("esc close  ↑/↓ scroll")
	return theme.Modal.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View(), hint))
}
