// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the message list, the composer and a status line. The graph
// modal replaces the message list while open.
func (m Model) View() string {
	theme := m.opts.Theme
	if m.graph != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.graph.View(theme))
	}

	composer := theme.Card.Padding(0, 1).Width(max(m.width-2, 10)).Render(m.composer.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		composer,
		m.renderStatus(),
	)
}

// refresh re-renders the messages into the viewport. toBottom scrolls to
// the newest message.
func (m *Model) refresh(toBottom bool) {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if toBottom || atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessages() string {
	theme := m.opts.Theme
	if len(m.state.Messages) == 0 && !m.state.Loading {
		return theme.Muted.Render("\n  " + MsgEmptyChat)
	}

	parts := make([]string, 0, len(m.state.Messages)+1)
	for _, msg := range m.state.Messages {
		if msg.Sender == store.SenderUser {
			parts = append(parts, m.renderUserMessage(msg.Content))
		} else {
			parts = append(parts, m.renderBotMessage(msg.Content))
		}
	}
	if m.state.Loading {
		parts = append(parts, m.renderThinking())
	}
	return strings.Join(parts, "\n")
}

// bubbleWidth keeps bubbles at most 80% of the view.
func (m *Model) bubbleWidth() int {
	w := m.width * 8 / 10
	if w < 10 {
		w = 10
	}
	return w
}

// renderUserMessage right-aligns the user's bubble.
func (m *Model) renderUserMessage(content string) string {
	maxWidth := m.bubbleWidth()
	rendered := m.opts.Theme.UserBubble.Render(util.Wrap(content, maxWidth-2))

	marginLeft := m.width - lipgloss.Width(rendered) - 1
	if marginLeft < 0 {
		marginLeft = 0
	}
	return lipgloss.NewStyle().MarginLeft(marginLeft).MarginTop(1).Render(rendered)
}

// renderBotMessage left-aligns a bot answer rendered as markdown.
func (m *Model) renderBotMessage(content string) string {
	body := m.renderer.render(content)
	return lipgloss.NewStyle().MarginTop(1).Render(m.opts.Theme.BotBubble.Render(body))
}

func (m *Model) renderThinking() string {
	theme := m.opts.Theme
	return lipgloss.NewStyle().MarginTop(1).Render(
		m.spinner.View() + " " + theme.ThinkingText.Render(MsgThinking),
	)
}

func (m Model) renderStatus() string {
	theme := m.opts.Theme
	if m.voice == voiceRecording {
		return theme.Recording.Render(recordingBanner)
	}
	hint := "enter send · ctrl+g graph · /help commands"
	if m.state.LastConvID != nil {
		hint = "conv " + m.state.LastConvID.String() + " · " + hint
	}
	return theme.Footer.Render(util.TruncateWidth(hint, max(m.width-2, 1)))
}
