// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/medchat-tui/internal/ui/styles"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// =============================================================================
// NOTICE TYPES
// =============================================================================

// NoticeKind is the severity of a notice.
type NoticeKind int

const (
	// NoticeInfo is informational (blue).
	NoticeInfo NoticeKind = iota
	// NoticeError reports a failed operation (rose).
	NoticeError
)

// Notice durations. Errors stay longer so they can be read.
const (
	InfoNoticeDuration  = 4 * time.Second
	ErrorNoticeDuration = 8 * time.Second
)

// NoticeMsg asks the root model to show a notice. Every view reports
// request, media and navigation failures through it.
type NoticeMsg struct {
	Kind NoticeKind
	Text string
}

// ErrorNotice returns a command that shows text as an error notice.
func ErrorNotice(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Kind: NoticeError, Text: text} }
}

// InfoNotice returns a command that shows text as an info notice.
func InfoNotice(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Kind: NoticeInfo, Text: text} }
}

// noticeExpiredMsg clears the notice with the same id.
type noticeExpiredMsg struct {
	id int
}

// =============================================================================
// BANNER
// =============================================================================

// Notice is the notice currently on screen.
type Notice struct {
	ID      int
	Kind    NoticeKind
	Text    string
	Created time.Time
}

// Banner shows one notice at a time. A newer notice replaces the current
// one and restarts the dismiss timer.
type Banner struct {
	current *Notice
	nextID  int
	now     func() time.Time
}

// NewBanner creates an empty banner.
func NewBanner() Banner {
	return Banner{now: time.Now}
}

// Current returns the visible notice, if any.
func (b Banner) Current() (Notice, bool) {
	if b.current == nil {
		return Notice{}, false
	}
	return *b.current, true
}

// Dismiss hides the visible notice.
func (b Banner) Dismiss() Banner {
	b.current = nil
	return b
}

// Update handles NoticeMsg and the banner's own expiry ticks.
func (b Banner) Update(msg tea.Msg) (Banner, tea.Cmd) {
	switch msg := msg.(type) {
	case NoticeMsg:
		if msg.Text == "" {
			return b, nil
		}
		b.nextID++
		id := b.nextID
		now := time.Now
		if b.now != nil {
			now = b.now
		}
		b.current = &Notice{ID: id, Kind: msg.Kind, Text: msg.Text, Created: now()}

		d := InfoNoticeDuration
		if msg.Kind == NoticeError {
			d = ErrorNoticeDuration
		}
		return b, tea.Tick(d, func(time.Time) tea.Msg { return noticeExpiredMsg{id: id} })

	case noticeExpiredMsg:
		if b.current != nil && b.current.ID == msg.id {
			b.current = nil
		}
	}
	return b, nil
}

// View renders the notice on one line, or "" when there is none.
func (b Banner) View(theme *styles.Theme, width int) string {
	if b.current == nil {
		return ""
	}
	style := theme.NoticeInfo
	prefix := styles.StatusIndicators.Info
	if b.current.Kind == NoticeError {
		style = theme.NoticeError
		prefix = styles.StatusIndicators.Error
	}

	text := prefix + " " + b.current.Text
	if width > 2 {
		text = util.TruncateWidth(text, width-2)
		return style.Width(width).Render(text)
	}
	return style.Render(text)
}
