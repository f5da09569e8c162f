// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("dark")
}

// =============================================================================
// NOTICE BANNER
// =============================================================================

func TestBanner_ShowAndExpire(t *testing.T) {
	b := NewBanner()
	_, ok := b.Current()
	require.False(t, ok)

	b, cmd := b.Update(NoticeMsg{Kind: NoticeError, Text: "OCR failed to process image"})
	require.NotNil(t, cmd, "a shown notice schedules its own expiry")

	n, ok := b.Current()
	require.True(t, ok)
	require.Equal(t, NoticeError, n.Kind)
	require.Contains(t, b.View(testTheme(), 80), "OCR failed to process image")

	b, _ = b.Update(noticeExpiredMsg{id: n.ID})
	_, ok = b.Current()
	require.False(t, ok)
	require.Empty(t, b.View(testTheme(), 80))
}

func TestBanner_NewerNoticeSurvivesOldExpiry(t *testing.T) {
	b := NewBanner()
	b, _ = b.Update(NoticeMsg{Kind: NoticeInfo, Text: "first"})
	first, _ := b.Current()
	b, _ = b.Update(NoticeMsg{Kind: NoticeError, Text: "second"})

	b, _ = b.Update(noticeExpiredMsg{id: first.ID})
	n, ok := b.Current()
	require.True(t, ok)
	require.Equal(t, "second", n.Text)
}

func TestBanner_IgnoresEmptyText(t *testing.T) {
	b, cmd := NewBanner().Update(NoticeMsg{Text: ""})
	require.Nil(t, cmd)
	_, ok := b.Current()
	require.False(t, ok)
}

func TestNoticeCommands(t *testing.T) {
	msg := ErrorNotice("boom")()
	require.Equal(t, NoticeMsg{Kind: NoticeError, Text: "boom"}, msg)
	msg = InfoNotice("fyi")()
	require.Equal(t, NoticeMsg{Kind: NoticeInfo, Text: "fyi"}, msg)
}

// =============================================================================
// GRAPH
// =============================================================================

func TestGraphModal_TitleAndBody(t *testing.T) {
	var g apiclient.Graph
	require.NoError(t, json.Unmarshal([]byte(`{"nodes":[{"id":"n1"}],"edges":[]}`), &g))

	m := NewGraphModal(apiclient.ID("42"), &g, 100, 40)
	require.Equal(t, "Reasoning Graph (Conv: 42)", GraphTitle(m.ConvID))
	require.Contains(t, m.Body, "\"nodes\"")
	require.Contains(t, m.View(testTheme()), "Reasoning Graph (Conv: 42)")
}

func TestHighlightJSON_KeepsContent(t *testing.T) {
	out := HighlightJSON(`{"a": 1}`)
	require.Contains(t, out, "a")
	require.Contains(t, out, "1")
}

// =============================================================================
// SIDEBAR
// =============================================================================

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSidebar_Navigation(t *testing.T) {
	s := NewSidebar()
	labels := make([]string, 0, 4)
	for _, it := range s.Items() {
		labels = append(labels, it.Label)
	}
	require.Equal(t, []string{"Chat", "Appointments", "Profile", "Logout"}, labels)

	s, _ = s.Update(keyMsg("down"))
	s, cmd := s.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	require.Equal(t, NavigateMsg{Page: PageAppointments}, cmd())

	s, _ = s.Update(keyMsg("down"))
	s, _ = s.Update(keyMsg("down"))
	s, _ = s.Update(keyMsg("down")) // clamps at the last entry
	require.True(t, s.Selected().Logout)
	_, cmd = s.Update(keyMsg("enter"))
	require.Equal(t, LogoutMsg{}, cmd())
}

func TestSidebar_SetActiveMovesCursor(t *testing.T) {
	s := NewSidebar().SetActive(PageProfile)
	require.Equal(t, PageProfile, s.Active())
	require.Equal(t, "Profile", s.Selected().Label)
	require.Contains(t, s.View(testTheme(), 20, true), "Profile")
}

// =============================================================================
// PROFILE & HEADER
// =============================================================================

func TestRenderProfile(t *testing.T) {
	th := testTheme()
	require.Contains(t, RenderProfile(th, nil, 60), MsgNoUser)

	out := RenderProfile(th, &apiclient.User{Name: "Ada", Email: "ada@example.com"}, 60)
	require.Contains(t, out, "Ada")
	require.Contains(t, out, "ada@example.com")

	out = RenderProfile(th, &apiclient.User{Email: "x@example.com"}, 60)
	require.Contains(t, out, "User")
}

func TestRenderHeader(t *testing.T) {
	th := testTheme()
	out := RenderHeader(th, &apiclient.User{FullName: "Grace Hopper"}, 80)
	require.Contains(t, out, AppTitle)
	require.Contains(t, out, "Grace Hopper")
	require.Contains(t, RenderHeader(th, nil, 80), AppTitle)
}

// =============================================================================
// DOCTORS
// =============================================================================

func TestDoctorList_Filter(t *testing.T) {
	d := NewDoctorList()
	require.Len(t, d.Results(), 4)

	d.SetQuery("NEURO")
	res := d.Results()
	require.Len(t, res, 1)
	require.Equal(t, "Dr. Mei Lin", res[0].Name)

	d.SetQuery("zzz")
	require.Empty(t, d.Results())
	require.True(t, strings.Contains(d.View(testTheme(), 60), "No doctors found"))
}

func TestDoctorList_TypingUpdatesQuery(t *testing.T) {
	d := NewDoctorList()
	d.Focus()
	d, _ = d.Update(keyMsg("khan"))
	require.Equal(t, "khan", d.Query())
	require.Len(t, d.Results(), 1)
}
