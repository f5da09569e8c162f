// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTheme_ForcedModes(t *testing.T) {
	require.True(t, NewTheme("dark").IsDark)
	require.False(t, NewTheme("LIGHT").IsDark)
}

func TestLayoutMode(t *testing.T) {
	th := NewTheme("dark")
	th.SetSize(40, 20)
	require.Equal(t, LayoutNarrow, th.GetLayoutMode())
	th.SetSize(80, 20)
	require.Equal(t, LayoutMedium, th.GetLayoutMode())
	th.SetSize(120, 20)
	require.Equal(t, LayoutWide, th.GetLayoutMode())
}

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	require.True(t, strings.Contains(RenderError("boom"), "[X]"))
	require.True(t, strings.Contains(RenderSuccess("ok"), "[OK]"))
	require.True(t, strings.Contains(RenderWarning("hm"), "[!]"))
	require.True(t, strings.Contains(RenderInfo("fyi"), "[i]"))
}
