// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zap.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zap.WarnLevel, ParseLevel("warning"))
	require.Equal(t, zap.ErrorLevel, ParseLevel("error"))
	require.Equal(t, zap.InfoLevel, ParseLevel("bogus"))
}

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "medchat.log")
	logger, closeFn, err := New(Options{Path: path, Level: "info"})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("request finished", zap.Int("status", 200))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "debug record filtered at info level")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "request finished", rec["message"])
	require.Equal(t, "INFO", rec["level"])
	require.EqualValues(t, 200, rec["status"])
}

func TestNew_ConsoleCore(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Console: &buf})
	require.NoError(t, err)

	logger.Debug("verbose detail")
	require.NoError(t, closeFn())
	require.Contains(t, buf.String(), "verbose detail")
}

func TestNew_NoCoresIsNop(t *testing.T) {
	logger, closeFn, err := New(Options{})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("dropped")
	require.NoError(t, closeFn())
}
