// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/medchat-tui/internal/apiclient"
)

// User-visible texts.
const (
	MsgQueryFailed  = "❌ Unable to fetch response"
	MsgVoiceFailed  = "🎙 Voice processing failed."
	MsgNoConvYet    = "No conversation yet!"
	MsgOCRFailed    = "OCR failed to process image"
	MsgThinking     = "Thinking..."
	MsgUploadUsage  = "Usage: /upload <image>"
	MsgEmptyChat    = "Ask a medical question to get started."
	MsgMicBusy      = "The microphone is still starting or stopping."
	ComposerPrompt  = "Ask a medical question..."
	recordingBanner = "● REC  /voice to stop"
)

// DefaultUserID is sent when the signed-in user has no id.
const DefaultUserID = apiclient.ID("1")

// voiceState tracks the microphone across the async start and stop.
type voiceState int

const (
	voiceIdle voiceState = iota
	voiceStarting
	voiceRecording
	voiceStopping
)

// stateChangedMsg is delivered when the chat slice notifies.
type stateChangedMsg struct{}

// queryResultMsg ends a SendChatQuery.
type queryResultMsg struct {
	err error
}

// graphResultMsg ends a FetchGraph.
type graphResultMsg struct {
	convID apiclient.ID
	graph  *apiclient.Graph
	err    error
}

// recordStartedMsg reports whether the microphone opened.
type recordStartedMsg struct {
	err error
}

// transcriptMsg carries a voice transcript or the failure to get one.
type transcriptMsg struct {
	text string
	err  error
}

// ocrResultMsg carries text extracted from an image.
type ocrResultMsg struct {
	path string
	text string
	err  error
}
