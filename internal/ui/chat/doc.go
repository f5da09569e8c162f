// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view of the TUI.
//
// The view is a message list in a viewport above a one-line composer. Typed
// text, voice transcripts and OCR output all end up in the same send path.
// Slash commands:
//
//	/voice           start or stop a voice recording
//	/upload <image>  extract text from an image and send it
//	/graph           show the reasoning graph of the conversation
//	/clear           clear the conversation
//	/help            list commands
//
// The view reads the chat slice through snapshots and changes it only
// through the container's operations.
package chat
