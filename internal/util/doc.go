// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the medchat packages.
//
// String Utilities:
//   - TruncateRunes, TruncateWidth: UTF-8 and column aware truncation
//   - StringWidth, PadRight, Wrap: terminal column arithmetic (go-runewidth)
//
// File Operations:
//   - WriteAtomic, WriteFileAtomic: crash-safe replace via temp file, fsync and rename
package util
