// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable pieces of the medchat TUI.
//
// # Components
//
//   - Banner: the notice line every view reports failures through (NoticeMsg)
//   - GraphModal: chroma-highlighted reasoning graph in a scrollable viewport
//   - Sidebar: Chat, Appointments, Profile and Logout navigation
//   - DoctorList: searchable doctor directory
//   - RenderProfile, RenderHeader: static renderers
package components
