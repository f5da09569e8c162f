// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session exposes the signed-in user to the views.
//
// The Provider wraps the auth container with a three-state status so the
// root view can tell "still checking the stored credential" apart from
// "a form is submitting".
//
// # Key Types
//
//   - Provider: login/register/logout surface plus the current user
//   - Status: Unknown, Authenticated or Anonymous
//
// # Usage
//
//	p := session.NewProvider(auth, tokens, logger)
//	switch p.Init(ctx) {
//	case session.StatusAuthenticated:
//	    // show chat
//	case session.StatusAnonymous:
//	    // show login
//	}
package session
