// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apiclient is the HTTP client for the medical chat gateway.
//
// Every request resolves its path against the configured base URL and, unless
// marked WithoutAuth, carries "Authorization: Bearer <credential>" read from
// the credential store at call time (an empty credential still sends the
// header). Non-2xx responses and transport failures are reported as *Error
// whose Message is safe to show to the user.
//
// # Usage
//
//	c := apiclient.New(tokens, apiclient.Options{BaseURL: cfg.Gateway.BaseURL})
//	gw := apiclient.NewGateway(c)
//	resp, err := gw.Query(ctx, apiclient.QueryRequest{Text: "I have a headache"})
package apiclient
