// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apiclient

import (
	"context"
	"net/url"
)

// Gateway endpoint paths.
const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathMe       = "/auth/me"
	PathQuery    = "/api/v1/chat/query"
	PathGraph    = "/api/v1/graph/"
	PathVoice    = "/api/v1/voice"
	PathOCR      = "/api/v1/ocr"
)

// Voice uploads always use this part layout.
const (
	VoiceField       = "file"
	VoiceFilename    = "voice.webm"
	VoiceContentType = "audio/webm"
)

// Gateway exposes the typed endpoints of the medical chat gateway.
type Gateway struct {
	c *Client
}

// NewGateway wraps c.
func NewGateway(c *Client) *Gateway {
	return &Gateway{c: c}
}

// Client returns the underlying client.
func (g *Gateway) Client() *Client {
	return g.c
}

// Login exchanges credentials for a token and user. No bearer is sent.
func (g *Gateway) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := g.c.Post(ctx, PathLogin, creds, &resp, WithoutAuth()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns a token and user. No bearer is sent.
func (g *Gateway) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var resp AuthResponse
	if err := g.c.Post(ctx, PathRegister, reg, &resp, WithoutAuth()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user the stored credential belongs to.
func (g *Gateway) Me(ctx context.Context) (*User, error) {
	var user User
	if err := g.c.Get(ctx, PathMe, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Query sends a chat message.
func (g *Gateway) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	var resp QueryResponse
	if err := g.c.Post(ctx, PathQuery, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Graph fetches the reasoning graph of a conversation.
func (g *Gateway) Graph(ctx context.Context, convID ID) (*Graph, error) {
	var graph Graph
	if err := g.c.Get(ctx, PathGraph+url.PathEscape(convID.String()), &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// Transcribe uploads recorded webm audio and returns the transcript.
func (g *Gateway) Transcribe(ctx context.Context, audio []byte) (string, error) {
	form := NewForm().AddFile(VoiceField, VoiceFilename, VoiceContentType, audio)
	var resp TextResponse
	if err := g.c.PostForm(ctx, PathVoice, form, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// ExtractText uploads an image and returns the recognized text.
func (g *Gateway) ExtractText(ctx context.Context, filename, contentType string, image []byte) (string, error) {
	form := NewForm().AddFile("file", filename, contentType, image)
	var resp TextResponse
	if err := g.c.PostForm(ctx, PathOCR, form, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}
