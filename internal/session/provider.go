// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/store"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the session lifecycle as seen by the views.
type Status int

const (
	// StatusUnknown means the stored credential has not been checked yet.
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// =============================================================================
// PROVIDER
// =============================================================================

// CredentialReader reports whether a credential is stored.
type CredentialReader interface {
	Get(ctx context.Context) (string, bool)
}

// Provider is the single auth surface the views use.
type Provider struct {
	auth  *store.Auth
	creds CredentialReader
	log   *zap.Logger

	mu     sync.RWMutex
	status Status
}

// NewProvider returns a provider in StatusUnknown.
func NewProvider(auth *store.Auth, creds CredentialReader, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{auth: auth, creds: creds, log: log}
}

// Init checks the stored credential once. Without one the session is
// anonymous and no request is made. A credential the gateway rejects with
// 401 is cleared.
func (p *Provider) Init(ctx context.Context) Status {
	if _, ok := p.creds.Get(ctx); !ok {
		p.setStatus(StatusAnonymous)
		return StatusAnonymous
	}

	if _, err := p.auth.FetchMe(ctx); err != nil {
		if apiclient.IsUnauthorized(err) {
			if lerr := p.auth.Logout(ctx); lerr != nil {
				p.log.Warn("could not clear rejected credential", zap.Error(lerr))
			}
		}
		p.log.Info("stored session not restored", zap.Error(err))
		p.setStatus(StatusAnonymous)
		return StatusAnonymous
	}

	p.setStatus(StatusAuthenticated)
	return StatusAuthenticated
}

// Status returns the current status.
func (p *Provider) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Provider) setStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

// User returns the signed-in user, or nil.
func (p *Provider) User() *apiclient.User {
	return p.auth.State().User
}

// Auth returns the underlying auth container.
func (p *Provider) Auth() *store.Auth {
	return p.auth
}

// Login signs in. The returned error always carries a user-facing message.
func (p *Provider) Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.User, error) {
	user, err := p.auth.Login(ctx, creds)
	if err != nil {
		return nil, userFacing(err, "Login failed")
	}
	p.setStatus(StatusAuthenticated)
	return user, nil
}

// Register creates an account and signs in.
func (p *Provider) Register(ctx context.Context, reg apiclient.Registration) (*apiclient.User, error) {
	user, err := p.auth.Register(ctx, reg)
	if err != nil {
		return nil, userFacing(err, "Register failed")
	}
	p.setStatus(StatusAuthenticated)
	return user, nil
}

// Logout signs out. The session is anonymous afterwards even if clearing the
// stored credential failed.
func (p *Provider) Logout(ctx context.Context) error {
	err := p.auth.Logout(ctx)
	p.setStatus(StatusAnonymous)
	return err
}

// userFacing guarantees an *apiclient.Error with a non-empty message.
func userFacing(err error, fallback string) error {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return &apiclient.Error{Status: apiErr.Status, Message: fallback, Err: apiErr.Err}
		}
		return apiErr
	}
	return &apiclient.Error{Message: fallback, Err: err}
}
