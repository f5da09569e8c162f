// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
)

// =============================================================================
// STATE & ACTIONS
// =============================================================================

// AuthState is the auth slice.
type AuthState struct {
	User    *apiclient.User
	Loading bool
	Error   string
}

// AuthOp names an auth operation.
type AuthOp string

const (
	OpFetchMe  AuthOp = "fetchMe"
	OpLogin    AuthOp = "login"
	OpRegister AuthOp = "register"
	OpLogout   AuthOp = "logout"
)

// Phase is the lifecycle stage of an asynchronous operation.
type Phase int

const (
	Pending Phase = iota
	Fulfilled
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// AuthAction is one transition of the auth slice. Phase is ignored for
// OpLogout.
type AuthAction struct {
	Op    AuthOp
	Phase Phase
	User  *apiclient.User
	Error string
}

// ReduceAuth applies action to state and returns the new state.
func ReduceAuth(state AuthState, action AuthAction) AuthState {
	if action.Op == OpLogout {
		state.User = nil
		return state
	}

	switch action.Phase {
	case Pending:
		state.Loading = true
		state.Error = ""
	case Fulfilled:
		state.Loading = false
		state.User = action.User
	case Rejected:
		state.Loading = false
		state.Error = action.Error
	}
	return state
}

// =============================================================================
// CONTAINER
// =============================================================================

// AuthAPI is the part of the gateway the auth slice needs.
type AuthAPI interface {
	Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.AuthResponse, error)
	Register(ctx context.Context, reg apiclient.Registration) (*apiclient.AuthResponse, error)
	Me(ctx context.Context) (*apiclient.User, error)
}

// CredentialWriter persists and clears the session credential.
type CredentialWriter interface {
	Set(ctx context.Context, credential string) error
	Clear(ctx context.Context) error
}

// Auth holds the auth slice.
type Auth struct {
	api   AuthAPI
	creds CredentialWriter
	log   *zap.Logger

	mu    sync.RWMutex
	state AuthState
	subs  notifier
}

// NewAuth creates an empty auth container.
func NewAuth(api AuthAPI, creds CredentialWriter, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{api: api, creds: creds, log: log}
}

// State returns a snapshot. The user is copied so callers cannot alias it.
func (a *Auth) State() AuthState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Subscribe returns a channel signalled after every applied action and a
// function that unsubscribes.
func (a *Auth) Subscribe() (<-chan struct{}, func()) {
	return a.subs.subscribe()
}

// Dispatch applies action. Operations below dispatch for you.
func (a *Auth) Dispatch(action AuthAction) {
	a.mu.Lock()
	a.state = ReduceAuth(a.state, action)
	a.mu.Unlock()
	a.subs.notify()
}

// FetchMe resolves the user behind the stored credential.
func (a *Auth) FetchMe(ctx context.Context) (*apiclient.User, error) {
	a.Dispatch(AuthAction{Op: OpFetchMe, Phase: Pending})

	user, err := a.api.Me(ctx)
	if err != nil {
		a.reject(OpFetchMe, err, "Session check failed")
		return nil, err
	}

	a.Dispatch(AuthAction{Op: OpFetchMe, Phase: Fulfilled, User: user})
	return user, nil
}

// Login authenticates, stores the returned credential, then records the user.
func (a *Auth) Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.User, error) {
	a.Dispatch(AuthAction{Op: OpLogin, Phase: Pending})

	resp, err := a.api.Login(ctx, creds)
	if err != nil {
		a.reject(OpLogin, err, "Login failed")
		return nil, err
	}
	return a.complete(ctx, OpLogin, resp)
}

// Register creates an account, stores the returned credential, then records
// the user.
func (a *Auth) Register(ctx context.Context, reg apiclient.Registration) (*apiclient.User, error) {
	a.Dispatch(AuthAction{Op: OpRegister, Phase: Pending})

	resp, err := a.api.Register(ctx, reg)
	if err != nil {
		a.reject(OpRegister, err, "Registration failed")
		return nil, err
	}
	return a.complete(ctx, OpRegister, resp)
}

func (a *Auth) complete(ctx context.Context, op AuthOp, resp *apiclient.AuthResponse) (*apiclient.User, error) {
	if err := a.creds.Set(ctx, resp.Token); err != nil {
		wrapped := &apiclient.Error{Message: "Could not save session", Err: err}
		a.reject(op, wrapped, "")
		return nil, wrapped
	}
	a.Dispatch(AuthAction{Op: op, Phase: Fulfilled, User: resp.User})
	a.log.Info("signed in", zap.String("op", string(op)), zap.String("user_id", idOf(resp.User)))
	return resp.User, nil
}

func (a *Auth) reject(op AuthOp, err error, fallback string) {
	msg := apiclient.Message(err, fallback)
	a.log.Info("auth request failed", zap.String("op", string(op)), zap.String("error", msg))
	a.Dispatch(AuthAction{Op: op, Phase: Rejected, Error: msg})
}

// Logout clears the stored credential once and forgets the user. The user is
// cleared even if the credential store fails; that error is returned.
func (a *Auth) Logout(ctx context.Context) error {
	err := a.creds.Clear(ctx)
	a.Dispatch(AuthAction{Op: OpLogout})
	if err != nil {
		a.log.Warn("failed to clear stored credential", zap.Error(err))
		return fmt.Errorf("clear credential: %w", err)
	}
	a.log.Info("signed out")
	return nil
}

func idOf(u *apiclient.User) string {
	if u == nil {
		return ""
	}
	return u.ID.String()
}
