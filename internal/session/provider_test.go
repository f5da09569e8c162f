// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/kvstore"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/tokenstore"
)

type fakeAPI struct {
	me       *apiclient.User
	meErr    error
	meCalls  int
	loginErr error
}

func (f *fakeAPI) Login(context.Context, apiclient.Credentials) (*apiclient.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &apiclient.AuthResponse{Token: "jwt", User: &apiclient.User{ID: "1", FullName: "Ann"}}, nil
}

func (f *fakeAPI) Register(context.Context, apiclient.Registration) (*apiclient.AuthResponse, error) {
	return nil, errors.New("socket closed")
}

func (f *fakeAPI) Me(context.Context) (*apiclient.User, error) {
	f.meCalls++
	return f.me, f.meErr
}

func newProvider(t *testing.T, api *fakeAPI, token string) (*Provider, *tokenstore.Store) {
	t.Helper()
	tokens := tokenstore.New(kvstore.NewMemoryStore())
	if token != "" {
		require.NoError(t, tokens.Set(context.Background(), token))
	}
	return NewProvider(store.NewAuth(api, tokens, nil), tokens, nil), tokens
}

func TestProvider_StartsUnknown(t *testing.T) {
	p, _ := newProvider(t, &fakeAPI{}, "")
	require.Equal(t, StatusUnknown, p.Status())
}

func TestProvider_InitWithoutCredential(t *testing.T) {
	api := &fakeAPI{}
	p, _ := newProvider(t, api, "")

	require.Equal(t, StatusAnonymous, p.Init(context.Background()))
	require.Zero(t, api.meCalls, "no who-am-i call without a credential")
	require.Nil(t, p.User())
}

func TestProvider_InitRestoresSession(t *testing.T) {
	api := &fakeAPI{me: &apiclient.User{ID: "1", Email: "a@b.co"}}
	p, _ := newProvider(t, api, "jwt")

	require.Equal(t, StatusAuthenticated, p.Init(context.Background()))
	require.Equal(t, "a@b.co", p.User().Email)
}

func TestProvider_InitRejectedCredentialCleared(t *testing.T) {
	api := &fakeAPI{meErr: &apiclient.Error{Status: 401, Message: "Could not validate credentials"}}
	p, tokens := newProvider(t, api, "expired")

	require.Equal(t, StatusAnonymous, p.Init(context.Background()))
	_, ok := tokens.Get(context.Background())
	require.False(t, ok)
}

func TestProvider_InitNetworkErrorKeepsCredential(t *testing.T) {
	api := &fakeAPI{meErr: &apiclient.Error{Message: "Unable to reach the server"}}
	p, tokens := newProvider(t, api, "jwt")

	require.Equal(t, StatusAnonymous, p.Init(context.Background()))
	_, ok := tokens.Get(context.Background())
	require.True(t, ok)
}

func TestProvider_LoginLogout(t *testing.T) {
	p, tokens := newProvider(t, &fakeAPI{}, "")
	p.Init(context.Background())

	user, err := p.Login(context.Background(), apiclient.Credentials{Email: "a@b.co", Password: "abc12345"})
	require.NoError(t, err)
	require.Equal(t, "Ann", user.DisplayName())
	require.Equal(t, StatusAuthenticated, p.Status())

	require.NoError(t, p.Logout(context.Background()))
	require.Equal(t, StatusAnonymous, p.Status())
	require.Nil(t, p.User())
	_, ok := tokens.Get(context.Background())
	require.False(t, ok)
}

func TestProvider_ErrorsAreUserFacing(t *testing.T) {
	p, _ := newProvider(t, &fakeAPI{loginErr: &apiclient.Error{Status: 401, Message: "Incorrect email or password"}}, "")

	_, err := p.Login(context.Background(), apiclient.Credentials{})
	require.EqualError(t, err, "Incorrect email or password")
	require.Equal(t, StatusUnknown, p.Status(), "failed login does not change status")

	_, err = p.Register(context.Background(), apiclient.Registration{})
	require.EqualError(t, err, "Register failed")
}
