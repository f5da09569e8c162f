// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
)

type fakeAuthAPI struct {
	loginResp *apiclient.AuthResponse
	loginErr  error
	regResp   *apiclient.AuthResponse
	regErr    error
	me        *apiclient.User
	meErr     error

	gotCreds apiclient.Credentials
	gotReg   apiclient.Registration
}

func (f *fakeAuthAPI) Login(_ context.Context, c apiclient.Credentials) (*apiclient.AuthResponse, error) {
	f.gotCreds = c
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Register(_ context.Context, r apiclient.Registration) (*apiclient.AuthResponse, error) {
	f.gotReg = r
	return f.regResp, f.regErr
}

func (f *fakeAuthAPI) Me(context.Context) (*apiclient.User, error) {
	return f.me, f.meErr
}

type fakeCreds struct {
	value   string
	sets    int
	clears  int
	failSet error
}

func (f *fakeCreds) Set(_ context.Context, v string) error {
	if f.failSet != nil {
		return f.failSet
	}
	f.sets++
	f.value = v
	return nil
}

func (f *fakeCreds) Clear(context.Context) error {
	f.clears++
	f.value = ""
	return nil
}

// =============================================================================
// REDUCER
// =============================================================================

func TestReduceAuth_Transitions(t *testing.T) {
	user := &apiclient.User{ID: "1", Email: "user@example.com"}

	s := ReduceAuth(AuthState{Error: "old"}, AuthAction{Op: OpLogin, Phase: Pending})
	require.True(t, s.Loading)
	require.Empty(t, s.Error)

	s = ReduceAuth(s, AuthAction{Op: OpLogin, Phase: Fulfilled, User: user})
	require.False(t, s.Loading)
	require.Equal(t, user, s.User)

	s = ReduceAuth(s, AuthAction{Op: OpFetchMe, Phase: Rejected, Error: "expired"})
	require.False(t, s.Loading)
	require.Equal(t, "expired", s.Error)
	require.Equal(t, user, s.User, "rejection never touches user")

	s.Loading = true
	s = ReduceAuth(s, AuthAction{Op: OpLogout})
	require.Nil(t, s.User)
	require.True(t, s.Loading, "logout leaves loading")
	require.Equal(t, "expired", s.Error, "logout leaves error")
}

// =============================================================================
// CONTAINER
// =============================================================================

func TestAuth_LoginPersistsTokenAndUser(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &apiclient.AuthResponse{
		Token: "jwt",
		User:  &apiclient.User{ID: "1", Email: "user@example.com"},
	}}
	creds := &fakeCreds{}
	a := NewAuth(api, creds, nil)

	user, err := a.Login(context.Background(), apiclient.Credentials{Email: "user@example.com", Password: "abc12345"})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", user.Email)
	require.Equal(t, "jwt", creds.value)
	require.Equal(t, 1, creds.sets)

	s := a.State()
	require.False(t, s.Loading)
	require.Equal(t, apiclient.ID("1"), s.User.ID)
	require.Equal(t, apiclient.Credentials{Email: "user@example.com", Password: "abc12345"}, api.gotCreds)
}

func TestAuth_LoginFailureKeepsUser(t *testing.T) {
	api := &fakeAuthAPI{loginErr: &apiclient.Error{Status: 401, Message: "Incorrect email or password"}}
	creds := &fakeCreds{}
	a := NewAuth(api, creds, nil)
	a.Dispatch(AuthAction{Op: OpFetchMe, Phase: Fulfilled, User: &apiclient.User{ID: "7"}})

	_, err := a.Login(context.Background(), apiclient.Credentials{})
	require.Error(t, err)

	s := a.State()
	require.Equal(t, "Incorrect email or password", s.Error)
	require.Equal(t, apiclient.ID("7"), s.User.ID)
	require.False(t, s.Loading)
	require.Zero(t, creds.sets, "no credential stored on failure")
}

func TestAuth_RegisterSendsFullName(t *testing.T) {
	api := &fakeAuthAPI{regResp: &apiclient.AuthResponse{Token: "t2", User: &apiclient.User{ID: "2", FullName: "Cy"}}}
	creds := &fakeCreds{}
	a := NewAuth(api, creds, nil)

	reg := apiclient.Registration{FullName: "Cy", Email: "c@d.co", Password: "abc12345"}
	user, err := a.Register(context.Background(), reg)
	require.NoError(t, err)
	require.Equal(t, "Cy", user.DisplayName())
	require.Equal(t, reg, api.gotReg)
	require.Equal(t, "t2", creds.value)
}

func TestAuth_CredentialWriteFailure(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &apiclient.AuthResponse{Token: "jwt", User: &apiclient.User{ID: "1"}}}
	a := NewAuth(api, &fakeCreds{failSet: errors.New("disk full")}, nil)

	_, err := a.Login(context.Background(), apiclient.Credentials{})
	require.Error(t, err)
	require.Nil(t, a.State().User, "no user without a stored credential")
	require.Equal(t, "Could not save session", a.State().Error)
}

func TestAuth_FetchMe(t *testing.T) {
	api := &fakeAuthAPI{me: &apiclient.User{ID: "9", Email: "me@x.io"}}
	a := NewAuth(api, &fakeCreds{}, nil)

	user, err := a.FetchMe(context.Background())
	require.NoError(t, err)
	require.Equal(t, apiclient.ID("9"), user.ID)
	require.Equal(t, apiclient.ID("9"), a.State().User.ID)

	api.meErr = &apiclient.Error{Status: 401, Message: "Could not validate credentials"}
	_, err = a.FetchMe(context.Background())
	require.True(t, apiclient.IsUnauthorized(err))
	require.Equal(t, "Could not validate credentials", a.State().Error)
	require.NotNil(t, a.State().User)
}

func TestAuth_LogoutClearsOnce(t *testing.T) {
	creds := &fakeCreds{value: "jwt"}
	a := NewAuth(&fakeAuthAPI{}, creds, nil)
	a.Dispatch(AuthAction{Op: OpLogin, Phase: Fulfilled, User: &apiclient.User{ID: "1"}})

	require.NoError(t, a.Logout(context.Background()))
	require.Nil(t, a.State().User)
	require.Equal(t, 1, creds.clears)
	require.Empty(t, creds.value)
}

func TestAuth_StateIsACopy(t *testing.T) {
	a := NewAuth(&fakeAuthAPI{}, &fakeCreds{}, nil)
	a.Dispatch(AuthAction{Op: OpLogin, Phase: Fulfilled, User: &apiclient.User{Email: "a@b.co"}})

	s := a.State()
	s.User.Email = "mutated"
	require.Equal(t, "a@b.co", a.State().User.Email)
}

func TestAuth_SubscribeSignals(t *testing.T) {
	a := NewAuth(&fakeAuthAPI{}, &fakeCreds{}, nil)
	ch, cancel := a.Subscribe()
	defer cancel()

	a.Dispatch(AuthAction{Op: OpLogout})
	select {
	case <-ch:
	default:
		t.Fatal("expected a change signal")
	}
}
