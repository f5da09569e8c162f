// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tokenstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/kvstore"
)

// fakeSealer reverses the string behind the ENC: prefix.
type fakeSealer struct{ fail bool }

func (f fakeSealer) Seal(p string) (string, error) {
	return "ENC:" + reverse(p), nil
}

func (f fakeSealer) Open(v string) (string, error) {
	if f.fail {
		return "", errors.New("bad key")
	}
	return reverse(strings.TrimPrefix(v, "ENC:")), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

type brokenKV struct{ kvstore.Store }

func (brokenKV) Get(context.Context, string) (string, error) {
	return "", errors.New("disk on fire")
}

func TestStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s := New(kv)

	_, ok := s.Get(ctx)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "abc.def"))
	raw, err := kv.Get(ctx, Key)
	require.NoError(t, err)
	require.Equal(t, `"abc.def"`, raw, "credential is JSON encoded")

	got, ok := s.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "abc.def", got)

	require.NoError(t, s.Clear(ctx))
	_, ok = s.Get(ctx)
	require.False(t, ok)

	require.NoError(t, s.Clear(ctx), "clearing an empty slot is a no-op")
}

func TestStore_RawFallback(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, Key, "legacy-raw-token"))

	got, ok := New(kv).Get(ctx)
	require.True(t, ok)
	require.Equal(t, "legacy-raw-token", got)
}

func TestStore_ReadErrorIsAbsent(t *testing.T) {
	_, ok := New(brokenKV{}).Get(context.Background())
	require.False(t, ok)
}

func TestStore_Sealed(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s := New(kv, WithSealer(fakeSealer{}))

	require.NoError(t, s.Set(ctx, "secret"))
	raw, err := kv.Get(ctx, Key)
	require.NoError(t, err)
	require.Equal(t, `"ENC:terces"`, raw)

	got, ok := s.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "secret", got)

	// Plain values written before sealing was enabled still load.
	require.NoError(t, kv.Set(ctx, Key, `"plain"`))
	got, ok = s.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "plain", got)
}

func TestStore_UnsealFailureIsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, Key, `"ENC:xyz"`))

	_, ok := New(kv, WithSealer(fakeSealer{fail: true})).Get(ctx)
	require.False(t, ok)
}

func TestStore_Items(t *testing.T) {
	ctx := context.Background()
	s := New(kvstore.NewMemoryStore())

	type prefs struct {
		Theme string `json:"theme"`
	}
	require.NoError(t, s.SetItem(ctx, "prefs", prefs{Theme: "dark"}))

	var p prefs
	require.True(t, s.GetItem(ctx, "prefs", &p))
	require.Equal(t, "dark", p.Theme)

	require.NoError(t, s.RemoveItem(ctx, "prefs"))
	require.False(t, s.GetItem(ctx, "prefs", &p))
}
