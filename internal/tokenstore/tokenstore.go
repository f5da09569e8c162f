// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tokenstore holds the single persisted session credential.
//
// Values are written JSON-encoded. Reads decode JSON and fall back to the
// raw stored value so credentials written by older clients still load.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jeranaias/medchat-tui/internal/kvstore"
	"github.com/jeranaias/medchat-tui/internal/security"
)

// Key is the storage key of the credential slot.
const Key = "token"

// Sealer encrypts values at rest. *security.Sealer implements it.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(value string) (string, error)
}

var _ Sealer = (*security.Sealer)(nil)

// Store is the credential slot.
type Store struct {
	kv     kvstore.Store
	sealer Sealer
	log    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSealer encrypts the credential before it is written.
func WithSealer(s Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

// WithLogger sets the logger for storage failures.
func WithLogger(l *zap.Logger) Option {
	return func(st *Store) { st.log = l }
}

// New returns a Store over kv.
func New(kv kvstore.Store, opts ...Option) *Store {
	st := &Store{kv: kv, log: zap.NewNop()}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// =============================================================================
// CREDENTIAL SLOT
// =============================================================================

// Get returns the stored credential. A missing or unreadable value reports
// ok=false; it is never an error.
func (s *Store) Get(ctx context.Context) (string, bool) {
	var credential string
	ok := s.GetItem(ctx, Key, &credential)
	if !ok {
		return "", false
	}

	if s.sealer != nil && security.IsEncrypted(credential) {
		opened, err := s.sealer.Open(credential)
		if err != nil {
			s.log.Warn("stored credential could not be unsealed", zap.Error(err))
			return "", false
		}
		credential = opened
	}
	return credential, true
}

// Set replaces the stored credential.
func (s *Store) Set(ctx context.Context, credential string) error {
	value := credential
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(credential)
		if err != nil {
			return fmt.Errorf("seal credential: %w", err)
		}
		value = sealed
	}
	return s.SetItem(ctx, Key, value)
}

// Clear removes the stored credential. Clearing an empty slot is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	return s.RemoveItem(ctx, Key)
}

// =============================================================================
// GENERIC ITEMS
// =============================================================================

// GetItem decodes the value stored under key into out. When the stored value
// is not valid JSON and out is a *string, the raw value is used instead.
func (s *Store) GetItem(ctx context.Context, key string, out interface{}) bool {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.log.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		str, isString := out.(*string)
		if !isString {
			s.log.Warn("stored item is not valid JSON", zap.String("key", key), zap.Error(err))
			return false
		}
		*str = raw
	}
	return true
}

// SetItem JSON-encodes value under key.
func (s *Store) SetItem(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := s.kv.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
