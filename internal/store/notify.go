// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the auth and chat state containers.
//
// Each container pairs a pure reducer (ReduceAuth, ReduceChat) with a
// mutex-guarded holder whose operations call the gateway, apply the
// resulting actions and notify subscribers. Views read snapshots via State
// and never mutate state directly.
package store

import (
	"errors"
	"sync"
)

// ErrSuperseded is returned when a completion arrives after a newer request
// on the same stream (or a clear) made it stale. Its result is discarded.
var ErrSuperseded = errors.New("store: response superseded by a newer request")

// notifier fans out change signals. Sends never block: a subscriber that has
// not drained its previous signal simply sees one pending signal.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan struct{}
}

func (n *notifier) subscribe() (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]chan struct{})
	}
	id := n.next
	n.next++
	ch := make(chan struct{}, 1)
	n.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (n *notifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
