// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Recorder opens the microphone.
type Recorder interface {
	Start(ctx context.Context) (Recording, error)
}

// Recording is an open capture session.
type Recording interface {
	// Stop ends the capture and returns the encoded audio.
	Stop() ([]byte, error)
}

// Capture allows at most one recording at a time.
type Capture struct {
	rec    Recorder
	active atomic.Bool

	mu      sync.Mutex
	current Recording
}

// NewCapture wraps rec.
func NewCapture(rec Recorder) *Capture {
	return &Capture{rec: rec}
}

// Recording reports whether a capture is open.
func (c *Capture) Recording() bool {
	return c.active.Load()
}

// Start opens the microphone. A second Start before Stop returns
// ErrAlreadyRecording.
func (c *Capture) Start(ctx context.Context) error {
	if !c.active.CompareAndSwap(false, true) {
		return ErrAlreadyRecording
	}

	r, err := c.rec.Start(ctx)
	if err != nil {
		c.active.Store(false)
		var capErr *CaptureError
		if errors.As(err, &capErr) {
			return capErr
		}
		return &CaptureError{Err: err}
	}

	c.mu.Lock()
	c.current = r
	c.mu.Unlock()
	return nil
}

// Stop ends the capture and packages the audio for upload.
func (c *Capture) Stop() (*Upload, error) {
	c.mu.Lock()
	r := c.current
	c.current = nil
	c.mu.Unlock()

	if r == nil {
		return nil, ErrNotRecording
	}
	defer c.active.Store(false)

	data, err := r.Stop()
	if err != nil {
		return nil, err
	}
	return VoiceUpload(data)
}
