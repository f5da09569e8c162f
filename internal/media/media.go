// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package media captures microphone audio and packages files for upload.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrAlreadyRecording is returned when a recording is started while
	// another one is active.
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	// ErrNotRecording is returned when stopping without an active recording.
	ErrNotRecording = errors.New("no recording in progress")
	// ErrEmptyRecording means the recorder produced no audio.
	ErrEmptyRecording = errors.New("recording is empty")
	// ErrNotImage rejects non-image files before upload.
	ErrNotImage = errors.New("file is not an image")
	// ErrTooLarge rejects files above the configured upload limit.
	ErrTooLarge = errors.New("file is too large to upload")
)

// MsgMicrophone is shown for any capture failure.
const MsgMicrophone = "Microphone access denied or unavailable."

// CaptureError reports a microphone that could not be opened or failed
// while recording.
type CaptureError struct {
	// Denied is true when the device refused access.
	Denied bool
	Err    error
}

func (e *CaptureError) Error() string {
	return MsgMicrophone
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// =============================================================================
// UPLOADS
// =============================================================================

// Upload is one multipart file part.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Voice uploads use a fixed part layout.
const (
	VoiceField       = "file"
	VoiceFilename    = "voice.webm"
	VoiceContentType = "audio/webm"
)

// VoiceUpload packages recorded audio.
func VoiceUpload(data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, ErrEmptyRecording
	}
	return &Upload{
		Field:       VoiceField,
		Filename:    VoiceFilename,
		ContentType: VoiceContentType,
		Data:        data,
	}, nil
}

// ImageUpload reads path and packages it for text extraction. Files larger
// than maxBytes (when positive) or not sniffed as an image are rejected.
func ImageUpload(path string, maxBytes int64) (*Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return nil, ErrNotImage
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrTooLarge, filepath.Base(path), info.Size(), maxBytes)
	}

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	return ImageUploadBytes(filepath.Base(path), data)
}

// ImageUploadBytes packages in-memory image data.
func ImageUploadBytes(filename string, data []byte) (*Upload, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w (detected %s)", ErrNotImage, mtype.String())
	}
	return &Upload{
		Field:       "file",
		Filename:    filename,
		ContentType: mtype.String(),
		Data:        data,
	}, nil
}
