// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OutputPlaceholder in a record command is replaced by a temp file path.
// Without it the command must write webm audio to stdout.
const OutputPlaceholder = "{output}"

// StopGrace is how long a recorder gets to finalize after an interrupt.
const StopGrace = 3 * time.Second

// CommandRecorder records by running an external program such as ffmpeg
// until it is interrupted.
type CommandRecorder struct {
	// Command is split on whitespace; quoting is not supported.
	Command string
	// TempDir holds output files. Empty means os.TempDir().
	TempDir string
}

// Start launches the command.
func (r *CommandRecorder) Start(ctx context.Context) (Recording, error) {
	args := strings.Fields(r.Command)
	if len(args) == 0 {
		return nil, &CaptureError{Err: errors.New("no record command configured")}
	}

	var outPath string
	for i, a := range args {
		if strings.Contains(a, OutputPlaceholder) {
			if outPath == "" {
				dir := r.TempDir
				if dir == "" {
					dir = os.TempDir()
				}
				outPath = filepath.Join(dir, "medchat-"+uuid.NewString()+".webm")
			}
			args[i] = strings.ReplaceAll(a, OutputPlaceholder, outPath)
		}
	}

	if _, err := exec.LookPath(args[0]); err != nil {
		return nil, &CaptureError{Err: fmt.Errorf("recorder %q not found: %w", args[0], err)}
	}

	cmd := exec.Command(args[0], args[1:]...)
	rec := &commandRecording{cmd: cmd, outPath: outPath, done: make(chan struct{})}
	if outPath == "" {
		cmd.Stdout = &rec.stdout
	}
	cmd.Stderr = &rec.stderr

	if err := cmd.Start(); err != nil {
		return nil, &CaptureError{Denied: os.IsPermission(err), Err: err}
	}

	go func() {
		rec.waitErr = cmd.Wait()
		close(rec.done)
	}()

	// A recorder that dies immediately never had the device.
	select {
	case <-rec.done:
		if rec.waitErr != nil {
			rec.cleanup()
			return nil, rec.captureError(rec.waitErr)
		}
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-rec.done
		rec.cleanup()
		return nil, ctx.Err()
	}

	return rec, nil
}

type commandRecording struct {
	cmd     *exec.Cmd
	outPath string
	stdout  bytes.Buffer
	stderr  bytes.Buffer

	done    chan struct{}
	waitErr error

	once sync.Once
}

// Stop interrupts the recorder, waits for it to finalize and returns the
// captured audio.
func (r *commandRecording) Stop() ([]byte, error) {
	var result []byte
	var err error
	r.once.Do(func() {
		result, err = r.stop()
	})
	return result, err
}

func (r *commandRecording) stop() ([]byte, error) {
	defer r.cleanup()

	select {
	case <-r.done:
		// Exited on its own: only a clean exit counts.
		if r.waitErr != nil {
			return nil, r.captureError(r.waitErr)
		}
	default:
		_ = r.cmd.Process.Signal(os.Interrupt)
		select {
		case <-r.done:
		case <-time.After(StopGrace):
			_ = r.cmd.Process.Kill()
			<-r.done
		}
	}

	if r.outPath != "" {
		data, err := os.ReadFile(r.outPath)
		if err != nil {
			return nil, &CaptureError{Err: fmt.Errorf("read recording: %w", err)}
		}
		return data, nil
	}
	return r.stdout.Bytes(), nil
}

func (r *commandRecording) captureError(err error) error {
	msg := strings.ToLower(r.stderr.String())
	denied := strings.Contains(msg, "permission denied") || strings.Contains(msg, "access denied")
	if tail := strings.TrimSpace(r.stderr.String()); tail != "" {
		err = fmt.Errorf("%w: %s", err, lastLine(tail))
	}
	return &CaptureError{Denied: denied, Err: err}
}

func (r *commandRecording) cleanup() {
	if r.outPath != "" {
		_ = os.Remove(r.outPath)
	}
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
