// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Interactive input for line-mode commands.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from the user.
type Prompter interface {
	// ReadLine shows prompt and returns the trimmed line.
	ReadLine(prompt string) (string, error)
	// ReadPassword shows prompt and reads without echo where possible.
	ReadPassword(prompt string) (string, error)
}

// TermPrompter prompts on a terminal. Passwords are read without echo
// when in is a TTY; otherwise they are read as plain lines so scripted
// input still works.
type TermPrompter struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

// NewTermPrompter prompts on out and reads from in.
func NewTermPrompter(in *os.File, out io.Writer) *TermPrompter {
	return &TermPrompter{in: in, out: out, reader: bufio.NewReader(in)}
}

// ReadLine implements Prompter.
func (p *TermPrompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword implements Prompter.
func (p *TermPrompter) ReadPassword(prompt string) (string, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return p.ReadLine(prompt)
	}
	fmt.Fprint(p.out, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

// promptIfEmpty returns value, or asks for it when empty.
func promptIfEmpty(p Prompter, value, prompt string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value), nil
	}
	if p == nil {
		return "", &TTYRequiredError{Operation: "prompt for " + strings.TrimSuffix(strings.TrimSpace(prompt), ":")}
	}
	return p.ReadLine(prompt)
}
