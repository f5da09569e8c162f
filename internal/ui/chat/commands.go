// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
)

// CommandKind identifies a slash command.
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdVoice
	CmdUpload
	CmdGraph
	CmdClear
	CmdHelp
	CmdUnknown
)

// Command is a parsed composer line.
type Command struct {
	Kind CommandKind
	Name string
	Arg  string
}

var commandNames = map[string]CommandKind{
	"/voice":  CmdVoice,
	"/upload": CmdUpload,
	"/graph":  CmdGraph,
	"/clear":  CmdClear,
	"/help":   CmdHelp,
}

// HelpText lists the slash commands.
const HelpText = "/voice record · /upload <image> OCR · /graph reasoning · /clear · /help"

// ParseCommand recognizes slash commands. Lines that do not start with "/"
// are plain chat text (CmdNone). A leading "//" escapes the slash and sends
// the rest as text.
func ParseCommand(line string) Command {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "//") {
		return Command{Kind: CmdNone}
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	name = strings.ToLower(name)
	kind, ok := commandNames[name]
	if !ok {
		kind = CmdUnknown
	}
	return Command{Kind: kind, Name: name, Arg: strings.TrimSpace(arg)}
}

// Unescape drops the escaping slash of a "//" line.
func Unescape(line string) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "//") {
		return trimmed[1:]
	}
	return line
}
