// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing for medchat.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/jeranaias/medchat-tui/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdRegister
	CmdLogout
	CmdWhoami
	CmdAsk
	CmdChat
	CmdGraph
	CmdOCR
	CmdVoice
	CmdDoctors
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = map[Command]string{
	CmdTUI:      "tui",
	CmdLogin:    "login",
	CmdRegister: "register",
	CmdLogout:   "logout",
	CmdWhoami:   "whoami",
	CmdAsk:      "ask",
	CmdChat:     "chat",
	CmdGraph:    "graph",
	CmdOCR:      "ocr",
	CmdVoice:    "voice",
	CmdDoctors:  "doctors",
	CmdConfig:   "config",
	CmdVersion:  "version",
	CmdHelp:     "help",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose    bool
	JSON       bool
	API        string // overrides gateway.base_url
	ConfigPath string // overrides ~/.medchat/config.toml

	// Command-specific
	Query      string // ask text, doctors search
	Path       string // ocr image, voice audio file
	ConvID     string // ask/chat continuation, graph target
	Email      string
	Name       string
	Subcommand string // config show|path|get|init|validate
	Key        string // config get <key>
	NoAsk      bool   // ocr/voice: print the text without asking it

	// Name of an unrecognized command
	Unknown string

	// Raw args (remaining after the command word)
	Raw []string
}

const usageText = `medchat - terminal client for the GenAI medical chat gateway

Usage:
  medchat                         Start the TUI (default)
  medchat login [--email E]       Sign in and store the session
  medchat register                Create an account
  medchat logout                  Forget the stored session
  medchat whoami                  Show the signed-in user
  medchat ask <question>          Ask one question
  medchat chat                    Line-mode chat
  medchat graph <conv_id>         Show a conversation's reasoning graph
  medchat ocr <image>             Extract text from an image and ask it
  medchat voice [audio-file]      Transcribe audio (or record) and ask it
  medchat doctors [query]         Search the doctor directory
  medchat config [show|path]      Show configuration
  medchat config get <key>        Show one value, e.g. gateway.base_url
  medchat config init             Write a default configuration file
  medchat config validate         Check the configuration
  medchat version                 Show version information
  medchat help                    Show this help

Command Options:
  ask, chat   --conv ID           Continue an existing conversation
  ocr, voice  --no-ask            Print the extracted text only
  register    --name N --email E

Global Options:
  --api URL       Gateway base URL (default %s)
  --config PATH   Configuration file
  --json          JSON output
  -v, --verbose   Log to stderr

Environment:
  MEDCHAT_API_BASE_URL   Gateway base URL
  MEDCHAT_PASSPHRASE     Passphrase for the encrypted session credential
`

// PrintUsage prints usage information.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, config.DefaultBaseURL)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "medchat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// VersionData is the JSON form of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// HandleVersion handles the "version" command with JSON output support.
func HandleVersion(w io.Writer, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(w)
	}
	PrintVersion(w)
	return nil
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments and returns the command and args.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	word := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining
	p := NewArgParser(remaining, "no-ask")

	switch word {
	case "tui":
		return CmdTUI, parsed

	case "login":
		parsed.Email = p.FirstFlag("email", "e")
		return CmdLogin, parsed

	case "register", "signup":
		parsed.Email = p.FirstFlag("email", "e")
		parsed.Name = p.FirstFlag("name", "n")
		return CmdRegister, parsed

	case "logout":
		return CmdLogout, parsed

	case "whoami", "me", "profile":
		return CmdWhoami, parsed

	case "ask":
		parsed.ConvID = p.Flag("conv")
		parsed.Query = JoinPositionalArgs(p, 0)
		return CmdAsk, parsed

	case "chat":
		parsed.ConvID = p.Flag("conv")
		return CmdChat, parsed

	case "graph":
		parsed.ConvID = p.FirstFlag("conv")
		if parsed.ConvID == "" {
			parsed.ConvID = p.Positional(0)
		}
		return CmdGraph, parsed

	case "ocr", "upload":
		parsed.Path = p.Positional(0)
		parsed.NoAsk = p.BoolFlag("no-ask")
		return CmdOCR, parsed

	case "voice":
		parsed.Path = p.Positional(0)
		parsed.NoAsk = p.BoolFlag("no-ask")
		return CmdVoice, parsed

	case "doctors", "appointments":
		parsed.Query = JoinPositionalArgs(p, 0)
		return CmdDoctors, parsed

	case "config":
		parsed.Subcommand = strings.ToLower(p.Positional(0))
		if parsed.Subcommand == "" {
			parsed.Subcommand = "show"
		}
		parsed.Key = p.Positional(1)
		return CmdConfig, parsed

	case "version", "--version", "-V":
		return CmdVersion, parsed

	case "help", "--help", "-h":
		return CmdHelp, parsed
	}

	parsed.Unknown = word
	return CmdUnknown, parsed
}

// parseGlobalFlags pulls global flags out of args wherever they appear.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--api":
			if i+1 < len(args) {
				i++
				parsed.API = args[i]
			}
		case "--config":
			if i+1 < len(args) {
				i++
				parsed.ConfigPath = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--api="):
				parsed.API = strings.TrimPrefix(arg, "--api=")
			case strings.HasPrefix(arg, "--config="):
				parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsed
}
