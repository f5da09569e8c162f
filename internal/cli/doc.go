// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the line-mode commands of
// medchat.
//
// Parse splits os.Args into a Command and its Args. The TUI, help and
// version are handled by main; every other command runs through Run with
// injected Deps:
//
//	cmd, args := cli.Parse()
//	err := cli.Run(ctx, cmd, args, deps)
//	cli.DisplayError(os.Stderr, err, args.JSON, cmd.String())
//	os.Exit(cli.GetExitCode(err))
//
// # Commands
//
//   - login, register, logout, whoami: session management
//   - ask, chat: questions to the gateway, one-shot or line-mode
//   - graph: a conversation's reasoning graph
//   - ocr, voice: image text extraction and speech-to-text, then ask
//   - doctors: the static doctor directory
//   - config: show, path, validate
//
// Every command accepts --json and then prints a JSONResponse envelope.
package cli
