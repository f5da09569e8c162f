// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - Dependencies and dispatch for line-mode commands.

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/media"
	"github.com/jeranaias/medchat-tui/internal/session"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/ui/chat"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// Session is the auth surface commands use. *session.Provider implements it.
type Session interface {
	Init(ctx context.Context) session.Status
	User() *apiclient.User
	Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.User, error)
	Register(ctx context.Context, reg apiclient.Registration) (*apiclient.User, error)
	Logout(ctx context.Context) error
}

// ChatService is the chat container. *store.Chat implements it.
type ChatService interface {
	State() store.ChatState
	AddMessage(m store.Message)
	ClearChat()
	SendChatQuery(ctx context.Context, in store.QueryInput) (*apiclient.QueryResponse, error)
	FetchGraph(ctx context.Context, convID apiclient.ID) (*apiclient.Graph, error)
}

// Deps carries everything a command needs. Out receives results; Err
// receives status lines so stdout stays scriptable.
type Deps struct {
	Session Session
	Chat    ChatService
	Media   chat.MediaAPI
	// Mic records when voice is run without a file. Nil disables recording.
	Mic chat.Microphone

	Config     *config.Config
	ConfigPath string

	Prompt Prompter
	// Lines backs the chat REPL. Nil uses a liner editor on the terminal.
	Lines LineReader

	Out io.Writer
	Err io.Writer

	// Markdown renders answers with glamour at Width columns.
	Markdown bool
	Dark     bool
	Width    int
	// Color highlights graph JSON.
	Color bool

	Logger *zap.Logger
}

func (d *Deps) log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Run executes a line-mode command. The TUI, help and version are handled
// by the caller.
func Run(ctx context.Context, cmd Command, args Args, d Deps) error {
	d.log().Debug("running command", zap.String("command", cmd.String()))

	switch cmd {
	case CmdLogin:
		return HandleLogin(ctx, args, d)
	case CmdRegister:
		return HandleRegister(ctx, args, d)
	case CmdLogout:
		return HandleLogout(ctx, args, d)
	case CmdWhoami:
		return HandleWhoami(ctx, args, d)
	case CmdAsk:
		return HandleAsk(ctx, args, d)
	case CmdChat:
		return HandleChat(ctx, args, d)
	case CmdGraph:
		return HandleGraph(ctx, args, d)
	case CmdOCR:
		return HandleOCR(ctx, args, d)
	case CmdVoice:
		return HandleVoice(ctx, args, d)
	case CmdDoctors:
		return HandleDoctors(args, d)
	case CmdConfig:
		return HandleConfig(args, d)
	case CmdUnknown:
		return &ValidationError{Reason: fmt.Sprintf("unknown command %q", args.Unknown), Example: "medchat help"}
	}
	return &ValidationError{Reason: fmt.Sprintf("%s is not a line-mode command", cmd)}
}

// requireSession restores the stored session and returns its user.
func requireSession(ctx context.Context, d Deps) (*apiclient.User, error) {
	if d.Session.Init(ctx) != session.StatusAuthenticated {
		return nil, ErrNotLoggedIn
	}
	return d.Session.User(), nil
}

// =============================================================================
// SHARED CHAT TURN
// =============================================================================

// askResult is the JSON form of one answered question.
type askResult struct {
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	ConvID   apiclient.ID `json:"conv_id"`
}

// send records text as the user's message and queries the gateway. The
// conversation continues from conv, or from the container's last
// conversation when conv is nil.
func send(ctx context.Context, d Deps, user *apiclient.User, text string, conv *apiclient.ID) (*askResult, error) {
	d.Chat.AddMessage(store.Message{Sender: store.SenderUser, Content: text})

	in := store.QueryInput{UserID: chat.DefaultUserID, Text: text, ConvID: conv}
	if user != nil && !user.ID.IsZero() {
		in.UserID = user.ID
	}
	if in.ConvID == nil {
		in.ConvID = d.Chat.State().LastConvID
	}

	resp, err := d.Chat.SendChatQuery(ctx, in)
	if err != nil {
		d.log().Info("query failed", zap.Error(err))
		return nil, err
	}
	return &askResult{Question: text, Answer: resp.Answer, ConvID: resp.ConvID}, nil
}

// convArg parses an optional --conv value.
func convArg(raw string) *apiclient.ID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id := apiclient.ID(raw)
	return &id
}

// =============================================================================
// RENDERING
// =============================================================================

// renderAnswer renders a bot answer for the terminal.
func renderAnswer(d Deps, answer string) string {
	width := d.Width
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	if d.Markdown {
		style := "light"
		if d.Dark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			if out, err := r.Render(answer); err == nil {
				return strings.TrimRight(out, "\n")
			}
		}
	}
	return util.Wrap(answer, width)
}

// status prints a status line to Err.
func status(d Deps, kind, msg string) {
	if d.Err == nil {
		return
	}
	fmt.Fprintf(d.Err, "%s %s\n", RenderStatus(kind), msg)
}

var _ chat.Microphone = (*media.Capture)(nil)
