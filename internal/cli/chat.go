// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat with history and slash commands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/ui/chat"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader reads one edited line per prompt. *LineEditor implements it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// ErrPromptAborted is returned by a LineReader when the user presses
// Ctrl+C at a prompt.
var ErrPromptAborted = liner.ErrPromptAborted

// LineEditor is a liner prompt with history persisted in the config
// directory.
type LineEditor struct {
	line        *liner.State
	historyFile string
}

// NewLineEditor creates an editor and loads its history.
func NewLineEditor() *LineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	e := &LineEditor{line: line, historyFile: filepath.Join(configDir, "chat_history")}

	if f, err := os.Open(e.historyFile); err == nil {
		_, _ = e.line.ReadHistory(f)
		f.Close()
	}
	return e
}

// Prompt implements LineReader.
func (e *LineEditor) Prompt(prompt string) (string, error) {
	return e.line.Prompt(prompt)
}

// AppendHistory implements LineReader.
func (e *LineEditor) AppendHistory(item string) {
	e.line.AppendHistory(item)
}

// Close saves history with owner-only permissions and restores the terminal.
func (e *LineEditor) Close() error {
	_ = util.WriteAtomic(e.historyFile, 0600, func(w io.Writer) error {
		_, err := e.line.WriteHistory(w)
		return err
	})
	return e.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

const replHelp = chat.HelpText + " · /quit"

// HandleChat runs line-mode chat until /quit or end of input.
func HandleChat(ctx context.Context, args Args, d Deps) error {
	if args.JSON {
		return &ValidationError{Reason: "chat is interactive and does not support --json", Example: "medchat ask --json <question>"}
	}
	user, err := requireSession(ctx, d)
	if err != nil {
		return err
	}

	lines := d.Lines
	if lines == nil {
		if !CanPrompt() {
			return &TTYRequiredError{Operation: "chat"}
		}
		editor := NewLineEditor()
		lines = editor
		// The recorder's stop prompt must go through the same editor.
		d.Prompt = editorPrompter{editor}
	}
	defer lines.Close()

	r := &repl{d: d, user: user, lines: lines, conv: convArg(args.ConvID)}
	return r.run(ctx)
}

type repl struct {
	d     Deps
	user  *apiclient.User
	lines LineReader
	conv  *apiclient.ID
}

func (r *repl) run(ctx context.Context) error {
	out := r.d.Out
	fmt.Fprintln(out, TitleStyle.Render(fmt.Sprintf("Signed in as %s", r.user.DisplayName())))
	fmt.Fprintln(out, DimStyle.Render(replHelp))

	prompt := "You > "
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := r.lines.Prompt(prompt)
		if err != nil {
			if errors.Is(err, ErrPromptAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.lines.AppendHistory(line)

		if quit := r.handle(ctx, line); quit {
			return nil
		}
	}
}

// handle runs one line and reports whether the session should end.
func (r *repl) handle(ctx context.Context, line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "/quit", "/exit", "/q":
		return true
	}

	c := chat.ParseCommand(line)
	switch c.Kind {
	case chat.CmdHelp:
		fmt.Fprintln(r.d.Out, DimStyle.Render(replHelp))
	case chat.CmdClear:
		r.d.Chat.ClearChat()
		r.conv = nil
		fmt.Fprintln(r.d.Out, DimStyle.Render("Conversation cleared"))
	case chat.CmdGraph:
		r.showGraph(ctx)
	case chat.CmdUpload:
		if c.Arg == "" {
			r.notice(chat.MsgUploadUsage)
			return false
		}
		text, err := extractText(ctx, r.d, c.Arg)
		if err != nil {
			r.notice(err.Error())
			return false
		}
		r.ask(ctx, text)
	case chat.CmdVoice:
		upload, err := record(ctx, r.d)
		if err != nil {
			r.notice(err.Error())
			return false
		}
		text, err := r.d.Media.Transcribe(ctx, upload.Data)
		if err != nil {
			r.d.log().Info("voice processing failed", zap.Error(err))
			r.d.Chat.AddMessage(store.Message{Sender: store.SenderBot, Content: chat.MsgVoiceFailed})
			r.bot(chat.MsgVoiceFailed)
			return false
		}
		r.ask(ctx, text)
	case chat.CmdUnknown:
		r.notice("Unknown command " + c.Name + ". " + replHelp)
	default:
		r.ask(ctx, chat.Unescape(line))
	}
	return false
}

// ask sends text in the current conversation.
func (r *repl) ask(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintln(r.d.Out, DimStyle.Render(chat.MsgThinking))

	res, err := send(ctx, r.d, r.user, text, r.conv)
	if err != nil {
		if errors.Is(err, store.ErrSuperseded) {
			return
		}
		r.d.Chat.AddMessage(store.Message{Sender: store.SenderBot, Content: chat.MsgQueryFailed})
		r.bot(chat.MsgQueryFailed)
		return
	}
	// Later turns continue from the container's last conversation.
	r.conv = nil
	r.bot(renderAnswer(r.d, res.Answer))
}

func (r *repl) showGraph(ctx context.Context) {
	conv := r.conv
	if conv == nil {
		conv = r.d.Chat.State().LastConvID
	}
	if conv == nil {
		r.notice(chat.MsgNoConvYet)
		return
	}
	graph, err := r.d.Chat.FetchGraph(ctx, *conv)
	if err != nil {
		r.notice(apiclient.Message(err, "Failed to fetch graph"))
		return
	}
	printGraph(Deps{Out: r.d.Out, Err: r.d.Out, Color: r.d.Color}, *conv, graph)
}

func (r *repl) bot(text string) {
	fmt.Fprintf(r.d.Out, "%s\n%s\n", BotPrefixStyle.Render("Assistant"), text)
}

func (r *repl) notice(text string) {
	fmt.Fprintf(r.d.Out, "%s %s\n", RenderStatus("error"), text)
}

// editorPrompter routes record's stop prompt through the line editor so
// liner keeps control of the terminal.
type editorPrompter struct{ lines LineReader }

func (p editorPrompter) ReadLine(prompt string) (string, error) {
	line, err := p.lines.Prompt(prompt)
	return strings.TrimSpace(line), err
}

func (p editorPrompter) ReadPassword(prompt string) (string, error) {
	return p.ReadLine(prompt)
}
