// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/media"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/ui/components"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// ChatStore is the chat slice container.
type ChatStore interface {
	State() store.ChatState
	Subscribe() (<-chan struct{}, func())
	AddMessage(m store.Message)
	ClearChat()
	SendChatQuery(ctx context.Context, in store.QueryInput) (*apiclient.QueryResponse, error)
	FetchGraph(ctx context.Context, convID apiclient.ID) (*apiclient.Graph, error)
}

// MediaAPI turns uploads into text.
type MediaAPI interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
	ExtractText(ctx context.Context, filename, contentType string, image []byte) (string, error)
}

// Microphone is an exclusive recorder.
type Microphone interface {
	Start(ctx context.Context) error
	Stop() (*media.Upload, error)
	Recording() bool
}

// Options configures a chat view.
type Options struct {
	Chat  ChatStore
	Media MediaAPI
	Mic   Microphone
	// User returns the signed-in user; nil is allowed.
	User func() *apiclient.User
	// MaxUploadBytes rejects larger images. 0 means no limit.
	MaxUploadBytes int64
	// Markdown renders bot answers with glamour.
	Markdown bool
	Theme    *styles.Theme
	Logger   *zap.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view.
type Model struct {
	ctx  context.Context
	opts Options
	keys KeyMap
	log  *zap.Logger

	state store.ChatState
	subs  <-chan struct{}
	unsub func()

	composer textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *markdownRenderer

	graph *components.GraphModal
	voice voiceState

	width  int
	height int
}

// New creates a chat view bound to opts.Chat.
func New(ctx context.Context, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.User == nil {
		opts.User = func() *apiclient.User { return nil }
	}

	ti := textinput.New()
	ti.Placeholder = ComposerPrompt
	ti.Prompt = "➤ "
	ti.PromptStyle = opts.Theme.InputPrompt
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner

	m := Model{
		ctx:      ctx,
		opts:     opts,
		keys:     DefaultKeyMap(),
		log:      opts.Logger,
		composer: ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		renderer: newMarkdownRenderer(opts.Markdown, opts.Theme.IsDark),
	}
	m.subs, m.unsub = opts.Chat.Subscribe()
	m.state = opts.Chat.State()
	m.SetSize(80, 24)
	return m
}

// Init starts listening for chat slice changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.subs))
}

// Close stops the state subscription.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// SetSize lays the view out in width x height cells.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height

	// composer and status line
	vh := height - 3
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	m.composer.Width = width - 4
	if m.graph != nil {
		m.graph.SetSize(width, height)
	}
	m.renderer.setWidth(width - 6)
	m.refresh(false)
}

// State returns the latest snapshot the view rendered from.
func (m Model) State() store.ChatState { return m.state }

// Recording reports whether a voice capture is open.
func (m Model) Recording() bool { return m.voice == voiceRecording }

// GraphOpen reports whether the graph modal is shown.
func (m Model) GraphOpen() bool { return m.graph != nil }

// Composer returns the text being typed.
func (m Model) Composer() string { return m.composer.Value() }

// SetComposer replaces the composer text.
func (m *Model) SetComposer(s string) { m.composer.SetValue(s) }

// waitForChange blocks on the subscription in a command goroutine.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

// sync takes a new snapshot and re-renders the message list.
func (m *Model) sync() {
	prev := len(m.state.Messages)
	m.state = m.opts.Chat.State()
	m.refresh(len(m.state.Messages) != prev)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles input and operation results.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case stateChangedMsg:
		m.sync()
		return m, waitForChange(m.subs)

	case spinner.TickMsg:
		if !m.state.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh(false)
		return m, cmd

	case queryResultMsg:
		return m.handleQueryResult(msg)

	case graphResultMsg:
		return m.handleGraphResult(msg)

	case recordStartedMsg:
		if msg.err != nil {
			m.voice = voiceIdle
			return m, components.ErrorNotice(micMessage(msg.err))
		}
		m.voice = voiceRecording
		return m, components.InfoNotice("Recording... type /voice to stop")

	case transcriptMsg:
		m.voice = voiceIdle
		if msg.err != nil {
			m.log.Info("voice processing failed", zap.Error(msg.err))
			m.opts.Chat.AddMessage(store.Message{Sender: store.SenderBot, Content: MsgVoiceFailed})
			m.sync()
			return m, nil
		}
		return m.send(msg.text)

	case ocrResultMsg:
		if msg.err != nil {
			m.log.Info("ocr failed", zap.String("path", msg.path), zap.Error(msg.err))
			return m, components.ErrorNotice(ocrMessage(msg.err))
		}
		return m.send(msg.text)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.graph != nil {
		if key.Matches(msg, m.keys.Close) {
			m.graph = nil
			return m, nil
		}
		g, cmd := m.graph.Update(msg)
		m.graph = &g
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		line := m.composer.Value()
		m.composer.Reset()
		return m.submit(line)
	case key.Matches(msg, m.keys.Graph):
		return m.showGraph()
	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// submit routes a composer line to a command or the send path.
func (m Model) submit(line string) (Model, tea.Cmd) {
	c := ParseCommand(line)
	switch c.Kind {
	case CmdVoice:
		return m.toggleVoice()
	case CmdUpload:
		if c.Arg == "" {
			return m, components.ErrorNotice(MsgUploadUsage)
		}
		return m, m.uploadImage(c.Arg)
	case CmdGraph:
		return m.showGraph()
	case CmdClear:
		m.opts.Chat.ClearChat()
		m.sync()
		return m, nil
	case CmdHelp:
		return m, components.InfoNotice(HelpText)
	case CmdUnknown:
		return m, components.ErrorNotice("Unknown command " + c.Name + ". " + HelpText)
	}
	return m.send(Unescape(line))
}

// =============================================================================
// OPERATIONS
// =============================================================================

// send is the single path for typed text, transcripts and OCR output.
func (m Model) send(text string) (Model, tea.Cmd) {
	if strings.TrimSpace(text) == "" {
		return m, nil
	}

	m.opts.Chat.AddMessage(store.Message{Sender: store.SenderUser, Content: text})

	in := store.QueryInput{UserID: DefaultUserID, Text: text}
	if u := m.opts.User(); u != nil && !u.ID.IsZero() {
		in.UserID = u.ID
	}
	if id := m.opts.Chat.State().LastConvID; id != nil {
		conv := *id
		in.ConvID = &conv
	}

	ctx, chat := m.ctx, m.opts.Chat
	query := func() tea.Msg {
		_, err := chat.SendChatQuery(ctx, in)
		return queryResultMsg{err: err}
	}

	m.sync()
	return m, tea.Batch(query, m.spinner.Tick)
}

func (m Model) handleQueryResult(msg queryResultMsg) (Model, tea.Cmd) {
	if msg.err != nil && !errors.Is(msg.err, store.ErrSuperseded) {
		m.opts.Chat.AddMessage(store.Message{Sender: store.SenderBot, Content: MsgQueryFailed})
	}
	m.sync()
	return m, nil
}

func (m Model) showGraph() (Model, tea.Cmd) {
	last := m.opts.Chat.State().LastConvID
	if last == nil || last.IsZero() {
		return m, components.InfoNotice(MsgNoConvYet)
	}
	convID := *last

	ctx, chat := m.ctx, m.opts.Chat
	fetch := func() tea.Msg {
		g, err := chat.FetchGraph(ctx, convID)
		return graphResultMsg{convID: convID, graph: g, err: err}
	}
	m.sync()
	return m, tea.Batch(fetch, m.spinner.Tick)
}

func (m Model) handleGraphResult(msg graphResultMsg) (Model, tea.Cmd) {
	m.sync()
	if errors.Is(msg.err, store.ErrSuperseded) {
		return m, nil
	}
	if msg.err != nil {
		return m, components.ErrorNotice(apiclient.Message(msg.err, "Could not load the reasoning graph"))
	}
	g := components.NewGraphModal(msg.convID, msg.graph, m.width, m.height)
	m.graph = &g
	return m, nil
}

func (m Model) toggleVoice() (Model, tea.Cmd) {
	if m.opts.Mic == nil || m.opts.Media == nil {
		return m, components.ErrorNotice(media.MsgMicrophone)
	}

	ctx, mic, api := m.ctx, m.opts.Mic, m.opts.Media
	switch m.voice {
	case voiceStarting, voiceStopping:
		return m, components.InfoNotice(MsgMicBusy)
	case voiceIdle:
		m.voice = voiceStarting
		return m, func() tea.Msg {
			return recordStartedMsg{err: mic.Start(ctx)}
		}
	}

	m.voice = voiceStopping
	return m, func() tea.Msg {
		upload, err := mic.Stop()
		if err != nil {
			return transcriptMsg{err: err}
		}
		text, err := api.Transcribe(ctx, upload.Data)
		return transcriptMsg{text: text, err: err}
	}
}

func (m Model) uploadImage(path string) tea.Cmd {
	if m.opts.Media == nil {
		return components.ErrorNotice(MsgOCRFailed)
	}
	ctx, api, limit := m.ctx, m.opts.Media, m.opts.MaxUploadBytes
	return func() tea.Msg {
		upload, err := media.ImageUpload(path, limit)
		if err != nil {
			return ocrResultMsg{path: path, err: err}
		}
		text, err := api.ExtractText(ctx, upload.Filename, upload.ContentType, upload.Data)
		return ocrResultMsg{path: path, text: text, err: err}
	}
}

// micMessage is the notice for a recorder that could not start.
func micMessage(err error) string {
	if errors.Is(err, media.ErrAlreadyRecording) {
		return "A recording is already in progress."
	}
	return media.MsgMicrophone
}

// ocrMessage explains local rejections and hides gateway detail.
func ocrMessage(err error) string {
	switch {
	case errors.Is(err, media.ErrNotImage):
		return MsgOCRFailed + ": the file is not an image"
	case errors.Is(err, media.ErrTooLarge):
		return MsgOCRFailed + ": the file is too large"
	}
	return MsgOCRFailed
}
