// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
)

// =============================================================================
// STATE
// =============================================================================

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one chat entry. Messages are append-only.
type Message struct {
	Sender  Sender
	Content string
}

// ChatState is the chat slice.
type ChatState struct {
	Messages   []Message
	LastConvID *apiclient.ID
	Graph      *apiclient.Graph
	// Loading is true while the latest query or graph request is in flight.
	Loading bool
	Error   string

	queryBusy bool
	graphBusy bool
}

// =============================================================================
// ACTIONS
// =============================================================================

// ChatActionKind enumerates chat transitions.
type ChatActionKind int

const (
	ActAddMessage ChatActionKind = iota
	ActQueryPending
	ActQueryFulfilled
	ActQueryRejected
	ActGraphPending
	ActGraphFulfilled
	ActGraphRejected
	ActClear
	// Settle actions end a request whose result was invalidated by a clear.
	ActQuerySettle
	ActGraphSettle
)

// ChatAction is one transition of the chat slice.
type ChatAction struct {
	Kind    ChatActionKind
	Message Message
	Answer  string
	ConvID  apiclient.ID
	Graph   *apiclient.Graph
	Error   string
}

// ReduceChat applies action to state and returns the new state. The input's
// message slice is never written to.
func ReduceChat(state ChatState, action ChatAction) ChatState {
	switch action.Kind {
	case ActAddMessage:
		state.Messages = appendMessage(state.Messages, action.Message)

	case ActQueryPending:
		state.queryBusy = true
		state.Error = ""
	case ActQueryFulfilled:
		state.queryBusy = false
		id := action.ConvID
		state.LastConvID = &id
		state.Messages = appendMessage(state.Messages, Message{Sender: SenderBot, Content: action.Answer})
	case ActQueryRejected:
		state.queryBusy = false
		state.Error = action.Error
	case ActQuerySettle:
		state.queryBusy = false

	case ActGraphPending:
		state.graphBusy = true
		state.Error = ""
	case ActGraphFulfilled:
		state.graphBusy = false
		state.Graph = action.Graph
	case ActGraphRejected:
		state.graphBusy = false
		state.Error = action.Error
	case ActGraphSettle:
		state.graphBusy = false

	case ActClear:
		state.Messages = nil
		state.LastConvID = nil
		state.Graph = nil
		state.Error = ""
	}

	state.Loading = state.queryBusy || state.graphBusy
	return state
}

func appendMessage(msgs []Message, m Message) []Message {
	out := make([]Message, len(msgs), len(msgs)+1)
	copy(out, msgs)
	return append(out, m)
}

// =============================================================================
// CONTAINER
// =============================================================================

// ChatAPI is the part of the gateway the chat slice needs.
type ChatAPI interface {
	Query(ctx context.Context, req apiclient.QueryRequest) (*apiclient.QueryResponse, error)
	Graph(ctx context.Context, convID apiclient.ID) (*apiclient.Graph, error)
}

// QueryInput is a chat turn. A nil ConvID starts a new conversation.
type QueryInput struct {
	UserID apiclient.ID
	Text   string
	ConvID *apiclient.ID
}

// stream tracks request ordering for one kind of request.
type stream struct {
	issued    uint64 // sequence number of the latest request
	validFrom uint64 // requests below this were invalidated by a clear
}

func (s *stream) begin() uint64 {
	s.issued++
	return s.issued
}

// Chat holds the chat slice.
type Chat struct {
	api ChatAPI
	log *zap.Logger

	mu    sync.RWMutex
	state ChatState
	query stream
	graph stream
	subs  notifier
}

// NewChat creates an empty chat container.
func NewChat(api ChatAPI, log *zap.Logger) *Chat {
	if log == nil {
		log = zap.NewNop()
	}
	return &Chat{api: api, log: log}
}

// State returns a snapshot safe to read without locking.
func (c *Chat) State() ChatState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Messages = append([]Message(nil), s.Messages...)
	if s.LastConvID != nil {
		id := *s.LastConvID
		s.LastConvID = &id
	}
	return s
}

// Subscribe returns a channel signalled after every applied action and a
// function that unsubscribes.
func (c *Chat) Subscribe() (<-chan struct{}, func()) {
	return c.subs.subscribe()
}

func (c *Chat) apply(action ChatAction) {
	c.mu.Lock()
	c.state = ReduceChat(c.state, action)
	c.mu.Unlock()
	c.subs.notify()
}

// AddMessage appends m immediately.
func (c *Chat) AddMessage(m Message) {
	c.apply(ChatAction{Kind: ActAddMessage, Message: m})
}

// ClearChat empties the conversation and invalidates in-flight requests.
// Loading is left to the in-flight requests to settle.
func (c *Chat) ClearChat() {
	c.mu.Lock()
	c.query.validFrom = c.query.issued + 1
	c.graph.validFrom = c.graph.issued + 1
	c.state = ReduceChat(c.state, ChatAction{Kind: ActClear})
	c.mu.Unlock()
	c.subs.notify()
}

// start issues a new sequence number on s and applies the pending action.
func (c *Chat) start(s *stream, pending ChatAction) uint64 {
	c.mu.Lock()
	seq := s.begin()
	c.state = ReduceChat(c.state, pending)
	c.mu.Unlock()
	c.subs.notify()
	return seq
}

// finish applies done if seq is still current on s. A request that was
// overtaken by a newer one is dropped; one invalidated by a clear only
// settles its loading flag.
func (c *Chat) finish(s *stream, seq uint64, done, settle ChatAction) bool {
	c.mu.Lock()
	switch {
	case seq != s.issued:
		c.mu.Unlock()
		return false
	case seq < s.validFrom:
		c.state = ReduceChat(c.state, settle)
		c.mu.Unlock()
		c.subs.notify()
		return false
	}
	c.state = ReduceChat(c.state, done)
	c.mu.Unlock()
	c.subs.notify()
	return true
}

// SendChatQuery sends one turn. On success the bot answer is appended and
// LastConvID updated. On failure Error is set and the caller decides what
// to show. Stale completions return ErrSuperseded.
func (c *Chat) SendChatQuery(ctx context.Context, in QueryInput) (*apiclient.QueryResponse, error) {
	seq := c.start(&c.query, ChatAction{Kind: ActQueryPending})

	resp, err := c.api.Query(ctx, apiclient.QueryRequest{
		UserID: in.UserID,
		Text:   in.Text,
		ConvID: in.ConvID,
	})

	settle := ChatAction{Kind: ActQuerySettle}
	if err != nil {
		msg := apiclient.Message(err, "Request failed")
		if !c.finish(&c.query, seq, ChatAction{Kind: ActQueryRejected, Error: msg}, settle) {
			return nil, ErrSuperseded
		}
		c.log.Info("chat query failed", zap.String("error", msg))
		return nil, err
	}

	if !c.finish(&c.query, seq, ChatAction{Kind: ActQueryFulfilled, Answer: resp.Answer, ConvID: resp.ConvID}, settle) {
		c.log.Debug("discarded stale chat answer", zap.Uint64("seq", seq))
		return nil, ErrSuperseded
	}
	return resp, nil
}

// FetchGraph loads the reasoning graph of convID. A failure keeps the
// previous graph.
func (c *Chat) FetchGraph(ctx context.Context, convID apiclient.ID) (*apiclient.Graph, error) {
	seq := c.start(&c.graph, ChatAction{Kind: ActGraphPending})

	graph, err := c.api.Graph(ctx, convID)

	settle := ChatAction{Kind: ActGraphSettle}
	if err != nil {
		msg := apiclient.Message(err, "Request failed")
		if !c.finish(&c.graph, seq, ChatAction{Kind: ActGraphRejected, Error: msg}, settle) {
			return nil, ErrSuperseded
		}
		c.log.Info("graph fetch failed", zap.String("conv_id", convID.String()), zap.String("error", msg))
		return nil, err
	}

	if !c.finish(&c.graph, seq, ChatAction{Kind: ActGraphFulfilled, Graph: graph}, settle) {
		return nil, ErrSuperseded
	}
	return graph, nil
}
