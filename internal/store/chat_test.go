// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
)

// gatedChatAPI hands every call to the test, which answers it explicitly.
type gatedChatAPI struct {
	queries chan *queryCall
	graphs  chan *graphCall
}

type queryCall struct {
	req   apiclient.QueryRequest
	reply chan queryReply
}

type queryReply struct {
	resp *apiclient.QueryResponse
	err  error
}

type graphCall struct {
	reply chan graphReply
}

type graphReply struct {
	graph *apiclient.Graph
	err   error
}

func newGatedChatAPI() *gatedChatAPI {
	return &gatedChatAPI{queries: make(chan *queryCall, 8), graphs: make(chan *graphCall, 8)}
}

func (g *gatedChatAPI) Query(_ context.Context, req apiclient.QueryRequest) (*apiclient.QueryResponse, error) {
	call := &queryCall{req: req, reply: make(chan queryReply)}
	g.queries <- call
	r := <-call.reply
	return r.resp, r.err
}

func (g *gatedChatAPI) Graph(context.Context, apiclient.ID) (*apiclient.Graph, error) {
	call := &graphCall{reply: make(chan graphReply)}
	g.graphs <- call
	r := <-call.reply
	return r.graph, r.err
}

type queryResult struct {
	resp *apiclient.QueryResponse
	err  error
}

// sendAsync starts a query and returns its in-flight call and result channel.
func sendAsync(c *Chat, api *gatedChatAPI, text string) (*queryCall, <-chan queryResult) {
	out := make(chan queryResult, 1)
	go func() {
		r, err := c.SendChatQuery(context.Background(), QueryInput{Text: text})
		out <- queryResult{r, err}
	}()
	return <-api.queries, out
}

// instantChatAPI answers immediately.
type instantChatAPI struct {
	resp  *apiclient.QueryResponse
	err   error
	graph *apiclient.Graph
	gerr  error
	got   apiclient.QueryRequest
}

func (f *instantChatAPI) Query(_ context.Context, req apiclient.QueryRequest) (*apiclient.QueryResponse, error) {
	f.got = req
	return f.resp, f.err
}

func (f *instantChatAPI) Graph(context.Context, apiclient.ID) (*apiclient.Graph, error) {
	return f.graph, f.gerr
}

// =============================================================================
// REDUCER
// =============================================================================

func TestReduceChat_AddMessage(t *testing.T) {
	s := ReduceChat(ChatState{}, ChatAction{Kind: ActAddMessage, Message: Message{Sender: SenderUser, Content: "Hello"}})
	require.Equal(t, []Message{{Sender: SenderUser, Content: "Hello"}}, s.Messages)
	require.Nil(t, s.LastConvID)
}

func TestReduceChat_QueryFulfilled(t *testing.T) {
	s := ReduceChat(ChatState{}, ChatAction{Kind: ActQueryPending})
	require.True(t, s.Loading)

	s = ReduceChat(s, ChatAction{Kind: ActQueryFulfilled, Answer: "Hi there", ConvID: "42"})
	require.Equal(t, []Message{{Sender: SenderBot, Content: "Hi there"}}, s.Messages)
	require.Equal(t, apiclient.ID("42"), *s.LastConvID)
	require.False(t, s.Loading)
}

func TestReduceChat_QueryRejectedKeepsConversation(t *testing.T) {
	id := apiclient.ID("5")
	start := ChatState{Messages: []Message{{Sender: SenderUser, Content: "q"}}, LastConvID: &id}

	s := ReduceChat(start, ChatAction{Kind: ActQueryPending})
	s = ReduceChat(s, ChatAction{Kind: ActQueryRejected, Error: "boom"})
	require.Equal(t, "boom", s.Error)
	require.Equal(t, start.Messages, s.Messages)
	require.Equal(t, apiclient.ID("5"), *s.LastConvID)
	require.False(t, s.Loading)
}

func TestReduceChat_GraphReplaceAndKeep(t *testing.T) {
	g1 := &apiclient.Graph{Nodes: nil}
	s := ReduceChat(ChatState{}, ChatAction{Kind: ActGraphFulfilled, Graph: g1})
	require.Same(t, g1, s.Graph)

	s = ReduceChat(s, ChatAction{Kind: ActGraphRejected, Error: "nope"})
	require.Same(t, g1, s.Graph, "failed fetch keeps the previous graph")
}

func TestReduceChat_ClearLeavesLoading(t *testing.T) {
	id := apiclient.ID("1")
	s := ChatState{Messages: []Message{{Sender: SenderUser, Content: "x"}}, LastConvID: &id, Graph: &apiclient.Graph{}, Error: "e"}
	s = ReduceChat(s, ChatAction{Kind: ActQueryPending})

	s = ReduceChat(s, ChatAction{Kind: ActClear})
	require.Empty(t, s.Messages)
	require.Nil(t, s.LastConvID)
	require.Nil(t, s.Graph)
	require.Empty(t, s.Error)
	require.True(t, s.Loading)
}

func TestReduceChat_DoesNotAliasInput(t *testing.T) {
	base := make([]Message, 1, 4)
	base[0] = Message{Sender: SenderUser, Content: "a"}
	start := ChatState{Messages: base}

	s1 := ReduceChat(start, ChatAction{Kind: ActAddMessage, Message: Message{Sender: SenderUser, Content: "b"}})
	s2 := ReduceChat(start, ChatAction{Kind: ActAddMessage, Message: Message{Sender: SenderUser, Content: "c"}})
	require.Equal(t, "b", s1.Messages[1].Content)
	require.Equal(t, "c", s2.Messages[1].Content)
	require.Len(t, start.Messages, 1)
}

// =============================================================================
// CONTAINER
// =============================================================================

func TestChat_SendChatQuery(t *testing.T) {
	api := &instantChatAPI{resp: &apiclient.QueryResponse{Answer: "Rest and fluids.", ConvID: "42"}}
	c := NewChat(api, nil)

	c.AddMessage(Message{Sender: SenderUser, Content: "I have a cold"})
	resp, err := c.SendChatQuery(context.Background(), QueryInput{UserID: "1", Text: "I have a cold"})
	require.NoError(t, err)
	require.Equal(t, "Rest and fluids.", resp.Answer)
	require.Nil(t, api.got.ConvID, "first turn sends no conversation id")

	s := c.State()
	require.Len(t, s.Messages, 2)
	require.Equal(t, Message{Sender: SenderBot, Content: "Rest and fluids."}, s.Messages[1])
	require.Equal(t, apiclient.ID("42"), *s.LastConvID)
	require.False(t, s.Loading)
}

func TestChat_SendChatQueryFailure(t *testing.T) {
	api := &instantChatAPI{err: &apiclient.Error{Status: 500, Message: "Request failed"}}
	c := NewChat(api, nil)
	c.AddMessage(Message{Sender: SenderUser, Content: "hi"})

	_, err := c.SendChatQuery(context.Background(), QueryInput{Text: "hi"})
	var apiErr *apiclient.Error
	require.True(t, errors.As(err, &apiErr))

	s := c.State()
	require.Len(t, s.Messages, 1, "the caller appends the failure message")
	require.Nil(t, s.LastConvID)
	require.Equal(t, "Request failed", s.Error)
}

func TestChat_NewerAnswerWinsRegardlessOfArrival(t *testing.T) {
	api := newGatedChatAPI()
	c := NewChat(api, nil)

	call1, res1 := sendAsync(c, api, "one")
	call2, res2 := sendAsync(c, api, "two")
	require.True(t, c.State().Loading)

	// Newest answers first, then the older one arrives late.
	call2.reply <- queryReply{resp: &apiclient.QueryResponse{Answer: "fresh", ConvID: "2"}}
	r2 := <-res2
	require.NoError(t, r2.err)

	call1.reply <- queryReply{resp: &apiclient.QueryResponse{Answer: "stale", ConvID: "1"}}
	r1 := <-res1
	require.True(t, errors.Is(r1.err, ErrSuperseded))

	s := c.State()
	require.Equal(t, []Message{{Sender: SenderBot, Content: "fresh"}}, s.Messages)
	require.Equal(t, apiclient.ID("2"), *s.LastConvID)
	require.False(t, s.Loading)
}

func TestChat_OlderAnswerDoesNotClearLoading(t *testing.T) {
	api := newGatedChatAPI()
	c := NewChat(api, nil)

	call1, res1 := sendAsync(c, api, "one")
	call2, res2 := sendAsync(c, api, "two")

	call1.reply <- queryReply{err: &apiclient.Error{Status: 500, Message: "Request failed"}}
	require.True(t, errors.Is((<-res1).err, ErrSuperseded))

	s := c.State()
	require.True(t, s.Loading, "the newest request is still in flight")
	require.Empty(t, s.Error, "stale failures are not recorded")

	call2.reply <- queryReply{resp: &apiclient.QueryResponse{Answer: "ok", ConvID: "3"}}
	require.NoError(t, (<-res2).err)
	require.False(t, c.State().Loading)
}

func TestChat_ClearInvalidatesInFlight(t *testing.T) {
	api := newGatedChatAPI()
	c := NewChat(api, nil)
	c.AddMessage(Message{Sender: SenderUser, Content: "hello"})

	call, res := sendAsync(c, api, "hello")
	c.ClearChat()
	require.Empty(t, c.State().Messages)
	require.True(t, c.State().Loading, "clear leaves loading alone")

	call.reply <- queryReply{resp: &apiclient.QueryResponse{Answer: "late", ConvID: "9"}}
	require.True(t, errors.Is((<-res).err, ErrSuperseded))

	s := c.State()
	require.Empty(t, s.Messages)
	require.Nil(t, s.LastConvID)
	require.False(t, s.Loading, "the invalidated request still settles loading")
}

func TestChat_FetchGraph(t *testing.T) {
	g := &apiclient.Graph{}
	api := &instantChatAPI{graph: g}
	c := NewChat(api, nil)

	got, err := c.FetchGraph(context.Background(), "42")
	require.NoError(t, err)
	require.Same(t, g, got)
	require.Same(t, g, c.State().Graph)

	api.graph, api.gerr = nil, &apiclient.Error{Status: 404, Message: "Not Found"}
	_, err = c.FetchGraph(context.Background(), "42")
	require.Error(t, err)
	require.Same(t, g, c.State().Graph)
	require.Equal(t, "Not Found", c.State().Error)
}

func TestChat_GraphAndQueryStreamsIndependent(t *testing.T) {
	api := newGatedChatAPI()
	c := NewChat(api, nil)

	qcall, qres := sendAsync(c, api, "q")

	gres := make(chan error, 1)
	go func() {
		_, err := c.FetchGraph(context.Background(), "1")
		gres <- err
	}()
	gcall := <-api.graphs
	gcall.reply <- graphReply{graph: &apiclient.Graph{}}
	require.NoError(t, <-gres)
	require.True(t, c.State().Loading, "query still in flight")

	qcall.reply <- queryReply{resp: &apiclient.QueryResponse{Answer: "a", ConvID: "1"}}
	require.NoError(t, (<-qres).err)
	require.False(t, c.State().Loading)
}

func TestChat_StateIsASnapshot(t *testing.T) {
	c := NewChat(&instantChatAPI{}, nil)
	c.AddMessage(Message{Sender: SenderUser, Content: "a"})

	s := c.State()
	s.Messages[0].Content = "changed"
	require.Equal(t, "a", c.State().Messages[0].Content)
}
