// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeGateway serves canned responses for the gateway endpoints.
func fakeGateway(t *testing.T) (*Gateway, *[]map[string]interface{}) {
	t.Helper()
	var bodies []map[string]interface{}

	mux := http.NewServeMux()
	capture := func(r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var m map[string]interface{}
		_ = json.Unmarshal(data, &m)
		bodies = append(bodies, m)
	}
	mux.HandleFunc(PathLogin, func(w http.ResponseWriter, r *http.Request) {
		capture(r)
		w.Write([]byte(`{"token":"jwt-1","user":{"id":"65f0c0ffee","email":"a@b.co","full_name":"Ann"}}`))
	})
	mux.HandleFunc(PathRegister, func(w http.ResponseWriter, r *http.Request) {
		capture(r)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":"jwt-2","user":{"id":"65f0c0ffef","email":"c@d.co","full_name":"Cy"}}`))
	})
	mux.HandleFunc(PathQuery, func(w http.ResponseWriter, r *http.Request) {
		capture(r)
		w.Write([]byte(`{"answer":"Drink water.","conv_id":42}`))
	})
	mux.HandleFunc(PathGraph, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/graph/42", r.URL.Path)
		w.Write([]byte(`{"nodes":[{"id":"n1"}],"edges":[],"conv_id":42}`))
	})
	mux.HandleFunc(PathOCR, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fh := r.MultipartForm.File["file"][0]
		require.Equal(t, "scan.png", fh.Filename)
		require.Equal(t, "image/png", fh.Header.Get("Content-Type"))
		w.Write([]byte(`{"text":"Paracetamol 500mg"}`))
	})
	mux.HandleFunc(PathVoice, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fh := r.MultipartForm.File["file"][0]
		require.Equal(t, "voice.webm", fh.Filename)
		w.Write([]byte(`{"text":"my head hurts"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return NewGateway(New(nil, Options{BaseURL: server.URL})), &bodies
}

func TestGateway_LoginPayload(t *testing.T) {
	gw, bodies := fakeGateway(t)

	resp, err := gw.Login(context.Background(), Credentials{Email: "a@b.co", Password: "abc12345"})
	require.NoError(t, err)
	require.Equal(t, "jwt-1", resp.Token)
	require.Equal(t, "Ann", resp.User.DisplayName())
	require.Equal(t, map[string]interface{}{"email": "a@b.co", "password": "abc12345"}, (*bodies)[0])
}

func TestGateway_RegisterPayload(t *testing.T) {
	gw, bodies := fakeGateway(t)

	resp, err := gw.Register(context.Background(), Registration{FullName: "Cy", Email: "c@d.co", Password: "abc12345"})
	require.NoError(t, err)
	require.Equal(t, "jwt-2", resp.Token)
	require.Equal(t, map[string]interface{}{"full_name": "Cy", "email": "c@d.co", "password": "abc12345"}, (*bodies)[0])
}

func TestGateway_QueryAndGraph(t *testing.T) {
	gw, bodies := fakeGateway(t)
	ctx := context.Background()

	resp, err := gw.Query(ctx, QueryRequest{UserID: "1", Text: "headache"})
	require.NoError(t, err)
	require.Equal(t, "Drink water.", resp.Answer)
	require.Equal(t, ID("42"), resp.ConvID)

	sent := (*bodies)[0]
	require.Nil(t, sent["conv_id"], "new conversation sends null conv_id")
	require.Contains(t, sent, "conv_id")
	require.EqualValues(t, 1, sent["user_id"], "numeric ids go out as numbers")

	conv := resp.ConvID
	_, err = gw.Query(ctx, QueryRequest{UserID: "65f0c0ffee", Text: "more", ConvID: &conv})
	require.NoError(t, err)
	require.EqualValues(t, 42, (*bodies)[1]["conv_id"])
	require.Equal(t, "65f0c0ffee", (*bodies)[1]["user_id"])

	graph, err := gw.Graph(ctx, resp.ConvID)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 1)
	require.Contains(t, graph.Pretty(), `"conv_id": 42`)
}

func TestGateway_Uploads(t *testing.T) {
	gw, _ := fakeGateway(t)
	ctx := context.Background()

	text, err := gw.ExtractText(ctx, "scan.png", "image/png", []byte("\x89PNG"))
	require.NoError(t, err)
	require.Equal(t, "Paracetamol 500mg", text)

	text, err = gw.Transcribe(ctx, []byte("webm"))
	require.NoError(t, err)
	require.Equal(t, "my head hurts", text)
}

func TestID_JSON(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":7,"b":"abc","c":null}`), &v))
	require.Equal(t, ID("7"), v.A)
	require.Equal(t, ID("abc"), v.B)
	require.True(t, v.C.IsZero())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":7,"b":"abc","c":null}`, string(out))

	out, err = json.Marshal(ID("007"))
	require.NoError(t, err)
	require.Equal(t, `"007"`, string(out))
}

func TestUser_ExtraFieldsAndDisplayName(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","email":"e@x.io","name":"Nick","role":"patient"}`), &u))
	require.Equal(t, "Nick", u.DisplayName())
	require.Contains(t, u.Extra, "role")

	out, err := json.Marshal(u)
	require.NoError(t, err)
	require.Contains(t, string(out), `"role":"patient"`)

	require.Equal(t, "User", (&User{}).DisplayName())
	require.Equal(t, "User", (*User)(nil).DisplayName())
}
