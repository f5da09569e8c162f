// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ID is a backend identifier. The gateway sends user ids as strings and
// conversation ids as numbers; both decode into ID. All-digit ids encode
// back as JSON numbers.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON encodes numeric ids as numbers and the zero ID as null.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if id.isNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) isNumeric() bool {
	if len(id) > 18 || (len(id) > 1 && id[0] == '0') {
		return false
	}
	_, err := strconv.ParseUint(string(id), 10, 64)
	return err == nil
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return id == "" }

// =============================================================================
// USERS & AUTH
// =============================================================================

// User is the gateway's user record. Fields the client does not know are
// kept in Extra.
type User struct {
	ID        ID     `json:"id"`
	FullName  string `json:"full_name,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type userAlias User

var knownUserFields = []string{"id", "full_name", "name", "email", "created_at"}

// UnmarshalJSON decodes known fields and retains the rest.
func (u *User) UnmarshalJSON(data []byte) error {
	var alias userAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range knownUserFields {
		delete(all, k)
	}
	if len(all) > 0 {
		alias.Extra = all
	}
	*u = User(alias)
	return nil
}

// MarshalJSON re-emits Extra next to the known fields.
func (u User) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(userAlias(u))
	if err != nil || len(u.Extra) == 0 {
		return base, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range u.Extra {
		if _, known := merged[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// DisplayName is full_name, else name, else "User".
func (u *User) DisplayName() string {
	if u == nil {
		return "User"
	}
	if u.FullName != "" {
		return u.FullName
	}
	if u.Name != "" {
		return u.Name
	}
	return "User"
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register payload.
type Registration struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// =============================================================================
// CHAT
// =============================================================================

// QueryRequest is the chat query payload. A nil ConvID starts a new
// conversation and is sent as null.
type QueryRequest struct {
	UserID ID     `json:"user_id,omitempty"`
	Text   string `json:"text"`
	ConvID *ID    `json:"conv_id"`
}

// QueryResponse carries the answer and the conversation it belongs to.
type QueryResponse struct {
	Answer string `json:"answer"`
	ConvID ID     `json:"conv_id"`
}

// Graph is the reasoning graph of a conversation. Its contents are opaque
// to the client; Raw holds the payload as received.
type Graph struct {
	Nodes []json.RawMessage `json:"nodes"`
	Edges []json.RawMessage `json:"edges"`

	Raw json.RawMessage `json:"-"`
}

type graphAlias Graph

// UnmarshalJSON keeps the raw payload alongside nodes and edges.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var alias graphAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	alias.Raw = append(json.RawMessage(nil), data...)
	*g = Graph(alias)
	return nil
}

// Pretty returns the graph as indented JSON.
func (g *Graph) Pretty() string {
	if g == nil {
		return "null"
	}
	src := g.Raw
	if len(src) == 0 {
		var err error
		src, err = json.Marshal(graphAlias(*g))
		if err != nil {
			return "{}"
		}
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, src, "", "  "); err != nil {
		return string(src)
	}
	return buf.String()
}

// TextResponse is returned by the OCR and voice endpoints.
type TextResponse struct {
	Text string `json:"text"`
}
