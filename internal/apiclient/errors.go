// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Fallback messages used when the gateway does not supply one.
const (
	MsgUndecodable   = "An error occurred"
	MsgRequestFailed = "Request failed"
)

// Error is the single error type returned by Client. Status is 0 for
// failures that never produced an HTTP response.
type Error struct {
	Status  int
	Message string
	Err     error
}

// Error implements the error interface. Only the message is shown so it can
// be presented to the user as-is.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Detailed includes the status code, for logs.
func (e *Error) Detailed() string {
	if e.Status == 0 {
		return fmt.Sprintf("transport error: %s", e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the gateway.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 401
}

// Message returns the user-facing message of err, or fallback when err is
// not an *Error or carries no message.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && fallback == "" {
		return err.Error()
	}
	return fallback
}

// errorFromBody builds the error for a non-2xx response.
//
// The body's "message" field wins. A body that is not JSON yields
// MsgUndecodable. A JSON body without "message" falls back to the
// gateway's "detail" field, then MsgRequestFailed.
func errorFromBody(status int, body []byte) *Error {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return &Error{Status: status, Message: MsgUndecodable}
	}

	if msg, ok := payload["message"].(string); ok && msg != "" {
		return &Error{Status: status, Message: msg}
	}

	switch detail := payload["detail"].(type) {
	case string:
		if detail != "" {
			return &Error{Status: status, Message: detail}
		}
	case []interface{}:
		// Validation failures: [{"loc": [...], "msg": "...", ...}]
		if len(detail) > 0 {
			if first, ok := detail[0].(map[string]interface{}); ok {
				if msg, ok := first["msg"].(string); ok && msg != "" {
					return &Error{Status: status, Message: msg}
				}
			}
		}
	}

	return &Error{Status: status, Message: MsgRequestFailed}
}

// transportError wraps a failure that happened before a response arrived.
func transportError(err error) *Error {
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Message: "Request cancelled", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Message: "Request timed out", Err: err}
	default:
		return &Error{Message: "Unable to reach the server", Err: err}
	}
}
