// ABOUTME: API error normalizer shared by every endpoint wrapper
// ABOUTME: Maps server bodies, network failures and surprises to one Error type

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind classifies an API failure for presentation purposes.
type ErrorKind int

const (
	// KindValidation marks input rejected client-side before any request.
	KindValidation ErrorKind = iota
	// KindServer marks a non-2xx response with a parseable body.
	KindServer
	// KindNetwork marks a request that never produced a response.
	KindNetwork
	// KindUnexpected marks everything else.
	KindUnexpected
)

// Error is the single error shape surfaced by the client. Server bodies are
// probed for detail, message, title, then a field-error map, first match wins.
type Error struct {
	Kind        ErrorKind
	StatusCode  int
	Message     string
	FieldErrors map[string][]string
}

func (e *Error) Error() string {
	return e.Message
}

// genericNetworkMessage is shown when no response was received at all.
const genericNetworkMessage = "Cannot reach the server. Check your connection and try again."

// errorBody mirrors the shapes the API is known to return for failures:
// RFC 7807 problem details and ASP.NET validation dictionaries.
type errorBody struct {
	Detail  string              `json:"detail"`
	Message string              `json:"message"`
	Title   string              `json:"title"`
	Errors  map[string][]string `json:"errors"`
}

// decodeError turns a non-2xx response into an *Error. The body is decoded
// leniently; an unreadable body falls back to the bare status code.
func decodeError(resp *http.Response) *Error {
	apiErr := &Error{Kind: KindServer, StatusCode: resp.StatusCode}

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		apiErr.Message = fmt.Sprintf("server returned status %d", resp.StatusCode)
		return apiErr
	}

	switch {
	case body.Detail != "":
		apiErr.Message = body.Detail
	case body.Message != "":
		apiErr.Message = body.Message
	case body.Title != "":
		apiErr.Message = body.Title
	case len(body.Errors) > 0:
		apiErr.FieldErrors = body.Errors
		apiErr.Message = firstFieldError(body.Errors)
	default:
		apiErr.Message = fmt.Sprintf("server returned status %d", resp.StatusCode)
	}

	return apiErr
}

// firstFieldError picks a deterministic headline message out of a field map.
func firstFieldError(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(fields[k]) > 0 {
			return fields[k][0]
		}
	}
	return "validation failed"
}

// requestError converts a transport-level failure into an *Error, preferring
// context cancellation and deadline information when present.
func requestError(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &Error{Kind: KindNetwork, Message: "request canceled"}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindNetwork, Message: "request timed out"}
	}
	return &Error{Kind: KindNetwork, Message: genericNetworkMessage}
}

// validationError builds a client-side validation failure that never left the
// process.
func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Message extracts a human-readable message from any error, applying the
// fallback for non-API errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "An unknown error occurred"
	}
	return msg
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindValidation
}
