package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
)

var (
	// ErrUnauthenticated marks a response that means the session is no
	// longer accepted: a 401, or an HTML login page served in place of JSON.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden marks a 403.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidResponse marks a successful status with an undecodable body.
	ErrInvalidResponse = errors.New("invalid response body")
)

// APIError is returned for every failed call. Message is meant for display.
// Status is 0 when no response was received.
type APIError struct {
	Status  int
	Code    string
	Message string
	Err     error

	// text is a non-JSON body, kept for operations that show it verbatim.
	text string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAuthFailure reports a 401 or a 403.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrForbidden)
}

// errorBody covers both the server's envelope and flat {"message": ...}
// bodies.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type envelope struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// newAPIError classifies a non-2xx response and picks the message to show:
// envelope details, envelope message, flat message, then fallback. A
// plain-text body is kept aside; see preferText.
func newAPIError(resp *http.Response, body []byte, fallback string) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: fallback}

	switch {
	case isHTML(resp):
		apiErr.Err = ErrUnauthenticated
		apiErr.Message = "Not authenticated"
		return apiErr
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr.Err = ErrUnauthenticated
	case resp.StatusCode == http.StatusForbidden:
		apiErr.Err = ErrForbidden
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return apiErr
	}

	var parsed errorBody
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		if json.Valid(trimmed) {
			return apiErr
		}
		apiErr.text = string(trimmed)
		return apiErr
	}

	var env envelope
	if len(parsed.Error) > 0 && json.Unmarshal(parsed.Error, &env) == nil {
		apiErr.Code = env.Code
		if details := nonEmpty(env.Details); len(details) > 0 {
			apiErr.Message = strings.Join(details, "; ")
			return apiErr
		}
		if env.Message != "" {
			apiErr.Message = env.Message
			return apiErr
		}
	}

	if parsed.Message != "" {
		apiErr.Message = parsed.Message
	}
	return apiErr
}

// preferText swaps the message of an *APIError for the plain-text body it
// carried, if any.
func preferText(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.text != "" {
		apiErr.Message = apiErr.text
	}
	return err
}

func isHTML(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == "text/html"
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
