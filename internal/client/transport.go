package client

import (
	"context"
	"net/http"

	"bank-dashboard/internal/session"
)

// TokenSource supplies the bearer token for outgoing requests.
// *session.Manager implements it.
type TokenSource interface {
	Token(ctx context.Context) string
}

// sessionTransport attaches the bearer token. A session carried on the
// request context wins over the token source.
type sessionTransport struct {
	tokens TokenSource
	base   http.RoundTripper
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if s, ok := session.FromContext(req.Context()); ok {
		token = s.Token
	} else if t.tokens != nil {
		token = t.tokens.Token(req.Context())
	}

	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return t.base.RoundTrip(req)
}
