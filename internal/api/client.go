// Package api wraps every backend endpoint in a typed call. Responses are
// decoded leniently into model types; numbers may arrive as JSON numbers or
// strings and optional collections may be null.
package api

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/transport"
)

// Doer is the transport contract the client depends on.
type Doer interface {
	Do(ctx context.Context, call transport.Call) (transport.Response, error)
}

// TokenSource yields the bearer token at dispatch time.
type TokenSource interface {
	Token() string
}

type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type Client struct {
	transport Doer
	tokens    TokenSource
	logger    *slog.Logger
}

func New(t Doer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{transport: t, logger: logger}
}

// WithTokens returns a copy of c that authenticates with tokens.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (transport.Response, error) {
	return c.do(ctx, transport.Call{Method: transport.MethodGet, Path: path, Query: query})
}

func (c *Client) post(ctx context.Context, path string, query url.Values, fields transport.Fields) (transport.Response, error) {
	return c.do(ctx, transport.Call{Method: transport.MethodPost, Path: path, Query: query, Fields: fields})
}

// do stamps the current token on call and turns non-2xx responses, and 2xx
// bodies carrying success=false, into application errors.
func (c *Client) do(ctx context.Context, call transport.Call) (transport.Response, error) {
	call.Token = c.token()
	resp, err := c.transport.Do(ctx, call)
	if err != nil {
		return resp, err
	}
	if !resp.OK() {
		return resp, failure(call.Path, resp)
	}
	if obj, ok := resp.Body.Object(); ok {
		if success, present := obj["success"].(bool); present && !success {
			return resp, failure(call.Path, resp)
		}
	}
	return resp, nil
}

// failure extracts the server's message from an `error` or `message` key, or
// from the raw text body.
func failure(op string, resp transport.Response) *apperr.Error {
	return apperr.Application(op, resp.Status, errorMessage(resp.Body))
}

func errorMessage(body transport.Body) string {
	if obj, ok := body.Object(); ok {
		for _, key := range []string{"error", "message"} {
			if s, ok := stringField(obj, key); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		return ""
	}
	if !body.IsJSON() {
		return strings.TrimSpace(body.Text)
	}
	return ""
}

func idQuery(key string, id int64) url.Values {
	return url.Values{key: []string{strconv.FormatInt(id, 10)}}
}

// degrade logs a shape failure on a collection read and yields nil.
func (c *Client) degrade(op string, err error) {
	c.logger.Debug("response shape degraded to empty", slog.String("op", op), slog.String("error", err.Error()))
}
