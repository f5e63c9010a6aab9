// Package transport issues calls against the marketplace backend with one
// request/response contract and classifies connection-level failures.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/symbio/internal/apperr"
)

type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

func (m Method) IsValid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	default:
		return false
	}
}

func (m Method) hasBody() bool {
	return m == MethodPost || m == MethodPut
}

// Call describes a single request. Token is captured by value when the call is
// built, so rotating the session token never touches calls already in flight.
type Call struct {
	Method Method
	Path   string
	Query  url.Values
	Fields Fields
	Token  string
}

type Response struct {
	Status int
	Header http.Header
	Raw    []byte
	Body   Body
}

// OK reports application success: the call completed with a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *Metrics
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics *Metrics
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("transport: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("transport: parse base url: %w", err)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: base, http: hc, logger: logger, metrics: opts.Metrics}, nil
}

// Do executes call. The returned error is non-nil only when no response was
// obtained (KindTransport); any HTTP status, including failures, comes back
// as a Response so error payloads can be surfaced.
func (c *Client) Do(ctx context.Context, call Call) (Response, error) {
	if !call.Method.IsValid() {
		return Response{}, apperr.Validation(call.Path, fmt.Sprintf("unsupported method %q", call.Method))
	}

	target := c.baseURL + call.Path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	var body io.Reader
	if call.Method.hasBody() {
		fields := call.Fields
		if fields == nil {
			fields = Fields{}
		}
		payload, err := encodeFields(fields)
		if err != nil {
			return Response{}, apperr.Validation(call.Path, fmt.Sprintf("encode fields: %v", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, string(call.Method), target, body)
	if err != nil {
		return Response{}, apperr.Transport(call.Path, fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if call.Token != "" {
		req.Header.Set("Authorization", "Bearer "+call.Token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(call.Method, call.Path, outcomeTransportError, time.Since(started))
		c.logger.Debug("transport request failed",
			slog.String("method", string(call.Method)),
			slog.String("path", call.Path),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return Response{}, apperr.Transport(call.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(call.Method, call.Path, outcomeTransportError, time.Since(started))
		return Response{}, apperr.Transport(call.Path, fmt.Errorf("read response: %w", err))
	}

	out := Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Raw:    raw,
		Body:   ParseBody(raw),
	}
	outcome := outcomeSuccess
	if !out.OK() {
		outcome = outcomeApplicationError
	}
	elapsed := time.Since(started)
	c.metrics.observe(call.Method, call.Path, outcome, elapsed)
	c.logger.Debug("transport request",
		slog.String("method", string(call.Method)),
		slog.String("path", call.Path),
		slog.Int("status", out.Status),
		slog.String("request_id", requestID),
		slog.Duration("elapsed", elapsed))
	return out, nil
}
