package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	method string
	path   string
	query  url.Values
	auth   string
	body   []byte
}

func recordingServer(t *testing.T, status int, reply string) (*httptest.Server, *seenRequest) {
	t.Helper()
	seen := &seenRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.method = r.Method
		seen.path = r.URL.Path
		seen.query = r.URL.Query()
		seen.auth = r.Header.Get("Authorization")
		seen.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func newClient(t *testing.T, baseURL string, metrics *Metrics) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: baseURL, Metrics: metrics})
	require.NoError(t, err)
	return c
}

func TestGetSendsNoBodyAndParsesJSON(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{"tasks":[{"id":1}]}`)
	c := newClient(t, srv.URL, nil)

	resp, err := c.Do(t.Context(), Call{
		Method: MethodGet,
		Path:   "/api/tasks",
		Query:  url.Values{"limit": {"20"}, "offset": {"0"}},
		Fields: Fields{"ignored": "yes"},
		Token:  "tok-1",
	})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, http.MethodGet, seen.method)
	assert.Equal(t, "/api/tasks", seen.path)
	assert.Equal(t, "20", seen.query.Get("limit"))
	assert.Empty(t, seen.body)
	assert.Equal(t, "Bearer tok-1", seen.auth)

	obj, ok := resp.Body.Object()
	require.True(t, ok)
	assert.Contains(t, obj, "tasks")
}

func TestPostSerializesFieldsWithStringifiedLists(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusCreated, `{"ok":true}`)
	c := newClient(t, srv.URL, nil)

	_, err := c.Do(t.Context(), Call{
		Method: MethodPost,
		Path:   "/profile",
		Fields: Fields{
			"full_name": "Ada",
			"skills":    []string{"go", "rust"},
			"ids":       []int{1, 2},
			"price":     10.5,
			"task_id":   int64(4),
			"public":    true,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "", seen.auth, "no Authorization header without a token")

	var got map[string]any
	require.NoError(t, json.Unmarshal(seen.body, &got))
	assert.Equal(t, "Ada", got["full_name"])
	assert.Equal(t, []any{"go", "rust"}, got["skills"])
	assert.Equal(t, []any{"1", "2"}, got["ids"])
	assert.Equal(t, 10.5, got["price"])
	assert.Equal(t, float64(4), got["task_id"])
	assert.Equal(t, true, got["public"])
}

func TestNonJSONBodyIsPassedThroughAsText(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusBadRequest, "insufficient funds")
	c := newClient(t, srv.URL, nil)

	resp, err := c.Do(t.Context(), Call{Method: MethodPost, Path: "/api/wallet/bitcoinSend"})
	require.NoError(t, err)

	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.False(t, resp.Body.IsJSON())
	assert.Equal(t, "insufficient funds", resp.Body.Text)
}

func TestErrorPayloadSurvivesNon2xx(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusUnauthorized, `{"error":"invalid captcha"}`)
	c := newClient(t, srv.URL, nil)

	resp, err := c.Do(t.Context(), Call{Method: MethodPost, Path: "/auth"})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	obj, ok := resp.Body.Object()
	require.True(t, ok)
	assert.Equal(t, "invalid captcha", obj["error"])
}

func TestConnectionFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	c := newClient(t, base, metrics)

	_, err := c.Do(t.Context(), Call{Method: MethodGet, Path: "/api/ownID"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTransport))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/api/ownID", outcomeTransportError)))
}

func TestMetricsCountOutcomes(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusInternalServerError, `{"error":"down"}`)
	metrics := NewMetrics(prometheus.NewRegistry())
	c := newClient(t, srv.URL, metrics)

	for i := 0; i < 2; i++ {
		_, err := c.Do(t.Context(), Call{Method: MethodGet, Path: "/api/wallet"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/api/wallet", outcomeApplicationError)))
}

func TestUnsupportedMethodIsRejectedLocally(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1", nil)
	_, err := c.Do(t.Context(), Call{Method: Method("PATCH"), Path: "/profile"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestParseBodyShapes(t *testing.T) {
	assert.True(t, ParseBody(nil).IsEmpty())
	assert.True(t, ParseBody([]byte("  ")).IsEmpty())

	arr, ok := ParseBody([]byte(`[{"id":1},{"id":2}]`)).Array()
	require.True(t, ok)
	assert.Len(t, arr, 2)

	num := ParseBody([]byte(`{"user_id": 42}`))
	obj, ok := num.Object()
	require.True(t, ok)
	assert.Equal(t, json.Number("42"), obj["user_id"])

	text := ParseBody([]byte(`{"broken": `))
	assert.False(t, text.IsJSON())
	assert.Equal(t, `{"broken": `, text.Text)
}

func TestNewHTTPClientProxySchemes(t *testing.T) {
	_, err := NewHTTPClient("", 0)
	require.NoError(t, err)

	hc, err := NewHTTPClient("http://localhost:4444", 0)
	require.NoError(t, err)
	tr := hc.Transport.(*http.Transport)
	require.NotNil(t, tr.Proxy)

	_, err = NewHTTPClient("socks5://127.0.0.1:9050", 0)
	require.NoError(t, err)

	_, err = NewHTTPClient("ftp://nope", 0)
	require.Error(t, err)
}
