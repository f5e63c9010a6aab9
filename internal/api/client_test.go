package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/fakeapi"
	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/transport"
)

func newClient(t *testing.T, h http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	tr, err := transport.New(transport.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	c := New(tr, nil)
	if token != "" {
		c = c.WithTokens(TokenFunc(func() string { return token }))
	}
	return c
}

func staticJSON(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func TestTolerantFieldGetters(t *testing.T) {
	obj := map[string]any{
		"a": json.Number("12"),
		"b": "34",
		"c": json.Number("1.5"),
		"d": "true",
		"e": []any{json.Number("3"), "4", "x"},
		"f": json.Number("7.0"),
	}
	n, ok := intField(obj, "a")
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)
	n, ok = intField(obj, "missing", "b")
	assert.True(t, ok)
	assert.Equal(t, int64(34), n)
	_, ok = intField(obj, "c")
	assert.False(t, ok)
	n, ok = intField(obj, "f")
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)
	f, ok := floatField(obj, "c")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)
	assert.True(t, boolField(obj, "d"))
	assert.Equal(t, []int64{3, 4}, intsField(obj, "e"))
	s, ok := stringField(obj, "a")
	assert.True(t, ok)
	assert.Equal(t, "12", s)
}

func TestListOfShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{name: "bare array", body: `[{"id":1},{"id":2}]`, want: 2},
		{name: "keyed array", body: `{"tasks":[{"id":1}]}`, want: 1},
		{name: "keyed null", body: `{"tasks":null}`, want: 0},
		{name: "null body", body: `null`, want: 0},
		{name: "missing key", body: `{"other":[]}`, wantErr: true},
		{name: "wrong type", body: `{"tasks":"nope"}`, wantErr: true},
		{name: "text", body: `oops`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := listOf("op", transport.ParseBody([]byte(tt.body)), "tasks")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsKind(err, apperr.KindShape))
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
		})
	}
}

func TestAuthFlowsAgainstFakeBackend(t *testing.T) {
	ctx := context.Background()
	fake := fakeapi.New()
	c := newClient(t, fake, "")

	ch, err := c.FetchCaptcha(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, ch.ID)
	assert.NotEmpty(t, ch.Image)

	reg, err := c.Register(ctx, Credentials{Username: "ann", Password: "pw", CaptchaID: ch.ID, CaptchaAnswer: fakeapi.CaptchaAnswer})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.NotEmpty(t, reg.Mnemonic)
	assert.NotEmpty(t, reg.Message)

	ch, err = c.FetchCaptcha(ctx)
	require.NoError(t, err)
	_, err = c.Login(ctx, Credentials{Username: "ann", Password: "pw", CaptchaID: ch.ID, CaptchaAnswer: "wrong"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindApplication))
	assert.Equal(t, "invalid captcha", apperr.Display(err))

	ch, err = c.FetchCaptcha(ctx)
	require.NoError(t, err)
	token, err := c.Restore(ctx, RestoreRequest{
		Username: "ann", Mnemonic: reg.Mnemonic, NewPassword: "pw2",
		CaptchaID: ch.ID, CaptchaAnswer: fakeapi.CaptchaAnswer,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	ch, err = c.FetchCaptcha(ctx)
	require.NoError(t, err)
	token, err = c.Login(ctx, Credentials{Username: "ann", Password: "pw2", CaptchaID: ch.ID, CaptchaAnswer: fakeapi.CaptchaAnswer})
	require.NoError(t, err)

	authed := c.WithTokens(TokenFunc(func() string { return token }))
	id, err := authed.OwnID(ctx)
	require.NoError(t, err)
	p, err := authed.ProfileByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ann", p.Username)
}

func TestCollectionsDegradeOnShapeErrors(t *testing.T) {
	c := newClient(t, staticJSON(http.StatusOK, `{"tasks":"broken","offers":{}}`), "tok")
	ctx := context.Background()

	tasks, err := c.Tasks(ctx, model.FilterAll, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	offers, err := c.Offers(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, offers)

	_, err = c.Task(ctx, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindShape))
}

func TestSuccessFalseIsApplicationError(t *testing.T) {
	c := newClient(t, staticJSON(http.StatusOK, `{"success":false,"message":"task closed"}`), "tok")
	err := c.CreateOffer(context.Background(), model.OfferDraft{TaskID: 1, Price: 2})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindApplication))
	assert.Equal(t, "task closed", apperr.Display(err))
}

func TestWalletAndTransferAgainstFakeBackend(t *testing.T) {
	ctx := context.Background()
	fake := fakeapi.New()
	uid, token := fake.AddUser("bob", "pw")
	fake.SetBalance(uid, 0.5)
	c := newClient(t, fake, token)

	w, err := c.Wallet(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, "0.50000000", w.Balance)
	assert.NotEmpty(t, w.Address)

	_, err = c.SendBitcoin(ctx, "bc1qdest", "2")
	require.Error(t, err)
	assert.Equal(t, "insufficient funds", apperr.Display(err))

	tx, err := c.SendBitcoin(ctx, "bc1qdest", "0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, tx.TxID)
	assert.Equal(t, "transaction broadcast", tx.Message)
}

func TestTicketMessagesCapitalisedKeys(t *testing.T) {
	c := newClient(t, staticJSON(http.StatusOK, `[{"ID":3,"SenderID":9,"Message":"hello"},{"id":4,"sender_id":2,"message":"hi"}]`), "tok")
	msgs, err := c.TicketMessages(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.TicketMessage{ID: 3, TicketID: 11, SenderID: 9, Body: "hello"}, msgs[0])
	assert.Equal(t, int64(2), msgs[1].SenderID)
}

func TestProfilesPageWithTotal(t *testing.T) {
	ctx := context.Background()
	fake := fakeapi.New()
	_, token := fake.AddUser("u1", "pw")
	for _, name := range []string{"u2", "u3", "u4", "u5", "u6", "u7"} {
		fake.AddUser(name, "pw")
	}
	c := newClient(t, fake, token)

	page, err := c.Profiles(ctx, 5, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 7, page.Total)

	page, err = c.Profiles(ctx, 5, 5)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "u6", page.Items[0].Username)
}
