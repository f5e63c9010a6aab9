package workflow

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/symbio/internal/api"
	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/fakeapi"
	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/session"
	"github.com/sandeepkv93/symbio/internal/transport"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type harness struct {
	fake *fakeapi.Server
	base *api.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := fakeapi.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	tr, err := transport.New(transport.Options{BaseURL: srv.URL, Logger: quiet})
	require.NoError(t, err)
	return &harness{fake: fake, base: api.New(tr, quiet)}
}

// signIn returns a bootstrapped session for token.
func (h *harness) signIn(t *testing.T, token string) *session.Manager {
	t.Helper()
	m := session.NewManager(session.Options{Client: h.base, Store: session.NewMemoryStore(token), Logger: quiet})
	ok, err := m.Init(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	m.Bootstrap(context.Background())
	require.True(t, m.Viewer().Known)
	return m
}

func (h *harness) market(t *testing.T, token string) *Market {
	m := h.signIn(t, token)
	return NewMarket(m.Client(), m, quiet)
}

func (h *harness) chat(t *testing.T, token string) *Chat {
	m := h.signIn(t, token)
	return NewChat(m.Client(), m, quiet)
}

func tasks(ids ...int64) []model.Task {
	out := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Task{ID: id})
	}
	return out
}

func seq(from, n int64) []int64 {
	out := make([]int64, 0, n)
	for i := int64(0); i < n; i++ {
		out = append(out, from+i)
	}
	return out
}

func TestTaskListMergeAndFilterReset(t *testing.T) {
	l := NewTaskList()
	assert.Equal(t, 0, l.Offset())

	l = l.Merge(1, tasks(seq(1, PageSize)...))
	assert.Len(t, l.Items, PageSize)
	assert.True(t, l.HasNext)

	l = l.NextPage()
	assert.Equal(t, PageSize, l.Offset())
	l = l.Merge(l.Page, tasks(20, 21, 22))
	assert.Len(t, l.Items, 22, "duplicate id 20 must be dropped")
	assert.False(t, l.HasNext)

	l = l.WithFilter(model.TaskFilter(model.TaskStatusOpen))
	assert.Equal(t, 1, l.Page)
	assert.Empty(t, l.Items)
	assert.False(t, l.HasNext)

	l = l.Merge(1, tasks(99))
	assert.Equal(t, []model.Task{{ID: 99}}, l.Items)
}

func TestLoadTasksPagesAndFilters(t *testing.T) {
	h := newHarness(t)
	client, token := h.fake.AddUser("client", "pw")
	for i := 0; i < 25; i++ {
		h.fake.AddTask(client, "open task", "open", 1)
	}
	for i := 0; i < 3; i++ {
		h.fake.AddTask(client, "done task", "completed", 1)
	}
	mk := h.market(t, token)
	ctx := context.Background()

	list, err := mk.LoadTasks(ctx, NewTaskList())
	require.NoError(t, err)
	assert.Len(t, list.Items, 20)
	assert.True(t, list.HasNext)

	list, err = mk.LoadTasks(ctx, list.NextPage())
	require.NoError(t, err)
	assert.Len(t, list.Items, 28)
	assert.False(t, list.HasNext)

	list, err = mk.LoadTasks(ctx, list.WithFilter(model.TaskFilter(model.TaskStatusCompleted)))
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Len(t, list.Items, 3)
	for _, task := range list.Items {
		assert.Equal(t, model.TaskStatusCompleted, task.Status)
	}
}

func TestOfferRoundTripAndExclusivity(t *testing.T) {
	h := newHarness(t)
	clientID, clientTok := h.fake.AddUser("client", "pw")
	_, freelancerTok := h.fake.AddUser("dev", "pw")
	taskID := h.fake.AddTask(clientID, "build api", "open", 50)
	ctx := context.Background()

	dev := h.market(t, freelancerTok)
	detail, err := dev.Detail(ctx, taskID)
	require.NoError(t, err)
	assert.False(t, detail.IsOwn)
	assert.True(t, detail.CanMakeOffer)

	detail, err = dev.CreateOffer(ctx, detail, model.OfferDraft{Price: 10, Message: "hi"})
	require.NoError(t, err)
	require.Len(t, detail.Offers, 1)
	assert.Equal(t, 10.0, detail.Offers[0].Price)
	assert.Equal(t, "hi", detail.Offers[0].Message)
	assert.False(t, detail.Offers[0].Accepted)
	assert.True(t, detail.HasUserOffer)
	assert.False(t, detail.CanMakeOffer)

	_, err = dev.CreateOffer(ctx, detail, model.OfferDraft{Price: 12, Message: "again"})
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	assert.Equal(t, 1, h.fake.Hits("/api/offers/create"))

	owner := h.market(t, clientTok)
	own, err := owner.Detail(ctx, taskID)
	require.NoError(t, err)
	assert.True(t, own.IsOwn)
	_, err = owner.CreateOffer(ctx, own, model.OfferDraft{Price: 5})
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	assert.Equal(t, 1, h.fake.Hits("/api/offers/create"))

	_, err = dev.CreateOffer(ctx, detail, model.OfferDraft{Price: 0})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAcceptOfferRefetchesExclusiveState(t *testing.T) {
	h := newHarness(t)
	clientID, clientTok := h.fake.AddUser("client", "pw")
	devA, devATok := h.fake.AddUser("dev-a", "pw")
	devB, _ := h.fake.AddUser("dev-b", "pw")
	taskID := h.fake.AddTask(clientID, "logo", "open", 3)
	offerA := h.fake.AddOffer(taskID, devA, 2, "me")
	offerB := h.fake.AddOffer(taskID, devB, 3, "pick me")
	ctx := context.Background()

	owner := h.market(t, clientTok)
	detail, err := owner.Detail(ctx, taskID)
	require.NoError(t, err)

	detail, err = owner.AcceptOffer(ctx, detail, offerB)
	require.NoError(t, err)
	got := map[int64]bool{}
	for _, o := range detail.Offers {
		got[o.ID] = o.Accepted
	}
	assert.Equal(t, map[int64]bool{offerA: false, offerB: true}, got)
	assert.Equal(t, 2, h.fake.Hits("/api/offers"))

	b, _ := detail.Offer(offerB)
	assert.False(t, detail.CanAccept(b))
	_, err = owner.AcceptOffer(ctx, detail, offerB)
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))

	outsider := h.market(t, devATok)
	od, err := outsider.Detail(ctx, taskID)
	require.NoError(t, err)
	_, err = outsider.AcceptOffer(ctx, od, offerA)
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	assert.Equal(t, 1, h.fake.Hits("/api/offers/accept"))
}

func TestSubmitReviewEligibility(t *testing.T) {
	h := newHarness(t)
	clientID, clientTok := h.fake.AddUser("client", "pw")
	devID, devTok := h.fake.AddUser("dev", "pw")
	_, otherTok := h.fake.AddUser("other", "pw")
	taskID := h.fake.AddTask(clientID, "site", "open", 3)
	offerID := h.fake.AddOffer(taskID, devID, 2, "ok")
	ctx := context.Background()

	owner := h.market(t, clientTok)
	detail, err := owner.Detail(ctx, taskID)
	require.NoError(t, err)
	_, err = owner.AcceptOffer(ctx, detail, offerID)
	require.NoError(t, err)

	dev := h.market(t, devTok)
	dd, err := dev.Detail(ctx, taskID)
	require.NoError(t, err)
	assert.False(t, dd.CanReview, "task is not completed yet")
	_, err = dev.SubmitReview(ctx, dd, model.ReviewDraft{Rating: 5})
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))

	h.fake.SetTaskStatus(taskID, "completed")
	dd, err = dev.Detail(ctx, taskID)
	require.NoError(t, err)
	assert.True(t, dd.CanReview)

	_, err = dev.SubmitReview(ctx, dd, model.ReviewDraft{Rating: 6})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	dd, err = dev.SubmitReview(ctx, dd, model.ReviewDraft{Rating: 4, Comment: "great client"})
	require.NoError(t, err)
	require.Len(t, dd.Reviews, 1)
	assert.Equal(t, "dev", dd.Reviews[0].ReviewerName)

	other := h.market(t, otherTok)
	od, err := other.Detail(ctx, taskID)
	require.NoError(t, err)
	assert.False(t, od.CanReview)
	assert.Equal(t, 1, h.fake.Hits("/api/reviews/create"))
}

func TestChatRequestAcceptFlow(t *testing.T) {
	h := newHarness(t)
	aliceID, aliceTok := h.fake.AddUser("alice", "pw")
	bobID, bobTok := h.fake.AddUser("bob", "pw")
	ctx := context.Background()

	alice := h.chat(t, aliceTok)
	bob := h.chat(t, bobTok)

	as, err := alice.List(ctx)
	require.NoError(t, err)
	as, err = alice.Request(ctx, as, bobID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationRequested, as.Relation(bobID).Kind())
	assert.Len(t, as.Outgoing(), 1)

	_, err = alice.Accept(ctx, as, bobID)
	assert.True(t, apperr.IsKind(err, apperr.KindPermission), "requester cannot accept")
	_, err = alice.Request(ctx, as, bobID)
	assert.True(t, apperr.IsKind(err, apperr.KindPermission), "duplicate request")

	bs, err := bob.List(ctx)
	require.NoError(t, err)
	require.Len(t, bs.Incoming(), 1)
	bs, err = bob.Accept(ctx, bs, aliceID)
	require.NoError(t, err)
	require.Len(t, bs.Rooms, 1)
	assert.Empty(t, bs.Requests)

	as, err = alice.List(ctx)
	require.NoError(t, err)
	require.Len(t, as.Rooms, 1)
	assert.Equal(t, bs.Rooms[0].ID, as.Rooms[0].ID)
	assert.Equal(t, model.RelationAccepted, as.Relation(bobID).Kind())

	roomID := as.Rooms[0].ID
	msgs, err := alice.Send(ctx, roomID, "hello bob")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	_, err = alice.Send(ctx, roomID, "  ")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	as, err = alice.Exit(ctx, as, roomID)
	require.NoError(t, err)
	assert.Empty(t, as.Rooms)
	assert.Equal(t, model.RelationNone, as.Relation(bobID).Kind())
}

func TestChatRequestCancelFlow(t *testing.T) {
	h := newHarness(t)
	aliceID, aliceTok := h.fake.AddUser("alice", "pw")
	bobID, bobTok := h.fake.AddUser("bob", "pw")
	ctx := context.Background()

	alice := h.chat(t, aliceTok)
	bob := h.chat(t, bobTok)

	as, err := alice.List(ctx)
	require.NoError(t, err)
	_, err = alice.Request(ctx, as, bobID)
	require.NoError(t, err)

	bs, err := bob.List(ctx)
	require.NoError(t, err)
	bs, err = bob.Cancel(ctx, bs, aliceID)
	require.NoError(t, err)
	assert.Empty(t, bs.Requests)
	assert.Empty(t, bs.Rooms)

	as, err = alice.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, as.Rooms)
	assert.Empty(t, as.Requests)

	_, err = bob.Cancel(ctx, bs, aliceID)
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))
}

func TestTicketLifecycle(t *testing.T) {
	h := newHarness(t)
	_, token := h.fake.AddUser("ann", "pw")
	m := h.signIn(t, token)
	tk := NewTickets(m.Client(), quiet)
	ctx := context.Background()

	_, err := tk.Create(ctx, " ", "body")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	list, err := tk.Create(ctx, "payout stuck", "my payout is stuck")
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID
	assert.Equal(t, model.TicketStatusOpen, list[0].Status)

	long := strings.Repeat("x", 1200)
	msgs, err := tk.Write(ctx, id, long)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	lines := ClassifyTicket(msgs)
	assert.Equal(t, model.BodyText, lines[0].Kind)
	assert.Equal(t, model.BodyImage, lines[1].Kind)

	list, err = tk.Close(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusClosed, list[0].Status)

	_, err = tk.Write(ctx, id, "still there?")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindApplication))
	assert.Equal(t, "ticket is closed", apperr.Display(err))
}

func TestWalletSendValidation(t *testing.T) {
	h := newHarness(t)
	uid, token := h.fake.AddUser("ann", "pw")
	h.fake.SetBalance(uid, 1)
	m := h.signIn(t, token)
	w := NewWallet(m.Client(), "", quiet)
	ctx := context.Background()

	_, err := w.Send(ctx, "", "1")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	_, err = w.Send(ctx, "bc1q", "-1")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Equal(t, 0, h.fake.Hits("/api/wallet/bitcoinSend"))

	tx, err := w.Send(ctx, "bc1q", "0.25")
	require.NoError(t, err)
	assert.NotEmpty(t, tx.TxID)

	bal, err := w.Balance(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "0.75000000", bal.Balance)
}

func TestDirectoryUsernameCacheAndPaging(t *testing.T) {
	h := newHarness(t)
	_, token := h.fake.AddUser("ann", "pw")
	bobID, _ := h.fake.AddUser("bob", "pw")
	for _, name := range []string{"c", "d", "e", "f"} {
		h.fake.AddUser(name, "pw")
	}
	m := h.signIn(t, token)
	dir := NewDirectory(m.Client(), quiet)
	ctx := context.Background()

	before := h.fake.Hits("/profile/by_id")
	assert.Equal(t, "bob", dir.Username(ctx, bobID))
	assert.Equal(t, "bob", dir.Username(ctx, bobID))
	assert.Equal(t, before+1, h.fake.Hits("/profile/by_id"))
	assert.Equal(t, "User 999", dir.Username(ctx, 999))

	list, err := dir.Page(ctx, ProfileList{}, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 5)
	assert.True(t, list.HasMore())
	list, err = dir.Page(ctx, list, list.NextOffset())
	require.NoError(t, err)
	assert.Len(t, list.Items, 6)
	assert.False(t, list.HasMore())

	p, err := dir.Update(ctx, model.ProfileUpdate{FullName: "Ann A", Skills: []string{"go", "sql"}})
	require.NoError(t, err)
	assert.Equal(t, "Ann A", p.FullName)
	assert.Equal(t, []string{"go", "sql"}, p.Skills)
}

func TestMergeMessagesDropsDuplicates(t *testing.T) {
	held := []model.Message{{ID: 1, Body: "a"}, {ID: 2, Body: "b"}}
	got := MergeMessages(held, []model.Message{{ID: 2, Body: "b"}, {ID: 3, Body: "c"}})
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].ID, got[1].ID, got[2].ID})

	tm := MergeTicketMessages([]model.TicketMessage{{ID: 1}}, []model.TicketMessage{{ID: 1}, {ID: 2}})
	assert.Len(t, tm, 2)
}

func TestMergeKeepsRepeatedBodiesWithoutIDs(t *testing.T) {
	tests := []struct {
		name string
		held int
	}{
		{name: "first load", held: 0},
		{name: "reload", held: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := []model.TicketMessage{{SenderID: 5, Body: "ok"}, {SenderID: 9, Body: "did that fix it?"}, {SenderID: 5, Body: "ok"}}
			tm := MergeTicketMessages(listing[:tt.held], listing)
			assert.Equal(t, listing, tm)

			chat := []model.Message{{SenderID: 5, Body: "ok"}, {SenderID: 9, Body: "hi"}, {SenderID: 5, Body: "ok"}}
			got := MergeMessages(chat[:tt.held], chat)
			assert.Equal(t, chat, got)
		})
	}
}

func TestDisputesList(t *testing.T) {
	h := newHarness(t)
	uid, token := h.fake.AddUser("ann", "pw")
	h.fake.AddDispute(uid, 7, "open")
	m := h.signIn(t, token)
	got, err := NewDisputes(m.Client()).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ann", got[0].OpenedBy)
	assert.Equal(t, int64(7), got[0].TaskID)
}
