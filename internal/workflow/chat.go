package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/model"
)

type ChatBackend interface {
	ChatRequests(ctx context.Context) ([]model.ChatRequest, error)
	ChatRooms(ctx context.Context) ([]model.ChatRoom, error)
	CreateChatRequest(ctx context.Context, requestedID int64) error
	AcceptChatRequest(ctx context.Context, requesterID int64) error
	CancelChatRequest(ctx context.Context, counterpartID int64) error
	ChatMessages(ctx context.Context, roomID int64) ([]model.Message, error)
	SendChatMessage(ctx context.Context, roomID int64, body string) error
	ExitChat(ctx context.Context, roomID int64) error
}

// ChatState is the pair of server listings. It is the only record of chat
// relations; nothing is tracked beside it.
type ChatState struct {
	Self     int64
	Requests []model.ChatRequest
	Rooms    []model.ChatRoom
}

func (s ChatState) Relation(other int64) model.Relation {
	return model.DeriveRelation(s.Self, other, s.Requests, s.Rooms)
}

// Incoming lists requests the viewer may accept.
func (s ChatState) Incoming() []model.ChatRequest {
	out := make([]model.ChatRequest, 0)
	for _, r := range s.Requests {
		if r.Incoming(s.Self) {
			out = append(out, r)
		}
	}
	return out
}

func (s ChatState) Outgoing() []model.ChatRequest {
	out := make([]model.ChatRequest, 0)
	for _, r := range s.Requests {
		if r.RequesterID == s.Self {
			out = append(out, r)
		}
	}
	return out
}

func (s ChatState) Room(id int64) (model.ChatRoom, bool) {
	for _, r := range s.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return model.ChatRoom{}, false
}

// ChatLine is a message tagged with the chat classification.
type ChatLine struct {
	model.Message
	Kind model.BodyKind
}

func ClassifyChat(msgs []model.Message) []ChatLine {
	out := make([]ChatLine, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ChatLine{Message: m, Kind: model.ClassifyChatBody(m.Body)})
	}
	return out
}

type Chat struct {
	backend ChatBackend
	ident   Identity
	logger  *slog.Logger
}

func NewChat(backend ChatBackend, ident Identity, logger *slog.Logger) *Chat {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chat{backend: backend, ident: ident, logger: logger}
}

func (c *Chat) List(ctx context.Context) (ChatState, error) {
	v, err := resolveViewer(ctx, c.ident)
	if err != nil {
		return ChatState{}, err
	}
	requests, err := c.backend.ChatRequests(ctx)
	if err != nil {
		return ChatState{}, err
	}
	rooms, err := c.backend.ChatRooms(ctx)
	if err != nil {
		return ChatState{}, err
	}
	return ChatState{Self: v.UserID, Requests: requests, Rooms: rooms}, nil
}

func (c *Chat) Request(ctx context.Context, st ChatState, other int64) (ChatState, error) {
	const op = "/api/chat/createChatRequest"
	if !model.CanRequestChat(st.Relation(other), st.Self, other) {
		return st, apperr.Permission(op, "a chat with this user is already pending or open")
	}
	if err := c.backend.CreateChatRequest(ctx, other); err != nil {
		return st, err
	}
	c.logger.Info("chat requested", slog.Int64("user_id", other))
	return c.List(ctx)
}

// Accept consumes the request requesterID sent to the viewer.
func (c *Chat) Accept(ctx context.Context, st ChatState, requesterID int64) (ChatState, error) {
	const op = "/api/chat/acceptChatRequest"
	if !model.CanAcceptChat(st.Relation(requesterID), st.Self) {
		return st, apperr.Permission(op, "no incoming request from this user")
	}
	if err := c.backend.AcceptChatRequest(ctx, requesterID); err != nil {
		return st, err
	}
	c.logger.Info("chat request accepted", slog.Int64("requester_id", requesterID))
	return c.List(ctx)
}

// Cancel withdraws or declines the request shared with counterpartID.
func (c *Chat) Cancel(ctx context.Context, st ChatState, counterpartID int64) (ChatState, error) {
	const op = "/api/chat/cancelChatRequest"
	if !model.CanCancelChat(st.Relation(counterpartID), st.Self) {
		return st, apperr.Permission(op, "no pending request with this user")
	}
	if err := c.backend.CancelChatRequest(ctx, counterpartID); err != nil {
		return st, err
	}
	c.logger.Info("chat request cancelled", slog.Int64("user_id", counterpartID))
	return c.List(ctx)
}

// Exit leaves a room. A listed room without member ids is taken to include
// the viewer, since the listing only returns the viewer's rooms.
func (c *Chat) Exit(ctx context.Context, st ChatState, roomID int64) (ChatState, error) {
	const op = "/api/chat/exitFromChat"
	room, ok := st.Room(roomID)
	if !ok {
		return st, apperr.Permission(op, "you are not in this chat")
	}
	if len(room.MemberIDs) > 0 && !model.CanExitChat(model.Accepted{Room: room}, st.Self) {
		return st, apperr.Permission(op, "you are not in this chat")
	}
	if err := c.backend.ExitChat(ctx, roomID); err != nil {
		return st, err
	}
	c.logger.Info("chat exited", slog.Int64("room_id", roomID))
	return c.List(ctx)
}

func (c *Chat) Messages(ctx context.Context, roomID int64) ([]model.Message, error) {
	return c.backend.ChatMessages(ctx, roomID)
}

// Send posts body and returns the room's refreshed messages.
func (c *Chat) Send(ctx context.Context, roomID int64, body string) ([]model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperr.Validation("/api/chat/sendMessage", "message is empty")
	}
	if err := c.backend.SendChatMessage(ctx, roomID, body); err != nil {
		return nil, err
	}
	return c.backend.ChatMessages(ctx, roomID)
}

func (c *Chat) SendImage(ctx context.Context, roomID int64, format string, data []byte) ([]model.Message, error) {
	if len(data) == 0 {
		return nil, apperr.Validation("/api/chat/sendMessage", "image is empty")
	}
	return c.Send(ctx, roomID, model.EncodeImageDataURL(format, data))
}

// MergeMessages appends incoming messages whose id is not already held. A
// listing that carries messages without ids replaces the held list, since
// repeated bodies cannot be told apart.
func MergeMessages(held, incoming []model.Message) []model.Message {
	for _, m := range incoming {
		if m.ID == 0 {
			return append([]model.Message(nil), incoming...)
		}
	}
	seen := make(map[int64]bool, len(held)+len(incoming))
	out := make([]model.Message, 0, len(held)+len(incoming))
	for _, m := range held {
		seen[m.ID] = true
		out = append(out, m)
	}
	for _, m := range incoming {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}
