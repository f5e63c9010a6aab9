package api

import (
	"context"

	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/transport"
)

const chatPrefix = "/api/chat/"

func (c *Client) ChatRequests(ctx context.Context) ([]model.ChatRequest, error) {
	const path = chatPrefix + "getChatRequests"
	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := listOf(path, resp.Body, "requests")
	if err != nil {
		c.degrade(path, err)
		return nil, nil
	}
	out := make([]model.ChatRequest, 0, len(items))
	for _, item := range items {
		r := model.ChatRequest{}
		r.RequesterID, _ = intField(item, "requester_id")
		r.RequestedID, _ = intField(item, "requested_id")
		if r.RequesterID == 0 && r.RequestedID == 0 {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Client) CreateChatRequest(ctx context.Context, requestedID int64) error {
	_, err := c.post(ctx, chatPrefix+"createChatRequest", idQuery("requested_id", requestedID), transport.Fields{})
	return err
}

func (c *Client) AcceptChatRequest(ctx context.Context, requesterID int64) error {
	_, err := c.get(ctx, chatPrefix+"acceptChatRequest", idQuery("requester_id", requesterID))
	return err
}

// CancelChatRequest withdraws or declines the pending request shared with
// counterpartID, whichever side made it.
func (c *Client) CancelChatRequest(ctx context.Context, counterpartID int64) error {
	_, err := c.get(ctx, chatPrefix+"cancelChatRequest", idQuery("requester_id", counterpartID))
	return err
}

func (c *Client) ChatRooms(ctx context.Context) ([]model.ChatRoom, error) {
	const path = chatPrefix + "getChatRoomsForUser"
	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := listOf(path, resp.Body, "rooms")
	if err != nil {
		c.degrade(path, err)
		return nil, nil
	}
	out := make([]model.ChatRoom, 0, len(items))
	for _, item := range items {
		id, ok := intField(item, "id", "chat_room_id")
		if !ok {
			continue
		}
		r := model.ChatRoom{ID: id}
		r.Name, _ = stringField(item, "name")
		r.MemberIDs = intsField(item, "member_ids", "members")
		out = append(out, r)
	}
	return out, nil
}

func (c *Client) ChatMessages(ctx context.Context, roomID int64) ([]model.Message, error) {
	const path = chatPrefix + "getChatMessages"
	resp, err := c.get(ctx, path, idQuery("chat_room_id", roomID))
	if err != nil {
		return nil, err
	}
	items, err := listOf(path, resp.Body, "messages")
	if err != nil {
		c.degrade(path, err)
		return nil, nil
	}
	out := make([]model.Message, 0, len(items))
	for _, item := range items {
		m := model.Message{RoomID: roomID}
		m.ID, _ = intField(item, "id")
		m.SenderID, _ = intField(item, "sender_id")
		m.Body, _ = stringField(item, "message", "body")
		m.SentAt = timeField(item, "sent_at", "created_at")
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) SendChatMessage(ctx context.Context, roomID int64, body string) error {
	_, err := c.post(ctx, chatPrefix+"sendMessage", idQuery("chat_room_id", roomID), transport.Fields{"message": body})
	return err
}

func (c *Client) ExitChat(ctx context.Context, roomID int64) error {
	_, err := c.post(ctx, chatPrefix+"exitFromChat", idQuery("chat_room_id", roomID), transport.Fields{})
	return err
}
