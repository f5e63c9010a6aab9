package api

import (
	"context"

	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/transport"
)

const ticketPrefix = "/api/ticket/"

func (c *Client) Tickets(ctx context.Context) ([]model.Ticket, error) {
	const path = ticketPrefix + "my"
	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := listOf(path, resp.Body, "tickets")
	if err != nil {
		c.degrade(path, err)
		return nil, nil
	}
	out := make([]model.Ticket, 0, len(items))
	for _, item := range items {
		id, ok := intField(item, "id", "ID")
		if !ok {
			continue
		}
		t := model.Ticket{ID: id}
		t.Subject, _ = stringField(item, "subject", "Subject")
		status, _ := stringField(item, "status", "Status")
		t.Status = model.TicketStatus(status)
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) CreateTicket(ctx context.Context, subject, message string) error {
	_, err := c.post(ctx, ticketPrefix+"createTicket", nil, transport.Fields{
		"subject": subject,
		"message": message,
	})
	return err
}

// TicketMessages accepts the capitalised keys the ticket service emits as
// well as snake case.
func (c *Client) TicketMessages(ctx context.Context, ticketID int64) ([]model.TicketMessage, error) {
	const path = ticketPrefix + "messages"
	resp, err := c.get(ctx, path, idQuery("ticket_id", ticketID))
	if err != nil {
		return nil, err
	}
	items, err := listOf(path, resp.Body, "messages")
	if err != nil {
		c.degrade(path, err)
		return nil, nil
	}
	out := make([]model.TicketMessage, 0, len(items))
	for _, item := range items {
		m := model.TicketMessage{TicketID: ticketID}
		m.ID, _ = intField(item, "ID", "id")
		m.SenderID, _ = intField(item, "SenderID", "sender_id")
		m.Body, _ = stringField(item, "Message", "message")
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) WriteTicket(ctx context.Context, ticketID int64, message string) error {
	_, err := c.post(ctx, ticketPrefix+"write", nil, transport.Fields{
		"ticket_id": ticketID,
		"message":   message,
	})
	return err
}

func (c *Client) CloseTicket(ctx context.Context, ticketID int64) error {
	_, err := c.post(ctx, ticketPrefix+"close", nil, transport.Fields{"ticket_id": ticketID})
	return err
}

func (c *Client) Disputes(ctx context.Context) ([]model.Dispute, error) {
	const path = "/api/disputes/my"
	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := listOf(path, resp.Body, "disputes")
	if err != nil {
		c.degrade(path, err)
		return nil, nil
	}
	out := make([]model.Dispute, 0, len(items))
	for _, item := range items {
		d := model.Dispute{}
		d.ID, _ = intField(item, "id")
		d.TaskID, _ = intField(item, "task_id")
		d.Status, _ = stringField(item, "status")
		d.OpenedBy, _ = stringField(item, "opened_by_username", "opened_by")
		out = append(out, d)
	}
	return out, nil
}
