package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/model"
)

type TicketBackend interface {
	Tickets(ctx context.Context) ([]model.Ticket, error)
	CreateTicket(ctx context.Context, subject, message string) error
	TicketMessages(ctx context.Context, ticketID int64) ([]model.TicketMessage, error)
	WriteTicket(ctx context.Context, ticketID int64, message string) error
	CloseTicket(ctx context.Context, ticketID int64) error
}

// TicketLine is a ticket message tagged with the ticket classification.
type TicketLine struct {
	model.TicketMessage
	Kind model.BodyKind
}

func ClassifyTicket(msgs []model.TicketMessage) []TicketLine {
	out := make([]TicketLine, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, TicketLine{TicketMessage: m, Kind: model.ClassifyTicketBody(m.Body)})
	}
	return out
}

// Tickets is create, list, append and close. A closed ticket is not blocked
// locally; the server decides whether it still takes messages.
type Tickets struct {
	backend TicketBackend
	logger  *slog.Logger
}

func NewTickets(backend TicketBackend, logger *slog.Logger) *Tickets {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tickets{backend: backend, logger: logger}
}

func (t *Tickets) List(ctx context.Context) ([]model.Ticket, error) {
	return t.backend.Tickets(ctx)
}

func (t *Tickets) Create(ctx context.Context, subject, message string) ([]model.Ticket, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, apperr.Validation("/api/ticket/createTicket", "subject is required")
	}
	if err := t.backend.CreateTicket(ctx, subject, message); err != nil {
		return nil, err
	}
	t.logger.Info("ticket created", slog.String("subject", subject))
	return t.backend.Tickets(ctx)
}

func (t *Tickets) Messages(ctx context.Context, ticketID int64) ([]model.TicketMessage, error) {
	return t.backend.TicketMessages(ctx, ticketID)
}

func (t *Tickets) Write(ctx context.Context, ticketID int64, message string) ([]model.TicketMessage, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperr.Validation("/api/ticket/write", "message is empty")
	}
	if err := t.backend.WriteTicket(ctx, ticketID, message); err != nil {
		return nil, err
	}
	return t.backend.TicketMessages(ctx, ticketID)
}

func (t *Tickets) Close(ctx context.Context, ticketID int64) ([]model.Ticket, error) {
	if err := t.backend.CloseTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	t.logger.Info("ticket closed", slog.Int64("ticket_id", ticketID))
	return t.backend.Tickets(ctx)
}

// MergeTicketMessages follows MergeMessages: ids dedupe, an id-less listing
// replaces.
func MergeTicketMessages(held, incoming []model.TicketMessage) []model.TicketMessage {
	for _, m := range incoming {
		if m.ID == 0 {
			return append([]model.TicketMessage(nil), incoming...)
		}
	}
	seen := make(map[int64]bool, len(held)+len(incoming))
	out := make([]model.TicketMessage, 0, len(held)+len(incoming))
	for _, m := range held {
		seen[m.ID] = true
		out = append(out, m)
	}
	for _, m := range incoming {
		if !seen[m.ID] {
			seen[m.ID] = true
			out = append(out, m)
		}
	}
	return out
}
