package update

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/symbio/internal/scheduler"
	"github.com/sandeepkv93/symbio/internal/storage"
	"github.com/sandeepkv93/symbio/internal/workflow"
)

func (m Model) updateTickets(msg tea.Msg) (Model, tea.Cmd) {
	tickets := m.svc.Tickets
	var (
		ctx context.Context
		gen uint64
	)
	switch typed := msg.(type) {
	case OpenTicketsMsg:
		m = m.navigate(ScreenTickets)
		m, ctx, gen = m.current(ScreenTickets)
		return m, func() tea.Msg {
			list, err := tickets.List(ctx)
			return ticketsLoadedMsg{screen: ScreenTickets, gen: gen, op: "list", tickets: list, err: err}
		}
	case CreateTicketMsg:
		m, ctx, gen = m.current(ScreenTickets)
		return m, func() tea.Msg {
			list, err := tickets.Create(ctx, typed.Subject, typed.Message)
			return ticketsLoadedMsg{screen: ScreenTickets, gen: gen, op: "create", tickets: list, err: err}
		}
	case CloseTicketMsg:
		m, ctx, gen = m.current(ScreenTicket)
		id := m.Ticket.ID
		return m, func() tea.Msg {
			list, err := tickets.Close(ctx, id)
			return ticketsLoadedMsg{screen: ScreenTicket, gen: gen, op: "close", tickets: list, err: err}
		}
	case ticketsLoadedMsg:
		if !m.fresh(typed.screen, typed.gen) {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.TicketList = typed.tickets
		switch typed.op {
		case "create":
			return m.ok("ticket created"), nil
		case "close":
			return m.ok("ticket closed"), nil
		}
		return m, nil

	case OpenTicketMsg:
		m = m.navigate(ScreenTicket)
		m.Ticket = TicketState{ID: typed.TicketID}
		m, ctx, gen = m.current(ScreenTicket)
		return m, loadTicketCmd(ctx, m.svc, gen, typed.TicketID, true)
	case RefreshTicketMsg:
		if m.Ticket.ID == 0 {
			return m, nil
		}
		m, ctx, gen = m.current(ScreenTicket)
		return m, loadTicketCmd(ctx, m.svc, gen, m.Ticket.ID, false)
	case WriteTicketMsg:
		m, ctx, gen = m.current(ScreenTicket)
		id := m.Ticket.ID
		return m, func() tea.Msg {
			msgs, err := tickets.Write(ctx, id, typed.Message)
			return ticketMessagesMsg{gen: gen, ticketID: id, messages: msgs, err: err}
		}
	case ticketMessagesMsg:
		if !m.fresh(ScreenTicket, typed.gen) || typed.ticketID != m.Ticket.ID {
			return m, nil
		}
		if typed.arm {
			m.schedulePoll(scheduler.KindTicket, typed.ticketID, typed.gen)
		}
		if typed.err != nil {
			if typed.arm && m.Ticket.Messages != nil {
				m.logger().Debug("ticket poll failed", slog.Int64("ticket_id", typed.ticketID), slog.String("error", typed.err.Error()))
				return m, nil
			}
			return m.fail(typed.err), nil
		}
		t := m.Ticket
		t.Messages = workflow.MergeTicketMessages(t.Messages, typed.messages)
		t.Unread += typed.unread
		m.Ticket = t
		return m, nil
	}
	return m, nil
}

func loadTicketCmd(ctx context.Context, svc *Services, gen uint64, ticketID int64, arm bool) tea.Cmd {
	return func() tea.Msg {
		msgs, err := svc.Tickets.Messages(ctx, ticketID)
		out := ticketMessagesMsg{gen: gen, ticketID: ticketID, messages: msgs, arm: arm, err: err}
		if err == nil {
			ids := make([]int64, 0, len(msgs))
			for _, msg := range msgs {
				ids = append(ids, msg.ID)
			}
			out.unread = markRead(ctx, svc, storage.ThreadTicket, ticketID, ids)
		}
		return out
	}
}
