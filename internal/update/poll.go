package update

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/symbio/internal/scheduler"
)

// schedulePoll arms the next reload of an open thread. The event carries the
// visit generation so a poll that outlives its visit is ignored.
func (m Model) schedulePoll(kind scheduler.Kind, threadID int64, gen uint64) {
	engine := m.svc.Scheduler
	if engine == nil || m.svc.PollInterval <= 0 {
		return
	}
	ev := scheduler.PollEvent{Kind: kind, ThreadID: threadID, Generation: gen}
	if err := engine.After(m.svc.PollInterval, ev); err != nil {
		m.logger().Debug("poll not scheduled", slog.String("kind", string(kind)), slog.Int64("thread_id", threadID), slog.String("error", err.Error()))
	}
}

func (m Model) stopPolling(s Screen) {
	engine := m.svc.Scheduler
	if engine == nil {
		return
	}
	switch s {
	case ScreenRoom:
		if m.Room.ID != 0 {
			engine.Cancel(scheduler.KindChat, m.Room.ID)
		}
	case ScreenTicket:
		if m.Ticket.ID != 0 {
			engine.Cancel(scheduler.KindTicket, m.Ticket.ID)
		}
	}
}

func (m Model) onPollDue(ev scheduler.PollEvent) (Model, tea.Cmd) {
	switch ev.Kind {
	case scheduler.KindChat:
		if m.Screen != ScreenRoom || ev.ThreadID != m.Room.ID || !m.fresh(ScreenRoom, ev.Generation) {
			return m, nil
		}
		ctx := m.visits[ScreenRoom].ctx
		return m, loadRoomCmd(ctx, m.svc, ev.Generation, ev.ThreadID, true)
	case scheduler.KindTicket:
		if m.Screen != ScreenTicket || ev.ThreadID != m.Ticket.ID || !m.fresh(ScreenTicket, ev.Generation) {
			return m, nil
		}
		ctx := m.visits[ScreenTicket].ctx
		return m, loadTicketCmd(ctx, m.svc, ev.Generation, ev.ThreadID, true)
	}
	return m, nil
}
