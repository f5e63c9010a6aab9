package update

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/symbio/internal/scheduler"
	"github.com/sandeepkv93/symbio/internal/storage"
	"github.com/sandeepkv93/symbio/internal/workflow"
)

func (m Model) updateChat(msg tea.Msg) (Model, tea.Cmd) {
	chat := m.svc.Chat
	var (
		ctx context.Context
		gen uint64
	)
	switch typed := msg.(type) {
	case OpenChatsMsg:
		m = m.navigate(ScreenChats)
		m, ctx, gen = m.current(ScreenChats)
		return m, func() tea.Msg {
			st, err := chat.List(ctx)
			return chatsLoadedMsg{gen: gen, op: "list", state: st, err: err}
		}
	case RequestChatMsg:
		m, ctx, gen = m.current(ScreenChats)
		st := m.Chats
		return m, func() tea.Msg {
			st, err := listedChats(ctx, chat, st)
			if err == nil {
				st, err = chat.Request(ctx, st, typed.UserID)
			}
			return chatsLoadedMsg{gen: gen, op: "request", state: st, err: err}
		}
	case AcceptChatMsg:
		m, ctx, gen = m.current(ScreenChats)
		st := m.Chats
		return m, func() tea.Msg {
			st, err := listedChats(ctx, chat, st)
			if err == nil {
				st, err = chat.Accept(ctx, st, typed.RequesterID)
			}
			return chatsLoadedMsg{gen: gen, op: "accept", state: st, err: err}
		}
	case CancelChatMsg:
		m, ctx, gen = m.current(ScreenChats)
		st := m.Chats
		return m, func() tea.Msg {
			st, err := listedChats(ctx, chat, st)
			if err == nil {
				st, err = chat.Cancel(ctx, st, typed.CounterpartID)
			}
			return chatsLoadedMsg{gen: gen, op: "cancel", state: st, err: err}
		}
	case chatsLoadedMsg:
		if !m.fresh(ScreenChats, typed.gen) {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Chats = typed.state
		switch typed.op {
		case "request":
			return m.ok("chat request sent"), nil
		case "accept":
			return m.ok("chat request accepted"), nil
		case "cancel":
			return m.ok("chat request cancelled"), nil
		}
		return m, nil

	case OpenRoomMsg:
		m = m.navigate(ScreenRoom)
		m.Room = RoomState{ID: typed.RoomID}
		m, ctx, gen = m.current(ScreenRoom)
		return m, loadRoomCmd(ctx, m.svc, gen, typed.RoomID, true)
	case RefreshRoomMsg:
		if m.Room.ID == 0 {
			return m, nil
		}
		m, ctx, gen = m.current(ScreenRoom)
		return m, loadRoomCmd(ctx, m.svc, gen, m.Room.ID, false)
	case SendChatMsg:
		m, ctx, gen = m.current(ScreenRoom)
		roomID := m.Room.ID
		return m, func() tea.Msg {
			msgs, err := chat.Send(ctx, roomID, typed.Body)
			return roomMessagesMsg{gen: gen, roomID: roomID, messages: msgs, err: err}
		}
	case SendImageMsg:
		m, ctx, gen = m.current(ScreenRoom)
		roomID := m.Room.ID
		return m, func() tea.Msg {
			msgs, err := chat.SendImage(ctx, roomID, typed.Format, typed.Data)
			return roomMessagesMsg{gen: gen, roomID: roomID, messages: msgs, err: err}
		}
	case roomMessagesMsg:
		if !m.fresh(ScreenRoom, typed.gen) || typed.roomID != m.Room.ID {
			return m, nil
		}
		if typed.arm {
			m.schedulePoll(scheduler.KindChat, typed.roomID, typed.gen)
		}
		if typed.err != nil {
			if typed.arm && m.Room.Messages != nil {
				m.logger().Debug("room poll failed", slog.Int64("room_id", typed.roomID), slog.String("error", typed.err.Error()))
				return m, nil
			}
			return m.fail(typed.err), nil
		}
		room := m.Room
		room.Messages = workflow.MergeMessages(room.Messages, typed.messages)
		room.Unread += typed.unread
		m.Room = room
		return m, nil
	case ExitRoomMsg:
		m, ctx, gen = m.current(ScreenRoom)
		roomID, st := m.Room.ID, m.Chats
		return m, func() tea.Msg {
			st, err := listedChats(ctx, chat, st)
			if err == nil {
				st, err = chat.Exit(ctx, st, roomID)
			}
			return roomExitedMsg{gen: gen, state: st, err: err}
		}
	case roomExitedMsg:
		if !m.fresh(ScreenRoom, typed.gen) {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m = m.navigate(ScreenChats)
		m.Chats = typed.state
		m.Room = RoomState{}
		return m.ok("left the chat"), nil
	}
	return m, nil
}

// listedChats lists once when st has not been loaded yet.
func listedChats(ctx context.Context, chat *workflow.Chat, st workflow.ChatState) (workflow.ChatState, error) {
	if st.Self != 0 {
		return st, nil
	}
	return chat.List(ctx)
}

func loadRoomCmd(ctx context.Context, svc *Services, gen uint64, roomID int64, arm bool) tea.Cmd {
	return func() tea.Msg {
		msgs, err := svc.Chat.Messages(ctx, roomID)
		out := roomMessagesMsg{gen: gen, roomID: roomID, messages: msgs, arm: arm, err: err}
		if err == nil {
			ids := make([]int64, 0, len(msgs))
			for _, msg := range msgs {
				ids = append(ids, msg.ID)
			}
			out.unread = markRead(ctx, svc, storage.ThreadChat, roomID, ids)
		}
		return out
	}
}

// markRead counts ids past the stored mark and advances the mark to the
// newest of them.
func markRead(ctx context.Context, svc *Services, kind string, threadID int64, ids []int64) int {
	if svc.Marks == nil || len(ids) == 0 {
		return 0
	}
	var last int64
	mark, err := svc.Marks.GetReadMark(ctx, kind, threadID)
	switch {
	case err == nil:
		last = mark.LastMessageID
	case !errors.Is(err, storage.ErrNotFound):
		svc.Logger.Debug("read mark unavailable", slog.String("kind", kind), slog.String("error", err.Error()))
		return 0
	}
	unread := 0
	newest := last
	for _, id := range ids {
		if id > last {
			unread++
		}
		if id > newest {
			newest = id
		}
	}
	if newest > last {
		err := svc.Marks.PutReadMark(ctx, storage.ReadMark{Kind: kind, ThreadID: threadID, LastMessageID: newest})
		if err != nil {
			svc.Logger.Debug("read mark not saved", slog.String("kind", kind), slog.String("error", err.Error()))
		}
	}
	return unread
}
