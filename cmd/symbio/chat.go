package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/symbio/internal/commands"
	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/update"
	"github.com/sandeepkv93/symbio/internal/workflow"
)

func chatCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat requests and rooms",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List chat requests and rooms",
			Args:  cobra.NoArgs,
			RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				if err := a.dispatch(ctx, update.OpenChatsMsg{}); err != nil {
					return err
				}
				printChats(ctx, a, a.model.Chats)
				return nil
			}),
		},
		chatActionCmd(flags, "request <user-id>", "Ask a user to chat", func(id int64) tea.Msg {
			return update.RequestChatMsg{UserID: id}
		}),
		chatActionCmd(flags, "accept <requester-id>", "Accept an incoming chat request", func(id int64) tea.Msg {
			return update.AcceptChatMsg{RequesterID: id}
		}),
		chatActionCmd(flags, "cancel <user-id>", "Withdraw or decline a chat request", func(id int64) tea.Msg {
			return update.CancelChatMsg{CounterpartID: id}
		}),
		&cobra.Command{
			Use:   "open <room-id>",
			Short: "Open a chat room and talk in it",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				id, err := parseID(args[0], "room id")
				if err != nil {
					return err
				}
				if err := a.dispatch(ctx, update.OpenRoomMsg{RoomID: id}); err != nil {
					return err
				}
				return a.runShell(ctx, roomThread(a, id))
			}),
		},
		&cobra.Command{
			Use:   "exit <room-id>",
			Short: "Leave a chat room",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				id, err := parseID(args[0], "room id")
				if err != nil {
					return err
				}
				if err := a.dispatch(ctx, update.OpenRoomMsg{RoomID: id}); err != nil {
					return err
				}
				if err := a.dispatch(ctx, update.ExitRoomMsg{}); err != nil {
					return err
				}
				a.status()
				return nil
			}),
		},
	)
	return cmd
}

func chatActionCmd(flags *globalFlags, use, short string, build func(int64) tea.Msg) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenChatsMsg{}, build(id)); err != nil {
				return err
			}
			a.status()
			return nil
		}),
	}
}

func roomThread(a *app, roomID int64) thread {
	return thread{
		title: fmt.Sprintf("room #%d", roomID),
		lines: func(m update.Model) []threadLine {
			var out []threadLine
			for _, l := range m.Room.Lines() {
				out = append(out, threadLine{ID: l.ID, SenderID: l.SenderID, Body: l.Body, Kind: l.Kind})
			}
			return out
		},
		handlers: func(ctx context.Context) commands.Handlers {
			return commands.Handlers{
				Send: func(args commands.SendArgs) (commands.Result, error) {
					return a.step(ctx, update.SendChatMsg{Body: args.Body})
				},
				Image: func(args commands.ImageArgs) (commands.Result, error) {
					format, data, err := readImage(args.Path)
					if err != nil {
						return commands.Result{}, err
					}
					return a.step(ctx, update.SendImageMsg{Format: format, Data: data})
				},
				Refresh: func() (commands.Result, error) {
					return a.step(ctx, update.RefreshRoomMsg{})
				},
				Exit: func() (commands.Result, error) {
					if _, err := a.step(ctx, update.ExitRoomMsg{}); err != nil {
						return commands.Result{}, err
					}
					return commands.Result{Message: a.model.Status.Text, Leave: true}, nil
				},
			}
		},
	}
}

func printChats(ctx context.Context, a *app, st workflow.ChatState) {
	out := a.out
	printRequests(ctx, a, out, "incoming requests", st.Incoming(), true)
	printRequests(ctx, a, out, "outgoing requests", st.Outgoing(), false)
	fmt.Fprintf(out, "rooms (%d)\n", len(st.Rooms))
	if len(st.Rooms) == 0 {
		return
	}
	tw := table(out, "ID", "NAME", "MEMBERS")
	for _, r := range st.Rooms {
		row(tw, r.ID, r.Name, len(r.MemberIDs))
	}
	_ = tw.Flush()
}

func printRequests(ctx context.Context, a *app, out io.Writer, title string, reqs []model.ChatRequest, incoming bool) {
	fmt.Fprintf(out, "%s (%d)\n", title, len(reqs))
	for _, r := range reqs {
		other := r.RequestedID
		if incoming {
			other = r.RequesterID
		}
		fmt.Fprintf(out, "  %s (id %d)\n", a.username(ctx, other), other)
	}
}
