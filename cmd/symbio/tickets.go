package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/symbio/internal/commands"
	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/update"
)

func ticketCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Support tickets",
	}

	var subject, message string
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a support ticket",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenTicketsMsg{}, update.CreateTicketMsg{Subject: subject, Message: message}); err != nil {
				return err
			}
			a.status()
			printTickets(a, a.model.TicketList)
			return nil
		}),
	}
	create.Flags().StringVarP(&subject, "subject", "s", "", "ticket subject")
	create.Flags().StringVarP(&message, "message", "m", "", "first message")
	_ = create.MarkFlagRequired("subject")
	_ = create.MarkFlagRequired("message")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your tickets",
			Args:  cobra.NoArgs,
			RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				if err := a.dispatch(ctx, update.OpenTicketsMsg{}); err != nil {
					return err
				}
				printTickets(a, a.model.TicketList)
				return nil
			}),
		},
		create,
		&cobra.Command{
			Use:   "open <ticket-id>",
			Short: "Open a ticket thread and write in it",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				id, err := parseID(args[0], "ticket id")
				if err != nil {
					return err
				}
				if err := a.dispatch(ctx, update.OpenTicketMsg{TicketID: id}); err != nil {
					return err
				}
				return a.runShell(ctx, ticketThread(a, id))
			}),
		},
		&cobra.Command{
			Use:   "close <ticket-id>",
			Short: "Close a ticket",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				id, err := parseID(args[0], "ticket id")
				if err != nil {
					return err
				}
				if err := a.dispatch(ctx, update.OpenTicketMsg{TicketID: id}, update.CloseTicketMsg{}); err != nil {
					return err
				}
				a.status()
				return nil
			}),
		},
	)
	return cmd
}

func ticketThread(a *app, ticketID int64) thread {
	return thread{
		title: fmt.Sprintf("ticket #%d", ticketID),
		lines: func(m update.Model) []threadLine {
			var out []threadLine
			for _, l := range m.Ticket.Lines() {
				out = append(out, threadLine{ID: l.ID, SenderID: l.SenderID, Body: l.Body, Kind: l.Kind})
			}
			return out
		},
		handlers: func(ctx context.Context) commands.Handlers {
			return commands.Handlers{
				Send: func(args commands.SendArgs) (commands.Result, error) {
					return a.step(ctx, update.WriteTicketMsg{Message: args.Body})
				},
				Image: func(args commands.ImageArgs) (commands.Result, error) {
					format, data, err := readImage(args.Path)
					if err != nil {
						return commands.Result{}, err
					}
					return a.step(ctx, update.WriteTicketMsg{Message: model.EncodeImageDataURL(format, data)})
				},
				Refresh: func() (commands.Result, error) {
					return a.step(ctx, update.RefreshTicketMsg{})
				},
				Exit: func() (commands.Result, error) {
					return commands.Result{Leave: true}, nil
				},
				Close: func() (commands.Result, error) {
					if _, err := a.step(ctx, update.CloseTicketMsg{}); err != nil {
						return commands.Result{}, err
					}
					return commands.Result{Message: a.model.Status.Text, Leave: true}, nil
				},
			}
		},
	}
}

func printTickets(a *app, tickets []model.Ticket) {
	if len(tickets) == 0 {
		fmt.Fprintln(a.out, "no tickets")
		return
	}
	tw := table(a.out, "ID", "STATUS", "SUBJECT")
	for _, t := range tickets {
		row(tw, t.ID, t.Status, t.Subject)
	}
	_ = tw.Flush()
}
