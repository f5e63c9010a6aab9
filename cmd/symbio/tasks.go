package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/update"
)

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, raw)
	}
	return id, nil
}

func tasksCmd(flags *globalFlags) *cobra.Command {
	var (
		filter string
		pages  int
	)
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			f, err := model.ParseTaskFilter(filter)
			if err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.SetTaskFilterMsg{Filter: f}); err != nil {
				return err
			}
			for i := 1; i < pages && a.model.Tasks.HasNext; i++ {
				if err := a.dispatch(ctx, update.NextTaskPageMsg{}); err != nil {
					return err
				}
			}
			printTasks(a.out, a.model.Tasks)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "status filter: all, open, pending, completed")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	return cmd
}

func taskCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "task <id>",
		Short: "Show a task with its offers and reviews",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(args[0], "task id")
			if err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenTaskMsg{TaskID: id}); err != nil {
				return err
			}
			printDetail(a.out, a.view, a.model.Detail)
			return nil
		}),
	}
}

func offerCmd(flags *globalFlags) *cobra.Command {
	var (
		price   float64
		message string
	)
	cmd := &cobra.Command{
		Use:   "offer <task-id>",
		Short: "Make an offer on a task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0], "task id")
			if err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenTaskMsg{TaskID: id}); err != nil {
				return err
			}
			draft := model.OfferDraft{TaskID: id, Price: price, Message: message}
			if err := a.dispatch(ctx, update.SubmitOfferMsg{Draft: draft}); err != nil {
				return err
			}
			a.status()
			return nil
		}),
	}
	cmd.Flags().Float64Var(&price, "price", 0, "offered price")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message to the client")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func acceptCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <task-id> <offer-id>",
		Short: "Accept an offer on one of your tasks",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			taskID, err := parseID(args[0], "task id")
			if err != nil {
				return err
			}
			offerID, err := parseID(args[1], "offer id")
			if err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenTaskMsg{TaskID: taskID}); err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.AcceptOfferMsg{OfferID: offerID}); err != nil {
				return err
			}
			a.status()
			fmt.Fprintf(a.out, "task #%d is now %s\n", taskID, a.model.Detail.Task.Status)
			return nil
		}),
	}
}

func reviewCmd(flags *globalFlags) *cobra.Command {
	var (
		rating  int
		comment string
	)
	cmd := &cobra.Command{
		Use:   "review <task-id>",
		Short: "Review a completed task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0], "task id")
			if err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenTaskMsg{TaskID: id}); err != nil {
				return err
			}
			draft := model.ReviewDraft{TaskID: id, Rating: rating, Comment: comment}
			if err := a.dispatch(ctx, update.SubmitReviewMsg{Draft: draft}); err != nil {
				return err
			}
			a.status()
			return nil
		}),
	}
	cmd.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "review text")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}
