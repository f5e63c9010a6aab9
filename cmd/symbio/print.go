package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/session"
	"github.com/sandeepkv93/symbio/internal/views"
	"github.com/sandeepkv93/symbio/internal/workflow"
)

func table(out io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func money(v float64, currency string) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if currency != "" {
		s += " " + currency
	}
	return s
}

func printTasks(out io.Writer, list workflow.TaskList) {
	if len(list.Items) == 0 {
		fmt.Fprintln(out, "no tasks")
		return
	}
	tw := table(out, "ID", "STATUS", "BUDGET", "DEADLINE", "TITLE")
	for _, t := range list.Items {
		row(tw, t.ID, t.Status, money(t.Budget, t.Currency), t.Deadline, t.Title)
	}
	_ = tw.Flush()
	if list.HasNext {
		fmt.Fprintf(out, "page %d, more with --pages %d\n", list.Page, list.Page+1)
	}
}

func printDetail(out io.Writer, view *views.Renderer, d workflow.TaskDetail) {
	t := d.Task
	fmt.Fprintln(out, view.Header(fmt.Sprintf("#%d %s", t.ID, t.Title)))
	fmt.Fprintf(out, "status:   %s\n", t.Status)
	fmt.Fprintf(out, "budget:   %s\n", money(t.Budget, t.Currency))
	if t.Deadline != "" {
		fmt.Fprintf(out, "deadline: %s\n", t.Deadline)
	}
	if t.Description != "" {
		fmt.Fprintf(out, "\n%s\n", view.Markdown(t.Description))
	}

	fmt.Fprintf(out, "\n%s\n", view.Header(fmt.Sprintf("offers (%d)", len(d.Offers))))
	if len(d.Offers) > 0 {
		tw := table(out, "ID", "FREELANCER", "PRICE", "ACCEPTED", "MESSAGE")
		for _, o := range d.Offers {
			name := o.FreelancerName
			if name == "" {
				name = fmt.Sprintf("user %d", o.FreelancerID)
			}
			row(tw, o.ID, name, money(o.Price, o.Currency), o.Accepted, o.Message)
		}
		_ = tw.Flush()
	}

	fmt.Fprintf(out, "\n%s\n", view.Header(fmt.Sprintf("reviews (%d)", len(d.Reviews))))
	for _, r := range d.Reviews {
		name := r.ReviewerName
		if name == "" {
			name = fmt.Sprintf("user %d", r.ReviewerID)
		}
		fmt.Fprintf(out, "  %d/5 by %s: %s\n", r.Rating, name, r.Comment)
	}

	var can []string
	if d.CanMakeOffer {
		can = append(can, "offer")
	}
	if d.IsOwn && t.Status == model.TaskStatusOpen {
		can = append(can, "accept")
	}
	if d.CanReview {
		can = append(can, "review")
	}
	if len(can) > 0 {
		fmt.Fprintf(out, "\nyou can: %s\n", strings.Join(can, ", "))
	}
}

func printReviews(out io.Writer, reviews []model.Review) {
	if len(reviews) == 0 {
		fmt.Fprintln(out, "no reviews")
		return
	}
	tw := table(out, "TASK", "RATING", "REVIEWER", "COMMENT")
	for _, r := range reviews {
		row(tw, r.TaskID, r.Rating, r.ReviewerName, r.Comment)
	}
	_ = tw.Flush()
}

func printProfile(out io.Writer, view *views.Renderer, p model.Profile) {
	fmt.Fprintln(out, view.Header(fmt.Sprintf("%s (id %d)", p.DisplayName(), p.UserID)))
	if p.FullName != "" {
		fmt.Fprintf(out, "name:   %s\n", p.FullName)
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(out, "skills: %s\n", strings.Join(p.Skills, ", "))
	}
	if p.Bio != "" {
		fmt.Fprintf(out, "\n%s\n", view.Markdown(p.Bio))
	}
}

func printIdentity(out io.Writer, view *views.Renderer, id session.Identity) {
	switch {
	case id.HasProfile:
		p := id.Profile
		if p.UserID == 0 {
			p.UserID = id.UserID
		}
		printProfile(out, view, p)
	case id.UserIDKnown:
		fmt.Fprintf(out, "user %d\n", id.UserID)
	default:
		fmt.Fprintln(out, "signed in, identity unavailable")
	}
	if id.HasWallet {
		fmt.Fprintf(out, "wallet: %s %s\n", id.Wallet.Balance, id.Wallet.Currency)
	}
	for step, err := range id.StepErrors {
		fmt.Fprintln(out, view.Status(fmt.Sprintf("%s unavailable: %v", step, err), true))
	}
}
