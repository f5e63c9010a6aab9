package update

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/workflow"
)

func (m Model) updateTasks(msg tea.Msg) (Model, tea.Cmd) {
	market := m.svc.Market
	var (
		ctx context.Context
		gen uint64
	)
	switch typed := msg.(type) {
	case OpenTasksMsg:
		m = m.navigate(ScreenTasks)
		m.Tasks = m.Tasks.WithFilter(m.Tasks.Filter)
		m.pagePending = false
		m, ctx, gen = m.current(ScreenTasks)
		return m, loadTasksCmd(ctx, market, gen, m.Tasks)
	case SetTaskFilterMsg:
		if !typed.Filter.IsValid() {
			return m.fail(apperr.Validation("tasks", fmt.Sprintf("unknown filter %q", typed.Filter))), nil
		}
		m = m.navigate(ScreenTasks)
		m.Tasks = m.Tasks.WithFilter(typed.Filter)
		m.pagePending = false
		m, ctx, gen = m.current(ScreenTasks)
		return m, loadTasksCmd(ctx, market, gen, m.Tasks)
	case NextTaskPageMsg:
		if !m.Tasks.HasNext || m.pagePending {
			return m, nil
		}
		m.pagePending = true
		m, ctx, gen = m.current(ScreenTasks)
		return m, loadTasksCmd(ctx, market, gen, m.Tasks.NextPage())
	case tasksLoadedMsg:
		if !m.fresh(ScreenTasks, typed.gen) || typed.list.Filter != m.Tasks.Filter {
			return m, nil
		}
		m.pagePending = false
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Tasks = m.Tasks.Merge(typed.list.Page, typed.page)
		return m, nil

	case OpenTaskMsg:
		m = m.navigate(ScreenTask)
		m.Detail = workflow.TaskDetail{Task: model.Task{ID: typed.TaskID}}.Derive(m.svc.Session.Viewer())
		m, ctx, gen = m.current(ScreenTask)
		return m, tea.Batch(
			viewerCmd(ctx, m.svc, gen),
			loadTaskCmd(ctx, market, gen, typed.TaskID),
			loadOffersCmd(ctx, market, gen, typed.TaskID),
			loadReviewsCmd(ctx, market, gen, typed.TaskID),
		)
	case viewerMsg:
		if m.fresh(ScreenTask, typed.gen) {
			m.Detail = m.Detail.Derive(typed.viewer)
		}
		return m, nil
	case taskLoadedMsg:
		if !m.fresh(ScreenTask, typed.gen) || typed.id != m.Detail.Task.ID {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Detail = m.Detail.WithTask(typed.task)
		return m, nil
	case offersLoadedMsg:
		if !m.fresh(ScreenTask, typed.gen) || typed.id != m.Detail.Task.ID {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Detail = m.Detail.WithOffers(typed.offers)
		return m, nil
	case reviewsLoadedMsg:
		if !m.fresh(ScreenTask, typed.gen) || typed.id != m.Detail.Task.ID {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Detail = m.Detail.WithReviews(typed.reviews)
		return m, nil

	case SubmitOfferMsg:
		m, ctx, gen = m.current(ScreenTask)
		detail := m.Detail
		return m, func() tea.Msg {
			out, err := market.CreateOffer(ctx, detail, typed.Draft)
			return detailResultMsg{gen: gen, op: "offer", detail: out, err: err}
		}
	case AcceptOfferMsg:
		m, ctx, gen = m.current(ScreenTask)
		detail := m.Detail
		return m, func() tea.Msg {
			out, err := market.AcceptOffer(ctx, detail, typed.OfferID)
			return detailResultMsg{gen: gen, op: "accept", detail: out, err: err}
		}
	case SubmitReviewMsg:
		m, ctx, gen = m.current(ScreenTask)
		detail := m.Detail
		return m, func() tea.Msg {
			out, err := market.SubmitReview(ctx, detail, typed.Draft)
			return detailResultMsg{gen: gen, op: "review", detail: out, err: err}
		}
	case detailResultMsg:
		if !m.fresh(ScreenTask, typed.gen) || typed.detail.Task.ID != m.Detail.Task.ID {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Detail = typed.detail
		switch typed.op {
		case "offer":
			return m.ok("offer sent"), nil
		case "review":
			return m.ok("review submitted"), nil
		case "accept":
			// The task status moves with the accept; reload it only now that
			// the accept has landed.
			m, ctx, gen = m.current(ScreenTask)
			return m.ok("offer accepted"), loadTaskCmd(ctx, market, gen, m.Detail.Task.ID)
		}
		return m, nil
	}
	return m, nil
}

func loadTasksCmd(ctx context.Context, market *workflow.Market, gen uint64, list workflow.TaskList) tea.Cmd {
	return func() tea.Msg {
		page, err := market.FetchPage(ctx, list)
		return tasksLoadedMsg{gen: gen, list: list, page: page, err: err}
	}
}

func loadTaskCmd(ctx context.Context, market *workflow.Market, gen uint64, id int64) tea.Cmd {
	return func() tea.Msg {
		t, err := market.Task(ctx, id)
		return taskLoadedMsg{gen: gen, id: id, task: t, err: err}
	}
}

func loadOffersCmd(ctx context.Context, market *workflow.Market, gen uint64, id int64) tea.Cmd {
	return func() tea.Msg {
		offers, err := market.Offers(ctx, id)
		return offersLoadedMsg{gen: gen, id: id, offers: offers, err: err}
	}
}

func loadReviewsCmd(ctx context.Context, market *workflow.Market, gen uint64, id int64) tea.Cmd {
	return func() tea.Msg {
		reviews, err := market.Reviews(ctx, id)
		return reviewsLoadedMsg{gen: gen, id: id, reviews: reviews, err: err}
	}
}

// viewerCmd resolves the own id when the bootstrap has not. Failure leaves
// the viewer unknown, which withholds every ownership-based action.
func viewerCmd(ctx context.Context, svc *Services, gen uint64) tea.Cmd {
	sess := svc.Session
	return func() tea.Msg {
		if v := sess.Viewer(); v.Known {
			return viewerMsg{gen: gen, viewer: v}
		}
		id, err := sess.ResolveUserID(ctx)
		if err != nil {
			svc.Logger.Debug("viewer unresolved", slog.String("error", err.Error()))
			return viewerMsg{gen: gen}
		}
		return viewerMsg{gen: gen, viewer: model.KnownViewer(id)}
	}
}
