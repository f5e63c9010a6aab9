package workflow

import (
	"context"
	"log/slog"

	"github.com/sandeepkv93/symbio/internal/model"
)

// PageSize is the task listing limit.
const PageSize = 20

type MarketBackend interface {
	Tasks(ctx context.Context, filter model.TaskFilter, limit, offset int) ([]model.Task, error)
	Task(ctx context.Context, id int64) (model.Task, error)
	Offers(ctx context.Context, taskID int64) ([]model.Offer, error)
	CreateOffer(ctx context.Context, d model.OfferDraft) error
	AcceptOffer(ctx context.Context, offerID int64) error
	TaskReviews(ctx context.Context, taskID int64) ([]model.Review, error)
	CreateReview(ctx context.Context, d model.ReviewDraft) error
}

// TaskList is the paged task listing. HasNext is a heuristic: a full page
// means there may be more, so an exactly full last page reports a phantom
// next page.
type TaskList struct {
	Filter  model.TaskFilter
	Page    int
	Items   []model.Task
	HasNext bool
}

func NewTaskList() TaskList {
	return TaskList{Filter: model.FilterAll, Page: 1}
}

// WithFilter switches the filter, dropping accumulated pages.
func (l TaskList) WithFilter(f model.TaskFilter) TaskList {
	return TaskList{Filter: f, Page: 1}
}

func (l TaskList) NextPage() TaskList {
	l.Page++
	return l
}

func (l TaskList) Offset() int {
	if l.Page < 1 {
		return 0
	}
	return (l.Page - 1) * PageSize
}

// Merge folds a fetched page in. Page 1 replaces; later pages append and skip
// ids already held.
func (l TaskList) Merge(page int, fetched []model.Task) TaskList {
	out := TaskList{Filter: l.Filter, Page: page, HasNext: len(fetched) >= PageSize}
	if page <= 1 {
		out.Page = 1
		out.Items = append([]model.Task(nil), fetched...)
		return out
	}
	seen := make(map[int64]bool, len(l.Items)+len(fetched))
	out.Items = make([]model.Task, 0, len(l.Items)+len(fetched))
	for _, t := range l.Items {
		seen[t.ID] = true
		out.Items = append(out.Items, t)
	}
	for _, t := range fetched {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out.Items = append(out.Items, t)
	}
	return out
}

type Market struct {
	backend MarketBackend
	ident   Identity
	logger  *slog.Logger
}

func NewMarket(backend MarketBackend, ident Identity, logger *slog.Logger) *Market {
	if logger == nil {
		logger = slog.Default()
	}
	return &Market{backend: backend, ident: ident, logger: logger}
}

// FetchPage loads the page list points at without merging it.
func (m *Market) FetchPage(ctx context.Context, list TaskList) ([]model.Task, error) {
	return m.backend.Tasks(ctx, list.Filter, PageSize, list.Offset())
}

// LoadTasks fetches list's current page and merges it.
func (m *Market) LoadTasks(ctx context.Context, list TaskList) (TaskList, error) {
	if list.Page < 1 {
		list.Page = 1
	}
	fetched, err := m.FetchPage(ctx, list)
	if err != nil {
		return list, err
	}
	return list.Merge(list.Page, fetched), nil
}

func (m *Market) Task(ctx context.Context, id int64) (model.Task, error) {
	return m.backend.Task(ctx, id)
}

// TaskDetail is one task with its offers and reviews and the flags derived
// from them for a viewer.
type TaskDetail struct {
	Task    model.Task
	Offers  []model.Offer
	Reviews []model.Review
	Viewer  model.Viewer

	IsOwn        bool
	HasUserOffer bool
	CanMakeOffer bool
	CanReview    bool
}

// Derive recomputes every flag; it must follow each task or offer refresh.
func (d TaskDetail) Derive(v model.Viewer) TaskDetail {
	d.Viewer = v
	d.IsOwn = model.IsOwnTask(d.Task, v)
	d.HasUserOffer = model.HasUserOffer(d.Offers, v)
	d.CanMakeOffer = model.CanMakeOffer(d.Task, d.Offers, v)
	d.CanReview = model.CanReview(d.Task, d.Offers, v)
	return d
}

func (d TaskDetail) WithTask(t model.Task) TaskDetail {
	d.Task = t
	return d.Derive(d.Viewer)
}

func (d TaskDetail) WithOffers(offers []model.Offer) TaskDetail {
	d.Offers = offers
	return d.Derive(d.Viewer)
}

func (d TaskDetail) WithReviews(reviews []model.Review) TaskDetail {
	d.Reviews = reviews
	return d
}

func (d TaskDetail) CanAccept(offer model.Offer) bool {
	return model.CanAcceptOffer(d.Task, offer, d.Viewer)
}

func (d TaskDetail) Offer(id int64) (model.Offer, bool) {
	for _, o := range d.Offers {
		if o.ID == id {
			return o, true
		}
	}
	return model.Offer{}, false
}

// Detail loads the task, then its offers and reviews.
func (m *Market) Detail(ctx context.Context, taskID int64) (TaskDetail, error) {
	v, err := resolveViewer(ctx, m.ident)
	if err != nil {
		m.logger.Debug("task detail without known viewer", slog.String("error", err.Error()))
		v = model.Viewer{}
	}
	t, err := m.backend.Task(ctx, taskID)
	if err != nil {
		return TaskDetail{}, err
	}
	offers, err := m.backend.Offers(ctx, taskID)
	if err != nil {
		return TaskDetail{}, err
	}
	reviews, err := m.backend.TaskReviews(ctx, taskID)
	if err != nil {
		return TaskDetail{}, err
	}
	return TaskDetail{Task: t, Offers: offers, Reviews: reviews}.Derive(v), nil
}
