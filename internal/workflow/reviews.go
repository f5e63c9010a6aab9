package workflow

import (
	"context"
	"log/slog"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/model"
)

func (m *Market) Reviews(ctx context.Context, taskID int64) ([]model.Review, error) {
	return m.backend.TaskReviews(ctx, taskID)
}

// SubmitReview checks eligibility against the detail as last refreshed, then
// posts and refetches the task's reviews.
func (m *Market) SubmitReview(ctx context.Context, detail TaskDetail, draft model.ReviewDraft) (TaskDetail, error) {
	const op = "/api/reviews/create"
	draft.TaskID = detail.Task.ID
	if err := draft.Validate(); err != nil {
		return detail, apperr.Validation(op, err.Error())
	}
	v, err := resolveViewer(ctx, m.ident)
	if err != nil {
		return detail, err
	}
	detail = detail.Derive(v)
	if !detail.CanReview {
		return detail, apperr.Permission(op, "you cannot review this task")
	}

	if err := m.backend.CreateReview(ctx, draft); err != nil {
		return detail, err
	}
	m.logger.Info("review submitted", slog.Int64("task_id", draft.TaskID), slog.Int("rating", draft.Rating))
	reviews, err := m.backend.TaskReviews(ctx, detail.Task.ID)
	if err != nil {
		return detail, err
	}
	return detail.WithReviews(reviews), nil
}
