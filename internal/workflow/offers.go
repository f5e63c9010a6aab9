package workflow

import (
	"context"
	"log/slog"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/model"
)

func (m *Market) Offers(ctx context.Context, taskID int64) ([]model.Offer, error) {
	return m.backend.Offers(ctx, taskID)
}

// CreateOffer is refused locally on the viewer's own task or when the viewer
// already has an offer on it. On success the offer list is refetched.
func (m *Market) CreateOffer(ctx context.Context, detail TaskDetail, draft model.OfferDraft) (TaskDetail, error) {
	const op = "/api/offers/create"
	draft.TaskID = detail.Task.ID
	if err := draft.Validate(); err != nil {
		return detail, apperr.Validation(op, err.Error())
	}
	v, err := resolveViewer(ctx, m.ident)
	if err != nil {
		return detail, err
	}
	detail = detail.Derive(v)
	switch {
	case detail.IsOwn:
		return detail, apperr.Permission(op, "you cannot make an offer on your own task")
	case detail.HasUserOffer:
		return detail, apperr.Permission(op, "you already made an offer on this task")
	case !detail.CanMakeOffer:
		return detail, apperr.Permission(op, "offers are not available")
	}

	if err := m.backend.CreateOffer(ctx, draft); err != nil {
		return detail, err
	}
	m.logger.Info("offer created", slog.Int64("task_id", draft.TaskID))
	offers, err := m.backend.Offers(ctx, detail.Task.ID)
	if err != nil {
		return detail, err
	}
	return detail.WithOffers(offers), nil
}

// AcceptOffer posts the accept and refetches the full offer list; the
// accepted flag is never set locally.
func (m *Market) AcceptOffer(ctx context.Context, detail TaskDetail, offerID int64) (TaskDetail, error) {
	const op = "/api/offers/accept"
	v, err := resolveViewer(ctx, m.ident)
	if err != nil {
		return detail, err
	}
	detail = detail.Derive(v)
	offer, ok := detail.Offer(offerID)
	if !ok {
		return detail, apperr.Validation(op, "unknown offer")
	}
	if !detail.CanAccept(offer) {
		if offer.Accepted {
			return detail, apperr.Permission(op, "offer is already accepted")
		}
		return detail, apperr.Permission(op, "only the task owner can accept offers")
	}

	if err := m.backend.AcceptOffer(ctx, offerID); err != nil {
		return detail, err
	}
	m.logger.Info("offer accepted", slog.Int64("task_id", detail.Task.ID), slog.Int64("offer_id", offerID))
	offers, err := m.backend.Offers(ctx, detail.Task.ID)
	if err != nil {
		return detail, err
	}
	return detail.WithOffers(offers), nil
}
