package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/transport"
)

// Tasks lists one page. A malformed listing degrades to an empty page.
func (c *Client) Tasks(ctx context.Context, filter model.TaskFilter, limit, offset int) ([]model.Task, error) {
	q := url.Values{
		"limit":  []string{strconv.Itoa(limit)},
		"offset": []string{strconv.Itoa(offset)},
	}
	if status := filter.Status(); status != "" {
		q.Set("status", status)
	}
	resp, err := c.get(ctx, "/api/tasks", q)
	if err != nil {
		return nil, err
	}
	items, err := listOf("/api/tasks", resp.Body, "tasks")
	if err != nil {
		c.degrade("/api/tasks", err)
		return nil, nil
	}
	out := make([]model.Task, 0, len(items))
	for _, item := range items {
		if t, ok := decodeTask(item); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *Client) Task(ctx context.Context, id int64) (model.Task, error) {
	resp, err := c.get(ctx, "/api/tasks/get", idQuery("id", id))
	if err != nil {
		return model.Task{}, err
	}
	obj, err := objectOf("/api/tasks/get", resp.Body)
	if err != nil {
		return model.Task{}, err
	}
	if nested, ok := obj["task"].(map[string]any); ok {
		obj = nested
	}
	t, ok := decodeTask(obj)
	if !ok {
		return model.Task{}, apperr.Shape("/api/tasks/get", "missing task")
	}
	return t, nil
}

func (c *Client) Offers(ctx context.Context, taskID int64) ([]model.Offer, error) {
	resp, err := c.get(ctx, "/api/offers", idQuery("task_id", taskID))
	if err != nil {
		return nil, err
	}
	items, err := listOf("/api/offers", resp.Body, "offers")
	if err != nil {
		c.degrade("/api/offers", err)
		return nil, nil
	}
	out := make([]model.Offer, 0, len(items))
	for _, item := range items {
		o := model.Offer{TaskID: taskID}
		var ok bool
		if o.ID, ok = intField(item, "id"); !ok {
			continue
		}
		if tid, ok := intField(item, "task_id"); ok {
			o.TaskID = tid
		}
		o.FreelancerID, _ = intField(item, "freelancer_id")
		o.FreelancerName, _ = stringField(item, "freelancer", "freelancer_name", "username")
		o.Price, _ = floatField(item, "price")
		o.Currency, _ = stringField(item, "currency")
		o.Message, _ = stringField(item, "message")
		o.Accepted = boolField(item, "accepted")
		out = append(out, o)
	}
	return out, nil
}

func (c *Client) CreateOffer(ctx context.Context, d model.OfferDraft) error {
	_, err := c.post(ctx, "/api/offers/create", nil, transport.Fields{
		"task_id": d.TaskID,
		"price":   d.Price,
		"message": d.Message,
	})
	return err
}

func (c *Client) AcceptOffer(ctx context.Context, offerID int64) error {
	_, err := c.post(ctx, "/api/offers/accept", nil, transport.Fields{"offer_id": offerID})
	return err
}

func (c *Client) TaskReviews(ctx context.Context, taskID int64) ([]model.Review, error) {
	return c.reviews(ctx, "/api/reviews/task", idQuery("task_id", taskID))
}

func (c *Client) UserReviews(ctx context.Context, userID int64) ([]model.Review, error) {
	return c.reviews(ctx, "/api/reviews/user", idQuery("user_id", userID))
}

func (c *Client) CreateReview(ctx context.Context, d model.ReviewDraft) error {
	_, err := c.post(ctx, "/api/reviews/create", nil, transport.Fields{
		"task_id": d.TaskID,
		"rating":  d.Rating,
		"comment": d.Comment,
	})
	return err
}

func (c *Client) reviews(ctx context.Context, path string, q url.Values) ([]model.Review, error) {
	resp, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	items, err := listOf(path, resp.Body, "reviews")
	if err != nil {
		c.degrade(path, err)
		return nil, nil
	}
	out := make([]model.Review, 0, len(items))
	for _, item := range items {
		r := model.Review{}
		r.ID, _ = intField(item, "id")
		r.TaskID, _ = intField(item, "task_id")
		r.ReviewerID, _ = intField(item, "reviewer_id")
		r.ReviewerName, _ = stringField(item, "reviewer_name", "reviewer")
		rating, _ := intField(item, "rating")
		r.Rating = int(rating)
		r.Comment, _ = stringField(item, "comment")
		out = append(out, r)
	}
	return out, nil
}

func decodeTask(obj map[string]any) (model.Task, bool) {
	id, ok := intField(obj, "id")
	if !ok {
		return model.Task{}, false
	}
	t := model.Task{ID: id}
	t.Title, _ = stringField(obj, "title")
	t.Description, _ = stringField(obj, "description")
	status, _ := stringField(obj, "status")
	t.Status = model.TaskStatus(status)
	t.Budget, _ = floatField(obj, "budget")
	t.Currency, _ = stringField(obj, "currency")
	t.Deadline, _ = stringField(obj, "deadline")
	t.ClientID, _ = intField(obj, "client_id")
	return t, true
}
