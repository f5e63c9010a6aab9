package fakeapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) addOfferLocked(taskID, freelancerID int64, price float64, message string) *offer {
	o := &offer{
		ID:           s.id(),
		TaskID:       taskID,
		FreelancerID: freelancerID,
		Price:        price,
		Currency:     "BTC",
		Message:      message,
	}
	if u, ok := s.users[freelancerID]; ok {
		o.Freelancer = u.username
	}
	s.offers[o.ID] = o
	return o
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ int64) {
	status := r.URL.Query().Get("status")
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]*task, 0)
	for _, id := range sortedIDs(s.tasks) {
		t := s.tasks[id]
		if status == "" || t.Status == status {
			matched = append(matched, t)
		}
	}
	page := window(matched, offset, limit)
	if len(page) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"tasks": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": page})
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ int64) {
	id, ok := queryID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": t})
}

func (s *Server) handleOffers(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ int64) {
	taskID, ok := queryID(r, "task_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "task_id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*offer, 0)
	for _, id := range sortedIDs(s.offers) {
		if o := s.offers[id]; o.TaskID == taskID {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"offers": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": out})
}

func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	var req struct {
		TaskID  int64   `json:"task_id"`
		Price   float64 `json:"price"`
		Message string  `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[req.TaskID]
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if t.ClientID == uid {
		writeError(w, http.StatusForbidden, "cannot make an offer on your own task")
		return
	}
	for _, o := range s.offers {
		if o.TaskID == req.TaskID && o.FreelancerID == uid {
			writeError(w, http.StatusConflict, "offer already exists")
			return
		}
	}
	s.addOfferLocked(req.TaskID, uid, req.Price, req.Message)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleAcceptOffer enforces exclusivity: accepting one offer clears the rest.
func (s *Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	var req struct {
		OfferID int64 `json:"offer_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[req.OfferID]
	if !ok {
		writeError(w, http.StatusNotFound, "offer not found")
		return
	}
	t := s.tasks[o.TaskID]
	if t == nil || t.ClientID != uid {
		writeError(w, http.StatusForbidden, "only the task owner can accept offers")
		return
	}
	for _, other := range s.offers {
		if other.TaskID == o.TaskID {
			other.Accepted = other.ID == o.ID
		}
	}
	t.Status = "pending"
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) reviewsJSON(match func(*review) bool) map[string]any {
	out := make([]*review, 0)
	for _, rv := range s.reviews {
		if match(rv) {
			out = append(out, rv)
		}
	}
	return map[string]any{"reviews": out}
}

func (s *Server) handleTaskReviews(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ int64) {
	taskID, ok := queryID(r, "task_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "task_id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.reviewsJSON(func(rv *review) bool { return rv.TaskID == taskID }))
}

func (s *Server) handleUserReviews(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ int64) {
	userID, ok := queryID(r, "user_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.reviewsJSON(func(rv *review) bool { return rv.revieweeID == userID }))
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	var req struct {
		TaskID  int64  `json:"task_id"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[req.TaskID]
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if t.Status != "completed" {
		writeError(w, http.StatusForbidden, "task is not completed")
		return
	}
	var freelancerID int64
	for _, o := range s.offers {
		if o.TaskID == t.ID && o.Accepted {
			freelancerID = o.FreelancerID
		}
	}
	var reviewee int64
	switch uid {
	case t.ClientID:
		reviewee = freelancerID
	case freelancerID:
		reviewee = t.ClientID
	default:
		writeError(w, http.StatusForbidden, "not a participant of this task")
		return
	}
	rv := &review{
		ID:         s.id(),
		TaskID:     t.ID,
		ReviewerID: uid,
		Rating:     req.Rating,
		Comment:    req.Comment,
		revieweeID: reviewee,
	}
	if u, ok := s.users[uid]; ok {
		rv.ReviewerName = u.username
	}
	s.reviews = append(s.reviews, rv)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
