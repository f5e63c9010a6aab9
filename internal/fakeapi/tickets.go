package fakeapi

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) handleTickets(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, uid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ticket, 0)
	for _, id := range sortedIDs(s.tickets) {
		if t := s.tickets[id]; t.ownerID == uid {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	var req struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Subject) == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &ticket{ID: s.id(), Subject: req.Subject, Status: "open", ownerID: uid}
	s.tickets[t.ID] = t
	if req.Message != "" {
		s.ticketMessages = append(s.ticketMessages, &ticketMessage{ID: s.id(), SenderID: uid, Message: req.Message, ticketID: t.ID})
	}
	writeJSON(w, http.StatusOK, map[string]int64{"ticket_id": t.ID})
}

func (s *Server) ownTicketLocked(w http.ResponseWriter, id int64, uid int64) (*ticket, bool) {
	t, ok := s.tickets[id]
	if !ok || t.ownerID != uid {
		writeError(w, http.StatusNotFound, "ticket not found")
		return nil, false
	}
	return t, true
}

func (s *Server) handleTicketMessages(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	id, ok := queryID(r, "ticket_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "ticket_id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ownTicketLocked(w, id, uid)
	if !ok {
		return
	}
	out := make([]*ticketMessage, 0)
	for _, m := range s.ticketMessages {
		if m.ticketID == t.ID {
			out = append(out, m)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWriteTicket(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	var req struct {
		TicketID int64  `json:"ticket_id"`
		Message  string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ownTicketLocked(w, req.TicketID, uid)
	if !ok {
		return
	}
	if t.Status == "closed" {
		writeError(w, http.StatusBadRequest, "ticket is closed")
		return
	}
	s.ticketMessages = append(s.ticketMessages, &ticketMessage{ID: s.id(), SenderID: uid, Message: req.Message, ticketID: t.ID})
	writeJSON(w, http.StatusOK, map[string]string{"message": "sent"})
}

func (s *Server) handleCloseTicket(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	var req struct {
		TicketID int64 `json:"ticket_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ownTicketLocked(w, req.TicketID, uid)
	if !ok {
		return
	}
	t.Status = "closed"
	writeJSON(w, http.StatusOK, map[string]string{"message": "ticket closed"})
}
