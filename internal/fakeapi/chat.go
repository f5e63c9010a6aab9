package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) handleChatRequests(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, uid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chatRequest, 0)
	for _, req := range s.requests {
		if req.RequesterID == uid || req.RequestedID == uid {
			out = append(out, req)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) sharedRoomLocked(a, b int64) *chatRoom {
	for _, room := range s.rooms {
		var hasA, hasB bool
		for _, m := range room.MemberIDs {
			hasA = hasA || m == a
			hasB = hasB || m == b
		}
		if hasA && hasB {
			return room
		}
	}
	return nil
}

func (s *Server) handleCreateChatRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	other, ok := queryID(r, "requested_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "requested_id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[other]; !exists || other == uid {
		writeError(w, http.StatusBadRequest, "invalid user")
		return
	}
	for _, req := range s.requests {
		if (req.RequesterID == uid && req.RequestedID == other) || (req.RequesterID == other && req.RequestedID == uid) {
			writeError(w, http.StatusConflict, "request already pending")
			return
		}
	}
	if s.sharedRoomLocked(uid, other) != nil {
		writeError(w, http.StatusConflict, "chat already exists")
		return
	}
	s.requests = append(s.requests, chatRequest{RequesterID: uid, RequestedID: other})
	writeJSON(w, http.StatusOK, map[string]string{"message": "request sent"})
}

func (s *Server) handleAcceptChatRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	requester, ok := queryID(r, "requester_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "requester_id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, req := range s.requests {
		if req.RequesterID == requester && req.RequestedID == uid {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, "no pending request")
		return
	}
	s.requests = append(s.requests[:idx], s.requests[idx+1:]...)
	names := []string{s.users[requester].username, s.users[uid].username}
	room := &chatRoom{ID: s.id(), Name: strings.Join(names, " & "), MemberIDs: []int64{requester, uid}}
	s.rooms[room.ID] = room
	writeJSON(w, http.StatusOK, map[string]int64{"chat_room_id": room.ID})
}

// handleCancelChatRequest drops the pending request between the caller and
// requester_id in either direction.
func (s *Server) handleCancelChatRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	other, ok := queryID(r, "requester_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "requester_id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.requests[:0]
	removed := false
	for _, req := range s.requests {
		if (req.RequesterID == other && req.RequestedID == uid) || (req.RequesterID == uid && req.RequestedID == other) {
			removed = true
			continue
		}
		kept = append(kept, req)
	}
	s.requests = kept
	if !removed {
		writeError(w, http.StatusNotFound, "no pending request")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "request cancelled"})
}

func (s *Server) handleChatRooms(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, uid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*chatRoom, 0)
	for _, id := range sortedIDs(s.rooms) {
		room := s.rooms[id]
		for _, m := range room.MemberIDs {
			if m == uid {
				out = append(out, room)
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) memberRoomLocked(w http.ResponseWriter, r *http.Request, uid int64) (*chatRoom, bool) {
	roomID, ok := queryID(r, "chat_room_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "chat_room_id is required")
		return nil, false
	}
	room, ok := s.rooms[roomID]
	if !ok {
		writeError(w, http.StatusNotFound, "chat room not found")
		return nil, false
	}
	for _, m := range room.MemberIDs {
		if m == uid {
			return room, true
		}
	}
	writeError(w, http.StatusForbidden, "not a member of this chat")
	return nil, false
}

func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.memberRoomLocked(w, r, uid)
	if !ok {
		return
	}
	out := make([]*chatMessage, 0)
	for _, m := range s.messages {
		if m.roomID == room.ID {
			out = append(out, m)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.memberRoomLocked(w, r, uid)
	if !ok {
		return
	}
	s.messages = append(s.messages, &chatMessage{
		ID:       s.id(),
		SenderID: uid,
		Message:  req.Message,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
		roomID:   room.ID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "sent"})
}

// handleExitChat closes the room for both members.
func (s *Server) handleExitChat(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.memberRoomLocked(w, r, uid)
	if !ok {
		return
	}
	delete(s.rooms, room.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "left chat"})
}
