package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type authRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Mnemonic      string `json:"mnemonic"`
	NewPassword   string `json:"new_password"`
	CaptchaID     string `json:"captcha_id"`
	CaptchaAnswer string `json:"captcha_answer"`
}

func (s *Server) handleCaptcha(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	id := uuid.NewString()
	s.mu.Lock()
	s.captchas[id] = true
	s.mu.Unlock()
	w.Header().Set("X-Captcha-Id", id)
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.captcha)
}

// solveLocked consumes the challenge whether or not the answer is right.
func (s *Server) solveLocked(req authRequest) bool {
	live := s.captchas[req.CaptchaID]
	delete(s.captchas, req.CaptchaID)
	return live && strings.EqualFold(req.CaptchaAnswer, CaptchaAnswer)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req authRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.solveLocked(req) {
		writeError(w, http.StatusBadRequest, "invalid captcha")
		return
	}
	u := s.userByName(req.Username)
	if u == nil || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": s.issueTokenLocked(u.id)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req authRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.solveLocked(req) {
		writeError(w, http.StatusBadRequest, "invalid captcha")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if s.userByName(req.Username) != nil {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	u := s.newUserLocked(req.Username, req.Password)
	writeJSON(w, http.StatusOK, map[string]string{
		"token":     s.issueTokenLocked(u.id),
		"encrypted": u.mnemonic,
		"message":   "store your recovery phrase safely",
	})
}

// handleRestore answers with the new token under `encrypted`, like the
// production service.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req authRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.solveLocked(req) {
		writeError(w, http.StatusBadRequest, "invalid captcha")
		return
	}
	u := s.userByName(req.Username)
	if u == nil || u.mnemonic != req.Mnemonic {
		writeError(w, http.StatusUnauthorized, "invalid recovery phrase")
		return
	}
	u.password = req.NewPassword
	writeJSON(w, http.StatusOK, map[string]string{"encrypted": s.issueTokenLocked(u.id)})
}

func (s *Server) handleOwnID(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, uid int64) {
	writeJSON(w, http.StatusOK, map[string]int64{"user_id": uid})
}

func profileJSON(u *user) map[string]any {
	skills := u.skills
	if skills == nil {
		skills = []string{}
	}
	return map[string]any{
		"user_id":  u.id,
		"username": u.username,
		"profile": map[string]any{
			"full_name": u.fullName,
			"bio":       u.bio,
			"skills":    skills,
			"avatar":    u.avatar,
		},
	}
}

func (s *Server) handleOwnProfile(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, uid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, profileJSON(s.users[uid]))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	var req struct {
		FullName string   `json:"full_name"`
		Bio      string   `json:"bio"`
		Skills   []string `json:"skills"`
		Avatar   string   `json:"avatar"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[uid]
	u.fullName, u.bio, u.skills, u.avatar = req.FullName, req.Bio, req.Skills, req.Avatar
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

func (s *Server) handleProfileByID(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ int64) {
	id, ok := queryID(r, "user_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, profileJSON(u))
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ int64) {
	limit := queryInt(r, "limit", 5)
	offset := queryInt(r, "offset", 0)
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]map[string]any, 0, len(s.users))
	for _, id := range sortedIDs(s.users) {
		all = append(all, profileJSON(s.users[id]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": window(all, offset, limit),
		"total":    len(all),
	})
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	currency := r.URL.Query().Get("currency")
	if currency != "BTC" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported currency %q", currency))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[uid]
	writeJSON(w, http.StatusOK, map[string]string{
		"balance": strconv.FormatFloat(u.balance, 'f', 8, 64),
		"address": u.address,
	})
}

// handleBitcoinSend replies in plain text on failure.
func (s *Server) handleBitcoinSend(w http.ResponseWriter, r *http.Request, _ httprouter.Params, uid int64) {
	to := r.URL.Query().Get("to")
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if to == "" || err != nil || amount <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid transfer parameters"))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[uid]
	if amount > u.balance {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("insufficient funds"))
		return
	}
	u.balance -= amount
	writeJSON(w, http.StatusOK, map[string]string{"tx_id": uuid.NewString(), "message": "transaction broadcast"})
}

func (s *Server) handleDisputes(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, uid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*dispute, 0)
	for _, d := range s.disputes {
		if d.userID == uid {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"disputes": out})
}
