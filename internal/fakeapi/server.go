// Package fakeapi is an in-memory marketplace backend for tests. It speaks
// the same paths and payload shapes as the real service.
package fakeapi

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

// CaptchaAnswer solves every challenge the fake issues.
const CaptchaAnswer = "7G4K"

type user struct {
	id       int64
	username string
	password string
	mnemonic string
	fullName string
	bio      string
	skills   []string
	avatar   string
	balance  float64
	address  string
}

type task struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Budget      float64 `json:"budget"`
	Currency    string  `json:"currency"`
	Deadline    string  `json:"deadline"`
	ClientID    int64   `json:"client_id"`
}

type offer struct {
	ID           int64   `json:"id"`
	TaskID       int64   `json:"task_id"`
	FreelancerID int64   `json:"freelancer_id"`
	Freelancer   string  `json:"freelancer"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	Message      string  `json:"message"`
	Accepted     bool    `json:"accepted"`
}

type review struct {
	ID           int64  `json:"id"`
	TaskID       int64  `json:"task_id"`
	ReviewerID   int64  `json:"reviewer_id"`
	ReviewerName string `json:"reviewer_name"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	revieweeID   int64
}

type chatRequest struct {
	RequesterID int64 `json:"requester_id"`
	RequestedID int64 `json:"requested_id"`
}

type chatRoom struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"member_ids"`
}

type chatMessage struct {
	ID       int64  `json:"id"`
	SenderID int64  `json:"sender_id"`
	Message  string `json:"message"`
	SentAt   string `json:"sent_at"`
	roomID   int64
}

type ticket struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject"`
	Status  string `json:"status"`
	ownerID int64
}

type ticketMessage struct {
	ID       int64  `json:"ID"`
	SenderID int64  `json:"SenderID"`
	Message  string `json:"Message"`
	ticketID int64
}

type dispute struct {
	ID               int64  `json:"id"`
	TaskID           int64  `json:"task_id"`
	Status           string `json:"status"`
	OpenedByUsername string `json:"opened_by_username"`
	userID           int64
}

type override struct {
	status int
	body   string
}

type Server struct {
	mu sync.Mutex

	router  *httprouter.Router
	captcha []byte

	nextID   int64
	users    map[int64]*user
	tokens   map[string]int64
	captchas map[string]bool

	tasks          map[int64]*task
	offers         map[int64]*offer
	reviews        []*review
	requests       []chatRequest
	rooms          map[int64]*chatRoom
	messages       []*chatMessage
	tickets        map[int64]*ticket
	ticketMessages []*ticketMessage
	disputes       []*dispute

	overrides map[string]override
	holds     map[string]chan struct{}
	hits      map[string]int
}

func New() *Server {
	s := &Server{
		router:    httprouter.New(),
		captcha:   captchaImage(),
		users:     make(map[int64]*user),
		tokens:    make(map[string]int64),
		captchas:  make(map[string]bool),
		tasks:     make(map[int64]*task),
		offers:    make(map[int64]*offer),
		rooms:     make(map[int64]*chatRoom),
		tickets:   make(map[int64]*ticket),
		overrides: make(map[string]override),
		holds:     make(map[string]chan struct{}),
		hits:      make(map[string]int),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.GET("/captcha", s.handleCaptcha)
	r.POST("/auth", s.handleLogin)
	r.POST("/register", s.handleRegister)
	r.POST("/restoreuser", s.handleRestore)

	r.GET("/api/ownID", s.authRequired(s.handleOwnID))
	r.GET("/profile", s.authRequired(s.handleOwnProfile))
	r.POST("/profile", s.authRequired(s.handleUpdateProfile))
	r.GET("/profile/by_id", s.authRequired(s.handleProfileByID))
	r.GET("/profiles", s.authRequired(s.handleProfiles))
	r.GET("/api/wallet", s.authRequired(s.handleWallet))
	r.POST("/api/wallet/bitcoinSend", s.authRequired(s.handleBitcoinSend))

	r.GET("/api/tasks", s.authRequired(s.handleTasks))
	r.GET("/api/tasks/get", s.authRequired(s.handleTask))
	r.GET("/api/offers", s.authRequired(s.handleOffers))
	r.POST("/api/offers/create", s.authRequired(s.handleCreateOffer))
	r.POST("/api/offers/accept", s.authRequired(s.handleAcceptOffer))
	r.GET("/api/reviews/task", s.authRequired(s.handleTaskReviews))
	r.GET("/api/reviews/user", s.authRequired(s.handleUserReviews))
	r.POST("/api/reviews/create", s.authRequired(s.handleCreateReview))

	r.GET("/api/chat/getChatRequests", s.authRequired(s.handleChatRequests))
	r.POST("/api/chat/createChatRequest", s.authRequired(s.handleCreateChatRequest))
	r.GET("/api/chat/acceptChatRequest", s.authRequired(s.handleAcceptChatRequest))
	r.GET("/api/chat/cancelChatRequest", s.authRequired(s.handleCancelChatRequest))
	r.GET("/api/chat/getChatRoomsForUser", s.authRequired(s.handleChatRooms))
	r.GET("/api/chat/getChatMessages", s.authRequired(s.handleChatMessages))
	r.POST("/api/chat/sendMessage", s.authRequired(s.handleSendMessage))
	r.POST("/api/chat/exitFromChat", s.authRequired(s.handleExitChat))

	r.GET("/api/ticket/my", s.authRequired(s.handleTickets))
	r.POST("/api/ticket/createTicket", s.authRequired(s.handleCreateTicket))
	r.GET("/api/ticket/messages", s.authRequired(s.handleTicketMessages))
	r.POST("/api/ticket/write", s.authRequired(s.handleWriteTicket))
	r.POST("/api/ticket/close", s.authRequired(s.handleCloseTicket))

	r.GET("/api/disputes/my", s.authRequired(s.handleDisputes))
}

// ServeHTTP applies failure overrides and holds before routing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	ov, forced := s.overrides[r.URL.Path]
	hold := s.holds[r.URL.Path]
	s.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}
	if forced {
		w.WriteHeader(ov.status)
		_, _ = w.Write([]byte(ov.body))
		return
	}
	s.router.ServeHTTP(w, r)
}

// Fail makes every request to path answer with status and the raw body.
func (s *Server) Fail(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = override{status: status, body: body}
}

func (s *Server) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, path)
}

// Hold parks requests to path until the returned release is called.
func (s *Server) Hold(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[path] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// AddUser seeds an account and returns its id and a live token.
func (s *Server) AddUser(username, password string) (int64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.newUserLocked(username, password)
	return u.id, s.issueTokenLocked(u.id)
}

func (s *Server) SetBalance(userID int64, balance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.balance = balance
	}
}

func (s *Server) AddTask(clientID int64, title, status string, budget float64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.tasks[id] = &task{
		ID:          id,
		Title:       title,
		Description: title + " description",
		Status:      status,
		Budget:      budget,
		Currency:    "BTC",
		Deadline:    "2026-12-31",
		ClientID:    clientID,
	}
	return id
}

func (s *Server) SetTaskStatus(taskID int64, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[taskID]; ok {
		t.Status = status
	}
}

func (s *Server) AddOffer(taskID, freelancerID int64, price float64, message string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addOfferLocked(taskID, freelancerID, price, message).ID
}

func (s *Server) AddDispute(userID, taskID int64, status string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &dispute{ID: s.id(), TaskID: taskID, Status: status, userID: userID}
	if u, ok := s.users[userID]; ok {
		d.OpenedByUsername = u.username
	}
	s.disputes = append(s.disputes, d)
	return d.ID
}

// AddChatMessage appends a message to a room as if sent by senderID.
func (s *Server) AddChatMessage(roomID, senderID int64, body string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &chatMessage{ID: s.id(), SenderID: senderID, Message: body, roomID: roomID, SentAt: "2026-10-15T10:00:00Z"}
	s.messages = append(s.messages, m)
	return m.ID
}

func (s *Server) AddTicketMessage(ticketID, senderID int64, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticketMessages = append(s.ticketMessages, &ticketMessage{ID: s.id(), SenderID: senderID, Message: body, ticketID: ticketID})
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) newUserLocked(username, password string) *user {
	id := s.id()
	u := &user{
		id:       id,
		username: username,
		password: password,
		mnemonic: strings.ReplaceAll(uuid.NewString(), "-", " "),
		balance:  1,
		address:  "bc1q" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20],
	}
	s.users[id] = u
	return u
}

func (s *Server) issueTokenLocked(userID int64) string {
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

func (s *Server) userByName(name string) *user {
	for _, u := range s.users {
		if u.username == name {
			return u
		}
	}
	return nil
}

type authedHandler func(w http.ResponseWriter, r *http.Request, p httprouter.Params, uid int64)

func (s *Server) authRequired(next authedHandler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		uid, ok := s.tokens[token]
		s.mu.Unlock()
		if token == "" || !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, p, uid)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func queryID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return id, err == nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func captchaImage() []byte {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
