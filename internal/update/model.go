// Package update is the state layer: intents and results are tea messages,
// effects are tea commands, and Model is replaced rather than mutated.
package update

import (
	"context"
	"log/slog"
	"time"

	"github.com/sandeepkv93/symbio/internal/api"
	"github.com/sandeepkv93/symbio/internal/captcha"
	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/scheduler"
	"github.com/sandeepkv93/symbio/internal/session"
	"github.com/sandeepkv93/symbio/internal/storage"
	"github.com/sandeepkv93/symbio/internal/workflow"
)

type Screen string

const (
	ScreenLogin      Screen = "login"
	ScreenTasks      Screen = "tasks"
	ScreenTask       Screen = "task"
	ScreenChats      Screen = "chats"
	ScreenRoom       Screen = "room"
	ScreenTickets    Screen = "tickets"
	ScreenTicket     Screen = "ticket"
	ScreenWallet     Screen = "wallet"
	ScreenProfiles   Screen = "profiles"
	ScreenProfile    Screen = "profile"
	ScreenFreelancer Screen = "freelancer"
	ScreenDisputes   Screen = "disputes"
)

type StatusBar struct {
	Text    string
	IsError bool
}

// ReadMarks is the part of storage that remembers the newest message seen
// per thread.
type ReadMarks interface {
	GetReadMark(ctx context.Context, kind string, threadID int64) (storage.ReadMark, error)
	PutReadMark(ctx context.Context, in storage.ReadMark) error
}

// Services are the shared collaborators commands run against.
type Services struct {
	Session   *session.Manager
	Market    *workflow.Market
	Chat      *workflow.Chat
	Tickets   *workflow.Tickets
	Wallet    *workflow.Wallet
	Directory *workflow.Directory
	Disputes  *workflow.Disputes

	// Optional.
	Marks        ReadMarks
	Scheduler    *scheduler.Engine
	PollInterval time.Duration
	Logger       *slog.Logger
}

// NewServices wires every workflow onto one session.
func NewServices(sess *session.Manager, currency string, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	client := sess.Client()
	return &Services{
		Session:      sess,
		Market:       workflow.NewMarket(client, sess, logger),
		Chat:         workflow.NewChat(client, sess, logger),
		Tickets:      workflow.NewTickets(client, logger),
		Wallet:       workflow.NewWallet(client, currency, logger),
		Directory:    workflow.NewDirectory(client, logger),
		Disputes:     workflow.NewDisputes(client),
		PollInterval: 5 * time.Second,
		Logger:       logger,
	}
}

type RoomState struct {
	ID       int64
	Messages []model.Message
	// Unread counts messages newer than the stored read mark when the room
	// was last loaded.
	Unread int
}

func (r RoomState) Lines() []workflow.ChatLine {
	return workflow.ClassifyChat(r.Messages)
}

type TicketState struct {
	ID       int64
	Messages []model.TicketMessage
	Unread   int
}

func (t TicketState) Lines() []workflow.TicketLine {
	return workflow.ClassifyTicket(t.Messages)
}

type visit struct {
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

type Model struct {
	Screen    Screen
	Status    StatusBar
	LastError error

	Session      session.Snapshot
	Captcha      captcha.Challenge
	HasCaptcha   bool
	Registration api.RegisterResult

	Tasks      workflow.TaskList
	Detail     workflow.TaskDetail
	Chats      workflow.ChatState
	Room       RoomState
	TicketList []model.Ticket
	Ticket     TicketState
	Wallet     model.Wallet
	Transfer   model.Transfer
	Profiles   workflow.ProfileList
	OwnProfile model.Profile
	Freelancer workflow.FreelancerReviews
	Disputes   []model.Dispute

	pagePending bool

	svc    *Services
	root   context.Context
	visits map[Screen]visit
}

func NewModel(ctx context.Context, svc *Services) Model {
	if svc.Logger == nil {
		svc.Logger = slog.Default()
	}
	m := Model{
		Screen:  ScreenLogin,
		Session: svc.Session.Snapshot(),
		Tasks:   workflow.NewTaskList(),
		svc:     svc,
		root:    ctx,
		visits:  make(map[Screen]visit),
	}
	return m
}

// Generation is the current visit number of screen.
func (m Model) Generation(s Screen) uint64 {
	return m.visits[s].gen
}

// navigate leaves the current screen and starts a new visit of to. Both
// visits are cancelled and bumped so their in-flight results go stale.
func (m Model) navigate(to Screen) Model {
	if m.Screen != to {
		m = m.leave(m.Screen)
	}
	m = m.leave(to)
	ctx, cancel := context.WithCancel(m.root)
	m.visits = m.withVisit(to, visit{gen: m.visits[to].gen, ctx: ctx, cancel: cancel})
	m.Screen = to
	return m
}

func (m Model) leave(s Screen) Model {
	v := m.visits[s]
	if v.cancel != nil {
		v.cancel()
	}
	m.visits = m.withVisit(s, visit{gen: v.gen + 1})
	m.stopPolling(s)
	return m
}

// withVisit copies the visit table so earlier Model values keep theirs.
func (m Model) withVisit(s Screen, v visit) map[Screen]visit {
	out := make(map[Screen]visit, len(m.visits)+1)
	for k, old := range m.visits {
		out[k] = old
	}
	out[s] = v
	return out
}

// current returns the context and generation of the live visit of s,
// starting one when s has none.
func (m Model) current(s Screen) (Model, context.Context, uint64) {
	v := m.visits[s]
	if v.ctx == nil {
		ctx, cancel := context.WithCancel(m.root)
		v = visit{gen: v.gen, ctx: ctx, cancel: cancel}
		m.visits = m.withVisit(s, v)
	}
	return m, v.ctx, v.gen
}

func (m Model) fresh(s Screen, gen uint64) bool {
	v, ok := m.visits[s]
	return ok && v.gen == gen && v.ctx != nil
}

func (m Model) logger() *slog.Logger {
	return m.svc.Logger
}

func (m Model) Services() *Services {
	return m.svc
}
