package update

import (
	"github.com/sandeepkv93/symbio/internal/api"
	"github.com/sandeepkv93/symbio/internal/captcha"
	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/scheduler"
	"github.com/sandeepkv93/symbio/internal/session"
	"github.com/sandeepkv93/symbio/internal/workflow"
)

// Intents.

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type InitSessionMsg struct{}

type FetchCaptchaMsg struct{}

type LoginMsg struct {
	Username string
	Password string
	Answer   string
}

type RegisterMsg struct {
	Username string
	Password string
	Answer   string
}

type RestoreMsg struct {
	Username    string
	Mnemonic    string
	NewPassword string
	Answer      string
}

type LogoutMsg struct{}

type OpenTasksMsg struct{}

type SetTaskFilterMsg struct {
	Filter model.TaskFilter
}

type NextTaskPageMsg struct{}

type OpenTaskMsg struct {
	TaskID int64
}

type SubmitOfferMsg struct {
	Draft model.OfferDraft
}

type AcceptOfferMsg struct {
	OfferID int64
}

type SubmitReviewMsg struct {
	Draft model.ReviewDraft
}

type OpenChatsMsg struct{}

type RequestChatMsg struct {
	UserID int64
}

type AcceptChatMsg struct {
	RequesterID int64
}

type CancelChatMsg struct {
	CounterpartID int64
}

type OpenRoomMsg struct {
	RoomID int64
}

type RefreshRoomMsg struct{}

type SendChatMsg struct {
	Body string
}

type SendImageMsg struct {
	Format string
	Data   []byte
}

type ExitRoomMsg struct{}

type OpenTicketsMsg struct{}

type CreateTicketMsg struct {
	Subject string
	Message string
}

type OpenTicketMsg struct {
	TicketID int64
}

type RefreshTicketMsg struct{}

type WriteTicketMsg struct {
	Message string
}

type CloseTicketMsg struct{}

type OpenWalletMsg struct {
	Currency string
}

type SendBitcoinMsg struct {
	To     string
	Amount string
}

type OpenProfilesMsg struct{}

type MoreProfilesMsg struct{}

type OpenOwnProfileMsg struct{}

type UpdateProfileMsg struct {
	Update model.ProfileUpdate
}

type OpenFreelancerMsg struct {
	UserID int64
}

type OpenDisputesMsg struct{}

// PollDueMsg carries a scheduler event into the model.
type PollDueMsg struct {
	Event scheduler.PollEvent
}

// Results. Each carries the generation of the visit that issued it.

type sessionInitMsg struct {
	restored bool
	snap     session.Snapshot
	err      error
}

type captchaMsg struct {
	challenge captcha.Challenge
	err       error
}

type authResultMsg struct {
	op           string
	snap         session.Snapshot
	challenge    captcha.Challenge
	hasChallenge bool
	registration api.RegisterResult
	err          error
}

type logoutResultMsg struct {
	snap session.Snapshot
	err  error
}

type tasksLoadedMsg struct {
	gen  uint64
	list workflow.TaskList
	page []model.Task
	err  error
}

type taskLoadedMsg struct {
	gen  uint64
	id   int64
	task model.Task
	err  error
}

type viewerMsg struct {
	gen    uint64
	viewer model.Viewer
}

type offersLoadedMsg struct {
	gen    uint64
	id     int64
	offers []model.Offer
	err    error
}

type reviewsLoadedMsg struct {
	gen     uint64
	id      int64
	reviews []model.Review
	err     error
}

type detailResultMsg struct {
	gen    uint64
	op     string
	detail workflow.TaskDetail
	err    error
}

type chatsLoadedMsg struct {
	gen   uint64
	op    string
	state workflow.ChatState
	err   error
}

type roomMessagesMsg struct {
	gen      uint64
	roomID   int64
	messages []model.Message
	unread   int
	arm      bool
	err      error
}

type roomExitedMsg struct {
	gen   uint64
	state workflow.ChatState
	err   error
}

type ticketsLoadedMsg struct {
	screen  Screen
	gen     uint64
	op      string
	tickets []model.Ticket
	err     error
}

type ticketMessagesMsg struct {
	gen      uint64
	ticketID int64
	messages []model.TicketMessage
	unread   int
	arm      bool
	err      error
}

type walletLoadedMsg struct {
	gen    uint64
	wallet model.Wallet
	err    error
}

type transferMsg struct {
	gen      uint64
	transfer model.Transfer
	err      error
}

type profilesLoadedMsg struct {
	gen  uint64
	list workflow.ProfileList
	err  error
}

type ownProfileMsg struct {
	gen     uint64
	profile model.Profile
	updated bool
	err     error
}

type freelancerMsg struct {
	gen     uint64
	reviews workflow.FreelancerReviews
	err     error
}

type disputesLoadedMsg struct {
	gen      uint64
	disputes []model.Dispute
	err      error
}
