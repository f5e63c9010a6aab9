package update

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/symbio/internal/apperr"
)

// Update applies msg and returns the next model and the effect to run.
// Results from a visit that has since been left are dropped without a
// status change.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		return m.fail(typed.Err), nil

	case InitSessionMsg, FetchCaptchaMsg, LoginMsg, RegisterMsg, RestoreMsg, LogoutMsg,
		sessionInitMsg, captchaMsg, authResultMsg, logoutResultMsg:
		return m.updateAuth(msg)

	case OpenTasksMsg, SetTaskFilterMsg, NextTaskPageMsg, OpenTaskMsg,
		SubmitOfferMsg, AcceptOfferMsg, SubmitReviewMsg,
		tasksLoadedMsg, taskLoadedMsg, viewerMsg, offersLoadedMsg, reviewsLoadedMsg, detailResultMsg:
		return m.updateTasks(msg)

	case OpenChatsMsg, RequestChatMsg, AcceptChatMsg, CancelChatMsg,
		OpenRoomMsg, RefreshRoomMsg, SendChatMsg, SendImageMsg, ExitRoomMsg,
		chatsLoadedMsg, roomMessagesMsg, roomExitedMsg:
		return m.updateChat(msg)

	case OpenTicketsMsg, CreateTicketMsg, OpenTicketMsg, RefreshTicketMsg, WriteTicketMsg, CloseTicketMsg,
		ticketsLoadedMsg, ticketMessagesMsg:
		return m.updateTickets(msg)

	case OpenWalletMsg, SendBitcoinMsg, OpenProfilesMsg, MoreProfilesMsg, OpenOwnProfileMsg,
		UpdateProfileMsg, OpenFreelancerMsg, OpenDisputesMsg,
		walletLoadedMsg, transferMsg, profilesLoadedMsg, ownProfileMsg, freelancerMsg, disputesLoadedMsg:
		return m.updateAccount(msg)

	case PollDueMsg:
		return m.onPollDue(typed.Event)
	}
	return m, nil
}

func (m Model) fail(err error) Model {
	if err == nil {
		return m
	}
	m.LastError = err
	m.Status = StatusBar{Text: apperr.Display(err), IsError: true}
	m.logger().Debug("operation failed", slog.String("kind", string(apperr.KindOf(err))), slog.String("error", err.Error()))
	return m
}

func (m Model) ok(text string) Model {
	m.LastError = nil
	m.Status = StatusBar{Text: text}
	return m
}
