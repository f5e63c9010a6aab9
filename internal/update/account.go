package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/symbio/internal/workflow"
)

func (m Model) updateAccount(msg tea.Msg) (Model, tea.Cmd) {
	var (
		ctx context.Context
		gen uint64
	)
	switch typed := msg.(type) {
	case OpenWalletMsg:
		m = m.navigate(ScreenWallet)
		m, ctx, gen = m.current(ScreenWallet)
		return m, walletCmd(ctx, m.svc.Wallet, gen, typed.Currency)
	case SendBitcoinMsg:
		m, ctx, gen = m.current(ScreenWallet)
		wallet := m.svc.Wallet
		return m, func() tea.Msg {
			tr, err := wallet.Send(ctx, typed.To, typed.Amount)
			return transferMsg{gen: gen, transfer: tr, err: err}
		}
	case walletLoadedMsg:
		if !m.fresh(ScreenWallet, typed.gen) {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Wallet = typed.wallet
		return m, nil
	case transferMsg:
		if !m.fresh(ScreenWallet, typed.gen) {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Transfer = typed.transfer
		text := "transfer sent"
		if typed.transfer.TxID != "" {
			text = fmt.Sprintf("transfer sent: %s", typed.transfer.TxID)
		} else if typed.transfer.Message != "" {
			text = typed.transfer.Message
		}
		m, ctx, gen = m.current(ScreenWallet)
		return m.ok(text), walletCmd(ctx, m.svc.Wallet, gen, m.Wallet.Currency)

	case OpenProfilesMsg:
		m = m.navigate(ScreenProfiles)
		m.Profiles = workflow.ProfileList{}
		m, ctx, gen = m.current(ScreenProfiles)
		return m, profilesCmd(ctx, m.svc.Directory, gen, m.Profiles, 0)
	case MoreProfilesMsg:
		if !m.Profiles.HasMore() {
			return m, nil
		}
		m, ctx, gen = m.current(ScreenProfiles)
		return m, profilesCmd(ctx, m.svc.Directory, gen, m.Profiles, m.Profiles.NextOffset())
	case profilesLoadedMsg:
		if !m.fresh(ScreenProfiles, typed.gen) {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Profiles = typed.list
		return m, nil

	case OpenOwnProfileMsg:
		m = m.navigate(ScreenProfile)
		m, ctx, gen = m.current(ScreenProfile)
		dir := m.svc.Directory
		return m, func() tea.Msg {
			p, err := dir.Own(ctx)
			return ownProfileMsg{gen: gen, profile: p, err: err}
		}
	case UpdateProfileMsg:
		m, ctx, gen = m.current(ScreenProfile)
		dir := m.svc.Directory
		return m, func() tea.Msg {
			p, err := dir.Update(ctx, typed.Update)
			return ownProfileMsg{gen: gen, profile: p, updated: true, err: err}
		}
	case ownProfileMsg:
		if !m.fresh(ScreenProfile, typed.gen) {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.OwnProfile = typed.profile
		if typed.updated {
			return m.ok("profile updated"), nil
		}
		return m, nil

	case OpenFreelancerMsg:
		m = m.navigate(ScreenFreelancer)
		m, ctx, gen = m.current(ScreenFreelancer)
		dir := m.svc.Directory
		return m, func() tea.Msg {
			fr, err := dir.FreelancerReviews(ctx, typed.UserID)
			return freelancerMsg{gen: gen, reviews: fr, err: err}
		}
	case freelancerMsg:
		if !m.fresh(ScreenFreelancer, typed.gen) {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Freelancer = typed.reviews
		return m, nil

	case OpenDisputesMsg:
		m = m.navigate(ScreenDisputes)
		m, ctx, gen = m.current(ScreenDisputes)
		disputes := m.svc.Disputes
		return m, func() tea.Msg {
			list, err := disputes.List(ctx)
			return disputesLoadedMsg{gen: gen, disputes: list, err: err}
		}
	case disputesLoadedMsg:
		if !m.fresh(ScreenDisputes, typed.gen) {
			return m, nil
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Disputes = typed.disputes
		return m, nil
	}
	return m, nil
}

func walletCmd(ctx context.Context, wallet *workflow.Wallet, gen uint64, currency string) tea.Cmd {
	return func() tea.Msg {
		w, err := wallet.Balance(ctx, currency)
		return walletLoadedMsg{gen: gen, wallet: w, err: err}
	}
}

func profilesCmd(ctx context.Context, dir *workflow.Directory, gen uint64, list workflow.ProfileList, offset int) tea.Cmd {
	return func() tea.Msg {
		out, err := dir.Page(ctx, list, offset)
		return profilesLoadedMsg{gen: gen, list: out, err: err}
	}
}
