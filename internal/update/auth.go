package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/symbio/internal/session"
)

func (m Model) updateAuth(msg tea.Msg) (Model, tea.Cmd) {
	sess := m.svc.Session
	var ctx context.Context
	switch typed := msg.(type) {
	case InitSessionMsg:
		m, ctx, _ = m.current(ScreenLogin)
		return m, func() tea.Msg {
			restored, err := sess.Init(ctx)
			if err == nil && restored {
				sess.Bootstrap(ctx)
			}
			return sessionInitMsg{restored: restored, snap: sess.Snapshot(), err: err}
		}
	case FetchCaptchaMsg:
		m, ctx, _ = m.current(ScreenLogin)
		return m, func() tea.Msg {
			ch, err := sess.Captcha().Fetch(ctx)
			return captchaMsg{challenge: ch, err: err}
		}
	case LoginMsg:
		m.Session.State = session.StateAuthenticating
		m, ctx, _ = m.current(ScreenLogin)
		return m, authCmd(sess, "login", func() error {
			return sess.Login(ctx, typed.Username, typed.Password, typed.Answer)
		})
	case RegisterMsg:
		m.Session.State = session.StateAuthenticating
		m, ctx, _ = m.current(ScreenLogin)
		return m, func() tea.Msg {
			res, err := sess.Register(ctx, typed.Username, typed.Password, typed.Answer)
			out := authResult(sess, "register", err)
			out.registration = res
			return out
		}
	case RestoreMsg:
		m.Session.State = session.StateAuthenticating
		m, ctx, _ = m.current(ScreenLogin)
		return m, authCmd(sess, "restore", func() error {
			return sess.RestoreAccount(ctx, typed.Username, typed.Mnemonic, typed.NewPassword, typed.Answer)
		})
	case LogoutMsg:
		for s := range m.visits {
			m = m.leave(s)
		}
		dir := m.svc.Directory
		return m, func() tea.Msg {
			err := sess.Logout(context.WithoutCancel(m.root))
			dir.Reset()
			return logoutResultMsg{snap: sess.Snapshot(), err: err}
		}

	case sessionInitMsg:
		m.Session = typed.snap
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		if typed.restored {
			return m.ok(fmt.Sprintf("signed in as %s", m.displayName())), nil
		}
		return m, nil
	case captchaMsg:
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		m.Captcha, m.HasCaptcha = typed.challenge, true
		return m, nil
	case authResultMsg:
		m.Session = typed.snap
		if typed.hasChallenge {
			m.Captcha, m.HasCaptcha = typed.challenge, true
		} else {
			m.HasCaptcha = false
		}
		if typed.err != nil {
			return m.fail(typed.err), nil
		}
		if typed.op == "register" {
			m.Registration = typed.registration
		}
		return m.ok(fmt.Sprintf("signed in as %s", m.displayName())), nil
	case logoutResultMsg:
		next := NewModel(m.root, m.svc)
		next.visits = m.visits
		next.Session = typed.snap
		if typed.err != nil {
			return next.fail(typed.err), nil
		}
		return next.ok("signed out"), nil
	}
	return m, nil
}

func authCmd(sess *session.Manager, op string, run func() error) tea.Cmd {
	return func() tea.Msg {
		return authResult(sess, op, run())
	}
}

// authResult reads the session after an exchange; a failed exchange has
// already fetched the next captcha challenge.
func authResult(sess *session.Manager, op string, err error) authResultMsg {
	out := authResultMsg{op: op, snap: sess.Snapshot(), err: err}
	out.challenge, out.hasChallenge = sess.Captcha().Current()
	return out
}

func (m Model) displayName() string {
	id := m.Session.Identity
	if id.HasProfile {
		p := id.Profile
		if p.UserID == 0 {
			p.UserID = id.UserID
		}
		return p.DisplayName()
	}
	if id.UserIDKnown {
		return fmt.Sprintf("user %d", id.UserID)
	}
	return "user"
}
