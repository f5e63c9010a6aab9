// Package session owns the bearer token and the identity derived from it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sandeepkv93/symbio/internal/api"
	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/captcha"
	"github.com/sandeepkv93/symbio/internal/model"
)

type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// Store persists the token between runs. An empty token means signed out.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
}

type Step string

const (
	StepOwnID   Step = "own_id"
	StepProfile Step = "profile"
	StepWallet  Step = "wallet"
)

// Identity is what the bootstrap learned about the signed-in user. Data from
// completed steps survives the failure of a later step.
type Identity struct {
	UserID      int64
	UserIDKnown bool
	Profile     model.Profile
	HasProfile  bool
	Wallet      model.Wallet
	HasWallet   bool
	StepErrors  map[Step]error
}

func (id Identity) clone() Identity {
	out := id
	out.StepErrors = make(map[Step]error, len(id.StepErrors))
	for k, v := range id.StepErrors {
		out.StepErrors[k] = v
	}
	return out
}

type Snapshot struct {
	State    State
	Token    string
	Identity Identity
}

func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Token != ""
}

type Options struct {
	Client   *api.Client
	Captcha  *captcha.Flow
	Store    Store
	Currency string
	Logger   *slog.Logger
}

// Manager is the process-wide session. Every mutation bumps epoch so a
// bootstrap or lookup that straddles a logout discards its result.
type Manager struct {
	mu       sync.RWMutex
	state    State
	token    string
	identity Identity
	epoch    uint64

	client   *api.Client
	captcha  *captcha.Flow
	store    Store
	currency string
	logger   *slog.Logger
}

func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	currency := strings.TrimSpace(opts.Currency)
	if currency == "" {
		currency = "BTC"
	}
	m := &Manager{
		state:    StateAnonymous,
		captcha:  opts.Captcha,
		store:    opts.Store,
		currency: currency,
		logger:   logger,
	}
	m.client = opts.Client.WithTokens(m)
	if m.captcha == nil {
		m.captcha = captcha.NewFlow(opts.Client, logger)
	}
	return m
}

// Client returns an endpoint client that authenticates with this session.
func (m *Manager) Client() *api.Client { return m.client }

func (m *Manager) Captcha() *captcha.Flow { return m.captcha }

// Token reads the current token; callers capture it at dispatch.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Viewer is the trusted identity: known only with a token and a successful
// own-id lookup.
func (m *Manager) Viewer() model.Viewer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" || !m.identity.UserIDKnown {
		return model.Viewer{}
	}
	return model.KnownViewer(m.identity.UserID)
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, Token: m.token, Identity: m.identity.clone()}
}

// Init restores a persisted token. It reports whether the session is
// authenticated afterwards; the identity is not bootstrapped.
func (m *Manager) Init(ctx context.Context) (bool, error) {
	if m.store == nil {
		return false, nil
	}
	token, err := m.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load session token: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.identity = Identity{}
	m.token = strings.TrimSpace(token)
	if m.token == "" {
		m.state = StateAnonymous
		return false, nil
	}
	m.state = StateAuthenticated
	return true, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.epoch++
	m.state = StateAnonymous
	m.token = ""
	m.identity = Identity{}
	m.mu.Unlock()
	m.logger.Info("session signed out")
	if m.store == nil {
		return nil
	}
	if err := m.store.Save(ctx, ""); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

func (m *Manager) Login(ctx context.Context, username, password, answer string) error {
	_, err := m.authenticate(ctx, "/auth", answer, func(sol captcha.Solution) (string, error) {
		return m.client.Login(ctx, api.Credentials{
			Username: username, Password: password,
			CaptchaID: sol.ID, CaptchaAnswer: sol.Answer,
		})
	})
	return err
}

// Register returns the recovery mnemonic and the server's message alongside
// the new session.
func (m *Manager) Register(ctx context.Context, username, password, answer string) (api.RegisterResult, error) {
	var result api.RegisterResult
	_, err := m.authenticate(ctx, "/register", answer, func(sol captcha.Solution) (string, error) {
		res, err := m.client.Register(ctx, api.Credentials{
			Username: username, Password: password,
			CaptchaID: sol.ID, CaptchaAnswer: sol.Answer,
		})
		result = res
		return res.Token, err
	})
	return result, err
}

func (m *Manager) RestoreAccount(ctx context.Context, username, mnemonic, newPassword, answer string) error {
	_, err := m.authenticate(ctx, "/restoreuser", answer, func(sol captcha.Solution) (string, error) {
		return m.client.Restore(ctx, api.RestoreRequest{
			Username: username, Mnemonic: mnemonic, NewPassword: newPassword,
			CaptchaID: sol.ID, CaptchaAnswer: sol.Answer,
		})
	})
	return err
}

func (m *Manager) authenticate(ctx context.Context, op, answer string, exchange func(captcha.Solution) (string, error)) (string, error) {
	sol, err := m.captcha.Solve(answer)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.epoch++
	m.state = StateAuthenticating
	m.token = ""
	m.identity = Identity{}
	epoch := m.epoch
	m.mu.Unlock()

	token, err := exchange(sol)
	token = strings.TrimSpace(token)
	if err == nil && token == "" {
		err = apperr.Application(op, 0, "authentication failed")
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return "", apperr.Application(op, 0, "session changed during sign in")
	}
	if err != nil {
		m.state = StateAnonymous
		m.mu.Unlock()
		if _, rerr := m.captcha.Refresh(ctx); rerr != nil {
			m.logger.Warn("captcha refresh after failed sign in", slog.String("error", rerr.Error()))
		}
		return "", err
	}
	m.state = StateAuthenticated
	m.token = token
	m.mu.Unlock()

	m.logger.Info("session authenticated", slog.String("op", op))
	if m.store != nil {
		if serr := m.store.Save(ctx, token); serr != nil {
			m.logger.Warn("persist session token", slog.String("error", serr.Error()))
		}
	}
	m.Bootstrap(ctx)
	return token, nil
}

// Bootstrap runs own id, then profile, then wallet. Each step gates the next
// and a failure is recorded against its step without clearing earlier data.
func (m *Manager) Bootstrap(ctx context.Context) Identity {
	m.mu.Lock()
	if m.token == "" {
		m.mu.Unlock()
		return Identity{}
	}
	epoch := m.epoch
	m.identity.StepErrors = nil
	m.mu.Unlock()

	id, err := m.client.OwnID(ctx)
	if !m.apply(epoch, func(ident *Identity) {
		if err != nil {
			ident.recordStep(StepOwnID, fmt.Errorf("fetch own id: %w", err))
			return
		}
		ident.UserID, ident.UserIDKnown = id, true
	}) || err != nil {
		return m.Snapshot().Identity
	}

	profile, err := m.client.ProfileByID(ctx, id)
	if !m.apply(epoch, func(ident *Identity) {
		if err != nil {
			ident.recordStep(StepProfile, fmt.Errorf("fetch profile: %w", err))
			return
		}
		ident.Profile, ident.HasProfile = profile, true
	}) || err != nil {
		return m.Snapshot().Identity
	}

	wallet, err := m.client.Wallet(ctx, m.currency)
	m.apply(epoch, func(ident *Identity) {
		if err != nil {
			ident.recordStep(StepWallet, fmt.Errorf("fetch wallet: %w", err))
			return
		}
		ident.Wallet, ident.HasWallet = wallet, true
	})
	return m.Snapshot().Identity
}

// RefreshWallet reloads only the balance step.
func (m *Manager) RefreshWallet(ctx context.Context) (model.Wallet, error) {
	m.mu.RLock()
	epoch := m.epoch
	signedIn := m.token != ""
	m.mu.RUnlock()
	if !signedIn {
		return model.Wallet{}, apperr.Permission("wallet", "sign in first")
	}
	wallet, err := m.client.Wallet(ctx, m.currency)
	m.apply(epoch, func(ident *Identity) {
		if err != nil {
			ident.recordStep(StepWallet, fmt.Errorf("fetch wallet: %w", err))
			return
		}
		delete(ident.StepErrors, StepWallet)
		ident.Wallet, ident.HasWallet = wallet, true
	})
	return wallet, err
}

// ResolveUserID returns the cached own id, looking it up once per session.
func (m *Manager) ResolveUserID(ctx context.Context) (int64, error) {
	m.mu.RLock()
	id, known, signedIn, epoch := m.identity.UserID, m.identity.UserIDKnown, m.token != "", m.epoch
	m.mu.RUnlock()
	if !signedIn {
		return 0, apperr.Permission("/api/ownID", "sign in first")
	}
	if known {
		return id, nil
	}
	id, err := m.client.OwnID(ctx)
	if err != nil {
		return 0, err
	}
	m.apply(epoch, func(ident *Identity) {
		ident.UserID, ident.UserIDKnown = id, true
		delete(ident.StepErrors, StepOwnID)
	})
	return id, nil
}

func (m *Manager) apply(epoch uint64, fn func(*Identity)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return false
	}
	fn(&m.identity)
	return true
}

func (id *Identity) recordStep(step Step, err error) {
	if id.StepErrors == nil {
		id.StepErrors = make(map[Step]error)
	}
	id.StepErrors[step] = err
}
