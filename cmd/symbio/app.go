package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sandeepkv93/symbio/internal/api"
	"github.com/sandeepkv93/symbio/internal/config"
	"github.com/sandeepkv93/symbio/internal/scheduler"
	"github.com/sandeepkv93/symbio/internal/session"
	"github.com/sandeepkv93/symbio/internal/storage"
	"github.com/sandeepkv93/symbio/internal/transport"
	"github.com/sandeepkv93/symbio/internal/update"
	"github.com/sandeepkv93/symbio/internal/views"
)

// app is one CLI invocation: a model driven through update.Run plus the
// resources behind it.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	repo     *storage.SQLiteRepository
	engine   *scheduler.Engine
	model    update.Model
	view     *views.Renderer

	in  *bufio.Reader
	out io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) (*app, error) {
	registry := prometheus.NewRegistry()
	hc, err := transport.NewHTTPClient(cfg.Proxy, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	tr, err := transport.New(transport.Options{
		BaseURL:    cfg.BaseURL,
		HTTPClient: hc,
		Logger:     logger,
		Metrics:    transport.NewMetrics(registry),
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, registry: registry, view: views.New(out), in: bufio.NewReader(in), out: out}

	var store session.Store
	if cfg.StatePath != "" {
		if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create state dir: %w", err)
			}
		}
		repo, err := storage.OpenSQLite(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		a.repo = repo
		store = storage.NewTokenStore(repo)
	} else {
		store = session.NewMemoryStore("")
	}

	sess := session.NewManager(session.Options{
		Client:   api.New(tr, logger),
		Store:    store,
		Currency: cfg.Wallet.Currency,
		Logger:   logger,
	})
	svc := update.NewServices(sess, cfg.Wallet.Currency, logger)
	svc.PollInterval = cfg.Poll.Interval
	if a.repo != nil {
		svc.Marks = a.repo
	}
	a.engine = scheduler.NewEngine(cfg.Poll.Buffer)
	a.engine.Start()
	svc.Scheduler = a.engine

	a.model = update.NewModel(ctx, svc)
	if err := a.dispatch(ctx, update.InitSessionMsg{}); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() error {
	a.engine.Stop()
	var errs []error
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// dispatch runs msgs to quiescence. A status error left by them is returned.
func (a *app) dispatch(ctx context.Context, msgs ...tea.Msg) error {
	in := append([]tea.Msg{update.ClearStatusMsg{}}, msgs...)
	m, err := update.Run(ctx, a.model, in...)
	a.model = m
	if err != nil {
		return err
	}
	if m.Status.IsError {
		return errors.New(m.Status.Text)
	}
	return nil
}

func (a *app) requireSession() error {
	if !a.model.Session.Authenticated() {
		return errors.New("not signed in; run \"symbio login\" first")
	}
	return nil
}

func (a *app) status() {
	if text := a.model.Status.Text; text != "" && !a.model.Status.IsError {
		fmt.Fprintln(a.out, a.view.Status(text, false))
	}
}

// prompt reads one line; the current value is kept when the line is blank.
func (a *app) prompt(label, current string) (string, error) {
	if current != "" {
		return current, nil
	}
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}

func (a *app) username(ctx context.Context, userID int64) string {
	if v := a.model.Session.Identity; v.UserIDKnown && v.UserID == userID {
		return "you"
	}
	return a.model.Services().Directory.Username(ctx, userID)
}
