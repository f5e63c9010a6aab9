// Package captcha holds the challenge that guards login, registration and
// account restore.
package captcha

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/sandeepkv93/symbio/internal/api"
	"github.com/sandeepkv93/symbio/internal/apperr"
)

type Source interface {
	FetchCaptcha(ctx context.Context) (api.Captcha, error)
}

type Challenge struct {
	ID    string
	Image []byte
}

// Solution pairs a challenge id with the user's answer.
type Solution struct {
	ID     string
	Answer string
}

// Flow keeps at most one live challenge. A challenge is single use: Solve
// consumes it, and a failed attempt calls Refresh.
type Flow struct {
	mu      sync.Mutex
	src     Source
	current *Challenge
	logger  *slog.Logger
}

func NewFlow(src Source, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{src: src, logger: logger}
}

// Current returns the live challenge without fetching.
func (f *Flow) Current() (Challenge, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Challenge{}, false
	}
	return *f.current, true
}

// Fetch returns the live challenge, fetching one when there is none.
func (f *Flow) Fetch(ctx context.Context) (Challenge, error) {
	if ch, ok := f.Current(); ok {
		return ch, nil
	}
	return f.Refresh(ctx)
}

// Refresh discards the live challenge and fetches a new one.
func (f *Flow) Refresh(ctx context.Context) (Challenge, error) {
	f.mu.Lock()
	f.current = nil
	f.mu.Unlock()

	c, err := f.src.FetchCaptcha(ctx)
	if err != nil {
		f.logger.Debug("captcha fetch failed", slog.String("error", err.Error()))
		return Challenge{}, err
	}
	ch := Challenge{ID: c.ID, Image: c.Image}
	f.mu.Lock()
	f.current = &ch
	f.mu.Unlock()
	return ch, nil
}

// Solve consumes the live challenge.
func (f *Flow) Solve(answer string) (Solution, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Solution{}, apperr.Validation("captcha", "captcha answer is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Solution{}, apperr.Validation("captcha", "no captcha challenge loaded")
	}
	sol := Solution{ID: f.current.ID, Answer: answer}
	f.current = nil
	return sol, nil
}
