package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/symbio/internal/commands"
	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/update"
)

// threadLine is one printable entry of a chat room or ticket.
type threadLine struct {
	ID       int64
	SenderID int64
	Body     string
	Kind     model.BodyKind
}

// thread adapts a room or a ticket to the interactive shell.
type thread struct {
	title    string
	lines    func(update.Model) []threadLine
	handlers func(ctx context.Context) commands.Handlers
}

type shell struct {
	a       *app
	th      thread
	printed printedLines
}

// printedLines remembers what the shell has shown. Lines with ids are
// tracked by id. An id-less thread is a full re-listing, so only lines past
// the count already shown are new.
type printedLines struct {
	seen   map[int64]bool
	idless int
}

func (p *printedLines) fresh(lines []threadLine) []threadLine {
	if p.seen == nil {
		p.seen = make(map[int64]bool)
	}
	var out []threadLine
	idless := 0
	for _, l := range lines {
		if l.ID == 0 {
			idless++
			if idless > p.idless {
				out = append(out, l)
			}
			continue
		}
		if !p.seen[l.ID] {
			p.seen[l.ID] = true
			out = append(out, l)
		}
	}
	if idless > p.idless {
		p.idless = idless
	}
	return out
}

// runShell prints the thread, then reads commands from input while polls
// from the scheduler reload it. It returns on /exit, /close, end of input or
// cancellation.
func (a *app) runShell(ctx context.Context, th thread) error {
	s := &shell{a: a, th: th}
	fmt.Fprintf(a.out, "%s %s\n", a.view.Header(th.title), a.view.Muted("(type /help for commands)"))
	s.flush(ctx)

	input := make(chan string)
	go func() {
		defer close(input)
		for {
			line, err := a.in.ReadString('\n')
			if line = strings.TrimRight(line, "\r\n"); line != "" {
				select {
				case input <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	handlers := th.handlers(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-a.engine.C():
			if err := a.dispatch(ctx, update.PollDueMsg{Event: ev}); err != nil {
				s.report(err)
			}
			s.flush(ctx)
		case line, ok := <-input:
			if !ok {
				return nil
			}
			cmd, err := commands.Parse(line)
			if err != nil {
				s.report(err)
				continue
			}
			res, err := commands.Execute(cmd, handlers)
			if err != nil {
				s.report(err)
				continue
			}
			s.flush(ctx)
			if res.Message != "" {
				fmt.Fprintln(a.out, res.Message)
			}
			if res.Leave {
				return nil
			}
		}
	}
}

func (s *shell) report(err error) {
	var ce *commands.CommandError
	if errors.As(err, &ce) {
		fmt.Fprintln(s.a.out, s.a.view.Status(ce.Message, true))
		return
	}
	fmt.Fprintln(s.a.out, s.a.view.Status(err.Error(), true))
}

func (s *shell) flush(ctx context.Context) {
	for _, l := range s.printed.fresh(s.th.lines(s.a.model)) {
		self := s.a.model.Session.Identity.UserIDKnown && s.a.model.Session.Identity.UserID == l.SenderID
		fmt.Fprintln(s.a.out, s.a.view.ThreadLine(s.a.username(ctx, l.SenderID), self, l.Kind, l.Body))
	}
}

// readImage loads path and checks that it decodes as an image.
func readImage(path string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read image: %w", err)
	}
	format, err := model.SniffImage(data)
	if err != nil {
		return "", nil, err
	}
	return format, data, nil
}

// step dispatches msg and turns a status error into a command error.
func (a *app) step(ctx context.Context, msg tea.Msg) (commands.Result, error) {
	if err := a.dispatch(ctx, msg); err != nil {
		return commands.Result{}, err
	}
	return commands.Result{}, nil
}
