// Package views styles terminal output. Styles collapse to plain text when
// the destination is not a color terminal.
package views

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/sandeepkv93/symbio/internal/model"
)

const wrapWidth = 80

type Renderer struct {
	tty bool
	lg  *lipgloss.Renderer

	header lipgloss.Style
	status lipgloss.Style
	errs   lipgloss.Style
	self   lipgloss.Style
	other  lipgloss.Style
	muted  lipgloss.Style
}

// New builds a renderer for w. Only an *os.File attached to a terminal gets
// colors and markdown styling.
func New(w io.Writer) *Renderer {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) && os.Getenv("NO_COLOR") == ""
	}
	lg := lipgloss.NewRenderer(w)
	return &Renderer{
		tty:    tty,
		lg:     lg,
		header: lg.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		status: lg.NewStyle().Foreground(lipgloss.Color("10")),
		errs:   lg.NewStyle().Foreground(lipgloss.Color("9")),
		self:   lg.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		other:  lg.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		muted:  lg.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (r *Renderer) Header(text string) string {
	return r.header.Render(text)
}

func (r *Renderer) Status(text string, isError bool) string {
	if isError {
		return r.errs.Render(text)
	}
	return r.status.Render(text)
}

func (r *Renderer) Muted(text string) string {
	return r.muted.Render(text)
}

// ThreadLine renders one chat or ticket message. Images are summarized
// rather than dumped.
func (r *Renderer) ThreadLine(sender string, self bool, kind model.BodyKind, body string) string {
	name := r.other.Render(sender)
	if self {
		name = r.self.Render(sender)
	}
	if kind == model.BodyImage {
		data, format, err := model.DecodeImagePayload(body)
		if err != nil {
			return name + ": " + r.muted.Render("[unreadable image]")
		}
		return name + ": " + r.muted.Render(fmt.Sprintf("[image %s %d bytes]", format, len(data)))
	}
	return name + ": " + body
}

// Markdown renders task descriptions and bios. Plain destinations get the
// source back unchanged.
func (r *Renderer) Markdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if !r.tty {
		return strings.TrimSpace(md)
	}
	style := "light"
	if r.lg.HasDarkBackground() {
		style = "dark"
	}
	tr, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(wrapWidth))
	if err != nil {
		return md
	}
	out, err := tr.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
