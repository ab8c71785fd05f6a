package menu

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")
)

// printer writes styled lines to one writer. Styles come from a renderer
// bound to that writer, so they degrade to plain text when it is not a terminal.
type printer struct {
	w       io.Writer
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
	muted   lipgloss.Style
	primary lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		warning: r.NewStyle().Foreground(colorWarning).Bold(true),
		failure: r.NewStyle().Foreground(colorError).Bold(true),
		info:    r.NewStyle().Foreground(colorInfo),
		muted:   r.NewStyle().Foreground(colorMuted),
		primary: r.NewStyle().Foreground(colorPrimary).Bold(true),
	}
}

func (p *printer) Success(format string, args ...any) {
	fmt.Fprint(p.w, p.success.Render("✓ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) Warning(format string, args ...any) {
	fmt.Fprint(p.w, p.warning.Render("⚠ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) Error(format string, args ...any) {
	fmt.Fprint(p.w, p.failure.Render("✗ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) Info(format string, args ...any) {
	fmt.Fprint(p.w, p.info.Render("ℹ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.w, p.muted.Render(fmt.Sprintf(format, args...)))
}

// Line prints an unstyled line; record rows go through here.
func (p *printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Prompt prints text without a newline.
func (p *printer) Prompt(text string) {
	fmt.Fprint(p.w, p.primary.Render(text))
}

// Rule prints a muted horizontal line of the given width.
func (p *printer) Rule(ch string, width int) {
	fmt.Fprintln(p.w, p.muted.Render(strings.Repeat(ch, width)))
}

// Section prints a boxed title between two rules.
func (p *printer) Section(title string, width int) {
	p.Rule("=", width)
	pad := (width - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintln(p.w, p.primary.Render(strings.Repeat(" ", pad)+title))
	p.Rule("=", width)
}
