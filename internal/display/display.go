// Package display prints the startup banner and bookmark listings to the
// terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Dimmed zinc for ids, hints and metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))
)

// Printer writes styled lines to out.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a printer. A non-positive width uses the terminal
// width.
func NewPrinter(out io.Writer, width int) *Printer {
	return &Printer{out: out, width: width}
}

// Startup prints the banner and where the server listens.
func (p *Printer) Startup(addr, source, store string) {
	fmt.Fprint(p.out, RenderBanner(p.width))
	fmt.Fprintln(p.out, primaryStyle.Render("listening on "+addr))
	fmt.Fprintln(p.out, secondaryStyle.Render(fmt.Sprintf("recipes: %s · bookmarks: %s", source, store)))
}

// Bookmarks prints one line per bookmark.
func (p *Printer) Bookmarks(bookmarks []*domain.Recipe) {
	if len(bookmarks) == 0 {
		fmt.Fprintln(p.out, secondaryStyle.Render("No bookmarks yet."))
		return
	}
	fmt.Fprintln(p.out, titleStyle.Render(fmt.Sprintf("Bookmarks (%d)", len(bookmarks))))
	for i, r := range bookmarks {
		fmt.Fprintln(p.out, FormatBookmark(i+1, r))
	}
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.out, urgentStyle.Render(fmt.Sprintf(format, args...)))
}

// FormatBookmark renders one numbered listing line.
func FormatBookmark(n int, r *domain.Recipe) string {
	var b strings.Builder
	b.WriteString(primaryStyle.Render(fmt.Sprintf("%2d. %s", n, r.Title)))
	if r.Publisher != "" {
		b.WriteString(secondaryStyle.Render(" by " + r.Publisher))
	}
	if r.UserGenerated() {
		b.WriteString(userStyle.Render(" (yours)"))
	}
	b.WriteString(secondaryStyle.Render(fmt.Sprintf("  %d min · %d servings · %s", r.CookingTime, r.Servings, r.ID)))
	return b.String()
}
