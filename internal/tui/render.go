// Package tui renders entries in the terminal: a one-line-per-entry list,
// a glamour detail view and an interactive browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
	"github.com/0xcro3dile/snapsolve/internal/domain/usecases"
	"github.com/0xcro3dile/snapsolve/internal/textfmt"
)

// TimeLayout is how entry timestamps are shown in the terminal.
const TimeLayout = "2006-01-02 15:04:05"

// Markdown assembles an entry's sections into one markdown document.
func Markdown(e entities.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", e.CreatedAt().Format(TimeLayout))
	fmt.Fprintf(&sb, "`%s`", e.Screenshot)
	if e.VisionModel != "" {
		fmt.Fprintf(&sb, " · %s", e.VisionModel)
	}
	if e.CodingModel != "" {
		fmt.Fprintf(&sb, " → %s", e.CodingModel)
	}
	sb.WriteString("\n\n")

	for _, sec := range e.Sections() {
		fmt.Fprintf(&sb, "## %s\n\n", sec.Title)
		if strings.TrimSpace(sec.Text) == "" {
			sb.WriteString("_No description available_\n\n")
			continue
		}
		sb.WriteString(sec.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Render draws an entry with glamour at the given width. If glamour fails
// the line formatter's plain rendering is used instead.
func Render(e entities.Entry, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err == nil {
		if out, err := r.Render(Markdown(e)); err == nil {
			return out
		}
	}
	return Plain(e)
}

// Plain renders an entry without ANSI styling.
func Plain(e entities.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n\n", e.CreatedAt().Format(TimeLayout), e.Screenshot)
	for _, sec := range e.Sections() {
		sb.WriteString(strings.ToUpper(sec.Title))
		sb.WriteString("\n\n")
		sb.WriteString(textfmt.Plain(textfmt.Parse(sec.Text)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Line is the single-line summary of an entry used by list views.
func Line(e entities.Entry, width int) string {
	limit := width - len(TimeLayout) - 14
	if limit < 20 {
		limit = 20
	}
	text := strings.Join(strings.Fields(e.Primary()), " ")
	return fmt.Sprintf("%s  %s %s",
		timeStyle.Render(e.CreatedAt().Format(TimeLayout)),
		modeStyle.Render(string(e.Mode)),
		usecases.Preview(text, limit),
	)
}

// List renders entries one per line.
func List(entries []entities.Entry, width int) string {
	if len(entries) == 0 {
		return dimStyle.Render("No entries yet.") + "\n"
	}
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(Line(e, width))
		sb.WriteString("\n")
	}
	return sb.String()
}
