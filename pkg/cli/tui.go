package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the frame's color pair.
type Theme struct {
	Primary lipgloss.Color // borders, labels, title
	Dim     lipgloss.Color // status and help text
}

// DefaultTheme matches the amber front-panel display of the hardware.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#ffb000"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds the lipgloss styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles derives styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Section is one labeled region of the frame. Content is re-read on
// every render, so a live source (a LogWriter) plugs in directly.
type Section struct {
	Label   string
	Content func() []string
}

// Frame lays out a bordered dashboard: a title row, stacked sections
// that tail their content, and a help line underneath.
type Frame struct {
	Styles   Styles
	Title    string
	Status   string
	Sections []Section
	Help     string
}

// Render draws the frame at the given terminal size.
func (f Frame) Render(width, height int) string {
	if width == 0 || height == 0 {
		return "..."
	}

	bc := f.Styles.Border
	contentWidth := width - 4

	lines := []string{
		bc.Render("╭" + strings.Repeat("─", width-2) + "╮"),
		f.titleRow(bc, width),
		bc.Render("│") + strings.Repeat(" ", width-2) + bc.Render("│"),
	}

	// Split the remaining rows evenly; every section costs one label
	// row on top of its content.
	n := max(len(f.Sections), 1)
	rows := max((height-5-n)/n, 2)

	for _, sec := range f.Sections {
		lines = append(lines, f.sectionRows(bc, sec, rows, width, contentWidth)...)
	}

	lines = append(lines,
		bc.Render("╰"+strings.Repeat("─", width-2)+"╯"),
		f.Styles.Help.Render(f.Help),
	)
	return strings.Join(lines, "\n")
}

func (f Frame) titleRow(bc lipgloss.Style, width int) string {
	title := f.Styles.Title.Render(f.Title)
	status := f.Styles.Help.Render("[" + f.Status + "]")
	pad := max(0, width-5-lipgloss.Width(title)-lipgloss.Width(status))
	return bc.Render("│") + " " + title + " " + status +
		strings.Repeat(" ", pad) + " " + bc.Render("│")
}

// sectionRows draws the label separator then the last rows of content,
// clamped to the frame width.
func (f Frame) sectionRows(bc lipgloss.Style, sec Section, rows, width, contentWidth int) []string {
	label := f.Styles.Label.Render(sec.Label)
	pad := max(0, width-3-lipgloss.Width(label))
	lines := []string{
		bc.Render("├") + bc.Render("─") + label + bc.Render(strings.Repeat("─", pad)) + bc.Render("┤"),
	}

	content := sec.Content()
	start := max(len(content)-rows, 0)

	for i := 0; i < rows; i++ {
		text := ""
		if idx := start + i; idx < len(content) {
			text = content[idx]
		}
		if contentWidth > 1 && lipgloss.Width(text) > contentWidth {
			text = clampWidth(text, contentWidth-1) + "…"
		}
		lines = append(lines, bc.Render("│")+" "+text+
			strings.Repeat(" ", max(0, contentWidth-lipgloss.Width(text)))+" "+bc.Render("│"))
	}
	return lines
}

// clampWidth cuts s to at most width display cells, respecting
// wide runes.
func clampWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	used := 0
	for i, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > width {
			return s[:i]
		}
		used += w
	}
	return s
}
