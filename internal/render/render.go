// Package render writes dashboard views to a terminal with lipgloss, or as
// indented JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/ppiankov/manifesto/internal/palette"
)

// Color modes accepted by Options.Color
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// barWidth is the width of the longest bar in bar charts
const barWidth = 40

// Options configures a Renderer
type Options struct {
	JSON    bool
	Color   string           // auto, always, never
	Palette *palette.Palette // nil uses the default palette
}

// Renderer writes views to w
type Renderer struct {
	w       io.Writer
	json    bool
	lg      *lipgloss.Renderer
	palette *palette.Palette

	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	faint  lipgloss.Style
	border lipgloss.Style
}

// New creates a Renderer for w
func New(w io.Writer, opts Options) *Renderer {
	if opts.Palette == nil {
		opts.Palette = palette.New()
	}
	lg := lipgloss.NewRenderer(w)
	lg.SetColorProfile(Profile(w, opts.Color))

	return &Renderer{
		w:       w,
		json:    opts.JSON,
		lg:      lg,
		palette: opts.Palette,
		title:   lg.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		header:  lg.NewStyle().Bold(true).Padding(0, 1),
		cell:    lg.NewStyle().Padding(0, 1),
		faint:   lg.NewStyle().Faint(true),
		border:  lg.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Profile picks the color profile for w. Auto mode colors terminals only.
func Profile(w io.Writer, mode string) termenv.Profile {
	switch mode {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		return termenv.TrueColor
	}
	f, ok := w.(*os.File)
	if !ok {
		return termenv.Ascii
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}

// JSON reports whether the renderer emits JSON
func (r *Renderer) JSON() bool {
	return r.json
}

// WriteJSON writes v as indented JSON
func (r *Renderer) WriteJSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Title writes a section heading
func (r *Renderer) Title(format string, args ...any) error {
	if r.json {
		return nil
	}
	_, err := fmt.Fprintln(r.w, r.title.Render(fmt.Sprintf(format, args...)))
	return err
}

func (r *Renderer) println(s string) error {
	_, err := fmt.Fprintln(r.w, s)
	return err
}

func (r *Renderer) table(headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.header
			}
			return r.cell
		})
	return r.println(t.Render())
}

// partyStyle colors text with the party's palette color
func (r *Renderer) partyStyle(party string) lipgloss.Style {
	return r.lg.NewStyle().Bold(true).Foreground(lipgloss.Color(r.palette.Color(party)))
}

// bar draws value scaled against maxValue in color
func (r *Renderer) bar(value, maxValue int, color string) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	n := value * barWidth / maxValue
	if n == 0 {
		n = 1
	}
	return r.lg.NewStyle().Foreground(lipgloss.Color(color)).Render(strings.Repeat("█", n))
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
