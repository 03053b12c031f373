package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/sprig/pkg/operator"
)

// Report prints operator analyses, one section per chain.
type Report struct {
	Out io.Writer
	// Rich renders markdown with glamour; otherwise plain markdown is
	// written, which is what pipes and files want.
	Rich   bool
	Width  int
	output *termenv.Output
}

// NewReport creates a report on out.
func NewReport(out io.Writer, rich bool, width int) *Report {
	profile := termenv.Ascii
	if rich {
		profile = termenv.ColorProfile()
	}
	return &Report{
		Out:    out,
		Rich:   rich,
		Width:  width,
		output: termenv.NewOutput(out, termenv.WithProfile(profile)),
	}
}

// Chain writes the analysis of one chain.
func (r *Report) Chain(id string, state uint64, rows []operator.AnalysisRow) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## Chain %s\n\n%d states\n\n", id, state)
	b.WriteString(operator.Markdown(rows))

	text := b.String()
	if r.Rich {
		rendered, err := NewRenderer(r.Width)(text)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		text = rendered
	}
	if _, err := io.WriteString(r.Out, text); err != nil {
		return err
	}
	return r.bands(rows)
}

// bands prints one coloured line per operator whose acceptance is outside
// the good band.
func (r *Report) bands(rows []operator.AnalysisRow) error {
	for _, row := range rows {
		if row.Band == operator.BandGood || row.Band == operator.BandUnknown || row.Suggestion == "" {
			continue
		}
		line := fmt.Sprintf("%-40s %6.3f  %s", row.Name, row.Acceptance, row.Suggestion)
		if _, err := fmt.Fprintln(r.Out, r.output.String(line).Foreground(r.output.Color(BandColor(row.Band)))); err != nil {
			return err
		}
	}
	return nil
}

// BandColor maps an acceptance band to a hex colour.
func BandColor(b operator.Band) string {
	switch b {
	case operator.BandGood:
		return "#22c55e"
	case operator.BandAcceptableLow, operator.BandAcceptableHigh:
		return "#eab308"
	case operator.BandLow, operator.BandHigh:
		return "#ef4444"
	default:
		return "#9ca3af"
	}
}
