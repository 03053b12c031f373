package operator

import (
	"fmt"
	"math"
	"strings"
)

// AnalysisRow summarises one operator after (or during) a run.
type AnalysisRow struct {
	Name            string  `json:"name"`
	Weight          float64 `json:"weight"`
	Tuning          string  `json:"tuning,omitempty"`
	Raw             float64 `json:"raw"`
	Adaptable       float64 `json:"adaptable"`
	Tunable         bool    `json:"tunable"`
	Narrowing       bool    `json:"narrowing,omitempty"`
	Count           int64   `json:"count"`
	Accepted        int64   `json:"accepted"`
	Infeasible      int64   `json:"infeasible"`
	Acceptance      float64 `json:"acceptance"`
	Target          float64 `json:"target,omitempty"`
	AdaptationCount uint64  `json:"adaptation_count,omitempty"`
	Band            Band    `json:"-"`
	Suggestion      string  `json:"suggestion,omitempty"`
}

// Analyse builds one row per operator of the schedule.
func Analyse(s *Schedule) []AnalysisRow {
	ops := s.Operators()
	rows := make([]AnalysisRow, 0, len(ops))
	for i, op := range ops {
		st := op.Stats()
		row := AnalysisRow{
			Name:       op.Name(),
			Weight:     s.Weight(i),
			Count:      st.Count(),
			Accepted:   st.Accepted(),
			Infeasible: st.Infeasible(),
			Acceptance: st.AcceptanceRate(),
		}
		row.Band = Assess(row.Acceptance, row.Count)
		if t, ok := op.(Tunable); ok {
			row.Tunable = true
			row.Tuning = t.AdaptableParameterName()
			row.Raw = t.RawParameter()
			row.Adaptable = t.AdaptableParameter()
			row.Narrowing = narrows(t)
		}
		if a, ok := op.(AdaptiveOperator); ok {
			row.Target = a.TargetAcceptance()
			row.AdaptationCount = a.AdaptationCount()
		}
		row.Suggestion = suggest(row)
		rows = append(rows, row)
	}
	return rows
}

func suggest(r AnalysisRow) string {
	if !r.Tunable {
		return ""
	}
	// Low acceptance wants smaller steps.
	smaller, bigger := "decreasing", "increasing"
	if r.Narrowing {
		smaller, bigger = bigger, smaller
	}
	switch r.Band {
	case BandLow:
		return fmt.Sprintf("acceptance is very low, try %s %s", smaller, r.Tuning)
	case BandAcceptableLow:
		return fmt.Sprintf("acceptance is low, try %s %s", smaller, r.Tuning)
	case BandAcceptableHigh:
		return fmt.Sprintf("acceptance is high, try %s %s", bigger, r.Tuning)
	case BandHigh:
		return fmt.Sprintf("acceptance is very high, try %s %s", bigger, r.Tuning)
	}
	return ""
}

// Markdown renders rows as a markdown table.
func Markdown(rows []AnalysisRow) string {
	var b strings.Builder
	b.WriteString("| Operator | Tuning | Count | Pr(accept) | Band | Suggestion |\n")
	b.WriteString("|---|---|---:|---:|---|---|\n")
	for _, r := range rows {
		tuning := "-"
		if r.Tunable {
			tuning = fmt.Sprintf("%s = %s", r.Tuning, formatFloat(r.Raw))
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %.4f | %s | %s |\n",
			r.Name, tuning, r.Count, r.Acceptance, r.Band, r.Suggestion)
	}
	return b.String()
}

func formatFloat(v float64) string {
	if math.Abs(v) >= 1e4 || (v != 0 && math.Abs(v) < 1e-3) {
		return fmt.Sprintf("%.3e", v)
	}
	return fmt.Sprintf("%.4f", v)
}
