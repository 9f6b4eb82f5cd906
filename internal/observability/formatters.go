// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/itype-engine/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// barWidth is the number of cells in a score or probability bar. Bar
	// runes are three bytes each, so this keeps bar lines under the box
	// truncation threshold.
	barWidth = 10
)

// clusterGrid lays the nine core archetypes out by venture phase, mirroring
// the identity heatmap. Names absent from the active catalog render at zero.
var clusterGrid = []struct {
	Label string
	Names [3]string
}{
	{"Ideation Cluster", [3]string{"Visionary", "Strategist", "Storyteller"}},
	{"Activation Cluster", [3]string{"Catalyst", "Apex Innovator", "Integrator"}},
	{"Execution Cluster", [3]string{"Engineer", "Operator", "Experimenter"}},
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// bar renders a value on a 0..100 scale as a fixed-width cell bar.
func bar(value float64) string {
	filled := int(value / types.ScoreMax * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// PrintScores outputs the normalized dimension scores in canonical order.
func (p *Printer) PrintScores(scores types.ScoreVector) {
	if len(scores) == 0 {
		return
	}

	var sb strings.Builder
	for i, dim := range types.Dimensions {
		val := scores[dim]
		sb.WriteString(fmt.Sprintf("%-12s %5.1f  %s", dim, val, bar(val)))
		if i < len(types.Dimensions)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("DIMENSION SCORES", sb.String())
}

// PrintResult outputs the headline assessment card: direct match, stability
// and the shadow archetype.
func (p *Printer) PrintResult(result *types.AssessmentResult) {
	if result == nil || result.Match.Name == "" {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Archetype:  %s\n", result.Match.Name))
	sb.WriteString(fmt.Sprintf("Mismatch:   %.3f\n", result.Match.Mismatch))
	if !result.Report.Empty() {
		sb.WriteString(fmt.Sprintf("Stability:  %.1f%%\n", result.Report.Stability))
		sb.WriteString(fmt.Sprintf("Shadow:     %s (%.1f%%)\n",
			result.Report.Shadow.Name, result.Report.Shadow.Probability))
	}
	if desc := result.Match.Archetype.Description; desc != "" {
		sb.WriteString("\n")
		sb.WriteString(desc)
	}

	p.printBox("ASSESSMENT RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSpectrum outputs the full probability distribution as descending bars.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSpectrum(report *types.StabilityReport) {
	if report == nil || report.Empty() {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO TRIALS CLASSIFIED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	names := make([]string, 0, len(report.Probabilities))
	for name := range report.Probabilities {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := report.Probabilities[names[i]], report.Probabilities[names[j]]
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})

	var sb strings.Builder
	for i, name := range names {
		pct := report.Probabilities[name]
		sb.WriteString(fmt.Sprintf("%-16s %5.1f%%  %s", name, pct, bar(pct)))
		if i < len(names)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("IDENTITY SPECTRUM (%d trials)", report.Trials), sb.String())
}

// PrintGrid outputs the 3x3 cluster grid with per-cell probabilities.
func (p *Printer) PrintGrid(report *types.StabilityReport) {
	if report == nil || report.Empty() {
		return
	}

	var sb strings.Builder
	for i, row := range clusterGrid {
		sb.WriteString(row.Label)
		sb.WriteString("\n")

		var names, pcts strings.Builder
		for _, name := range row.Names {
			names.WriteString(fmt.Sprintf("%-18s", name))
			pcts.WriteString(fmt.Sprintf("%-18s", fmt.Sprintf("%.1f%%", report.Probabilities[name])))
		}
		sb.WriteString("  " + strings.TrimRight(names.String(), " ") + "\n")
		sb.WriteString("  " + strings.TrimRight(pcts.String(), " "))
		if i < len(clusterGrid)-1 {
			sb.WriteString("\n\n")
		}
	}

	p.printBox("IDENTITY GRID", sb.String())
}

// PrintDiagnostics outputs per-archetype distance and energy values in
// catalog order.
func (p *Printer) PrintDiagnostics(diag *types.Diagnostics, catalog *types.Catalog) {
	if diag == nil || catalog == nil || len(diag.Distances) == 0 {
		return
	}

	var sb strings.Builder
	first := true
	for _, name := range catalog.Names() {
		dist, ok := diag.Distances[name]
		if !ok {
			continue
		}
		if !first {
			sb.WriteString("\n")
		}
		first = false
		sb.WriteString(fmt.Sprintf("%-16s dist %7.3f   energy %7.3f", name, dist, diag.Energies[name]))
	}

	p.printBox("MISMATCH DIAGNOSTICS", sb.String())
}
