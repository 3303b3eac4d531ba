package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/critpath/internal/ui"
)

// Reporter renders a Report for terminals and tools.
type Reporter struct {
	Report *Report
}

// New creates a new Reporter.
func New(rep *Report) *Reporter {
	return &Reporter{Report: rep}
}

// PrintSummary writes the critical path, its total delay and the delay of
// each component on it. The output is also returned as a string for reuse
// (e.g. as context for narrative explanations).
func (r *Reporter) PrintSummary(w io.Writer) string {
	var b strings.Builder
	mw := io.MultiWriter(w, &b)
	rep := r.Report

	fmt.Fprintf(mw, "\n⏱  %s %s\n", ui.BoldCyan("Circuit:"), ui.Bold(rep.Name))
	fmt.Fprintf(mw, "%s\n", ui.Cyan("══════════════════════════"))

	if len(rep.CriticalPath) == 0 {
		fmt.Fprintf(mw, "%s\n", ui.Dim("No components, nothing to analyze."))
		fmt.Fprintf(mw, "Total Delay:    %s\n", ui.Bold(formatDelay(0)))
		return b.String()
	}

	fmt.Fprintf(mw, "Critical Path:  %s\n", ui.BoldYellow(strings.Join(rep.CriticalPath, " → ")))
	fmt.Fprintf(mw, "Total Delay:    %s time units\n", ui.Bold(formatDelay(rep.ScaledDelay())))
	fmt.Fprintf(mw, "Components:     %d (%d on critical path)\n", len(rep.Components), len(rep.CriticalPath))
	fmt.Fprintln(mw, "Components in Critical Path with Delays:")
	for _, id := range rep.CriticalPath {
		ct := rep.Component(id)
		if ct == nil {
			continue
		}
		fmt.Fprintf(mw, "  %s %-10s %-7s %s time units\n",
			ui.TypeIcon(ct.Type), ui.ComponentLabel(ct.ID, ct.Type), ct.Type, formatDelay(rep.scale(ct.Delay)))
	}

	return b.String()
}

// PrintSlack writes the per-component timing table in topological order.
func (r *Reporter) PrintSlack(w io.Writer) {
	rep := r.Report
	fmt.Fprintf(w, "\n%s\n", ui.BoldCyan("Timing"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("──────────────────────────────────────────────────────"))
	fmt.Fprintf(w, "  %-12s %-8s %8s %8s %8s  %s\n", "COMPONENT", "TYPE", "DELAY", "ARRIVAL", "REQUIRED", "SLACK")

	total := rep.ScaledDelay()
	for _, ct := range rep.Components {
		id := ct.ID
		if len(id) > 12 {
			id = id[:9] + "..."
		}
		fmt.Fprintf(w, "%s %-12s %-8s %8s %8s %8s  %s\n",
			ui.CriticalMark(ct.IsCritical), id, ct.Type,
			formatDelay(rep.scale(ct.Delay)),
			formatDelay(rep.scale(ct.Arrival)),
			formatDelay(rep.scale(ct.Required)),
			ui.Slack(rep.scale(ct.Slack), total))
	}
}

// PrintLevels writes an ASCII view of the circuit grouped by logic depth.
func (r *Reporter) PrintLevels(w io.Writer) {
	rep := r.Report
	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Circuit Dependency Graph"))
	fmt.Fprintln(w, ui.Cyan("════════════════════════"))
	fmt.Fprintln(w)

	consumers := make(map[string][]string)
	for _, e := range rep.Edges {
		consumers[e.From] = append(consumers[e.From], e.To)
	}

	for _, lvl := range rep.Levels {
		fmt.Fprintf(w, "%s Level %d %s\n", ui.Cyan("──"), lvl.Index, ui.Cyan("──────────────────────────────"))
		for _, id := range lvl.IDs {
			ct := rep.Component(id)
			if ct == nil {
				continue
			}
			fmt.Fprintf(w, "  %s [%s] %s %s\n", ui.CriticalMark(ct.IsCritical), ui.ComponentLabel(id, ct.Type),
				ct.Type, ui.Dim(fmt.Sprintf("(%s)", formatDelay(rep.scale(ct.Delay)))))

			for _, to := range consumers[id] {
				fmt.Fprintf(w, "      %s %s\n", ui.Dim("└──→"), ui.Magenta(to))
			}
		}
		fmt.Fprintln(w)
	}
}

// WriteDOT writes the circuit as a Graphviz digraph with the critical path in red.
func (r *Reporter) WriteDOT(w io.Writer) error {
	rep := r.Report
	onPath := make(map[string]int, len(rep.CriticalPath))
	for i, id := range rep.CriticalPath {
		onPath[id] = i
	}

	if _, err := fmt.Fprintf(w, "digraph \"%s\" {\n", dotEscape(rep.Name)); err != nil {
		return err
	}
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	for _, ct := range rep.Components {
		attrs := fmt.Sprintf(`label="%s\n%s (%s)"`, dotEscape(ct.ID), dotEscape(ct.Type), formatDelay(rep.scale(ct.Delay)))
		if ct.IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  \"%s\" [%s];\n", dotEscape(ct.ID), attrs)
	}

	fmt.Fprintln(w)

	for _, e := range rep.Edges {
		style := ""
		i, fromOK := onPath[e.From]
		j, toOK := onPath[e.To]
		if fromOK && toOK && j == i+1 {
			style = ` [color=red, penwidth=2]`
		}
		fmt.Fprintf(w, "  \"%s\" -> \"%s\"%s;\n", dotEscape(e.From), dotEscape(e.To), style)
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

// JSON returns the machine-readable report.
func (r *Reporter) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Report, "", "  ")
}

// YAML returns the report as YAML.
func (r *Reporter) YAML() ([]byte, error) {
	return yaml.Marshal(r.Report)
}

// JSONList encodes several reports as one JSON array.
func JSONList(reports []*Report) ([]byte, error) {
	if reports == nil {
		reports = []*Report{}
	}
	return json.MarshalIndent(reports, "", "  ")
}

// YAMLList encodes several reports as a YAML sequence.
func YAMLList(reports []*Report) ([]byte, error) {
	if reports == nil {
		reports = []*Report{}
	}
	return yaml.Marshal(reports)
}

// dotEscape makes s safe inside a double-quoted DOT string.
func dotEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func formatDelay(d float64) string {
	return fmt.Sprintf("%.2f", d)
}
