package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored critpath banner to stderr.
func PrintLogo() {
	w := os.Stderr
	frame := color.New(color.FgCyan)
	wire := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +-----------------------------+")
	wire.Fprintln(w, "   |  >--[+]--[x]--[R]--[+]-->   |")
	brand.Fprintln(w, "   |   C R I T P A T H           |")
	frame.Fprintln(w, "   +-----------------------------+")
	tag.Fprintf(w, "   %s Static timing analysis\n", Dim("⏱"))
	fmt.Fprintln(w)
}

// typeColors assigns a stable color to each well-known component type.
var typeColors = map[string]func(a ...interface{}) string{
	"INPUT":  BoldGreen,
	"OUTPUT": BoldCyan,
	"ADD":    BoldMagenta,
	"MUL":    BoldYellow,
	"REG":    color.New(color.Bold, color.FgHiBlue).SprintFunc(),
}

// ComponentLabel returns the component id colored by its type.
// Unknown types are rendered in red so they stand out.
func ComponentLabel(id, typ string) string {
	if c, ok := typeColors[typ]; ok {
		return c(id)
	}
	return BoldRed(id)
}

// TypeIcon returns a short glyph for a component type.
func TypeIcon(typ string) string {
	switch typ {
	case "INPUT":
		return Green("▶")
	case "OUTPUT":
		return Cyan("◀")
	case "ADD":
		return Magenta("+")
	case "MUL":
		return Yellow("×")
	case "REG":
		return Cyan("▣")
	default:
		return Red("?")
	}
}

// CriticalMark returns the critical-path marker, or padding when not critical.
func CriticalMark(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// Slack returns a colored slack value: zero slack is red, small slack yellow.
func Slack(slack, total float64) string {
	s := fmt.Sprintf("%.3f", slack)
	switch {
	case slack < 1e-9:
		return Red(s)
	case total > 0 && slack < 0.1*total:
		return Yellow(s)
	default:
		return Green(s)
	}
}
