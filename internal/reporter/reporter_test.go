package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/netlist"
)

const registerChain = `
INPUT in1
INPUT in2
ADD add1 in1 in2
MUL mul1 in1 add1
REG reg1 mul1
ADD add2 reg1 in2
OUTPUT out1 add2
`

func init() {
	color.NoColor = true
}

func makeReport(t *testing.T, src string, scale float64) *Report {
	t.Helper()
	c, err := netlist.ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	result, err := cpm.Analyze(c)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return Build("testdata/cir1.txt", c, result, scale)
}

func TestBuild(t *testing.T) {
	rep := makeReport(t, registerChain, 0)

	if rep.DisplayScale != 1 {
		t.Errorf("expected default scale 1, got %v", rep.DisplayScale)
	}
	if !strings.HasPrefix(rep.ID, "sta-cir1-") {
		t.Errorf("unexpected report id %q", rep.ID)
	}
	if len(rep.Components) != 7 {
		t.Errorf("expected 7 components, got %d", len(rep.Components))
	}
	if rep.Components[0].ID != "in1" {
		t.Errorf("expected components in topological order, got first=%s", rep.Components[0].ID)
	}
	if len(rep.Edges) != 8 {
		t.Errorf("expected 8 edges, got %d", len(rep.Edges))
	}
	if ct := rep.Component("reg1"); ct == nil || !ct.IsCritical || ct.Type != "REG" {
		t.Errorf("unexpected reg1 row: %+v", ct)
	}
	if rep.Component("nope") != nil {
		t.Error("expected nil for unknown component")
	}
}

func TestPrintSummary(t *testing.T) {
	rpt := New(makeReport(t, registerChain, 1))

	var buf bytes.Buffer
	captured := rpt.PrintSummary(&buf)
	output := buf.String()

	if captured != output {
		t.Error("returned summary should match written output")
	}
	if !strings.Contains(output, "in1 → add1 → mul1 → reg1 → add2 → out1") {
		t.Errorf("expected critical path in output, got:\n%s", output)
	}
	if !strings.Contains(output, "Total Delay:    1.60") {
		t.Errorf("expected total delay 1.60, got:\n%s", output)
	}
	if !strings.Contains(output, "reg1") || !strings.Contains(output, "0.10") {
		t.Error("expected per-component delays")
	}
}

func TestPrintSummary_Scaled(t *testing.T) {
	rpt := New(makeReport(t, registerChain, 0.5))

	var buf bytes.Buffer
	rpt.PrintSummary(&buf)

	if !strings.Contains(buf.String(), "Total Delay:    0.80") {
		t.Errorf("expected halved total delay, got:\n%s", buf.String())
	}
	if rpt.Report.TotalDelay != 1.6 {
		t.Errorf("scaling must not change the raw total, got %v", rpt.Report.TotalDelay)
	}
}

func TestPrintSummary_Empty(t *testing.T) {
	rpt := New(makeReport(t, "# empty\n", 1))

	var buf bytes.Buffer
	rpt.PrintSummary(&buf)

	if !strings.Contains(buf.String(), "nothing to analyze") {
		t.Errorf("expected empty-circuit message, got:\n%s", buf.String())
	}
}

func TestPrintSlack(t *testing.T) {
	rpt := New(makeReport(t, registerChain, 1))

	var buf bytes.Buffer
	rpt.PrintSlack(&buf)
	output := buf.String()

	if !strings.Contains(output, "SLACK") {
		t.Error("expected table header")
	}
	if !strings.Contains(output, "⚡") {
		t.Error("expected critical path marker")
	}
	if strings.Count(output, "\n") < 9 {
		t.Errorf("expected one row per component, got:\n%s", output)
	}
}

func TestPrintLevels(t *testing.T) {
	rpt := New(makeReport(t, registerChain, 1))

	var buf bytes.Buffer
	rpt.PrintLevels(&buf)
	output := buf.String()

	if !strings.Contains(output, "Level 0") || !strings.Contains(output, "Level 5") {
		t.Errorf("expected levels 0..5, got:\n%s", output)
	}
	if !strings.Contains(output, "└──→ add1") {
		t.Error("expected edges below producers")
	}
}

func TestWriteDOT(t *testing.T) {
	rpt := New(makeReport(t, registerChain, 1))

	var buf bytes.Buffer
	if err := rpt.WriteDOT(&buf); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	output := buf.String()

	if !strings.HasPrefix(output, "digraph ") {
		t.Error("expected digraph header")
	}
	if !strings.Contains(output, `"mul1" -> "reg1" [color=red, penwidth=2];`) {
		t.Errorf("expected critical edge highlighted, got:\n%s", output)
	}
	if !strings.Contains(output, `"in2" -> "add2";`) {
		t.Errorf("expected plain non-critical edge, got:\n%s", output)
	}
}

func TestJSON(t *testing.T) {
	rpt := New(makeReport(t, registerChain, 1))

	data, err := rpt.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	if got := gjson.GetBytes(data, "total_delay").Float(); got != 1.6 {
		t.Errorf("expected total_delay 1.6, got %v", got)
	}
	if got := gjson.GetBytes(data, "critical_path.#").Int(); got != 6 {
		t.Errorf("expected 6 path entries, got %d", got)
	}
	if got := gjson.GetBytes(data, `components.#(id=="mux1")`); got.Exists() {
		t.Error("unexpected component mux1")
	}
	if got := gjson.GetBytes(data, `components.#(id=="reg1").is_critical`).Bool(); !got {
		t.Error("expected reg1 to be critical")
	}
}

func TestYAML(t *testing.T) {
	rpt := New(makeReport(t, registerChain, 1))

	data, err := rpt.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}

	var decoded Report
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal YAML: %v", err)
	}
	if len(decoded.CriticalPath) != 6 || decoded.CriticalPath[5] != "out1" {
		t.Errorf("unexpected critical path %v", decoded.CriticalPath)
	}
	if len(decoded.Edges) != 8 || decoded.Edges[0].From == "" {
		t.Errorf("unexpected edges %v", decoded.Edges)
	}
}

func TestWriteDOT_EscapesQuotes(t *testing.T) {
	rpt := New(makeReport(t, "INPUT a\"b\nOUTPUT o a\"b\n", 1))

	var buf bytes.Buffer
	if err := rpt.WriteDOT(&buf); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, `"a\"b" [label="a\"b\nINPUT (0.00)"`) {
		t.Errorf("expected escaped node label, got:\n%s", output)
	}
	if !strings.Contains(output, `"a\"b" -> "o"`) {
		t.Errorf("expected escaped edge, got:\n%s", output)
	}
}

func TestBuild_IDsAreSubSecond(t *testing.T) {
	rep := makeReport(t, registerChain, 1)
	stamp := strings.TrimPrefix(rep.ID, "sta-cir1-")
	if len(stamp) != len("2006-01-02-150405.000000") || !strings.Contains(stamp, ".") {
		t.Errorf("expected microsecond timestamp in id, got %q", rep.ID)
	}
}

func TestJSONList(t *testing.T) {
	a := makeReport(t, registerChain, 1)
	b := makeReport(t, "INPUT x\nOUTPUT y x\n", 1)

	data, err := JSONList([]*Report{a, b})
	if err != nil {
		t.Fatalf("JSONList: %v", err)
	}
	if got := gjson.GetBytes(data, "#").Int(); got != 2 {
		t.Errorf("expected 2 reports, got %d", got)
	}
	if got := gjson.GetBytes(data, "1.critical_path.1").String(); got != "y" {
		t.Errorf("expected second report path to end at y, got %q", got)
	}

	empty, err := JSONList(nil)
	if err != nil {
		t.Fatalf("JSONList(nil): %v", err)
	}
	if strings.TrimSpace(string(empty)) != "[]" {
		t.Errorf("expected empty array, got %s", empty)
	}
}

func TestYAMLList(t *testing.T) {
	data, err := YAMLList([]*Report{makeReport(t, registerChain, 1)})
	if err != nil {
		t.Fatalf("YAMLList: %v", err)
	}

	var decoded []Report
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal YAML: %v", err)
	}
	if len(decoded) != 1 || decoded[0].TotalDelay != 1.6 {
		t.Errorf("unexpected decoded reports %+v", decoded)
	}
}
