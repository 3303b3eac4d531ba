package claude

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/joshharrison/critpath/internal/reporter"
)

const systemPrompt = `You are a digital design engineer reviewing a static timing analysis of a small synchronous circuit.
Delays are in abstract time units. REG components are pipeline registers.

Return your answer as JSON with this exact structure:
{
  "summary": "<one paragraph explaining what limits the circuit's speed>",
  "suggestions": [
    {"after": "<component id whose output should get a new register>", "reason": "<short explanation>"}
  ]
}

Only use component ids from the analysis. Prefer few suggestions that split the critical path evenly.
Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.
`

const defaultPromptTemplate = `## Circuit {{.Name}}

{{.Summary}}
## Critical Path Timing
{{range .Path}}- {{.ID}} ({{.Type}}): delay {{delay .Delay}}, arrival {{delay .Arrival}}
{{end}}
Total delay: {{delay .TotalDelay}} time units over {{len .Path}} components ({{.Components}} in the circuit).
{{- if .Registers}}
Existing registers on the path: {{.Registers}}.
{{- end}}
`

// PathEntry is one critical path component as shown in the prompt.
type PathEntry struct {
	ID      string
	Type    string
	Delay   float64
	Arrival float64
}

// PromptData holds the data used to render a prompt template.
type PromptData struct {
	Name       string
	Summary    string
	Path       []PathEntry
	TotalDelay float64
	Components int
	Registers  int
}

func promptDataFor(rep *reporter.Report, summary string) PromptData {
	data := PromptData{
		Name:       rep.Name,
		Summary:    summary,
		TotalDelay: rep.ScaledDelay(),
		Components: len(rep.Components),
	}
	scale := rep.DisplayScale
	if scale == 0 {
		scale = 1
	}
	for _, id := range rep.CriticalPath {
		ct := rep.Component(id)
		if ct == nil {
			continue
		}
		data.Path = append(data.Path, PathEntry{
			ID:      ct.ID,
			Type:    ct.Type,
			Delay:   ct.Delay * scale,
			Arrival: ct.Arrival * scale,
		})
		if ct.Type == "REG" {
			data.Registers++
		}
	}
	return data
}

// RenderPrompt renders the user prompt using either a custom template file or the default.
func RenderPrompt(data PromptData, templatePath string) (string, error) {
	tmplStr := defaultPromptTemplate
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return "", err
		}
		tmplStr = string(content)
	}

	tmpl, err := template.New("prompt").Funcs(template.FuncMap{
		"delay": func(d float64) string { return fmt.Sprintf("%.2f", d) },
	}).Parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
