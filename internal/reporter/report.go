package reporter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
)

// idTimeLayout stamps report ids down to the microsecond.
const idTimeLayout = "2006-01-02-150405.000000"

// Report is the serializable outcome of analyzing one circuit. It is what
// the viewer renders, the history stores and the explain command sends.
type Report struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	CreatedAt    time.Time         `json:"created_at" yaml:"created_at"`
	TotalDelay   float64           `json:"total_delay" yaml:"total_delay"` // raw, unscaled
	DisplayScale float64           `json:"display_scale" yaml:"display_scale"`
	CriticalPath []string          `json:"critical_path" yaml:"critical_path"`
	Components   []ComponentTiming `json:"components" yaml:"components"` // topological order
	Edges        []graph.Edge      `json:"edges" yaml:"edges"`
	Levels       []LevelSummary    `json:"levels" yaml:"levels"`
}

// ComponentTiming is the per-component slice of the analysis.
type ComponentTiming struct {
	ID         string  `json:"id" yaml:"id"`
	Type       string  `json:"type" yaml:"type"`
	Delay      float64 `json:"delay" yaml:"delay"`
	Arrival    float64 `json:"arrival" yaml:"arrival"`
	Required   float64 `json:"required" yaml:"required"`
	Slack      float64 `json:"slack" yaml:"slack"`
	Level      int     `json:"level" yaml:"level"`
	IsCritical bool    `json:"is_critical" yaml:"is_critical"`
}

// LevelSummary lists the components at one logic depth.
type LevelSummary struct {
	Index      int      `json:"index" yaml:"index"`
	IDs        []string `json:"ids" yaml:"ids"`
	IsCritical bool     `json:"is_critical" yaml:"is_critical"`
}

// Build assembles a Report from a circuit and its analysis. A scale of
// zero is treated as 1.
func Build(name string, c *graph.Circuit, result *cpm.Result, scale float64) *Report {
	if scale == 0 {
		scale = 1
	}

	now := time.Now()
	rep := &Report{
		ID:           fmt.Sprintf("sta-%s-%s", slug(name), now.Format(idTimeLayout)),
		Name:         name,
		CreatedAt:    now,
		TotalDelay:   result.TotalDelay,
		DisplayScale: scale,
		CriticalPath: append([]string(nil), result.CriticalPath...),
		Edges:        c.Edges(),
	}

	for _, id := range result.TopoOrder {
		comp := c.Components[id]
		nt := result.Nodes[id]
		rep.Components = append(rep.Components, ComponentTiming{
			ID:         id,
			Type:       comp.Type,
			Delay:      nt.Delay,
			Arrival:    nt.Arrival,
			Required:   nt.Required,
			Slack:      nt.Slack,
			Level:      nt.Level,
			IsCritical: nt.IsCritical,
		})
	}

	rep.Levels = lo.Map(result.Levels, func(l cpm.Level, _ int) LevelSummary {
		return LevelSummary{Index: l.Index, IDs: l.IDs, IsCritical: l.IsCritical}
	})

	return rep
}

// Component returns the timing row for id, or nil.
func (r *Report) Component(id string) *ComponentTiming {
	for i := range r.Components {
		if r.Components[i].ID == id {
			return &r.Components[i]
		}
	}
	return nil
}

// ScaledDelay returns the total delay converted to display units.
func (r *Report) ScaledDelay() float64 {
	return r.scale(r.TotalDelay)
}

func (r *Report) scale(v float64) float64 {
	if r.DisplayScale == 0 {
		return v
	}
	return v * r.DisplayScale
}

// slug turns a file path into an id-friendly name.
func slug(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." {
		return "circuit"
	}
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, base)
}
