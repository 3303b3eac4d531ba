// Package delay maps component types to propagation delays.
package delay

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// Component types with a fixed entry in the default table.
const (
	TypeInput  = "INPUT"
	TypeOutput = "OUTPUT"
	TypeAdd    = "ADD"
	TypeMul    = "MUL"
	TypeReg    = "REG"
)

// DefaultUnknown is the delay charged to component types the table does not know.
const DefaultUnknown = 1.0

// ErrNegativeDelay is returned when a table entry or default is below zero.
var ErrNegativeDelay = errors.New("negative delay")

// Table is an immutable type → delay mapping. The zero value charges
// every type a delay of zero; use Default for the standard table.
type Table struct {
	delays   map[string]float64
	fallback float64
}

// Default returns the standard delay table.
func Default() Table {
	return Table{
		delays: map[string]float64{
			TypeInput:  0.0,
			TypeOutput: 0.0,
			TypeAdd:    0.5,
			TypeMul:    0.5,
			TypeReg:    0.1, // register setup time
		},
		fallback: DefaultUnknown,
	}
}

// DelayOf returns the delay for a component type, or the table's default
// for types without an entry.
func (t Table) DelayOf(typ string) float64 {
	if d, ok := t.delays[typ]; ok {
		return d
	}
	return t.fallback
}

// Known reports whether typ has an explicit entry.
func (t Table) Known(typ string) bool {
	_, ok := t.delays[typ]
	return ok
}

// Fallback returns the delay charged to unknown types.
func (t Table) Fallback() float64 {
	return t.fallback
}

// Types returns the types with explicit entries, sorted.
func (t Table) Types() []string {
	types := lo.Keys(t.delays)
	sort.Strings(types)
	return types
}

// With returns a copy of t with the given entries added or replaced.
func (t Table) With(overrides map[string]float64) (Table, error) {
	merged := make(map[string]float64, len(t.delays)+len(overrides))
	for typ, d := range t.delays {
		merged[typ] = d
	}
	for typ, d := range overrides {
		if d < 0 {
			return Table{}, fmt.Errorf("type %s: %w (%g)", typ, ErrNegativeDelay, d)
		}
		merged[typ] = d
	}
	return Table{delays: merged, fallback: t.fallback}, nil
}

// WithDefault returns a copy of t whose unknown-type delay is d.
func (t Table) WithDefault(d float64) (Table, error) {
	if d < 0 {
		return Table{}, fmt.Errorf("default: %w (%g)", ErrNegativeDelay, d)
	}
	return Table{delays: t.delays, fallback: d}, nil
}

// ParseJSON applies a JSON delay file on top of the default table.
// The document looks like:
//
//	{"default": 1.0, "delays": {"MUX": 0.7, "ADD": 0.4}}
//
// Both keys are optional.
func ParseJSON(data []byte) (Table, error) {
	if !gjson.ValidBytes(data) {
		return Table{}, fmt.Errorf("invalid delay table JSON")
	}

	t := Default()

	if def := gjson.GetBytes(data, "default"); def.Exists() {
		if def.Type != gjson.Number {
			return Table{}, fmt.Errorf("default: expected number, got %s", def.Type)
		}
		var err error
		if t, err = t.WithDefault(def.Float()); err != nil {
			return Table{}, err
		}
	}

	overrides := make(map[string]float64)
	var parseErr error
	gjson.GetBytes(data, "delays").ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			parseErr = fmt.Errorf("delays.%s: expected number, got %s", key.String(), value.Type)
			return false
		}
		overrides[key.String()] = value.Float()
		return true
	})
	if parseErr != nil {
		return Table{}, parseErr
	}

	return t.With(overrides)
}

// LoadFile reads a JSON delay table from path.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read delay table: %w", err)
	}
	t, err := ParseJSON(data)
	if err != nil {
		return Table{}, fmt.Errorf("parse delay table %s: %w", path, err)
	}
	return t, nil
}
