// Package netlist reads the line-oriented circuit description format:
//
//	# comment
//	<TYPE> <id> [<input-id> ...]
//
// Each non-blank, non-comment line defines one component; the remaining
// tokens name the components whose outputs feed it. Inputs may be defined
// later in the file.
package netlist

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/joshharrison/critpath/internal/delay"
	"github.com/joshharrison/critpath/internal/graph"
)

const commentMarker = "#"

type options struct {
	delays         delay.Table
	implicitInputs bool
	logger         *log.Logger
}

// Option configures Parse.
type Option func(*options)

// WithDelays sets the delay table used to time components.
func WithDelays(t delay.Table) Option {
	return func(o *options) { o.delays = t }
}

// WithImplicitInputs turns references to undefined ids into INPUT
// components instead of failing with DanglingReferenceError.
func WithImplicitInputs() Option {
	return func(o *options) { o.implicitInputs = true }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// reference is an input edge as written, kept to report dangling ids
// against the line that mentioned them.
type reference struct {
	from, to string
	line     int
}

// Parse reads a netlist and returns the circuit it describes.
func Parse(r io.Reader, opts ...Option) (*graph.Circuit, error) {
	o := options{delays: delay.Default(), logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	c := graph.New()
	var refs []reference

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) < 2 {
			return nil, &MalformedLineError{Line: lineNo, Text: line}
		}
		typ, id, inputs := tokens[0], tokens[1], tokens[2:]

		if prev := c.Component(id); prev != nil {
			return nil, &DuplicateIDError{ID: id, Line: lineNo, FirstLine: prev.Line}
		}
		if _, err := c.AddComponent(id, typ, o.delays.DelayOf(typ), lineNo); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		if !o.delays.Known(typ) {
			o.logger.Debug("unknown component type, using default delay", "line", lineNo, "type", typ, "delay", o.delays.Fallback())
		}

		for _, in := range inputs {
			c.AddEdge(in, id)
			refs = append(refs, reference{from: in, to: id, line: lineNo})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read netlist")
	}

	for _, ref := range refs {
		if c.Component(ref.from) != nil {
			continue
		}
		if !o.implicitInputs {
			return nil, &DanglingReferenceError{ID: ref.from, Consumer: ref.to, Line: ref.line}
		}
		o.logger.Debug("materializing implicit input", "id", ref.from, "line", ref.line)
		if _, err := c.AddComponent(ref.from, delay.TypeInput, o.delays.DelayOf(delay.TypeInput), 0); err != nil {
			return nil, errors.Wrapf(err, "implicit input %s", ref.from)
		}
	}

	if err := c.Finalize(); err != nil {
		return nil, errors.Wrap(err, "finalize circuit")
	}

	o.logger.Debug("parsed netlist", "components", c.ComponentCount(), "edges", len(c.Edges()))
	return c, nil
}

// ParseString parses an in-memory netlist.
func ParseString(src string, opts ...Option) (*graph.Circuit, error) {
	return Parse(strings.NewReader(src), opts...)
}

// ParseFile opens, parses and closes the netlist at path.
func ParseFile(path string, opts ...Option) (*graph.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open netlist")
	}
	defer f.Close()

	c, err := Parse(f, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return c, nil
}
