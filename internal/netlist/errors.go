package netlist

import "fmt"

// MalformedLineError reports a line that lacks a type or id token.
type MalformedLineError struct {
	Line int
	Text string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: malformed component %q: want <TYPE> <id> [inputs...]", e.Line, e.Text)
}

// DuplicateIDError reports a component id defined more than once.
type DuplicateIDError struct {
	ID        string
	Line      int
	FirstLine int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("line %d: component %q already defined on line %d", e.Line, e.ID, e.FirstLine)
}

// DanglingReferenceError reports an input id that no line defines.
type DanglingReferenceError struct {
	ID       string
	Consumer string
	Line     int
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("line %d: component %q reads undefined input %q", e.Line, e.Consumer, e.ID)
}
