package operation

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction indicates whether a transfer moves a part into or out of the
// resource performing it.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// Operation is a classified transition label.
type Operation interface {
	Name() string
}

// Task is a generic named action performed by a resource.
type Task string

func (t Task) Name() string { return string(t) }

// Nop is a silent action; a resource may take it at any time without effect.
type Nop struct{}

func (Nop) Name() string { return "nop" }

// Transfer moves the part identified by Handle into or out of a resource.
type Transfer struct {
	Direction Direction
	Handle    uint64
}

func (t Transfer) Name() string {
	return t.Direction.String() + ":" + strconv.FormatUint(t.Handle, 10)
}

// BadLabelError reports a label that looks like a transfer but carries an
// invalid handle suffix.
type BadLabelError struct {
	Label string
	Err   error
}

func (e *BadLabelError) Error() string {
	return fmt.Sprintf("operation: bad label %q: %v", e.Label, e.Err)
}

func (e *BadLabelError) Unwrap() error { return e.Err }

// Parse classifies a raw transition label. Labels of the form "in:<n>" and
// "out:<n>" become transfers, "nop" becomes the silent action, and anything
// else is a named task.
func Parse(label string) (Operation, error) {
	switch {
	case strings.HasPrefix(label, "in:"):
		h, err := strconv.ParseUint(label[len("in:"):], 10, 64)
		if err != nil {
			return nil, &BadLabelError{Label: label, Err: err}
		}
		return Transfer{Direction: In, Handle: h}, nil
	case strings.HasPrefix(label, "out:"):
		h, err := strconv.ParseUint(label[len("out:"):], 10, 64)
		if err != nil {
			return nil, &BadLabelError{Label: label, Err: err}
		}
		return Transfer{Direction: Out, Handle: h}, nil
	case label == "nop":
		return Nop{}, nil
	}
	return Task(label), nil
}

// ParseTransfer reports whether the label denotes a well-formed transfer.
func ParseTransfer(label string) (Transfer, bool) {
	op, err := Parse(label)
	if err != nil {
		return Transfer{}, false
	}
	t, ok := op.(Transfer)
	return t, ok
}
