package operation

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
)

// Observable is a named atomic action together with the part handles it
// consumes and produces.
type Observable struct {
	Name   string
	Input  []string
	Output []string
}

func (o Observable) String() string {
	return fmt.Sprintf("%s(%s -> %s)", o.Name, strings.Join(o.Input, ","), strings.Join(o.Output, ","))
}

// Equal compares name, inputs and outputs. Input and output lists are
// order-sensitive.
func (o Observable) Equal(other Observable) bool {
	if o.Name != other.Name {
		return false
	}
	return stringsEqual(o.Input, other.Input) && stringsEqual(o.Output, other.Output)
}

// Guard gates a composite operation. The named observable must be realisable
// before any operation step is taken. Expression, when set, is an additional
// predicate over the currently available handles, evaluated with expr-lang.
type Guard struct {
	Name       string
	Input      []string
	Expression string
}

func (g *Guard) Equal(other *Guard) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.Name == other.Name && stringsEqual(g.Input, other.Input) && g.Expression == other.Expression
}

// Observable returns the guard's pre-check as a plain observable.
func (g *Guard) Observable() Observable {
	return Observable{Name: g.Name, Input: g.Input}
}

// Allows evaluates the guard expression against the set of available handles.
// A guard without an expression always allows. The expression sees a
// `handles` list of the currently available handle names.
func (g *Guard) Allows(handles []string) (bool, error) {
	if g == nil || g.Expression == "" {
		return true, nil
	}
	program, err := expr.Compile(g.Expression)
	if err != nil {
		return false, fmt.Errorf("operation: compiling guard expression %q: %w", g.Expression, err)
	}
	out, err := expr.Run(program, map[string]interface{}{"handles": handles})
	if err != nil {
		return false, fmt.Errorf("operation: evaluating guard expression %q: %w", g.Expression, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("operation: guard expression %q is not a predicate", g.Expression)
	}
	return ok, nil
}

// Composite is a recipe transition label: an optional guard, a set of
// observables that may happen in any order, and a list of observables that
// must happen in the given order.
type Composite struct {
	Guard      *Guard
	Parallel   []Observable
	Sequential []Observable
}

// Size is the number of observables the composite requires.
func (c Composite) Size() int {
	return len(c.Parallel) + len(c.Sequential)
}

// Equal is structural: guards by value, sequential as an ordered list,
// parallel as a multiset.
func (c Composite) Equal(other Composite) bool {
	if !c.Guard.Equal(other.Guard) {
		return false
	}
	if len(c.Sequential) != len(other.Sequential) {
		return false
	}
	for i := range c.Sequential {
		if !c.Sequential[i].Equal(other.Sequential[i]) {
			return false
		}
	}
	if len(c.Parallel) != len(other.Parallel) {
		return false
	}
	used := make([]bool, len(other.Parallel))
outer:
	for _, o := range c.Parallel {
		for j, p := range other.Parallel {
			if !used[j] && o.Equal(p) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

func (c Composite) String() string {
	var b strings.Builder
	if c.Guard != nil {
		fmt.Fprintf(&b, "[%s] ", c.Guard.Name)
	}
	for i, o := range c.Parallel {
		if i > 0 {
			b.WriteString(" || ")
		}
		b.WriteString(o.Name)
	}
	if len(c.Parallel) > 0 && len(c.Sequential) > 0 {
		b.WriteString(" ; ")
	}
	for i, o := range c.Sequential {
		if i > 0 {
			b.WriteString(" ; ")
		}
		b.WriteString(o.Name)
	}
	return b.String()
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
