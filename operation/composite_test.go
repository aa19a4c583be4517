package operation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talal0047/pcs/operation"
)

func obs(name string, input, output []string) operation.Observable {
	return operation.Observable{Name: name, Input: input, Output: output}
}

func TestCompositeEqualParallelIsMultiset(t *testing.T) {
	a := operation.Composite{Parallel: []operation.Observable{obs("a", nil, nil), obs("b", nil, nil)}}
	b := operation.Composite{Parallel: []operation.Observable{obs("b", nil, nil), obs("a", nil, nil)}}
	assert.True(t, a.Equal(b), "parallel order must not matter")

	c := operation.Composite{Parallel: []operation.Observable{obs("a", nil, nil), obs("a", nil, nil)}}
	d := operation.Composite{Parallel: []operation.Observable{obs("a", nil, nil), obs("b", nil, nil)}}
	assert.False(t, c.Equal(d), "multiset counts must match")
}

func TestCompositeEqualSequentialIsOrdered(t *testing.T) {
	a := operation.Composite{Sequential: []operation.Observable{obs("weld", nil, nil), obs("paint", nil, nil)}}
	b := operation.Composite{Sequential: []operation.Observable{obs("paint", nil, nil), obs("weld", nil, nil)}}
	assert.False(t, a.Equal(b), "sequential order must matter")
	assert.True(t, a.Equal(a))
}

func TestCompositeEqualGuard(t *testing.T) {
	withGuard := operation.Composite{Guard: &operation.Guard{Name: "check", Input: []string{"1"}}}
	without := operation.Composite{}
	assert.False(t, withGuard.Equal(without))
	assert.True(t, withGuard.Equal(operation.Composite{Guard: &operation.Guard{Name: "check", Input: []string{"1"}}}))
	assert.False(t, withGuard.Equal(operation.Composite{Guard: &operation.Guard{Name: "check", Input: []string{"2"}}}))
}

func TestObservableEqualInputsOrdered(t *testing.T) {
	a := obs("op", []string{"1", "2"}, nil)
	b := obs("op", []string{"2", "1"}, nil)
	assert.False(t, a.Equal(b))
}

func TestGuardAllows(t *testing.T) {
	g := &operation.Guard{Name: "check", Expression: `len(handles) > 0 && "1" in handles`}
	ok, err := g.Allows([]string{"1", "2"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Allows(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGuardAllowsNoExpression(t *testing.T) {
	var g *operation.Guard
	ok, err := g.Allows(nil)
	require.NoError(t, err)
	assert.True(t, ok, "nil guard always allows")

	g = &operation.Guard{Name: "check"}
	ok, err = g.Allows(nil)
	require.NoError(t, err)
	assert.True(t, ok, "guard without expression always allows")
}

func TestGuardAllowsBadExpression(t *testing.T) {
	g := &operation.Guard{Name: "check", Expression: `len(handles)`}
	_, err := g.Allows([]string{"1"})
	require.Error(t, err, "non-boolean expression must be rejected")
}
