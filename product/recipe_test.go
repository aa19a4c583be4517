package product_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talal0047/pcs/lts"
	"github.com/talal0047/pcs/operation"
	"github.com/talal0047/pcs/product"
)

func TestReadFromJSONFile(t *testing.T) {
	r, err := product.ReadFromJSONFile(filepath.Join("testdata", "recipe.json"))
	require.NoError(t, err)

	initial, ok := r.InitialState()
	require.True(t, ok)
	assert.Equal(t, "r0", initial)
	assert.Equal(t, 3, r.NumStates())
	assert.Equal(t, 2, r.NumTransitions())

	out, err := r.Outgoing("r0")
	require.NoError(t, err)
	require.Len(t, out, 1)
	first := out[0].Label
	assert.Nil(t, first.Guard, "empty guard object denotes no guard")
	require.Len(t, first.Sequential, 2)
	assert.Equal(t, "weld", first.Sequential[0].Name)
	assert.Equal(t, []string{"1"}, first.Sequential[0].Output)
	assert.Equal(t, "paint", first.Sequential[1].Name)
	assert.Equal(t, []string{"1"}, first.Sequential[1].Input)

	out, err = r.Outgoing("r1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	second := out[0].Label
	require.NotNil(t, second.Guard)
	assert.Equal(t, "inspect", second.Guard.Name)
	assert.Len(t, second.Parallel, 2)
	assert.Empty(t, second.Sequential)
}

func TestParseJSONEquality(t *testing.T) {
	data := []byte(`{
		"initialState": "r0",
		"transitions": [
			{"startState":"r0","endState":"r1","label":{
				"guard":{},
				"sequential":[{"name":"weld","input":[],"output":[]}],
				"parallel":[{"name":"a","input":[],"output":[]},{"name":"b","input":[],"output":[]}]
			}}
		]
	}`)
	a, err := product.ParseJSON(data, "a.json")
	require.NoError(t, err)
	b, err := product.ParseJSON(data, "b.json")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestParseJSONGuardExpression(t *testing.T) {
	data := []byte(`{
		"initialState": "r0",
		"transitions": [
			{"startState":"r0","endState":"r1","label":{
				"guard":{"name":"check","input":["1"],"expression":"\"1\" in handles"},
				"sequential":[],
				"parallel":[]
			}}
		]
	}`)
	r, err := product.ParseJSON(data, "guard.json")
	require.NoError(t, err)
	out, err := r.Outgoing("r0")
	require.NoError(t, err)
	require.NotNil(t, out[0].Label.Guard)
	assert.Equal(t, `"1" in handles`, out[0].Label.Guard.Expression)
}

func TestParseJSONMissingInitial(t *testing.T) {
	_, err := product.ParseJSON([]byte(`{"transitions":[]}`), "x.json")
	var parseErr *lts.ParseError
	assert.True(t, errors.As(err, &parseErr), "err = %v", err)
}

func TestParseJSONUnnamedObservable(t *testing.T) {
	data := []byte(`{
		"initialState": "r0",
		"transitions": [
			{"startState":"r0","endState":"r1","label":{
				"guard":{},
				"sequential":[{"name":"","input":[],"output":[]}],
				"parallel":[]
			}}
		]
	}`)
	_, err := product.ParseJSON(data, "x.json")
	var parseErr *lts.ParseError
	assert.True(t, errors.As(err, &parseErr), "err = %v", err)
}

func TestParseJSONInvalid(t *testing.T) {
	_, err := product.ParseJSON([]byte(`{`), "x.json")
	var parseErr *lts.ParseError
	assert.True(t, errors.As(err, &parseErr), "err = %v", err)
}

func TestRecipeEqualDistinguishesComposites(t *testing.T) {
	a := product.New()
	a.SetInitialState("r0", true)
	a.AddTransition("r0", operation.Composite{Sequential: []operation.Observable{{Name: "weld"}}}, "r1")
	b := product.New()
	b.SetInitialState("r0", true)
	b.AddTransition("r0", operation.Composite{Sequential: []operation.Observable{{Name: "paint"}}}, "r1")
	assert.False(t, a.Equal(b))
}
