// Package product models the desired product as a recipe: an LTS whose
// transition labels are composite operations over the resources.
package product

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/talal0047/pcs/lts"
	"github.com/talal0047/pcs/operation"
)

// Recipe is an LTS with composite-operation labels.
type Recipe struct {
	*lts.LTS[string, operation.Composite]
}

// New returns an empty recipe.
func New() *Recipe {
	return &Recipe{LTS: lts.New[string, operation.Composite]()}
}

// Equal compares two recipes structurally.
func (r *Recipe) Equal(other *Recipe) bool {
	return r.LTS.Equal(other.LTS, func(a, b operation.Composite) bool { return a.Equal(b) })
}

type jsonObservable struct {
	Name   string   `json:"name"`
	Input  []string `json:"input"`
	Output []string `json:"output"`
}

type jsonGuard struct {
	Name       string   `json:"name"`
	Input      []string `json:"input"`
	Expression string   `json:"expression"`
}

type jsonLabel struct {
	Guard      jsonGuard        `json:"guard"`
	Sequential []jsonObservable `json:"sequential"`
	Parallel   []jsonObservable `json:"parallel"`
}

type jsonRecipeTransition struct {
	StartState string    `json:"startState"`
	EndState   string    `json:"endState"`
	Label      jsonLabel `json:"label"`
}

type jsonRecipe struct {
	InitialState string                 `json:"initialState"`
	Transitions  []jsonRecipeTransition `json:"transitions"`
}

// ReadFromJSONFile parses a recipe document.
func ReadFromJSONFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("product: reading %s: %w", path, err)
	}
	return ParseJSON(data, path)
}

// ParseJSON decodes the recipe JSON format. An empty guard object denotes
// "no guard"; sequential and parallel lists may be empty. path is used in
// error messages only.
func ParseJSON(data []byte, path string) (*Recipe, error) {
	var doc jsonRecipe
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &lts.ParseError{Path: path, Msg: err.Error()}
	}
	if doc.InitialState == "" {
		return nil, &lts.ParseError{Path: path, Msg: "missing initialState"}
	}
	r := New()
	r.SetInitialState(doc.InitialState, true)
	for i, t := range doc.Transitions {
		if t.StartState == "" || t.EndState == "" {
			return nil, &lts.ParseError{Path: path, Msg: fmt.Sprintf("transition %d has an empty state", i)}
		}
		co := operation.Composite{}
		if t.Label.Guard.Name != "" {
			co.Guard = &operation.Guard{
				Name:       t.Label.Guard.Name,
				Input:      t.Label.Guard.Input,
				Expression: t.Label.Guard.Expression,
			}
		}
		for _, o := range t.Label.Sequential {
			if o.Name == "" {
				return nil, &lts.ParseError{Path: path, Msg: fmt.Sprintf("transition %d has an unnamed sequential observable", i)}
			}
			co.Sequential = append(co.Sequential, operation.Observable{Name: o.Name, Input: o.Input, Output: o.Output})
		}
		for _, o := range t.Label.Parallel {
			if o.Name == "" {
				return nil, &lts.ParseError{Path: path, Msg: fmt.Sprintf("transition %d has an unnamed parallel observable", i)}
			}
			co.Parallel = append(co.Parallel, operation.Observable{Name: o.Name, Input: o.Input, Output: o.Output})
		}
		r.AddTransition(t.StartState, co, t.EndState)
	}
	return r, nil
}
