package lts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseError reports a malformed resource file.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("lts: %s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("lts: %s: %s", e.Path, e.Msg)
}

// ReadFromFile parses a resource from the line-oriented text format. The
// first non-blank line names the initial state; every further non-blank line
// is `start , label , end`. Lines beginning with '#' are ignored.
func ReadFromFile(path string) (*LTS[string, string], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lts: reading %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Parse(f, path)
}

// Parse reads the text format from r. path is used in error messages only.
func Parse(r io.Reader, path string) (*LTS[string, string], error) {
	l := New[string, string]()
	scanner := bufio.NewScanner(r)
	line := 0
	sawInitial := false
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if !sawInitial {
			l.SetInitialState(text, true)
			sawInitial = true
			continue
		}
		parts := strings.Split(text, ",")
		if len(parts) != 3 {
			return nil, &ParseError{Path: path, Line: line, Msg: fmt.Sprintf("expected `start , label , end`, got %q", text)}
		}
		src := strings.TrimSpace(parts[0])
		label := strings.TrimSpace(parts[1])
		dst := strings.TrimSpace(parts[2])
		if src == "" || label == "" || dst == "" {
			return nil, &ParseError{Path: path, Line: line, Msg: fmt.Sprintf("empty field in %q", text)}
		}
		l.AddTransition(src, label, dst)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("lts: reading %s: %w", path, err)
	}
	if !sawInitial {
		return nil, &ParseError{Path: path, Msg: "no initial state"}
	}
	return l, nil
}

type jsonTransition struct {
	StartState string `json:"startState"`
	Label      string `json:"label"`
	EndState   string `json:"endState"`
}

type jsonLTS struct {
	InitialState string           `json:"initialState"`
	Transitions  []jsonTransition `json:"transitions"`
}

// ReadFromJSONFile parses a resource from the JSON format with atomic string
// labels.
func ReadFromJSONFile(path string) (*LTS[string, string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lts: reading %s: %w", path, err)
	}
	return ParseJSON(data, path)
}

// ParseJSON decodes the JSON resource format. path is used in error
// messages only.
func ParseJSON(data []byte, path string) (*LTS[string, string], error) {
	var doc jsonLTS
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Msg: err.Error()}
	}
	if doc.InitialState == "" {
		return nil, &ParseError{Path: path, Msg: "missing initialState"}
	}
	// State names feed the comma-joined tuple encoding of topology keys, so
	// a comma inside a name is rejected here rather than corrupting keys
	// later. The text format cannot express one at all.
	if strings.Contains(doc.InitialState, ",") {
		return nil, &ParseError{Path: path, Msg: fmt.Sprintf("state name %q contains ','", doc.InitialState)}
	}
	l := New[string, string]()
	l.SetInitialState(doc.InitialState, true)
	for i, t := range doc.Transitions {
		if t.StartState == "" || t.Label == "" || t.EndState == "" {
			return nil, &ParseError{Path: path, Msg: fmt.Sprintf("transition %d has an empty field", i)}
		}
		if strings.Contains(t.StartState, ",") || strings.Contains(t.EndState, ",") {
			return nil, &ParseError{Path: path, Msg: fmt.Sprintf("transition %d has a state name containing ','", i)}
		}
		l.AddTransition(t.StartState, t.Label, t.EndState)
	}
	return l, nil
}
