package lts_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talal0047/pcs/lts"
)

func TestReadFromFile(t *testing.T) {
	l, err := lts.ReadFromFile(filepath.Join("testdata", "lts_1.txt"))
	if err != nil {
		t.Fatal(err)
	}
	initial, ok := l.InitialState()
	if !ok || initial != "s0" {
		t.Errorf("initial = %q, want s0", initial)
	}
	if n := l.NumStates(); n != 3 {
		t.Errorf("NumStates = %d, want 3", n)
	}
	if n := l.NumTransitions(); n != 2 {
		t.Errorf("NumTransitions = %d, want 2", n)
	}
	want := lts.NewWithInitial[string, string]("s0")
	want.AddTransition("s0", "a1", "s1")
	want.AddTransition("s1", "a2", "s2")
	if !l.Equal(want, eqString) {
		t.Error("parsed structure differs from expected")
	}
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	l, err := lts.ReadFromFile(filepath.Join("testdata", "lts_comments.txt"))
	if err != nil {
		t.Fatal(err)
	}
	initial, _ := l.InitialState()
	if initial != "idle" {
		t.Errorf("initial = %q, want idle", initial)
	}
	if n := l.NumTransitions(); n != 3 {
		t.Errorf("NumTransitions = %d, want 3", n)
	}
	out, err := l.Outgoing("pumping")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("pumping should have 2 outgoing transitions, got %d", len(out))
	}
}

func TestParseMalformedLine(t *testing.T) {
	_, err := lts.Parse(strings.NewReader("s0\ns0,a\n"), "bad.txt")
	var parseErr *lts.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want ParseError", err)
	}
	if parseErr.Line != 2 {
		t.Errorf("Line = %d, want 2", parseErr.Line)
	}
	if parseErr.Path != "bad.txt" {
		t.Errorf("Path = %q, want bad.txt", parseErr.Path)
	}
}

func TestParseEmptyInput(t *testing.T) {
	_, err := lts.Parse(strings.NewReader("\n\n# only comments\n"), "empty.txt")
	var parseErr *lts.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want ParseError for missing initial state", err)
	}
}

func TestRoundTripText(t *testing.T) {
	l, err := lts.ReadFromFile(filepath.Join("testdata", "lts_1.txt"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := lts.Write(&buf, l); err != nil {
		t.Fatal(err)
	}
	back, err := lts.Parse(&buf, "roundtrip")
	if err != nil {
		t.Fatal(err)
	}
	if !l.Equal(back, eqString) {
		t.Error("text round trip changed the structure")
	}
}

func TestReadFromJSONFile(t *testing.T) {
	l, err := lts.ReadFromJSONFile(filepath.Join("testdata", "resource.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := lts.NewWithInitial[string, string]("s0")
	want.AddTransition("s0", "a1", "s1")
	want.AddTransition("s1", "a2", "s2")
	if !l.Equal(want, eqString) {
		t.Error("parsed JSON structure differs from expected")
	}
}

func TestRoundTripJSON(t *testing.T) {
	l, err := lts.ReadFromJSONFile(filepath.Join("testdata", "resource.json"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := lts.WriteJSON(&buf, l); err != nil {
		t.Fatal(err)
	}
	back, err := lts.ParseJSON(buf.Bytes(), "roundtrip")
	if err != nil {
		t.Fatal(err)
	}
	if !l.Equal(back, eqString) {
		t.Error("JSON round trip changed the structure")
	}
}

func TestParseJSONRejectsCommaInStateName(t *testing.T) {
	// Comma-bearing state names would corrupt the tuple encoding of
	// topology keys.
	docs := []string{
		`{"initialState":"s,0","transitions":[]}`,
		`{"initialState":"s0","transitions":[{"startState":"s,0","label":"a","endState":"s1"}]}`,
		`{"initialState":"s0","transitions":[{"startState":"s0","label":"a","endState":"s,1"}]}`,
	}
	for _, doc := range docs {
		_, err := lts.ParseJSON([]byte(doc), "comma.json")
		var parseErr *lts.ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("ParseJSON(%s) err = %v, want ParseError", doc, err)
		}
	}
}

func TestParseJSONMissingInitial(t *testing.T) {
	_, err := lts.ParseJSON([]byte(`{"transitions":[]}`), "x.json")
	var parseErr *lts.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want ParseError", err)
	}
}

func TestReadFromFileMissing(t *testing.T) {
	_, err := lts.ReadFromFile(filepath.Join("testdata", "does-not-exist.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	var parseErr *lts.ParseError
	if errors.As(err, &parseErr) {
		t.Error("a missing file is an I/O error, not a parse error")
	}
}
