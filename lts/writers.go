package lts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Write serialises a string-labelled LTS to the text format. Output is
// deterministic: edges are emitted sorted by (start, label, end).
func Write(w io.Writer, l *LTS[string, string]) error {
	initial, ok := l.InitialState()
	if !ok {
		return fmt.Errorf("lts: cannot serialise without an initial state")
	}
	if _, err := fmt.Fprintln(w, initial); err != nil {
		return err
	}
	type edge struct{ src, label, dst string }
	edges := make([]edge, 0, l.NumTransitions())
	for k, s := range l.States() {
		for _, t := range s.Transitions {
			edges = append(edges, edge{src: k, label: t.Label, dst: t.To})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].src != edges[j].src {
			return edges[i].src < edges[j].src
		}
		if edges[i].label != edges[j].label {
			return edges[i].label < edges[j].label
		}
		return edges[i].dst < edges[j].dst
	})
	for _, e := range edges {
		if _, err := fmt.Fprintf(w, "%s,%s,%s\n", e.src, e.label, e.dst); err != nil {
			return err
		}
	}
	// Isolated states other than the initial one cannot be expressed in the
	// text format; they are dropped on export.
	return nil
}

// ExportToFile writes the text format to path, creating parent directories
// as needed.
func ExportToFile(l *LTS[string, string], path string) error {
	if err := createDirForPath(path); err != nil {
		return fmt.Errorf("lts: exporting %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lts: exporting %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Write(f, l)
}

// WriteJSON serialises a string-labelled LTS to the JSON resource format.
func WriteJSON(w io.Writer, l *LTS[string, string]) error {
	initial, ok := l.InitialState()
	if !ok {
		return fmt.Errorf("lts: cannot serialise without an initial state")
	}
	doc := jsonLTS{InitialState: initial}
	keys := l.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		s, _ := l.At(k)
		for _, t := range s.Transitions {
			doc.Transitions = append(doc.Transitions, jsonTransition{StartState: k, Label: t.Label, EndState: t.To})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// createDirForPath creates the parent directories for a file path if they
// do not already exist.
func createDirForPath(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
