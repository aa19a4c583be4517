package topology

import "github.com/talal0047/pcs/lts"

// Flatten converts a topology-shaped graph to a plain string-labelled LTS so
// it can be serialised with the text writers. Keys keep their tuple
// encoding; labels take the `index:action` form.
func Flatten(g *lts.LTS[Key, Action]) *lts.LTS[string, string] {
	flat := lts.New[string, string]()
	if initial, ok := g.InitialState(); ok {
		flat.SetInitialState(string(initial), true)
	}
	for k, s := range g.States() {
		flat.AddState(string(k))
		for _, t := range s.Transitions {
			flat.AddTransition(string(k), t.Label.String(), string(t.To))
		}
	}
	return flat
}
