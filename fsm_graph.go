package sampler

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/samber/lo"
)

type edgeKey struct {
	from, to State
}

// TransitionGraph builds a directed graph of the state-changing transitions. No-op rows
// are left out; commands leading from the same state to the same state share one edge
// whose label lists them.
func TransitionGraph() (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed())

	for _, s := range []State{StateIdle, StateRunning, StateStopping} {
		attrs := []func(*graph.VertexProperties){
			graph.VertexAttribute("shape", "box"),
			graph.VertexAttribute("style", "rounded"),
		}
		if s == StateStopping {
			attrs = append(attrs, graph.VertexAttribute("peripheries", "2"))
		}
		if err := g.AddVertex(s.String(), attrs...); err != nil {
			return nil, err
		}
	}

	changing := lo.Filter(transitionRules, func(r TransitionRule, _ int) bool {
		return r.From != r.To
	})
	grouped := lo.GroupBy(changing, func(r TransitionRule) edgeKey {
		return edgeKey{r.From, r.To}
	})

	keys := lo.Keys(grouped)
	slices.SortFunc(keys, func(a, b edgeKey) int {
		if c := cmp.Compare(a.from, b.from); c != 0 {
			return c
		}
		return cmp.Compare(a.to, b.to)
	})

	for _, key := range keys {
		label := strings.Join(lo.Map(grouped[key], func(r TransitionRule, _ int) string {
			return r.Command.String()
		}), ", ")
		if err := g.AddEdge(key.from.String(), key.to.String(), graph.EdgeAttribute("label", label)); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", key.from, key.to, err)
		}
	}

	return g, nil
}

// DumpDot writes the transition graph in Graphviz DOT format.
func DumpDot(w io.Writer) error {
	g, err := TransitionGraph()
	if err != nil {
		return err
	}
	return draw.DOT(g, w)
}
