package reasoner

import (
	"fmt"

	"github.com/c360/semreason/message"
)

// TransitivityRule closes chains of configured transitive predicates:
// (a,p,b) and (b,p,c) entail (a,p,c).
//
// Each application composes exactly one hop: per root it walks the adjacency
// two levels deep and emits root→target for every target reached through an
// intermediate. A per-root visited set, seeded with the root and its direct
// neighbors, guarantees cyclic graphs terminate without emitting self-loops
// or re-deriving edges that already exist. Deep closure emerges from the
// engine's round loop: derived edges join the adjacency next round, so
// reachable distance doubles each round and a chain of n hops saturates in
// about log2(n) rounds. The engine's iteration bound caps how far
// saturation gets.
//
// Cost per round is O(V·(V+E)) worst case across all roots of one
// predicate's subgraph. That is acceptable for processor-batch inputs;
// callers with very large dense graphs should bound their batches.
type TransitivityRule struct {
	predicates   []string
	predicateSet map[string]struct{}
}

// NewTransitivityRule configures transitivity over the given predicates.
// Predicate order determines candidate emission order and is preserved.
func NewTransitivityRule(predicates []string) *TransitivityRule {
	r := &TransitivityRule{
		predicates:   append([]string(nil), predicates...),
		predicateSet: make(map[string]struct{}, len(predicates)),
	}
	for _, p := range predicates {
		r.predicateSet[p] = struct{}{}
	}
	return r
}

// Name implements Rule.
func (r *TransitivityRule) Name() string {
	return "transitivity"
}

// Apply implements Rule.
func (r *TransitivityRule) Apply(base, inferred []message.Triple) ([]message.Triple, error) {
	return conclusions(r.Derive(base, inferred))
}

// Derive implements ProvenanceRule.
func (r *TransitivityRule) Derive(base, inferred []message.Triple) ([]message.Explanation, error) {
	var out []message.Explanation
	for _, predicate := range r.predicates {
		idx := indexEdges(predicate, base, inferred)
		for _, root := range idx.order {
			direct := idx.edges[root]

			// Root and direct neighbors are visited up front: reaching
			// the root again is a cycle, reaching a direct neighbor
			// again is an edge that already exists.
			visited := make(map[string]struct{}, len(direct)+1)
			visited[root] = struct{}{}
			for _, hop := range direct {
				visited[hop.Object.Value] = struct{}{}
			}

			for _, first := range direct {
				for _, second := range idx.edges[first.Object.Value] {
					target := second.Object.Value
					if _, done := visited[target]; done {
						continue
					}
					visited[target] = struct{}{}
					out = append(out, message.Explanation{
						Rule:          r.Name(),
						Description:   fmt.Sprintf("transitive chain over <%s>", predicate),
						Conclusion:    message.NewTriple(root, predicate, message.URI(target)),
						SourceTriples: sourceRefs(first, second),
					})
				}
			}
		}
	}
	return out, nil
}

// Explain implements Rule. A triple is explainable when its predicate is
// configured transitive and it links two resources; when a one-hop chain
// supporting it exists in the base facts, the chain is referenced.
func (r *TransitivityRule) Explain(t message.Triple, base []message.Triple) (message.Explanation, bool) {
	if _, ok := r.predicateSet[t.Predicate]; !ok || !t.Object.IsURI() {
		return message.Explanation{}, false
	}

	ex := message.Explanation{
		Rule:        r.Name(),
		Description: fmt.Sprintf("transitive chain over <%s>", t.Predicate),
		Conclusion:  t,
	}

	// Cheap support scan: one intermediate hop in the base facts.
	idx := indexEdges(t.Predicate, base)
	for _, first := range idx.edges[t.Subject] {
		for _, second := range idx.edges[first.Object.Value] {
			if second.Object.Value == t.Object.Value {
				ex.SourceTriples = sourceRefs(first, second)
				return ex, true
			}
		}
	}
	return ex, true
}
