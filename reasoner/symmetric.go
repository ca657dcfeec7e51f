package reasoner

import (
	"fmt"

	"github.com/c360/semreason/message"
)

// SymmetricPropertyRule mirrors facts of configured symmetric predicates:
// (s,p,o) entails (o,p,s). Mirrors that already exist are filtered by the
// engine, so a saturated set reaches its fixed point after one round.
type SymmetricPropertyRule struct {
	predicates   []string
	predicateSet map[string]struct{}
}

// NewSymmetricPropertyRule configures mirroring over the given predicates.
func NewSymmetricPropertyRule(predicates []string) *SymmetricPropertyRule {
	r := &SymmetricPropertyRule{
		predicates:   append([]string(nil), predicates...),
		predicateSet: make(map[string]struct{}, len(predicates)),
	}
	for _, p := range predicates {
		r.predicateSet[p] = struct{}{}
	}
	return r
}

// Name implements Rule.
func (r *SymmetricPropertyRule) Name() string {
	return "symmetric-property"
}

// Apply implements Rule.
func (r *SymmetricPropertyRule) Apply(base, inferred []message.Triple) ([]message.Triple, error) {
	return conclusions(r.Derive(base, inferred))
}

// Derive implements ProvenanceRule.
func (r *SymmetricPropertyRule) Derive(base, inferred []message.Triple) ([]message.Explanation, error) {
	var out []message.Explanation
	for _, predicate := range r.predicates {
		idx := indexEdges(predicate, base, inferred)
		for _, subject := range idx.order {
			for _, edge := range idx.edges[subject] {
				out = append(out, message.Explanation{
					Rule:          r.Name(),
					Description:   fmt.Sprintf("mirror of symmetric predicate <%s>", predicate),
					Conclusion:    message.NewTriple(edge.Object.Value, predicate, message.URI(edge.Subject)),
					SourceTriples: sourceRefs(edge),
				})
			}
		}
	}
	return out, nil
}

// Explain implements Rule. A triple is explainable when its predicate is
// configured symmetric and it links two resources; the mirror fact is
// referenced when present in the base facts.
func (r *SymmetricPropertyRule) Explain(t message.Triple, base []message.Triple) (message.Explanation, bool) {
	if _, ok := r.predicateSet[t.Predicate]; !ok || !t.Object.IsURI() {
		return message.Explanation{}, false
	}

	ex := message.Explanation{
		Rule:        r.Name(),
		Description: fmt.Sprintf("mirror of symmetric predicate <%s>", t.Predicate),
		Conclusion:  t,
	}

	mirror := message.NewTriple(t.Object.Value, t.Predicate, message.URI(t.Subject))
	for _, fact := range base {
		if fact == mirror {
			ex.SourceTriples = sourceRefs(fact)
			break
		}
	}
	return ex, true
}
