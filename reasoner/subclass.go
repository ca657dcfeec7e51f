package reasoner

import (
	"fmt"

	"github.com/c360/semreason/message"
	"github.com/c360/semreason/vocabulary"
)

// SubClassRule propagates rdf:type membership up the class hierarchy: an
// instance of a class is an instance of every transitive superclass per the
// rdfs:subClassOf facts present in the input.
//
// Unlike TransitivityRule, each application walks the full hierarchy: class
// declaration graphs are small, and a type fact's complete ancestry is
// expected in a single round. A per-walk visited set terminates cyclic
// hierarchies.
type SubClassRule struct{}

// NewSubClassRule builds the rdf:type propagation rule. The relevant
// predicates (rdf:type, rdfs:subClassOf) are fixed by vocabulary.
func NewSubClassRule() *SubClassRule {
	return &SubClassRule{}
}

// Name implements Rule.
func (r *SubClassRule) Name() string {
	return "subclass"
}

// Apply implements Rule.
func (r *SubClassRule) Apply(base, inferred []message.Triple) ([]message.Triple, error) {
	return conclusions(r.Derive(base, inferred))
}

// Derive implements ProvenanceRule.
func (r *SubClassRule) Derive(base, inferred []message.Triple) ([]message.Explanation, error) {
	classes := indexEdges(vocabulary.RdfsSubClassOf, base, inferred)
	if len(classes.order) == 0 {
		return nil, nil
	}

	types := indexEdges(vocabulary.RdfType, base, inferred)

	var out []message.Explanation
	for _, instance := range types.order {
		for _, typeFact := range types.edges[instance] {
			class := typeFact.Object.Value
			visited := map[string]struct{}{class: {}}
			ascend(classes, class, []message.Triple{typeFact}, visited,
				func(super string, chain []message.Triple) {
					out = append(out, message.Explanation{
						Rule:          r.Name(),
						Description:   fmt.Sprintf("type membership propagated to superclass <%s>", super),
						Conclusion:    message.NewTriple(instance, vocabulary.RdfType, message.URI(super)),
						SourceTriples: sourceRefs(chain...),
					})
				})
		}
	}
	return out, nil
}

// Explain implements Rule. A triple is explainable when it is an rdf:type
// fact whose class has subclass declarations leading into it; a one-hop
// support pair is referenced when found.
func (r *SubClassRule) Explain(t message.Triple, base []message.Triple) (message.Explanation, bool) {
	if t.Predicate != vocabulary.RdfType || !t.Object.IsURI() {
		return message.Explanation{}, false
	}

	classes := indexEdges(vocabulary.RdfsSubClassOf, base)
	declared := false
	for _, edges := range classes.edges {
		for _, edge := range edges {
			if edge.Object.Value == t.Object.Value {
				declared = true
			}
		}
	}
	if !declared {
		return message.Explanation{}, false
	}

	ex := message.Explanation{
		Rule:        r.Name(),
		Description: fmt.Sprintf("type membership propagated to superclass <%s>", t.Object.Value),
		Conclusion:  t,
	}

	// Cheap support scan: a type fact one subclass hop below the target.
	types := indexEdges(vocabulary.RdfType, base)
	for _, typeFact := range types.edges[t.Subject] {
		for _, edge := range classes.edges[typeFact.Object.Value] {
			if edge.Object.Value == t.Object.Value {
				ex.SourceTriples = sourceRefs(typeFact, edge)
				return ex, true
			}
		}
	}
	return ex, true
}

// ascend walks the declaration hierarchy upward from the given node,
// invoking emit for every newly reached ancestor with the fact chain that
// reaches it. The shared visited set terminates cyclic hierarchies; chains
// are copied per step so sibling branches never alias.
func ascend(hierarchy *edgeIndex, node string, chain []message.Triple, visited map[string]struct{}, emit func(ancestor string, chain []message.Triple)) {
	for _, edge := range hierarchy.edges[node] {
		ancestor := edge.Object.Value
		if _, done := visited[ancestor]; done {
			continue
		}
		visited[ancestor] = struct{}{}

		next := make([]message.Triple, len(chain)+1)
		copy(next, chain)
		next[len(chain)] = edge

		emit(ancestor, next)
		ascend(hierarchy, ancestor, next, visited, emit)
	}
}
