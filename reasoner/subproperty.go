package reasoner

import (
	"fmt"

	"github.com/c360/semreason/message"
	"github.com/c360/semreason/vocabulary"
)

// SubPropertyRule propagates facts up the property hierarchy: a fact
// asserted with a subproperty also holds for every transitive superproperty
// per the rdfs:subPropertyOf facts present in the input.
//
// Like SubClassRule it walks the full declaration hierarchy per application
// with a visited set, so a fact's complete superproperty fan-out lands in a
// single round.
type SubPropertyRule struct{}

// NewSubPropertyRule builds the property propagation rule. The hierarchy
// predicate (rdfs:subPropertyOf) is fixed by vocabulary.
func NewSubPropertyRule() *SubPropertyRule {
	return &SubPropertyRule{}
}

// Name implements Rule.
func (r *SubPropertyRule) Name() string {
	return "subproperty"
}

// Apply implements Rule.
func (r *SubPropertyRule) Apply(base, inferred []message.Triple) ([]message.Triple, error) {
	return conclusions(r.Derive(base, inferred))
}

// Derive implements ProvenanceRule.
func (r *SubPropertyRule) Derive(base, inferred []message.Triple) ([]message.Explanation, error) {
	properties := indexEdges(vocabulary.RdfsSubPropertyOf, base, inferred)
	if len(properties.order) == 0 {
		return nil, nil
	}

	var out []message.Explanation
	for _, fact := range uniqueFacts(base, inferred) {
		if _, declared := properties.edges[fact.Predicate]; !declared {
			continue
		}
		visited := map[string]struct{}{fact.Predicate: {}}
		ascend(properties, fact.Predicate, []message.Triple{fact}, visited,
			func(super string, chain []message.Triple) {
				out = append(out, message.Explanation{
					Rule:          r.Name(),
					Description:   fmt.Sprintf("fact lifted from <%s> to superproperty <%s>", fact.Predicate, super),
					Conclusion:    message.NewTriple(fact.Subject, super, fact.Object),
					SourceTriples: sourceRefs(chain...),
				})
			})
	}
	return out, nil
}

// Explain implements Rule. A triple is explainable when some property is
// declared a subproperty of its predicate; a supporting fact asserted with
// such a subproperty is referenced when found.
func (r *SubPropertyRule) Explain(t message.Triple, base []message.Triple) (message.Explanation, bool) {
	properties := indexEdges(vocabulary.RdfsSubPropertyOf, base)

	declared := false
	for _, edges := range properties.edges {
		for _, edge := range edges {
			if edge.Object.Value == t.Predicate {
				declared = true
			}
		}
	}
	if !declared {
		return message.Explanation{}, false
	}

	ex := message.Explanation{
		Rule:        r.Name(),
		Description: fmt.Sprintf("fact lifted to superproperty <%s>", t.Predicate),
		Conclusion:  t,
	}

	// Cheap support scan: the same statement one subproperty hop below.
	for _, fact := range base {
		if fact.Subject != t.Subject || fact.Object != t.Object {
			continue
		}
		for _, edge := range properties.edges[fact.Predicate] {
			if edge.Object.Value == t.Predicate {
				ex.SourceTriples = sourceRefs(fact, edge)
				return ex, true
			}
		}
	}
	return ex, true
}
