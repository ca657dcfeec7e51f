package reasoner

import (
	"fmt"

	"github.com/c360/semreason/message"
)

// InversePropertyRule mirrors facts across declared inverse predicate
// pairs: given a declaration p↔q, (s,p,o) entails (o,q,s).
//
// Declarations are supplied externally (the default profile discovers them
// from the vocabulary registry, where owl:inverseOf pairs are declared
// one-sided). An empty declaration set makes the rule a no-op, keeping the
// extension point present in the chain without affecting the fixed point.
type InversePropertyRule struct {
	declarations map[string]string
}

// NewInversePropertyRule configures the rule with inverse declarations.
// The map is read in both directions: if only p→q is supplied, q→p is
// derived automatically.
func NewInversePropertyRule(declarations map[string]string) *InversePropertyRule {
	both := make(map[string]string, len(declarations)*2)
	for p, q := range declarations {
		both[p] = q
		if _, declared := declarations[q]; !declared {
			both[q] = p
		}
	}
	return &InversePropertyRule{declarations: both}
}

// Name implements Rule.
func (r *InversePropertyRule) Name() string {
	return "inverse-property"
}

// Declarations returns a copy of the effective inverse pairs, both
// directions included, for diagnostics and profile round trips.
func (r *InversePropertyRule) Declarations() map[string]string {
	out := make(map[string]string, len(r.declarations))
	for p, q := range r.declarations {
		out[p] = q
	}
	return out
}

// Apply implements Rule.
func (r *InversePropertyRule) Apply(base, inferred []message.Triple) ([]message.Triple, error) {
	return conclusions(r.Derive(base, inferred))
}

// Derive implements ProvenanceRule.
func (r *InversePropertyRule) Derive(base, inferred []message.Triple) ([]message.Explanation, error) {
	if len(r.declarations) == 0 {
		return nil, nil
	}

	var out []message.Explanation
	for _, fact := range uniqueFacts(base, inferred) {
		inverse, declared := r.declarations[fact.Predicate]
		if !declared || !fact.Object.IsURI() {
			continue
		}
		out = append(out, message.Explanation{
			Rule:          r.Name(),
			Description:   fmt.Sprintf("inverse of <%s> via <%s>", fact.Predicate, inverse),
			Conclusion:    message.NewTriple(fact.Object.Value, inverse, message.URI(fact.Subject)),
			SourceTriples: sourceRefs(fact),
		})
	}
	return out, nil
}

// Explain implements Rule. A triple is explainable when its predicate has a
// declared inverse and it links two resources; the reversed fact is
// referenced when present in the base facts.
func (r *InversePropertyRule) Explain(t message.Triple, base []message.Triple) (message.Explanation, bool) {
	inverse, declared := r.declarations[t.Predicate]
	if !declared || !t.Object.IsURI() {
		return message.Explanation{}, false
	}

	ex := message.Explanation{
		Rule:        r.Name(),
		Description: fmt.Sprintf("inverse of <%s> via <%s>", inverse, t.Predicate),
		Conclusion:  t,
	}

	reversed := message.NewTriple(t.Object.Value, inverse, message.URI(t.Subject))
	for _, fact := range base {
		if fact == reversed {
			ex.SourceTriples = sourceRefs(fact)
			break
		}
	}
	return ex, true
}
