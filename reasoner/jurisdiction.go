package reasoner

import (
	"fmt"

	"github.com/c360/semreason/message"
)

// JurisdictionInheritanceRule propagates jurisdiction along reference
// edges: when (a, references, b) holds and b carries a jurisdiction fact
// while a carries none, a inherits b's jurisdiction value.
//
// Explicit values always win. A subject with any jurisdiction fact, in the
// base set or inferred in an earlier round, never receives an inherited
// one. The non-destructive default is the rule's contract, not an
// optimization. At most one jurisdiction is inherited per subject per
// round, from its first reference edge in input order; subsequent rounds
// then see that subject as explicitly valued.
type JurisdictionInheritanceRule struct {
	referencePredicates   []string
	referenceSet          map[string]struct{}
	jurisdictionPredicate string
}

// NewJurisdictionInheritanceRule configures inheritance across the given
// reference predicates using the given jurisdiction predicate.
func NewJurisdictionInheritanceRule(referencePredicates []string, jurisdictionPredicate string) *JurisdictionInheritanceRule {
	r := &JurisdictionInheritanceRule{
		referencePredicates:   append([]string(nil), referencePredicates...),
		referenceSet:          make(map[string]struct{}, len(referencePredicates)),
		jurisdictionPredicate: jurisdictionPredicate,
	}
	for _, p := range referencePredicates {
		r.referenceSet[p] = struct{}{}
	}
	return r
}

// Name implements Rule.
func (r *JurisdictionInheritanceRule) Name() string {
	return "jurisdiction-inheritance"
}

// Apply implements Rule.
func (r *JurisdictionInheritanceRule) Apply(base, inferred []message.Triple) ([]message.Triple, error) {
	return conclusions(r.Derive(base, inferred))
}

// Derive implements ProvenanceRule.
func (r *JurisdictionInheritanceRule) Derive(base, inferred []message.Triple) ([]message.Explanation, error) {
	facts := uniqueFacts(base, inferred)

	// First jurisdiction fact per subject; presence alone blocks
	// inheritance for that subject.
	jurisdictions := make(map[string]message.Triple)
	for _, fact := range facts {
		if fact.Predicate != r.jurisdictionPredicate {
			continue
		}
		if _, explicit := jurisdictions[fact.Subject]; !explicit {
			jurisdictions[fact.Subject] = fact
		}
	}

	var out []message.Explanation
	inherited := make(map[string]struct{})
	for _, fact := range facts {
		if _, isRef := r.referenceSet[fact.Predicate]; !isRef || !fact.Object.IsURI() {
			continue
		}
		subject := fact.Subject
		if _, explicit := jurisdictions[subject]; explicit {
			continue
		}
		if _, done := inherited[subject]; done {
			continue
		}
		source, carries := jurisdictions[fact.Object.Value]
		if !carries {
			continue
		}
		inherited[subject] = struct{}{}
		out = append(out, message.Explanation{
			Rule: r.Name(),
			Description: fmt.Sprintf("jurisdiction %s inherited across <%s>",
				source.Object, fact.Predicate),
			Conclusion:    message.NewTriple(subject, r.jurisdictionPredicate, source.Object),
			SourceTriples: sourceRefs(fact, source),
		})
	}
	return out, nil
}

// Explain implements Rule. A jurisdiction fact is explainable when its
// subject holds a reference edge in the base facts; the edge and the
// referenced document's jurisdiction are referenced when they support the
// inherited value.
func (r *JurisdictionInheritanceRule) Explain(t message.Triple, base []message.Triple) (message.Explanation, bool) {
	if t.Predicate != r.jurisdictionPredicate {
		return message.Explanation{}, false
	}

	ex := message.Explanation{
		Rule:        r.Name(),
		Description: fmt.Sprintf("jurisdiction %s inherited across a reference edge", t.Object),
		Conclusion:  t,
	}

	referenced := false
	for _, fact := range base {
		if _, isRef := r.referenceSet[fact.Predicate]; !isRef || fact.Subject != t.Subject || !fact.Object.IsURI() {
			continue
		}
		referenced = true
		for _, jur := range base {
			if jur.Predicate == r.jurisdictionPredicate && jur.Subject == fact.Object.Value && jur.Object == t.Object {
				ex.Description = fmt.Sprintf("jurisdiction %s inherited across <%s>", jur.Object, fact.Predicate)
				ex.SourceTriples = sourceRefs(fact, jur)
				return ex, true
			}
		}
	}
	if !referenced {
		return message.Explanation{}, false
	}
	return ex, true
}

// TemporalReasoningRule is a registered extension point for in-force window
// inference (facts valid only between enactment and repeal). It derives
// nothing yet; it sits in the rule chain so the fixed-point check stays
// correct when temporal logic lands.
type TemporalReasoningRule struct{}

// NewTemporalReasoningRule builds the temporal extension point.
func NewTemporalReasoningRule() *TemporalReasoningRule {
	return &TemporalReasoningRule{}
}

// Name implements Rule.
func (r *TemporalReasoningRule) Name() string {
	return "temporal-reasoning"
}

// Apply implements Rule.
func (r *TemporalReasoningRule) Apply(base, inferred []message.Triple) ([]message.Triple, error) {
	return nil, nil
}

// Explain implements Rule.
func (r *TemporalReasoningRule) Explain(t message.Triple, base []message.Triple) (message.Explanation, bool) {
	return message.Explanation{}, false
}

// CrossJurisdictionRule is a registered extension point for reasoning
// across jurisdiction boundaries (transposition equivalence, mutual
// recognition). It derives nothing yet.
type CrossJurisdictionRule struct{}

// NewCrossJurisdictionRule builds the cross-jurisdiction extension point.
func NewCrossJurisdictionRule() *CrossJurisdictionRule {
	return &CrossJurisdictionRule{}
}

// Name implements Rule.
func (r *CrossJurisdictionRule) Name() string {
	return "cross-jurisdiction"
}

// Apply implements Rule.
func (r *CrossJurisdictionRule) Apply(base, inferred []message.Triple) ([]message.Triple, error) {
	return nil, nil
}

// Explain implements Rule.
func (r *CrossJurisdictionRule) Explain(t message.Triple, base []message.Triple) (message.Explanation, bool) {
	return message.Explanation{}, false
}
