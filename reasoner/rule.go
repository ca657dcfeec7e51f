package reasoner

import (
	"github.com/c360/semreason/message"
)

// Rule is a pure, stateless unit of inference logic.
//
// Implementations must be deterministic functions of their inputs: no
// randomness, no wall-clock dependence, no I/O. The engine relies on this
// for fixed-point termination and reproducible output.
type Rule interface {
	// Name identifies the rule in diagnostics and explanations.
	Name() string

	// Apply returns new candidate triples derivable from the base facts
	// plus everything inferred so far. Candidates that duplicate existing
	// facts are tolerated; the engine filters them by structural key.
	// Errors are reserved for genuine faults: shapes a rule cannot
	// interpret should be skipped, not raised.
	Apply(base, inferred []message.Triple) ([]message.Triple, error)

	// Explain answers whether this rule could have derived a triple of the
	// given shape from the base facts. This is a coarse, shape-based
	// judgment, not exact per-instance provenance; the returned
	// explanation's source references carry directly supporting facts when
	// a cheap scan finds them.
	Explain(t message.Triple, base []message.Triple) (message.Explanation, bool)
}

// ProvenanceRule extends Rule with exact provenance recorded at apply time.
// Derive returns one explanation per candidate, with the candidate as the
// explanation's conclusion and the source facts that justify it. The engine
// prefers Derive when a rule implements it, making Result.ExplanationFor an
// exact lookup; rules that only implement Apply fall back to the coarse
// Explain path.
type ProvenanceRule interface {
	Rule

	// Derive returns new candidates as explanations: Conclusion is the
	// candidate triple, SourceTriples reference the facts it follows from.
	Derive(base, inferred []message.Triple) ([]message.Explanation, error)
}

// conclusions extracts the candidate triples from derived explanations.
// Concrete rules implement Apply as conclusions(r.Derive(...)).
func conclusions(explanations []message.Explanation, err error) ([]message.Triple, error) {
	if err != nil {
		return nil, err
	}
	if len(explanations) == 0 {
		return nil, nil
	}
	triples := make([]message.Triple, len(explanations))
	for i, ex := range explanations {
		triples[i] = ex.Conclusion
	}
	return triples, nil
}

// sourceRefs renders source triples as ordered string references for
// explanation payloads.
func sourceRefs(sources ...message.Triple) []string {
	if len(sources) == 0 {
		return nil
	}
	refs := make([]string, len(sources))
	for i, s := range sources {
		refs[i] = s.String()
	}
	return refs
}

// edgeIndex is an insertion-ordered subject → edges index over the
// relationship triples of one predicate. Iterating order then edges gives
// deterministic traversal regardless of how many facts fed the index.
type edgeIndex struct {
	order []string
	edges map[string][]message.Triple
}

// indexEdges builds an edgeIndex from the given fact sets, restricted to
// triples with the given predicate and a URI object. Structural duplicates
// (possible inside a caller-supplied base set) are dropped so traversal
// never walks the same edge twice.
func indexEdges(predicate string, sets ...[]message.Triple) *edgeIndex {
	idx := &edgeIndex{edges: make(map[string][]message.Triple)}
	seen := make(map[message.Key]struct{})
	for _, set := range sets {
		for _, t := range set {
			if t.Predicate != predicate || !t.Object.IsURI() {
				continue
			}
			key := t.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, known := idx.edges[t.Subject]; !known {
				idx.order = append(idx.order, t.Subject)
			}
			idx.edges[t.Subject] = append(idx.edges[t.Subject], t)
		}
	}
	return idx
}

// uniqueFacts yields the structurally distinct triples of the given sets in
// first-appearance order. Rules that scan every fact use this so duplicate
// base entries cannot double-emit candidates.
func uniqueFacts(sets ...[]message.Triple) []message.Triple {
	var total int
	for _, set := range sets {
		total += len(set)
	}
	seen := make(map[message.Key]struct{}, total)
	facts := make([]message.Triple, 0, total)
	for _, set := range sets {
		for _, t := range set {
			key := t.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			facts = append(facts, t)
		}
	}
	return facts
}
