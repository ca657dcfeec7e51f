package message

import "fmt"

// Explanation records why a triple is believed: which rule concluded it,
// a human-readable account of the derivation, and ordered references to the
// premise statements the rule consumed. Explanations are produced by the
// reasoning engine and travel on response payloads so that downstream
// consumers can audit inferred facts.
//
// For a transitively inferred statement the sources are the chain of edges
// that were joined; for a symmetric inference the single mirrored statement;
// for an inherited property the declaration triple plus the linking edge.
type Explanation struct {
	// Rule is the name of the rule that produced the conclusion,
	// e.g. "transitivity" or "jurisdiction-inheritance".
	Rule string `json:"rule"`

	// Description is a human-readable account of the derivation.
	Description string `json:"description"`

	// Conclusion is the inferred triple being explained.
	Conclusion Triple `json:"conclusion"`

	// SourceTriples are ordered references to the premise statements,
	// rendered in N-Triples style. Sources may themselves be inferred
	// triples from earlier iterations.
	SourceTriples []string `json:"source_triples,omitempty"`
}

// Validate checks the explanation for structural correctness.
func (e Explanation) Validate() error {
	if e.Rule == "" {
		return fmt.Errorf("explanation rule cannot be empty")
	}
	if err := e.Conclusion.Validate(); err != nil {
		return fmt.Errorf("explanation conclusion: %w", err)
	}
	return nil
}
