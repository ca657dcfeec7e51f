// Package reasoner implements a forward-chaining inference engine over
// semantic triples. It derives new facts from a base fact set by repeatedly
// applying an ordered library of inference rules until a fixed point is
// reached, tracking provenance for every derived fact.
//
// # Architecture
//
// The package has three layers:
//
//   - Rule: a pure, stateless unit of inference logic. Rules implement
//     Apply (produce candidate facts), Explain (justify a fact shape), and
//     Name (diagnostics). Rules that record exact provenance additionally
//     implement ProvenanceRule.
//   - Engine: the fixed-point driver. Holds an ordered rule list and an
//     iteration bound, applies rules round by round, deduplicates candidates
//     by canonical structural key, and reports convergence metadata.
//   - Profile: declarative YAML configuration binding predicate sets and
//     engine options; the default profile mirrors the semantics the
//     vocabulary registry declares.
//
// # Reasoning model
//
// Inference is monotone: facts are only added, never retracted, within one
// Reason call. Each round invokes every rule in registration order against
// the base facts plus everything inferred so far; candidates already present
// (by structural key) are dropped. A round that contributes nothing means
// the fixed point is reached. The round count is bounded by MaxIterations
// (default 10): on very long transitive chains built one hop per round the
// engine stops early with a partially saturated result and Converged=false.
// That is reported metadata, never an error.
//
// Determinism is a hard requirement. Rules are pure functions of their
// inputs, rule order is registration order, and every iteration that could
// leak map ordering into output runs over insertion-ordered indexes.
//
// # Built-in rules
//
// Structural rules: TransitivityRule (configured transitive predicates,
// one-hop composition per round with per-root visited sets),
// SymmetricPropertyRule (mirror facts), SubClassRule (rdf:type propagation
// to transitive superclasses), SubPropertyRule (fact propagation to
// superproperties), InversePropertyRule (declared inverse pairs).
//
// Domain rules: JurisdictionInheritanceRule (documents inherit jurisdiction
// across reference edges; explicit values always win), plus
// TemporalReasoningRule and CrossJurisdictionRule, registered no-op
// extension points.
//
// # Usage
//
//	engine, err := reasoner.NewDefaultEngine()
//	if err != nil {
//	    return err
//	}
//
//	result, err := engine.Reason(ctx, base)
//	if err != nil {
//	    return err
//	}
//
//	for _, t := range result.Inferred {
//	    if ex, ok := result.ExplanationFor(t); ok {
//	        log.Printf("%s derived by %s", t, ex.Rule)
//	    }
//	}
//
// Engines are immutable after construction and safe for concurrent Reason
// calls on independent inputs. The optional parallel mode
// (WithParallelRules) runs each round's rules concurrently and merges
// candidates in registration order, keeping output deterministic.
//
// # Failure semantics
//
// A rule error aborts the call by default, surfaced as *ReasoningError with
// the failing rule's name. Permissive mode (WithPermissiveMode) skips the
// failing rule for that round, continues the others, and collects the
// errors in Result.RuleErrors. The two modes trade correctness against
// availability; callers choose explicitly.
package reasoner
