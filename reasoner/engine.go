package reasoner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/c360/semreason/message"
)

// DefaultMaxIterations bounds reasoning rounds when no explicit bound is
// configured. Ten rounds saturate any realistic document graph; chains
// needing more end with Converged=false rather than an error.
const DefaultMaxIterations = 10

// ReasoningError reports a rule failure during a Reason call. In the
// default fail-fast mode it aborts the whole call; in permissive mode it is
// collected in Result.RuleErrors while the remaining rules continue.
type ReasoningError struct {
	// RuleName identifies the failing rule.
	RuleName string

	// Cause is the error the rule returned.
	Cause error
}

// Error implements error.
func (e *ReasoningError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.RuleName, e.Cause)
}

// Unwrap exposes the rule's underlying error for errors.Is/As chains.
func (e *ReasoningError) Unwrap() error {
	return e.Cause
}

// Result carries the outcome of one Reason call.
type Result struct {
	// Inferred holds the derived triples in derivation order. No triple
	// appears twice, and none duplicates a base fact.
	Inferred []message.Triple

	// Converged reports whether a fixed point was reached. False means the
	// iteration bound cut saturation short and the result is partial.
	Converged bool

	// Iterations is the number of rounds executed, including the final
	// empty round that confirms a fixed point.
	Iterations int

	// RuleErrors collects per-rule failures in permissive mode, in
	// registration order per round. Empty in fail-fast mode.
	RuleErrors []*ReasoningError

	explanations map[message.Key]message.Explanation
}

// ExplanationFor returns the exact provenance recorded when the given
// triple was derived. The lookup is structural, so any triple equal to an
// inferred one resolves. Triples derived by rules that do not record
// provenance, and triples never derived, report false; Engine.Explain
// remains the coarse fallback for those.
func (r *Result) ExplanationFor(t message.Triple) (message.Explanation, bool) {
	ex, ok := r.explanations[t.Key()]
	return ex, ok
}

// Engine is the fixed-point driver. It holds an ordered rule list and an
// iteration bound, both immutable after construction, which makes a single
// engine safe for concurrent Reason calls on independent inputs.
//
// Rule order is registration order and is significant: it fixes candidate
// emission order, explanation order, and the merge order of the parallel
// mode. It is never derived from map iteration.
type Engine struct {
	rules         []Rule
	maxIterations int
	permissive    bool
	parallel      bool
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithMaxIterations bounds the number of reasoning rounds. Non-positive
// values fall back to DefaultMaxIterations.
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithPermissiveMode makes rule failures skip the failing rule for the
// round instead of aborting the call. Failures are collected in
// Result.RuleErrors. The default is fail-fast.
func WithPermissiveMode() EngineOption {
	return func(e *Engine) {
		e.permissive = true
	}
}

// WithParallelRules runs each round's rules concurrently. Every rule of a
// round sees the same snapshot of inferred facts, and candidates are merged
// in registration order, so output stays deterministic. Sequential mode
// additionally lets later rules see earlier rules' same-round candidates;
// both modes reach the same fixed point, possibly distributing facts across
// rounds differently.
func WithParallelRules() EngineOption {
	return func(e *Engine) {
		e.parallel = true
	}
}

// NewEngine builds an engine over the given rules in registration order.
func NewEngine(rules []Rule, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:         append([]Rule(nil), rules...),
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the engine's rule chain in registration order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// MaxIterations returns the configured round bound.
func (e *Engine) MaxIterations() int {
	return e.maxIterations
}

// Reason derives new facts from the base set by applying every rule in
// order, round after round, until a round contributes nothing or the
// iteration bound is hit. The base slice is never modified. Cancellation is
// cooperative: ctx is checked between rounds.
func (e *Engine) Reason(ctx context.Context, base []message.Triple) (*Result, error) {
	seen := make(map[message.Key]struct{}, len(base))
	for _, t := range base {
		seen[t.Key()] = struct{}{}
	}

	result := &Result{
		explanations: make(map[message.Key]message.Explanation),
	}

	var inferred []message.Triple
	for round := 0; round < e.maxIterations; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Iterations = round + 1

		var added int
		var err error
		if e.parallel {
			inferred, added, err = e.parallelRound(base, inferred, seen, result)
		} else {
			inferred, added, err = e.sequentialRound(base, inferred, seen, result)
		}
		if err != nil {
			return nil, err
		}

		if added == 0 {
			result.Converged = true
			break
		}
	}

	result.Inferred = inferred
	return result, nil
}

// ReasonAll runs Reason and returns base ++ inferred alongside the result
// metadata.
func (e *Engine) ReasonAll(ctx context.Context, base []message.Triple) ([]message.Triple, *Result, error) {
	result, err := e.Reason(ctx, base)
	if err != nil {
		return nil, nil, err
	}
	all := make([]message.Triple, 0, len(base)+len(result.Inferred))
	all = append(all, base...)
	all = append(all, result.Inferred...)
	return all, result, nil
}

// sequentialRound applies every rule in order. Later rules see candidates
// accepted earlier in the same round.
func (e *Engine) sequentialRound(base, inferred []message.Triple, seen map[message.Key]struct{}, result *Result) ([]message.Triple, int, error) {
	var added int
	for _, rule := range e.rules {
		candidates, provenance, err := invoke(rule, base, inferred)
		if err != nil {
			rerr := &ReasoningError{RuleName: rule.Name(), Cause: err}
			if !e.permissive {
				return nil, 0, rerr
			}
			result.RuleErrors = append(result.RuleErrors, rerr)
			continue
		}
		inferred, added = accept(candidates, provenance, seen, inferred, result, added)
	}
	return inferred, added, nil
}

// parallelRound applies every rule concurrently against the round-start
// snapshot, then merges candidates in registration order so acceptance
// order matches the rule chain regardless of goroutine scheduling. Each
// goroutine writes only its own slot, so no lock is needed.
func (e *Engine) parallelRound(base, inferred []message.Triple, seen map[message.Key]struct{}, result *Result) ([]message.Triple, int, error) {
	candidates := make([][]message.Triple, len(e.rules))
	provenance := make([][]message.Explanation, len(e.rules))
	failures := make([]*ReasoningError, len(e.rules))

	var g errgroup.Group
	for i, rule := range e.rules {
		g.Go(func() error {
			cands, prov, err := invoke(rule, base, inferred)
			if err != nil {
				failures[i] = &ReasoningError{RuleName: rule.Name(), Cause: err}
				if !e.permissive {
					return failures[i]
				}
				return nil
			}
			candidates[i] = cands
			provenance[i] = prov
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Fail-fast abort. Surface the first failure in registration
		// order so the reported error does not depend on scheduling.
		for _, failure := range failures {
			if failure != nil {
				return nil, 0, failure
			}
		}
		return nil, 0, err
	}

	var added int
	for i := range e.rules {
		if failures[i] != nil {
			result.RuleErrors = append(result.RuleErrors, failures[i])
			continue
		}
		inferred, added = accept(candidates[i], provenance[i], seen, inferred, result, added)
	}
	return inferred, added, nil
}

// accept key-filters candidates into the inferred sequence, recording exact
// provenance for each accepted triple when the rule supplied it.
func accept(candidates []message.Triple, provenance []message.Explanation, seen map[message.Key]struct{}, inferred []message.Triple, result *Result, added int) ([]message.Triple, int) {
	for i, candidate := range candidates {
		key := candidate.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		inferred = append(inferred, candidate)
		added++
		if provenance != nil {
			result.explanations[key] = provenance[i]
		}
	}
	return inferred, added
}

// invoke runs one rule, preferring the exact-provenance path when the rule
// implements ProvenanceRule. The returned provenance slice, when non-nil,
// is index-aligned with the candidates.
func invoke(rule Rule, base, inferred []message.Triple) ([]message.Triple, []message.Explanation, error) {
	if pr, ok := rule.(ProvenanceRule); ok {
		explanations, err := pr.Derive(base, inferred)
		if err != nil {
			return nil, nil, err
		}
		triples := make([]message.Triple, len(explanations))
		for i, ex := range explanations {
			triples[i] = ex.Conclusion
		}
		return triples, explanations, nil
	}
	candidates, err := rule.Apply(base, inferred)
	return candidates, nil, err
}

// Explain asks every rule, in registration order, whether it could have
// derived a triple of the given shape from the base facts, collecting all
// matches. This is the coarse shape-based judgment; for triples derived in
// a Reason call, Result.ExplanationFor gives the exact record.
func (e *Engine) Explain(t message.Triple, base []message.Triple) []message.Explanation {
	var out []message.Explanation
	for _, rule := range e.rules {
		if ex, ok := rule.Explain(t, base); ok {
			out = append(out, ex)
		}
	}
	return out
}

// ExplanationsFor resolves provenance for a triple: the exact apply-time
// record when the result carries one, the coarse per-rule collection
// otherwise.
func (e *Engine) ExplanationsFor(result *Result, t message.Triple, base []message.Triple) []message.Explanation {
	if result != nil {
		if ex, ok := result.ExplanationFor(t); ok {
			return []message.Explanation{ex}
		}
	}
	return e.Explain(t, base)
}
