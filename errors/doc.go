// Package errors provides the module's three-class error model.
//
// Every failure is transient (retry it), invalid (reject the input), or
// fatal (stop processing). Classification is resolved in order from a
// [ClassifiedError] wrapper, a known sentinel, or message heuristics as
// a last resort; unknown errors default to transient so callers err
// toward retrying.
//
// Wrapping follows one format module-wide:
//
//	"component.method: action failed: <cause>"
//
// [Wrap] adds that context alone; [WrapTransient], [WrapInvalid], and
// [WrapFatal] add it and pin the class so later checks never fall back
// to heuristics:
//
//	if err := dec.Decode(&req); err != nil {
//	    return errors.WrapInvalid(err, "ReasonProcessor", "handleRequest", "decode request")
//	}
//
// All wrappers preserve errors.Is and errors.As through the chain, so
// sentinel checks like errors.Is(err, errors.ErrUnknownProfile) keep
// working on wrapped errors.
//
// [IsInvalid] deliberately never guesses from message text: a caller
// rejecting input as invalid drops it permanently, so only an explicit
// classification or sentinel justifies that.
package errors
