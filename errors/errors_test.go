package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "github.com/c360/semreason/errors"
	"github.com/c360/semreason/testutil"
)

func TestErrorClassString(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("ErrorClass(%d).String() = %q, want %q", tt.class, got, tt.want)
		}
	}
}

func TestClassifySentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"connection lost", ErrConnectionLost, ErrorTransient},
		{"storage unavailable", ErrStorageUnavailable, ErrorTransient},
		{"rate limited", ErrRateLimited, ErrorTransient},
		{"context deadline", context.DeadlineExceeded, ErrorTransient},
		{"invalid triple", ErrInvalidTriple, ErrorInvalid},
		{"unknown profile", ErrUnknownProfile, ErrorInvalid},
		{"rule not found", ErrRuleNotFound, ErrorInvalid},
		{"invalid config", ErrInvalidConfig, ErrorFatal},
		{"data corrupted", ErrDataCorrupted, ErrorFatal},
		{"resource exhausted", ErrResourceExhausted, ErrorFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifySeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("store lookup: %w", ErrUnknownProfile)
	if got := Classify(err); got != ErrorInvalid {
		t.Errorf("Classify(wrapped sentinel) = %v, want invalid", got)
	}
	if !IsInvalid(err) {
		t.Error("IsInvalid should see the sentinel through fmt.Errorf wrapping")
	}
}

func TestClassifyHeuristics(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"timeout text", errors.New("operation timeout after 5s"), ErrorTransient},
		{"network text", errors.New("network unreachable"), ErrorTransient},
		{"panic text", errors.New("panic in rule evaluation"), ErrorFatal},
		{"oom text", errors.New("out of memory"), ErrorFatal},
		{"unknown defaults transient", errors.New("something odd happened"), ErrorTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsInvalidNeverGuesses(t *testing.T) {
	// Message text alone must not classify an error as invalid.
	if IsInvalid(errors.New("invalid subject URI")) {
		t.Error("IsInvalid matched on message text")
	}
	if !IsInvalid(WrapInvalid(errors.New("bad uri"), "message", "ParseTriple", "validate subject")) {
		t.Error("IsInvalid should accept an explicit classification")
	}
}

func TestPredicatesOnNil(t *testing.T) {
	if IsTransient(nil) || IsInvalid(nil) || IsFatal(nil) {
		t.Error("nil error must not satisfy any predicate")
	}
}

func TestWrapFormat(t *testing.T) {
	base := errors.New("bucket missing")
	err := Wrap(base, "TripleStore", "LoadContext", "open bucket")

	want := "TripleStore.LoadContext: open bucket failed: bucket missing"
	if err.Error() != want {
		t.Errorf("Wrap message = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, base) {
		t.Error("Wrap must preserve errors.Is to the cause")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "c", "m", "a") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if WrapTransient(nil, "c", "m", "a") != nil ||
		WrapInvalid(nil, "c", "m", "a") != nil ||
		WrapFatal(nil, "c", "m", "a") != nil {
		t.Error("classified wrappers must pass nil through")
	}
}

func TestClassifiedWrappers(t *testing.T) {
	base := errors.New("kv put rejected")

	tests := []struct {
		name string
		wrap func(error, string, string, string) error
		want ErrorClass
	}{
		{"transient", WrapTransient, ErrorTransient},
		{"invalid", WrapInvalid, ErrorInvalid},
		{"fatal", WrapFatal, ErrorFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wrap(base, "TripleStore", "StoreBatch", "persist batch")

			var ce *ClassifiedError
			if !errors.As(err, &ce) {
				t.Fatal("expected a ClassifiedError in the chain")
			}
			if ce.Class != tt.want {
				t.Errorf("class = %v, want %v", ce.Class, tt.want)
			}
			if ce.Component != "TripleStore" || ce.Operation != "StoreBatch" {
				t.Errorf("origin = %s.%s, want TripleStore.StoreBatch", ce.Component, ce.Operation)
			}
			if !errors.Is(err, base) {
				t.Error("classification must preserve errors.Is to the cause")
			}
			if Classify(err) != tt.want {
				t.Errorf("Classify = %v, want %v", Classify(err), tt.want)
			}
		})
	}
}

func TestClassificationOverridesHeuristics(t *testing.T) {
	// The message says "timeout" but the explicit class wins.
	err := WrapFatal(errors.New("timeout reading superblock"), "store", "open", "read header")
	if Classify(err) != ErrorFatal {
		t.Error("explicit classification must override message heuristics")
	}
	if IsTransient(err) {
		t.Error("explicitly fatal error must not be transient")
	}
}

func TestWrapPreservesForeignErrorTypes(t *testing.T) {
	mockErr := testutil.NewMockError("backend unavailable", "E_CONN")
	wrapped := WrapTransient(mockErr, "natsclient", "Publish", "send message")

	var target *testutil.MockError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find the wrapped MockError")
	}
	if target.Code != "E_CONN" {
		t.Errorf("code = %q, want E_CONN", target.Code)
	}

	sentinel := Wrap(testutil.ErrMockTimeout, "ReasonProcessor", "runInference", "wait for convergence")
	if !errors.Is(sentinel, testutil.ErrMockTimeout) {
		t.Error("errors.Is should find the wrapped sentinel")
	}
}

func TestDoubleWrapKeepsInnermostClass(t *testing.T) {
	inner := WrapInvalid(errors.New("empty predicate"), "message", "ParseTriple", "validate")
	outer := Wrap(inner, "ReasonProcessor", "handleBatch", "parse triples")

	if !IsInvalid(outer) {
		t.Error("plain Wrap must not erase the inner classification")
	}
}
