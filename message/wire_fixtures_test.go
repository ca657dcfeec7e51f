package message

import (
	"encoding/json"
	"testing"

	"github.com/c360/semreason/testutil"
)

// The testutil fixtures are raw wire payloads maintained separately from the
// typed payloads in this package. These tests pin the two to the same shape.

func TestWireFixtureTriplesDecode(t *testing.T) {
	seen := make(map[Key]struct{})
	for i, raw := range testutil.TestTriplesJSON {
		var triple Triple
		if err := json.Unmarshal([]byte(raw), &triple); err != nil {
			t.Fatalf("triple fixture %d: unmarshal failed: %v", i, err)
		}
		if err := triple.Validate(); err != nil {
			t.Errorf("triple fixture %d: validate failed: %v", i, err)
		}
		if _, dup := seen[triple.Key()]; dup {
			t.Errorf("triple fixture %d: duplicate structural key %v", i, triple.Key())
		}
		seen[triple.Key()] = struct{}{}
	}
}

func TestWireFixtureRequestsDecode(t *testing.T) {
	for i, raw := range testutil.TestReasonRequests {
		var req ReasonRequestPayload
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			t.Fatalf("request fixture %d: unmarshal failed: %v", i, err)
		}
		if err := req.Validate(); err != nil {
			t.Errorf("request fixture %d: validate failed: %v", i, err)
		}
		if req.CorrelationID() != req.RequestID {
			t.Errorf("request fixture %d: correlation ID %q does not echo request ID %q",
				i, req.CorrelationID(), req.RequestID)
		}
	}
}

func TestWireFixtureBatchesDecode(t *testing.T) {
	knownContexts := make(map[string]bool, len(testutil.TestContextIDs))
	for _, id := range testutil.TestContextIDs {
		knownContexts[id] = true
	}

	for i, raw := range testutil.TestTripleBatches {
		var batch TripleBatchPayload
		if err := json.Unmarshal([]byte(raw), &batch); err != nil {
			t.Fatalf("batch fixture %d: unmarshal failed: %v", i, err)
		}
		if err := batch.Validate(); err != nil {
			t.Errorf("batch fixture %d: validate failed: %v", i, err)
		}
		if batch.Context == "" {
			t.Errorf("batch fixture %d: missing accumulation context", i)
		}
		if !knownContexts[batch.Context] {
			t.Errorf("batch fixture %d: context %q not in TestContextIDs", i, batch.Context)
		}
	}
}
