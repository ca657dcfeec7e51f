package message

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/c360/semreason/errors"
)

// SamplePayload exercises the full Payload contract plus the behavioral
// interfaces a richer domain payload would carry.
type SamplePayload struct {
	ID      string         `json:"id"`
	Value   string         `json:"value"`
	Data    map[string]any `json:"data,omitempty"`
	Period  *PeriodData    `json:"period,omitempty"`
	Time    time.Time      `json:"time,omitempty"`
	Request string         `json:"request,omitempty"`
}

type PeriodData struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

var (
	_ Payload      = (*SamplePayload)(nil)
	_ Timeable     = (*SamplePayload)(nil)
	_ Correlatable = (*SamplePayload)(nil)
)

func (p *SamplePayload) Schema() Type {
	return Type{
		Domain:   "test",
		Category: "payload",
		Version:  "v1",
	}
}

func (p *SamplePayload) Validate() error {
	if p.ID == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "SamplePayload", "Validate", "ID is required")
	}
	if p.Period != nil {
		if p.Period.From.IsZero() {
			return errors.WrapInvalid(errors.ErrInvalidData, "SamplePayload", "Validate", "period start is required")
		}
		if !p.Period.To.IsZero() && p.Period.To.Before(p.Period.From) {
			return errors.WrapInvalid(errors.ErrInvalidData, "SamplePayload", "Validate", "period end must not precede start")
		}
	}
	return nil
}

func (p *SamplePayload) MarshalJSON() ([]byte, error) {
	type alias SamplePayload
	return json.Marshal((*alias)(p))
}

func (p *SamplePayload) UnmarshalJSON(data []byte) error {
	type alias SamplePayload
	return json.Unmarshal(data, (*alias)(p))
}

func (p *SamplePayload) EntityID() string {
	return p.ID
}

func (p *SamplePayload) EntityType() EntityType {
	return EntityType{Domain: "test", Type: "test_entity"}
}

func (p *SamplePayload) Timestamp() time.Time {
	return p.Time
}

func (p *SamplePayload) CorrelationID() string {
	return p.Request
}

func TestSamplePayloadValidate(t *testing.T) {
	start := time.Date(2018, 5, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		payload *SamplePayload
		errMsg  string
	}{
		{
			name:    "valid payload",
			payload: &SamplePayload{ID: "test-123", Value: "valid"},
		},
		{
			name:    "missing ID",
			payload: &SamplePayload{Value: "no id"},
			errMsg:  "ID is required",
		},
		{
			name:    "period without start",
			payload: &SamplePayload{ID: "test-123", Period: &PeriodData{To: start}},
			errMsg:  "period start is required",
		},
		{
			name: "period end before start",
			payload: &SamplePayload{
				ID:     "test-123",
				Period: &PeriodData{From: start, To: start.Add(-24 * time.Hour)},
			},
			errMsg: "period end must not precede start",
		},
		{
			name: "valid with period",
			payload: &SamplePayload{
				ID:     "test-123",
				Period: &PeriodData{From: start, To: start.AddDate(2, 0, 0)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want to contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestSamplePayloadRoundTrip(t *testing.T) {
	original := &SamplePayload{
		ID:    "test-456",
		Value: "test data",
		Data: map[string]any{
			"key1": "value1",
			"key2": 42,
		},
		Period: &PeriodData{
			From: time.Date(2018, 5, 25, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2020, 5, 25, 0, 0, 0, 0, time.UTC),
		},
		Time: time.Now().UTC().Truncate(time.Second),
	}

	data, err := original.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	restored := &SamplePayload{}
	if err := restored.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}

	if restored.ID != original.ID || restored.Value != original.Value {
		t.Errorf("round trip lost fields: got %+v, want %+v", restored, original)
	}
	if !restored.Time.Equal(original.Time) {
		t.Errorf("Time mismatch: got %v, want %v", restored.Time, original.Time)
	}
	if !restored.Period.From.Equal(original.Period.From) || !restored.Period.To.Equal(original.Period.To) {
		t.Errorf("Period mismatch: got %+v, want %+v", restored.Period, original.Period)
	}
}

func TestSamplePayloadMarshalOutput(t *testing.T) {
	payload := &SamplePayload{
		ID:    "binary-test",
		Value: "test",
		Data: map[string]any{
			"nested": map[string]any{"field": "value"},
		},
	}

	data, err := payload.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, field := range []string{"id", "value", "data"} {
		if _, ok := generic[field]; !ok {
			t.Errorf("JSON missing %q field", field)
		}
	}

	// Message hashes are computed over the marshaled form, so repeated
	// marshals must be byte-identical
	again, err := payload.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("MarshalJSON() is not deterministic")
	}
}

func TestSamplePayloadBehavioralInterfaces(t *testing.T) {
	now := time.Now()
	payload := &SamplePayload{
		ID:      "entity-789",
		Value:   "behavioral test",
		Time:    now,
		Request: "req-42",
	}

	if id := payload.EntityID(); id != "entity-789" {
		t.Errorf("EntityID() = %v, want entity-789", id)
	}
	if dt := payload.EntityType(); dt != (EntityType{Domain: "test", Type: "test_entity"}) {
		t.Errorf("EntityType() = %v", dt)
	}

	var timeable Timeable = payload
	if ts := timeable.Timestamp(); !ts.Equal(now) {
		t.Errorf("Timestamp() = %v, want %v", ts, now)
	}

	var correlatable Correlatable = payload
	if id := correlatable.CorrelationID(); id != "req-42" {
		t.Errorf("CorrelationID() = %v, want req-42", id)
	}
}
