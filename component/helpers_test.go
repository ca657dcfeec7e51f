package component

import "encoding/json"

// intPtr returns a pointer to an int, for optional schema bounds.
func intPtr(i int) *int {
	return &i
}

// stubComponent is a minimal Discoverable for registry tests.
type stubComponent struct {
	name     string
	compType string
	schema   ConfigSchema
	inputs   []Port
	outputs  []Port
}

func newStubComponent(name, compType string) *stubComponent {
	return &stubComponent{
		name:     name,
		compType: compType,
		schema: ConfigSchema{
			Properties: map[string]PropertySchema{
				"name": {Type: "string", Description: "Component name"},
			},
		},
	}
}

// withPorts attaches ports so registry resource tracking has something to
// claim.
func (s *stubComponent) withPorts(inputs, outputs []Port) *stubComponent {
	s.inputs = inputs
	s.outputs = outputs
	return s
}

func (s *stubComponent) Meta() Metadata {
	return Metadata{
		Name:        s.name,
		Type:        s.compType,
		Description: "Stub component for registry tests",
		Version:     "0.0.1",
	}
}

func (s *stubComponent) InputPorts() []Port  { return s.inputs }
func (s *stubComponent) OutputPorts() []Port { return s.outputs }

func (s *stubComponent) ConfigSchema() ConfigSchema {
	return s.schema
}

func (s *stubComponent) Health() HealthStatus {
	return HealthStatus{Healthy: true}
}

func (s *stubComponent) DataFlow() FlowMetrics {
	return FlowMetrics{}
}

// stubFactory builds a stubComponent, reading optional name/type overrides
// from the raw config.
func stubFactory(rawConfig json.RawMessage, _ Dependencies) (Discoverable, error) {
	name, compType := "stub", "processor"

	if len(rawConfig) > 0 {
		var cfg map[string]any
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, err
		}
		if v, ok := cfg["name"].(string); ok {
			name = v
		}
		if v, ok := cfg["type"].(string); ok {
			compType = v
		}
	}

	return newStubComponent(name, compType), nil
}
