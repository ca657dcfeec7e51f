package component

// PortDefinition is the JSON shape of a port inside component config.
// It is deliberately flat: Subject doubles as the KV bucket name for
// kv-watch/kv-write ports.
type PortDefinition struct {
	Name        string `json:"name"                  schema:"readonly,type:string,description:Port identifier"`
	Type        string `json:"type,omitempty"        schema:"readonly,type:string,description:Port type (nats jetstream kv-watch etc)"`
	Subject     string `json:"subject,omitempty"     schema:"editable,type:string,description:NATS subject pattern or network address"`
	Interface   string `json:"interface,omitempty"   schema:"readonly,type:string,description:Interface contract type"`
	Required    bool   `json:"required,omitempty"    schema:"readonly,type:bool,description:Whether port connection is required"`
	Description string `json:"description,omitempty" schema:"readonly,type:string,description:Human-readable port description"`
	Timeout     string `json:"timeout,omitempty"     schema:"editable,type:string,description:Request timeout for request/reply ports"`
	StreamName  string `json:"stream_name,omitempty" schema:"editable,type:string,description:JetStream stream name"`
}

// PortConfig carries the user-supplied port overrides in component config.
type PortConfig struct {
	Inputs  []PortDefinition `json:"inputs,omitempty"`
	Outputs []PortDefinition `json:"outputs,omitempty"`
}

// MergePortConfigs overlays configured port definitions onto a component's
// defaults. A definition whose name matches a default replaces it in place;
// definitions with new names are appended in the order they were given.
func MergePortConfigs(defaults []Port, overrides []PortDefinition, direction Direction) []Port {
	overrideMap := make(map[string]PortDefinition, len(overrides))
	for _, o := range overrides {
		overrideMap[o.Name] = o
	}

	merged := make([]Port, 0, len(defaults)+len(overrides))
	for _, def := range defaults {
		if o, ok := overrideMap[def.Name]; ok {
			merged = append(merged, BuildPortFromDefinition(o, direction))
			delete(overrideMap, def.Name)
		} else {
			merged = append(merged, def)
		}
	}

	for _, o := range overrides {
		if _, remaining := overrideMap[o.Name]; remaining {
			merged = append(merged, BuildPortFromDefinition(o, direction))
			delete(overrideMap, o.Name)
		}
	}

	return merged
}

// BuildPortFromDefinition turns a flat JSON definition into a typed Port.
// Unknown types fall back to plain NATS pub/sub.
func BuildPortFromDefinition(def PortDefinition, direction Direction) Port {
	port := Port{
		Name:        def.Name,
		Direction:   direction,
		Required:    def.Required,
		Description: def.Description,
	}

	switch def.Type {
	case "jetstream":
		port.Config = JetStreamPort{
			StreamName: def.StreamName,
			Subjects:   []string{def.Subject},
			Interface:  contractFromDefinition(def),
		}
	case "nats-request":
		timeout := def.Timeout
		if timeout == "" {
			timeout = "1s"
		}
		port.Config = NATSRequestPort{
			Subject:   def.Subject,
			Timeout:   timeout,
			Interface: contractFromDefinition(def),
		}
	case "kv-watch", "kvwatch":
		port.Config = KVWatchPort{
			Bucket:    def.Subject,
			Interface: contractFromDefinition(def),
		}
	case "kv-write", "kvwrite":
		port.Config = KVWritePort{
			Bucket:    def.Subject,
			Interface: contractFromDefinition(def),
		}
	default:
		port.Config = NATSPort{
			Subject:   def.Subject,
			Interface: contractFromDefinition(def),
		}
	}

	return port
}

func contractFromDefinition(def PortDefinition) *InterfaceContract {
	if def.Interface == "" {
		return nil
	}
	return &InterfaceContract{Type: def.Interface, Version: "v1"}
}
