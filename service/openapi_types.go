package service

// The types below model the slice of OpenAPI 3.0 that service fragments
// need. Services build an OpenAPISpec; the manager merges fragments into
// the OpenAPIDocument it serves at /openapi.json.

// OpenAPISpec is a service's contribution to the platform document: the
// paths it serves relative to its mount prefix, plus the tags that group
// them in generated documentation.
type OpenAPISpec struct {
	Paths      map[string]PathSpec `json:"paths"`
	Components map[string]any      `json:"components,omitempty"`
	Tags       []TagSpec           `json:"tags,omitempty"`
}

// NewOpenAPISpec creates an empty specification fragment ready for AddPath
// and AddTag calls.
func NewOpenAPISpec() *OpenAPISpec {
	return &OpenAPISpec{
		Paths:      make(map[string]PathSpec),
		Components: make(map[string]any),
		Tags:       make([]TagSpec, 0),
	}
}

// AddPath records the operations served at path, relative to the service's
// mount prefix.
func (spec *OpenAPISpec) AddPath(path string, pathSpec PathSpec) {
	spec.Paths[path] = pathSpec
}

// AddTag registers a documentation tag the fragment's operations refer to.
func (spec *OpenAPISpec) AddTag(name, description string) {
	spec.Tags = append(spec.Tags, TagSpec{Name: name, Description: description})
}

// PathSpec holds the operations one path serves, keyed by method.
type PathSpec struct {
	GET    *OperationSpec `json:"get,omitempty"`
	POST   *OperationSpec `json:"post,omitempty"`
	PUT    *OperationSpec `json:"put,omitempty"`
	DELETE *OperationSpec `json:"delete,omitempty"`
}

// OperationSpec documents a single HTTP operation.
type OperationSpec struct {
	Summary     string                  `json:"summary"`
	Description string                  `json:"description,omitempty"`
	Parameters  []ParameterSpec         `json:"parameters,omitempty"`
	Responses   map[string]ResponseSpec `json:"responses"`
	Tags        []string                `json:"tags,omitempty"`
}

// ParameterSpec documents one operation parameter. In names the location:
// query, path, or header.
type ParameterSpec struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Schema      Schema `json:"schema,omitempty"`
}

// ResponseSpec documents one response status.
type ResponseSpec struct {
	Description string `json:"description"`
	ContentType string `json:"content_type,omitempty"`
}

// Schema is the primitive type of a parameter or response body.
type Schema struct {
	Type   string `json:"type"`
	Format string `json:"format,omitempty"`
}

// InfoSpec is the document-level API metadata.
type InfoSpec struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// ServerSpec names one server the API is reachable on.
type ServerSpec struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// TagSpec groups operations in generated documentation.
type TagSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
