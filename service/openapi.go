package service

import "net/http"

// HTTPHandler is an optional interface for services that expose HTTP
// endpoints through the manager's shared mux. The component manager and the
// message logger implement it; the manager mounts each service under its own
// prefix and folds the returned fragment into the document served at
// /openapi.json.
type HTTPHandler interface {
	RegisterHTTPHandlers(prefix string, mux *http.ServeMux)
	OpenAPISpec() *OpenAPISpec // Returns OpenAPI specification for this service
}

// OpenAPIDocument represents the complete OpenAPI 3.0 specification
type OpenAPIDocument struct {
	OpenAPI string              `json:"openapi"`
	Info    InfoSpec            `json:"info"`
	Servers []ServerSpec        `json:"servers"`
	Paths   map[string]PathSpec `json:"paths"`
	Tags    []TagSpec           `json:"tags,omitempty"`
}

// NewOpenAPIDocument creates an empty OpenAPI 3.0 document with the given
// API metadata and server list.
func NewOpenAPIDocument(info InfoSpec, servers ...ServerSpec) *OpenAPIDocument {
	return &OpenAPIDocument{
		OpenAPI: "3.0.0",
		Info:    info,
		Servers: servers,
		Paths:   make(map[string]PathSpec),
		Tags:    make([]TagSpec, 0),
	}
}

// MergeFragment folds a service's specification fragment into the document,
// mounting every path under the given prefix. Later fragments win on path
// collisions.
func (d *OpenAPIDocument) MergeFragment(prefix string, fragment *OpenAPISpec) {
	if fragment == nil {
		return
	}

	for path, pathSpec := range fragment.Paths {
		d.Paths[prefix+path] = pathSpec
	}
	d.Tags = append(d.Tags, fragment.Tags...)
}
