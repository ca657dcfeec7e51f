package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/component/flowgraph"
	"github.com/c360/semreason/health"
)

var _ HTTPHandler = (*ComponentManager)(nil)

// componentDisplayNames maps factory IDs to catalog display names.
var componentDisplayNames = map[string]string{
	"reason-processor": "Reason Processor",
}

// RegisterHTTPHandlers mounts the ComponentManager endpoints under prefix.
func (cm *ComponentManager) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	prefix = routePrefix(prefix)
	cm.logger.Info("ComponentManager HTTP handlers registered", "prefix", prefix)

	mux.HandleFunc("GET "+prefix+"/health", cm.handleComponentsHealth)
	mux.HandleFunc("GET "+prefix+"/list", cm.handleComponentsList)
	mux.HandleFunc("GET "+prefix+"/types", cm.handleComponentTypes)
	mux.HandleFunc("GET "+prefix+"/types/{id}", cm.handleComponentTypeByID)
	mux.HandleFunc("GET "+prefix+"/status/{name}", cm.handleComponentStatus)
	mux.HandleFunc("GET "+prefix+"/config/{name}", cm.handleGetComponentConfig)
	mux.HandleFunc("PUT "+prefix+"/config/{name}", cm.handlePutComponentConfig)

	mux.HandleFunc("GET "+prefix+"/flowgraph", cm.handleFlowGraph)
	mux.HandleFunc("GET "+prefix+"/validate", cm.handleFlowValidation)
	mux.HandleFunc("GET "+prefix+"/gaps", cm.handleFlowGaps)
	mux.HandleFunc("GET "+prefix+"/paths", cm.handleFlowPaths)
}

// OpenAPISpec returns the OpenAPI fragment for ComponentManager endpoints.
func (cm *ComponentManager) OpenAPISpec() *OpenAPISpec {
	spec := NewOpenAPISpec()

	ok := func(description string) map[string]ResponseSpec {
		return map[string]ResponseSpec{
			"200": {Description: description, ContentType: "application/json"},
		}
	}
	nameParam := []ParameterSpec{{
		Name:        "name",
		In:          "path",
		Required:    true,
		Description: "Component name",
		Schema:      Schema{Type: "string"},
	}}

	spec.AddPath("/health", PathSpec{GET: &OperationSpec{
		Summary:     "Get component health status",
		Description: "Returns aggregated health status for all managed components",
		Tags:        []string{"Components"},
		Responses:   ok("Component health information"),
	}})
	spec.AddPath("/list", PathSpec{GET: &OperationSpec{
		Summary:     "List all components",
		Description: "Returns a list of all managed components with basic information",
		Tags:        []string{"Components"},
		Responses:   ok("List of components"),
	}})
	spec.AddPath("/types", PathSpec{GET: &OperationSpec{
		Summary:     "List available component types",
		Description: "Returns the catalog of registered component factories with their schemas",
		Tags:        []string{"Components"},
		Responses:   ok("Component type catalog"),
	}})
	spec.AddPath("/types/{id}", PathSpec{GET: &OperationSpec{
		Summary:     "Get a component type",
		Description: "Returns metadata and configuration schema for one component type",
		Tags:        []string{"Components"},
		Parameters: []ParameterSpec{{
			Name:        "id",
			In:          "path",
			Required:    true,
			Description: "Component type ID",
			Schema:      Schema{Type: "string"},
		}},
		Responses: map[string]ResponseSpec{
			"200": {Description: "Component type metadata", ContentType: "application/json"},
			"404": {Description: "Component type not found"},
		},
	}})
	spec.AddPath("/status/{name}", PathSpec{GET: &OperationSpec{
		Summary:     "Get component status",
		Description: "Returns detailed status for a specific component",
		Tags:        []string{"Components"},
		Parameters:  nameParam,
		Responses: map[string]ResponseSpec{
			"200": {Description: "Component status", ContentType: "application/json"},
			"404": {Description: "Component not found"},
		},
	}})
	spec.AddPath("/config/{name}", PathSpec{
		GET: &OperationSpec{
			Summary:     "Get component configuration",
			Description: "Returns the current configuration for a specific component",
			Tags:        []string{"Components"},
			Parameters:  nameParam,
			Responses: map[string]ResponseSpec{
				"200": {Description: "Component configuration", ContentType: "application/json"},
				"404": {Description: "Component not found"},
			},
		},
		PUT: &OperationSpec{
			Summary:     "Update component configuration",
			Description: "Validates the configuration against the component schema and applies it",
			Tags:        []string{"Components"},
			Parameters:  nameParam,
			Responses: map[string]ResponseSpec{
				"200": {Description: "Configuration updated", ContentType: "application/json"},
				"400": {Description: "Configuration failed validation", ContentType: "application/json"},
				"404": {Description: "Component not found"},
			},
		},
	})
	spec.AddPath("/flowgraph", PathSpec{GET: &OperationSpec{
		Summary:     "Get component FlowGraph",
		Description: "Returns the complete FlowGraph with nodes and edges for all managed components",
		Tags:        []string{"Components", "FlowGraph"},
		Responses:   ok("FlowGraph with nodes and edges"),
	}})
	spec.AddPath("/validate", PathSpec{GET: &OperationSpec{
		Summary:     "Validate component flow connectivity",
		Description: "Performs FlowGraph connectivity analysis for operational validation",
		Tags:        []string{"Components", "FlowGraph"},
		Responses:   ok("Flow connectivity analysis results"),
	}})
	spec.AddPath("/gaps", PathSpec{GET: &OperationSpec{
		Summary:     "Get component flow gaps",
		Description: "Returns disconnected nodes and orphaned ports in the component flow",
		Tags:        []string{"Components", "FlowGraph"},
		Responses:   ok("Component flow gaps and disconnected nodes"),
	}})
	spec.AddPath("/paths", PathSpec{GET: &OperationSpec{
		Summary:     "Get component data paths",
		Description: "Returns data paths from input components to all reachable components",
		Tags:        []string{"Components", "FlowGraph"},
		Responses:   ok("Data paths through component graph"),
	}})

	spec.AddTag("Components", "Component management and monitoring endpoints")
	spec.AddTag("FlowGraph", "Component flow analysis and connectivity validation endpoints")
	return spec
}

// handleComponentsHealth returns aggregated health for all components.
// Returns 503 when the aggregate is unhealthy; degraded stays 200 with the
// detail in the body.
func (cm *ComponentManager) handleComponentsHealth(w http.ResponseWriter, r *http.Request) {
	componentHealth := cm.GetComponentHealth()

	var statuses []health.Status
	for name, ch := range componentHealth {
		statuses = append(statuses, health.FromComponentHealth(name, ch))
	}
	overall := health.Aggregate("components", statuses)

	response := struct {
		Overall    health.Status   `json:"overall"`
		Components []health.Status `json:"components"`
		Total      int             `json:"total"`
	}{
		Overall:    overall,
		Components: statuses,
		Total:      len(statuses),
	}

	status := http.StatusOK
	if overall.IsUnhealthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSONStatus(w, cm.logger, status, response)
}

// handleComponentsList returns basic info for every managed component.
func (cm *ComponentManager) handleComponentsList(w http.ResponseWriter, r *http.Request) {
	cm.mu.RLock()
	components := make([]map[string]any, 0, len(cm.components))
	for name, mc := range cm.components {
		info := map[string]any{
			"name":  name,
			"state": mc.State.String(),
		}
		if compConfig, ok := cm.componentConfigs[name]; ok {
			info["type"] = string(compConfig.Type)
			info["enabled"] = compConfig.Enabled
		}

		hs := mc.Component.Health()
		info["healthy"] = hs.Healthy
		if hs.LastError != "" {
			info["last_error"] = hs.LastError
		}
		components = append(components, info)
	}
	cm.mu.RUnlock()

	writeJSON(w, cm.logger, components)
}

// componentTypeEntry builds the catalog entry for one registered factory.
func (cm *ComponentManager) componentTypeEntry(id string, reg *component.Registration) map[string]any {
	displayName := id
	if name, ok := componentDisplayNames[id]; ok {
		displayName = name
	}

	schema, err := cm.registry.GetComponentSchema(id)
	if err != nil {
		// Component may legitimately have no schema.
		cm.logger.Warn("Failed to get schema for component type", "component_type", id, "error", err)
	}

	return map[string]any{
		"id":          id,
		"name":        displayName,
		"type":        reg.Type,
		"protocol":    reg.Protocol,
		"domain":      reg.Domain,
		"description": reg.Description,
		"version":     reg.Version,
		"category":    reg.Type, // clients group the catalog by category
		"schema":      schema,
	}
}

// handleComponentTypes returns the catalog of registered component factories
// as a flat array so clients can render it without unwrapping.
func (cm *ComponentManager) handleComponentTypes(w http.ResponseWriter, r *http.Request) {
	factories := cm.registry.ListFactories()

	componentTypes := make([]map[string]any, 0, len(factories))
	for id, reg := range factories {
		componentTypes = append(componentTypes, cm.componentTypeEntry(id, reg))
	}

	writeJSON(w, cm.logger, componentTypes)
}

// handleComponentTypeByID returns metadata and schema for one component type.
func (cm *ComponentManager) handleComponentTypeByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !validPathName(id) {
		http.Error(w, "Invalid component type", http.StatusBadRequest)
		return
	}

	reg, exists := cm.registry.ListFactories()[id]
	if !exists {
		http.Error(w, fmt.Sprintf(`{"error":"Component type %s not found"}`, id), http.StatusNotFound)
		return
	}

	writeJSON(w, cm.logger, cm.componentTypeEntry(id, reg))
}

// handleComponentStatus returns detailed status for a specific component.
func (cm *ComponentManager) handleComponentStatus(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !validPathName(name) {
		http.Error(w, "Invalid component name", http.StatusBadRequest)
		return
	}

	cm.mu.RLock()
	mc, exists := cm.components[name]
	if !exists {
		cm.mu.RUnlock()
		http.NotFound(w, r)
		return
	}

	status := map[string]any{
		"name":        name,
		"state":       mc.State.String(),
		"start_order": mc.StartOrder,
	}
	if compConfig, ok := cm.componentConfigs[name]; ok {
		status["type"] = string(compConfig.Type)
		status["enabled"] = compConfig.Enabled
	}

	hs := mc.Component.Health()
	status["healthy"] = hs.Healthy
	if hs.LastError != "" {
		status["last_error"] = hs.LastError
		status["error_count"] = hs.ErrorCount
	}
	if hs.Uptime > 0 {
		status["uptime_seconds"] = hs.Uptime.Seconds()
	}
	if mc.LastError != nil && hs.LastError == "" {
		status["lifecycle_error"] = mc.LastError.Error()
	}
	cm.mu.RUnlock()

	writeJSON(w, cm.logger, status)
}

// handleGetComponentConfig returns the stored configuration for a component.
func (cm *ComponentManager) handleGetComponentConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !validPathName(name) {
		http.Error(w, "Invalid component name", http.StatusBadRequest)
		return
	}

	cm.mu.RLock()
	_, exists := cm.components[name]
	compConfig, haveConfig := cm.componentConfigs[name]
	cm.mu.RUnlock()

	if !exists {
		http.NotFound(w, r)
		return
	}

	var response any
	if haveConfig {
		response = map[string]any{
			"type":    compConfig.Type,
			"name":    compConfig.Name,
			"enabled": compConfig.Enabled,
			"config":  json.RawMessage(compConfig.Config),
		}
	} else {
		response = map[string]any{
			"message": "No configuration available for this component",
		}
	}

	writeJSON(w, cm.logger, response)
}

// handlePutComponentConfig validates a configuration update against the
// component's schema and applies it. Validation failures return the error
// list with a 400 so callers can show field-level problems.
func (cm *ComponentManager) handlePutComponentConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !validPathName(name) {
		http.Error(w, "Invalid component name", http.StatusBadRequest)
		return
	}

	cm.mu.RLock()
	mc, exists := cm.components[name]
	var factoryName string
	if compConfig, ok := cm.componentConfigs[name]; ok {
		factoryName = compConfig.Name
	}
	cm.mu.RUnlock()

	if !exists {
		http.NotFound(w, r)
		return
	}

	var req struct {
		Config json.RawMessage `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if factoryName == "" {
		cm.logger.Warn("Component type not found, skipping validation", "component_name", name)
		http.Error(w, "Component type not found", http.StatusInternalServerError)
		return
	}

	if cm.configManager != nil {
		validationErrors := cm.configManager.ValidateComponentConfig(
			r.Context(), cm.registry, factoryName, req.Config)
		if len(validationErrors) > 0 {
			writeJSONStatus(w, cm.logger, http.StatusBadRequest, map[string]any{
				"errors": validationErrors,
			})
			return
		}
	}

	cm.mu.Lock()
	if compConfig, ok := cm.componentConfigs[name]; ok {
		compConfig.Config = req.Config
		cm.componentConfigs[name] = compConfig
	}
	cm.mu.Unlock()

	// Apply immediately when the component supports runtime reconfiguration;
	// otherwise the new config takes effect on the next restart.
	if configurable, ok := mc.Component.(interface {
		UpdateConfig(ctx context.Context, config json.RawMessage) error
	}); ok {
		if err := configurable.UpdateConfig(r.Context(), req.Config); err != nil {
			cm.logger.Error("Failed to apply config update", "component_name", name, "error", err)
			http.Error(w, fmt.Sprintf("Failed to apply config: %v", err), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, cm.logger, map[string]any{
		"status":  "success",
		"message": "Configuration updated successfully",
	})
}

// handleFlowGraph returns the complete FlowGraph with nodes and edges.
func (cm *ComponentManager) handleFlowGraph(w http.ResponseWriter, r *http.Request) {
	graph := cm.GetFlowGraph()
	nodes := graph.GetNodes()
	edges := graph.GetEdges()

	writeJSON(w, cm.logger, map[string]any{
		"nodes": nodes,
		"edges": edges,
		"metadata": map[string]any{
			"timestamp":  time.Now().UTC(),
			"node_count": len(nodes),
			"edge_count": len(edges),
			"graph_type": "component_flow",
		},
	})
}

// handleFlowValidation runs FlowGraph connectivity analysis. The HTTP status
// is always 200; callers check the validation_status field.
func (cm *ComponentManager) handleFlowValidation(w http.ResponseWriter, r *http.Request) {
	analysis := cm.ValidateFlowConnectivity()

	writeJSON(w, cm.logger, map[string]any{
		"timestamp":            time.Now().UTC(),
		"validation_status":    analysis.ValidationStatus,
		"connected_components": analysis.ConnectedComponents,
		"connected_edges":      analysis.ConnectedEdges,
		"disconnected_nodes":   analysis.DisconnectedNodes,
		"orphaned_ports":       analysis.OrphanedPorts,
		"summary": map[string]any{
			"total_components":        len(cm.GetFlowGraph().GetNodes()),
			"total_connections":       len(analysis.ConnectedEdges),
			"component_groups":        len(analysis.ConnectedComponents),
			"orphaned_port_count":     len(analysis.OrphanedPorts),
			"disconnected_node_count": len(analysis.DisconnectedNodes),
		},
	})
}

// handleFlowGaps returns disconnected nodes and orphaned ports, split into
// critical and optional so operators can ignore intentionally unused ports.
func (cm *ComponentManager) handleFlowGaps(w http.ResponseWriter, r *http.Request) {
	analysis := cm.ValidateFlowConnectivity()
	objectStoreGaps := cm.DetectObjectStoreGaps()

	criticalPorts := 0
	optionalPorts := 0
	for _, port := range analysis.OrphanedPorts {
		switch port.Issue {
		case "no_publishers", "no_subscribers":
			// Stream connections are critical only if required.
			if port.Pattern == flowgraph.PatternStream && port.Required {
				criticalPorts++
			} else {
				optionalPorts++
			}
		case "optional_api_unused", "optional_index_unwatched", "optional_interface_unused":
			optionalPorts++
		}
	}

	criticalGaps := len(analysis.DisconnectedNodes) + criticalPorts

	writeJSON(w, cm.logger, map[string]any{
		"timestamp":          time.Now().UTC(),
		"disconnected_nodes": analysis.DisconnectedNodes,
		"orphaned_ports":     analysis.OrphanedPorts,
		"objectstore_gaps":   objectStoreGaps,
		"summary": map[string]any{
			"total_gaps":          criticalGaps,
			"critical_gaps":       criticalGaps,
			"optional_gaps":       optionalPorts,
			"disconnected_count":  len(analysis.DisconnectedNodes),
			"orphaned_port_count": len(analysis.OrphanedPorts),
			"critical_port_count": criticalPorts,
			"optional_port_count": optionalPorts,
			"objectstore_gaps":    len(objectStoreGaps),
			"has_issues":          criticalGaps > 0 || len(objectStoreGaps) > 0,
		},
	})
}

// handleFlowPaths returns data paths from input components to all reachable
// components, with simple path statistics.
func (cm *ComponentManager) handleFlowPaths(w http.ResponseWriter, r *http.Request) {
	paths := cm.GetFlowPaths()

	maxPathLength := 0
	totalComponents := 0
	for _, path := range paths {
		maxPathLength = max(maxPathLength, len(path))
		totalComponents += len(path)
	}

	var avgPathLength float64
	if len(paths) > 0 {
		avgPathLength = float64(totalComponents) / float64(len(paths))
	}

	writeJSON(w, cm.logger, map[string]any{
		"timestamp": time.Now().UTC(),
		"paths":     paths,
		"statistics": map[string]any{
			"input_component_count": len(paths),
			"max_path_length":       maxPathLength,
			"avg_path_length":       avgPathLength,
			"total_reachable":       totalComponents,
		},
	})
}
