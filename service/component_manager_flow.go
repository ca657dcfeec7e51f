package service

import (
	"strings"
	"sync"
	"time"

	"github.com/c360/semreason/component/flowgraph"
)

// flowGraphCache caches the FlowGraph and its analysis between component
// changes so HTTP handlers and health checks do not rebuild it per request.
type flowGraphCache struct {
	mu           sync.RWMutex
	currentGraph *flowgraph.FlowGraph
	lastAnalysis *flowgraph.FlowAnalysisResult
	cacheValid   bool
	lastUpdate   time.Time
}

// GetFlowGraph returns the current FlowGraph, rebuilding it if the cache was
// invalidated by a component change.
func (cm *ComponentManager) GetFlowGraph() *flowgraph.FlowGraph {
	cm.graphCache.mu.RLock()
	if cm.graphCache.cacheValid && cm.graphCache.currentGraph != nil {
		graph := cm.graphCache.currentGraph
		cm.graphCache.mu.RUnlock()
		return graph
	}
	cm.graphCache.mu.RUnlock()

	cm.graphCache.mu.Lock()
	defer cm.graphCache.mu.Unlock()

	// Another goroutine may have rebuilt while we waited for the write lock.
	if cm.graphCache.cacheValid && cm.graphCache.currentGraph != nil {
		return cm.graphCache.currentGraph
	}

	graph := cm.buildFlowGraph()
	cm.graphCache.currentGraph = graph
	cm.graphCache.cacheValid = true
	cm.graphCache.lastUpdate = time.Now()
	return graph
}

// buildFlowGraph creates a FlowGraph from the current components.
func (cm *ComponentManager) buildFlowGraph() *flowgraph.FlowGraph {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	graph := flowgraph.NewFlowGraph()

	for name, mc := range cm.components {
		if mc.Component == nil {
			continue
		}
		if err := graph.AddComponentNode(name, mc.Component); err != nil {
			cm.logger.Warn("Failed to add component to FlowGraph",
				"component", name, "error", err)
		}
	}

	if err := graph.ConnectComponentsByPatterns(); err != nil {
		cm.logger.Error("Failed to connect components in FlowGraph", "error", err)
	}
	return graph
}

// invalidateFlowGraph marks the cached FlowGraph and analysis as stale.
func (cm *ComponentManager) invalidateFlowGraph() {
	cm.graphCache.mu.Lock()
	defer cm.graphCache.mu.Unlock()

	cm.graphCache.cacheValid = false
	cm.graphCache.currentGraph = nil
	cm.graphCache.lastAnalysis = nil
}

// ValidateFlowConnectivity runs connectivity analysis over the FlowGraph,
// reusing the cached result while components are unchanged.
func (cm *ComponentManager) ValidateFlowConnectivity() *flowgraph.FlowAnalysisResult {
	cm.graphCache.mu.RLock()
	if cm.graphCache.cacheValid && cm.graphCache.lastAnalysis != nil {
		analysis := cm.graphCache.lastAnalysis
		cm.graphCache.mu.RUnlock()
		return analysis
	}
	cm.graphCache.mu.RUnlock()

	graph := cm.GetFlowGraph()
	analysis := graph.AnalyzeConnectivity()

	cm.graphCache.mu.Lock()
	cm.graphCache.lastAnalysis = analysis
	cm.graphCache.mu.Unlock()

	return analysis
}

// GetFlowPaths returns, for each input component, the set of components
// reachable from it through the flow graph.
func (cm *ComponentManager) GetFlowPaths() map[string][]string {
	graph := cm.GetFlowGraph()

	paths := make(map[string][]string)
	for _, input := range cm.findInputComponents(graph) {
		paths[input] = cm.reachableComponents(graph, input)
	}
	return paths
}

// ComponentGap describes a connectivity gap between a component and the rest
// of the flow.
type ComponentGap struct {
	ComponentName string   `json:"component_name"`
	Issue         string   `json:"issue"`
	Description   string   `json:"description"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

// DetectObjectStoreGaps reports storage components that are configured but
// not receiving data from any publisher.
func (cm *ComponentManager) DetectObjectStoreGaps() []ComponentGap {
	graph := cm.GetFlowGraph()

	var gaps []ComponentGap
	for componentName, node := range graph.GetNodes() {
		if !cm.isStorageComponent(componentName, node) {
			continue
		}
		if cm.hasIncomingEdges(graph, componentName) {
			continue
		}
		gaps = append(gaps, ComponentGap{
			ComponentName: componentName,
			Issue:         "no_input_connections",
			Description:   "Storage component configured but not receiving data",
			Suggestions: []string{
				"Configure input ports to subscribe to data streams",
				"Verify subject routing from processors to storage",
				"Check component configuration and port subjects",
			},
		})
	}
	return gaps
}

// findInputComponents identifies components that act as data entry points.
func (cm *ComponentManager) findInputComponents(graph *flowgraph.FlowGraph) []string {
	var inputs []string
	for componentName, node := range graph.GetNodes() {
		if cm.isInputComponent(componentName, node) {
			inputs = append(inputs, componentName)
		}
	}
	return inputs
}

// isInputComponent reports whether a component is configured as an input or
// exposes a network-facing input port.
func (cm *ComponentManager) isInputComponent(componentName string, node *flowgraph.ComponentNode) bool {
	if cm.componentConfigs != nil {
		if compCfg, ok := cm.componentConfigs[componentName]; ok && compCfg.Type == "input" {
			return true
		}
	}

	for _, port := range node.InputPorts {
		if port.Pattern == flowgraph.PatternNetwork {
			return true
		}
	}
	return false
}

// isStorageComponent reports whether a component persists data, based on its
// configured type or its name.
func (cm *ComponentManager) isStorageComponent(componentName string, _ *flowgraph.ComponentNode) bool {
	if cm.componentConfigs != nil {
		if compCfg, ok := cm.componentConfigs[componentName]; ok {
			if compCfg.Type == "storage" || compCfg.Type == "output" {
				return true
			}
		}
	}

	lower := strings.ToLower(componentName)
	return strings.Contains(lower, "store") || strings.Contains(lower, "storage")
}

// hasIncomingEdges reports whether any edge in the graph targets the component.
func (cm *ComponentManager) hasIncomingEdges(graph *flowgraph.FlowGraph, componentName string) bool {
	for _, edge := range graph.GetEdges() {
		if edge.To.ComponentName == componentName {
			return true
		}
	}
	return false
}

// reachableComponents walks the graph depth-first from start and returns every
// component reached, start included.
func (cm *ComponentManager) reachableComponents(graph *flowgraph.FlowGraph, start string) []string {
	adj := make(map[string][]string)
	for _, edge := range graph.GetEdges() {
		adj[edge.From.ComponentName] = append(adj[edge.From.ComponentName], edge.To.ComponentName)
	}

	visited := map[string]bool{start: true}
	result := []string{start}
	stack := []string{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, neighbor := range adj[node] {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			result = append(result, neighbor)
			stack = append(stack, neighbor)
		}
	}
	return result
}
