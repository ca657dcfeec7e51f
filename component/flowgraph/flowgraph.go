// Package flowgraph builds a connection graph from component port
// declarations and analyzes it: which ports wire together, which
// components are isolated, and where required connectivity is missing.
package flowgraph

import (
	"fmt"
	"strings"

	"github.com/c360/semreason/component"
)

// FlowGraph is a directed graph of component connections derived from
// declared ports.
type FlowGraph struct {
	nodes map[string]*ComponentNode
	edges []FlowEdge
}

// ComponentNode is one component's place in the graph.
type ComponentNode struct {
	ComponentName string
	Component     component.Discoverable
	InputPorts    []PortInfo
	OutputPorts   []PortInfo
}

// PortInfo is the slice of port metadata the graph cares about.
type PortInfo struct {
	Name         string
	Direction    component.Direction
	ConnectionID string // subject, bucket, or network address
	Pattern      InteractionPattern
	Interface    *component.InterfaceContract
	Required     bool
}

// FlowEdge is a connection between two component ports.
type FlowEdge struct {
	From         ComponentPortRef   `json:"from"`
	To           ComponentPortRef   `json:"to"`
	Pattern      InteractionPattern `json:"pattern"`
	ConnectionID string             `json:"connection_id"`
	Metadata     EdgeMetadata       `json:"metadata"`
}

// ComponentPortRef names a specific port on a specific component.
type ComponentPortRef struct {
	ComponentName string `json:"component_name"`
	PortName      string `json:"port_name"`
}

// InteractionPattern groups port types by how their connections behave.
type InteractionPattern string

const (
	// PatternStream covers NATSPort and JetStreamPort: publishers feed
	// subscribers asynchronously.
	PatternStream InteractionPattern = "stream"
	// PatternRequest covers NATSRequestPort: either side may initiate.
	PatternRequest InteractionPattern = "request"
	// PatternWatch covers KV ports: writers feed bucket watchers.
	PatternWatch InteractionPattern = "watch"
	// PatternNetwork covers network and file ports: external boundaries.
	PatternNetwork InteractionPattern = "network"
)

// EdgeMetadata carries pattern-specific validation data.
type EdgeMetadata struct {
	InterfaceContract *component.InterfaceContract `json:"interface_contract,omitempty"`
	Timeout           string                       `json:"timeout,omitempty"`
	Queue             string                       `json:"queue,omitempty"`
	Keys              []string                     `json:"keys,omitempty"`
}

// FlowAnalysisResult is the output of AnalyzeConnectivity.
type FlowAnalysisResult struct {
	ConnectedComponents [][]string         `json:"connected_components"`
	ConnectedEdges      []FlowEdge         `json:"connected_edges"`
	DisconnectedNodes   []DisconnectedNode `json:"disconnected_nodes"`
	OrphanedPorts       []OrphanedPort     `json:"orphaned_ports"`
	ValidationStatus    string             `json:"validation_status"`
}

// DisconnectedNode is a component with no edges at all.
type DisconnectedNode struct {
	ComponentName string   `json:"component_name"`
	Issue         string   `json:"issue"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

// OrphanedPort is a port that matched nothing.
type OrphanedPort struct {
	ComponentName string              `json:"component_name"`
	PortName      string              `json:"port_name"`
	Direction     component.Direction `json:"direction"`
	ConnectionID  string              `json:"connection_id"`
	Pattern       InteractionPattern  `json:"pattern"`
	Issue         string              `json:"issue"`
	Required      bool                `json:"required"`
}

// NewFlowGraph returns an empty graph.
func NewFlowGraph() *FlowGraph {
	return &FlowGraph{
		nodes: make(map[string]*ComponentNode),
		edges: make([]FlowEdge, 0),
	}
}

// GetNodes returns a copy of the node map. Port slices are copied;
// the Discoverable references are shared and treated as read-only.
func (g *FlowGraph) GetNodes() map[string]*ComponentNode {
	result := make(map[string]*ComponentNode, len(g.nodes))
	for name, node := range g.nodes {
		clone := &ComponentNode{
			ComponentName: node.ComponentName,
			Component:     node.Component,
			InputPorts:    make([]PortInfo, len(node.InputPorts)),
			OutputPorts:   make([]PortInfo, len(node.OutputPorts)),
		}
		copy(clone.InputPorts, node.InputPorts)
		copy(clone.OutputPorts, node.OutputPorts)
		result[name] = clone
	}
	return result
}

// GetEdges returns a copy of the edge list.
func (g *FlowGraph) GetEdges() []FlowEdge {
	result := make([]FlowEdge, len(g.edges))
	copy(result, g.edges)
	return result
}

// AddComponentNode adds a component and snapshots its declared ports.
func (g *FlowGraph) AddComponentNode(name string, comp component.Discoverable) error {
	if name == "" {
		return fmt.Errorf("component name cannot be empty")
	}
	if comp == nil {
		return fmt.Errorf("component cannot be nil")
	}
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("component %s already exists in graph", name)
	}

	g.nodes[name] = &ComponentNode{
		ComponentName: name,
		Component:     comp,
		InputPorts:    portInfos(comp.InputPorts()),
		OutputPorts:   portInfos(comp.OutputPorts()),
	}
	return nil
}

func portInfos(ports []component.Port) []PortInfo {
	result := make([]PortInfo, 0, len(ports))
	for _, port := range ports {
		pattern, connID, iface := describePort(port.Config)
		result = append(result, PortInfo{
			Name:         port.Name,
			Direction:    port.Direction,
			ConnectionID: connID,
			Pattern:      pattern,
			Interface:    iface,
			Required:     port.Required,
		})
	}
	return result
}

// describePort classifies a port config into its interaction pattern,
// connection identifier, and interface contract. Incomplete configs get
// sentinel connection IDs so analysis can report them instead of
// silently matching empty strings.
func describePort(cfg component.Portable) (InteractionPattern, string, *component.InterfaceContract) {
	if cfg == nil {
		return PatternStream, "nil_port_config", nil
	}

	switch c := cfg.(type) {
	case component.NATSPort:
		if c.Subject == "" {
			return PatternStream, "nats_missing_subject", c.Interface
		}
		return PatternStream, c.Subject, c.Interface

	case component.NATSRequestPort:
		if c.Subject == "" {
			return PatternRequest, "nats_request_missing_subject", c.Interface
		}
		return PatternRequest, c.Subject, c.Interface

	case component.JetStreamPort:
		switch {
		case c.StreamName != "":
			return PatternStream, c.StreamName, c.Interface
		case len(c.Subjects) > 0:
			return PatternStream, c.Subjects[0], c.Interface
		default:
			return PatternStream, "jetstream_unknown", c.Interface
		}

	case component.KVWatchPort:
		if c.Bucket == "" {
			return PatternWatch, "kv_missing_bucket", c.Interface
		}
		return PatternWatch, c.Bucket, c.Interface

	case component.KVWritePort:
		if c.Bucket == "" {
			return PatternWatch, "kv_missing_bucket", c.Interface
		}
		return PatternWatch, c.Bucket, c.Interface

	case component.NetworkPort:
		if c.Host == "" || c.Port == 0 {
			return PatternNetwork, fmt.Sprintf("network_incomplete_%s_%d", c.Host, c.Port), nil
		}
		return PatternNetwork, fmt.Sprintf("%s:%s:%d", c.Protocol, c.Host, c.Port), nil

	case component.FilePort:
		if c.Path == "" {
			return PatternNetwork, "file_unknown", nil
		}
		return PatternNetwork, c.Path, nil

	default:
		return PatternStream, fmt.Sprintf("unknown_type_%T", cfg), nil
	}
}

// ConnectComponentsByPatterns rebuilds the edge list by matching output
// ports against input ports within each interaction pattern. Returns an
// error when validation finds conflicts (multiple KV writers, network
// binding collisions).
func (g *FlowGraph) ConnectComponentsByPatterns() error {
	g.edges = g.edges[:0]

	publishers := g.portRefsByPattern(func(n *ComponentNode) []PortInfo { return n.OutputPorts })
	subscribers := g.portRefsByPattern(func(n *ComponentNode) []PortInfo { return n.InputPorts })

	var warnings []string

	g.connectStreamPorts(publishers[PatternStream], subscribers[PatternStream])
	g.connectRequestPorts(publishers[PatternRequest], subscribers[PatternRequest])
	g.connectWatchPorts(publishers[PatternWatch], subscribers[PatternWatch], &warnings)

	conflicts := g.validateNetworkPorts(publishers[PatternNetwork], subscribers[PatternNetwork])
	warnings = append(warnings, conflicts...)

	if len(warnings) > 0 {
		return fmt.Errorf("flow graph validation warnings: %v", warnings)
	}
	return nil
}

// portRefsByPattern indexes one side of every node's ports by pattern
// and connection ID.
func (g *FlowGraph) portRefsByPattern(side func(*ComponentNode) []PortInfo) map[InteractionPattern]map[string][]ComponentPortRef {
	index := make(map[InteractionPattern]map[string][]ComponentPortRef)

	for componentName, node := range g.nodes {
		for _, port := range side(node) {
			byConn := index[port.Pattern]
			if byConn == nil {
				byConn = make(map[string][]ComponentPortRef)
				index[port.Pattern] = byConn
			}
			byConn[port.ConnectionID] = append(byConn[port.ConnectionID], ComponentPortRef{
				ComponentName: componentName,
				PortName:      port.Name,
			})
		}
	}

	return index
}

// matchNATSPattern reports whether two subjects can exchange messages
// under NATS matching rules: "*" matches one token, ">" matches the
// rest. Either argument may carry the wildcards.
func matchNATSPattern(a, b string) bool {
	if a == b {
		return true
	}

	aWild := strings.ContainsAny(a, "*>")
	bWild := strings.ContainsAny(b, "*>")

	switch {
	case !aWild && !bWild:
		return false
	case aWild && bWild:
		at, bt := strings.Split(a, "."), strings.Split(b, ".")
		return matchTokens(at, bt) || matchTokens(bt, at)
	case bWild:
		return matchTokens(strings.Split(b, "."), strings.Split(a, "."))
	default:
		return matchTokens(strings.Split(a, "."), strings.Split(b, "."))
	}
}

// matchTokens matches subject tokens against pattern tokens.
func matchTokens(pattern, subject []string) bool {
	i, j := 0, 0

	for i < len(pattern) {
		if pattern[i] == ">" {
			return true
		}
		if j >= len(subject) {
			return false
		}
		if pattern[i] != "*" && pattern[i] != subject[j] {
			return false
		}
		i++
		j++
	}

	return i == len(pattern) && j == len(subject)
}

// connectStreamPorts joins publishers to subscribers whose subjects
// match, wildcard-aware on either side.
func (g *FlowGraph) connectStreamPorts(publishers, subscribers map[string][]ComponentPortRef) {
	for pubConnID, pubs := range publishers {
		for subConnID, subs := range subscribers {
			if !matchNATSPattern(pubConnID, subConnID) {
				continue
			}
			for _, pub := range pubs {
				for _, sub := range subs {
					g.edges = append(g.edges, FlowEdge{
						From:         pub,
						To:           sub,
						Pattern:      PatternStream,
						ConnectionID: pubConnID,
						Metadata:     EdgeMetadata{},
					})
				}
			}
		}
	}
}

// connectRequestPorts joins every pair of ports sharing a request
// subject. Request/reply is bidirectional, so input and output ports
// pool together and each pair gets one edge.
func (g *FlowGraph) connectRequestPorts(publishers, subscribers map[string][]ComponentPortRef) {
	all := make(map[string][]ComponentPortRef)
	for connID, ports := range publishers {
		all[connID] = append(all[connID], ports...)
	}
	for connID, ports := range subscribers {
		all[connID] = append(all[connID], ports...)
	}

	for connID, ports := range all {
		for i := range ports {
			for j := i + 1; j < len(ports); j++ {
				g.edges = append(g.edges, FlowEdge{
					From:         ports[i],
					To:           ports[j],
					Pattern:      PatternRequest,
					ConnectionID: connID,
					Metadata:     EdgeMetadata{},
				})
			}
		}
	}
}

// connectWatchPorts joins KV writers to watchers on the same bucket and
// warns when a bucket has more than one writer.
func (g *FlowGraph) connectWatchPorts(publishers, subscribers map[string][]ComponentPortRef, warnings *[]string) {
	for connID, pubs := range publishers {
		if len(pubs) > 1 && warnings != nil {
			*warnings = append(*warnings,
				fmt.Sprintf("Multiple writers to KV bucket %s: %v", connID, pubs))
		}

		subs, ok := subscribers[connID]
		if !ok {
			continue
		}
		for _, pub := range pubs {
			for _, sub := range subs {
				g.edges = append(g.edges, FlowEdge{
					From:         pub,
					To:           sub,
					Pattern:      PatternWatch,
					ConnectionID: connID,
					Metadata:     EdgeMetadata{},
				})
			}
		}
	}
}

// validateNetworkPorts detects socket binding conflicts. Network ports
// are external boundaries, so no edges are created.
func (g *FlowGraph) validateNetworkPorts(publishers, subscribers map[string][]ComponentPortRef) []string {
	conflicts := []string{}
	bound := make(map[string][]ComponentPortRef)

	for connID, ports := range publishers {
		if len(ports) > 1 {
			conflicts = append(conflicts,
				fmt.Sprintf("Network port conflict on %s: multiple components binding: %v", connID, ports))
		}
		bound[connID] = ports
	}

	for connID, ports := range subscribers {
		if existing, ok := bound[connID]; ok {
			conflicts = append(conflicts,
				fmt.Sprintf("Network port conflict on %s: %v and %v both trying to bind", connID, existing, ports))
		} else if len(ports) > 1 {
			conflicts = append(conflicts,
				fmt.Sprintf("Network port conflict on %s: multiple components binding: %v", connID, ports))
		}
	}

	return conflicts
}

// AnalyzeConnectivity reports connected clusters, isolated components,
// and orphaned ports. Status is "warnings" when any component is
// disconnected or a required stream port has no counterpart, otherwise
// "healthy".
func (g *FlowGraph) AnalyzeConnectivity() *FlowAnalysisResult {
	result := &FlowAnalysisResult{
		ConnectedEdges:      g.edges,
		ValidationStatus:    "healthy",
		ConnectedComponents: [][]string{},
		DisconnectedNodes:   []DisconnectedNode{},
		OrphanedPorts:       []OrphanedPort{},
	}

	if components := g.findConnectedComponents(); components != nil {
		result.ConnectedComponents = components
	}
	if orphans := g.findOrphanedPorts(); orphans != nil {
		result.OrphanedPorts = orphans
	}

	connected := make(map[string]bool)
	for _, edge := range g.edges {
		connected[edge.From.ComponentName] = true
		connected[edge.To.ComponentName] = true
	}
	for name := range g.nodes {
		if !connected[name] {
			result.DisconnectedNodes = append(result.DisconnectedNodes, DisconnectedNode{
				ComponentName: name,
				Issue:         "Component has no connections",
				Suggestions:   []string{"Connect to other components", "Verify component configuration"},
			})
		}
	}

	critical := false
	for _, port := range result.OrphanedPorts {
		if port.Issue != "no_publishers" && port.Issue != "no_subscribers" {
			continue
		}
		// Only required stream connections are critical; optional ports
		// may legitimately dangle.
		if port.Pattern == PatternStream && port.Required {
			critical = true
			break
		}
	}

	if len(result.DisconnectedNodes) > 0 || critical {
		result.ValidationStatus = "warnings"
	}

	return result
}

// findConnectedComponents clusters nodes by undirected reachability.
func (g *FlowGraph) findConnectedComponents() [][]string {
	adj := make(map[string][]string)
	for _, edge := range g.edges {
		from, to := edge.From.ComponentName, edge.To.ComponentName
		adj[from] = append(adj[from], to)
		adj[to] = append(adj[to], from)
	}

	visited := make(map[string]bool)
	var components [][]string

	for name := range g.nodes {
		if visited[name] {
			continue
		}

		var cluster []string
		stack := []string{name}
		visited[name] = true
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cluster = append(cluster, node)
			for _, neighbor := range adj[node] {
				if !visited[neighbor] {
					visited[neighbor] = true
					stack = append(stack, neighbor)
				}
			}
		}
		components = append(components, cluster)
	}

	return components
}

// findOrphanedPorts lists ports no edge touches. Network ports are
// skipped: they face the outside world and have no in-graph peer.
func (g *FlowGraph) findOrphanedPorts() []OrphanedPort {
	connected := make(map[ComponentPortRef]bool)
	for _, edge := range g.edges {
		connected[edge.From] = true
		connected[edge.To] = true
	}

	var orphaned []OrphanedPort
	for componentName, node := range g.nodes {
		for _, port := range node.InputPorts {
			if port.Pattern == PatternNetwork {
				continue
			}
			ref := ComponentPortRef{ComponentName: componentName, PortName: port.Name}
			if connected[ref] {
				continue
			}
			orphaned = append(orphaned, g.orphanFor(componentName, port, g.inputOrphanIssue(port)))
		}

		for _, port := range node.OutputPorts {
			if port.Pattern == PatternNetwork {
				continue
			}
			ref := ComponentPortRef{ComponentName: componentName, PortName: port.Name}
			if connected[ref] {
				continue
			}
			orphaned = append(orphaned, g.orphanFor(componentName, port, outputOrphanIssue(port)))
		}
	}

	return orphaned
}

func (g *FlowGraph) orphanFor(componentName string, port PortInfo, issue string) OrphanedPort {
	return OrphanedPort{
		ComponentName: componentName,
		PortName:      port.Name,
		Direction:     port.Direction,
		ConnectionID:  port.ConnectionID,
		Pattern:       port.Pattern,
		Issue:         issue,
		Required:      port.Required,
	}
}

func (g *FlowGraph) inputOrphanIssue(port PortInfo) string {
	switch {
	case port.Pattern == PatternRequest:
		return "optional_api_unused"
	case g.isInterfaceAlternativePort(port):
		return "optional_interface_unused"
	default:
		return "no_publishers"
	}
}

func outputOrphanIssue(port PortInfo) string {
	switch port.Pattern {
	case PatternRequest:
		return "optional_api_unused"
	case PatternWatch:
		return "optional_index_unwatched"
	default:
		return "no_subscribers"
	}
}

// isInterfaceAlternativePort guesses whether an input port is an
// optional typed variant of another port, e.g. "input-validated"
// alongside "input". Such ports carry an interface contract, are not
// required, and use a suffixed name or a suffixed subject.
func (g *FlowGraph) isInterfaceAlternativePort(port PortInfo) bool {
	if port.Interface == nil || port.Required {
		return false
	}

	if strings.Contains(port.Name, "-") {
		base := strings.Split(port.Name, "-")[0]
		if base != "" && base != port.Name {
			return true
		}
	}

	return strings.Contains(port.ConnectionID, ".graphable") ||
		strings.Contains(port.ConnectionID, ".typed") ||
		strings.Contains(port.ConnectionID, ".validated")
}
