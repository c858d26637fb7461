package dfg

import (
	"encoding/json"
	"time"

	"github.com/soligraph/soligraph/pkg/ast"
)

const serializerVersion = "1.0.0"

// NodeRecord is the interchange form of a Node.
type NodeRecord struct {
	ID             string              `json:"id"`
	Type           string              `json:"type"`
	Name           string              `json:"name"`
	DataType       string              `json:"data_type"`
	Scope          string              `json:"scope"`
	SourceLocation *ast.SourceLocation `json:"source_location"`
	Properties     map[string]any      `json:"properties"`
	Text           string              `json:"text,omitempty"`
	ASTMetadata    map[string]any      `json:"ast_metadata,omitempty"`
}

// EdgeRecord is the interchange form of an Edge.
type EdgeRecord struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       EdgeType       `json:"type"`
	Label      string         `json:"label"`
	Weight     int            `json:"weight"`
	Properties map[string]any `json:"properties"`
}

// Document is the canonical interchange shape of a graph.
type Document struct {
	Contract        string                `json:"contract"`
	SolidityVersion string                `json:"solidity_version"`
	Nodes           map[string]NodeRecord `json:"nodes"`
	Edges           map[string]EdgeRecord `json:"edges"`
	Metadata        map[string]any        `json:"metadata"`
	EntryNodeID     string                `json:"entry_node_id,omitempty"`
}

// Serializer renders graphs to the interchange shape, applying the
// config's text and metadata detail settings.
type Serializer struct {
	cfg Config
}

// NewSerializer returns a Serializer using cfg for detail settings.
func NewSerializer(cfg Config) *Serializer {
	return &Serializer{cfg: cfg}
}

// Document converts g to the interchange shape.
func (s *Serializer) Document(g *Graph) Document {
	doc := Document{
		Contract:        g.ContractName,
		SolidityVersion: g.SolidityVersion,
		Nodes:           map[string]NodeRecord{},
		Edges:           map[string]EdgeRecord{},
		EntryNodeID:     g.EntryNodeID,
	}

	for _, node := range g.NodesInOrder() {
		doc.Nodes[node.ID] = s.nodeRecord(node)
	}
	for _, edge := range g.EdgesInOrder() {
		doc.Edges[edge.ID] = EdgeRecord{
			ID:         edge.ID,
			Source:     edge.Source,
			Target:     edge.Target,
			Type:       edge.Type,
			Label:      edge.Label,
			Weight:     edge.Weight,
			Properties: edge.Properties,
		}
	}

	doc.Metadata = s.metadata(g)
	return doc
}

func (s *Serializer) nodeRecord(node *Node) NodeRecord {
	record := NodeRecord{
		ID:         node.ID,
		Type:       node.Type,
		Name:       node.Name,
		DataType:   node.DataType,
		Scope:      node.Scope,
		Properties: node.Properties,
	}
	if record.Properties == nil {
		record.Properties = map[string]any{}
	}

	if node.AST != nil {
		base := node.AST.Base()
		if base.Loc.Line > 0 {
			loc := base.Loc
			record.SourceLocation = &loc
		}
		if s.cfg.IncludeNodeText && base.Text != "" {
			record.Text = Truncate(base.Text, s.cfg.TextMaxLength)
		}
		if s.cfg.IncludeASTMetadata && len(base.Metadata) > 0 {
			record.ASTMetadata = base.Metadata
		}
	}
	return record
}

func (s *Serializer) metadata(g *Graph) map[string]any {
	metadata := map[string]any{}
	for k, v := range g.Metadata {
		metadata[k] = v
	}
	metadata["generated_at"] = time.Now().Format(time.RFC3339)
	metadata["node_count"] = len(g.Nodes)
	metadata["edge_count"] = len(g.Edges)
	metadata["serializer_version"] = serializerVersion

	nodeTypes := map[string]int{}
	for _, node := range g.Nodes {
		nodeTypes[node.Type]++
	}
	metadata["node_type_distribution"] = nodeTypes

	edgeTypes := map[string]int{}
	for _, edge := range g.Edges {
		edgeTypes[string(edge.Type)]++
	}
	metadata["edge_type_distribution"] = edgeTypes

	return metadata
}

// Marshal renders g as indented interchange JSON.
func (s *Serializer) Marshal(g *Graph) ([]byte, error) {
	return json.MarshalIndent(s.Document(g), "", "  ")
}

// Unmarshal parses interchange JSON back into a Document.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// FromDocument reconstructs a Graph from its interchange form. AST
// references are not recoverable; reconstructed nodes carry source text
// and metadata only through their records.
func FromDocument(doc Document) *Graph {
	g := NewGraph(doc.Contract, doc.SolidityVersion)
	g.EntryNodeID = doc.EntryNodeID

	for id, record := range doc.Nodes {
		g.AddNode(&Node{
			ID:         id,
			Type:       record.Type,
			Name:       record.Name,
			DataType:   record.DataType,
			Scope:      record.Scope,
			Properties: record.Properties,
		})
	}
	for id, record := range doc.Edges {
		g.AddEdge(&Edge{
			ID:         id,
			Source:     record.Source,
			Target:     record.Target,
			Type:       record.Type,
			Label:      record.Label,
			Weight:     record.Weight,
			Properties: record.Properties,
		})
	}
	return g
}

// Truncate shortens text to max runes with a trailing ellipsis marker.
// A non-positive max disables truncation.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

// FunctionInfo is a summary entry for a function node.
type FunctionInfo struct {
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	DataType string `json:"data_type"`
}

// VariableInfo is a summary entry for a state variable node.
type VariableInfo struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Scope    string `json:"scope"`
}

// SummaryStatistics aggregates graph-level counts.
type SummaryStatistics struct {
	TotalNodes int    `json:"total_nodes"`
	TotalEdges int    `json:"total_edges"`
	EntryNode  string `json:"entry_node,omitempty"`
}

// Summary is a compact inventory of a graph: counts by type plus the
// function and state-variable rosters.
type Summary struct {
	Contract        string            `json:"contract"`
	SolidityVersion string            `json:"solidity_version"`
	Statistics      SummaryStatistics `json:"statistics"`
	NodeTypes       map[string]int    `json:"node_types"`
	EdgeTypes       map[string]int    `json:"edge_types"`
	Functions       []FunctionInfo    `json:"functions"`
	StateVariables  []VariableInfo    `json:"state_variables"`
}

// Summarize builds the summary inventory for g.
func Summarize(g *Graph) Summary {
	summary := Summary{
		Contract:        g.ContractName,
		SolidityVersion: g.SolidityVersion,
		Statistics: SummaryStatistics{
			TotalNodes: len(g.Nodes),
			TotalEdges: len(g.Edges),
			EntryNode:  g.EntryNodeID,
		},
		NodeTypes: map[string]int{},
		EdgeTypes: map[string]int{},
	}

	for _, node := range g.NodesInOrder() {
		summary.NodeTypes[node.Type]++
		switch node.Type {
		case "function", "constructor_function":
			summary.Functions = append(summary.Functions, FunctionInfo{
				Name:     node.Name,
				Scope:    node.Scope,
				DataType: node.DataType,
			})
		case "state_variable":
			summary.StateVariables = append(summary.StateVariables, VariableInfo{
				Name:     node.Name,
				DataType: node.DataType,
				Scope:    node.Scope,
			})
		}
	}

	for _, edge := range g.EdgesInOrder() {
		summary.EdgeTypes[string(edge.Type)]++
	}
	return summary
}
