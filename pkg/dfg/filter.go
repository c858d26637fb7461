package dfg

// FilterStats reports pruning arithmetic. KeptNodes + FilteredNodes
// always equals TotalNodes, and likewise for edges, so callers can
// reconcile counts with downstream consumers.
type FilterStats struct {
	TotalNodes    int `json:"total_nodes"`
	KeptNodes     int `json:"kept_nodes"`
	FilteredNodes int `json:"filtered_nodes"`
	TotalEdges    int `json:"total_edges"`
	KeptEdges     int `json:"kept_edges"`
	FilteredEdges int `json:"filtered_edges"`
}

// Prune removes nodes rejected by cfg from g in place, together with
// every edge touching a removed node. Edges to synthetic sentinel
// endpoints survive as long as their real endpoint does.
func Prune(g *Graph, cfg Config) FilterStats {
	if g == nil {
		return FilterStats{}
	}
	stats := FilterStats{
		TotalNodes: len(g.Nodes),
		TotalEdges: len(g.Edges),
	}

	removed := map[string]bool{}
	for _, node := range g.NodesInOrder() {
		if !ShouldKeep(node.Type, node.Name, node.Text(), cfg) {
			removed[node.ID] = true
		}
	}

	for id := range removed {
		g.RemoveNode(id)
	}

	for _, edge := range g.EdgesInOrder() {
		if removed[edge.Source] || removed[edge.Target] {
			g.RemoveEdge(edge.ID)
		}
	}

	stats.KeptNodes = len(g.Nodes)
	stats.FilteredNodes = stats.TotalNodes - stats.KeptNodes
	stats.KeptEdges = len(g.Edges)
	stats.FilteredEdges = stats.TotalEdges - stats.KeptEdges
	return stats
}
